package parallelproxy

import "testing"

func TestKindString(t *testing.T) {
	cases := map[Kind]string{
		Pretend:  "Pretend",
		Threaded: "Threaded",
		TwoStage: "TwoStage",
		Hybrid:   "Hybrid",
		Kind(99): "Unknown",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", k, got, want)
		}
	}
}
