package parallelproxy

// Kind selects which fan-out strategy a Parallel Proxy uses.
type Kind int

const (
	// Pretend calls every endpoint one at a time, preserving input
	// order. Reference implementation and fallback; no parallelism.
	Pretend Kind = iota
	// Threaded runs one goroutine per endpoint.
	Threaded
	// TwoStage pipelines two-stage-capable endpoints and falls back to
	// Pretend (Sequential) for everything else.
	TwoStage
	// Hybrid is TwoStage with a Threaded fallback, and restricts
	// two-stage wrapping to loopback endpoints by default.
	Hybrid
)

// String returns the name used in the facade's repr:
// "<{Kind}ParallelServerProxy for N servers>".
func (k Kind) String() string {
	switch k {
	case Pretend:
		return "Pretend"
	case Threaded:
		return "Threaded"
	case TwoStage:
		return "TwoStage"
	case Hybrid:
		return "Hybrid"
	default:
		return "Unknown"
	}
}
