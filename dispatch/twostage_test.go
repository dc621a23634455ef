package dispatch

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"parallelxmlrpc/endpoint"
	"parallelxmlrpc/proxy"
	"parallelxmlrpc/wireformat"
	"parallelxmlrpc/xmlrpc"
)

func newIntServer(t *testing.T, n int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "text/xml")
		w.Write([]byte(`<?xml version="1.0"?><methodResponse><params><param><value><int>` + itoaLocal(n) + `</int></value></param></params></methodResponse>`))
	}))
}

func itoaLocal(n int) string {
	if n == 0 {
		return "0"
	}
	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}

func TestTwoStageDispatchFanOut(t *testing.T) {
	srv1 := newIntServer(t, 1)
	defer srv1.Close()
	srv2 := newIntServer(t, 2)
	defer srv2.Close()
	srv3 := newIntServer(t, 3)
	defer srv3.Close()

	format := xmlrpc.Format{}
	proxies := make([]proxy.Proxy, 0, 3)
	for _, srv := range []*httptest.Server{srv1, srv2, srv3} {
		ep, err := endpoint.Parse(srv.URL)
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
		proxies = append(proxies, proxy.NewTwoStage(ep, format, false, nil))
	}

	dispatcher := TwoStageDispatch(Options{})
	results := CollectAll(dispatcher(proxies, wireformat.Call{Method: "pow", Params: []any{2, 10}}))

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	sum := 0
	for _, r := range results {
		if r.Err != nil {
			t.Errorf("unexpected error for %s: %v", r.Endpoint, r.Err)
			continue
		}
		sum += r.Value.(int)
	}
	if sum != 6 {
		t.Fatalf("expected values 1+2+3=6, got sum %d", sum)
	}
}

func TestTwoStageDispatchFallsBackForNonTwoStageProxies(t *testing.T) {
	srv := newIntServer(t, 5)
	defer srv.Close()

	ep, err := endpoint.Parse(srv.URL)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	plain := proxy.NewPlain(ep, xmlrpc.Format{})

	dispatcher := TwoStageDispatch(Options{})
	results := CollectAll(dispatcher([]proxy.Proxy{plain}, wireformat.Call{Method: "m"}))
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Err != nil || results[0].Value != 5 {
		t.Fatalf("expected value 5, got value=%v err=%v", results[0].Value, results[0].Err)
	}
}

// countingTwoStage wraps a real *proxy.TwoStage and counts MakeRequest
// calls, to observe the shared-encoding optimization from outside the
// dispatch package's private startAll.
type countingTwoStage struct {
	*proxy.TwoStage
	calls *int
}

func (c countingTwoStage) MakeRequest(method string, params []any) ([]byte, error) {
	*c.calls++
	return c.TwoStage.MakeRequest(method, params)
}

func TestTwoStageDispatchSharesEncodingPerFormat(t *testing.T) {
	srv1 := newIntServer(t, 1)
	defer srv1.Close()
	srv2 := newIntServer(t, 2)
	defer srv2.Close()

	calls := 0
	format := xmlrpc.Format{}
	var proxies []proxy.Proxy
	for _, srv := range []*httptest.Server{srv1, srv2} {
		ep, err := endpoint.Parse(srv.URL)
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
		proxies = append(proxies, countingTwoStage{TwoStage: proxy.NewTwoStage(ep, format, false, nil), calls: &calls})
	}

	dispatcher := TwoStageDispatch(Options{})
	CollectAll(dispatcher(proxies, wireformat.Call{Method: "pow", Params: []any{2, 10}}))

	if calls != 1 {
		t.Fatalf("expected MakeRequest invoked exactly once for the shared format, got %d", calls)
	}
}

func TestHybridDispatchFallsBackThreaded(t *testing.T) {
	srv := newIntServer(t, 7)
	defer srv.Close()

	ep, err := endpoint.Parse(srv.URL)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	plain := proxy.NewPlain(ep, xmlrpc.Format{})

	dispatcher := HybridDispatch(Options{})
	results := CollectAll(dispatcher([]proxy.Proxy{plain}, wireformat.Call{Method: "m"}))
	if len(results) != 1 || results[0].Value != 7 {
		t.Fatalf("expected a single result of 7, got %+v", results)
	}
}
