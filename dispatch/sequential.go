package dispatch

import (
	"parallelxmlrpc/proxy"
	"parallelxmlrpc/wireformat"
)

// Sequential calls each proxy in turn, preserving input order. It has
// no parallelism: it is the simplest strategy, used both directly and
// as the Two-Stage dispatcher's default fallback for endpoints that
// aren't two-stage-capable.
func Sequential(proxies []proxy.Proxy, call wireformat.Call) <-chan Result {
	out := make(chan Result, len(proxies))
	go func() {
		defer close(out)
		for _, p := range proxies {
			out <- callOne(p, call)
		}
	}()
	return out
}

func callOne(p proxy.Proxy, call wireformat.Call) Result {
	v, err := p.Call(call.Method, call.Params)
	return Result{Endpoint: p.Endpoint(), Value: v, Err: err}
}
