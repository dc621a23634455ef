// Package dispatch implements the four fan-out strategies: Sequential,
// Threaded, TwoStage, and Hybrid. Every strategy shares one contract —
// given a list of per-endpoint proxies and a call, produce exactly one
// Result per proxy — so a Parallel Proxy facade can swap strategies
// without any other code changing.
package dispatch

import (
	"parallelxmlrpc/endpoint"
	"parallelxmlrpc/proxy"
	"parallelxmlrpc/wireformat"
)

// Result is a per-call result: exactly one of Value/Err is populated. A
// Fault counts as Err.
type Result struct {
	Endpoint endpoint.Endpoint
	Value    any
	Err      error
}

// Dispatcher is a fan-out strategy: it takes every proxy plus one call
// and streams back exactly one Result per proxy. Results are delivered
// as they arrive rather than collected into a slice; CollectAll adapts
// that into a list-returning shape for callers that want it.
//
// Only Sequential preserves input order; Threaded, TwoStage, and Hybrid
// deliver results in completion order.
type Dispatcher func(proxies []proxy.Proxy, call wireformat.Call) <-chan Result

// CollectAll drains a Dispatcher's channel into a slice, for callers
// that want a list-returning shape instead of a live stream.
func CollectAll(results <-chan Result) []Result {
	all := make([]Result, 0)
	for r := range results {
		all = append(all, r)
	}
	return all
}
