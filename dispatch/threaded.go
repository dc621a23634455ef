package dispatch

import (
	"sync"

	"parallelxmlrpc/proxy"
	"parallelxmlrpc/wireformat"
)

// Threaded spawns one goroutine per proxy, each running the same
// per-proxy call Sequential uses, and delivers results as workers
// complete — not in input order.
func Threaded(proxies []proxy.Proxy, call wireformat.Call) <-chan Result {
	out := make(chan Result, len(proxies))
	var wg sync.WaitGroup
	wg.Add(len(proxies))
	for _, p := range proxies {
		go func(p proxy.Proxy) {
			defer wg.Done()
			out <- callOne(p, call)
		}(p)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}
