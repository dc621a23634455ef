package dispatch

// HybridDispatch is identical to TwoStageDispatch except its default
// fallback dispatcher is Threaded rather than Sequential. The
// host-based restriction on which endpoints are wrapped as two-stage
// proxies in the first place is applied earlier, at Parallel Proxy
// construction time (see package parallelproxy), not here.
func HybridDispatch(opts Options) Dispatcher {
	if opts.Fallback == nil {
		opts.Fallback = Threaded
	}
	return TwoStageDispatch(opts)
}
