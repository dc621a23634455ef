package dispatch

import (
	"context"
	"log"

	"golang.org/x/time/rate"

	"parallelxmlrpc/proxy"
	"parallelxmlrpc/transport"
	"parallelxmlrpc/wireformat"
	"parallelxmlrpc/xmlrpc"
)

// pending pairs a TwoStageCapable proxy with the outcome its start
// produced, so the readiness loop can finish the right proxy once its
// socket signals.
type pending struct {
	p proxy.TwoStageCapable
	o proxy.StartOutcome
}

// TwoStageDispatch builds the pipelined dispatcher: split proxies into
// two-stage-capable (T) and others (O); encode each distinct request
// format once and reuse the body across every proxy sharing it; issue
// every T write before reading any T response; run the fallback
// dispatcher over O; then multiplex T's sockets with a single readiness
// loop, finishing each as it signals.
func TwoStageDispatch(opts Options) Dispatcher {
	fallback := opts.Fallback
	if fallback == nil {
		fallback = Sequential
	}
	limiter := opts.StartRateLimiter
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return func(proxies []proxy.Proxy, call wireformat.Call) <-chan Result {
		out := make(chan Result, len(proxies))

		go func() {
			defer close(out)

			var tssps []proxy.TwoStageCapable
			var others []proxy.Proxy
			for _, p := range proxies {
				if tsc, ok := p.(proxy.TwoStageCapable); ok {
					tssps = append(tssps, tsc)
				} else {
					others = append(others, p)
				}
			}

			started := startAll(tssps, call, limiter)

			if len(others) > 0 {
				for r := range fallback(others, call) {
					out <- r
				}
			}

			drainReadinessLoop(started, out, logger)
		}()

		return out
	}
}

// startAll implements the shared-encoding optimization: make_request is
// invoked exactly once per distinct request format, and every proxy
// sharing that format reuses the resulting body.
func startAll(tssps []proxy.TwoStageCapable, call wireformat.Call, limiter *rate.Limiter) []pending {
	type encoded struct {
		body []byte
		err  error
	}
	bodies := make(map[xmlrpc.Format]encoded)

	started := make([]pending, 0, len(tssps))
	for _, p := range tssps {
		fmt := p.RequestFormat()
		enc, ok := bodies[fmt]
		if !ok {
			body, err := p.MakeRequest(call.Method, call.Params)
			enc = encoded{body: body, err: err}
			bodies[fmt] = enc
		}

		if enc.err != nil {
			started = append(started, pending{p: p, o: proxy.FailedStart(enc.err)})
			continue
		}

		if limiter != nil {
			limiter.Wait(context.Background())
		}
		started = append(started, pending{p: p, o: p.StartRequest(enc.body)})
	}
	return started
}

// drainReadinessLoop finishes proxies as their sockets become ready:
// proxies whose start already failed (no socket) are finished last;
// everything else is multiplexed through transport.WaitAny until every
// socket has signaled.
func drainReadinessLoop(started []pending, out chan<- Result, logger transport.Logger) {
	waiting := make(map[int]pending, len(started))
	var errored []pending

	for _, s := range started {
		fd, ok := s.p.Socket(s.o)
		if !ok {
			errored = append(errored, s)
			continue
		}
		waiting[fd] = s
	}

	for len(waiting) > 0 {
		fds := make([]int, 0, len(waiting))
		for fd := range waiting {
			fds = append(fds, fd)
		}

		ready, err := transport.WaitAny(fds, -1)
		if err != nil {
			// Poll itself failed: treat every outstanding socket as
			// ready so finish surfaces the real error per-proxy instead
			// of hanging the whole fan-out.
			logger.Printf("dispatch: readiness poll failed, finishing all outstanding sockets: %v", err)
			ready = fds
		}
		if len(ready) == 0 {
			continue
		}

		for _, fd := range ready {
			s := waiting[fd]
			delete(waiting, fd)
			v, err := s.p.FinishRequest(s.o)
			out <- Result{Endpoint: s.p.Endpoint(), Value: v, Err: err}
		}
	}

	for _, s := range errored {
		v, err := s.p.FinishRequest(s.o)
		out <- Result{Endpoint: s.p.Endpoint(), Value: v, Err: err}
	}
}
