package dispatch

import (
	"golang.org/x/time/rate"

	"parallelxmlrpc/transport"
)

// Options configures the Two-Stage and Hybrid dispatchers.
type Options struct {
	// Fallback dispatches every proxy that isn't TwoStageCapable.
	// TwoStageDispatch defaults this to Sequential; HybridDispatch
	// defaults it to Threaded.
	Fallback Dispatcher

	// StartRateLimiter, if set, paces how fast StartRequest writes are
	// issued across a large fan-out so that a caller targeting
	// thousands of endpoints doesn't open thousands of sockets in the
	// same instant. This throttles *when* a write happens; it is not a
	// retry policy, a connection reuse mechanism, or a per-endpoint
	// timeout.
	StartRateLimiter *rate.Limiter

	// Logger receives the dispatcher's own diagnostics, chiefly a
	// failed multi-socket readiness poll in the Two-Stage readiness
	// loop. nil defaults to log.Default().
	Logger transport.Logger
}
