package parallelproxy

import (
	"golang.org/x/time/rate"

	"parallelxmlrpc/transport"
)

// Options holds every constructor-time knob a Parallel Proxy accepts.
// There is no config file or flag parsing anywhere in this module:
// every knob is an explicit Go value passed at construction.
type Options struct {
	// Encoding names the XML declaration's encoding attribute.
	Encoding string
	// AllowNone permits marshalling nil as an XML-RPC <nil/> value.
	AllowNone bool
	// UseDatetime is accepted for API parity with other XML-RPC client
	// libraries; this module always decodes dateTime.iso8601 values to
	// time.Time, so there is no "leave it as a string" mode to opt out of.
	UseDatetime bool
	// Verbose is the two-stage transport's debug-verbosity flag: a
	// positive value turns on the send/reply trace each Two-Stage
	// Transport writes to Logger, mirroring the original's
	// set_debuglevel(1).
	Verbose int
	// Logger receives every Two-Stage Transport's verbose trace and the
	// dispatcher's own diagnostics (e.g. a failed readiness poll). nil
	// defaults to log.Default(), same as the teacher's plain use of the
	// standard library logger.
	Logger transport.Logger
	// TssLocalhostOnly restricts two-stage wrapping to loopback
	// endpoints. nil selects the strategy's default: true for Hybrid,
	// false for every other Kind.
	TssLocalhostOnly *bool
	// StartRateLimiter optionally paces TwoStage/Hybrid's start writes
	// (see dispatch.Options.StartRateLimiter).
	StartRateLimiter *rate.Limiter
}

// BoolPtr is a small convenience for setting Options.TssLocalhostOnly,
// which must distinguish "not set" (nil) from an explicit false.
func BoolPtr(b bool) *bool { return &b }
