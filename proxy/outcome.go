package proxy

import "parallelxmlrpc/transport"

// StartOutcome is an explicit sum type representing the result of
// starting a Two-Stage request: either a live Token (Started) or a
// captured error (Failed). Exactly one of the two is meaningful;
// callers branch on Failed() rather than doing a type assertion on an
// interface{}.
type StartOutcome struct {
	token   transport.Token
	started bool
	err     error
}

// Started wraps a Token returned by a successful Transport.Start.
func Started(tok transport.Token) StartOutcome {
	return StartOutcome{token: tok, started: true}
}

// FailedStart wraps an error encountered while starting a request, so
// that one endpoint's failure never aborts the fan-out. It is finished
// like any other outcome: FinishRequest surfaces the captured error.
//
// FailedStart exists so a start-time failure (dial refused, write
// failed) can flow through the exact same finish path as a successful
// one, instead of needing a special case at every call site.
func FailedStart(err error) StartOutcome {
	return StartOutcome{err: err}
}

// Failed reports whether this outcome captured a start-time error
// instead of a live token.
func (o StartOutcome) Failed() bool { return !o.started }
