package proxy

import (
	"fmt"

	"parallelxmlrpc/endpoint"
	"parallelxmlrpc/transport"
	"parallelxmlrpc/xmlrpc"
)

// TwoStage is one endpoint's Two-Stage Proxy: it owns a single
// Transport and exposes the three-phase request lifecycle (MakeRequest,
// StartRequest, FinishRequest) that lets a dispatcher overlap many
// endpoints' network round trips.
type TwoStage struct {
	endpoint  endpoint.Endpoint
	transport *transport.Transport
	format    xmlrpc.Format
	verbose   bool
}

// NewTwoStage builds a Two-Stage Proxy for ep. ep must have been parsed
// with endpoint.Parse (which already rejects non-"http" schemes), so
// construction here cannot fail. A nil logger defaults the underlying
// Transport's verbose trace to log.Default().
func NewTwoStage(ep endpoint.Endpoint, format xmlrpc.Format, verbose bool, logger transport.Logger) *TwoStage {
	return &TwoStage{
		endpoint:  ep,
		transport: transport.NewWithLogger(logger),
		format:    format,
		verbose:   verbose,
	}
}

func (p *TwoStage) Endpoint() endpoint.Endpoint { return p.endpoint }

// RequestFormat returns this proxy's (encoding, allow-none) key. Two
// proxies with an equal RequestFormat produce byte-identical bodies for
// equal calls, which is what the Two-Stage dispatcher's shared-encoding
// optimization groups on.
func (p *TwoStage) RequestFormat() xmlrpc.Format { return p.format }

// MakeRequest is a pure encoding step: no I/O.
func (p *TwoStage) MakeRequest(method string, params []any) ([]byte, error) {
	body, err := xmlrpc.Marshal(method, params, p.format)
	if err != nil {
		return nil, fmt.Errorf("proxy: encode %s: %w", method, err)
	}
	return body, nil
}

// StartRequest delegates to the Transport; any failure is captured into
// the returned StartOutcome instead of being returned as an error, so
// one endpoint's connect/write failure never aborts the fan-out.
func (p *TwoStage) StartRequest(body []byte) StartOutcome {
	tok, err := p.transport.Start(p.endpoint.Host(), p.endpoint.Path(), body, p.verbose)
	if err != nil {
		return FailedStart(err)
	}
	return Started(tok)
}

// Socket returns the outcome's socket descriptor for readiness polling,
// or (-1, false) if the outcome already captured a start-time error.
func (p *TwoStage) Socket(o StartOutcome) (int, bool) {
	if o.Failed() {
		return -1, false
	}
	fd, err := p.transport.Socket(o.token)
	if err != nil {
		return -1, false
	}
	return fd, true
}

// IsReady reports true for a captured start-time error too, so that it
// surfaces immediately in FinishRequest rather than being polled forever.
func (p *TwoStage) IsReady(o StartOutcome) bool {
	if o.Failed() {
		return true
	}
	return p.transport.IsReady(o.token)
}

// FinishRequest unwraps a single-element response into its lone value,
// normalizes Faults and transport errors into the error slot, and never
// panics or returns partially-populated results.
func (p *TwoStage) FinishRequest(o StartOutcome) (any, error) {
	if o.Failed() {
		return nil, o.err
	}
	values, fault, err := p.transport.Finish(o.token)
	if err != nil {
		return nil, err
	}
	if fault != nil {
		return nil, fault
	}
	if len(values) == 1 {
		return values[0], nil
	}
	return values, nil
}

// Request is the synchronous convenience form: finish(start(make(...))).
// An encode failure short-circuits straight to the error slot without
// ever touching the network.
func (p *TwoStage) Request(method string, params []any) (any, error) {
	body, err := p.MakeRequest(method, params)
	if err != nil {
		return nil, err
	}
	return p.FinishRequest(p.StartRequest(body))
}

// Call implements Proxy so a Two-Stage Proxy can also be driven
// synchronously by the Sequential and Threaded dispatchers.
func (p *TwoStage) Call(method string, params []any) (any, error) {
	return p.Request(method, params)
}
