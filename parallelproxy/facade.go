// Package parallelproxy implements the user-facing facade: an ordered
// list of per-endpoint proxies, routed through whichever Dispatcher
// strategy the caller selected at construction.
package parallelproxy

import (
	"errors"
	"fmt"

	"parallelxmlrpc/dispatch"
	"parallelxmlrpc/endpoint"
	"parallelxmlrpc/proxy"
	"parallelxmlrpc/registry"
	"parallelxmlrpc/transport"
	"parallelxmlrpc/wireformat"
	"parallelxmlrpc/xmlrpc"
)

// ParallelProxy holds an immutable list of per-endpoint proxies and the
// Dispatcher strategy selected at construction. Call it with Call;
// String returns a short human-readable repr.
type ParallelProxy struct {
	kind       Kind
	proxies    []proxy.Proxy
	dispatcher dispatch.Dispatcher
}

// New builds a Parallel Proxy of the given Kind from an ordered list of
// server specifiers. Each element of servers must be a string (an
// endpoint URL, parsed and wrapped per the rules below) or a
// proxy.Proxy (used as-is).
//
// For each string specifier: if the strategy's two-stage eligibility
// holds (Kind is TwoStage or Hybrid, and the host policy permits) and
// the URL parses with a supported scheme, a Two-Stage Proxy is built.
// Otherwise — including when the scheme is unsupported — a plain
// sequential proxy is built instead. A malformed URL (not merely an
// unsupported scheme) is a construction-time error returned to the
// caller.
func New(kind Kind, servers []any, opts Options) (*ParallelProxy, error) {
	localhostOnly := kind == Hybrid
	if opts.TssLocalhostOnly != nil {
		localhostOnly = *opts.TssLocalhostOnly
	}
	twoStageEligible := kind == TwoStage || kind == Hybrid
	format := xmlrpc.Format{Encoding: opts.Encoding, AllowNone: opts.AllowNone}

	proxies := make([]proxy.Proxy, 0, len(servers))
	for i, s := range servers {
		switch v := s.(type) {
		case proxy.Proxy:
			proxies = append(proxies, v)
		case string:
			p, err := buildProxy(v, twoStageEligible, localhostOnly, format, opts.Verbose, opts.Logger)
			if err != nil {
				return nil, fmt.Errorf("parallelproxy: server %d (%q): %w", i, v, err)
			}
			proxies = append(proxies, p)
		default:
			return nil, fmt.Errorf("parallelproxy: server %d: unsupported specifier type %T", i, s)
		}
	}

	return &ParallelProxy{
		kind:       kind,
		proxies:    proxies,
		dispatcher: buildDispatcher(kind, opts),
	}, nil
}

// NewParallelProxyFromRegistry builds a Parallel Proxy the same way New
// does, except the server list is resolved from source at construction
// time instead of being supplied directly — e.g. a
// registry.EtcdEndpointSource, for fanning a call out to whatever set
// of endpoints is currently registered under an etcd key prefix. The
// endpoint list is resolved once; it does not track later registry
// changes.
func NewParallelProxyFromRegistry(kind Kind, source registry.EndpointSource, opts Options) (*ParallelProxy, error) {
	urls, err := source.Endpoints()
	if err != nil {
		return nil, fmt.Errorf("parallelproxy: resolve endpoints: %w", err)
	}

	servers := make([]any, len(urls))
	for i, u := range urls {
		servers[i] = u
	}
	return New(kind, servers, opts)
}

func buildProxy(rawURL string, twoStageEligible, localhostOnly bool, format xmlrpc.Format, verbose int, logger transport.Logger) (proxy.Proxy, error) {
	ep, err := endpoint.Parse(rawURL)
	if err != nil {
		if errors.Is(err, endpoint.ErrUnknownProtocol) {
			// A caller asking for http but getting e.g. ftp falls back
			// to a plain proxy rather than failing construction.
			return proxy.NewPlain(fallbackEndpoint(rawURL), format), nil
		}
		return nil, err
	}

	if twoStageEligible && (!localhostOnly || ep.IsLoopback()) {
		return proxy.NewTwoStage(ep, format, verbose > 0, logger), nil
	}
	return proxy.NewPlain(ep, format), nil
}

// fallbackEndpoint builds a best-effort Endpoint for a scheme the
// Two-Stage machinery can't use, purely so Plain has a Host()/Path() to
// dial against. Plain always sends a plain-HTTP POST to
// "http://"+Host()+Path(), whatever scheme the original URL carried.
func fallbackEndpoint(rawURL string) endpoint.Endpoint {
	ep, _ := endpoint.ParseAny(rawURL)
	return ep
}

// Call dispatches method with the given positional params to every
// endpoint using the facade's chosen strategy, returning one Result per
// endpoint in whatever order the strategy produces.
func (f *ParallelProxy) Call(method string, params []any) <-chan dispatch.Result {
	return f.dispatcher(f.proxies, wireformat.Call{Method: method, Params: params})
}

// CollectAll dispatches method and blocks for every endpoint to finish,
// returning the results as a slice instead of a stream.
func (f *ParallelProxy) CollectAll(method string, params []any) []dispatch.Result {
	return dispatch.CollectAll(f.Call(method, params))
}

// String returns "<{Kind}ParallelServerProxy for N servers>".
func (f *ParallelProxy) String() string {
	return fmt.Sprintf("<%sParallelServerProxy for %d servers>", f.kind, len(f.proxies))
}

func buildDispatcher(kind Kind, opts Options) dispatch.Dispatcher {
	switch kind {
	case Pretend:
		return dispatch.Sequential
	case Threaded:
		return dispatch.Threaded
	case TwoStage:
		return dispatch.TwoStageDispatch(dispatch.Options{StartRateLimiter: opts.StartRateLimiter, Logger: opts.Logger})
	case Hybrid:
		return dispatch.HybridDispatch(dispatch.Options{StartRateLimiter: opts.StartRateLimiter, Logger: opts.Logger})
	default:
		return dispatch.Sequential
	}
}
