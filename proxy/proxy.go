// Package proxy implements the per-endpoint request lifecycle: the
// Two-Stage Proxy, which can split a call into a write phase and a
// deferred read phase, and a plain Proxy that performs an ordinary
// synchronous XML-RPC call for endpoints the Two-Stage protocol cannot
// or should not be used against.
//
// There is no balancer here: a fan-out calls every endpoint, it never
// picks one.
package proxy

import (
	"parallelxmlrpc/endpoint"
	"parallelxmlrpc/xmlrpc"
)

// Proxy is satisfied by any per-endpoint proxy usable by a dispatcher:
// a synchronous, all-or-nothing XML-RPC call. Both Plain and TwoStage
// implement it, so Sequential and Threaded dispatch never need to know
// which kind of proxy they are driving.
type Proxy interface {
	Endpoint() endpoint.Endpoint
	Call(method string, params []any) (any, error)
}

// TwoStageCapable is implemented only by proxies that support the
// three-phase Two-Stage lifecycle. The Two-Stage and Hybrid dispatchers
// type-assert a Proxy against this interface to partition their input
// into pipelineable and non-pipelineable endpoints.
type TwoStageCapable interface {
	Proxy
	RequestFormat() xmlrpc.Format
	MakeRequest(method string, params []any) ([]byte, error)
	StartRequest(body []byte) StartOutcome
	Socket(o StartOutcome) (int, bool)
	IsReady(o StartOutcome) bool
	FinishRequest(o StartOutcome) (any, error)
}
