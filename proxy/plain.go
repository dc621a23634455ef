package proxy

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	"parallelxmlrpc/endpoint"
	"parallelxmlrpc/xmlrpc"
)

// Plain is a synchronous, non-pipelined XML-RPC proxy built on
// net/http.Client. It backs every endpoint a Two-Stage Proxy can't be
// used for: a non-"http" scheme, a remote host under Hybrid's loopback
// policy, or an explicit opt-out. It is the proxy built from every URL
// given to a Pretend or Threaded Parallel Proxy; a two-stage-capable
// endpoint handed to Sequential or Threaded is driven through its own
// TwoStage.Call instead.
type Plain struct {
	endpoint endpoint.Endpoint
	client   *http.Client
	format   xmlrpc.Format
}

// NewPlain builds a Plain proxy for ep using format for every call.
func NewPlain(ep endpoint.Endpoint, format xmlrpc.Format) *Plain {
	return &Plain{endpoint: ep, client: &http.Client{}, format: format}
}

func (p *Plain) Endpoint() endpoint.Endpoint { return p.endpoint }

// Call performs one complete XML-RPC round trip: encode, POST, decode.
func (p *Plain) Call(method string, params []any) (any, error) {
	body, err := xmlrpc.Marshal(method, params, p.format)
	if err != nil {
		return nil, fmt.Errorf("proxy: encode %s: %w", method, err)
	}

	url := "http://" + p.endpoint.Host() + p.endpoint.Path()
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("proxy: build request: %w", err)
	}
	req.Header.Set("Content-Type", "text/xml")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("proxy: call %s: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("proxy: unexpected HTTP status %s", resp.Status)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("proxy: read response: %w", err)
	}

	values, fault, err := xmlrpc.Unmarshal(respBody)
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
