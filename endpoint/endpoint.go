// Package endpoint parses and holds the immutable address of a remote
// XML-RPC server: scheme, host, and request path.
package endpoint

import (
	"errors"
	"fmt"
	"net"
	"net/url"
)

// ErrUnknownProtocol is returned when an endpoint URL's scheme is not "http".
// A caller of the facade may catch this and fall back to a plain proxy.
var ErrUnknownProtocol = errors.New("endpoint: unsupported XML-RPC protocol")

// Endpoint is a parsed, immutable XML-RPC server address. Construct with
// Parse; the zero value is not valid.
type Endpoint struct {
	raw  string
	host string // host[:port], as it appears in the URL
	path string // request path, defaulting to /RPC2
}

// Parse validates rawURL and builds an Endpoint from it.
//
// Only the "http" scheme is supported; anything else (https, ftp, ...)
// fails with ErrUnknownProtocol, wrapped with the offending scheme. A
// missing path defaults to "/RPC2", matching the historical XML-RPC
// convention.
func Parse(rawURL string) (Endpoint, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Endpoint{}, fmt.Errorf("endpoint: %w", err)
	}
	if u.Scheme != "http" {
		return Endpoint{}, fmt.Errorf("%w: %q", ErrUnknownProtocol, u.Scheme)
	}
	if u.Host == "" {
		return Endpoint{}, fmt.Errorf("endpoint: missing host in %q", rawURL)
	}

	path := u.Path
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	if path == "" {
		path = "/RPC2"
	}

	return Endpoint{raw: rawURL, host: u.Host, path: path}, nil
}

// ParseAny parses rawURL into host/path components without validating
// the scheme. It exists for building a Plain proxy's Endpoint when a URL
// carries a scheme the Two-Stage Transport can't use: the fallback
// proxy still needs a Host()/Path() to identify itself by, even though
// it will only ever be dialed over plain HTTP and so will simply fail
// at call time for e.g. "ftp://".
func ParseAny(rawURL string) (Endpoint, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Endpoint{}, fmt.Errorf("endpoint: %w", err)
	}

	path := u.Path
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	if path == "" {
		path = "/RPC2"
	}

	return Endpoint{raw: rawURL, host: u.Host, path: path}, nil
}

// String returns the original URL the Endpoint was parsed from.
func (e Endpoint) String() string { return e.raw }

// Host returns the "host[:port]" authority component, suitable for
// net.Dial and the HTTP Host header.
func (e Endpoint) Host() string { return e.host }

// Path returns the request path (defaulting to "/RPC2").
func (e Endpoint) Path() string { return e.path }

// IsLoopback reports whether the endpoint's host resolves to the loopback
// family: "localhost", 127.0.0.0/8, or ::1 — including bracketed IPv6
// forms such as "[::1]:9990". Used by the Hybrid strategy to restrict
// two-stage wrapping to local deployments by default.
func (e Endpoint) IsLoopback() bool {
	h := e.host
	if hostOnly, _, err := net.SplitHostPort(h); err == nil {
		h = hostOnly
	}
	if h == "localhost" {
		return true
	}
	ip := net.ParseIP(h)
	return ip != nil && ip.IsLoopback()
}
