// Package transport implements the Two-Stage Transport: it splits one
// XML-RPC-over-HTTP round-trip into a write phase (Start) and a
// deferred read phase (Finish), so that a single goroutine can drive
// many in-flight calls by polling their sockets for readiness instead
// of blocking on each one in turn.
//
// A Two-Stage Proxy owns exactly one Transport, and a Transport never
// has concurrent start/finish phases for different tokens: it opens a
// fresh connection per call and is driven entirely by its caller.
package transport

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"strings"
	"sync"

	"parallelxmlrpc/xmlrpc"
)

// ErrTransportMisuse is returned when a Token is presented to Socket,
// IsReady, or Finish after the Transport has moved on to a later
// sequence number — i.e. the token is stale or belongs to a different
// Transport. A library must never terminate its host process over a
// caller bug, so misuse surfaces as this typed error instead of a panic.
var ErrTransportMisuse = errors.New("transport: token is stale or belongs to another transport")

var errNoRawConn = errors.New("transport: connection does not expose a raw file descriptor")

const userAgent = "parallelxmlrpc/1.0"

// Logger is the diagnostic sink a Transport writes its verbose
// send/reply trace to — the Go equivalent of the original's
// set_debuglevel(1) output. *log.Logger satisfies it, and it is what
// log.Default() returns, which is what every Transport uses unless a
// caller supplies its own via NewWithLogger.
type Logger interface {
	Printf(format string, v ...any)
}

// Token is the opaque in-flight handle returned by Start and consumed by
// Socket/IsReady/Finish: a (connection, verbose flag, sequence number)
// triple.
type Token struct {
	conn    net.Conn
	fd      int
	seq     uint64
	verbose bool
}

// Transport owns at most one live in-flight Token at a time. Start and
// Finish are serialized by mu; the sequence assertion in Socket/IsReady/
// Finish guarantees no overlapped use of a stale token.
type Transport struct {
	mu     sync.Mutex
	seq    uint64
	logger Logger
}

// New returns an idle Transport that logs its verbose trace to
// log.Default().
func New() *Transport {
	return NewWithLogger(nil)
}

// NewWithLogger returns an idle Transport that logs its verbose
// send/reply trace to logger. A nil logger falls back to log.Default(),
// same as New.
func NewWithLogger(logger Logger) *Transport {
	if logger == nil {
		logger = log.Default()
	}
	return &Transport{logger: logger}
}

// Start increments the sequence counter, opens a fresh HTTP connection
// to host, and writes the request line, Host header, User-Agent header,
// and body. On any failure the connection is closed and the error is
// returned; the caller never receives a Token representing a half-open
// connection.
func (t *Transport) Start(host, path string, body []byte, verbose bool) (Token, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.seq++
	seq := t.seq

	conn, err := net.Dial("tcp", dialAddress(host))
	if err != nil {
		return Token{}, fmt.Errorf("transport: connect to %s: %w", host, err)
	}

	if verbose {
		t.logger.Printf("send: POST %s HTTP/1.0 (%d bytes) to %s", path, len(body), host)
	}

	if err := writeRequest(conn, host, path, body); err != nil {
		conn.Close()
		return Token{}, fmt.Errorf("transport: write request to %s: %w", host, err)
	}

	fd, err := socketFD(conn)
	if err != nil {
		conn.Close()
		return Token{}, fmt.Errorf("transport: inspect socket for %s: %w", host, err)
	}

	return Token{conn: conn, fd: fd, seq: seq, verbose: verbose}, nil
}

// Socket returns the underlying socket descriptor for readiness polling.
// It asserts that tok.seq equals the Transport's current sequence.
func (t *Transport) Socket(tok Token) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if tok.seq != t.seq {
		return -1, ErrTransportMisuse
	}
	return tok.fd, nil
}

// IsReady performs a non-blocking readiness check: true iff the token's
// socket is readable or in an error state. On poll failure it returns
// true too, so that the caller proceeds to Finish and surfaces the
// underlying error there instead of spinning forever.
func (t *Transport) IsReady(tok Token) bool {
	fd, err := t.Socket(tok)
	if err != nil {
		return true
	}
	ready, err := pollReadable(fd, 0)
	if err != nil {
		return true
	}
	return ready
}

// Finish asserts tok.seq matches the current sequence, reads the HTTP
// response, and — for a 200 status — decodes the XML-RPC body via the
// codec bridge. Any non-Fault failure closes the connection before
// returning.
func (t *Transport) Finish(tok Token) (values []any, fault *xmlrpc.Fault, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	defer tok.conn.Close()

	if tok.seq != t.seq {
		return nil, nil, ErrTransportMisuse
	}

	resp, err := http.ReadResponse(bufio.NewReader(tok.conn), nil)
	if err != nil {
		return nil, nil, fmt.Errorf("transport: read response: %w", err)
	}
	defer resp.Body.Close()

	if tok.verbose {
		t.logger.Printf("reply: %s", resp.Status)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("transport: unexpected HTTP status %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("transport: read response body: %w", err)
	}

	if tok.verbose {
		t.logger.Printf("body: %s", body)
	}

	return xmlrpc.Unmarshal(body)
}

// dialAddress returns host suitable for net.Dial, defaulting to port 80
// when host carries none — spec-valid endpoint URLs like
// "http://localhost/" parse to a Host() with no port, and net.Dial
// requires one. This matches the original's and the Plain proxy's
// (net/http) implicit port-80 default for plain http URLs.
func dialAddress(host string) string {
	if _, _, err := net.SplitHostPort(host); err == nil {
		return host
	}
	h := strings.TrimPrefix(strings.TrimSuffix(host, "]"), "[")
	return net.JoinHostPort(h, "80")
}

func writeRequest(conn net.Conn, host, path string, body []byte) error {
	w := bufio.NewWriter(conn)
	fmt.Fprintf(w, "POST %s HTTP/1.0\r\n", path)
	fmt.Fprintf(w, "Host: %s\r\n", host)
	fmt.Fprintf(w, "User-Agent: %s\r\n", userAgent)
	io.WriteString(w, "Content-Type: text/xml\r\n")
	io.WriteString(w, "Connection: close\r\n")
	fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", len(body))
	if _, err := w.Write(body); err != nil {
		return err
	}
	return w.Flush()
}
