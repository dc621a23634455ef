package transport

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func xmlrpcIntResponse(n int) string {
	return `<?xml version="1.0"?><methodResponse><params><param><value><int>` +
		itoa(n) + `</int></value></param></params></methodResponse>`
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	if neg {
		digits = append([]byte{'-'}, digits...)
	}
	return string(digits)
}

func newFakeServer(t *testing.T, body string) (host, path string, close func()) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "text/xml")
		w.Write([]byte(body))
	}))
	host = strings.TrimPrefix(srv.URL, "http://")
	return host, "/RPC2", srv.Close
}

func TestStartFinishRoundTrip(t *testing.T) {
	host, path, closeSrv := newFakeServer(t, xmlrpcIntResponse(7))
	defer closeSrv()

	tr := New()
	tok, err := tr.Start(host, path, []byte("<methodCall><methodName>m</methodName><params/></methodCall>"), false)
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for !tr.IsReady(tok) && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	values, fault, err := tr.Finish(tok)
	if err != nil {
		t.Fatalf("Finish failed: %v", err)
	}
	if fault != nil {
		t.Fatalf("unexpected fault: %+v", fault)
	}
	if len(values) != 1 || values[0] != 7 {
		t.Fatalf("expected [7], got %v", values)
	}
}

func TestStaleTokenIsTransportMisuse(t *testing.T) {
	host, path, closeSrv := newFakeServer(t, xmlrpcIntResponse(1))
	defer closeSrv()

	tr := New()
	first, err := tr.Start(host, path, []byte("<methodCall/>"), false)
	if err != nil {
		t.Fatalf("first Start failed: %v", err)
	}
	// A second Start on the same Transport advances the sequence counter,
	// making the first token stale.
	if _, err := tr.Start(host, path, []byte("<methodCall/>"), false); err != nil {
		t.Fatalf("second Start failed: %v", err)
	}

	if _, err := tr.Socket(first); err != ErrTransportMisuse {
		t.Fatalf("expected ErrTransportMisuse for stale token, got %v", err)
	}
}

func TestFinishNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.ReadAll(r.Body)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()
	host := strings.TrimPrefix(srv.URL, "http://")

	tr := New()
	tok, err := tr.Start(host, "/RPC2", []byte("<methodCall/>"), false)
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if _, _, err := tr.Finish(tok); err == nil {
		t.Fatal("expected an error for a non-200 response")
	}
}

func TestDialAddressDefaultsPort80(t *testing.T) {
	cases := map[string]string{
		"localhost":      "localhost:80",
		"example.com":    "example.com:80",
		"127.0.0.1":      "127.0.0.1:80",
		"[::1]":          "[::1]:80",
		"localhost:9990": "localhost:9990",
		"[::1]:9990":     "[::1]:9990",
		"127.0.0.1:9990": "127.0.0.1:9990",
	}
	for host, want := range cases {
		if got := dialAddress(host); got != want {
			t.Errorf("dialAddress(%q) = %q, want %q", host, got, want)
		}
	}
}

// countingLogger records every Printf call so the verbose trace can be
// asserted on without depending on log.Default()'s destination.
type countingLogger struct {
	lines []string
}

func (l *countingLogger) Printf(format string, v ...any) {
	l.lines = append(l.lines, fmt.Sprintf(format, v...))
}

func TestVerboseTraceGoesToLogger(t *testing.T) {
	host, path, closeSrv := newFakeServer(t, xmlrpcIntResponse(3))
	defer closeSrv()

	logger := &countingLogger{}
	tr := NewWithLogger(logger)
	tok, err := tr.Start(host, path, []byte("<methodCall/>"), true)
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for !tr.IsReady(tok) && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if _, _, err := tr.Finish(tok); err != nil {
		t.Fatalf("Finish failed: %v", err)
	}

	if len(logger.lines) == 0 {
		t.Fatal("expected verbose Start/Finish to write trace lines to the logger")
	}
}

func TestNonVerboseCallLogsNothing(t *testing.T) {
	host, path, closeSrv := newFakeServer(t, xmlrpcIntResponse(3))
	defer closeSrv()

	logger := &countingLogger{}
	tr := NewWithLogger(logger)
	tok, err := tr.Start(host, path, []byte("<methodCall/>"), false)
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for !tr.IsReady(tok) && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if _, _, err := tr.Finish(tok); err != nil {
		t.Fatalf("Finish failed: %v", err)
	}

	if len(logger.lines) != 0 {
		t.Fatalf("expected no trace lines without verbose, got %v", logger.lines)
	}
}
