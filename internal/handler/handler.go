// Package handler maps raw request bytes to complete response bytes.
//
// The routing surface is deliberately tiny: only the first request line is
// inspected, matched exactly against a static table. Handlers are pure
// with respect to the connection; the caller owns all I/O.
package handler

import (
	"bytes"
	"fmt"
	"time"
)

// Recognized request lines. Matching is exact and case-sensitive,
// method, path and version included.
const (
	rootRequestLine  = "GET / HTTP/1.1"
	sleepRequestLine = "GET /sleep HTTP/1.1"
)

// Response status lines.
const (
	statusOK       = "200 OK"
	statusNotFound = "404 NOT FOUND"
)

// Handler classifies a request line and produces the full response byte
// sequence for it. It holds no per-request state and is safe for
// concurrent use from multiple workers.
type Handler struct {
	successBody  []byte
	notFoundBody []byte

	// slowDelay is how long the sleep route suspends the calling
	// worker before responding. Configurable so tests can keep it
	// short.
	slowDelay time.Duration
}

// New builds a Handler serving successBody on the root route and
// notFoundBody everywhere else. The sleep route serves successBody after
// suspending the caller for slowDelay.
func New(successBody, notFoundBody []byte, slowDelay time.Duration) *Handler {
	return &Handler{
		successBody:  successBody,
		notFoundBody: notFoundBody,
		slowDelay:    slowDelay,
	}
}

// Handle inspects the request line at the start of raw and returns the
// complete response to write back. For the sleep route it blocks the
// calling goroutine for the configured delay first; that suspension is
// what lets a slow request occupy exactly one pool worker.
func (h *Handler) Handle(raw []byte) []byte {
	switch RequestLine(raw) {
	case rootRequestLine:
		return Response(statusOK, h.successBody)
	case sleepRequestLine:
		time.Sleep(h.slowDelay)
		return Response(statusOK, h.successBody)
	default:
		return Response(statusNotFound, h.notFoundBody)
	}
}

// RequestLine extracts the first line of a raw request, without the
// trailing CRLF. A read that never saw a CRLF is returned whole; the
// routing table will not match it and the caller gets the not-found
// response.
func RequestLine(raw []byte) string {
	if i := bytes.Index(raw, []byte("\r\n")); i >= 0 {
		return string(raw[:i])
	}
	return string(raw)
}

// Response frames a minimal HTTP response: status line, Content-Length,
// blank line, body. The connection is closed by the caller after the
// write, so no other headers are needed.
func Response(status string, body []byte) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "HTTP/1.1 %s\r\nContent-Length: %d\r\n\r\n", status, len(body))
	buf.Write(body)
	return buf.Bytes()
}
