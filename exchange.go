package polydaq

import (
	"bytes"
	"strings"
	"time"
)

// MaxReply bounds the bytes an exchange collects while waiting for its
// line-feed
const MaxReply = 1024

// Exchange is one request/response transaction with the board. The reply
// grows until the first line-feed, after which the exchange is done.
type Exchange struct {
	Channel int // NoChannel for requests that are not analog reads
	Request byte
	Started time.Time

	buf  []byte
	done bool
}

// NewExchange starts an exchange for request on channel
func NewExchange(channel int, request byte) *Exchange {
	return &Exchange{
		Channel: channel,
		Request: request,
		Started: time.Now(),
	}
}

// Feed appends device bytes to the reply, up to and including the first
// line-feed. It reports whether the exchange is now complete and returns
// the bytes that followed the line-feed, which belong to someone else.
// A reply that reaches MaxReply bytes without a line-feed is cut there and
// completes the exchange. Feeding a completed exchange returns p untouched.
func (e *Exchange) Feed(p []byte) (bool, []byte) {
	if e.done {
		return true, p
	}

	n, complete := len(p), false
	if i := bytes.IndexByte(p, '\n'); i >= 0 {
		n, complete = i+1, true
	}
	if room := MaxReply - len(e.buf); n >= room {
		n, complete = room, true
	}

	e.buf = append(e.buf, p[:n]...)
	if !complete {
		return false, nil
	}
	e.done = true
	return true, p[n:]
}

// Done reports whether the terminating line-feed has been seen
func (e *Exchange) Done() bool {
	return e.done
}

// Bytes returns the raw reply collected so far, line-feed included once done
func (e *Exchange) Bytes() []byte {
	return e.buf
}

// Response returns the reply without its line ending
func (e *Exchange) Response() string {
	return strings.TrimRight(string(e.buf), "\r\n")
}
