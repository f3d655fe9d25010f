// Package console runs the interactive PolyDAQ console: one keystroke and
// one link step per tick, with a single exchange in flight at a time.
package console

import (
	"bytes"
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/allbin/polydaq"
)

// ErrInputClosed is returned by Run when the keystroke source ends
var ErrInputClosed = errors.New("console: input closed")

// maxLine bounds an unsolicited line still waiting for its line-feed
const maxLine = polydaq.MaxReply

// Config holds the console timing and request encoding
type Config struct {
	RetryDelay        time.Duration // wait before each reopen attempt
	PollInterval      time.Duration // wait between link reads while open
	UppercaseRequests bool          // send 'A'-'F' for channels 10-15
	ExchangeTimeout   time.Duration // zero waits for the line-feed or link loss
}

// DefaultConfig returns a one second retry and a 100ms poll
func DefaultConfig() Config {
	return Config{
		RetryDelay:   time.Second,
		PollInterval: 100 * time.Millisecond,
	}
}

// Option configures a Console
type Option func(*Console)

// WithConfig replaces the default timing
func WithConfig(cfg Config) Option {
	return func(c *Console) {
		c.cfg = cfg
	}
}

// WithLogger sets the logger for diagnostics
func WithLogger(log *zap.Logger) Option {
	return func(c *Console) {
		if log != nil {
			c.log = log
		}
	}
}

// WithClock sets the time source used for event stamps and timeouts
func WithClock(now func() time.Time) Option {
	return func(c *Console) {
		c.now = now
	}
}

// WithSleeper replaces the wait between ticks
func WithSleeper(sleep func(context.Context, time.Duration) error) Option {
	return func(c *Console) {
		c.sleep = sleep
	}
}

// Console drives a Link from operator keystrokes. It owns the link and the
// pending exchange and is used from a single goroutine.
type Console struct {
	cfg     Config
	link    *polydaq.Link
	pending *polydaq.Exchange
	partial []byte
	report  Reporter
	log     *zap.Logger
	now     func() time.Time
	sleep   func(context.Context, time.Duration) error
}

// New returns a console for link. A nil reporter discards events.
func New(link *polydaq.Link, reporter Reporter, opts ...Option) *Console {
	if reporter == nil {
		reporter = discard{}
	}
	c := &Console{
		cfg:    DefaultConfig(),
		link:   link,
		report: reporter,
		log:    zap.NewNop(),
		now:    time.Now,
		sleep:  sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Link returns the link the console drives
func (c *Console) Link() *polydaq.Link {
	return c.link
}

// Pending returns the exchange awaiting its line-feed, or nil
func (c *Console) Pending() *polydaq.Exchange {
	return c.pending
}

// Interval returns how long to wait before the next Service call
func (c *Console) Interval() time.Duration {
	if c.link.IsOpen() {
		return c.cfg.PollInterval
	}
	return c.cfg.RetryDelay
}

// ReportPorts announces the candidate ports found at startup
func (c *Console) ReportPorts(ports []string) {
	c.emit(Event{Kind: EventPorts, Ports: ports})
}

// HandleKey dispatches one keystroke and carries out the resulting action,
// except Quit which is left to the caller.
func (c *Console) HandleKey(ch rune) polydaq.Action {
	action := polydaq.Dispatch(ch)

	switch action.Kind {
	case polydaq.ActionHelp:
		c.emit(Event{Kind: EventHelp})
	case polydaq.ActionUnknown:
		c.emit(Event{Kind: EventUnknown, Char: ch})
	case polydaq.ActionReadChannel:
		c.request(action.Channel)
	}
	return action
}

func (c *Console) request(channel int) {
	if !c.link.IsOpen() {
		c.log.Debug("read dropped, link closed", zap.Int("channel", channel))
		c.emit(Event{Kind: EventDropped, Channel: channel})
		return
	}
	if c.pending != nil {
		c.emit(Event{Kind: EventBusy, Channel: channel, Char: rune(c.pending.Request)})
		return
	}

	req, err := polydaq.RequestByte(channel, c.cfg.UppercaseRequests)
	if err != nil {
		c.log.Error("bad channel", zap.Int("channel", channel), zap.Error(err))
		return
	}

	if err := c.link.TryWrite([]byte{req}); err != nil {
		c.lost(err)
		return
	}

	c.pending = polydaq.NewExchange(channel, req)
	c.pending.Started = c.now()
	c.emit(Event{Kind: EventRequest, Channel: channel, Char: rune(req)})
}

// Service performs one link step: an open attempt while Closed, otherwise a
// non-blocking read fed to the pending exchange. It never sleeps.
func (c *Console) Service() {
	if !c.link.IsOpen() {
		if err := c.link.Open(); err != nil {
			return
		}
		c.emit(Event{Kind: EventLinkOpen, Path: c.link.Path()})
		return
	}

	data, err := c.link.TryRead()
	if err != nil {
		c.lost(err)
		return
	}
	c.feed(data)
	c.expire()
}

// feed routes device bytes. A line the board started on its own is
// finished before any reply is collected.
func (c *Console) feed(data []byte) {
	for len(data) > 0 {
		if c.pending != nil && len(c.partial) == 0 {
			done, rest := c.pending.Feed(data)
			if !done {
				return
			}
			ex := c.pending
			c.pending = nil
			c.emit(Event{Kind: EventReading, Channel: ex.Channel, Char: rune(ex.Request), Text: ex.Response()})
			data = rest
			continue
		}

		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			c.partial = append(c.partial, data...)
			if len(c.partial) >= maxLine {
				c.flushPartial()
			}
			return
		}
		c.partial = append(c.partial, data[:i]...)
		c.flushPartial()
		data = data[i+1:]
	}
}

func (c *Console) flushPartial() {
	line := string(bytes.TrimRight(c.partial, "\r"))
	c.partial = c.partial[:0]
	c.emit(Event{Kind: EventUnsolicited, Text: line})
}

func (c *Console) expire() {
	if c.pending == nil || c.cfg.ExchangeTimeout <= 0 {
		return
	}
	if c.now().Sub(c.pending.Started) < c.cfg.ExchangeTimeout {
		return
	}
	c.emit(Event{Kind: EventTimeout, Channel: c.pending.Channel, Char: rune(c.pending.Request)})
	c.pending = nil
}

// lost discards the exchange after the link failed
func (c *Console) lost(cause error) {
	if c.pending != nil {
		c.emit(Event{Kind: EventAbandoned, Channel: c.pending.Channel, Char: rune(c.pending.Request)})
		c.pending = nil
	}
	c.partial = c.partial[:0]
	c.emit(Event{Kind: EventLinkClosed, Path: c.link.Path(), Err: cause})
}

// Close abandons any pending exchange and releases the link
func (c *Console) Close() error {
	c.pending = nil
	c.partial = c.partial[:0]
	if !c.link.IsOpen() {
		return nil
	}
	err := c.link.Close()
	c.emit(Event{Kind: EventLinkClosed, Path: c.link.Path()})
	return err
}

// Run is the tick loop. Each tick takes at most one key from keys, then
// either waits RetryDelay and tries to open the link or services the open
// link and waits PollInterval. It returns nil on Quit, ErrInputClosed when
// keys is closed, and the context error on cancellation. The link is left
// as it is; Close releases it.
func (c *Console) Run(ctx context.Context, keys <-chan rune) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ch, ok := <-keys:
			if !ok {
				return ErrInputClosed
			}
			if c.HandleKey(ch).Kind == polydaq.ActionQuit {
				return nil
			}
		default:
		}

		if !c.link.IsOpen() {
			if err := c.sleep(ctx, c.cfg.RetryDelay); err != nil {
				return err
			}
			c.Service()
			continue
		}

		c.Service()
		if err := c.sleep(ctx, c.cfg.PollInterval); err != nil {
			return err
		}
	}
}

func (c *Console) emit(ev Event) {
	if ev.Time.IsZero() {
		ev.Time = c.now()
	}
	if !channelEvent(ev.Kind) {
		ev.Channel = polydaq.NoChannel
	}
	c.log.Debug("event", zap.Stringer("kind", ev.Kind), zap.Int("channel", ev.Channel))
	c.report.Report(ev)
}

func channelEvent(k EventKind) bool {
	switch k {
	case EventRequest, EventBusy, EventDropped, EventReading, EventAbandoned, EventTimeout:
		return true
	}
	return false
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
