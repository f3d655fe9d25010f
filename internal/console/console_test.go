package console

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allbin/polydaq"
)

// fakePort stands in for the board. Queued chunks are returned one per
// TryRead; readErr is returned once the queue is empty.
type fakePort struct {
	incoming [][]byte
	written  []byte
	readErr  error
	writeErr error
	closes   int
}

func (f *fakePort) TryRead(buf []byte) (int, error) {
	if len(f.incoming) == 0 {
		return 0, f.readErr
	}
	n := copy(buf, f.incoming[0])
	f.incoming = f.incoming[1:]
	return n, nil
}

func (f *fakePort) TryWrite(data []byte) (int, error) {
	if f.writeErr != nil {
		return 0, f.writeErr
	}
	f.written = append(f.written, data...)
	return len(data), nil
}

func (f *fakePort) FlushInput() error { return nil }

func (f *fakePort) Close() error {
	f.closes++
	return nil
}

func (f *fakePort) send(s string) {
	f.incoming = append(f.incoming, []byte(s))
}

// opener hands out ports in order; a nil entry or an empty queue fails
type opener struct {
	ports []*fakePort
	calls int
}

func (o *opener) open(string) (polydaq.Port, error) {
	o.calls++
	if len(o.ports) == 0 {
		return nil, polydaq.ErrDeviceNotFound
	}
	p := o.ports[0]
	o.ports = o.ports[1:]
	if p == nil {
		return nil, polydaq.ErrDeviceNotFound
	}
	return p, nil
}

type recorder struct {
	events []Event
}

func (r *recorder) Report(ev Event) {
	r.events = append(r.events, ev)
}

func (r *recorder) kinds() []EventKind {
	kinds := make([]EventKind, len(r.events))
	for i, ev := range r.events {
		kinds[i] = ev.Kind
	}
	return kinds
}

func (r *recorder) last() Event {
	if len(r.events) == 0 {
		return Event{}
	}
	return r.events[len(r.events)-1]
}

func newTestConsole(t *testing.T, ports ...*fakePort) (*Console, *opener, *recorder) {
	t.Helper()
	o := &opener{ports: ports}
	rec := &recorder{}
	link := polydaq.NewLink("/dev/ttyACM0", polydaq.WithOpener(o.open))
	return New(link, rec), o, rec
}

func openConsole(t *testing.T) (*Console, *fakePort, *recorder) {
	t.Helper()
	p := &fakePort{}
	c, _, rec := newTestConsole(t, p)
	c.Service()
	require.True(t, c.Link().IsOpen())
	require.Equal(t, EventLinkOpen, rec.last().Kind)
	return c, p, rec
}

func TestReadChannelExchange(t *testing.T) {
	c, p, rec := openConsole(t)

	action := c.HandleKey('5')
	assert.Equal(t, polydaq.ActionReadChannel, action.Kind)
	assert.Equal(t, "5", string(p.written))
	require.NotNil(t, c.Pending())
	assert.Equal(t, 5, c.Pending().Channel)

	p.send("512\n")
	c.Service()

	ev := rec.last()
	assert.Equal(t, EventReading, ev.Kind)
	assert.Equal(t, 5, ev.Channel)
	assert.Equal(t, "512", ev.Text)
	assert.Nil(t, c.Pending())
}

func TestReplySplitAcrossReads(t *testing.T) {
	c, p, rec := openConsole(t)

	c.HandleKey('b')
	p.send("10")
	c.Service()
	assert.NotNil(t, c.Pending())

	p.send("23\r\n")
	c.Service()
	assert.Equal(t, "1023", rec.last().Text)
	assert.Equal(t, 11, rec.last().Channel)
}

func TestReplyWithoutLineFeedIsBounded(t *testing.T) {
	c, p, rec := openConsole(t)

	c.HandleKey('7')
	for i := 0; i < 20; i++ {
		p.send(strings.Repeat("9", 100))
		c.Service()
	}

	assert.Nil(t, c.Pending())
	var readings []Event
	for _, ev := range rec.events {
		if ev.Kind == EventReading {
			readings = append(readings, ev)
		}
	}
	require.Len(t, readings, 1)
	assert.Len(t, readings[0].Text, polydaq.MaxReply)
	assert.Equal(t, 7, readings[0].Channel)
}

func TestHelpLeavesLinkAlone(t *testing.T) {
	c, o, rec := newTestConsole(t)

	action := c.HandleKey('h')
	assert.Equal(t, polydaq.ActionHelp, action.Kind)
	assert.Equal(t, []EventKind{EventHelp}, rec.kinds())
	assert.Zero(t, o.calls)
	assert.False(t, c.Link().IsOpen())
}

func TestUnknownKeyIsEchoed(t *testing.T) {
	c, _, rec := newTestConsole(t)

	c.HandleKey('x')
	ev := rec.last()
	assert.Equal(t, EventUnknown, ev.Kind)
	assert.Equal(t, 'x', ev.Char)
	assert.Equal(t, polydaq.NoChannel, ev.Channel)
}

func TestQuitIsLeftToCaller(t *testing.T) {
	c, _, rec := newTestConsole(t)

	for _, ch := range []rune{'q', 'Q', 3} {
		assert.Equal(t, polydaq.ActionQuit, c.HandleKey(ch).Kind)
	}
	assert.Empty(t, rec.events)
}

func TestReadDroppedWhileClosed(t *testing.T) {
	c, o, rec := newTestConsole(t)

	c.HandleKey('7')
	assert.Equal(t, EventDropped, rec.last().Kind)
	assert.Equal(t, 7, rec.last().Channel)
	assert.Nil(t, c.Pending())
	assert.Zero(t, o.calls)
}

func TestSecondReadRejectedWhileBusy(t *testing.T) {
	c, p, rec := openConsole(t)

	c.HandleKey('1')
	c.HandleKey('2')
	assert.Equal(t, "1", string(p.written))
	assert.Equal(t, EventBusy, rec.last().Kind)
	assert.Equal(t, 2, rec.last().Channel)
	assert.Equal(t, 1, c.Pending().Channel)

	p.send("7\n")
	c.Service()
	assert.Equal(t, EventReading, rec.last().Kind)
	assert.Equal(t, 1, rec.last().Channel)

	c.HandleKey('2')
	assert.Equal(t, "12", string(p.written))
	assert.Equal(t, 2, c.Pending().Channel)
}

func TestUppercaseRequests(t *testing.T) {
	p := &fakePort{}
	o := &opener{ports: []*fakePort{p}}
	cfg := DefaultConfig()
	cfg.UppercaseRequests = true
	c := New(polydaq.NewLink("/dev/ttyACM0", polydaq.WithOpener(o.open)), nil, WithConfig(cfg))

	c.Service()
	c.HandleKey('c')
	assert.Equal(t, "C", string(p.written))
}

func TestLinkFailsMidExchange(t *testing.T) {
	c, p, rec := openConsole(t)

	c.HandleKey('3')
	p.send("40")
	p.readErr = polydaq.ErrDeviceDisconnected
	c.Service()
	c.Service()

	assert.Nil(t, c.Pending())
	assert.False(t, c.Link().IsOpen())
	assert.Equal(t, 1, p.closes)

	kinds := rec.kinds()
	require.GreaterOrEqual(t, len(kinds), 2)
	assert.Equal(t, []EventKind{EventAbandoned, EventLinkClosed}, kinds[len(kinds)-2:])
	assert.ErrorIs(t, rec.last().Err, polydaq.ErrDeviceDisconnected)
	assert.Equal(t, time.Second, c.Interval())
}

func TestWriteFailureClosesLink(t *testing.T) {
	c, p, rec := openConsole(t)
	p.writeErr = errors.New("EIO")

	c.HandleKey('4')
	assert.False(t, c.Link().IsOpen())
	assert.Nil(t, c.Pending())
	assert.Equal(t, EventLinkClosed, rec.last().Kind)
}

func TestUnsolicitedLines(t *testing.T) {
	c, p, rec := openConsole(t)

	p.send("PolyDAQ2\r\n")
	c.Service()
	assert.Equal(t, EventUnsolicited, rec.last().Kind)
	assert.Equal(t, "PolyDAQ2", rec.last().Text)

	// A heartbeat begun before the request is finished first
	p.send("Poly")
	c.Service()
	c.HandleKey('0')
	p.send("DAQ2\n12\nPo")
	c.Service()

	n := len(rec.events)
	assert.Equal(t, EventUnsolicited, rec.events[n-2].Kind)
	assert.Equal(t, "PolyDAQ2", rec.events[n-2].Text)
	assert.Equal(t, EventReading, rec.events[n-1].Kind)
	assert.Equal(t, "12", rec.events[n-1].Text)

	p.send("lyDAQ2\n")
	c.Service()
	assert.Equal(t, "PolyDAQ2", rec.last().Text)
}

func TestExchangeTimeout(t *testing.T) {
	now := time.Unix(1700000000, 0)
	p := &fakePort{}
	o := &opener{ports: []*fakePort{p}}
	rec := &recorder{}
	cfg := DefaultConfig()
	cfg.ExchangeTimeout = time.Second
	c := New(polydaq.NewLink("/dev/ttyACM0", polydaq.WithOpener(o.open)), rec,
		WithConfig(cfg), WithClock(func() time.Time { return now }))

	c.Service()
	c.HandleKey('9')

	now = now.Add(500 * time.Millisecond)
	c.Service()
	assert.NotNil(t, c.Pending())

	now = now.Add(500 * time.Millisecond)
	c.Service()
	assert.Nil(t, c.Pending())
	assert.Equal(t, EventTimeout, rec.last().Kind)
	assert.Equal(t, 9, rec.last().Channel)
	assert.True(t, c.Link().IsOpen())
}

func TestCloseReleasesLink(t *testing.T) {
	c, p, rec := openConsole(t)
	c.HandleKey('1')

	require.NoError(t, c.Close())
	assert.Nil(t, c.Pending())
	assert.Equal(t, 1, p.closes)
	assert.Equal(t, EventLinkClosed, rec.last().Kind)

	require.NoError(t, c.Close())
	assert.Equal(t, 1, p.closes)
}

// script runs step on each sleep, after recording the requested duration
type script struct {
	durations []time.Duration
	step      func(call int)
}

func (s *script) sleep(ctx context.Context, d time.Duration) error {
	s.durations = append(s.durations, d)
	if len(s.durations) > 100 {
		return errors.New("runaway loop")
	}
	if s.step != nil {
		s.step(len(s.durations))
	}
	return ctx.Err()
}

func TestRunReconnectsAfterLoss(t *testing.T) {
	first, second := &fakePort{}, &fakePort{}
	o := &opener{ports: []*fakePort{first, second}}
	rec := &recorder{}
	keys := make(chan rune, 4)

	s := &script{step: func(call int) {
		switch call {
		case 2:
			keys <- '3'
			first.readErr = polydaq.ErrDeviceDisconnected
		case 4:
			keys <- 'q'
		}
	}}
	c := New(polydaq.NewLink("/dev/ttyACM0", polydaq.WithOpener(o.open)), rec, WithSleeper(s.sleep))

	require.NoError(t, c.Run(context.Background(), keys))

	// The tick that loses the link still ends with a poll wait; the next
	// one waits the retry delay before reopening.
	assert.Equal(t, []time.Duration{
		time.Second, 100 * time.Millisecond,
		100 * time.Millisecond, time.Second,
	}, s.durations)
	assert.Equal(t, []EventKind{
		EventLinkOpen, EventRequest, EventAbandoned, EventLinkClosed, EventLinkOpen,
	}, rec.kinds())
	assert.Equal(t, "3", string(first.written))
	assert.Equal(t, 1, first.closes)
	assert.Equal(t, 2, o.calls)
	assert.True(t, c.Link().IsOpen())
}

func TestRunRetriesWhileAbsent(t *testing.T) {
	o := &opener{}
	keys := make(chan rune, 1)
	s := &script{step: func(call int) {
		if call == 3 {
			keys <- 'q'
		}
	}}
	c := New(polydaq.NewLink("/dev/ttyACM0", polydaq.WithOpener(o.open)), nil, WithSleeper(s.sleep))

	require.NoError(t, c.Run(context.Background(), keys))
	assert.Equal(t, 3, o.calls)
	for _, d := range s.durations {
		assert.Equal(t, time.Second, d)
	}
	assert.False(t, c.Link().IsOpen())
}

func TestRunInputClosed(t *testing.T) {
	c, _, _ := newTestConsole(t)
	c.sleep = (&script{}).sleep

	keys := make(chan rune)
	close(keys)
	assert.ErrorIs(t, c.Run(context.Background(), keys), ErrInputClosed)
}

func TestRunCanceled(t *testing.T) {
	c, _, _ := newTestConsole(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.Run(ctx, make(chan rune))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSleepContext(t *testing.T) {
	require.NoError(t, sleepContext(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	assert.ErrorIs(t, sleepContext(ctx, time.Hour), context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}
