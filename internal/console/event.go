package console

import (
	"time"
)

// EventKind identifies what happened in the console
type EventKind int

const (
	EventPorts       EventKind = iota // candidate ports found at startup
	EventLinkOpen                     // port acquired
	EventLinkClosed                   // port lost or released
	EventHelp                         // operator asked for help
	EventUnknown                      // key with no command
	EventRequest                      // request byte written
	EventBusy                         // read rejected, an exchange is pending
	EventDropped                      // read dropped, link closed
	EventReading                      // reply completed by a line-feed
	EventAbandoned                    // pending exchange lost with the link
	EventTimeout                      // pending exchange gave up waiting
	EventUnsolicited                  // line sent by the board on its own
)

var eventNames = [...]string{
	EventPorts:       "ports",
	EventLinkOpen:    "link-open",
	EventLinkClosed:  "link-closed",
	EventHelp:        "help",
	EventUnknown:     "unknown",
	EventRequest:     "request",
	EventBusy:        "busy",
	EventDropped:     "dropped",
	EventReading:     "reading",
	EventAbandoned:   "abandoned",
	EventTimeout:     "timeout",
	EventUnsolicited: "unsolicited",
}

func (k EventKind) String() string {
	if k < 0 || int(k) >= len(eventNames) {
		return "event"
	}
	return eventNames[k]
}

// Event is a single console occurrence. Only the fields relevant to Kind
// are set.
type Event struct {
	Kind    EventKind
	Time    time.Time
	Path    string   // link events
	Ports   []string // EventPorts
	Channel int      // channel events, polydaq.NoChannel otherwise
	Char    rune     // key for EventUnknown, request byte for EventRequest
	Text    string   // reply or unsolicited line
	Err     error    // cause of EventLinkClosed
}

// Reporter receives console events
type Reporter interface {
	Report(Event)
}

// ReporterFunc adapts a function to a Reporter
type ReporterFunc func(Event)

func (f ReporterFunc) Report(ev Event) {
	f(ev)
}

type discard struct{}

func (discard) Report(Event) {}
