package console

import (
	"io"
	"strings"
	"sync"

	"github.com/allbin/polydaq/internal/tui/styles"
)

// Printer writes one line per event. Lines end in CRLF since raw mode turns
// off the terminal's own newline translation.
type Printer struct {
	mu         sync.Mutex
	w          io.Writer
	timestamps bool
	err        error
}

// NewPrinter returns a Printer writing to w
func NewPrinter(w io.Writer, timestamps bool) *Printer {
	return &Printer{w: w, timestamps: timestamps}
}

// Report writes ev. After a failed write the Printer drops further events;
// Err returns the failure.
func (p *Printer) Report(ev Event) {
	line := FormatEvent(ev)
	if line == "" {
		return
	}
	if p.timestamps {
		line = styles.TimestampStyle.Render("["+ev.Time.Format("15:04:05.000")+"]") + " " + line
	}
	line = strings.ReplaceAll(line, "\r\n", "\n")
	line = strings.ReplaceAll(line, "\n", "\r\n")

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return
	}
	if _, err := io.WriteString(p.w, line+"\r\n"); err != nil {
		p.err = err
	}
}

// Err returns the first write error, if any
func (p *Printer) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}
