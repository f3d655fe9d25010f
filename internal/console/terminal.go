package console

import (
	"errors"
	"os"
	"sync"

	"github.com/charmbracelet/x/term"
)

var (
	ErrNotTerminal = errors.New("console: input is not a terminal")
	ErrRawMode     = errors.New("console: cannot enter raw mode")
)

// Terminal can be switched into raw mode
type Terminal interface {
	MakeRaw() (TerminalState, error)
}

// TerminalState holds the configuration saved by MakeRaw. Restore puts it
// back; calls after the first do nothing.
type TerminalState interface {
	Restore() error
}

// NewTerminal returns the Terminal for f, normally os.Stdin
func NewTerminal(f *os.File) Terminal {
	return &fileTerminal{fd: f.Fd()}
}

type fileTerminal struct {
	fd uintptr
}

func (t *fileTerminal) MakeRaw() (TerminalState, error) {
	if !term.IsTerminal(t.fd) {
		return nil, ErrNotTerminal
	}
	old, err := term.MakeRaw(t.fd)
	if err != nil {
		return nil, err
	}
	return &savedState{fd: t.fd, old: old}, nil
}

type savedState struct {
	fd   uintptr
	old  *term.State
	once sync.Once
	err  error
}

func (s *savedState) Restore() error {
	s.once.Do(func() {
		s.err = term.Restore(s.fd, s.old)
	})
	return s.err
}
