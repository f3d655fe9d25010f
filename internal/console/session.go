package console

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"
)

// Session is one operator run of the console: it lists ports, takes raw
// mode, runs the tick loop and puts everything back on the way out.
type Session struct {
	Console   *Console
	Terminal  Terminal
	Input     io.Reader
	Enumerate func() []string // nil skips the port listing
	Log       *zap.Logger
}

// Run executes the session. Raw mode failure is returned before the loop
// starts. Once raw mode is held, the terminal is restored and the link
// released on every return path, including a panic in the loop.
func (s *Session) Run(ctx context.Context) (err error) {
	log := s.Log
	if log == nil {
		log = zap.NewNop()
	}

	if s.Enumerate != nil {
		s.Console.ReportPorts(s.Enumerate())
	}

	state, err := s.Terminal.MakeRaw()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRawMode, err)
	}
	defer func() {
		if rerr := state.Restore(); rerr != nil {
			log.Error("restore terminal", zap.Error(rerr))
			if err == nil {
				err = rerr
			}
		}
	}()
	defer func() {
		if cerr := s.Console.Close(); cerr != nil {
			log.Debug("release link", zap.Error(cerr))
		}
	}()

	keys, err := NewKeyReader(s.Input)
	if err != nil {
		return err
	}
	defer keys.Close()

	return s.Console.Run(ctx, keys.Keys())
}
