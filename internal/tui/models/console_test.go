package models

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allbin/polydaq"
	"github.com/allbin/polydaq/internal/tui/components"
)

type fakePort struct {
	incoming []byte
	written  []byte
	closes   int
}

func (f *fakePort) TryRead(buf []byte) (int, error) {
	n := copy(buf, f.incoming)
	f.incoming = f.incoming[n:]
	return n, nil
}

func (f *fakePort) TryWrite(data []byte) (int, error) {
	f.written = append(f.written, data...)
	return len(data), nil
}

func (f *fakePort) FlushInput() error { return nil }

func (f *fakePort) Close() error {
	f.closes++
	return nil
}

func newTestModel(t *testing.T, p *fakePort) *ConsoleModel {
	t.Helper()
	link := polydaq.NewLink("/dev/ttyACM0", polydaq.WithOpener(func(string) (polydaq.Port, error) {
		return p, nil
	}))
	info := components.ConnectionInfoFrom(polydaq.DefaultConfig())
	m := NewConsoleModel(link, info, []string{"/dev/ttyACM0"}, false)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func joined(m *ConsoleModel) string {
	return strings.Join(m.Terminal().Lines(), "\n")
}

func TestConsoleModelReadChannel(t *testing.T) {
	p := &fakePort{}
	m := newTestModel(t, p)
	assert.Contains(t, joined(m), "Candidate ports")

	_, cmd := m.Update(tickMsg(time.Now()))
	require.NotNil(t, cmd)
	require.True(t, m.Console().Link().IsOpen())
	assert.Contains(t, joined(m), "port open")

	m.Update(runes("5"))
	assert.Equal(t, "5", string(p.written))

	p.incoming = []byte("512\r\n")
	m.Update(tickMsg(time.Now()))
	assert.Contains(t, joined(m), "512")
	assert.Nil(t, m.Console().Pending())

	view := m.View()
	assert.Contains(t, view, "OPEN")
	assert.Contains(t, view, "/dev/ttyACM0")
}

func TestConsoleModelQuit(t *testing.T) {
	for _, msg := range []tea.KeyMsg{runes("q"), {Type: tea.KeyCtrlC}} {
		p := &fakePort{}
		m := newTestModel(t, p)
		m.Update(tickMsg(time.Now()))

		_, cmd := m.Update(msg)
		require.NotNil(t, cmd)
		assert.IsType(t, tea.QuitMsg{}, cmd())
		assert.Equal(t, 1, p.closes)
		assert.Empty(t, m.View())
	}
}

func TestConsoleModelHelpAndUnknown(t *testing.T) {
	m := newTestModel(t, &fakePort{})

	m.Update(runes("?"))
	assert.Contains(t, joined(m), "quit")

	m.Update(runes("z"))
	assert.Contains(t, joined(m), "'z'")
	assert.False(t, m.Console().Link().IsOpen())
}

func TestConsoleModelScrollKeysAreNotCommands(t *testing.T) {
	p := &fakePort{}
	m := newTestModel(t, p)
	m.Update(tickMsg(time.Now()))

	m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m.Update(tea.KeyMsg{Type: tea.KeyHome})
	m.Update(tea.KeyMsg{Type: tea.KeyEnd})
	assert.Empty(t, p.written)
}

func TestKeyRune(t *testing.T) {
	tests := []struct {
		msg  tea.KeyMsg
		want rune
		ok   bool
	}{
		{runes("a"), 'a', true},
		{tea.KeyMsg{Type: tea.KeyCtrlC}, 3, true},
		{tea.KeyMsg{Type: tea.KeySpace}, ' ', true},
		{tea.KeyMsg{Type: tea.KeyEsc}, 0x1b, true},
		{runes("ab"), 0, false},
		{tea.KeyMsg{Type: tea.KeyF1}, 0, false},
	}

	for _, tt := range tests {
		got, ok := keyRune(tt.msg)
		if got != tt.want || ok != tt.ok {
			t.Errorf("keyRune(%v) = %q, %v; want %q, %v", tt.msg, got, ok, tt.want, tt.ok)
		}
	}
}
