package polydaq

import "fmt"

// MaxChannel is the highest analog channel the board samples
const MaxChannel = 15

// NoChannel marks an exchange that is not an analog reading
const NoChannel = -1

// interruptChar is what ctrl+c produces once the terminal is in raw mode
const interruptChar = 0x03

// ActionKind classifies an operator keystroke
type ActionKind int

const (
	ActionUnknown ActionKind = iota
	ActionHelp
	ActionQuit
	ActionReadChannel
)

func (k ActionKind) String() string {
	switch k {
	case ActionHelp:
		return "help"
	case ActionQuit:
		return "quit"
	case ActionReadChannel:
		return "read-channel"
	default:
		return "unknown"
	}
}

// Action is the result of dispatching one keystroke. Channel is only
// meaningful for ActionReadChannel; Char is the key that produced it.
type Action struct {
	Kind    ActionKind
	Channel int
	Char    rune
}

func (a Action) String() string {
	if a.Kind == ActionReadChannel {
		return fmt.Sprintf("%s(%d)", a.Kind, a.Channel)
	}
	return fmt.Sprintf("%s(%q)", a.Kind, a.Char)
}

// Dispatch maps a keystroke to an Action. It has no side effects.
func Dispatch(ch rune) Action {
	switch {
	case ch >= '0' && ch <= '9':
		return Action{Kind: ActionReadChannel, Channel: int(ch - '0'), Char: ch}
	case ch >= 'a' && ch <= 'f':
		return Action{Kind: ActionReadChannel, Channel: 10 + int(ch-'a'), Char: ch}
	case ch >= 'A' && ch <= 'F':
		return Action{Kind: ActionReadChannel, Channel: 10 + int(ch-'A'), Char: ch}
	case ch == 'h', ch == 'H', ch == '?':
		return Action{Kind: ActionHelp, Char: ch}
	case ch == 'q', ch == 'Q', ch == interruptChar:
		return Action{Kind: ActionQuit, Char: ch}
	default:
		return Action{Kind: ActionUnknown, Char: ch}
	}
}

// RequestByte encodes a channel read request: the decimal digit for 0-9 and
// the hex digit for 10-15, uppercase when upper is set.
func RequestByte(channel int, upper bool) (byte, error) {
	switch {
	case channel < 0 || channel > MaxChannel:
		return 0, fmt.Errorf("%w: %d", ErrInvalidChannel, channel)
	case channel < 10:
		return byte('0' + channel), nil
	case upper:
		return byte('A' + channel - 10), nil
	default:
		return byte('a' + channel - 10), nil
	}
}
