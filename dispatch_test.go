package polydaq

import (
	"errors"
	"testing"
)

func TestDispatchDigits(t *testing.T) {
	for ch := '0'; ch <= '9'; ch++ {
		a := Dispatch(ch)
		if a.Kind != ActionReadChannel || a.Channel != int(ch-'0') {
			t.Errorf("Dispatch(%q) = %v, want read-channel(%d)", ch, a, ch-'0')
		}
	}
}

func TestDispatchHexLetters(t *testing.T) {
	for i, ch := range "abcdef" {
		for _, c := range []rune{ch, ch - 'a' + 'A'} {
			a := Dispatch(c)
			if a.Kind != ActionReadChannel || a.Channel != 10+i {
				t.Errorf("Dispatch(%q) = %v, want read-channel(%d)", c, a, 10+i)
			}
		}
	}
}

func TestDispatchControlKeys(t *testing.T) {
	tests := []struct {
		ch   rune
		want ActionKind
	}{
		{'h', ActionHelp},
		{'H', ActionHelp},
		{'?', ActionHelp},
		{'q', ActionQuit},
		{'Q', ActionQuit},
		{3, ActionQuit},
	}

	for _, tt := range tests {
		if got := Dispatch(tt.ch); got.Kind != tt.want {
			t.Errorf("Dispatch(%q) = %v, want %v", tt.ch, got.Kind, tt.want)
		}
	}
}

func TestDispatchUnknown(t *testing.T) {
	known := map[rune]bool{'h': true, 'H': true, '?': true, 'q': true, 'Q': true, 3: true}
	for _, ch := range "0123456789abcdefABCDEF" {
		known[ch] = true
	}

	for ch := rune(0); ch < 256; ch++ {
		if known[ch] {
			continue
		}
		a := Dispatch(ch)
		if a.Kind != ActionUnknown || a.Char != ch {
			t.Errorf("Dispatch(%q) = %v, want unknown", ch, a)
		}
	}

	for _, ch := range []rune{'é', '€', 0x1b} {
		if a := Dispatch(ch); a.Kind != ActionUnknown {
			t.Errorf("Dispatch(%q) = %v, want unknown", ch, a)
		}
	}
}

func TestRequestByte(t *testing.T) {
	tests := []struct {
		channel int
		upper   bool
		want    byte
		wantErr bool
	}{
		{0, false, '0', false},
		{5, false, '5', false},
		{9, true, '9', false},
		{10, false, 'a', false},
		{15, false, 'f', false},
		{10, true, 'A', false},
		{15, true, 'F', false},
		{-1, false, 0, true},
		{16, false, 0, true},
	}

	for _, tt := range tests {
		got, err := RequestByte(tt.channel, tt.upper)
		if (err != nil) != tt.wantErr {
			t.Errorf("RequestByte(%d, %v) error = %v", tt.channel, tt.upper, err)
			continue
		}
		if tt.wantErr && !errors.Is(err, ErrInvalidChannel) {
			t.Errorf("Expected ErrInvalidChannel, got %v", err)
		}
		if got != tt.want {
			t.Errorf("RequestByte(%d, %v) = %q, want %q", tt.channel, tt.upper, got, tt.want)
		}
	}
}

func TestRequestByteMatchesDispatch(t *testing.T) {
	// Every channel key round-trips to the same request byte
	for _, ch := range "0123456789abcdef" {
		a := Dispatch(ch)
		b, err := RequestByte(a.Channel, false)
		if err != nil || rune(b) != ch {
			t.Errorf("RequestByte(Dispatch(%q)) = %q, %v", ch, b, err)
		}
	}
}
