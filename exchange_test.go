package polydaq

import (
	"testing"
)

func TestExchangeSingleChunk(t *testing.T) {
	ex := NewExchange(5, '5')

	done, rest := ex.Feed([]byte("512\n"))
	if !done {
		t.Fatal("Expected exchange to complete")
	}
	if len(rest) != 0 {
		t.Errorf("Expected no trailing bytes, got %q", rest)
	}
	if ex.Response() != "512" {
		t.Errorf("Response() = %q, want 512", ex.Response())
	}
	if string(ex.Bytes()) != "512\n" {
		t.Errorf("Bytes() = %q", ex.Bytes())
	}
}

func TestExchangeAcrossReads(t *testing.T) {
	ex := NewExchange(12, 'c')

	for _, chunk := range []string{"", "2", "04", "7\r"} {
		if done, _ := ex.Feed([]byte(chunk)); done {
			t.Fatalf("Completed early after %q", chunk)
		}
	}
	if ex.Done() {
		t.Fatal("Done() before line-feed")
	}

	done, rest := ex.Feed([]byte("\nPoly"))
	if !done || !ex.Done() {
		t.Fatal("Expected completion on line-feed")
	}
	if string(rest) != "Poly" {
		t.Errorf("rest = %q, want Poly", rest)
	}
	if ex.Response() != "2047" {
		t.Errorf("Response() = %q, want 2047", ex.Response())
	}
}

func TestExchangeFeedAfterDone(t *testing.T) {
	ex := NewExchange(0, '0')
	ex.Feed([]byte("1\n"))

	done, rest := ex.Feed([]byte("more\n"))
	if !done || string(rest) != "more\n" {
		t.Errorf("Feed after done = %v, %q", done, rest)
	}
	if ex.Response() != "1" {
		t.Errorf("Response changed to %q", ex.Response())
	}
}

func TestExchangeEmptyReply(t *testing.T) {
	ex := NewExchange(NoChannel, 'v')
	done, _ := ex.Feed([]byte("\n"))
	if !done || ex.Response() != "" {
		t.Errorf("done = %v, response = %q", done, ex.Response())
	}
	if ex.Channel != NoChannel || ex.Request != 'v' {
		t.Errorf("unexpected exchange fields: %+v", ex)
	}
}

func TestExchangeReplyIsBounded(t *testing.T) {
	ex := NewExchange(3, '3')

	chunk := make([]byte, 300)
	for i := range chunk {
		chunk[i] = '7'
	}

	var rest []byte
	done := false
	for i := 0; i < 4 && !done; i++ {
		done, rest = ex.Feed(chunk)
	}
	if !done {
		t.Fatal("Expected an endless reply to complete at MaxReply")
	}
	if len(ex.Bytes()) != MaxReply {
		t.Errorf("len(Bytes()) = %d, want %d", len(ex.Bytes()), MaxReply)
	}
	if want := 4*300 - MaxReply; len(rest) != want {
		t.Errorf("Expected %d surplus bytes, got %d", want, len(rest))
	}
}
