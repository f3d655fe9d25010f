package console

import (
	"bufio"
	"io"
	"sync"
	"time"

	"github.com/muesli/cancelreader"
)

// keyBuffer is how many keystrokes may queue ahead of the tick loop
const keyBuffer = 64

// stopTimeout bounds how long Close waits for the reader goroutine. A reader
// that cannot be cancelled stays blocked until its input ends.
var stopTimeout = 500 * time.Millisecond

// KeyReader decodes keystrokes from an input stream on its own goroutine.
// The channel returned by Keys is closed when the input ends or the reader
// is closed.
type KeyReader struct {
	r       cancelreader.CancelReader
	keys    chan rune
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once
}

// NewKeyReader starts reading runes from in
func NewKeyReader(in io.Reader) (*KeyReader, error) {
	r, err := cancelreader.NewReader(in)
	if err != nil {
		return nil, err
	}

	k := &KeyReader{
		r:    r,
		keys:    make(chan rune, keyBuffer),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go k.loop()
	return k, nil
}

// Keys returns the keystroke channel
func (k *KeyReader) Keys() <-chan rune {
	return k.keys
}

func (k *KeyReader) loop() {
	defer close(k.stopped)
	defer close(k.keys)

	br := bufio.NewReader(k.r)
	for {
		ch, _, err := br.ReadRune()
		if err != nil {
			return
		}
		select {
		case k.keys <- ch:
		case <-k.done:
			return
		}
	}
}

// Close cancels a blocked read and waits for the goroutine to stop before
// releasing the reader. Keys is closed once it returns, unless the input
// could not be cancelled within stopTimeout.
func (k *KeyReader) Close() error {
	var err error
	k.once.Do(func() {
		close(k.done)
		k.r.Cancel()

		select {
		case <-k.stopped:
		case <-time.After(stopTimeout):
		}
		err = k.r.Close()
	})
	return err
}
