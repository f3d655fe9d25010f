package polydaq

import (
	"io"

	"go.uber.org/zap"
)

// LinkState is the connection state of a Link
type LinkState int

const (
	LinkClosed LinkState = iota
	LinkOpen
)

func (s LinkState) String() string {
	if s == LinkOpen {
		return "open"
	}
	return "closed"
}

// OpenFunc acquires the OS handle for a device path
type OpenFunc func(path string) (Port, error)

// readChunk is the most a single TryRead hands back
const readChunk = 256

// Link is the serial connection to the board. It is Closed until Open
// succeeds and drops back to Closed, releasing the port, as soon as a read
// or write fails. A Link is owned by one goroutine; it does no locking.
type Link struct {
	path     string
	open     OpenFunc
	portOpts []Option
	port     Port
	buf      []byte
	log      *zap.Logger
}

// LinkOption configures a Link
type LinkOption func(*Link)

// WithOpener replaces the function used to acquire the port
func WithOpener(fn OpenFunc) LinkOption {
	return func(l *Link) {
		l.open = fn
	}
}

// WithPortOptions passes serial options to Open when the default opener is used
func WithPortOptions(opts ...Option) LinkOption {
	return func(l *Link) {
		l.portOpts = append(l.portOpts, opts...)
	}
}

// WithLinkLogger sets the logger used for state transitions
func WithLinkLogger(log *zap.Logger) LinkOption {
	return func(l *Link) {
		if log != nil {
			l.log = log
		}
	}
}

// NewLink returns a Closed link for path
func NewLink(path string, opts ...LinkOption) *Link {
	l := &Link{
		path: path,
		buf:  make([]byte, readChunk),
		log:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.open == nil {
		l.open = func(path string) (Port, error) {
			return Open(path, l.portOpts...)
		}
	}
	l.log = l.log.With(zap.String("port", path))
	return l
}

// Path returns the device path the link opens
func (l *Link) Path() string {
	return l.path
}

// State returns the current connection state
func (l *Link) State() LinkState {
	if l.port != nil {
		return LinkOpen
	}
	return LinkClosed
}

// IsOpen reports whether the link holds a port
func (l *Link) IsOpen() bool {
	return l.port != nil
}

// Open tries to acquire the port. On failure the link stays Closed and the
// error is returned for information only; the caller retries later.
// Opening an Open link does nothing.
func (l *Link) Open() error {
	if l.port != nil {
		return nil
	}

	port, err := l.open(l.path)
	if err != nil {
		l.log.Debug("open failed", zap.Error(err))
		return err
	}

	if err := port.FlushInput(); err != nil {
		l.log.Warn("flush after open failed", zap.Error(err))
	}

	l.port = port
	l.log.Info("link open")
	return nil
}

// TryRead returns the bytes the board has sent since the last call, possibly
// none. A transport failure closes the link and discards the bytes.
func (l *Link) TryRead() ([]byte, error) {
	if l.port == nil {
		return nil, ErrLinkClosed
	}

	n, err := l.port.TryRead(l.buf)
	if err != nil {
		l.fail(err)
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}

	data := make([]byte, n)
	copy(data, l.buf[:n])
	return data, nil
}

// TryWrite sends data to the board. A transport failure closes the link.
func (l *Link) TryWrite(data []byte) error {
	if l.port == nil {
		return ErrLinkClosed
	}

	n, err := l.port.TryWrite(data)
	if err == nil && n < len(data) {
		err = io.ErrShortWrite
	}
	if err != nil {
		l.fail(err)
		return err
	}
	return nil
}

// Close releases the port. Closing a Closed link is a no-op.
func (l *Link) Close() error {
	if l.port == nil {
		return nil
	}

	err := l.port.Close()
	l.port = nil
	l.log.Info("link closed")
	return err
}

// fail releases the port after a transport error
func (l *Link) fail(cause error) {
	if err := l.port.Close(); err != nil {
		l.log.Debug("close after failure", zap.Error(err))
	}
	l.port = nil
	l.log.Warn("link lost", zap.Error(cause))
}
