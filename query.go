package polydaq

import (
	"context"
	"fmt"
	"time"
)

// Query sends the exchange's request over an Open link and polls for the
// reply every interval until its line-feed arrives or ctx ends. Bytes that
// follow the line-feed are dropped.
func Query(ctx context.Context, l *Link, ex *Exchange, interval time.Duration) (string, error) {
	if err := l.TryWrite([]byte{ex.Request}); err != nil {
		return "", err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		data, err := l.TryRead()
		if err != nil {
			return "", err
		}
		if done, _ := ex.Feed(data); done {
			return ex.Response(), nil
		}

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("%w: %v", ErrReadTimeout, ctx.Err())
		case <-ticker.C:
		}
	}
}
