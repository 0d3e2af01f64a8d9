package scrape

import (
	"context"
	"io"
)

// closeOnCancel tears the closer down as soon as ctx is cancelled, so
// an attempt that exceeds its budget releases its browser session (and
// its worker slot) instead of riding out the page timeouts. The
// returned stop function must be called when the attempt ends; after
// stop returns the closer will not be touched.
func closeOnCancel(ctx context.Context, c io.Closer) (stop func()) {
	done := make(chan struct{})
	finished := make(chan struct{})

	go func() {
		defer close(finished)
		select {
		case <-ctx.Done():
			c.Close()
		case <-done:
		}
	}()

	return func() {
		close(done)
		<-finished
	}
}
