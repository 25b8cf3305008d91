package proxy

import (
	"context"
	"io"
	"net"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// CopyBidirectional relays bytes between client and upstream until either
// side closes, the context is canceled, or ioTimeout elapses. Both
// connections are closed before it returns.
func CopyBidirectional(ctx context.Context, client, upstream net.Conn, ioTimeout time.Duration) error {
	if ioTimeout > 0 {
		dl := time.Now().Add(ioTimeout)
		_ = client.SetDeadline(dl)
		_ = upstream.SetDeadline(dl)
	}

	var closeOnce sync.Once
	closeBoth := func() {
		closeOnce.Do(func() {
			_ = client.Close()
			_ = upstream.Close()
		})
	}
	defer closeBoth()

	g, gctx := errgroup.WithContext(ctx)

	// Closing both sides is the only way to unblock io.Copy on cancel.
	stop := context.AfterFunc(gctx, closeBoth)
	defer stop()

	g.Go(func() error {
		defer closeBoth()
		_, err := io.Copy(client, upstream)
		return err
	})

	g.Go(func() error {
		defer closeBoth()
		_, err := io.Copy(upstream, client)
		return err
	})

	return g.Wait()
}
