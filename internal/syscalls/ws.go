package syscalls

import (
	"context"
	"time"

	"github.com/gorilla/websocket"

	"github.com/weavelang/weave/internal/werr"
	"github.com/weavelang/weave/lang/store"
	"github.com/weavelang/weave/lang/syscall"
)

// WSPing dials args[0] (a ws(s):// URL), sends one ping frame, and returns
// the round-trip latency in seconds as a float. Demonstrates that sys can
// front a stateful protocol the fetch builtin has no way to express.
func WSPing(ctx context.Context, c syscall.Caller, args []store.Handle) (store.Handle, error) {
	if len(args) != 1 {
		return store.Handle{}, werr.Newf(werr.Internal, "ws_ping expects 1 argument, got %d", len(args))
	}
	urlH, err := c.Force(ctx, args[0])
	if err != nil {
		return store.Handle{}, err
	}
	ur, err := c.Heap().Reader(urlH)
	if err != nil {
		return store.Handle{}, err
	}
	rawurl, err := ur.AsString()
	if err != nil {
		return store.Handle{}, err
	}

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, rawurl, nil)
	if err != nil {
		return store.Handle{}, werr.Wrap(werr.IO, err)
	}
	defer conn.Close()

	done := make(chan struct{})
	conn.SetPongHandler(func(string) error {
		close(done)
		return nil
	})

	start := time.Now()
	if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
		return store.Handle{}, werr.Wrap(werr.IO, err)
	}
	go func() {
		// ReadMessage pumps control frames (including the pong) to the
		// handler set above; it returns once the connection closes.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	select {
	case <-done:
		return c.Heap().Insert(store.MakeFloat(time.Since(start).Seconds()))
	case <-ctx.Done():
		return store.Handle{}, werr.Wrap(werr.Interrupted, ctx.Err())
	case <-time.After(5 * time.Second):
		return store.Handle{}, werr.New(werr.IO, "ws_ping: timed out waiting for pong")
	}
}
