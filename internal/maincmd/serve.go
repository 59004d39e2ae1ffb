package maincmd

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mna/mainer"

	"github.com/weavelang/weave/internal/config"
	"github.com/weavelang/weave/internal/debugserver"
)

// Serve starts the debug HTTP server and blocks until ctx is cancelled
// (SIGINT) or the server fails.
func (c *Cmd) Serve(ctx context.Context, stdio mainer.Stdio, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return printError(stdio, err)
	}
	if c.Addr != "" {
		cfg.DebugAddr = c.Addr
	}

	_, s, memo := c.buildMachine(cfg)
	dbg := &debugserver.Server{Store: s, Memo: memo}
	srv := &http.Server{Addr: cfg.DebugAddr, Handler: dbg.Handler()}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	fmt.Fprintf(stdio.Stdout, "weave debug server listening on %s\n", cfg.DebugAddr)

	select {
	case <-ctx.Done():
		return printError(stdio, srv.Close())
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return printError(stdio, err)
		}
		return nil
	}
}
