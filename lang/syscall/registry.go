package syscall

import (
	"context"
	"sync"

	"github.com/weavelang/weave/internal/werr"
	"github.com/weavelang/weave/lang/store"
)

// Handler implements one syscall. Call runs on its own goroutine (the
// machine's sys builtin dispatch spawns it), so a Handler may block.
type Handler interface {
	Call(ctx context.Context, c Caller, args []store.Handle) (store.Handle, error)
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(ctx context.Context, c Caller, args []store.Handle) (store.Handle, error)

func (f HandlerFunc) Call(ctx context.Context, c Caller, args []store.Handle) (store.Handle, error) {
	return f(ctx, c, args)
}

// Registry maps syscall names to their Handler. It is safe for concurrent
// registration and lookup, since the machine looks a name up from whichever
// goroutine is servicing a given sys builtin.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register binds name to h, replacing any existing handler for that name.
func (r *Registry) Register(name string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[name] = h
}

// Lookup returns the handler bound to name, if any.
func (r *Registry) Lookup(name string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[name]
	return h, ok
}

// NotFound is the error a sys dispatch reports when no handler is
// registered under the given name.
func NotFound(name string) error {
	return werr.Newf(werr.NotFound, "no such syscall %q", name)
}
