package syscalls

import (
	"context"
	"os"

	"github.com/weavelang/weave/internal/werr"
	"github.com/weavelang/weave/lang/store"
	"github.com/weavelang/weave/lang/syscall"
)

// EnvLookup looks up args[0] (a string) in the process environment,
// returning variant(Some, string) if set or variant(None, unit) otherwise.
// Stdlib only (os.LookupEnv): no pack dependency models process environment
// access (DESIGN.md).
func EnvLookup(ctx context.Context, c syscall.Caller, args []store.Handle) (store.Handle, error) {
	if len(args) != 1 {
		return store.Handle{}, werr.Newf(werr.Internal, "env_lookup expects 1 argument, got %d", len(args))
	}
	nameH, err := c.Force(ctx, args[0])
	if err != nil {
		return store.Handle{}, err
	}
	nr, err := c.Heap().Reader(nameH)
	if err != nil {
		return store.Handle{}, err
	}
	name, err := nr.AsString()
	if err != nil {
		return store.Handle{}, err
	}

	val, ok := os.LookupEnv(name)
	if !ok {
		tag, err := c.Heap().Insert(store.MakeString("None"))
		if err != nil {
			return store.Handle{}, err
		}
		payload, err := c.Heap().Insert(store.Unit())
		if err != nil {
			return store.Handle{}, err
		}
		return c.Heap().Insert(store.MakeVariant(tag, payload))
	}

	tag, err := c.Heap().Insert(store.MakeString("Some"))
	if err != nil {
		return store.Handle{}, err
	}
	payload, err := c.Heap().Insert(store.MakeString(val))
	if err != nil {
		return store.Handle{}, err
	}
	return c.Heap().Insert(store.MakeVariant(tag, payload))
}
