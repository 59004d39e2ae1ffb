// Package syscalls bundles the sys handlers shipped with the interpreter,
// each registered against a lang/syscall.Registry by Register.
package syscalls

import (
	"context"

	"github.com/google/uuid"

	"github.com/weavelang/weave/lang/store"
	"github.com/weavelang/weave/lang/syscall"
)

// UUIDNew returns a fresh random (v4) UUID as a string value. Takes no
// arguments.
func UUIDNew(ctx context.Context, c syscall.Caller, args []store.Handle) (store.Handle, error) {
	return c.Heap().Insert(store.MakeString(uuid.NewString()))
}
