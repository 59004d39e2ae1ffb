// Package syscall defines the machine-facing side of the sys builtin: a
// name-keyed registry of async handlers, and the narrow Caller interface a
// handler needs back from the machine. Caller exists so this package never
// imports lang/machine — a handler can force a handle and reach the heap
// without the two packages depending on each other.
package syscall

import (
	"context"

	"github.com/weavelang/weave/lang/store"
)

// Caller is the subset of *machine.Machine a syscall handler is allowed to
// use: force a value to WHNF (a handler that needs an argument forced must
// ask, since sys args arrive unforced like any other builtin argument), and
// reach the heap to build its result.
type Caller interface {
	Force(ctx context.Context, h store.Handle) (store.Handle, error)
	Heap() *store.Store
}
