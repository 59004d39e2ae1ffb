package syscalls

import (
	"context"
	"time"

	"github.com/weavelang/weave/lang/store"
	"github.com/weavelang/weave/lang/syscall"
)

// ClockNow returns the wall-clock time as a float of unix seconds. Takes no
// arguments. Stdlib only: no pack dependency models a clock (DESIGN.md).
func ClockNow(ctx context.Context, c syscall.Caller, args []store.Handle) (store.Handle, error) {
	return c.Heap().Insert(store.MakeFloat(float64(time.Now().UnixNano()) / 1e9))
}
