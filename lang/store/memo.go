package store

import (
	"sync"

	"github.com/dolthub/swiss"
)

// ThunkMemo maps a thunk Handle to its already-forced result (C7). It
// guarantees at-most-once forcing of each thunk within the Store it
// belongs to (P3): the executor consults it before running a thunk's code,
// and updates it exactly once per key afterwards.
//
// The underlying map is dolthub/swiss's flat hash map, the same dependency
// the teacher repo (mna/nenuphar) uses for its own runtime Map value — here
// repurposed for the write-once/read-many access pattern a memo table sees.
type ThunkMemo struct {
	mu sync.Mutex
	m  *swiss.Map[Handle, Handle]
}

// NewThunkMemo creates an empty memo with room for sizeHint entries without
// resizing.
func NewThunkMemo(sizeHint int) *ThunkMemo {
	if sizeHint < 8 {
		sizeHint = 8
	}
	return &ThunkMemo{m: swiss.NewMap[Handle, Handle](uint32(sizeHint))}
}

// Get returns the memoized result for thunk, if any.
func (t *ThunkMemo) Get(thunk Handle) (Handle, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.m.Get(thunk)
}

// Insert records the result of forcing thunk. Calling it twice for the same
// key is a violation of the "writes are once-per-key" invariant (§4.7) and
// indicates a bug in the executor, so it panics rather than silently
// overwriting — a second write would mean force_frame ran more than once
// for the same thunk, which is exactly what the memo exists to prevent.
func (t *ThunkMemo) Insert(thunk, result Handle) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.m.Get(thunk); ok {
		panic("store: thunk memo written twice for the same key")
	}
	t.m.Put(thunk, result)
}

// Len reports the number of memoized entries (used by the debug server's
// /memo/stats endpoint).
func (t *ThunkMemo) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.m.Count()
}
