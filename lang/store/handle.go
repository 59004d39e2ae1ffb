package store

import "fmt"

// Handle is an opaque reference to a cell in a Store. Equality is by
// identity of the starting cell (I3): two Handles referring to the same
// slab slot are equal, independent of whatever indirection chain a reader
// must follow to resolve them. Handle is comparable and safe to use as a
// map key, which the thunk memo (lang/store/memo.go) relies on.
type Handle struct {
	store *Store
	id    uint32
}

// IsZero reports whether h is the zero Handle (never returned by a Store).
func (h Handle) IsZero() bool { return h.store == nil }

// HandleFromID reconstructs a Handle from a raw cell id previously obtained
// from Handle.String() (stripped of its leading '&') — used by
// internal/debugserver to resolve a handle named in a URL path back into
// something Store.Reader accepts. It does not validate that id is in
// range; an out-of-range id makes the first Store method that touches it
// panic, since the slab is indexed directly (check against NumCells first).
func HandleFromID(s *Store, id uint32) Handle {
	return Handle{store: s, id: id}
}

func (h Handle) String() string {
	if h.IsZero() {
		return "<nil-handle>"
	}
	return fmt.Sprintf("&%d", h.id)
}
