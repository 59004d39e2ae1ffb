package store

import (
	"sync"

	"github.com/dchest/siphash"
)

// cell is one slab slot; mu guards v across the one-shot bot→indirect patch.
type cell struct {
	mu sync.Mutex
	v  Value
}

// Store owns a growable slab of cells and hands out Handles referencing
// them. It is safe for concurrent use: a single cell's bot→indirect patch
// is guarded per-cell (I1), and slab growth plus the intern index are
// guarded by one Store-wide mutex. This is stricter than the specification
// strictly requires (§5 calls the executor single-threaded) but costs little
// and keeps the heap correct if a caller drives the machine from more than
// one goroutine, as lang/machine's worker-goroutine design does.
type Store struct {
	mu     sync.Mutex
	cells  []*cell
	intern map[uint64][]uint32 // hash -> candidate cell ids, for content-addressing
}

const internSipKey0 = 0x646174615f666c6f // "data_flo" — fixed key, no secrecy needed
const internSipKey1 = 0x775f73746f726521 // "w_store!"

// New creates an empty Store.
func New() *Store {
	return &Store{intern: make(map[uint64][]uint32)}
}

func (s *Store) alloc(v Value) Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cells = append(s.cells, &cell{v: v})
	id := uint32(len(s.cells))
	return Handle{store: s, id: id}
}

func (s *Store) cellAt(id uint32) *cell {
	// id is 1-based; callers only ever pass ids this Store produced.
	return s.cells[id-1]
}

// NumCells reports how many cells have been allocated, for bounds-checking
// a raw handle id before it reaches Reader (internal/debugserver).
func (s *Store) NumCells() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cells)
}

// Insert copies v into a fresh cell and returns its Handle, or — for the
// scalar/string/buffer/nil/unit kinds, which have no embedded sub-handles —
// returns the Handle of an existing structurally identical cell. This is
// the heap's content-addressing behavior (SPEC_FULL.md §3).
func (s *Store) Insert(v Value) (Handle, error) {
	if key, ok := internKey(v); ok {
		if h, ok := s.lookupIntern(key, v); ok {
			return h, nil
		}
		h := s.alloc(v)
		s.mu.Lock()
		s.intern[key] = append(s.intern[key], h.id)
		s.mu.Unlock()
		return h, nil
	}
	return s.alloc(v), nil
}

func (s *Store) lookupIntern(key uint64, v Value) (Handle, bool) {
	s.mu.Lock()
	candidates := append([]uint32(nil), s.intern[key]...)
	s.mu.Unlock()
	for _, id := range candidates {
		c := s.cellAt(id)
		c.mu.Lock()
		eq := structEq(c.v, v)
		c.mu.Unlock()
		if eq {
			return Handle{store: s, id: id}, true
		}
	}
	return Handle{}, false
}

func structEq(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case Unit, Nil:
		return true
	case Bool:
		return a.Bool == b.Bool
	case Char:
		return a.Char == b.Char
	case Int:
		return a.Int == b.Int
	case Float:
		return a.Float == b.Float
	case String:
		return a.Str == b.Str
	case Buffer:
		return string(a.Buf) == string(b.Buf)
	default:
		return false
	}
}

// internKey computes the SipHash-2-4 digest used to bucket structurally
// comparable values. Only the kinds with no embedded sub-handles are
// eligible for interning (SPEC_FULL.md §3).
func internKey(v Value) (uint64, bool) {
	var buf []byte
	switch v.Kind {
	case Unit, Nil:
		buf = []byte{byte(v.Kind)}
	case Bool:
		b := byte(0)
		if v.Bool {
			b = 1
		}
		buf = []byte{byte(v.Kind), b}
	case Char:
		buf = appendRune([]byte{byte(v.Kind)}, v.Char)
	case Int:
		buf = appendInt64([]byte{byte(v.Kind)}, v.Int)
	case Float:
		buf = appendInt64([]byte{byte(v.Kind)}, int64(v.Float))
		buf = append(buf, '.')
	case String:
		buf = append([]byte{byte(v.Kind)}, v.Str...)
	case Buffer:
		buf = append([]byte{byte(v.Kind)}, v.Buf...)
	default:
		return 0, false
	}
	return siphash.Hash(internSipKey0, internSipKey1, buf), true
}

func appendRune(b []byte, r rune) []byte {
	return appendInt64(b, int64(r))
}

func appendInt64(b []byte, i int64) []byte {
	u := uint64(i)
	for n := 0; n < 8; n++ {
		b = append(b, byte(u>>(8*n)))
	}
	return b
}

// Patcher is the one-shot completion for a handle allocated by
// IndirectBuilder. Build must be called exactly once; calling it twice
// indicates a bug in the caller (a register or a knot-tying temp patched
// more than once), not a recoverable runtime condition, so it panics.
type Patcher struct {
	store *Store
	id    uint32
	done  bool
}

// Build rewrites the placeholder cell to forward to target (the
// bot→indirect transition, I1), and returns the placeholder's own Handle
// for convenience.
func (p *Patcher) Build(target Handle) Handle {
	c := p.store.cellAt(p.id)
	c.mu.Lock()
	defer c.mu.Unlock()
	if p.done {
		panic("store: Patcher.Build called twice")
	}
	if c.v.Kind != Bot {
		panic("store: indirect placeholder was not Bot")
	}
	p.done = true
	c.v = Value{Kind: Indirect, Target: target}
	return Handle{store: p.store, id: p.id}
}

// IndirectBuilder allocates a cell initialized to Bot and returns its
// Handle together with the Patcher that will one-shot rewrite it to
// Indirect. Never calling Build leaves the cell permanently Bot.
func (s *Store) IndirectBuilder() (Handle, *Patcher) {
	h := s.alloc(Value{Kind: Bot})
	return h, &Patcher{store: s, id: h.id}
}
