package store

import "github.com/weavelang/weave/internal/werr"

const maxIndirectChain = 1 << 20 // generous bound; a real cycle is an invariant violation (I2)

// Reader is a snapshot view of a resolved (indirect-followed) cell. It is
// cheap to construct and safe to keep around after further mutation of the
// store, since cells are immutable except for the one-shot bot→indirect
// patch that Reader has already followed past.
type Reader struct {
	handle Handle // the original, pre-indirection handle (I3)
	v      Value
}

// Reader resolves h, following indirect chains, and returns a typed view of
// the underlying cell. It fails with BadPointer if h does not belong to
// this Store, BadFormat if h is still Bot (forced too early — a scheduler
// bug), or Internal if an indirect chain exceeds the sanity bound.
func (s *Store) Reader(h Handle) (*Reader, error) {
	if h.store != s {
		return nil, werr.New(werr.BadPointer, "handle does not belong to this store")
	}
	cur := h
	for i := 0; ; i++ {
		if i > maxIndirectChain {
			return nil, werr.New(werr.Internal, "indirect chain exceeded sanity bound (cycle?)")
		}
		c := s.cellAt(cur.id)
		c.mu.Lock()
		v := c.v
		c.mu.Unlock()
		if v.Kind == Bot {
			return nil, werr.New(werr.BadFormat, "handle refers to an unset (bot) cell")
		}
		if v.Kind != Indirect {
			return &Reader{handle: h, v: v}, nil
		}
		cur = v.Target
	}
}

// Handle returns the handle this Reader was requested for (pre-indirection).
func (r *Reader) Handle() Handle { return r.handle }

// Kind returns the resolved variant tag.
func (r *Reader) Kind() Kind { return r.v.Kind }

func (r *Reader) typeErr(want string) error {
	return werr.Newf(werr.BadType, "expected %s, got %s", want, r.v.Kind)
}

func (r *Reader) AsBool() (bool, error) {
	if r.v.Kind != Bool {
		return false, r.typeErr("bool")
	}
	return r.v.Bool, nil
}

func (r *Reader) AsChar() (rune, error) {
	if r.v.Kind != Char {
		return 0, r.typeErr("char")
	}
	return r.v.Char, nil
}

// Numeric is the union of Int and Float, mirroring the specification's
// Numeric coercion type used by the arithmetic builtins.
type Numeric struct {
	IsFloat bool
	I       int64
	F       float64
}

func (n Numeric) AsFloat() float64 {
	if n.IsFloat {
		return n.F
	}
	return float64(n.I)
}

func (r *Reader) AsNumeric() (Numeric, error) {
	switch r.v.Kind {
	case Int:
		return Numeric{I: r.v.Int}, nil
	case Float:
		return Numeric{IsFloat: true, F: r.v.Float}, nil
	default:
		return Numeric{}, r.typeErr("int or float")
	}
}

func (r *Reader) AsString() (string, error) {
	if r.v.Kind != String {
		return "", r.typeErr("string")
	}
	return r.v.Str, nil
}

func (r *Reader) AsBuffer() ([]byte, error) {
	if r.v.Kind != Buffer {
		return nil, r.typeErr("buffer")
	}
	return r.v.Buf, nil
}

func (r *Reader) ConsParts() (head, tail Handle, err error) {
	if r.v.Kind != Cons {
		return Handle{}, Handle{}, r.typeErr("cons")
	}
	return r.v.ConsHead, r.v.ConsTail, nil
}

func (r *Reader) VariantParts() (tag, payload Handle, err error) {
	if r.v.Kind != Variant {
		return Handle{}, Handle{}, r.typeErr("variant")
	}
	return r.v.VariantTag, r.v.VariantPayload, nil
}

// TupleReader exposes indexed/ordered access to a tuple's elements.
type TupleReader struct{ elems []Handle }

func (t TupleReader) Len() int            { return len(t.elems) }
func (t TupleReader) Get(i int) Handle    { return t.elems[i] }
func (t TupleReader) All() []Handle       { return t.elems }

func (r *Reader) Tuple() (TupleReader, error) {
	if r.v.Kind != Tuple {
		return TupleReader{}, r.typeErr("tuple")
	}
	return TupleReader{elems: r.v.TupleElems}, nil
}

// RecordReader exposes insertion-ordered iteration and last-write-wins
// keyed lookup over a record's entries.
type RecordReader struct {
	s       *Store
	entries []RecordEntry
}

func (r RecordReader) Len() int               { return len(r.entries) }
func (r RecordReader) Entries() []RecordEntry { return r.entries }

// Get returns the last entry matching key (last-write-wins, B2), or a
// BadType error if no entry matches.
func (r RecordReader) Get(key string) (Handle, error) {
	for i := len(r.entries) - 1; i >= 0; i-- {
		kr, err := r.s.Reader(r.entries[i].Key)
		if err != nil {
			return Handle{}, err
		}
		ks, err := kr.AsString()
		if err != nil {
			continue
		}
		if ks == key {
			return r.entries[i].Val, nil
		}
	}
	return Handle{}, werr.Newf(werr.BadType, "no such record key %q", key)
}

func (r *Reader) Record(s *Store) (RecordReader, error) {
	if r.v.Kind != Record {
		return RecordReader{}, r.typeErr("record")
	}
	return RecordReader{s: s, entries: r.v.RecordEntries}, nil
}

// PartialReader exposes a partial application's code and bound-so-far args.
type PartialReader struct {
	Code Handle
	Args []Handle
}

func (r *Reader) Partial() (PartialReader, error) {
	if r.v.Kind != Partial {
		return PartialReader{}, r.typeErr("partial")
	}
	return PartialReader{Code: r.v.PartialCode, Args: r.v.PartialArgs}, nil
}

func (r *Reader) Thunk() (Handle, error) {
	if r.v.Kind != Thunk {
		return Handle{}, r.typeErr("thunk")
	}
	return r.v.Target, nil
}

func (r *Reader) Code() (Code, error) {
	if r.v.Kind != Code {
		return Code{}, r.typeErr("code")
	}
	return r.v.CodeVal, nil
}
