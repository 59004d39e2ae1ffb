package store

// Value is the payload passed to Store.Insert. It is a plain Go value (not
// yet addressed by a Handle); Insert copies it into a fresh cell, or — for
// the interned scalar kinds — returns the handle of an existing structurally
// identical cell (see Store.Insert).
//
// Compound variants reference other cells by Handle, never by embedding
// another Value: sub-handles must already exist in this Store.
type Value struct {
	Kind Kind

	Bool   bool
	Char   rune
	Int    int64
	Float  float64
	Str    string
	Buf    []byte
	Target Handle // Indirect, Thunk

	ConsHead, ConsTail Handle
	TupleElems         []Handle
	RecordEntries      []RecordEntry
	VariantTag         Handle
	VariantPayload     Handle

	PartialCode Handle
	PartialArgs []Handle

	CodeVal Code
}

// RecordEntry is one (key, value) pair of a record. Keys are handles (almost
// always to a string cell) rather than raw strings, so that a record can
// share interned key handles across entries.
type RecordEntry struct {
	Key Handle
	Val Handle
}

func unitValue() Value     { return Value{Kind: Unit} }
func nilValue() Value      { return Value{Kind: Nil} }
func boolValue(b bool) Value  { return Value{Kind: Bool, Bool: b} }
func charValue(c rune) Value  { return Value{Kind: Char, Char: c} }
func intValue(i int64) Value  { return Value{Kind: Int, Int: i} }
func floatValue(f float64) Value { return Value{Kind: Float, Float: f} }
func stringValue(s string) Value { return Value{Kind: String, Str: s} }
func bufferValue(b []byte) Value { return Value{Kind: Buffer, Buf: b} }

// Convenience constructors used by callers outside this package (the
// compiler, the machine, resource providers).
func Unit() Value                  { return unitValue() }
func NilList() Value                { return nilValue() }
func MakeBool(b bool) Value         { return boolValue(b) }
func MakeChar(c rune) Value         { return charValue(c) }
func MakeInt(i int64) Value         { return intValue(i) }
func MakeFloat(f float64) Value     { return floatValue(f) }
func MakeString(s string) Value     { return stringValue(s) }
func MakeBuffer(b []byte) Value     { return bufferValue(b) }
func MakeCons(head, tail Handle) Value {
	return Value{Kind: Cons, ConsHead: head, ConsTail: tail}
}
func MakeTuple(elems []Handle) Value { return Value{Kind: Tuple, TupleElems: elems} }
func MakeRecord(entries []RecordEntry) Value {
	return Value{Kind: Record, RecordEntries: entries}
}
func MakeVariant(tag, payload Handle) Value {
	return Value{Kind: Variant, VariantTag: tag, VariantPayload: payload}
}
func MakeThunk(target Handle) Value { return Value{Kind: Thunk, Target: target} }
func MakePartial(code Handle, args []Handle) Value {
	return Value{Kind: Partial, PartialCode: code, PartialArgs: args}
}
func MakeCode(c Code) Value { return Value{Kind: Code, CodeVal: c} }
