package machine

import (
	"net/url"
	"unicode/utf8"

	"github.com/weavelang/weave/internal/werr"
	"github.com/weavelang/weave/lang/store"
)

func (f *frame) execBuiltin(op store.Op) {
	args := make([]store.Handle, len(op.Args))
	for i, r := range op.Args {
		args[i] = f.regs[r]
	}

	switch op.Builtin {
	case store.Add, store.Sub, store.Mul, store.Div:
		f.execArith(op, args)
	case store.Neg:
		f.execNeg(op, args)
	case store.EmptyRecord:
		f.finishSync(op, store.MakeRecord(nil))
	case store.Insert:
		f.execInsert(op, args)
	case store.Project:
		f.execProject(op, args)
	case store.EmptyTuple:
		f.finishSync(op, store.MakeTuple(nil))
	case store.Append:
		f.execAppend(op, args)
	case store.Nil:
		f.finishSync(op, store.NilList())
	case store.Cons:
		f.execCons(op, args)
	case store.JoinURL:
		f.execJoinURL(op, args)
	case store.DecodeUTF8:
		f.execDecodeUTF8(op, args)
	case store.EncodeUTF8:
		f.execEncodeUTF8(op, args)
	case store.Compile:
		f.execCompileAsync(op, args)
	case store.Fetch:
		f.execFetchAsync(op, args)
	case store.Sys:
		f.execSysAsync(op, args)
	default:
		f.fail(werr.Newf(werr.Internal, "unimplemented builtin %s", op.Builtin))
	}
}

// finishSync inserts v and completes op's register with the resulting
// handle; every synchronous builtin that builds a new value ends here.
func (f *frame) finishSync(op store.Op, v store.Value) {
	h, err := f.m.Store.Insert(v)
	if err != nil {
		f.fail(err)
		return
	}
	f.complete(op.Dest.Reg, h)
}

func (f *frame) numeric(h store.Handle) (store.Numeric, error) {
	r, err := f.m.Store.Reader(h)
	if err != nil {
		return store.Numeric{}, err
	}
	return r.AsNumeric()
}

// execArith implements add/sub/mul/div with the mixed-type promotion
// pinned in SPEC_FULL.md's open questions: if either operand is a float,
// both are treated as float and the result is a float; otherwise the
// result is int. Integer division by zero is a BadType error; float
// division by zero follows IEEE 754 (±Inf or NaN, not an error).
func (f *frame) execArith(op store.Op, args []store.Handle) {
	if len(args) != 2 {
		f.fail(werr.Newf(werr.Internal, "%s expects 2 arguments, got %d", op.Builtin, len(args)))
		return
	}
	a, err := f.numeric(args[0])
	if err != nil {
		f.fail(err)
		return
	}
	b, err := f.numeric(args[1])
	if err != nil {
		f.fail(err)
		return
	}

	var v store.Value
	if a.IsFloat || b.IsFloat {
		x, y := a.AsFloat(), b.AsFloat()
		var r float64
		switch op.Builtin {
		case store.Add:
			r = x + y
		case store.Sub:
			r = x - y
		case store.Mul:
			r = x * y
		case store.Div:
			r = x / y
		}
		v = store.MakeFloat(r)
	} else {
		x, y := a.I, b.I
		var r int64
		switch op.Builtin {
		case store.Add:
			r = x + y
		case store.Sub:
			r = x - y
		case store.Mul:
			r = x * y
		case store.Div:
			if y == 0 {
				f.fail(werr.New(werr.BadType, "integer division by zero"))
				return
			}
			r = x / y
		}
		v = store.MakeInt(r)
	}
	f.finishSync(op, v)
}

func (f *frame) execNeg(op store.Op, args []store.Handle) {
	if len(args) != 1 {
		f.fail(werr.Newf(werr.Internal, "neg expects 1 argument, got %d", len(args)))
		return
	}
	n, err := f.numeric(args[0])
	if err != nil {
		f.fail(err)
		return
	}
	if n.IsFloat {
		f.finishSync(op, store.MakeFloat(-n.F))
	} else {
		f.finishSync(op, store.MakeInt(-n.I))
	}
}

// execInsert appends a new (key, value) entry to a record, last-write-wins
// on lookup (B2) — entries are never removed, only shadowed by a later one.
func (f *frame) execInsert(op store.Op, args []store.Handle) {
	if len(args) != 3 {
		f.fail(werr.Newf(werr.Internal, "insert expects 3 arguments, got %d", len(args)))
		return
	}
	r, err := f.m.Store.Reader(args[0])
	if err != nil {
		f.fail(err)
		return
	}
	rr, err := r.Record(f.m.Store)
	if err != nil {
		f.fail(err)
		return
	}
	entries := append(append([]store.RecordEntry(nil), rr.Entries()...), store.RecordEntry{Key: args[1], Val: args[2]})
	f.finishSync(op, store.MakeRecord(entries))
}

func (f *frame) execProject(op store.Op, args []store.Handle) {
	if len(args) != 2 {
		f.fail(werr.Newf(werr.Internal, "project expects 2 arguments, got %d", len(args)))
		return
	}
	r, err := f.m.Store.Reader(args[0])
	if err != nil {
		f.fail(err)
		return
	}
	rr, err := r.Record(f.m.Store)
	if err != nil {
		f.fail(err)
		return
	}
	kr, err := f.m.Store.Reader(args[1])
	if err != nil {
		f.fail(err)
		return
	}
	key, err := kr.AsString()
	if err != nil {
		f.fail(err)
		return
	}
	h, err := rr.Get(key)
	if err != nil {
		f.fail(err)
		return
	}
	f.complete(op.Dest.Reg, h)
}

func (f *frame) execAppend(op store.Op, args []store.Handle) {
	if len(args) != 2 {
		f.fail(werr.Newf(werr.Internal, "append expects 2 arguments, got %d", len(args)))
		return
	}
	r, err := f.m.Store.Reader(args[0])
	if err != nil {
		f.fail(err)
		return
	}
	tr, err := r.Tuple()
	if err != nil {
		f.fail(err)
		return
	}
	elems := append(append([]store.Handle(nil), tr.All()...), args[1])
	f.finishSync(op, store.MakeTuple(elems))
}

func (f *frame) execCons(op store.Op, args []store.Handle) {
	if len(args) != 2 {
		f.fail(werr.Newf(werr.Internal, "cons expects 2 arguments, got %d", len(args)))
		return
	}
	f.finishSync(op, store.MakeCons(args[0], args[1]))
}

func (f *frame) execJoinURL(op store.Op, args []store.Handle) {
	if len(args) != 2 {
		f.fail(werr.Newf(werr.Internal, "join_url expects 2 arguments, got %d", len(args)))
		return
	}
	baseR, err := f.m.Store.Reader(args[0])
	if err != nil {
		f.fail(err)
		return
	}
	base, err := baseR.AsString()
	if err != nil {
		f.fail(err)
		return
	}
	relR, err := f.m.Store.Reader(args[1])
	if err != nil {
		f.fail(err)
		return
	}
	rel, err := relR.AsString()
	if err != nil {
		f.fail(err)
		return
	}

	bu, err := url.Parse(base)
	if err != nil {
		f.fail(werr.Wrap(werr.BadFormat, err))
		return
	}
	ru, err := url.Parse(rel)
	if err != nil {
		f.fail(werr.Wrap(werr.BadFormat, err))
		return
	}
	f.finishSync(op, store.MakeString(bu.ResolveReference(ru).String()))
}

func (f *frame) execDecodeUTF8(op store.Op, args []store.Handle) {
	if len(args) != 1 {
		f.fail(werr.Newf(werr.Internal, "decode_utf8 expects 1 argument, got %d", len(args)))
		return
	}
	r, err := f.m.Store.Reader(args[0])
	if err != nil {
		f.fail(err)
		return
	}
	buf, err := r.AsBuffer()
	if err != nil {
		f.fail(err)
		return
	}
	if !utf8.Valid(buf) {
		f.fail(werr.New(werr.BadFormat, "decode_utf8: invalid utf-8"))
		return
	}
	f.finishSync(op, store.MakeString(string(buf)))
}

func (f *frame) execEncodeUTF8(op store.Op, args []store.Handle) {
	if len(args) != 1 {
		f.fail(werr.Newf(werr.Internal, "encode_utf8 expects 1 argument, got %d", len(args)))
		return
	}
	r, err := f.m.Store.Reader(args[0])
	if err != nil {
		f.fail(err)
		return
	}
	s, err := r.AsString()
	if err != nil {
		f.fail(err)
		return
	}
	f.finishSync(op, store.MakeBuffer([]byte(s)))
}
