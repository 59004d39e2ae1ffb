package machine

import (
	"context"

	"github.com/weavelang/weave/internal/werr"
	"github.com/weavelang/weave/lang/store"
)

// frame holds one force-frame's execution state: the register file, a
// use-counting readiness tracker per op (I4), a FIFO of ops whose
// dependencies are all satisfied, and a channel async tasks (Force, and the
// compile/fetch/sys builtins) report their single result back on. Every
// field here is touched only by the goroutine running run(); worker
// goroutines spawned for async ops never read or write frame state
// directly, they only send on doneCh.
type frame struct {
	m      *Machine
	ctx    context.Context
	code   store.Code
	inputs []store.Handle

	regs     []store.Handle
	have     []bool
	depsLeft []int32
	queue    []store.OpAddr
	doneCh   chan asyncResult

	pendingAsync int
	err          error
}

// asyncResult is what a worker goroutine reports back: the register it was
// computing, and either a handle or an error.
type asyncResult struct {
	reg store.RegID
	h   store.Handle
	err error
}

func newFrame(ctx context.Context, m *Machine, code store.Code, inputs []store.Handle) *frame {
	n := len(code.Ops)
	depsLeft := make([]int32, n)
	for i, op := range code.Ops {
		depsLeft[i] = int32(op.NumDeps())
	}
	return &frame{
		m:        m,
		ctx:      ctx,
		code:     code,
		inputs:   inputs,
		regs:     make([]store.Handle, n),
		have:     make([]bool, n),
		depsLeft: depsLeft,
		// Buffered to the op count so an async worker's send never blocks,
		// even if run returns (frame abandoned) before draining it
		// (SPEC_FULL.md §9: pending Force tasks are abandoned at frame
		// completion).
		doneCh: make(chan asyncResult, n),
	}
}

// run drains the ready queue and the completion channel until the frame's
// return register is computed or an error occurs. It is the only place a
// frame's register file is mutated.
func (f *frame) run() (store.Handle, error) {
	f.queue = append(f.queue, f.code.Ready...)

	for !f.have[f.code.Ret] && f.err == nil {
		if len(f.queue) > 0 {
			addr := f.queue[0]
			f.queue = f.queue[1:]
			f.execOp(addr)
			continue
		}

		if f.pendingAsync == 0 {
			f.fail(werr.New(werr.Internal, "scheduler stalled: no ready ops and no pending async work"))
			break
		}

		select {
		case res := <-f.doneCh:
			f.pendingAsync--
			if res.err != nil {
				f.fail(res.err)
				continue
			}
			f.complete(res.reg, res.h)
		case <-f.ctx.Done():
			f.fail(werr.Wrap(werr.Interrupted, f.ctx.Err()))
		}
	}

	if f.err != nil {
		return store.Handle{}, f.err
	}
	return f.regs[f.code.Ret], nil
}

func (f *frame) fail(err error) {
	if f.err == nil {
		f.err = err
	}
}

// complete records reg's value and pushes any consumer whose last
// outstanding dependency this was onto the ready queue (I4/I5).
func (f *frame) complete(reg store.RegID, h store.Handle) {
	f.regs[reg] = h
	f.have[reg] = true
	for _, useAddr := range f.code.Ops[reg].Dest.Uses {
		f.depsLeft[useAddr]--
		if f.depsLeft[useAddr] == 0 {
			f.queue = append(f.queue, useAddr)
		}
	}
}

func (f *frame) execOp(addr store.OpAddr) {
	op := f.code.Ops[addr]
	switch op.Kind {
	case store.OpSetValue:
		f.complete(op.Dest.Reg, f.code.Constants[op.Value])
	case store.OpSetInput:
		if int(op.Input) >= len(f.inputs) {
			f.fail(werr.Newf(werr.Internal, "input %d out of range (frame has %d inputs)", op.Input, len(f.inputs)))
			return
		}
		f.complete(op.Dest.Reg, f.inputs[op.Input])
	case store.OpForce:
		f.execForce(op)
	case store.OpBind:
		f.execBind(op)
	case store.OpInvoke:
		f.execInvoke(op)
	case store.OpBuiltin:
		f.execBuiltin(op)
	case store.OpMatch:
		f.execMatch(op)
	default:
		f.fail(werr.Newf(werr.Internal, "unknown op kind %d", op.Kind))
	}
}

// execForce is the one op kind that can turn into real async work: if the
// source register already holds a non-thunk value, it completes
// synchronously (the overwhelmingly common case — most values are never
// thunks). Only a genuine thunk spawns a worker goroutine that recurses
// into Machine.Force (which may itself fan out into further frames).
func (f *frame) execForce(op store.Op) {
	h := f.regs[op.Src]
	r, err := f.m.Store.Reader(h)
	if err != nil {
		f.fail(err)
		return
	}
	if r.Kind() != store.Thunk {
		f.complete(op.Dest.Reg, h)
		return
	}

	reg := op.Dest.Reg
	f.pendingAsync++
	go func() {
		result, err := f.m.Force(f.ctx, h)
		f.doneCh <- asyncResult{reg: reg, h: result, err: err}
	}()
}

// execBind attaches op.Args to op.Fn's code (if op.Fn is bare Code) or
// appends to an existing partial's bound args (if op.Fn is itself a
// Partial, from a previous Bind — multi-step currying). It never executes
// anything; it only builds a new Partial value.
func (f *frame) execBind(op store.Op) {
	fnH := f.regs[op.Fn]
	r, err := f.m.Store.Reader(fnH)
	if err != nil {
		f.fail(err)
		return
	}

	argHandles := make([]store.Handle, len(op.Args))
	for i, reg := range op.Args {
		argHandles[i] = f.regs[reg]
	}

	var v store.Value
	switch r.Kind() {
	case store.Code:
		v = store.MakePartial(fnH, argHandles)
	case store.Partial:
		pr, err := r.Partial()
		if err != nil {
			f.fail(err)
			return
		}
		combined := append(append([]store.Handle(nil), pr.Args...), argHandles...)
		v = store.MakePartial(pr.Code, combined)
	default:
		f.fail(werr.Newf(werr.Internal, "bind target is not code or partial, got %s", r.Kind()))
		return
	}

	h, err := f.m.Store.Insert(v)
	if err != nil {
		f.fail(err)
		return
	}
	f.complete(op.Dest.Reg, h)
}

// execInvoke wraps its target in a fresh thunk. The laziness this buys is
// real: nothing runs until some later Force op (in this frame or another)
// reads the thunk back out.
func (f *frame) execInvoke(op store.Op) {
	h, err := f.m.Store.Insert(store.MakeThunk(f.regs[op.Target]))
	if err != nil {
		f.fail(err)
		return
	}
	f.complete(op.Dest.Reg, h)
}

// execMatch selects the first matching case's target register and
// completes with its handle unforced — the compiler always follows a Match
// with a Force op in the same sub-graph (§4.4), so the value reaching the
// surrounding graph is always in WHNF.
func (f *frame) execMatch(op store.Op) {
	scrutH := f.regs[op.Target]
	sr, err := f.m.Store.Reader(scrutH)
	if err != nil {
		f.fail(err)
		return
	}

	for _, c := range op.Cases {
		switch c.Kind {
		case store.CaseDefault:
			f.complete(op.Dest.Reg, f.regs[c.Target])
			return

		case store.CaseTag:
			if sr.Kind() != store.Variant {
				continue
			}
			tagH, _, err := sr.VariantParts()
			if err != nil {
				f.fail(err)
				return
			}
			eq, err := f.m.Store.Equal(tagH, f.code.Constants[c.Literal])
			if err != nil {
				f.fail(err)
				return
			}
			if eq {
				f.complete(op.Dest.Reg, f.regs[c.Target])
				return
			}

		case store.CaseEq:
			eq, err := f.m.Store.Equal(scrutH, f.code.Constants[c.Literal])
			if err != nil {
				f.fail(err)
				return
			}
			if eq {
				f.complete(op.Dest.Reg, f.regs[c.Target])
				return
			}
		}
	}

	f.fail(werr.New(werr.BadFormat, "match had no matching case and no default"))
}
