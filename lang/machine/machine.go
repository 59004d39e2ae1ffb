// Package machine executes compiled code objects (lang/store.Code) against
// a lang/store.Store: the cooperative dataflow engine described in
// SPEC_FULL.md §4.5 (C6). The specification describes a single-threaded
// task set cooperatively scheduled with async/await; Go has no bare
// coroutines, so this package maps that design onto one owning goroutine
// per force-frame (the frame's register file and ready queue are only ever
// touched from that goroutine) plus one short-lived worker goroutine per
// outstanding Force/async-builtin task, each reporting its single result
// back over a frame-local completion channel. No register is ever written
// by more than one goroutine, so frame state needs no locking.
package machine

import (
	"context"

	"github.com/weavelang/weave/internal/werr"
	"github.com/weavelang/weave/lang/ast"
	"github.com/weavelang/weave/lang/compiler"
	"github.com/weavelang/weave/lang/resource"
	"github.com/weavelang/weave/lang/store"
	"github.com/weavelang/weave/lang/syscall"
	"golang.org/x/sync/singleflight"
)

// Machine ties together everything force() needs to run a program: the
// heap, the thunk memo, resource retrieval, the syscall registry, and a
// parser for the compile builtin. A Machine is safe for concurrent Force
// calls; singleflight collapses concurrent forces of the same thunk into
// one force_frame run (P3, S6).
type Machine struct {
	Store     *store.Store
	Memo      *store.ThunkMemo
	Resources resource.Provider
	Syscalls  *syscall.Registry
	Parser    ast.Parser

	compiler *compiler.Compiler
	sf       singleflight.Group
}

// New builds a Machine. memo, resources, and syscalls may be nil; a nil
// Resources makes fetch always fail NotFound, and a nil Syscalls makes sys
// always fail NotFound — both are valid configurations for a machine that
// never exercises those builtins (e.g. in compiler-only tests).
func New(s *store.Store, memo *store.ThunkMemo, resources resource.Provider, syscalls *syscall.Registry, parser ast.Parser) *Machine {
	if memo == nil {
		memo = store.NewThunkMemo(0)
	}
	return &Machine{
		Store:     s,
		Memo:      memo,
		Resources: resources,
		Syscalls:  syscalls,
		Parser:    parser,
		compiler:  compiler.New(s),
	}
}

// Heap implements lang/syscall.Caller.
func (m *Machine) Heap() *store.Store { return m.Store }

// Compiler exposes the Machine's module compiler to callers bootstrapping a
// program (internal/maincmd, lang/resource's builtin provider).
func (m *Machine) Compiler() *compiler.Compiler { return m.compiler }

// Force resolves h to weak head normal form: if h's cell is not a thunk, it
// is already in WHNF and is returned unchanged. Otherwise its target is run
// in a fresh force-frame exactly once (per thunk Handle, store-wide, via
// Memo and singleflight) and the result, which may itself be a thunk,
// replaces h for another pass — forcing chases a "thunk that returns a
// thunk" all the way down rather than returning an intermediate thunk.
func (m *Machine) Force(ctx context.Context, h store.Handle) (store.Handle, error) {
	cur := h
	for {
		r, err := m.Store.Reader(cur)
		if err != nil {
			return store.Handle{}, err
		}
		if r.Kind() != store.Thunk {
			return cur, nil
		}

		if result, ok := m.Memo.Get(cur); ok {
			cur = result
			continue
		}

		key := cur.String()
		v, err, _ := m.sf.Do(key, func() (interface{}, error) {
			if result, ok := m.Memo.Get(cur); ok {
				return result, nil
			}
			target, err := r.Thunk()
			if err != nil {
				return nil, err
			}
			result, err := m.forceFrame(ctx, target)
			if err != nil {
				return nil, err
			}
			m.Memo.Insert(cur, result)
			return result, nil
		})
		if err != nil {
			return store.Handle{}, err
		}
		cur = v.(store.Handle)
	}
}

// forceFrame runs target's code object (target is either a bare Code cell
// or a Partial awaiting no further arguments to become fully bound code) in
// one frame and returns its result register's handle.
func (m *Machine) forceFrame(ctx context.Context, target store.Handle) (store.Handle, error) {
	r, err := m.Store.Reader(target)
	if err != nil {
		return store.Handle{}, err
	}

	var code store.Code
	var inputs []store.Handle

	switch r.Kind() {
	case store.Code:
		code, err = r.Code()
		if err != nil {
			return store.Handle{}, err
		}
	case store.Partial:
		pr, err := r.Partial()
		if err != nil {
			return store.Handle{}, err
		}
		inputs = pr.Args
		cr, err := m.Store.Reader(pr.Code)
		if err != nil {
			return store.Handle{}, err
		}
		code, err = cr.Code()
		if err != nil {
			return store.Handle{}, err
		}
	default:
		return store.Handle{}, werr.Newf(werr.Internal, "thunk target is not code or partial, got %s", r.Kind())
	}

	fr := newFrame(ctx, m, code, inputs)
	return fr.run()
}
