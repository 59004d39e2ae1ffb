package machine

import (
	"github.com/weavelang/weave/internal/werr"
	"github.com/weavelang/weave/lang/store"
	"github.com/weavelang/weave/lang/syscall"
)

// execFetchAsync retrieves a URL through the Machine's resource.Provider on
// its own goroutine, since a provider may hit the filesystem or the
// network (§4.8).
func (f *frame) execFetchAsync(op store.Op, args []store.Handle) {
	if len(args) != 1 {
		f.fail(werr.Newf(werr.Internal, "fetch expects 1 argument, got %d", len(args)))
		return
	}
	if f.m.Resources == nil {
		f.fail(werr.New(werr.NotFound, "fetch: no resource provider configured"))
		return
	}
	r, err := f.m.Store.Reader(args[0])
	if err != nil {
		f.fail(err)
		return
	}
	urlStr, err := r.AsString()
	if err != nil {
		f.fail(err)
		return
	}

	reg := op.Dest.Reg
	f.pendingAsync++
	go func() {
		h, err := f.m.Resources.Retrieve(f.ctx, urlStr)
		f.doneCh <- asyncResult{reg: reg, h: h, err: err}
	}()
}

// execCompileAsync compiles a (filename, source) pair into a module thunk.
// Compiling involves parsing (an arbitrary Parser implementation) and is
// treated as potentially expensive, so it runs off the frame goroutine like
// fetch and sys.
func (f *frame) execCompileAsync(op store.Op, args []store.Handle) {
	if len(args) != 2 {
		f.fail(werr.Newf(werr.Internal, "compile expects 2 arguments (filename, source), got %d", len(args)))
		return
	}
	if f.m.Parser == nil {
		f.fail(werr.New(werr.Internal, "compile: no parser configured"))
		return
	}
	fnH, srcH := args[0], args[1]

	reg := op.Dest.Reg
	f.pendingAsync++
	go func() {
		h, err := f.runCompile(fnH, srcH)
		f.doneCh <- asyncResult{reg: reg, h: h, err: err}
	}()
}

func (f *frame) runCompile(fnH, srcH store.Handle) (store.Handle, error) {
	fnR, err := f.m.Store.Reader(fnH)
	if err != nil {
		return store.Handle{}, err
	}
	filename, err := fnR.AsString()
	if err != nil {
		return store.Handle{}, err
	}
	srcR, err := f.m.Store.Reader(srcH)
	if err != nil {
		return store.Handle{}, err
	}
	src, err := srcR.AsString()
	if err != nil {
		return store.Handle{}, err
	}
	return f.m.compiler.CompileModule(f.m.Parser, filename, src)
}

// execSysAsync dispatches args[0] (the syscall name) to the registered
// Handler, passing the remaining args unforced — a handler that needs an
// argument's value forces it itself via the Caller it's given.
func (f *frame) execSysAsync(op store.Op, args []store.Handle) {
	if len(args) < 1 {
		f.fail(werr.New(werr.Internal, "sys expects at least 1 argument (name)"))
		return
	}
	if f.m.Syscalls == nil {
		f.fail(werr.New(werr.NotFound, "sys: no syscall registry configured"))
		return
	}
	nameH := args[0]
	callArgs := append([]store.Handle(nil), args[1:]...)

	reg := op.Dest.Reg
	f.pendingAsync++
	go func() {
		h, err := f.runSys(nameH, callArgs)
		f.doneCh <- asyncResult{reg: reg, h: h, err: err}
	}()
}

func (f *frame) runSys(nameH store.Handle, callArgs []store.Handle) (store.Handle, error) {
	nr, err := f.m.Store.Reader(nameH)
	if err != nil {
		return store.Handle{}, err
	}
	name, err := nr.AsString()
	if err != nil {
		return store.Handle{}, err
	}
	handler, ok := f.m.Syscalls.Lookup(name)
	if !ok {
		return store.Handle{}, syscall.NotFound(name)
	}
	return handler.Call(f.ctx, f.m, callArgs)
}
