package syscalls

import "github.com/weavelang/weave/lang/syscall"

// Register binds every bundled handler into r under its syscall name.
func Register(r *syscall.Registry) {
	r.Register("uuid_new", syscall.HandlerFunc(UUIDNew))
	r.Register("clock_now", syscall.HandlerFunc(ClockNow))
	r.Register("env_lookup", syscall.HandlerFunc(EnvLookup))
	r.Register("ws_ping", syscall.HandlerFunc(WSPing))
}
