package maincmd

import (
	"github.com/weavelang/weave/internal/config"
	"github.com/weavelang/weave/internal/syscalls"
	"github.com/weavelang/weave/lang/compiler"
	"github.com/weavelang/weave/lang/machine"
	"github.com/weavelang/weave/lang/resource"
	"github.com/weavelang/weave/lang/store"
	"github.com/weavelang/weave/lang/syscall"
)

// buildMachine assembles a fresh Store-backed Machine configured from cfg
// (overridden by any flags the user passed), with the full resource
// provider chain (a Composite of builtin, file and http, wrapped in a
// caching Snapshot when SnapshotCacheBytes > 0) and the bundled syscall
// handlers registered.
func (c *Cmd) buildMachine(cfg config.Config) (*machine.Machine, *store.Store, *store.ThunkMemo) {
	if c.Root != "" {
		cfg.FileRoot = c.Root
	}

	s := store.New()
	comp := compiler.New(s)

	builtinP := &resource.Builtin{Store: s, Compiler: comp}
	fileP := &resource.File{Store: s, Root: cfg.FileRoot}
	httpP := &resource.HTTP{Store: s, Timeout: cfg.HTTPTimeout}

	var providers resource.Provider = resource.NewComposite(builtinP, fileP, httpP)
	if cfg.SnapshotCacheBytes > 0 {
		providers = resource.NewSnapshot(s, providers, cfg.SnapshotCacheBytes)
	}

	reg := syscall.NewRegistry()
	syscalls.Register(reg)

	memo := store.NewThunkMemo(0)
	m := machine.New(s, memo, providers, reg, c.Parser)
	return m, s, memo
}
