// Package config holds the interpreter's environment-driven settings,
// populated with github.com/caarlos0/env/v6 the same way the teacher's own
// CLI dependency (github.com/mna/mainer) pulls it in for flag/env parsing.
package config

import (
	"time"

	"github.com/caarlos0/env/v6"
)

// Config is the process-wide configuration for cmd/weave. Every field has a
// workable default so a bare `weave run file.weave` needs no environment at
// all; the env vars exist for deployment-time overrides (container images,
// CI).
type Config struct {
	// FileRoot is the base directory file:// resource URLs are resolved
	// against.
	FileRoot string `env:"WEAVE_FILE_ROOT" envDefault:"."`

	// HTTPTimeout bounds a single http(s):// fetch. Zero disables the
	// per-request timeout (the request still obeys ctx cancellation).
	HTTPTimeout time.Duration `env:"WEAVE_HTTP_TIMEOUT" envDefault:"30s"`

	// SnapshotCacheBytes sizes the resource.Snapshot cache. Zero disables
	// the caching overlay entirely (every fetch reaches the inner provider).
	SnapshotCacheBytes int `env:"WEAVE_SNAPSHOT_CACHE_BYTES" envDefault:"16777216"`

	// DebugAddr is the listen address for `weave serve`.
	DebugAddr string `env:"WEAVE_DEBUG_ADDR" envDefault:"127.0.0.1:4772"`
}

// Load reads Config from the process environment, applying envDefault
// values for anything unset.
func Load() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, err
	}
	return c, nil
}
