// Package resource implements the fetch builtin's backing providers (C8):
// retrieve(url) -> Handle, composed from file://, http(s)://, and
// builtin:// sources, with an optional caching overlay.
package resource

import (
	"context"

	"github.com/weavelang/weave/lang/store"
)

// Provider retrieves the resource named by url and stores it as a value,
// returning its Handle. A provider that does not recognize url's scheme
// returns a NotFound error so Composite can fall through to the next one;
// any other error kind aborts the whole retrieval.
type Provider interface {
	Retrieve(ctx context.Context, url string) (store.Handle, error)
}
