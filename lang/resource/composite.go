package resource

import (
	"context"

	"github.com/weavelang/weave/internal/werr"
	"github.com/weavelang/weave/lang/store"
)

// Composite tries each of its providers in registration order, falling
// through to the next on a NotFound error (typically meaning "wrong
// scheme") and aborting immediately on any other error.
type Composite struct {
	providers []Provider
}

// NewComposite returns a Composite trying providers in the given order.
func NewComposite(providers ...Provider) *Composite {
	return &Composite{providers: providers}
}

func (c *Composite) Retrieve(ctx context.Context, url string) (store.Handle, error) {
	if len(c.providers) == 0 {
		return store.Handle{}, werr.New(werr.NotFound, "no resource providers registered")
	}
	var lastErr error
	for _, p := range c.providers {
		h, err := p.Retrieve(ctx, url)
		if err == nil {
			return h, nil
		}
		if werr.KindOf(err) != werr.NotFound {
			return store.Handle{}, err
		}
		lastErr = err
	}
	return store.Handle{}, lastErr
}
