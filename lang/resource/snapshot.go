package resource

import (
	"context"

	"github.com/VictoriaMetrics/fastcache"

	"github.com/weavelang/weave/lang/store"
)

// Snapshot is a caching overlay in front of an inner Provider: once a URL's
// bytes have been retrieved, later retrievals of the same URL are served
// from an in-memory fastcache instance instead of hitting the inner
// provider again. Non-buffer results (e.g. builtin:// resources, which
// retrieve straight to a compiled thunk) pass through uncached.
type Snapshot struct {
	Store *store.Store
	Inner Provider
	cache *fastcache.Cache
}

// NewSnapshot returns a Snapshot backed by a cache of up to maxBytes.
func NewSnapshot(s *store.Store, inner Provider, maxBytes int) *Snapshot {
	return &Snapshot{Store: s, Inner: inner, cache: fastcache.New(maxBytes)}
}

func (p *Snapshot) Retrieve(ctx context.Context, rawurl string) (store.Handle, error) {
	key := []byte(rawurl)
	if data, ok := p.cache.HasGet(nil, key); ok {
		return p.Store.Insert(store.MakeBuffer(data))
	}

	h, err := p.Inner.Retrieve(ctx, rawurl)
	if err != nil {
		return store.Handle{}, err
	}

	r, err := p.Store.Reader(h)
	if err != nil {
		return store.Handle{}, err
	}
	buf, err := r.AsBuffer()
	if err != nil {
		// Not a cacheable buffer result (e.g. builtin:// compiles straight
		// to a thunk); pass the handle through without caching it.
		return h, nil
	}
	p.cache.Set(key, buf)
	return h, nil
}
