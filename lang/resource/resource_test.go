package resource_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/weavelang/weave/internal/werr"
	"github.com/weavelang/weave/lang/resource"
	"github.com/weavelang/weave/lang/store"
)

// countingProvider wraps an inner Provider and counts how many times
// Retrieve actually reached it, for asserting cache-hit behavior.
type countingProvider struct {
	inner resource.Provider
	calls int
}

func (p *countingProvider) Retrieve(ctx context.Context, url string) (store.Handle, error) {
	p.calls++
	return p.inner.Retrieve(ctx, url)
}

func TestCompositeFallsThroughOnNotFound(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("from file"), 0o644))

	s := store.New()
	file := &resource.File{Store: s, Root: dir}
	// HTTP comes first and answers NotFound for the file:// scheme, so the
	// retrieval only succeeds by falling through to File.
	composite := resource.NewComposite(&resource.HTTP{Store: s}, file)

	h, err := composite.Retrieve(context.Background(), "file:///a.txt")
	require.NoError(t, err)
	r, err := s.Reader(h)
	require.NoError(t, err)
	buf, err := r.AsBuffer()
	require.NoError(t, err)
	require.Equal(t, "from file", string(buf))
}

func TestCompositeAbortsOnNonNotFoundError(t *testing.T) {
	s := store.New()
	file := &resource.File{Store: s, Root: t.TempDir()}
	composite := resource.NewComposite(file)

	// Malformed URL: File's url.Parse error is wrapped as BadFormat, not
	// NotFound, so Composite must not try any further provider for it (here
	// there is only one, but the point is it reports the real error kind).
	_, err := composite.Retrieve(context.Background(), "://bad")
	require.Error(t, err)
	require.Equal(t, werr.BadFormat, werr.KindOf(err))
}

func TestCompositeNotFoundWhenNoProviderMatches(t *testing.T) {
	s := store.New()
	file := &resource.File{Store: s, Root: t.TempDir()}
	composite := resource.NewComposite(file)

	_, err := composite.Retrieve(context.Background(), "http://example.com/thing")
	require.Error(t, err)
	require.Equal(t, werr.NotFound, werr.KindOf(err))
}

func TestSnapshotCachesAfterFirstRetrieve(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cached.txt"), []byte("bytes"), 0o644))

	s := store.New()
	inner := &countingProvider{inner: &resource.File{Store: s, Root: dir}}
	snap := resource.NewSnapshot(s, inner, 1<<20)

	h1, err := snap.Retrieve(context.Background(), "file:///cached.txt")
	require.NoError(t, err)
	h2, err := snap.Retrieve(context.Background(), "file:///cached.txt")
	require.NoError(t, err)

	require.Equal(t, 1, inner.calls, "second retrieve should be served from cache, not hit the inner provider again")

	r1, err := s.Reader(h1)
	require.NoError(t, err)
	b1, err := r1.AsBuffer()
	require.NoError(t, err)
	r2, err := s.Reader(h2)
	require.NoError(t, err)
	b2, err := r2.AsBuffer()
	require.NoError(t, err)
	require.Equal(t, string(b1), string(b2))
}
