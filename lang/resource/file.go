package resource

import (
	"context"
	"errors"
	"net/url"
	"os"
	"path/filepath"

	"github.com/weavelang/weave/internal/werr"
	"github.com/weavelang/weave/lang/store"
)

// File serves file:// URLs by reading from Root on the local filesystem.
// The URL's path is joined under Root, so a retrieval can never escape it
// via a rooted path.
type File struct {
	Store *store.Store
	Root  string
}

func (p *File) Retrieve(ctx context.Context, rawurl string) (store.Handle, error) {
	u, err := url.Parse(rawurl)
	if err != nil {
		return store.Handle{}, werr.Wrap(werr.BadFormat, err)
	}
	if u.Scheme != "file" {
		return store.Handle{}, werr.Newf(werr.NotFound, "file provider does not serve scheme %q", u.Scheme)
	}

	path := filepath.Join(p.Root, filepath.FromSlash(u.Path))
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return store.Handle{}, werr.Newf(werr.NotFound, "resource not found: %s", rawurl)
		}
		return store.Handle{}, werr.Wrap(werr.Filesystem, err)
	}
	return p.Store.Insert(store.MakeBuffer(data))
}
