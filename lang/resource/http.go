package resource

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/weavelang/weave/internal/werr"
	"github.com/weavelang/weave/lang/store"
)

// HTTP serves http:// and https:// URLs with a plain GET, storing the
// response body as a buffer.
type HTTP struct {
	Store   *store.Store
	Client  *http.Client
	Timeout time.Duration
}

func (p *HTTP) Retrieve(ctx context.Context, rawurl string) (store.Handle, error) {
	u, err := url.Parse(rawurl)
	if err != nil {
		return store.Handle{}, werr.Wrap(werr.BadFormat, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return store.Handle{}, werr.Newf(werr.NotFound, "http provider does not serve scheme %q", u.Scheme)
	}

	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawurl, nil)
	if err != nil {
		return store.Handle{}, werr.Wrap(werr.IO, err)
	}

	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return store.Handle{}, werr.Wrap(werr.IO, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return store.Handle{}, werr.Newf(werr.NotFound, "resource not found: %s", rawurl)
	}
	if resp.StatusCode >= 400 {
		return store.Handle{}, werr.Newf(werr.IO, "http fetch failed with status %d: %s", resp.StatusCode, rawurl)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return store.Handle{}, werr.Wrap(werr.IO, err)
	}
	return p.Store.Insert(store.MakeBuffer(data))
}
