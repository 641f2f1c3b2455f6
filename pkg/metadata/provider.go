package metadata

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/segmentio/encoding/json"
	"golang.org/x/net/html"
	"golang.org/x/time/rate"
)

var (
	// ErrMissingQueryInput means a search had no usable key (no ISBN, title,
	// or file name). Recovered locally: the provider contributes nothing and
	// the refresh continues.
	ErrMissingQueryInput = errors.New("no usable search input")

	// ErrProviderUnavailable means a provider could not be reached or its
	// response could not be parsed. Recovered locally by the orchestrator.
	ErrProviderUnavailable = errors.New("provider unavailable")
)

// Provider is an external source of book metadata. Search returns candidate
// ids ordered by the source's own relevance; FetchDetail resolves one id to a
// full record. Providers are stateless and safe for concurrent use.
//
// Absent fields in a detail page yield nil attributes, never errors; only
// structural failures (the document can't be loaded at all) are hard errors.
type Provider interface {
	Name() string
	Search(ctx context.Context, q Query) ([]string, error)
	FetchDetail(ctx context.Context, id string) (*Record, error)
}

const (
	httpTimeout    = 20 * time.Second
	requestsPerSec = 2
	userAgent      = "folio/1.0 (+https://github.com/folioreads/folio)"
)

// httpClient is the shared provider HTTP client. A token-bucket limiter paces
// requests per client so that a bulk refresh doesn't hammer a provider even
// before the per-book throttle kicks in.
type httpClient struct {
	client  *http.Client
	limiter *rate.Limiter
}

func newHTTPClient() *httpClient {
	return &httpClient{
		client:  &http.Client{Timeout: httpTimeout},
		limiter: rate.NewLimiter(rate.Limit(requestsPerSec), 1),
	}
}

func (c *httpClient) get(ctx context.Context, url string) (io.ReadCloser, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, errors.WithStack(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(ErrProviderUnavailable, "get %s: %v", url, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, errors.Wrapf(ErrProviderUnavailable, "get %s: status %d", url, resp.StatusCode)
	}
	return resp.Body, nil
}

// getJSON fetches url and decodes the response body into out.
func (c *httpClient) getJSON(ctx context.Context, url string, out interface{}) error {
	body, err := c.get(ctx, url)
	if err != nil {
		return err
	}
	defer body.Close()

	if err := json.NewDecoder(body).Decode(out); err != nil {
		return errors.Wrapf(ErrProviderUnavailable, "decode %s: %v", url, err)
	}
	return nil
}

// getDocument fetches url and parses the response body as HTML.
func (c *httpClient) getDocument(ctx context.Context, url string) (*html.Node, error) {
	body, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	doc, err := html.Parse(body)
	if err != nil {
		return nil, errors.Wrapf(ErrProviderUnavailable, "parse %s: %v", url, err)
	}
	return doc, nil
}
