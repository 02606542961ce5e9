// Package perenual is the query adapter for the Perenual species API.
//
// Search and Species return records already converted to [plant.Plant].
// Responses are cached for the client's TTL, and every cache miss is
// admitted by the shared rate gate and retried on HTTP 429.
//
// Callers that must never see a raw error use [Client.SearchResult] and
// [Client.SpeciesResult], which fold any terminal failure into the result.
package perenual

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/matzehuels/plantgate/pkg/buildinfo"
	"github.com/matzehuels/plantgate/pkg/cache"
	perrors "github.com/matzehuels/plantgate/pkg/errors"
	"github.com/matzehuels/plantgate/pkg/integrations"
	"github.com/matzehuels/plantgate/pkg/plant"
)

const (
	// DefaultBaseURL is the public Perenual API root.
	DefaultBaseURL = "https://perenual.com/api"

	// DefaultLimit is the page size used when a search does not set one.
	DefaultLimit = 8

	source    = "perenual"
	namespace = "perenual:"
)

// Client provides access to the Perenual species API.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	baseURL string
	apiKey  string
}

// NewClient creates a Perenual client. An empty apiKey is accepted; every
// lookup then fails with API_KEY_MISSING without contacting the upstream.
func NewClient(apiKey string, backend cache.Cache, cacheTTL time.Duration, opts ...integrations.Option) *Client {
	return &Client{
		Client: integrations.NewClient(backend, namespace, cacheTTL, map[string]string{
			"Accept":     "application/json",
			"User-Agent": buildinfo.UserAgent(),
		}, opts...),
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
	}
}

// WithBaseURL points the client at another API root, such as a mirror or a
// test server.
func (c *Client) WithBaseURL(u string) *Client {
	if u != "" {
		c.baseURL = u
	}
	return c
}

// Search finds species matching term, returning at most limit records.
// A limit of zero uses [DefaultLimit]. An upstream answer without data is
// an empty, non-nil slice.
func (c *Client) Search(ctx context.Context, term string, limit int) ([]plant.Plant, error) {
	if err := c.checkKey(); err != nil {
		return nil, err
	}
	term = integrations.NormalizeTerm(term)
	if err := perrors.ValidateSearchTerm(term); err != nil {
		return nil, err
	}
	if limit == 0 {
		limit = DefaultLimit
	}
	if err := perrors.ValidateLimit(limit); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("key", c.apiKey)
	q.Set("q", term)
	q.Set("page", "1")
	q.Set("limit", strconv.Itoa(limit))
	endpoint := c.baseURL + "/species-list?" + q.Encode()

	key := c.Keyer().SearchKey(c.Namespace(), term, limit)
	var resp listResponse
	err := c.Cached(ctx, key, false, &resp, func(ctx context.Context) error {
		return c.Get(ctx, endpoint, &resp)
	})
	if err != nil {
		c.Logger().Error("species search failed", "term", term, "error", err)
		return nil, err
	}

	if len(resp.Data) == 0 {
		c.Logger().Info("no plants found", "term", term)
		return []plant.Plant{}, nil
	}
	if len(resp.Data) > limit {
		resp.Data = resp.Data[:limit]
	}
	return toPlants(resp.Data), nil
}

// Species fetches the detail record for a Perenual species id.
func (c *Client) Species(ctx context.Context, id int) (*plant.Plant, error) {
	if err := c.checkKey(); err != nil {
		return nil, err
	}
	if err := perrors.ValidateSpeciesID(id); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("key", c.apiKey)
	endpoint := fmt.Sprintf("%s/species/details/%d?%s", c.baseURL, id, q.Encode())

	key := c.Keyer().SpeciesKey(c.Namespace(), id)
	var resp species
	err := c.Cached(ctx, key, false, &resp, func(ctx context.Context) error {
		return c.Get(ctx, endpoint, &resp)
	})
	if err != nil {
		c.Logger().Error("species lookup failed", "id", id, "error", err)
		return nil, err
	}
	if resp.ID == 0 {
		return nil, perrors.Wrap(perrors.ErrCodeNotFound, integrations.ErrNotFound, "species %d", id)
	}

	p := toPlant(resp)
	return &p, nil
}

func (c *Client) checkKey() error {
	if c.apiKey == "" {
		c.Logger().Error("Perenual API key is missing")
		return perrors.New(perrors.ErrCodeAPIKeyMissing, "Perenual API key is missing")
	}
	return nil
}
