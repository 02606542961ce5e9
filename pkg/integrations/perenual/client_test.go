package perenual

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/plantgate/pkg/cache"
	perrors "github.com/matzehuels/plantgate/pkg/errors"
	"github.com/matzehuels/plantgate/pkg/httputil"
	"github.com/matzehuels/plantgate/pkg/integrations"
	"github.com/matzehuels/plantgate/pkg/ratelimit"
)

const listBody = `{
	"data": [
		{"id": 1, "common_name": "Tomato", "type": "Vegetable", "sunlight": ["full sun"], "dimensions": {"max_height": 180}},
		{"id": 2, "common_name": "Cherry Tomato", "sunlight": []}
	],
	"total": 2, "current_page": 1, "last_page": 1
}`

type fakeAPI struct {
	*httptest.Server
	hits atomic.Int32
}

func newFakeAPI(t *testing.T, handler http.HandlerFunc) *fakeAPI {
	t.Helper()
	f := &fakeAPI{}
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.hits.Add(1)
		handler(w, r)
	}))
	t.Cleanup(f.Close)
	return f
}

func newTestClient(t *testing.T, api *fakeAPI, key string, backend cache.Cache, opts ...integrations.Option) *Client {
	t.Helper()
	policy := httputil.DefaultPolicy()
	policy.BaseDelay = time.Millisecond
	policy.MaxDelay = time.Millisecond
	policy.MaxJitter = 0
	policy.Logger = log.New(io.Discard)

	opts = append([]integrations.Option{
		integrations.WithHTTPClient(api.Client()),
		integrations.WithLogger(log.New(io.Discard)),
		integrations.WithPolicy(policy),
	}, opts...)
	return NewClient(key, backend, time.Hour, opts...).WithBaseURL(api.URL)
}

func TestSearchRequestAndConversion(t *testing.T) {
	api := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/species-list", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "secret", q.Get("key"))
		assert.Equal(t, "tomato", q.Get("q"))
		assert.Equal(t, "1", q.Get("page"))
		assert.Equal(t, "8", q.Get("limit"))
		fmt.Fprint(w, listBody)
	})
	c := newTestClient(t, api, "secret", nil)

	plants, err := c.Search(context.Background(), "  tomato ", 0)

	require.NoError(t, err)
	require.Len(t, plants, 2)
	assert.Equal(t, "perenual-1", plants[0].ID)
	assert.Equal(t, "Vegetable", plants[0].Type)
	assert.Equal(t, 18, plants[0].Spacing)
	assert.Equal(t, "Unknown", plants[1].Light)
	assert.Equal(t, "Unknown", plants[1].Type)
}

func TestSearchEmptyData(t *testing.T) {
	for name, body := range map[string]string{
		"empty list": `{"data": []}`,
		"no data":    `{}`,
	} {
		t.Run(name, func(t *testing.T) {
			api := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) { fmt.Fprint(w, body) })
			c := newTestClient(t, api, "secret", nil)

			plants, err := c.Search(context.Background(), "zzz", 5)
			require.NoError(t, err)
			assert.NotNil(t, plants)
			assert.Empty(t, plants)
		})
	}
}

func TestSearchMissingKeyNeverCallsUpstream(t *testing.T) {
	api := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) { fmt.Fprint(w, listBody) })
	c := newTestClient(t, api, "", nil)

	_, err := c.Search(context.Background(), "tomato", 8)
	assert.True(t, perrors.Is(err, perrors.ErrCodeAPIKeyMissing))

	res := c.SearchResult(context.Background(), "tomato", 8)
	assert.True(t, res.Failed())
	assert.Equal(t, "API_KEY_MISSING", res.Error)
	assert.Nil(t, res.Plants)

	sp := c.SpeciesResult(context.Background(), 1)
	assert.Equal(t, "API_KEY_MISSING", sp.Error)

	assert.Equal(t, int32(0), api.hits.Load())
}

func TestSearchCacheHitBypassesGateAndUpstream(t *testing.T) {
	api := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) { fmt.Fprint(w, listBody) })
	mem := cache.NewMemoryCache()
	defer mem.Close()
	gate := ratelimit.New(ratelimit.DefaultConfig(), ratelimit.WithLogger(log.New(io.Discard)))
	c := newTestClient(t, api, "secret", mem, integrations.WithGate(gate))

	first, err := c.Search(context.Background(), "Tomato", 8)
	require.NoError(t, err)
	second, err := c.Search(context.Background(), "tomato", 8)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), api.hits.Load())
	assert.Equal(t, 1, gate.Stats().WindowCount)
}

func TestSearchDifferentLimitsAreDistinctEntries(t *testing.T) {
	api := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) { fmt.Fprint(w, listBody) })
	mem := cache.NewMemoryCache()
	defer mem.Close()
	c := newTestClient(t, api, "secret", mem)

	_, err := c.Search(context.Background(), "tomato", 8)
	require.NoError(t, err)
	plants, err := c.Search(context.Background(), "tomato", 1)
	require.NoError(t, err)

	assert.Len(t, plants, 1)
	assert.Equal(t, int32(2), api.hits.Load())
}

func TestSearchRetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	api := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, listBody)
	})
	c := newTestClient(t, api, "secret", nil)

	plants, err := c.Search(context.Background(), "tomato", 8)

	require.NoError(t, err)
	assert.Len(t, plants, 2)
	assert.Equal(t, int32(3), api.hits.Load())
}

func TestSearchResultFoldsErrors(t *testing.T) {
	api := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	c := newTestClient(t, api, "secret", nil)

	res := c.SearchResult(context.Background(), "tomato", 8)

	assert.True(t, res.Failed())
	assert.Equal(t, perrors.ErrCodeRateLimited, res.Code)
	assert.Equal(t, int32(4), api.hits.Load())
}

func TestSearchResultUnauthorized(t *testing.T) {
	api := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	c := newTestClient(t, api, "bad", nil)

	res := c.SearchResult(context.Background(), "tomato", 8)

	assert.Equal(t, perrors.ErrCodeUnauthorized, res.Code)
	assert.Equal(t, int32(1), api.hits.Load())
}

func TestSearchValidation(t *testing.T) {
	api := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) { fmt.Fprint(w, listBody) })
	c := newTestClient(t, api, "secret", nil)

	_, err := c.Search(context.Background(), "   ", 8)
	assert.True(t, perrors.Is(err, perrors.ErrCodeInvalidSearch))

	_, err = c.Search(context.Background(), "tomato", 31)
	assert.True(t, perrors.Is(err, perrors.ErrCodeInvalidLimit))

	_, err = c.Search(context.Background(), "tomato", -1)
	assert.True(t, perrors.Is(err, perrors.ErrCodeInvalidLimit))

	assert.Equal(t, int32(0), api.hits.Load())
}

func TestSpecies(t *testing.T) {
	api := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/species/details/42", r.URL.Path)
		assert.Equal(t, "secret", r.URL.Query().Get("key"))
		fmt.Fprint(w, `{"id": 42, "common_name": "Lavender", "care_level": "Low", "poisonous_to_pets": 0, "poisonous_to_humans": 0}`)
	})
	mem := cache.NewMemoryCache()
	defer mem.Close()
	c := newTestClient(t, api, "secret", mem)

	p, err := c.Species(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, "perenual-42", p.ID)
	assert.Equal(t, "Lavender", p.Name)
	assert.Equal(t, "Low", p.CareLevel)
	assert.Equal(t, "Non-toxic", p.Toxicity)

	res := c.SpeciesResult(context.Background(), 42)
	assert.False(t, res.Failed())
	assert.Equal(t, p, res.Plant)
	assert.Equal(t, int32(1), api.hits.Load())
}

func TestSpeciesNotFound(t *testing.T) {
	api := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	c := newTestClient(t, api, "secret", nil)

	_, err := c.Species(context.Background(), 99)
	assert.ErrorIs(t, err, integrations.ErrNotFound)

	res := c.SpeciesResult(context.Background(), 99)
	assert.Equal(t, perrors.ErrCodeNotFound, res.Code)
}

func TestSpeciesEmptyBodyIsNotFound(t *testing.T) {
	api := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) { fmt.Fprint(w, `{}`) })
	c := newTestClient(t, api, "secret", nil)

	_, err := c.Species(context.Background(), 5)
	assert.True(t, perrors.Is(err, perrors.ErrCodeNotFound))
}

func TestSpeciesInvalidID(t *testing.T) {
	api := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {})
	c := newTestClient(t, api, "secret", nil)

	_, err := c.Species(context.Background(), 0)
	assert.True(t, perrors.Is(err, perrors.ErrCodeInvalidSpeciesID))
	assert.Equal(t, int32(0), api.hits.Load())
}

func TestSearchResultCancelledContext(t *testing.T) {
	api := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) { fmt.Fprint(w, listBody) })
	gate := ratelimit.New(ratelimit.DefaultConfig(), ratelimit.WithLogger(log.New(io.Discard)))
	c := newTestClient(t, api, "secret", nil, integrations.WithGate(gate))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := c.SearchResult(ctx, "tomato", 8)

	assert.Equal(t, perrors.ErrCodeTimeout, res.Code)
	assert.Equal(t, int32(0), api.hits.Load())
}
