package perenual

import (
	"context"
	"errors"

	perrors "github.com/matzehuels/plantgate/pkg/errors"
	"github.com/matzehuels/plantgate/pkg/plant"
)

// SearchResult is the outcome of a search with failures folded in.
// Exactly one of Plants and Error is meaningful: on failure Plants is nil.
type SearchResult struct {
	Plants []plant.Plant `json:"plants,omitempty"`
	Error  string        `json:"error,omitempty"`
	Code   perrors.Code  `json:"code,omitempty"`
}

// Failed reports whether the lookup ended in an error.
func (r SearchResult) Failed() bool { return r.Error != "" }

// SpeciesResult is the outcome of a detail lookup with failures folded in.
type SpeciesResult struct {
	Plant *plant.Plant `json:"plant,omitempty"`
	Error string       `json:"error,omitempty"`
	Code  perrors.Code `json:"code,omitempty"`
}

// Failed reports whether the lookup ended in an error.
func (r SpeciesResult) Failed() bool { return r.Error != "" }

// SearchResult runs [Client.Search] and never returns a raw error. A missing
// API key yields Error "API_KEY_MISSING" so callers can show a setup hint.
func (c *Client) SearchResult(ctx context.Context, term string, limit int) SearchResult {
	plants, err := c.Search(ctx, term, limit)
	if err != nil {
		msg, code := describe(err)
		return SearchResult{Error: msg, Code: code}
	}
	return SearchResult{Plants: plants}
}

// SpeciesResult runs [Client.Species] and never returns a raw error.
func (c *Client) SpeciesResult(ctx context.Context, id int) SpeciesResult {
	p, err := c.Species(ctx, id)
	if err != nil {
		msg, code := describe(err)
		return SpeciesResult{Error: msg, Code: code}
	}
	return SpeciesResult{Plant: p}
}

func describe(err error) (string, perrors.Code) {
	code := perrors.GetCode(err)
	switch {
	case code != "":
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		code = perrors.ErrCodeTimeout
	default:
		code = perrors.ErrCodeInternal
	}
	if code == perrors.ErrCodeAPIKeyMissing {
		return string(code), code
	}
	return err.Error(), code
}
