package approvals

import (
	"context"
	"errors"

	"github.com/deeyajkotecha-del/helix-biotech-sub002/metrics"
)

// SearchStatus is the outcome of one registry search term
type SearchStatus int

const (
	SearchOK SearchStatus = iota
	SearchNotFound
	SearchFailed
)

func (s SearchStatus) String() string {
	switch s {
	case SearchOK:
		return "ok"
	case SearchNotFound:
		return "not_found"
	default:
		return "failed"
	}
}

// SearchOutcome carries the result of searching one field for one term.
// Err is set only for SearchFailed.
type SearchOutcome struct {
	Field   string
	Term    string
	Status  SearchStatus
	Results []drugsFDAResult
	Err     error
}

// searchTerm wraps Client.search into an outcome, recording a metric per call
func (c *Client) searchTerm(ctx context.Context, field, term string, limit int) SearchOutcome {
	outcome := SearchOutcome{Field: field, Term: term}

	results, err := c.search(ctx, field, term, limit)
	switch {
	case err == nil:
		outcome.Status = SearchOK
		outcome.Results = results
	case errors.Is(err, ErrNotFound):
		outcome.Status = SearchNotFound
	default:
		outcome.Status = SearchFailed
		outcome.Err = err
	}

	metrics.RegistryRequests.WithLabelValues(field, outcome.Status.String()).Inc()
	return outcome
}
