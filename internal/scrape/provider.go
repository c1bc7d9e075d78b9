// Package scrape wraps the external scraping boundary: a single operation
// taking a loosely-typed request bag and returning a table of raw rows.
// The client half of the package adds argument cleanup, bounded retries,
// and proxy rotation on top of that boundary.
package scrape

import (
	"context"
	"errors"
	"fmt"
)

// Row is one raw posting as a board returns it, with board-specific column
// names and casings. The schema normalizer maps these onto the canonical
// posting later.
type Row map[string]any

// String returns the row value under key as a trimmed string, or "".
func (r Row) String(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// ResultSet is the ordered sequence of rows returned by one request.
// It may be empty; an empty set is a successful response, not a failure.
type ResultSet []Row

// Provider is the external scraping library boundary. Implementations must
// treat nil optional fields on the request as absent, never as explicit
// nulls, and must return an empty ResultSet (not an error) when a request
// succeeds with no rows.
type Provider interface {
	Scrape(ctx context.Context, req Request) (ResultSet, error)
}

// ErrBadLocation marks a board-side rejection of the location format.
// The client issues one targeted fallback for it on remote searches.
var ErrBadLocation = errors.New("board rejected location")

// ErrExhausted marks a request whose retries were all spent. Callers match
// it with errors.Is; the wrapping ScrapeError carries the detail.
var ErrExhausted = errors.New("retries exhausted")

// ScrapeError reports a request whose retries were exhausted. It matches
// ErrExhausted under errors.Is while unwrapping to the last underlying
// failure.
type ScrapeError struct {
	Board    string
	Attempts int
	Err      error
}

func (e *ScrapeError) Error() string {
	return fmt.Sprintf("scrape %s: %d attempts failed: %v", e.Board, e.Attempts, e.Err)
}

func (e *ScrapeError) Unwrap() error { return e.Err }

func (e *ScrapeError) Is(target error) bool { return target == ErrExhausted }
