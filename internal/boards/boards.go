package boards

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jimezsa/jobsweep/internal/models"
	"github.com/jimezsa/jobsweep/internal/network"
	"github.com/jimezsa/jobsweep/internal/scrape"
)

// fetcher is one board's scraper. Fetchers return their board's raw rows
// and never filter or normalize beyond dropping unusable cards.
type fetcher interface {
	board() string
	transport() *network.Client
	fetch(ctx context.Context, req scrape.Request) (scrape.ResultSet, error)
}

// Set implements the provider boundary over the production board
// fetchers. Each board gets its own transport so cookies never bleed
// between boards, but all transports share one proxy rotator.
type Set struct {
	fetchers map[string]fetcher
	log      zerolog.Logger
}

func New(rotator *network.Rotator, userAgent, caCert string, log zerolog.Logger) (*Set, error) {
	set := &Set{fetchers: map[string]fetcher{}, log: log}

	for _, build := range []func(*network.Client) fetcher{
		func(c *network.Client) fetcher { return newIndeed(c) },
		func(c *network.Client) fetcher { return newGlassdoor(c) },
		func(c *network.Client) fetcher { return newGoogleJobs(c) },
		func(c *network.Client) fetcher { return newZipRecruiter(c) },
		func(c *network.Client) fetcher { return newLinkedIn(c) },
	} {
		client, err := network.NewClient(rotator, userAgent, caCert)
		if err != nil {
			return nil, err
		}
		f := build(client)
		set.fetchers[f.board()] = f
	}

	// Accept the unseparated spelling too.
	set.fetchers["ziprecruiter"] = set.fetchers[models.BoardZipRecruiter]

	return set, nil
}

// Scrape fans the request out to every requested board in order and
// concatenates the raw rows. A board failure fails the whole request so
// the retry layer above can back off and re-issue it.
func (s *Set) Scrape(ctx context.Context, req scrape.Request) (scrape.ResultSet, error) {
	var rows scrape.ResultSet
	for _, board := range req.Boards {
		f, ok := s.fetchers[board]
		if !ok {
			return nil, fmt.Errorf("unknown board %q", board)
		}

		if len(req.Proxies) > 0 {
			if err := f.transport().UseProxy(req.Proxies[0]); err != nil {
				s.log.Warn().Err(err).Str("board", board).Msg("proxy pin failed, continuing without")
			}
		}

		batch, err := f.fetch(ctx, req)
		if err != nil {
			return nil, err
		}
		s.log.Debug().Str("board", board).Int("rows", len(batch)).Msg("board fetch complete")
		rows = append(rows, batch...)
	}
	return rows, nil
}

// headersFor builds per-request header overrides for a fetch.
func headersFor(req scrape.Request) map[string]string {
	headers := map[string]string{}
	if req.UserAgent != "" {
		headers["user-agent"] = req.UserAgent
	}
	return headers
}
