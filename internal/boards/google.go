package boards

import (
	"context"
	"fmt"
	"net/url"

	"github.com/jimezsa/jobsweep/internal/models"
	"github.com/jimezsa/jobsweep/internal/network"
	"github.com/jimezsa/jobsweep/internal/scrape"
)

// googleJobs never receives a location parameter: the locality has to be
// part of the free-text search term, and remote/job-type preferences are
// enforced after the fact.
type googleJobs struct {
	client *network.Client
}

func newGoogleJobs(client *network.Client) *googleJobs {
	return &googleJobs{client: client}
}

func (g *googleJobs) board() string { return models.BoardGoogle }

func (g *googleJobs) transport() *network.Client { return g.client }

func (g *googleJobs) fetch(ctx context.Context, req scrape.Request) (scrape.ResultSet, error) {
	term := req.GoogleSearchTerm
	if term == "" {
		term = req.SearchTerm
	}

	values := url.Values{}
	values.Set("q", term)
	values.Set("ibp", "htl;jobs")
	target := fmt.Sprintf("https://www.google.com/search?%s", values.Encode())

	doc, err := fetchDocument(ctx, g.client, target, headersFor(req))
	if err != nil {
		return nil, fmt.Errorf("google: %w", err)
	}

	rows := parseJSONLDRows(doc, models.BoardGoogle)
	return capRows(rows, req.ResultsWanted), nil
}
