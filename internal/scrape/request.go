package scrape

import (
	"errors"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Caps applied to the requested result count before dispatch.
const (
	MinResults = 1
	MaxResults = 2000
)

var ErrNoBoards = errors.New("at least one board is required")

// Request is the loosely-typed argument bag handed to the provider. Nil
// pointer fields are omitted from the outgoing request entirely; the
// backing library rejects explicit nulls for them.
type Request struct {
	Boards           []string
	SearchTerm       string
	GoogleSearchTerm string
	Location         string
	Country          string

	ResultsWanted int
	HoursOld      *int
	Remote        *bool
	JobType       string
	EasyApply     *bool
	Offset        *int
	Distance      *int

	FetchDescriptions bool

	Proxies   []string
	UserAgent string
	CACert    string
}

// Board returns the request's primary board name, lowercased.
func (r Request) Board() string {
	if len(r.Boards) == 0 {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(r.Boards[0]))
}

// cleaned returns a sanitized copy of the request, leaving the caller's
// value untouched. It clamps the result cap, drops blank proxies and user
// agents, ignores missing CA bundles, and enforces the at-most-one rule
// for the generic and Google-specific search terms.
func (r Request) cleaned(logger zerolog.Logger) (Request, error) {
	out := r
	out.Boards = nil
	for _, b := range r.Boards {
		b = strings.ToLower(strings.TrimSpace(b))
		if b == "" {
			continue
		}
		out.Boards = append(out.Boards, b)
	}
	if len(out.Boards) == 0 {
		return out, ErrNoBoards
	}

	if out.ResultsWanted < MinResults {
		out.ResultsWanted = MinResults
	}
	if out.ResultsWanted > MaxResults {
		out.ResultsWanted = MaxResults
	}

	out.UserAgent = strings.TrimSpace(out.UserAgent)

	out.Proxies = nil
	for _, p := range r.Proxies {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out.Proxies = append(out.Proxies, p)
	}

	if out.CACert != "" {
		if _, err := os.Stat(out.CACert); err != nil {
			logger.Warn().Str("ca_cert", out.CACert).Msg("CA bundle not found, ignoring")
			out.CACert = ""
		}
	}

	// Google accepts only its board-specific term; never send both.
	for _, b := range out.Boards {
		if b == "google" {
			if out.GoogleSearchTerm == "" {
				out.GoogleSearchTerm = out.SearchTerm
			}
			out.SearchTerm = ""
			break
		}
	}

	return out, nil
}

// Args renders the request as the key/value bag actually sent across the
// boundary, omitting every unset optional field. Used by the debug sink to
// record the exact request issued.
func (r Request) Args() map[string]any {
	args := map[string]any{
		"site_name":      r.Boards,
		"results_wanted": r.ResultsWanted,
	}
	if r.SearchTerm != "" {
		args["search_term"] = r.SearchTerm
	}
	if r.GoogleSearchTerm != "" {
		args["google_search_term"] = r.GoogleSearchTerm
	}
	if r.Location != "" {
		args["location"] = r.Location
	}
	if r.Country != "" {
		args["country_indeed"] = r.Country
	}
	if r.HoursOld != nil {
		args["hours_old"] = *r.HoursOld
	}
	if r.Remote != nil {
		args["is_remote"] = *r.Remote
	}
	if r.JobType != "" {
		args["job_type"] = r.JobType
	}
	if r.EasyApply != nil {
		args["easy_apply"] = *r.EasyApply
	}
	if r.Offset != nil {
		args["offset"] = *r.Offset
	}
	if r.Distance != nil {
		args["distance"] = *r.Distance
	}
	if r.FetchDescriptions {
		args["linkedin_fetch_description"] = true
	}
	if len(r.Proxies) > 0 {
		args["proxies"] = r.Proxies
	}
	if r.UserAgent != "" {
		args["user_agent"] = r.UserAgent
	}
	if r.CACert != "" {
		args["ca_cert"] = r.CACert
	}
	return args
}
