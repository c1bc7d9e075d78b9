package models

import "time"

// Board identifiers used across the pipeline. Normalized results always
// carry one of these (or "unknown" when the source could not be inferred).
const (
	BoardIndeed       = "indeed"
	BoardGlassdoor    = "glassdoor"
	BoardGoogle       = "google"
	BoardZipRecruiter = "zip_recruiter"
	BoardLinkedIn     = "linkedin"
	BoardUnknown      = "unknown"
)

// Posting is the canonical row every board result is normalized into.
// Optional scalars are pointers so "unknown" stays distinguishable from a
// zero value; Extra preserves any board column that has no canonical home.
type Posting struct {
	Board        string     `json:"site_name"`
	Title        string     `json:"title"`
	Company      string     `json:"company"`
	CompanyURL   string     `json:"company_url,omitempty"`
	JobURL       string     `json:"job_url"`
	Location     string     `json:"location,omitempty"`
	City         string     `json:"city,omitempty"`
	State        string     `json:"state,omitempty"`
	Country      string     `json:"country,omitempty"`
	Remote       *bool      `json:"is_remote,omitempty"`
	JobType      string     `json:"job_type,omitempty"`
	JobLevel     string     `json:"job_level,omitempty"`
	Interval     string     `json:"interval,omitempty"`
	MinAmount    *float64   `json:"min_amount,omitempty"`
	MaxAmount    *float64   `json:"max_amount,omitempty"`
	Currency     string     `json:"currency,omitempty"`
	SalarySource string     `json:"salary_source,omitempty"`
	DatePosted   *time.Time `json:"date_posted,omitempty"`
	Emails       []string   `json:"emails,omitempty"`
	Description  string     `json:"description,omitempty"`

	// Provenance stamped by the orchestrator before merging.
	SearchTitle        string `json:"search_title,omitempty"`
	SearchLocation     string `json:"search_location,omitempty"`
	NormalizedLocation string `json:"normalized_location,omitempty"`

	// MatchTerm records which requested title phrase matched, when the
	// strict title filter ran.
	MatchTerm string `json:"match_term,omitempty"`

	Extra map[string]any `json:"extra,omitempty"`
}

// CanonicalColumns is the fixed output column order for tabular exports.
// Extra columns follow in first-seen order.
var CanonicalColumns = []string{
	"site_name", "title", "company", "company_url",
	"job_url", "location", "city", "state", "country", "is_remote",
	"job_type", "job_level",
	"interval", "min_amount", "max_amount", "currency", "salary_source",
	"date_posted", "emails",
	"search_title", "search_location", "normalized_location", "match_term",
	"description",
}

// RemoteKnown reports whether the remote flag carries a definite value.
func (p Posting) RemoteKnown() bool {
	return p.Remote != nil
}

// Posted returns the posting date and whether one is known.
func (p Posting) Posted() (time.Time, bool) {
	if p.DatePosted == nil {
		return time.Time{}, false
	}
	return *p.DatePosted, true
}
