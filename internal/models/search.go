package models

import "strings"

// Work modes accepted by Query.WorkMode. Hybrid is only ever enforced
// post-hoc; boards do not expose it as a request-time filter.
const (
	WorkModeAny    = "any"
	WorkModeRemote = "remote only"
	WorkModeOnSite = "on-site only"
	WorkModeHybrid = "hybrid only"
)

// Query is the full input to one search run: what to search for and which
// post-filters to apply. Pointer fields mean "not requested".
type Query struct {
	Titles    []string
	Locations []string
	Boards    []string

	HoursOld       *int
	WorkMode       string
	EmploymentType string
	MinExperience  *int
	MaxExperience  *int
	StrictTitles   bool

	ResultsWanted int
	Country       string

	Proxies   []string
	UserAgent string
	CACert    string

	EasyApply         bool
	FetchDescriptions bool

	Sequential   bool
	PerSiteDelay float64
	Debug        bool
}

// Normalize trims blank entries and lowercases board names in place.
func (q *Query) Normalize() {
	q.Titles = cleanList(q.Titles, false)
	q.Locations = cleanList(q.Locations, false)
	q.Boards = cleanList(q.Boards, true)
	if strings.TrimSpace(q.WorkMode) == "" {
		q.WorkMode = WorkModeAny
	}
	if strings.TrimSpace(q.EmploymentType) == "" {
		q.EmploymentType = "any"
	}
}

// Empty reports whether the query cannot produce any request at all.
func (q Query) Empty() bool {
	return len(q.Titles) == 0 || len(q.Locations) == 0 || len(q.Boards) == 0
}

func cleanList(values []string, lower bool) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if lower {
			v = strings.ToLower(v)
		}
		out = append(out, v)
	}
	return out
}
