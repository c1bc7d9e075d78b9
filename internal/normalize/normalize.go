// Package normalize merges per-request result batches and maps each
// board's column names onto the canonical posting schema.
package normalize

import (
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jimezsa/jobsweep/internal/models"
	"github.com/jimezsa/jobsweep/internal/scrape"
)

// Batch pairs one request's rows with the provenance of the search that
// produced them.
type Batch struct {
	Rows               scrape.ResultSet
	SearchTitle        string
	SearchLocation     string
	NormalizedLocation string
}

// Merge concatenates non-empty batches into one row list, stamping each
// row with its search provenance. Empty batches are dropped so they cannot
// introduce all-null columns downstream.
func Merge(batches []Batch) []scrape.Row {
	var rows []scrape.Row
	for _, batch := range batches {
		for _, row := range batch.Rows {
			tagged := make(scrape.Row, len(row)+3)
			for k, v := range row {
				tagged[k] = v
			}
			tagged["search_title"] = batch.SearchTitle
			tagged["search_location"] = batch.SearchLocation
			tagged["normalized_location"] = batch.NormalizedLocation
			rows = append(rows, tagged)
		}
	}
	return rows
}

// aliases maps each canonical column to the ordered list of source column
// names boards are known to use. The canonical name itself is always tried
// first.
var aliases = map[string][]string{
	"site_name":           {"site", "board", "source", "SITE_NAME", "SITE"},
	"title":               {"TITLE", "job_title", "position"},
	"company":             {"COMPANY", "employer", "company_name"},
	"company_url":         {"COMPANY_URL", "employer_url", "company_link", "company_site"},
	"job_url":             {"URL", "url", "link"},
	"location":            {"LOCATION", "full_location", "job_location"},
	"city":                {"job_city", "CITY"},
	"state":               {"job_state", "region", "STATE"},
	"country":             {"job_country", "COUNTRY"},
	"is_remote":           {"IS_REMOTE", "remote", "work_from_home"},
	"job_type":            {"JOB_TYPE", "employment_type", "EMPLOYMENT_TYPE", "type", "TYPE"},
	"job_level":           {"linkedin_level", "seniority", "LEVEL"},
	"interval":            {"INTERVAL", "salary_interval", "pay_interval"},
	"min_amount":          {"MIN_AMOUNT", "salary_min", "min_salary", "min_pay"},
	"max_amount":          {"MAX_AMOUNT", "salary_max", "max_salary", "max_pay"},
	"currency":            {"CURRENCY", "salary_currency", "pay_currency"},
	"salary_source":       {"SALARY_SOURCE", "comp_source"},
	"date_posted":         {"DATE_POSTED", "posted_at", "POSTED_AT", "published_on", "date", "DATE"},
	"emails":              {"EMAILS", "contact_emails"},
	"description":         {"DESCRIPTION", "desc", "job_description"},
	"search_title":        {"SEARCH_TITLE", "SEARCH_TERM", "QUERY"},
	"search_location":     {"SEARCH_LOCATION", "SEARCH_CITY", "SEARCH_REGION"},
	"normalized_location": {"NORMALIZED_LOCATION", "NORMALIZED_LOC"},
}

var emailRe = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)

// Postings maps raw rows onto canonical postings. Every output row has a
// non-empty board identifier; fields that cannot be coerced stay unset
// rather than failing the row. Non-canonical columns are preserved in
// Extra (key-sorted for deterministic output).
func Postings(rows []scrape.Row) []models.Posting {
	postings := make([]models.Posting, 0, len(rows))
	for _, row := range rows {
		postings = append(postings, posting(row))
	}
	return postings
}

func posting(row scrape.Row) models.Posting {
	consumed := map[string]struct{}{}
	take := func(canonical string) (any, bool) {
		if v, ok := row[canonical]; ok && v != nil {
			consumed[canonical] = struct{}{}
			return v, true
		}
		for _, alt := range aliases[canonical] {
			if v, ok := row[alt]; ok && v != nil {
				consumed[alt] = struct{}{}
				return v, true
			}
		}
		return nil, false
	}
	takeString := func(canonical string) string {
		v, ok := take(canonical)
		if !ok {
			return ""
		}
		return strings.TrimSpace(asString(v))
	}

	p := models.Posting{
		Board:              takeString("site_name"),
		Title:              takeString("title"),
		Company:            takeString("company"),
		CompanyURL:         takeString("company_url"),
		JobURL:             takeString("job_url"),
		Location:           takeString("location"),
		City:               takeString("city"),
		State:              takeString("state"),
		Country:            takeString("country"),
		JobType:            takeString("job_type"),
		JobLevel:           takeString("job_level"),
		Interval:           takeString("interval"),
		Currency:           takeString("currency"),
		SalarySource:       takeString("salary_source"),
		Description:        takeString("description"),
		SearchTitle:        takeString("search_title"),
		SearchLocation:     takeString("search_location"),
		NormalizedLocation: takeString("normalized_location"),
	}

	if v, ok := take("is_remote"); ok {
		p.Remote = asBool(v)
	}
	if v, ok := take("min_amount"); ok {
		p.MinAmount = asFloat(v)
	}
	if v, ok := take("max_amount"); ok {
		p.MaxAmount = asFloat(v)
	}
	if v, ok := take("date_posted"); ok {
		p.DatePosted = asTime(v)
	}
	if v, ok := take("emails"); ok {
		p.Emails = asEmails(v)
	}

	p.Board = canonicalBoard(p.Board, p.JobURL)

	// Parse the combined location only when the board supplied none of
	// the split fields; never overwrite a board value.
	if p.City == "" && p.State == "" && p.Country == "" && p.Location != "" {
		p.City, p.State, p.Country = parseLocation(p.Location)
	}

	for key, value := range row {
		if _, ok := consumed[key]; ok {
			continue
		}
		if p.Extra == nil {
			p.Extra = map[string]any{}
		}
		p.Extra[key] = value
	}

	return p
}

// canonicalBoard lowercases the board name, fixes the one known spelling
// variant, and falls back to inferring the board from the posting URL.
func canonicalBoard(board, jobURL string) string {
	board = strings.ToLower(strings.TrimSpace(board))
	if board == "ziprecruiter" {
		board = models.BoardZipRecruiter
	}
	if board != "" {
		return board
	}
	if inferred := inferBoard(jobURL); inferred != "" {
		return inferred
	}
	return models.BoardUnknown
}

func inferBoard(jobURL string) string {
	if jobURL == "" {
		return ""
	}
	u, err := url.Parse(jobURL)
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Host)
	switch {
	case strings.Contains(host, "indeed"):
		return models.BoardIndeed
	case strings.Contains(host, "glassdoor"):
		return models.BoardGlassdoor
	case strings.Contains(host, "ziprecruiter"):
		return models.BoardZipRecruiter
	case strings.Contains(host, "linkedin"):
		return models.BoardLinkedIn
	case strings.Contains(host, "google"):
		return models.BoardGoogle
	}
	return ""
}

var usStates = map[string]struct{}{
	"AL": {}, "AK": {}, "AZ": {}, "AR": {}, "CA": {}, "CO": {}, "CT": {},
	"DE": {}, "DC": {}, "FL": {}, "GA": {}, "HI": {}, "ID": {}, "IL": {},
	"IN": {}, "IA": {}, "KS": {}, "KY": {}, "LA": {}, "ME": {}, "MD": {},
	"MA": {}, "MI": {}, "MN": {}, "MS": {}, "MO": {}, "MT": {}, "NE": {},
	"NV": {}, "NH": {}, "NJ": {}, "NM": {}, "NY": {}, "NC": {}, "ND": {},
	"OH": {}, "OK": {}, "OR": {}, "PA": {}, "RI": {}, "SC": {}, "SD": {},
	"TN": {}, "TX": {}, "UT": {}, "VT": {}, "VA": {}, "WA": {}, "WV": {},
	"WI": {}, "WY": {},
}

// parseLocation splits "City, ST, Country" variants. Bare "Remote" yields
// nothing.
func parseLocation(loc string) (city, state, country string) {
	text := strings.TrimSpace(loc)
	if text == "" || strings.EqualFold(text, "remote") {
		return "", "", ""
	}
	parts := strings.Split(text, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	city = parts[0]
	if len(parts) >= 2 {
		fields := strings.Fields(parts[1])
		if len(fields) > 0 {
			st := strings.ToUpper(fields[0])
			if _, ok := usStates[st]; ok {
				state = st
			}
		}
	}
	if len(parts) >= 3 {
		country = strings.ToUpper(parts[2])
	}
	return city, state, country
}

func asString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case bool:
		return strconv.FormatBool(val)
	case time.Time:
		return val.Format(time.RFC3339)
	default:
		return ""
	}
}

func asBool(v any) *bool {
	switch val := v.(type) {
	case bool:
		b := val
		return &b
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "true", "yes", "1":
			b := true
			return &b
		case "false", "no", "0":
			b := false
			return &b
		}
	}
	return nil
}

func asFloat(v any) *float64 {
	switch val := v.(type) {
	case float64:
		f := val
		return &f
	case int:
		f := float64(val)
		return &f
	case string:
		cleaned := strings.ReplaceAll(strings.TrimSpace(val), ",", "")
		if cleaned == "" {
			return nil
		}
		if f, err := strconv.ParseFloat(cleaned, 64); err == nil {
			return &f
		}
	}
	return nil
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"01/02/2006",
}

// asTime parses to a timezone-naive instant; unparseable dates come back
// nil, never as an error.
func asTime(v any) *time.Time {
	switch val := v.(type) {
	case time.Time:
		naive := stripZone(val)
		return &naive
	case string:
		text := strings.TrimSpace(val)
		if text == "" {
			return nil
		}
		for _, layout := range dateLayouts {
			if ts, err := time.Parse(layout, text); err == nil {
				naive := stripZone(ts)
				return &naive
			}
		}
	}
	return nil
}

func stripZone(ts time.Time) time.Time {
	return time.Date(ts.Year(), ts.Month(), ts.Day(), ts.Hour(), ts.Minute(), ts.Second(), ts.Nanosecond(), time.UTC)
}

func asEmails(v any) []string {
	switch val := v.(type) {
	case []string:
		if len(val) == 0 {
			return nil
		}
		return val
	case []any:
		var out []string
		for _, item := range val {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
		return out
	case string:
		found := emailRe.FindAllString(val, -1)
		if len(found) == 0 {
			return nil
		}
		return found
	}
	return nil
}

// ExtraColumns returns the union of extra column names across postings in
// first-seen order. Keys within a single posting's map are sorted before
// being appended, since map iteration order is not stable.
func ExtraColumns(postings []models.Posting) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, p := range postings {
		fresh := make([]string, 0, len(p.Extra))
		for key := range p.Extra {
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			fresh = append(fresh, key)
		}
		sort.Strings(fresh)
		out = append(out, fresh...)
	}
	return out
}
