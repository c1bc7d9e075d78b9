// Package dedupe collapses near-identical postings across boards, first by
// normalized URL, then by a fuzzy composite key.
package dedupe

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/jimezsa/jobsweep/internal/models"
)

// NormalizeURL reduces a posting URL to a stable key: lowercased host with
// "www." removed, plus the path with its trailing slash stripped. Scheme,
// query, and fragment are dropped. Returns "" when no usable host exists.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Host)
	host = strings.TrimPrefix(host, "www.")
	if host == "" {
		return ""
	}
	path := strings.TrimRight(u.Path, "/")
	return host + path
}

// foldMarks strips diacritics so accented and plain spellings of the same
// company or city key identically.
var foldMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

var seniorityPrefixes = []string{"sr", "senior", "lead", "principal", "staff"}

// normText lowercases, folds accents, strips punctuation, and collapses
// whitespace.
func normText(s string) string {
	folded, _, err := transform.String(foldMarks, s)
	if err == nil {
		s = folded
	}
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// normTitle additionally drops a leading seniority qualifier so "Sr. Data
// Analyst" and "Data Analyst" land in the same group.
func normTitle(s string) string {
	title := normText(s)
	for _, prefix := range seniorityPrefixes {
		if strings.HasPrefix(title, prefix+" ") {
			return strings.TrimSpace(strings.TrimPrefix(title, prefix+" "))
		}
	}
	return title
}

// exactRowKey serializes the posting by value so that pointer-typed fields
// key on what they point at rather than on their addresses.
func exactRowKey(p models.Posting) string {
	b, err := json.Marshal(p)
	if err != nil {
		return fmt.Sprintf("%v", p)
	}
	return string(b)
}

func compositeKey(p models.Posting) string {
	company := normText(p.Company)
	title := normTitle(p.Title)
	city := normText(p.City)
	state := normText(p.State)
	if company == "" && title == "" && city == "" && state == "" {
		return ""
	}
	return company + "|" + title + "|" + city + "|" + state
}

// Postings removes duplicates in two stages: URL-keyed (keep first), then
// composite-keyed (keep the most recently posted row in each group, or the
// first when no row has a parseable date). Rows that yield neither key are
// deduplicated by exact row equality so the output is still stable.
func Postings(postings []models.Posting) []models.Posting {
	out := byURL(postings)
	return byComposite(out)
}

func byURL(postings []models.Posting) []models.Posting {
	seen := map[string]struct{}{}
	out := make([]models.Posting, 0, len(postings))
	for _, p := range postings {
		key := NormalizeURL(p.JobURL)
		if key == "" {
			out = append(out, p)
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, p)
	}
	return out
}

func byComposite(postings []models.Posting) []models.Posting {
	type slot struct {
		index  int  // position in out
		posted bool // kept row has a parseable date
	}
	groups := map[string]slot{}
	exact := map[string]struct{}{}
	out := make([]models.Posting, 0, len(postings))

	for _, p := range postings {
		key := compositeKey(p)
		if key == "" {
			// No composite columns at all: fall back to exact-row dedupe.
			rowKey := exactRowKey(p)
			if _, dup := exact[rowKey]; dup {
				continue
			}
			exact[rowKey] = struct{}{}
			out = append(out, p)
			continue
		}

		posted, hasDate := p.Posted()
		existing, ok := groups[key]
		if !ok {
			groups[key] = slot{index: len(out), posted: hasDate}
			out = append(out, p)
			continue
		}

		if !hasDate {
			continue
		}
		keptDate, keptHas := out[existing.index].Posted()
		if !keptHas || posted.After(keptDate) {
			out[existing.index] = p
			groups[key] = slot{index: existing.index, posted: true}
		}
	}

	return out
}
