package filter

import (
	"regexp"
	"strings"

	"github.com/jimezsa/jobsweep/internal/models"
)

// seniorityPrefix lets "Sr. Data Analyst" satisfy a "Data Analyst" term.
const seniorityPrefix = `(?:(?:sr\.?|senior|lead|principal|staff)\s+)?`

var titleSplitRe = regexp.MustCompile(`\s+`)

// termPattern builds a tolerant pattern for one requested title:
// optional seniority prefix, flexible whitespace or hyphens between
// words.
func termPattern(term string) string {
	t := strings.TrimSpace(term)
	if t == "" {
		return ""
	}
	tokens := titleSplitRe.Split(t, -1)
	for i, tok := range tokens {
		tokens[i] = regexp.QuoteMeta(tok)
	}
	return seniorityPrefix + strings.Join(tokens, `[\s\-]+`)
}

// abbrevPatterns returns extra patterns for well-known abbreviations
// of the term. Kept precise with word boundaries; deliberately no
// "DA" (too ambiguous).
func abbrevPatterns(term string) []string {
	t := strings.ToLower(strings.TrimSpace(term))

	var pats []string
	if strings.Contains(t, "business intelligence engineer") {
		pats = append(pats, `\bBIE\b`)
	}
	if strings.Contains(t, "business intelligence analyst") || t == "business intelligence" {
		pats = append(pats, `\bBI\b`, `\bBI\s*analyst\b`, `\bBIE\b`)
	}
	if strings.Contains(t, "power bi") {
		pats = append(pats, `\bPower\s*BI\b`, `\bPBI\b`)
	}
	if t == "business analyst" {
		pats = append(pats, `\bBA\b`)
	}
	return pats
}

// ByTitle keeps postings whose title matches at least one requested
// phrase, and stamps MatchTerm with the matched substring. An empty
// title list is a no-op.
func ByTitle(postings []models.Posting, titles []string) []models.Posting {
	if len(postings) == 0 || len(titles) == 0 {
		return postings
	}

	var alts []string
	for _, t := range titles {
		if p := termPattern(t); p != "" {
			alts = append(alts, p)
		}
	}
	for _, t := range titles {
		alts = append(alts, abbrevPatterns(t)...)
	}
	if len(alts) == 0 {
		return postings
	}

	pat, err := regexp.Compile(`(?i)` + strings.Join(alts, "|"))
	if err != nil {
		return postings
	}

	out := make([]models.Posting, 0, len(postings))
	for _, p := range postings {
		m := pat.FindString(p.Title)
		if m == "" {
			continue
		}
		p.MatchTerm = m
		out = append(out, p)
	}
	return out
}
