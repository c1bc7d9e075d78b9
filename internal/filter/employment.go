package filter

import (
	"regexp"
	"strings"

	"github.com/jimezsa/jobsweep/internal/models"
)

var employmentPats = map[string]*regexp.Regexp{
	"full-time":  regexp.MustCompile(`(?i)\bfull[\s-]*time\b|\bfulltime\b|\bFTE\b|\bpermanent\b|\bFT\b`),
	"contract":   regexp.MustCompile(`(?i)\bcontract\b|\bC2C\b|\bcorp[-\s]*to[-\s]*corp\b|\bC2H\b|\bcontract[-\s]*to[-\s]*hire\b`),
	"w2":         regexp.MustCompile(`(?i)\bW[\s-]?2\b`),
	"parttime":   regexp.MustCompile(`(?i)\bpart[\s-]*time\b|\bparttime\b|\bPT\b`),
	"internship": regexp.MustCompile(`(?i)\bintern(ship)?\b`),
}

// ByEmploymentType keeps rows whose text mentions the requested
// employment type. "any" (or an unrecognized type) is a no-op.
func ByEmploymentType(postings []models.Posting, employment string) []models.Posting {
	if len(postings) == 0 {
		return postings
	}

	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(employment)), "_", "-")
	switch norm {
	case "", "any", "none":
		return postings
	case "full time", "fulltime", "ft":
		norm = "full-time"
	case "part-time", "part time", "pt":
		norm = "parttime"
	}

	pat, ok := employmentPats[norm]
	if !ok {
		return postings
	}

	out := make([]models.Posting, 0, len(postings))
	for _, p := range postings {
		if pat.MatchString(combinedText(p)) {
			out = append(out, p)
		}
	}
	return out
}
