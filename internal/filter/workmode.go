package filter

import (
	"regexp"
	"strings"

	"github.com/jimezsa/jobsweep/internal/models"
)

var (
	remotePat = regexp.MustCompile(`(?i)\b(remote|work\s*from\s*home|wfh|fully\s*remote|100%\s*remote|us-?remote|anywhere)\b`)
	onsitePat = regexp.MustCompile(`(?i)\b(on[\s-]?site|onsite|in[\s-]?office|in[\s-]?person)\b`)
	hybridPat = regexp.MustCompile(`(?i)\b(hybrid|\d+\s*(days?|d)\s*/\s*(week|wk)\s+in\s+office)\b`)
)

// ByWorkMode keeps rows matching the requested work mode, classifying each
// row from its structured remote flag when present, else from text
// signals. A row whose text matches both remote and hybrid is excluded
// from "remote only": the exclusivity is enforced here at filter time, not
// when the patterns are defined.
func ByWorkMode(postings []models.Posting, workMode string) []models.Posting {
	mode := strings.ToLower(strings.TrimSpace(workMode))
	if mode == "" || mode == models.WorkModeAny || len(postings) == 0 {
		return postings
	}

	out := make([]models.Posting, 0, len(postings))
	for _, p := range postings {
		text := combinedText(p)
		textRemote := remotePat.MatchString(text)
		textOnsite := onsitePat.MatchString(text)
		textHybrid := hybridPat.MatchString(text)

		var keep bool
		switch {
		case strings.HasPrefix(mode, "remote"):
			keep = (flagTrue(p.Remote) || textRemote) && !textHybrid
		case strings.HasPrefix(mode, "on-site"), strings.HasPrefix(mode, "onsite"):
			keep = (flagFalse(p.Remote) || textOnsite) && !textRemote
		case strings.HasPrefix(mode, "hybrid"):
			keep = textHybrid
		default:
			keep = true
		}
		if keep {
			out = append(out, p)
		}
	}
	return out
}

func flagTrue(b *bool) bool  { return b != nil && *b }
func flagFalse(b *bool) bool { return b != nil && !*b }
