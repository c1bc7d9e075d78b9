package filter

import (
	"regexp"
	"strconv"

	"github.com/jimezsa/jobsweep/internal/models"
)

var (
	yearsRangePat  = regexp.MustCompile(`(?i)(\d+)\s*(?:[-–to]{1,3})\s*(\d+)\s*\+?\s*years?`)
	yearsSinglePat = regexp.MustCompile(`(?i)(\d+)\s*\+?\s*years?`)
	entryLevelPat  = regexp.MustCompile(`(?i)\b(entry[\s-]*level|junior|jr)\b`)
	seniorPat      = regexp.MustCompile(`(?i)\b(senior|sr|lead|principal|staff)\b`)
)

// yearsRange is the (min, max) experience a posting asks for; nil bounds
// are open.
type yearsRange struct {
	lo *int
	hi *int
}

// extractYears infers an experience range from free text: an explicit
// numeric range first, then a single lower bound, then level-word
// heuristics. The boolean is false when nothing could be inferred.
func extractYears(text string) (yearsRange, bool) {
	if text == "" {
		return yearsRange{}, false
	}

	if m := yearsRangePat.FindStringSubmatch(text); m != nil {
		a, _ := strconv.Atoi(m[1])
		b, _ := strconv.Atoi(m[2])
		if a > b {
			a, b = b, a
		}
		return yearsRange{lo: &a, hi: &b}, true
	}

	if m := yearsSinglePat.FindStringSubmatch(text); m != nil {
		n, _ := strconv.Atoi(m[1])
		return yearsRange{lo: &n}, true
	}

	if entryLevelPat.MatchString(text) {
		lo, hi := 0, 2
		return yearsRange{lo: &lo, hi: &hi}, true
	}
	if seniorPat.MatchString(text) {
		lo := 5
		return yearsRange{lo: &lo}, true
	}

	return yearsRange{}, false
}

// ByExperience keeps rows whose inferred experience range overlaps the
// requested [minYears, maxYears] bounds. Open request bounds are
// unconstrained on that side; rows with no inferable range pass iff
// keepUnknown. A row carrying only a lower bound is dropped when that
// bound falls below the requested minimum, even though such a role could
// in principle satisfy the request.
func ByExperience(postings []models.Posting, minYears, maxYears *int, keepUnknown bool) []models.Posting {
	if (minYears == nil && maxYears == nil) || len(postings) == 0 {
		return postings
	}

	out := make([]models.Posting, 0, len(postings))
	for _, p := range postings {
		rng, ok := extractYears(p.Title + " " + p.Description)
		if !ok {
			if keepUnknown {
				out = append(out, p)
			}
			continue
		}
		if overlaps(rng, minYears, maxYears) {
			out = append(out, p)
		}
	}
	return out
}

func overlaps(rng yearsRange, minYears, maxYears *int) bool {
	// Lower bound only.
	if rng.hi == nil && rng.lo != nil {
		if maxYears != nil && *rng.lo > *maxYears {
			return false
		}
		if minYears != nil && *rng.lo < *minYears {
			return false
		}
		return true
	}
	// Upper bound only.
	if rng.lo == nil && rng.hi != nil {
		return minYears == nil || *rng.hi >= *minYears
	}
	// Both bounds known.
	if rng.lo != nil && rng.hi != nil {
		if minYears != nil && *rng.hi < *minYears {
			return false
		}
		if maxYears != nil && *rng.lo > *maxYears {
			return false
		}
	}
	return true
}
