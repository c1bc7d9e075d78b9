package filter

import (
	"time"

	"github.com/jimezsa/jobsweep/internal/models"
)

// ByHours keeps postings dated within the last hoursOld hours of now.
// Rows with no parseable date survive iff keepUnknown. Indeed dates are
// usually date-only, and any row with a midnight timestamp is treated the
// same way: those compare by calendar date against the cutoff date so a
// same-day post is never dropped for its missing time of day.
func ByHours(postings []models.Posting, hoursOld *int, keepUnknown bool, now time.Time) []models.Posting {
	if hoursOld == nil || len(postings) == 0 {
		return postings
	}

	cutoff := now.Add(-time.Duration(*hoursOld) * time.Hour)
	cutoffDate := truncateToDate(cutoff)

	out := make([]models.Posting, 0, len(postings))
	for _, p := range postings {
		posted, ok := p.Posted()
		if !ok {
			if keepUnknown {
				out = append(out, p)
			}
			continue
		}

		if p.Board == models.BoardIndeed || isMidnight(posted) {
			if !truncateToDate(posted).Before(cutoffDate) {
				out = append(out, p)
			}
			continue
		}

		if !posted.Before(cutoff) {
			out = append(out, p)
		}
	}
	return out
}

func isMidnight(ts time.Time) bool {
	return ts.Hour() == 0 && ts.Minute() == 0 && ts.Second() == 0 && ts.Nanosecond() == 0
}

func truncateToDate(ts time.Time) time.Time {
	return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, ts.Location())
}
