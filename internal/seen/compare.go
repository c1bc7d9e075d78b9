// Package seen tracks previously surfaced postings so repeated runs can
// report only what is new.
package seen

import (
	"strings"

	"github.com/jimezsa/jobsweep/internal/models"
)

const keySeparator = "::"

// DiffStats captures stats for A-B unseen filtering.
type DiffStats struct {
	TotalNew    int
	TotalSeen   int
	InvalidNew  int
	InvalidSeen int
	Unseen      int
}

// InvalidSkipped returns the total invalid records skipped during comparison.
func (s DiffStats) InvalidSkipped() int {
	return s.InvalidNew + s.InvalidSeen
}

// MergeStats captures stats for seen history updates.
type MergeStats struct {
	TotalSeen    int
	TotalInput   int
	InvalidSeen  int
	InvalidInput int
	Added        int
	TotalOut     int
}

// InvalidSkipped returns the total invalid records skipped during merge.
func (s MergeStats) InvalidSkipped() int {
	return s.InvalidSeen + s.InvalidInput
}

// Normalize applies the v1 key normalization.
func Normalize(value string) string {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(value)))
	return strings.Join(fields, " ")
}

// Key builds the normalized title+company key for a posting.
func Key(p models.Posting) (string, bool) {
	title := Normalize(p.Title)
	company := Normalize(p.Company)
	if title == "" || company == "" {
		return "", false
	}
	return title + keySeparator + company, true
}

// Diff returns unseen postings from newPostings using existing seen keys.
func Diff(newPostings []models.Posting, seenPostings []models.Posting) ([]models.Posting, DiffStats) {
	stats := DiffStats{
		TotalNew:  len(newPostings),
		TotalSeen: len(seenPostings),
	}

	seenKeys := make(map[string]struct{}, len(seenPostings))
	for _, p := range seenPostings {
		key, ok := Key(p)
		if !ok {
			stats.InvalidSeen++
			continue
		}
		if _, exists := seenKeys[key]; exists {
			continue
		}
		seenKeys[key] = struct{}{}
	}

	newKeys := make(map[string]struct{}, len(newPostings))
	unseen := make([]models.Posting, 0, len(newPostings))
	for _, p := range newPostings {
		key, ok := Key(p)
		if !ok {
			stats.InvalidNew++
			continue
		}
		if _, exists := newKeys[key]; exists {
			continue
		}
		newKeys[key] = struct{}{}
		if _, exists := seenKeys[key]; exists {
			continue
		}
		unseen = append(unseen, p)
	}

	stats.Unseen = len(unseen)
	return unseen, stats
}

// Merge appends unique new postings into the seen history.
// Existing seen entries win collisions.
func Merge(existingSeen []models.Posting, input []models.Posting) ([]models.Posting, MergeStats) {
	stats := MergeStats{
		TotalSeen:  len(existingSeen),
		TotalInput: len(input),
	}

	keys := make(map[string]struct{}, len(existingSeen)+len(input))
	out := make([]models.Posting, 0, len(existingSeen)+len(input))

	for _, p := range existingSeen {
		key, ok := Key(p)
		if !ok {
			stats.InvalidSeen++
			out = append(out, p)
			continue
		}
		if _, exists := keys[key]; exists {
			continue
		}
		keys[key] = struct{}{}
		out = append(out, p)
	}

	for _, p := range input {
		key, ok := Key(p)
		if !ok {
			stats.InvalidInput++
			continue
		}
		if _, exists := keys[key]; exists {
			continue
		}
		keys[key] = struct{}{}
		out = append(out, p)
		stats.Added++
	}

	stats.TotalOut = len(out)
	return out, stats
}
