// Package filter implements the post-filter cascade: recency, work mode,
// experience, employment type, and strict title relevance. Every filter
// treats a disabled input as a no-op and keeps rows whose relevant
// attribute cannot be determined only when the caller asks for that.
package filter

import (
	"strings"

	"github.com/jimezsa/jobsweep/internal/models"
)

// combinedText joins the row's text-bearing fields for regex checks.
func combinedText(p models.Posting) string {
	parts := make([]string, 0, 6)
	for _, s := range []string{p.Title, p.Description, p.JobType, p.JobLevel, p.Company, p.Location} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}
