// Package debugsink writes per-run debug artifacts: the exact request
// issued for every board pass, raw result batches as CSV, and per-board
// count snapshots after each pipeline stage. Artifacts are for manual
// inspection only; nothing in the pipeline reads them back.
package debugsink

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jimezsa/jobsweep/internal/models"
	"github.com/jimezsa/jobsweep/internal/scrape"
)

// Sink writes artifacts into <baseDir>/<timestamp>-<id>/. A disabled
// sink is a no-op on every method, and write failures are logged and
// swallowed so debugging never breaks a search.
type Sink struct {
	enabled bool
	runDir  string
	log     zerolog.Logger
}

func New(enabled bool, baseDir string, log zerolog.Logger) *Sink {
	s := &Sink{enabled: enabled, log: log}
	if !enabled {
		return s
	}

	stamp := time.Now().Format("20060102-150405")
	s.runDir = filepath.Join(baseDir, stamp+"-"+uuid.NewString()[:8])
	if err := os.MkdirAll(s.runDir, 0o755); err != nil {
		log.Warn().Err(err).Str("dir", s.runDir).Msg("failed to create debug run dir, sink disabled")
		s.enabled = false
	}
	return s
}

func (s *Sink) Enabled() bool { return s.enabled }

// Dir returns the run directory, empty when the sink is disabled.
func (s *Sink) Dir() string { return s.runDir }

// WriteJSON marshals v with indentation into name under the run dir.
func (s *Sink) WriteJSON(name string, v any) {
	if !s.enabled {
		return
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		s.log.Warn().Err(err).Str("artifact", name).Msg("failed to encode debug artifact")
		return
	}
	if err := os.WriteFile(filepath.Join(s.runDir, name), data, 0o644); err != nil {
		s.log.Warn().Err(err).Str("artifact", name).Msg("failed to write debug artifact")
	}
}

// WriteRows writes a raw result batch as CSV with a sorted union header.
func (s *Sink) WriteRows(name string, rows scrape.ResultSet) {
	if !s.enabled || len(rows) == 0 {
		return
	}

	keys := map[string]struct{}{}
	for _, row := range rows {
		for k := range row {
			keys[k] = struct{}{}
		}
	}
	header := make([]string, 0, len(keys))
	for k := range keys {
		header = append(header, k)
	}
	sort.Strings(header)

	f, err := os.Create(filepath.Join(s.runDir, name))
	if err != nil {
		s.log.Warn().Err(err).Str("artifact", name).Msg("failed to create debug csv")
		return
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		s.log.Warn().Err(err).Str("artifact", name).Msg("failed to write debug csv")
		return
	}
	record := make([]string, len(header))
	for _, row := range rows {
		for i, k := range header {
			record[i] = ""
			if v, ok := row[k]; ok && v != nil {
				record[i] = fmt.Sprintf("%v", v)
			}
		}
		if err := w.Write(record); err != nil {
			s.log.Warn().Err(err).Str("artifact", name).Msg("failed to write debug csv")
			return
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		s.log.Warn().Err(err).Str("artifact", name).Msg("failed to flush debug csv")
	}
}

// SafeName sanitizes a value for use inside an artifact filename:
// anything that is not alphanumeric, "-", or "_" becomes "_", capped at
// 120 characters.
func SafeName(v string) string {
	var b strings.Builder
	for _, r := range v {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
		if b.Len() >= 120 {
			break
		}
	}
	return b.String()
}

// SiteCounts tallies postings per board for the count snapshots. Rows
// without a board fall back to inferring one from the job URL host.
func SiteCounts(postings []models.Posting) map[string]int {
	counts := map[string]int{}
	for _, p := range postings {
		board := p.Board
		if board == "" {
			board = inferBoard(p.JobURL)
		}
		counts[board]++
	}
	return counts
}

func inferBoard(jobURL string) string {
	u, err := url.Parse(jobURL)
	if err != nil {
		return models.BoardUnknown
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
	return models.BoardUnknown
}
