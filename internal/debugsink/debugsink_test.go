package debugsink

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/jimezsa/jobsweep/internal/models"
	"github.com/jimezsa/jobsweep/internal/scrape"
)

func TestDisabledSinkWritesNothing(t *testing.T) {
	base := t.TempDir()
	s := New(false, base, zerolog.Nop())
	s.WriteJSON("query.json", map[string]any{"a": 1})
	s.WriteRows("rows.csv", scrape.ResultSet{{"title": "x"}})

	entries, err := os.ReadDir(base)
	if err != nil {
		t.Fatalf("read base dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no artifacts from a disabled sink, got %d entries", len(entries))
	}
}

func TestWriteJSONAndRows(t *testing.T) {
	base := t.TempDir()
	s := New(true, base, zerolog.Nop())
	if s.Dir() == "" {
		t.Fatalf("enabled sink should have a run dir")
	}

	s.WriteJSON("counts_1_merged.json", map[string]int{"indeed": 3})
	data, err := os.ReadFile(filepath.Join(s.Dir(), "counts_1_merged.json"))
	if err != nil {
		t.Fatalf("read counts artifact: %v", err)
	}
	var counts map[string]int
	if err := json.Unmarshal(data, &counts); err != nil {
		t.Fatalf("decode counts artifact: %v", err)
	}
	if counts["indeed"] != 3 {
		t.Fatalf("expected indeed count 3, got %d", counts["indeed"])
	}

	s.WriteRows("raw.csv", scrape.ResultSet{
		{"title": "Analyst", "company": "Acme"},
		{"title": "Engineer", "location": "Boston, MA"},
	})
	raw, err := os.ReadFile(filepath.Join(s.Dir(), "raw.csv"))
	if err != nil {
		t.Fatalf("read csv artifact: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d lines", len(lines))
	}
	if lines[0] != "company,location,title" {
		t.Fatalf("expected sorted union header, got %q", lines[0])
	}
}

func TestSafeName(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Boston, MA", "Boston__MA"},
		{"data analyst", "data_analyst"},
		{"zip_recruiter", "zip_recruiter"},
	}
	for _, tc := range cases {
		if got := SafeName(tc.in); got != tc.want {
			t.Fatalf("SafeName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}

	long := SafeName(strings.Repeat("x", 500))
	if len(long) != 120 {
		t.Fatalf("expected 120-char cap, got %d", len(long))
	}
}

func TestSiteCounts(t *testing.T) {
	postings := []models.Posting{
		{Board: models.BoardIndeed},
		{Board: models.BoardIndeed},
		{JobURL: "https://www.linkedin.com/jobs/view/1"},
		{JobURL: "https://nowhere.example.com/x"},
	}

	counts := SiteCounts(postings)
	if counts[models.BoardIndeed] != 2 {
		t.Fatalf("expected 2 indeed rows, got %d", counts[models.BoardIndeed])
	}
	if counts[models.BoardLinkedIn] != 1 {
		t.Fatalf("expected 1 linkedin row, got %d", counts[models.BoardLinkedIn])
	}
	if counts[models.BoardUnknown] != 1 {
		t.Fatalf("expected 1 unknown row, got %d", counts[models.BoardUnknown])
	}
}
