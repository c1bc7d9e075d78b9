package cmd

import (
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/alecthomas/kong"

	"github.com/jimezsa/jobsweep/internal/export"
	"github.com/jimezsa/jobsweep/internal/models"
	"github.com/jimezsa/jobsweep/internal/seen"
)

func TestResolveFormatWithOutputPathRespectsGlobalFlags(t *testing.T) {
	ctx := &Context{Out: io.Discard, JSONOutput: true}
	got, err := resolveFormat(ctx, SearchOptions{}, "postings.json")
	if err != nil {
		t.Fatalf("resolveFormat() error = %v", err)
	}
	if got != export.FormatJSON {
		t.Fatalf("resolveFormat() = %q, want %q", got, export.FormatJSON)
	}

	ctx = &Context{Out: io.Discard, PlainText: true}
	got, err = resolveFormat(ctx, SearchOptions{}, "postings.tsv")
	if err != nil {
		t.Fatalf("resolveFormat() error = %v", err)
	}
	if got != export.FormatTSV {
		t.Fatalf("resolveFormat() = %q, want %q", got, export.FormatTSV)
	}
}

func TestResolveFormatDefaultsToCSVForFiles(t *testing.T) {
	ctx := &Context{Out: io.Discard}
	got, err := resolveFormat(ctx, SearchOptions{}, "postings.out")
	if err != nil {
		t.Fatalf("resolveFormat() error = %v", err)
	}
	if got != export.FormatCSV {
		t.Fatalf("resolveFormat() = %q, want %q", got, export.FormatCSV)
	}
}

func TestUpdateSeenHistoryCreatesFileAndMerges(t *testing.T) {
	dir := t.TempDir()
	seenPath := filepath.Join(dir, "postings_seen.json")

	input := []models.Posting{
		{Board: "indeed", Title: "Data Analyst", Company: "Acme", JobURL: "https://example.com/1"},
	}

	if err := updateSeenHistory(seenPath, input); err != nil {
		t.Fatalf("updateSeenHistory() error = %v", err)
	}

	got, err := seen.ReadPostings(seenPath)
	if err != nil {
		t.Fatalf("ReadPostings() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len(got) = %d, want 1", len(got))
	}

	// Calling it again with the same posting should be idempotent.
	if err := updateSeenHistory(seenPath, input); err != nil {
		t.Fatalf("updateSeenHistory() (2nd) error = %v", err)
	}
	got, err = seen.ReadPostings(seenPath)
	if err != nil {
		t.Fatalf("ReadPostings() (2nd) error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len(got) after 2nd update = %d, want 1", len(got))
	}

	input2 := []models.Posting{
		{Board: "indeed", Title: "Data Analyst", Company: "Acme", JobURL: "https://example.com/1"},
		{Board: "linkedin", Title: "BI Developer", Company: "Beta", JobURL: "https://example.com/2"},
	}
	if err := updateSeenHistory(seenPath, input2); err != nil {
		t.Fatalf("updateSeenHistory() (3rd) error = %v", err)
	}
	got, err = seen.ReadPostings(seenPath)
	if err != nil {
		t.Fatalf("ReadPostings() (3rd) error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len(got) after 3rd update = %d, want 2", len(got))
	}
}

func TestResolveTitles(t *testing.T) {
	t.Run("positional comma list", func(t *testing.T) {
		got, err := resolveTitles("data analyst, business analyst", "", nil)
		if err != nil {
			t.Fatalf("resolveTitles() error = %v", err)
		}
		want := []string{"data analyst", "business analyst"}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("resolveTitles() = %#v, want %#v", got, want)
		}
	})

	t.Run("case-insensitive dedupe keeps first token", func(t *testing.T) {
		got, err := resolveTitles("Data Analyst,data analyst, DATA ANALYST", "", nil)
		if err != nil {
			t.Fatalf("resolveTitles() error = %v", err)
		}
		want := []string{"Data Analyst"}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("resolveTitles() = %#v, want %#v", got, want)
		}
	})

	t.Run("falls back to configured defaults", func(t *testing.T) {
		got, err := resolveTitles(" ", "", []string{"BI Engineer"})
		if err != nil {
			t.Fatalf("resolveTitles() error = %v", err)
		}
		want := []string{"BI Engineer"}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("resolveTitles() = %#v, want %#v", got, want)
		}
	})

	t.Run("empty everywhere errors", func(t *testing.T) {
		_, err := resolveTitles(" , ", "", nil)
		if err == nil {
			t.Fatalf("resolveTitles() error = nil, want error")
		}
		if err.Error() != "at least one non-empty title is required" {
			t.Fatalf("resolveTitles() error = %q", err.Error())
		}
	})

	t.Run("max title validation", func(t *testing.T) {
		input := strings.Join([]string{
			"q1", "q2", "q3", "q4", "q5",
			"q6", "q7", "q8", "q9", "q10", "q11",
		}, ",")
		_, err := resolveTitles(input, "", nil)
		if err == nil {
			t.Fatalf("resolveTitles() error = nil, want error")
		}
		if err.Error() != "too many titles: max 10" {
			t.Fatalf("resolveTitles() error = %q", err.Error())
		}
	})
}

func TestLoadTitlesFromJSON(t *testing.T) {
	t.Run("top-level string array", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "titles.json")
		content := `["data analyst","  BI Developer  ",""]`
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}

		got, err := loadTitlesFromJSON(path)
		if err != nil {
			t.Fatalf("loadTitlesFromJSON() error = %v", err)
		}
		want := []string{"data analyst", "BI Developer"}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("loadTitlesFromJSON() = %#v, want %#v", got, want)
		}
	})

	t.Run("object with job_titles", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "titles.json")
		content := `{"job_titles":["Data Analyst","Business Intelligence Engineer"]}`
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}

		got, err := loadTitlesFromJSON(path)
		if err != nil {
			t.Fatalf("loadTitlesFromJSON() error = %v", err)
		}
		want := []string{"Data Analyst", "Business Intelligence Engineer"}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("loadTitlesFromJSON() = %#v, want %#v", got, want)
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "titles.json")
		if err := os.WriteFile(path, []byte(`{"job_titles":[`), 0o600); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}

		_, err := loadTitlesFromJSON(path)
		if err == nil {
			t.Fatalf("loadTitlesFromJSON() error = nil, want error")
		}
		if !strings.Contains(err.Error(), "parse --query-file") {
			t.Fatalf("loadTitlesFromJSON() error = %q, want parse --query-file message", err.Error())
		}
	})

	t.Run("unsupported schema", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "titles.json")
		if err := os.WriteFile(path, []byte(`{"titles":["backend"]}`), 0o600); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}

		_, err := loadTitlesFromJSON(path)
		if err == nil {
			t.Fatalf("loadTitlesFromJSON() error = nil, want error")
		}
		if !strings.Contains(err.Error(), "expected top-level string array or object with \"job_titles\" string array") {
			t.Fatalf("loadTitlesFromJSON() error = %q, want schema message", err.Error())
		}
	})

	t.Run("non-string entry", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "titles.json")
		if err := os.WriteFile(path, []byte(`{"job_titles":["backend",123]}`), 0o600); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}

		_, err := loadTitlesFromJSON(path)
		if err == nil {
			t.Fatalf("loadTitlesFromJSON() error = nil, want error")
		}
		if !strings.Contains(err.Error(), "job_titles[1] must be a string") {
			t.Fatalf("loadTitlesFromJSON() error = %q, want non-string index message", err.Error())
		}
	})
}

func TestResolveBoards(t *testing.T) {
	t.Run("all uses defaults", func(t *testing.T) {
		got, err := resolveBoards("all", []string{"indeed", "google"})
		if err != nil {
			t.Fatalf("resolveBoards() error = %v", err)
		}
		want := []string{"indeed", "google"}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("resolveBoards() = %#v, want %#v", got, want)
		}
	})

	t.Run("aliases map to zip_recruiter", func(t *testing.T) {
		got, err := resolveBoards("zip,ZipRecruiter,zip_recruiter", nil)
		if err != nil {
			t.Fatalf("resolveBoards() error = %v", err)
		}
		want := []string{"zip_recruiter"}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("resolveBoards() = %#v, want %#v", got, want)
		}
	})

	t.Run("unknown board errors", func(t *testing.T) {
		_, err := resolveBoards("monster", nil)
		if err == nil {
			t.Fatalf("resolveBoards() error = nil, want error")
		}
		if !strings.Contains(err.Error(), "unknown board: monster") {
			t.Fatalf("resolveBoards() error = %q", err.Error())
		}
	})
}

func TestWorkModeFromFlag(t *testing.T) {
	cases := map[string]string{
		"any":     models.WorkModeAny,
		"remote":  models.WorkModeRemote,
		"on-site": models.WorkModeOnSite,
		"onsite":  models.WorkModeOnSite,
		"hybrid":  models.WorkModeHybrid,
		"":        models.WorkModeAny,
	}
	for in, want := range cases {
		if got := workModeFromFlag(in); got != want {
			t.Fatalf("workModeFromFlag(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestOptionalIntFlags(t *testing.T) {
	if positiveInt(0) != nil {
		t.Fatalf("positiveInt(0) should be nil")
	}
	if got := positiveInt(72); got == nil || *got != 72 {
		t.Fatalf("positiveInt(72) = %v", got)
	}
	if nonNegativeInt(-1) != nil {
		t.Fatalf("nonNegativeInt(-1) should be nil")
	}
	if got := nonNegativeInt(0); got == nil || *got != 0 {
		t.Fatalf("nonNegativeInt(0) = %v", got)
	}
}

func TestFormatSearchSummary(t *testing.T) {
	if got := formatSearchSummary(nil); got != "summary: postings=0 by_board=none" {
		t.Fatalf("formatSearchSummary(nil) = %q", got)
	}

	postings := []models.Posting{
		{Board: "indeed"},
		{Board: "indeed"},
		{Board: "linkedin"},
	}
	got := formatSearchSummary(postings)
	want := "summary: postings=3 by_board=indeed:2, linkedin:1"
	if got != want {
		t.Fatalf("formatSearchSummary() = %q, want %q", got, want)
	}
}

func TestSequentialFlagDefaultsOn(t *testing.T) {
	cli := NewCLI()
	parser, err := kong.New(cli, kong.Vars{"version": "test"})
	if err != nil {
		t.Fatalf("kong.New() error = %v", err)
	}

	if _, err := parser.Parse([]string{"search", "data analyst"}); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !cli.Search.Sequential {
		t.Fatalf("Sequential = false, want true by default")
	}

	cli = NewCLI()
	parser, err = kong.New(cli, kong.Vars{"version": "test"})
	if err != nil {
		t.Fatalf("kong.New() error = %v", err)
	}
	if _, err := parser.Parse([]string{"search", "--no-sequential", "data analyst"}); err != nil {
		t.Fatalf("Parse(--no-sequential) error = %v", err)
	}
	if cli.Search.Sequential {
		t.Fatalf("Sequential = true with --no-sequential, want false")
	}
}
