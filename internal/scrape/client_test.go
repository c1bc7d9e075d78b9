package scrape

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/jimezsa/jobsweep/internal/network"
)

type fakeProvider struct {
	calls    []Request
	failures int
	rows     ResultSet
	err      error
}

func (f *fakeProvider) Scrape(_ context.Context, req Request) (ResultSet, error) {
	f.calls = append(f.calls, req)
	if len(f.calls) <= f.failures {
		if f.err != nil {
			return nil, f.err
		}
		return nil, errors.New("boom")
	}
	return f.rows, nil
}

func testClient(p Provider, rotator *network.Rotator) *Client {
	c := NewClient(p, rotator, zerolog.Nop())
	c.sleep = func(time.Duration) {}
	return c
}

func TestScrapeRetriesThenSucceeds(t *testing.T) {
	provider := &fakeProvider{failures: 2, rows: ResultSet{{"title": "Data Analyst"}}}
	client := testClient(provider, nil)

	rows, err := client.Scrape(context.Background(), Request{Boards: []string{"indeed"}}, 4)
	if err != nil {
		t.Fatalf("Scrape() error = %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1", len(rows))
	}
	if len(provider.calls) != 3 {
		t.Fatalf("provider called %d times, want 3", len(provider.calls))
	}
}

func TestScrapeExhaustedReturnsScrapeError(t *testing.T) {
	provider := &fakeProvider{failures: 10}
	client := testClient(provider, nil)

	_, err := client.Scrape(context.Background(), Request{Boards: []string{"google"}}, 3)
	var scrapeErr *ScrapeError
	if !errors.As(err, &scrapeErr) {
		t.Fatalf("expected *ScrapeError, got %v", err)
	}
	if scrapeErr.Board != "google" || scrapeErr.Attempts != 3 {
		t.Fatalf("unexpected error fields: %+v", scrapeErr)
	}
	if !errors.Is(err, ErrExhausted) {
		t.Fatalf("errors.Is(err, ErrExhausted) = false, want true")
	}
	if len(provider.calls) != 3 {
		t.Fatalf("provider called %d times, want 3", len(provider.calls))
	}
}

func TestScrapeEmptyResultIsNotAnError(t *testing.T) {
	provider := &fakeProvider{rows: ResultSet{}}
	client := testClient(provider, nil)

	rows, err := client.Scrape(context.Background(), Request{Boards: []string{"linkedin"}}, 4)
	if err != nil {
		t.Fatalf("Scrape() error = %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected empty result set, got %d rows", len(rows))
	}
}

func TestScrapeRequiresBoards(t *testing.T) {
	client := testClient(&fakeProvider{}, nil)
	_, err := client.Scrape(context.Background(), Request{}, 4)
	if !errors.Is(err, ErrNoBoards) {
		t.Fatalf("expected ErrNoBoards, got %v", err)
	}
}

func TestScrapeDoesNotMutateCallerRequest(t *testing.T) {
	provider := &fakeProvider{failures: 1, rows: ResultSet{}}
	rotator, err := network.NewRotator([]string{"http://p1:8080", "http://p2:8080"}, time.Minute)
	if err != nil {
		t.Fatalf("NewRotator() error = %v", err)
	}
	client := testClient(provider, rotator)

	req := Request{Boards: []string{"indeed"}, ResultsWanted: 5000, Proxies: []string{"http://orig:1"}}
	if _, err := client.Scrape(context.Background(), req, 4); err != nil {
		t.Fatalf("Scrape() error = %v", err)
	}

	if req.ResultsWanted != 5000 {
		t.Fatalf("caller request mutated: ResultsWanted = %d", req.ResultsWanted)
	}
	if len(req.Proxies) != 1 || req.Proxies[0] != "http://orig:1" {
		t.Fatalf("caller request mutated: Proxies = %v", req.Proxies)
	}
}

func TestScrapeClampsResultsWanted(t *testing.T) {
	provider := &fakeProvider{rows: ResultSet{}}
	client := testClient(provider, nil)

	if _, err := client.Scrape(context.Background(), Request{Boards: []string{"indeed"}, ResultsWanted: 5000}, 4); err != nil {
		t.Fatalf("Scrape() error = %v", err)
	}
	if got := provider.calls[0].ResultsWanted; got != MaxResults {
		t.Fatalf("ResultsWanted = %d, want %d", got, MaxResults)
	}

	provider.calls = nil
	if _, err := client.Scrape(context.Background(), Request{Boards: []string{"indeed"}}, 4); err != nil {
		t.Fatalf("Scrape() error = %v", err)
	}
	if got := provider.calls[0].ResultsWanted; got != MinResults {
		t.Fatalf("ResultsWanted = %d, want %d", got, MinResults)
	}
}

func TestScrapeDropsBlankProxiesAndUserAgent(t *testing.T) {
	provider := &fakeProvider{rows: ResultSet{}}
	client := testClient(provider, nil)

	req := Request{
		Boards:    []string{"indeed"},
		Proxies:   []string{" ", "http://ok:1", ""},
		UserAgent: "   ",
	}
	if _, err := client.Scrape(context.Background(), req, 4); err != nil {
		t.Fatalf("Scrape() error = %v", err)
	}
	sent := provider.calls[0]
	if len(sent.Proxies) != 1 || sent.Proxies[0] != "http://ok:1" {
		t.Fatalf("Proxies = %v", sent.Proxies)
	}
	if sent.UserAgent != "" {
		t.Fatalf("UserAgent = %q, want empty", sent.UserAgent)
	}
}

func TestScrapeGoogleTermExclusivity(t *testing.T) {
	provider := &fakeProvider{rows: ResultSet{}}
	client := testClient(provider, nil)

	req := Request{Boards: []string{"google"}, SearchTerm: "data analyst"}
	if _, err := client.Scrape(context.Background(), req, 4); err != nil {
		t.Fatalf("Scrape() error = %v", err)
	}
	sent := provider.calls[0]
	if sent.SearchTerm != "" {
		t.Fatalf("generic term should be dropped for google, got %q", sent.SearchTerm)
	}
	if sent.GoogleSearchTerm != "data analyst" {
		t.Fatalf("GoogleSearchTerm = %q", sent.GoogleSearchTerm)
	}
}

func TestScrapeIndeedRemoteLocationFallback(t *testing.T) {
	provider := &fakeProvider{failures: 1, err: ErrBadLocation, rows: ResultSet{{"title": "x"}}}
	client := testClient(provider, nil)

	req := Request{Boards: []string{"indeed"}, Location: "Remote", Country: "USA"}
	rows, err := client.Scrape(context.Background(), req, 4)
	if err != nil {
		t.Fatalf("Scrape() error = %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1", len(rows))
	}
	if got := provider.calls[1].Location; got != "USA" {
		t.Fatalf("fallback location = %q, want USA", got)
	}
}

func TestScrapeRotatesProxiesAcrossRetries(t *testing.T) {
	provider := &fakeProvider{failures: 2, rows: ResultSet{}}
	rotator, err := network.NewRotator([]string{"http://p1:8080", "http://p2:8080"}, time.Minute)
	if err != nil {
		t.Fatalf("NewRotator() error = %v", err)
	}
	client := testClient(provider, rotator)

	if _, err := client.Scrape(context.Background(), Request{Boards: []string{"indeed"}}, 4); err != nil {
		t.Fatalf("Scrape() error = %v", err)
	}

	second := provider.calls[1].Proxies
	third := provider.calls[2].Proxies
	if len(second) != 1 || len(third) != 1 {
		t.Fatalf("retries should pin one proxy each: %v %v", second, third)
	}
	if second[0] == third[0] {
		t.Fatalf("cursor did not advance: %q vs %q", second[0], third[0])
	}
}

func TestRequestArgsOmitsUnsetFields(t *testing.T) {
	args := Request{Boards: []string{"indeed"}, ResultsWanted: 10}.Args()
	for _, key := range []string{"is_remote", "hours_old", "job_type", "easy_apply", "offset"} {
		if _, ok := args[key]; ok {
			t.Fatalf("unset field %q must be omitted", key)
		}
	}

	hours := 24
	remote := true
	args = Request{Boards: []string{"indeed"}, HoursOld: &hours, Remote: &remote}.Args()
	if args["hours_old"] != 24 {
		t.Fatalf("hours_old = %v", args["hours_old"])
	}
	if args["is_remote"] != true {
		t.Fatalf("is_remote = %v", args["is_remote"])
	}
}

func TestScrapeRecordsCABundleWhenPresent(t *testing.T) {
	provider := &fakeProvider{rows: ResultSet{}}
	client := testClient(provider, nil)

	path := filepath.Join(t.TempDir(), "ca.pem")
	if err := os.WriteFile(path, []byte("-----BEGIN CERTIFICATE-----\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	req := Request{Boards: []string{"indeed"}, CACert: path}
	if _, err := client.Scrape(context.Background(), req, 4); err != nil {
		t.Fatalf("Scrape() error = %v", err)
	}
	sent := provider.calls[0]
	if sent.CACert != path {
		t.Fatalf("CACert = %q, want %q", sent.CACert, path)
	}
	if got := sent.Args()["ca_cert"]; got != path {
		t.Fatalf("Args()[ca_cert] = %v, want %q", got, path)
	}

	provider.calls = nil
	missing := Request{Boards: []string{"indeed"}, CACert: filepath.Join(t.TempDir(), "gone.pem")}
	if _, err := client.Scrape(context.Background(), missing, 4); err != nil {
		t.Fatalf("Scrape() error = %v", err)
	}
	if sent := provider.calls[0]; sent.CACert != "" {
		t.Fatalf("missing bundle should be cleared, got %q", sent.CACert)
	}
}
