package dedupe

import (
	"reflect"
	"testing"
	"time"

	"github.com/jimezsa/jobsweep/internal/models"
)

func datePtr(t time.Time) *time.Time { return &t }

func TestNormalizeURL(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"https://www.example.com/job/123?ref=abc", "example.com/job/123"},
		{"http://example.com/job/123/", "example.com/job/123"},
		{"https://Example.COM/Job", "example.com/Job"},
		{"not a url at all://", ""},
		{"", ""},
		{"/relative/path", ""},
	}
	for _, tc := range cases {
		if got := NormalizeURL(tc.in); got != tc.want {
			t.Fatalf("NormalizeURL(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestURLStageKeepsFirst(t *testing.T) {
	rows := []models.Posting{
		{Company: "Acme", Title: "Data Analyst", JobURL: "https://www.example.com/job/1?utm=x"},
		{Company: "ACME", Title: "Data Analyst", JobURL: "http://example.com/job/1/"},
	}
	out := Postings(rows)
	if len(out) != 1 {
		t.Fatalf("len(out) = %d, want 1", len(out))
	}
	if out[0].Company != "Acme" {
		t.Fatalf("expected first occurrence kept, got %+v", out[0])
	}
}

func TestCompositeStageNormalizesText(t *testing.T) {
	rows := []models.Posting{
		{Company: "Acme Inc.", Title: "Sr. Data Analyst", City: "Boston", State: "MA", JobURL: "https://a.example.com/1"},
		{Company: "ACME, INC", Title: "Data Analyst", City: "boston", State: "ma", JobURL: "https://b.example.com/2"},
	}
	out := Postings(rows)
	if len(out) != 1 {
		t.Fatalf("len(out) = %d, want 1", len(out))
	}
}

func TestCompositeStagePrefersMostRecent(t *testing.T) {
	older := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC)
	rows := []models.Posting{
		{Company: "Acme", Title: "Analyst", City: "Boston", State: "MA", DatePosted: datePtr(older), JobURL: "https://x.example.com/1"},
		{Company: "Acme", Title: "Analyst", City: "Boston", State: "MA", DatePosted: datePtr(newer), JobURL: "https://x.example.com/2"},
	}
	out := Postings(rows)
	if len(out) != 1 {
		t.Fatalf("len(out) = %d, want 1", len(out))
	}
	if !out[0].DatePosted.Equal(newer) {
		t.Fatalf("expected newest posting kept, got %v", out[0].DatePosted)
	}
}

func TestCompositeStageNoDatesKeepsFirst(t *testing.T) {
	rows := []models.Posting{
		{Company: "Acme", Title: "Analyst", City: "Boston", State: "MA", Board: "indeed"},
		{Company: "Acme", Title: "Analyst", City: "Boston", State: "MA", Board: "glassdoor"},
	}
	out := Postings(rows)
	if len(out) != 1 {
		t.Fatalf("len(out) = %d, want 1", len(out))
	}
	if out[0].Board != "indeed" {
		t.Fatalf("expected stable first-kept order, got %+v", out[0])
	}
}

func TestRowsWithoutAnyKeyFallBackToExactDedupe(t *testing.T) {
	rows := []models.Posting{
		{Description: "same"},
		{Description: "same"},
		{Description: "different"},
	}
	out := Postings(rows)
	if len(out) != 2 {
		t.Fatalf("len(out) = %d, want 2", len(out))
	}
}

func TestDedupeIdempotent(t *testing.T) {
	newer := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	rows := []models.Posting{
		{Company: "Acme Inc.", Title: "Sr. Data Analyst", City: "Boston", State: "MA", JobURL: "https://www.example.com/job/1"},
		{Company: "ACME INC", Title: "Data Analyst", City: "Boston", State: "MA", JobURL: "https://example.com/job/2", DatePosted: datePtr(newer)},
		{Company: "Beta", Title: "BI Engineer", City: "Austin", State: "TX", JobURL: "https://example.com/job/3"},
	}
	once := Postings(rows)
	twice := Postings(once)
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("dedupe not idempotent:\nonce:  %+v\ntwice: %+v", once, twice)
	}
}

func TestAccentedCompanyFoldsToSameKey(t *testing.T) {
	rows := []models.Posting{
		{Company: "Café Média", Title: "Analyst", City: "Boston", State: "MA", JobURL: "https://a.example.com/1"},
		{Company: "Cafe Media", Title: "Analyst", City: "Boston", State: "MA", JobURL: "https://b.example.com/2"},
	}
	out := Postings(rows)
	if len(out) != 1 {
		t.Fatalf("len(out) = %d, want 1", len(out))
	}
}

func TestExactRowFallbackComparesPointerValues(t *testing.T) {
	remoteA, remoteB := true, true
	salaryA, salaryB := 95000.0, 95000.0
	rows := []models.Posting{
		{Board: "indeed", Remote: &remoteA, MinAmount: &salaryA, Description: "great role"},
		{Board: "indeed", Remote: &remoteB, MinAmount: &salaryB, Description: "great role"},
	}
	out := Postings(rows)
	if len(out) != 1 {
		t.Fatalf("len(out) = %d, want 1", len(out))
	}
}
