package location

import (
	"reflect"
	"testing"
)

func TestNormalizeCountry(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", "USA"},
		{"us", "USA"},
		{"United States", "USA"},
		{"united kingdom", "UK"},
		{"Canada", "Canada"},
		{"Atlantis", "USA"},
	}
	for _, tc := range cases {
		if got := NormalizeCountry(tc.in); got != tc.want {
			t.Fatalf("NormalizeCountry(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestStripCountrySuffix(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Boston, MA, USA", "Boston, MA"},
		{"Boston, MA, United States", "Boston, MA"},
		{"Boston, MA", "Boston, MA"},
		{"  Austin, TX, US  ", "Austin, TX"},
	}
	for _, tc := range cases {
		if got := StripCountrySuffix(tc.in); got != tc.want {
			t.Fatalf("StripCountrySuffix(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestGlassdoorTargetsSkipsRemote(t *testing.T) {
	if got := GlassdoorTargets("Remote (USA)"); got != nil {
		t.Fatalf("expected no targets for remote scope, got %v", got)
	}
}

func TestGlassdoorTargetsExpandsStateName(t *testing.T) {
	got := GlassdoorTargets("New Jersey")
	want := []string{"Newark, NJ", "Jersey City, NJ", "Edison, NJ"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("GlassdoorTargets(New Jersey) = %v, want %v", got, want)
	}
}

func TestGlassdoorTargetsExpandsAbbr(t *testing.T) {
	got := GlassdoorTargets("CT")
	if len(got) != 3 || got[0] != "Hartford, CT" {
		t.Fatalf("GlassdoorTargets(CT) = %v", got)
	}
}

func TestGlassdoorTargetsCanonicalizesCityState(t *testing.T) {
	got := GlassdoorTargets("Boston, Massachusetts, USA")
	if len(got) != 1 || got[0] != "Boston, MA" {
		t.Fatalf("GlassdoorTargets(Boston, Massachusetts, USA) = %v", got)
	}
}

func TestGlassdoorTargetsPassesThroughFreeform(t *testing.T) {
	got := GlassdoorTargets("Downtown Boston")
	if len(got) != 1 || got[0] != "Downtown Boston" {
		t.Fatalf("GlassdoorTargets(Downtown Boston) = %v", got)
	}
}

func TestSplitCityState(t *testing.T) {
	city, state := SplitCityState("Boston, MA")
	if city != "Boston" || state != "MA" {
		t.Fatalf("SplitCityState = %q, %q", city, state)
	}
	city, state = SplitCityState("Remote")
	if city != "Remote" || state != "" {
		t.Fatalf("SplitCityState(Remote) = %q, %q", city, state)
	}
}
