// Package location canonicalizes free-text locations and country names into
// forms each board's search backend accepts.
package location

import "strings"

// allowedCountries is the set of country names the scraping backends accept
// for the country-scoped boards.
var allowedCountries = map[string]struct{}{}

var countryNames = []string{
	"Argentina", "Australia", "Austria", "Bahrain", "Belgium", "Brazil",
	"Canada", "Chile", "China", "Colombia", "Costa Rica", "Czech Republic",
	"Denmark", "Ecuador", "Egypt", "Finland", "France", "Germany", "Greece",
	"Hong Kong", "Hungary", "India", "Indonesia", "Ireland", "Israel",
	"Italy", "Japan", "Kuwait", "Luxembourg", "Malaysia", "Mexico",
	"Morocco", "Netherlands", "New Zealand", "Nigeria", "Norway", "Oman",
	"Pakistan", "Panama", "Peru", "Philippines", "Poland", "Portugal",
	"Qatar", "Romania", "Saudi Arabia", "Singapore", "South Africa",
	"South Korea", "Spain", "Sweden", "Switzerland", "Taiwan", "Thailand",
	"Turkey", "Ukraine", "United Arab Emirates", "UK", "USA", "Uruguay",
	"Venezuela", "Vietnam",
}

var countryAliases = map[string]string{
	"us":             "USA",
	"u.s.":           "USA",
	"u.s.a.":         "USA",
	"usa":            "USA",
	"united states":  "USA",
	"uk":             "UK",
	"united kingdom": "UK",
}

func init() {
	for _, name := range countryNames {
		allowedCountries[name] = struct{}{}
	}
}

// NormalizeCountry maps common aliases onto the accepted country names and
// enforces the allowlist. Unknown or empty input defaults to "USA".
func NormalizeCountry(country string) string {
	country = strings.TrimSpace(country)
	if country == "" {
		return "USA"
	}
	if alias, ok := countryAliases[strings.ToLower(country)]; ok {
		country = alias
	}
	if _, ok := allowedCountries[country]; !ok {
		return "USA"
	}
	return country
}

// StateAbbr maps lowercase US state names to their two-letter codes.
var StateAbbr = map[string]string{
	"alabama": "AL", "alaska": "AK", "arizona": "AZ", "arkansas": "AR",
	"california": "CA", "colorado": "CO", "connecticut": "CT",
	"delaware": "DE", "district of columbia": "DC", "florida": "FL",
	"georgia": "GA", "hawaii": "HI", "idaho": "ID", "illinois": "IL",
	"indiana": "IN", "iowa": "IA", "kansas": "KS", "kentucky": "KY",
	"louisiana": "LA", "maine": "ME", "maryland": "MD",
	"massachusetts": "MA", "michigan": "MI", "minnesota": "MN",
	"mississippi": "MS", "missouri": "MO", "montana": "MT",
	"nebraska": "NE", "nevada": "NV", "new hampshire": "NH",
	"new jersey": "NJ", "new mexico": "NM", "new york": "NY",
	"north carolina": "NC", "north dakota": "ND", "ohio": "OH",
	"oklahoma": "OK", "oregon": "OR", "pennsylvania": "PA",
	"rhode island": "RI", "south carolina": "SC", "south dakota": "SD",
	"tennessee": "TN", "texas": "TX", "utah": "UT", "vermont": "VT",
	"virginia": "VA", "washington": "WA", "west virginia": "WV",
	"wisconsin": "WI", "wyoming": "WY",
}

var abbrSet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(StateAbbr))
	for _, abbr := range StateAbbr {
		set[abbr] = struct{}{}
	}
	return set
}()

// IsStateAbbr reports whether s is a two-letter US state code.
func IsStateAbbr(s string) bool {
	_, ok := abbrSet[strings.ToUpper(strings.TrimSpace(s))]
	return ok && len(strings.TrimSpace(s)) == 2
}

var countrySuffixes = []string{
	", us", ", usa", ", united states", ", united states of america",
	", u.s.", ", u.s.a.",
}

// StripCountrySuffix removes a trailing ", US"-style suffix so boards that
// reject country-qualified locations still accept the value.
func StripCountrySuffix(loc string) string {
	loc = strings.TrimSpace(loc)
	lower := strings.ToLower(loc)
	for _, suffix := range countrySuffixes {
		if strings.HasSuffix(lower, suffix) {
			return strings.TrimSpace(loc[:len(loc)-len(suffix)])
		}
	}
	return loc
}

// IsRemote reports whether the location string names a remote scope.
func IsRemote(loc string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(loc)), "remote")
}

// SplitCityState splits "City, ST" into its two parts. A value with no
// comma comes back whole in the city position.
func SplitCityState(loc string) (city, state string) {
	loc = strings.TrimSpace(loc)
	if loc == "" {
		return "", ""
	}
	parts := strings.SplitN(loc, ",", 2)
	if len(parts) == 2 {
		return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	}
	return loc, ""
}

// toCityState rewrites "City, State Name" or "City, st" into "City, ST",
// returning "" when the right-hand side is not a recognizable US state.
func toCityState(candidate string) string {
	city, right := SplitCityState(candidate)
	if city == "" || right == "" || !strings.Contains(candidate, ",") {
		return ""
	}
	if abbr, ok := StateAbbr[strings.ToLower(right)]; ok {
		return city + ", " + abbr
	}
	if IsStateAbbr(right) {
		return city + ", " + strings.ToUpper(right)
	}
	return ""
}

// glassdoorStateCities lists representative cities per state for boards
// whose location resolver rejects bare state names.
var glassdoorStateCities = map[string][]string{
	"NJ": {"Newark, NJ", "Jersey City, NJ", "Edison, NJ"},
	"CT": {"Hartford, CT", "Stamford, CT", "New Haven, CT"},
	"NY": {"New York, NY", "Buffalo, NY", "Albany, NY"},
	"CA": {"Los Angeles, CA", "San Francisco, CA", "San Jose, CA", "San Diego, CA", "Sacramento, CA"},
	"TX": {"Dallas, TX", "Houston, TX", "Austin, TX", "San Antonio, TX"},
}

// GlassdoorTargets expands a requested location into the concrete
// localities Glassdoor's resolver accepts. Remote scopes yield nothing
// (the board has no usable remote target); bare state names fan out to the
// curated city list for that state.
func GlassdoorTargets(loc string) []string {
	loc = StripCountrySuffix(loc)
	if loc == "" || IsRemote(loc) {
		return nil
	}
	if abbr, ok := StateAbbr[strings.ToLower(loc)]; ok {
		return glassdoorStateCities[abbr]
	}
	trimmed := strings.TrimSpace(loc)
	if len(trimmed) == 2 || len(trimmed) == 3 {
		abbr := strings.ToUpper(trimmed)[:2]
		if _, ok := abbrSet[abbr]; ok {
			return glassdoorStateCities[abbr]
		}
	}
	if cityState := toCityState(loc); cityState != "" {
		return []string{cityState}
	}
	return []string{loc}
}
