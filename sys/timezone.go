package sys

import (
	"fmt"
	"slices"
	"strings"
	"time"
	_ "time/tzdata"
)

// timezoneAliases maps common abbreviations to IANA zone names.
var timezoneAliases = map[string]string{
	"EST": "America/New_York", "EDT": "America/New_York",
	"CST": "America/Chicago", "CDT": "America/Chicago",
	"MST": "America/Denver", "MDT": "America/Denver",
	"PST": "America/Los_Angeles", "PDT": "America/Los_Angeles",
	"AKST": "America/Anchorage", "AKDT": "America/Anchorage",
	"HST": "Pacific/Honolulu",

	"GMT": "Etc/GMT", "BST": "Europe/London",
	"CET": "Europe/Paris", "CEST": "Europe/Paris",
	"EET": "Europe/Athens", "EEST": "Europe/Athens",
	"WET": "Europe/Lisbon", "WEST": "Europe/Lisbon",

	"IST": "Asia/Kolkata", "KST": "Asia/Seoul",
	"SGT": "Asia/Singapore", "HKT": "Asia/Hong_Kong",

	"AEST": "Australia/Sydney", "AEDT": "Australia/Sydney",
	"ACST": "Australia/Adelaide", "ACDT": "Australia/Adelaide",
	"AWST": "Australia/Perth",

	"NZST": "Pacific/Auckland", "NZDT": "Pacific/Auckland",

	"UTC": "UTC", "Z": "UTC",
}

// ResolveTimezone accepts an abbreviation from timezoneAliases or an IANA
// name and returns the location together with its canonical name.
func ResolveTimezone(input string) (*time.Location, string, error) {
	name := strings.TrimSpace(input)
	if name == "" {
		return time.UTC, "UTC", nil
	}
	if full, ok := timezoneAliases[strings.ToUpper(name)]; ok {
		name = full
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, "", fmt.Errorf("unknown timezone %q: %w", input, err)
	}
	return loc, loc.String(), nil
}

// TimezoneSuggestions returns the aliases whose abbreviation or zone name
// contains query, for autocomplete.
func TimezoneSuggestions(query string, limit int) []string {
	query = strings.ToLower(strings.TrimSpace(query))
	keys := make([]string, 0, len(timezoneAliases))
	for k := range timezoneAliases {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var out []string
	for _, abbr := range keys {
		full := timezoneAliases[abbr]
		if query != "" && !strings.Contains(strings.ToLower(abbr), query) && !strings.Contains(strings.ToLower(full), query) {
			continue
		}
		out = append(out, abbr)
		if len(out) >= limit {
			break
		}
	}
	return out
}

// TimezoneAlias returns the IANA name behind an abbreviation.
func TimezoneAlias(abbr string) string {
	return timezoneAliases[strings.ToUpper(abbr)]
}
