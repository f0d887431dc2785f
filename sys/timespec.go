package sys

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sho0pi/naturaltime"
)

var durationUnits = map[string]time.Duration{
	"s": time.Second, "sec": time.Second, "secs": time.Second, "second": time.Second, "seconds": time.Second,
	"m": time.Minute, "min": time.Minute, "mins": time.Minute, "minute": time.Minute, "minutes": time.Minute,
	"h": time.Hour, "hr": time.Hour, "hrs": time.Hour, "hour": time.Hour, "hours": time.Hour,
	"d": 24 * time.Hour, "day": 24 * time.Hour, "days": 24 * time.Hour,
	"w": 7 * 24 * time.Hour, "wk": 7 * 24 * time.Hour, "wks": 7 * 24 * time.Hour,
	"week": 7 * 24 * time.Hour, "weeks": 7 * 24 * time.Hour,
}

// bareClockRe matches a time of day with no date attached ("15:00", "3pm", "at 9:30").
var bareClockRe = regexp.MustCompile(`(?i)^\s*(?:at\s+)?(?:\d{1,2}(?::\d{2}){0,2}\s*(?:am|pm|a\.m\.|p\.m\.)?|noon|midnight)\s*$`)

// ParseDuration sums a sequence of <integer><unit> tokens such as "1h 30m"
// or "2 days and 4 hours". It reports false when no token is present, when
// anything other than tokens and separators is left over, or on overflow.
// A zero total is valid here; callers decide whether to reject it.
func ParseDuration(text string) (time.Duration, bool) {
	s := strings.ToLower(strings.TrimSpace(text))
	var total time.Duration
	found := false

	for {
		s = trimDurationSeparators(s)
		if s == "" {
			break
		}

		i := 0
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
		}
		if i == 0 {
			return 0, false
		}
		n, err := strconv.ParseInt(s[:i], 10, 64)
		if err != nil {
			return 0, false
		}

		s = strings.TrimLeft(s[i:], " \t")
		j := 0
		for j < len(s) && s[j] >= 'a' && s[j] <= 'z' {
			j++
		}
		unit, ok := durationUnits[s[:j]]
		if !ok {
			return 0, false
		}
		s = s[j:]

		if n > math.MaxInt64/int64(unit) {
			return 0, false
		}
		add := time.Duration(n) * unit
		if total > math.MaxInt64-add {
			return 0, false
		}
		total += add
		found = true
	}

	return total, found
}

func trimDurationSeparators(s string) string {
	for {
		s = strings.TrimLeft(s, " \t\n,")
		if strings.HasPrefix(s, "and") && (len(s) == 3 || s[3] == ' ' || (s[3] >= '0' && s[3] <= '9')) {
			s = s[3:]
			continue
		}
		return s
	}
}

// NaturalParser turns a human date phrase into an absolute time relative
// to ref. *naturaltime.Parser satisfies it.
type NaturalParser interface {
	ParseDate(text string, ref time.Time) (*time.Time, error)
}

// TimeParser resolves user supplied "when" text to a UTC instant.
type TimeParser struct {
	natural NaturalParser
}

func NewTimeParser(natural NaturalParser) *TimeParser {
	return &TimeParser{natural: natural}
}

// NewNaturalTimeParser builds a TimeParser backed by naturaltime.
func NewNaturalTimeParser() (*TimeParser, error) {
	p, err := naturaltime.New()
	if err != nil {
		return nil, err
	}
	return NewTimeParser(p), nil
}

// ParseAbsolute interprets text as either a duration from now ("10m",
// "in 2h30m") or a natural-language date ("tomorrow at 3pm",
// "2025-06-01 18:00") read in loc. A bare time of day that has already
// passed today resolves to tomorrow.
func (p *TimeParser) ParseAbsolute(text string, now time.Time, loc *time.Location) (time.Time, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}

	rel := text
	if lower := strings.ToLower(rel); strings.HasPrefix(lower, "in ") {
		rel = rel[3:]
	}
	if d, ok := ParseDuration(rel); ok {
		return now.Add(d).UTC(), true
	}

	if p.natural == nil {
		return time.Time{}, false
	}

	// naturaltime reads and answers in UTC wall clock; anchor both ends in loc.
	local := now.In(loc)
	ref := time.Date(local.Year(), local.Month(), local.Day(), local.Hour(), local.Minute(), local.Second(), 0, time.UTC)

	result, err := p.natural.ParseDate(text, ref)
	if err != nil || result == nil {
		return time.Time{}, false
	}

	w := *result
	t := time.Date(w.Year(), w.Month(), w.Day(), w.Hour(), w.Minute(), w.Second(), 0, loc)
	if t.Before(now) && bareClockRe.MatchString(text) {
		t = time.Date(w.Year(), w.Month(), w.Day()+1, w.Hour(), w.Minute(), w.Second(), 0, loc)
	}
	return t.UTC(), true
}
