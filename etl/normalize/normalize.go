// Package normalize converts the loosely typed values found in
// volunteer portal exports into Go types. The portals emit booleans
// as consent phrases, birth dates as unix milliseconds or american
// date strings, and counts as "N/A", so every conversion here is
// lossy with an explicit fallback.
package normalize

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"hauntops-backend/lib/timezone"
)

var truthy = map[string]bool{
	"true":    true,
	"1":       true,
	"yes":     true,
	"y":       true,
	"i agree": true,
}

// String converts any value to a trimmed string, nil becomes "".
func String(v any) string {
	if v == nil {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		s = fmt.Sprint(v)
	}
	return strings.TrimSpace(s)
}

// Bool recognizes the consent and affirmative tokens the portals
// emit. Anything unrecognized is false.
func Bool(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case int:
		return val == 1
	case int64:
		return val == 1
	case float64:
		return val == 1
	}
	return truthy[strings.ToLower(String(v))]
}

// Float parses a numeric value, returning def on "", "N/A" or
// anything unparsable.
func Float(v any, def float64) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case int64:
		return float64(val)
	}
	s := strings.ReplaceAll(String(v), ",", "")
	if s == "" || strings.EqualFold(s, "n/a") {
		return def
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return f
}

// Int is Float truncated toward zero.
func Int(v any, def int) int {
	switch val := v.(type) {
	case int:
		return val
	case int64:
		return int(val)
	}
	s := strings.ReplaceAll(String(v), ",", "")
	if s == "" || strings.EqualFold(s, "n/a") {
		return def
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return int(f)
}

var birthDateLayouts = []string{
	"01-02-2006",
	"01/02/2006",
	"2006-01-02",
	"2006-01-02T15:04:05.000-07:00",
	time.RFC3339,
}

// BirthDate accepts a typed time, unix milliseconds (the signup
// portal's API encoding, as an integer or a digit string) or an
// american date string. The result is a date at midnight in the
// configured zone.
func BirthDate(v any) (time.Time, error) {
	switch val := v.(type) {
	case nil:
		return time.Time{}, fmt.Errorf("birth date is empty")
	case time.Time:
		return midnight(val.In(timezone.Location)), nil
	case int:
		return fromUnixMillis(int64(val)), nil
	case int64:
		return fromUnixMillis(val), nil
	case float64:
		return fromUnixMillis(int64(val)), nil
	}

	s := String(v)
	if s == "" {
		return time.Time{}, fmt.Errorf("birth date is empty")
	}
	if isDigits(s) {
		millis, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse birth date %q: %w", s, err)
		}
		return fromUnixMillis(millis), nil
	}
	for _, layout := range birthDateLayouts {
		t, err := time.ParseInLocation(layout, s, timezone.Location)
		if err == nil {
			return midnight(t.In(timezone.Location)), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized birth date %q", s)
}

// FormatBirthDate renders MM/DD/YYYY, the format BirthDate
// round-trips with.
func FormatBirthDate(t time.Time) string {
	return t.Format("01/02/2006")
}

func fromUnixMillis(millis int64) time.Time {
	return midnight(time.UnixMilli(millis).In(timezone.Location))
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

// Age in whole years on the given day. The year difference is
// decremented when the birthday hasn't occurred yet that year.
func Age(dob, on time.Time) int {
	age := on.Year() - dob.Year()
	if (int(on.Month()) < int(dob.Month())) ||
		(on.Month() == dob.Month() && on.Day() < dob.Day()) {
		age--
	}
	return age
}

func Under16(dob, on time.Time) bool {
	return Age(dob, on) < 16
}

func Under18(dob, on time.Time) bool {
	return Age(dob, on) < 18
}

// LocalTimestamp parses a naive "YYYY-MM-DD HH:MM[:SS]" string in
// the configured zone.
func LocalTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("timestamp is empty")
	}
	for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02 15:04"} {
		t, err := time.ParseInLocation(layout, s, timezone.Location)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// zone labels the ticketing portal prints after its timestamps.
// both resolve to the configured Pacific zone, DST is handled by
// the zone database rather than the label.
var zoneAliases = map[string]*time.Location{
	"PDT": timezone.Location,
	"PST": timezone.Location,
}

var portalTimeLayouts = []string{
	"Mon 1/2/2006 3:04 PM",
	"Mon, Jan 2, 2006 3:04 PM",
	"Monday, January 2, 2006 3:04 PM",
	"1/2/2006 3:04 PM",
	"2006-01-02 3:04 PM",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// PortalTime parses the ticketing portal's display timestamps,
// e.g. "Sat 10/12/2025 7:00 PM PDT". The zone label is resolved
// through the alias table, a missing label means the configured
// local zone. The result is in UTC. An empty string returns the
// zero time with no error since the portal omits times for
// all-day listings.
func PortalTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}

	loc := timezone.Location
	fields := strings.Fields(s)
	if len(fields) > 1 {
		last := fields[len(fields)-1]
		if aliased, ok := zoneAliases[strings.ToUpper(last)]; ok {
			loc = aliased
			s = strings.TrimSpace(strings.TrimSuffix(s, last))
		}
	}

	for _, layout := range portalTimeLayouts {
		t, err := time.ParseInLocation(layout, s, loc)
		if err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized portal time %q", s)
}

var eventDateLayouts = []string{
	"2006-01-02",
	"Monday, January 2, 2006",
	"1/2/2006",
	"01/02/2006",
}

// EventDate parses the several formats the portals use for bare
// event dates. The result is a date at midnight in the configured
// zone.
func EventDate(v any) (time.Time, error) {
	if t, ok := v.(time.Time); ok {
		return midnight(t.In(timezone.Location)), nil
	}
	s := String(v)
	if s == "" {
		return time.Time{}, fmt.Errorf("event date is empty")
	}
	for _, layout := range eventDateLayouts {
		t, err := time.ParseInLocation(layout, s, timezone.Location)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized event date %q", s)
}
