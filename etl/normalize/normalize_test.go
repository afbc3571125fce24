package normalize

import (
	"testing"
	"time"

	"hauntops-backend/lib/timezone"

	"github.com/stretchr/testify/require"
)

func TestBool(t *testing.T) {
	cases := []struct {
		input  any
		expect bool
	}{
		{"true", true},
		{"True", true},
		{"1", true},
		{"yes", true},
		{"Yes", true},
		{"y", true},
		{"I Agree", true},
		{" i agree ", true},
		{true, true},
		{1, true},
		{"false", false},
		{"no", false},
		{"0", false},
		{"", false},
		{nil, false},
		{"agree", false},
		{2, false},
	}
	for _, test := range cases {
		require.Equal(t, test.expect, Bool(test.input), "input: %v", test.input)
	}
}

func TestNumeric(t *testing.T) {
	require.Equal(t, 0, Int("N/A", 0))
	require.Equal(t, 0, Int("", 0))
	require.Equal(t, 0, Int(nil, 0))
	require.Equal(t, 5, Int("garbage", 5))
	require.Equal(t, 42, Int("42", 0))
	require.Equal(t, 42, Int(" 42 ", 0))
	require.Equal(t, 3, Int("3.9", 0))
	require.Equal(t, 1200, Int("1,200", 0))

	require.Equal(t, 0.0, Float("n/a", 0))
	require.Equal(t, 2.5, Float("2.5", 0))
	require.Equal(t, 1.5, Float(1.5, 0))
	require.Equal(t, 9.0, Float("bogus", 9.0))
}

func TestBirthDateRoundTrip(t *testing.T) {
	parsed, err := BirthDate("07/04/1990")
	require.NoError(t, err)
	require.Equal(t, "07/04/1990", FormatBirthDate(parsed))

	dashed, err := BirthDate("07-04-1990")
	require.NoError(t, err)
	require.Equal(t, parsed, dashed)
}

func TestBirthDateUnixMillis(t *testing.T) {
	// 1990-07-04 12:00:00 Pacific
	src := time.Date(1990, time.July, 4, 12, 0, 0, 0, timezone.Location)

	fromInt, err := BirthDate(src.UnixMilli())
	require.NoError(t, err)
	require.Equal(t, 1990, fromInt.Year())
	require.Equal(t, time.July, fromInt.Month())
	require.Equal(t, 4, fromInt.Day())
	require.Zero(t, fromInt.Hour())

	fromString, err := BirthDate(FormatBirthDate(fromInt))
	require.NoError(t, err)
	require.Equal(t, fromInt, fromString)
}

func TestBirthDateInvalid(t *testing.T) {
	_, err := BirthDate("")
	require.Error(t, err)
	_, err = BirthDate(nil)
	require.Error(t, err)
	_, err = BirthDate("not a date")
	require.Error(t, err)
}

func TestAgeBoundaries(t *testing.T) {
	on := time.Date(2025, time.October, 15, 0, 0, 0, 0, timezone.Location)

	cases := []struct {
		dob     time.Time
		age     int
		under16 bool
		under18 bool
	}{
		// birthday exactly 16 years before
		{time.Date(2009, time.October, 15, 0, 0, 0, 0, timezone.Location), 16, false, true},
		// birthday one day after, still 15
		{time.Date(2009, time.October, 16, 0, 0, 0, 0, timezone.Location), 15, true, true},
		// exactly 18
		{time.Date(2007, time.October, 15, 0, 0, 0, 0, timezone.Location), 18, false, false},
		// 18 tomorrow
		{time.Date(2007, time.October, 16, 0, 0, 0, 0, timezone.Location), 17, true, true},
		{time.Date(1990, time.July, 4, 0, 0, 0, 0, timezone.Location), 35, false, false},
	}
	for _, test := range cases {
		require.Equal(t, test.age, Age(test.dob, on), "dob: %v", test.dob)
		require.Equal(t, test.under16, Under16(test.dob, on), "dob: %v", test.dob)
		require.Equal(t, test.under18, Under18(test.dob, on), "dob: %v", test.dob)
	}
}

func TestLocalTimestamp(t *testing.T) {
	ts, err := LocalTimestamp("2025-10-12 19:00:00")
	require.NoError(t, err)
	require.Equal(t, timezone.Location, ts.Location())
	require.Equal(t, 19, ts.Hour())

	short, err := LocalTimestamp("2025-10-12 19:00")
	require.NoError(t, err)
	require.Equal(t, ts, short)

	_, err = LocalTimestamp("")
	require.Error(t, err)
}

func TestPortalTime(t *testing.T) {
	// 7 PM PDT == 02:00 UTC next day
	ts, err := PortalTime("Sun 10/12/2025 7:00 PM PDT")
	require.NoError(t, err)
	require.Equal(t, time.UTC, ts.Location())
	require.Equal(t, time.Date(2025, time.October, 13, 2, 0, 0, 0, time.UTC), ts)

	// PST label on a summer date still resolves through the zone db
	winter, err := PortalTime("Sat 12/13/2025 7:00 PM PST")
	require.NoError(t, err)
	require.Equal(t, time.Date(2025, time.December, 14, 3, 0, 0, 0, time.UTC), winter)

	// no zone label falls back to the local zone
	local, err := PortalTime("Sun 10/12/2025 7:00 PM")
	require.NoError(t, err)
	require.Equal(t, ts, local)

	zero, err := PortalTime("")
	require.NoError(t, err)
	require.True(t, zero.IsZero())
}

func TestEventDate(t *testing.T) {
	expect := time.Date(2025, time.September, 26, 0, 0, 0, 0, timezone.Location)

	for _, input := range []string{
		"2025-09-26",
		"Friday, September 26, 2025",
		"9/26/2025",
		"09/26/2025",
	} {
		parsed, err := EventDate(input)
		require.NoError(t, err)
		require.Equal(t, expect, parsed, "input: %s", input)
	}

	_, err := EventDate("someday")
	require.Error(t, err)
}
