package record

import (
	"testing"
	"time"

	"hauntops-backend/lib/timezone"

	"github.com/stretchr/testify/require"
)

func validRow() map[string]any {
	return map[string]any{
		"email":         "Vol@Example.COM ",
		"first_name":    "Alex",
		"last_name":     "Rios",
		"date_of_birth": "07/04/1990",
		"tshirt_size":   "L",
		"waiver":        "I Agree",
		"points":        "12.5",
		"groups":        "Makeup, Set Crew",
	}
}

func TestVolunteerFromRow(t *testing.T) {
	v, err := VolunteerFromRow(validRow())
	require.NoError(t, err)

	require.Equal(t, "vol@example.com", v.Email)
	require.Equal(t, "Alex", v.FirstName)
	require.Equal(t, "Rios", v.LastName)
	require.Equal(t, 1990, v.DateOfBirth.Year())
	require.Equal(t, time.July, v.DateOfBirth.Month())
	require.True(t, v.Waiver)
	require.Equal(t, 12.5, v.PointTotal)
	require.Equal(t, []string{"Makeup", "Set Crew"}, v.GroupNames())
}

func TestVolunteerMissingFields(t *testing.T) {
	cases := []struct {
		drop    []string
		missing []string
	}{
		{[]string{"email"}, []string{"email"}},
		{[]string{"first_name", "last_name"}, []string{"first_name", "last_name"}},
		{
			[]string{"email", "first_name", "last_name", "date_of_birth"},
			[]string{"email", "first_name", "last_name", "date_of_birth"},
		},
	}

	for _, test := range cases {
		row := validRow()
		for _, field := range test.drop {
			delete(row, field)
		}
		_, err := VolunteerFromRow(row)
		require.Error(t, err)

		var verr ValidationError
		require.ErrorAs(t, err, &verr)
		require.Equal(t, test.missing, verr.Missing)
	}
}

func TestVolunteerBadBirthDate(t *testing.T) {
	row := validRow()
	row["date_of_birth"] = "not a date"

	_, err := VolunteerFromRow(row)
	var verr ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, []string{"date_of_birth"}, verr.Missing)
}

func TestParticipationFromRow(t *testing.T) {
	p, err := ParticipationFromRow(map[string]any{
		"email":      "VOL@example.com",
		"event_name": "Opening Night",
		"start_time": "2025-10-12 18:00:00",
		"end_time":   "2025-10-12 23:00:00",
		"signed_in":  "Yes",
		"confirmed":  "Yes",
		"waitlist":   "No",
		"conflict":   "",
		"hours":      "5",
		"points":     "N/A",
	})
	require.NoError(t, err)

	require.Equal(t, "vol@example.com", p.Email)
	require.True(t, p.SignedIn)
	require.True(t, p.Confirmed)
	require.False(t, p.Waitlist)
	require.False(t, p.Conflict)
	require.Equal(t, 5.0, p.Hours)
	require.Zero(t, p.Points)

	// event date is derived from start_time when absent
	require.Equal(t,
		time.Date(2025, time.October, 12, 0, 0, 0, 0, timezone.Location),
		p.EventDate)
}

func TestParticipationMissingFields(t *testing.T) {
	_, err := ParticipationFromRow(map[string]any{})
	var verr ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, []string{"email", "start_time"}, verr.Missing)
}
