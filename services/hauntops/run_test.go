package hauntops

import (
	"context"
	"database/sql"
	"testing"

	"hauntops-backend/etl/fieldmap"
	"hauntops-backend/lib/scrapers/passage"

	"github.com/stretchr/testify/require"
)

var testMapping = fieldmap.Mapping{
	JSONFields: map[string]string{
		"emailAddress": "email",
		"firstName":    "first_name",
		"lastName":     "last_name",
		"birthDate":    "date_of_birth",
	},
}

func userRow(email string) map[string]any {
	return map[string]any{
		"emailAddress": email,
		"firstName":    "Boo",
		"lastName":     "Qa",
		"birthDate":    "04/01/1990",
		"groups":       []any{"Makeup", "Set Crew"},
	}
}

func TestLoadUsers(t *testing.T) {
	s := setup(t)
	ctx := context.Background()

	rows := []map[string]any{
		userRow("a@example.com"),
		userRow("b@example.com"),
		{"firstName": "No", "lastName": "Email"},
	}

	report, err := s.LoadUsers(ctx, testMapping, rows, RunOptions{})
	require.NoError(t, err)
	require.Equal(t, 3, report.Processed)
	require.Equal(t, 2, report.Created)
	require.Equal(t, 0, report.Updated)
	require.Equal(t, 1, report.Skipped)
	require.Len(t, report.Errors, 1)

	group, err := s.qry.GetGroupByName(ctx, "makeup")
	require.NoError(t, err)
	emails, err := s.qry.ListGroupMemberEmails(ctx, group.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"a@example.com", "b@example.com"}, emails)

	// a second pass converges instead of duplicating
	report, err = s.LoadUsers(ctx, testMapping, rows[:2], RunOptions{})
	require.NoError(t, err)
	require.Equal(t, 0, report.Created)
	require.Equal(t, 2, report.Updated)
}

func TestLoadUsersGroupFailureCountsOnce(t *testing.T) {
	s := setup(t)
	ctx := context.Background()

	_, err := s.db.ExecContext(ctx, "DROP TABLE group_members")
	require.NoError(t, err)

	report, err := s.LoadUsers(ctx, testMapping, []map[string]any{userRow("a@example.com")}, RunOptions{})
	require.NoError(t, err)
	require.Equal(t, 1, report.Processed)
	require.Equal(t, 0, report.Created)
	require.Equal(t, 1, report.Skipped)
	require.Equal(t, report.Processed, report.Created+report.Updated+report.Skipped)
}

func TestLoadUsersDryRun(t *testing.T) {
	s := setup(t)
	ctx := context.Background()

	report, err := s.LoadUsers(ctx, testMapping, []map[string]any{userRow("a@example.com")}, RunOptions{DryRun: true})
	require.NoError(t, err)
	require.Equal(t, 1, report.Created)

	_, err = s.qry.GetUserByEmail(ctx, "a@example.com")
	require.ErrorIs(t, err, sql.ErrNoRows)
	_, err = s.qry.GetGroupByName(ctx, "Makeup")
	require.ErrorIs(t, err, sql.ErrNoRows)
}

func TestLoadParticipationSyncsUserFirst(t *testing.T) {
	s := setup(t)
	ctx := context.Background()

	row := userRow("a@example.com")
	row["start_time"] = "2025-10-17 18:00:00"
	row["event_name"] = "Friday Fright Night"
	row["hours"] = "5"

	report, err := s.LoadParticipation(ctx, testMapping, []map[string]any{row}, RunOptions{})
	require.NoError(t, err)
	require.Equal(t, 1, report.Created)
	require.Equal(t, 0, report.Skipped)

	user, err := s.qry.GetUserByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	event, err := s.qry.GetEventByDateAndName(ctx, "2025-10-17", "Friday Fright Night")
	require.NoError(t, err)
	stored, err := s.qry.GetParticipationByUserAndEvent(ctx, user.ID, event.ID)
	require.NoError(t, err)
	require.Equal(t, float64(5), stored.Hours)
}

func TestLoadParticipationMissingStartTime(t *testing.T) {
	s := setup(t)
	ctx := context.Background()

	row := userRow("a@example.com")
	report, err := s.LoadParticipation(ctx, testMapping, []map[string]any{row}, RunOptions{})
	require.NoError(t, err)
	require.Equal(t, 1, report.Skipped)
	require.Equal(t, 0, report.Created)
}

func TestLoadGroups(t *testing.T) {
	s := setup(t)
	ctx := context.Background()

	_, _, err := s.SyncUser(ctx, s.qry, testVolunteer(), false)
	require.NoError(t, err)

	rows := []map[string]any{
		{"group_name": "Security", "group_points": "3", "email": "booqa@example.com"},
		{"group_name": "Security"},
		{"group_points": "5"},
	}
	report, err := s.LoadGroups(ctx, fieldmap.Mapping{}, rows, RunOptions{})
	require.NoError(t, err)
	require.Equal(t, 1, report.Created)
	require.Equal(t, 1, report.Skipped)

	group, err := s.qry.GetGroupByName(ctx, "Security")
	require.NoError(t, err)
	require.Equal(t, float64(3), group.GroupPoints)
	emails, err := s.qry.ListGroupMemberEmails(ctx, group.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"booqa@example.com"}, emails)
}

func TestLoadUpcomingEvents(t *testing.T) {
	s := setup(t)
	ctx := context.Background()

	rows := []passage.EventRow{
		{
			EventDate:        "Friday, October 17, 2025",
			EventName:        "Friday Fright Night",
			EventID:          5001,
			EventTimeID:      99001,
			StartTime:        "7:00 PM PDT",
			EndTime:          "11:30 PM PDT",
			TicketsPurchased: "1,017",
			TicketsRemaining: "83",
		},
		{EventName: "No Date"},
	}

	report, err := s.LoadUpcomingEvents(ctx, rows, RunOptions{})
	require.NoError(t, err)
	require.Equal(t, 2, report.Processed)
	require.Equal(t, 1, report.Created)
	require.Equal(t, 1, report.Skipped)

	sale, err := s.qry.GetTicketSaleBySourceEventTimeID(ctx, 99001)
	require.NoError(t, err)
	require.Equal(t, int64(1017), sale.TicketsPurchased)
	require.Equal(t, "2025-10-17", sale.EventDate)
}

func TestLoadSalesReport(t *testing.T) {
	s := setup(t)
	ctx := context.Background()

	rows := []passage.SalesRow{
		{EventDate: "2025-10-17", EventName: "Friday Fright Night", TicketsPurchased: 412, TicketsRemaining: 88},
	}
	report, err := s.LoadSalesReport(ctx, rows, RunOptions{})
	require.NoError(t, err)
	require.Equal(t, 1, report.Created)

	event, err := s.qry.GetEventByDateAndName(ctx, "2025-10-17", "Friday Fright Night — 2025-10-17")
	require.NoError(t, err)
	sale, err := s.qry.GetTicketSaleByEventDateAndName(ctx, event.ID, "2025-10-17", event.EventName)
	require.NoError(t, err)
	require.Equal(t, int64(412), sale.TicketsPurchased)

	rows[0].TicketsPurchased = 500
	report, err = s.LoadSalesReport(ctx, rows, RunOptions{})
	require.NoError(t, err)
	require.Equal(t, 1, report.Updated)
}
