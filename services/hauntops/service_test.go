package hauntops

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"hauntops-backend/etl/record"
	"hauntops-backend/lib/testutil"
	"hauntops-backend/lib/timezone"
	"hauntops-backend/services/hauntops/db"

	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) Service {
	res, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "hauntops",
		DbSchema: db.Schema,
	})
	t.Cleanup(cleanup)
	return NewService(res.DB)
}

func testVolunteer() record.Volunteer {
	return record.Volunteer{
		Email:       "booqa@example.com",
		FirstName:   "Boo",
		LastName:    "Qa",
		DateOfBirth: time.Date(1990, 4, 1, 0, 0, 0, 0, timezone.Location),
		City:        "Fresno",
		Groups:      "Makeup, Set Crew",
	}
}

func TestSyncUserCreatesWithDefaults(t *testing.T) {
	s := setup(t)
	ctx := context.Background()

	action, user, err := s.SyncUser(ctx, s.qry, testVolunteer(), false)
	require.NoError(t, err)
	require.Equal(t, ActionCreated, action)

	require.Equal(t, "booqa@example.com", user.Email)
	require.Equal(t, "booqa@example.com", user.Username)
	require.Equal(t, "CA", user.State)
	require.Equal(t, "USA", user.Country)
	require.Equal(t, "unknown", user.Phone1)
	require.Equal(t, "Unknown", user.TshirtSize)
	require.Equal(t, "none", user.Allergies)
	require.Equal(t, "04/01/1990", user.DateOfBirth)
}

func TestSyncUserUpdateOverwrites(t *testing.T) {
	s := setup(t)
	ctx := context.Background()

	_, _, err := s.SyncUser(ctx, s.qry, testVolunteer(), false)
	require.NoError(t, err)

	vol := testVolunteer()
	vol.City = "Clovis"
	vol.Phone1 = "555-0100"
	action, user, err := s.SyncUser(ctx, s.qry, vol, false)
	require.NoError(t, err)
	require.Equal(t, ActionUpdated, action)
	require.Equal(t, "Clovis", user.City)
	require.Equal(t, "555-0100", user.Phone1)
}

func TestSyncUserDryRunWritesNothing(t *testing.T) {
	s := setup(t)
	ctx := context.Background()

	action, _, err := s.SyncUser(ctx, s.qry, testVolunteer(), true)
	require.NoError(t, err)
	require.Equal(t, ActionCreated, action)

	_, err = s.qry.GetUserByEmail(ctx, "booqa@example.com")
	require.ErrorIs(t, err, sql.ErrNoRows)
}

func TestSyncEventReusesByDate(t *testing.T) {
	s := setup(t)
	ctx := context.Background()
	date := time.Date(2025, 10, 17, 0, 0, 0, 0, timezone.Location)

	action, created, err := s.SyncEvent(ctx, s.qry, date, "Friday Fright Night", false)
	require.NoError(t, err)
	require.Equal(t, ActionCreated, action)
	require.Equal(t, "2025-10-17", created.EventDate)
	require.Equal(t, "Friday Fright Night", created.EventName)

	action, reused, err := s.SyncEvent(ctx, s.qry, date, "friday fright night", false)
	require.NoError(t, err)
	require.Equal(t, ActionNone, action)
	require.Equal(t, created.ID, reused.ID)

	// close enough to be the same listing reworded
	action, fuzzy, err := s.SyncEvent(ctx, s.qry, date, "Friday Fright Nights", false)
	require.NoError(t, err)
	require.Equal(t, ActionNone, action)
	require.Equal(t, created.ID, fuzzy.ID)
}

func TestSyncEventDisambiguatesName(t *testing.T) {
	s := setup(t)
	ctx := context.Background()
	date := time.Date(2025, 10, 18, 0, 0, 0, 0, timezone.Location)

	_, _, err := s.SyncEvent(ctx, s.qry, date, "Main Haunt", false)
	require.NoError(t, err)

	action, event, err := s.SyncEvent(ctx, s.qry, date, "Midnight Maze", false)
	require.NoError(t, err)
	require.Equal(t, ActionCreated, action)
	require.Equal(t, "Midnight Maze — 2025-10-18", event.EventName)
}

func TestSyncEventBlankNameGetsDate(t *testing.T) {
	s := setup(t)
	ctx := context.Background()
	date := time.Date(2025, 10, 19, 0, 0, 0, 0, timezone.Location)

	action, event, err := s.SyncEvent(ctx, s.qry, date, "", false)
	require.NoError(t, err)
	require.Equal(t, ActionCreated, action)
	require.Equal(t, "Haunt Night — 2025-10-19", event.EventName)
}

func TestSyncGroupCaseInsensitive(t *testing.T) {
	s := setup(t)
	ctx := context.Background()

	action, created, err := s.SyncGroup(ctx, s.qry, "Makeup", 2, false)
	require.NoError(t, err)
	require.Equal(t, ActionCreated, action)
	require.Equal(t, float64(2), created.GroupPoints)

	action, reused, err := s.SyncGroup(ctx, s.qry, "MAKEUP", 5, false)
	require.NoError(t, err)
	require.Equal(t, ActionNone, action)
	require.Equal(t, created.ID, reused.ID)
	require.Equal(t, float64(2), reused.GroupPoints)
}

func testParticipation() record.Participation {
	start := time.Date(2025, 10, 17, 18, 0, 0, 0, timezone.Location)
	return record.Participation{
		Email:     "booqa@example.com",
		EventName: "Friday Fright Night",
		EventDate: time.Date(2025, 10, 17, 0, 0, 0, 0, timezone.Location),
		StartTime: start,
		EndTime:   start.Add(5 * time.Hour),
		Hours:     5,
		Points:    5,
		Task:      "Scare Actor",
		Confirmed: true,
	}
}

func TestSyncParticipationUpsert(t *testing.T) {
	s := setup(t)
	ctx := context.Background()

	_, user, err := s.SyncUser(ctx, s.qry, testVolunteer(), false)
	require.NoError(t, err)

	action, err := s.SyncParticipation(ctx, s.qry, testParticipation(), false)
	require.NoError(t, err)
	require.Equal(t, ActionCreated, action)

	p := testParticipation()
	p.Task = "Parking"
	action, err = s.SyncParticipation(ctx, s.qry, p, false)
	require.NoError(t, err)
	require.Equal(t, ActionUpdated, action)

	event, err := s.qry.GetEventByDateAndName(ctx, "2025-10-17", "Friday Fright Night")
	require.NoError(t, err)
	stored, err := s.qry.GetParticipationByUserAndEvent(ctx, user.ID, event.ID)
	require.NoError(t, err)
	require.Equal(t, "Parking", stored.Task)
	require.False(t, stored.Under18)
}

func TestSyncParticipationMinorFlags(t *testing.T) {
	s := setup(t)
	ctx := context.Background()
	today := timezone.Today()

	// dob comes from the stored user, flags reflect their age now,
	// not their age on the event day
	vol := testVolunteer()
	vol.Email = "kid@example.com"
	vol.DateOfBirth = today.AddDate(-15, 0, 0)
	_, user, err := s.SyncUser(ctx, s.qry, vol, false)
	require.NoError(t, err)

	p := testParticipation()
	p.Email = "kid@example.com"
	_, err = s.SyncParticipation(ctx, s.qry, p, false)
	require.NoError(t, err)

	event, err := s.qry.GetEventByDateAndName(ctx, "2025-10-17", "Friday Fright Night")
	require.NoError(t, err)
	stored, err := s.qry.GetParticipationByUserAndEvent(ctx, user.ID, event.ID)
	require.NoError(t, err)
	require.True(t, stored.Under16)
	require.True(t, stored.Under18)

	teen := testVolunteer()
	teen.Email = "teen@example.com"
	teen.DateOfBirth = today.AddDate(-17, 0, 0)
	_, teenUser, err := s.SyncUser(ctx, s.qry, teen, false)
	require.NoError(t, err)

	p = testParticipation()
	p.Email = "teen@example.com"
	_, err = s.SyncParticipation(ctx, s.qry, p, false)
	require.NoError(t, err)

	stored, err = s.qry.GetParticipationByUserAndEvent(ctx, teenUser.ID, event.ID)
	require.NoError(t, err)
	require.False(t, stored.Under16)
	require.True(t, stored.Under18)
}

func TestSyncParticipationTwoSlotsSameEvent(t *testing.T) {
	s := setup(t)
	ctx := context.Background()

	_, _, err := s.SyncUser(ctx, s.qry, testVolunteer(), false)
	require.NoError(t, err)

	first := testParticipation()
	first.SourceSignupID = "sig-1"
	action, err := s.SyncParticipation(ctx, s.qry, first, false)
	require.NoError(t, err)
	require.Equal(t, ActionCreated, action)

	// a second slot on the same night gets its own row
	second := testParticipation()
	second.SourceSignupID = "sig-2"
	second.Task = "Parking"
	action, err = s.SyncParticipation(ctx, s.qry, second, false)
	require.NoError(t, err)
	require.Equal(t, ActionCreated, action)

	a, err := s.qry.GetParticipationBySourceSignupID(ctx, "sig-1")
	require.NoError(t, err)
	b, err := s.qry.GetParticipationBySourceSignupID(ctx, "sig-2")
	require.NoError(t, err)
	require.NotEqual(t, a.ID, b.ID)
	require.Equal(t, a.EventID, b.EventID)
	require.Equal(t, "Parking", b.Task)
}

func TestSyncParticipationSignupIDKey(t *testing.T) {
	s := setup(t)
	ctx := context.Background()

	_, _, err := s.SyncUser(ctx, s.qry, testVolunteer(), false)
	require.NoError(t, err)

	p := testParticipation()
	p.SourceSignupID = "sig-100"
	action, err := s.SyncParticipation(ctx, s.qry, p, false)
	require.NoError(t, err)
	require.Equal(t, ActionCreated, action)

	p.Points = 10
	action, err = s.SyncParticipation(ctx, s.qry, p, false)
	require.NoError(t, err)
	require.Equal(t, ActionUpdated, action)

	stored, err := s.qry.GetParticipationBySourceSignupID(ctx, "sig-100")
	require.NoError(t, err)
	require.Equal(t, float64(10), stored.Points)
}

func TestSyncParticipationUnknownUser(t *testing.T) {
	s := setup(t)
	ctx := context.Background()

	_, err := s.SyncParticipation(ctx, s.qry, testParticipation(), false)
	require.Error(t, err)
}

func TestSyncTicketSaleAutoCreatesEvent(t *testing.T) {
	s := setup(t)
	ctx := context.Background()

	rec := TicketSaleRecord{
		EventDate:   time.Date(2025, 10, 24, 0, 0, 0, 0, timezone.Location),
		EventName:   "Friday Fright Night",
		Purchased:   412,
		Remaining:   88,
		EventTimeID: 99001,
	}
	action, err := s.SyncTicketSale(ctx, s.qry, rec, false)
	require.NoError(t, err)
	require.Equal(t, ActionCreated, action)

	// the portal reuses one listing name all season, so an event
	// created from a sales row always carries its date
	event, err := s.qry.GetEventByDateAndName(ctx, "2025-10-24", "Friday Fright Night — 2025-10-24")
	require.NoError(t, err)

	sale, err := s.qry.GetTicketSaleBySourceEventTimeID(ctx, 99001)
	require.NoError(t, err)
	require.Equal(t, event.ID, sale.EventID)
	require.Equal(t, int64(412), sale.TicketsPurchased)

	// zero times land on the bounds of the event's day
	require.True(t, sale.StartTime.Valid)
	require.True(t, sale.EndTime.Valid)
	start := time.Unix(sale.StartTime.Int64, 0).In(timezone.Location)
	end := time.Unix(sale.EndTime.Int64, 0).In(timezone.Location)
	require.Equal(t, "00:00:00", start.Format("15:04:05"))
	require.Equal(t, "23:59:59", end.Format("15:04:05"))
}

func TestSyncTicketSaleUpdatesByTimeID(t *testing.T) {
	s := setup(t)
	ctx := context.Background()

	rec := TicketSaleRecord{
		EventDate:   time.Date(2025, 10, 24, 0, 0, 0, 0, timezone.Location),
		EventName:   "Friday Fright Night",
		Purchased:   412,
		Remaining:   88,
		EventTimeID: 99001,
	}
	_, err := s.SyncTicketSale(ctx, s.qry, rec, false)
	require.NoError(t, err)

	rec.Purchased = 450
	rec.Remaining = 50
	action, err := s.SyncTicketSale(ctx, s.qry, rec, false)
	require.NoError(t, err)
	require.Equal(t, ActionUpdated, action)

	sale, err := s.qry.GetTicketSaleBySourceEventTimeID(ctx, 99001)
	require.NoError(t, err)
	require.Equal(t, int64(450), sale.TicketsPurchased)
}

func TestClearKeepsListedUsers(t *testing.T) {
	s := setup(t)
	ctx := context.Background()

	_, _, err := s.SyncUser(ctx, s.qry, testVolunteer(), false)
	require.NoError(t, err)
	admin := testVolunteer()
	admin.Email = "admin@example.com"
	_, _, err = s.SyncUser(ctx, s.qry, admin, false)
	require.NoError(t, err)
	_, err = s.SyncParticipation(ctx, s.qry, testParticipation(), false)
	require.NoError(t, err)

	counts, err := s.Clear(ctx, ClearOptions{KeepEmails: []string{"admin@example.com"}})
	require.NoError(t, err)

	byTable := map[string]int64{}
	for _, c := range counts {
		byTable[c.Table] = c.Rows
	}
	require.Equal(t, int64(1), byTable["participations"])
	require.Equal(t, int64(1), byTable["events"])
	require.Equal(t, int64(1), byTable["users"])

	_, err = s.qry.GetUserByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	_, err = s.qry.GetUserByEmail(ctx, "booqa@example.com")
	require.ErrorIs(t, err, sql.ErrNoRows)
}

func TestClearDryRunCountsOnly(t *testing.T) {
	s := setup(t)
	ctx := context.Background()

	_, _, err := s.SyncUser(ctx, s.qry, testVolunteer(), false)
	require.NoError(t, err)

	counts, err := s.Clear(ctx, ClearOptions{DryRun: true})
	require.NoError(t, err)
	byTable := map[string]int64{}
	for _, c := range counts {
		byTable[c.Table] = c.Rows
	}
	require.Equal(t, int64(1), byTable["users"])

	_, err = s.qry.GetUserByEmail(ctx, "booqa@example.com")
	require.NoError(t, err)
}
