// Package hauntops is the store behind the volunteer and ticketing
// sync jobs. Every entity is keyed by a natural key (email, event
// date, group name) so repeated runs converge instead of piling up
// duplicates.
package hauntops

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"hauntops-backend/etl/normalize"
	"hauntops-backend/etl/record"
	"hauntops-backend/lib/timezone"
	"hauntops-backend/services/hauntops/db"

	"github.com/antzucaro/matchr"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/hauntops")

// minimum Jaro-Winkler similarity before two event names on the
// same date are treated as the same event
const eventNameSimilarity = 0.93

type Action int

const (
	ActionNone Action = iota
	ActionCreated
	ActionUpdated
)

func (a Action) String() string {
	switch a {
	case ActionCreated:
		return "created"
	case ActionUpdated:
		return "updated"
	}
	return "none"
}

type Service struct {
	db  *sql.DB
	qry *db.Queries
}

func NewService(database *sql.DB) Service {
	return Service{
		db:  database,
		qry: db.New(database),
	}
}

// Init applies the embedded schema. Safe to call on every startup,
// everything in it is IF NOT EXISTS.
func (s Service) Init(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, db.Schema)
	return err
}

func nullUnix(t time.Time) sql.NullInt64 {
	if t.IsZero() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.Unix(), Valid: true}
}

func defaulted(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func userParams(vol record.Volunteer) db.UpsertUserParams {
	return db.UpsertUserParams{
		Email:           vol.Email,
		Username:        vol.Email,
		FirstName:       vol.FirstName,
		LastName:        vol.LastName,
		DateOfBirth:     normalize.FormatBirthDate(vol.DateOfBirth),
		Company:         vol.Company,
		Address:         vol.Address,
		City:            vol.City,
		State:           defaulted(vol.State, "CA"),
		Zipcode:         vol.Zipcode,
		Country:         defaulted(vol.Country, "USA"),
		Phone1:          defaulted(vol.Phone1, "unknown"),
		Phone2:          vol.Phone2,
		EmailBlocked:    vol.EmailBlocked,
		IceName:         vol.IceName,
		IceRelationship: vol.IceRelationship,
		IcePhone:        vol.IcePhone,
		ReferralSource:  vol.ReferralSource,
		TshirtSize:      defaulted(vol.TshirtSize, "Unknown"),
		Allergies:       defaulted(vol.Allergies, "none"),
		WearMask:        vol.WearMask,
		Waiver:          vol.Waiver,
		HauntExperience: defaulted(vol.HauntExperience, "none"),
		PointTotal:      vol.PointTotal,
		SafetyClass:     vol.SafetyClass,
		CostumeSize:     defaulted(vol.CostumeSize, "Unknown"),
		StartDate:       nullUnix(vol.StartDate),
		LastActivity:    nullUnix(vol.LastActivity),
	}
}

// SyncUser upserts a volunteer keyed by normalized email. Fields the
// feed leaves blank get non-null defaults so downstream exports never
// see a null. On update every supplied field overwrites the stored
// one, but blank start/last-activity timestamps keep their stored
// values.
func (s Service) SyncUser(ctx context.Context, qry *db.Queries, vol record.Volunteer, dryRun bool) (Action, db.User, error) {
	ctx, span := tracer.Start(ctx, "SyncUser")
	defer span.End()

	params := userParams(vol)

	existing, err := qry.GetUserByEmail(ctx, vol.Email)
	if errors.Is(err, sql.ErrNoRows) {
		if dryRun {
			return ActionCreated, db.User{}, nil
		}
		id, err := qry.CreateUser(ctx, params)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return ActionNone, db.User{}, err
		}
		user, err := qry.GetUserByID(ctx, id)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return ActionNone, db.User{}, err
		}
		return ActionCreated, user, nil
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return ActionNone, db.User{}, err
	}

	if !params.StartDate.Valid {
		params.StartDate = existing.StartDate
	}
	if !params.LastActivity.Valid {
		params.LastActivity = existing.LastActivity
	}
	if dryRun {
		return ActionUpdated, existing, nil
	}
	if err := qry.UpdateUser(ctx, existing.ID, params); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return ActionNone, db.User{}, err
	}
	user, err := qry.GetUserByID(ctx, existing.ID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return ActionNone, db.User{}, err
	}
	return ActionUpdated, user, nil
}

func foldName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// matchEvent picks the event on a date that best fits a source name.
// Exact fold match wins, then substring containment, then a
// Jaro-Winkler pass for the portal's habit of lightly rewording
// names between seasons. With no name at all the first event on the
// date is taken.
func matchEvent(events []db.Event, name string) (db.Event, bool) {
	if len(events) == 0 {
		return db.Event{}, false
	}
	folded := foldName(name)
	if folded == "" {
		return events[0], true
	}
	for _, event := range events {
		if foldName(event.EventName) == folded {
			return event, true
		}
	}
	for _, event := range events {
		existing := foldName(event.EventName)
		if strings.Contains(existing, folded) || strings.Contains(folded, existing) {
			return event, true
		}
	}
	for _, event := range events {
		if matchr.JaroWinkler(foldName(event.EventName), folded, true) >= eventNameSimilarity {
			return event, true
		}
	}
	return db.Event{}, false
}

// SyncEvent finds or creates the event for a calendar date. A source
// name that matches an existing event on the date reuses it. When a
// row has to be created and the source name is blank, or a
// different-named event already owns the date, the new name gets the
// ISO date appended so it stays recognizable in exports.
func (s Service) SyncEvent(ctx context.Context, qry *db.Queries, date time.Time, name string, dryRun bool) (Action, db.Event, error) {
	return s.syncEvent(ctx, qry, date, name, dryRun, false)
}

func (s Service) syncEvent(ctx context.Context, qry *db.Queries, date time.Time, name string, dryRun, suffixAlways bool) (Action, db.Event, error) {
	ctx, span := tracer.Start(ctx, "SyncEvent")
	defer span.End()

	dateStr := date.Format("2006-01-02")
	events, err := qry.ListEventsByDate(ctx, dateStr)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return ActionNone, db.Event{}, err
	}
	if event, ok := matchEvent(events, name); ok {
		return ActionNone, event, nil
	}

	createName := strings.TrimSpace(name)
	if suffixAlways || createName == "" || len(events) > 0 {
		createName = fmt.Sprintf("%s — %s", defaulted(createName, "Haunt Night"), dateStr)
	}
	if dryRun {
		return ActionCreated, db.Event{EventDate: dateStr, EventName: createName, EventStatus: "TBD"}, nil
	}
	id, err := qry.CreateEvent(ctx, db.CreateEventParams{
		EventDate:   dateStr,
		EventName:   createName,
		EventStatus: "TBD",
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return ActionNone, db.Event{}, err
	}
	return ActionCreated, db.Event{ID: id, EventDate: dateStr, EventName: createName, EventStatus: "TBD"}, nil
}

// SyncGroup finds or creates a group by case-insensitive name. The
// point value is only written on creation, a later sync with the
// same name never silently reprices an existing group.
func (s Service) SyncGroup(ctx context.Context, qry *db.Queries, name string, points float64, dryRun bool) (Action, db.Group, error) {
	ctx, span := tracer.Start(ctx, "SyncGroup")
	defer span.End()

	existing, err := qry.GetGroupByName(ctx, strings.TrimSpace(name))
	if err == nil {
		return ActionNone, existing, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return ActionNone, db.Group{}, err
	}

	if points == 0 {
		points = 1
	}
	if dryRun {
		return ActionCreated, db.Group{GroupName: strings.TrimSpace(name), GroupPoints: points}, nil
	}
	id, err := qry.CreateGroup(ctx, strings.TrimSpace(name), points)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return ActionNone, db.Group{}, err
	}
	return ActionCreated, db.Group{ID: id, GroupName: strings.TrimSpace(name), GroupPoints: points}, nil
}

func participationParams(p record.Participation, user db.User, event db.Event) db.UpsertParticipationParams {
	dob := p.DateOfBirth
	if dob.IsZero() {
		if stored, err := normalize.BirthDate(user.DateOfBirth); err == nil {
			dob = stored
		}
	}
	params := db.UpsertParticipationParams{
		UserID:      user.ID,
		EventID:     event.ID,
		EventName:   event.EventName,
		EventDate:   event.EventDate,
		StartTime:   nullUnix(p.StartTime),
		EndTime:     nullUnix(p.EndTime),
		Hours:       p.Hours,
		Points:      p.Points,
		Task:        p.Task,
		SlotColumn:  p.SlotColumn,
		SlotRow:     p.SlotRow,
		FullAddress: p.FullAddress,
		SignedIn:    p.SignedIn,
		Confirmed:   p.Confirmed,
		Waitlist:    p.Waitlist,
		Conflict:    p.Conflict,
	}
	// flags reflect the volunteer's age as of the sync, matching the
	// roster exports which are always about the current season
	if !dob.IsZero() {
		today := timezone.Today()
		params.Under16 = normalize.Under16(dob, today)
		params.Under18 = normalize.Under18(dob, today)
	}
	if p.SourceSignupID != "" {
		params.SourceSignupID = sql.NullString{String: p.SourceSignupID, Valid: true}
	}
	return params
}

// SyncParticipation upserts one signup. The signup id from the
// source is the preferred key since a volunteer can hold two slots
// on the same date, (user, event) is the fallback. Every field is
// replaced wholesale, the source is authoritative for its own rows.
// The volunteer must already exist, callers sync users first.
func (s Service) SyncParticipation(ctx context.Context, qry *db.Queries, p record.Participation, dryRun bool) (Action, error) {
	ctx, span := tracer.Start(ctx, "SyncParticipation")
	defer span.End()

	user, err := qry.GetUserByEmail(ctx, p.Email)
	if errors.Is(err, sql.ErrNoRows) {
		if dryRun {
			return ActionCreated, nil
		}
		err = fmt.Errorf("no volunteer with email %q", p.Email)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return ActionNone, err
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return ActionNone, err
	}

	_, event, err := s.SyncEvent(ctx, qry, p.EventDate, p.EventName, dryRun)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return ActionNone, err
	}

	params := participationParams(p, user, event)

	var existing db.Participation
	if p.SourceSignupID != "" {
		existing, err = qry.GetParticipationBySourceSignupID(ctx, p.SourceSignupID)
	} else {
		existing, err = qry.GetParticipationByUserAndEvent(ctx, user.ID, event.ID)
	}
	if errors.Is(err, sql.ErrNoRows) {
		if dryRun {
			return ActionCreated, nil
		}
		if _, err := qry.CreateParticipation(ctx, params); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return ActionNone, err
		}
		return ActionCreated, nil
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return ActionNone, err
	}

	if dryRun {
		return ActionUpdated, nil
	}
	if err := qry.UpdateParticipation(ctx, existing.ID, params); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return ActionNone, err
	}
	return ActionUpdated, nil
}

// TicketSaleRecord is one scraped occurrence of ticket sales, either
// from the upcoming events table or the sales report. Zero times
// fall back to the start and end of the event's day.
type TicketSaleRecord struct {
	EventDate   time.Time
	EventName   string
	StartTime   time.Time
	EndTime     time.Time
	Purchased   int
	Remaining   int
	Revenue     string
	Notes       string
	EventTimeID int64
}

// SyncTicketSale upserts sales counts for one event occurrence. The
// portal's event-time id is the preferred key, (event, date, name)
// the fallback. An occurrence on a date with no event row creates
// one on the spot, named with the ISO date appended since the portal
// reuses listing names across the whole season.
func (s Service) SyncTicketSale(ctx context.Context, qry *db.Queries, rec TicketSaleRecord, dryRun bool) (Action, error) {
	ctx, span := tracer.Start(ctx, "SyncTicketSale")
	defer span.End()

	_, event, err := s.syncEvent(ctx, qry, rec.EventDate, rec.EventName, dryRun, true)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return ActionNone, err
	}

	start := rec.StartTime
	if start.IsZero() {
		start = time.Date(rec.EventDate.Year(), rec.EventDate.Month(), rec.EventDate.Day(), 0, 0, 0, 0, rec.EventDate.Location())
	}
	end := rec.EndTime
	if end.IsZero() {
		end = time.Date(rec.EventDate.Year(), rec.EventDate.Month(), rec.EventDate.Day(), 23, 59, 59, 0, rec.EventDate.Location())
	}

	params := db.UpsertTicketSaleParams{
		EventID:          event.ID,
		EventName:        event.EventName,
		EventDate:        event.EventDate,
		StartTime:        nullUnix(start),
		EndTime:          nullUnix(end),
		TicketsPurchased: int64(rec.Purchased),
		TicketsRemaining: int64(rec.Remaining),
		Revenue:          rec.Revenue,
		Notes:            rec.Notes,
	}
	if rec.EventTimeID != 0 {
		params.SourceEventTimeID = sql.NullInt64{Int64: rec.EventTimeID, Valid: true}
	}

	var existing db.TicketSale
	if rec.EventTimeID != 0 {
		existing, err = qry.GetTicketSaleBySourceEventTimeID(ctx, rec.EventTimeID)
	} else {
		existing, err = qry.GetTicketSaleByEventDateAndName(ctx, event.ID, event.EventDate, event.EventName)
	}
	if errors.Is(err, sql.ErrNoRows) {
		if dryRun {
			return ActionCreated, nil
		}
		if _, err := qry.CreateTicketSale(ctx, params); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return ActionNone, err
		}
		return ActionCreated, nil
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return ActionNone, err
	}

	if dryRun {
		return ActionUpdated, nil
	}
	if err := qry.UpdateTicketSale(ctx, existing.ID, params); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return ActionNone, err
	}
	return ActionUpdated, nil
}
