package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

const userColumns = `id, email, username, first_name, last_name, date_of_birth, company,
	address, city, state, zipcode, country, phone1, phone2, email_blocked,
	ice_name, ice_relationship, ice_phone, referral_source, tshirt_size,
	allergies, wear_mask, waiver, haunt_experience, point_total, safety_class,
	costume_size, start_date, last_activity`

func scanUser(row *sql.Row) (User, error) {
	var u User
	err := row.Scan(
		&u.ID, &u.Email, &u.Username, &u.FirstName, &u.LastName, &u.DateOfBirth,
		&u.Company, &u.Address, &u.City, &u.State, &u.Zipcode, &u.Country,
		&u.Phone1, &u.Phone2, &u.EmailBlocked, &u.IceName, &u.IceRelationship,
		&u.IcePhone, &u.ReferralSource, &u.TshirtSize, &u.Allergies, &u.WearMask,
		&u.Waiver, &u.HauntExperience, &u.PointTotal, &u.SafetyClass,
		&u.CostumeSize, &u.StartDate, &u.LastActivity,
	)
	return u, err
}

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ?`
	return scanUser(q.db.QueryRowContext(ctx, query, email))
}

func (q *Queries) GetUserByID(ctx context.Context, id int64) (User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	return scanUser(q.db.QueryRowContext(ctx, query, id))
}

type UpsertUserParams struct {
	Email           string
	Username        string
	FirstName       string
	LastName        string
	DateOfBirth     string
	Company         string
	Address         string
	City            string
	State           string
	Zipcode         string
	Country         string
	Phone1          string
	Phone2          string
	EmailBlocked    bool
	IceName         string
	IceRelationship string
	IcePhone        string
	ReferralSource  string
	TshirtSize      string
	Allergies       string
	WearMask        bool
	Waiver          bool
	HauntExperience string
	PointTotal      float64
	SafetyClass     bool
	CostumeSize     string
	StartDate       sql.NullInt64
	LastActivity    sql.NullInt64
}

func (q *Queries) CreateUser(ctx context.Context, arg UpsertUserParams) (int64, error) {
	query := `INSERT INTO users (
		email, username, first_name, last_name, date_of_birth, company,
		address, city, state, zipcode, country, phone1, phone2, email_blocked,
		ice_name, ice_relationship, ice_phone, referral_source, tshirt_size,
		allergies, wear_mask, waiver, haunt_experience, point_total,
		safety_class, costume_size, start_date, last_activity
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := q.db.ExecContext(ctx, query,
		arg.Email, arg.Username, arg.FirstName, arg.LastName, arg.DateOfBirth,
		arg.Company, arg.Address, arg.City, arg.State, arg.Zipcode, arg.Country,
		arg.Phone1, arg.Phone2, arg.EmailBlocked, arg.IceName,
		arg.IceRelationship, arg.IcePhone, arg.ReferralSource, arg.TshirtSize,
		arg.Allergies, arg.WearMask, arg.Waiver, arg.HauntExperience,
		arg.PointTotal, arg.SafetyClass, arg.CostumeSize, arg.StartDate,
		arg.LastActivity,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (q *Queries) UpdateUser(ctx context.Context, id int64, arg UpsertUserParams) error {
	query := `UPDATE users SET
		email = ?, username = ?, first_name = ?, last_name = ?,
		date_of_birth = ?, company = ?, address = ?, city = ?, state = ?,
		zipcode = ?, country = ?, phone1 = ?, phone2 = ?, email_blocked = ?,
		ice_name = ?, ice_relationship = ?, ice_phone = ?, referral_source = ?,
		tshirt_size = ?, allergies = ?, wear_mask = ?, waiver = ?,
		haunt_experience = ?, point_total = ?, safety_class = ?,
		costume_size = ?, start_date = ?, last_activity = ?
	WHERE id = ?`
	_, err := q.db.ExecContext(ctx, query,
		arg.Email, arg.Username, arg.FirstName, arg.LastName, arg.DateOfBirth,
		arg.Company, arg.Address, arg.City, arg.State, arg.Zipcode, arg.Country,
		arg.Phone1, arg.Phone2, arg.EmailBlocked, arg.IceName,
		arg.IceRelationship, arg.IcePhone, arg.ReferralSource, arg.TshirtSize,
		arg.Allergies, arg.WearMask, arg.Waiver, arg.HauntExperience,
		arg.PointTotal, arg.SafetyClass, arg.CostumeSize, arg.StartDate,
		arg.LastActivity, id,
	)
	return err
}

func (q *Queries) ListUsers(ctx context.Context) ([]User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY last_name, first_name`
	rows, err := q.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var users []User
	for rows.Next() {
		var u User
		err := rows.Scan(
			&u.ID, &u.Email, &u.Username, &u.FirstName, &u.LastName,
			&u.DateOfBirth, &u.Company, &u.Address, &u.City, &u.State,
			&u.Zipcode, &u.Country, &u.Phone1, &u.Phone2, &u.EmailBlocked,
			&u.IceName, &u.IceRelationship, &u.IcePhone, &u.ReferralSource,
			&u.TshirtSize, &u.Allergies, &u.WearMask, &u.Waiver,
			&u.HauntExperience, &u.PointTotal, &u.SafetyClass, &u.CostumeSize,
			&u.StartDate, &u.LastActivity,
		)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (q *Queries) DeleteUsersExceptEmails(ctx context.Context, emails []string) (int64, error) {
	if len(emails) == 0 {
		res, err := q.db.ExecContext(ctx, `DELETE FROM users`)
		if err != nil {
			return 0, err
		}
		return res.RowsAffected()
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(emails)), ", ")
	query := fmt.Sprintf(`DELETE FROM users WHERE email NOT IN (%s)`, placeholders)
	args := make([]interface{}, len(emails))
	for i, email := range emails {
		args[i] = email
	}
	res, err := q.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (q *Queries) CountUsersExceptEmails(ctx context.Context, emails []string) (int64, error) {
	query := `SELECT COUNT(*) FROM users`
	args := []interface{}{}
	if len(emails) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(emails)), ", ")
		query = fmt.Sprintf(`SELECT COUNT(*) FROM users WHERE email NOT IN (%s)`, placeholders)
		for _, email := range emails {
			args = append(args, email)
		}
	}
	var count int64
	err := q.db.QueryRowContext(ctx, query, args...).Scan(&count)
	return count, err
}

func (q *Queries) GetEventByDateAndName(ctx context.Context, date, name string) (Event, error) {
	query := `SELECT id, event_date, event_name, event_status FROM events
		WHERE event_date = ? AND event_name = ?`
	var e Event
	err := q.db.QueryRowContext(ctx, query, date, name).
		Scan(&e.ID, &e.EventDate, &e.EventName, &e.EventStatus)
	return e, err
}

func (q *Queries) ListEventsByDate(ctx context.Context, date string) ([]Event, error) {
	query := `SELECT id, event_date, event_name, event_status FROM events
		WHERE event_date = ? ORDER BY id`
	return q.listEvents(ctx, query, date)
}

func (q *Queries) ListEvents(ctx context.Context) ([]Event, error) {
	query := `SELECT id, event_date, event_name, event_status FROM events
		ORDER BY event_date, event_name`
	return q.listEvents(ctx, query)
}

func (q *Queries) listEvents(ctx context.Context, query string, args ...interface{}) ([]Event, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.EventDate, &e.EventName, &e.EventStatus); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

type CreateEventParams struct {
	EventDate   string
	EventName   string
	EventStatus string
}

func (q *Queries) CreateEvent(ctx context.Context, arg CreateEventParams) (int64, error) {
	query := `INSERT INTO events (event_date, event_name, event_status) VALUES (?, ?, ?)`
	res, err := q.db.ExecContext(ctx, query, arg.EventDate, arg.EventName, arg.EventStatus)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (q *Queries) GetGroupByName(ctx context.Context, name string) (Group, error) {
	query := `SELECT id, group_name, group_points FROM groups WHERE group_name = ?`
	var g Group
	err := q.db.QueryRowContext(ctx, query, name).
		Scan(&g.ID, &g.GroupName, &g.GroupPoints)
	return g, err
}

func (q *Queries) CreateGroup(ctx context.Context, name string, points float64) (int64, error) {
	query := `INSERT INTO groups (group_name, group_points) VALUES (?, ?)`
	res, err := q.db.ExecContext(ctx, query, name, points)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (q *Queries) ListGroups(ctx context.Context) ([]Group, error) {
	query := `SELECT id, group_name, group_points FROM groups ORDER BY group_name`
	rows, err := q.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var groups []Group
	for rows.Next() {
		var g Group
		if err := rows.Scan(&g.ID, &g.GroupName, &g.GroupPoints); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func (q *Queries) AddGroupMember(ctx context.Context, userId, groupId int64) error {
	query := `INSERT OR IGNORE INTO group_members (user_id, group_id) VALUES (?, ?)`
	_, err := q.db.ExecContext(ctx, query, userId, groupId)
	return err
}

func (q *Queries) ListGroupMemberEmails(ctx context.Context, groupId int64) ([]string, error) {
	query := `SELECT users.email FROM group_members
		INNER JOIN users ON users.id = group_members.user_id
		WHERE group_members.group_id = ?
		ORDER BY users.email`
	rows, err := q.db.QueryContext(ctx, query, groupId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var emails []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, err
		}
		emails = append(emails, email)
	}
	return emails, rows.Err()
}

const participationColumns = `id, user_id, event_id, event_name, event_date,
	start_time, end_time, hours, points, task, slot_column, slot_row,
	full_address, under_16, under_18, signed_in, confirmed, waitlist,
	conflict, source_signup_id`

func scanParticipation(row *sql.Row) (Participation, error) {
	var p Participation
	err := row.Scan(
		&p.ID, &p.UserID, &p.EventID, &p.EventName, &p.EventDate, &p.StartTime,
		&p.EndTime, &p.Hours, &p.Points, &p.Task, &p.SlotColumn, &p.SlotRow,
		&p.FullAddress, &p.Under16, &p.Under18, &p.SignedIn, &p.Confirmed,
		&p.Waitlist, &p.Conflict, &p.SourceSignupID,
	)
	return p, err
}

func (q *Queries) GetParticipationBySourceSignupID(ctx context.Context, signupId string) (Participation, error) {
	query := `SELECT ` + participationColumns + ` FROM participations
		WHERE source_signup_id = ?`
	return scanParticipation(q.db.QueryRowContext(ctx, query, signupId))
}

func (q *Queries) GetParticipationByUserAndEvent(ctx context.Context, userId, eventId int64) (Participation, error) {
	query := `SELECT ` + participationColumns + ` FROM participations
		WHERE user_id = ? AND event_id = ?
		AND (source_signup_id IS NULL OR source_signup_id = '')`
	return scanParticipation(q.db.QueryRowContext(ctx, query, userId, eventId))
}

type UpsertParticipationParams struct {
	UserID         int64
	EventID        int64
	EventName      string
	EventDate      string
	StartTime      sql.NullInt64
	EndTime        sql.NullInt64
	Hours          float64
	Points         float64
	Task           string
	SlotColumn     string
	SlotRow        string
	FullAddress    string
	Under16        bool
	Under18        bool
	SignedIn       bool
	Confirmed      bool
	Waitlist       bool
	Conflict       bool
	SourceSignupID sql.NullString
}

func (q *Queries) CreateParticipation(ctx context.Context, arg UpsertParticipationParams) (int64, error) {
	query := `INSERT INTO participations (
		user_id, event_id, event_name, event_date, start_time, end_time,
		hours, points, task, slot_column, slot_row, full_address, under_16,
		under_18, signed_in, confirmed, waitlist, conflict, source_signup_id
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := q.db.ExecContext(ctx, query,
		arg.UserID, arg.EventID, arg.EventName, arg.EventDate, arg.StartTime,
		arg.EndTime, arg.Hours, arg.Points, arg.Task, arg.SlotColumn,
		arg.SlotRow, arg.FullAddress, arg.Under16, arg.Under18, arg.SignedIn,
		arg.Confirmed, arg.Waitlist, arg.Conflict, arg.SourceSignupID,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (q *Queries) UpdateParticipation(ctx context.Context, id int64, arg UpsertParticipationParams) error {
	query := `UPDATE participations SET
		user_id = ?, event_id = ?, event_name = ?, event_date = ?,
		start_time = ?, end_time = ?, hours = ?, points = ?, task = ?,
		slot_column = ?, slot_row = ?, full_address = ?, under_16 = ?,
		under_18 = ?, signed_in = ?, confirmed = ?, waitlist = ?,
		conflict = ?, source_signup_id = ?
	WHERE id = ?`
	_, err := q.db.ExecContext(ctx, query,
		arg.UserID, arg.EventID, arg.EventName, arg.EventDate, arg.StartTime,
		arg.EndTime, arg.Hours, arg.Points, arg.Task, arg.SlotColumn,
		arg.SlotRow, arg.FullAddress, arg.Under16, arg.Under18, arg.SignedIn,
		arg.Confirmed, arg.Waitlist, arg.Conflict, arg.SourceSignupID, id,
	)
	return err
}

func (q *Queries) ListParticipationsByEvent(ctx context.Context, eventId int64) ([]Participation, error) {
	query := `SELECT ` + participationColumns + ` FROM participations
		WHERE event_id = ? ORDER BY id`
	rows, err := q.db.QueryContext(ctx, query, eventId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var participations []Participation
	for rows.Next() {
		var p Participation
		err := rows.Scan(
			&p.ID, &p.UserID, &p.EventID, &p.EventName, &p.EventDate,
			&p.StartTime, &p.EndTime, &p.Hours, &p.Points, &p.Task,
			&p.SlotColumn, &p.SlotRow, &p.FullAddress, &p.Under16, &p.Under18,
			&p.SignedIn, &p.Confirmed, &p.Waitlist, &p.Conflict,
			&p.SourceSignupID,
		)
		if err != nil {
			return nil, err
		}
		participations = append(participations, p)
	}
	return participations, rows.Err()
}

const ticketSaleColumns = `id, event_id, event_name, event_date, start_time,
	end_time, tickets_purchased, tickets_remaining, revenue, notes,
	source_event_time_id`

func scanTicketSale(row *sql.Row) (TicketSale, error) {
	var t TicketSale
	err := row.Scan(
		&t.ID, &t.EventID, &t.EventName, &t.EventDate, &t.StartTime,
		&t.EndTime, &t.TicketsPurchased, &t.TicketsRemaining, &t.Revenue,
		&t.Notes, &t.SourceEventTimeID,
	)
	return t, err
}

func (q *Queries) GetTicketSaleBySourceEventTimeID(ctx context.Context, eventTimeId int64) (TicketSale, error) {
	query := `SELECT ` + ticketSaleColumns + ` FROM ticket_sales
		WHERE source_event_time_id = ?`
	return scanTicketSale(q.db.QueryRowContext(ctx, query, eventTimeId))
}

func (q *Queries) GetTicketSaleByEventDateAndName(ctx context.Context, eventId int64, date, name string) (TicketSale, error) {
	query := `SELECT ` + ticketSaleColumns + ` FROM ticket_sales
		WHERE event_id = ? AND event_date = ? AND event_name = ?`
	return scanTicketSale(q.db.QueryRowContext(ctx, query, eventId, date, name))
}

type UpsertTicketSaleParams struct {
	EventID           int64
	EventName         string
	EventDate         string
	StartTime         sql.NullInt64
	EndTime           sql.NullInt64
	TicketsPurchased  int64
	TicketsRemaining  int64
	Revenue           string
	Notes             string
	SourceEventTimeID sql.NullInt64
}

func (q *Queries) CreateTicketSale(ctx context.Context, arg UpsertTicketSaleParams) (int64, error) {
	query := `INSERT INTO ticket_sales (
		event_id, event_name, event_date, start_time, end_time,
		tickets_purchased, tickets_remaining, revenue, notes,
		source_event_time_id
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := q.db.ExecContext(ctx, query,
		arg.EventID, arg.EventName, arg.EventDate, arg.StartTime, arg.EndTime,
		arg.TicketsPurchased, arg.TicketsRemaining, arg.Revenue, arg.Notes,
		arg.SourceEventTimeID,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (q *Queries) UpdateTicketSale(ctx context.Context, id int64, arg UpsertTicketSaleParams) error {
	query := `UPDATE ticket_sales SET
		event_id = ?, event_name = ?, event_date = ?, start_time = ?,
		end_time = ?, tickets_purchased = ?, tickets_remaining = ?,
		revenue = ?, notes = ?, source_event_time_id = ?
	WHERE id = ?`
	_, err := q.db.ExecContext(ctx, query,
		arg.EventID, arg.EventName, arg.EventDate, arg.StartTime, arg.EndTime,
		arg.TicketsPurchased, arg.TicketsRemaining, arg.Revenue, arg.Notes,
		arg.SourceEventTimeID, id,
	)
	return err
}

func (q *Queries) ListTicketSales(ctx context.Context) ([]TicketSale, error) {
	query := `SELECT ` + ticketSaleColumns + ` FROM ticket_sales
		ORDER BY event_date, event_name`
	rows, err := q.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var sales []TicketSale
	for rows.Next() {
		var t TicketSale
		err := rows.Scan(
			&t.ID, &t.EventID, &t.EventName, &t.EventDate, &t.StartTime,
			&t.EndTime, &t.TicketsPurchased, &t.TicketsRemaining, &t.Revenue,
			&t.Notes, &t.SourceEventTimeID,
		)
		if err != nil {
			return nil, err
		}
		sales = append(sales, t)
	}
	return sales, rows.Err()
}

func (q *Queries) CountRows(ctx context.Context, table string) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, table)).Scan(&count)
	return count, err
}

func (q *Queries) DeleteAllRows(ctx context.Context, table string) (int64, error) {
	res, err := q.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s`, table))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
