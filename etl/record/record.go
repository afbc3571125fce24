// Package record turns mapped rows into the typed records the
// store works with. Rows arrive as map[string]any straight out of
// fieldmap, with every value still in portal form.
package record

import (
	"fmt"
	"strings"
	"time"

	"hauntops-backend/etl/normalize"
)

// RequiredVolunteerFields must all be present and non-empty before
// a row is allowed anywhere near the store.
var RequiredVolunteerFields = []string{"email", "first_name", "last_name", "date_of_birth"}

// ValidationError reports every missing required field at once so
// a skipped row can be fixed in one pass.
type ValidationError struct {
	Missing []string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Missing, ", "))
}

type Volunteer struct {
	Email       string
	FirstName   string
	LastName    string
	DateOfBirth time.Time

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

	// comma separated group names, already flattened by fieldmap
	Groups string

	StartDate    time.Time
	LastActivity time.Time
}

// NormalizeEmail lowercases and trims, the canonical form every
// natural key lookup uses.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// VolunteerFromRow builds a typed volunteer from a mapped row.
// A row missing any required field comes back as a
// ValidationError naming all of them, never a panic.
func VolunteerFromRow(row map[string]any) (Volunteer, error) {
	var missing []string
	for _, field := range RequiredVolunteerFields {
		if normalize.String(row[field]) == "" {
			missing = append(missing, field)
		}
	}

	var dob time.Time
	if !contains(missing, "date_of_birth") {
		parsed, err := normalize.BirthDate(row["date_of_birth"])
		if err != nil {
			missing = append(missing, "date_of_birth")
		} else {
			dob = parsed
		}
	}

	if len(missing) > 0 {
		return Volunteer{}, ValidationError{Missing: missing}
	}

	v := Volunteer{
		Email:           NormalizeEmail(normalize.String(row["email"])),
		FirstName:       normalize.String(row["first_name"]),
		LastName:        normalize.String(row["last_name"]),
		DateOfBirth:     dob,
		Company:         normalize.String(row["company"]),
		Address:         normalize.String(row["address"]),
		City:            normalize.String(row["city"]),
		State:           normalize.String(row["state"]),
		Zipcode:         normalize.String(row["zipcode"]),
		Country:         normalize.String(row["country"]),
		Phone1:          normalize.String(row["phone1"]),
		Phone2:          normalize.String(row["phone2"]),
		EmailBlocked:    normalize.Bool(row["email_blocked"]),
		IceName:         normalize.String(row["ice_name"]),
		IceRelationship: normalize.String(row["ice_relationship"]),
		IcePhone:        normalize.String(row["ice_phone"]),
		ReferralSource:  normalize.String(row["referral_source"]),
		TshirtSize:      normalize.String(row["tshirt_size"]),
		Allergies:       normalize.String(row["allergies"]),
		WearMask:        normalize.Bool(row["wear_mask"]),
		Waiver:          normalize.Bool(row["waiver"]),
		HauntExperience: normalize.String(row["haunt_experience"]),
		PointTotal:      normalize.Float(row["points"], 0),
		SafetyClass:     normalize.Bool(row["safety_class"]),
		CostumeSize:     normalize.String(row["costume_size"]),
		Groups:          normalize.String(row["groups"]),
	}

	if start := normalize.String(row["start_date"]); start != "" {
		if t, err := normalize.LocalTimestamp(start); err == nil {
			v.StartDate = t
		}
	}
	if last := normalize.String(row["last_activity"]); last != "" {
		if t, err := normalize.LocalTimestamp(last); err == nil {
			v.LastActivity = t
		}
	}

	return v, nil
}

// GroupNames splits the flattened groups string back into
// individual trimmed names.
func (v Volunteer) GroupNames() []string {
	var names []string
	for _, name := range strings.Split(v.Groups, ",") {
		name = strings.TrimSpace(name)
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}

// Participation is one signup slot for a volunteer at an event.
type Participation struct {
	Email       string
	EventName   string
	EventDate   time.Time
	DateOfBirth time.Time
	StartTime   time.Time
	EndTime     time.Time
	Hours       float64
	Points      float64
	Task        string
	SlotColumn  string
	SlotRow     string
	FullAddress string
	SignedIn    bool
	Confirmed   bool
	Waitlist    bool
	Conflict    bool

	// the portal's per-occurrence signup id, when present it is
	// the natural key, otherwise (user, event) is
	SourceSignupID string
}

// ParticipationFromRow builds a typed signup from a mapped row.
// email and start_time are required here. date_of_birth may be
// blank, the store falls back to the volunteer's stored birth
// date to compute the minor flags.
func ParticipationFromRow(row map[string]any) (Participation, error) {
	var missing []string

	email := NormalizeEmail(normalize.String(row["email"]))
	if email == "" {
		missing = append(missing, "email")
	}

	var start time.Time
	startRaw := normalize.String(row["start_time"])
	if startRaw == "" {
		missing = append(missing, "start_time")
	} else {
		parsed, err := normalize.LocalTimestamp(startRaw)
		if err != nil {
			missing = append(missing, "start_time")
		} else {
			start = parsed
		}
	}

	if len(missing) > 0 {
		return Participation{}, ValidationError{Missing: missing}
	}

	p := Participation{
		Email:          email,
		EventName:      normalize.String(row["event_name"]),
		StartTime:      start,
		Hours:          normalize.Float(row["hours"], 0),
		Points:         normalize.Float(row["points"], 0),
		Task:           normalize.String(row["task"]),
		SlotColumn:     normalize.String(row["slot_column"]),
		SlotRow:        normalize.String(row["slot_row"]),
		FullAddress:    normalize.String(row["full_address"]),
		SignedIn:       normalize.Bool(row["signed_in"]),
		Confirmed:      normalize.Bool(row["confirmed"]),
		Waitlist:       normalize.Bool(row["waitlist"]),
		Conflict:       normalize.Bool(row["conflict"]),
		SourceSignupID: normalize.String(row["signup_id"]),
	}

	if end := normalize.String(row["end_time"]); end != "" {
		if t, err := normalize.LocalTimestamp(end); err == nil {
			p.EndTime = t
		}
	}
	if date := normalize.String(row["date"]); date != "" {
		if t, err := normalize.EventDate(date); err == nil {
			p.EventDate = t
		}
	}
	if p.EventDate.IsZero() {
		p.EventDate = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	}
	if dob := row["date_of_birth"]; normalize.String(dob) != "" {
		if t, err := normalize.BirthDate(dob); err == nil {
			p.DateOfBirth = t
		}
	}

	return p, nil
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
