package db

import "database/sql"

type User struct {
	ID              int64
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

type Event struct {
	ID          int64
	EventDate   string
	EventName   string
	EventStatus string
}

type Group struct {
	ID          int64
	GroupName   string
	GroupPoints float64
}

type Participation struct {
	ID             int64
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

type TicketSale struct {
	ID                int64
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
