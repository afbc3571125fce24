package timezone

import "time"

var Location *time.Location

func init() {
	var err error
	Location, err = time.LoadLocation("America/Los_Angeles")
	if err != nil {
		panic(err)
	}
}

// force timezone to be Pacific because the hosting provider
// sometimes puts us on east coast machines, which shifts
// every Year()/Month()/Day()/Hour() computation on event dates
func Now() time.Time {
	return time.Now().In(Location)
}

// the current date at midnight in the configured zone
func Today() time.Time {
	now := Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, Location)
}
