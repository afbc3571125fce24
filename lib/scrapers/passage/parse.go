package passage

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var eventIdRegex = regexp.MustCompile(`/events/(\d+)`)
var eventTimeIdRegex = regexp.MustCompile(`widget-trigger-(\d+)`)
var eventTimeHrefRegex = regexp.MustCompile(`/event_times/(\d+)`)

// parseUpcomingTables walks the per-date listing tables on one
// page of the upcoming events view. Each table carries its date
// in an h2 heading right inside the container.
func parseUpcomingTables(doc *goquery.Document) []EventRow {
	var rows []EventRow

	doc.Find("div[data-react-class='UpcomingEventsTable']").Each(func(_ int, container *goquery.Selection) {
		eventDate := strings.TrimSpace(container.Find("h2").First().Text())

		container.Find("tbody > tr").Each(func(_ int, tr *goquery.Selection) {
			tds := tr.Find("td")
			if tds.Length() < 4 {
				return
			}

			row := EventRow{EventDate: eventDate}

			nameLink := tds.Eq(0).Find("a[href*='/events/']").First()
			if nameLink.Length() > 0 {
				row.EventName = strings.TrimSpace(nameLink.Text())
				groups := eventIdRegex.FindStringSubmatch(nameLink.AttrOr("href", ""))
				if len(groups) == 2 {
					row.EventID, _ = strconv.ParseInt(groups[1], 10, 64)
				}
			} else {
				row.EventName = strings.TrimSpace(tds.Eq(0).Text())
			}

			// the sell/comp dropdown trigger carries the
			// occurrence id; private rows carry it in an
			// /event_times/ link instead
			trigger := tr.Find("a[id^='widget-trigger-']").First()
			groups := eventTimeIdRegex.FindStringSubmatch(trigger.AttrOr("id", ""))
			if len(groups) == 2 {
				row.EventTimeID, _ = strconv.ParseInt(groups[1], 10, 64)
			} else {
				private := tds.Eq(0).Find("a[href*='/event_times/']").First()
				groups = eventTimeHrefRegex.FindStringSubmatch(private.AttrOr("href", ""))
				if len(groups) == 2 {
					row.EventTimeID, _ = strconv.ParseInt(groups[1], 10, 64)
				}
			}

			row.StartTime = strings.TrimSpace(tds.Eq(1).Text())
			row.EndTime = strings.TrimSpace(tds.Eq(2).Text())
			row.TicketsPurchased = strings.TrimSpace(tds.Eq(3).Text())
			if tds.Length() > 4 {
				row.TicketsRemaining = strings.TrimSpace(tds.Eq(4).Text())
			}
			if tds.Length() > 5 {
				row.Revenue = strings.TrimSpace(tds.Eq(5).Text())
			}
			if tds.Length() > 6 {
				row.Notes = strings.TrimSpace(tds.Eq(6).Text())
			}

			rows = append(rows, row)
		})
	})

	return rows
}

// header aliases per column, the portal relabels these between
// releases
var salesDateAliases = []string{"date", "event date", "sale date"}
var salesNameAliases = []string{"event", "event name", "name"}
var salesPurchasedAliases = []string{"tickets purchased", "tickets sold", "sold", "qty"}
var salesRemainingAliases = []string{"tickets remaining", "remaining", "unsold"}

func findColumn(headers []string, aliases []string) int {
	for _, alias := range aliases {
		for i, h := range headers {
			if h == alias {
				return i
			}
		}
	}
	return -1
}

type salesTableError struct {
	headers []string
}

func (e salesTableError) Error() string {
	return "could not map required report columns, headers: " + strings.Join(e.headers, " | ")
}

func parseSalesTable(doc *goquery.Document) ([]SalesRow, error) {
	table := doc.Find("table, .report-table, [role='table']").First()
	if table.Length() == 0 {
		return nil, salesTableError{}
	}

	var headers []string
	headerCells := table.Find("thead th, thead td")
	if headerCells.Length() == 0 {
		headerCells = table.Find("tr").First().Find("th, td")
	}
	headerCells.Each(func(_ int, cell *goquery.Selection) {
		headers = append(headers, strings.ToLower(strings.TrimSpace(cell.Text())))
	})

	iDate := findColumn(headers, salesDateAliases)
	iName := findColumn(headers, salesNameAliases)
	iPurchased := findColumn(headers, salesPurchasedAliases)
	iRemaining := findColumn(headers, salesRemainingAliases)

	if iDate < 0 || iName < 0 || iPurchased < 0 {
		return nil, salesTableError{headers: headers}
	}

	bodyRows := table.Find("tbody tr")
	if bodyRows.Length() == 0 {
		bodyRows = table.Find("tr").Slice(1, goquery.ToEnd)
	}

	var out []SalesRow
	bodyRows.Each(func(_ int, tr *goquery.Selection) {
		tds := tr.Find("td")
		if tds.Length() == 0 {
			return
		}

		row := SalesRow{
			EventDate: strings.TrimSpace(tds.Eq(iDate).Text()),
			EventName: strings.TrimSpace(tds.Eq(iName).Text()),
		}
		row.TicketsPurchased = parseCount(tds.Eq(iPurchased).Text())
		if iRemaining >= 0 && tds.Length() > iRemaining {
			row.TicketsRemaining = parseCount(tds.Eq(iRemaining).Text())
		}
		out = append(out, row)
	})

	return out, nil
}

func parseCount(s string) int {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" || strings.EqualFold(s, "n/a") {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
