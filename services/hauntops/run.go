package hauntops

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"hauntops-backend/etl/fieldmap"
	"hauntops-backend/etl/normalize"
	"hauntops-backend/etl/record"
	"hauntops-backend/lib/scrapers/ivolunteer"
	"hauntops-backend/lib/scrapers/passage"
	"hauntops-backend/services/hauntops/db"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type RunOptions struct {
	// classify every row as would-create/would-update but write nothing
	DryRun bool
}

// RowError is one row the run could not land, kept with enough
// context to find it in the source export.
type RowError struct {
	Row int
	Err error
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

// Report totals one batch run. Skipped covers both malformed rows
// and rows the store refused, Errors has the details.
type Report struct {
	Processed int
	Created   int
	Updated   int
	Skipped   int
	Errors    []RowError
}

func (r *Report) count(action Action) {
	switch action {
	case ActionCreated:
		r.Created++
	case ActionUpdated:
		r.Updated++
	}
}

func (r *Report) skip(row int, err error) {
	r.Skipped++
	r.Errors = append(r.Errors, RowError{Row: row, Err: err})
}

// malformed rows are logged and skipped, anything else is a
// write-layer failure which also skips but at error level
func logRowFailure(job string, row int, err error) {
	var verr record.ValidationError
	if errors.As(err, &verr) {
		slog.Warn("skipping malformed row", "job", job, "row", row, "missing", verr.Missing)
		return
	}
	slog.Error("skipping row", "job", job, "row", row, "err", err)
}

// LoadUsers runs the volunteer feed through mapping, validation and
// the user upsert, then files each volunteer into their groups. One
// bad row never stops the batch, a cancelled context does.
func (s Service) LoadUsers(ctx context.Context, mapping fieldmap.Mapping, rows []map[string]any, opts RunOptions) (Report, error) {
	ctx, span := tracer.Start(ctx, "LoadUsers")
	defer span.End()
	span.SetAttributes(attribute.Int("rows", len(rows)), attribute.Bool("dry_run", opts.DryRun))

	var report Report
	for i, raw := range rows {
		if err := ctx.Err(); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return report, err
		}
		report.Processed++

		vol, err := record.VolunteerFromRow(mapping.MapRow(raw))
		if err != nil {
			logRowFailure("load-users", i, err)
			report.skip(i, err)
			continue
		}

		action, user, err := s.SyncUser(ctx, s.qry, vol, opts.DryRun)
		if err != nil {
			logRowFailure("load-users", i, err)
			report.skip(i, err)
			continue
		}

		// a row lands in exactly one bucket, a group failure after a
		// successful upsert files it as skipped rather than both
		if !opts.DryRun {
			if err := s.fileIntoGroups(ctx, user, vol.GroupNames()); err != nil {
				logRowFailure("load-users", i, err)
				report.skip(i, err)
				continue
			}
		}
		report.count(action)
	}
	return report, nil
}

func (s Service) fileIntoGroups(ctx context.Context, user db.User, names []string) error {
	for _, name := range names {
		_, group, err := s.SyncGroup(ctx, s.qry, name, 0, false)
		if err != nil {
			return err
		}
		if err := s.qry.AddGroupMember(ctx, user.ID, group.ID); err != nil {
			return err
		}
	}
	return nil
}

// LoadParticipation runs a signup feed. Rows that carry a full
// volunteer profile sync the user first so a brand-new signup does
// not bounce off a missing account.
func (s Service) LoadParticipation(ctx context.Context, mapping fieldmap.Mapping, rows []map[string]any, opts RunOptions) (Report, error) {
	ctx, span := tracer.Start(ctx, "LoadParticipation")
	defer span.End()
	span.SetAttributes(attribute.Int("rows", len(rows)), attribute.Bool("dry_run", opts.DryRun))

	var report Report
	for i, raw := range rows {
		if err := ctx.Err(); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return report, err
		}
		report.Processed++

		mapped := mapping.MapRow(raw)

		if vol, err := record.VolunteerFromRow(mapped); err == nil {
			if _, _, err := s.SyncUser(ctx, s.qry, vol, opts.DryRun); err != nil {
				logRowFailure("load-participation", i, err)
				report.skip(i, err)
				continue
			}
		}

		p, err := record.ParticipationFromRow(mapped)
		if err != nil {
			logRowFailure("load-participation", i, err)
			report.skip(i, err)
			continue
		}

		action, err := s.SyncParticipation(ctx, s.qry, p, opts.DryRun)
		if err != nil {
			logRowFailure("load-participation", i, err)
			report.skip(i, err)
			continue
		}
		report.count(action)
	}
	return report, nil
}

// LoadGroups runs a group roster feed. Each row names one group,
// optionally with a point value and a member email to file in.
func (s Service) LoadGroups(ctx context.Context, mapping fieldmap.Mapping, rows []map[string]any, opts RunOptions) (Report, error) {
	ctx, span := tracer.Start(ctx, "LoadGroups")
	defer span.End()
	span.SetAttributes(attribute.Int("rows", len(rows)), attribute.Bool("dry_run", opts.DryRun))

	var report Report
	for i, raw := range rows {
		if err := ctx.Err(); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return report, err
		}
		report.Processed++

		mapped := mapping.MapRow(raw)
		name := normalize.String(mapped["group_name"])
		if name == "" {
			err := record.ValidationError{Missing: []string{"group_name"}}
			logRowFailure("load-groups", i, err)
			report.skip(i, err)
			continue
		}
		points := normalize.Float(mapped["group_points"], 0)

		action, group, err := s.SyncGroup(ctx, s.qry, name, points, opts.DryRun)
		if err != nil {
			logRowFailure("load-groups", i, err)
			report.skip(i, err)
			continue
		}
		report.count(action)

		email := record.NormalizeEmail(normalize.String(mapped["email"]))
		if email == "" || opts.DryRun {
			continue
		}
		user, err := s.qry.GetUserByEmail(ctx, email)
		if err != nil {
			logRowFailure("load-groups", i, fmt.Errorf("member %q: %w", email, err))
			report.skip(i, fmt.Errorf("member %q: %w", email, err))
			continue
		}
		if err := s.qry.AddGroupMember(ctx, user.ID, group.ID); err != nil {
			logRowFailure("load-groups", i, err)
			report.skip(i, err)
		}
	}
	return report, nil
}

// ticketSaleFromEventRow converts a scraped upcoming-events row into
// a store record. The row's date header and clock labels are still
// portal strings at this point.
func ticketSaleFromEventRow(row passage.EventRow) (TicketSaleRecord, error) {
	date, err := normalize.EventDate(row.EventDate)
	if err != nil {
		return TicketSaleRecord{}, record.ValidationError{Missing: []string{"event_date"}}
	}
	rec := TicketSaleRecord{
		EventDate:   date,
		EventName:   row.EventName,
		Purchased:   normalize.Int(row.TicketsPurchased, 0),
		Remaining:   normalize.Int(row.TicketsRemaining, 0),
		Revenue:     row.Revenue,
		Notes:       row.Notes,
		EventTimeID: row.EventTimeID,
	}
	if t, err := normalize.PortalTime(combineDateTime(row.EventDate, row.StartTime)); err == nil {
		rec.StartTime = t
	}
	if t, err := normalize.PortalTime(combineDateTime(row.EventDate, row.EndTime)); err == nil {
		rec.EndTime = t
	}
	return rec, nil
}

func combineDateTime(date, clock string) string {
	if clock == "" {
		return ""
	}
	return fmt.Sprintf("%s %s", date, clock)
}

// LoadUpcomingEvents upserts sales counts from the portal's upcoming
// events table.
func (s Service) LoadUpcomingEvents(ctx context.Context, rows []passage.EventRow, opts RunOptions) (Report, error) {
	ctx, span := tracer.Start(ctx, "LoadUpcomingEvents")
	defer span.End()
	span.SetAttributes(attribute.Int("rows", len(rows)), attribute.Bool("dry_run", opts.DryRun))

	var report Report
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return report, err
		}
		report.Processed++

		rec, err := ticketSaleFromEventRow(row)
		if err != nil {
			logRowFailure("ticket-sales", i, err)
			report.skip(i, err)
			continue
		}
		action, err := s.SyncTicketSale(ctx, s.qry, rec, opts.DryRun)
		if err != nil {
			logRowFailure("ticket-sales", i, err)
			report.skip(i, err)
			continue
		}
		report.count(action)
	}
	return report, nil
}

// LoadSalesReport upserts counts from the sales report, which has no
// event-time ids, so rows key on (event, date, name).
func (s Service) LoadSalesReport(ctx context.Context, rows []passage.SalesRow, opts RunOptions) (Report, error) {
	ctx, span := tracer.Start(ctx, "LoadSalesReport")
	defer span.End()
	span.SetAttributes(attribute.Int("rows", len(rows)), attribute.Bool("dry_run", opts.DryRun))

	var report Report
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return report, err
		}
		report.Processed++

		date, err := normalize.EventDate(row.EventDate)
		if err != nil {
			verr := record.ValidationError{Missing: []string{"date"}}
			logRowFailure("sales-report", i, verr)
			report.skip(i, verr)
			continue
		}
		rec := TicketSaleRecord{
			EventDate: date,
			EventName: row.EventName,
			Purchased: row.TicketsPurchased,
			Remaining: row.TicketsRemaining,
		}
		action, err := s.SyncTicketSale(ctx, s.qry, rec, opts.DryRun)
		if err != nil {
			logRowFailure("sales-report", i, err)
			report.skip(i, err)
			continue
		}
		report.count(action)
	}
	return report, nil
}

// scrapeTimeout bounds one full portal walk
const scrapeTimeout = 5 * time.Minute

// FetchTicketSales walks the portal's upcoming events pages and
// syncs every occurrence found. A login or fetch failure is fatal,
// it means the upstream is unreachable and nothing can be synced.
func (s Service) FetchTicketSales(ctx context.Context, client *passage.Client, maxPages int, opts RunOptions) (Report, error) {
	ctx, span := tracer.Start(ctx, "FetchTicketSales")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, scrapeTimeout)
	defer cancel()

	rows, err := client.UpcomingEvents(ctx, maxPages)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Report{}, fmt.Errorf("fetch upcoming events: %w", err)
	}
	return s.LoadUpcomingEvents(ctx, rows, opts)
}

// FetchUsers pulls the participant feed from the volunteer portal
// API and runs it through the user load. Like the ticket sales walk,
// an unreachable upstream is fatal before any row is touched.
func (s Service) FetchUsers(ctx context.Context, client *ivolunteer.Client, mapping fieldmap.Mapping, opts RunOptions) (Report, error) {
	ctx, span := tracer.Start(ctx, "FetchUsers")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, scrapeTimeout)
	defer cancel()

	rows, err := client.Participants(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Report{}, fmt.Errorf("fetch participants: %w", err)
	}
	return s.LoadUsers(ctx, mapping, rows, opts)
}
