package hauntops

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type ClearOptions struct {
	// accounts to survive the wipe, typically the administrators
	KeepEmails []string
	DryRun     bool
}

// ClearCount is rows removed (or that would be removed) from one table.
type ClearCount struct {
	Table string
	Rows  int64
}

// tables wiped wholesale, children before parents so the foreign
// keys never trip
var clearTables = []string{
	"participations",
	"ticket_sales",
	"group_members",
	"groups",
	"events",
}

// Clear wipes every synced table inside one transaction, keeping
// only the listed user accounts. Either the whole wipe lands or none
// of it does. Dry run reports the counts and commits nothing.
func (s Service) Clear(ctx context.Context, opts ClearOptions) ([]ClearCount, error) {
	ctx, span := tracer.Start(ctx, "Clear")
	defer span.End()
	span.SetAttributes(
		attribute.Bool("dry_run", opts.DryRun),
		attribute.Int("keep_emails", len(opts.KeepEmails)),
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	defer tx.Rollback()
	txqry := s.qry.WithTx(tx)

	var counts []ClearCount
	for _, table := range clearTables {
		var rows int64
		if opts.DryRun {
			rows, err = txqry.CountRows(ctx, table)
		} else {
			rows, err = txqry.DeleteAllRows(ctx, table)
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		counts = append(counts, ClearCount{Table: table, Rows: rows})
	}

	var users int64
	if opts.DryRun {
		users, err = txqry.CountUsersExceptEmails(ctx, opts.KeepEmails)
	} else {
		users, err = txqry.DeleteUsersExceptEmails(ctx, opts.KeepEmails)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	counts = append(counts, ClearCount{Table: "users", Rows: users})

	if opts.DryRun {
		return counts, nil
	}
	if err := tx.Commit(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return counts, nil
}
