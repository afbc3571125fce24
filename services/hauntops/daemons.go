package hauntops

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"hauntops-backend/etl/fieldmap"
	"hauntops-backend/lib/scrapers/ivolunteer"
	"hauntops-backend/lib/scrapers/passage"
	"hauntops-backend/lib/timezone"

	"github.com/cenkalti/backoff/v4"
	"github.com/robfig/cron/v3"
)

type DaemonOptions struct {
	// cron expression for the ticket sales scrape, empty disables it
	TicketSalesSpec string
	MaxPages        int
	// cron expression for the volunteer feed pull, empty disables it
	FetchUsersSpec string
	Mapping        fieldmap.Mapping
	Notifier       Notifier
	// builds a fresh logged-in portal session for each run
	NewPortalClient func(ctx context.Context) (*passage.Client, error)
	// builds a volunteer portal API session for each run
	NewVolunteerClient func(ctx context.Context) (*ivolunteer.Client, error)
}

const (
	retryInterval = 30 * time.Second
	retryCount    = 3
)

// Daemons owns the scheduled scrape jobs for a long-running process.
type Daemons struct {
	service Service
	options DaemonOptions
	cron    *cron.Cron
}

func NewDaemons(service Service, options DaemonOptions) *Daemons {
	return &Daemons{
		service: service,
		options: options,
		cron: cron.New(
			cron.WithLogger(cronLogger{}),
			cron.WithLocation(timezone.Location),
		),
	}
}

// Start registers the schedules and starts the scheduler. Jobs run
// until the context is cancelled, the returned stop function waits
// for any in-flight run.
func (d *Daemons) Start(ctx context.Context) (stop func(), err error) {
	if d.options.TicketSalesSpec != "" {
		_, err := d.cron.AddFunc(d.options.TicketSalesSpec, func() {
			d.runJob(ctx, "ticket-sales", d.ticketSalesRun(ctx))
		})
		if err != nil {
			return nil, fmt.Errorf("schedule ticket sales: %w", err)
		}
	}
	if d.options.FetchUsersSpec != "" {
		_, err := d.cron.AddFunc(d.options.FetchUsersSpec, func() {
			d.runJob(ctx, "fetch-users", d.fetchUsersRun(ctx))
		})
		if err != nil {
			return nil, fmt.Errorf("schedule fetch users: %w", err)
		}
	}
	d.cron.Start()
	return func() {
		<-d.cron.Stop().Done()
	}, nil
}

func (d *Daemons) ticketSalesRun(ctx context.Context) func() (Report, error) {
	return func() (Report, error) {
		client, err := d.options.NewPortalClient(ctx)
		if err != nil {
			return Report{}, err
		}
		return d.service.FetchTicketSales(ctx, client, d.options.MaxPages, RunOptions{})
	}
}

func (d *Daemons) fetchUsersRun(ctx context.Context) func() (Report, error) {
	return func() (Report, error) {
		client, err := d.options.NewVolunteerClient(ctx)
		if err != nil {
			return Report{}, err
		}
		return d.service.FetchUsers(ctx, client, d.options.Mapping, RunOptions{})
	}
}

// runJob fetches and syncs with a few spaced retries, the portals'
// maintenance windows make one-shot runs flaky overnight.
func (d *Daemons) runJob(ctx context.Context, job string, run func() (Report, error)) {
	var report Report
	operation := func() error {
		var err error
		report, err = run()
		return err
	}
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(retryInterval), retryCount),
		ctx,
	)
	if err := backoff.Retry(operation, policy); err != nil {
		slog.Error("scheduled job failed", "job", job, "err", err)
		return
	}

	slog.Info("scheduled job finished",
		"job", job,
		"processed", report.Processed,
		"created", report.Created,
		"updated", report.Updated,
		"skipped", report.Skipped)
	if err := d.options.Notifier.SendRunSummary(ctx, job, report); err != nil {
		slog.Error("failed to send run summary", "err", err)
	}
}

type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	slog.Debug(fmt.Sprintf("cron: %s", msg), keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	slog.Error(fmt.Sprintf("cron: %s", msg), append([]any{"err", err}, keysAndValues...)...)
}
