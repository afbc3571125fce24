package hauntops

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/jordan-wright/email"
	"go.opentelemetry.io/otel/codes"
)

type SmtpConfig struct {
	Server       string `json:"server"`
	Port         int    `json:"port"`
	EmailAddress string `json:"email_address"`
	Password     string `json:"password"`
}

type NotifyOptions struct {
	Smtp       SmtpConfig
	Recipients []string
}

// Notifier mails run summaries to the coordinators. A zero
// recipient list disables it without any caller-side branching.
type Notifier struct {
	config NotifyOptions
}

func NewNotifier(options NotifyOptions) Notifier {
	return Notifier{config: options}
}

func formatReport(job string, report Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Job %q finished.\n\n", job)
	fmt.Fprintf(&b, "Processed: %d\n", report.Processed)
	fmt.Fprintf(&b, "Created:   %d\n", report.Created)
	fmt.Fprintf(&b, "Updated:   %d\n", report.Updated)
	fmt.Fprintf(&b, "Skipped:   %d\n", report.Skipped)
	if len(report.Errors) > 0 {
		b.WriteString("\nSkipped rows:\n")
		for _, rowErr := range report.Errors {
			fmt.Fprintf(&b, "  %s\n", rowErr.Error())
		}
	}
	return b.String()
}

// SendRunSummary mails one job's report. Some relays on the LAN
// reject AUTH entirely, those get a second unauthenticated attempt.
func (n Notifier) SendRunSummary(ctx context.Context, job string, report Report) error {
	_, span := tracer.Start(ctx, "SendRunSummary")
	defer span.End()

	if len(n.config.Recipients) == 0 {
		return nil
	}

	mail := email.NewEmail()
	mail.From = fmt.Sprintf("Haunt Ops <%s>", n.config.Smtp.EmailAddress)
	mail.To = n.config.Recipients
	mail.Subject = fmt.Sprintf("Sync report: %s", job)
	mail.Text = []byte(formatReport(job, report))

	addr := fmt.Sprintf("%s:%d", n.config.Smtp.Server, n.config.Smtp.Port)
	err := mail.Send(
		addr,
		smtp.PlainAuth("", n.config.Smtp.EmailAddress, n.config.Smtp.Password, n.config.Smtp.Server),
	)
	if err != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
		err = mail.Send(addr, nil)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to send email")
		return err
	}
	return nil
}
