package notify

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/katalux/roofers-landing/internal/leads"
	"github.com/katalux/roofers-landing/pkg/logging"
)

// Service tells the sales crew about new leads.
type Service struct {
	email      EmailSender
	recipients []string
	logger     *logging.Logger
}

// NewService creates a notification service. Blank recipients are ignored.
func NewService(email EmailSender, recipients []string, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	var to []string
	for _, r := range recipients {
		if r = strings.TrimSpace(r); r != "" {
			to = append(to, r)
		}
	}
	return &Service{
		email:      email,
		recipients: to,
		logger:     logger,
	}
}

// Enabled reports whether there is a sender and someone to notify.
func (s *Service) Enabled() bool {
	return s != nil && s.email != nil && len(s.recipients) > 0
}

// NotifyNewLead emails every recipient about lead. Replies go to the lead.
func (s *Service) NotifyNewLead(ctx context.Context, lead *leads.Lead) error {
	if !s.Enabled() {
		s.logger.Debug("notify: no sender or recipients, skipping new lead email")
		return nil
	}

	submitted := lead.SubmittedAt
	if submitted.IsZero() {
		submitted = time.Now().UTC()
	}

	subject := fmt.Sprintf("🏠 New Lead - %s (%s)", lead.Company, lead.Name)
	body := fmt.Sprintf(`A new roofing lead has come in!

Name: %s
Company: %s
Phone: %s
Email: %s
Form: %s
Submitted: %s

Reply to this email to reach the lead directly.

— Katalux`, lead.Name, lead.Company, leads.FormatPhone(lead.Phone), lead.Email, lead.FormID, submitted.Format("January 2, 2006 at 3:04 PM MST"))

	htmlBody := fmt.Sprintf(`<div style="font-family: sans-serif; max-width: 600px;">
<h2 style="color: #0D9488;">🏠 New Lead</h2>
<table style="border-collapse: collapse; margin: 20px 0;">
<tr><td style="padding: 4px 12px 4px 0;"><strong>Name</strong></td><td>%s</td></tr>
<tr><td style="padding: 4px 12px 4px 0;"><strong>Company</strong></td><td>%s</td></tr>
<tr><td style="padding: 4px 12px 4px 0;"><strong>Phone</strong></td><td>%s</td></tr>
<tr><td style="padding: 4px 12px 4px 0;"><strong>Email</strong></td><td>%s</td></tr>
<tr><td style="padding: 4px 12px 4px 0;"><strong>Form</strong></td><td>%s</td></tr>
</table>
<p>Reply to this email to reach the lead directly.</p>
</div>`,
		html.EscapeString(lead.Name),
		html.EscapeString(lead.Company),
		html.EscapeString(leads.FormatPhone(lead.Phone)),
		html.EscapeString(lead.Email),
		html.EscapeString(lead.FormID),
	)

	var errs []error
	for _, recipient := range s.recipients {
		msg := EmailMessage{
			To:      recipient,
			ReplyTo: lead.Email,
			Subject: subject,
			Body:    body,
			HTML:    htmlBody,
		}
		if err := s.email.Send(ctx, msg); err != nil {
			s.logger.Error("notify: new lead email failed", "error", err, "to", recipient, "lead_id", lead.ID)
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("notify: %d of %d notification(s) failed: %w", len(errs), len(s.recipients), errors.Join(errs...))
	}
	return nil
}
