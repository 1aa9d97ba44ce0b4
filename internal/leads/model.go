package leads

import (
	"encoding/json"
	"fmt"
	"time"
)

// Field names shared by the page forms, the HTTP adapter and the relay body.
const (
	FieldName    = "name"
	FieldCompany = "company"
	FieldPhone   = "phone"
	FieldEmail   = "email"
)

// Fields lists the form fields in validation order.
var Fields = []string{FieldName, FieldCompany, FieldPhone, FieldEmail}

// TimestampLayout is ISO-8601 with millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Submission is one visitor's contact request. It lives for a single
// validate, send, report cycle.
type Submission struct {
	Name      string    `json:"name"`
	Company   string    `json:"company"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	Timestamp time.Time `json:"-"`
}

// Validate returns a *ValidationError listing every violation, or nil.
func (s Submission) Validate() error {
	if msgs := Validate(s.Name, s.Company, s.Phone, s.Email); len(msgs) > 0 {
		return &ValidationError{Messages: msgs}
	}
	return nil
}

// TimestampString renders the submit time in UTC, or "" when unset.
func (s Submission) TimestampString() string {
	if s.Timestamp.IsZero() {
		return ""
	}
	return s.Timestamp.UTC().Format(TimestampLayout)
}

// MarshalJSON adds the ISO-8601 timestamp alongside the visitor's fields.
func (s Submission) MarshalJSON() ([]byte, error) {
	type plain Submission
	return json.Marshal(struct {
		plain
		Timestamp string `json:"timestamp,omitempty"`
	}{plain: plain(s), Timestamp: s.TimestampString()})
}

// Lead is an accepted submission as recorded by the service.
type Lead struct {
	ID          string    `json:"id"`
	FormID      string    `json:"form_id"`
	Name        string    `json:"name"`
	Company     string    `json:"company"`
	Phone       string    `json:"phone"`
	PhoneDigits string    `json:"phone_digits"`
	Email       string    `json:"email"`
	RemoteIP    string    `json:"remote_ip,omitempty"`
	UserAgent   string    `json:"user_agent,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewLead builds the record for a relayed submission.
func NewLead(formID string, sub Submission) *Lead {
	return &Lead{
		FormID:      formID,
		Name:        sub.Name,
		Company:     sub.Company,
		Phone:       sub.Phone,
		PhoneDigits: DigitsOnly(sub.Phone),
		Email:       sub.Email,
		SubmittedAt: sub.Timestamp,
	}
}

func (l *Lead) validate() error {
	if l.FormID == "" {
		return ErrMissingFormID
	}
	if err := (Submission{Name: l.Name, Company: l.Company, Phone: l.Phone, Email: l.Email}).Validate(); err != nil {
		return fmt.Errorf("leads: record lead: %w", err)
	}
	return nil
}
