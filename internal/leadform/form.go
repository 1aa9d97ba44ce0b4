package leadform

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/katalux/roofers-landing/internal/leads"
	"github.com/katalux/roofers-landing/internal/observability/metrics"
	"github.com/katalux/roofers-landing/pkg/logging"
)

const (
	DefaultSubmittingLabel = "Submitting..."
	DefaultSuccessText     = "✓ Thanks! We'll contact you within 24 hours."
	DefaultFallbackEmail   = "hello@katalux.agency"
	DefaultNoticeDuration  = 5 * time.Second
)

// Options tune the workflow shared by every form on a page.
type Options struct {
	SubmittingLabel string
	SuccessText     string
	FallbackEmail   string
	NoticeDuration  time.Duration

	// Now stamps submissions. Defaults to time.Now.
	Now func() time.Time
	// Schedule runs f once after d. Defaults to time.AfterFunc.
	Schedule func(d time.Duration, f func())

	Logger  *logging.Logger
	Metrics *metrics.LeadMetrics
}

func (o Options) withDefaults() Options {
	if o.SubmittingLabel == "" {
		o.SubmittingLabel = DefaultSubmittingLabel
	}
	if o.SuccessText == "" {
		o.SuccessText = DefaultSuccessText
	}
	if o.FallbackEmail == "" {
		o.FallbackEmail = DefaultFallbackEmail
	}
	if o.NoticeDuration <= 0 {
		o.NoticeDuration = DefaultNoticeDuration
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Schedule == nil {
		o.Schedule = func(d time.Duration, f func()) { time.AfterFunc(d, f) }
	}
	if o.Logger == nil {
		o.Logger = logging.Default()
	}
	return o
}

// FailureText is the blocking message shown when delivery fails.
func FailureText(fallbackEmail string) string {
	return fmt.Sprintf("Sorry, something went wrong sending your request. Please email us directly at %s.", fallbackEmail)
}

// Outcome reports how one Submit call ended.
type Outcome struct {
	// State is Invalid, Success or Failure; the form itself is back to Idle.
	State State
	// Messages holds the validation violations when State is Invalid.
	Messages []string
	// Submission is what was handed to the Submitter, if anything.
	Submission *leads.Submission
	Err        error
}

// Form runs the submission workflow for one form on the page. Each form owns
// its state; submitting one never touches another.
type Form struct {
	id        string
	host      Host
	presenter Presenter
	submitter Submitter
	opts      Options
	logger    *logging.Logger

	mu    sync.Mutex
	state State
}

// NewForm binds the workflow to a host element.
func NewForm(id string, host Host, presenter Presenter, submitter Submitter, opts Options) *Form {
	if host == nil || presenter == nil || submitter == nil {
		panic("leadform: host, presenter and submitter are required")
	}
	opts = opts.withDefaults()
	return &Form{
		id:        id,
		host:      host,
		presenter: presenter,
		submitter: submitter,
		opts:      opts,
		logger:    opts.Logger.With("form_id", id),
		state:     Idle,
	}
}

// ID returns the form's page identifier.
func (f *Form) ID() string { return f.id }

// State returns the current workflow state.
func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *Form) setState(s State) {
	f.mu.Lock()
	f.state = s
	f.mu.Unlock()
}

// Input writes a keystroke's resulting text back into the field. Phone
// fields are re-derived from their digits on every call.
func (f *Form) Input(name, raw string) string {
	value := raw
	if name == leads.FieldPhone {
		value = leads.FormatPhone(raw)
	}
	f.host.SetValue(name, value)
	return value
}

// Submit validates the host's fields and, when valid, delivers them.
// Invalid input is reported in one alert and left in place. While delivery
// is outstanding the submit button is disabled and further Submit calls on
// this form return ErrSubmitInFlight. On success the fields are cleared and
// a confirmation notice is shown for NoticeDuration; on failure the fields
// are kept and the visitor is pointed at the fallback email.
func (f *Form) Submit(ctx context.Context) Outcome {
	f.mu.Lock()
	if f.state != Idle {
		state := f.state
		f.mu.Unlock()
		return Outcome{State: state, Err: ErrSubmitInFlight}
	}
	f.state = Validating
	f.mu.Unlock()
	defer f.setState(Idle)

	sub := leads.Submission{
		Name:    f.value(leads.FieldName),
		Company: f.value(leads.FieldCompany),
		Phone:   f.value(leads.FieldPhone),
		Email:   f.value(leads.FieldEmail),
	}

	if msgs := leads.Validate(sub.Name, sub.Company, sub.Phone, sub.Email); len(msgs) > 0 {
		f.setState(Invalid)
		f.presenter.Alert(leads.AlertText(msgs))
		f.opts.Metrics.ObserveValidationErrors(f.id, len(msgs))
		f.opts.Metrics.ObserveSubmission(f.id, Invalid.String())
		f.logger.Info("lead form rejected", "errors", len(msgs))
		return Outcome{State: Invalid, Messages: msgs, Err: &leads.ValidationError{Messages: msgs}}
	}

	label, enabled := f.host.ButtonLabel(), f.host.ButtonEnabled()
	f.host.SetButton(f.opts.SubmittingLabel, false)
	f.setState(Submitting)

	sub.Timestamp = f.opts.Now().UTC()
	err := f.submitter.Submit(WithFormID(ctx, f.id), sub)
	if err != nil {
		f.setState(Failure)
		f.presenter.Alert(FailureText(f.opts.FallbackEmail))
		f.host.SetButton(label, enabled)
		f.opts.Metrics.ObserveSubmission(f.id, Failure.String())
		f.logger.Error("lead form submission failed", "error", err)

		var serr *leads.SubmissionError
		if !errors.As(err, &serr) {
			err = &leads.SubmissionError{Err: err}
		}
		return Outcome{State: Failure, Submission: &sub, Err: err}
	}

	f.setState(Success)
	notice := f.presenter.ShowNotice(f.opts.SuccessText)
	f.host.Reset()
	f.host.SetButton(label, enabled)
	if notice != nil {
		f.opts.Schedule(f.opts.NoticeDuration, notice.Dismiss)
	}
	f.opts.Metrics.ObserveSubmission(f.id, Success.String())
	f.logger.Info("lead form submitted")
	return Outcome{State: Success, Submission: &sub}
}

func (f *Form) value(name string) string {
	v, _ := f.host.Value(name)
	return v
}
