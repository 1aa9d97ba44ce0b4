package leadform

import (
	"context"

	"github.com/katalux/roofers-landing/internal/leads"
)

// Host is the form element on the page: its named fields and its submit
// button.
type Host interface {
	// Value returns a field's current text; ok is false when the field is absent.
	Value(name string) (value string, ok bool)
	SetValue(name, value string)
	ButtonLabel() string
	ButtonEnabled() bool
	SetButton(label string, enabled bool)
	// Reset clears every field back to empty.
	Reset()
}

// Notice is a transient message shown to the visitor.
type Notice interface {
	Dismiss()
}

// Presenter surfaces feedback to the visitor.
type Presenter interface {
	// Alert shows a blocking message.
	Alert(text string)
	// ShowNotice shows a non-blocking confirmation until dismissed.
	ShowNotice(text string) Notice
}

// Submitter delivers a validated submission.
type Submitter interface {
	Submit(ctx context.Context, sub leads.Submission) error
}

// SubmitterFunc adapts a function to Submitter.
type SubmitterFunc func(ctx context.Context, sub leads.Submission) error

func (f SubmitterFunc) Submit(ctx context.Context, sub leads.Submission) error {
	return f(ctx, sub)
}
