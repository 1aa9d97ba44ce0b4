package leadform

import "errors"

var (
	// ErrSubmitInFlight is returned when a form is submitted while its
	// previous submission is still outstanding.
	ErrSubmitInFlight = errors.New("leadform: submission already in progress")

	// ErrUnknownForm is returned when a form ID is not registered on the page.
	ErrUnknownForm = errors.New("leadform: unknown form")
)
