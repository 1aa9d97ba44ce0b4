package leads

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrLeadNotFound is returned when a lead is not found
	ErrLeadNotFound = errors.New("lead not found")

	// ErrMissingFormID is returned when a lead is recorded without its form
	ErrMissingFormID = errors.New("form id is required")
)

// ValidationError carries every field violation found in a submission, in
// the order the fields are checked.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "leads: invalid submission: " + strings.Join(e.Messages, "; ")
}

// SubmissionError reports a failed delivery to the form-relay endpoint.
// StatusCode is zero when the request never produced a response.
type SubmissionError struct {
	StatusCode int
	Err        error
}

func (e *SubmissionError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("leads: relay returned %d: %v", e.StatusCode, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("leads: relay returned %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	case e.Err != nil:
		return fmt.Sprintf("leads: relay request failed: %v", e.Err)
	default:
		return "leads: relay request failed"
	}
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}
