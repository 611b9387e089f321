package wizard

import (
	"errors"
	"fmt"
)

var (
	// ErrNotReady is returned when the current step cannot be left yet.
	ErrNotReady = errors.New("wizard: step is not complete")
	// ErrStageInvalid is returned when submitted stage values fail validation.
	ErrStageInvalid = errors.New("wizard: stage values are invalid")
	// ErrNoStep is returned when navigating past either end of the plan.
	ErrNoStep = errors.New("wizard: no step in that direction")
	// ErrUnknownStage is returned for a stage the wizard does not collect.
	ErrUnknownStage = errors.New("wizard: unknown stage")
	// ErrFormUnavailable is returned when selecting a form that is not
	// published for the asset type.
	ErrFormUnavailable = errors.New("wizard: form is not available for the asset type")
	// ErrAssetTypeFixed is returned when changing the asset type while
	// editing.
	ErrAssetTypeFixed = errors.New("wizard: asset type cannot change while editing")
	// ErrSubmitted is returned by Submit after a successful submission.
	ErrSubmitted = errors.New("wizard: already submitted")
	// ErrClosed is returned by every call after Close.
	ErrClosed = errors.New("wizard: closed")
)

// SubmissionError wraps the sink error of a failed Submit. The wizard keeps
// its state so the user can correct and resubmit.
type SubmissionError struct {
	Err error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("wizard: submission failed: %v", e.Err)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// Payload returns the rejection messages keyed by field path. Sink errors
// exposing ErrorPayload are passed through; anything else becomes a single
// form-level message under the empty key.
func (e *SubmissionError) Payload() map[string][]string {
	var payloader interface {
		ErrorPayload() map[string][]string
	}
	if errors.As(e.Err, &payloader) {
		return payloader.ErrorPayload()
	}
	return map[string][]string{"": {e.Err.Error()}}
}
