package pipeline

import (
	"errors"
	"fmt"
)

// Stage identifies where in the pipeline a failure happened.
type Stage string

const (
	StageValidate  Stage = "validate"
	StageNormalize Stage = "normalize"
	StageOCR       Stage = "ocr"
	StageAI        Stage = "ai"
)

// Reason is the machine-readable failure code surfaced to clients and logs.
type Reason string

const (
	ReasonUnsupportedType    Reason = "UnsupportedType"
	ReasonTooLarge           Reason = "TooLarge"
	ReasonCorruptDocument    Reason = "CorruptDocument"
	ReasonEmptyDocument      Reason = "EmptyDocument"
	ReasonNoTextFound        Reason = "NoTextFound"
	ReasonEnginePageFailure  Reason = "EnginePageFailure"
	ReasonMalformedResponse  Reason = "MalformedResponse"
	ReasonServiceUnavailable Reason = "ServiceUnavailable"
	ReasonTimeout            Reason = "Timeout"
)

// StageError is the single error type crossing stage boundaries. Raw holds
// the model's response text when the failure is MalformedResponse so it can
// be logged for diagnostics.
type StageError struct {
	Stage  Stage
	Reason Reason
	Err    error
	Raw    string
}

func (e *StageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Stage, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Stage, e.Reason)
}

func (e *StageError) Unwrap() error { return e.Err }

// NewStageError wraps err with its stage and reason code.
func NewStageError(stage Stage, reason Reason, err error) *StageError {
	return &StageError{Stage: stage, Reason: reason, Err: err}
}

// ReasonOf extracts the reason code from err, or empty if err is not a StageError.
func ReasonOf(err error) Reason {
	var se *StageError
	if errors.As(err, &se) {
		return se.Reason
	}
	return ""
}

// Rejectable reports whether the reason maps to a 4xx response. Everything
// after normalization degrades to a fallback record instead.
func Rejectable(r Reason) bool {
	switch r {
	case ReasonUnsupportedType, ReasonTooLarge, ReasonCorruptDocument, ReasonEmptyDocument:
		return true
	}
	return false
}
