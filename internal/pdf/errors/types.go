// Package errors defines the error categories shared by the form
// extraction, filling and overlay pipelines.
package errors

import (
	"errors"
	"fmt"
)

// Kind classifies a pipeline failure.
type Kind int

const (
	// KindInput marks malformed input: unreadable layout or fill files,
	// references to unknown elements, page mismatches. Input errors abort
	// a run before any write happens.
	KindInput Kind = iota

	// KindValidation marks authoring problems: overlapping bounding
	// boxes, undersized entry boxes, fill values outside an element's
	// domain. Individually non-fatal, but any occurrence fails the batch.
	KindValidation

	// KindResourceUnavailable marks a missing external capability, such
	// as no installed font covering the glyphs a document needs. Fatal,
	// with actionable guidance in the message.
	KindResourceUnavailable

	// KindInternal marks unexpected faults inside the pipeline. Fatal,
	// never swallowed.
	KindInternal
)

// String returns the category name used in diagnostics.
func (k Kind) String() string {
	switch k {
	case KindInput:
		return "INPUT_ERROR"
	case KindValidation:
		return "VALIDATION_ERROR"
	case KindResourceUnavailable:
		return "RESOURCE_UNAVAILABLE"
	default:
		return "INTERNAL_ERROR"
	}
}

// PipelineError carries a failure category together with the wrapped cause.
type PipelineError struct {
	Kind    Kind
	Message string
	Err     error
}

// Error implements the error interface.
func (e *PipelineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap exposes the wrapped cause for errors.Is/As.
func (e *PipelineError) Unwrap() error {
	return e.Err
}

// New creates a PipelineError of the given kind.
func New(kind Kind, message string) *PipelineError {
	return &PipelineError{Kind: kind, Message: message}
}

// Newf creates a PipelineError with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) *PipelineError {
	return &PipelineError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a category to an underlying error.
func Wrap(kind Kind, message string, err error) *PipelineError {
	return &PipelineError{Kind: kind, Message: message, Err: err}
}

// KindOf reports the category of err, or KindInternal if err carries none.
func KindOf(err error) Kind {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindInternal
}

// IsInput reports whether err is an input error.
func IsInput(err error) bool {
	var pe *PipelineError
	return errors.As(err, &pe) && pe.Kind == KindInput
}

// IsResourceUnavailable reports whether err is a missing-capability error.
func IsResourceUnavailable(err error) bool {
	var pe *PipelineError
	return errors.As(err, &pe) && pe.Kind == KindResourceUnavailable
}
