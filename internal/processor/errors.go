package processor

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoModels is returned when neither the caller nor the configuration names a model.
var ErrNoModels = errors.New("no models requested")

// AcquisitionError means the audio for a source could not be prepared.
type AcquisitionError struct {
	Source string
	Err    error
}

func (e *AcquisitionError) Error() string {
	return fmt.Sprintf("acquire %s: %v", e.Source, e.Err)
}

func (e *AcquisitionError) Unwrap() error {
	return e.Err
}

// BackendInvocationError means one model failed for a job.
type BackendInvocationError struct {
	Model string
	Err   error
}

func (e *BackendInvocationError) Error() string {
	return fmt.Sprintf("model %s: %v", e.Model, e.Err)
}

func (e *BackendInvocationError) Unwrap() error {
	return e.Err
}

// AllBackendsFailedError means a job produced no transcript at all.
type AllBackendsFailedError struct {
	Source string
	Models []string
	Errs   []error
}

func (e *AllBackendsFailedError) Error() string {
	return fmt.Sprintf("all transcriptions failed for %s (models: %s)", e.Source, strings.Join(e.Models, ", "))
}

func (e *AllBackendsFailedError) Unwrap() []error {
	return e.Errs
}
