package domain

import (
	"errors"
	"fmt"
)

var (
	// Common domain errors
	ErrNotFound            = errors.New("entity not found")
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrRunInProgress       = errors.New("a run is already in progress")
	ErrMissingPrimaryImage = errors.New("primary product image is required")

	// Run-level failures
	ErrCredentialMissing = errors.New("no usable API credential selected")
	ErrAnalysis          = errors.New("product analysis failed")

	// Job-level failures
	ErrContentRefused = errors.New("image generation refused by provider safety filter")
	ErrGeneration     = errors.New("image generation failed")
	ErrVideoRefused   = errors.New("video input was filtered by provider moderation")
	ErrVideo          = errors.New("video generation failed")

	// Media conversion, fatal to whichever stage hit it
	ErrCodec = errors.New("media could not be encoded")
)

// ProviderError carries the provider call that failed next to its taxonomy kind.
// errors.Is(err, domain.ErrContentRefused) and friends match on Kind.
type ProviderError struct {
	Kind   error
	Op     string
	Model  string
	Reason string
	Err    error
}

func (e *ProviderError) Error() string {
	msg := e.Kind.Error()
	if e.Reason != "" {
		msg += " (" + e.Reason + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	switch {
	case e.Op != "" && e.Model != "":
		return fmt.Sprintf("%s %s: %s", e.Op, e.Model, msg)
	case e.Op != "":
		return e.Op + ": " + msg
	}
	return msg
}

func (e *ProviderError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewProviderError is shorthand used by the gateway adapters.
func NewProviderError(kind error, op, model, reason string, err error) *ProviderError {
	return &ProviderError{Kind: kind, Op: op, Model: model, Reason: reason, Err: err}
}

// IsRunLevel reports whether err must abort a run before any job exists.
func IsRunLevel(err error) bool {
	return errors.Is(err, ErrCredentialMissing) ||
		errors.Is(err, ErrAnalysis) ||
		errors.Is(err, ErrMissingPrimaryImage) ||
		errors.Is(err, ErrCodec)
}
