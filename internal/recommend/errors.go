// Sprout - Personalized Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sprout

package recommend

import (
	"errors"
	"fmt"
)

// ErrViewerNotFound is returned by a Store when the viewer id has no record.
// The engine converts it into an empty response.
var ErrViewerNotFound = errors.New("viewer not found")

// ErrContentNotFound is returned by a Recorder for an unknown content id.
var ErrContentNotFound = errors.New("content not found")

// ErrStoreUnavailable marks a failed candidate or history fetch.
// It is surfaced to the caller without retry.
var ErrStoreUnavailable = errors.New("store unavailable")

// ErrInvalidMode is returned for an unknown recommendation mode.
var ErrInvalidMode = errors.New("invalid recommendation mode")

// ErrInvalidConfig is returned when the engine configuration fails validation.
var ErrInvalidConfig = errors.New("invalid configuration")

// StoreError wraps a store failure with the pipeline stage it occurred in.
// errors.Is(err, ErrStoreUnavailable) holds for every StoreError.
type StoreError struct {
	Stage string
	Err   error
}

// Error implements error.
func (e *StoreError) Error() string {
	return fmt.Sprintf("store unavailable during %s: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying store error.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// Is reports ErrStoreUnavailable as a match.
func (e *StoreError) Is(target error) bool {
	return target == ErrStoreUnavailable
}

// storeError wraps err unless it already is a StoreError.
func storeError(stage string, err error) error {
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	return &StoreError{Stage: stage, Err: err}
}
