// Mind Digest - Wellness Recommendation and Behavior Learning
// Copyright 2026 Wetende
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Wetende/mind-digest

package recommend

import (
	"errors"

	"github.com/Wetende/mind-digest-sub001/internal/validation"
)

var (
	// ErrInvalidEvent is returned for events that fail validation.
	ErrInvalidEvent = errors.New("invalid interaction event")

	// ErrProviderUnavailable is returned by collaborators that are disabled,
	// rate limited or behind an open circuit breaker.
	ErrProviderUnavailable = errors.New("provider unavailable")

	// ErrNotFound is returned when a user has no stored data.
	ErrNotFound = errors.New("not found")
)

// InvalidEventError carries the field errors of a rejected event.
// errors.Is(err, ErrInvalidEvent) is true for it.
type InvalidEventError struct {
	Validation *validation.RequestValidationError
}

func (e *InvalidEventError) Error() string {
	return ErrInvalidEvent.Error() + ": " + e.Validation.Error()
}

// Is matches ErrInvalidEvent.
func (e *InvalidEventError) Is(target error) bool {
	return target == ErrInvalidEvent
}
