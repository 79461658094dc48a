// Mind Digest - Wellness Recommendation and Behavior Learning
// Copyright 2026 Wetende
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Wetende/mind-digest

package recommend

import (
	"context"
	"errors"
)

// Reason names a soft failure.
type Reason string

// Soft failure reasons.
const (
	ReasonInsufficientData    Reason = "insufficient_data"
	ReasonProviderUnavailable Reason = "provider_unavailable"
	ReasonEmpty               Reason = "empty"
	ReasonTimeout             Reason = "timeout"
)

// Result is the outcome of an internal source fetch.
//
// A Result is exactly one of: OK with a value, Soft with a Reason, or Fail
// with an unexpected error. Public entry points flatten Results into
// bundles and never surface them.
type Result[T any] struct {
	value  T
	reason Reason
	err    error
	ok     bool
}

// OK wraps a value.
func OK[T any](v T) Result[T] {
	return Result[T]{value: v, ok: true}
}

// Soft records an expected failure.
func Soft[T any](reason Reason) Result[T] {
	return Result[T]{reason: reason}
}

// Fail records an unexpected failure.
func Fail[T any](err error) Result[T] {
	return Result[T]{err: err}
}

// FromCall classifies the return of a collaborator call. Deadline errors and
// ErrProviderUnavailable become soft failures; an empty value becomes
// Soft(ReasonEmpty).
func FromCall[T any](v T, err error, empty func(T) bool) Result[T] {
	switch {
	case err == nil:
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return Soft[T](ReasonTimeout)
	case errors.Is(err, ErrProviderUnavailable):
		return Soft[T](ReasonProviderUnavailable)
	case errors.Is(err, ErrNotFound):
		return Soft[T](ReasonInsufficientData)
	default:
		return Fail[T](err)
	}
	if empty != nil && empty(v) {
		return Soft[T](ReasonEmpty)
	}
	return OK(v)
}

// IsOK reports whether the result holds a value.
func (r Result[T]) IsOK() bool { return r.ok }

// Get returns the value and whether it is present.
func (r Result[T]) Get() (T, bool) { return r.value, r.ok }

// OrElse returns the value or def.
func (r Result[T]) OrElse(def T) T {
	if r.ok {
		return r.value
	}
	return def
}

// Reason returns the soft failure reason, if any.
func (r Result[T]) Reason() Reason { return r.reason }

// Err returns the unexpected error, if any.
func (r Result[T]) Err() error { return r.err }

// Label is a short metric label: empty for OK, the reason for soft
// failures, "error" otherwise.
func (r Result[T]) Label() string {
	switch {
	case r.ok:
		return ""
	case r.reason != "":
		return string(r.reason)
	default:
		return "error"
	}
}
