package service

import "errors"

// ErrNotFound indicates the provider call succeeded but no account matched
// the configured institution. This is a misconfiguration signal, distinct
// from a transient provider failure.
var ErrNotFound = errors.New("no matching account")

// ErrValidation indicates malformed onboarding input, rejected before any
// provider call.
var ErrValidation = errors.New("invalid onboarding input")
