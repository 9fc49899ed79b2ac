// Package domain provides shared domain-level sentinel errors.
package domain

import "errors"

// ErrNotFound indicates the requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrValidation indicates a request failed domain validation.
var ErrValidation = errors.New("validation failed")

// ErrConflict indicates a write would violate a uniqueness guarantee,
// such as storing a second result for the same task.
var ErrConflict = errors.New("conflict: resource already exists")

// ErrQueueFull indicates the work queue rejected a task due to backpressure.
var ErrQueueFull = errors.New("work queue is full")

// ErrBackend indicates the completion backend is unreachable or failing.
// Callers treat it as transient: the task fails, the process does not.
var ErrBackend = errors.New("completion backend unavailable")
