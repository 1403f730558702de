package commons

import "errors"

var ErrRecordNotFound = errors.New("Record not found")
var ErrInsufficientBalance = errors.New("Insufficient balance")
var ErrInvalidAmount = errors.New("Amount is below the allowed minimum")
var ErrInvalidOperation = errors.New("Operation is not allowed")
var ErrUnauthorized = errors.New("Unauthorized")
var ErrUpstreamFailure = errors.New("Upstream gateway failure")

// ErrConflict is reserved. Duplicate webhook delivery is treated as success,
// not conflict, so nothing returns it today.
var ErrConflict = errors.New("Conflict")
