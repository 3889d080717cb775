package models

import "errors"

// Business-rule rejections are expected outcomes, returned to callers and
// rendered directly to the end user. They are never retried.
var (
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrStoreNotSellable   = errors.New("store is not approved for selling")
	ErrOrderLimitExceeded = errors.New("too many unpaid orders")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrInvalidQuantity    = errors.New("invalid quantity")
)

// ErrUnavailable is surfaced after bounded retries of a transient storage
// fault have been exhausted. The caller should ask the user to retry shortly.
var ErrUnavailable = errors.New("service temporarily unavailable")

// ErrNotFound is returned by repositories when the requested row does not exist.
var ErrNotFound = errors.New("record not found")
