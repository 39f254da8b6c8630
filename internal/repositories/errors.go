package repositories

import "errors"

// Sentinel errors shared by all repository implementations. Callers match
// them with errors.Is after the implementations wrap them with context.
var (
	ErrNotFound             = errors.New("not found")
	ErrInsufficientStock    = errors.New("insufficient stock")
	ErrSessionRefAlreadySet = errors.New("payment session reference already set")
)
