package models

import "errors"

// Domain error taxonomy. Handlers map these to HTTP statuses with
// errors.Is; the stores and services never touch status codes.
var (
	ErrNotFound          = errors.New("not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidCredential = errors.New("invalid credential")
	ErrEmptyOrder        = errors.New("empty order")
	ErrValidation        = errors.New("validation error")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrUsernameTaken     = errors.New("username already exists")
)
