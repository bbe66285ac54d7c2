package utils

import "time"

// Application Constants
const (
	AppName    = "DriveBetter"
	AppVersion = "1.0.0"

	// Pagination
	DefaultPageSize = 20
	MaxPageSize     = 100
	MinPageSize     = 1

	// Share distribution
	ShareTokenLength      = 32
	MaxShareGroupTargets  = 50
	MaxShareDriverTargets = 100

	// Rate limiting
	DefaultRateLimit  = 100
	ClaimRateLimit    = 30
	RateLimitWindow   = time.Minute
)

// HTTP Status Messages
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Error Messages
const (
	ErrInvalidInput     = "invalid input"
	ErrInternalServer   = "internal server error"
	ErrUnauthorized     = "unauthorized"
	ErrForbidden        = "forbidden"
	ErrNotFound         = "not found"
	ErrConflict         = "conflict"
	ErrValidationFailed = "validation failed"
	ErrRideNotFound     = "ride not found"
	ErrShareNotFound    = "share not found"
)
