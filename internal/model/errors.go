package model

import "errors"

// Common errors used across the application
var (
	// Remote API errors
	ErrNotFound      = errors.New("player not found")
	ErrRateLimited   = errors.New("rate limited by remote api")
	ErrInvalidAPIKey = errors.New("invalid api key")
	ErrMissingAPIKey = errors.New("api key not configured")

	// Storage errors
	ErrAliasNotFound    = errors.New("alias entry not found")
	ErrSettingsNotFound = errors.New("settings not found")
)
