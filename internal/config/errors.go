package config

import "errors"

// Common errors returned by the config package.
var (
	// ErrMissingValue is returned when a required setting is absent.
	ErrMissingValue = errors.New("missing configuration value")
	// ErrInvalidValue is returned when a setting cannot be used as given.
	ErrInvalidValue = errors.New("invalid configuration value")
)
