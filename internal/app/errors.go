package app

import "errors"

var (
	// ErrEmptyMessage rejects chat requests whose message is empty after
	// trimming.
	ErrEmptyMessage = errors.New("message cannot be empty")
	// ErrStoreNotConfigured signals that persistence is required but no
	// store was configured.
	ErrStoreNotConfigured = errors.New("database not configured")
)
