package database

import (
	"context"
	"time"
)

// Timeouts for operations that run outside a request context, like
// connection setup and index creation.
const (
	// ShortTimeout for single-document work and index creation
	ShortTimeout = 5 * time.Second

	// MediumTimeout for connection setup and multi-document queries
	MediumTimeout = 10 * time.Second
)

// WithShortTimeout creates a context with ShortTimeout
func WithShortTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), ShortTimeout)
}

// WithMediumTimeout creates a context with MediumTimeout
func WithMediumTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), MediumTimeout)
}
