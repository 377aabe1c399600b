package divreminder

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	// SyncRunIDKey is the context key for the ID (uuid.UUID) of the running dividend import
	SyncRunIDKey contextKey = "SyncRunID"
	// SyncURLKey is the context key for the URL (string) the running import scrapes
	SyncURLKey contextKey = "SyncURL"
)

// ContextWithSyncRun returns a context carrying the import run ID and URL
func ContextWithSyncRun(ctx context.Context, id uuid.UUID, url string) context.Context {
	ctx = context.WithValue(ctx, SyncRunIDKey, id)
	return context.WithValue(ctx, SyncURLKey, url)
}

// SyncRunIDFromContext returns the import run ID from the context if it exists
func SyncRunIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(SyncRunIDKey).(uuid.UUID)
	return id, ok
}

// SyncURLFromContext returns the import URL from the context if it exists
func SyncURLFromContext(ctx context.Context) (string, bool) {
	url, ok := ctx.Value(SyncURLKey).(string)
	return url, ok
}
