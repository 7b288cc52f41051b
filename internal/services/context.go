package services

import "context"

type contextKey string

const (
	batchIDKey  contextKey = "batch_id"
	itemNameKey contextKey = "item"
)

// WithBatchID annotates context with a rename batch or download identifier.
func WithBatchID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, batchIDKey, id)
}

// BatchIDFromContext extracts the batch identifier if present.
func BatchIDFromContext(ctx context.Context) (string, bool) {
	if str, ok := ctx.Value(batchIDKey).(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithItemName annotates context with the media item currently being processed.
func WithItemName(ctx context.Context, name string) context.Context {
	if name == "" {
		return ctx
	}
	return context.WithValue(ctx, itemNameKey, name)
}

// ItemNameFromContext returns the media item name if present.
func ItemNameFromContext(ctx context.Context) (string, bool) {
	if str, ok := ctx.Value(itemNameKey).(string); ok && str != "" {
		return str, true
	}
	return "", false
}
