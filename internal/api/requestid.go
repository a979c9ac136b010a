package api

import "context"

type ctxKey string

const requestIDKey ctxKey = "request_id"

// WithRequestID returns a ctx whose outbound backend calls carry id as
// their X-Request-ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

func RequestIDFromContext(ctx context.Context) string {
	if requestID, ok := ctx.Value(requestIDKey).(string); ok {
		return requestID
	}
	return ""
}
