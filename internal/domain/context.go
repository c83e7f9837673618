package domain

import "context"

// DefaultActorID is used when no actor is attached to the context.
const DefaultActorID = "USER"

type ctxKey int

const (
	actorKey ctxKey = iota
	requestIDKey
)

// WithActor attaches the acting user id to ctx.
func WithActor(ctx context.Context, actorID string) context.Context {
	if actorID == "" {
		return ctx
	}
	return context.WithValue(ctx, actorKey, actorID)
}

// ActorFromContext returns the acting user id, or DefaultActorID.
func ActorFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(actorKey).(string); ok && v != "" {
		return v
	}
	return DefaultActorID
}

// WithRequestID attaches a request id to ctx.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestIDFromContext returns the request id attached to ctx, if any.
func RequestIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey).(string)
	return v
}
