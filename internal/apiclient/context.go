package apiclient

import (
	"context"
	"net/http"
)

type ctxKey int

const (
	requestKey ctxKey = iota
	requestIDKey
)

// WithRequest binds the incoming request whose cookies carry the token.
// The binding ends with the request's context.
func WithRequest(ctx context.Context, r *http.Request) context.Context {
	return context.WithValue(ctx, requestKey, r)
}

// RequestFrom returns the request bound by WithRequest, if any.
func RequestFrom(ctx context.Context) *http.Request {
	r, _ := ctx.Value(requestKey).(*http.Request)
	return r
}

// WithRequestID sets the id forwarded in X-Request-ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
