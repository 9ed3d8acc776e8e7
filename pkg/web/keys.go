package web

import "context"

type requestIDKey struct{}

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// GetRequestID retrieves the request ID from the context.
// Returns the request ID and a boolean indicating whether it was found.
func GetRequestID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey{}).(string)
	return id, ok
}

type userKey struct{}

// WithUser adds the authenticated username and role to the context.
func WithUser(ctx context.Context, username, role string) context.Context {
	return context.WithValue(ctx, userKey{}, [2]string{username, role})
}

// GetUser retrieves the authenticated username and role from the context.
// Returns a boolean indicating whether they were found.
func GetUser(ctx context.Context) (username, role string, ok bool) {
	u, ok := ctx.Value(userKey{}).([2]string)
	if !ok {
		return "", "", false
	}
	return u[0], u[1], true
}
