package httputil

import (
	"context"
	"net/http"
)

// contextKey is unexported so other packages cannot collide with values
// stashed on the request context.
type contextKey int

// userIDKey carries the authenticated owner id that scopes every folder
// operation.
const userIDKey contextKey = iota

// WithUserID returns a request whose context carries the owner id
// extracted from the verified token.
func WithUserID(r *http.Request, userID string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), userIDKey, userID))
}

// GetUserID returns the owner id set by the auth middleware, or "" when
// the request never passed through it.
func GetUserID(r *http.Request) string {
	userID, _ := r.Context().Value(userIDKey).(string)
	return userID
}
