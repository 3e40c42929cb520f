// Package session carries the authenticated caller explicitly through handlers and
// usecases instead of reading it from ambient state.
package session

import (
	"context"

	"csystem-sip/internal/domain/entity"

	"github.com/google/uuid"
)

// Session is the authenticated caller of a request
type Session struct {
	UserID  uuid.UUID
	Email   string
	RoleID  int
	TokenID string
}

// IsAdmin reports whether the caller holds an administrative role
func (s Session) IsAdmin() bool {
	return entity.IsAdminRole(s.RoleID)
}

// HasRole reports whether the caller holds any of the given roles
func (s Session) HasRole(roleIDs ...int) bool {
	for _, id := range roleIDs {
		if s.RoleID == id {
			return true
		}
	}
	return false
}

type contextKey struct{}

// WithSession stores the session on a request context. Only the auth middleware
// should call this.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext extracts the session set by the auth middleware
func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(contextKey{}).(Session)
	return s, ok
}
