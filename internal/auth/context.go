package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/straye-as/quotation-api/internal/domain"
)

// UserContext holds the authenticated caller
type UserContext struct {
	// UserID is the id of the users row; uuid.Nil for the system API key
	UserID      uuid.UUID
	DisplayName string
	Email       string
	Role        domain.UserRole
	IsApproved  bool
	IsSystem    bool
}

type contextKey string

const userContextKey contextKey = "userContext"

// WithUserContext adds user context to the context
func WithUserContext(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// FromContext extracts user context from the context
func FromContext(ctx context.Context) (*UserContext, bool) {
	user, ok := ctx.Value(userContextKey).(*UserContext)
	return user, ok
}

// IsAdmin reports whether the caller may perform administrative actions
func (u *UserContext) IsAdmin() bool {
	return u.IsSystem || u.Role == domain.UserRoleAdmin
}

// EditorID returns the id to record as a quotation's editor, or nil for the system caller
func (u *UserContext) EditorID() *uuid.UUID {
	if u == nil || u.IsSystem || u.UserID == uuid.Nil {
		return nil
	}
	id := u.UserID
	return &id
}

// SystemUser is the caller authenticated by API key
func SystemUser() *UserContext {
	return &UserContext{
		UserID:      uuid.Nil,
		DisplayName: "System",
		Email:       "system@quotation.local",
		Role:        domain.UserRoleAdmin,
		IsApproved:  true,
		IsSystem:    true,
	}
}

// FromUser builds the context for an approved users row
func FromUser(u *domain.User) *UserContext {
	return &UserContext{
		UserID:      u.ID,
		DisplayName: u.Name,
		Email:       u.Email,
		Role:        u.Role,
		IsApproved:  u.IsApproved,
	}
}
