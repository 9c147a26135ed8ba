package auth

import (
	"context"

	"github.com/go-kratos/kratos/v2/errors"
)

// context keys
type contextKey string

const (
	// UserIDKey holds the authenticated user's id (string UUID)
	UserIDKey contextKey = "user_id"
	// UserEmailKey holds the authenticated user's email
	UserEmailKey contextKey = "user_email"
	// UserRoleKey holds the authenticated user's role
	UserRoleKey contextKey = "user_role"
)

// Role is a user role
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// WithIdentity returns a context carrying the given identity.
func WithIdentity(ctx context.Context, uid, email string, role Role) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, uid)
	ctx = context.WithValue(ctx, UserEmailKey, email)
	ctx = context.WithValue(ctx, UserRoleKey, role)
	return ctx
}

// GetUIDFromContext returns the authenticated user's id.
func GetUIDFromContext(ctx context.Context) (string, bool) {
	uid, ok := ctx.Value(UserIDKey).(string)
	return uid, ok && uid != ""
}

// GetEmailFromContext returns the authenticated user's email.
func GetEmailFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(UserEmailKey).(string)
	return email, ok
}

// GetRoleFromContext returns the authenticated user's role.
func GetRoleFromContext(ctx context.Context) (Role, bool) {
	role, ok := ctx.Value(UserRoleKey).(Role)
	return role, ok
}

// IsAdmin reports whether the current user is an administrator.
func IsAdmin(ctx context.Context) bool {
	role, ok := GetRoleFromContext(ctx)
	return ok && role == RoleAdmin
}

// RequireUser returns the authenticated user's id or an Unauthorized error.
func RequireUser(ctx context.Context) (string, error) {
	uid, ok := GetUIDFromContext(ctx)
	if !ok {
		return "", errors.Unauthorized("UNAUTHORIZED", "authentication required")
	}
	return uid, nil
}

// RequireAdmin fails unless the current user is an administrator.
func RequireAdmin(ctx context.Context) error {
	if _, ok := GetUIDFromContext(ctx); !ok {
		return errors.Unauthorized("UNAUTHORIZED", "authentication required")
	}
	if !IsAdmin(ctx) {
		return errors.Forbidden("FORBIDDEN", "permission denied: administrator role required")
	}
	return nil
}

// CheckOwnership checks whether the current user may access the given resource.
func CheckOwnership(ctx context.Context, resourceUID string) error {
	currentUID, ok := GetUIDFromContext(ctx)
	if !ok {
		return errors.Unauthorized("UNAUTHORIZED", "authentication required")
	}

	// admins can access everything
	if IsAdmin(ctx) {
		return nil
	}

	// regular users can only access their own resources
	if currentUID != resourceUID {
		return errors.Forbidden("FORBIDDEN", "permission denied: you can only access your own resources")
	}

	return nil
}
