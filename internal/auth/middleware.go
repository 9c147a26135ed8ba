package auth

import (
	"context"

	"github.com/go-kratos/kratos/v2/middleware"
	"github.com/go-kratos/kratos/v2/transport"
)

// Identity headers set by the upstream gateway after it verifies the session.
const (
	HeaderUserID    = "X-User-Id"
	HeaderUserEmail = "X-User-Email"
	HeaderUserRole  = "X-User-Role"
)

// Middleware extracts the caller identity from request headers into the
// context. Authentication itself happens upstream; here a missing header just
// yields an anonymous context and endpoint handlers decide what they require.
func Middleware() middleware.Middleware {
	return func(handler middleware.Handler) middleware.Handler {
		return func(ctx context.Context, req interface{}) (interface{}, error) {
			if tr, ok := transport.FromServerContext(ctx); ok {
				header := tr.RequestHeader()
				role := RoleUser
				if Role(header.Get(HeaderUserRole)) == RoleAdmin {
					role = RoleAdmin
				}
				ctx = WithIdentity(ctx, header.Get(HeaderUserID), header.Get(HeaderUserEmail), role)
			}
			return handler(ctx, req)
		}
	}
}
