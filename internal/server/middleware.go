package server

import (
	"context"
	"strings"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/middleware"
	"github.com/go-kratos/kratos/v2/transport"

	"catalog/internal/auth"
)

type access int

const (
	// accessOptional serves anonymous callers; a valid token adds the
	// caller's own rating to the response.
	accessOptional access = iota
	accessUser
	accessEditor
	accessAdmin
)

var operationAccess = map[string]access{
	OperationCreateMovie:    accessEditor,
	OperationGetMovie:       accessOptional,
	OperationListMovies:     accessOptional,
	OperationUpdateMovie:    accessEditor,
	OperationDeleteMovie:    accessAdmin,
	OperationRateMovie:      accessUser,
	OperationDeleteRating:   accessUser,
	OperationGetUserRatings: accessUser,
}

// accessFor defaults unknown operations to requiring a user.
func accessFor(operation string) access {
	if a, ok := operationAccess[operation]; ok {
		return a
	}
	return accessUser
}

// AuthMiddleware validates Bearer tokens and enforces the per-operation access
// policy. The authenticated identity is attached to the request context.
func AuthMiddleware(tokens *auth.TokenManager, logger log.Logger) middleware.Middleware {
	helper := log.NewHelper(logger)
	return func(handler middleware.Handler) middleware.Handler {
		return func(ctx context.Context, req any) (any, error) {
			tr, ok := transport.FromServerContext(ctx)
			if !ok {
				return nil, errors.Unauthorized("UNAUTHORIZED", "missing transport info")
			}
			policy := accessFor(tr.Operation())

			authHeader := tr.RequestHeader().Get("Authorization")
			if authHeader == "" {
				if policy == accessOptional {
					return handler(ctx, req)
				}
				return nil, errors.Unauthorized("UNAUTHORIZED", "missing Authorization header")
			}

			token, ok := bearerToken(authHeader)
			if !ok {
				return nil, errors.Unauthorized("UNAUTHORIZED", "invalid Authorization header format")
			}
			claims, err := tokens.Validate(token)
			if err != nil {
				helper.WithContext(ctx).Debugf("rejected token for %s: %v", tr.Operation(), err)
				return nil, errors.Unauthorized("UNAUTHORIZED", "invalid or expired token")
			}

			id := claims.Identity()
			switch policy {
			case accessEditor:
				if !id.CanEditCatalog() {
					return nil, errors.Forbidden("FORBIDDEN", "trusted member or admin required")
				}
			case accessAdmin:
				if !id.IsAdmin() {
					return nil, errors.Forbidden("FORBIDDEN", "admin required")
				}
			}

			return handler(auth.NewContext(ctx, id), req)
		}
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
