// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/taibuivan/vidora/internal/platform/apperr"
	"github.com/taibuivan/vidora/internal/platform/constants"
	"github.com/taibuivan/vidora/internal/platform/ctxutil"
	"github.com/taibuivan/vidora/internal/platform/identity"
	"github.com/taibuivan/vidora/internal/platform/respond"
)

// PrincipalResolver turns a presented access token into a principal.
//
// It must return an Unauthorized [apperr.AppError] for invalid tokens and for
// subjects that no longer exist. Any other error is treated as a server fault.
type PrincipalResolver interface {
	Resolve(ctx context.Context, accessToken string) (*identity.Principal, error)
}

// AccessToken extracts the access token from the request.
//
// A Bearer Authorization header wins over the cookie. Other schemes (Basic,
// Digest) are ignored so a proxy's credentials never mask the session cookie.
// An empty string means no credential was presented.
func AccessToken(request *http.Request) string {
	header := request.Header.Get(constants.HeaderAuthorization)
	if len(header) > len(constants.BearerPrefix) && strings.EqualFold(header[:len(constants.BearerPrefix)], constants.BearerPrefix) {
		if token := strings.TrimSpace(header[len(constants.BearerPrefix):]); token != "" {
			return token
		}
	}

	if cookie, err := request.Cookie(constants.AccessTokenCookieName); err == nil {
		return cookie.Value
	}

	return ""
}

// RequireAuth is the strict resolver mode.
//
// # Flow
//  1. Extract the token from header or cookie.
//  2. Resolve it to a principal via [PrincipalResolver].
//  3. Missing token, invalid token or unknown subject abort with 401.
//  4. Attach the principal to the request context.
func RequireAuth(resolver PrincipalResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			token := AccessToken(request)
			if token == "" {
				respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
				return
			}

			principal, err := resolver.Resolve(request.Context(), token)
			if err != nil {
				respond.Error(writer, request, err)
				return
			}

			ctx := ctxutil.WithPrincipal(request.Context(), principal)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// OptionalAuth is the best-effort resolver mode.
//
// It runs the same extraction and resolution as [RequireAuth] but never
// rejects: any failure leaves the request anonymous.
func OptionalAuth(resolver PrincipalResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			token := AccessToken(request)
			if token == "" {
				next.ServeHTTP(writer, request)
				return
			}

			principal, err := resolver.Resolve(request.Context(), token)
			if err != nil {
				if !apperr.HasCode(err, apperr.CodeUnauthorized) {
					ctxutil.GetLogger(request.Context()).WarnContext(request.Context(), "optional_auth_resolve_failed",
						slog.String("error", err.Error()),
					)
				}
				next.ServeHTTP(writer, request)
				return
			}

			ctx := ctxutil.WithPrincipal(request.Context(), principal)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}
