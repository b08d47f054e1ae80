// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package ctxutil stores and retrieves per-request values (request ID, logger,
// principal) on a [context.Context].
//
// Keys are unexported so no other package can read or overwrite them directly.
package ctxutil

import (
	"context"
	"log/slog"

	"github.com/taibuivan/vidora/internal/platform/identity"
)

type key int

const (
	requestIDKey key = iota
	loggerKey
	principalKey
)

// # Request Tracing

// WithRequestID returns a new context with the provided request ID attached.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// GetRequestID retrieves the request ID from the context.
// Returns an empty string if not found.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// # Structured Logging

// WithLogger returns a new context with the provided logger attached.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// GetLogger retrieves the logger from the context.
// If no logger is found, it returns the global default logger.
func GetLogger(ctx context.Context) *slog.Logger {
	logger, ok := ctx.Value(loggerKey).(*slog.Logger)
	if !ok || logger == nil {
		return slog.Default()
	}
	return logger
}

// # Identity & Access

// WithPrincipal returns a new context with the resolved principal attached.
func WithPrincipal(ctx context.Context, principal *identity.Principal) context.Context {
	return context.WithValue(ctx, principalKey, principal)
}

// GetPrincipal retrieves the [*identity.Principal] from the [context.Context].
// Returns nil for anonymous requests.
func GetPrincipal(ctx context.Context) *identity.Principal {
	principal, ok := ctx.Value(principalKey).(*identity.Principal)
	if !ok {
		return nil
	}
	return principal
}

// RequestContext assembles the typed [identity.RequestContext] for the current request.
func RequestContext(ctx context.Context) identity.RequestContext {
	return identity.RequestContext{
		RequestID: GetRequestID(ctx),
		Principal: GetPrincipal(ctx),
	}
}
