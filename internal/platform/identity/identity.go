// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package identity defines the read-only view of an authenticated caller.

It sits below every domain package so that the Auth Resolver, middleware and
handlers can share one principal type without importing the credential store.

Architecture:

  - Principal: The allow-listed projection of a user account (never the password hash).
  - RequestContext: The typed per-request value handlers thread into service calls.
*/
package identity

// # Principal

// Principal is the resolved identity of an authenticated caller.
type Principal struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

// # Request Context

// RequestContext carries the per-request values a service call may depend on.
//
// A nil Principal means the caller is anonymous.
type RequestContext struct {
	RequestID string
	Principal *Principal
}

// Anonymous returns a RequestContext without a resolved principal.
func Anonymous(requestID string) RequestContext {
	return RequestContext{RequestID: requestID}
}

// IsAuthenticated reports whether a principal was resolved for the request.
func (rc RequestContext) IsAuthenticated() bool {
	return rc.Principal != nil
}

// ActorID returns the principal id, or "" for anonymous callers.
func (rc RequestContext) ActorID() string {
	if rc.Principal == nil {
		return ""
	}
	return rc.Principal.ID
}
