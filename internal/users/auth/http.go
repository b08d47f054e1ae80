// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/vidora/internal/platform/constants"
	requestutil "github.com/taibuivan/vidora/internal/platform/request"
	"github.com/taibuivan/vidora/internal/platform/respond"
	"github.com/taibuivan/vidora/internal/platform/validate"
)

// # Definitions & Constructors

// CookieOptions controls how auth cookies are written.
type CookieOptions struct {
	Secure bool
}

// Handler implements authentication-related HTTP endpoints.
//
// # Scope
//
// This handler manages the user lifecycle entry points (registration, login,
// refresh, logout) and the caller's own profile.
type Handler struct {
	authService *Service
	requireAuth func(http.Handler) http.Handler
	rateLimit   func(http.Handler) http.Handler
	cookies     CookieOptions
}

// NewHandler constructs a new [Handler].
//
// requireAuth guards the protected routes; rateLimit guards the credential
// endpoints and may be nil.
func NewHandler(service *Service, requireAuth, rateLimit func(http.Handler) http.Handler, cookies CookieOptions) *Handler {
	if rateLimit == nil {
		rateLimit = func(next http.Handler) http.Handler { return next }
	}
	return &Handler{authService: service, requireAuth: requireAuth, rateLimit: rateLimit, cookies: cookies}
}

// Routes returns a [chi.Router] configured with authentication-specific routes.
//
// # Endpoints
//   - POST /register        : Creates a new account.
//   - POST /login           : Authenticates and issues a token pair.
//   - POST /refresh         : Rotates the refresh token.
//   - POST /logout          : Revokes the session.
//   - GET  /me              : Returns the caller's profile.
//   - POST /change-password : Replaces the password and re-issues tokens.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public endpoints
	router.Group(func(r chi.Router) {
		r.Use(handler.rateLimit)
		r.Post("/register", handler.register)
		r.Post("/login", handler.login)
		r.Post("/refresh", handler.refresh)
	})

	// Protected endpoints
	router.Group(func(r chi.Router) {
		r.Use(handler.requireAuth)
		r.Post("/logout", handler.logout)
		r.Get("/me", handler.me)
		r.Post("/change-password", handler.changePassword)
	})

	return router
}

// # Request Payloads

type registerRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

type loginRequest struct {
	Login    string `json:"login"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// sessionResponse is returned by login and refresh.
type sessionResponse struct {
	User         *User     `json:"user"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresAt    time.Time `json:"expires_at"`
}

func newSessionResponse(result *LoginResult) sessionResponse {
	return sessionResponse{
		User:         result.User,
		AccessToken:  result.Tokens.AccessToken,
		RefreshToken: result.Tokens.RefreshToken,
		TokenType:    "Bearer",
		ExpiresAt:    result.Tokens.AccessExpiresAt,
	}
}

/*
Register handles the creation of a new user account.

POST /api/v1/auth/register

Response:
  - 201: User: Created user profile
  - 400: ValidationError: Bad input
  - 409: Conflict: Username or Email already exists
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input registerRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.authService.Register(request.Context(), RegisterInput{
		Username:    input.Username,
		Email:       input.Email,
		Password:    input.Password,
		DisplayName: input.DisplayName,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, user)
}

/*
Login authenticates a user and establishes a session.

POST /api/v1/auth/login

Description: Accepts "login", "email" or "username" plus "password". Sets the
HTTP-only accessToken and refreshToken cookies and returns both tokens.

Response:
  - 200: sessionResponse
  - 401: Unauthorized: Invalid credentials
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	login := input.Login
	if login == "" {
		login = input.Email
	}
	if login == "" {
		login = input.Username
	}

	validator := &validate.Validator{}
	validator.Required(FieldLogin, login).Required(FieldPassword, input.Password)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.authService.Login(request.Context(), LoginInput{Login: login, Password: input.Password})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.setSessionCookies(writer, result.Tokens)
	respond.OK(writer, newSessionResponse(result))
}

/*
Refresh rotates the caller's refresh token.

POST /api/v1/auth/refresh

Description: Reads the refresh token from the refreshToken cookie or the
"refresh_token" body field.

Response:
  - 200: sessionResponse
  - 401: Unauthorized or TOKEN_REUSE_DETECTED
*/
func (handler *Handler) refresh(writer http.ResponseWriter, request *http.Request) {
	refreshToken := ""
	if cookie, err := request.Cookie(constants.RefreshTokenCookieName); err == nil {
		refreshToken = cookie.Value
	}

	if refreshToken == "" && request.ContentLength != 0 {
		var input refreshRequest
		if err := requestutil.DecodeJSON(request, &input); err != nil {
			respond.Error(writer, request, err)
			return
		}
		refreshToken = input.RefreshToken
	}

	result, err := handler.authService.Refresh(request.Context(), refreshToken)
	if err != nil {
		// The presented token is dead whatever the reason; drop the stale cookies.
		handler.clearSessionCookies(writer)
		respond.Error(writer, request, err)
		return
	}

	handler.setSessionCookies(writer, result.Tokens)
	respond.OK(writer, newSessionResponse(result))
}

/*
Logout terminates the current user session.

POST /api/v1/auth/logout

Response:
  - 204: No Content: Session terminated
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	if err := handler.authService.Logout(request.Context(), requestutil.Context(request)); err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.clearSessionCookies(writer)
	respond.NoContent(writer)
}

/*
Me returns the authenticated caller's profile.

GET /api/v1/auth/me
*/
func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	user, err := handler.authService.Me(request.Context(), requestutil.Context(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

/*
ChangePassword updates the authenticated user's password.

POST /api/v1/auth/change-password

Response:
  - 200: New token pair; all earlier refresh tokens are invalid
  - 401: Unauthorized: Wrong current password
  - 400: ValidationError
*/
func (handler *Handler) changePassword(writer http.ResponseWriter, request *http.Request) {
	var input changePasswordRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	tokens, err := handler.authService.ChangePassword(
		request.Context(),
		requestutil.Context(request),
		input.CurrentPassword,
		input.NewPassword,
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.setSessionCookies(writer, tokens)
	respond.OKMessage(writer, tokens, "Password changed successfully")
}

// # Cookies

func (handler *Handler) setSessionCookies(writer http.ResponseWriter, tokens *TokenPair) {
	http.SetCookie(writer, handler.cookie(constants.AccessTokenCookieName, tokens.AccessToken, tokens.AccessExpiresAt))
	http.SetCookie(writer, handler.cookie(constants.RefreshTokenCookieName, tokens.RefreshToken, tokens.RefreshExpiresAt))
}

func (handler *Handler) clearSessionCookies(writer http.ResponseWriter) {
	for _, name := range []string{constants.AccessTokenCookieName, constants.RefreshTokenCookieName} {
		cookie := handler.cookie(name, "", time.Time{})
		cookie.MaxAge = -1
		http.SetCookie(writer, cookie)
	}
}

func (handler *Handler) cookie(name, value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     constants.CookiePath,
		Expires:  expires,
		Secure:   handler.cookies.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	}
}
