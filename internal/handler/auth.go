package handler

import (
	"net/http"

	"github.com/bisnisbaik/backend/internal/contextkeys"
	"github.com/bisnisbaik/backend/internal/domain"
	"github.com/bisnisbaik/backend/internal/service"
	"github.com/go-chi/chi/v5"
)

// AuthHandler handles authentication HTTP endpoints.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := DecodeJSON(r, &req); err != nil {
		Error(w, err)
		return
	}

	resp, err := h.auth.Register(r.Context(), &req)
	if err != nil {
		Error(w, err)
		return
	}

	JSON(w, http.StatusCreated, resp)
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := DecodeJSON(r, &req); err != nil {
		Error(w, err)
		return
	}

	resp, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		Error(w, err)
		return
	}

	JSON(w, http.StatusOK, resp)
}

// Logout handles POST /api/auth/logout. Sessions are stateless JWTs; the
// client discards the token.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, _ := r.Context().Value(contextkeys.UserID).(string)

	user, err := h.auth.GetUserByID(r.Context(), userID)
	if err != nil {
		Error(w, err)
		return
	}

	JSON(w, http.StatusOK, user)
}

// UpdateProfile handles PUT /api/auth/profile.
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, _ := r.Context().Value(contextkeys.UserID).(string)

	var req domain.UpdateProfileRequest
	if err := DecodeJSON(r, &req); err != nil {
		Error(w, err)
		return
	}

	user, err := h.auth.UpdateProfile(r.Context(), userID, &req)
	if err != nil {
		Error(w, err)
		return
	}

	JSON(w, http.StatusOK, user)
}

// OAuthBegin handles GET /api/auth/oauth/{provider}: returns the provider
// redirect URL for the client to navigate to.
func (h *AuthHandler) OAuthBegin(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")

	redirect, err := h.auth.BeginOAuth(provider)
	if err != nil {
		Error(w, err)
		return
	}

	JSON(w, http.StatusOK, map[string]string{"url": redirect})
}

// MockProvider handles GET /mock-oauth/{provider}: stands in for the real
// OAuth consent screen. It mints a one-time code for the given account and
// redirects back to the app callback, which then calls Exchange.
func (h *AuthHandler) MockProvider(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	redirectTo := r.URL.Query().Get("redirect_to")
	if email == "" || redirectTo == "" {
		Error(w, domain.ErrBadRequest("email and redirect_to are required"))
		return
	}

	code, err := h.auth.MintOAuthCode(r.Context(), email)
	if err != nil {
		Error(w, err)
		return
	}

	http.Redirect(w, r, redirectTo+"?code="+code, http.StatusFound)
}

// Exchange handles POST /api/auth/exchange: trades the one-time code from
// the /auth/callback route for a session.
func (h *AuthHandler) Exchange(w http.ResponseWriter, r *http.Request) {
	var req domain.ExchangeRequest
	if err := DecodeJSON(r, &req); err != nil {
		Error(w, err)
		return
	}
	if req.Code == "" {
		Error(w, domain.ErrBadRequest("code is required"))
		return
	}

	resp, err := h.auth.ExchangeCode(r.Context(), req.Code)
	if err != nil {
		Error(w, err)
		return
	}

	JSON(w, http.StatusOK, resp)
}

// RequestPasswordReset handles POST /api/auth/reset-password.
func (h *AuthHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req domain.ResetPasswordRequest
	if err := DecodeJSON(r, &req); err != nil {
		Error(w, err)
		return
	}
	if req.Email == "" {
		Error(w, domain.ErrBadRequest("email is required"))
		return
	}

	if err := h.auth.RequestPasswordReset(r.Context(), req.Email); err != nil {
		Error(w, err)
		return
	}

	// Always 200 regardless of account existence.
	JSON(w, http.StatusOK, map[string]bool{"success": true})
}

// ConfirmPasswordReset handles POST /api/auth/update-password.
func (h *AuthHandler) ConfirmPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code     string `json:"code"`
		Password string `json:"password"`
	}
	if err := DecodeJSON(r, &req); err != nil {
		Error(w, err)
		return
	}

	if err := h.auth.ResetPassword(r.Context(), req.Code, req.Password); err != nil {
		Error(w, err)
		return
	}

	JSON(w, http.StatusOK, map[string]bool{"success": true})
}
