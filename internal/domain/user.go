package domain

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered user with their profile row.
type User struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	Password         string    `json:"-"` // bcrypt hash, never serialized
	FullName         string    `json:"fullName"`
	Phone            string    `json:"phone,omitempty"`
	AvatarURL        string    `json:"avatarUrl,omitempty"`
	Role             string    `json:"role"`
	IsVerified       bool      `json:"isVerified"`
	SubscriptionTier string    `json:"subscriptionTier"`
	LastLogin        time.Time `json:"lastLogin"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// RegisterRequest is the validated input for signing up.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"fullName" validate:"required,min=1,max=100"`
	Phone    string `json:"phone" validate:"omitempty,min=8,max=20"`
}

// LoginRequest is the validated input for logging in.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// SessionResponse is returned after a successful sign-in or code exchange.
type SessionResponse struct {
	Token string      `json:"token"`
	User  SessionUser `json:"user"`
}

// SessionUser is the user info embedded in a session response.
type SessionUser struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
}

// UpdateProfileRequest is the validated input for editing the profile row.
type UpdateProfileRequest struct {
	FullName  string `json:"fullName" validate:"omitempty,min=1,max=100"`
	Phone     string `json:"phone" validate:"omitempty,min=8,max=20"`
	AvatarURL string `json:"avatarUrl" validate:"omitempty,url"`
}

// ResetPasswordRequest asks for a password-reset email.
type ResetPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ExchangeRequest trades a one-time auth code for a session.
type ExchangeRequest struct {
	Code string `json:"code" validate:"required"`
}

// UserResponse is the safe API response for a user (no password).
type UserResponse struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	FullName         string    `json:"fullName"`
	Phone            string    `json:"phone,omitempty"`
	AvatarURL        string    `json:"avatarUrl,omitempty"`
	Role             string    `json:"role"`
	IsVerified       bool      `json:"isVerified"`
	SubscriptionTier string    `json:"subscriptionTier"`
	LastLogin        time.Time `json:"lastLogin"`
	CreatedAt        time.Time `json:"createdAt"`
}

// ToResponse converts a User to its API representation.
func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:               u.ID,
		Email:            u.Email,
		FullName:         u.FullName,
		Phone:            u.Phone,
		AvatarURL:        u.AvatarURL,
		Role:             u.Role,
		IsVerified:       u.IsVerified,
		SubscriptionTier: u.SubscriptionTier,
		LastLogin:        u.LastLogin,
		CreatedAt:        u.CreatedAt,
	}
}

// JWTClaims represents the JWT payload.
type JWTClaims struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// AuthCode is a single-use code minted by the OAuth callback and traded
// for a session on /api/auth/exchange.
type AuthCode struct {
	Code      string
	UserID    string
	Purpose   string // "oauth" or "password-reset"
	ExpiresAt time.Time
	Consumed  bool
}

// Auth code purposes.
const (
	CodePurposeOAuth         = "oauth"
	CodePurposePasswordReset = "password-reset"
)

// NewUserID generates a new UUID for a user.
func NewUserID() string {
	return uuid.New().String()
}
