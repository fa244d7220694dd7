package service

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"time"

	"github.com/bisnisbaik/backend/internal/domain"
	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// UserStore is the persistence surface AuthService needs.
type UserStore interface {
	Create(ctx context.Context, u *domain.User) error
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	Exists(ctx context.Context, email string) (bool, error)
	UpdateProfile(ctx context.Context, id, fullName, phone, avatarURL string) error
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
	UpdatePassword(ctx context.Context, id, hash string) error
	MarkVerified(ctx context.Context, id string) error
}

// AuthCodeStore persists single-use auth codes.
type AuthCodeStore interface {
	Create(ctx context.Context, c *domain.AuthCode) error
	Consume(ctx context.Context, code, purpose string) (*domain.AuthCode, error)
}

// OAuth providers accepted by BeginOAuth.
var oauthProviders = map[string]bool{"google": true, "facebook": true}

const (
	sessionTTL   = 7 * 24 * time.Hour
	oauthCodeTTL = 5 * time.Minute
	resetCodeTTL = 30 * time.Minute
)

// AuthService handles authentication, JWT, and the users profile rows.
type AuthService struct {
	jwtSecret     string
	publicBaseURL string
	adminEmail    string
	adminPassword string
	users         UserStore
	codes         AuthCodeStore
	validate      *validator.Validate
}

// NewAuthService creates a new AuthService.
func NewAuthService(jwtSecret, publicBaseURL, adminEmail, adminPassword string, users UserStore, codes AuthCodeStore) *AuthService {
	return &AuthService{
		jwtSecret:     jwtSecret,
		publicBaseURL: publicBaseURL,
		adminEmail:    adminEmail,
		adminPassword: adminPassword,
		users:         users,
		codes:         codes,
		validate:      validator.New(),
	}
}

// SeedAdmin creates the default admin user if it doesn't exist.
func (s *AuthService) SeedAdmin(ctx context.Context) error {
	exists, err := s.users.Exists(ctx, s.adminEmail)
	if err != nil {
		return fmt.Errorf("failed to check admin existence: %w", err)
	}
	if exists {
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(s.adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	now := time.Now()
	admin := &domain.User{
		ID:               domain.NewUserID(),
		Email:            s.adminEmail,
		Password:         string(hashedPassword),
		FullName:         "Administrator",
		Role:             "admin",
		IsVerified:       true,
		SubscriptionTier: "free",
		LastLogin:        now,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.users.Create(ctx, admin); err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	log.Printf("✅ Admin user created (%s)", s.adminEmail)
	return nil
}

// Register signs up a new user, creates the profile row, and returns a
// session. Email verification is asynchronous; the account starts
// unverified.
func (s *AuthService) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.SessionResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}

	exists, err := s.users.Exists(ctx, req.Email)
	if err != nil {
		return nil, domain.ErrInternal("failed to check user", err)
	}
	if exists {
		return nil, domain.ErrConflict("email already registered")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, domain.ErrInternal("failed to hash password", err)
	}

	now := time.Now()
	user := &domain.User{
		ID:               domain.NewUserID(),
		Email:            req.Email,
		Password:         string(hashedPassword),
		FullName:         req.FullName,
		Phone:            req.Phone,
		Role:             "user",
		IsVerified:       false,
		SubscriptionTier: "free",
		LastLogin:        now,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, domain.ErrInternal("failed to create user", err)
	}

	return s.issueSession(user)
}

// Login validates credentials and returns a session.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.SessionResponse, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, domain.ErrInternal("failed to find user", err)
	}
	if user == nil {
		return nil, domain.ErrUnauthorized("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, domain.ErrUnauthorized("invalid credentials")
	}

	if err := s.users.TouchLastLogin(ctx, user.ID, time.Now()); err != nil {
		log.Printf("failed to touch last_login for %s: %v", user.ID, err)
	}

	return s.issueSession(user)
}

// BeginOAuth returns the provider redirect URL for an OAuth sign-in. The
// mock provider immediately redirects back to /auth/callback with a code.
func (s *AuthService) BeginOAuth(provider string) (string, error) {
	if !oauthProviders[provider] {
		return "", domain.ErrBadRequest("unsupported oauth provider")
	}
	callback := s.publicBaseURL + "/auth/callback"
	return fmt.Sprintf("%s/mock-oauth/%s?redirect_to=%s", s.publicBaseURL, provider, url.QueryEscape(callback)), nil
}

// MintOAuthCode issues the single-use code delivered on the OAuth (or
// email-link) callback for an existing user.
func (s *AuthService) MintOAuthCode(ctx context.Context, email string) (string, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return "", domain.ErrInternal("failed to find user", err)
	}
	if user == nil {
		return "", domain.ErrNotFound("user not found")
	}

	code := uuid.New().String()
	if err := s.codes.Create(ctx, &domain.AuthCode{
		Code:      code,
		UserID:    user.ID,
		Purpose:   domain.CodePurposeOAuth,
		ExpiresAt: time.Now().Add(oauthCodeTTL),
	}); err != nil {
		return "", domain.ErrInternal("failed to store auth code", err)
	}
	return code, nil
}

// ExchangeCode trades a one-time callback code for a session. Consuming a
// code also marks the account's email verified — the code only reaches the
// user through the provider or their inbox.
func (s *AuthService) ExchangeCode(ctx context.Context, code string) (*domain.SessionResponse, error) {
	consumed, err := s.codes.Consume(ctx, code, domain.CodePurposeOAuth)
	if err != nil {
		return nil, domain.ErrInternal("failed to consume auth code", err)
	}
	if consumed == nil {
		return nil, domain.ErrUnauthorized("invalid or expired code")
	}

	user, err := s.users.FindByID(ctx, consumed.UserID)
	if err != nil {
		return nil, domain.ErrInternal("failed to find user", err)
	}
	if user == nil {
		return nil, domain.ErrUnauthorized("invalid or expired code")
	}

	if !user.IsVerified {
		if err := s.users.MarkVerified(ctx, user.ID); err != nil {
			log.Printf("failed to mark %s verified: %v", user.ID, err)
		}
	}
	if err := s.users.TouchLastLogin(ctx, user.ID, time.Now()); err != nil {
		log.Printf("failed to touch last_login for %s: %v", user.ID, err)
	}

	return s.issueSession(user)
}

// RequestPasswordReset issues a reset token for the account, if it exists.
// The result is identical either way so the endpoint can't be used to
// enumerate accounts.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return domain.ErrInternal("failed to find user", err)
	}
	if user == nil {
		return nil
	}

	code := uuid.New().String()
	if err := s.codes.Create(ctx, &domain.AuthCode{
		Code:      code,
		UserID:    user.ID,
		Purpose:   domain.CodePurposePasswordReset,
		ExpiresAt: time.Now().Add(resetCodeTTL),
	}); err != nil {
		return domain.ErrInternal("failed to store reset code", err)
	}

	// Delivery is the mailer's job; in this deployment the reset link is
	// only logged.
	log.Printf("📧 password reset for %s: %s/auth/update-password?code=%s", email, s.publicBaseURL, code)
	return nil
}

// ResetPassword consumes a reset code and replaces the password.
func (s *AuthService) ResetPassword(ctx context.Context, code, newPassword string) error {
	if len(newPassword) < 6 {
		return domain.ErrValidation("password must be at least 6 characters")
	}

	consumed, err := s.codes.Consume(ctx, code, domain.CodePurposePasswordReset)
	if err != nil {
		return domain.ErrInternal("failed to consume reset code", err)
	}
	if consumed == nil {
		return domain.ErrUnauthorized("invalid or expired code")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return domain.ErrInternal("failed to hash password", err)
	}
	if err := s.users.UpdatePassword(ctx, consumed.UserID, string(hash)); err != nil {
		return domain.ErrInternal("failed to update password", err)
	}
	return nil
}

// VerifyToken validates a JWT token and returns the claims.
func (s *AuthService) VerifyToken(tokenStr string) (*domain.JWTClaims, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, domain.ErrUnauthorized("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, domain.ErrUnauthorized("invalid token claims")
	}

	return &domain.JWTClaims{
		Sub:   getClaimString(claims, "sub"),
		Email: getClaimString(claims, "email"),
		Role:  getClaimString(claims, "role"),
	}, nil
}

// GetUserByID returns a user profile by ID (for /api/auth/me).
func (s *AuthService) GetUserByID(ctx context.Context, id string) (*domain.UserResponse, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, domain.ErrInternal("failed to find user", err)
	}
	if user == nil {
		return nil, domain.ErrNotFound("user not found")
	}
	return user.ToResponse(), nil
}

// UpdateProfile edits the profile row and returns the updated profile.
func (s *AuthService) UpdateProfile(ctx context.Context, id string, req *domain.UpdateProfileRequest) (*domain.UserResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}

	if err := s.users.UpdateProfile(ctx, id, req.FullName, req.Phone, req.AvatarURL); err != nil {
		return nil, domain.ErrInternal("failed to update profile", err)
	}
	return s.GetUserByID(ctx, id)
}

func (s *AuthService) issueSession(user *domain.User) (*domain.SessionResponse, error) {
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"role":  user.Role,
		"exp":   time.Now().Add(sessionTTL).Unix(),
		"iat":   time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return nil, domain.ErrInternal("failed to sign token", err)
	}

	return &domain.SessionResponse{
		Token: signed,
		User: domain.SessionUser{
			ID:       user.ID,
			Email:    user.Email,
			FullName: user.FullName,
		},
	}, nil
}

func getClaimString(claims jwt.MapClaims, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}
