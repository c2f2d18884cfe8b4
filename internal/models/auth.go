package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest holds credentials. Username accepts either the username or the email.
type LoginRequest struct {
	Username  string `json:"username" form:"username" validate:"required"`
	Password  string `json:"password" form:"password" validate:"required"`
	IP        string `json:"-" form:"-"`
	UserAgent string `json:"-" form:"-"`
}

// SignupRequest registers a new account as a student or an instructor.
type SignupRequest struct {
	Username        string   `json:"username" form:"username" validate:"required,min=3,max=150"`
	Email           string   `json:"email" form:"email" validate:"required,email,max=254"`
	Password        string   `json:"password" form:"password" validate:"required,min=8"`
	PasswordConfirm string   `json:"password_confirm" form:"password_confirm" validate:"required,eqfield=Password"`
	AccountType     UserRole `json:"account_type" form:"account_type" validate:"required,oneof=student instructor"`
	Phone           *string  `json:"phone" form:"phone" validate:"omitempty,max=15"`
	IP              string   `json:"-" form:"-"`
	UserAgent       string   `json:"-" form:"-"`
}

// AuthResponse returns the issued tokens and the caller.
type AuthResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresIn    int64     `json:"expires_in"`
	User         UserInfo  `json:"user"`
	IssuedAt     time.Time `json:"issued_at"`
}

// RefreshTokenRequest exchanges a refresh token for a new pair.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" form:"refresh_token" validate:"required"`
	IP           string `json:"-" form:"-"`
	UserAgent    string `json:"-" form:"-"`
}

// LogoutRequest optionally names the refresh token to revoke.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token" form:"refresh_token"`
}

// UserInfo describes the authenticated user in responses.
type UserInfo struct {
	ID           string       `json:"id"`
	Username     string       `json:"username"`
	Email        string       `json:"email"`
	Role         UserRole     `json:"role"`
	Superuser    bool         `json:"is_superuser"`
	StudentID    *string      `json:"student_id,omitempty"`
	InstructorID *string      `json:"instructor_id,omitempty"`
	Capabilities []Capability `json:"capabilities"`
}

// NewUserInfo projects an identity for responses.
func NewUserInfo(id *Identity) UserInfo {
	return UserInfo{
		ID:           id.UserID,
		Username:     id.Username,
		Email:        id.Email,
		Role:         id.Role,
		Superuser:    id.Superuser,
		StudentID:    id.StudentID,
		InstructorID: id.InstructorID,
		Capabilities: id.Capabilities(),
	}
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	UserID    string   `json:"user_id"`
	Username  string   `json:"username"`
	Email     string   `json:"email"`
	Role      UserRole `json:"role"`
	Superuser bool     `json:"is_superuser"`
	jwt.RegisteredClaims
}

// RefreshToken represents a persisted refresh token.
type RefreshToken struct {
	ID        string     `db:"id"`
	UserID    string     `db:"user_id"`
	Token     string     `db:"token"`
	ExpiresAt time.Time  `db:"expires_at"`
	CreatedAt time.Time  `db:"created_at"`
	Revoked   bool       `db:"revoked"`
	RevokedAt *time.Time `db:"revoked_at"`
	IPAddress string     `db:"ip_address"`
	UserAgent string     `db:"user_agent"`
}

// Usable reports whether the token can still be exchanged.
func (t RefreshToken) Usable(now time.Time) bool {
	return !t.Revoked && now.Before(t.ExpiresAt)
}
