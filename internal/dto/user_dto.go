package dto

import (
	"github.com/golang-jwt/jwt/v5"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// AuthClaims defines the custom claims for JWT.
type AuthClaims struct {
	UserID    string `json:"user_id"`
	TokenType string `json:"token_type"` // "access" or "refresh"
	jwt.RegisteredClaims
}

// RegisterRequest is the body of POST /api/register/.
// @Description Request body for account registration
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the body of POST /api/login/.
// @Description Request body for login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// LoginResponse is returned after a successful login. Tokens travel in cookies.
// @Description Login result
type LoginResponse struct {
	Detail string       `json:"detail"`
	User   UserResponse `json:"user"`
}

// DetailResponse represents a generic detail message response.
// @Description Generic detail message
type DetailResponse struct {
	Detail string `json:"detail"`
}

// RefreshResponse is returned by POST /api/token/refresh/.
// @Description Token refresh result
type RefreshResponse struct {
	Detail string `json:"detail"`
	Access string `json:"access"`
}

// TokenPair is what the auth service issues on login.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}
