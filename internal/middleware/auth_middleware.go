package middleware

import (
	"context"
	"strings"

	"videoquiz/internal/domain"
	"videoquiz/internal/dto"
	"videoquiz/internal/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	AuthorizationHeader = "Authorization"
	BearerSchema        = "Bearer "
	AccessTokenCookie   = "access_token"
	RefreshTokenCookie  = "refresh_token"
	UserIDKey           = "userID" // Key for storing UserID in fiber.Ctx locals
	ClaimsKey           = "claims" // *dto.AuthClaims of the access token
)

const (
	msgNotAuthenticated = "Authentication credentials were not provided."
	msgTokenNotValid    = "Given token not valid for any token type"
)

// AccessTokenValidator resolves an access token to its claims.
type AccessTokenValidator interface {
	ValidateAccessToken(ctx context.Context, tokenString string) (*dto.AuthClaims, error)
}

// Protected requires a valid, unrevoked access token, read from the
// access_token cookie or an Authorization Bearer header.
func Protected(validator AccessTokenValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := accessToken(c)
		if tokenString == "" {
			return domain.NewUnauthorizedError(msgNotAuthenticated)
		}

		claims, err := validator.ValidateAccessToken(c.UserContext(), tokenString)
		if err != nil {
			if domain.HasCode(err, domain.CodeInternal) {
				return err
			}
			logger.Get().Debug("Access token rejected", zap.String("path", c.Path()), zap.Error(err))
			return domain.NewUnauthorizedError(msgTokenNotValid)
		}

		c.Locals(UserIDKey, claims.UserID)
		c.Locals(ClaimsKey, claims)
		return c.Next()
	}
}

func accessToken(c *fiber.Ctx) string {
	if token := c.Cookies(AccessTokenCookie); token != "" {
		return token
	}
	authHeader := c.Get(AuthorizationHeader)
	if strings.HasPrefix(authHeader, BearerSchema) {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, BearerSchema))
	}
	return ""
}

// UserID returns the authenticated user's ID set by Protected.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(UserIDKey).(string)
	return id
}

// Claims returns the access token claims set by Protected.
func Claims(c *fiber.Ctx) *dto.AuthClaims {
	claims, _ := c.Locals(ClaimsKey).(*dto.AuthClaims)
	return claims
}
