package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"videoquiz/internal/config"
	"videoquiz/internal/domain"
	"videoquiz/internal/dto"
	"videoquiz/internal/logger"
	"videoquiz/internal/util"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	msgInvalidCredentials = "No active account found with the given credentials"
	msgInvalidToken       = "Token is invalid or expired"
)

var (
	ErrInvalidJWTToken = errors.New("invalid jwt token")
	ErrRevokedJWTToken = errors.New("jwt token has been revoked")
)

// AuthService defines the interface for authentication operations.
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*domain.User, error)
	Login(ctx context.Context, username, password string) (*domain.User, *dto.TokenPair, error)
	// Refresh issues a new access token for a valid, unrevoked refresh token.
	Refresh(ctx context.Context, refreshToken string) (string, error)
	// Logout revokes the access token and, when present, the refresh token.
	Logout(ctx context.Context, access *dto.AuthClaims, refreshToken string) error
	ValidateAccessToken(ctx context.Context, tokenString string) (*dto.AuthClaims, error)
}

type authService struct {
	userRepo   domain.UserRepository
	blacklist  domain.TokenBlacklist
	cfg        config.JWTConfig
	bcryptCost int
	// dummyHash keeps unknown-user logins as slow as wrong-password logins.
	dummyHash []byte
}

// NewAuthService creates a new instance of AuthService.
func NewAuthService(userRepo domain.UserRepository, blacklist domain.TokenBlacklist, cfg config.JWTConfig) (AuthService, error) {
	return newAuthService(userRepo, blacklist, cfg, bcrypt.DefaultCost)
}

func newAuthService(userRepo domain.UserRepository, blacklist domain.TokenBlacklist, cfg config.JWTConfig, cost int) (*authService, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("jwt.secret_key is not configured")
	}
	if cfg.AccessTokenTTL <= 0 || cfg.RefreshTokenTTL <= 0 {
		return nil, errors.New("jwt token TTLs must be positive")
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), cost)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare password hasher: %w", err)
	}
	return &authService{
		userRepo:   userRepo,
		blacklist:  blacklist,
		cfg:        cfg,
		bcryptCost: cost,
		dummyHash:  dummy,
	}, nil
}

// Register creates an account. Duplicate username or email are reported as
// field errors; emails compare case-insensitively.
func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*domain.User, error) {
	username := strings.TrimSpace(req.Username)
	email := domain.NormalizeEmail(req.Email)

	var fieldErrs domain.ValidationErrors
	existing, err := s.userRepo.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, domain.NewInternalError("failed to check username", err)
	}
	if existing != nil {
		fieldErrs = append(fieldErrs, domain.NewFieldError("username", "A user with that username already exists."))
	}
	existing, err = s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, domain.NewInternalError("failed to check email", err)
	}
	if existing != nil {
		fieldErrs = append(fieldErrs, domain.NewFieldError("email", "user with this email already exists."))
	}
	if len(fieldErrs) > 0 {
		return nil, fieldErrs
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, domain.NewInternalError("failed to hash password", err)
	}

	user := domain.NewUser(username, email, string(hash))
	if err := user.Validate(); err != nil {
		return nil, domain.NewError(domain.CodeInvalidInput, err.Error(), err)
	}
	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	logger.Get().Info("User registered", zap.String("userID", user.ID))
	return user, nil
}

func (s *authService) Login(ctx context.Context, username, password string) (*domain.User, *dto.TokenPair, error) {
	user, err := s.userRepo.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, nil, domain.NewInternalError("failed to load user", err)
	}
	if user == nil {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return nil, nil, domain.NewUnauthorizedError(msgInvalidCredentials)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, domain.NewUnauthorizedError(msgInvalidCredentials)
	}

	access, err := s.CreateJWT(user.ID, s.cfg.AccessTokenTTL, dto.TokenTypeAccess)
	if err != nil {
		return nil, nil, domain.NewInternalError("failed to create access token", err)
	}
	refresh, err := s.CreateJWT(user.ID, s.cfg.RefreshTokenTTL, dto.TokenTypeRefresh)
	if err != nil {
		return nil, nil, domain.NewInternalError("failed to create refresh token", err)
	}

	logger.Get().Info("User logged in", zap.String("userID", user.ID))
	return user, &dto.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.validate(ctx, refreshToken, dto.TokenTypeRefresh)
	if err != nil {
		return "", rejectToken(err, domain.NewUnauthorizedError(msgInvalidToken))
	}
	user, err := s.userRepo.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return "", domain.NewInternalError("failed to load user", err)
	}
	if user == nil {
		return "", domain.NewUnauthorizedError(msgInvalidToken)
	}

	access, err := s.CreateJWT(user.ID, s.cfg.AccessTokenTTL, dto.TokenTypeAccess)
	if err != nil {
		return "", domain.NewInternalError("failed to create access token", err)
	}
	logger.Get().Debug("Access token refreshed", zap.String("userID", user.ID))
	return access, nil
}

func (s *authService) Logout(ctx context.Context, access *dto.AuthClaims, refreshToken string) error {
	var refreshClaims *dto.AuthClaims
	if refreshToken != "" {
		claims, err := s.validate(ctx, refreshToken, dto.TokenTypeRefresh)
		if err == nil && claims.UserID != access.UserID {
			err = ErrInvalidJWTToken
		}
		if err != nil {
			return rejectToken(err, domain.NewInvalidInputError("Refresh token is invalid or expired."))
		}
		refreshClaims = claims
	}

	if refreshClaims != nil {
		if err := s.revoke(ctx, refreshClaims); err != nil {
			return err
		}
	}
	if err := s.revoke(ctx, access); err != nil {
		return err
	}

	logger.Get().Info("User logged out", zap.String("userID", access.UserID))
	return nil
}

func (s *authService) ValidateAccessToken(ctx context.Context, tokenString string) (*dto.AuthClaims, error) {
	return s.validate(ctx, tokenString, dto.TokenTypeAccess)
}

// CreateJWT signs a token with a fresh jti so that no two tokens are equal.
func (s *authService) CreateJWT(userID string, ttl time.Duration, tokenType string) (string, error) {
	now := time.Now()
	claims := dto.AuthClaims{
		UserID:    userID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        util.NewULID(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Subject:   userID,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.SecretKey))
}

func (s *authService) validate(ctx context.Context, tokenString, tokenType string) (*dto.AuthClaims, error) {
	claims, err := s.ValidateJWT(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != tokenType {
		return nil, fmt.Errorf("%w: expected %s token, got %q", ErrInvalidJWTToken, tokenType, claims.TokenType)
	}
	if claims.ID == "" {
		return nil, fmt.Errorf("%w: missing jti", ErrInvalidJWTToken)
	}
	revoked, err := s.blacklist.IsRevoked(ctx, claims.ID)
	if err != nil {
		logger.Get().Error("Token blacklist lookup failed", zap.Error(err))
		return nil, domain.NewInternalError("failed to check token blacklist", err)
	}
	if revoked {
		return nil, ErrRevokedJWTToken
	}
	return claims, nil
}

// ValidateJWT checks signature and expiry only.
func (s *authService) ValidateJWT(tokenString string) (*dto.AuthClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &dto.AuthClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.SecretKey), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			logger.Get().Debug("JWT token expired")
		} else {
			logger.Get().Debug("JWT validation failed", zap.Error(err))
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidJWTToken, err)
	}
	if claims, ok := token.Claims.(*dto.AuthClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, ErrInvalidJWTToken
}

func (s *authService) revoke(ctx context.Context, claims *dto.AuthClaims) error {
	if claims == nil || claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}
	if err := s.blacklist.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return domain.NewInternalError("failed to revoke token", err)
	}
	return nil
}

// rejectToken returns rejection for token problems and keeps infrastructure
// failures as they are.
func rejectToken(err, rejection error) error {
	if domain.HasCode(err, domain.CodeInternal) {
		return err
	}
	return rejection
}

var _ AuthService = (*authService)(nil)
