package handler

import (
	"time"

	"videoquiz/internal/config"
	"videoquiz/internal/domain"
	"videoquiz/internal/dto"
	"videoquiz/internal/logger"
	"videoquiz/internal/middleware"
	"videoquiz/internal/service"
	"videoquiz/internal/validation"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	msgUserCreated    = "User created successfully!"
	msgLoggedIn       = "Login successfully!"
	msgLoggedOut      = "Log-Out successfully! All Tokens will be deleted. Refresh token is now invalid."
	msgTokenRefreshed = "Token refreshed"
	msgNoRefreshToken = "Refresh token not found."
	msgInvalidBody    = "Invalid request body."
)

type AuthHandler struct {
	authService service.AuthService
	validator   *validation.Validator
	jwtConfig   config.JWTConfig
}

func NewAuthHandler(authService service.AuthService, jwtConfig config.JWTConfig) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validator:   validation.NewValidator(),
		jwtConfig:   jwtConfig,
	}
}

// Register creates a new account.
// @Summary Register
// @Description Creates an account. Username and email must be unique.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Account data"
// @Success 201 {object} dto.DetailResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Router /register/ [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError(msgInvalidBody)
	}
	if errs := h.validator.ValidateRegisterRequest(&req); len(errs) > 0 {
		return errs
	}

	if _, err := h.authService.Register(c.UserContext(), &req); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.DetailResponse{Detail: msgUserCreated})
}

// Login authenticates a user and sets the token cookies.
// @Summary Login
// @Description Sets HTTP-only access_token and refresh_token cookies.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Credentials"
// @Success 200 {object} dto.LoginResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Router /login/ [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError(msgInvalidBody)
	}
	if errs := h.validator.ValidateLoginRequest(&req); len(errs) > 0 {
		return errs
	}

	user, tokens, err := h.authService.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return err
	}

	h.setCookie(c, middleware.AccessTokenCookie, tokens.AccessToken, h.jwtConfig.AccessTokenTTL)
	h.setCookie(c, middleware.RefreshTokenCookie, tokens.RefreshToken, h.jwtConfig.RefreshTokenTTL)

	return c.JSON(dto.LoginResponse{
		Detail: msgLoggedIn,
		User: dto.UserResponse{
			ID:       user.ID,
			Username: user.Username,
			Email:    user.Email,
		},
	})
}

// Logout revokes the caller's tokens and deletes the cookies.
// @Summary Logout
// @Description Blacklists the refresh and access tokens.
// @Tags auth
// @Produce json
// @Success 200 {object} dto.DetailResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Router /logout/ [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	claims := middleware.Claims(c)
	if claims == nil {
		return domain.NewUnauthorizedError("Authentication credentials were not provided.")
	}

	if err := h.authService.Logout(c.UserContext(), claims, c.Cookies(middleware.RefreshTokenCookie)); err != nil {
		return err
	}

	h.expireCookie(c, middleware.AccessTokenCookie)
	h.expireCookie(c, middleware.RefreshTokenCookie)
	return c.JSON(dto.DetailResponse{Detail: msgLoggedOut})
}

// Refresh issues a new access token from the refresh_token cookie.
// @Summary Refresh access token
// @Description Reads the refresh_token cookie and sets a new access_token cookie.
// @Tags auth
// @Produce json
// @Success 200 {object} dto.RefreshResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Router /token/refresh/ [post]
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	refreshToken := c.Cookies(middleware.RefreshTokenCookie)
	if refreshToken == "" {
		return domain.NewInvalidInputError(msgNoRefreshToken)
	}

	access, err := h.authService.Refresh(c.UserContext(), refreshToken)
	if err != nil {
		logger.Get().Debug("Token refresh rejected", zap.Error(err))
		return err
	}

	h.setCookie(c, middleware.AccessTokenCookie, access, h.jwtConfig.AccessTokenTTL)
	return c.JSON(dto.RefreshResponse{Detail: msgTokenRefreshed, Access: access})
}

func (h *AuthHandler) setCookie(c *fiber.Ctx, name, value string, ttl time.Duration) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    value,
		Expires:  time.Now().Add(ttl),
		MaxAge:   int(ttl.Seconds()),
		HTTPOnly: true,
		Secure:   h.jwtConfig.SecureCookies,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
}

func (h *AuthHandler) expireCookie(c *fiber.Ctx, name string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   h.jwtConfig.SecureCookies,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
}
