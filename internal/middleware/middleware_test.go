package middleware_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"videoquiz/internal/domain"
	"videoquiz/internal/dto"
	"videoquiz/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeValidator struct {
	tokens map[string]string // token -> user id
	calls  []string
}

func (f *fakeValidator) ValidateAccessToken(_ context.Context, token string) (*dto.AuthClaims, error) {
	f.calls = append(f.calls, token)
	if id, ok := f.tokens[token]; ok {
		return &dto.AuthClaims{UserID: id, TokenType: dto.TokenTypeAccess}, nil
	}
	if token == "blacklist-down" {
		return nil, domain.NewInternalError("failed to check token blacklist", errors.New("dial tcp: connection refused"))
	}
	return nil, errors.New("invalid token")
}

func newProtectedApp(v middleware.AccessTokenValidator) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
	app.Get("/me", middleware.Protected(v), func(c *fiber.Ctx) error {
		claims := middleware.Claims(c)
		return c.JSON(fiber.Map{"user": middleware.UserID(c), "type": claims.TokenType})
	})
	return app
}

func decode(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &m), string(body))
	return m
}

func TestProtected(t *testing.T) {
	v := &fakeValidator{tokens: map[string]string{"good": "user-1"}}
	app := newProtectedApp(v)

	tests := []struct {
		name       string
		cookie     string
		header     string
		wantStatus int
		wantUser   string
	}{
		{"no credentials", "", "", http.StatusUnauthorized, ""},
		{"valid cookie", "good", "", http.StatusOK, "user-1"},
		{"valid bearer header", "", "Bearer good", http.StatusOK, "user-1"},
		{"invalid cookie", "bad", "", http.StatusUnauthorized, ""},
		{"cookie wins over header", "bad", "Bearer good", http.StatusUnauthorized, ""},
		{"non bearer scheme", "", "Basic good", http.StatusUnauthorized, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: middleware.AccessTokenCookie, Value: tt.cookie})
			}
			if tt.header != "" {
				req.Header.Set(middleware.AuthorizationHeader, tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			body := decode(t, resp)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, tt.wantUser, body["user"])
				assert.Equal(t, dto.TokenTypeAccess, body["type"])
			} else {
				assert.Equal(t, string(domain.CodeUnauthorized), body["code"])
			}
		})
	}
}

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{domain.NewQuizNotFoundError("q1"), http.StatusNotFound, "QUIZ_NOT_FOUND"},
		{domain.NewForbiddenError("no"), http.StatusForbidden, "FORBIDDEN"},
		{domain.NewError(domain.CodeConflict, "dup", nil), http.StatusConflict, "CONFLICT"},
		{domain.NewDownloadError("bad url", nil), http.StatusBadRequest, "DOWNLOAD_FAILED"},
		{domain.NewInvalidQuizOutputError(3, errors.New("x")), http.StatusBadGateway, "INVALID_QUIZ_OUTPUT"},
		{domain.NewLLMServiceError(errors.New("x")), http.StatusServiceUnavailable, "LLM_SERVICE_ERROR"},
		{domain.NewTranscriptionError(errors.New("x")), http.StatusInternalServerError, "TRANSCRIPTION_FAILED"},
		{domain.NewFilesystemError("disk", errors.New("x")), http.StatusInternalServerError, "FILESYSTEM_ERROR"},
		{domain.NewCancelledError(context.DeadlineExceeded), http.StatusGatewayTimeout, "GENERATION_CANCELLED"},
		{fmt.Errorf("wrapped: %w", domain.NewUnauthorizedError("no")), http.StatusUnauthorized, "UNAUTHORIZED"},
		{fiber.ErrMethodNotAllowed, http.StatusMethodNotAllowed, "HTTP_ERROR"},
		{errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.wantCode, func(t *testing.T) {
			app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
			app.Get("/", func(c *fiber.Ctx) error { return tt.err })

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			body := decode(t, resp)
			assert.Equal(t, tt.wantCode, body["code"])
			assert.EqualValues(t, tt.wantStatus, body["status"])
		})
	}
}

func TestErrorHandler_ValidationErrorsAndHiddenCause(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
	app.Get("/validation", func(c *fiber.Ctx) error {
		return domain.ValidationErrors{domain.NewBlankFieldError("email")}
	})
	app.Get("/internal", func(c *fiber.Ctx) error {
		return domain.NewInternalError("failed to save quiz", errors.New("ORA-12541: TNS:no listener"))
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/validation", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decode(t, resp)
	assert.Equal(t, "VALIDATION_ERROR", body["code"])
	assert.Equal(t, map[string]interface{}{"email": []interface{}{"This field may not be blank."}}, body["errors"])

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/internal", nil))
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "ORA-12541")
}

func TestProtected_BlacklistOutageIsServerError(t *testing.T) {
	app := newProtectedApp(&fakeValidator{})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: middleware.AccessTokenCookie, Value: "blacklist-down"})
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	body := decode(t, resp)
	assert.Equal(t, string(domain.CodeInternal), body["code"])
	assert.NotContains(t, body["message"], "connection refused")
}
