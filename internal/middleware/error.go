package middleware

import (
	"errors"
	"net/http"

	"videoquiz/internal/domain"
	"videoquiz/internal/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ErrorResponse is the JSON body of every non-validation error.
type ErrorResponse struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Status  int                    `json:"status"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ValidationErrorResponse lists field messages keyed by field name.
type ValidationErrorResponse struct {
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Status  int                 `json:"status"`
	Errors  map[string][]string `json:"errors"`
}

// ErrorHandler turns errors returned by handlers into JSON responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var validationErrs domain.ValidationErrors
		if errors.As(err, &validationErrs) {
			return renderValidation(c, validationErrs)
		}

		var domainErr *domain.DomainError
		if errors.As(err, &domainErr) {
			return renderDomain(c, domainErr)
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			logger.Get().Warn("HTTP error",
				zap.String("path", c.Path()),
				zap.Int("status", fiberErr.Code),
				zap.String("message", fiberErr.Message),
			)
			return c.Status(fiberErr.Code).JSON(ErrorResponse{
				Code:    "HTTP_ERROR",
				Message: fiberErr.Message,
				Status:  fiberErr.Code,
			})
		}

		logger.Get().Error("Unhandled error", zap.String("path", c.Path()), zap.Error(err))
		return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{
			Code:    string(domain.CodeInternal),
			Message: "Internal server error",
			Status:  http.StatusInternalServerError,
		})
	}
}

func renderValidation(c *fiber.Ctx, errs domain.ValidationErrors) error {
	fields := errs.Fields()
	logger.Get().Info("Request failed validation",
		zap.String("path", c.Path()),
		zap.Int("fields", len(fields)),
	)
	return c.Status(http.StatusBadRequest).JSON(ValidationErrorResponse{
		Code:    string(domain.CodeValidation),
		Message: "Request validation failed",
		Status:  http.StatusBadRequest,
		Errors:  fields,
	})
}

func renderDomain(c *fiber.Ctx, de *domain.DomainError) error {
	status := StatusForCode(de.Code)
	log := logger.Get().With(
		zap.String("path", c.Path()),
		zap.String("code", string(de.Code)),
		zap.Int("status", status),
	)
	if status >= http.StatusInternalServerError {
		log.Error(de.Message, zap.Error(de.Cause))
	} else {
		log.Info(de.Message)
	}

	body := ErrorResponse{Code: string(de.Code), Message: de.Message, Status: status}
	if len(de.Context) > 0 {
		body.Details = de.Context
	}
	return c.Status(status).JSON(body)
}

// StatusForCode maps a domain error code to its HTTP status.
func StatusForCode(code domain.ErrorCode) int {
	switch code {
	case domain.CodeValidation, domain.CodeInvalidInput, domain.CodeDownloadFailed:
		return http.StatusBadRequest
	case domain.CodeUnauthorized:
		return http.StatusUnauthorized
	case domain.CodeForbidden:
		return http.StatusForbidden
	case domain.CodeNotFound, domain.CodeQuizNotFound:
		return http.StatusNotFound
	case domain.CodeConflict:
		return http.StatusConflict
	case domain.CodeInvalidQuizOutput:
		return http.StatusBadGateway
	case domain.CodeLLMServiceError:
		return http.StatusServiceUnavailable
	case domain.CodeCancelled:
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}
