package handler

import (
	"errors"
	"strings"

	"videoquiz/internal/domain"
	"videoquiz/internal/dto"
	"videoquiz/internal/logger"
	"videoquiz/internal/middleware"
	"videoquiz/internal/service"
	"videoquiz/internal/validation"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// QuizHandler handles quiz-related HTTP requests
type QuizHandler struct {
	service   service.QuizService
	validator *validation.Validator
}

// NewQuizHandler creates a new QuizHandler instance
func NewQuizHandler(service service.QuizService) *QuizHandler {
	return &QuizHandler{
		service:   service,
		validator: validation.NewValidator(),
	}
}

// CreateQuiz generates a quiz from a video URL.
// @Summary Create a quiz from a video
// @Description Downloads the audio, transcribes it and asks the language model for a quiz.
// @Tags quiz
// @Accept json
// @Produce json
// @Param request body dto.CreateQuizRequest true "Video URL"
// @Success 201 {object} dto.QuizResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 502 {object} middleware.ErrorResponse
// @Failure 503 {object} middleware.ErrorResponse
// @Failure 504 {object} middleware.ErrorResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /createQuiz/ [post]
func (h *QuizHandler) CreateQuiz(c *fiber.Ctx) error {
	var req dto.CreateQuizRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: msgInvalidBody})
	}
	if msg := h.validator.ValidateCreateQuizRequest(&req); msg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: msg})
	}

	quiz, err := h.service.CreateFromURL(c.UserContext(), middleware.UserID(c), strings.TrimSpace(req.URL))
	if err != nil {
		var de *domain.DomainError
		if errors.As(err, &de) && de.Code == domain.CodeDownloadFailed {
			logger.Get().Info("Video download failed", zap.String("url", req.URL), zap.Error(err))
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: "Invalid URL or YouTube ID: " + de.Message,
			})
		}
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewQuizResponse(quiz))
}

// ListQuizzes returns the caller's quizzes, newest first.
// @Summary List own quizzes
// @Tags quiz
// @Produce json
// @Success 200 {array} dto.QuizResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Router /quizzes/ [get]
func (h *QuizHandler) ListQuizzes(c *fiber.Ctx) error {
	quizzes, err := h.service.ListQuizzes(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return err
	}
	resp := make([]dto.QuizResponse, 0, len(quizzes))
	for _, q := range quizzes {
		resp = append(resp, dto.NewQuizResponse(q))
	}
	return c.JSON(resp)
}

// GetQuiz returns one of the caller's quizzes.
// @Summary Get a quiz
// @Tags quiz
// @Produce json
// @Param id path string true "Quiz ID"
// @Success 200 {object} dto.QuizResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /quizzes/{id}/ [get]
func (h *QuizHandler) GetQuiz(c *fiber.Ctx) error {
	quiz, err := h.service.GetQuiz(c.UserContext(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewQuizResponse(quiz))
}

// UpdateQuiz changes title and/or description of a quiz.
// @Summary Update a quiz
// @Tags quiz
// @Accept json
// @Produce json
// @Param id path string true "Quiz ID"
// @Param request body dto.UpdateQuizRequest true "Fields to change"
// @Success 200 {object} dto.QuizResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /quizzes/{id}/ [patch]
func (h *QuizHandler) UpdateQuiz(c *fiber.Ctx) error {
	// Existence and ownership are decided before the body is looked at.
	if _, err := h.service.GetQuiz(c.UserContext(), middleware.UserID(c), c.Params("id")); err != nil {
		return err
	}

	var req dto.UpdateQuizRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError(msgInvalidBody)
	}
	if errs := h.validator.ValidateUpdateQuizRequest(&req); len(errs) > 0 {
		return errs
	}

	quiz, err := h.service.UpdateQuiz(c.UserContext(), middleware.UserID(c), c.Params("id"), domain.QuizPatch{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.NewQuizResponse(quiz))
}

// DeleteQuiz removes a quiz and its questions.
// @Summary Delete a quiz
// @Tags quiz
// @Param id path string true "Quiz ID"
// @Success 204
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /quizzes/{id}/ [delete]
func (h *QuizHandler) DeleteQuiz(c *fiber.Ctx) error {
	if err := h.service.DeleteQuiz(c.UserContext(), middleware.UserID(c), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
