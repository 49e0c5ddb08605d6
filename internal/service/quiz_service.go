package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"videoquiz/internal/domain"
	"videoquiz/internal/util"

	"go.uber.org/zap"
)

// QuizRunner produces a validated quiz from a video URL.
type QuizRunner interface {
	Run(ctx context.Context, videoURL string) (*domain.GeneratedQuiz, error)
}

// QuizService defines the interface for quiz operations
type QuizService interface {
	CreateFromURL(ctx context.Context, ownerID, videoURL string) (*domain.Quiz, error)
	ListQuizzes(ctx context.Context, ownerID string) ([]*domain.Quiz, error)
	GetQuiz(ctx context.Context, ownerID, quizID string) (*domain.Quiz, error)
	UpdateQuiz(ctx context.Context, ownerID, quizID string, patch domain.QuizPatch) (*domain.Quiz, error)
	DeleteQuiz(ctx context.Context, ownerID, quizID string) error
}

type quizService struct {
	repo      domain.QuizRepository
	txManager domain.TransactionManager
	runner    QuizRunner
	logger    *zap.Logger
}

// NewQuizService creates a new instance of QuizService.
func NewQuizService(repo domain.QuizRepository, txManager domain.TransactionManager, runner QuizRunner, logger *zap.Logger) QuizService {
	return &quizService{
		repo:      repo,
		txManager: txManager,
		runner:    runner,
		logger:    logger,
	}
}

// CreateFromURL runs the generation pipeline and persists the result for
// ownerID. Nothing is stored when any step fails.
func (s *quizService) CreateFromURL(ctx context.Context, ownerID, videoURL string) (*domain.Quiz, error) {
	videoURL = strings.TrimSpace(videoURL)
	generated, err := s.runner.Run(ctx, videoURL)
	if err != nil {
		s.logger.Error("Quiz generation failed",
			zap.String("ownerID", ownerID),
			zap.String("url", videoURL),
			zap.Error(err))
		return nil, err
	}

	quiz := generated.ToQuiz(ownerID, videoURL)
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		return s.repo.CreateQuiz(txCtx, quiz)
	})
	if err != nil {
		return nil, wrapInternal("failed to save quiz", err)
	}

	s.logger.Info("Quiz created",
		zap.String("quizID", quiz.ID),
		zap.String("ownerID", ownerID))
	return quiz, nil
}

func (s *quizService) ListQuizzes(ctx context.Context, ownerID string) ([]*domain.Quiz, error) {
	quizzes, err := s.repo.ListQuizzesByOwner(ctx, ownerID)
	if err != nil {
		return nil, domain.NewInternalError("failed to list quizzes", err)
	}
	return quizzes, nil
}

func (s *quizService) GetQuiz(ctx context.Context, ownerID, quizID string) (*domain.Quiz, error) {
	return s.ownedQuiz(ctx, ownerID, quizID)
}

// UpdateQuiz applies a partial update. The owner and questions never change.
func (s *quizService) UpdateQuiz(ctx context.Context, ownerID, quizID string, patch domain.QuizPatch) (*domain.Quiz, error) {
	quiz, err := s.ownedQuiz(ctx, ownerID, quizID)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		quiz.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		quiz.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Title == nil && patch.Description == nil {
		return quiz, nil
	}
	quiz.UpdatedAt = time.Now().UTC()

	if err := s.repo.UpdateQuiz(ctx, quiz); err != nil {
		return nil, wrapInternal("failed to update quiz", err)
	}
	return quiz, nil
}

func (s *quizService) DeleteQuiz(ctx context.Context, ownerID, quizID string) error {
	if _, err := s.ownedQuiz(ctx, ownerID, quizID); err != nil {
		return err
	}
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		return s.repo.DeleteQuiz(txCtx, quizID)
	})
	if err != nil {
		return wrapInternal("failed to delete quiz", err)
	}
	s.logger.Info("Quiz deleted", zap.String("quizID", quizID), zap.String("ownerID", ownerID))
	return nil
}

// ownedQuiz loads a quiz and checks ownership. A missing quiz is reported
// before a foreign one.
func (s *quizService) ownedQuiz(ctx context.Context, ownerID, quizID string) (*domain.Quiz, error) {
	if !util.IsULID(quizID) {
		return nil, domain.NewQuizNotFoundError(quizID)
	}
	quiz, err := s.repo.GetQuizByID(ctx, quizID)
	if err != nil {
		return nil, domain.NewInternalError("failed to load quiz", err)
	}
	if quiz == nil {
		return nil, domain.NewQuizNotFoundError(quizID)
	}
	if quiz.OwnerID != ownerID {
		return nil, domain.NewForbiddenError("You do not have permission to perform this action.")
	}
	return quiz, nil
}

// wrapInternal keeps domain errors as they are and wraps anything else.
func wrapInternal(message string, err error) error {
	var de *domain.DomainError
	if errors.As(err, &de) {
		return err
	}
	return domain.NewInternalError(message, err)
}
