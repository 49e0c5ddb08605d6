package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"videoquiz/internal/domain"
	"videoquiz/internal/repository/models"
	"videoquiz/internal/util"

	"github.com/jmoiron/sqlx"
)

const (
	quizColumns     = `id, title, description, video_url, owner_id, created_at, updated_at`
	questionColumns = `id, quiz_id, sort_order, question_title, question_options, answer, created_at, updated_at`
)

// sqlxQuizRepository implements domain.QuizRepository. CreateQuiz and
// DeleteQuiz touch two tables and expect to run inside WithTransaction.
type sqlxQuizRepository struct {
	db *sqlx.DB
}

func NewSQLXQuizRepository(db *sqlx.DB) domain.QuizRepository {
	return &sqlxQuizRepository{db: db}
}

func (r *sqlxQuizRepository) CreateQuiz(ctx context.Context, quiz *domain.Quiz) error {
	if quiz.ID == "" {
		quiz.ID = util.NewULID()
	}
	now := time.Now()
	quiz.CreatedAt = now
	quiz.UpdatedAt = now

	exec := GetExecutor(ctx, r.db)
	qm := fromDomainQuiz(quiz)
	insertQuiz := exec.Rebind(`INSERT INTO quizzes (` + quizColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if _, err := exec.ExecContext(ctx, insertQuiz,
		qm.ID, qm.Title, qm.Description, qm.VideoURL, qm.OwnerID, qm.CreatedAt, qm.UpdatedAt); err != nil {
		return fmt.Errorf("failed to insert quiz: %w", err)
	}

	insertQuestion := exec.Rebind(`INSERT INTO questions (` + questionColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	for i, q := range quiz.Questions {
		if q.ID == "" {
			q.ID = util.NewULID()
		}
		q.QuizID = quiz.ID
		q.Position = i
		q.CreatedAt = now
		q.UpdatedAt = now
		m := fromDomainQuestion(q)
		if _, err := exec.ExecContext(ctx, insertQuestion,
			m.ID, m.QuizID, m.SortOrder, m.QuestionTitle, m.QuestionOptions, m.Answer, m.CreatedAt, m.UpdatedAt); err != nil {
			return fmt.Errorf("failed to insert question %d: %w", i+1, err)
		}
	}
	return nil
}

// GetQuizByID returns nil, nil when the quiz does not exist.
func (r *sqlxQuizRepository) GetQuizByID(ctx context.Context, id string) (*domain.Quiz, error) {
	exec := GetExecutor(ctx, r.db)

	var qm models.Quiz
	if err := exec.GetContext(ctx, &qm, exec.Rebind(`SELECT `+quizColumns+` FROM quizzes WHERE id = ?`), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get quiz %s: %w", id, err)
	}

	var questions []models.Question
	query := exec.Rebind(`SELECT ` + questionColumns + ` FROM questions WHERE quiz_id = ? ORDER BY sort_order`)
	if err := exec.SelectContext(ctx, &questions, query, id); err != nil {
		return nil, fmt.Errorf("failed to get questions of quiz %s: %w", id, err)
	}
	return toDomainQuiz(&qm, questions), nil
}

// ListQuizzesByOwner returns the owner's quizzes newest first with their
// questions loaded in one extra query.
func (r *sqlxQuizRepository) ListQuizzesByOwner(ctx context.Context, ownerID string) ([]*domain.Quiz, error) {
	exec := GetExecutor(ctx, r.db)

	var rows []models.Quiz
	query := exec.Rebind(`SELECT ` + quizColumns + ` FROM quizzes WHERE owner_id = ? ORDER BY created_at DESC, id DESC`)
	if err := exec.SelectContext(ctx, &rows, query, ownerID); err != nil {
		return nil, fmt.Errorf("failed to list quizzes: %w", err)
	}
	if len(rows) == 0 {
		return []*domain.Quiz{}, nil
	}

	ids := make([]string, len(rows))
	for i := range rows {
		ids[i] = rows[i].ID
	}
	inQuery, args, err := sqlx.In(`SELECT `+questionColumns+` FROM questions WHERE quiz_id IN (?) ORDER BY quiz_id, sort_order`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to build questions query: %w", err)
	}
	var questions []models.Question
	if err := exec.SelectContext(ctx, &questions, exec.Rebind(inQuery), args...); err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}

	byQuiz := make(map[string][]models.Question, len(rows))
	for _, q := range questions {
		byQuiz[q.QuizID] = append(byQuiz[q.QuizID], q)
	}
	quizzes := make([]*domain.Quiz, 0, len(rows))
	for i := range rows {
		quizzes = append(quizzes, toDomainQuiz(&rows[i], byQuiz[rows[i].ID]))
	}
	return quizzes, nil
}

// UpdateQuiz writes title and description. Owner and video URL never change.
func (r *sqlxQuizRepository) UpdateQuiz(ctx context.Context, quiz *domain.Quiz) error {
	quiz.UpdatedAt = time.Now()
	exec := GetExecutor(ctx, r.db)
	qm := fromDomainQuiz(quiz)
	query := exec.Rebind(`UPDATE quizzes SET title = ?, description = ?, updated_at = ? WHERE id = ?`)
	result, err := exec.ExecContext(ctx, query, qm.Title, qm.Description, qm.UpdatedAt, qm.ID)
	if err != nil {
		return fmt.Errorf("failed to update quiz %s: %w", quiz.ID, err)
	}
	return requireAffected(result, quiz.ID)
}

func (r *sqlxQuizRepository) DeleteQuiz(ctx context.Context, id string) error {
	exec := GetExecutor(ctx, r.db)
	if _, err := exec.ExecContext(ctx, exec.Rebind(`DELETE FROM questions WHERE quiz_id = ?`), id); err != nil {
		return fmt.Errorf("failed to delete questions of quiz %s: %w", id, err)
	}
	result, err := exec.ExecContext(ctx, exec.Rebind(`DELETE FROM quizzes WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete quiz %s: %w", id, err)
	}
	return requireAffected(result, id)
}

func requireAffected(result sql.Result, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return domain.NewQuizNotFoundError(id)
	}
	return nil
}

func toDomainQuiz(m *models.Quiz, questions []models.Question) *domain.Quiz {
	quiz := &domain.Quiz{
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description.String,
		VideoURL:    m.VideoURL,
		OwnerID:     m.OwnerID,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
		Questions:   make([]*domain.Question, 0, len(questions)),
	}
	for _, q := range questions {
		quiz.Questions = append(quiz.Questions, &domain.Question{
			ID:        q.ID,
			QuizID:    q.QuizID,
			Position:  q.SortOrder,
			Title:     q.QuestionTitle,
			Options:   []string(q.QuestionOptions),
			Answer:    q.Answer,
			CreatedAt: q.CreatedAt,
			UpdatedAt: q.UpdatedAt,
		})
	}
	return quiz
}

func fromDomainQuiz(q *domain.Quiz) *models.Quiz {
	return &models.Quiz{
		ID:          q.ID,
		Title:       q.Title,
		Description: sql.NullString{String: q.Description, Valid: true},
		VideoURL:    q.VideoURL,
		OwnerID:     q.OwnerID,
		CreatedAt:   q.CreatedAt,
		UpdatedAt:   q.UpdatedAt,
	}
}

func fromDomainQuestion(q *domain.Question) *models.Question {
	return &models.Question{
		ID:              q.ID,
		QuizID:          q.QuizID,
		SortOrder:       q.Position,
		QuestionTitle:   q.Title,
		QuestionOptions: models.StringSlice(q.Options),
		Answer:          q.Answer,
		CreatedAt:       q.CreatedAt,
		UpdatedAt:       q.UpdatedAt,
	}
}
