package dto

import (
	"time"

	"videoquiz/internal/domain"
)

// CreateQuizRequest is the body of POST /api/createQuiz/.
// @Description Request body for quiz generation
type CreateQuizRequest struct {
	URL string `json:"url"`
}

// UpdateQuizRequest is the body of PATCH /api/quizzes/{id}/.
// @Description Partial quiz update
type UpdateQuizRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
}

// QuestionResponse represents a question in the API response
type QuestionResponse struct {
	ID              string   `json:"id"`
	QuestionTitle   string   `json:"question_title"`
	QuestionOptions []string `json:"question_options"`
	Answer          string   `json:"answer"`
}

// QuizResponse represents a quiz in the API response
// @Description Quiz with its questions
type QuizResponse struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
	VideoURL    string             `json:"video_url"`
	Questions   []QuestionResponse `json:"questions"`
}

// NewQuizResponse maps a domain quiz to its API representation.
func NewQuizResponse(quiz *domain.Quiz) QuizResponse {
	questions := make([]QuestionResponse, 0, len(quiz.Questions))
	for _, q := range quiz.Questions {
		questions = append(questions, QuestionResponse{
			ID:              q.ID,
			QuestionTitle:   q.Title,
			QuestionOptions: q.Options,
			Answer:          q.Answer,
		})
	}
	return QuizResponse{
		ID:          quiz.ID,
		Title:       quiz.Title,
		Description: quiz.Description,
		CreatedAt:   quiz.CreatedAt,
		UpdatedAt:   quiz.UpdatedAt,
		VideoURL:    quiz.VideoURL,
		Questions:   questions,
	}
}

// ErrorResponse represents an error in the API response
type ErrorResponse struct {
	Error string `json:"error"`
}
