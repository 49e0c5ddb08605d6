package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	// OptionsPerQuestion is the fixed number of answer options per question.
	OptionsPerQuestion = 4
	// MaxDescriptionLength is the soft limit applied to generated descriptions.
	MaxDescriptionLength = 150
)

// Quiz is a generated quiz owned by a single user.
type Quiz struct {
	ID          string
	Title       string
	Description string
	VideoURL    string
	OwnerID     string
	Questions   []*Question
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewQuiz creates a new Quiz instance without questions
func NewQuiz(title, description, videoURL, ownerID string) *Quiz {
	now := time.Now()
	return &Quiz{
		Title:       title,
		Description: description,
		VideoURL:    videoURL,
		OwnerID:     ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// AddQuestion attaches q to the quiz, assigning its position.
func (q *Quiz) AddQuestion(question *Question) {
	question.QuizID = q.ID
	question.Position = len(q.Questions)
	q.Questions = append(q.Questions, question)
}

// Question is one multiple-choice question of a quiz.
type Question struct {
	ID        string
	QuizID    string
	Position  int
	Title     string
	Options   []string
	Answer    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewQuestion creates a standalone question; AddQuestion links it to a quiz.
func NewQuestion(title string, options []string, answer string) *Question {
	now := time.Now()
	return &Question{
		Title:     title,
		Options:   options,
		Answer:    answer,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate checks the option and answer rules of a question.
func (q *Question) Validate() error {
	if strings.TrimSpace(q.Title) == "" {
		return NewValidationError("question_title is required")
	}
	if len(q.Options) != OptionsPerQuestion {
		return NewValidationError(fmt.Sprintf("question %q must have exactly %d options, got %d",
			q.Title, OptionsPerQuestion, len(q.Options)))
	}
	seen := make(map[string]struct{}, len(q.Options))
	for _, opt := range q.Options {
		if strings.TrimSpace(opt) == "" {
			return NewValidationError(fmt.Sprintf("question %q has an empty option", q.Title))
		}
		if _, dup := seen[opt]; dup {
			return NewValidationError(fmt.Sprintf("question %q has duplicate option %q", q.Title, opt))
		}
		seen[opt] = struct{}{}
	}
	if _, ok := seen[q.Answer]; !ok {
		return NewValidationError(fmt.Sprintf("answer %q of question %q is not one of its options", q.Answer, q.Title))
	}
	return nil
}

// QuizPatch holds the fields a PATCH may change. Nil means unchanged.
type QuizPatch struct {
	Title       *string
	Description *string
}

// QuizRepository defines the interface for quiz persistence
type QuizRepository interface {
	// CreateQuiz stores the quiz and its questions atomically.
	CreateQuiz(ctx context.Context, quiz *Quiz) error
	// GetQuizByID returns nil, nil when the quiz does not exist.
	GetQuizByID(ctx context.Context, id string) (*Quiz, error)
	// ListQuizzesByOwner returns the owner's quizzes, newest first.
	ListQuizzesByOwner(ctx context.Context, ownerID string) ([]*Quiz, error)
	UpdateQuiz(ctx context.Context, quiz *Quiz) error
	DeleteQuiz(ctx context.Context, id string) error
}

// GeneratedQuestion mirrors one question of the generator's JSON output.
type GeneratedQuestion struct {
	QuestionTitle   string   `json:"question_title"`
	QuestionOptions []string `json:"question_options"`
	Answer          string   `json:"answer"`
}

// GeneratedQuiz is the typed form of the generator's JSON output.
type GeneratedQuiz struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Questions   []GeneratedQuestion `json:"questions"`
}

var (
	thinkBlockPattern = regexp.MustCompile(`(?s)<think>.*?</think>`)
	codeFencePattern  = regexp.MustCompile("(?s)```[a-zA-Z]*\\s*(.*?)```")
)

// ParseGeneratedQuiz extracts the JSON object from raw model text. Markdown
// fences, reasoning blocks and surrounding prose are tolerated.
func ParseGeneratedQuiz(raw string) (*GeneratedQuiz, error) {
	text := thinkBlockPattern.ReplaceAllString(raw, "")
	if m := codeFencePattern.FindStringSubmatch(text); m != nil {
		text = m[1]
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, NewValidationError("model output contains no JSON object")
	}

	var quiz GeneratedQuiz
	if err := json.Unmarshal([]byte(text[start:end+1]), &quiz); err != nil {
		return nil, NewValidationError(fmt.Sprintf("model output is not valid quiz JSON: %v", err))
	}
	return &quiz, nil
}

// Validate enforces the quiz shape. The description is trimmed to
// MaxDescriptionLength runes in place instead of being rejected.
func (g *GeneratedQuiz) Validate(questionCount int) error {
	g.Title = strings.TrimSpace(g.Title)
	if g.Title == "" {
		return NewValidationError("title is required")
	}
	g.Description = strings.TrimSpace(g.Description)
	if runes := []rune(g.Description); len(runes) > MaxDescriptionLength {
		g.Description = string(runes[:MaxDescriptionLength])
	}
	if len(g.Questions) != questionCount {
		return NewValidationError(fmt.Sprintf("expected exactly %d questions, got %d", questionCount, len(g.Questions)))
	}
	for i := range g.Questions {
		gq := g.Questions[i]
		q := Question{Title: gq.QuestionTitle, Options: gq.QuestionOptions, Answer: gq.Answer}
		if err := q.Validate(); err != nil {
			return fmt.Errorf("question %d: %w", i+1, err)
		}
	}
	return nil
}

// ToQuiz converts a validated generated quiz into a domain Quiz.
func (g *GeneratedQuiz) ToQuiz(ownerID, videoURL string) *Quiz {
	quiz := NewQuiz(g.Title, g.Description, videoURL, ownerID)
	for _, gq := range g.Questions {
		options := make([]string, len(gq.QuestionOptions))
		copy(options, gq.QuestionOptions)
		quiz.AddQuestion(NewQuestion(gq.QuestionTitle, options, gq.Answer))
	}
	return quiz
}

// ValidationError represents a validation error
type ValidationError struct {
	message string
}

func (e *ValidationError) Error() string {
	return e.message
}

func NewValidationError(message string) error {
	return &ValidationError{message: message}
}
