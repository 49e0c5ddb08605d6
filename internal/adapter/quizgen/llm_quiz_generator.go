package quizgen

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"videoquiz/internal/config"
	"videoquiz/internal/domain"

	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"
)

const promptTemplate = `IMPORTANT: Return the result only as plain JSON text. Do NOT use markdown code fences or any other formatting. No comments, no extra text. Just raw JSON.

Create a JSON object with the following structure:

{
  "title": "A concise quiz title based on the topic of the transcript.",
  "description": "A summary of the transcript in no more than %[1]d characters. Do not include any quiz questions or answers.",
  "questions": [
    {
      "question_title": "The first question goes here.",
      "question_options": ["Option A", "Option B", "Option C", "Option D"],
      "answer": "The correct answer from the above options"
    }
  ]
}

Requirements:
- The "questions" array contains exactly %[2]d questions.
- Each question has exactly %[3]d distinct answer options.
- Exactly one correct answer per question, and it appears verbatim in "question_options".
- The output must be valid JSON that can be parsed directly.
- Language of the quiz: %[4]s.
%[5]s
Here is the transcript:
`

// LLMQuizGenerator implements domain.QuizGenerator over any langchaingo model.
type LLMQuizGenerator struct {
	llm           llms.Model
	questionCount int
	language      string
	temperature   float64
	timeout       time.Duration
	logger        *zap.Logger
}

func NewLLMQuizGenerator(llm llms.Model, llmCfg config.LLMConfig, quizCfg config.QuizConfig, logger *zap.Logger) (*LLMQuizGenerator, error) {
	if llm == nil {
		return nil, errors.New("llm client cannot be nil")
	}
	language := quizCfg.Language
	if language == "" {
		language = "German"
	}
	return &LLMQuizGenerator{
		llm:           llm,
		questionCount: quizCfg.QuestionCount,
		language:      language,
		temperature:   llmCfg.Temperature,
		timeout:       llmCfg.Timeout,
		logger:        logger,
	}, nil
}

// Generate implements domain.QuizGenerator.
func (g *LLMQuizGenerator) Generate(ctx context.Context, transcript, previousError string) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	prompt := g.buildPrompt(transcript, previousError)
	g.logger.Debug("Requesting quiz from LLM",
		zap.Int("prompt_length", len(prompt)),
		zap.Bool("retry", previousError != ""))

	response, err := llms.GenerateFromSinglePrompt(ctx, g.llm, prompt, llms.WithTemperature(g.temperature))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			g.logger.Error("LLM request timed out", zap.Error(err))
			return "", domain.NewLLMServiceError(fmt.Errorf("LLM request timed out: %w", err))
		}
		g.logger.Error("Failed to get response from LLM", zap.Error(err))
		return "", domain.NewLLMServiceError(err)
	}
	if strings.TrimSpace(response) == "" {
		return "", domain.NewLLMServiceError(errors.New("LLM returned an empty response"))
	}
	return response, nil
}

func (g *LLMQuizGenerator) buildPrompt(transcript, previousError string) string {
	var retryNote string
	if previousError != "" {
		retryNote = fmt.Sprintf("\nYour previous answer was rejected: %s\nFix this and return the complete JSON object again.\n", previousError)
	}
	header := fmt.Sprintf(promptTemplate,
		domain.MaxDescriptionLength,
		g.questionCount,
		domain.OptionsPerQuestion,
		g.language,
		retryNote,
	)
	return header + transcript
}

var _ domain.QuizGenerator = (*LLMQuizGenerator)(nil)
