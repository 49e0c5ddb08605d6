package quizgen

import (
	"context"
	"errors"
	"testing"
	"time"

	"videoquiz/internal/config"
	"videoquiz/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"
)

// fakeModel records prompts and replays canned responses.
type fakeModel struct {
	responses   []string
	err         error
	prompts     []string
	temperature float64
	delay       time.Duration
}

func (f *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	opts := llms.CallOptions{}
	for _, o := range options {
		o(&opts)
	}
	f.temperature = opts.Temperature

	for _, m := range messages {
		for _, p := range m.Parts {
			if tc, ok := p.(llms.TextContent); ok {
				f.prompts = append(f.prompts, tc.Text)
			}
		}
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	resp := ""
	if len(f.responses) > 0 {
		resp = f.responses[0]
		f.responses = f.responses[1:]
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: resp}}}, nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, f, prompt, options...)
}

func newGenerator(t *testing.T, model llms.Model, timeout time.Duration) *LLMQuizGenerator {
	t.Helper()
	g, err := NewLLMQuizGenerator(model,
		config.LLMConfig{Temperature: 0.2, Timeout: timeout},
		config.QuizConfig{QuestionCount: 10, Language: "German"},
		zap.NewNop())
	require.NoError(t, err)
	return g
}

func TestLLMQuizGenerator_Generate(t *testing.T) {
	model := &fakeModel{responses: []string{`{"title":"T"}`}}
	g := newGenerator(t, model, 0)

	out, err := g.Generate(context.Background(), "Das ist das Transkript.", "")
	require.NoError(t, err)
	assert.Equal(t, `{"title":"T"}`, out)

	require.Len(t, model.prompts, 1)
	prompt := model.prompts[0]
	assert.Contains(t, prompt, "exactly 10 questions")
	assert.Contains(t, prompt, "exactly 4 distinct answer options")
	assert.Contains(t, prompt, "no more than 150 characters")
	assert.Contains(t, prompt, "Language of the quiz: German.")
	assert.NotContains(t, prompt, "previous answer was rejected")
	assert.Contains(t, prompt, "Here is the transcript:\nDas ist das Transkript.")
	assert.InDelta(t, 0.2, model.temperature, 1e-9)
}

func TestLLMQuizGenerator_GenerateWithPreviousError(t *testing.T) {
	model := &fakeModel{responses: []string{"{}"}}
	g := newGenerator(t, model, 0)

	_, err := g.Generate(context.Background(), "transcript", "expected exactly 10 questions, got 8")
	require.NoError(t, err)
	assert.Contains(t, model.prompts[0], "Your previous answer was rejected: expected exactly 10 questions, got 8")
}

func TestLLMQuizGenerator_Errors(t *testing.T) {
	t.Run("transport error", func(t *testing.T) {
		g := newGenerator(t, &fakeModel{err: errors.New("quota exceeded")}, 0)
		_, err := g.Generate(context.Background(), "t", "")
		assert.True(t, domain.HasCode(err, domain.CodeLLMServiceError))
	})

	t.Run("empty response", func(t *testing.T) {
		g := newGenerator(t, &fakeModel{responses: []string{"   "}}, 0)
		_, err := g.Generate(context.Background(), "t", "")
		assert.True(t, domain.HasCode(err, domain.CodeLLMServiceError))
	})

	t.Run("timeout", func(t *testing.T) {
		g := newGenerator(t, &fakeModel{delay: time.Second}, 10*time.Millisecond)
		_, err := g.Generate(context.Background(), "t", "")
		require.Error(t, err)
		assert.True(t, domain.HasCode(err, domain.CodeLLMServiceError))
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestNewLLMQuizGenerator_NilModel(t *testing.T) {
	_, err := NewLLMQuizGenerator(nil, config.LLMConfig{}, config.QuizConfig{}, zap.NewNop())
	assert.Error(t, err)
}

func TestNewLLM_Validation(t *testing.T) {
	ctx := context.Background()

	_, err := NewLLM(ctx, config.LLMConfig{Provider: "googleai"})
	assert.Error(t, err, "missing API key")

	_, err = NewLLM(ctx, config.LLMConfig{Provider: "ollama"})
	assert.Error(t, err, "missing server URL")

	_, err = NewLLM(ctx, config.LLMConfig{Provider: "unknown"})
	assert.Error(t, err)

	model, err := NewLLM(ctx, config.LLMConfig{Provider: "ollama", ServerURL: "http://localhost:11434", Model: "qwen3:0.6b"})
	require.NoError(t, err)
	assert.NotNil(t, model)

	model, err = NewLLM(ctx, config.LLMConfig{Provider: "openai", APIKey: "sk-test", Model: "gpt-4o-mini", ServerURL: "http://localhost:8080/v1"})
	require.NoError(t, err)
	assert.NotNil(t, model)
}
