package transcriber

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"videoquiz/internal/config"
	"videoquiz/internal/domain"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const defaultAPITimeout = 15 * time.Minute

type transcriptionResponse struct {
	Text  string `json:"text"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// WhisperAPITranscriber posts the audio file to an OpenAI compatible
// /v1/audio/transcriptions endpoint.
type WhisperAPITranscriber struct {
	endpoint string
	apiKey   string
	model    string
	language string
	timeout  time.Duration
	logger   *zap.Logger
}

func NewWhisperAPITranscriber(cfg config.TranscriberConfig, logger *zap.Logger) (*WhisperAPITranscriber, error) {
	if cfg.APIURL == "" {
		return nil, errors.New("transcriber.api_url is required for the api backend")
	}
	endpoint := strings.TrimRight(cfg.APIURL, "/")
	if !strings.HasSuffix(endpoint, "/audio/transcriptions") {
		endpoint += "/v1/audio/transcriptions"
	}
	model := cfg.Model
	if model == "" || model == "tiny" {
		model = "whisper-1"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultAPITimeout
	}
	return &WhisperAPITranscriber{
		endpoint: endpoint,
		apiKey:   cfg.APIKey,
		model:    model,
		language: cfg.Language,
		timeout:  timeout,
		logger:   logger,
	}, nil
}

// Transcribe implements domain.Transcriber. The request timeout is the
// smaller of the configured timeout and the context deadline.
func (w *WhisperAPITranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	timeout := w.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if err := ctx.Err(); err != nil {
		return "", domain.NewCancelledError(err)
	}
	if timeout <= 0 {
		return "", domain.NewCancelledError(context.DeadlineExceeded)
	}

	args := fiber.AcquireArgs()
	defer fiber.ReleaseArgs(args)
	args.Set("model", w.model)
	args.Set("response_format", "json")
	if w.language != "" {
		args.Set("language", w.language)
	}

	agent := fiber.Post(w.endpoint).
		Timeout(timeout).
		SendFile(audioPath, "file").
		MultipartForm(args)
	if w.apiKey != "" {
		agent.Set(fiber.HeaderAuthorization, "Bearer "+w.apiKey)
	}

	w.logger.Debug("Posting audio to transcription API", zap.String("endpoint", w.endpoint), zap.String("model", w.model))
	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return "", domain.NewTranscriptionError(errors.Join(errs...))
	}

	var resp transcriptionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", domain.NewTranscriptionError(fmt.Errorf("status %d: decoding response: %w", code, err))
	}
	if code != fiber.StatusOK {
		msg := fmt.Sprintf("status %d", code)
		if resp.Error != nil && resp.Error.Message != "" {
			msg += ": " + resp.Error.Message
		}
		return "", domain.NewTranscriptionError(errors.New(msg))
	}
	return checkTranscript(resp.Text)
}

var _ domain.Transcriber = (*WhisperAPITranscriber)(nil)
