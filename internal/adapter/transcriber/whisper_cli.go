package transcriber

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"videoquiz/internal/config"
	"videoquiz/internal/domain"

	"go.uber.org/zap"
)

// WhisperCLITranscriber runs the openai-whisper command line tool.
type WhisperCLITranscriber struct {
	binary   string
	model    string
	language string
	logger   *zap.Logger
}

func NewWhisperCLITranscriber(cfg config.TranscriberConfig, logger *zap.Logger) *WhisperCLITranscriber {
	binary := cfg.Binary
	if binary == "" {
		binary = "whisper"
	}
	model := cfg.Model
	if model == "" {
		model = "tiny"
	}
	return &WhisperCLITranscriber{binary: binary, model: model, language: cfg.Language, logger: logger}
}

// Transcribe implements domain.Transcriber. Output goes to a per-call
// temporary directory that is removed afterwards.
func (w *WhisperCLITranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	outDir, err := os.MkdirTemp("", "whisper-*")
	if err != nil {
		return "", domain.NewFilesystemError("failed to create transcription directory", err)
	}
	defer os.RemoveAll(outDir)

	args := []string{
		audioPath,
		"--model", w.model,
		"--output_format", "txt",
		"--output_dir", outDir,
		"--fp16", "False",
		"--verbose", "False",
	}
	if w.language != "" {
		args = append(args, "--language", w.language)
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, w.binary, args...)
	cmd.Stderr = &stderr

	w.logger.Debug("Running whisper", zap.String("audio", audioPath), zap.String("model", w.model))
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", domain.NewCancelledError(ctxErr)
		}
		return "", domain.NewTranscriptionError(fmt.Errorf("%w: %s", err, strings.TrimSpace(tail(stderr.String(), 512))))
	}

	base := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	data, err := os.ReadFile(filepath.Join(outDir, base+".txt"))
	if err != nil {
		return "", domain.NewTranscriptionError(fmt.Errorf("reading whisper output: %w", err))
	}
	return checkTranscript(string(data))
}

func checkTranscript(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", domain.NewTranscriptionError(fmt.Errorf("transcript is empty"))
	}
	return text, nil
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

var _ domain.Transcriber = (*WhisperCLITranscriber)(nil)
