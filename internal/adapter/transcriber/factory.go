package transcriber

import (
	"fmt"

	"videoquiz/internal/config"
	"videoquiz/internal/domain"

	"go.uber.org/zap"
)

// New selects the backend named by transcriber.backend.
func New(cfg config.TranscriberConfig, logger *zap.Logger) (domain.Transcriber, error) {
	switch cfg.Backend {
	case "", "cli":
		return NewWhisperCLITranscriber(cfg, logger), nil
	case "api":
		return NewWhisperAPITranscriber(cfg, logger)
	default:
		return nil, fmt.Errorf("unsupported transcriber backend %q", cfg.Backend)
	}
}
