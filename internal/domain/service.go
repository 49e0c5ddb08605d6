package domain

import (
	"context"
	"time"
)

// AudioFetcher downloads the audio track of a video into outputPath.
type AudioFetcher interface {
	// Fetch writes a single-channel m4a file to outputPath and returns its
	// absolute path.
	Fetch(ctx context.Context, videoURL, outputPath string) (string, error)
}

// Transcriber turns an audio file into plain text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// QuizGenerator asks a language model for a quiz over the transcript and
// returns the raw model text. previousError is empty on the first attempt and
// otherwise describes why the last answer was rejected.
type QuizGenerator interface {
	Generate(ctx context.Context, transcript, previousError string) (string, error)
}

// TokenBlacklist records revoked token IDs until the token would expire anyway.
type TokenBlacklist interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// TransactionManager runs fn inside a database transaction carried by ctx.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
