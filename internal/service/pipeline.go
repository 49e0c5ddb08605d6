package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"videoquiz/internal/cache"
	"videoquiz/internal/config"
	"videoquiz/internal/domain"
	"videoquiz/internal/util"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"
)

// QuizPipeline turns a video URL into a validated quiz:
// fetch audio, transcribe, generate, parse and validate.
type QuizPipeline struct {
	fetcher     domain.AudioFetcher
	transcriber domain.Transcriber
	generator   domain.QuizGenerator
	cache       domain.Cache

	mediaDir      string
	timeout       time.Duration
	cacheTTL      time.Duration
	questionCount int
	maxAttempts   int

	sem      *semaphore.Weighted
	group    singleflight.Group
	mu       sync.Mutex
	inflight map[string]*sharedWork
	logger   *zap.Logger
}

// sharedWork carries the context of one deduplicated fetch and transcribe.
// It is cancelled once no caller waits for it anymore.
type sharedWork struct {
	ctx     context.Context
	cancel  context.CancelFunc
	waiters int
}

// NewQuizPipeline wires the pipeline steps. c may be nil, which disables the
// transcript cache.
func NewQuizPipeline(
	fetcher domain.AudioFetcher,
	transcriber domain.Transcriber,
	generator domain.QuizGenerator,
	c domain.Cache,
	fetcherCfg config.FetcherConfig,
	pipelineCfg config.PipelineConfig,
	quizCfg config.QuizConfig,
	logger *zap.Logger,
) *QuizPipeline {
	maxConcurrent := pipelineCfg.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	questionCount := quizCfg.QuestionCount
	if questionCount <= 0 {
		questionCount = 10
	}
	maxAttempts := quizCfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	return &QuizPipeline{
		fetcher:       fetcher,
		transcriber:   transcriber,
		generator:     generator,
		cache:         c,
		mediaDir:      fetcherCfg.MediaDir,
		timeout:       pipelineCfg.Timeout,
		cacheTTL:      pipelineCfg.TranscriptCacheTTL,
		questionCount: questionCount,
		maxAttempts:   maxAttempts,
		sem:           semaphore.NewWeighted(int64(maxConcurrent)),
		inflight:      make(map[string]*sharedWork),
		logger:        logger,
	}
}

// Run executes the pipeline for videoURL. Any failure aborts the run and no
// partial quiz is returned.
func (p *QuizPipeline) Run(ctx context.Context, videoURL string) (*domain.GeneratedQuiz, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	if err := p.sem.Acquire(ctx, 1); err != nil {
		return nil, domain.NewCancelledError(err)
	}
	defer p.sem.Release(1)

	start := time.Now()
	transcript, err := p.transcript(ctx, videoURL)
	if err != nil {
		return nil, err
	}

	quiz, err := p.generate(ctx, transcript)
	if err != nil {
		return nil, err
	}

	p.logger.Info("Quiz generated",
		zap.String("url", videoURL),
		zap.Int("questions", len(quiz.Questions)),
		zap.Duration("duration", time.Since(start)))
	return quiz, nil
}

// transcript returns the cached transcript for videoURL or produces one.
// Concurrent calls for the same URL share a single download.
func (p *QuizPipeline) transcript(ctx context.Context, videoURL string) (string, error) {
	urlHash := util.SHA256Hex(videoURL)
	key := cache.TranscriptKey(urlHash)

	if p.cacheEnabled() {
		cached, err := p.cache.Get(ctx, key)
		switch {
		case err == nil && cached != "":
			p.logger.Debug("Transcript cache hit", zap.String("url", videoURL))
			return cached, nil
		case err != nil && !errors.Is(err, domain.ErrCacheMiss):
			p.logger.Warn("Transcript cache lookup failed", zap.Error(err))
		}
	}

	for {
		text, retry, err := p.sharedTranscript(ctx, urlHash, key, videoURL)
		if !retry {
			return text, err
		}
	}
}

// sharedTranscript waits for the deduplicated download of videoURL. Each
// caller stops waiting when its own ctx ends. retry is set when the caller
// joined work that its previous waiters had already abandoned.
func (p *QuizPipeline) sharedTranscript(ctx context.Context, urlHash, key, videoURL string) (string, bool, error) {
	work := p.join(ctx, urlHash)
	defer p.leave(urlHash, work)

	ch := p.group.DoChan(urlHash, func() (interface{}, error) {
		text, err := p.fetchAndTranscribe(work.ctx, videoURL)
		if err != nil {
			return "", err
		}
		if p.cacheEnabled() {
			if err := p.cache.Set(work.ctx, key, text, p.cacheTTL); err != nil {
				p.logger.Warn("Failed to cache transcript", zap.Error(err))
			}
		}
		return text, nil
	})

	select {
	case <-ctx.Done():
		return "", false, domain.NewCancelledError(ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			abandoned := domain.HasCode(res.Err, domain.CodeCancelled) &&
				ctx.Err() == nil && work.ctx.Err() == nil
			return "", abandoned, res.Err
		}
		if res.Shared {
			p.logger.Debug("Transcript shared with concurrent request", zap.String("url", videoURL))
		}
		return res.Val.(string), false, nil
	}
}

// join registers the caller as a waiter for the work on urlHash. The work
// context is detached from ctx and bounded by the pipeline timeout.
func (p *QuizPipeline) join(ctx context.Context, urlHash string) *sharedWork {
	p.mu.Lock()
	defer p.mu.Unlock()

	work, ok := p.inflight[urlHash]
	if !ok {
		work = &sharedWork{}
		base := context.WithoutCancel(ctx)
		if p.timeout > 0 {
			work.ctx, work.cancel = context.WithTimeout(base, p.timeout)
		} else {
			work.ctx, work.cancel = context.WithCancel(base)
		}
		p.inflight[urlHash] = work
	}
	work.waiters++
	return work
}

func (p *QuizPipeline) leave(urlHash string, work *sharedWork) {
	p.mu.Lock()
	defer p.mu.Unlock()

	work.waiters--
	if work.waiters > 0 {
		return
	}
	work.cancel()
	if p.inflight[urlHash] == work {
		delete(p.inflight, urlHash)
	}
}

func (p *QuizPipeline) fetchAndTranscribe(ctx context.Context, videoURL string) (string, error) {
	outputPath := filepath.Join(p.mediaDir, util.NewULID()+".m4a")

	audioPath, err := p.fetcher.Fetch(ctx, videoURL, outputPath)
	// The fetcher may leave a partial file behind even when it fails.
	defer p.removeAudio(outputPath, audioPath)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", domain.NewCancelledError(ctxErr)
		}
		return "", err
	}

	text, err := p.transcriber.Transcribe(ctx, audioPath)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", domain.NewCancelledError(ctxErr)
		}
		var de *domain.DomainError
		if errors.As(err, &de) {
			return "", err
		}
		return "", domain.NewTranscriptionError(err)
	}
	p.logger.Debug("Transcription finished", zap.String("url", videoURL), zap.Int("chars", len(text)))
	return text, nil
}

// generate asks the model for a quiz, feeding each rejection reason back into
// the next attempt.
func (p *QuizPipeline) generate(ctx context.Context, transcript string) (*domain.GeneratedQuiz, error) {
	var previousErr error
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		feedback := ""
		if previousErr != nil {
			feedback = previousErr.Error()
		}

		raw, err := p.generator.Generate(ctx, transcript, feedback)
		if err != nil {
			return nil, err
		}

		quiz, err := domain.ParseGeneratedQuiz(raw)
		if err == nil {
			err = quiz.Validate(p.questionCount)
		}
		if err == nil {
			return quiz, nil
		}

		p.logger.Warn("Generated quiz rejected",
			zap.Int("attempt", attempt),
			zap.Int("maxAttempts", p.maxAttempts),
			zap.Error(err))
		previousErr = err
	}
	return nil, domain.NewInvalidQuizOutputError(p.maxAttempts, previousErr)
}

func (p *QuizPipeline) removeAudio(paths ...string) {
	seen := make(map[string]struct{}, len(paths))
	for _, path := range paths {
		if path == "" {
			continue
		}
		if _, ok := seen[path]; ok {
			continue
		}
		seen[path] = struct{}{}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			p.logger.Warn("Failed to remove audio file", zap.String("path", path), zap.Error(err))
		}
	}
}

func (p *QuizPipeline) cacheEnabled() bool {
	return p.cache != nil && p.cacheTTL > 0
}
