package fetcher

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"videoquiz/internal/config"
	"videoquiz/internal/domain"

	"go.uber.org/zap"
)

// YTDLPFetcher downloads the best audio track of a video with yt-dlp and
// converts it to single-channel m4a.
type YTDLPFetcher struct {
	binary       string
	allowedHosts []string
	logger       *zap.Logger
}

// NewYTDLPFetcher creates a fetcher from the fetcher configuration.
func NewYTDLPFetcher(cfg config.FetcherConfig, logger *zap.Logger) *YTDLPFetcher {
	binary := cfg.Binary
	if binary == "" {
		binary = "yt-dlp"
	}
	hosts := make([]string, 0, len(cfg.AllowedHosts))
	for _, h := range cfg.AllowedHosts {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			hosts = append(hosts, h)
		}
	}
	return &YTDLPFetcher{binary: binary, allowedHosts: hosts, logger: logger}
}

// Fetch implements domain.AudioFetcher.
func (f *YTDLPFetcher) Fetch(ctx context.Context, videoURL, outputPath string) (string, error) {
	if err := f.checkURL(videoURL); err != nil {
		return "", err
	}

	absPath, err := filepath.Abs(outputPath)
	if err != nil {
		return "", domain.NewFilesystemError("failed to resolve audio path", err)
	}
	if err := ensureWritableDir(filepath.Dir(absPath)); err != nil {
		return "", err
	}

	// yt-dlp appends the extension itself after post-processing.
	template := strings.TrimSuffix(absPath, filepath.Ext(absPath)) + ".%(ext)s"
	args := []string{
		"--no-playlist",
		"--no-progress",
		"-f", "bestaudio/best",
		"-x",
		"--audio-format", "m4a",
		"--postprocessor-args", "ffmpeg:-ac 1",
		"-o", template,
		videoURL,
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, f.binary, args...)
	cmd.Stderr = &stderr

	f.logger.Debug("Running audio download", zap.String("url", videoURL), zap.String("output", absPath))
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", domain.NewCancelledError(ctxErr)
		}
		reason := lastErrorLine(stderr.String())
		if reason == "" {
			reason = err.Error()
		}
		return "", domain.NewDownloadError(reason, err)
	}

	if _, err := os.Stat(absPath); err != nil {
		return "", domain.NewDownloadError("downloader produced no audio file", err)
	}
	return absPath, nil
}

func (f *YTDLPFetcher) checkURL(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return domain.NewDownloadError("malformed URL", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return domain.NewDownloadError(fmt.Sprintf("unsupported URL scheme %q", u.Scheme), nil)
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return domain.NewDownloadError("URL has no host", nil)
	}
	if len(f.allowedHosts) == 0 {
		return nil
	}
	for _, allowed := range f.allowedHosts {
		if host == allowed || strings.HasSuffix(host, "."+allowed) {
			return nil
		}
	}
	return domain.NewDownloadError(fmt.Sprintf("host %q is not allowed", host), nil)
}

func ensureWritableDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return domain.NewFilesystemError("media directory is not writable", err)
	}
	probe, err := os.CreateTemp(dir, ".probe-*")
	if err != nil {
		return domain.NewFilesystemError("media directory is not writable", err)
	}
	_ = probe.Close()
	_ = os.Remove(probe.Name())
	return nil
}

// lastErrorLine picks the most specific yt-dlp error message from stderr.
func lastErrorLine(stderr string) string {
	var last string
	for _, line := range strings.Split(stderr, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "ERROR:") {
			last = strings.TrimSpace(strings.TrimPrefix(line, "ERROR:"))
		}
	}
	return last
}

var _ domain.AudioFetcher = (*YTDLPFetcher)(nil)
