package acquire

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/nguyentantai21042004/scribe-flow/internal/config"
	"github.com/nguyentantai21042004/scribe-flow/internal/logger"
	"github.com/nguyentantai21042004/scribe-flow/pkg/executor"
)

// Transcoder extracts speech-ready audio with ffmpeg.
type Transcoder struct {
	executor   executor.Executor
	logger     logger.Logger
	ffmpegPath string
	audio      config.AudioConfig
}

// NewTranscoder creates a Transcoder from the acquisition settings.
func NewTranscoder(cfg config.AcquisitionConfig, exec executor.Executor, log logger.Logger) *Transcoder {
	return &Transcoder{
		executor:   exec,
		logger:     log,
		ffmpegPath: cfg.FFmpegPath,
		audio:      cfg.Audio,
	}
}

// Extract writes <destDir>/<stem>.wav from mediaPath. An existing output is
// reused.
func (t *Transcoder) Extract(ctx context.Context, mediaPath, destDir string) (string, error) {
	audioPath := AudioPath(destDir, mediaPath)
	if _, err := os.Stat(audioPath); err == nil {
		t.logger.Info(ctx, "Audio exists, skip extraction: %s", audioPath)
		return audioPath, nil
	}

	t.logger.Info(ctx, "Extracting audio: %s", mediaPath)

	if _, err := t.executor.Execute(ctx, t.ffmpegPath, t.args(mediaPath, audioPath)...); err != nil {
		return "", fmt.Errorf("ffmpeg extract audio: %w", err)
	}
	if _, err := os.Stat(audioPath); err != nil {
		return "", fmt.Errorf("ffmpeg completed but audio is missing: %w", err)
	}

	t.logger.Info(ctx, "Audio extracted successfully: %s", audioPath)
	return audioPath, nil
}

// args builds a mono PCM extraction; -vn drops the video stream.
func (t *Transcoder) args(in, out string) []string {
	return []string{
		"-hide_banner",
		"-nostdin",
		"-y",
		"-i", in,
		"-vn",
		"-ar", strconv.Itoa(t.audio.SampleRate),
		"-ac", strconv.Itoa(t.audio.Channels),
		"-c:a", t.audio.Codec,
		out,
	}
}
