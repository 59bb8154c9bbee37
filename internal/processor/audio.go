package processor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nguyentantai21042004/scribe-flow/internal/acquire"
	"github.com/nguyentantai21042004/scribe-flow/internal/location"
	"github.com/nguyentantai21042004/scribe-flow/internal/metadata"
)

// prepareAudio makes sure dir holds the canonical audio for ref and returns
// its path together with the metadata known after acquisition.
func (p *implProcessor) prepareAudio(ctx context.Context, ref, dir string, meta metadata.Record, man *manifest) (string, metadata.Record, error) {
	switch {
	case acquire.IsRemote(ref):
		return p.prepareRemote(ctx, ref, dir, meta, man)

	case acquire.IsVideo(ref):
		p.logger.Info(ctx, "Extracting audio from video: %s", ref)
		copied, err := acquire.CopyInto(ref, dir)
		if err != nil {
			return "", meta, fmt.Errorf("copy video: %w", err)
		}
		audioPath, err := p.extractor.Extract(ctx, copied, dir)
		if err != nil {
			return "", meta, fmt.Errorf("extract audio: %w", err)
		}
		return audioPath, meta, nil

	default:
		if !acquire.IsAudio(ref) {
			p.logger.Warn(ctx, "Unknown file type for %s, treating it as audio", ref)
		}
		copied, err := acquire.CopyInto(ref, dir)
		if err != nil {
			return "", meta, fmt.Errorf("copy audio: %w", err)
		}
		return copied, meta, nil
	}
}

// prepareRemote downloads ref unless a previous run already left its audio in dir.
func (p *implProcessor) prepareRemote(ctx context.Context, ref, dir string, meta metadata.Record, man *manifest) (string, metadata.Record, error) {
	meta = metadata.Merge(meta, man.Metadata)

	baseName := location.Sanitize(meta.Title, location.DefaultMaxLength)
	candidates := []string{}
	if man.Audio != "" {
		candidates = append(candidates, filepath.Join(dir, man.Audio))
	}
	if baseName != "" {
		candidates = append(candidates, filepath.Join(dir, baseName+".wav"))
	}
	for _, c := range candidates {
		if fileExists(c) {
			p.logger.Info(ctx, "Audio already present, skipping download: %s", c)
			return c, meta, nil
		}
	}

	audioPath, acquired, err := p.acquirer.Acquire(ctx, acquire.Request{
		Ref:      ref,
		DestDir:  dir,
		Quality:  p.cfg.Acquisition.VideoQuality,
		BaseName: baseName,
	})
	if err != nil {
		return "", meta, err
	}
	return audioPath, metadata.Merge(meta, acquired), nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
