package processor

import (
	"context"
	"fmt"
	"time"

	"github.com/nguyentantai21042004/scribe-flow/internal/acquire"
	"github.com/nguyentantai21042004/scribe-flow/internal/location"
	"github.com/nguyentantai21042004/scribe-flow/internal/metadata"
)

// Process orchestrates one job from source reference to transcripts
func (p *implProcessor) Process(ctx context.Context, ref string, models []string, override *metadata.Record) ([]string, error) {
	startTime := time.Now()

	if len(models) == 0 {
		models = p.cfg.Models
	}
	if len(models) == 0 {
		return nil, ErrNoModels
	}

	var meta metadata.Record
	if override != nil {
		meta = *override
	}

	p.logger.Info(ctx, "========================================")
	p.logger.Info(ctx, "Starting job: %s", ref)
	p.logger.Info(ctx, "Models: %v", models)
	p.logger.Info(ctx, "========================================")

	// Step 1: Resolve the job directory
	if acquire.IsRemote(ref) && meta.Title == "" {
		looked, err := p.acquirer.Lookup(ctx, ref)
		if err != nil {
			return nil, &AcquisitionError{Source: ref, Err: err}
		}
		meta = metadata.Merge(meta, looked)
	}

	dir, err := p.resolver.Resolve(p.resolver.Identify(ref, meta))
	if err != nil {
		return nil, fmt.Errorf("resolve output directory: %w", err)
	}
	p.logger.Info(ctx, "Output directory: %s", dir)

	man := p.loadManifest(ctx, dir, ref)

	// Step 2: Prepare the audio artifact
	audioPath, meta, err := p.prepareAudio(ctx, ref, dir, meta, man)
	if err != nil {
		return nil, &AcquisitionError{Source: ref, Err: err}
	}
	p.logger.Info(ctx, "Audio ready: %s", audioPath)

	// Step 3: Fall back to the file name when no title is known
	meta = meta.WithFallbackTitle(location.Sanitize(location.Stem(ref), location.DefaultMaxLength))
	man.setSource(audioPath, meta)

	// Step 4: Transcribe with every model
	results, errs := p.transcribeAll(ctx, models, audioPath, dir, meta, man)

	if len(results) == 0 {
		p.saveManifest(ctx, man)
		return nil, &AllBackendsFailedError{Source: ref, Models: models, Errs: errs}
	}

	// Step 5: Consensus, exports and publishing
	p.finish(ctx, dir, meta, results, man)

	p.logger.Info(ctx, "========================================")
	p.logger.Info(ctx, "Job completed: %d/%d transcripts", len(results), len(models))
	p.logger.Info(ctx, "Output directory: %s", dir)
	p.logger.Info(ctx, "Processing time: %s", time.Since(startTime))
	p.logger.Info(ctx, "========================================")

	return results, nil
}
