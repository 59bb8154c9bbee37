package processor

import (
	"context"
	"fmt"
	"sync"

	"github.com/nguyentantai21042004/scribe-flow/internal/backend"
	"github.com/nguyentantai21042004/scribe-flow/internal/metadata"
	"github.com/nguyentantai21042004/scribe-flow/internal/transcript"
)

// transcribeAll runs every model and returns the produced paths in the order
// of models. Failed models are logged and left out.
func (p *implProcessor) transcribeAll(ctx context.Context, models []string, audioPath, dir string, meta metadata.Record, man *manifest) ([]string, []error) {
	paths := make([]string, len(models))
	errs := make([]error, len(models))

	limit := p.cfg.Performance.MaxConcurrentModels
	if limit <= 1 {
		for i, model := range models {
			p.logger.Info(ctx, "--- [%d/%d] Running %s transcription ---", i+1, len(models), model)
			paths[i], errs[i] = p.transcribeModel(ctx, model, audioPath, dir, meta, man)
		}
	} else {
		sem := newSemaphore(limit)
		var wg sync.WaitGroup
		for i, model := range models {
			wg.Add(1)
			go func(i int, model string) {
				defer wg.Done()
				if err := sem.acquire(ctx); err != nil {
					errs[i] = &BackendInvocationError{Model: model, Err: err}
					return
				}
				defer sem.release()
				p.logger.Info(ctx, "--- [%d/%d] Running %s transcription ---", i+1, len(models), model)
				paths[i], errs[i] = p.transcribeModel(ctx, model, audioPath, dir, meta, man)
			}(i, model)
		}
		wg.Wait()
	}

	var results []string
	var failures []error
	for i, model := range models {
		if errs[i] != nil {
			p.logger.Error(ctx, "%s transcription failed: %v", model, errs[i])
			failures = append(failures, errs[i])
			continue
		}
		p.logger.Info(ctx, "%s transcription complete: %s", model, paths[i])
		results = append(results, paths[i])
	}
	return results, failures
}

// transcribeModel produces the enriched transcript for one model, reusing a
// transcript left by an earlier run. Panics are turned into errors.
func (p *implProcessor) transcribeModel(ctx context.Context, model, audioPath, dir string, meta metadata.Record, man *manifest) (path string, err error) {
	defer func() {
		if r := recover(); r != nil {
			path = ""
			err = &BackendInvocationError{Model: model, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	expected := transcript.Path(dir, audioPath, model)
	if p.reuseTranscript(ctx, model, expected, meta, man) {
		return expected, nil
	}

	b, err := p.backends.Get(model)
	if err != nil {
		return "", &BackendInvocationError{Model: model, Err: err}
	}

	if b.UsesAccelerator() {
		if err := p.accel.acquire(ctx); err != nil {
			return "", &BackendInvocationError{Model: model, Err: err}
		}
		defer p.accel.release()
	}

	out, err := backend.Invoke(ctx, b, backend.Request{AudioPath: audioPath, OutputDir: dir})
	if err != nil {
		return "", &BackendInvocationError{Model: model, Err: err}
	}

	if err := transcript.EnrichFile(out, meta, model); err != nil {
		return "", &BackendInvocationError{Model: model, Err: err}
	}

	man.recordTranscript(ctx, model, out)
	p.saveManifest(ctx, man)
	return out, nil
}

// reuseTranscript reports whether path holds a usable transcript from an
// earlier run. A transcript that was written but never enriched gets its
// metadata now; an unreadable one is produced again.
func (p *implProcessor) reuseTranscript(ctx context.Context, model, path string, meta metadata.Record, man *manifest) bool {
	if !fileExists(path) {
		return false
	}

	doc, err := transcript.ReadFile(path)
	if err != nil {
		p.logger.Warn(ctx, "Existing %s transcript is unreadable, regenerating: %v", model, err)
		return false
	}

	if !transcript.IsEnriched(doc) {
		p.logger.Info(ctx, "Enriching %s transcript left by an interrupted run", model)
		if err := transcript.EnrichFile(path, meta, model); err != nil {
			p.logger.Warn(ctx, "Failed to enrich existing %s transcript, regenerating: %v", model, err)
			return false
		}
		man.recordTranscript(ctx, model, path)
		p.saveManifest(ctx, man)
	} else if !man.verifyTranscript(ctx, model, path) {
		p.logger.Warn(ctx, "%s transcript changed since it was recorded: %s", model, path)
	}

	p.logger.Info(ctx, "Transcript exists, skipping %s: %s", model, path)
	return true
}
