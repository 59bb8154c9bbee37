// Package processor runs one job: it prepares the audio for a source, fans
// it out to the requested backends and collects the transcripts.
package processor

import (
	"context"

	"github.com/nguyentantai21042004/scribe-flow/internal/metadata"
)

// Processor defines the interface for the job orchestrator
type Processor interface {
	// Process returns the transcript paths produced for ref, in the order of
	// models. override may be nil.
	Process(ctx context.Context, ref string, models []string, override *metadata.Record) ([]string, error)
}

// Publisher receives the artifacts of a finished job.
type Publisher interface {
	Publish(ctx context.Context, dir string, files []string) error
}
