// Package backend adapts transcription engines to one capability interface.
package backend

import (
	"context"
	"time"
)

// Request is one transcription invocation.
type Request struct {
	AudioPath string
	OutputDir string
}

// Backend transcribes an audio artifact and persists the result as JSON at
// transcript.Path(OutputDir, AudioPath, Name()), returning that path.
type Backend interface {
	Name() string
	// UsesAccelerator reports whether the backend claims the shared
	// accelerator device while it runs.
	UsesAccelerator() bool
	// Timeout bounds one invocation; zero means no bound.
	Timeout() time.Duration
	Transcribe(ctx context.Context, req Request) (string, error)
}

// Source hands out the backend for a model id.
type Source interface {
	Get(model string) (Backend, error)
}
