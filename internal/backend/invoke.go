package backend

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/nguyentantai21042004/scribe-flow/internal/transcript"
)

// ErrTimeout is returned when a backend exceeds its bounded wait.
var ErrTimeout = errors.New("backend timed out")

type invokeResult struct {
	path string
	err  error
}

// Invoke runs b under its timeout and checks that the transcript landed at
// the predictable path. Invoke returns once the deadline passes even if the
// backend ignores ctx; its late result is discarded.
func Invoke(ctx context.Context, b Backend, req Request) (string, error) {
	if d := b.Timeout(); d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	done := make(chan invokeResult, 1)
	go func() {
		var res invokeResult
		defer func() {
			if r := recover(); r != nil {
				res = invokeResult{err: fmt.Errorf("panic: %v", r)}
			}
			done <- res
		}()
		res.path, res.err = b.Transcribe(ctx, req)
	}()

	var res invokeResult
	select {
	case res = <-done:
	case <-ctx.Done():
		return "", contextError(ctx, b)
	}

	if res.err != nil {
		if ctx.Err() != nil {
			return "", contextError(ctx, b)
		}
		return "", res.err
	}

	want := transcript.Path(req.OutputDir, req.AudioPath, b.Name())
	if res.path != want {
		return "", fmt.Errorf("backend %s wrote %s, expected %s", b.Name(), res.path, want)
	}
	if _, err := os.Stat(res.path); err != nil {
		return "", fmt.Errorf("backend %s completed but transcript is missing: %w", b.Name(), err)
	}
	return res.path, nil
}

func contextError(ctx context.Context, b Backend) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s", ErrTimeout, b.Timeout())
	}
	return fmt.Errorf("backend %s interrupted: %w", b.Name(), ctx.Err())
}
