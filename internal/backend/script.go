package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/nguyentantai21042004/scribe-flow/internal/config"
	"github.com/nguyentantai21042004/scribe-flow/internal/logger"
	"github.com/nguyentantai21042004/scribe-flow/internal/transcript"
	"github.com/nguyentantai21042004/scribe-flow/pkg/executor"
)

// Script runs an external helper program per invocation:
//
//	<command> <args...> --input_file <audio> --output_file <json> --config <options json>
//
// The helper owns model loading and writes the transcript itself. With a
// work_dir it runs there and receives absolute file paths.
type Script struct {
	name        string
	command     string
	args        []string
	workDir     string
	options     map[string]interface{}
	accelerator bool
	timeout     time.Duration
	executor    executor.Executor
	logger      logger.Logger
}

// NewScript builds a Script backend for model from its settings.
func NewScript(model string, cfg config.BackendConfig, exec executor.Executor, log logger.Logger) *Script {
	return &Script{
		name:        model,
		command:     cfg.Command,
		args:        append([]string(nil), cfg.Args...),
		workDir:     cfg.WorkDir,
		options:     cfg.Options,
		accelerator: cfg.Accelerator,
		timeout:     cfg.Timeout,
		executor:    exec,
		logger:      log,
	}
}

func (s *Script) Name() string           { return s.name }
func (s *Script) UsesAccelerator() bool  { return s.accelerator }
func (s *Script) Timeout() time.Duration { return s.timeout }

func (s *Script) Transcribe(ctx context.Context, req Request) (string, error) {
	out := transcript.Path(req.OutputDir, req.AudioPath, s.name)

	options := s.options
	if options == nil {
		options = map[string]interface{}{}
	}
	cfgJSON, err := json.Marshal(options)
	if err != nil {
		return "", fmt.Errorf("encode %s options: %w", s.name, err)
	}

	input, output := req.AudioPath, out
	if s.workDir != "" {
		if input, err = filepath.Abs(input); err != nil {
			return "", fmt.Errorf("resolve input path: %w", err)
		}
		if output, err = filepath.Abs(output); err != nil {
			return "", fmt.Errorf("resolve output path: %w", err)
		}
	}

	args := append(append([]string(nil), s.args...),
		"--input_file", input,
		"--output_file", output,
		"--config", string(cfgJSON),
	)

	s.logger.Info(ctx, "Running transcription for model: %s", s.name)
	if _, err := s.executor.ExecuteInDir(ctx, s.workDir, s.command, args...); err != nil {
		return "", fmt.Errorf("run %s helper: %w", s.name, err)
	}
	return out, nil
}
