package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/nguyentantai21042004/scribe-flow/internal/acquire"
	"github.com/nguyentantai21042004/scribe-flow/internal/backend"
	"github.com/nguyentantai21042004/scribe-flow/internal/batch"
	"github.com/nguyentantai21042004/scribe-flow/internal/config"
	"github.com/nguyentantai21042004/scribe-flow/internal/logger"
	"github.com/nguyentantai21042004/scribe-flow/internal/processor"
	"github.com/nguyentantai21042004/scribe-flow/internal/publish"
	"github.com/nguyentantai21042004/scribe-flow/internal/watcher"
	"github.com/nguyentantai21042004/scribe-flow/pkg/executor"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	opts, err := parseArgs(args, os.Stderr)
	if err != nil {
		return 2
	}

	// Load configuration
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}
	opts.apply(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize logger
	log := logger.New(cfg.Logging.Level)
	log.Info(ctx, "========================================")
	log.Info(ctx, "Scribe transcription pipeline")
	log.Info(ctx, "========================================")
	log.Info(ctx, "System: %s/%s", runtime.GOOS, runtime.GOARCH)
	log.Info(ctx, "Models: %v", cfg.Models)
	log.Info(ctx, "Output: %s", cfg.Paths.Output)

	// Initialize dependencies
	exec := executor.New()
	transcoder := acquire.NewTranscoder(cfg.Acquisition, exec, log)
	ytdlp := acquire.NewYTDLP(cfg.Acquisition, exec, transcoder, log)
	backends := backend.NewCatalog(cfg, exec, log)

	var publisher processor.Publisher
	s3, err := publish.NewS3(cfg.Publish.S3, log)
	if err != nil {
		log.Error(ctx, "Failed to set up publishing: %v", err)
		return 1
	}
	if s3 != nil {
		publisher = s3
	}

	proc := processor.New(cfg, ytdlp, transcoder, backends, publisher, log)

	if opts.watch {
		return watch(ctx, opts.input, cfg, proc, log)
	}

	var results []string
	if acquire.IsRemote(opts.input) {
		ctrl := batch.New(ytdlp, proc, cfg.Models, log)
		results, err = ctrl.ProcessBatch(ctx, opts.input, opts.playlistStart)
	} else {
		results, err = proc.Process(ctx, opts.input, cfg.Models, nil)
	}

	if err != nil {
		log.Error(ctx, "Transcription failed: %v", err)
	}
	printSummary(results)

	if err != nil && len(results) == 0 {
		return 1
	}
	return 0
}

// watch processes every media file dropped into dir until interrupted.
func watch(ctx context.Context, dir string, cfg *config.Config, proc processor.Processor, log logger.Logger) int {
	handler := func(ctx context.Context, path string) error {
		_, err := proc.Process(ctx, path, cfg.Models, nil)
		return err
	}

	w, err := watcher.New(dir, handler, log, cfg.Performance.MaxConcurrentJobs)
	if err != nil {
		log.Error(ctx, "Failed to create watcher: %v", err)
		return 1
	}
	defer w.Stop()

	log.Info(ctx, "Monitoring: %s (press Ctrl+C to stop)", dir)
	if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error(ctx, "Watcher error: %v", err)
		return 1
	}
	log.Info(ctx, "Scribe stopped")
	return 0
}

func printSummary(results []string) {
	if len(results) == 0 {
		fmt.Println("No transcripts were generated.")
		return
	}
	fmt.Printf("Generated %d transcript(s):\n", len(results))
	for _, r := range results {
		fmt.Printf("  %s\n", r)
	}
}
