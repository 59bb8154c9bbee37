package processor

import (
	"github.com/nguyentantai21042004/scribe-flow/internal/acquire"
	"github.com/nguyentantai21042004/scribe-flow/internal/backend"
	"github.com/nguyentantai21042004/scribe-flow/internal/config"
	"github.com/nguyentantai21042004/scribe-flow/internal/location"
	"github.com/nguyentantai21042004/scribe-flow/internal/logger"
)

type implProcessor struct {
	cfg       *config.Config
	acquirer  acquire.Acquirer
	extractor acquire.Extractor
	backends  backend.Source
	publisher Publisher
	resolver  *location.Resolver
	accel     *semaphore
	logger    logger.Logger
}

// New creates a new Processor instance. publisher may be nil.
func New(cfg *config.Config, acq acquire.Acquirer, ext acquire.Extractor, backends backend.Source, publisher Publisher, log logger.Logger) Processor {
	slots := cfg.Performance.AcceleratorSlots
	if slots < 1 {
		slots = 1
	}
	return &implProcessor{
		cfg:       cfg,
		acquirer:  acq,
		extractor: ext,
		backends:  backends,
		publisher: publisher,
		resolver:  location.NewResolver(cfg.Paths.Output),
		accel:     newSemaphore(slots),
		logger:    log,
	}
}
