package batch

import (
	"github.com/nguyentantai21042004/scribe-flow/internal/logger"
	"github.com/nguyentantai21042004/scribe-flow/internal/processor"
)

type implController struct {
	prober    Prober
	processor processor.Processor
	models    []string
	logger    logger.Logger
}

// New creates a Controller that runs models on every entry. A nil models
// slice leaves the choice to the processor.
func New(prober Prober, proc processor.Processor, models []string, log logger.Logger) Controller {
	return &implController{
		prober:    prober,
		processor: proc,
		models:    models,
		logger:    log,
	}
}
