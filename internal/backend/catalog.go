package backend

import (
	"fmt"
	"sync"

	"github.com/nguyentantai21042004/scribe-flow/internal/config"
	"github.com/nguyentantai21042004/scribe-flow/internal/logger"
	"github.com/nguyentantai21042004/scribe-flow/pkg/executor"
)

// Catalog builds backends from configuration on first use.
type Catalog struct {
	cfg      *config.Config
	executor executor.Executor
	logger   logger.Logger

	mu    sync.Mutex
	built map[string]Backend
}

// NewCatalog creates a Catalog over cfg.
func NewCatalog(cfg *config.Config, exec executor.Executor, log logger.Logger) *Catalog {
	return &Catalog{
		cfg:      cfg,
		executor: exec,
		logger:   log,
		built:    make(map[string]Backend),
	}
}

// Get returns the backend for model, building it once.
func (c *Catalog) Get(model string) (Backend, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if b, ok := c.built[model]; ok {
		return b, nil
	}

	bc := c.cfg.BackendFor(model)
	var b Backend
	switch bc.Kind {
	case config.KindScript:
		b = NewScript(model, bc, c.executor, c.logger)
	case config.KindGemini:
		b = NewGemini(model, bc, c.cfg.Gemini.APIKeys, c.logger)
	default:
		return nil, fmt.Errorf("model %s: unsupported backend kind %q", model, bc.Kind)
	}

	c.built[model] = b
	return b, nil
}

// Static is a fixed set of backends keyed by model id.
type Static map[string]Backend

// Get returns the backend registered for model.
func (s Static) Get(model string) (Backend, error) {
	b, ok := s[model]
	if !ok {
		return nil, fmt.Errorf("model %s: no backend registered", model)
	}
	return b, nil
}
