// Package batch runs the job orchestrator over every entry of a collection.
package batch

import (
	"context"

	"github.com/nguyentantai21042004/scribe-flow/internal/acquire"
)

// Controller processes collections with a 1-based resume offset.
type Controller interface {
	// ProcessBatch probes ref and processes its entries from start on. A
	// reference that is not a collection is processed as a single job.
	ProcessBatch(ctx context.Context, ref string, start int) ([]string, error)
	// ProcessEntries processes entries[start-1:] in order.
	ProcessEntries(ctx context.Context, entries []acquire.Entry, start int) ([]string, error)
}

// Prober lists the entries behind a reference.
type Prober interface {
	Probe(ctx context.Context, ref string) (acquire.Listing, error)
}
