package batch

import (
	"context"
	"errors"
	"fmt"

	"github.com/nguyentantai21042004/scribe-flow/internal/acquire"
)

// ErrStartIndexOutOfRange is returned when the resume offset is past the last entry.
var ErrStartIndexOutOfRange = errors.New("start index out of range")

func (c *implController) ProcessBatch(ctx context.Context, ref string, start int) ([]string, error) {
	listing, err := c.prober.Probe(ctx, ref)
	if err != nil {
		c.logger.Warn(ctx, "Probe failed, processing as a single source: %v", err)
		return c.processor.Process(ctx, ref, c.models, nil)
	}
	if !listing.IsCollection {
		return c.processor.Process(ctx, ref, c.models, nil)
	}

	c.logger.Info(ctx, "Playlist: %s (%d entries)", displayTitle(listing.Title, "", "Unknown"), len(listing.Entries))
	return c.ProcessEntries(ctx, listing.Entries, start)
}

func (c *implController) ProcessEntries(ctx context.Context, entries []acquire.Entry, start int) ([]string, error) {
	total := len(entries)
	if total == 0 {
		c.logger.Info(ctx, "Collection is empty, nothing to do")
		return nil, nil
	}
	if start < 1 {
		start = 1
	}
	if start > total {
		return nil, fmt.Errorf("%w: %d > %d entries", ErrStartIndexOutOfRange, start, total)
	}
	if start > 1 {
		c.logger.Info(ctx, "Skipping first %d entries, starting at %d/%d", start-1, start, total)
	}

	var results []string
	successCount := 0
	failCount := 0

	for idx := start; idx <= total; idx++ {
		if err := ctx.Err(); err != nil {
			c.logger.Warn(ctx, "Batch interrupted at %d/%d", idx, total)
			return results, err
		}

		entry := entries[idx-1]
		if entry.Locator == "" {
			c.logger.Debug(ctx, "[%d/%d] No locator, skipping %s", idx, total, displayTitle(entry.Title, entry.ID, "Untitled"))
			continue
		}

		title := displayTitle(entry.Title, entry.ID, "Untitled")
		c.logger.Info(ctx, "[%d/%d] %s", idx, total, title)

		meta := entry.Metadata()
		paths, err := c.processor.Process(ctx, entry.Locator, c.models, &meta)
		if err != nil {
			c.logger.Error(ctx, "[%d/%d] Failed to process %s: %v", idx, total, title, err)
			failCount++
			continue
		}
		results = append(results, paths...)
		successCount++
	}

	c.logger.Info(ctx, "Batch complete: %d succeeded, %d failed, %d transcripts", successCount, failCount, len(results))
	return results, nil
}

func displayTitle(title, id, fallback string) string {
	if title != "" {
		return title
	}
	if id != "" {
		return id
	}
	return fallback
}
