package processor

import (
	"context"
	"path/filepath"

	"github.com/nguyentantai21042004/scribe-flow/internal/consensus"
	"github.com/nguyentantai21042004/scribe-flow/internal/export"
	"github.com/nguyentantai21042004/scribe-flow/internal/metadata"
	"github.com/nguyentantai21042004/scribe-flow/internal/transcript"
)

// finish builds the consensus, renders documents and publishes the job.
// None of these steps can fail the job.
func (p *implProcessor) finish(ctx context.Context, dir string, meta metadata.Record, results []string, man *manifest) {
	artifacts := append([]string{}, results...)

	var consensusPath string
	var consensusRec transcript.Record
	if p.cfg.Consensus.Enabled && len(results) > 1 {
		p.logger.Info(ctx, "--- Creating consensus transcription ---")
		out := filepath.Join(dir, consensus.FileName)
		res, err := consensus.CreateFromFiles(ctx, results, out, p.logger)
		if err != nil {
			p.logger.Error(ctx, "Consensus creation failed: %v", err)
		} else {
			consensusPath, consensusRec = out, res.Record()
			man.recordConsensus(out)
			artifacts = append(artifacts, out)
		}
	}

	if p.cfg.Export.Docx {
		artifacts = append(artifacts, p.exportDocx(ctx, meta, results, consensusPath, consensusRec)...)
	}

	p.saveManifest(ctx, man)
	artifacts = append(artifacts, man.path)

	if p.publisher != nil {
		if err := p.publisher.Publish(ctx, dir, artifacts); err != nil {
			p.logger.Error(ctx, "Publishing failed: %v", err)
		}
	}
}

// exportDocx renders the consensus when there is one, otherwise every transcript.
func (p *implProcessor) exportDocx(ctx context.Context, meta metadata.Record, results []string, consensusPath string, consensusRec transcript.Record) []string {
	if consensusPath != "" {
		out := export.DocxName(consensusPath)
		if err := export.Docx(meta.Title, consensusRec, out); err != nil {
			p.logger.Error(ctx, "Failed to export %s: %v", out, err)
			return nil
		}
		return []string{out}
	}

	var written []string
	for _, path := range results {
		rec, err := transcript.Load(path)
		if err != nil {
			p.logger.Error(ctx, "Failed to load %s for export: %v", path, err)
			continue
		}
		out := export.DocxName(path)
		if err := export.Docx(meta.Title, rec, out); err != nil {
			p.logger.Error(ctx, "Failed to export %s: %v", out, err)
			continue
		}
		written = append(written, out)
	}
	return written
}
