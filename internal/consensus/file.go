package consensus

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/nguyentantai21042004/scribe-flow/internal/logger"
	"github.com/nguyentantai21042004/scribe-flow/internal/transcript"
)

// FileName is the name of the consensus document inside a job directory.
const FileName = "consensus.json"

// CreateFromFiles loads the transcript files, builds the consensus and writes it to out.
// Files that cannot be read are logged and left out of the vote.
func CreateFromFiles(ctx context.Context, files []string, out string, log logger.Logger) (Result, error) {
	if len(files) == 0 {
		return Result{}, &ConsensusInputError{Err: ErrNoTranscripts}
	}

	log.Info(ctx, "Creating consensus from %d transcriptions", len(files))

	var records []transcript.Record
	for _, f := range files {
		rec, err := transcript.Load(f)
		if err != nil {
			log.Error(ctx, "Failed to load transcript %s: %v", f, err)
			continue
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return Result{}, &ConsensusInputError{Sources: files, Err: ErrNoTranscripts}
	}

	names := make([]string, len(files))
	for i, f := range files {
		names[i] = filepath.Base(f)
	}

	res, err := Build(records, names)
	if err != nil {
		return Result{}, &ConsensusInputError{Sources: files, Err: err}
	}

	if err := transcript.WriteFile(out, res); err != nil {
		return Result{}, fmt.Errorf("write consensus: %w", err)
	}

	log.Info(ctx, "Consensus saved to %s (method: %s, %d characters)", out, res.Info.Method, len(res.Text))
	return res, nil
}
