// Package transcript models backend transcripts and the persisted,
// metadata-enriched transcript files.
package transcript

import (
	"path/filepath"
	"strings"
)

// Word is one timed word inside a segment.
type Word struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Word  string  `json:"word"`
}

// Segment is a timed span of text. Segments are ordered by Start.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
	Words []Word  `json:"words,omitempty"`
}

// Record is the backend-independent transcript shape.
type Record struct {
	Text     string    `json:"text"`
	Language string    `json:"language"`
	Segments []Segment `json:"segments"`
}

// FileName is the name a backend persists its transcript under:
// {audio base name}-{model}.json.
func FileName(audioPath, model string) string {
	base := filepath.Base(audioPath)
	return strings.TrimSuffix(base, filepath.Ext(base)) + "-" + model + ".json"
}

// Path joins FileName onto dir.
func Path(dir, audioPath, model string) string {
	return filepath.Join(dir, FileName(audioPath, model))
}
