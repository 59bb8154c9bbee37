// Package acquire turns source references into local audio artifacts and
// lists the entries of remote collections.
package acquire

import (
	"context"

	"github.com/nguyentantai21042004/scribe-flow/internal/metadata"
)

// Request describes one acquisition.
type Request struct {
	Ref     string
	DestDir string
	Quality string
	// BaseName, when set, is the file stem used for the downloaded media.
	BaseName string
}

// Entry is one item of a remote collection.
type Entry struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Uploader    string `json:"uploader"`
	UploadDate  string `json:"upload_date"`
	Description string `json:"description"`
	Locator     string `json:"url"`
}

// Metadata returns the entry fields as a metadata override.
func (e Entry) Metadata() metadata.Record {
	return metadata.Record{
		Title:       e.Title,
		Description: e.Description,
		Uploader:    e.Uploader,
		UploadDate:  e.UploadDate,
		SourceID:    e.ID,
	}
}

// Listing is the result of probing a reference.
type Listing struct {
	IsCollection bool
	Title        string
	Entries      []Entry
}

// Acquirer fetches remote media. Implementations must leave a re-runnable
// state on disk: the caller skips Acquire when the audio already exists.
type Acquirer interface {
	Acquire(ctx context.Context, req Request) (audioPath string, meta metadata.Record, err error)
	Lookup(ctx context.Context, ref string) (metadata.Record, error)
	Probe(ctx context.Context, ref string) (Listing, error)
}

// Extractor converts a local media file into the canonical audio artifact.
type Extractor interface {
	Extract(ctx context.Context, mediaPath, destDir string) (string, error)
}
