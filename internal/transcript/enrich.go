package transcript

import (
	"fmt"

	"github.com/nguyentantai21042004/scribe-flow/internal/metadata"
)

// MetadataKeys is the fixed prefix of every enriched transcript file.
var MetadataKeys = []string{"title", "description", "uploader", "upload_date", "video_id", "model"}

// Enrich returns a new document with the provenance fields first, followed
// by every original field whose key is not one of them.
func Enrich(doc *Document, meta metadata.Record, model string) (*Document, error) {
	values := []string{meta.Title, meta.Description, meta.Uploader, meta.UploadDate, meta.SourceID, model}

	out := &Document{Fields: make([]Field, 0, len(MetadataKeys)+len(doc.Fields))}
	for i, key := range MetadataKeys {
		if err := out.Set(key, values[i]); err != nil {
			return nil, err
		}
	}

	for _, f := range doc.Fields {
		if isMetadataKey(f.Key) {
			continue
		}
		out.Fields = append(out.Fields, f)
	}
	return out, nil
}

// EnrichFile rewrites the transcript at path in place.
func EnrichFile(path string, meta metadata.Record, model string) error {
	doc, err := ReadFile(path)
	if err != nil {
		return fmt.Errorf("read transcript: %w", err)
	}
	enriched, err := Enrich(doc, meta, model)
	if err != nil {
		return fmt.Errorf("enrich transcript: %w", err)
	}
	if err := WriteFile(path, enriched); err != nil {
		return fmt.Errorf("write transcript: %w", err)
	}
	return nil
}

// IsEnriched reports whether doc starts with the provenance fields.
func IsEnriched(doc *Document) bool {
	if len(doc.Fields) < len(MetadataKeys) {
		return false
	}
	for i, key := range MetadataKeys {
		if doc.Fields[i].Key != key {
			return false
		}
	}
	return true
}

func isMetadataKey(key string) bool {
	for _, k := range MetadataKeys {
		if k == key {
			return true
		}
	}
	return false
}
