// Package metadata holds the provenance record attached to every transcript.
package metadata

import "strings"

// Record is the provenance of one source.
type Record struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Uploader    string `json:"uploader"`
	UploadDate  string `json:"upload_date"`
	SourceID    string `json:"id"`
}

// IsEmpty reports whether no field carries a value.
func (r Record) IsEmpty() bool {
	return blank(r.Title) && blank(r.Description) && blank(r.Uploader) &&
		blank(r.UploadDate) && blank(r.SourceID)
}

// Merge combines a caller supplied override with acquired metadata. Each
// non-empty override field wins; acquired values fill the rest. Merging the
// same pair again yields the same record.
func Merge(override, acquired Record) Record {
	return Record{
		Title:       pick(override.Title, acquired.Title),
		Description: pick(override.Description, acquired.Description),
		Uploader:    pick(override.Uploader, acquired.Uploader),
		UploadDate:  pick(override.UploadDate, acquired.UploadDate),
		SourceID:    pick(override.SourceID, acquired.SourceID),
	}
}

// WithFallbackTitle returns r with Title set to fallback when r has none.
func (r Record) WithFallbackTitle(fallback string) Record {
	if blank(r.Title) {
		r.Title = fallback
	}
	return r
}

func pick(primary, secondary string) string {
	if !blank(primary) {
		return primary
	}
	return secondary
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
