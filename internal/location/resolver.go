package location

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nguyentantai21042004/scribe-flow/internal/metadata"
)

const (
	dateLayout = "2006-01-02"

	// DefaultDirSlugLength bounds the title part of a job directory name.
	DefaultDirSlugLength = 30

	fallbackName = "untitled"
)

// Identity is what a job directory name is derived from.
type Identity struct {
	Name string
	Date time.Time
}

// Resolver derives and creates job directories below Base.
type Resolver struct {
	Base    string
	MaxSlug int
	Clock   func() time.Time

	stat     func(name string) (os.FileInfo, error)
	mkdirAll func(path string, perm os.FileMode) error
}

// NewResolver creates a Resolver rooted at base using the wall clock.
func NewResolver(base string) *Resolver {
	return &Resolver{
		Base:     base,
		MaxSlug:  DefaultDirSlugLength,
		Clock:    time.Now,
		stat:     os.Stat,
		mkdirAll: os.MkdirAll,
	}
}

// Identify picks the human readable name and the date stamp for ref. The
// title from meta wins over the file stem; the date is the upload date when
// known, then the modification time of a local file, then the clock.
func (r *Resolver) Identify(ref string, meta metadata.Record) Identity {
	name := strings.TrimSpace(meta.Title)
	if name == "" {
		name = Stem(ref)
	}

	if d, ok := ParseUploadDate(meta.UploadDate); ok {
		return Identity{Name: name, Date: d}
	}
	if info, err := r.statFn()(ref); err == nil && !info.IsDir() {
		return Identity{Name: name, Date: info.ModTime()}
	}
	return Identity{Name: name, Date: r.now()}
}

// Name returns the directory name for id without touching the filesystem.
func (r *Resolver) Name(id Identity) string {
	max := r.MaxSlug
	if max <= 0 {
		max = DefaultDirSlugLength
	}
	slug := Sanitize(id.Name, max)
	if slug == "" {
		slug = fallbackName
	}
	date := id.Date
	if date.IsZero() {
		date = r.now()
	}
	return date.Format(dateLayout) + "_" + slug
}

// Resolve creates (if needed) and returns the job directory for id.
func (r *Resolver) Resolve(id Identity) (string, error) {
	dir := filepath.Join(r.Base, r.Name(id))
	mkdir := r.mkdirAll
	if mkdir == nil {
		mkdir = os.MkdirAll
	}
	if err := mkdir(dir, 0755); err != nil {
		return "", fmt.Errorf("create output directory %s: %w", dir, err)
	}
	return dir, nil
}

func (r *Resolver) now() time.Time {
	if r.Clock == nil {
		return time.Now()
	}
	return r.Clock()
}

func (r *Resolver) statFn() func(string) (os.FileInfo, error) {
	if r.stat == nil {
		return os.Stat
	}
	return r.stat
}

// Stem returns the base name of ref without its extension. URLs keep their
// last path element, which is good enough for a fallback title.
func Stem(ref string) string {
	base := filepath.Base(strings.TrimRight(ref, `/\`))
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ParseUploadDate accepts YYYYMMDD (as reported by yt-dlp) and YYYY-MM-DD.
func ParseUploadDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"20060102", dateLayout} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
