package processor

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nguyentantai21042004/scribe-flow/internal/metadata"
	"github.com/nguyentantai21042004/scribe-flow/internal/transcript"
)

// ManifestFile records what a job directory contains.
const ManifestFile = "manifest.json"

// Artifact is one completed output of a job.
type Artifact struct {
	File        string    `json:"file"`
	SHA256      string    `json:"sha256"`
	CompletedAt time.Time `json:"completed_at"`
}

// Manifest is the persisted state of a job directory.
type Manifest struct {
	RunID       string              `json:"run_id"`
	Source      string              `json:"source"`
	Audio       string              `json:"audio,omitempty"`
	Metadata    metadata.Record     `json:"metadata"`
	Transcripts map[string]Artifact `json:"transcripts"`
	Consensus   *Artifact           `json:"consensus,omitempty"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// manifest guards a Manifest shared by concurrently running models.
type manifest struct {
	Manifest
	path string
	mu   sync.Mutex
}

// ReadManifest loads the manifest stored in dir.
func ReadManifest(dir string) (Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		return Manifest{}, err
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("decode manifest: %w", err)
	}
	return m, nil
}

// loadManifest returns the manifest of dir, starting a new one when it is
// missing or unreadable. Every run gets a fresh run id.
func (p *implProcessor) loadManifest(ctx context.Context, dir, ref string) *manifest {
	m, err := ReadManifest(dir)
	if err != nil && !os.IsNotExist(err) {
		p.logger.Warn(ctx, "Ignoring unreadable manifest in %s: %v", dir, err)
		m = Manifest{}
	}
	if m.Transcripts == nil {
		m.Transcripts = make(map[string]Artifact)
	}
	m.RunID = uuid.NewString()
	m.Source = ref

	p.logger.Debug(ctx, "Run %s", m.RunID)
	return &manifest{Manifest: m, path: filepath.Join(dir, ManifestFile)}
}

func (m *manifest) setSource(audioPath string, meta metadata.Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Audio = filepath.Base(audioPath)
	m.Metadata = meta
}

func (m *manifest) recordTranscript(ctx context.Context, model, path string) {
	sum, err := fileSHA256(path)
	if err != nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Transcripts[model] = Artifact{File: filepath.Base(path), SHA256: sum, CompletedAt: time.Now().UTC()}
}

func (m *manifest) recordConsensus(path string) {
	sum, err := fileSHA256(path)
	if err != nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Consensus = &Artifact{File: filepath.Base(path), SHA256: sum, CompletedAt: time.Now().UTC()}
}

// verifyTranscript compares path with the recorded hash. A transcript the
// manifest does not know yet is recorded and accepted.
func (m *manifest) verifyTranscript(ctx context.Context, model, path string) bool {
	m.mu.Lock()
	entry, ok := m.Transcripts[model]
	m.mu.Unlock()
	if !ok {
		m.recordTranscript(ctx, model, path)
		return true
	}
	sum, err := fileSHA256(path)
	if err != nil {
		return false
	}
	return sum == entry.SHA256
}

func (p *implProcessor) saveManifest(ctx context.Context, m *manifest) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdatedAt = time.Now().UTC()
	if err := transcript.WriteFile(m.path, m.Manifest); err != nil {
		p.logger.Warn(ctx, "Failed to save manifest: %v", err)
	}
}

func fileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
