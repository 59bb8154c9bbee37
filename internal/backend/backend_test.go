package backend

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"google.golang.org/genai"

	"github.com/nguyentantai21042004/scribe-flow/internal/config"
	"github.com/nguyentantai21042004/scribe-flow/internal/logger"
	"github.com/nguyentantai21042004/scribe-flow/internal/transcript"
)

type fakeExecutor struct {
	dir  string
	name string
	args []string
	run  func(name string, args []string) (string, error)
}

func (f *fakeExecutor) Execute(ctx context.Context, name string, args ...string) (string, error) {
	f.name, f.args = name, args
	if f.run == nil {
		return "", nil
	}
	return f.run(name, args)
}

func (f *fakeExecutor) ExecuteInDir(ctx context.Context, dir string, name string, args ...string) (string, error) {
	f.dir = dir
	return f.Execute(ctx, name, args...)
}

func mustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

// argValue returns the value following flag in args.
func argValue(args []string, flag string) string {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == flag {
			return args[i+1]
		}
	}
	return ""
}

func TestScriptTranscribe(t *testing.T) {
	dir := t.TempDir()
	audio := filepath.Join(dir, "talk.wav")
	mustWriteFile(t, audio, "wav")

	exec := &fakeExecutor{run: func(name string, args []string) (string, error) {
		mustWriteFile(t, argValue(args, "--output_file"), `{"text":"hi","language":"en","segments":[]}`)
		return "", nil
	}}
	s := NewScript("whisper", config.BackendConfig{
		Command:     "python3",
		Args:        []string{"src/models/model_whisper.py"},
		Accelerator: true,
		Options:     map[string]interface{}{"model_size": "large-v3"},
	}, exec, logger.Nop())

	path, err := Invoke(context.Background(), s, Request{AudioPath: audio, OutputDir: dir})
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if path != filepath.Join(dir, "talk-whisper.json") {
		t.Errorf("path = %q", path)
	}
	if exec.name != "python3" || exec.args[0] != "src/models/model_whisper.py" {
		t.Errorf("command = %s %v", exec.name, exec.args)
	}
	if got := argValue(exec.args, "--input_file"); got != audio {
		t.Errorf("--input_file = %q", got)
	}
	var opts map[string]interface{}
	if err := json.Unmarshal([]byte(argValue(exec.args, "--config")), &opts); err != nil {
		t.Fatalf("--config is not JSON: %v", err)
	}
	if opts["model_size"] != "large-v3" {
		t.Errorf("options = %v", opts)
	}
	if !s.UsesAccelerator() {
		t.Error("UsesAccelerator() = false")
	}
}

func TestScriptRunsInWorkDir(t *testing.T) {
	workDir := t.TempDir()
	jobDir := t.TempDir()
	audio := filepath.Join(jobDir, "talk.wav")

	exec := &fakeExecutor{run: func(name string, args []string) (string, error) {
		mustWriteFile(t, argValue(args, "--output_file"), `{"text":"hi"}`)
		return "", nil
	}}
	s := NewScript("canary", config.BackendConfig{
		Command: "python3",
		Args:    []string{"model_canary.py"},
		WorkDir: workDir,
	}, exec, logger.Nop())

	if _, err := Invoke(context.Background(), s, Request{AudioPath: audio, OutputDir: jobDir}); err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if exec.dir != workDir {
		t.Errorf("working directory = %q, want %q", exec.dir, workDir)
	}
	for _, flag := range []string{"--input_file", "--output_file"} {
		if got := argValue(exec.args, flag); !filepath.IsAbs(got) {
			t.Errorf("%s = %q, want an absolute path", flag, got)
		}
	}
}

func TestScriptMissingOutput(t *testing.T) {
	dir := t.TempDir()
	s := NewScript("whisper", config.BackendConfig{Command: "python3"}, &fakeExecutor{}, logger.Nop())

	_, err := Invoke(context.Background(), s, Request{AudioPath: filepath.Join(dir, "a.wav"), OutputDir: dir})
	if err == nil || !strings.Contains(err.Error(), "transcript is missing") {
		t.Fatalf("error = %v, want missing transcript", err)
	}
}

func TestScriptFailure(t *testing.T) {
	dir := t.TempDir()
	exec := &fakeExecutor{run: func(string, []string) (string, error) { return "", errors.New("exit status 1") }}
	s := NewScript("canary", config.BackendConfig{Command: "python3"}, exec, logger.Nop())

	if _, err := Invoke(context.Background(), s, Request{AudioPath: filepath.Join(dir, "a.wav"), OutputDir: dir}); err == nil {
		t.Fatal("expected error")
	}
}

// blockingBackend waits until its context is done.
type blockingBackend struct{}

func (blockingBackend) Name() string           { return "slow" }
func (blockingBackend) UsesAccelerator() bool  { return false }
func (blockingBackend) Timeout() time.Duration { return 20 * time.Millisecond }
func (blockingBackend) Transcribe(ctx context.Context, req Request) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func TestInvokeTimeout(t *testing.T) {
	dir := t.TempDir()
	_, err := Invoke(context.Background(), blockingBackend{}, Request{AudioPath: filepath.Join(dir, "a.wav"), OutputDir: dir})
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("error = %v, want ErrTimeout", err)
	}
}

// stuckBackend ignores its context and never finishes in time.
type stuckBackend struct{ release chan struct{} }

func (stuckBackend) Name() string           { return "stuck" }
func (stuckBackend) UsesAccelerator() bool  { return false }
func (stuckBackend) Timeout() time.Duration { return 50 * time.Millisecond }
func (b stuckBackend) Transcribe(ctx context.Context, req Request) (string, error) {
	<-b.release
	return "", nil
}

func TestInvokeTimeoutIgnoredContext(t *testing.T) {
	dir := t.TempDir()
	b := stuckBackend{release: make(chan struct{})}
	defer close(b.release)

	start := time.Now()
	_, err := Invoke(context.Background(), b, Request{AudioPath: filepath.Join(dir, "a.wav"), OutputDir: dir})
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("error = %v, want ErrTimeout", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Invoke() returned after %s, want about 50ms", elapsed)
	}
}

// panickingBackend crashes inside Transcribe.
type panickingBackend struct{}

func (panickingBackend) Name() string           { return "crash" }
func (panickingBackend) UsesAccelerator() bool  { return false }
func (panickingBackend) Timeout() time.Duration { return time.Second }
func (panickingBackend) Transcribe(ctx context.Context, req Request) (string, error) {
	panic("boom")
}

func TestInvokeRecoversPanic(t *testing.T) {
	dir := t.TempDir()
	_, err := Invoke(context.Background(), panickingBackend{}, Request{AudioPath: filepath.Join(dir, "a.wav"), OutputDir: dir})
	if err == nil || !strings.Contains(err.Error(), "panic: boom") {
		t.Fatalf("error = %v, want recovered panic", err)
	}
}

func TestGeminiTranscribe(t *testing.T) {
	dir := t.TempDir()
	audio := filepath.Join(dir, "talk.wav")
	mustWriteFile(t, audio, "RIFF")

	var keys []string
	g := NewGemini("gemini", config.BackendConfig{Model: "gemini-2.5-flash"}, []string{"k1", "k2"}, logger.Nop())
	g.generate = func(ctx context.Context, apiKey, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (string, error) {
		keys = append(keys, apiKey)
		if apiKey == "k1" {
			return "", errors.New("Error 429, RESOURCE_EXHAUSTED")
		}
		if model != "gemini-2.5-flash" {
			t.Errorf("model = %q", model)
		}
		if cfg.ResponseMIMEType != "application/json" {
			t.Errorf("ResponseMIMEType = %q", cfg.ResponseMIMEType)
		}
		return "```json\n{\"text\":\"hello world\",\"language\":\"en\",\"segments\":[{\"start\":0,\"end\":1.2,\"text\":\"hello world\"}]}\n```", nil
	}

	path, err := Invoke(context.Background(), g, Request{AudioPath: audio, OutputDir: dir})
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if diff := cmp.Diff([]string{"k1", "k2"}, keys); diff != "" {
		t.Errorf("key rotation mismatch (-want +got):\n%s", diff)
	}

	rec, err := transcript.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	want := transcript.Record{
		Text:     "hello world",
		Language: "en",
		Segments: []transcript.Segment{{Start: 0, End: 1.2, Text: "hello world"}},
	}
	if diff := cmp.Diff(want, rec); diff != "" {
		t.Errorf("transcript mismatch (-want +got):\n%s", diff)
	}
}

func TestGeminiErrors(t *testing.T) {
	dir := t.TempDir()
	audio := filepath.Join(dir, "talk.wav")
	mustWriteFile(t, audio, "RIFF")

	t.Run("no keys", func(t *testing.T) {
		g := NewGemini("gemini", config.BackendConfig{}, nil, logger.Nop())
		if _, err := g.Transcribe(context.Background(), Request{AudioPath: audio, OutputDir: dir}); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("all keys exhausted", func(t *testing.T) {
		g := NewGemini("gemini", config.BackendConfig{}, []string{"a", "b"}, logger.Nop())
		calls := 0
		g.generate = func(context.Context, string, string, []*genai.Content, *genai.GenerateContentConfig) (string, error) {
			calls++
			return "", errors.New("quota exceeded")
		}
		_, err := g.Transcribe(context.Background(), Request{AudioPath: audio, OutputDir: dir})
		if err == nil || !strings.Contains(err.Error(), "exhausted") {
			t.Fatalf("error = %v", err)
		}
		if calls != 2 {
			t.Fatalf("calls = %d, want 2", calls)
		}
	})

	t.Run("unsupported format", func(t *testing.T) {
		g := NewGemini("gemini", config.BackendConfig{}, []string{"a"}, logger.Nop())
		if _, err := g.Transcribe(context.Background(), Request{AudioPath: filepath.Join(dir, "x.mp4"), OutputDir: dir}); err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestParseGeminiTranscriptDefaults(t *testing.T) {
	rec, err := parseGeminiTranscript(`{"text":"only text"}`)
	if err != nil {
		t.Fatal(err)
	}
	if rec.Language != "auto" || len(rec.Segments) != 1 || rec.Segments[0].Text != "only text" {
		t.Errorf("rec = %+v", rec)
	}
	if _, err := parseGeminiTranscript("not json"); err == nil {
		t.Error("expected error for non JSON answer")
	}
}

func TestCatalog(t *testing.T) {
	cfg := &config.Config{
		Backends: map[string]config.BackendConfig{"gemini": {Kind: config.KindGemini}},
	}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	c := NewCatalog(cfg, &fakeExecutor{}, logger.Nop())

	w, err := c.Get("whisper")
	if err != nil {
		t.Fatalf("Get(whisper) error = %v", err)
	}
	if _, ok := w.(*Script); !ok {
		t.Errorf("whisper backend = %T, want *Script", w)
	}
	again, _ := c.Get("whisper")
	if again != w {
		t.Error("Get() should cache backends")
	}

	g, err := c.Get("gemini")
	if err != nil {
		t.Fatalf("Get(gemini) error = %v", err)
	}
	if _, ok := g.(*Gemini); !ok {
		t.Errorf("gemini backend = %T, want *Gemini", g)
	}

	if _, err := (Static{}).Get("nope"); err == nil {
		t.Error("Static.Get should fail for unknown models")
	}
}
