package acquire

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/nguyentantai21042004/scribe-flow/internal/config"
	"github.com/nguyentantai21042004/scribe-flow/internal/logger"
	"github.com/nguyentantai21042004/scribe-flow/internal/metadata"
)

// fakeExecutor delegates to injected behavior and records invocations.
type fakeExecutor struct {
	calls []string
	run   func(name string, args []string) (string, error)
}

func (f *fakeExecutor) Execute(ctx context.Context, name string, args ...string) (string, error) {
	f.calls = append(f.calls, name+" "+strings.Join(args, " "))
	if f.run == nil {
		return "", nil
	}
	return f.run(name, args)
}

func (f *fakeExecutor) ExecuteInDir(ctx context.Context, dir string, name string, args ...string) (string, error) {
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

func testAcquisitionConfig() config.AcquisitionConfig {
	return config.AcquisitionConfig{
		YTDLPPath:  "yt-dlp",
		FFmpegPath: "ffmpeg",
		Audio:      config.AudioConfig{Codec: "pcm_s16le", SampleRate: 16000, Channels: 1},
	}
}

func TestClassification(t *testing.T) {
	tests := []struct {
		ref                  string
		remote, video, audio bool
	}{
		{"https://www.youtube.com/watch?v=abc", true, false, false},
		{"https://youtu.be/abc", true, false, false},
		{"http://example.com/talk.mp4", true, true, false},
		{"/data/Lecture.MP4", false, true, false},
		{"clip.webm", false, true, false},
		{"voice.m4a", false, false, true},
		{"notes.txt", false, false, false},
	}
	for _, tt := range tests {
		if got := IsRemote(tt.ref); got != tt.remote {
			t.Errorf("IsRemote(%q) = %v, want %v", tt.ref, got, tt.remote)
		}
		if got := IsVideo(tt.ref); got != tt.video {
			t.Errorf("IsVideo(%q) = %v, want %v", tt.ref, got, tt.video)
		}
		if got := IsAudio(tt.ref); got != tt.audio {
			t.Errorf("IsAudio(%q) = %v, want %v", tt.ref, got, tt.audio)
		}
	}
}

func TestCopyInto(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "in", "voice.wav")
	mustWriteFile(t, src, "original")
	dir := filepath.Join(root, "job")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}

	dst, err := CopyInto(src, dir)
	if err != nil {
		t.Fatalf("CopyInto() error = %v", err)
	}
	if dst != filepath.Join(dir, "voice.wav") {
		t.Fatalf("dst = %q", dst)
	}

	mustWriteFile(t, src, "changed")
	if _, err := CopyInto(src, dir); err != nil {
		t.Fatalf("second CopyInto() error = %v", err)
	}
	data, _ := os.ReadFile(dst)
	if string(data) != "original" {
		t.Fatalf("existing copy overwritten: %q", data)
	}

	if same, err := CopyInto(dst, dir); err != nil || same != dst {
		t.Fatalf("CopyInto(self) = %q, %v", same, err)
	}
}

func TestTranscoderExtract(t *testing.T) {
	dir := t.TempDir()
	video := filepath.Join(dir, "talk.mp4")
	mustWriteFile(t, video, "video")

	var gotArgs []string
	exec := &fakeExecutor{run: func(name string, args []string) (string, error) {
		gotArgs = args
		mustWriteFile(t, args[len(args)-1], "wav")
		return "", nil
	}}
	tc := NewTranscoder(testAcquisitionConfig(), exec, logger.Nop())

	audio, err := tc.Extract(context.Background(), video, dir)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if audio != filepath.Join(dir, "talk.wav") {
		t.Fatalf("audio = %q", audio)
	}
	want := []string{"-hide_banner", "-nostdin", "-y", "-i", video, "-vn", "-ar", "16000", "-ac", "1", "-c:a", "pcm_s16le", audio}
	if diff := cmp.Diff(want, gotArgs); diff != "" {
		t.Errorf("ffmpeg args mismatch (-want +got):\n%s", diff)
	}

	if _, err := tc.Extract(context.Background(), video, dir); err != nil {
		t.Fatalf("second Extract() error = %v", err)
	}
	if len(exec.calls) != 1 {
		t.Fatalf("ffmpeg calls = %d, want 1 (existing audio reused)", len(exec.calls))
	}
}

func TestTranscoderExtractFailure(t *testing.T) {
	dir := t.TempDir()
	exec := &fakeExecutor{run: func(string, []string) (string, error) {
		return "", errors.New("exit status 1")
	}}
	tc := NewTranscoder(testAcquisitionConfig(), exec, logger.Nop())

	if _, err := tc.Extract(context.Background(), filepath.Join(dir, "broken.mp4"), dir); err == nil {
		t.Fatal("expected error")
	}
}

// stubExtractor returns the audio path without running ffmpeg.
type stubExtractor struct{}

func (stubExtractor) Extract(ctx context.Context, mediaPath, destDir string) (string, error) {
	return AudioPath(destDir, mediaPath), nil
}

func TestYTDLPAcquire(t *testing.T) {
	dir := t.TempDir()
	exec := &fakeExecutor{run: func(name string, args []string) (string, error) {
		out := filepath.Join(dir, "My_Talk.mp4")
		mustWriteFile(t, out, "video")
		return "[download] 100%\n" + `{"id":"abc","title":"My Talk","uploader":"Chan","upload_date":"20240105","description":"d","_filename":"` + filepath.Join(dir, "My_Talk.webm") + `"}`, nil
	}}
	y := NewYTDLP(testAcquisitionConfig(), exec, stubExtractor{}, logger.Nop())

	audio, meta, err := y.Acquire(context.Background(), Request{
		Ref: "https://youtu.be/abc", DestDir: dir, Quality: "best", BaseName: "My_Talk",
	})
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if audio != filepath.Join(dir, "My_Talk.wav") {
		t.Errorf("audio = %q", audio)
	}
	want := metadata.Record{Title: "My Talk", Description: "d", Uploader: "Chan", UploadDate: "20240105", SourceID: "abc"}
	if diff := cmp.Diff(want, meta); diff != "" {
		t.Errorf("metadata mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(exec.calls[0], "-o "+filepath.Join(dir, "My_Talk.%(ext)s")) {
		t.Errorf("output template not passed: %s", exec.calls[0])
	}
	if !strings.Contains(exec.calls[0], "-f best") {
		t.Errorf("quality not passed: %s", exec.calls[0])
	}
}

func TestYTDLPAcquireFailure(t *testing.T) {
	exec := &fakeExecutor{run: func(string, []string) (string, error) {
		return "", errors.New("HTTP Error 403")
	}}
	y := NewYTDLP(testAcquisitionConfig(), exec, stubExtractor{}, logger.Nop())

	if _, _, err := y.Acquire(context.Background(), Request{Ref: "https://youtu.be/x", DestDir: t.TempDir()}); err == nil {
		t.Fatal("expected error")
	}
}

func TestYTDLPProbe(t *testing.T) {
	playlist := `{"_type":"playlist","title":"Course","entries":[
		{"id":"a1","title":"One","url":"https://www.youtube.com/watch?v=a1"},
		{"id":"b2","title":"Two","uploader":"U"},
		null,
		{"title":"No locator"}
	]}`

	tests := []struct {
		name string
		out  string
		want Listing
	}{
		{
			name: "playlist",
			out:  strings.ReplaceAll(playlist, "\n", ""),
			want: Listing{
				IsCollection: true,
				Title:        "Course",
				Entries: []Entry{
					{ID: "a1", Title: "One", Locator: "https://www.youtube.com/watch?v=a1"},
					{ID: "b2", Title: "Two", Uploader: "U", Locator: "https://www.youtube.com/watch?v=b2"},
					{Title: "No locator"},
				},
			},
		},
		{
			name: "single video",
			out:  `{"_type":"video","id":"v","title":"Single"}`,
			want: Listing{Title: "Single"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := &fakeExecutor{run: func(string, []string) (string, error) { return tt.out, nil }}
			y := NewYTDLP(testAcquisitionConfig(), exec, stubExtractor{}, logger.Nop())

			got, err := y.Probe(context.Background(), "https://www.youtube.com/playlist?list=x")
			if err != nil {
				t.Fatalf("Probe() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Probe() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestYTDLPLookup(t *testing.T) {
	exec := &fakeExecutor{run: func(string, []string) (string, error) {
		return `{"id":"v","title":"Looked Up","upload_date":"20230101"}`, nil
	}}
	y := NewYTDLP(testAcquisitionConfig(), exec, stubExtractor{}, logger.Nop())

	meta, err := y.Lookup(context.Background(), "https://youtu.be/v")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if meta.Title != "Looked Up" || meta.UploadDate != "20230101" || meta.SourceID != "v" {
		t.Errorf("Lookup() = %+v", meta)
	}
}

func TestDecodeInfoWithoutJSON(t *testing.T) {
	if _, err := decodeInfo("WARNING: nothing here"); err == nil {
		t.Fatal("expected error")
	}
}
