package acquire

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var (
	videoExtensions = []string{".mp4", ".avi", ".mkv", ".mov", ".wmv", ".flv", ".webm", ".m4v"}
	audioExtensions = []string{".wav", ".mp3", ".flac", ".aac", ".ogg", ".m4a"}
)

// IsRemote reports whether ref should go through a remote acquirer.
func IsRemote(ref string) bool {
	lower := strings.ToLower(strings.TrimSpace(ref))
	if strings.Contains(lower, "youtube.com") || strings.Contains(lower, "youtu.be") {
		return true
	}
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// IsVideo checks the extension against known video containers.
func IsVideo(path string) bool {
	return hasExt(path, videoExtensions)
}

// IsAudio checks the extension against known audio formats.
func IsAudio(path string) bool {
	return hasExt(path, audioExtensions)
}

// IsMedia is IsVideo or IsAudio.
func IsMedia(path string) bool {
	return IsVideo(path) || IsAudio(path)
}

func hasExt(path string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

// CopyInto copies src into dir keeping its base name. An existing target is
// left untouched.
func CopyInto(src, dir string) (string, error) {
	dst := filepath.Join(dir, filepath.Base(src))

	srcAbs, _ := filepath.Abs(src)
	dstAbs, _ := filepath.Abs(dst)
	if srcAbs == dstAbs {
		return dst, nil
	}
	if _, err := os.Stat(dst); err == nil {
		return dst, nil
	}

	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(src)+".*")
	if err != nil {
		return "", fmt.Errorf("create destination: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		return "", fmt.Errorf("copy %s: %w", filepath.Base(src), err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close destination: %w", err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return "", fmt.Errorf("move into place: %w", err)
	}
	return dst, nil
}

// AudioPath is where the canonical audio for a media file with the given
// stem lives inside dir.
func AudioPath(dir, mediaPath string) string {
	base := filepath.Base(mediaPath)
	return filepath.Join(dir, strings.TrimSuffix(base, filepath.Ext(base))+".wav")
}
