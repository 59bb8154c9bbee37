package acquire

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nguyentantai21042004/scribe-flow/internal/config"
	"github.com/nguyentantai21042004/scribe-flow/internal/logger"
	"github.com/nguyentantai21042004/scribe-flow/internal/metadata"
	"github.com/nguyentantai21042004/scribe-flow/pkg/executor"
)

// ytInfo is the subset of yt-dlp's info JSON we read.
type ytInfo struct {
	Type        string   `json:"_type"`
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Uploader    string   `json:"uploader"`
	UploadDate  string   `json:"upload_date"`
	URL         string   `json:"url"`
	Filename    string   `json:"_filename"`
	Entries     []ytInfo `json:"entries"`
}

func (i ytInfo) metadata() metadata.Record {
	return metadata.Record{
		Title:       i.Title,
		Description: i.Description,
		Uploader:    i.Uploader,
		UploadDate:  i.UploadDate,
		SourceID:    i.ID,
	}
}

// YTDLP acquires remote media with yt-dlp and transcodes it locally.
type YTDLP struct {
	executor  executor.Executor
	logger    logger.Logger
	binary    string
	extractor Extractor
}

// NewYTDLP creates the yt-dlp backed Acquirer.
func NewYTDLP(cfg config.AcquisitionConfig, exec executor.Executor, extractor Extractor, log logger.Logger) *YTDLP {
	return &YTDLP{
		executor:  exec,
		logger:    log,
		binary:    cfg.YTDLPPath,
		extractor: extractor,
	}
}

// Acquire downloads req.Ref into req.DestDir and extracts its audio.
func (y *YTDLP) Acquire(ctx context.Context, req Request) (string, metadata.Record, error) {
	template := "%(title)s.%(ext)s"
	if req.BaseName != "" {
		template = req.BaseName + ".%(ext)s"
	}

	args := []string{
		"--no-simulate",
		"--dump-json",
		"--no-progress",
		"--no-playlist",
		"--merge-output-format", "mp4",
		"-o", filepath.Join(req.DestDir, template),
	}
	if req.Quality != "" {
		args = append(args, "-f", req.Quality)
	}
	args = append(args, req.Ref)

	y.logger.Info(ctx, "Download: %s", req.Ref)
	out, err := y.executor.Execute(ctx, y.binary, args...)
	if err != nil {
		return "", metadata.Record{}, fmt.Errorf("yt-dlp download: %w", err)
	}

	info, err := decodeInfo(out)
	if err != nil {
		return "", metadata.Record{}, fmt.Errorf("yt-dlp download: %w", err)
	}

	mediaPath, err := locateDownload(info.Filename)
	if err != nil {
		return "", metadata.Record{}, err
	}

	audioPath, err := y.extractor.Extract(ctx, mediaPath, req.DestDir)
	if err != nil {
		return "", metadata.Record{}, err
	}
	return audioPath, info.metadata(), nil
}

// Lookup reads the metadata of a single remote item without downloading it.
func (y *YTDLP) Lookup(ctx context.Context, ref string) (metadata.Record, error) {
	out, err := y.executor.Execute(ctx, y.binary, "--dump-single-json", "--skip-download", "--no-playlist", "--no-warnings", ref)
	if err != nil {
		return metadata.Record{}, fmt.Errorf("yt-dlp lookup: %w", err)
	}
	info, err := decodeInfo(out)
	if err != nil {
		return metadata.Record{}, fmt.Errorf("yt-dlp lookup: %w", err)
	}
	return info.metadata(), nil
}

// Probe lists ref without downloading. Entries without an id or url get no
// locator and are skipped by the batch controller.
func (y *YTDLP) Probe(ctx context.Context, ref string) (Listing, error) {
	out, err := y.executor.Execute(ctx, y.binary, "--dump-single-json", "--flat-playlist", "--no-warnings", ref)
	if err != nil {
		return Listing{}, fmt.Errorf("yt-dlp probe: %w", err)
	}
	info, err := decodeInfo(out)
	if err != nil {
		return Listing{}, fmt.Errorf("yt-dlp probe: %w", err)
	}
	return listingFromInfo(info), nil
}

func listingFromInfo(info ytInfo) Listing {
	if info.Type != "playlist" || info.Entries == nil {
		return Listing{Title: info.Title}
	}

	listing := Listing{IsCollection: true, Title: info.Title}
	for _, e := range info.Entries {
		if e.ID == "" && e.URL == "" && e.Title == "" {
			continue
		}
		locator := e.URL
		if locator == "" && e.ID != "" {
			locator = "https://www.youtube.com/watch?v=" + e.ID
		}
		listing.Entries = append(listing.Entries, Entry{
			ID:          e.ID,
			Title:       e.Title,
			Uploader:    e.Uploader,
			UploadDate:  e.UploadDate,
			Description: e.Description,
			Locator:     locator,
		})
	}
	return listing
}

// decodeInfo parses the last JSON document yt-dlp printed.
func decodeInfo(out string) (ytInfo, error) {
	lines := strings.Split(strings.TrimSpace(out), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(line, "{") {
			continue
		}
		var info ytInfo
		if err := json.Unmarshal([]byte(line), &info); err != nil {
			return ytInfo{}, fmt.Errorf("decode info json: %w", err)
		}
		return info, nil
	}
	return ytInfo{}, fmt.Errorf("no info json in yt-dlp output")
}

// locateDownload finds the media file yt-dlp wrote. Merged formats can end
// up under a different extension than the one reported.
func locateDownload(reported string) (string, error) {
	if reported == "" {
		return "", fmt.Errorf("yt-dlp did not report an output file")
	}
	if _, err := os.Stat(reported); err == nil {
		return reported, nil
	}
	stem := strings.TrimSuffix(reported, filepath.Ext(reported))
	for _, ext := range videoExtensions {
		if _, err := os.Stat(stem + ext); err == nil {
			return stem + ext, nil
		}
	}
	for _, ext := range audioExtensions {
		if _, err := os.Stat(stem + ext); err == nil {
			return stem + ext, nil
		}
	}
	return "", fmt.Errorf("downloaded file not found: %s", reported)
}
