package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"google.golang.org/genai"

	"github.com/nguyentantai21042004/scribe-flow/internal/config"
	"github.com/nguyentantai21042004/scribe-flow/internal/logger"
	"github.com/nguyentantai21042004/scribe-flow/internal/transcript"
)

const transcribePrompt = `Transcribe the attached audio verbatim.
Respond with a single JSON object and nothing else:
{"text": "<full transcript>", "language": "<ISO 639-1 code>", "segments": [{"start": <seconds>, "end": <seconds>, "text": "<segment text>"}]}
Segments must be ordered by start time and must not overlap.`

var audioMIMETypes = map[string]string{
	".wav":  "audio/wav",
	".mp3":  "audio/mp3",
	".flac": "audio/flac",
	".aac":  "audio/aac",
	".ogg":  "audio/ogg",
	".m4a":  "audio/mp4",
}

// generateFunc sends one request with one API key and returns the response
// text.
type generateFunc func(ctx context.Context, apiKey, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (string, error)

// Gemini transcribes by sending the audio inline to a Gemini model. API keys
// are rotated when one is rate limited.
type Gemini struct {
	name     string
	model    string
	timeout  time.Duration
	logger   logger.Logger
	generate generateFunc

	mu         sync.Mutex
	apiKeys    []string
	currentKey int
}

// NewGemini builds a Gemini backend registered under name.
func NewGemini(name string, cfg config.BackendConfig, apiKeys []string, log logger.Logger) *Gemini {
	return &Gemini{
		name:     name,
		model:    cfg.Model,
		timeout:  cfg.Timeout,
		logger:   log,
		generate: callGemini,
		apiKeys:  append([]string(nil), apiKeys...),
	}
}

func (g *Gemini) Name() string           { return g.name }
func (g *Gemini) UsesAccelerator() bool  { return false }
func (g *Gemini) Timeout() time.Duration { return g.timeout }

func (g *Gemini) Transcribe(ctx context.Context, req Request) (string, error) {
	if len(g.apiKeys) == 0 {
		return "", fmt.Errorf("gemini: no API keys configured (set GEMINI_API_KEYS)")
	}

	mimeType, ok := audioMIMETypes[strings.ToLower(filepath.Ext(req.AudioPath))]
	if !ok {
		return "", fmt.Errorf("gemini: unsupported audio format %s", filepath.Ext(req.AudioPath))
	}
	audio, err := os.ReadFile(req.AudioPath)
	if err != nil {
		return "", fmt.Errorf("gemini: read audio: %w", err)
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(transcribePrompt),
			genai.NewPartFromBytes(audio, mimeType),
		}, genai.RoleUser),
	}
	genCfg := &genai.GenerateContentConfig{ResponseMIMEType: "application/json"}

	g.logger.Info(ctx, "Running transcription for model: %s (%s)", g.name, g.model)
	text, err := g.generateWithRotation(ctx, contents, genCfg)
	if err != nil {
		return "", err
	}

	rec, err := parseGeminiTranscript(text)
	if err != nil {
		return "", err
	}
	doc, err := transcript.FromRecord(rec)
	if err != nil {
		return "", err
	}

	out := transcript.Path(req.OutputDir, req.AudioPath, g.name)
	if err := transcript.WriteFile(out, doc); err != nil {
		return "", fmt.Errorf("gemini: %w", err)
	}
	return out, nil
}

// generateWithRotation tries each key at most once, moving on after 429 or
// quota errors.
func (g *Gemini) generateWithRotation(ctx context.Context, contents []*genai.Content, cfg *genai.GenerateContentConfig) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	var lastErr error
	for range len(g.apiKeys) {
		text, err := g.generate(ctx, g.apiKeys[g.currentKey], g.model, contents, cfg)
		if err == nil {
			return text, nil
		}
		if !isRateLimited(err) {
			return "", fmt.Errorf("gemini: generate content: %w", err)
		}
		g.logger.Warn(ctx, "Key %d rate limited, rotating...", g.currentKey+1)
		g.currentKey = (g.currentKey + 1) % len(g.apiKeys)
		lastErr = err
	}
	return "", fmt.Errorf("gemini: all API keys exhausted: %w", lastErr)
}

func isRateLimited(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(msg, "quota") || strings.Contains(msg, "RESOURCE_EXHAUSTED")
}

// callGemini is the production generateFunc.
func callGemini(ctx context.Context, apiKey, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("create client: %w", err)
	}

	result, err := client.Models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		return "", err
	}

	if result != nil && len(result.Candidates) > 0 && result.Candidates[0].Content != nil {
		var text strings.Builder
		for _, part := range result.Candidates[0].Content.Parts {
			if part.Text != "" {
				text.WriteString(part.Text)
			}
		}
		return text.String(), nil
	}
	return "", fmt.Errorf("empty response from Gemini")
}

// parseGeminiTranscript accepts the JSON answer, tolerating a markdown code
// fence around it.
func parseGeminiTranscript(text string) (transcript.Record, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var rec transcript.Record
	if err := json.Unmarshal([]byte(text), &rec); err != nil {
		return transcript.Record{}, fmt.Errorf("gemini: decode transcript: %w", err)
	}
	if rec.Language == "" {
		rec.Language = "auto"
	}
	if len(rec.Segments) == 0 && rec.Text != "" {
		rec.Segments = []transcript.Segment{{Start: 0, End: 0, Text: rec.Text}}
	}
	return rec, nil
}
