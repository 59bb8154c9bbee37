package config

import (
	"fmt"
	"path/filepath"
	"time"
)

// Backend kinds understood by the backend package.
const (
	KindScript = "script"
	KindGemini = "gemini"
)

type Config struct {
	Models      []string                 `yaml:"models"`
	Backends    map[string]BackendConfig `yaml:"backends"`
	Acquisition AcquisitionConfig        `yaml:"acquisition"`
	Paths       PathsConfig              `yaml:"paths"`
	Logging     LoggingConfig            `yaml:"logging"`
	Performance PerformanceConfig        `yaml:"performance"`
	Consensus   ConsensusConfig          `yaml:"consensus"`
	Export      ExportConfig             `yaml:"export"`
	Gemini      GeminiConfig             `yaml:"gemini"`
	Publish     PublishConfig            `yaml:"publish"`
}

// BackendConfig describes how one model id is transcribed.
type BackendConfig struct {
	Kind        string                 `yaml:"kind"`
	Command     string                 `yaml:"command"`
	Args        []string               `yaml:"args"`
	WorkDir     string                 `yaml:"work_dir"`
	Accelerator bool                   `yaml:"accelerator"`
	Timeout     time.Duration          `yaml:"timeout"`
	Model       string                 `yaml:"model"`
	Options     map[string]interface{} `yaml:"options"`
}

type AcquisitionConfig struct {
	YTDLPPath    string      `yaml:"yt_dlp_path"`
	FFmpegPath   string      `yaml:"ffmpeg_path"`
	VideoQuality string      `yaml:"video_quality"`
	Audio        AudioConfig `yaml:"audio"`
}

type AudioConfig struct {
	Codec      string `yaml:"codec"`
	SampleRate int    `yaml:"sample_rate"`
	Channels   int    `yaml:"channels"`
}

type PathsConfig struct {
	Output string `yaml:"output"`
	Models string `yaml:"models"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

type PerformanceConfig struct {
	MaxConcurrentModels int           `yaml:"max_concurrent_models"`
	MaxConcurrentJobs   int           `yaml:"max_concurrent_jobs"`
	AcceleratorSlots    int           `yaml:"accelerator_slots"`
	BackendTimeout      time.Duration `yaml:"backend_timeout"`
}

type ConsensusConfig struct {
	Enabled bool `yaml:"enabled"`
}

type ExportConfig struct {
	Docx bool `yaml:"docx"`
}

type GeminiConfig struct {
	Model   string   `yaml:"model"`
	APIKeys []string `yaml:"api_keys"`
}

type PublishConfig struct {
	S3 S3Config `yaml:"s3"`
}

type S3Config struct {
	Bucket string `yaml:"bucket"`
	Prefix string `yaml:"prefix"`
	Region string `yaml:"region"`
}

func (c *Config) Validate() error {
	if c.Paths.Output == "" {
		c.Paths.Output = "output"
	}
	if c.Paths.Models == "" {
		c.Paths.Models = filepath.Join("src", "models")
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Acquisition.YTDLPPath == "" {
		c.Acquisition.YTDLPPath = "yt-dlp"
	}
	if c.Acquisition.FFmpegPath == "" {
		c.Acquisition.FFmpegPath = "ffmpeg"
	}
	if c.Acquisition.VideoQuality == "" {
		c.Acquisition.VideoQuality = "best[ext=mp4]/best"
	}
	if c.Acquisition.Audio.Codec == "" {
		c.Acquisition.Audio.Codec = "pcm_s16le"
	}
	if c.Acquisition.Audio.SampleRate == 0 {
		c.Acquisition.Audio.SampleRate = 16000
	}
	if c.Acquisition.Audio.Channels == 0 {
		c.Acquisition.Audio.Channels = 1
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = "gemini-2.5-flash"
	}

	if c.Performance.MaxConcurrentModels < 0 {
		return fmt.Errorf("performance.max_concurrent_models must not be negative")
	}
	if c.Performance.MaxConcurrentJobs < 0 {
		return fmt.Errorf("performance.max_concurrent_jobs must not be negative")
	}
	if c.Performance.AcceleratorSlots < 0 {
		return fmt.Errorf("performance.accelerator_slots must not be negative")
	}
	if c.Performance.BackendTimeout < 0 {
		return fmt.Errorf("performance.backend_timeout must not be negative")
	}
	if c.Performance.MaxConcurrentModels == 0 {
		c.Performance.MaxConcurrentModels = 1
	}
	if c.Performance.MaxConcurrentJobs == 0 {
		c.Performance.MaxConcurrentJobs = 1
	}
	if c.Performance.AcceleratorSlots == 0 {
		c.Performance.AcceleratorSlots = 1
	}
	if c.Performance.BackendTimeout == 0 {
		c.Performance.BackendTimeout = 2 * time.Hour
	}

	for id, b := range c.Backends {
		switch b.Kind {
		case "", KindScript, KindGemini:
		default:
			return fmt.Errorf("backends.%s.kind %q is not supported", id, b.Kind)
		}
		if b.Timeout < 0 {
			return fmt.Errorf("backends.%s.timeout must not be negative", id)
		}
	}

	return nil
}

// BackendFor returns the effective backend settings for a model id. Models
// without an entry run the conventional helper script
// <paths.models>/model_<id>.py with python3.
func (c *Config) BackendFor(model string) BackendConfig {
	b, ok := c.Backends[model]
	if !ok {
		b = BackendConfig{}
	}
	if b.Kind == "" {
		b.Kind = KindScript
	}
	switch b.Kind {
	case KindScript:
		if b.Command == "" {
			b.Command = "python3"
		}
		if len(b.Args) == 0 {
			b.Args = []string{filepath.Join(c.Paths.Models, "model_"+model+".py")}
		}
	case KindGemini:
		if b.Model == "" {
			b.Model = c.Gemini.Model
		}
	}
	if b.Timeout == 0 {
		b.Timeout = c.Performance.BackendTimeout
	}
	if b.Options == nil {
		b.Options = map[string]interface{}{}
	}
	return b
}
