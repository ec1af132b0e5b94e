package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	coreconfig "github.com/m3rciful/mediabot/core/config"
)

// MediaConfig holds settings of the download/transcode pipeline.
type MediaConfig struct {
	// DownloadDir is the working directory for fetched files.
	DownloadDir  string `yaml:"download_dir" envconfig:"MEDIA_DOWNLOAD_DIR"`
	YTDLPBinary  string `yaml:"ytdlp_binary" envconfig:"MEDIA_YTDLP_BINARY"`
	FFmpegBinary string `yaml:"ffmpeg_binary" envconfig:"MEDIA_FFMPEG_BINARY"`

	SearchLimit             int `yaml:"search_limit" envconfig:"MEDIA_SEARCH_LIMIT"`
	PreviewSeconds          int `yaml:"preview_seconds" envconfig:"MEDIA_PREVIEW_SECONDS"`
	CleanupDelaySeconds     int `yaml:"cleanup_delay_seconds" envconfig:"MEDIA_CLEANUP_DELAY_SECONDS"`
	FetchTimeoutSeconds     int `yaml:"fetch_timeout_seconds" envconfig:"MEDIA_FETCH_TIMEOUT_SECONDS"`
	TranscodeTimeoutSeconds int `yaml:"transcode_timeout_seconds" envconfig:"MEDIA_TRANSCODE_TIMEOUT_SECONDS"`
	ProgressIntervalMS      int `yaml:"progress_interval_ms" envconfig:"MEDIA_PROGRESS_INTERVAL_MS"`
}

// FetchTimeout returns the fetch bound as a duration.
func (m MediaConfig) FetchTimeout() time.Duration {
	return time.Duration(m.FetchTimeoutSeconds) * time.Second
}

// TranscodeTimeout returns the transcode bound as a duration.
func (m MediaConfig) TranscodeTimeout() time.Duration {
	return time.Duration(m.TranscodeTimeoutSeconds) * time.Second
}

// CleanupDelay returns how long delivered files stay on disk.
func (m MediaConfig) CleanupDelay() time.Duration {
	return time.Duration(m.CleanupDelaySeconds) * time.Second
}

// PreviewLength returns the preview clip length.
func (m MediaConfig) PreviewLength() time.Duration {
	return time.Duration(m.PreviewSeconds) * time.Second
}

// ProgressInterval returns the minimum interval between progress edits.
func (m MediaConfig) ProgressInterval() time.Duration {
	return time.Duration(m.ProgressIntervalMS) * time.Millisecond
}

// Config aggregates the reusable core configuration with the bot's media
// settings.
type Config struct {
	Core  coreconfig.Config `yaml:",inline"`
	Media MediaConfig       `yaml:"media"`
}

// CoreConfig exposes the embedded core configuration for the runner.
func (c *Config) CoreConfig() *coreconfig.Config {
	return &c.Core
}

// LoadConfig reads configuration from a YAML file and environment
// variables, then validates it.
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := coreconfig.Normalize(&cfg.Core); err != nil {
		return nil, err
	}
	if err := normalizeMedia(&cfg.Media); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func normalizeMedia(m *MediaConfig) error {
	if strings.TrimSpace(m.DownloadDir) == "" {
		m.DownloadDir = "downloads"
	}
	if m.SearchLimit <= 0 {
		m.SearchLimit = 5
	}
	if m.PreviewSeconds <= 0 {
		m.PreviewSeconds = 10
	}
	if m.CleanupDelaySeconds <= 0 {
		m.CleanupDelaySeconds = 30
	}
	if m.FetchTimeoutSeconds <= 0 {
		m.FetchTimeoutSeconds = 600
	}
	if m.TranscodeTimeoutSeconds <= 0 {
		m.TranscodeTimeoutSeconds = 120
	}
	if m.ProgressIntervalMS < 0 {
		return fmt.Errorf("media.progress_interval_ms must be >= 0")
	}
	if m.ProgressIntervalMS == 0 {
		m.ProgressIntervalMS = 1500
	}
	return nil
}
