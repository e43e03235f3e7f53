package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage backend names
const (
	BackendS3         = "s3"
	BackendFilesystem = "filesystem"
)

// Config represents the complete service configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Storage  StorageConfig  `yaml:"storage"`
	Cleanup  CleanupConfig  `yaml:"cleanup"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// PipelineConfig contains the splitting and dispatch parameters
type PipelineConfig struct {
	MaxFileDurationSeconds float64 `yaml:"max_file_duration_seconds"`
	SegmentDurationSeconds float64 `yaml:"segment_duration_seconds"`
	LanguageCode           string  `yaml:"language_code"`
	TargetCodec            string  `yaml:"target_codec"`
	WorkerCount            int     `yaml:"worker_count"`
	DispatchEnabled        bool    `yaml:"dispatch_enabled"`
	TimeoutSeconds         int     `yaml:"timeout_seconds"` // 0 = no deadline
}

// StorageConfig contains object store configuration
type StorageConfig struct {
	Backend      string `yaml:"backend"`
	Region       string `yaml:"region"`
	LocalRoot    string `yaml:"local_root"`
	TempDir      string `yaml:"temp_dir"`
	OutputBucket string `yaml:"output_bucket"` // empty = same bucket as the source
}

// CleanupConfig contains scratch directory cleanup configuration
type CleanupConfig struct {
	IntervalMinutes int `yaml:"interval_minutes"`
	MaxAgeHours     int `yaml:"max_age_hours"`
}

// Load reads the configuration file, applies defaults, and validates it
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	config.ApplyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// ApplyDefaults fills in zero-valued fields. The duration defaults come from
// the downstream transcription service's 4 hour ceiling, with segments sized
// at 3.5 hours so every segment clears the ceiling on its own.
func (c *Config) ApplyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Pipeline.MaxFileDurationSeconds == 0 {
		c.Pipeline.MaxFileDurationSeconds = 14400
	}
	if c.Pipeline.SegmentDurationSeconds == 0 {
		c.Pipeline.SegmentDurationSeconds = 12600
	}
	if c.Pipeline.LanguageCode == "" {
		c.Pipeline.LanguageCode = "en-US"
	}
	if c.Pipeline.TargetCodec == "" {
		c.Pipeline.TargetCodec = "mp3"
	}
	if c.Pipeline.WorkerCount == 0 {
		c.Pipeline.WorkerCount = 4
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = BackendS3
	}
	if c.Storage.TempDir == "" {
		c.Storage.TempDir = "temp"
	}
	if c.Cleanup.IntervalMinutes == 0 {
		c.Cleanup.IntervalMinutes = 30
	}
	if c.Cleanup.MaxAgeHours == 0 {
		c.Cleanup.MaxAgeHours = 6
	}
}

// Validate performs validation of the configuration
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := c.Pipeline.Validate(); err != nil {
		return fmt.Errorf("pipeline config: %w", err)
	}

	if err := c.Storage.Validate(); err != nil {
		return fmt.Errorf("storage config: %w", err)
	}

	if err := c.Cleanup.Validate(); err != nil {
		return fmt.Errorf("cleanup config: %w", err)
	}

	return nil
}

// Validate validates server configuration
func (s *ServerConfig) Validate() error {
	if s.Port < 1 || s.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", s.Port)
	}

	if s.Host == "" {
		return fmt.Errorf("host cannot be empty")
	}

	return nil
}

// Validate validates pipeline configuration
func (p *PipelineConfig) Validate() error {
	if p.MaxFileDurationSeconds <= 0 {
		return fmt.Errorf("max_file_duration_seconds must be positive, got %f", p.MaxFileDurationSeconds)
	}

	if p.SegmentDurationSeconds <= 0 {
		return fmt.Errorf("segment_duration_seconds must be positive, got %f", p.SegmentDurationSeconds)
	}

	if p.SegmentDurationSeconds >= p.MaxFileDurationSeconds {
		return fmt.Errorf("segment_duration_seconds (%f) must be less than max_file_duration_seconds (%f)",
			p.SegmentDurationSeconds, p.MaxFileDurationSeconds)
	}

	if p.LanguageCode == "" {
		return fmt.Errorf("language_code cannot be empty")
	}

	validCodecs := map[string]bool{"mp3": true, "wav": true, "flac": true, "ogg": true}
	if !validCodecs[p.TargetCodec] {
		return fmt.Errorf("target_codec must be one of [mp3, wav, flac, ogg], got '%s'", p.TargetCodec)
	}

	if p.WorkerCount < 1 {
		return fmt.Errorf("worker_count must be at least 1, got %d", p.WorkerCount)
	}

	if p.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout_seconds cannot be negative, got %d", p.TimeoutSeconds)
	}

	return nil
}

// Validate validates storage configuration
func (s *StorageConfig) Validate() error {
	switch s.Backend {
	case BackendS3:
		if s.Region == "" {
			return fmt.Errorf("region cannot be empty for the s3 backend")
		}
	case BackendFilesystem:
		if s.LocalRoot == "" {
			return fmt.Errorf("local_root cannot be empty for the filesystem backend")
		}
	default:
		return fmt.Errorf("backend must be 's3' or 'filesystem', got '%s'", s.Backend)
	}

	if s.TempDir == "" {
		return fmt.Errorf("temp_dir cannot be empty")
	}

	return nil
}

// Validate validates cleanup configuration
func (c *CleanupConfig) Validate() error {
	if c.IntervalMinutes < 1 {
		return fmt.Errorf("interval_minutes must be at least 1, got %d", c.IntervalMinutes)
	}

	if c.MaxAgeHours < 1 {
		return fmt.Errorf("max_age_hours must be at least 1, got %d", c.MaxAgeHours)
	}

	return nil
}

// GetTimeoutDuration returns the pipeline deadline as a time.Duration.
// Zero means the invocation runs without a deadline.
func (p *PipelineConfig) GetTimeoutDuration() time.Duration {
	return time.Duration(p.TimeoutSeconds) * time.Second
}
