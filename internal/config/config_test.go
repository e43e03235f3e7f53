package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Pipeline: PipelineConfig{
			MaxFileDurationSeconds: 14400,
			SegmentDurationSeconds: 12600,
			LanguageCode:           "en-US",
			TargetCodec:            "mp3",
			WorkerCount:            4,
		},
		Storage: StorageConfig{
			Backend: BackendS3,
			Region:  "us-east-1",
			TempDir: "temp",
		},
		Cleanup: CleanupConfig{
			IntervalMinutes: 30,
			MaxAgeHours:     6,
		},
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
		errorMsg    string
	}{
		{
			name:        "valid configuration",
			mutate:      func(c *Config) {},
			expectError: false,
		},
		{
			name:        "invalid server port",
			mutate:      func(c *Config) { c.Server.Port = 70000 },
			expectError: true,
			errorMsg:    "port must be between",
		},
		{
			name:        "segment duration not below ceiling",
			mutate:      func(c *Config) { c.Pipeline.SegmentDurationSeconds = 14400 },
			expectError: true,
			errorMsg:    "must be less than max_file_duration_seconds",
		},
		{
			name:        "negative max file duration",
			mutate:      func(c *Config) { c.Pipeline.MaxFileDurationSeconds = -1 },
			expectError: true,
			errorMsg:    "max_file_duration_seconds must be positive",
		},
		{
			name:        "unknown codec",
			mutate:      func(c *Config) { c.Pipeline.TargetCodec = "opus" },
			expectError: true,
			errorMsg:    "target_codec must be one of",
		},
		{
			name:        "empty language code",
			mutate:      func(c *Config) { c.Pipeline.LanguageCode = "" },
			expectError: true,
			errorMsg:    "language_code cannot be empty",
		},
		{
			name:        "zero workers",
			mutate:      func(c *Config) { c.Pipeline.WorkerCount = 0 },
			expectError: true,
			errorMsg:    "worker_count must be at least 1",
		},
		{
			name:        "unknown storage backend",
			mutate:      func(c *Config) { c.Storage.Backend = "gcs" },
			expectError: true,
			errorMsg:    "backend must be",
		},
		{
			name: "s3 backend requires region",
			mutate: func(c *Config) {
				c.Storage.Backend = BackendS3
				c.Storage.Region = ""
			},
			expectError: true,
			errorMsg:    "region cannot be empty",
		},
		{
			name: "filesystem backend requires root",
			mutate: func(c *Config) {
				c.Storage.Backend = BackendFilesystem
				c.Storage.LocalRoot = ""
			},
			expectError: true,
			errorMsg:    "local_root cannot be empty",
		},
		{
			name:        "negative timeout",
			mutate:      func(c *Config) { c.Pipeline.TimeoutSeconds = -5 },
			expectError: true,
			errorMsg:    "timeout_seconds cannot be negative",
		},
		{
			name:        "cleanup interval too small",
			mutate:      func(c *Config) { c.Cleanup.IntervalMinutes = 0 },
			expectError: true,
			errorMsg:    "interval_minutes must be at least 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := validConfig()
			tt.mutate(&config)

			err := config.Validate()
			if tt.expectError {
				if err == nil {
					t.Fatal("expected validation error, got nil")
				}
				if !strings.Contains(err.Error(), tt.errorMsg) {
					t.Errorf("error %q does not contain %q", err.Error(), tt.errorMsg)
				}
			} else if err != nil {
				t.Fatalf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	var config Config
	config.ApplyDefaults()

	if config.Pipeline.MaxFileDurationSeconds != 14400 {
		t.Errorf("MaxFileDurationSeconds = %f, want 14400", config.Pipeline.MaxFileDurationSeconds)
	}
	if config.Pipeline.SegmentDurationSeconds != 12600 {
		t.Errorf("SegmentDurationSeconds = %f, want 12600", config.Pipeline.SegmentDurationSeconds)
	}
	if config.Pipeline.LanguageCode != "en-US" {
		t.Errorf("LanguageCode = %q, want en-US", config.Pipeline.LanguageCode)
	}
	if config.Pipeline.TargetCodec != "mp3" {
		t.Errorf("TargetCodec = %q, want mp3", config.Pipeline.TargetCodec)
	}
	if config.Pipeline.DispatchEnabled {
		t.Error("DispatchEnabled should default to false")
	}
	if config.Storage.Backend != BackendS3 {
		t.Errorf("Backend = %q, want s3", config.Storage.Backend)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
server:
  host: 127.0.0.1
  port: 9090
pipeline:
  segment_duration_seconds: 600
  max_file_duration_seconds: 1200
  dispatch_enabled: true
storage:
  backend: filesystem
  local_root: /tmp/objects
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	config, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if config.Server.Port != 9090 {
		t.Errorf("Port = %d, want 9090", config.Server.Port)
	}
	if config.Pipeline.SegmentDurationSeconds != 600 {
		t.Errorf("SegmentDurationSeconds = %f, want 600", config.Pipeline.SegmentDurationSeconds)
	}
	if !config.Pipeline.DispatchEnabled {
		t.Error("DispatchEnabled should be true")
	}
	// Defaults should have filled everything else
	if config.Pipeline.TargetCodec != "mp3" {
		t.Errorf("TargetCodec = %q, want default mp3", config.Pipeline.TargetCodec)
	}
	if got := config.Pipeline.GetTimeoutDuration(); got != 0 {
		t.Errorf("GetTimeoutDuration = %v, want 0", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestGetTimeoutDuration(t *testing.T) {
	p := PipelineConfig{TimeoutSeconds: 90}
	if got := p.GetTimeoutDuration(); got != 90*time.Second {
		t.Errorf("GetTimeoutDuration = %v, want 90s", got)
	}
}
