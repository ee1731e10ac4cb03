package config

import (
	"context"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type contextKey string

const configKey contextKey = "config"

// Config holds all application configuration
type Config struct {
	// Core settings
	WorkDir     string `yaml:"work_dir"`
	Concurrency int    `yaml:"concurrency"`

	// Screening settings
	Screening ScreeningConfig `yaml:"screening"`

	// Detector settings
	Detector DetectorConfig `yaml:"detector"`

	// FFmpeg settings
	FFmpeg FFmpegConfig `yaml:"ffmpeg"`

	// HTTP API settings
	Server ServerConfig `yaml:"server"`

	// Report sink settings
	MQTT MQTTConfig `yaml:"mqtt"`

	// Report store settings
	Database DatabaseConfig `yaml:"database"`
}

type ScreeningConfig struct {
	// SampleRate is the target number of analyzed frames per second of video.
	SampleRate float64 `yaml:"sample_rate"`
	// FrameWidth/FrameHeight are the dimensions frames are scaled to before detection.
	FrameWidth  int `yaml:"frame_width"`
	FrameHeight int `yaml:"frame_height"`
}

type DetectorConfig struct {
	// Command launches the detector worker process, e.g. ["python3", "-u", "workers/landmarks.py"].
	Command []string `yaml:"command"`
	// StartupTimeoutSec bounds how long to wait for the worker to come up.
	StartupTimeoutSec int `yaml:"startup_timeout_sec"`
}

type FFmpegConfig struct {
	BinaryPath string `yaml:"binary_path"`
	ProbePath  string `yaml:"probe_path"`
	Threads    int    `yaml:"threads"`
}

type ServerConfig struct {
	Addr      string `yaml:"addr"`
	UploadDir string `yaml:"upload_dir"`
}

type MQTTConfig struct {
	Broker   string `yaml:"broker"`
	ClientID string `yaml:"client_id"`
	Topic    string `yaml:"topic"`
	QoS      byte   `yaml:"qos"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// Load reads configuration from file or returns defaults
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path == "" {
		path = findConfigFile()
	}

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes configuration to file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

func defaultConfig() *Config {
	return &Config{
		WorkDir:     "./work",
		Concurrency: 4,
		Screening: ScreeningConfig{
			SampleRate:  10,
			FrameWidth:  640,
			FrameHeight: 480,
		},
		Detector: DetectorConfig{
			Command:           []string{"python3", "-u", "workers/landmarks.py"},
			StartupTimeoutSec: 10,
		},
		FFmpeg: FFmpegConfig{
			BinaryPath: "ffmpeg",
			ProbePath:  "ffprobe",
			Threads:    0,
		},
		Server: ServerConfig{
			Addr:      ":8000",
			UploadDir: "./temp_uploads",
		},
		MQTT: MQTTConfig{
			Broker:   "",
			ClientID: "auticare",
			Topic:    "auticare/reports",
			QoS:      1,
		},
		Database: DatabaseConfig{
			URL: "",
		},
	}
}

func findConfigFile() string {
	candidates := []string{
		"./config.yaml",
		"./config.yml",
		filepath.Join(os.Getenv("HOME"), ".auticare", "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// WithConfig stores config in context
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// FromContext retrieves config from context
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(configKey).(*Config); ok {
		return cfg
	}
	return defaultConfig()
}
