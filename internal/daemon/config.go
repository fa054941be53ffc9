// Package daemon manages LogWise configuration and service wiring.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds all LogWise configuration.
type Config struct {
	Ollama    OllamaConfig    `toml:"ollama"`
	Server    ServerConfig    `toml:"server"`
	Analysis  AnalysisConfig  `toml:"analysis"`
	Logging   LoggingConfig   `toml:"logging"`
	Telemetry TelemetryConfig `toml:"telemetry"`
}

// OllamaConfig points at the model runtime. These two fields are the
// original installer's whole configuration surface.
type OllamaConfig struct {
	URL   string `toml:"url"`
	Model string `toml:"model"`
}

// ServerConfig controls the web UI / API server.
type ServerConfig struct {
	Host        string   `toml:"host"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
	MaxUploadMB int      `toml:"max_upload_mb"`
}

// AnalysisConfig tunes the RCA pipeline.
type AnalysisConfig struct {
	AutoPull     bool   `toml:"auto_pull"`
	MaxLines     int    `toml:"max_lines"`
	WindowBefore string `toml:"window_before"`
	WindowAfter  string `toml:"window_after"`
	Timeout      int    `toml:"timeout"` // seconds per analysis run
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// TelemetryConfig controls optional observability endpoints.
type TelemetryConfig struct {
	Prometheus bool `toml:"prometheus"`
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() Config {
	return Config{
		Ollama: OllamaConfig{
			URL:   "http://localhost:11434",
			Model: "llama3:8b",
		},
		Server: ServerConfig{
			Host:        "127.0.0.1",
			Port:        8844,
			CORSOrigins: []string{"*"},
			MaxUploadMB: 32,
		},
		Analysis: AnalysisConfig{
			AutoPull:     false,
			MaxLines:     200,
			WindowBefore: "5m",
			WindowAfter:  "5m",
			Timeout:      300,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Telemetry: TelemetryConfig{
			Prometheus: false,
		},
	}
}

// LoadConfig reads ~/.logwise/config.toml, falling back to defaults when
// the file does not exist yet.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	path := ConfigPath()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// SaveConfig writes the config to ~/.logwise/config.toml.
func SaveConfig(cfg Config) error {
	path := ConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}

// Home returns the LogWise data directory (LOGWISE_HOME or ~/.logwise).
func Home() string {
	if env := os.Getenv("LOGWISE_HOME"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".logwise")
}

// ConfigPath returns the path of the TOML config file.
func ConfigPath() string {
	return filepath.Join(Home(), "config.toml")
}
