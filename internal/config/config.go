package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// MaxOverlaySize is the hard ceiling for overlay dimensions. Rendering
// thumbnails larger than this can stall the OMERO server.
const MaxOverlaySize = 5000

// Config holds all roverlay configuration.
type Config struct {
	// OMERO server connection
	Server ServerConfig `yaml:"server"`

	// Export behavior
	Export ExportConfig `yaml:"export"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig configures the OMERO JSON API connection.
type ServerConfig struct {
	BaseURL  string `yaml:"base_url"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	// ServerID selects the OMERO backend behind OMERO.web (usually 1).
	ServerID int    `yaml:"server_id"`
	Timeout  string `yaml:"timeout"`
	// InsecureSkipVerify disables TLS certificate checks. Only for
	// self-signed institutional deployments.
	InsecureSkipVerify bool `yaml:"insecure_skip_verify"`
}

// ExportConfig configures overlay generation.
type ExportConfig struct {
	// Size is the maximum pixel dimension of the overlay canvas.
	Size int `yaml:"size"`

	// FileName is the output name pattern; {} is replaced with the image ID.
	FileName string `yaml:"file_name"`

	// OutputDir is where overlay files are written before upload.
	OutputDir string `yaml:"output_dir"`

	// ExcludeImage produces a transparent overlay without the image background.
	ExcludeImage bool `yaml:"exclude_image"`

	// Parallelism bounds how many images are exported concurrently.
	Parallelism int `yaml:"parallelism"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			BaseURL:  "https://omero.example.org",
			ServerID: 1,
			Timeout:  "60s",
		},
		Export: ExportConfig{
			Size:        500,
			FileName:    "roi_overlay_{}.png",
			OutputDir:   ".",
			Parallelism: 4,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Return defaults if config file doesn't exist
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Override with environment variables
	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides lets environment variables win over file values, so
// credentials can stay out of the config file.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("OMERO_URL"); v != "" {
		c.Server.BaseURL = v
	}
	if v := os.Getenv("OMERO_USER"); v != "" {
		c.Server.Username = v
	}
	if v := os.Getenv("OMERO_PASSWORD"); v != "" {
		c.Server.Password = v
	}
	if v := os.Getenv("OMERO_SERVER_ID"); v != "" {
		var id int
		if _, err := fmt.Sscanf(v, "%d", &id); err == nil && id > 0 {
			c.Server.ServerID = id
		}
	}
}

// Validate checks the configuration for obvious mistakes.
func (c *Config) Validate() error {
	if c.Server.BaseURL == "" {
		return fmt.Errorf("server.base_url is required")
	}
	if !strings.HasPrefix(c.Server.BaseURL, "http://") && !strings.HasPrefix(c.Server.BaseURL, "https://") {
		return fmt.Errorf("server.base_url must be an http(s) URL, got %q", c.Server.BaseURL)
	}
	if c.Server.Username == "" {
		return fmt.Errorf("server.username is required (or set OMERO_USER)")
	}
	if c.Server.ServerID <= 0 {
		return fmt.Errorf("server.server_id must be positive, got %d", c.Server.ServerID)
	}
	if _, err := c.ServerTimeout(); err != nil {
		return err
	}
	if c.Export.Size <= 0 {
		return fmt.Errorf("export.size must be positive, got %d", c.Export.Size)
	}
	if c.Export.Parallelism <= 0 {
		return fmt.Errorf("export.parallelism must be positive, got %d", c.Export.Parallelism)
	}
	return nil
}

// ServerTimeout parses the configured HTTP timeout.
func (c *Config) ServerTimeout() (time.Duration, error) {
	if c.Server.Timeout == "" {
		return 60 * time.Second, nil
	}
	d, err := time.ParseDuration(c.Server.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid server.timeout %q: %w", c.Server.Timeout, err)
	}
	return d, nil
}

// ClampSize enforces the overlay size ceiling, returning the effective size
// and whether clamping happened.
func ClampSize(size int) (int, bool) {
	if size > MaxOverlaySize {
		return MaxOverlaySize, true
	}
	return size, false
}
