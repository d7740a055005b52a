// Command roverlay exports rasterized ROI overlays for images stored in an
// OMERO server and attaches them back as file annotations.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"roverlay/internal/config"
)

var (
	// Global flags
	cfgFile  string
	verbose  bool
	baseURL  string
	username string

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "roverlay",
	Short: "roverlay - ROI overlay exporter for OMERO",
	Long: `roverlay renders the ROI annotations of OMERO images onto scaled-down
raster overlays and uploads each overlay back to the server as a file
annotation linked to its source image.

Targets are given as a container type plus IDs; containers are walked down to
their images (Screen > Plate > Well > Image, Project > Dataset > Image).

Example:
  roverlay export --type Dataset --ids 101,102 --size 500`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize logger from the config file's logging section
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		logger, err = newLogger(cfg.Logging, verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// newLogger builds the zap logger from the config's logging section;
// --verbose forces debug regardless of the configured level.
func newLogger(lc config.LoggingConfig, verbose bool) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	switch lc.Format {
	case "", "json":
	case "text":
		zcfg.Encoding = "console"
	default:
		return nil, fmt.Errorf("unknown logging format %q (want json or text)", lc.Format)
	}
	if lc.Level != "" {
		level, err := zapcore.ParseLevel(lc.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid logging level %q: %w", lc.Level, err)
		}
		zcfg.Level = zap.NewAtomicLevelAt(level)
	}
	if verbose {
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return zcfg.Build()
}

// loadConfig reads the config file and applies CLI connection overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if baseURL != "" {
		cfg.Server.BaseURL = baseURL
	}
	if username != "" {
		cfg.Server.Username = username
	}
	return cfg, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", defaultConfigPath(), "path to the roverlay config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&baseURL, "server", "", "OMERO.web base URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&username, "user", "", "OMERO username (overrides config)")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(configCmd)
}

// defaultConfigPath points at ~/.roverlay/config.yaml, falling back to the
// working directory when the home directory is unknown.
func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "roverlay.yaml"
	}
	return home + "/.roverlay/config.yaml"
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
