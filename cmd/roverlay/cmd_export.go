// This file contains the export command, the tool's main operation.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"roverlay/internal/config"
	"roverlay/internal/export"
	"roverlay/internal/omero"
)

var (
	exportType         string
	exportIDs          []int64
	exportSize         int
	exportName         string
	exportOut          string
	exportExcludeImage bool
	exportDryRun       bool
	exportParallelism  int
)

// exportCmd renders and uploads ROI overlays.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Render ROI overlays and upload them as file annotations",
	Long: `Resolves the targets to images, then for each image renders its ROI shapes
onto a scaled-down canvas (a server thumbnail, or a transparent background
with --exclude-image), saves the overlay locally, and uploads it to OMERO as
a file annotation linked to the image.

Images without ROIs are skipped. {} in --name is replaced with the image ID.

Example:
  roverlay export --type Plate --ids 42 --size 800 --exclude-image`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportType, "type", "Image", "target type: Image, Dataset, Project, Plate or Screen")
	exportCmd.Flags().Int64SliceVar(&exportIDs, "ids", nil, "target IDs (comma separated)")
	exportCmd.Flags().IntVar(&exportSize, "size", 0, "maximum pixel size of the overlay (default from config)")
	exportCmd.Flags().StringVar(&exportName, "name", "", "output file name pattern, {} is replaced with the image ID")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output directory for overlay files")
	exportCmd.Flags().BoolVar(&exportExcludeImage, "exclude-image", false, "transparent overlay without the image background")
	exportCmd.Flags().BoolVar(&exportDryRun, "dry-run", false, "save overlays locally without uploading annotations")
	exportCmd.Flags().IntVar(&exportParallelism, "parallelism", 0, "concurrent image exports (default from config)")
	_ = exportCmd.MarkFlagRequired("ids")
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kind, err := omero.ParseTargetKind(exportType)
	if err != nil {
		return err
	}

	cfg, client, err := connect(ctx)
	if err != nil {
		return err
	}

	opts := export.Options{
		Size:         cfg.Export.Size,
		FileName:     cfg.Export.FileName,
		OutputDir:    cfg.Export.OutputDir,
		ExcludeImage: cfg.Export.ExcludeImage || exportExcludeImage,
		Parallelism:  cfg.Export.Parallelism,
		DryRun:       exportDryRun,
	}
	if exportSize > 0 {
		opts.Size = exportSize
	}
	if exportName != "" {
		opts.FileName = exportName
	}
	if exportOut != "" {
		opts.OutputDir = exportOut
	}
	if exportParallelism > 0 {
		opts.Parallelism = exportParallelism
	}

	exporter := export.New(client, opts, logger)
	summary, err := exporter.Run(ctx, kind, exportIDs)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), renderSummary(summary))
	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d images failed", summary.Failed, len(summary.Results))
	}
	return nil
}

// connect loads configuration, builds the OMERO client and logs in.
func connect(ctx context.Context) (*config.Config, *omero.Client, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	timeout, err := cfg.ServerTimeout()
	if err != nil {
		return nil, nil, err
	}
	client, err := omero.New(cfg.Server, timeout, logger)
	if err != nil {
		return nil, nil, err
	}
	if err := client.Login(ctx); err != nil {
		return nil, nil, err
	}
	logger.Debug("connected", zap.String("server", cfg.Server.BaseURL))
	return cfg, client, nil
}
