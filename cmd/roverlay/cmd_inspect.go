// This file contains the inspect command, a read-only preview of what an
// export would touch.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"roverlay/internal/omero"
)

var (
	inspectType string
	inspectIDs  []int64
)

// inspectCmd lists the images behind a target with their ROI counts.
var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "List target images and their ROI counts without exporting",
	Long: `Resolves the targets to images and prints each image with the number of
ROIs and shapes it carries. Nothing is rendered or uploaded.

Example:
  roverlay inspect --type Project --ids 7`,
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().StringVar(&inspectType, "type", "Image", "target type: Image, Dataset, Project, Plate or Screen")
	inspectCmd.Flags().Int64SliceVar(&inspectIDs, "ids", nil, "target IDs (comma separated)")
	_ = inspectCmd.MarkFlagRequired("ids")
}

func runInspect(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kind, err := omero.ParseTargetKind(inspectType)
	if err != nil {
		return err
	}

	_, client, err := connect(ctx)
	if err != nil {
		return err
	}

	images, err := client.ResolveImages(ctx, kind, inspectIDs)
	if err != nil {
		return err
	}
	if len(images) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no images found")
		return nil
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("%d image(s)", len(images))))
	for _, img := range images {
		rois, err := client.ROIs(ctx, img.ID)
		if err != nil {
			return err
		}
		shapes := 0
		for _, roi := range rois {
			shapes += len(roi.Shapes)
		}
		line := fmt.Sprintf("  image %d  %s  %dx%d  %d ROIs / %d shapes",
			img.ID, img.Name, img.SizeX(), img.SizeY(), len(rois), shapes)
		if len(rois) == 0 {
			fmt.Fprintln(out, dimStyle.Render(line))
		} else {
			fmt.Fprintln(out, line)
		}
	}
	return nil
}
