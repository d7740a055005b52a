// Package export runs the overlay pipeline: resolve targets to images, build
// a canvas per image, draw its ROI shapes, save the overlay and upload it
// back as a file annotation.
package export

import (
	"context"
	"fmt"
	"image"
	"math"
	"mime"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"roverlay/internal/config"
	"roverlay/internal/omero"
	"roverlay/internal/overlay"
	"roverlay/internal/shape"
)

// Gateway is the slice of the OMERO client the pipeline needs.
// *omero.Client satisfies it; tests substitute a fake.
type Gateway interface {
	ResolveImages(ctx context.Context, kind omero.TargetKind, ids []int64) ([]omero.Image, error)
	ROIs(ctx context.Context, imageID int64) ([]omero.ROI, error)
	Thumbnail(ctx context.Context, imageID int64, w, h int) (image.Image, error)
	UploadFileAnnotation(ctx context.Context, imageID int64, path, mimetype string) (int64, error)
}

// Options controls one export run.
type Options struct {
	// Size is the maximum pixel dimension of the overlay.
	Size int

	// FileName is the output name pattern; {} is replaced per image with
	// the image ID.
	FileName string

	// OutputDir is where overlays are written before upload.
	OutputDir string

	// ExcludeImage draws on a transparent background instead of the
	// thumbnail.
	ExcludeImage bool

	// Parallelism bounds concurrent image exports.
	Parallelism int

	// DryRun saves overlays locally without uploading annotations.
	DryRun bool
}

// Result reports the outcome for a single image.
type Result struct {
	ImageID      int64
	ImageName    string
	File         string
	ShapeCount   int
	AnnotationID int64
	Skipped      bool
	Err          error
}

// Summary aggregates a run.
type Summary struct {
	RunID     string
	Processed int
	Skipped   int
	Failed    int
	Results   []Result
}

// Exporter drives overlay export runs against one OMERO server.
type Exporter struct {
	gw     Gateway
	logger *zap.Logger
	opts   Options
}

// New creates an exporter. A nil logger is replaced with a no-op one.
func New(gw Gateway, opts Options, logger *zap.Logger) *Exporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Parallelism <= 0 {
		opts.Parallelism = 1
	}
	if opts.FileName == "" {
		opts.FileName = "roi_overlay_{}.png"
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "."
	}
	return &Exporter{gw: gw, logger: logger.Named("export"), opts: opts}
}

// Run exports overlays for every image reachable from the given targets.
// Per-image failures are recorded in the summary; only target resolution
// errors abort the run.
func (e *Exporter) Run(ctx context.Context, kind omero.TargetKind, ids []int64) (*Summary, error) {
	runID := uuid.NewString()
	logger := e.logger.With(zap.String("run_id", runID))

	if e.opts.Size <= 0 {
		return nil, fmt.Errorf("overlay size must be positive, got %d", e.opts.Size)
	}
	if e.opts.ExcludeImage {
		// JPEG has no alpha channel and would flatten the transparent
		// background to white.
		switch ext := strings.ToLower(filepath.Ext(e.opts.FileName)); ext {
		case ".jpg", ".jpeg":
			return nil, fmt.Errorf("--exclude-image produces a transparent overlay, which %s cannot store; use a .png name pattern", ext)
		}
	}
	size, clamped := config.ClampSize(e.opts.Size)
	if clamped {
		logger.Warn("large overlay size might stall the server, clamping",
			zap.Int("requested", e.opts.Size), zap.Int("effective", size))
	}

	images, err := e.gw.ResolveImages(ctx, kind, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s targets: %w", kind, err)
	}
	logger.Info("processing images", zap.Int("count", len(images)))
	if len(images) == 0 {
		return &Summary{RunID: runID}, nil
	}
	if len(images) > 1 && !strings.Contains(e.opts.FileName, "{}") {
		return nil, fmt.Errorf("file name pattern %q has no {} placeholder but %d images matched", e.opts.FileName, len(images))
	}
	if err := os.MkdirAll(e.opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	results := make([]Result, len(images))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Parallelism)

	for i, img := range images {
		i, img := i, img
		g.Go(func() error {
			res := e.exportOne(gctx, logger, img, size)
			results[i] = res
			// Per-image failures stay in the summary.
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := &Summary{RunID: runID, Results: results}
	for _, r := range results {
		switch {
		case r.Err != nil:
			summary.Failed++
		case r.Skipped:
			summary.Skipped++
		default:
			summary.Processed++
		}
	}
	logger.Info("run finished",
		zap.Int("processed", summary.Processed),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed))
	return summary, nil
}

// exportOne runs the pipeline for a single image.
func (e *Exporter) exportOne(ctx context.Context, logger *zap.Logger, img omero.Image, size int) Result {
	res := Result{ImageID: img.ID, ImageName: img.Name}
	log := logger.With(zap.Int64("image_id", img.ID))

	sx, sy := img.SizeX(), img.SizeY()
	if sx <= 0 || sy <= 0 {
		res.Err = fmt.Errorf("image %d has no pixel dimensions", img.ID)
		return res
	}

	scale := float64(max(sx, sy)) / float64(size)
	w := scaledDim(sx, scale)
	h := scaledDim(sy, scale)

	rois, err := e.gw.ROIs(ctx, img.ID)
	if err != nil {
		res.Err = err
		return res
	}
	log.Info("fetched ROIs", zap.Int("rois", len(rois)))
	if len(rois) == 0 {
		log.Info("no ROIs, not saving an overlay")
		res.Skipped = true
		return res
	}

	var canvas *overlay.Canvas
	if e.opts.ExcludeImage {
		canvas = overlay.New(w, h, scale)
	} else {
		thumb, err := e.gw.Thumbnail(ctx, img.ID, w, h)
		if err != nil {
			res.Err = err
			return res
		}
		canvas = overlay.ForImage(thumb, scale)
	}

	for _, roi := range rois {
		for _, raw := range roi.Shapes {
			d, err := shape.FromAPI(raw)
			if err != nil {
				res.Err = fmt.Errorf("ROI %d: %w", roi.ID, err)
				return res
			}
			if err := canvas.Draw(d); err != nil {
				res.Err = fmt.Errorf("ROI %d: %w", roi.ID, err)
				return res
			}
			res.ShapeCount++
		}
	}

	name := strings.ReplaceAll(e.opts.FileName, "{}", strconv.FormatInt(img.ID, 10))
	path := filepath.Join(e.opts.OutputDir, name)

	var out image.Image = canvas.Image()
	if e.opts.ExcludeImage {
		out = overlay.MakeBlackTransparent(out)
	}
	if err := overlay.SaveImage(out, path); err != nil {
		res.Err = err
		return res
	}
	res.File = path
	log.Info("overlay saved", zap.String("file", path), zap.Int("shapes", res.ShapeCount))

	if e.opts.DryRun {
		return res
	}

	mimetype := mime.TypeByExtension(filepath.Ext(path))
	annID, err := e.gw.UploadFileAnnotation(ctx, img.ID, path, mimetype)
	if err != nil {
		res.Err = fmt.Errorf("failed to upload annotation: %w", err)
		return res
	}
	res.AnnotationID = annID
	return res
}

// scaledDim rounds an image dimension down to overlay scale, at least 1px.
func scaledDim(v int, scale float64) int {
	d := int(math.Round(float64(v) / scale))
	if d < 1 {
		return 1
	}
	return d
}

// SortResults orders results by image ID for stable presentation.
func SortResults(results []Result) {
	sort.Slice(results, func(i, j int) bool { return results[i].ImageID < results[j].ImageID })
}
