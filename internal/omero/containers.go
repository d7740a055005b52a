package omero

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// TargetKind names the container level an export starts from.
type TargetKind string

const (
	KindImage   TargetKind = "Image"
	KindDataset TargetKind = "Dataset"
	KindProject TargetKind = "Project"
	KindPlate   TargetKind = "Plate"
	KindScreen  TargetKind = "Screen"
)

// ParseTargetKind accepts the kind case-insensitively.
func ParseTargetKind(s string) (TargetKind, error) {
	switch strings.ToLower(s) {
	case "image":
		return KindImage, nil
	case "dataset":
		return KindDataset, nil
	case "project":
		return KindProject, nil
	case "plate":
		return KindPlate, nil
	case "screen":
		return KindScreen, nil
	default:
		return "", fmt.Errorf("unknown target type %q (want Image, Dataset, Project, Plate or Screen)", s)
	}
}

// Image fetches a single image with its pixel dimensions.
func (c *Client) Image(ctx context.Context, id int64) (Image, error) {
	var result struct {
		Data Image `json:"data"`
	}
	if err := c.getJSON(ctx, fmt.Sprintf("/api/v0/m/images/%d/", id), nil, &result); err != nil {
		return Image{}, fmt.Errorf("failed to fetch image %d: %w", id, err)
	}
	return result.Data, nil
}

// DatasetImages lists the images of a dataset.
func (c *Client) DatasetImages(ctx context.Context, datasetID int64) ([]Image, error) {
	imgs, err := listPaged[Image](ctx, c, fmt.Sprintf("/api/v0/m/datasets/%d/images/", datasetID), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list images of dataset %d: %w", datasetID, err)
	}
	return imgs, nil
}

// ProjectDatasets lists the datasets of a project.
func (c *Client) ProjectDatasets(ctx context.Context, projectID int64) ([]Dataset, error) {
	ds, err := listPaged[Dataset](ctx, c, fmt.Sprintf("/api/v0/m/projects/%d/datasets/", projectID), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list datasets of project %d: %w", projectID, err)
	}
	return ds, nil
}

// ScreenPlates lists the plates of a screen.
func (c *Client) ScreenPlates(ctx context.Context, screenID int64) ([]Plate, error) {
	ps, err := listPaged[Plate](ctx, c, fmt.Sprintf("/api/v0/m/screens/%d/plates/", screenID), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list plates of screen %d: %w", screenID, err)
	}
	return ps, nil
}

// PlateWells lists the wells of a plate, with well samples and their images
// embedded.
func (c *Client) PlateWells(ctx context.Context, plateID int64) ([]Well, error) {
	ws, err := listPaged[Well](ctx, c, fmt.Sprintf("/api/v0/m/plates/%d/wells/", plateID), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list wells of plate %d: %w", plateID, err)
	}
	return ws, nil
}

// plateImages flattens a plate's wells into the images acquired in them.
func (c *Client) plateImages(ctx context.Context, plateID int64) ([]Image, error) {
	wells, err := c.PlateWells(ctx, plateID)
	if err != nil {
		return nil, err
	}
	var imgs []Image
	for _, well := range wells {
		for _, ws := range well.WellSamples {
			if ws.Image != nil {
				imgs = append(imgs, *ws.Image)
			}
		}
	}
	return imgs, nil
}

// ResolveImages walks the container hierarchy down to images:
// Screen → Plate → Well → Image, or Project → Dataset → Image.
// Image IDs pass straight through (fetched for their dimensions).
func (c *Client) ResolveImages(ctx context.Context, kind TargetKind, ids []int64) ([]Image, error) {
	var images []Image
	switch kind {
	case KindImage:
		for _, id := range ids {
			img, err := c.Image(ctx, id)
			if err != nil {
				return nil, err
			}
			images = append(images, img)
		}
	case KindDataset:
		for _, id := range ids {
			imgs, err := c.DatasetImages(ctx, id)
			if err != nil {
				return nil, err
			}
			images = append(images, imgs...)
		}
	case KindProject:
		for _, id := range ids {
			datasets, err := c.ProjectDatasets(ctx, id)
			if err != nil {
				return nil, err
			}
			for _, ds := range datasets {
				imgs, err := c.DatasetImages(ctx, ds.ID)
				if err != nil {
					return nil, err
				}
				images = append(images, imgs...)
			}
		}
	case KindPlate:
		for _, id := range ids {
			imgs, err := c.plateImages(ctx, id)
			if err != nil {
				return nil, err
			}
			images = append(images, imgs...)
		}
	case KindScreen:
		for _, id := range ids {
			plates, err := c.ScreenPlates(ctx, id)
			if err != nil {
				return nil, err
			}
			for _, plate := range plates {
				imgs, err := c.plateImages(ctx, plate.ID)
				if err != nil {
					return nil, err
				}
				images = append(images, imgs...)
			}
		}
	default:
		return nil, fmt.Errorf("unknown target kind %q", kind)
	}
	return images, nil
}

// ROIs lists the ROIs of an image with their shapes embedded.
func (c *Client) ROIs(ctx context.Context, imageID int64) ([]ROI, error) {
	query := url.Values{}
	query.Set("image", fmt.Sprintf("%d", imageID))
	rois, err := listPaged[ROI](ctx, c, "/api/v0/m/rois/", query)
	if err != nil {
		return nil, fmt.Errorf("failed to list ROIs of image %d: %w", imageID, err)
	}
	return rois, nil
}
