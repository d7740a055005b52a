package omero

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// UploadFileAnnotation uploads a local file as a new OMERO file annotation
// and links it to the given image, via the webclient annotation endpoint.
// Returns the annotation ID when the server reports one.
func (c *Client) UploadFileAnnotation(ctx context.Context, imageID int64, path, mimetype string) (int64, error) {
	if !c.loggedIn {
		return 0, ErrNotLoggedIn
	}

	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open annotation file: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	if err := mw.WriteField("image", fmt.Sprintf("%d", imageID)); err != nil {
		return 0, fmt.Errorf("failed to build upload form: %w", err)
	}
	if err := mw.WriteField("index", "0"); err != nil {
		return 0, fmt.Errorf("failed to build upload form: %w", err)
	}

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="annotation_file"; filename="%s"`, filepath.Base(path)))
	if mimetype != "" {
		header.Set("Content-Type", mimetype)
	}
	part, err := mw.CreatePart(header)
	if err != nil {
		return 0, fmt.Errorf("failed to build upload form: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return 0, fmt.Errorf("failed to read annotation file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return 0, fmt.Errorf("failed to finish upload form: %w", err)
	}

	uploadURL := c.baseURL + "/webclient/annotate_file/"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, &buf)
	if err != nil {
		return 0, fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	c.setCSRFHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return 0, fmt.Errorf("failed to read upload response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, &APIError{Status: resp.StatusCode, URL: uploadURL, Body: trimBody(body)}
	}

	// The webclient responds with JSON when asked nicely; older releases
	// return an HTML fragment. The annotation exists either way.
	var result struct {
		AnnID int64 `json:"annId"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		c.logger.Debug("upload response not JSON, annotation id unknown",
			zap.Int64("image_id", imageID))
		return 0, nil
	}

	c.logger.Info("file annotation uploaded",
		zap.Int64("image_id", imageID),
		zap.Int64("annotation_id", result.AnnID),
		zap.String("file", filepath.Base(path)))
	return result.AnnID, nil
}
