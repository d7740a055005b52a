package omero

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"
)

func TestUploadFileAnnotation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "roi_overlay_42.png")
	if err := os.WriteFile(path, []byte("fake png bytes"), 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/webclient/annotate_file/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.Header.Get("X-CSRFToken") != "csrf-test-token" {
			t.Error("expected CSRF token header on upload")
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("bad multipart form: %v", err)
		}
		if got := r.FormValue("image"); got != "42" {
			t.Errorf("expected image=42, got %q", got)
		}
		f, header, err := r.FormFile("annotation_file")
		if err != nil {
			t.Fatalf("missing annotation_file part: %v", err)
		}
		defer f.Close()
		if header.Filename != "roi_overlay_42.png" {
			t.Errorf("unexpected upload filename %q", header.Filename)
		}
		if ct := header.Header.Get("Content-Type"); ct != "image/png" {
			t.Errorf("expected image/png part, got %q", ct)
		}
		body, _ := io.ReadAll(f)
		if string(body) != "fake png bytes" {
			t.Error("upload body does not match the file")
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"annId": 777}`)
	})
	client := newTestClient(t, mux)

	annID, err := client.UploadFileAnnotation(context.Background(), 42, path, "image/png")
	if err != nil {
		t.Fatalf("UploadFileAnnotation failed: %v", err)
	}
	if annID != 777 {
		t.Errorf("expected annotation id 777, got %d", annID)
	}
}

func TestUploadFileAnnotation_NonJSONResponse(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "overlay.png")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/webclient/annotate_file/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html>attached</html>")
	})
	client := newTestClient(t, mux)

	annID, err := client.UploadFileAnnotation(context.Background(), 1, path, "image/png")
	if err != nil {
		t.Fatalf("UploadFileAnnotation failed: %v", err)
	}
	if annID != 0 {
		t.Errorf("expected unknown annotation id 0, got %d", annID)
	}
}

func TestUploadFileAnnotation_MissingFile(t *testing.T) {
	client := newTestClient(t, http.NewServeMux())
	if _, err := client.UploadFileAnnotation(context.Background(), 1, "/does/not/exist.png", ""); err == nil {
		t.Error("expected error for missing file")
	}
}
