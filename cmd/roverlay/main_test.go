package main

import (
	"fmt"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"

	"roverlay/internal/config"
	"roverlay/internal/export"
)

func TestRootCommandWiring(t *testing.T) {
	want := map[string]bool{"export": false, "inspect": false, "config": false}
	for _, cmd := range rootCmd.Commands() {
		if _, ok := want[cmd.Name()]; ok {
			want[cmd.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("command %q not registered", name)
		}
	}
}

func TestExportFlags(t *testing.T) {
	for _, name := range []string{"type", "ids", "size", "name", "out", "exclude-image", "dry-run", "parallelism"} {
		if exportCmd.Flags().Lookup(name) == nil {
			t.Errorf("export flag --%s missing", name)
		}
	}
	if exportCmd.Flags().Lookup("type").DefValue != "Image" {
		t.Errorf("expected --type default Image, got %q", exportCmd.Flags().Lookup("type").DefValue)
	}
}

func TestInspectFlags(t *testing.T) {
	for _, name := range []string{"type", "ids"} {
		if inspectCmd.Flags().Lookup(name) == nil {
			t.Errorf("inspect flag --%s missing", name)
		}
	}
}

func TestNewLogger_ConfigLevel(t *testing.T) {
	lg, err := newLogger(config.LoggingConfig{Level: "debug", Format: "json"}, false)
	if err != nil {
		t.Fatalf("newLogger failed: %v", err)
	}
	defer lg.Sync()
	if !lg.Core().Enabled(zapcore.DebugLevel) {
		t.Error("configured debug level not applied")
	}

	lg, err = newLogger(config.LoggingConfig{Level: "warn", Format: "text"}, false)
	if err != nil {
		t.Fatalf("newLogger failed: %v", err)
	}
	defer lg.Sync()
	if lg.Core().Enabled(zapcore.InfoLevel) {
		t.Error("configured warn level not applied")
	}
}

func TestNewLogger_VerboseWinsOverConfig(t *testing.T) {
	lg, err := newLogger(config.LoggingConfig{Level: "error"}, true)
	if err != nil {
		t.Fatalf("newLogger failed: %v", err)
	}
	defer lg.Sync()
	if !lg.Core().Enabled(zapcore.DebugLevel) {
		t.Error("--verbose must force debug level")
	}
}

func TestNewLogger_RejectsBadValues(t *testing.T) {
	if _, err := newLogger(config.LoggingConfig{Level: "loud"}, false); err == nil {
		t.Error("expected error for unknown level")
	}
	if _, err := newLogger(config.LoggingConfig{Format: "yaml"}, false); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestRenderSummary(t *testing.T) {
	s := &export.Summary{
		RunID:     "test-run",
		Processed: 1,
		Skipped:   1,
		Failed:    1,
		Results: []export.Result{
			{ImageID: 3, Err: fmt.Errorf("boom")},
			{ImageID: 1, File: "roi_overlay_1.png", ShapeCount: 4, AnnotationID: 77},
			{ImageID: 2, Skipped: true},
		},
	}
	out := renderSummary(s)

	for _, want := range []string{
		"roi_overlay_1.png",
		"no ROIs",
		"boom",
		"processed 1",
		"skipped 1",
		"failed 1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}

	// Results render sorted by image ID regardless of input order.
	if strings.Index(out, "image 1") > strings.Index(out, "image 3") {
		t.Error("summary lines not sorted by image ID")
	}
}
