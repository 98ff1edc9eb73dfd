package deps

import (
	"os"
	"path/filepath"
	"testing"

	"subgen/internal/config"
)

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	if err := os.WriteFile(present, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Unset", Command: ""},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}
	if !results[0].Available || results[0].Detail != "" {
		t.Fatalf("present binary misreported: %+v", results[0])
	}
	if results[1].Available || results[1].Detail == "" {
		t.Fatalf("missing binary misreported: %+v", results[1])
	}
	if results[2].Available || results[2].Detail != "command not configured" {
		t.Fatalf("unset command misreported: %+v", results[2])
	}
}

func TestForConfig(t *testing.T) {
	cfg := config.Default()
	reqs := ForConfig(&cfg)
	if len(reqs) != 1 {
		t.Fatalf("default config should list one requirement, got %d", len(reqs))
	}
	if reqs[0].Command != cfg.Recognizer.Command {
		t.Fatalf("recognizer command = %q", reqs[0].Command)
	}

	cfg.Transcoder.Command = "ffmpeg"
	reqs = ForConfig(&cfg)
	if len(reqs) != 2 {
		t.Fatalf("transcoder override should add a requirement, got %d", len(reqs))
	}
}
