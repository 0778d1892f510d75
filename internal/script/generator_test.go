package script

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vmselector/internal/domain"
)

func testConfig() domain.Configuration {
	return domain.Configuration{
		Name:      "test-integration",
		RAMGB:     4,
		CPUCores:  2,
		StorageGB: 50,
	}
}

func TestRender_LiteralValues(t *testing.T) {
	g := &Generator{}
	cfg := testConfig()

	rendered, err := g.Render(cfg, cfg.ArtifactName())
	if err != nil {
		t.Fatalf("Render() returned error: %v", err)
	}

	text := string(rendered)
	for _, want := range []string{
		"#!/usr/bin/env bash",
		"# Generated VM startup script for: test-integration",
		"# Configuration: 4GB RAM, 2 CPU cores, 50GB storage",
		`VM_NAME="test-integration"`,
		"RAM_SIZE=4",
		"CPU_CORES=2",
		"STORAGE_SIZE=50",
		"OVERLAY=0",
		`exec "./result/bin/run-test-integration-vm"`,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("rendered script missing %q:\n%s", want, text)
		}
	}
}

func TestRender_ExecLineHasNoVariableReference(t *testing.T) {
	g := &Generator{}
	cfg := testConfig()

	rendered, err := g.Render(cfg, cfg.ArtifactName())
	if err != nil {
		t.Fatal(err)
	}

	for _, line := range strings.Split(string(rendered), "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "exec ") {
			continue
		}
		if strings.Contains(trimmed, "${VM_NAME}") || strings.Contains(trimmed, "$VM_NAME") {
			t.Errorf("exec line references a variable instead of a literal: %s", trimmed)
		}
		if !strings.Contains(trimmed, "run-test-integration-vm") {
			t.Errorf("exec line missing literal artifact name: %s", trimmed)
		}
	}
}

func TestRender_ShareMappingLines(t *testing.T) {
	g := &Generator{}
	cfg := testConfig()
	cfg.RWShares = []string{"/tmp/test-share-rw"}
	cfg.ROShares = []string{"/tmp/test-share-ro"}

	rendered, err := g.Render(cfg, cfg.ArtifactName())
	if err != nil {
		t.Fatal(err)
	}

	text := string(rendered)
	for _, want := range []string{
		"/tmp/test-share-rw → VM: /mnt/host-rw/tmp/test-share-rw",
		"/tmp/test-share-ro → VM: /mnt/host-ro/tmp/test-share-ro",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("rendered script missing share mapping %q:\n%s", want, text)
		}
	}
}

func TestRender_OverlayMarker(t *testing.T) {
	g := &Generator{}
	cfg := testConfig()
	cfg.Overlay = true

	rendered, err := g.Render(cfg, cfg.ArtifactName())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(rendered), "# Overlay filesystem: enabled") {
		t.Errorf("overlay marker missing:\n%s", rendered)
	}
	if !strings.Contains(string(rendered), "OVERLAY=1") {
		t.Errorf("overlay bit not set:\n%s", rendered)
	}
}

func TestRender_NoResidualPlaceholders(t *testing.T) {
	g := &Generator{}
	cfg := testConfig()
	cfg.RWShares = []string{"/tmp/a"}

	rendered, err := g.Render(cfg, cfg.ArtifactName())
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Contains(rendered, []byte("{{")) || bytes.Contains(rendered, []byte("}}")) {
		t.Errorf("template placeholders survived rendering:\n%s", rendered)
	}
}

func TestRender_RejectsMismatchedArtifact(t *testing.T) {
	g := &Generator{}
	cfg := testConfig()

	_, err := g.Render(cfg, "run-other-vm")
	if err == nil {
		t.Fatal("expected mismatched artifact name to be rejected")
	}
	if !strings.Contains(err.Error(), "does not match") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRender_Deterministic(t *testing.T) {
	g := &Generator{}
	cfg := testConfig()
	cfg.Overlay = true
	cfg.RWShares = []string{"/tmp/a"}
	cfg.ROShares = []string{"/tmp/b"}

	first, err := g.Render(cfg, cfg.ArtifactName())
	if err != nil {
		t.Fatal(err)
	}
	second, err := g.Render(cfg, cfg.ArtifactName())
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first, second) {
		t.Error("regenerating the script produced different bytes")
	}
}

func TestWrite_ExecutableScript(t *testing.T) {
	dir := t.TempDir()
	g := &Generator{OutputDir: dir}
	cfg := testConfig()

	path, err := g.Write(cfg, cfg.ArtifactName())
	if err != nil {
		t.Fatalf("Write() returned error: %v", err)
	}
	if filepath.Base(path) != "start-test-integration.sh" {
		t.Errorf("unexpected script name %q", filepath.Base(path))
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm()&0o111 == 0 {
		t.Errorf("script is not executable: %v", info.Mode())
	}
}

func TestWrite_OverwritesExistingScript(t *testing.T) {
	dir := t.TempDir()
	g := &Generator{OutputDir: dir}
	cfg := testConfig()

	if _, err := g.Write(cfg, cfg.ArtifactName()); err != nil {
		t.Fatal(err)
	}

	cfg.RAMGB = 8
	path, err := g.Write(cfg, cfg.ArtifactName())
	if err != nil {
		t.Fatal(err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(content), "RAM_SIZE=8") {
		t.Error("second write did not replace the script")
	}
	if strings.Contains(string(content), "RAM_SIZE=4") {
		t.Error("stale content left in replaced script")
	}
}

func TestWrite_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	g := &Generator{OutputDir: dir}
	cfg := testConfig()

	if _, err := g.Write(cfg, cfg.ArtifactName()); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("expected exactly the script in the output dir, got %v", names)
	}
}

func TestWrite_UnwritableDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "missing-subdir")
	g := &Generator{OutputDir: dir}
	cfg := testConfig()

	_, err := g.Write(cfg, cfg.ArtifactName())
	if err == nil {
		t.Fatal("expected write into missing directory to fail")
	}
	var gerr *domain.GenerationError
	if !errors.As(err, &gerr) {
		t.Fatalf("expected GenerationError, got %T", err)
	}
	if !strings.Contains(err.Error(), "still usable") {
		t.Errorf("error should state the artifact remains usable: %v", err)
	}
}
