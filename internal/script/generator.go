// Package script renders the standalone startup script for a built VM.
//
// The script is a pure derived artifact of the configuration plus the
// confirmed artifact name: every value is baked in as a literal, so the
// script needs no flags and no environment at launch time.
package script

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"vmselector/internal/domain"

	"github.com/hashicorp/go-hclog"
)

// Generator writes start-<name>.sh into OutputDir.
type Generator struct {
	OutputDir string
	Logger    hclog.Logger
}

type scriptData struct {
	Name         string
	RAMGB        int
	CPUCores     int
	StorageGB    int
	SizeSummary  string
	OverlayState string
	OverlayBit   int
	ShareLines   []string
	ExecPath     string
}

// Render produces the script text for the given configuration and the
// artifact name confirmed by the build orchestrator. The artifact name
// must match the one derived from the configuration; a mismatch means
// the script would exec a binary that was never built.
func (g *Generator) Render(cfg domain.Configuration, artifactName string) ([]byte, error) {
	if artifactName != cfg.ArtifactName() {
		return nil, &domain.GenerationError{
			Script: cfg.ScriptFileName(),
			Err:    fmt.Errorf("artifact name %q does not match configuration name %q (expected %q)", artifactName, cfg.Name, cfg.ArtifactName()),
		}
	}

	data := scriptData{
		Name:         cfg.Name,
		RAMGB:        cfg.RAMGB,
		CPUCores:     cfg.CPUCores,
		StorageGB:    cfg.StorageGB,
		SizeSummary:  cfg.SizeSummary(),
		OverlayState: "disabled",
		ExecPath:     cfg.ArtifactPath(),
	}
	if cfg.Overlay {
		data.OverlayState = "enabled"
		data.OverlayBit = 1
	}
	for _, share := range cfg.RWShares {
		data.ShareLines = append(data.ShareLines,
			fmt.Sprintf("#   %s → VM: %s (read-write)", share, domain.GuestMountPath(share, true)))
	}
	for _, share := range cfg.ROShares {
		data.ShareLines = append(data.ShareLines,
			fmt.Sprintf("#   %s → VM: %s (read-only)", share, domain.GuestMountPath(share, false)))
	}

	tmpl, err := template.New("startup").Parse(startupTemplate)
	if err != nil {
		return nil, &domain.GenerationError{Script: cfg.ScriptFileName(), Err: fmt.Errorf("parse startup template: %w", err)}
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, &domain.GenerationError{Script: cfg.ScriptFileName(), Err: fmt.Errorf("render startup template: %w", err)}
	}

	rendered := buf.Bytes()
	if err := checkRendered(rendered); err != nil {
		return nil, &domain.GenerationError{Script: cfg.ScriptFileName(), Err: err}
	}

	return rendered, nil
}

// Write renders the script and installs it as start-<name>.sh with the
// executable bit set. The content is written to a temporary file first
// and renamed into place, so a half-written executable script is never
// visible; an existing script for the same name is replaced.
func (g *Generator) Write(cfg domain.Configuration, artifactName string) (string, error) {
	rendered, err := g.Render(cfg, artifactName)
	if err != nil {
		return "", err
	}

	target := filepath.Join(g.OutputDir, cfg.ScriptFileName())

	tmp, err := os.CreateTemp(g.OutputDir, ".start-*.tmp")
	if err != nil {
		return "", &domain.GenerationError{Script: target, Err: err}
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(rendered); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", &domain.GenerationError{Script: target, Err: err}
	}
	if err := tmp.Chmod(0o755); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", &domain.GenerationError{Script: target, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", &domain.GenerationError{Script: target, Err: err}
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return "", &domain.GenerationError{Script: target, Err: err}
	}

	if g.Logger != nil {
		g.Logger.Debug("startup script written", "path", target)
	}
	return target, nil
}

// checkRendered asserts that no template or shell placeholder survived
// rendering. A script that looks right but execs an undefined variable
// fails at every future launch, so this is checked explicitly instead of
// trusting the template.
func checkRendered(rendered []byte) error {
	text := string(rendered)
	if strings.Contains(text, "{{") || strings.Contains(text, "}}") {
		return fmt.Errorf("rendered script contains unresolved template placeholders")
	}
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "exec ") && strings.ContainsAny(trimmed, "$") {
			return fmt.Errorf("exec line contains an unresolved variable reference: %s", trimmed)
		}
	}
	return nil
}

// startupTemplate bakes the configuration into shell literals. The exec
// line references the artifact path directly, never through a variable,
// because the launching shell has none of this tool's state in scope.
const startupTemplate = `#!/usr/bin/env bash
# Generated VM startup script for: {{.Name}}
# Configuration: {{.SizeSummary}}
# Overlay filesystem: {{.OverlayState}}
#
# Re-running vmselector with the same options regenerates this file.
set -euo pipefail

VM_NAME="{{.Name}}"
RAM_SIZE={{.RAMGB}}
CPU_CORES={{.CPUCores}}
STORAGE_SIZE={{.StorageGB}}
OVERLAY={{.OverlayBit}}
{{if .ShareLines}}
# Shared folders:
{{range .ShareLines}}{{.}}
{{end}}{{end}}
echo "Starting VM '$VM_NAME' ($RAM_SIZE GB RAM, $CPU_CORES CPU cores, $STORAGE_SIZE GB storage)"
exec "{{.ExecPath}}"
`
