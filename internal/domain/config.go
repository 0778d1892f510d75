// Package domain holds the canonical VM request model shared by the
// validator, the build orchestrator, and the startup script generator.
package domain

import "fmt"

// DefaultName is used when the operator does not name the VM at all.
const DefaultName = "vm"

// Configuration is a validated, immutable description of one VM request.
// It is constructed exclusively by the validate package; downstream
// components read it and never modify it.
type Configuration struct {
	// Name labels the VM and is embedded in every derived file name,
	// so it is restricted to [A-Za-z0-9_-]+.
	Name string

	// RAMGB, CPUCores, and StorageGB are positive integers below the
	// operator-configured ceilings.
	RAMGB     int
	CPUCores  int
	StorageGB int

	// Overlay selects a copy-on-write overlay filesystem instead of a
	// persistent disk image.
	Overlay bool

	// RWShares and ROShares are host directories exposed inside the
	// guest, in the order the operator listed them. Existence was
	// checked at validation time and is not re-checked later.
	RWShares []string
	ROShares []string
}

// ScriptFileName returns the name of the generated startup script.
func (c Configuration) ScriptFileName() string {
	return "start-" + c.Name + ".sh"
}

// ArtifactName returns the executable name the build backend is expected
// to produce for this configuration.
func (c Configuration) ArtifactName() string {
	return "run-" + c.Name + "-vm"
}

// ArtifactPath returns the relative path of the built VM runner. The
// script generator and the orchestrator both resolve the artifact through
// this single method so the built binary and the script's exec line can
// never drift apart.
func (c Configuration) ArtifactPath() string {
	return "./result/bin/" + c.ArtifactName()
}

// SizeSummary renders the sizing triple the way it appears in operator
// output and in the generated script header.
func (c Configuration) SizeSummary() string {
	return fmt.Sprintf("%dGB RAM, %d CPU cores, %dGB storage", c.RAMGB, c.CPUCores, c.StorageGB)
}

// GuestMountPath returns the in-guest mount point for a shared host
// directory. The full host path is preserved under the mount root so two
// shares with the same basename cannot collide.
func GuestMountPath(hostPath string, readWrite bool) string {
	root := "/mnt/host-ro"
	if readWrite {
		root = "/mnt/host-rw"
	}
	return root + hostPath
}
