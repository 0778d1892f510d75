package domain

import "testing"

func TestDerivedNames(t *testing.T) {
	cfg := Configuration{Name: "test-integration"}

	if got := cfg.ScriptFileName(); got != "start-test-integration.sh" {
		t.Errorf("unexpected script file name %q", got)
	}
	if got := cfg.ArtifactName(); got != "run-test-integration-vm" {
		t.Errorf("unexpected artifact name %q", got)
	}
	if got := cfg.ArtifactPath(); got != "./result/bin/run-test-integration-vm" {
		t.Errorf("unexpected artifact path %q", got)
	}
}

func TestArtifactPathEmbedsArtifactName(t *testing.T) {
	// The exec line in the generated script and the name the backend
	// builds must come from the same derivation.
	cfg := Configuration{Name: "dev_env-2024"}
	path := cfg.ArtifactPath()
	name := cfg.ArtifactName()
	if len(path) < len(name) || path[len(path)-len(name):] != name {
		t.Errorf("artifact path %q does not end in artifact name %q", path, name)
	}
}

func TestSizeSummary(t *testing.T) {
	cfg := Configuration{RAMGB: 4, CPUCores: 2, StorageGB: 50}
	want := "4GB RAM, 2 CPU cores, 50GB storage"
	if got := cfg.SizeSummary(); got != want {
		t.Errorf("SizeSummary() = %q, want %q", got, want)
	}
}

func TestGuestMountPath(t *testing.T) {
	tests := []struct {
		host      string
		readWrite bool
		want      string
	}{
		{"/tmp/test-share-rw", true, "/mnt/host-rw/tmp/test-share-rw"},
		{"/tmp/test-share-ro", false, "/mnt/host-ro/tmp/test-share-ro"},
		{"/home/user/data", true, "/mnt/host-rw/home/user/data"},
		// Same basename under different parents must not collide.
		{"/a/shared", false, "/mnt/host-ro/a/shared"},
		{"/b/shared", false, "/mnt/host-ro/b/shared"},
	}
	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			if got := GuestMountPath(tt.host, tt.readWrite); got != tt.want {
				t.Errorf("GuestMountPath(%q, %t) = %q, want %q", tt.host, tt.readWrite, got, tt.want)
			}
		})
	}
}
