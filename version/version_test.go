package version

import "testing"

func TestGetFullVersion(t *testing.T) {
	if got := GetFullVersion(); got != "dev" {
		t.Errorf("Expected dev, got %s", got)
	}

	Version, GitCommit, BuildDate = "1.2.0", "abc123", "2026-10-01"
	defer func() { Version, GitCommit, BuildDate = "dev", "unknown", "unknown" }()

	expected := "1.2.0 (commit abc123, built 2026-10-01)"
	if got := GetFullVersion(); got != expected {
		t.Errorf("Expected %s, got %s", expected, got)
	}
	if got := GetVersion(); got != "1.2.0" {
		t.Errorf("Expected 1.2.0, got %s", got)
	}
}
