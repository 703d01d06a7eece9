package fbconfig

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFromGoogleServices(t *testing.T) {
	path := filepath.Join(t.TempDir(), "google-services.json")
	content := `{"project_info": {"project_id": "minerva-test", "project_number": "123"}}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	cfg, err := FromGoogleServices(path)
	if err != nil {
		t.Fatalf("FromGoogleServices() error = %v", err)
	}
	if cfg.ProjectID != "minerva-test" {
		t.Errorf("project ID = %q, want %q", cfg.ProjectID, "minerva-test")
	}
}

func TestFromGoogleServicesErrors(t *testing.T) {
	if _, err := FromGoogleServices(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("missing file should error")
	}

	path := filepath.Join(t.TempDir(), "google-services.json")
	if err := os.WriteFile(path, []byte(`{"project_info": {}}`), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	if _, err := FromGoogleServices(path); err == nil {
		t.Error("missing project_id should error")
	}
}
