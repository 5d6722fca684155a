package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Expected port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Incident.FallbackDistrictCode != "GLR-AGS" {
		t.Errorf("Expected fallback district GLR-AGS, got %s", cfg.Incident.FallbackDistrictCode)
	}
	if cfg.Database.QueryTimeout != 5*time.Second {
		t.Errorf("Expected query timeout 5s, got %s", cfg.Database.QueryTimeout)
	}
	if len(cfg.Auth.RegistrableRoles) != 2 || cfg.Auth.RegistrableRoles[0] != "citizen" || cfg.Auth.RegistrableRoles[1] != "responder" {
		t.Errorf("Expected citizen and responder self-registration only, got %v", cfg.Auth.RegistrableRoles)
	}
	if !cfg.Coordination.ReleaseOnClose {
		t.Error("Expected release on close to default to true")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("INCIDENT_STRICT_ORDERING", "true")
	t.Setenv("AUTH_REGISTRABLE_ROLES", "citizen,responder,official")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Store.Driver != "memory" {
		t.Errorf("Expected memory driver, got %s", cfg.Store.Driver)
	}
	if !cfg.Incident.StrictOrdering {
		t.Error("Expected strict ordering to be enabled")
	}
	if len(cfg.Auth.RegistrableRoles) != 3 {
		t.Errorf("Expected 3 registrable roles, got %v", cfg.Auth.RegistrableRoles)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("server:\n  port: 9090\nincident:\n  fallback_district_code: GLR-POB\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Incident.FallbackDistrictCode != "GLR-POB" {
		t.Errorf("Expected GLR-POB, got %s", cfg.Incident.FallbackDistrictCode)
	}
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("STORE_DRIVER", "sqlite")

	if _, err := Load(""); err == nil {
		t.Error("Expected error for unknown store driver")
	}
}
