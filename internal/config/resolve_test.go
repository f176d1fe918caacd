package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "kpx.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestResolve_Defaults(t *testing.T) {
	tmp := t.TempDir()
	r, xe := Resolve(Options{WorkDir: tmp, HomeDir: tmp})
	if xe != nil {
		t.Fatalf("unexpected error: %v", xe)
	}
	if r.Format != "auto" {
		t.Errorf("expected format=auto, got %q", r.Format)
	}
	if r.ProfileName != "" {
		t.Errorf("expected empty profile, got %q", r.ProfileName)
	}
}

func TestResolve_DefaultProfileSelected(t *testing.T) {
	tmp := t.TempDir()
	writeConfig(t, tmp, `profiles:
  default:
    database: /vault/main.kdbx
    format: yaml
`)
	r, xe := Resolve(Options{WorkDir: tmp, HomeDir: tmp})
	if xe != nil {
		t.Fatalf("unexpected error: %v", xe)
	}
	if r.ProfileName != "default" {
		t.Errorf("expected profile=default, got %q", r.ProfileName)
	}
	if r.Profile.Database != "/vault/main.kdbx" {
		t.Errorf("unexpected database %q", r.Profile.Database)
	}
	if r.Format != "yaml" {
		t.Errorf("profile format should apply, got %q", r.Format)
	}
}

func TestResolve_CLIOverridesEnvAndConfig(t *testing.T) {
	tmp := t.TempDir()
	writeConfig(t, tmp, `profiles:
  default:
    format: yaml
  other:
    format: csv
`)
	r, xe := Resolve(Options{
		WorkDir:       tmp,
		HomeDir:       tmp,
		CLIProfile:    "other",
		CLIProfileSet: true,
		CLIFormat:     "json",
		CLIFormatSet:  true,
		EnvProfile:    "default",
		EnvFormat:     "table",
	})
	if xe != nil {
		t.Fatalf("unexpected error: %v", xe)
	}
	if r.ProfileName != "other" {
		t.Errorf("CLI profile should win, got %q", r.ProfileName)
	}
	if r.Format != "json" {
		t.Errorf("CLI format should win, got %q", r.Format)
	}
}

func TestResolve_EnvOverridesConfig(t *testing.T) {
	tmp := t.TempDir()
	writeConfig(t, tmp, `profiles:
  default:
    format: yaml
  envprofile:
    database: /vault/env.kdbx
`)
	r, xe := Resolve(Options{
		WorkDir:    tmp,
		HomeDir:    tmp,
		EnvProfile: "envprofile",
		EnvFormat:  "csv",
	})
	if xe != nil {
		t.Fatalf("unexpected error: %v", xe)
	}
	if r.ProfileName != "envprofile" {
		t.Errorf("ENV profile should win over config default, got %q", r.ProfileName)
	}
	if r.Format != "csv" {
		t.Errorf("ENV format should win, got %q", r.Format)
	}
}

func TestResolve_UnknownProfileKeepsName(t *testing.T) {
	tmp := t.TempDir()
	r, xe := Resolve(Options{WorkDir: tmp, HomeDir: tmp, CLIProfile: "missing", CLIProfileSet: true})
	if xe != nil {
		t.Fatalf("unexpected error: %v", xe)
	}
	if r.ProfileName != "missing" {
		t.Errorf("expected profile name preserved, got %q", r.ProfileName)
	}
	if r.Profile.Database != "" {
		t.Errorf("expected empty profile for unknown name")
	}
}
