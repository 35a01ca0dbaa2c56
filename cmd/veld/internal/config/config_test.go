package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeProject(t *testing.T, gomod, veldYAML string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "go.mod"), []byte(gomod), 0o644); err != nil {
		t.Fatal(err)
	}
	if veldYAML != "" {
		if err := os.WriteFile(filepath.Join(dir, "veld.yaml"), []byte(veldYAML), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestResolveDefaults(t *testing.T) {
	dir := writeProject(t, "module github.com/acme/tasks\n\ngo 1.24.0\n", "")
	cfg, err := Resolve(dir)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if cfg.ModulePath != "github.com/acme/tasks" {
		t.Errorf("ModulePath = %q", cfg.ModulePath)
	}
	if cfg.AppName != "tasks" {
		t.Errorf("AppName = %q, want module base name", cfg.AppName)
	}
	if cfg.Entry != "Main" {
		t.Errorf("Entry = %q, want default Main", cfg.Entry)
	}
	if cfg.CompilerPath != "veldc" {
		t.Errorf("CompilerPath = %q, want veldc", cfg.CompilerPath)
	}
}

func TestResolveReadsVeldYAML(t *testing.T) {
	dir := writeProject(t, "module example.com/demo\n\ngo 1.24.0\n", `
app:
  name: demo-app
  entry: Dashboard
compiler:
  path: /opt/veld/veldc
  flags: ["--strict"]
`)
	cfg, err := Resolve(dir)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if cfg.AppName != "demo-app" {
		t.Errorf("AppName = %q", cfg.AppName)
	}
	if cfg.Entry != "Dashboard" {
		t.Errorf("Entry = %q", cfg.Entry)
	}
	if cfg.CompilerPath != "/opt/veld/veldc" {
		t.Errorf("CompilerPath = %q", cfg.CompilerPath)
	}
	if len(cfg.CompilerFlags) != 1 || cfg.CompilerFlags[0] != "--strict" {
		t.Errorf("CompilerFlags = %v", cfg.CompilerFlags)
	}
}

func TestResolveEnvOverridesCompilerPath(t *testing.T) {
	dir := writeProject(t, "module example.com/demo\n\ngo 1.24.0\n", "compiler:\n  path: ./ignored\n")
	t.Setenv("VELDC", "/usr/local/bin/veldc-nightly")
	cfg, err := Resolve(dir)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if cfg.CompilerPath != "/usr/local/bin/veldc-nightly" {
		t.Errorf("CompilerPath = %q, want the VELDC override", cfg.CompilerPath)
	}
}

func TestResolveRejectsMissingModule(t *testing.T) {
	dir := t.TempDir()
	if _, err := Resolve(dir); err == nil {
		t.Fatal("expected an error without go.mod")
	}
}

func TestResolveRejectsInvalidModulePath(t *testing.T) {
	dir := writeProject(t, "module .bad..path\n\ngo 1.24.0\n", "")
	if _, err := Resolve(dir); err == nil {
		t.Fatal("expected an error for an invalid module path")
	}
}
