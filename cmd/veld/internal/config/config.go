// Package config resolves project configuration for the Veld CLI from the
// optional veld.yaml and the module's go.mod.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"
	"gopkg.in/yaml.v3"
)

// Config represents the optional veld.yaml configuration.
type Config struct {
	App      AppConfig      `yaml:"app"`
	Compiler CompilerConfig `yaml:"compiler"`
}

// AppConfig contains application metadata.
type AppConfig struct {
	Name  string `yaml:"name,omitempty"`
	Entry string `yaml:"entry,omitempty"`
}

// CompilerConfig contains veldc settings.
type CompilerConfig struct {
	Path  string   `yaml:"path,omitempty"`
	Flags []string `yaml:"flags,omitempty"`
}

// Resolved contains resolved configuration values.
type Resolved struct {
	Root          string
	ModulePath    string
	AppName       string
	Entry         string
	CompilerPath  string
	CompilerFlags []string
}

// LoadOptional reads veld.yaml if present.
func LoadOptional(dir string) (*Config, error) {
	path := filepath.Join(dir, "veld.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to read veld.yaml: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse veld.yaml: %w", err)
	}

	return &cfg, nil
}

// Resolve loads veld.yaml (if present) and resolves defaults against the
// module's go.mod.
func Resolve(dir string) (*Resolved, error) {
	modulePath, err := readModulePath(dir)
	if err != nil {
		return nil, err
	}
	if err := module.CheckPath(modulePath); err != nil {
		return nil, fmt.Errorf("invalid module path in go.mod: %w", err)
	}

	cfg, err := LoadOptional(dir)
	if err != nil {
		return nil, err
	}

	appName := strings.TrimSpace(cfg.App.Name)
	if appName == "" {
		appName = defaultAppName(modulePath, dir)
	}

	entry := strings.TrimSpace(cfg.App.Entry)
	if entry == "" {
		entry = "Main"
	}

	compilerPath := strings.TrimSpace(cfg.Compiler.Path)
	if env := os.Getenv("VELDC"); env != "" {
		compilerPath = env
	}
	if compilerPath == "" {
		compilerPath = "veldc"
	}

	return &Resolved{
		Root:          dir,
		ModulePath:    modulePath,
		AppName:       appName,
		Entry:         entry,
		CompilerPath:  compilerPath,
		CompilerFlags: cfg.Compiler.Flags,
	}, nil
}

// FindProjectRoot walks up from the current directory to find go.mod.
func FindProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("not in a Go module (no go.mod found)")
		}
		dir = parent
	}
}

func readModulePath(dir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, "go.mod"))
	if err != nil {
		return "", fmt.Errorf("failed to read go.mod: %w", err)
	}
	path := modfile.ModulePath(data)
	if path == "" {
		return "", fmt.Errorf("could not determine module path from go.mod")
	}
	return path, nil
}

func defaultAppName(modulePath, dir string) string {
	base := filepath.Base(dir)
	modName, _, ok := module.SplitPathVersion(modulePath)
	if ok {
		parts := strings.Split(modName, "/")
		if len(parts) > 0 {
			base = parts[len(parts)-1]
		}
	}
	if base == "" {
		return "veld_app"
	}
	return base
}
