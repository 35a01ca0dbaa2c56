package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/go-veld/veld/cmd/veld/internal/config"
)

func init() {
	RegisterCommand(&Command{
		Name:  "build",
		Short: "Compile the project with veldc",
		Long: `Compile the Veld project in the given directory (default: the
enclosing Go module).

The command resolves veld.yaml and go.mod, locates the veldc compiler
(VELDC environment variable, compiler.path in veld.yaml, or PATH), and
invokes it on the project root. The compiler's output goes to
<root>/bin/<app-name>.

Flags:
  --output PATH    Override the output binary path`,
		Usage: "veld build [dir] [--output PATH]",
		Run:   runBuild,
	})
}

func runBuild(args []string) error {
	dir, output, err := parseBuildArgs(args)
	if err != nil {
		return err
	}
	cfg, err := resolveProject(dir)
	if err != nil {
		return err
	}
	return buildProject(cfg, output)
}

func parseBuildArgs(args []string) (dir, output string, err error) {
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--output":
			if i+1 >= len(args) {
				return "", "", fmt.Errorf("--output requires a path")
			}
			output = args[i+1]
			i++
		default:
			if dir != "" {
				return "", "", fmt.Errorf("unexpected argument %q", args[i])
			}
			dir = args[i]
		}
	}
	return dir, output, nil
}

func resolveProject(dir string) (*config.Resolved, error) {
	if dir == "" {
		root, err := config.FindProjectRoot()
		if err != nil {
			return nil, err
		}
		dir = root
	}
	return config.Resolve(dir)
}

func buildProject(cfg *config.Resolved, output string) error {
	compiler, err := exec.LookPath(cfg.CompilerPath)
	if err != nil {
		return fmt.Errorf("veldc compiler not found (%q): install it or set VELDC", cfg.CompilerPath)
	}

	if output == "" {
		output = filepath.Join(cfg.Root, "bin", cfg.AppName)
	}
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	cmdArgs := append([]string{}, cfg.CompilerFlags...)
	cmdArgs = append(cmdArgs, "--entry", cfg.Entry, "-o", output, cfg.Root)

	fmt.Printf("Building %s (%s)\n", cfg.AppName, cfg.ModulePath)
	build := exec.Command(compiler, cmdArgs...)
	build.Dir = cfg.Root
	build.Stdout = os.Stdout
	build.Stderr = os.Stderr
	if err := build.Run(); err != nil {
		return fmt.Errorf("veldc failed: %w", err)
	}
	fmt.Printf("Built %s\n", output)
	return nil
}
