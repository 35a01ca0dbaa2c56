package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

func init() {
	RegisterCommand(&Command{
		Name:  "run",
		Short: "Compile and run the project",
		Long: `Compile the Veld project and run the produced binary.

The command performs the same resolution and compilation as "veld build",
then executes the output binary with any remaining arguments forwarded to
it.`,
		Usage: "veld run [dir] [-- args...]",
		Run:   runRun,
	})
}

func runRun(args []string) error {
	var dir string
	var forwarded []string
	for i := 0; i < len(args); i++ {
		if args[i] == "--" {
			forwarded = args[i+1:]
			break
		}
		if dir != "" {
			return fmt.Errorf("unexpected argument %q", args[i])
		}
		dir = args[i]
	}

	cfg, err := resolveProject(dir)
	if err != nil {
		return err
	}
	output := filepath.Join(cfg.Root, "bin", cfg.AppName)
	if err := buildProject(cfg, output); err != nil {
		return err
	}

	app := exec.Command(output, forwarded...)
	app.Dir = cfg.Root
	app.Stdin = os.Stdin
	app.Stdout = os.Stdout
	app.Stderr = os.Stderr
	return app.Run()
}
