package cmd

import (
	"fmt"
	"runtime"
)

func init() {
	RegisterCommand(&Command{
		Name:  "version",
		Short: "Print version information",
		Long:  `Print the CLI version, build time, and Go runtime version.`,
		Usage: "veld version",
		Run:   runVersion,
	})
}

func runVersion([]string) error {
	fmt.Printf("Veld CLI version %s\n", Version)
	fmt.Printf("  built:      %s\n", BuildTime)
	fmt.Printf("  go version: %s\n", runtime.Version())
	return nil
}
