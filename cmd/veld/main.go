package main

import (
	"os"

	"github.com/go-veld/veld/cmd/veld/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
