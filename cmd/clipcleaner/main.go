package main

import (
	"os"

	"github.com/raaihank/clipboard-cleaner/internal/cli"
)

var version = "0.1.0"

func main() {
	cli.SetVersion(version)
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
