// Package main provides the entry point for the selftrack CLI.
package main

import (
	"os"

	"github.com/selftrack/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
