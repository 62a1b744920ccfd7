// Package main is the entry point for the hivemind CLI.
package main

import (
	"errors"
	"os"

	"github.com/hivemind-vault/hivemind/cmd"
	"github.com/hivemind-vault/hivemind/internal/core/entities"
)

// Build-time version information, set via -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
	builtBy = "unknown"
)

func main() {
	cmd.SetVersionInfo(version, commit, date, builtBy)
	if err := cmd.Execute(); err != nil {
		var cfgErr *entities.ConfigError
		if errors.As(err, &cfgErr) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
