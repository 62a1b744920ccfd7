// Package cmd implements the hivemind CLI commands using Cobra.
package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/hivemind-vault/hivemind/internal/adapters/config"
	"github.com/hivemind-vault/hivemind/internal/core/entities"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Build-time version information, set via SetVersionInfo from main.go.
var (
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
	appBuiltBy = "unknown"
)

// Persistent flag values accessible to all subcommands.
var (
	cfgFile   string
	VaultRoot string
	Verbose   bool
)

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "hivemind",
	Short: "Local-first index and search over a Markdown vault",
	Long: `hivemind indexes a Markdown vault into a knowledge graph and full-text
index, and exposes it to LLM tools via the Model Context Protocol.

It watches a vault directory for changes, resolves wikilinks into a typed
relationship graph using a pluggable entity-type template, and serves
hybrid keyword/graph/vector search over stdio.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig(cmd.Root())
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to config file or directory (env: HIVEMIND_CONFIG_HOME)")
	rootCmd.PersistentFlags().StringVarP(&VaultRoot, "vault", "p", ".", "vault root directory")
	rootCmd.PersistentFlags().BoolVarP(&Verbose, "verbose", "v", false, "enable verbose output (env: HIVEMIND_VERBOSE)")

	rootCmd.AddGroup(
		&cobra.Group{ID: "indexing", Title: "Indexing"},
		&cobra.Group{ID: "serving", Title: "Serving"},
	)
}

// Execute runs the root command. This is the main entry point called from main.go.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersionInfo sets build-time version information from ldflags.
// Call this from main.go before Execute().
func SetVersionInfo(version, commit, date, builtBy string) {
	appVersion = version
	appCommit = commit
	appDate = date
	appBuiltBy = builtBy

	rootCmd.Version = version
	rootCmd.SetVersionTemplate(
		fmt.Sprintf("hivemind %s (commit: %s, built: %s by %s)\n", version, commit, date, builtBy),
	)
}

// initConfig sets up Viper configuration with the full hierarchy:
// CLI flags > HIVEMIND_* env vars > project hivemind.toml > global XDG config.toml > defaults
func initConfig(root *cobra.Command) error {
	viper.SetConfigType("toml")

	// 1. Set built-in defaults (entities.DefaultConfig mirrored as viper keys).
	viper.SetDefault("vault.watch_for_changes", true)
	viper.SetDefault("vault.debounce_ms", 100)
	viper.SetDefault("template.active_template", "worldbuilding")
	viper.SetDefault("indexing.strategy", "incremental")
	viper.SetDefault("indexing.batch_size", 100)
	viper.SetDefault("indexing.enable_full_text_search", true)
	viper.SetDefault("indexing.enable_vector_search", false)

	// 2. Read global config (lowest priority file).
	if cfgFile != "" {
		path := cfgFile
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			path = filepath.Join(path, "config.toml")
		}
		viper.SetConfigFile(path)
		if err := viper.ReadInConfig(); err != nil {
			return &entities.ConfigError{Path: path, Message: "reading config file", Err: err}
		}
	} else {
		paths := config.NewXDGPathResolver()
		viper.SetConfigFile(paths.ConfigFile())
		// Silent fail if not found.
		if err := viper.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return &entities.ConfigError{Path: paths.ConfigFile(), Message: "reading global config", Err: err}
		}
	}

	// 3. Merge project config (overrides global).
	viper.SetConfigFile("hivemind.toml")
	// Silent fail if not found.
	if err := viper.MergeInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &entities.ConfigError{Path: "hivemind.toml", Message: "reading project config", Err: err}
	}

	// 4. Environment variables override config files.
	viper.SetEnvPrefix("HIVEMIND")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if viper.GetBool("verbose") {
		Verbose = true
	}

	return nil
}
