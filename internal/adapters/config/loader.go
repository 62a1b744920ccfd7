package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/hivemind-vault/hivemind/internal/core/entities"
	"github.com/hivemind-vault/hivemind/internal/core/usecases"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

// Loader implements usecases.ConfigLoader with the layered precedence
// defaults < global XDG config < project hivemind.toml < HIVEMIND_* env.
// CLI flags are not read here; the only flag-derived input is the vaultRoot
// argument the caller passes to LoadConfig.
type Loader struct {
	paths usecases.PathResolver
}

var _ usecases.ConfigLoader = (*Loader)(nil)

// NewLoader creates a config loader that looks for a global config under
// the given path resolver's config directory.
func NewLoader(paths usecases.PathResolver) *Loader {
	return &Loader{paths: paths}
}

// LoadConfig resolves the fully-layered configuration for vaultRoot.
func (l *Loader) LoadConfig(_ context.Context, vaultRoot string) (*entities.Config, error) {
	v := viper.New()
	v.SetConfigType("toml")
	v.SetEnvPrefix("HIVEMIND")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("vault.watch_for_changes", true)
	v.SetDefault("vault.debounce_ms", 100)
	v.SetDefault("vault.exclude_globs", []string{})
	v.SetDefault("template.active_template", "worldbuilding")
	v.SetDefault("indexing.strategy", string(entities.IndexingStrategyIncremental))
	v.SetDefault("indexing.batch_size", 100)
	v.SetDefault("indexing.enable_full_text_search", true)
	v.SetDefault("indexing.enable_vector_search", false)

	if globalPath := filepath.Join(l.paths.ConfigDir(), "config.toml"); fileExists(globalPath) {
		v.SetConfigFile(globalPath)
		if err := v.MergeInConfig(); err != nil {
			return nil, &entities.ConfigError{Path: globalPath, Message: "parsing global config", Err: err}
		}
	}

	if projectPath := filepath.Join(vaultRoot, "hivemind.toml"); fileExists(projectPath) {
		v.SetConfigFile(projectPath)
		if err := v.MergeInConfig(); err != nil {
			return nil, &entities.ConfigError{Path: projectPath, Message: "parsing project config", Err: err}
		}
	}

	cfg := entities.DefaultConfig()
	cfg.Vault.Path = vaultRoot
	cfg.Vault.WatchForChanges = v.GetBool("vault.watch_for_changes")
	cfg.Vault.DebounceMs = v.GetInt("vault.debounce_ms")
	cfg.Vault.ExcludeGlobs = v.GetStringSlice("vault.exclude_globs")
	cfg.Template.ActiveTemplate = v.GetString("template.active_template")
	cfg.Indexing.Strategy = entities.IndexingStrategy(v.GetString("indexing.strategy"))
	cfg.Indexing.BatchSize = v.GetInt("indexing.batch_size")
	cfg.Indexing.EnableFullTextSearch = v.GetBool("indexing.enable_full_text_search")
	cfg.Indexing.EnableVectorSearch = v.GetBool("indexing.enable_vector_search")

	// template.templates is an array of full template definitions: viper's
	// generic Unmarshal matches struct field names, not the `toml` tags
	// entities.Template relies on, so inline templates are parsed directly
	// with the same TOML codec LoadTemplateFile uses, and merged by id with
	// later files (project over global) taking precedence.
	if globalPath := filepath.Join(l.paths.ConfigDir(), "config.toml"); fileExists(globalPath) {
		templates, err := parseInlineTemplates(globalPath)
		if err != nil {
			return nil, err
		}
		cfg.Template.Templates = mergeTemplatesByID(cfg.Template.Templates, templates)
	}
	if projectPath := filepath.Join(vaultRoot, "hivemind.toml"); fileExists(projectPath) {
		templates, err := parseInlineTemplates(projectPath)
		if err != nil {
			return nil, err
		}
		cfg.Template.Templates = mergeTemplatesByID(cfg.Template.Templates, templates)
	}

	return cfg, nil
}

// parseInlineTemplates extracts the template.templates array of a config
// file, validating each definition against the meta-schema.
func parseInlineTemplates(path string) ([]entities.Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &entities.ConfigError{Path: path, Message: "reading config file", Err: err}
	}
	var wrapper struct {
		Template struct {
			Templates []entities.Template `toml:"templates"`
		} `toml:"template"`
	}
	if err := toml.Unmarshal(data, &wrapper); err != nil {
		return nil, &entities.ConfigError{Path: path, Message: "parsing inline templates", Err: err}
	}
	for i := range wrapper.Template.Templates {
		if err := wrapper.Template.Templates[i].Validate(); err != nil {
			return nil, err
		}
	}
	return wrapper.Template.Templates, nil
}

// mergeTemplatesByID merges overrides into base, keyed by template id, with
// overrides replacing a base entry of the same id in place and otherwise
// appending in encounter order.
func mergeTemplatesByID(base, overrides []entities.Template) []entities.Template {
	byID := make(map[string]entities.Template, len(base)+len(overrides))
	order := make([]string, 0, len(base)+len(overrides))
	for _, t := range base {
		if _, exists := byID[t.ID]; !exists {
			order = append(order, t.ID)
		}
		byID[t.ID] = t
	}
	for _, t := range overrides {
		if _, exists := byID[t.ID]; !exists {
			order = append(order, t.ID)
		}
		byID[t.ID] = t
	}
	merged := make([]entities.Template, 0, len(order))
	for _, id := range order {
		merged = append(merged, byID[id])
	}
	return merged
}

// LoadTemplateFile reads a standalone template file (TOML) from path.
func (l *Loader) LoadTemplateFile(_ context.Context, path string) (*entities.Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &entities.ConfigError{Path: path, Message: "reading template file", Err: err}
	}
	var tmpl entities.Template
	if err := toml.Unmarshal(data, &tmpl); err != nil {
		return nil, &entities.TemplateError{Message: "parsing template TOML: " + err.Error()}
	}
	if err := tmpl.Validate(); err != nil {
		return nil, err
	}
	return &tmpl, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
