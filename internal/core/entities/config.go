package entities

// VaultConfig describes the vault.* configuration section.
type VaultConfig struct {
	Path             string
	WatchForChanges  bool
	DebounceMs       int
	ExcludeGlobs     []string
}

// TemplateConfig describes the template.* configuration section.
type TemplateConfig struct {
	ActiveTemplate string
	Templates      []Template // inline user template definitions
}

// IndexingStrategy selects how the initial build populates storage.
type IndexingStrategy string

const (
	IndexingStrategyFull        IndexingStrategy = "full"
	IndexingStrategyIncremental IndexingStrategy = "incremental"
)

// IndexingConfig describes the indexing.* configuration section.
type IndexingConfig struct {
	Strategy              IndexingStrategy
	BatchSize             int
	EnableFullTextSearch  bool
	EnableVectorSearch    bool
}

// Config is the fully-resolved Hivemind configuration (defaults < global XDG
// config < project hivemind.toml < HIVEMIND_* env < CLI flags).
type Config struct {
	Vault     VaultConfig
	Template  TemplateConfig
	Indexing  IndexingConfig
}

// DefaultConfig returns the built-in configuration defaults from the
// configuration contract.
func DefaultConfig() *Config {
	return &Config{
		Vault: VaultConfig{
			WatchForChanges: true,
			DebounceMs:      100,
		},
		Template: TemplateConfig{
			ActiveTemplate: "worldbuilding",
		},
		Indexing: IndexingConfig{
			Strategy:             IndexingStrategyIncremental,
			BatchSize:            100,
			EnableFullTextSearch: true,
			EnableVectorSearch:   false,
		},
	}
}
