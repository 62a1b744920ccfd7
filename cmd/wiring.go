package cmd

import (
	"context"
	"os"
	"path/filepath"

	"github.com/hivemind-vault/hivemind/internal/adapters/config"
	"github.com/hivemind-vault/hivemind/internal/adapters/foldermap"
	"github.com/hivemind-vault/hivemind/internal/adapters/markdown"
	"github.com/hivemind-vault/hivemind/internal/adapters/storage"
	"github.com/hivemind-vault/hivemind/internal/adapters/template"
	"github.com/hivemind-vault/hivemind/internal/core/entities"
	graphcore "github.com/hivemind-vault/hivemind/internal/core/graph"
	"github.com/hivemind-vault/hivemind/internal/core/search"
	"github.com/hivemind-vault/hivemind/internal/core/usecases"
)

// standaloneTemplateFileName is the optional single-template file merged
// into the registry next to a vault's project config (spec §6: "standalone
// template file, next to config").
const standaloneTemplateFileName = "template.toml"

// runtime bundles the adapters and core usecases every indexing/serving
// command needs, wired once per invocation from the resolved vault config.
type runtime struct {
	cfg      *entities.Config
	registry *template.Registry
	mapper   *foldermap.Mapper
	parser   *markdown.Parser
	builder  *graphcore.Builder
	storage  *storage.Engine
	search   *search.Engine
}

func (r *runtime) close() {
	if r.storage != nil {
		_ = r.storage.Close()
	}
}

// newRuntime wires a full runtime for vaultRoot: loads layered config,
// registers the builtin, inline, and standalone-file templates and activates
// the resolved active template, opens the SQLite-backed storage engine at
// <vaultRoot>/.hivemind/vault.db, and constructs the graph builder and
// search engine over it.
func newRuntime(ctx context.Context, vaultRoot string) (*runtime, error) {
	paths := config.NewXDGPathResolver()
	loader := config.NewLoader(paths)
	cfg, err := loader.LoadConfig(ctx, vaultRoot)
	if err != nil {
		return nil, err
	}

	reg := template.NewRegistry()
	builtin := template.BuiltinWorldbuilding()
	if err := reg.Register(ctx, builtin); err != nil {
		return nil, err
	}

	// Inline templates declared under template.templates in config register
	// alongside the builtin, by id.
	for i := range cfg.Template.Templates {
		if err := reg.Register(ctx, &cfg.Template.Templates[i]); err != nil {
			return nil, err
		}
	}

	// The standalone template file, when present, overrides any inline
	// definition with the same id and becomes active if the configured
	// active template is still the default.
	activeID := cfg.Template.ActiveTemplate
	templateFilePath := filepath.Join(vaultRoot, standaloneTemplateFileName)
	if _, err := os.Stat(templateFilePath); err == nil {
		fileTmpl, err := loader.LoadTemplateFile(ctx, templateFilePath)
		if err != nil {
			return nil, err
		}
		if err := reg.Register(ctx, fileTmpl); err != nil {
			return nil, err
		}
		if activeID == entities.DefaultConfig().Template.ActiveTemplate {
			activeID = fileTmpl.ID
		}
	}

	if err := reg.Activate(ctx, activeID); err != nil {
		return nil, err
	}

	mapper := foldermap.New(reg)
	builder := graphcore.New(reg, mapper)
	parser := markdown.New()

	st := storage.New()
	dbPath := filepath.Join(vaultRoot, ".hivemind", "vault.db")
	if err := st.Open(ctx, dbPath); err != nil {
		return nil, err
	}

	engine := search.New(st, builder)

	return &runtime{
		cfg:      cfg,
		registry: reg,
		mapper:   mapper,
		parser:   parser,
		builder:  builder,
		storage:  st,
		search:   engine,
	}, nil
}

// buildIndex constructs the build-index usecase over this runtime.
func (r *runtime) buildIndex() *usecases.BuildIndex {
	return usecases.NewBuildIndex(r.parser, r.storage, r.builder)
}

// validateVault constructs the validate-vault usecase over this runtime.
func (r *runtime) validateVault() *usecases.ValidateVault {
	return usecases.NewValidateVault(r.parser, r.mapper, r.registry)
}

// fixVault constructs the fix-vault usecase over this runtime.
func (r *runtime) fixVault() *usecases.FixVault {
	return usecases.NewFixVault(r.parser, r.mapper, r.registry)
}
