package mcp

import (
	"context"

	"github.com/hivemind-vault/hivemind/internal/core/entities"
	"github.com/hivemind-vault/hivemind/internal/core/usecases"
	"github.com/hivemind-vault/hivemind/internal/mcp/tools"
)

// Dispatcher routes tools/call requests to either a fixed tool or a
// generated per-entity-type tool, both held in a shared tools.Registry.
type Dispatcher struct {
	registry *tools.Registry
}

var _ usecases.ToolDispatcher = (*Dispatcher)(nil)

// NewDispatcher wraps an already-populated tool registry.
func NewDispatcher(registry *tools.Registry) *Dispatcher {
	return &Dispatcher{registry: registry}
}

// Dispatch executes the named tool with the given arguments.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, args map[string]any) (any, error) {
	tool, ok := d.registry.Get(name)
	if !ok {
		return nil, &entities.UnknownToolError{Name: name}
	}
	return tool.Call(ctx, args)
}

// BuildToolRegistry assembles the fixed tools plus every generated
// query_<T>/list_<T> tool for the active template into a single registry,
// suitable for both tools/list and tools/call.
func BuildToolRegistry(
	ctx context.Context,
	generator usecases.ToolGenerator,
	search usecases.SearchEngine,
	storage usecases.StorageEngine,
	builder usecases.GraphBuilder,
	rebuild func(context.Context) (usecases.BuildStats, error),
) (*tools.Registry, error) {
	registry := tools.NewRegistry()

	if err := registry.Register(tools.NewSearchVaultTool(search)); err != nil {
		return nil, err
	}
	if err := registry.Register(tools.NewGetVaultStatsTool(storage)); err != nil {
		return nil, err
	}
	if err := registry.Register(tools.NewRebuildIndexTool(rebuild)); err != nil {
		return nil, err
	}

	generated, err := generator.GenerateTools(ctx)
	if err != nil {
		return nil, err
	}
	for _, desc := range generated {
		switch {
		case len(desc.Name) >= 6 && desc.Name[:6] == "query_":
			if err := registry.Register(tools.NewQueryTool(desc, builder)); err != nil {
				return nil, err
			}
		case len(desc.Name) >= 5 && desc.Name[:5] == "list_":
			if err := registry.Register(tools.NewListTool(desc, builder)); err != nil {
				return nil, err
			}
		}
	}

	return registry, nil
}
