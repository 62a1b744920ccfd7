package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/hivemind-vault/hivemind/internal/adapters/filesystem"
	"github.com/hivemind-vault/hivemind/internal/adapters/logging"
	"github.com/hivemind-vault/hivemind/internal/core/entities"
	"github.com/hivemind-vault/hivemind/internal/core/usecases"
	"github.com/hivemind-vault/hivemind/internal/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:     "mcp",
	Short:   "Start the MCP server",
	Long:    "Start the Model Context Protocol server, serving hybrid search and per-entity-type tools over stdio.",
	GroupID: "serving",
	RunE:    runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	log := logging.GetLogger()
	if Verbose {
		logging.SetLevel(logging.LevelDebug)
	}

	rt, err := newRuntime(ctx, VaultRoot)
	if err != nil {
		return fmt.Errorf("starting mcp server: %w", err)
	}
	defer rt.close()

	buildIndex := rt.buildIndex()
	stats, err := buildIndex.Run(ctx, VaultRoot)
	if err != nil {
		return fmt.Errorf("initial index build: %w", err)
	}
	log.Info("initial index build complete",
		"notesScanned", stats.NotesScanned,
		"notesAdmitted", stats.NotesAdmitted,
		"edgesResolved", stats.EdgesResolved,
	)

	generator := mcp.NewToolGenerator(rt.registry)
	rebuild := func(ctx context.Context) (usecases.BuildStats, error) {
		return buildIndex.Run(ctx, VaultRoot)
	}
	registry, err := mcp.BuildToolRegistry(ctx, generator, rt.search, rt.storage, rt.builder, rebuild)
	if err != nil {
		return fmt.Errorf("building tool registry: %w", err)
	}

	server := mcp.NewServer(VaultRoot, os.Stdin, os.Stdout)
	for _, tool := range registry.List() {
		if err := server.RegisterTool(tool); err != nil {
			return fmt.Errorf("registering tool %q: %w", tool.Name(), err)
		}
	}
	server.GetGraphCache().Set(VaultRoot, rt.builder.Graph())

	stopWatcher := func() {}
	if rt.cfg.Vault.WatchForChanges {
		stop, err := startWatcher(ctx, rt, server, log)
		if err != nil {
			return fmt.Errorf("starting vault watcher: %w", err)
		}
		stopWatcher = stop
	}
	defer stopWatcher()

	fmt.Fprintln(os.Stderr)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Run(ctx)
	}()

	select {
	case <-sigChan:
		return nil
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// startWatcher wires the filesystem watcher to the graph builder and
// storage engine, keeping both current as notes are created, edited, and
// removed, and refreshing the server's graph cache after each change so MCP
// handlers never observe a half-updated projection. Returns a function that
// stops the watcher.
func startWatcher(ctx context.Context, rt *runtime, server *mcp.Server, log usecases.Logger) (func(), error) {
	watcher, err := filesystem.NewFileWatcher(rt.cfg.Vault)
	if err != nil {
		return nil, err
	}

	events, err := watcher.Watch(ctx, VaultRoot)
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	pathToID := make(map[string]string)
	for id, node := range rt.builder.Graph().Nodes {
		pathToID[node.Path] = id
	}

	go func() {
		for evt := range events {
			switch evt.Op {
			case "created", "modified":
				note, err := rt.parser.Parse(ctx, evt.Path)
				if err != nil {
					log.Warn("failed to parse changed note", "path", evt.Path, "error", err.Error())
					continue
				}
				if !note.Admitted() {
					continue
				}

				mu.Lock()
				pathToID[evt.Path] = note.ID
				mu.Unlock()

				if err := applyNoteChange(ctx, rt, note, evt.Op); err != nil {
					log.Error("failed to apply note change", err, "path", evt.Path)
					continue
				}
				server.GetGraphCache().Set(VaultRoot, rt.builder.Graph())

			case "deleted":
				mu.Lock()
				id, ok := pathToID[evt.Path]
				delete(pathToID, evt.Path)
				mu.Unlock()
				if !ok {
					continue
				}
				if err := rt.builder.OnDeleted(ctx, id); err != nil {
					log.Error("failed to remove deleted note from graph", err, "path", evt.Path)
				}
				if err := rt.storage.DeleteNote(ctx, id); err != nil {
					log.Error("failed to remove deleted note from storage", err, "path", evt.Path)
				}
				server.GetGraphCache().Set(VaultRoot, rt.builder.Graph())
			}
		}
	}()

	return func() { _ = watcher.Stop() }, nil
}

// applyNoteChange routes a created/modified note through the graph builder
// and persists the resulting node and outgoing edges.
func applyNoteChange(ctx context.Context, rt *runtime, note *entities.Note, op string) error {
	var err error
	if op == "created" {
		err = rt.builder.OnCreated(ctx, note)
	} else {
		err = rt.builder.OnModified(ctx, note)
	}
	if err != nil {
		return err
	}

	node, ok := rt.builder.Graph().Nodes[note.ID]
	if !ok {
		return nil
	}
	if err := rt.storage.UpsertNote(ctx, note, node.Type); err != nil {
		return err
	}
	return rt.storage.ReplaceEdges(ctx, note.ID, rt.builder.Graph().OutgoingEdges(note.ID))
}
