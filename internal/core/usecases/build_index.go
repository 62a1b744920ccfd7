package usecases

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hivemind-vault/hivemind/internal/core/entities"
)

// ignoredDirs mirrors the vault watcher's default exclusions: these
// directories are never walked during a build.
var ignoredDirs = map[string]bool{
	".git":        true,
	".hivemind":   true,
	"node_modules": true,
	".obsidian":   true,
	".trash":      true,
}

// BuildIndex performs a full scan-parse-build-persist pass over a vault:
// the CLI's `build` command and the MCP rebuild_index tool both drive it.
type BuildIndex struct {
	Parser  MarkdownParser
	Storage StorageEngine
	Builder GraphBuilder
}

// NewBuildIndex wires a BuildIndex usecase from its ports.
func NewBuildIndex(parser MarkdownParser, storage StorageEngine, builder GraphBuilder) *BuildIndex {
	return &BuildIndex{Parser: parser, Storage: storage, Builder: builder}
}

// Run scans vaultRoot for Markdown files, parses and admits them, rebuilds
// the graph projection, and persists nodes and edges to storage.
func (b *BuildIndex) Run(ctx context.Context, vaultRoot string) (BuildStats, error) {
	start := time.Now()

	paths, err := discoverMarkdownFiles(vaultRoot)
	if err != nil {
		return BuildStats{}, err
	}

	notes := make([]*entities.Note, 0, len(paths))
	for _, path := range paths {
		note, err := b.Parser.Parse(ctx, path)
		if err != nil {
			// Unparsable files are a validate-time concern, not a fatal
			// build error; skip and keep going.
			continue
		}
		notes = append(notes, note)
	}

	admitted := make([]*entities.Note, 0, len(notes))
	for _, n := range notes {
		if n.Admitted() {
			admitted = append(admitted, n)
		}
	}

	g, err := b.Builder.Build(ctx, admitted)
	if err != nil {
		return BuildStats{}, err
	}

	for _, n := range admitted {
		node, ok := g.Nodes[n.ID]
		if !ok {
			continue
		}
		if err := b.Storage.UpsertNote(ctx, n, node.Type); err != nil {
			return BuildStats{}, err
		}
		if err := b.Storage.ReplaceEdges(ctx, n.ID, g.OutgoingEdges(n.ID)); err != nil {
			return BuildStats{}, err
		}
	}

	return BuildStats{
		NotesScanned:  len(paths),
		NotesAdmitted: len(admitted),
		EdgesResolved: g.EdgeCount(),
		Duration:      time.Since(start),
	}, nil
}

// discoverMarkdownFiles walks vaultRoot for .md files, skipping ignored
// directories.
func discoverMarkdownFiles(vaultRoot string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(vaultRoot, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != vaultRoot && ignoredDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".md") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discovering markdown files under %s: %w", vaultRoot, err)
	}
	return paths, nil
}
