// Package filesystem provides file system implementations of the core ports.
package filesystem

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/hivemind-vault/hivemind/internal/core/entities"
	"github.com/hivemind-vault/hivemind/internal/core/usecases"
)

var defaultIgnoredDirs = map[string]bool{
	".git":        true,
	".hivemind":   true,
	"node_modules": true,
	".obsidian":   true,
	".trash":      true,
}

// FileWatcher monitors the vault file system for changes to Markdown files,
// debouncing and coalescing rapid events per path.
type FileWatcher struct {
	watcher     *fsnotify.Watcher
	events      chan usecases.FileChangeEvent
	done        chan struct{}
	wg          sync.WaitGroup
	mu          sync.Mutex
	stopped     bool
	debounce    time.Duration
	excludeGlobs []string
}

// NewFileWatcher creates a watcher using the vault's configured debounce
// window and exclude globs. A non-positive debounce falls back to 100ms.
func NewFileWatcher(cfg entities.VaultConfig) (*FileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	debounce := time.Duration(cfg.DebounceMs) * time.Millisecond
	if debounce <= 0 {
		debounce = 100 * time.Millisecond
	}

	return &FileWatcher{
		watcher:      w,
		events:       make(chan usecases.FileChangeEvent, 64),
		done:         make(chan struct{}),
		debounce:     debounce,
		excludeGlobs: cfg.ExcludeGlobs,
	}, nil
}

// Watch starts monitoring rootPath. The returned channel is closed on Stop.
func (fw *FileWatcher) Watch(ctx context.Context, rootPath string) (<-chan usecases.FileChangeEvent, error) {
	fw.mu.Lock()
	if fw.stopped {
		fw.mu.Unlock()
		return nil, fmt.Errorf("watcher already stopped")
	}
	fw.mu.Unlock()

	info, err := os.Stat(rootPath)
	if err != nil {
		return nil, fmt.Errorf("invalid root path: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root path is not a directory")
	}

	if err := fw.addRecursive(rootPath); err != nil {
		return nil, fmt.Errorf("failed to add watch paths: %w", err)
	}

	fw.wg.Add(1)
	go func() {
		defer fw.wg.Done()
		fw.processEvents(ctx, rootPath)
	}()

	return fw.events, nil
}

// Stop halts file watching and closes the event channel.
func (fw *FileWatcher) Stop() error {
	fw.mu.Lock()
	if fw.stopped {
		fw.mu.Unlock()
		return nil
	}
	fw.stopped = true
	fw.mu.Unlock()

	close(fw.done)
	err := fw.watcher.Close()
	fw.wg.Wait()
	close(fw.events)

	if err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}
	return nil
}

func (fw *FileWatcher) addRecursive(rootPath string) error {
	return filepath.Walk(rootPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		if fw.shouldIgnoreDir(path, rootPath) {
			return filepath.SkipDir
		}
		_ = fw.watcher.Add(path)
		return nil
	})
}

func (fw *FileWatcher) shouldIgnoreDir(path, rootPath string) bool {
	rel, err := filepath.Rel(rootPath, path)
	if err != nil {
		return true
	}
	rel = filepath.ToSlash(rel)

	parts := strings.Split(rel, "/")
	for _, part := range parts {
		if defaultIgnoredDirs[part] {
			return true
		}
	}
	return entities.MatchAny(rel, fw.excludeGlobs)
}

// shouldProcessFile returns true for Markdown files only; non-.md changes
// (assets, .hivemind internals) never reach the graph builder.
func (fw *FileWatcher) shouldProcessFile(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".md"
}

func (fw *FileWatcher) processEvents(ctx context.Context, rootPath string) {
	debounceTimer := time.NewTimer(0)
	<-debounceTimer.C

	pending := make(map[string]usecases.FileChangeEvent)
	var mu sync.Mutex

	for {
		select {
		case <-fw.done:
			return
		case <-ctx.Done():
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}

			if event.Op&fsnotify.Create == fsnotify.Create {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if !fw.shouldIgnoreDir(event.Name, rootPath) {
						_ = fw.watcher.Add(event.Name)
					}
				}
			}

			if !fw.shouldProcessFile(event.Name) {
				continue
			}

			op := fw.mapOperation(event.Op)
			if op == "" {
				continue
			}

			mu.Lock()
			// Coalesce: latest op for this path wins, never dropped.
			pending[event.Name] = usecases.FileChangeEvent{Path: event.Name, Op: op}
			mu.Unlock()

			debounceTimer.Reset(fw.debounce)

		case <-debounceTimer.C:
			mu.Lock()
			for _, evt := range pending {
				select {
				case fw.events <- evt:
				case <-fw.done:
					mu.Unlock()
					return
				case <-ctx.Done():
					mu.Unlock()
					return
				}
			}
			pending = make(map[string]usecases.FileChangeEvent)
			mu.Unlock()

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			_ = err
		}
	}
}

// mapOperation maps fsnotify's bitmask op to the three-state change model;
// chmod-only events carry no content change and are suppressed.
func (fw *FileWatcher) mapOperation(op fsnotify.Op) string {
	switch {
	case op&fsnotify.Create == fsnotify.Create:
		return "created"
	case op&fsnotify.Write == fsnotify.Write:
		return "modified"
	case op&fsnotify.Remove == fsnotify.Remove, op&fsnotify.Rename == fsnotify.Rename:
		return "deleted"
	default:
		return ""
	}
}
