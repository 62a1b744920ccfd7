// Package storage provides the SQLite-backed Storage Engine: the durable
// source of truth for nodes, edges, and the full-text index. The in-memory
// entities.Graph projection is rebuilt from this store on startup and after
// a rebuild; the store itself is the thing that survives a restart.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/hivemind-vault/hivemind/internal/core/entities"
	"github.com/hivemind-vault/hivemind/internal/core/usecases"

	_ "modernc.org/sqlite"
)

// Engine is the SQLite Storage Engine. Writes are serialized behind mu and
// readers take its read lock, but the pool holds a single connection (see
// Open), so reads and writes still reach the database one at a time.
type Engine struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ usecases.StorageEngine = (*Engine)(nil)

// New constructs an unopened Engine. Call Open before use.
func New() *Engine {
	return &Engine{}
}

// Open opens (creating if absent) the database at path and migrates the
// schema. The conventional path is <vault>/.hivemind/vault.db.
func (e *Engine) Open(ctx context.Context, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &entities.StorageError{Op: "open", Transient: false, Err: fmt.Errorf("create db directory: %w", err)}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return &entities.StorageError{Op: "open", Transient: false, Err: err}
	}
	// A single pooled connection avoids SQLITE_BUSY storms and keeps the
	// per-connection PRAGMAs below in effect; readers and the writer share it.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return &entities.StorageError{Op: "open", Transient: false, Err: err}
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return &entities.StorageError{Op: "open", Transient: false, Err: err}
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return &entities.StorageError{Op: "open", Transient: false, Err: err}
	}

	e.db = db
	return e.migrate(ctx)
}

// Close releases the underlying database handle.
func (e *Engine) Close() error {
	if e.db == nil {
		return nil
	}
	return e.db.Close()
}

func (e *Engine) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS nodes (
			id TEXT PRIMARY KEY,
			type TEXT NOT NULL,
			title TEXT NOT NULL,
			status TEXT,
			path TEXT NOT NULL,
			frontmatter TEXT NOT NULL,
			body TEXT NOT NULL,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_nodes_type ON nodes(type)`,
		`CREATE INDEX IF NOT EXISTS idx_nodes_status ON nodes(status)`,
		`CREATE TABLE IF NOT EXISTS relationships (
			source TEXT NOT NULL,
			target TEXT NOT NULL,
			type TEXT NOT NULL,
			properties TEXT NOT NULL DEFAULT '{}',
			PRIMARY KEY (source, target, type)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_relationships_source ON relationships(source)`,
		`CREATE INDEX IF NOT EXISTS idx_relationships_target ON relationships(target)`,
		`CREATE INDEX IF NOT EXISTS idx_relationships_type ON relationships(type)`,
		`CREATE VIRTUAL TABLE IF NOT EXISTS node_fts USING fts5(
			id UNINDEXED,
			title,
			body,
			tokenize = 'porter unicode61'
		)`,
	}
	for _, stmt := range stmts {
		if _, err := e.db.ExecContext(ctx, stmt); err != nil {
			return &entities.StorageError{Op: "migrate", Transient: false, Err: fmt.Errorf("%s: %w", stmt, err)}
		}
	}
	return nil
}

// UpsertNote persists a note's node projection, replacing its frontmatter,
// body, and full-text entry.
func (e *Engine) UpsertNote(ctx context.Context, note *entities.Note, entityType string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	fm, err := json.Marshal(note.Frontmatter)
	if err != nil {
		return &entities.StorageError{Op: "upsert_note", Transient: false, Err: err}
	}

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return &entities.StorageError{Op: "upsert_note", Transient: true, Err: err}
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO nodes (id, type, title, status, path, frontmatter, body, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			type=excluded.type, title=excluded.title, status=excluded.status,
			path=excluded.path, frontmatter=excluded.frontmatter, body=excluded.body,
			updated_at=excluded.updated_at`,
		note.ID, entityType, note.Title(), note.Status(), note.Path, string(fm), note.Body, time.Now().UTC())
	if err != nil {
		return &entities.StorageError{Op: "upsert_note", Transient: false, Err: err}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM node_fts WHERE id = ?`, note.ID); err != nil {
		return &entities.StorageError{Op: "upsert_note", Transient: false, Err: err}
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO node_fts (id, title, body) VALUES (?, ?, ?)`,
		note.ID, note.Title(), note.Body); err != nil {
		return &entities.StorageError{Op: "upsert_note", Transient: false, Err: err}
	}

	if err := tx.Commit(); err != nil {
		return &entities.StorageError{Op: "upsert_note", Transient: true, Err: err}
	}
	return nil
}

// DeleteNote removes a note's node, its edges in either direction, and its
// full-text entry.
func (e *Engine) DeleteNote(ctx context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return &entities.StorageError{Op: "delete_note", Transient: true, Err: err}
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		`DELETE FROM nodes WHERE id = ?`,
		`DELETE FROM node_fts WHERE id = ?`,
		`DELETE FROM relationships WHERE source = ? OR target = ?`,
	} {
		args := []any{id}
		if stmt == `DELETE FROM relationships WHERE source = ? OR target = ?` {
			args = append(args, id)
		}
		if _, err := tx.ExecContext(ctx, stmt, args...); err != nil {
			return &entities.StorageError{Op: "delete_note", Transient: false, Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return &entities.StorageError{Op: "delete_note", Transient: true, Err: err}
	}
	return nil
}

// ReplaceEdges atomically replaces all outgoing edges for sourceID.
func (e *Engine) ReplaceEdges(ctx context.Context, sourceID string, edges []*entities.Edge) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return &entities.StorageError{Op: "replace_edges", Transient: true, Err: err}
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM relationships WHERE source = ?`, sourceID); err != nil {
		return &entities.StorageError{Op: "replace_edges", Transient: false, Err: err}
	}

	for _, edge := range edges {
		props, err := json.Marshal(edge.Properties)
		if err != nil {
			return &entities.StorageError{Op: "replace_edges", Transient: false, Err: err}
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO relationships (source, target, type, properties) VALUES (?, ?, ?, ?)
			ON CONFLICT(source, target, type) DO UPDATE SET properties=excluded.properties`,
			edge.Source, edge.Target, edge.Type, string(props))
		if err != nil {
			return &entities.StorageError{Op: "replace_edges", Transient: false, Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return &entities.StorageError{Op: "replace_edges", Transient: true, Err: err}
	}
	return nil
}

// LoadGraph reconstructs the full in-memory graph projection from storage.
func (e *Engine) LoadGraph(ctx context.Context) (*entities.Graph, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	g := entities.NewGraph()

	rows, err := e.db.QueryContext(ctx, `SELECT id, type, title, status, path, frontmatter, body FROM nodes`)
	if err != nil {
		return nil, &entities.StorageError{Op: "load_graph", Transient: true, Err: err}
	}
	for rows.Next() {
		var n entities.Node
		var fm string
		var status sql.NullString
		if err := rows.Scan(&n.ID, &n.Type, &n.Title, &status, &n.Path, &fm, &n.Body); err != nil {
			rows.Close()
			return nil, &entities.StorageError{Op: "load_graph", Transient: false, Err: err}
		}
		n.Status = status.String
		_ = json.Unmarshal([]byte(fm), &n.Frontmatter)
		node := n
		g.UpsertNode(&node)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, &entities.StorageError{Op: "load_graph", Transient: true, Err: err}
	}
	rows.Close()

	edgeRows, err := e.db.QueryContext(ctx, `SELECT source, target, type, properties FROM relationships`)
	if err != nil {
		return nil, &entities.StorageError{Op: "load_graph", Transient: true, Err: err}
	}
	defer edgeRows.Close()
	for edgeRows.Next() {
		var edge entities.Edge
		var props string
		if err := edgeRows.Scan(&edge.Source, &edge.Target, &edge.Type, &props); err != nil {
			return nil, &entities.StorageError{Op: "load_graph", Transient: false, Err: err}
		}
		_ = json.Unmarshal([]byte(props), &edge.Properties)
		e := edge
		g.AddEdge(&e)
	}
	if err := edgeRows.Err(); err != nil {
		return nil, &entities.StorageError{Op: "load_graph", Transient: true, Err: err}
	}

	return g, nil
}

// SearchFullText runs a BM25-ranked full-text query, returning node ids
// mapped to a score normalized so the top hit is 1.0.
func (e *Engine) SearchFullText(ctx context.Context, query string, limit int) (map[string]float64, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	rows, err := e.db.QueryContext(ctx, `
		SELECT id, bm25(node_fts) AS rank
		FROM node_fts
		WHERE node_fts MATCH ?
		ORDER BY rank
		LIMIT ?`, query, limit)
	if err != nil {
		return nil, &entities.StorageError{Op: "search_fulltext", Transient: false, Err: err}
	}
	defer rows.Close()

	type hit struct {
		id   string
		rank float64
	}
	var hits []hit
	for rows.Next() {
		var h hit
		if err := rows.Scan(&h.id, &h.rank); err != nil {
			return nil, &entities.StorageError{Op: "search_fulltext", Transient: false, Err: err}
		}
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, &entities.StorageError{Op: "search_fulltext", Transient: true, Err: err}
	}

	// bm25() returns lower-is-better (negative) scores with no fixed range;
	// normalize by dividing by the best (lowest) rank in this result set so
	// the best match scores 1.0 and weaker matches fall toward 0.
	scores := make(map[string]float64, len(hits))
	if len(hits) == 0 {
		return scores, nil
	}
	best := hits[0].rank
	for _, h := range hits {
		if h.rank < best {
			best = h.rank
		}
	}
	for _, h := range hits {
		if best == 0 {
			scores[h.id] = 1
			continue
		}
		scores[h.id] = h.rank / best
	}
	return scores, nil
}

// Stats returns current index counts for introspection tools.
func (e *Engine) Stats(ctx context.Context) (usecases.VaultStats, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var stats usecases.VaultStats
	stats.NodesByType = make(map[string]int)

	if err := e.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM nodes`).Scan(&stats.NodeCount); err != nil {
		return stats, &entities.StorageError{Op: "stats", Transient: true, Err: err}
	}
	if err := e.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM relationships`).Scan(&stats.EdgeCount); err != nil {
		return stats, &entities.StorageError{Op: "stats", Transient: true, Err: err}
	}

	rows, err := e.db.QueryContext(ctx, `SELECT type, COUNT(*) FROM nodes GROUP BY type`)
	if err != nil {
		return stats, &entities.StorageError{Op: "stats", Transient: true, Err: err}
	}
	defer rows.Close()
	for rows.Next() {
		var t string
		var c int
		if err := rows.Scan(&t, &c); err != nil {
			return stats, &entities.StorageError{Op: "stats", Transient: false, Err: err}
		}
		stats.NodesByType[t] = c
	}

	stats.LastIndexed = time.Now().UTC()
	return stats, nil
}
