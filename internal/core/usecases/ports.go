package usecases

import (
	"context"
	"time"

	"github.com/hivemind-vault/hivemind/internal/core/entities"
)

// TemplateRegistry defines the interface for registering, activating, and
// querying entity-type/relationship-type schemas (the active template's
// meta-schema).
//
// Implementations MUST validate a template's meta-schema on Register and
// reject activation of an unregistered template.
type TemplateRegistry interface {
	// Register validates and adds a template to the registry. Returns a
	// *entities.TemplateError if the meta-schema is invalid.
	Register(ctx context.Context, tmpl *entities.Template) error

	// Activate makes the named, already-registered template the active one.
	Activate(ctx context.Context, templateID string) error

	// ActiveTemplate returns the currently active template, or an error if
	// none has been activated.
	ActiveTemplate() (*entities.Template, error)

	// GetEntityType looks up an entity type by name in the active template.
	GetEntityType(name string) (*entities.EntityType, error)

	// GetEntityTypes returns all entity types of the active template.
	GetEntityTypes() []*entities.EntityType

	// GetRelationshipType looks up a relationship type by id.
	GetRelationshipType(id string) (*entities.RelationshipType, error)

	// GetRelationshipTypes returns all relationship types of the active
	// template.
	GetRelationshipTypes() []*entities.RelationshipType

	// GetFolderMappings returns the active template's raw folder mappings.
	GetFolderMappings() []entities.FolderMapping

	// ValidRelationships returns every relationship type id that may connect
	// sourceType to targetType, ordered by specificity (most specific first).
	ValidRelationships(sourceType, targetType string) []string

	// GetSchema returns the active template verbatim, for schema-introspection
	// tools (e.g. an MCP "get_schema" tool).
	GetSchema() (*entities.Template, error)
}

// FolderMapper resolves a vault-relative file path to its candidate entity
// types, via the active template's folder mappings.
type FolderMapper interface {
	// Resolve tests rules in descending-specificity order and returns the
	// first match's full candidate type list, its pattern, and a confidence
	// marker: "exact" (the matched rule names exactly one type), "ambiguous"
	// (the matched rule names two or more types), "fallback" (no rule
	// matched; the template's fallback type is used, matchedPattern is
	// empty), or "none" (no rule matched and no fallback is configured).
	Resolve(path string) (types []string, matchedPattern string, confidence string)

	// Rules returns the compiled, specificity-scored folder rules currently
	// in effect, highest specificity first.
	Rules() []entities.FolderRule
}

// MarkdownParser parses a Markdown file's YAML frontmatter, body, wikilinks,
// and headings into a Note.
type MarkdownParser interface {
	// Parse reads and parses the file at path.
	Parse(ctx context.Context, path string) (*entities.Note, error)

	// ParseBytes parses already-read file content; path is used only to
	// populate Note.Path/FileName.
	ParseBytes(path string, content []byte) (*entities.Note, error)

	// Serialize round-trips a Note back to Markdown bytes. Frontmatter key
	// order from the source file is not preserved.
	Serialize(note *entities.Note) ([]byte, error)
}

// VaultWatcher monitors a vault directory for Markdown file changes, with
// per-path debounce/coalescing.
//
// Implementations MUST coalesce rapid repeated events for the same path into
// a single latest-wins event. The returned channel is bounded; once full,
// implementations MUST coalesce further rather than block the source watch
// or drop events.
type VaultWatcher interface {
	// Watch starts monitoring rootPath. The debounce window and excluded
	// globs are read from the active configuration.
	Watch(ctx context.Context, rootPath string) (<-chan FileChangeEvent, error)

	// Stop halts watching and closes the event channel.
	Stop() error
}

// FileChangeEvent describes a single coalesced change detected by the vault
// watcher.
type FileChangeEvent struct {
	// Path is absolute.
	Path string
	// Op is one of: created, modified, deleted.
	Op string
}

// GraphBuilder owns the in-memory Graph projection: the initial two-pass
// build from a full note set, and incremental updates as the vault watcher
// reports changes.
type GraphBuilder interface {
	// Build performs the two-pass initial construction: pass 1 indexes every
	// admitted note as a node; pass 2 resolves wikilinks to edges.
	Build(ctx context.Context, notes []*entities.Note) (*entities.Graph, error)

	// OnCreated incorporates a newly created note into the graph, resolving
	// its outgoing links and any dangling inbound links that targeted it.
	OnCreated(ctx context.Context, note *entities.Note) error

	// OnModified re-resolves a note's node fields and outgoing edges.
	OnModified(ctx context.Context, note *entities.Note) error

	// OnDeleted removes a note's node and all edges touching it.
	OnDeleted(ctx context.Context, id string) error

	// InferRelationshipType chooses a relationship type id for an edge
	// between sourceType and targetType when the link carries no explicit
	// type annotation, using the active template's ValidRelationships and
	// falling back to entities.RelatedFallback.
	InferRelationshipType(sourceType, targetType string) string

	// Graph returns the current in-memory projection for read access.
	Graph() *entities.Graph
}

// StorageEngine persists notes, nodes, edges, and the full-text index to the
// vault's on-disk SQLite database.
//
// Implementations MUST serialize writes behind a single writer; concurrent
// reads are permitted.
type StorageEngine interface {
	// Open opens (creating if absent) the database at path and ensures the
	// schema is migrated to the current version.
	Open(ctx context.Context, path string) error

	// Close releases the underlying database handle.
	Close() error

	// UpsertNote persists a note's node projection and frontmatter.
	UpsertNote(ctx context.Context, note *entities.Note, entityType string) error

	// DeleteNote removes a note's node, its edges, and its FTS entry.
	DeleteNote(ctx context.Context, id string) error

	// ReplaceEdges atomically replaces all outgoing edges for a source node.
	ReplaceEdges(ctx context.Context, sourceID string, edges []*entities.Edge) error

	// LoadGraph reconstructs the full in-memory graph projection from
	// storage, used on startup and after a rebuild.
	LoadGraph(ctx context.Context) (*entities.Graph, error)

	// SearchFullText runs a BM25-ranked full-text query over note bodies and
	// titles, returning node ids and keyword scores normalized to (0, 1],
	// with the best hit at 1.0.
	SearchFullText(ctx context.Context, query string, limit int) (map[string]float64, error)

	// Stats returns counts used by a get_vault_stats tool: node count, edge
	// count, per-type counts.
	Stats(ctx context.Context) (VaultStats, error)
}

// VaultStats summarizes the current index for introspection tools.
type VaultStats struct {
	NodeCount    int
	EdgeCount    int
	NodesByType  map[string]int
	LastIndexed  time.Time
}

// SearchEngine executes hybrid keyword/graph/vector search over the current
// graph projection and storage index.
type SearchEngine interface {
	// Search runs the six-step hybrid ranking algorithm and returns the
	// filtered, limited, score-sorted result set.
	Search(ctx context.Context, req *entities.SearchRequest) (*entities.SearchResponse, error)
}

// ToolGenerator derives the set of per-entity-type MCP tools (query_<T>,
// list_<T>) from the active template, regenerating them whenever the
// template changes.
type ToolGenerator interface {
	// GenerateTools returns the full set of generated tool names to
	// descriptions/schemas for the active template's entity types.
	GenerateTools(ctx context.Context) ([]GeneratedTool, error)
}

// GeneratedTool is one query_<T> or list_<T> tool derived from an entity
// type.
type GeneratedTool struct {
	Name        string
	Description string
	EntityType  string
	InputSchema map[string]any
}

// ToolDispatcher routes an incoming MCP tools/call request to either a fixed
// tool handler or a generated per-type handler.
type ToolDispatcher interface {
	// Dispatch executes the named tool with the given arguments.
	Dispatch(ctx context.Context, name string, args map[string]any) (any, error)
}

// Logger defines the interface for structured logging.
//
// Implementations MUST emit JSON logs to stderr (stdout is reserved for the
// MCP JSON-RPC stream).
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, err error, keysAndValues ...any)
	WithContext(ctx context.Context) Logger
	WithFields(keysAndValues ...any) Logger
}

// ProgressReporter defines the interface for communicating progress to the
// user during CLI operations (build, validate --apply, fix).
type ProgressReporter interface {
	ReportProgress(step string, current int, total int, message string)
	ReportError(err error)
	ReportSuccess(message string)
	ReportInfo(message string)
}

// OutputEncoder defines the interface for serializing data to various
// formats for CLI --json output and MCP tool responses.
type OutputEncoder interface {
	EncodeJSON(value any) ([]byte, error)
	EncodeTOON(value any) ([]byte, error)
	DecodeJSON(data []byte, value any) error
}

// ConfigLoader defines the interface for loading layered configuration:
// defaults < global XDG config < project hivemind.toml < env. CLI flags are
// not a layer here.
type ConfigLoader interface {
	// LoadConfig resolves the fully-layered configuration for vaultRoot.
	LoadConfig(ctx context.Context, vaultRoot string) (*entities.Config, error)

	// LoadTemplateFile reads a standalone template file (TOML) from path.
	LoadTemplateFile(ctx context.Context, path string) (*entities.Template, error)
}

// PathResolver resolves XDG-compliant paths for application data.
//
// Implementations MUST support the XDG Base Directory Specification with env
// var overrides (HIVEMIND_CONFIG_HOME, XDG_CONFIG_HOME, XDG_DATA_HOME,
// XDG_CACHE_HOME).
type PathResolver interface {
	ConfigDir() string
	DataDir() string
	CacheDir() string
	ConfigFile() string
}

// ReportFormatter defines the interface for formatting validate/fix reports
// for human display, grouped by issue kind and file.
//
// Implementations MAY use terminal formatting (via lipgloss) for CLI output
// and plain text for non-TTY environments.
type ReportFormatter interface {
	// PrintIssues formats and displays validation issues grouped by kind.
	PrintIssues(issues []entities.Issue)

	// PrintBuildReport formats and displays index build statistics.
	PrintBuildReport(stats BuildStats)
}

// BuildStats holds statistics from an index build for CLI reporting.
type BuildStats struct {
	NotesScanned int
	NotesAdmitted int
	EdgesResolved int
	Duration     time.Duration
}

// MCPServer defines the interface for the Model Context Protocol stdio tool
// server.
type MCPServer interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}
