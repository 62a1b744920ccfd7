package entities

import "time"

// Heading is a single ATX-style Markdown heading extracted from a note body.
type Heading struct {
	Level  int
	Text   string
	Offset int // byte offset into the body where the heading starts
}

// FileStats captures the filesystem metadata of a parsed note.
type FileStats struct {
	Size     int64
	Created  time.Time
	Modified time.Time
}

// Note is a parsed Markdown document. A Note becomes a graph node once
// admitted, i.e. once it carries a non-empty frontmatter id.
type Note struct {
	ID           string // from frontmatter.id; empty means not admitted
	Path         string // absolute path
	FileName     string
	Frontmatter  map[string]any
	Body         string
	Links        []string // raw wikilink targets, as written
	Headings     []Heading
	Stats        FileStats

	MissingFrontmatter bool
}

// Admitted reports whether the note has a valid id and belongs in the graph.
func (n *Note) Admitted() bool {
	return n.ID != ""
}

// EntityType returns the note's declared type (frontmatter "type"), or "" if
// absent or not a string.
func (n *Note) EntityType() string {
	v, ok := n.Frontmatter["type"]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return NormalizeEntityTypeName(s)
}

// Title returns the note's display title: frontmatter "title" if present,
// otherwise the first heading, otherwise the file name.
func (n *Note) Title() string {
	if v, ok := n.Frontmatter["title"]; ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if len(n.Headings) > 0 {
		return n.Headings[0].Text
	}
	return n.FileName
}

// Status returns the note's canon status workflow marker, opaque to the core
// except as a filter (draft | pending | canon | non-canon | archived).
func (n *Note) Status() string {
	if v, ok := n.Frontmatter["status"]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
