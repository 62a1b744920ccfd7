// Package markdown implements the Markdown Parser: extracting YAML
// frontmatter, body, wikilinks, and headings from a note file, and
// serializing a Note back to bytes.
package markdown

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/hivemind-vault/hivemind/internal/core/entities"
	"github.com/hivemind-vault/hivemind/internal/core/usecases"
	"gopkg.in/yaml.v3"
)

const frontmatterDelim = "---"

var (
	wikilinkPattern = regexp.MustCompile(`\[\[([^\]|#]+)(?:#[^\]|]*)?(?:\|[^\]]*)?\]\]`)
	headingPattern  = regexp.MustCompile(`(?m)^(#{1,6})[ \t]+(.+?)[ \t]*$`)
)

// Parser implements usecases.MarkdownParser.
type Parser struct{}

var _ usecases.MarkdownParser = (*Parser)(nil)

// New creates a Markdown Parser.
func New() *Parser {
	return &Parser{}
}

// Parse reads and parses the file at path.
func (p *Parser) Parse(_ context.Context, path string) (*entities.Note, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, &entities.ParseError{Path: path, Message: "reading file", Err: err}
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, &entities.ParseError{Path: path, Message: "statting file", Err: err}
	}
	note, err := p.ParseBytes(path, content)
	if err != nil {
		return nil, err
	}
	note.Stats = entities.FileStats{
		Size:     info.Size(),
		Modified: info.ModTime(),
	}
	return note, nil
}

// ParseBytes parses already-read file content; path is used only to
// populate Note.Path/FileName.
func (p *Parser) ParseBytes(path string, content []byte) (*entities.Note, error) {
	frontmatter, body, missing, err := splitFrontmatter(content)
	if err != nil {
		return nil, &entities.ParseError{Path: path, Message: "parsing frontmatter", Err: err}
	}

	note := &entities.Note{
		Path:               path,
		FileName:           filepath.Base(path),
		Frontmatter:        frontmatter,
		Body:               body,
		Links:              extractWikilinks(body),
		Headings:           extractHeadings(body),
		MissingFrontmatter: missing,
	}
	if id, ok := frontmatter["id"]; ok {
		if s, ok := id.(string); ok {
			note.ID = s
		}
	}
	return note, nil
}

// Serialize round-trips a Note back to Markdown bytes. Frontmatter keys are
// emitted in yaml.v3's map ordering (sorted by key), not in source order.
func (p *Parser) Serialize(note *entities.Note) ([]byte, error) {
	var buf bytes.Buffer
	if len(note.Frontmatter) > 0 {
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		buf.WriteString(frontmatterDelim + "\n")
		if err := enc.Encode(note.Frontmatter); err != nil {
			return nil, &entities.ParseError{Path: note.Path, Message: "encoding frontmatter", Err: err}
		}
		enc.Close()
		buf.WriteString(frontmatterDelim + "\n")
	}
	buf.WriteString(note.Body)
	return buf.Bytes(), nil
}

// splitFrontmatter separates leading "---" delimited YAML from the body.
// A file with no frontmatter block is returned with an empty map and
// missing=true rather than as an error; admission is the graph builder's
// concern, not the parser's.
func splitFrontmatter(content []byte) (map[string]any, string, bool, error) {
	text := string(content)
	if !strings.HasPrefix(text, frontmatterDelim) {
		return map[string]any{}, text, true, nil
	}

	rest := text[len(frontmatterDelim):]
	rest = strings.TrimPrefix(rest, "\n")
	idx := strings.Index(rest, "\n"+frontmatterDelim)
	if idx == -1 {
		return map[string]any{}, text, true, nil
	}

	raw := rest[:idx]
	body := rest[idx+1+len(frontmatterDelim):]
	body = strings.TrimPrefix(body, "\n")

	var fm map[string]any
	if err := yaml.Unmarshal([]byte(raw), &fm); err != nil {
		return nil, "", false, fmt.Errorf("invalid yaml frontmatter: %w", err)
	}
	if fm == nil {
		fm = map[string]any{}
	}
	return fm, body, false, nil
}

func extractWikilinks(body string) []string {
	matches := wikilinkPattern.FindAllStringSubmatch(body, -1)
	links := make([]string, 0, len(matches))
	for _, m := range matches {
		links = append(links, strings.TrimSpace(m[1]))
	}
	return links
}

func extractHeadings(body string) []entities.Heading {
	locs := headingPattern.FindAllStringSubmatchIndex(body, -1)
	headings := make([]entities.Heading, 0, len(locs))
	for _, loc := range locs {
		level := loc[3] - loc[2]
		text := strings.TrimSpace(body[loc[4]:loc[5]])
		headings = append(headings, entities.Heading{
			Level:  level,
			Text:   text,
			Offset: loc[0],
		})
	}
	return headings
}
