package markdown

import (
	"strings"
	"testing"
)

const sampleNote = `---
id: aria
title: Aria Nightshade
type: character
status: canon
---
# Aria Nightshade

Aria [[Talen]] grew up in the [[Sunspire|capital city]].

## Background

She knows [[Talen#section|her mentor]] well.
`

func TestParseBytesExtractsFrontmatterAndID(t *testing.T) {
	p := New()
	note, err := p.ParseBytes("aria.md", []byte(sampleNote))
	if err != nil {
		t.Fatalf("ParseBytes failed: %v", err)
	}
	if note.ID != "aria" {
		t.Errorf("expected id aria, got %q", note.ID)
	}
	if note.EntityType() != "character" {
		t.Errorf("expected type character, got %q", note.EntityType())
	}
	if note.Status() != "canon" {
		t.Errorf("expected status canon, got %q", note.Status())
	}
	if !note.Admitted() {
		t.Error("expected note to be admitted")
	}
}

func TestParseBytesExtractsWikilinks(t *testing.T) {
	p := New()
	note, err := p.ParseBytes("aria.md", []byte(sampleNote))
	if err != nil {
		t.Fatalf("ParseBytes failed: %v", err)
	}
	want := map[string]bool{"Talen": true, "Sunspire": true}
	if len(note.Links) != 3 {
		t.Fatalf("expected 3 wikilinks (with dup), got %v", note.Links)
	}
	for _, link := range note.Links {
		if !want[link] {
			t.Errorf("unexpected link target %q", link)
		}
	}
}

func TestParseBytesExtractsHeadings(t *testing.T) {
	p := New()
	note, err := p.ParseBytes("aria.md", []byte(sampleNote))
	if err != nil {
		t.Fatalf("ParseBytes failed: %v", err)
	}
	if len(note.Headings) != 2 {
		t.Fatalf("expected 2 headings, got %d", len(note.Headings))
	}
	if note.Headings[0].Level != 1 || note.Headings[0].Text != "Aria Nightshade" {
		t.Errorf("unexpected first heading: %+v", note.Headings[0])
	}
	if note.Headings[1].Level != 2 || note.Headings[1].Text != "Background" {
		t.Errorf("unexpected second heading: %+v", note.Headings[1])
	}
}

func TestParseBytesWithoutFrontmatterIsNotAdmitted(t *testing.T) {
	p := New()
	note, err := p.ParseBytes("scratch.md", []byte("# Just a heading\n\nNo frontmatter here.\n"))
	if err != nil {
		t.Fatalf("ParseBytes failed: %v", err)
	}
	if !note.MissingFrontmatter {
		t.Error("expected MissingFrontmatter to be true")
	}
	if note.Admitted() {
		t.Error("expected note without id to not be admitted")
	}
}

func TestSerializeRoundTripsID(t *testing.T) {
	p := New()
	note, err := p.ParseBytes("aria.md", []byte(sampleNote))
	if err != nil {
		t.Fatalf("ParseBytes failed: %v", err)
	}
	out, err := p.Serialize(note)
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	reparsed, err := p.ParseBytes("aria.md", out)
	if err != nil {
		t.Fatalf("reparse failed: %v", err)
	}
	if reparsed.ID != "aria" {
		t.Errorf("expected round-tripped id aria, got %q", reparsed.ID)
	}
	if !strings.Contains(string(out), "Aria Nightshade") {
		t.Error("expected serialized output to retain body content")
	}
}
