package extract

import (
	"fmt"
	"strings"
	"testing"
)

func TestSummarizePrefersOGTags(t *testing.T) {
	html := []byte(`
<html>
  <head>
    <title>Fallback</title>
    <meta property="og:title" content="OG Title">
    <meta property="og:description" content="OG Desc">
    <meta property="og:image" content="/img/og.png">
  </head>
  <body>
    <a href="/news/1">  First
      story </a>
    <a href="#top">top</a>
    <a href="https://other.example/x">Other</a>
  </body>
</html>`)

	s, err := Summarize(html, "https://example.com/articles/1", 0)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if s.Title != "OG Title" || s.Description != "OG Desc" {
		t.Fatalf("unexpected meta %#v", s)
	}
	if s.ImageURL != "https://example.com/img/og.png" {
		t.Fatalf("image url = %q", s.ImageURL)
	}
	if s.Length != len(html) {
		t.Fatalf("length = %d, want %d", s.Length, len(html))
	}
	if len(s.Links) != 3 {
		t.Fatalf("expected 3 links, got %#v", s.Links)
	}
	if s.Links[0].Text != "First story" || s.Links[0].Href != "https://example.com/news/1" {
		t.Fatalf("unexpected first link %#v", s.Links[0])
	}
	if s.Links[1].Href != "https://example.com/articles/1#top" {
		t.Fatalf("fragment link should resolve against page, got %q", s.Links[1].Href)
	}
}

func TestSummarizeFallsBackToTitleAndMetaDescription(t *testing.T) {
	html := []byte(`<html><head><title> Plain </title><meta name="description" content="desc"></head></html>`)
	s, err := Summarize(html, "", 5)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if s.Title != "Plain" || s.Description != "desc" {
		t.Fatalf("unexpected summary %#v", s)
	}
}

func TestSummarizeCapsLinks(t *testing.T) {
	var b strings.Builder
	b.WriteString("<html><body>")
	for i := 0; i < 50; i++ {
		fmt.Fprintf(&b, `<a href="/p/%d">p%d</a>`, i, i)
	}
	b.WriteString("</body></html>")

	s, err := Summarize([]byte(b.String()), "https://example.com", 0)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if len(s.Links) != DefaultMaxLinks {
		t.Fatalf("expected %d links, got %d", DefaultMaxLinks, len(s.Links))
	}
}

func TestResolveURLHandlesRelative(t *testing.T) {
	got := resolveURL("/img.png", "https://example.com/articles/1")
	if got != "https://example.com/img.png" {
		t.Fatalf("resolveURL got %q", got)
	}
	if got := resolveURL("", "https://example.com"); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
	if got := resolveURL("/x", ""); got != "/x" {
		t.Fatalf("expected ref unchanged without base, got %q", got)
	}
}

func TestFirstNonEmpty(t *testing.T) {
	if got := firstNonEmpty("", " ", "foo", "bar"); got != "foo" {
		t.Fatalf("firstNonEmpty returned %q", got)
	}
}
