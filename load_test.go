package gositemapbuilder

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"testing"
	"time"
)

const existingSitemap = `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url>
    <loc>/page-a</loc>
    <lastmod>2024-01-02T08:00:00Z</lastmod>
    <changefreq>Daily</changefreq>
    <priority>0.7</priority>
  </url>
  <url>
    <loc>https://example.com/page-b</loc>
    <lastmod>yesterday</lastmod>
    <changefreq>sometimes</changefreq>
    <priority>2.5</priority>
  </url>
  <url>
    <loc>mailto:nobody@example.com</loc>
  </url>
</urlset>`

func TestURLSet_Load(t *testing.T) {
	base, _ := url.Parse("https://example.com/sitemap.xml")
	set := New(Options{})
	added, err := set.Load(context.Background(), strings.NewReader(existingSitemap), base)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if added != 2 || set.Count() != 2 {
		t.Fatalf("expected 2 entries, added=%d count=%d", added, set.Count())
	}

	entries := set.URLs()
	if entries[0].Loc != "https://example.com/page-a" {
		t.Fatalf("expected relative loc to resolve, got %s", entries[0].Loc)
	}
	if entries[0].LastMod != "2024-01-02" || entries[0].ChangeFreq != ChangeFreqDaily || entries[0].Priority != "0.7" {
		t.Fatalf("unexpected first entry %+v", entries[0])
	}
	if entries[1].LastMod != "" || entries[1].ChangeFreq != "" || entries[1].Priority != "" {
		t.Fatalf("expected invalid fields to be dropped, got %+v", entries[1])
	}
}

func TestURLSet_Load_MergesWithExisting(t *testing.T) {
	set := New(Options{})
	if err := set.AddURL("https://example.com/page-b/", WithPriority(0.2)); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if _, err := set.Load(context.Background(), strings.NewReader(existingSitemap), nil); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if set.Count() != 1 {
		t.Fatalf("expected relative loc skipped and page-b merged, got %d", set.Count())
	}
	entry := set.URLs()[0]
	if entry.Loc != "https://example.com/page-b" || entry.Priority != "0.2" {
		t.Fatalf("unexpected merged entry %+v", entry)
	}
}

func TestURLSet_Load_Gzip(t *testing.T) {
	var gzipped bytes.Buffer
	gzipWriter := gzip.NewWriter(&gzipped)
	_, _ = gzipWriter.Write([]byte(existingSitemap))
	_ = gzipWriter.Close()

	base, _ := url.Parse("https://example.com/")
	set := New(Options{})
	added, err := set.Load(context.Background(), &gzipped, base)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if added != 2 {
		t.Fatalf("expected 2 entries, got %d", added)
	}
}

func TestURLSet_Load_RoundTrip(t *testing.T) {
	source := New(Options{})
	_ = source.AddURL("https://example.com/a?x=1&y=2", WithLastModString("2024-06-01"), WithPriority(0.3))
	_ = source.AddURL("https://example.com/b", WithChangeFreq(ChangeFreqNever))
	generated, err := source.Generate()
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	target := New(Options{})
	if _, err := target.Load(context.Background(), strings.NewReader(generated), nil); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	regenerated, err := target.Generate()
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if regenerated != generated {
		t.Fatalf("expected round trip to be stable:\n%s\n---\n%s", generated, regenerated)
	}
}

func TestURLSet_Load_Errors(t *testing.T) {
	cases := map[string]string{
		"empty":     "",
		"truncated": `<urlset><url><loc>https://example.com/</loc></url>`,
		"index":     `<sitemapindex><sitemap><loc>https://example.com/s.xml</loc></sitemap></sitemapindex>`,
	}
	for name, doc := range cases {
		set := New(Options{})
		_, err := set.Load(context.Background(), strings.NewReader(doc), nil)
		var parseErr *ErrSitemapParse
		if !errors.As(err, &parseErr) {
			t.Fatalf("%s: expected ErrSitemapParse, got %v", name, err)
		}
	}
}

func TestURLSet_Load_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	set := New(Options{})
	_, err := set.Load(ctx, strings.NewReader(existingSitemap), nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if !set.IsEmpty() {
		t.Fatalf("expected nothing loaded")
	}
}

func TestURLSet_Load_Capacity(t *testing.T) {
	set := New(Options{})
	for i := 0; i < MaxURLs; i++ {
		if err := set.AddURL(fmt.Sprintf("https://example.com/p/%d", i)); err != nil {
			t.Fatalf("add %d failed: %v", i, err)
		}
	}
	doc := `<urlset>
  <url><loc>https://example.com/p/1</loc><priority>0.1</priority></url>
  <url><loc>https://example.com/new</loc></url>
</urlset>`
	added, err := set.Load(context.Background(), strings.NewReader(doc), nil)
	var capErr *ErrCapacityExceeded
	if !errors.As(err, &capErr) {
		t.Fatalf("expected ErrCapacityExceeded, got %v", err)
	}
	if added != 1 {
		t.Fatalf("expected the update to be committed, got %d", added)
	}
	if set.Count() != MaxURLs {
		t.Fatalf("expected count %d, got %d", MaxURLs, set.Count())
	}
}

type weekStartDates struct{}

func (weekStartDates) CanonicalDate(value any) (string, error) {
	raw, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("unsupported date type %T", value)
	}
	parsed, err := time.Parse("02.01.2006", raw)
	if err != nil {
		return "", err
	}
	return parsed.AddDate(0, 0, -int(parsed.Weekday())).Format("2006-01-02"), nil
}

func TestURLSet_Load_UsesConfiguredDates(t *testing.T) {
	doc := `<urlset>
  <url><loc>https://example.com/a</loc><lastmod>13.06.2024</lastmod></url>
  <url><loc>https://example.com/b</loc><lastmod>2024-06-13</lastmod></url>
</urlset>`
	set := New(Options{Dates: weekStartDates{}})
	added, err := set.Load(context.Background(), strings.NewReader(doc), nil)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if added != 2 {
		t.Fatalf("expected 2 entries, got %d", added)
	}
	entries := set.URLs()
	if entries[0].LastMod != "2024-06-09" {
		t.Fatalf("expected configured formatter to apply, got %q", entries[0].LastMod)
	}
	if entries[1].LastMod != "" {
		t.Fatalf("expected lastmod rejected by formatter to be dropped, got %q", entries[1].LastMod)
	}
}
