package gositemapbuilder

import (
	"bufio"
	"compress/gzip"
	"encoding/xml"
	"io"
	"strings"
)

const (
	sitemapNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"
	defaultBufSize   = 64 * 1024
)

// Generate renders the set as a sitemaps.org <urlset> document. Entries appear in
// first-insertion order and the output is identical for identical set contents.
func (s *URLSet) Generate() (string, error) {
	var b strings.Builder
	if _, err := s.WriteTo(&b); err != nil {
		return "", err
	}
	return b.String(), nil
}

// WriteTo streams the document produced by Generate to w.
func (s *URLSet) WriteTo(w io.Writer) (int64, error) {
	if s.IsEmpty() {
		return 0, &ErrEmptyCollection{}
	}

	counter := &countingWriter{w: w}
	writer := bufio.NewWriterSize(counter, defaultBufSize)
	_, _ = writer.WriteString(xml.Header)
	_, _ = writer.WriteString(`<urlset xmlns="` + sitemapNamespace + `">` + "\n")
	for _, key := range s.order {
		entry := s.entries[key]
		_, _ = writer.WriteString("  <url>\n")
		writeElement(writer, "loc", entry.Loc)
		if entry.LastMod != "" {
			writeElement(writer, "lastmod", entry.LastMod)
		}
		if entry.ChangeFreq != "" {
			writeElement(writer, "changefreq", string(entry.ChangeFreq))
		}
		if entry.Priority != "" {
			writeElement(writer, "priority", entry.Priority)
		}
		_, _ = writer.WriteString("  </url>\n")
	}
	_, _ = writer.WriteString("</urlset>\n")

	// bufio.Writer keeps the first write error and reports it here.
	if err := writer.Flush(); err != nil {
		return counter.n, err
	}
	return counter.n, nil
}

// WriteGzip writes the gzip-compressed document to w.
func (s *URLSet) WriteGzip(w io.Writer) error {
	if s.IsEmpty() {
		return &ErrEmptyCollection{}
	}
	gz := gzip.NewWriter(w)
	if _, err := s.WriteTo(gz); err != nil {
		gz.Close()
		return err
	}
	return gz.Close()
}

// writeElement escapes value with xml.EscapeText, which also replaces invalid
// UTF-8 and characters outside the XML range with U+FFFD.
func writeElement(w *bufio.Writer, name, value string) {
	_, _ = w.WriteString("    <")
	_, _ = w.WriteString(name)
	_ = w.WriteByte('>')
	_ = xml.EscapeText(w, []byte(value))
	_, _ = w.WriteString("</")
	_, _ = w.WriteString(name)
	_, _ = w.WriteString(">\n")
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
