package gositemapbuilder

import (
	"bufio"
	"compress/gzip"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
)

var errSitemapIndex = errors.New("sitemap index documents are not supported")

type xmlURLEntry struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

// Load merges the <url> entries of an existing sitemap into the set and returns how
// many were added or updated. Gzip input is detected automatically. Relative <loc>
// values are resolved against base; without a base they are skipped.
//
// Entries with an unusable location are skipped and unparseable optional fields are
// dropped, both logged at debug level. A capacity error stops loading; entries added
// before it stay in the set.
func (s *URLSet) Load(ctx context.Context, r io.Reader, base *url.URL) (int, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	source := ""
	if base != nil {
		source = base.String()
	}

	reader, err := decompress(r)
	if err != nil {
		return 0, &ErrSitemapParse{Source: source, Err: err}
	}
	defer reader.Close()

	var added int
	err = parseURLSet(ctx, reader, func(entry xmlURLEntry) error {
		loc, err := resolveLocation(base, entry.Loc)
		if err != nil {
			s.logger.Debug(fmt.Sprintf("skipping loc %q: %v", entry.Loc, err))
			return nil
		}
		if err := s.AddURL(loc, s.loadOptions(loc, entry)...); err != nil {
			var capErr *ErrCapacityExceeded
			if errors.As(err, &capErr) {
				return err
			}
			s.logger.Debug(fmt.Sprintf("skipping loc %q: %v", loc, err))
			return nil
		}
		added++
		return nil
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return added, err
		}
		var capErr *ErrCapacityExceeded
		if errors.As(err, &capErr) {
			return added, err
		}
		return added, &ErrSitemapParse{Source: source, Err: err}
	}
	return added, nil
}

func (s *URLSet) loadOptions(loc string, entry xmlURLEntry) []EntryOption {
	var opts []EntryOption
	if value := strings.TrimSpace(entry.LastMod); value != "" {
		if _, err := s.opts.Dates.CanonicalDate(value); err == nil {
			opts = append(opts, WithLastModString(value))
		} else {
			s.logger.Debug(fmt.Sprintf("dropping lastmod %q for %s: %v", value, loc, err))
		}
	}
	if value := strings.TrimSpace(entry.ChangeFreq); value != "" {
		if freq, err := ParseChangeFrequency(value); err == nil {
			opts = append(opts, WithChangeFreq(freq))
		} else {
			s.logger.Debug(fmt.Sprintf("dropping changefreq %q for %s: %v", value, loc, err))
		}
	}
	if value := strings.TrimSpace(entry.Priority); value != "" {
		if priority, err := ParsePriority(value); err == nil {
			opts = append(opts, WithPriority(priority.Float64()))
		} else {
			s.logger.Debug(fmt.Sprintf("dropping priority %q for %s: %v", value, loc, err))
		}
	}
	return opts
}

func parseURLSet(ctx context.Context, reader io.Reader, onURL func(xmlURLEntry) error) error {
	decoder := xml.NewDecoder(reader)
	decoder.Strict = false

	sawRoot := false
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		tok, err := decoder.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				if !sawRoot {
					return errors.New("no root element")
				}
				return nil
			}
			return err
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if !sawRoot {
			sawRoot = true
			if start.Name.Local == "sitemapindex" {
				return errSitemapIndex
			}
		}
		if start.Name.Local != "url" {
			continue
		}
		var entry xmlURLEntry
		if err := decoder.DecodeElement(&entry, &start); err != nil {
			return err
		}
		if err := onURL(entry); err != nil {
			return err
		}
	}
}

func resolveLocation(base *url.URL, loc string) (string, error) {
	trimmed := strings.TrimSpace(loc)
	if trimmed == "" {
		return "", errors.New("empty loc")
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return "", err
	}
	if parsed.IsAbs() {
		return trimmed, nil
	}
	if base == nil {
		return "", errors.New("relative loc without base URL")
	}
	return base.ResolveReference(parsed).String(), nil
}

// decompress sniffs the gzip magic bytes so callers need not know the encoding.
func decompress(r io.Reader) (io.ReadCloser, error) {
	reader := bufio.NewReaderSize(r, defaultBufSize)
	if magic, err := reader.Peek(2); err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		return gzip.NewReader(reader)
	}
	return io.NopCloser(reader), nil
}
