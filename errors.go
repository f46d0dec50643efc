package gositemapbuilder

import (
	"fmt"
	"net/url"
)

// ErrInvalidInput indicates a rejected location or optional field value.
type ErrInvalidInput struct {
	URL   string
	Field string
	Value string
	Err   error
}

func (e *ErrInvalidInput) Error() string {
	msg := "invalid input"
	if e.Field != "" {
		msg = fmt.Sprintf("invalid %s", e.Field)
	}
	if e.Value != "" {
		msg = fmt.Sprintf("%s %q", msg, e.Value)
	}
	if e.URL != "" && e.Field != "loc" {
		msg = fmt.Sprintf("%s for %s", msg, e.URL)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *ErrInvalidInput) Unwrap() error {
	return e.Err
}

// ErrCapacityExceeded indicates a new URL would exceed the per-sitemap ceiling.
type ErrCapacityExceeded struct {
	Max int
}

func (e *ErrCapacityExceeded) Error() string {
	return fmt.Sprintf("sitemap capacity of %d URLs exceeded", e.Max)
}

// ErrEmptyCollection indicates generation was requested for a set without URLs.
type ErrEmptyCollection struct{}

func (e *ErrEmptyCollection) Error() string {
	return "sitemap has no URLs"
}

// ErrSitemapParse indicates a failure while reading existing sitemap XML.
type ErrSitemapParse struct {
	Source string
	Err    error
}

func (e *ErrSitemapParse) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("sitemap parse failed: %v", e.Err)
	}
	return fmt.Sprintf("sitemap parse failed for %s: %v", e.Source, e.Err)
}

func (e *ErrSitemapParse) Unwrap() error {
	return e.Err
}

// ErrHTTPStatus indicates an unexpected HTTP status while fetching a sitemap.
type ErrHTTPStatus struct {
	URL        *url.URL
	StatusCode int
	Status     string
}

func (e *ErrHTTPStatus) Error() string {
	if e.URL == nil {
		return fmt.Sprintf("unexpected HTTP status %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected HTTP status %d for %s", e.StatusCode, e.URL)
}
