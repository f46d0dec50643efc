package gositemapbuilder

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
)

// MaxURLs is the sitemaps.org limit of <url> entries in one document.
const MaxURLs = 50000

var errInvalidLocation = errors.New("must be an absolute URL with scheme and host")

// ===================== Configuration =====================

// Options configures collaborators of a URLSet. Nil fields get defaults.
type Options struct {
	Logger    *slog.Logger
	Now       func() time.Time
	Validator URLValidator
	Dates     DateFormatter
}

// URLSet accumulates sitemap entries keyed by normalized location, keeping the
// order in which each distinct location was first added.
//
// A URLSet is not safe for concurrent use; callers sharing one must serialize access.
type URLSet struct {
	opts    Options
	logger  *slog.Logger
	order   []string
	entries map[string]Entry
}

// EntryOption supplies an optional field to AddURL. Options are validated together
// with the location, and nothing is stored unless all of them are valid.
type EntryOption func(*entryRequest)

type entryRequest struct {
	lastMod    any
	changeFreq *changeFreqArg
	priority   *priorityArg
}

type changeFreqArg struct {
	value ChangeFrequency
	raw   string
	typed bool
}

type priorityArg struct {
	value float64
	raw   string
	typed bool
}

// WithLastMod sets <lastmod> from a time value.
func WithLastMod(t time.Time) EntryOption {
	return func(r *entryRequest) { r.lastMod = t }
}

// WithLastModString sets <lastmod> from a date string such as 2024-01-02 or an RFC 3339 timestamp.
func WithLastModString(value string) EntryOption {
	return func(r *entryRequest) { r.lastMod = value }
}

// WithChangeFreq sets <changefreq> from one of the ChangeFreq constants.
func WithChangeFreq(c ChangeFrequency) EntryOption {
	return func(r *entryRequest) { r.changeFreq = &changeFreqArg{value: c, typed: true} }
}

// WithChangeFreqString sets <changefreq> from a case-insensitive name like "WEEKLY".
func WithChangeFreqString(value string) EntryOption {
	return func(r *entryRequest) { r.changeFreq = &changeFreqArg{raw: value} }
}

// WithPriority sets <priority>; see NewPriority for the rounding rule.
func WithPriority(p float64) EntryOption {
	return func(r *entryRequest) { r.priority = &priorityArg{value: p, typed: true} }
}

// WithPriorityString sets <priority> from a decimal string.
func WithPriorityString(value string) EntryOption {
	return func(r *entryRequest) { r.priority = &priorityArg{raw: value} }
}

// ===================== Public API =====================

// New builds an empty URLSet with defaults applied.
func New(opts Options) *URLSet {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Validator == nil {
		opts.Validator = AbsoluteURLValidator{}
	}
	if opts.Dates == nil {
		opts.Dates = ISODateFormatter{}
	}
	return &URLSet{
		opts:    opts,
		logger:  opts.Logger,
		entries: make(map[string]Entry),
	}
}

// AddURL adds loc, or updates the entry whose location normalizes to the same key.
// An update replaces the stored location and only the optional fields passed in opts.
// On error the set is left unchanged.
func (s *URLSet) AddURL(loc string, opts ...EntryOption) error {
	var req entryRequest
	for _, opt := range opts {
		if opt != nil {
			opt(&req)
		}
	}
	return s.add(loc, req)
}

// AddURLWithNow is AddURL with <lastmod> set to the current date.
func (s *URLSet) AddURLWithNow(loc string, opts ...EntryOption) error {
	withNow := make([]EntryOption, 0, len(opts)+1)
	withNow = append(withNow, opts...)
	withNow = append(withNow, WithLastMod(s.opts.Now()))
	return s.AddURL(loc, withNow...)
}

// AddURLs adds inputs in order. Each element is committed on its own: when element
// i fails, the elements before it stay in the set. The returned count is the number
// of elements committed before the failure.
func (s *URLSet) AddURLs(inputs []URLInput) (int, error) {
	var added int
	for i, input := range inputs {
		if strings.TrimSpace(input.Loc) == "" {
			return added, &ErrInvalidInput{Field: "loc", Err: fmt.Errorf("missing loc in element %d", i)}
		}
		if err := s.AddURL(input.Loc, input.Options()...); err != nil {
			return added, err
		}
		added++
	}
	return added, nil
}

// HasURL reports whether an entry equivalent to loc is stored.
func (s *URLSet) HasURL(loc string) bool {
	if !s.opts.Validator.IsValid(loc) {
		return false
	}
	_, ok := s.entries[normalizeKey(loc)]
	return ok
}

// Count returns the number of distinct locations.
func (s *URLSet) Count() int {
	return len(s.order)
}

// IsEmpty reports whether the set holds no entries.
func (s *URLSet) IsEmpty() bool {
	return s.Count() == 0
}

// Clear removes every entry.
func (s *URLSet) Clear() {
	s.order = nil
	s.entries = make(map[string]Entry)
}

// URLs returns a copy of the entries in first-insertion order.
func (s *URLSet) URLs() []Entry {
	out := make([]Entry, 0, len(s.order))
	for _, key := range s.order {
		out = append(out, s.entries[key])
	}
	return out
}

// Options converts the optional fields of a batch element to entry options.
func (in URLInput) Options() []EntryOption {
	var opts []EntryOption
	if strings.TrimSpace(in.LastMod) != "" {
		opts = append(opts, WithLastModString(in.LastMod))
	}
	if strings.TrimSpace(in.ChangeFreq) != "" {
		opts = append(opts, WithChangeFreqString(in.ChangeFreq))
	}
	if in.Priority != nil {
		opts = append(opts, WithPriority(*in.Priority))
	}
	return opts
}

// ===================== Internal =====================

func (s *URLSet) add(loc string, req entryRequest) error {
	if !s.opts.Validator.IsValid(loc) {
		return &ErrInvalidInput{URL: loc, Field: "loc", Value: loc, Err: errInvalidLocation}
	}

	key := normalizeKey(loc)
	entry, exists := s.entries[key]
	if !exists && len(s.order) >= MaxURLs {
		return &ErrCapacityExceeded{Max: MaxURLs}
	}

	// entry is a copy; the map is only written once every field has validated.
	entry.Loc = loc

	if req.lastMod != nil {
		date, err := s.opts.Dates.CanonicalDate(req.lastMod)
		if err != nil {
			return &ErrInvalidInput{URL: loc, Field: "lastmod", Value: describeValue(req.lastMod), Err: err}
		}
		entry.LastMod = date
	}

	if arg := req.changeFreq; arg != nil {
		freq, err := arg.resolve()
		if err != nil {
			return &ErrInvalidInput{URL: loc, Field: "changefreq", Value: arg.String(), Err: err}
		}
		entry.ChangeFreq = freq
	}

	if arg := req.priority; arg != nil {
		priority, err := arg.resolve()
		if err != nil {
			return &ErrInvalidInput{URL: loc, Field: "priority", Value: arg.String(), Err: err}
		}
		entry.Priority = priority.String()
	}

	if exists {
		s.logger.Debug(fmt.Sprintf("updating sitemap entry %s", loc), "key", key)
	} else {
		s.order = append(s.order, key)
	}
	s.entries[key] = entry
	return nil
}

func (a *changeFreqArg) resolve() (ChangeFrequency, error) {
	if a.typed {
		if !a.value.Valid() {
			return "", errInvalidChangeFrequency
		}
		return a.value, nil
	}
	return ParseChangeFrequency(a.raw)
}

func (a *changeFreqArg) String() string {
	if a.typed {
		return string(a.value)
	}
	return a.raw
}

func (a *priorityArg) resolve() (Priority, error) {
	if a.typed {
		return NewPriority(a.value)
	}
	return ParsePriority(a.raw)
}

func (a *priorityArg) String() string {
	if a.typed {
		return fmt.Sprintf("%g", a.value)
	}
	return a.raw
}

func describeValue(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case time.Time:
		return v.Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", v)
	}
}
