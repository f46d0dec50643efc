package gositemapbuilder

// URLValidator decides whether a string is a usable absolute URL.
type URLValidator interface {
	// IsValid reports whether raw parses as an absolute URL with a scheme and host.
	IsValid(raw string) bool
}

// DateFormatter coerces a date-like value to the YYYY-MM-DD form used by <lastmod>.
type DateFormatter interface {
	// CanonicalDate accepts a time.Time, *time.Time or a parseable date string.
	CanonicalDate(value any) (string, error)
}

// Entry is one URL stored in a URLSet. Empty optional fields are omitted on output.
type Entry struct {
	Loc        string
	LastMod    string
	ChangeFreq ChangeFrequency
	Priority   string
}

// URLInput is one element of a batch passed to AddURLs.
type URLInput struct {
	Loc        string   `yaml:"loc"`
	LastMod    string   `yaml:"lastmod,omitempty"`
	ChangeFreq string   `yaml:"changefreq,omitempty"`
	Priority   *float64 `yaml:"priority,omitempty"`
}
