package gositemapbuilder

import (
	"net/url"
	"strings"

	"github.com/temoto/robotstxt"
)

// RobotsPolicy tests locations against the rules of a robots.txt file so that
// disallowed pages can be left out of a sitemap.
type RobotsPolicy struct {
	group    *robotstxt.Group
	sitemaps []string
}

// NewRobotsPolicy parses robots.txt content and selects the group for userAgent.
func NewRobotsPolicy(data []byte, userAgent string) (*RobotsPolicy, error) {
	parsed, err := robotstxt.FromBytes(data)
	if err != nil {
		return nil, err
	}
	if userAgent == "" {
		userAgent = "*"
	}
	return &RobotsPolicy{
		group:    parsed.FindGroup(userAgent),
		sitemaps: parsed.Sitemaps,
	}, nil
}

// Allows reports whether loc may be crawled. Unparseable locations are allowed
// here and left for AddURL to reject.
func (p *RobotsPolicy) Allows(loc string) bool {
	if p == nil || p.group == nil {
		return true
	}
	parsed, err := url.Parse(loc)
	if err != nil {
		return true
	}
	path := parsed.EscapedPath()
	if path == "" {
		path = "/"
	}
	if parsed.RawQuery != "" {
		path += "?" + parsed.RawQuery
	}
	return p.group.Test(path)
}

// Filter returns the inputs that Allows accepts, keeping their order.
func (p *RobotsPolicy) Filter(inputs []URLInput) (kept, dropped []URLInput) {
	kept = make([]URLInput, 0, len(inputs))
	for _, input := range inputs {
		if p.Allows(strings.TrimSpace(input.Loc)) {
			kept = append(kept, input)
			continue
		}
		dropped = append(dropped, input)
	}
	return kept, dropped
}

// Sitemaps returns the Sitemap: URLs declared in the robots.txt file.
func (p *RobotsPolicy) Sitemaps() []string {
	if p == nil {
		return nil
	}
	out := make([]string, len(p.sitemaps))
	copy(out, p.sitemaps)
	return out
}
