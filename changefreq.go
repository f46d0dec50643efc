package gositemapbuilder

import (
	"errors"
	"fmt"
	"strings"
)

// ChangeFrequency is the <changefreq> crawler hint.
type ChangeFrequency string

const (
	ChangeFreqAlways  ChangeFrequency = "always"
	ChangeFreqHourly  ChangeFrequency = "hourly"
	ChangeFreqDaily   ChangeFrequency = "daily"
	ChangeFreqWeekly  ChangeFrequency = "weekly"
	ChangeFreqMonthly ChangeFrequency = "monthly"
	ChangeFreqYearly  ChangeFrequency = "yearly"
	ChangeFreqNever   ChangeFrequency = "never"
)

var changeFrequencies = []ChangeFrequency{
	ChangeFreqAlways,
	ChangeFreqHourly,
	ChangeFreqDaily,
	ChangeFreqWeekly,
	ChangeFreqMonthly,
	ChangeFreqYearly,
	ChangeFreqNever,
}

// ChangeFrequencies returns the allowed values in protocol order.
func ChangeFrequencies() []ChangeFrequency {
	out := make([]ChangeFrequency, len(changeFrequencies))
	copy(out, changeFrequencies)
	return out
}

// Valid reports whether c is one of the seven protocol values.
func (c ChangeFrequency) Valid() bool {
	for _, known := range changeFrequencies {
		if c == known {
			return true
		}
	}
	return false
}

// ParseChangeFrequency matches value case-insensitively against the protocol values.
func ParseChangeFrequency(value string) (ChangeFrequency, error) {
	candidate := ChangeFrequency(strings.ToLower(strings.TrimSpace(value)))
	if candidate.Valid() {
		return candidate, nil
	}
	return "", errInvalidChangeFrequency
}

var errInvalidChangeFrequency = errors.New("must be one of " + allowedChangeFrequencies())

func allowedChangeFrequencies() string {
	names := make([]string, 0, len(changeFrequencies))
	for _, c := range changeFrequencies {
		names = append(names, string(c))
	}
	return fmt.Sprintf("[%s]", strings.Join(names, ", "))
}
