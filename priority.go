package gositemapbuilder

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

const (
	minPriority = 0.0
	maxPriority = 1.0
)

var errPriorityRange = errors.New("must be between 0.0 and 1.0")

// Priority is a validated <priority> value held at one decimal place.
type Priority struct {
	value float64
}

// NewPriority validates v and rounds it half away from zero to one decimal place,
// so 0.85 becomes 0.9 and 0.83 becomes 0.8.
func NewPriority(v float64) (Priority, error) {
	if math.IsNaN(v) || v < minPriority || v > maxPriority {
		return Priority{}, errPriorityRange
	}
	rounded := math.Round(v*10) / 10
	// math.Max also turns -0 into +0.
	rounded = math.Min(maxPriority, math.Max(minPriority, rounded))
	return Priority{value: rounded}, nil
}

// ParsePriority parses a decimal string and validates it like NewPriority.
func ParsePriority(value string) (Priority, error) {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return Priority{}, err
	}
	return NewPriority(parsed)
}

// Float64 returns the rounded value.
func (p Priority) Float64() float64 {
	return p.value
}

// String formats the value with exactly one decimal place.
func (p Priority) String() string {
	return strconv.FormatFloat(p.value, 'f', 1, 64)
}
