package gositemapbuilder

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

var lastModLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	dateLayout,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.RFC1123,
	time.RFC1123Z,
}

// ISODateFormatter is the default DateFormatter. Times keep their own location,
// so 2024-03-01T23:30:00-05:00 formats as 2024-03-01.
type ISODateFormatter struct{}

var _ DateFormatter = ISODateFormatter{}

// CanonicalDate formats value as YYYY-MM-DD.
func (ISODateFormatter) CanonicalDate(value any) (string, error) {
	switch v := value.(type) {
	case time.Time:
		if v.IsZero() {
			return "", errors.New("zero time")
		}
		return v.Format(dateLayout), nil
	case *time.Time:
		if v == nil || v.IsZero() {
			return "", errors.New("zero time")
		}
		return v.Format(dateLayout), nil
	case string:
		parsed, err := parseTimeValue(v)
		if err != nil {
			return "", err
		}
		return parsed.Format(dateLayout), nil
	default:
		return "", fmt.Errorf("unsupported date type %T", value)
	}
}

// parseTimeValue tries each of lastModLayouts. When none match, the error is the
// one from the plain date layout, which names the failing part for inputs such as
// 2024-02-30.
func parseTimeValue(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, errors.New("empty date")
	}
	var dateErr error
	for _, layout := range lastModLayouts {
		parsed, err := time.Parse(layout, trimmed)
		if err == nil {
			return parsed, nil
		}
		if layout == dateLayout {
			dateErr = err
		}
	}
	return time.Time{}, fmt.Errorf("%w (accepted: YYYY-MM-DD, RFC 3339 or RFC 1123)", dateErr)
}
