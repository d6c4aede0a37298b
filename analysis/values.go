package analysis

import (
	"strconv"
	"time"
)

// numericValue coerces a record value to a float for summation. JSON numbers are used as-is, and
// numeric strings are parsed. Anything else (including missing values) counts as zero.
func numericValue(value any) float64 {
	number, ok := asNumber(value)
	if !ok {
		return 0
	}
	return number
}

func asNumber(value any) (float64, bool) {
	switch value := value.(type) {
	case float64:
		return value, true
	case string:
		number, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, false
		}
		return number, true
	default:
		return 0, false
	}
}

// formatValue gives the display string for a record value, as collected in field descriptor
// samples and used as pie chart group names.
func formatValue(value any) string {
	switch value := value.(type) {
	case string:
		return value
	case bool:
		return strconv.FormatBool(value)
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	default:
		return ""
	}
}

var dateFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseDate parses a record value as a date. Only string values can be dates; each supported
// format is tried in order.
func parseDate(value any) (time.Time, bool) {
	dateString, isString := value.(string)
	if !isString {
		return time.Time{}, false
	}

	for _, format := range dateFormats {
		if parsed, err := time.Parse(format, dateString); err == nil {
			return parsed, true
		}
	}

	return time.Time{}, false
}
