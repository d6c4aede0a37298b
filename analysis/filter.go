package analysis

import (
	"time"

	"github.com/brightboard/brightboard/dataset"
)

// FilterByDateRange keeps the records whose date falls within [now - range, now], both ends
// inclusive. The first date field among the given fields is used; records whose value in that
// field is missing or unparseable are excluded. With no date range selected, or no date field
// inferred, the input is returned unchanged.
func FilterByDateRange(
	records []dataset.Record,
	fields []FieldDescriptor,
	dateRange *DateRange,
	now time.Time,
) []dataset.Record {
	if dateRange == nil || !dateRange.IsValid() {
		return records
	}

	dateField, hasDateField := firstDateField(fields)
	if !hasDateField {
		return records
	}

	cutoff := now.Add(-dateRange.Duration())

	filtered := make([]dataset.Record, 0, len(records))
	for _, record := range records {
		timestamp, ok := parseDate(record[dateField])
		if !ok {
			continue
		}

		if !timestamp.Before(cutoff) && !timestamp.After(now) {
			filtered = append(filtered, record)
		}
	}

	return filtered
}
