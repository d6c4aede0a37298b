package analysis

import (
	"regexp"
	"strings"

	"github.com/brightboard/brightboard/dataset"
)

// Caps the number of distinct sample values collected per field.
const MaxFieldSampleValues = 50

// FieldDescriptor is the inferred shape of a single dataset field: its semantic kind, and a
// bounded sample of its distinct observed values in first-seen order.
type FieldDescriptor struct {
	Name   string    `json:"name"`
	Kind   FieldKind `json:"kind"`
	Values []string  `json:"values"`
}

// InferFields derives a field descriptor for every field present in the FIRST record of the
// collection. A field that only appears in later records is never discovered; the first record
// decides which fields exist. Fields with no non-null values anywhere are dropped.
func InferFields(collection dataset.Collection) []FieldDescriptor {
	if len(collection.Records) == 0 {
		return nil
	}

	fields := make([]FieldDescriptor, 0, len(collection.FieldOrder))

	for _, name := range collection.FieldOrder {
		values := make([]any, 0, len(collection.Records))
		for _, record := range collection.Records {
			if value, present := record[name]; present && value != nil {
				values = append(values, value)
			}
		}

		if len(values) == 0 {
			continue
		}

		fields = append(fields, FieldDescriptor{
			Name:   name,
			Kind:   classifyField(name, values),
			Values: sampleValues(values),
		})
	}

	return fields
}

var isoDatePrefixPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)

// classifyField decides a field's kind from its non-null values. The checks are ordered: a field
// where every value is numeric is a NUMBER even if its name contains "date".
func classifyField(name string, values []any) FieldKind {
	allNumbers := true
	allBooleans := true
	for _, value := range values {
		if _, isNumber := asNumber(value); !isNumber {
			allNumbers = false
		}
		if _, isBoolean := value.(bool); !isBoolean {
			allBooleans = false
		}
		if !allNumbers && !allBooleans {
			break
		}
	}

	if allNumbers {
		return FieldKindNumber
	}
	if allBooleans {
		return FieldKindBoolean
	}
	if strings.Contains(strings.ToLower(name), "date") {
		return FieldKindDate
	}
	if first := formatValue(values[0]); isoDatePrefixPattern.MatchString(first) {
		if _, parses := parseDate(values[0]); parses {
			return FieldKindDate
		}
	}

	return FieldKindString
}

// sampleValues deduplicates values (case-sensitive, exact match) and keeps the first
// MaxFieldSampleValues distinct ones in encounter order.
func sampleValues(values []any) []string {
	samples := make([]string, 0, min(len(values), MaxFieldSampleValues))
	seen := make(map[string]struct{}, len(samples))

	for _, value := range values {
		formatted := formatValue(value)
		if _, alreadySeen := seen[formatted]; alreadySeen {
			continue
		}

		seen[formatted] = struct{}{}
		samples = append(samples, formatted)
		if len(samples) == MaxFieldSampleValues {
			break
		}
	}

	return samples
}

// firstDateField finds the date field used for filtering and time series bucketing. When a
// dataset has several date fields, only the first one counts.
func firstDateField(fields []FieldDescriptor) (name string, found bool) {
	for _, field := range fields {
		if field.Kind == FieldKindDate {
			return field.Name, true
		}
	}
	return "", false
}
