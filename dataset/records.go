package dataset

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"hermannm.dev/wrap"
)

// Record is a single entry of a dataset: a flat mapping of field names to scalar values. Values
// hold the raw JSON scalars (float64, string, bool or nil).
type Record map[string]any

// Collection is a fully loaded dataset file.
type Collection struct {
	Records []Record `json:"records"`
	// FieldOrder lists the first record's field names in the order they appear in the source
	// JSON. Go maps don't keep key order, and field order decides which metric and dimension get
	// auto-selected downstream.
	FieldOrder []string `json:"fieldOrder"`
}

// ParseRecords parses an uploaded dataset file. The file must contain a JSON array of flat
// objects; a top-level object, or nested objects/arrays inside records, are rejected.
func ParseRecords(data []byte) (Collection, error) {
	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return Collection{}, wrap.Error(err, "dataset file must contain a JSON array of objects")
	}

	records := make([]Record, 0, len(entries))
	for i, entry := range entries {
		// Unmarshalling the null literal into a map is a no-op, so it has to be rejected
		// explicitly.
		if string(bytes.TrimSpace(entry)) == "null" {
			return Collection{}, fmt.Errorf("dataset entry %d is null, expected an object", i)
		}

		var fields map[string]any
		if err := json.Unmarshal(entry, &fields); err != nil {
			return Collection{}, wrap.Errorf(err, "dataset entry %d is not an object", i)
		}

		record := make(Record, len(fields))
		for name, value := range fields {
			switch value.(type) {
			case nil, bool, float64, string:
				record[name] = value
			default:
				return Collection{}, fmt.Errorf(
					"field '%s' in dataset entry %d has a nested value, expected a scalar",
					name,
					i,
				)
			}
		}

		records = append(records, record)
	}

	if len(records) == 0 {
		return Collection{Records: records}, nil
	}

	fieldOrder, err := firstRecordFieldOrder(entries[0])
	if err != nil {
		return Collection{}, wrap.Error(err, "failed to read field order from first record")
	}

	return Collection{Records: records, FieldOrder: fieldOrder}, nil
}

// firstRecordFieldOrder walks the tokens of the first record object to recover its field names in
// source order, which json.Unmarshal into a map discards.
func firstRecordFieldOrder(firstRecord json.RawMessage) ([]string, error) {
	decoder := json.NewDecoder(bytes.NewReader(firstRecord))

	token, err := decoder.Token()
	if err != nil {
		return nil, err
	}
	if delim, isDelim := token.(json.Delim); !isDelim || delim != '{' {
		return nil, errors.New("first record is not an object")
	}

	var fieldOrder []string
	for decoder.More() {
		token, err := decoder.Token()
		if err != nil {
			return nil, err
		}

		name, isString := token.(string)
		if !isString {
			return nil, fmt.Errorf("expected field name, got '%v'", token)
		}
		fieldOrder = append(fieldOrder, name)

		var value any
		if err := decoder.Decode(&value); err != nil {
			return nil, wrap.Errorf(err, "failed to read value of field '%s'", name)
		}
	}

	return fieldOrder, nil
}
