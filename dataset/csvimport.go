package dataset

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"strconv"

	"hermannm.dev/wrap"
)

// RecordsFromCSV converts a CSV file to the dataset record format: the first row is taken as
// field names, and every following row becomes one record. Cell values are typed by trial:
// boolean, then number, then string. Empty cells become null. Returns both the parsed collection
// and its JSON encoding, ready for storage alongside JSON uploads.
func RecordsFromCSV(data []byte) (Collection, []byte, error) {
	delimiter := deduceFieldDelimiter(data, 10)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delimiter

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Collection{}, nil, errors.New("CSV file is empty")
		}
		return Collection{}, nil, wrap.Error(err, "failed to read CSV header row")
	}

	var records []Record
	for {
		row, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return Collection{}, nil, wrap.Error(err, "failed to read CSV row")
		}

		record := make(Record, len(header))
		for i, field := range header {
			record[field] = typeCSVValue(row[i])
		}
		records = append(records, record)
	}

	collection := Collection{Records: records, FieldOrder: header}

	content, err := encodeRecords(collection)
	if err != nil {
		return Collection{}, nil, err
	}

	return collection, content, nil
}

func typeCSVValue(value string) any {
	if value == "" {
		return nil
	}
	if boolean, err := strconv.ParseBool(value); err == nil && isBoolLiteral(value) {
		return boolean
	}
	if number, err := strconv.ParseFloat(value, 64); err == nil {
		return number
	}
	return value
}

// strconv.ParseBool also accepts "1"/"0" and single letters, which we want to keep as numbers
// and strings respectively.
func isBoolLiteral(value string) bool {
	switch value {
	case "true", "false", "TRUE", "FALSE", "True", "False":
		return true
	default:
		return false
	}
}

// encodeRecords writes the collection as a JSON record array, keeping fields in CSV column order
// (json.Marshal on maps would sort keys alphabetically, which would change which fields the
// analysis auto-selects).
func encodeRecords(collection Collection) ([]byte, error) {
	var buffer bytes.Buffer
	buffer.WriteByte('[')

	for i, record := range collection.Records {
		if i > 0 {
			buffer.WriteByte(',')
		}
		buffer.WriteByte('{')

		for j, field := range collection.FieldOrder {
			if j > 0 {
				buffer.WriteByte(',')
			}

			fieldJSON, err := json.Marshal(field)
			if err != nil {
				return nil, wrap.Error(err, "failed to encode record field name")
			}
			valueJSON, err := json.Marshal(record[field])
			if err != nil {
				return nil, wrap.Errorf(err, "failed to encode value of record field '%s'", field)
			}

			buffer.Write(fieldJSON)
			buffer.WriteByte(':')
			buffer.Write(valueJSON)
		}

		buffer.WriteByte('}')
	}

	buffer.WriteByte(']')
	return buffer.Bytes(), nil
}

var csvDelimiterCandidates = []rune{',', ';', '\t', ' ', '|'}

// deduceFieldDelimiter finds the most likely field delimiter by counting candidate occurrences
// per line: the best candidate appears a consistent, non-zero number of times on every line.
func deduceFieldDelimiter(data []byte, maxRowsToCheck int) rune {
	type candidate struct {
		delimiter    rune
		highestCount int
		lowestCount  int
	}

	candidates := make([]candidate, 0, len(csvDelimiterCandidates))
	for _, delimiter := range csvDelimiterCandidates {
		candidates = append(candidates, candidate{delimiter: delimiter, highestCount: -1, lowestCount: -1})
	}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for i := 0; scanner.Scan() && i < maxRowsToCheck; i++ {
		line := scanner.Text()

		for j := range candidates {
			count := 0
			for _, char := range line {
				if char == candidates[j].delimiter {
					count++
				}
			}

			if candidates[j].highestCount == -1 || count > candidates[j].highestCount {
				candidates[j].highestCount = count
			}
			if candidates[j].lowestCount == -1 || count < candidates[j].lowestCount {
				candidates[j].lowestCount = count
			}
		}
	}

	best := candidate{delimiter: ','}
	for _, current := range candidates {
		consistent := current.highestCount == current.lowestCount
		bestConsistent := best.highestCount == best.lowestCount

		switch {
		case consistent && bestConsistent && current.highestCount > best.highestCount:
			best = current
		case consistent && !bestConsistent && current.highestCount > 0:
			best = current
		case !consistent && !bestConsistent && current.highestCount > best.highestCount &&
			(current.lowestCount != 0 || best.lowestCount == 0):
			best = current
		}
	}

	return best.delimiter
}
