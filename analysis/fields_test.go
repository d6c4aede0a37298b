package analysis_test

import (
	"fmt"
	"slices"
	"testing"

	"github.com/brightboard/brightboard/analysis"
	"github.com/brightboard/brightboard/dataset"
)

func newCollection(fieldOrder []string, records ...dataset.Record) dataset.Collection {
	return dataset.Collection{Records: records, FieldOrder: fieldOrder}
}

func TestInferFieldKinds(t *testing.T) {
	testCases := []struct {
		name         string
		values       []any
		expectedKind analysis.FieldKind
	}{
		{name: "amount", values: []any{10.5, 20.0}, expectedKind: analysis.FieldKindNumber},
		{name: "count", values: []any{"1", "2"}, expectedKind: analysis.FieldKindNumber},
		{name: "refunded", values: []any{true, false}, expectedKind: analysis.FieldKindBoolean},
		{name: "createdDate", values: []any{"whenever", "later"}, expectedKind: analysis.FieldKindDate},
		{name: "timestamp", values: []any{"2024-01-15", "2024-02-03"}, expectedKind: analysis.FieldKindDate},
		{name: "timestamp", values: []any{"2024-01-15T10:30:00Z", "2024-02-03T08:00:00Z"}, expectedKind: analysis.FieldKindDate},
		{name: "category", values: []any{"A", "B"}, expectedKind: analysis.FieldKindString},
		{name: "mixed", values: []any{10.0, "A"}, expectedKind: analysis.FieldKindString},
		{name: "notQuiteIso", values: []any{"2024-13-99", "B"}, expectedKind: analysis.FieldKindString},
	}

	for _, testCase := range testCases {
		t.Run(fmt.Sprintf("%s as %v", testCase.name, testCase.expectedKind), func(t *testing.T) {
			records := make([]dataset.Record, 0, len(testCase.values))
			for _, value := range testCase.values {
				records = append(records, dataset.Record{testCase.name: value})
			}

			fields := analysis.InferFields(newCollection([]string{testCase.name}, records...))

			if len(fields) != 1 {
				t.Fatalf("expected 1 inferred field, got %d", len(fields))
			}
			if fields[0].Kind != testCase.expectedKind {
				t.Errorf("expected kind %v, got %v", testCase.expectedKind, fields[0].Kind)
			}
		})
	}
}

func TestEveryFieldGetsExactlyOneKind(t *testing.T) {
	collection := newCollection(
		[]string{"amount", "category", "date", "refunded", "note"},
		dataset.Record{"amount": 1.0, "category": "A", "date": "2024-01-01", "refunded": true, "note": "x"},
		dataset.Record{"amount": 2.0, "category": "B", "date": "2024-01-02", "refunded": false, "note": nil},
	)

	fields := analysis.InferFields(collection)
	if len(fields) != 5 {
		t.Fatalf("expected 5 inferred fields, got %d", len(fields))
	}

	for _, field := range fields {
		if !field.Kind.IsValid() {
			t.Errorf("field '%s' classified with invalid kind %d", field.Name, field.Kind)
		}
	}
}

func TestFieldSamplesAreBoundedAndDistinct(t *testing.T) {
	records := make([]dataset.Record, 0, 200)
	for i := 0; i < 200; i++ {
		// 100 distinct values, each seen twice.
		records = append(records, dataset.Record{"city": fmt.Sprintf("city-%d", i/2)})
	}

	fields := analysis.InferFields(newCollection([]string{"city"}, records...))

	if len(fields) != 1 {
		t.Fatalf("expected 1 inferred field, got %d", len(fields))
	}

	samples := fields[0].Values
	if len(samples) != analysis.MaxFieldSampleValues {
		t.Errorf("expected %d samples, got %d", analysis.MaxFieldSampleValues, len(samples))
	}
	for i, sample := range samples {
		expected := fmt.Sprintf("city-%d", i)
		if sample != expected {
			t.Errorf("expected sample %d to be '%s' (first-seen order), got '%s'", i, expected, sample)
		}
	}
}

func TestSampleDeduplicationIsCaseSensitive(t *testing.T) {
	collection := newCollection(
		[]string{"category"},
		dataset.Record{"category": "Food"},
		dataset.Record{"category": "food"},
		dataset.Record{"category": "Food"},
	)

	fields := analysis.InferFields(collection)
	if !slices.Equal(fields[0].Values, []string{"Food", "food"}) {
		t.Errorf("expected case-sensitive distinct samples [Food food], got %v", fields[0].Values)
	}
}

func TestFieldsAbsentFromFirstRecordAreNeverDiscovered(t *testing.T) {
	collection := newCollection(
		[]string{"amount"},
		dataset.Record{"amount": 10.0},
		dataset.Record{"amount": 20.0, "extra": "only here"},
	)

	fields := analysis.InferFields(collection)

	for _, field := range fields {
		if field.Name == "extra" {
			t.Error("field missing from the first record should not be discovered")
		}
	}
}

func TestAllNullFieldsAreSkipped(t *testing.T) {
	collection := newCollection(
		[]string{"amount", "ghost"},
		dataset.Record{"amount": 10.0, "ghost": nil},
		dataset.Record{"amount": 20.0, "ghost": nil},
	)

	fields := analysis.InferFields(collection)

	if len(fields) != 1 || fields[0].Name != "amount" {
		t.Errorf("expected only 'amount' to be inferred, got %v", fields)
	}
}

func TestInferFieldsOnEmptyCollection(t *testing.T) {
	fields := analysis.InferFields(dataset.Collection{})
	if len(fields) != 0 {
		t.Errorf("expected no inferred fields for empty collection, got %v", fields)
	}
}

func TestDefaultSelection(t *testing.T) {
	// "id" has too many distinct values to qualify as the default dimension; "category" cycles
	// through 3 values and does qualify.
	records := make([]dataset.Record, 0, 25)
	for i := 0; i < 25; i++ {
		records = append(records, dataset.Record{
			"id":       fmt.Sprintf("id-%d", i),
			"date":     fmt.Sprintf("2024-01-%02d", i%28+1),
			"amount":   float64(i) * 10,
			"quantity": float64(i),
			"category": fmt.Sprintf("cat-%d", i%3),
		})
	}
	collection := newCollection([]string{"id", "date", "amount", "quantity", "category"}, records...)

	fields := analysis.InferFields(collection)
	selection := analysis.DefaultSelection(fields)

	if !slices.Equal(selection.Metrics, []string{"amount"}) {
		t.Errorf("expected first numeric field 'amount' as sole metric, got %v", selection.Metrics)
	}
	if !slices.Equal(selection.Dimensions, []string{"category"}) {
		t.Errorf(
			"expected first low-cardinality string field 'category' as sole dimension, got %v",
			selection.Dimensions,
		)
	}
	if selection.DateRange != nil {
		t.Errorf("expected no date range in default selection, got %v", *selection.DateRange)
	}
}

func TestDefaultSelectionSkipsSingleValuedDimensions(t *testing.T) {
	records := make([]dataset.Record, 0, 30)
	for i := 0; i < 30; i++ {
		records = append(records, dataset.Record{
			"constant": "same",
			"unique":   fmt.Sprintf("value-%d", i),
		})
	}

	fields := analysis.InferFields(newCollection([]string{"constant", "unique"}, records...))
	selection := analysis.DefaultSelection(fields)

	if len(selection.Metrics) != 0 {
		t.Errorf("expected no default metric without numeric fields, got %v", selection.Metrics)
	}
	// "constant" has 1 distinct value, "unique" has 30: neither is in the 2-19 range.
	if len(selection.Dimensions) != 0 {
		t.Errorf("expected no default dimension to qualify, got %v", selection.Dimensions)
	}
}
