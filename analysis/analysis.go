// Package analysis derives charts from uploaded datasets: it infers the semantic kind of each
// record field, filters records by date range, and aggregates metric fields into time series and
// category distributions.
package analysis

import (
	"time"

	"github.com/brightboard/brightboard/dataset"
)

// Analysis is the full derived state for one dataset: its inferred fields, the selection the
// charts were built with, and the chart data itself.
type Analysis struct {
	Fields    []FieldDescriptor `json:"fields"`
	Selection Selection         `json:"selection"`
	Charts    ChartData         `json:"charts"`
}

// RunAnalysis infers fields from the given records and builds chart data for the given
// selection. An empty selection (as when a dataset is first loaded, or the active dataset
// switches) falls back to the auto-computed default selection. Everything is recomputed from
// scratch; nothing is cached between runs.
func RunAnalysis(collection dataset.Collection, selection Selection, now time.Time) Analysis {
	fields := InferFields(collection)

	if selection.IsEmpty() {
		selection = DefaultSelection(fields)
	}

	filtered := FilterByDateRange(collection.Records, fields, selection.DateRange, now)

	return Analysis{
		Fields:    fields,
		Selection: selection,
		Charts:    BuildChartData(filtered, fields, selection),
	}
}
