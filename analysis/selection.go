package analysis

// Selection is the set of fields currently chosen for charting: metric fields to sum, dimension
// fields to group by, and an optional date range filter. The first metric and first dimension are
// the "primary" ones used for the charts.
type Selection struct {
	Metrics    []string   `json:"metrics"`
	Dimensions []string   `json:"dimensions"`
	DateRange  *DateRange `json:"dateRange,omitempty"`
}

func (selection Selection) IsEmpty() bool {
	return len(selection.Metrics) == 0 && len(selection.Dimensions) == 0 &&
		selection.DateRange == nil
}

// Dimension auto-selection bounds: a string field only qualifies as the default dimension when
// its distinct sample count falls in this range. Higher-cardinality fields make unreadable pie
// charts, and single-valued fields make pointless ones.
const (
	minDimensionCardinality = 2
	maxDimensionCardinality = 19
)

// DefaultSelection computes the selection applied when a dataset is first loaded (and re-applied
// whenever the active dataset switches): the first NUMBER field becomes the sole metric, the
// first qualifying STRING field becomes the sole dimension, and no date range is set. Either part
// stays empty if no field qualifies.
func DefaultSelection(fields []FieldDescriptor) Selection {
	var selection Selection

	for _, field := range fields {
		if field.Kind == FieldKindNumber {
			selection.Metrics = []string{field.Name}
			break
		}
	}

	for _, field := range fields {
		if field.Kind != FieldKindString {
			continue
		}
		cardinality := len(field.Values)
		if cardinality >= minDimensionCardinality && cardinality <= maxDimensionCardinality {
			selection.Dimensions = []string{field.Name}
			break
		}
	}

	return selection
}
