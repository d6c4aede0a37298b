package analysis

import (
	"slices"
	"time"

	"github.com/brightboard/brightboard/dataset"
)

// Bucket labels for the time series chart, e.g. "Jan 24".
const bucketLabelFormat = "Jan 06"

// Group name for records missing a value in the pie chart's dimension field.
const unknownGroupName = "Unknown"

// Pie chart segment colors, assigned by group index modulo the palette size.
var chartColorPalette = [8]string{
	"#4E79A7",
	"#F28E2B",
	"#E15759",
	"#76B7B2",
	"#59A14F",
	"#EDC948",
	"#B07AA1",
	"#FF9DA7",
}

// ChartData is the derived chart input, fully recomputed from the filtered records and current
// selection on every change.
type ChartData struct {
	// Grand total of each selected metric across all records.
	Totals map[string]float64 `json:"totals"`
	// Primary metric summed per month bucket, in ascending time order. Empty when the dataset
	// has no date field or no metric is selected.
	TimeSeries []TimeBucket `json:"timeSeries"`
	// Primary metric summed per primary dimension value, in descending order by sum. Empty when
	// no dimension or no metric is selected.
	Distribution []CategorySegment `json:"distribution"`
}

type TimeBucket struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

type CategorySegment struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Color string  `json:"color"`
}

func BuildChartData(
	records []dataset.Record,
	fields []FieldDescriptor,
	selection Selection,
) ChartData {
	chartData := ChartData{Totals: metricTotals(records, selection.Metrics)}

	if len(selection.Metrics) == 0 {
		return chartData
	}
	primaryMetric := selection.Metrics[0]

	if dateField, hasDateField := firstDateField(fields); hasDateField {
		chartData.TimeSeries = buildTimeSeries(records, dateField, primaryMetric)
	}

	if len(selection.Dimensions) > 0 {
		chartData.Distribution = buildDistribution(records, selection.Dimensions[0], primaryMetric)
	}

	return chartData
}

func metricTotals(records []dataset.Record, metrics []string) map[string]float64 {
	totals := make(map[string]float64, len(metrics))

	for _, metric := range metrics {
		var total float64
		for _, record := range records {
			total += numericValue(record[metric])
		}
		totals[metric] = total
	}

	return totals
}

func buildTimeSeries(records []dataset.Record, dateField string, metric string) []TimeBucket {
	type bucket struct {
		label    string
		earliest time.Time
		sum      float64
	}

	buckets := make(map[string]*bucket)
	for _, record := range records {
		timestamp, ok := parseDate(record[dateField])
		if !ok {
			continue
		}

		label := timestamp.Format(bucketLabelFormat)
		entry, exists := buckets[label]
		if !exists {
			entry = &bucket{label: label, earliest: timestamp}
			buckets[label] = entry
		} else if timestamp.Before(entry.earliest) {
			entry.earliest = timestamp
		}

		entry.sum += numericValue(record[metric])
	}

	sorted := make([]*bucket, 0, len(buckets))
	for _, entry := range buckets {
		sorted = append(sorted, entry)
	}
	// Buckets sort by the earliest timestamp they contain, not by re-parsing the formatted
	// label. Re-parsed labels lose the day and misorder buckets with equal month names from
	// different years.
	slices.SortFunc(sorted, func(bucket1 *bucket, bucket2 *bucket) int {
		return bucket1.earliest.Compare(bucket2.earliest)
	})

	series := make([]TimeBucket, len(sorted))
	for i, entry := range sorted {
		series[i] = TimeBucket{Label: entry.label, Value: entry.sum}
	}
	return series
}

func buildDistribution(
	records []dataset.Record,
	dimension string,
	metric string,
) []CategorySegment {
	type group struct {
		name string
		sum  float64
		// Position of the group's first record, to keep encounter order on tied sums.
		encounterIndex int
	}

	groups := make(map[string]*group)
	for _, record := range records {
		name := formatValue(record[dimension])
		if name == "" {
			name = unknownGroupName
		}

		entry, exists := groups[name]
		if !exists {
			entry = &group{name: name, encounterIndex: len(groups)}
			groups[name] = entry
		}

		entry.sum += numericValue(record[metric])
	}

	sorted := make([]*group, 0, len(groups))
	for _, entry := range groups {
		sorted = append(sorted, entry)
	}
	slices.SortFunc(sorted, func(group1 *group, group2 *group) int {
		switch {
		case group1.sum > group2.sum:
			return -1
		case group1.sum < group2.sum:
			return 1
		default:
			return group1.encounterIndex - group2.encounterIndex
		}
	})

	segments := make([]CategorySegment, len(sorted))
	for i, entry := range sorted {
		segments[i] = CategorySegment{
			Name:  entry.name,
			Value: entry.sum,
			Color: chartColorPalette[i%len(chartColorPalette)],
		}
	}
	return segments
}
