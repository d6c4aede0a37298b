package analysis

import (
	"time"

	"hermannm.dev/enumnames"
)

type DateRange uint8

const (
	DateRangeLast7Days DateRange = iota + 1
	DateRangeLast30Days
	DateRangeLast90Days
	DateRangeLastYear
)

var dateRangeMap = enumnames.NewMap(map[DateRange]string{
	DateRangeLast7Days:  "LAST_7_DAYS",
	DateRangeLast30Days: "LAST_30_DAYS",
	DateRangeLast90Days: "LAST_90_DAYS",
	DateRangeLastYear:   "LAST_YEAR",
})

func (dateRange DateRange) Duration() time.Duration {
	switch dateRange {
	case DateRangeLast7Days:
		return 7 * 24 * time.Hour
	case DateRangeLast30Days:
		return 30 * 24 * time.Hour
	case DateRangeLast90Days:
		return 90 * 24 * time.Hour
	case DateRangeLastYear:
		return 365 * 24 * time.Hour
	default:
		return 0
	}
}

func (dateRange DateRange) IsValid() bool {
	return dateRangeMap.ContainsEnumValue(dateRange)
}

func (dateRange DateRange) String() string {
	return dateRangeMap.GetNameOrFallback(dateRange, "INVALID_DATE_RANGE")
}

func (dateRange DateRange) MarshalJSON() ([]byte, error) {
	return dateRangeMap.MarshalToNameJSON(dateRange)
}

func (dateRange *DateRange) UnmarshalJSON(bytes []byte) error {
	return dateRangeMap.UnmarshalFromNameJSON(bytes, dateRange)
}
