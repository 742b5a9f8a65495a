package utils

// IsValidInterval guards the ClickHouse toStartOf<Interval> interpolation in
// the stats queries.
func IsValidInterval(interval string) bool {
	switch interval {
	case "Minute", "Hour", "Day", "Week", "Month", "Quarter", "Year":
		return true
	default:
		return false
	}
}
