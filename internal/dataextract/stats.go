package dataextract

import "fmt"

type ColumnStats struct {
	Name string  `json:"name"`
	Min  float64 `json:"min"`
	Avg  float64 `json:"avg"`
	Max  float64 `json:"max"`
}

// FrameColumnStats summarizes every channel of a recording.
func FrameColumnStats(table FrameTable) ([]ColumnStats, error) {
	if len(table.Rows) == 0 {
		return nil, nil
	}
	width := len(table.Columns)
	stats := make([]ColumnStats, width)
	for rowIdx, row := range table.Rows {
		if len(row.Values) != width {
			return nil, fmt.Errorf(
				"inconsistent frame width at row %d: got=%d want=%d",
				row.Index,
				len(row.Values),
				width,
			)
		}
		for i, value := range row.Values {
			if rowIdx == 0 {
				stats[i] = ColumnStats{Name: table.Columns[i], Min: value, Max: value}
			}
			if value < stats[i].Min {
				stats[i].Min = value
			}
			if value > stats[i].Max {
				stats[i].Max = value
			}
			stats[i].Avg += value
		}
	}
	count := float64(len(table.Rows))
	for i := range stats {
		stats[i].Avg /= count
	}
	return stats, nil
}
