// Package dataextract reads host channel recordings from CSV and writes collected
// datasets back out as CSV.
package dataextract

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"neuromap/internal/dataset"
)

// FrameRow is one recorded frame: the first time-sample of every channel.
type FrameRow struct {
	Index  int       `json:"index"`
	Values []float64 `json:"values"`
}

// FrameTable is a channel recording. Columns holds the channel names in order.
type FrameTable struct {
	Name    string     `json:"name"`
	Columns []string   `json:"columns"`
	Rows    []FrameRow `json:"rows"`
}

func (t FrameTable) Len() int {
	return len(t.Rows)
}

// Block returns row i as a single-sample channel block named after the columns.
func (t FrameTable) Block(i int) *dataset.Block[float64] {
	if i < 0 || i >= len(t.Rows) {
		return nil
	}
	block := dataset.NewBlock(t.Rows[i].Values...)
	block.Names = append([]string(nil), t.Columns...)
	return block
}

// ReadFrameCSV reads a recording whose header names the channels and whose rows
// are frames. A leading "t" or "time" column is treated as a timestamp and
// skipped. Blank rows are ignored.
func ReadFrameCSV(in io.Reader, name string) (FrameTable, error) {
	reader := csv.NewReader(in)
	reader.FieldsPerRecord = -1

	table := FrameTable{Name: strings.TrimSpace(name)}
	header, err := reader.Read()
	if err == io.EOF {
		return table, nil
	}
	if err != nil {
		return FrameTable{}, fmt.Errorf("read frame csv header: %w", err)
	}

	skip := -1
	for i, field := range header {
		key := strings.TrimSpace(field)
		switch strings.ToLower(key) {
		case "t", "time":
			if skip < 0 {
				skip = i
				continue
			}
		}
		if key == "" {
			key = fmt.Sprintf("chan%d", len(table.Columns)+1)
		}
		table.Columns = append(table.Columns, key)
	}
	if len(table.Columns) == 0 {
		return FrameTable{}, fmt.Errorf("frame csv has no channel columns")
	}

	rows := make([]FrameRow, 0, 256)
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return FrameTable{}, fmt.Errorf("read frame csv line %d: %w", line, err)
		}
		if blankRecord(record) {
			continue
		}
		if len(record) != len(header) {
			return FrameTable{}, fmt.Errorf(
				"frame csv line %d width mismatch: got=%d want=%d",
				line,
				len(record),
				len(header),
			)
		}

		values := make([]float64, 0, len(table.Columns))
		for i, raw := range record {
			if i == skip {
				continue
			}
			value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
			if err != nil {
				return FrameTable{}, fmt.Errorf("parse frame csv line %d column %s: %w", line, header[i], err)
			}
			values = append(values, value)
		}
		rows = append(rows, FrameRow{Index: len(rows) + 1, Values: values})
	}
	table.Rows = rows
	return table, nil
}

// ReadFrameFile reads a CSV recording from disk. The table is named after the
// path.
func ReadFrameFile(path string) (FrameTable, error) {
	if strings.TrimSpace(path) == "" {
		return FrameTable{}, fmt.Errorf("frame file path is required")
	}
	f, err := os.Open(path)
	if err != nil {
		return FrameTable{}, err
	}
	defer f.Close()

	table, err := ReadFrameCSV(f, path)
	if err != nil {
		return FrameTable{}, fmt.Errorf("%s: %w", path, err)
	}
	return table, nil
}

func blankRecord(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
