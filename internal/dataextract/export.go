package dataextract

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"neuromap/internal/dataset"
	"neuromap/internal/model"
)

// WriteDatasetCSV writes one row per sample: the input features followed by the
// output features. Names that do not match the sample widths are replaced with
// generated in/out names.
func WriteDatasetCSV(out io.Writer, inputNames, outputNames []string, samples []dataset.Sample) error {
	inputDim, outputDim := len(inputNames), len(outputNames)
	if len(samples) > 0 {
		inputDim, outputDim = len(samples[0].Input), len(samples[0].Output)
	}

	writer := csv.NewWriter(out)
	header := append(columnNames(inputNames, "in", inputDim), columnNames(outputNames, "out", outputDim)...)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write dataset csv header: %w", err)
	}

	record := make([]string, 0, len(header))
	for i, sample := range samples {
		if len(sample.Input) != inputDim || len(sample.Output) != outputDim {
			return fmt.Errorf(
				"dataset sample %d shape mismatch: got=%d/%d want=%d/%d",
				i,
				len(sample.Input),
				len(sample.Output),
				inputDim,
				outputDim,
			)
		}
		record = record[:0]
		for _, v := range sample.Input {
			record = append(record, formatValue(v))
		}
		for _, v := range sample.Output {
			record = append(record, formatValue(v))
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write dataset csv row %d: %w", i+1, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush dataset csv: %w", err)
	}
	return nil
}

// WriteSnapshotCSV writes the raw samples of a saved snapshot.
func WriteSnapshotCSV(out io.Writer, snapshot model.DatasetSnapshot) error {
	return WriteDatasetCSV(out, snapshot.InputNames, snapshot.OutputNames, SnapshotSamples(snapshot))
}

func WriteDatasetFile(path string, inputNames, outputNames []string, samples []dataset.Sample) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("dataset file path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteDatasetCSV(f, inputNames, outputNames, samples); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// SnapshotSamples converts persisted records into dataset samples.
func SnapshotSamples(snapshot model.DatasetSnapshot) []dataset.Sample {
	samples := make([]dataset.Sample, len(snapshot.Samples))
	for i, record := range snapshot.Samples {
		samples[i] = dataset.Sample{
			Input:  append([]float64(nil), record.Input...),
			Output: append([]float64(nil), record.Output...),
		}
	}
	return samples
}

func columnNames(names []string, prefix string, dim int) []string {
	if len(names) == dim {
		return append([]string(nil), names...)
	}
	out := make([]string, dim)
	for i := range out {
		out[i] = prefix + strconv.Itoa(i+1)
	}
	return out
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
