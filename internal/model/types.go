package model

import "time"

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// SampleRecord is one persisted input/output pair.
type SampleRecord struct {
	Input  []float64 `json:"input"`
	Output []float64 `json:"output"`
}

// DatasetSnapshot is a saved collection session.
type DatasetSnapshot struct {
	VersionedRecord
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	CreatedAt   time.Time      `json:"created_at"`
	InputDim    int            `json:"input_dim"`
	OutputDim   int            `json:"output_dim"`
	Normalized  bool           `json:"normalized"`
	InputNames  []string       `json:"input_names,omitempty"`
	OutputNames []string       `json:"output_names,omitempty"`
	Samples     []SampleRecord `json:"samples"`
}

// SnapshotInfo is the listing projection of a DatasetSnapshot.
type SnapshotInfo struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	CreatedAt   time.Time `json:"created_at"`
	InputDim    int       `json:"input_dim"`
	OutputDim   int       `json:"output_dim"`
	SampleCount int       `json:"sample_count"`
	Normalized  bool      `json:"normalized"`
}

func (s DatasetSnapshot) Info() SnapshotInfo {
	return SnapshotInfo{
		ID:          s.ID,
		Name:        s.Name,
		CreatedAt:   s.CreatedAt,
		InputDim:    s.InputDim,
		OutputDim:   s.OutputDim,
		SampleCount: len(s.Samples),
		Normalized:  s.Normalized,
	}
}

// Clone returns a deep copy.
func (s DatasetSnapshot) Clone() DatasetSnapshot {
	out := s
	out.InputNames = append([]string(nil), s.InputNames...)
	out.OutputNames = append([]string(nil), s.OutputNames...)
	out.Samples = make([]SampleRecord, len(s.Samples))
	for i, sample := range s.Samples {
		out.Samples[i] = SampleRecord{
			Input:  append([]float64(nil), sample.Input...),
			Output: append([]float64(nil), sample.Output...),
		}
	}
	return out
}
