// Package dataset collects paired input/output samples for a mapping session and
// maintains the per-feature min-max normalization derived from them.
//
// A Store has a single owner. It performs no locking and must not be used from more
// than one goroutine at a time.
package dataset

import (
	"errors"
	"fmt"
)

var (
	ErrNilSource         = errors.New("channel source is nil")
	ErrEmptySource       = errors.New("channel source has no samples")
	ErrInvalidDimension  = errors.New("dimension must be at least 1")
	ErrDimensionMismatch = errors.New("sample dimension mismatch")
)

// Sample is one paired observation. Vectors held by a Store are never modified.
type Sample struct {
	Input  []float64 `json:"input"`
	Output []float64 `json:"output"`
}

func (s Sample) clone() Sample {
	return Sample{
		Input:  append([]float64(nil), s.Input...),
		Output: append([]float64(nil), s.Output...),
	}
}

type Store struct {
	samples []Sample
	profile Profile
	ready   bool
}

func NewStore() *Store {
	return &Store{}
}

// AppendSample extracts one frame from each source and appends the pair. Channels
// missing from an undersupplied source are zero-padded. On error the store is left
// unchanged.
func (s *Store) AppendSample(in, out ChannelSource, inputDim, outputDim int) error {
	if err := validateSource(in); err != nil {
		return fmt.Errorf("input: %w", err)
	}
	if err := validateSource(out); err != nil {
		return fmt.Errorf("output: %w", err)
	}
	if inputDim < 1 || outputDim < 1 {
		return fmt.Errorf("%w: input=%d output=%d", ErrInvalidDimension, inputDim, outputDim)
	}

	input := Frame(in, inputDim)
	output := Frame(out, outputDim)
	if len(input) != inputDim || len(output) != outputDim {
		return fmt.Errorf("%w: extracted input=%d output=%d", ErrDimensionMismatch, len(input), len(output))
	}
	if err := s.checkDims(inputDim, outputDim); err != nil {
		return err
	}

	s.samples = append(s.samples, Sample{Input: input, Output: output})
	s.ready = false
	return nil
}

// Clear drops every sample and the normalization profile.
func (s *Store) Clear() {
	s.samples = nil
	s.profile = Profile{}
	s.ready = false
}

// Restore replaces the dataset with copies of samples. The normalization profile is
// left not ready.
func (s *Store) Restore(samples []Sample) error {
	restored := make([]Sample, 0, len(samples))
	for i, sample := range samples {
		if len(sample.Input) == 0 || len(sample.Output) == 0 {
			return fmt.Errorf("sample %d: %w", i, ErrInvalidDimension)
		}
		if i > 0 && (len(sample.Input) != len(samples[0].Input) || len(sample.Output) != len(samples[0].Output)) {
			return fmt.Errorf("sample %d: %w: got=%d/%d want=%d/%d",
				i,
				ErrDimensionMismatch,
				len(sample.Input),
				len(sample.Output),
				len(samples[0].Input),
				len(samples[0].Output),
			)
		}
		restored = append(restored, sample.clone())
	}
	s.samples = restored
	s.profile = Profile{}
	s.ready = false
	return nil
}

func (s *Store) Len() int {
	return len(s.samples)
}

func (s *Store) Ready() bool {
	return s.ready
}

// Dims returns the input and output dimensions of the held samples, or zeros when
// the store is empty.
func (s *Store) Dims() (inputDim, outputDim int) {
	if len(s.samples) == 0 {
		return 0, 0
	}
	return len(s.samples[0].Input), len(s.samples[0].Output)
}

// Samples returns a deep copy of the dataset in insertion order.
func (s *Store) Samples() []Sample {
	out := make([]Sample, len(s.samples))
	for i, sample := range s.samples {
		out[i] = sample.clone()
	}
	return out
}

func (s *Store) checkDims(inputDim, outputDim int) error {
	wantIn, wantOut := s.Dims()
	if len(s.samples) == 0 || (wantIn == inputDim && wantOut == outputDim) {
		return nil
	}
	return fmt.Errorf("%w: got=%d/%d want=%d/%d", ErrDimensionMismatch, inputDim, outputDim, wantIn, wantOut)
}

func validateSource(src ChannelSource) error {
	if isNil(src) {
		return ErrNilSource
	}
	if src.NumSamples() <= 0 {
		return ErrEmptySource
	}
	return nil
}
