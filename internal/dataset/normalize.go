package dataset

import "math"

// MinSpread is the smallest per-feature range a profile may hold. Narrower ranges
// are widened by half a unit on each side.
const MinSpread = 1e-6

// Profile holds per-feature bounds for the input and output vectors.
type Profile struct {
	InputMin  []float64 `json:"input_min"`
	InputMax  []float64 `json:"input_max"`
	OutputMin []float64 `json:"output_min"`
	OutputMax []float64 `json:"output_max"`
}

func (p Profile) clone() Profile {
	return Profile{
		InputMin:  append([]float64(nil), p.InputMin...),
		InputMax:  append([]float64(nil), p.InputMax...),
		OutputMin: append([]float64(nil), p.OutputMin...),
		OutputMax: append([]float64(nil), p.OutputMax...),
	}
}

// Profile returns a copy of the current bounds and whether they reflect the
// dataset.
func (s *Store) Profile() (Profile, bool) {
	return s.profile.clone(), s.ready
}

// RecomputeNormalization rebuilds the profile from every sample. An empty store
// stays not ready.
func (s *Store) RecomputeNormalization() {
	if len(s.samples) == 0 {
		s.ready = false
		return
	}

	inputDim, outputDim := s.Dims()
	inputMin, inputMax := seedBounds(inputDim)
	outputMin, outputMax := seedBounds(outputDim)
	for _, sample := range s.samples {
		widen(inputMin, inputMax, sample.Input)
		widen(outputMin, outputMax, sample.Output)
	}
	enforceMinSpread(inputMin, inputMax)
	enforceMinSpread(outputMin, outputMax)

	s.profile = Profile{
		InputMin:  inputMin,
		InputMax:  inputMax,
		OutputMin: outputMin,
		OutputMax: outputMax,
	}
	s.ready = true
}

// NormalizeInput maps v into the unit interval of the input bounds. When the
// profile is not ready or v has the wrong length, v itself is returned.
func (s *Store) NormalizeInput(v []float64) []float64 {
	if !s.ready {
		return v
	}
	return s.profile.NormalizeInput(v)
}

// NormalizeOutput is NormalizeInput for the output bounds.
func (s *Store) NormalizeOutput(v []float64) []float64 {
	if !s.ready {
		return v
	}
	return s.profile.NormalizeOutput(v)
}

// DenormalizeOutput maps a unit-interval vector back into output units, with the
// same pass-through fallback as NormalizeOutput.
func (s *Store) DenormalizeOutput(v []float64) []float64 {
	if !s.ready {
		return v
	}
	return s.profile.DenormalizeOutput(v)
}

// NormalizeInput applies the input bounds of p. A vector whose length differs from
// the bounds is returned as is.
func (p Profile) NormalizeInput(v []float64) []float64 {
	if len(v) != len(p.InputMin) || len(v) != len(p.InputMax) {
		return v
	}
	return normalize(v, p.InputMin, p.InputMax)
}

func (p Profile) NormalizeOutput(v []float64) []float64 {
	if len(v) != len(p.OutputMin) || len(v) != len(p.OutputMax) {
		return v
	}
	return normalize(v, p.OutputMin, p.OutputMax)
}

func (p Profile) DenormalizeOutput(v []float64) []float64 {
	if len(v) != len(p.OutputMin) || len(v) != len(p.OutputMax) {
		return v
	}
	out := make([]float64, len(v))
	for i, x := range v {
		lo, hi := p.OutputMin[i], p.OutputMax[i]
		out[i] = x*(hi-lo) + lo
	}
	return out
}

func seedBounds(dim int) (lo, hi []float64) {
	lo = make([]float64, dim)
	hi = make([]float64, dim)
	for i := range lo {
		lo[i] = math.MaxFloat64
		hi[i] = -math.MaxFloat64
	}
	return lo, hi
}

func widen(lo, hi, values []float64) {
	for i := 0; i < len(values) && i < len(lo); i++ {
		lo[i] = math.Min(lo[i], values[i])
		hi[i] = math.Max(hi[i], values[i])
	}
}

func enforceMinSpread(lo, hi []float64) {
	for i := range lo {
		if math.Abs(hi[i]-lo[i]) < MinSpread {
			lo[i] -= 0.5
			hi[i] += 0.5
		}
	}
}

func normalize(v, lo, hi []float64) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		span := hi[i] - lo[i]
		if math.Abs(span) < MinSpread {
			out[i] = 0.5
			continue
		}
		out[i] = (x - lo[i]) / span
	}
	return out
}
