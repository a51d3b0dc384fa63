package host

import (
	"context"

	"neuromap/internal/dataset"
)

// Inputs are the two live sources the host hands to the operator each step.
// Target may be nil outside of collection.
type Inputs struct {
	Input  dataset.ChannelSource
	Target dataset.ChannelSource
}

// Output is the channel block the operator produces for a step.
type Output struct {
	Names    []string
	Channels [][]float64
}

func (o Output) NumChannels() int {
	return len(o.Channels)
}

// TrainingSet is the dataset handed to a Trainer, normalized when the operator's
// profile is ready.
type TrainingSet struct {
	Inputs     [][]float64
	Outputs    [][]float64
	Normalized bool
}

type TrainOptions struct {
	Epochs       int
	LearnRate    float64
	HiddenLayers int
	HiddenUnits  int
}

// Trainer fits a Model to a training set and reports the final loss.
type Trainer interface {
	Train(ctx context.Context, set TrainingSet, opts TrainOptions) (Model, float64, error)
}

// Model maps one input vector to one output vector in the training set's units.
type Model interface {
	Predict(input []float64) ([]float64, error)
}
