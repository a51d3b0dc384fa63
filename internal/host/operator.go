// Package host adapts the sample store to a host's per-frame operator lifecycle:
// parameter configuration, a step callback, and discrete pulse triggers.
package host

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"neuromap/internal/dataset"
	"neuromap/internal/logging"
	"neuromap/internal/params"
	"neuromap/internal/storage"
)

// MinTrainingSamples is the smallest dataset a train trigger acts on.
const MinTrainingSamples = 2

var ErrUnknownTrigger = errors.New("unknown trigger")

type Option func(*Operator)

func WithTrainer(t Trainer) Option {
	return func(o *Operator) { o.trainer = t }
}

// WithSnapshotStore enables the Savedataset and Loaddataset triggers.
func WithSnapshotStore(s storage.Store) Option {
	return func(o *Operator) { o.snapshots = s }
}

func WithLogger(l *logging.Logger) Option {
	return func(o *Operator) {
		if l != nil {
			o.logger = l
		}
	}
}

func WithMetrics(m *Metrics) Option {
	return func(o *Operator) {
		if m != nil {
			o.metrics = m
		}
	}
}

// WithMaxSampleRate caps accepted add-sample triggers per second. Zero or less
// disables the cap.
func WithMaxSampleRate(perSecond float64) Option {
	return func(o *Operator) {
		if perSecond <= 0 {
			o.limiter = nil
			return
		}
		o.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

func WithClock(now func() time.Time) Option {
	return func(o *Operator) {
		if now != nil {
			o.now = now
		}
	}
}

// WithSessionName sets the name recorded on saved snapshots.
func WithSessionName(name string) Option {
	return func(o *Operator) { o.sessionName = name }
}

// WithChannelNames sets the feature names recorded on saved snapshots. Names are
// used only when their count matches the configured dimension.
func WithChannelNames(inputs, outputs []string) Option {
	return func(o *Operator) {
		o.inputNames = append([]string(nil), inputs...)
		o.outputNames = append([]string(nil), outputs...)
	}
}

// Operator drives collection, normalization, training and inference for one host
// node. Like the dataset.Store it owns, it is not safe for concurrent use.
type Operator struct {
	store  *dataset.Store
	values *params.Values

	mode      params.Mode
	inputDim  int
	outputDim int
	normalize bool

	pendingAdd   bool
	pendingTrain bool

	trainer      Trainer
	model        Model
	trained      bool
	// Bounds the model was trained against; nil when it was trained on raw values.
	modelProfile *dataset.Profile

	snapshots    storage.Store
	sessionName  string
	inputNames   []string
	outputNames  []string
	lastSnapshot string

	limiter *rate.Limiter
	metrics *Metrics
	logger  *logging.Logger
	now     func() time.Time
}

func NewOperator(opts ...Option) *Operator {
	o := &Operator{
		store:   dataset.NewStore(),
		values:  params.Defaults(),
		mode:    params.ModeCollect,
		logger:  logging.NoopLogger(),
		metrics: NewMetrics(nil),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.readValues()
	o.logger.Info("operator initialized", "mode", o.mode.String())
	return o
}

// Configure replaces the operator's parameter values. A mode change takes effect
// on the next Step. A nil values is ignored.
func (o *Operator) Configure(values *params.Values) {
	if values == nil {
		return
	}
	size := o.values.Int(params.ParDatasetSize)
	loss := o.values.Float(params.ParLoss)
	o.values = values.Clone()
	_ = o.values.SetReadOnly(params.ParDatasetSize, size)
	_ = o.values.SetReadOnly(params.ParLoss, loss)
	o.readValues()
}

// Step runs one host execution step.
func (o *Operator) Step(ctx context.Context, in Inputs) (Output, error) {
	defer func() {
		o.pendingAdd = false
		o.pendingTrain = false
		o.updateReadOnly()
	}()

	o.readValues()
	if mode := o.values.Mode(); mode != o.mode {
		o.enterMode(ctx, mode)
	}

	switch o.mode {
	case params.ModeCollect:
		if o.pendingAdd {
			o.collect(ctx, in)
		}
	case params.ModeTrain:
		if o.pendingTrain {
			if err := o.train(ctx); err != nil {
				return passThrough(in.Input), err
			}
		}
	case params.ModeRun:
		return o.infer(ctx, in), nil
	}
	return passThrough(in.Input), nil
}

// OnTrigger handles a pulse parameter. Add-sample and train requests are acted on
// by the next Step in the matching mode.
func (o *Operator) OnTrigger(ctx context.Context, name string) error {
	spec, ok := o.values.Schema().Lookup(name)
	if !ok || spec.Kind != params.KindPulse {
		return fmt.Errorf("%w: %s", ErrUnknownTrigger, name)
	}
	o.logger.DebugContext(ctx, "trigger pressed", "trigger", spec.Name)

	switch spec.Name {
	case params.ParAddSample:
		o.pendingAdd = true
	case params.ParTrain:
		o.pendingTrain = true
	case params.ParClearDataset:
		o.store.Clear()
		o.updateReadOnly()
		o.logger.InfoContext(ctx, "dataset cleared")
	case params.ParSaveDataset:
		_, err := o.SaveSnapshot(ctx)
		return err
	case params.ParLoadDataset:
		return o.LoadSnapshot(ctx, o.values.Text(params.ParSnapshot))
	case params.ParSaveModel, params.ParLoadModel:
		o.logger.WarnContext(ctx, "model persistence is not available", "trigger", spec.Name)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownTrigger, name)
	}
	return nil
}

func (o *Operator) Mode() params.Mode {
	return o.mode
}

func (o *Operator) Trained() bool {
	return o.trained
}

// Dataset exposes the operator's sample store to the owning caller.
func (o *Operator) Dataset() *dataset.Store {
	return o.store
}

// Values returns a copy of the current parameter values, including read-only
// status parameters.
func (o *Operator) Values() *params.Values {
	return o.values.Clone()
}

func (o *Operator) LastSnapshotID() string {
	return o.lastSnapshot
}

func (o *Operator) readValues() {
	o.inputDim = o.values.Int(params.ParInDim)
	o.outputDim = o.values.Int(params.ParOutDim)
	o.normalize = o.values.Bool(params.ParNormalize)
}

func (o *Operator) enterMode(ctx context.Context, mode params.Mode) {
	o.logger.LogModeChange(ctx, o.mode, mode)
	o.mode = mode
	if mode == params.ModeTrain && o.normalize {
		o.store.RecomputeNormalization()
		o.metrics.Recomputes.Inc()
		o.logger.InfoContext(ctx, "normalization updated", "ready", o.store.Ready(), "size", o.store.Len())
	}
}

func (o *Operator) collect(ctx context.Context, in Inputs) {
	if in.Input == nil || in.Target == nil {
		o.metrics.SamplesRejected.Inc()
		o.logger.WarnContext(ctx, "cannot add sample without both input and target sources")
		return
	}
	if o.limiter != nil && !o.limiter.AllowN(o.now(), 1) {
		o.metrics.SamplesThrottled.Inc()
		o.logger.DebugContext(ctx, "sample throttled", "size", o.store.Len())
		return
	}

	err := o.store.AppendSample(in.Input, in.Target, o.inputDim, o.outputDim)
	if err != nil {
		o.metrics.SamplesRejected.Inc()
	} else {
		o.metrics.SamplesAppended.Inc()
	}
	o.logger.WithDims(o.inputDim, o.outputDim).LogAppend(ctx, o.store.Len(), err)
}

func (o *Operator) train(ctx context.Context) error {
	size := o.store.Len()
	if size < MinTrainingSamples {
		o.logger.WarnContext(ctx, "cannot train without enough samples", "size", size, "required", MinTrainingSamples)
		return nil
	}
	if o.trainer == nil {
		o.logger.WarnContext(ctx, "cannot train without a trainer", "size", size)
		return nil
	}

	set := o.trainingSet()
	opts := TrainOptions{
		Epochs:       o.values.Int(params.ParEpochs),
		LearnRate:    o.values.Float(params.ParLearnRate),
		HiddenLayers: o.values.Int(params.ParHiddenLayers),
		HiddenUnits:  o.values.Int(params.ParHiddenUnits),
	}
	o.logger.InfoContext(ctx, "training", "size", size, "normalized", set.Normalized, "epochs", opts.Epochs)

	model, loss, err := o.trainer.Train(ctx, set, opts)
	if err != nil {
		o.model = nil
		o.trained = false
		o.modelProfile = nil
		return fmt.Errorf("train: %w", err)
	}
	o.model = model
	o.trained = model != nil
	o.modelProfile = nil
	if set.Normalized {
		profile, _ := o.store.Profile()
		o.modelProfile = &profile
	}
	_ = o.values.SetReadOnly(params.ParLoss, loss)
	o.logger.InfoContext(ctx, "training completed", "loss", loss)
	return nil
}

func (o *Operator) trainingSet() TrainingSet {
	samples := o.store.Samples()
	normalized := o.normalize && o.store.Ready()
	set := TrainingSet{
		Inputs:     make([][]float64, len(samples)),
		Outputs:    make([][]float64, len(samples)),
		Normalized: normalized,
	}
	for i, sample := range samples {
		set.Inputs[i] = sample.Input
		set.Outputs[i] = sample.Output
		if normalized {
			set.Inputs[i] = o.store.NormalizeInput(sample.Input)
			set.Outputs[i] = o.store.NormalizeOutput(sample.Output)
		}
	}
	return set
}

// infer maps the input through the trained model using the bounds captured at
// training time, so later dataset edits or Normalize toggles do not change it.
// Until a model is trained the input passes through.
func (o *Operator) infer(ctx context.Context, in Inputs) Output {
	if !o.trained || o.model == nil {
		return passThrough(in.Input)
	}
	if in.Input == nil {
		return vectorOutput(nil, o.outputDim)
	}

	x := dataset.Frame(in.Input, o.inputDim)
	if o.modelProfile != nil {
		x = o.modelProfile.NormalizeInput(x)
	}
	y, err := o.model.Predict(x)
	if err != nil {
		o.logger.WarnContext(ctx, "inference failed", "error", err)
		return vectorOutput(nil, o.outputDim)
	}
	if o.modelProfile != nil {
		y = o.modelProfile.DenormalizeOutput(y)
	}
	return vectorOutput(y, o.outputDim)
}

func (o *Operator) updateReadOnly() {
	size := o.store.Len()
	_ = o.values.SetReadOnly(params.ParDatasetSize, size)
	o.metrics.DatasetSize.Set(float64(size))
}
