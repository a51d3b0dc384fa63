package host

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"neuromap/internal/dataset"
	"neuromap/internal/model"
	"neuromap/internal/params"
	"neuromap/internal/storage"
)

var ErrNoSnapshotStore = errors.New("no snapshot store attached")

// SaveSnapshot persists the current dataset. The Snapshot parameter names the
// record; when it is empty a new id is generated and written back to it.
func (o *Operator) SaveSnapshot(ctx context.Context) (string, error) {
	if o.snapshots == nil {
		return "", ErrNoSnapshotStore
	}

	id := strings.TrimSpace(o.values.Text(params.ParSnapshot))
	if id == "" {
		id = uuid.NewString()
	}
	name := o.sessionName
	if name == "" {
		name = id
	}

	samples := o.store.Samples()
	inputDim, outputDim := o.store.Dims()
	if len(samples) == 0 {
		inputDim, outputDim = o.inputDim, o.outputDim
	}
	snapshot := model.DatasetSnapshot{
		VersionedRecord: storage.CurrentVersion(),
		ID:              id,
		Name:            name,
		CreatedAt:       o.now().UTC(),
		InputDim:        inputDim,
		OutputDim:       outputDim,
		Normalized:      o.store.Ready(),
		InputNames:      featureNames(o.inputNames, true, inputDim),
		OutputNames:     featureNames(o.outputNames, false, outputDim),
		Samples:         make([]model.SampleRecord, len(samples)),
	}
	for i, sample := range samples {
		snapshot.Samples[i] = model.SampleRecord{Input: sample.Input, Output: sample.Output}
	}

	if err := o.snapshots.SaveSnapshot(ctx, snapshot); err != nil {
		return "", fmt.Errorf("save snapshot %s: %w", id, err)
	}
	if err := o.values.Set(params.ParSnapshot, id); err != nil {
		return "", err
	}
	o.lastSnapshot = id
	o.logger.WithSnapshot(id).InfoContext(ctx, "dataset saved", "size", len(samples))
	return id, nil
}

// LoadSnapshot replaces the dataset with a saved one. Normalization is recomputed
// when the snapshot was saved with a ready profile.
func (o *Operator) LoadSnapshot(ctx context.Context, id string) error {
	if o.snapshots == nil {
		return ErrNoSnapshotStore
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return errors.New("snapshot id is required")
	}

	snapshot, ok, err := o.snapshots.GetSnapshot(ctx, id)
	if err != nil {
		return fmt.Errorf("load snapshot %s: %w", id, err)
	}
	if !ok {
		return fmt.Errorf("snapshot not found: %s", id)
	}

	samples := make([]dataset.Sample, len(snapshot.Samples))
	for i, record := range snapshot.Samples {
		samples[i] = dataset.Sample{Input: record.Input, Output: record.Output}
	}
	if err := o.store.Restore(samples); err != nil {
		return fmt.Errorf("restore snapshot %s: %w", id, err)
	}
	if snapshot.Normalized {
		o.store.RecomputeNormalization()
		o.metrics.Recomputes.Inc()
	}
	o.lastSnapshot = id
	o.updateReadOnly()

	logger := o.logger.WithSnapshot(id)
	if len(samples) > 0 && (snapshot.InputDim != o.inputDim || snapshot.OutputDim != o.outputDim) {
		logger.WarnContext(ctx, "snapshot dimensions differ from configuration",
			"snapshot_input_dim", snapshot.InputDim,
			"snapshot_output_dim", snapshot.OutputDim,
			"input_dim", o.inputDim,
			"output_dim", o.outputDim,
		)
	}
	logger.InfoContext(ctx, "dataset loaded", "size", len(samples), "ready", o.store.Ready())
	return nil
}
