package neuromap

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"neuromap/internal/dataextract"
	"neuromap/internal/dataset"
	"neuromap/internal/host"
	"neuromap/internal/logging"
	"neuromap/internal/model"
	"neuromap/internal/params"
	"neuromap/internal/storage"
)

const (
	defaultExportsDir = "exports"
	defaultDBPath     = "neuromap.db"
	defaultFrameRate  = 60.0
)

type Options struct {
	StoreKind  string
	DBPath     string
	ExportsDir string
	Logger     *logging.Logger
	Registerer prometheus.Registerer
	Trainer    host.Trainer
}

type Client struct {
	store   storage.Store
	logger  *logging.Logger
	metrics *host.Metrics
	trainer host.Trainer

	exportsDir  string
	initialized bool
}

type CollectRequest struct {
	Inputs  dataextract.FrameTable
	Targets dataextract.FrameTable
	// Values configures the operator. Nil means the schema defaults.
	Values *params.Values
	Name   string
	// FrameRate is the recording rate used to pace the sample rate limit.
	FrameRate     float64
	MaxSampleRate float64
}

type CollectSummary struct {
	SnapshotID string
	Frames     int
	Samples    int
	InputDim   int
	OutputDim  int
	Normalized bool
	Profile    *dataset.Profile
	Trained    bool
	Loss       float64
	InputStats []dataextract.ColumnStats
}

type SnapshotsRequest struct {
	Limit int
}

type ProfileRequest struct {
	ID     string
	Latest bool
}

type ProfileSummary struct {
	Info    model.SnapshotInfo
	Ready   bool
	Profile dataset.Profile
}

type ExportRequest struct {
	ID      string
	Latest  bool
	OutPath string
	// Normalized writes the samples mapped through the recomputed profile.
	Normalized bool
}

type ExportSummary struct {
	ID      string
	Path    string
	Samples int
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	exportsDir := opts.ExportsDir
	if exportsDir == "" {
		exportsDir = defaultExportsDir
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NoopLogger()
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}

	return &Client{
		store:      store,
		logger:     logger,
		metrics:    host.NewMetrics(opts.Registerer),
		trainer:    opts.Trainer,
		exportsDir: exportsDir,
	}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	if c.initialized {
		return nil
	}
	if err := c.store.Init(ctx); err != nil {
		return err
	}
	c.initialized = true
	return nil
}

// Collect replays paired input and target recordings through a host operator:
// every frame is added as a sample, the operator then enters Train mode, and the
// resulting dataset is saved as a snapshot.
func (c *Client) Collect(ctx context.Context, req CollectRequest) (CollectSummary, error) {
	if req.Inputs.Len() == 0 {
		return CollectSummary{}, errors.New("collect requires at least one input frame")
	}
	if req.Inputs.Len() != req.Targets.Len() {
		return CollectSummary{}, fmt.Errorf(
			"input and target frame counts differ: inputs=%d targets=%d",
			req.Inputs.Len(),
			req.Targets.Len(),
		)
	}
	if req.FrameRate <= 0 {
		req.FrameRate = defaultFrameRate
	}
	if err := c.Init(ctx); err != nil {
		return CollectSummary{}, err
	}

	values := params.Defaults()
	if req.Values != nil {
		values = req.Values.Clone()
	}
	if err := values.Set(params.ParMode, params.ModeCollect.String()); err != nil {
		return CollectSummary{}, err
	}

	// Frames are paced by the recording rate, not wall time.
	clock := time.Unix(0, 0).UTC()
	frameStep := time.Duration(float64(time.Second) / req.FrameRate)
	now := func() time.Time { return clock }

	opts := []host.Option{
		host.WithSnapshotStore(c.store),
		host.WithLogger(c.logger),
		host.WithMetrics(c.metrics),
		host.WithMaxSampleRate(req.MaxSampleRate),
		host.WithClock(now),
		host.WithSessionName(req.Name),
		host.WithChannelNames(req.Inputs.Columns, req.Targets.Columns),
	}
	if c.trainer != nil {
		opts = append(opts, host.WithTrainer(c.trainer))
	}
	op := host.NewOperator(opts...)
	op.Configure(values)

	for i := 0; i < req.Inputs.Len(); i++ {
		if err := ctx.Err(); err != nil {
			return CollectSummary{}, err
		}
		if err := op.OnTrigger(ctx, params.ParAddSample); err != nil {
			return CollectSummary{}, err
		}
		in := host.Inputs{Input: req.Inputs.Block(i), Target: req.Targets.Block(i)}
		if _, err := op.Step(ctx, in); err != nil {
			return CollectSummary{}, fmt.Errorf("frame %d: %w", i+1, err)
		}
		clock = clock.Add(frameStep)
	}

	if err := values.Set(params.ParMode, params.ModeTrain.String()); err != nil {
		return CollectSummary{}, err
	}
	op.Configure(values)
	if err := op.OnTrigger(ctx, params.ParTrain); err != nil {
		return CollectSummary{}, err
	}
	if _, err := op.Step(ctx, host.Inputs{}); err != nil {
		return CollectSummary{}, err
	}
	if err := op.OnTrigger(ctx, params.ParSaveDataset); err != nil {
		return CollectSummary{}, err
	}

	stats, err := dataextract.FrameColumnStats(req.Inputs)
	if err != nil {
		return CollectSummary{}, err
	}
	store := op.Dataset()
	inputDim, outputDim := store.Dims()
	summary := CollectSummary{
		SnapshotID: op.LastSnapshotID(),
		Frames:     req.Inputs.Len(),
		Samples:    store.Len(),
		InputDim:   inputDim,
		OutputDim:  outputDim,
		Normalized: store.Ready(),
		Trained:    op.Trained(),
		Loss:       op.Values().Float(params.ParLoss),
		InputStats: stats,
	}
	if profile, ok := store.Profile(); ok {
		summary.Profile = &profile
	}
	return summary, nil
}

// Snapshots lists saved datasets, newest first.
func (c *Client) Snapshots(ctx context.Context, req SnapshotsRequest) ([]model.SnapshotInfo, error) {
	if req.Limit <= 0 {
		req.Limit = 20
	}
	if err := c.Init(ctx); err != nil {
		return nil, err
	}
	infos, err := c.store.ListSnapshots(ctx)
	if err != nil {
		return nil, err
	}
	if len(infos) > req.Limit {
		infos = infos[:req.Limit]
	}
	return infos, nil
}

// Profile restores a saved dataset and recomputes its normalization profile.
func (c *Client) Profile(ctx context.Context, req ProfileRequest) (ProfileSummary, error) {
	snapshot, err := c.resolveSnapshot(ctx, req.ID, req.Latest)
	if err != nil {
		return ProfileSummary{}, err
	}
	store, err := restoreDataset(snapshot)
	if err != nil {
		return ProfileSummary{}, err
	}
	store.RecomputeNormalization()
	profile, ready := store.Profile()
	return ProfileSummary{Info: snapshot.Info(), Ready: ready, Profile: profile}, nil
}

func (c *Client) Export(ctx context.Context, req ExportRequest) (ExportSummary, error) {
	snapshot, err := c.resolveSnapshot(ctx, req.ID, req.Latest)
	if err != nil {
		return ExportSummary{}, err
	}
	outPath := req.OutPath
	if outPath == "" {
		outPath = filepath.Join(c.exportsDir, snapshot.ID+".csv")
	}

	samples := dataextract.SnapshotSamples(snapshot)
	if req.Normalized {
		store, err := restoreDataset(snapshot)
		if err != nil {
			return ExportSummary{}, err
		}
		store.RecomputeNormalization()
		for i, sample := range samples {
			samples[i] = dataset.Sample{
				Input:  store.NormalizeInput(sample.Input),
				Output: store.NormalizeOutput(sample.Output),
			}
		}
	}
	if err := dataextract.WriteDatasetFile(outPath, snapshot.InputNames, snapshot.OutputNames, samples); err != nil {
		return ExportSummary{}, err
	}
	return ExportSummary{ID: snapshot.ID, Path: filepath.Clean(outPath), Samples: len(samples)}, nil
}

func (c *Client) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return errors.New("delete requires snapshot id")
	}
	if err := c.Init(ctx); err != nil {
		return err
	}
	deleted, err := c.store.DeleteSnapshot(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("snapshot not found: %s", id)
	}
	c.logger.WithSnapshot(id).InfoContext(ctx, "snapshot deleted")
	return nil
}

// Schema returns the operator parameter schema.
func (c *Client) Schema() params.Schema {
	return params.DefaultSchema()
}

func (c *Client) resolveSnapshot(ctx context.Context, id string, latest bool) (model.DatasetSnapshot, error) {
	id = strings.TrimSpace(id)
	if id != "" && latest {
		return model.DatasetSnapshot{}, errors.New("use either snapshot id or latest")
	}
	if id == "" && !latest {
		return model.DatasetSnapshot{}, errors.New("snapshot id or latest is required")
	}
	if err := c.Init(ctx); err != nil {
		return model.DatasetSnapshot{}, err
	}

	if latest {
		infos, err := c.store.ListSnapshots(ctx)
		if err != nil {
			return model.DatasetSnapshot{}, err
		}
		if len(infos) == 0 {
			return model.DatasetSnapshot{}, errors.New("no snapshots available")
		}
		id = infos[0].ID
	}

	snapshot, ok, err := c.store.GetSnapshot(ctx, id)
	if err != nil {
		return model.DatasetSnapshot{}, err
	}
	if !ok {
		return model.DatasetSnapshot{}, fmt.Errorf("snapshot not found: %s", id)
	}
	return snapshot, nil
}

func restoreDataset(snapshot model.DatasetSnapshot) (*dataset.Store, error) {
	store := dataset.NewStore()
	if err := store.Restore(dataextract.SnapshotSamples(snapshot)); err != nil {
		return nil, fmt.Errorf("restore snapshot %s: %w", snapshot.ID, err)
	}
	return store, nil
}
