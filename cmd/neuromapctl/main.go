package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"neuromap/internal/dataextract"
	"neuromap/internal/logging"
	"neuromap/internal/params"
	"neuromap/internal/storage"
	"neuromap/pkg/neuromap"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "collect":
		return runCollect(ctx, args[1:])
	case "snapshots":
		return runSnapshots(ctx, args[1:])
	case "profile":
		return runProfile(ctx, args[1:])
	case "export":
		return runExport(ctx, args[1:])
	case "delete":
		return runDelete(ctx, args[1:])
	case "schema":
		return runSchema(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

type commonFlags struct {
	storeKind *string
	dbPath    *string
	logLevel  *string
	logFormat *string
}

func addCommonFlags(fs *flag.FlagSet) commonFlags {
	return commonFlags{
		storeKind: fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite"),
		dbPath:    fs.String("db-path", "neuromap.db", "sqlite database path"),
		logLevel:  fs.String("log-level", "info", "log level: debug|info|warn|error"),
		logFormat: fs.String("log-format", "auto", "log format: text|json|auto"),
	}
}

func (f commonFlags) client() (*neuromap.Client, error) {
	level, err := logging.ParseLevel(*f.logLevel)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(os.Stderr, level, *f.logFormat)
	if err != nil {
		return nil, err
	}
	return neuromap.New(neuromap.Options{
		StoreKind: *f.storeKind,
		DBPath:    *f.dbPath,
		Logger:    logger,
	})
}

func runCollect(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("collect", flag.ContinueOnError)
	common := addCommonFlags(fs)
	inputsPath := fs.String("inputs", "", "input channel recording CSV")
	targetsPath := fs.String("targets", "", "target channel recording CSV")
	configPath := fs.String("config", "", "optional parameter config JSON path")
	name := fs.String("name", "", "session name recorded on the snapshot")
	snapshotID := fs.String("snapshot", "", "snapshot id (generated when empty)")
	inDim := fs.Int("in-dim", 2, "input feature count")
	outDim := fs.Int("out-dim", 2, "output feature count")
	noNormalize := fs.Bool("no-normalize", false, "skip normalization when entering train mode")
	frameRate := fs.Float64("frame-rate", 60, "recording frame rate in frames per second")
	maxSampleRate := fs.Float64("max-sample-rate", 0, "maximum samples added per second of recording (0 disables)")
	asJSON := fs.Bool("json", false, "print collect summary as JSON")
	var assignments paramAssignments
	fs.Var(&assignments, "set", "parameter override name=value (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *inputsPath == "" || *targetsPath == "" {
		return errors.New("collect requires --inputs and --targets")
	}
	setFlags := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		setFlags[f.Name] = true
	})

	values, err := loadOrDefaultValues(*configPath)
	if err != nil {
		return err
	}
	if err := overrideFromFlags(values, setFlags, map[string]any{
		"in-dim":       *inDim,
		"out-dim":      *outDim,
		"no-normalize": *noNormalize,
		"snapshot":     *snapshotID,
	}); err != nil {
		return err
	}
	if err := assignments.apply(values); err != nil {
		return err
	}

	var inputs, targets dataextract.FrameTable
	var g errgroup.Group
	g.Go(func() error {
		table, err := dataextract.ReadFrameFile(*inputsPath)
		inputs = table
		return err
	})
	g.Go(func() error {
		table, err := dataextract.ReadFrameFile(*targetsPath)
		targets = table
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	client, err := common.client()
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.Collect(ctx, neuromap.CollectRequest{
		Inputs:        inputs,
		Targets:       targets,
		Values:        values,
		Name:          *name,
		FrameRate:     *frameRate,
		MaxSampleRate: *maxSampleRate,
	})
	if err != nil {
		return err
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}
	fmt.Printf("collected snapshot=%s frames=%s samples=%s in_dim=%d out_dim=%d normalized=%t trained=%t\n",
		summary.SnapshotID,
		humanize.Comma(int64(summary.Frames)),
		humanize.Comma(int64(summary.Samples)),
		summary.InputDim,
		summary.OutputDim,
		summary.Normalized,
		summary.Trained,
	)
	if summary.Trained {
		fmt.Printf("loss=%.6f\n", summary.Loss)
	}
	for _, s := range summary.InputStats {
		fmt.Printf("channel=%s min=%.6f avg=%.6f max=%.6f\n", s.Name, s.Min, s.Avg, s.Max)
	}
	return nil
}

func runSnapshots(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("snapshots", flag.ContinueOnError)
	common := addCommonFlags(fs)
	limit := fs.Int("limit", 20, "max snapshots to list")
	asJSON := fs.Bool("json", false, "emit snapshots list as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *limit <= 0 {
		return errors.New("limit must be > 0")
	}

	client, err := common.client()
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	infos, err := client.Snapshots(ctx, neuromap.SnapshotsRequest{Limit: *limit})
	if err != nil {
		return err
	}
	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(infos)
	}
	if len(infos) == 0 {
		fmt.Println("no snapshots found")
		return nil
	}
	for _, info := range infos {
		fmt.Printf("id=%s name=%s created=%s samples=%s in_dim=%d out_dim=%d normalized=%t\n",
			info.ID,
			info.Name,
			humanize.Time(info.CreatedAt),
			humanize.Comma(int64(info.SampleCount)),
			info.InputDim,
			info.OutputDim,
			info.Normalized,
		)
	}
	return nil
}

func runProfile(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("profile", flag.ContinueOnError)
	common := addCommonFlags(fs)
	id := fs.String("id", "", "snapshot id")
	latest := fs.Bool("latest", false, "use the most recent snapshot")
	asJSON := fs.Bool("json", false, "print profile as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id != "" && *latest {
		return errors.New("use either --id or --latest, not both")
	}
	if *id == "" && !*latest {
		return errors.New("profile requires --id or --latest")
	}

	client, err := common.client()
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.Profile(ctx, neuromap.ProfileRequest{ID: *id, Latest: *latest})
	if err != nil {
		return err
	}
	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}
	fmt.Printf("snapshot=%s samples=%s ready=%t\n",
		summary.Info.ID,
		humanize.Comma(int64(summary.Info.SampleCount)),
		summary.Ready,
	)
	if !summary.Ready {
		return nil
	}
	for i := range summary.Profile.InputMin {
		fmt.Printf("input=%d min=%.6f max=%.6f\n", i+1, summary.Profile.InputMin[i], summary.Profile.InputMax[i])
	}
	for i := range summary.Profile.OutputMin {
		fmt.Printf("output=%d min=%.6f max=%.6f\n", i+1, summary.Profile.OutputMin[i], summary.Profile.OutputMax[i])
	}
	return nil
}

func runExport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	common := addCommonFlags(fs)
	id := fs.String("id", "", "snapshot id")
	latest := fs.Bool("latest", false, "export the most recent snapshot")
	outPath := fs.String("out", "", "output CSV path (default exports/<id>.csv)")
	normalized := fs.Bool("normalized", false, "write values mapped through the recomputed profile")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id != "" && *latest {
		return errors.New("use either --id or --latest, not both")
	}
	if *id == "" && !*latest {
		return errors.New("export requires --id or --latest")
	}

	client, err := common.client()
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.Export(ctx, neuromap.ExportRequest{
		ID:         *id,
		Latest:     *latest,
		OutPath:    *outPath,
		Normalized: *normalized,
	})
	if err != nil {
		return err
	}
	fmt.Printf("exported snapshot=%s samples=%s to=%s\n",
		summary.ID,
		humanize.Comma(int64(summary.Samples)),
		summary.Path,
	)
	return nil
}

func runDelete(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	common := addCommonFlags(fs)
	id := fs.String("id", "", "snapshot id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*id) == "" {
		return errors.New("delete requires --id")
	}

	client, err := common.client()
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Delete(ctx, *id); err != nil {
		return err
	}
	fmt.Printf("deleted snapshot=%s\n", *id)
	return nil
}

func runSchema(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("schema", flag.ContinueOnError)
	page := fs.String("page", "", "only print parameters on this page")
	if err := fs.Parse(args); err != nil {
		return err
	}

	schema := params.DefaultSchema()
	if *page != "" {
		filtered := schema[:0]
		for _, spec := range schema {
			if strings.EqualFold(spec.Page, *page) {
				filtered = append(filtered, spec)
			}
		}
		if len(filtered) == 0 {
			return fmt.Errorf("unknown parameter page: %s", *page)
		}
		schema = filtered
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(schema)
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: neuromapctl <collect|snapshots|profile|export|delete|schema> [flags]", msg)
}
