// Package params declares the operator's host parameters as data and holds their
// current values.
package params

import (
	"fmt"
	"strings"
)

type Kind string

const (
	KindMenu   Kind = "menu"
	KindInt    Kind = "int"
	KindFloat  Kind = "float"
	KindToggle Kind = "toggle"
	KindPulse  Kind = "pulse"
	KindString Kind = "string"
	KindFile   Kind = "file"
)

const (
	PageModel    = "Model"
	PageData     = "Data"
	PageTraining = "Training"
	PageRuntime  = "Runtime"
	PageFile     = "File"
)

const (
	ParMode         = "Mode"
	ParInDim        = "Indim"
	ParOutDim       = "Outdim"
	ParNormalize    = "Normalize"
	ParAddSample    = "Addsample"
	ParClearDataset = "Cleardataset"
	ParDatasetSize  = "Datasetsize"
	ParTrain        = "Train"
	ParEpochs       = "Epochs"
	ParLearnRate    = "Learnrate"
	ParHiddenLayers = "Hiddenlayers"
	ParHiddenUnits  = "Hiddenunits"
	ParLoss         = "Loss"
	ParSmoothEnable = "Smoothenable"
	ParMinCutoff    = "Mincutoff"
	ParBeta         = "Beta"
	ParModelFile    = "Modelfile"
	ParSaveModel    = "Savemodel"
	ParLoadModel    = "Loadmodel"
	ParSnapshot     = "Snapshot"
	ParSaveDataset  = "Savedataset"
	ParLoadDataset  = "Loaddataset"
)

// MaxDim bounds Indim and Outdim.
const MaxDim = 16

// Spec describes one host parameter. Numeric bounds only apply when the matching
// Clamp flag is set.
type Spec struct {
	Name     string   `json:"name"`
	Label    string   `json:"label"`
	Page     string   `json:"page"`
	Kind     Kind     `json:"kind"`
	Default  any      `json:"default,omitempty"`
	Min      float64  `json:"min,omitempty"`
	Max      float64  `json:"max,omitempty"`
	ClampMin bool     `json:"clamp_min,omitempty"`
	ClampMax bool     `json:"clamp_max,omitempty"`
	ReadOnly bool     `json:"read_only,omitempty"`
	Menu     []string `json:"menu,omitempty"`
}

type Schema []Spec

var defaultSchema = Schema{
	{Name: ParMode, Label: "Mode", Page: PageModel, Kind: KindMenu, Default: ModeCollect.String(), Menu: modeNames()},
	{Name: ParInDim, Label: "Input Dimensions", Page: PageModel, Kind: KindInt, Default: 2, Min: 1, Max: MaxDim, ClampMin: true, ClampMax: true},
	{Name: ParOutDim, Label: "Output Dimensions", Page: PageModel, Kind: KindInt, Default: 2, Min: 1, Max: MaxDim, ClampMin: true, ClampMax: true},
	{Name: ParNormalize, Label: "Normalize Data", Page: PageModel, Kind: KindToggle, Default: true},

	{Name: ParAddSample, Label: "Add Sample", Page: PageData, Kind: KindPulse},
	{Name: ParClearDataset, Label: "Clear Dataset", Page: PageData, Kind: KindPulse},
	{Name: ParDatasetSize, Label: "Dataset Size", Page: PageData, Kind: KindInt, Default: 0, ReadOnly: true},

	{Name: ParTrain, Label: "Train Model", Page: PageTraining, Kind: KindPulse},
	{Name: ParEpochs, Label: "Training Epochs", Page: PageTraining, Kind: KindInt, Default: 100, Min: 1, Max: 10000, ClampMin: true},
	{Name: ParLearnRate, Label: "Learning Rate", Page: PageTraining, Kind: KindFloat, Default: 0.001, Min: 0.00001, Max: 1.0, ClampMin: true},
	{Name: ParHiddenLayers, Label: "Hidden Layers", Page: PageTraining, Kind: KindInt, Default: 2, Min: 1, Max: 5, ClampMin: true, ClampMax: true},
	{Name: ParHiddenUnits, Label: "Hidden Units", Page: PageTraining, Kind: KindInt, Default: 64, Min: 8, Max: 512, ClampMin: true},
	{Name: ParLoss, Label: "Training Loss", Page: PageTraining, Kind: KindFloat, Default: 0.0, ReadOnly: true},

	{Name: ParSmoothEnable, Label: "Enable Smoothing", Page: PageRuntime, Kind: KindToggle, Default: false},
	{Name: ParMinCutoff, Label: "Min Cutoff Frequency", Page: PageRuntime, Kind: KindFloat, Default: 1.0, Min: 0.001, Max: 100.0, ClampMin: true},
	{Name: ParBeta, Label: "Speed Coefficient", Page: PageRuntime, Kind: KindFloat, Default: 0.1, Min: 0.0, Max: 10.0, ClampMin: true},

	{Name: ParModelFile, Label: "Model File Path", Page: PageFile, Kind: KindFile, Default: ""},
	{Name: ParSaveModel, Label: "Save Model", Page: PageFile, Kind: KindPulse},
	{Name: ParLoadModel, Label: "Load Model", Page: PageFile, Kind: KindPulse},
	{Name: ParSnapshot, Label: "Dataset Snapshot", Page: PageFile, Kind: KindString, Default: ""},
	{Name: ParSaveDataset, Label: "Save Dataset", Page: PageFile, Kind: KindPulse},
	{Name: ParLoadDataset, Label: "Load Dataset", Page: PageFile, Kind: KindPulse},
}

// DefaultSchema returns a copy of the operator's parameter declarations in page
// order.
func DefaultSchema() Schema {
	out := make(Schema, len(defaultSchema))
	for i, spec := range defaultSchema {
		spec.Menu = append([]string(nil), spec.Menu...)
		out[i] = spec
	}
	return out
}

// Lookup finds a parameter by name, ignoring case.
func (s Schema) Lookup(name string) (Spec, bool) {
	for _, spec := range s {
		if strings.EqualFold(spec.Name, strings.TrimSpace(name)) {
			return spec, true
		}
	}
	return Spec{}, false
}

// Pages returns page names in declaration order.
func (s Schema) Pages() []string {
	var pages []string
	seen := make(map[string]bool)
	for _, spec := range s {
		if !seen[spec.Page] {
			seen[spec.Page] = true
			pages = append(pages, spec.Page)
		}
	}
	return pages
}

// Validate checks that names are unique and defaults match their kinds.
func (s Schema) Validate() error {
	seen := make(map[string]bool, len(s))
	for _, spec := range s {
		key := strings.ToLower(spec.Name)
		if key == "" {
			return fmt.Errorf("parameter with label %q has no name", spec.Label)
		}
		if seen[key] {
			return fmt.Errorf("duplicate parameter: %s", spec.Name)
		}
		seen[key] = true
		if spec.Kind == KindPulse {
			continue
		}
		if _, err := coerce(spec, spec.Default); err != nil {
			return fmt.Errorf("parameter %s default: %w", spec.Name, err)
		}
	}
	return nil
}
