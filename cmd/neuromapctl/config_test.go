package main

import (
	"errors"
	"path/filepath"
	"testing"

	"neuromap/internal/params"
)

func TestLoadValuesFromConfigCoercesByKind(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.json", `{
		"mode": "run",
		"Indim": 40,
		"Learnrate": 0.01,
		"Normalize": "off",
		"Smoothenable": true,
		"Snapshot": "take-2",
		"Hiddenunits": 4
	}`)
	values, err := loadValuesFromConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if values.Mode() != params.ModeRun {
		t.Fatalf("unexpected mode: %s", values.Mode())
	}
	if got := values.Int(params.ParInDim); got != params.MaxDim {
		t.Fatalf("expected indim clamped to %d, got %d", params.MaxDim, got)
	}
	if got := values.Float(params.ParLearnRate); got != 0.01 {
		t.Fatalf("unexpected learn rate: %f", got)
	}
	if values.Bool(params.ParNormalize) {
		t.Fatal("expected normalize off")
	}
	if !values.Bool(params.ParSmoothEnable) {
		t.Fatal("expected smoothing on")
	}
	if got := values.Text(params.ParSnapshot); got != "take-2" {
		t.Fatalf("unexpected snapshot: %q", got)
	}
	if got := values.Int(params.ParHiddenUnits); got != 8 {
		t.Fatalf("expected hidden units clamped to 8, got %d", got)
	}
}

func TestLoadValuesFromConfigRejectsBadEntries(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"unknown.json":   `{"Bogus": 1}`,
		"readonly.json":  `{"Loss": 0.5}`,
		"pulse.json":     `{"Train": true}`,
		"wrongtype.json": `{"Indim": "two"}`,
		"invalid.json":   `{`,
	}
	for name, content := range cases {
		path := writeFile(t, dir, name, content)
		if _, err := loadValuesFromConfig(path); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}

	path := writeFile(t, dir, "unknown2.json", `{"Nope": 1}`)
	if _, err := loadValuesFromConfig(path); !errors.Is(err, params.ErrUnknownParameter) {
		t.Fatalf("expected unknown parameter error, got %v", err)
	}
	if _, err := loadValuesFromConfig(filepath.Join(dir, "missing.json")); err == nil {
		t.Fatal("expected missing file error")
	}
}

func TestLoadOrDefaultValues(t *testing.T) {
	values, err := loadOrDefaultValues("")
	if err != nil {
		t.Fatalf("defaults: %v", err)
	}
	if values.Int(params.ParInDim) != 2 || !values.Bool(params.ParNormalize) {
		t.Fatalf("unexpected defaults: %v", values.Map())
	}
}

func TestOverrideFromFlagsOnlyAppliesSetFlags(t *testing.T) {
	values := params.Defaults()
	err := overrideFromFlags(values, map[string]bool{"out-dim": true, "no-normalize": true}, map[string]any{
		"in-dim":       9,
		"out-dim":      3,
		"no-normalize": true,
		"snapshot":     "ignored",
	})
	if err != nil {
		t.Fatalf("override: %v", err)
	}
	if values.Int(params.ParInDim) != 2 {
		t.Fatalf("in-dim should not change when unset: %d", values.Int(params.ParInDim))
	}
	if values.Int(params.ParOutDim) != 3 {
		t.Fatalf("unexpected out-dim: %d", values.Int(params.ParOutDim))
	}
	if values.Bool(params.ParNormalize) {
		t.Fatal("expected normalize disabled")
	}
	if values.Text(params.ParSnapshot) != "" {
		t.Fatal("snapshot should not change when unset")
	}
}

func TestParamAssignments(t *testing.T) {
	var p paramAssignments
	if err := p.Set("Epochs=25"); err != nil {
		t.Fatalf("set assignment: %v", err)
	}
	if err := p.Set("=1"); err == nil {
		t.Fatal("expected error for missing name")
	}
	if err := p.Set("Epochs"); err == nil {
		t.Fatal("expected error for missing value")
	}
	values := params.Defaults()
	if err := p.apply(values); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if values.Int(params.ParEpochs) != 25 {
		t.Fatalf("unexpected epochs: %d", values.Int(params.ParEpochs))
	}
	if p.String() != "Epochs=25" {
		t.Fatalf("unexpected string: %q", p.String())
	}
}
