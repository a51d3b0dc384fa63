package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"neuromap/internal/params"
)

func TestRunRequiresKnownCommand(t *testing.T) {
	err := run(context.Background(), nil)
	if err == nil || !strings.Contains(err.Error(), "usage: neuromapctl") {
		t.Fatalf("expected usage error, got %v", err)
	}
	err = run(context.Background(), []string{"train"})
	if err == nil || !strings.Contains(err.Error(), "unknown command: train") {
		t.Fatalf("expected unknown command error, got %v", err)
	}
}

func TestSchemaCommandPrintsParameters(t *testing.T) {
	out, err := captureStdout(func() error {
		return run(context.Background(), []string{"schema"})
	})
	if err != nil {
		t.Fatalf("schema command: %v", err)
	}
	var schema params.Schema
	if err := json.Unmarshal([]byte(out), &schema); err != nil {
		t.Fatalf("decode schema output: %v\n%s", err, out)
	}
	if len(schema) != len(params.DefaultSchema()) {
		t.Fatalf("unexpected schema length: %d", len(schema))
	}

	out, err = captureStdout(func() error {
		return run(context.Background(), []string{"schema", "--page", "model"})
	})
	if err != nil {
		t.Fatalf("schema page command: %v", err)
	}
	schema = nil
	if err := json.Unmarshal([]byte(out), &schema); err != nil {
		t.Fatalf("decode page output: %v", err)
	}
	for _, spec := range schema {
		if spec.Page != params.PageModel {
			t.Fatalf("unexpected page in filtered schema: %+v", spec)
		}
	}

	if err := run(context.Background(), []string{"schema", "--page", "nope"}); err == nil {
		t.Fatal("expected unknown page error")
	}
}

func TestCollectCommandMemoryStore(t *testing.T) {
	dir := t.TempDir()
	inputs := writeFile(t, dir, "inputs.csv", "t,x\n0,0.1\n1,0.5\n2,0.9\n")
	targets := writeFile(t, dir, "targets.csv", "y,z\n1,10\n2,20\n3,30\n")
	config := writeFile(t, dir, "config.json", `{"indim": 1, "Outdim": 2, "Epochs": 50}`)

	out, err := captureStdout(func() error {
		return run(context.Background(), []string{
			"collect",
			"--store", "memory",
			"--log-level", "error",
			"--inputs", inputs,
			"--targets", targets,
			"--config", config,
			"--snapshot", "take-1",
		})
	})
	if err != nil {
		t.Fatalf("collect command: %v", err)
	}
	for _, want := range []string{"snapshot=take-1", "frames=3", "samples=3", "in_dim=1", "out_dim=2", "normalized=true", "trained=false", "channel=x"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestCollectCommandJSONAndFlagOverrides(t *testing.T) {
	dir := t.TempDir()
	inputs := writeFile(t, dir, "inputs.csv", "a,b,c\n1,2,3\n4,5,6\n")
	targets := writeFile(t, dir, "targets.csv", "y\n1\n2\n")
	config := writeFile(t, dir, "config.json", `{"Indim": 1, "Normalize": true}`)

	out, err := captureStdout(func() error {
		return run(context.Background(), []string{
			"collect",
			"--store", "memory",
			"--log-level", "error",
			"--inputs", inputs,
			"--targets", targets,
			"--config", config,
			"--in-dim", "3",
			"--no-normalize",
			"--set", "Outdim=1",
			"--json",
		})
	})
	if err != nil {
		t.Fatalf("collect command: %v", err)
	}
	var summary struct {
		Samples    int
		InputDim   int
		OutputDim  int
		Normalized bool
	}
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("decode collect output: %v\n%s", err, out)
	}
	if summary.Samples != 2 || summary.InputDim != 3 || summary.OutputDim != 1 || summary.Normalized {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestCollectCommandValidatesArguments(t *testing.T) {
	dir := t.TempDir()
	inputs := writeFile(t, dir, "inputs.csv", "x\n1\n")
	if err := run(context.Background(), []string{"collect", "--inputs", inputs}); err == nil {
		t.Fatal("expected missing targets error")
	}
	if err := run(context.Background(), []string{
		"collect", "--store", "memory", "--inputs", inputs, "--targets", filepath.Join(dir, "missing.csv"),
	}); err == nil {
		t.Fatal("expected missing file error")
	}
	if err := run(context.Background(), []string{
		"collect", "--store", "memory", "--inputs", inputs, "--targets", inputs, "--set", "Datasetsize=4",
	}); err == nil {
		t.Fatal("expected read-only parameter error")
	}
	if err := run(context.Background(), []string{
		"collect", "--store", "memory", "--inputs", inputs, "--targets", inputs, "--log-format", "xml",
	}); err == nil {
		t.Fatal("expected log format error")
	}
}

func TestSnapshotCommandsValidateSelectors(t *testing.T) {
	ctx := context.Background()
	cases := [][]string{
		{"profile", "--store", "memory"},
		{"profile", "--store", "memory", "--id", "a", "--latest"},
		{"export", "--store", "memory"},
		{"export", "--store", "memory", "--id", "a", "--latest"},
		{"delete", "--store", "memory"},
		{"snapshots", "--store", "memory", "--limit", "0"},
		{"delete", "--store", "memory", "--id", "missing"},
	}
	for _, args := range cases {
		if err := run(ctx, args); err == nil {
			t.Fatalf("expected error for %v", args)
		}
	}

	out, err := captureStdout(func() error {
		return run(ctx, []string{"snapshots", "--store", "memory"})
	})
	if err != nil {
		t.Fatalf("snapshots command: %v", err)
	}
	if !strings.Contains(out, "no snapshots found") {
		t.Fatalf("unexpected snapshots output: %s", out)
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func captureStdout(fn func() error) (string, error) {
	origStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		return "", err
	}

	os.Stdout = w
	runErr := fn()
	_ = w.Close()
	os.Stdout = origStdout

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		_ = r.Close()
		return "", err
	}
	_ = r.Close()
	return buf.String(), runErr
}
