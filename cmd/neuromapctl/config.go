package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"neuromap/internal/params"
)

// loadValuesFromConfig reads a JSON object keyed by parameter name. Keys match
// case-insensitively; read-only and pulse parameters are rejected.
func loadValuesFromConfig(path string) (*params.Values, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	values := params.Defaults()
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	schema := values.Schema()
	for _, k := range keys {
		spec, ok := schema.Lookup(k)
		if !ok {
			return nil, fmt.Errorf("config %s: %w: %s", path, params.ErrUnknownParameter, k)
		}
		v, ok := configValue(spec, raw[k])
		if !ok {
			return nil, fmt.Errorf("config %s: %s expects a %s value, got %T", path, spec.Name, spec.Kind, raw[k])
		}
		if err := values.Set(spec.Name, v); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
	}
	return values, nil
}

func loadOrDefaultValues(configPath string) (*params.Values, error) {
	if configPath == "" {
		return params.Defaults(), nil
	}
	return loadValuesFromConfig(configPath)
}

func configValue(spec params.Spec, v any) (any, bool) {
	switch spec.Kind {
	case params.KindInt:
		return asInt(v)
	case params.KindFloat:
		return asFloat64(v)
	case params.KindToggle:
		if b, ok := asBool(v); ok {
			return b, true
		}
		return asString(v)
	case params.KindMenu:
		if s, ok := asString(v); ok {
			return s, true
		}
		return asInt(v)
	case params.KindString, params.KindFile:
		return asString(v)
	default:
		return nil, false
	}
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asBool(v any) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}

func asInt(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case float64:
		return int(x), true
	default:
		return 0, false
	}
}

func asFloat64(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	default:
		return 0, false
	}
}

// overrideFromFlags applies the collect flags the user set explicitly on top of
// the configured values.
func overrideFromFlags(values *params.Values, set map[string]bool, flagValue map[string]any) error {
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		v, ok := flagValue[name]
		if !ok {
			continue
		}
		var err error
		switch name {
		case "in-dim":
			err = values.Set(params.ParInDim, v.(int))
		case "out-dim":
			err = values.Set(params.ParOutDim, v.(int))
		case "no-normalize":
			err = values.Set(params.ParNormalize, !v.(bool))
		case "snapshot":
			err = values.Set(params.ParSnapshot, v.(string))
		}
		if err != nil {
			return fmt.Errorf("--%s: %w", name, err)
		}
	}
	return nil
}

// paramAssignments collects repeated --set name=value flags.
type paramAssignments []string

func (p *paramAssignments) String() string {
	return strings.Join(*p, ",")
}

func (p *paramAssignments) Set(raw string) error {
	name, _, ok := strings.Cut(raw, "=")
	if !ok || strings.TrimSpace(name) == "" {
		return fmt.Errorf("expected name=value, got %q", raw)
	}
	*p = append(*p, raw)
	return nil
}

func (p paramAssignments) apply(values *params.Values) error {
	for _, raw := range p {
		name, value, _ := strings.Cut(raw, "=")
		if err := values.Set(strings.TrimSpace(name), strings.TrimSpace(value)); err != nil {
			return fmt.Errorf("--set %s: %w", raw, err)
		}
	}
	return nil
}
