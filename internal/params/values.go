package params

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	ErrUnknownParameter = errors.New("unknown parameter")
	ErrReadOnly         = errors.New("parameter is read-only")
	ErrPulse            = errors.New("pulse parameters carry no value")
)

// Values holds the current value of every non-pulse parameter in a schema.
type Values struct {
	schema Schema
	values map[string]any
}

// NewValues seeds values from the schema defaults.
func NewValues(schema Schema) *Values {
	v := &Values{
		schema: schema,
		values: make(map[string]any, len(schema)),
	}
	for _, spec := range schema {
		if spec.Kind == KindPulse {
			continue
		}
		value, err := coerce(spec, spec.Default)
		if err != nil {
			value = zeroValue(spec.Kind)
		}
		v.values[key(spec.Name)] = clamp(spec, value)
	}
	return v
}

// Defaults returns values for the built-in schema.
func Defaults() *Values {
	return NewValues(DefaultSchema())
}

func (v *Values) Schema() Schema {
	return v.schema
}

// Set assigns a caller-controlled parameter, converting compatible types and
// clamping numeric values to the declared bounds.
func (v *Values) Set(name string, value any) error {
	spec, ok := v.schema.Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownParameter, name)
	}
	if spec.ReadOnly {
		return fmt.Errorf("%w: %s", ErrReadOnly, spec.Name)
	}
	return v.assign(spec, value)
}

// SetReadOnly assigns a read-only status parameter. It is the operator's side of
// parameters such as Datasetsize and Loss.
func (v *Values) SetReadOnly(name string, value any) error {
	spec, ok := v.schema.Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownParameter, name)
	}
	if !spec.ReadOnly {
		return fmt.Errorf("parameter %s is not read-only", spec.Name)
	}
	return v.assign(spec, value)
}

func (v *Values) assign(spec Spec, value any) error {
	if spec.Kind == KindPulse {
		return fmt.Errorf("%w: %s", ErrPulse, spec.Name)
	}
	converted, err := coerce(spec, value)
	if err != nil {
		return fmt.Errorf("parameter %s: %w", spec.Name, err)
	}
	v.values[key(spec.Name)] = clamp(spec, converted)
	return nil
}

func (v *Values) Int(name string) int {
	switch x := v.values[key(name)].(type) {
	case int:
		return x
	case float64:
		return int(x)
	case bool:
		if x {
			return 1
		}
	}
	return 0
}

func (v *Values) Float(name string) float64 {
	switch x := v.values[key(name)].(type) {
	case float64:
		return x
	case int:
		return float64(x)
	}
	return 0
}

func (v *Values) Bool(name string) bool {
	b, _ := v.values[key(name)].(bool)
	return b
}

func (v *Values) Text(name string) string {
	s, _ := v.values[key(name)].(string)
	return s
}

func (v *Values) Mode() Mode {
	mode, err := ParseMode(v.Text(ParMode))
	if err != nil {
		return ModeCollect
	}
	return mode
}

// Clone returns an independent copy sharing the same schema.
func (v *Values) Clone() *Values {
	out := &Values{
		schema: v.schema,
		values: make(map[string]any, len(v.values)),
	}
	for k, value := range v.values {
		out.values[k] = value
	}
	return out
}

// Map returns the current values keyed by declared parameter name.
func (v *Values) Map() map[string]any {
	out := make(map[string]any, len(v.values))
	for _, spec := range v.schema {
		if value, ok := v.values[key(spec.Name)]; ok {
			out[spec.Name] = value
		}
	}
	return out
}

func key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func zeroValue(kind Kind) any {
	switch kind {
	case KindInt:
		return 0
	case KindFloat:
		return 0.0
	case KindToggle:
		return false
	default:
		return ""
	}
}

func coerce(spec Spec, value any) (any, error) {
	switch spec.Kind {
	case KindInt:
		switch x := value.(type) {
		case int:
			return x, nil
		case int64:
			return int(x), nil
		case float64:
			return int(x), nil
		case string:
			n, err := strconv.Atoi(strings.TrimSpace(x))
			if err != nil {
				return nil, err
			}
			return n, nil
		}
	case KindFloat:
		switch x := value.(type) {
		case float64:
			return x, nil
		case float32:
			return float64(x), nil
		case int:
			return float64(x), nil
		case int64:
			return float64(x), nil
		case string:
			f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
			if err != nil {
				return nil, err
			}
			return f, nil
		}
	case KindToggle:
		switch x := value.(type) {
		case bool:
			return x, nil
		case int:
			return x != 0, nil
		case float64:
			return x != 0, nil
		case string:
			switch strings.ToLower(strings.TrimSpace(x)) {
			case "on":
				return true, nil
			case "off":
				return false, nil
			}
			b, err := strconv.ParseBool(strings.TrimSpace(x))
			if err != nil {
				return nil, err
			}
			return b, nil
		}
	case KindMenu:
		switch x := value.(type) {
		case string:
			for _, item := range spec.Menu {
				if strings.EqualFold(item, strings.TrimSpace(x)) {
					return item, nil
				}
			}
			return nil, fmt.Errorf("unknown menu item %q", x)
		case int:
			if x < 0 || x >= len(spec.Menu) {
				return nil, fmt.Errorf("menu index %d out of range", x)
			}
			return spec.Menu[x], nil
		case float64:
			return coerce(spec, int(x))
		}
	case KindString, KindFile:
		if s, ok := value.(string); ok {
			return s, nil
		}
	}
	return nil, fmt.Errorf("cannot use %T as %s", value, spec.Kind)
}

func clamp(spec Spec, value any) any {
	switch x := value.(type) {
	case int:
		f := clampFloat(spec, float64(x))
		return int(f)
	case float64:
		return clampFloat(spec, x)
	}
	return value
}

func clampFloat(spec Spec, x float64) float64 {
	if spec.ClampMin {
		x = math.Max(x, spec.Min)
	}
	if spec.ClampMax {
		x = math.Min(x, spec.Max)
	}
	return x
}
