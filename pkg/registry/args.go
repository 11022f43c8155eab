package registry

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/aretw0/fsmagent/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// Args carries keyword arguments to a tool.
// Values usually come from JSON, so numbers may arrive as float64 or json.Number;
// the typed accessors accept any representation that converts without loss.
type Args map[string]any

// Has reports whether key is present.
func (a Args) Has(key string) bool {
	_, ok := a[key]
	return ok
}

// String returns a required string argument.
func (a Args) String(key string) (string, error) {
	v, ok := a[key]
	if !ok {
		return "", missing(key)
	}
	s, ok := v.(string)
	if !ok {
		return "", &domain.ArgumentError{Key: key, Reason: "expected string", Value: v}
	}
	return s, nil
}

// StringOr returns an optional string argument, or def when absent.
func (a Args) StringOr(key, def string) (string, error) {
	if !a.Has(key) {
		return def, nil
	}
	return a.String(key)
}

// Int returns a required integer argument.
func (a Args) Int(key string) (int, error) {
	v, ok := a[key]
	if !ok {
		return 0, missing(key)
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int32:
		return int(n), nil
	case int64:
		if n >= math.MinInt && n <= math.MaxInt {
			return int(n), nil
		}
	case float64:
		if i, ok := integral(n); ok {
			return i, nil
		}
	case json.Number:
		if i, err := n.Int64(); err == nil && i >= math.MinInt && i <= math.MaxInt {
			return int(i), nil
		}
		if f, err := n.Float64(); err == nil {
			if i, ok := integral(f); ok {
				return i, nil
			}
		}
	}
	return 0, &domain.ArgumentError{Key: key, Reason: "expected integer", Value: v}
}

// integral converts f to int when it is a whole number inside the int range.
func integral(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f < math.MinInt || f >= -math.MinInt {
		return 0, false
	}
	return int(f), true
}

// Float returns a required numeric argument.
func (a Args) Float(key string) (float64, error) {
	v, ok := a[key]
	if !ok {
		return 0, missing(key)
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return f, nil
		}
	}
	return 0, &domain.ArgumentError{Key: key, Reason: "expected number", Value: v}
}

// Bool returns a required boolean argument.
func (a Args) Bool(key string) (bool, error) {
	v, ok := a[key]
	if !ok {
		return false, missing(key)
	}
	b, ok := v.(bool)
	if !ok {
		return false, &domain.ArgumentError{Key: key, Reason: "expected boolean", Value: v}
	}
	return b, nil
}

// Decode maps the arguments onto a struct using mapstructure tags.
// Input is weakly typed so "95", 95.0 and json.Number("95") all fill an int field.
func (a Args) Decode(into any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           into,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("build decoder: %w", err)
	}
	if err := dec.Decode(map[string]any(a)); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
	}
	return nil
}

func missing(key string) error {
	return &domain.ArgumentError{Key: key, Reason: "is required"}
}
