package dispatch

import (
	"encoding/json"
	"math"
	"strings"

	"arbridge/internal/manager"
	"arbridge/pkg/types"
)

// args is the loosely typed argument bag of one call. A key that is absent
// or explicitly null counts as omitted.
type args map[string]any

func badArg(format string, a ...any) error {
	return manager.Errorf(manager.KindInvalidArgument, format, a...)
}

func (a args) has(key string) bool { return a[key] != nil }

// str returns a required non-empty string argument.
func (a args) str(key string) (string, error) {
	v, ok := a[key]
	if !ok || v == nil {
		return "", badArg("%s is required", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", badArg("%s must be a string, got %T", key, v)
	}
	if strings.TrimSpace(s) == "" {
		return "", badArg("%s must not be empty", key)
	}
	return s, nil
}

// num returns a required numeric argument.
func (a args) num(key string) (float64, error) {
	v := a[key]
	if v == nil {
		return 0, badArg("%s is required", key)
	}
	f, ok := toFloat(v)
	if !ok {
		return 0, badArg("%s must be a number, got %T", key, v)
	}
	return f, nil
}

// optNum returns a pointer to an optional numeric argument, nil when omitted.
func (a args) optNum(key string) (*float64, error) {
	if !a.has(key) {
		return nil, nil
	}
	f, err := a.num(key)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (a args) optBool(key string, def bool) (bool, error) {
	if !a.has(key) {
		return def, nil
	}
	b, ok := a[key].(bool)
	if !ok {
		return false, badArg("%s must be a boolean, got %T", key, a[key])
	}
	return b, nil
}

// vec3 decodes an optional [x, y, z] list.
func (a args) vec3(key string, def types.Vec3) (types.Vec3, error) {
	if !a.has(key) {
		return def, nil
	}
	fs, err := floats(key, a[key])
	if err != nil {
		return def, err
	}
	if len(fs) != 3 {
		return def, badArg("%s must have 3 components, got %d", key, len(fs))
	}
	return types.Vec3{fs[0], fs[1], fs[2]}, nil
}

// rotation decodes an optional Euler [x, y, z] or quaternion [x, y, z, w].
func (a args) rotation(key string, def types.Rotation) (types.Rotation, error) {
	if !a.has(key) {
		return append(types.Rotation(nil), def...), nil
	}
	fs, err := floats(key, a[key])
	if err != nil {
		return nil, err
	}
	if len(fs) != 3 && len(fs) != 4 {
		return nil, badArg("%s must have 3 or 4 components, got %d", key, len(fs))
	}
	return types.Rotation(fs), nil
}

// scale decodes an optional uniform factor or per-axis [x, y, z] list.
// It returns nil when omitted.
func (a args) scale(key string) (*types.Vec3, error) {
	if !a.has(key) {
		return nil, nil
	}
	if f, ok := toFloat(a[key]); ok {
		s := types.UniformScale(f)
		return &s, nil
	}
	v, err := a.vec3(key, types.Vec3{})
	if err != nil {
		return nil, badArg("%s must be a number or a list of 3 numbers", key)
	}
	return &v, nil
}

func floats(key string, v any) ([]float64, error) {
	switch xs := v.(type) {
	case []float64:
		return append([]float64(nil), xs...), nil
	case []any:
		out := make([]float64, len(xs))
		for i, x := range xs {
			f, ok := toFloat(x)
			if !ok {
				return nil, badArg("%s[%d] must be a number, got %T", key, i, x)
			}
			out[i] = f
		}
		return out, nil
	default:
		return nil, badArg("%s must be a list of numbers, got %T", key, v)
	}
}

// toFloat accepts the numeric shapes produced by the JSON and CBOR decoders.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		if err != nil || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}
