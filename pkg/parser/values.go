package parser

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/philipparndt/gomassing/pkg/geometry"
)

func field(path, name string) string {
	return path + "." + name
}

func item(path string, i int) string {
	return path + "[" + strconv.Itoa(i) + "]"
}

func jsonType(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case json.Number:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	}
	return fmt.Sprintf("%T", v)
}

// lookup returns the first present, non-null key of obj
func lookup(obj map[string]any, keys ...string) (any, string, bool) {
	for _, k := range keys {
		if v, ok := obj[k]; ok && v != nil {
			return v, k, true
		}
	}
	return nil, "", false
}

func asObject(v any, path string) (map[string]any, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, newError(ErrInvalidField, path, "expected object, got %s", jsonType(v))
	}
	return obj, nil
}

func asArray(v any, path string) ([]any, error) {
	arr, ok := v.([]any)
	if !ok {
		return nil, newError(ErrInvalidField, path, "expected array, got %s", jsonType(v))
	}
	return arr, nil
}

func asString(v any, path string) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", newError(ErrInvalidField, path, "expected string, got %s", jsonType(v))
	}
	return s, nil
}

// optString reads an optional string member
func optString(obj map[string]any, path string, keys ...string) (string, error) {
	v, k, ok := lookup(obj, keys...)
	if !ok {
		return "", nil
	}
	return asString(v, field(path, k))
}

// asNumber accepts only finite JSON numbers. Strings such as "NaN", other
// JSON types and literals overflowing float64 are rejected.
func asNumber(v any, path string) (float64, error) {
	n, ok := v.(json.Number)
	if !ok {
		return 0, newError(ErrInvalidNumber, path, "expected number, got %s", jsonType(v))
	}
	f, err := n.Float64()
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, newError(ErrInvalidNumber, path, "%q is not a finite number", n.String())
	}
	return f, nil
}

// optNumber reads an optional numeric member
func optNumber(obj map[string]any, path string, keys ...string) (*float64, error) {
	v, k, ok := lookup(obj, keys...)
	if !ok {
		return nil, nil
	}
	f, err := asNumber(v, field(path, k))
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func asNumbers(v any, path string) ([]float64, error) {
	arr, err := asArray(v, path)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(arr))
	for i, e := range arr {
		if out[i], err = asNumber(e, item(path, i)); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func asFixedNumbers(v any, path string, n int) ([]float64, error) {
	nums, err := asNumbers(v, path)
	if err != nil {
		return nil, err
	}
	if len(nums) != n {
		return nil, newError(ErrInvalidField, path, "expected %d numbers, got %d", n, len(nums))
	}
	return nums, nil
}

func asVector(v any, path string) (geometry.Vector3, error) {
	nums, err := asFixedNumbers(v, path, 3)
	if err != nil {
		return geometry.Vector3{}, err
	}
	return geometry.NewVector3(nums[0], nums[1], nums[2]), nil
}

// asIndex reads a vertex index: a finite, integral, non-negative number
// below count.
func asIndex(v any, path string, count int) (int, error) {
	f, err := asNumber(v, path)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, newError(ErrMalformedGeometry, path, "index %v is not an integer", f)
	}
	if f < 0 || f >= float64(count) {
		return 0, newError(ErrMalformedGeometry, path, "index %v out of range for %d vertices", f, count)
	}
	return int(f), nil
}

// nestingDepth returns the deepest bracket nesting of a JSON text without
// decoding it, so that hostile documents are rejected before the decoder
// recurses into them.
func nestingDepth(doc []byte) int {
	depth, deepest := 0, 0
	inString, escaped := false, false
	for _, c := range doc {
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			depth++
			if depth > deepest {
				deepest = depth
			}
		case '}', ']':
			depth--
		}
	}
	return deepest
}
