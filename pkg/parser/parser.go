// Package parser turns an untrusted JSON scene document into a scene.Scene.
//
// Two document shapes are accepted: the native format, whose top level has a
// "root" node and an optional "nodes" library of referenced nodes, and the
// three.js object export, whose top level has "geometries" and "object".
// Parsing is all-or-nothing: on failure no scene is returned and the error
// is a *ParseError wrapping one of the Err* kinds.
package parser

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/philipparndt/gomassing/pkg/geometry"
	"github.com/philipparndt/gomassing/pkg/scene"
)

// Document formats recorded in scene.Metadata.Format
const (
	FormatNative  = "native"
	FormatThreeJS = "threejs"
)

// nodeNamespace seeds the name-based UUIDs given to nodes without an id, so
// the same document always yields the same identifiers.
var nodeNamespace = uuid.MustParse("6f1c3b52-9a0e-4d8b-8f36-2b7c1e5d4a90")

// ParseFile reads and parses a scene document from disk
func ParseFile(filename string, opts ...Option) (*scene.Scene, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	o := newOptions(opts)
	reader := io.Reader(file)
	if o.limits.MaxBytes > 0 {
		// one extra byte lets Parse see that the limit was exceeded
		reader = io.LimitReader(file, o.limits.MaxBytes+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	if o.source == "" {
		opts = append(opts, WithSource(filepath.Base(filename)))
	}
	return Parse(data, opts...)
}

// Parse parses a JSON scene document
func Parse(doc []byte, opts ...Option) (*scene.Scene, error) {
	o := newOptions(opts)

	if o.limits.MaxBytes > 0 && int64(len(doc)) > o.limits.MaxBytes {
		return nil, newError(ErrTooLarge, "$", "document is %d bytes, limit is %d", len(doc), o.limits.MaxBytes)
	}
	if limit := o.limits.maxNesting(); limit > 0 {
		if depth := nestingDepth(doc); depth > limit {
			return nil, newError(ErrTooLarge, "$", "JSON nesting depth %d exceeds %d", depth, limit)
		}
	}

	top, err := decode(doc)
	if err != nil {
		return nil, err
	}

	b := &builder{limits: o.limits}
	switch {
	case top["root"] != nil:
		return b.native(top, o.source)
	case top["geometries"] != nil || top["object"] != nil:
		return b.threeJS(top, o.source)
	}
	return nil, newError(ErrUnrecognizedRoot, "$", "expected a \"root\" node or a three.js \"object\"/\"geometries\" export")
}

func decode(doc []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(doc))
	dec.UseNumber()

	var top any
	if err := dec.Decode(&top); err != nil {
		return nil, newError(ErrUnrecognizedRoot, "$", "invalid JSON: %v", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, newError(ErrUnrecognizedRoot, "$", "unexpected data after the top-level value")
	}
	obj, ok := top.(map[string]any)
	if !ok {
		return nil, newError(ErrUnrecognizedRoot, "$", "top-level value is %s, expected object", jsonType(top))
	}
	return obj, nil
}

func parseUnits(top map[string]any, path string, keys ...string) (scene.Units, error) {
	raw, err := optString(top, path, keys...)
	if err != nil {
		return "", err
	}
	units, err := scene.ParseUnits(raw)
	if err != nil {
		return "", newError(ErrInvalidUnits, field(path, "units"), "%v", err)
	}
	return units, nil
}

// builder carries the traversal context shared by the format readers
type builder struct {
	limits    Limits
	library   map[string]any
	nodes     int
	triangles int
}

func (b *builder) enterNode(depth int, path string) error {
	if b.limits.MaxDepth > 0 && depth > b.limits.MaxDepth {
		return newError(ErrTooLarge, path, "node depth %d exceeds limit %d", depth, b.limits.MaxDepth)
	}
	b.nodes++
	if b.limits.MaxNodes > 0 && b.nodes > b.limits.MaxNodes {
		return newError(ErrTooLarge, path, "more than %d nodes", b.limits.MaxNodes)
	}
	return nil
}

func (b *builder) addTriangles(n int, path string) error {
	b.triangles += n
	if b.limits.MaxTriangles > 0 && b.triangles > b.limits.MaxTriangles {
		return newError(ErrTooLarge, path, "more than %d triangles", b.limits.MaxTriangles)
	}
	return nil
}

func nodeID(s site) string {
	if s.id != "" {
		return s.id
	}
	return uuid.NewSHA1(nodeNamespace, []byte(s.path)).String()
}

// parseTransform accepts a bare 16-element column-major matrix, an object
// with "matrix", or an object with translation/rotation/scale parts.
func parseTransform(v any, path string) (geometry.Transform, error) {
	switch t := v.(type) {
	case nil:
		return geometry.Identity(), nil
	case []any:
		return parseMatrix(t, path)
	case map[string]any:
		if m, k, ok := lookup(t, "matrix", "elements"); ok {
			return parseMatrix(m, field(path, k))
		}
		return parseTRS(t, path)
	}
	return geometry.Transform{}, newError(ErrInvalidField, path, "expected matrix or transform object, got %s", jsonType(v))
}

func parseMatrix(v any, path string) (geometry.Transform, error) {
	nums, err := asFixedNumbers(v, path, 16)
	if err != nil {
		return geometry.Transform{}, err
	}
	return geometry.FromMatrix([16]float64(nums)), nil
}

func parseTRS(obj map[string]any, path string) (geometry.Transform, error) {
	translation := geometry.Vector3{}
	rotation := geometry.Identity()
	scale := geometry.NewVector3(1, 1, 1)

	if v, k, ok := lookup(obj, "translation", "position"); ok {
		t, err := asVector(v, field(path, k))
		if err != nil {
			return geometry.Transform{}, err
		}
		translation = t
	}

	if v, k, ok := lookup(obj, "quaternion", "rotation"); ok {
		nums, err := asNumbers(v, field(path, k))
		if err != nil {
			return geometry.Transform{}, err
		}
		switch {
		case len(nums) == 4:
			rotation = geometry.Quaternion(nums[0], nums[1], nums[2], nums[3])
		case len(nums) == 3 && k == "rotation":
			rotation = geometry.Euler(nums[0], nums[1], nums[2])
		default:
			return geometry.Transform{}, newError(ErrInvalidField, field(path, k), "expected Euler angles [x,y,z] or quaternion [x,y,z,w], got %d numbers", len(nums))
		}
	}

	if v, ok := obj["scale"]; ok && v != nil {
		if _, uniform := v.(json.Number); uniform {
			s, err := asNumber(v, field(path, "scale"))
			if err != nil {
				return geometry.Transform{}, err
			}
			scale = geometry.NewVector3(s, s, s)
		} else {
			s, err := asVector(v, field(path, "scale"))
			if err != nil {
				return geometry.Transform{}, err
			}
			scale = s
		}
	}

	return geometry.FromTRS(translation, rotation, scale), nil
}

// buildMesh validates flat positions and triangle indices and builds the
// mesh. Without indices the positions are read as consecutive triangles.
func (b *builder) buildMesh(positions []float64, indices []int, path string) (*geometry.Mesh, error) {
	if len(positions)%3 != 0 {
		return nil, newError(ErrMalformedGeometry, path, "vertex array length %d is not a multiple of 3", len(positions))
	}
	vertices := make([]geometry.Vector3, len(positions)/3)
	for i := range vertices {
		vertices[i] = geometry.NewVector3(positions[3*i], positions[3*i+1], positions[3*i+2])
	}

	if indices == nil {
		if len(vertices)%3 != 0 {
			return nil, newError(ErrMalformedGeometry, path, "non-indexed geometry has %d vertices, not a multiple of 3", len(vertices))
		}
		indices = make([]int, len(vertices))
		for i := range indices {
			indices[i] = i
		}
	}
	if len(indices)%3 != 0 {
		return nil, newError(ErrMalformedGeometry, path, "index array length %d is not a multiple of 3", len(indices))
	}
	if err := b.addTriangles(len(indices)/3, path); err != nil {
		return nil, err
	}

	faces := make([][3]int, len(indices)/3)
	for i := range faces {
		faces[i] = [3]int{indices[3*i], indices[3*i+1], indices[3*i+2]}
	}
	mesh, err := geometry.NewMesh(vertices, faces)
	if err != nil {
		return nil, newError(ErrMalformedGeometry, path, "%v", err)
	}
	return mesh, nil
}

// readIndices reads a flat or nested ([[a,b,c],...]) index array
func readIndices(v any, path string, vertexCount int) ([]int, error) {
	arr, ok := v.([]any)
	if !ok {
		return nil, newError(ErrMalformedGeometry, path, "expected index array, got %s", jsonType(v))
	}
	out := make([]int, 0, len(arr))
	for i, e := range arr {
		p := item(path, i)
		if triple, nested := e.([]any); nested {
			if len(triple) != 3 {
				return nil, newError(ErrMalformedGeometry, p, "triangle has %d indices", len(triple))
			}
			for j, idx := range triple {
				n, err := asIndex(idx, item(p, j), vertexCount)
				if err != nil {
					return nil, err
				}
				out = append(out, n)
			}
			continue
		}
		n, err := asIndex(e, p, vertexCount)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// readPositions reads a flat coordinate array
func readPositions(v any, path string) ([]float64, error) {
	if _, ok := v.([]any); !ok {
		return nil, newError(ErrMalformedGeometry, path, "expected vertex array, got %s", jsonType(v))
	}
	positions, err := asNumbers(v, path)
	if err != nil {
		return nil, err
	}
	for i, p := range positions {
		if math.Abs(p) > MaxCoordinate {
			return nil, newError(ErrInvalidNumber, item(path, i), "coordinate %g exceeds the magnitude limit %g", p, MaxCoordinate)
		}
	}
	return positions, nil
}
