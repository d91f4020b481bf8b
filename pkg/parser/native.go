package parser

import (
	"github.com/philipparndt/gomassing/pkg/geometry"
	"github.com/philipparndt/gomassing/pkg/scene"
)

// native reads the native document shape:
//
//	{
//	  "name": "tower.json", "units": "mm",
//	  "root": { "name": "site", "children": [ {...}, "core" ] },
//	  "nodes": { "core": { "mesh": {"vertices": [...], "indices": [...]} } }
//	}
func (b *builder) native(top map[string]any, source string) (*scene.Scene, error) {
	if v, ok := top["nodes"]; ok && v != nil {
		library, err := asObject(v, "$.nodes")
		if err != nil {
			return nil, err
		}
		b.library = library
	}

	if err := checkReferences(top["root"], "$.root", b.library); err != nil {
		return nil, err
	}

	units, err := parseUnits(top, "$", "units")
	if err != nil {
		return nil, err
	}
	if source == "" {
		if source, err = optString(top, "$", "name"); err != nil {
			return nil, err
		}
	}

	root, err := b.nativeNode(top["root"], "$.root", 0)
	if err != nil {
		return nil, err
	}
	return scene.New(root, scene.Metadata{Source: source, Units: units, Format: FormatNative}), nil
}

func (b *builder) nativeNode(v any, path string, depth int) (*scene.Node, error) {
	s, err := resolveSite(v, path, b.library)
	if err != nil {
		return nil, err
	}
	if err := b.enterNode(depth, s.path); err != nil {
		return nil, err
	}
	obj := s.obj
	spec := scene.NodeSpec{ID: nodeID(s)}

	if spec.Name, err = optString(obj, s.path, "name"); err != nil {
		return nil, err
	}
	if spec.Material, err = optString(obj, s.path, "material"); err != nil {
		return nil, err
	}
	if spec.Category, err = optString(obj, s.path, "category", "structural_type", "structuralType"); err != nil {
		return nil, err
	}
	if spec.DeclaredCarbon, err = optNumber(obj, s.path, "embodiedCarbon", "embodied_carbon"); err != nil {
		return nil, err
	}
	if spec.Transform, err = parseTransform(obj["transform"], field(s.path, "transform")); err != nil {
		return nil, err
	}

	if m, k, ok := lookup(obj, "mesh", "geometry"); ok {
		if spec.Mesh, err = b.nativeMesh(m, field(s.path, k)); err != nil {
			return nil, err
		}
	}

	if c, ok := obj["children"]; ok && c != nil {
		children, err := asArray(c, field(s.path, "children"))
		if err != nil {
			return nil, err
		}
		for i, child := range children {
			node, err := b.nativeNode(child, item(field(s.path, "children"), i), depth+1)
			if err != nil {
				return nil, err
			}
			spec.Children = append(spec.Children, node)
		}
	}

	return scene.NewNode(spec), nil
}

func (b *builder) nativeMesh(v any, path string) (*geometry.Mesh, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, newError(ErrMalformedGeometry, path, "expected mesh object, got %s", jsonType(v))
	}

	raw, k, ok := lookup(obj, "vertices", "positions")
	if !ok {
		return nil, newError(ErrMalformedGeometry, path, "mesh has no vertices")
	}
	positions, err := readPositions(raw, field(path, k))
	if err != nil {
		return nil, err
	}
	if len(positions)%3 != 0 {
		return nil, newError(ErrMalformedGeometry, field(path, k), "vertex array length %d is not a multiple of 3", len(positions))
	}

	var indices []int
	if raw, k, ok := lookup(obj, "indices", "index", "triangles"); ok {
		if indices, err = readIndices(raw, field(path, k), len(positions)/3); err != nil {
			return nil, err
		}
	}
	return b.buildMesh(positions, indices, path)
}
