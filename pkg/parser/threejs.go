package parser

import (
	"github.com/philipparndt/gomassing/pkg/geometry"
	"github.com/philipparndt/gomassing/pkg/scene"
)

// threeGeometry is a parsed entry of a three.js "geometries" list together
// with the metadata some exporters attach to the geometry data.
type threeGeometry struct {
	mesh     *geometry.Mesh
	category string
	carbon   *float64
}

// threeJS reads a three.js JSON object export. Meshes reference geometries
// and materials by uuid; several meshes may share one geometry. A document
// with geometries but no "object" becomes a flat scene with one node per
// geometry.
func (b *builder) threeJS(top map[string]any, source string) (*scene.Scene, error) {
	geometries, order, err := b.threeGeometries(top)
	if err != nil {
		return nil, err
	}
	materials, err := threeMaterials(top)
	if err != nil {
		return nil, err
	}

	var userData map[string]any
	object, hasObject := top["object"]
	if hasObject && object != nil {
		if err := checkReferences(object, "$.object", nil); err != nil {
			return nil, err
		}
		if obj, ok := object.(map[string]any); ok {
			userData, _ = obj["userData"].(map[string]any)
		}
	}

	units, err := parseUnits(top, "$", "units")
	if err != nil {
		return nil, err
	}
	if _, ok := top["units"]; !ok && userData != nil {
		if units, err = parseUnits(userData, "$.object.userData", "units"); err != nil {
			return nil, err
		}
	}

	var root *scene.Node
	if hasObject && object != nil {
		root, err = b.threeObject(object, "$.object", 0, geometries, materials)
	} else {
		root, err = b.threeFlat(geometries, order)
	}
	if err != nil {
		return nil, err
	}
	return scene.New(root, scene.Metadata{Source: source, Units: units, Format: FormatThreeJS}), nil
}

func (b *builder) threeGeometries(top map[string]any) (map[string]threeGeometry, []string, error) {
	out := make(map[string]threeGeometry)
	var order []string

	raw, ok := top["geometries"]
	if !ok || raw == nil {
		return out, order, nil
	}
	list, err := asArray(raw, "$.geometries")
	if err != nil {
		return nil, nil, err
	}

	for i, entry := range list {
		path := item("$.geometries", i)
		obj, err := asObject(entry, path)
		if err != nil {
			return nil, nil, err
		}
		id, err := optString(obj, path, "uuid")
		if err != nil {
			return nil, nil, err
		}
		if id == "" {
			return nil, nil, newError(ErrInvalidField, path, "geometry has no uuid")
		}
		if _, dup := out[id]; dup {
			return nil, nil, newError(ErrInvalidField, field(path, "uuid"), "duplicate geometry uuid %q", id)
		}

		g, err := b.threeGeometry(obj, path)
		if err != nil {
			return nil, nil, err
		}
		out[id] = g
		order = append(order, id)
	}
	return out, order, nil
}

func (b *builder) threeGeometry(obj map[string]any, path string) (threeGeometry, error) {
	var g threeGeometry

	data, ok := obj["data"].(map[string]any)
	if !ok {
		return g, newError(ErrMalformedGeometry, path, "geometry has no data object")
	}
	dataPath := field(path, "data")

	var err error
	if g.category, err = optString(data, dataPath, "structural_type", "structuralType", "category"); err != nil {
		return g, err
	}
	if g.carbon, err = optNumber(data, dataPath, "embodiedCarbon", "embodied_carbon"); err != nil {
		return g, err
	}

	// BufferGeometry: attributes.position.array plus optional index.array
	if attrs, ok := data["attributes"].(map[string]any); ok {
		g.mesh, err = b.threeBufferGeometry(data, attrs, dataPath)
		return g, err
	}

	// Legacy Geometry: flat vertices and faces as (flag, a, b, c) groups
	raw, ok := data["vertices"]
	if !ok {
		return g, newError(ErrMalformedGeometry, dataPath, "geometry has neither attributes nor vertices")
	}
	positions, err := readPositions(raw, field(dataPath, "vertices"))
	if err != nil {
		return g, err
	}
	if len(positions)%3 != 0 {
		return g, newError(ErrMalformedGeometry, field(dataPath, "vertices"), "vertex array length %d is not a multiple of 3", len(positions))
	}
	indices, err := readLegacyFaces(data["faces"], field(dataPath, "faces"), len(positions)/3)
	if err != nil {
		return g, err
	}
	g.mesh, err = b.buildMesh(positions, indices, dataPath)
	return g, err
}

func (b *builder) threeBufferGeometry(data, attrs map[string]any, path string) (*geometry.Mesh, error) {
	attrPath := field(field(path, "attributes"), "position")
	position, ok := attrs["position"].(map[string]any)
	if !ok {
		return nil, newError(ErrMalformedGeometry, attrPath, "missing position attribute")
	}
	if size, err := optNumber(position, attrPath, "itemSize"); err != nil {
		return nil, err
	} else if size != nil && *size != 3 {
		return nil, newError(ErrMalformedGeometry, field(attrPath, "itemSize"), "position itemSize %v, expected 3", *size)
	}
	positions, err := readPositions(position["array"], field(attrPath, "array"))
	if err != nil {
		return nil, err
	}
	if len(positions)%3 != 0 {
		return nil, newError(ErrMalformedGeometry, field(attrPath, "array"), "vertex array length %d is not a multiple of 3", len(positions))
	}

	var indices []int
	if index, ok := data["index"].(map[string]any); ok {
		indexPath := field(path, "index")
		if indices, err = readIndices(index["array"], field(indexPath, "array"), len(positions)/3); err != nil {
			return nil, err
		}
	}
	return b.buildMesh(positions, indices, path)
}

// readLegacyFaces reads the (flag, a, b, c) face groups of the legacy
// geometry format. Only flag 0, a plain triangle, is supported.
func readLegacyFaces(v any, path string, vertexCount int) ([]int, error) {
	if v == nil {
		return []int{}, nil
	}
	arr, ok := v.([]any)
	if !ok {
		return nil, newError(ErrMalformedGeometry, path, "expected face array, got %s", jsonType(v))
	}
	if len(arr)%4 != 0 {
		return nil, newError(ErrMalformedGeometry, path, "face array length %d is not a multiple of 4", len(arr))
	}
	out := make([]int, 0, len(arr)/4*3)
	for i := 0; i < len(arr); i += 4 {
		flag, err := asNumber(arr[i], item(path, i))
		if err != nil {
			return nil, err
		}
		if flag != 0 {
			return nil, newError(ErrMalformedGeometry, item(path, i), "unsupported face flag %v", flag)
		}
		for j := 1; j <= 3; j++ {
			n, err := asIndex(arr[i+j], item(path, i+j), vertexCount)
			if err != nil {
				return nil, err
			}
			out = append(out, n)
		}
	}
	return out, nil
}

func threeMaterials(top map[string]any) (map[string]string, error) {
	out := make(map[string]string)
	raw, ok := top["materials"]
	if !ok || raw == nil {
		return out, nil
	}
	list, err := asArray(raw, "$.materials")
	if err != nil {
		return nil, err
	}
	for i, entry := range list {
		path := item("$.materials", i)
		obj, err := asObject(entry, path)
		if err != nil {
			return nil, err
		}
		id, err := optString(obj, path, "uuid")
		if err != nil {
			return nil, err
		}
		name, err := optString(obj, path, "name")
		if err != nil {
			return nil, err
		}
		if id != "" && name != "" {
			out[id] = name
		}
	}
	return out, nil
}

func (b *builder) threeObject(v any, path string, depth int, geometries map[string]threeGeometry, materials map[string]string) (*scene.Node, error) {
	s, err := resolveSite(v, path, nil)
	if err != nil {
		return nil, err
	}
	if err := b.enterNode(depth, s.path); err != nil {
		return nil, err
	}
	obj := s.obj
	spec := scene.NodeSpec{ID: nodeID(s)}

	if spec.Name, err = optString(obj, path, "name"); err != nil {
		return nil, err
	}
	if spec.Transform, err = parseTransform(obj, path); err != nil {
		return nil, err
	}

	var g threeGeometry
	if ref, k, ok := lookup(obj, "geometry"); ok {
		id, err := asString(ref, field(path, k))
		if err != nil {
			return nil, err
		}
		if g, ok = geometries[id]; !ok {
			return nil, newError(ErrInvalidField, field(path, k), "unknown geometry %q", id)
		}
		spec.Mesh = g.mesh
	}

	if spec.Material, err = threeMaterialName(obj["material"], field(path, "material"), materials); err != nil {
		return nil, err
	}
	spec.Category = g.category
	spec.DeclaredCarbon = g.carbon

	if ud, ok := obj["userData"].(map[string]any); ok {
		udPath := field(path, "userData")
		material, err := optString(ud, udPath, "material")
		if err != nil {
			return nil, err
		}
		if material != "" {
			spec.Material = material
		}
		category, err := optString(ud, udPath, "category", "structural_type", "structuralType")
		if err != nil {
			return nil, err
		}
		if category != "" {
			spec.Category = category
		}
		carbon, err := optNumber(ud, udPath, "embodiedCarbon", "embodied_carbon")
		if err != nil {
			return nil, err
		}
		if carbon != nil {
			spec.DeclaredCarbon = carbon
		}
	}

	if c, ok := obj["children"]; ok && c != nil {
		children, err := asArray(c, field(path, "children"))
		if err != nil {
			return nil, err
		}
		for i, child := range children {
			node, err := b.threeObject(child, item(field(path, "children"), i), depth+1, geometries, materials)
			if err != nil {
				return nil, err
			}
			spec.Children = append(spec.Children, node)
		}
	}

	return scene.NewNode(spec), nil
}

// threeMaterialName resolves a material uuid, or the first of a
// multi-material array, to the material's name.
func threeMaterialName(v any, path string, materials map[string]string) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		if name, ok := materials[t]; ok {
			return name, nil
		}
		return "", nil
	case []any:
		if len(t) == 0 {
			return "", nil
		}
		return threeMaterialName(t[0], item(path, 0), materials)
	}
	return "", newError(ErrInvalidField, path, "expected material uuid, got %s", jsonType(v))
}

// threeFlat builds a scene from bare geometries, one node per geometry in
// document order, named by uuid.
func (b *builder) threeFlat(geometries map[string]threeGeometry, order []string) (*scene.Node, error) {
	if err := b.enterNode(0, "$"); err != nil {
		return nil, err
	}
	root := scene.NodeSpec{ID: nodeID(site{path: "$"}), Name: "scene"}
	for i, id := range order {
		if err := b.enterNode(1, item("$.geometries", i)); err != nil {
			return nil, err
		}
		g := geometries[id]
		root.Children = append(root.Children, scene.NewNode(scene.NodeSpec{
			ID:             id,
			Name:           id,
			Mesh:           g.mesh,
			Category:       g.category,
			DeclaredCarbon: g.carbon,
		}))
	}
	return scene.NewNode(root), nil
}
