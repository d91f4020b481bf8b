package geometry

import (
	"errors"
	"fmt"
)

// ErrIndexOutOfRange is returned by NewMesh when a face references a vertex
// that does not exist.
var ErrIndexOutOfRange = errors.New("vertex index out of range")

// Mesh is an immutable indexed triangle mesh. Bounds, closedness and the
// degenerate triangle count are computed once in NewMesh.
type Mesh struct {
	vertices   []Vector3
	faces      [][3]int
	bounds     BoundingBox
	closed     bool
	degenerate int
}

// Integral holds the signed volume and surface area of a run of triangles
type Integral struct {
	SignedVolume float64
	Area         float64
}

// Add returns the componentwise sum of two integrals
func (i Integral) Add(other Integral) Integral {
	return Integral{
		SignedVolume: i.SignedVolume + other.SignedVolume,
		Area:         i.Area + other.Area,
	}
}

// NewMesh creates a mesh from vertex positions and index triples.
// The slices are copied.
func NewMesh(vertices []Vector3, faces [][3]int) (*Mesh, error) {
	for i, f := range faces {
		for _, idx := range f {
			if idx < 0 || idx >= len(vertices) {
				return nil, fmt.Errorf("face %d: index %d with %d vertices: %w", i, idx, len(vertices), ErrIndexOutOfRange)
			}
		}
	}

	m := &Mesh{
		vertices: append([]Vector3(nil), vertices...),
		faces:    append([][3]int(nil), faces...),
	}
	m.bounds = m.computeBounds()
	m.degenerate, m.closed = m.computeTopology()
	return m, nil
}

// computeBounds spans every vertex position, referenced or not. A mesh
// without triangles is empty and keeps the empty sentinel.
func (m *Mesh) computeBounds() BoundingBox {
	bbox := NewBoundingBox()
	if len(m.faces) == 0 {
		return bbox
	}
	for _, v := range m.vertices {
		bbox.Extend(v)
	}
	return bbox
}

type edgeKey struct{ a, b int }

// computeTopology counts degenerate faces and checks that, after welding
// identical positions, every edge of the remaining faces is shared by
// exactly two faces.
func (m *Mesh) computeTopology() (int, bool) {
	weld := make(map[Vector3]int, len(m.vertices))
	canonical := make([]int, len(m.vertices))
	for i, v := range m.vertices {
		id, ok := weld[v]
		if !ok {
			id = len(weld)
			weld[v] = id
		}
		canonical[i] = id
	}

	degenerate := 0
	edges := make(map[edgeKey]int, len(m.faces)*3/2)
	for i, f := range m.faces {
		if m.Triangle(i).IsDegenerate() {
			degenerate++
			continue
		}
		for k := 0; k < 3; k++ {
			a, b := canonical[f[k]], canonical[f[(k+1)%3]]
			if a > b {
				a, b = b, a
			}
			edges[edgeKey{a, b}]++
		}
	}

	if len(edges) == 0 {
		return degenerate, false
	}
	for _, n := range edges {
		if n != 2 {
			return degenerate, false
		}
	}
	return degenerate, true
}

// VertexCount returns the number of vertex positions
func (m *Mesh) VertexCount() int {
	return len(m.vertices)
}

// TriangleCount returns the number of triangles, degenerate ones included
func (m *Mesh) TriangleCount() int {
	return len(m.faces)
}

// DegenerateCount returns the number of zero-area triangles
func (m *Mesh) DegenerateCount() int {
	return m.degenerate
}

// IsEmpty reports whether the mesh has no triangle with a non-zero area
func (m *Mesh) IsEmpty() bool {
	return len(m.faces) == m.degenerate
}

// IsClosed reports whether the surface is watertight
func (m *Mesh) IsClosed() bool {
	return m.closed
}

// Bounds returns the bounding box of all vertices referenced by a triangle
func (m *Mesh) Bounds() BoundingBox {
	return m.bounds
}

// Vertex returns the i-th vertex position
func (m *Mesh) Vertex(i int) Vector3 {
	return m.vertices[i]
}

// Face returns the vertex indices of the i-th triangle
func (m *Mesh) Face(i int) [3]int {
	return m.faces[i]
}

// Triangle returns the i-th triangle
func (m *Mesh) Triangle(i int) Triangle {
	f := m.faces[i]
	return NewTriangle(m.vertices[f[0]], m.vertices[f[1]], m.vertices[f[2]])
}

// Triangles returns all triangles in index order
func (m *Mesh) Triangles() []Triangle {
	triangles := make([]Triangle, len(m.faces))
	for i := range m.faces {
		triangles[i] = m.Triangle(i)
	}
	return triangles
}

// Transform returns a new mesh with every vertex transformed. Closedness and
// the degenerate count carry over unless t is singular and flattens the mesh.
func (m *Mesh) Transform(t Transform) *Mesh {
	out := &Mesh{
		vertices:   make([]Vector3, len(m.vertices)),
		faces:      m.faces,
		closed:     m.closed,
		degenerate: m.degenerate,
	}
	for i, v := range m.vertices {
		out.vertices[i] = t.Apply(v)
	}
	out.bounds = out.computeBounds()
	if t.Determinant() == 0 {
		out.degenerate, out.closed = out.computeTopology()
	}
	return out
}

// Integrate sums signed tetrahedron volumes about ref and triangle areas
// over triangles [lo, hi). Degenerate triangles are skipped.
func (m *Mesh) Integrate(lo, hi int, ref Vector3) Integral {
	var sum Integral
	for i := lo; i < hi; i++ {
		tri := m.Triangle(i)
		if tri.IsDegenerate() {
			continue
		}
		sum.SignedVolume += tri.SignedVolume(ref)
		sum.Area += tri.Area()
	}
	return sum
}
