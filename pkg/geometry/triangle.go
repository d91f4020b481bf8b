package geometry

// degenerateTolerance bounds |e1 x e2| relative to the squared longest edge.
const degenerateTolerance = 1e-12

// Triangle is a triangular facet with a fixed winding order V1 -> V2 -> V3.
// Counter-clockwise winding seen from outside gives an outward normal.
type Triangle struct {
	V1, V2, V3 Vector3
}

// NewTriangle creates a new triangle
func NewTriangle(v1, v2, v3 Vector3) Triangle {
	return Triangle{V1: v1, V2: v2, V3: v3}
}

func (t Triangle) cross() Vector3 {
	return t.V2.Sub(t.V1).Cross(t.V3.Sub(t.V1))
}

// Normal returns the unit normal implied by the winding order
func (t Triangle) Normal() Vector3 {
	return t.cross().Normalize()
}

// Area returns the surface area of the triangle
func (t Triangle) Area() float64 {
	return t.cross().Length() / 2.0
}

// EdgeLengths returns the lengths of all three edges
func (t Triangle) EdgeLengths() [3]float64 {
	return [3]float64{
		t.V1.Distance(t.V2),
		t.V2.Distance(t.V3),
		t.V3.Distance(t.V1),
	}
}

// Perimeter returns the total length of all edges
func (t Triangle) Perimeter() float64 {
	lengths := t.EdgeLengths()
	return lengths[0] + lengths[1] + lengths[2]
}

// Center returns the centroid of the triangle
func (t Triangle) Center() Vector3 {
	return Vector3{
		X: (t.V1.X + t.V2.X + t.V3.X) / 3.0,
		Y: (t.V1.Y + t.V2.Y + t.V3.Y) / 3.0,
		Z: (t.V1.Z + t.V2.Z + t.V3.Z) / 3.0,
	}
}

// IsDegenerate reports whether the vertices are coincident or collinear.
func (t Triangle) IsDegenerate() bool {
	lengths := t.EdgeLengths()
	longest := lengths[0]
	if lengths[1] > longest {
		longest = lengths[1]
	}
	if lengths[2] > longest {
		longest = lengths[2]
	}
	if longest == 0 {
		return true
	}
	return t.cross().Length() <= degenerateTolerance*longest*longest
}

// SignedVolume returns the signed volume of the tetrahedron spanned by the
// triangle and ref. Summed over a closed, outward-wound surface the result is
// the enclosed volume independent of ref.
func (t Triangle) SignedVolume(ref Vector3) float64 {
	a := t.V1.Sub(ref)
	b := t.V2.Sub(ref)
	c := t.V3.Sub(ref)
	return a.Dot(b.Cross(c)) / 6.0
}
