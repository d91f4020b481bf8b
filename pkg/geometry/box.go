package geometry

// boxFaces lists the 12 outward-wound triangles of a box. Corners 0-3 run
// counter-clockwise around the bottom face, 4-7 around the top face.
var boxFaces = [][3]int{
	{0, 2, 1}, {0, 3, 2}, // bottom
	{4, 5, 6}, {4, 6, 7}, // top
	{0, 1, 5}, {0, 5, 4}, // front
	{3, 7, 6}, {3, 6, 2}, // back
	{0, 4, 7}, {0, 7, 3}, // left
	{1, 2, 6}, {1, 6, 5}, // right
}

// NewBox returns a closed, outward-wound triangulated box spanning the two
// corners.
func NewBox(a, b Vector3) *Mesh {
	lo, hi := a.Min(b), a.Max(b)
	vertices := []Vector3{
		{lo.X, lo.Y, lo.Z},
		{hi.X, lo.Y, lo.Z},
		{hi.X, hi.Y, lo.Z},
		{lo.X, hi.Y, lo.Z},
		{lo.X, lo.Y, hi.Z},
		{hi.X, lo.Y, hi.Z},
		{hi.X, hi.Y, hi.Z},
		{lo.X, hi.Y, hi.Z},
	}
	mesh, err := NewMesh(vertices, boxFaces)
	if err != nil {
		// boxFaces only references the eight corners above
		panic(err)
	}
	return mesh
}
