package scene

import (
	"github.com/philipparndt/gomassing/pkg/geometry"
)

// UnknownMaterial is the material of nodes that do not declare one
const UnknownMaterial = "unknown"

// NodeSpec carries the fields of a node under construction
type NodeSpec struct {
	ID        string
	Name      string
	Mesh      *geometry.Mesh
	Transform geometry.Transform
	Material  string
	Category  string
	// DeclaredCarbon is an embodied carbon figure (kgCO2e) supplied by the
	// authoring tool, nil when absent.
	DeclaredCarbon *float64
	Children       []*Node
}

// Node is one entity of the massing model. A node owns at most one mesh,
// a local transform and its children; it is immutable once built.
type Node struct {
	id             string
	name           string
	mesh           *geometry.Mesh
	transform      geometry.Transform
	material       string
	category       string
	declaredCarbon *float64
	children       []*Node
}

// NewNode builds a node from spec. An empty material becomes UnknownMaterial;
// the zero Transform already behaves as the identity.
func NewNode(spec NodeSpec) *Node {
	n := &Node{
		id:        spec.ID,
		name:      spec.Name,
		mesh:      spec.Mesh,
		transform: spec.Transform,
		material:  spec.Material,
		category:  spec.Category,
		children:  append([]*Node(nil), spec.Children...),
	}
	if n.material == "" {
		n.material = UnknownMaterial
	}
	if spec.DeclaredCarbon != nil {
		c := *spec.DeclaredCarbon
		n.declaredCarbon = &c
	}
	return n
}

// ID returns the node identifier, unique within its scene
func (n *Node) ID() string { return n.id }

// Name returns the display name
func (n *Node) Name() string { return n.name }

// Mesh returns the node's mesh or nil for group-only nodes
func (n *Node) Mesh() *geometry.Mesh { return n.mesh }

// HasMesh reports whether the node owns a mesh
func (n *Node) HasMesh() bool { return n.mesh != nil }

// Transform returns the local transform relative to the parent
func (n *Node) Transform() geometry.Transform { return n.transform }

// Material returns the material identifier as authored
func (n *Node) Material() string { return n.material }

// Category returns the category label, possibly empty
func (n *Node) Category() string { return n.category }

// DeclaredCarbon returns the authored embodied carbon, if any
func (n *Node) DeclaredCarbon() (float64, bool) {
	if n.declaredCarbon == nil {
		return 0, false
	}
	return *n.declaredCarbon, true
}

// Children returns a copy of the ordered child list
func (n *Node) Children() []*Node {
	return append([]*Node(nil), n.children...)
}

// ChildCount returns the number of direct children
func (n *Node) ChildCount() int { return len(n.children) }
