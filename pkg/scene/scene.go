// Package scene holds the in-memory massing model: a tree of named nodes,
// each with an optional mesh, a local transform and material/category
// metadata. Scenes are immutable after construction.
package scene

import (
	"errors"

	"github.com/philipparndt/gomassing/pkg/geometry"
)

// SkipChildren can be returned by a WalkFunc to skip the visited node's
// subtree without stopping the walk.
var SkipChildren = errors.New("skip children")

// Metadata describes where a scene came from
type Metadata struct {
	Source string
	Units  Units
	Format string
}

// Scene is a parsed massing model
type Scene struct {
	root  *Node
	meta  Metadata
	count int
}

// New creates a scene rooted at root
func New(root *Node, meta Metadata) *Scene {
	if meta.Units == "" {
		meta.Units = DefaultUnits
	}
	s := &Scene{root: root, meta: meta}
	_ = s.Walk(func(Visit) error {
		s.count++
		return nil
	})
	return s
}

// Root returns the root node
func (s *Scene) Root() *Node { return s.root }

// Metadata returns the document metadata
func (s *Scene) Metadata() Metadata { return s.meta }

// Source returns the source document name
func (s *Scene) Source() string { return s.meta.Source }

// Units returns the coordinate units of the document
func (s *Scene) Units() Units { return s.meta.Units }

// NodeCount returns the number of nodes including the root
func (s *Scene) NodeCount() int { return s.count }

// Visit describes a node reached during a walk
type Visit struct {
	Node *Node
	// Path is the slash-separated chain of names from the root, e.g.
	// "/site/tower/slab-03". Unnamed nodes contribute their ID.
	Path  string
	Depth int
	// Index is the position of the node in depth-first document order
	Index int
	// World is the cumulative transform from the node to the walk's base
	World geometry.Transform
}

// WalkFunc is called for every visited node
type WalkFunc func(v Visit) error

// Walk visits every node depth-first in document order, with World set to
// the cumulative root-to-node transform.
func (s *Scene) Walk(fn WalkFunc) error {
	return s.WalkFrom(geometry.Identity(), fn)
}

// WalkFrom is Walk with base applied on top of every world transform,
// for example a unit conversion.
func (s *Scene) WalkFrom(base geometry.Transform, fn WalkFunc) error {
	if s.root == nil {
		return nil
	}
	index := 0
	return walk(s.root, "", 0, base, &index, fn)
}

func walk(n *Node, parentPath string, depth int, parent geometry.Transform, index *int, fn WalkFunc) error {
	label := n.name
	if label == "" {
		label = n.id
	}
	v := Visit{
		Node:  n,
		Path:  parentPath + "/" + label,
		Depth: depth,
		Index: *index,
		World: parent.Mul(n.transform),
	}
	*index++

	if err := fn(v); err != nil {
		if errors.Is(err, SkipChildren) {
			return nil
		}
		return err
	}
	for _, child := range n.children {
		if err := walk(child, v.Path, depth+1, v.World, index, fn); err != nil {
			return err
		}
	}
	return nil
}

// Find returns the node with the given ID
func (s *Scene) Find(id string) (*Node, bool) {
	var found *Node
	_ = s.Walk(func(v Visit) error {
		if v.Node.id == id {
			found = v.Node
			return errFound
		}
		return nil
	})
	return found, found != nil
}

var errFound = errors.New("found")
