package parser

import "encoding/json"

type visitState int

const (
	unvisited visitState = iota
	onPath
	placed
)

// site is a position in the document where a node appears: either an inline
// node object or a string reference into the node library.
type site struct {
	obj  map[string]any
	id   string
	path string
}

// resolveSite turns a child entry into the node object it denotes. The
// identity of a referenced node is its library key; an inline node is
// identified by its "id" or "uuid" member, if any.
func resolveSite(v any, path string, library map[string]any) (site, error) {
	switch t := v.(type) {
	case string:
		if library == nil {
			return site{}, newError(ErrInvalidField, path, "node references are not supported in this format")
		}
		entry, ok := library[t]
		if !ok {
			return site{}, newError(ErrInvalidField, path, "unknown node reference %q", t)
		}
		libPath := field("$.nodes", t)
		obj, err := asObject(entry, libPath)
		if err != nil {
			return site{}, err
		}
		return site{obj: obj, id: t, path: libPath}, nil
	case map[string]any:
		s := site{obj: t, path: path}
		if id, _, ok := lookup(t, "id", "uuid"); ok {
			switch id := id.(type) {
			case string:
				s.id = id
			case json.Number:
				s.id = id.String()
			}
		}
		return s, nil
	}
	return site{}, newError(ErrInvalidField, path, "expected node object or reference, got %s", jsonType(v))
}

type frame struct {
	site     site
	children []any
	next     int
}

// checkReferences walks the node graph reachable from root with an explicit
// stack and fails with ErrCyclicReference when a node identity is met again,
// either as its own ancestor or as a second placement elsewhere in the tree.
// The walk needs no recursion, so arbitrarily long reference chains and
// cycles are rejected without exhausting the stack, independent of any depth
// limit.
func checkReferences(root any, rootPath string, library map[string]any) error {
	visited := make(map[string]visitState)
	var stack []*frame

	enter := func(v any, path string) error {
		s, err := resolveSite(v, path, library)
		if err != nil {
			return err
		}
		if s.id != "" {
			switch visited[s.id] {
			case onPath:
				return newError(ErrCyclicReference, path, "node %q is its own ancestor", s.id)
			case placed:
				return newError(ErrCyclicReference, path, "node %q is referenced more than once", s.id)
			}
			visited[s.id] = onPath
		}
		children, _ := s.obj["children"].([]any)
		stack = append(stack, &frame{site: s, children: children})
		return nil
	}

	if err := enter(root, rootPath); err != nil {
		return err
	}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		if top.next < len(top.children) {
			i := top.next
			top.next++
			if err := enter(top.children[i], item(field(top.site.path, "children"), i)); err != nil {
				return err
			}
			continue
		}
		if top.site.id != "" {
			visited[top.site.id] = placed
		}
		stack = stack[:len(stack)-1]
	}
	return nil
}
