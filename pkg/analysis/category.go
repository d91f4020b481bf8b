package analysis

import (
	"strings"

	"github.com/philipparndt/gomassing/pkg/scene"
)

// categoryKeywords maps name fragments to categories, checked in order
var categoryKeywords = []struct {
	category string
	words    []string
}{
	{"floor", []string{"slab", "floor", "plate"}},
	{"beam", []string{"beam", "girder"}},
	{"column", []string{"column", "pillar"}},
	{"wall", []string{"wall"}},
	{"roof", []string{"roof"}},
	{"core", []string{"core"}},
}

// InferCategory derives a category from a node name, e.g. "Level 3 Slab"
// is a floor. Unrecognized names yield UnknownCategory.
func InferCategory(name string) string {
	name = strings.ToLower(name)
	for _, k := range categoryKeywords {
		for _, w := range k.words {
			if strings.Contains(name, w) {
				return k.category
			}
		}
	}
	return UnknownCategory
}

// categoryOf returns the normalized category of n and whether it was inferred
func categoryOf(n *scene.Node, infer bool) (string, bool) {
	if c := scene.NormalizeKey(n.Category()); c != "" {
		return c, false
	}
	if !infer {
		return UnknownCategory, false
	}
	return InferCategory(n.Name()), true
}
