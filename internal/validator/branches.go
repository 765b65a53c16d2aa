package validator

import (
	"slices"

	"github.com/aretw0/arbor/pkg/definition"
)

type rootLinks struct {
	id   string
	refs []string
}

// ValidateBranchLinks walks branch references between roots depth-first, from
// the main root first and then from every named root, and fails on the first
// cycle. In strict mode a ref that names no root is also an error.
func ValidateBranchLinks(roots []*definition.Node, strict bool) error {
	links := make([]rootLinks, 0, len(roots))
	byID := make(map[string]rootLinks, len(roots))
	for _, root := range roots {
		l := rootLinks{id: root.ID, refs: root.BranchRefs()}
		links = append(links, l)
		byID[root.ID] = l
	}

	// Roots whose reachable refs were fully walked without finding a cycle.
	done := make(map[string]bool, len(links))

	var follow func(l rootLinks, path []string) error
	follow = func(l rootLinks, path []string) error {
		if slices.Contains(path, l.id) {
			return invalid("circular dependency found in branch node references: %s", joinPath(append(path, l.id)))
		}
		if done[l.id] {
			return nil
		}

		next := append(slices.Clip(path), l.id)
		for _, ref := range l.refs {
			target, ok := byID[ref]
			if !ok {
				if !strict {
					continue
				}
				if l.id == "" {
					return invalid("primary tree has branch node that refers to root node '%s' which has not been defined", ref)
				}
				return invalid("subtree '%s' has branch node that refers to root node '%s' which has not been defined", l.id, ref)
			}
			if err := follow(target, next); err != nil {
				return err
			}
		}

		done[l.id] = true
		return nil
	}

	if main, ok := byID[""]; ok {
		if err := follow(main, nil); err != nil {
			return err
		}
	}
	for _, l := range links {
		if err := follow(l, nil); err != nil {
			return err
		}
	}
	return nil
}
