/*
Package arbor compiles behaviour tree definitions and ticks them against a host agent.

A definition is written in MDSL, a small bracketed language, or in the equivalent
JSON/YAML form. Compile turns it into a Tree bound to an agent: any Go value whose
methods (or registered functions) answer the action, condition, guard and callback
names used by the definition.

# Concept

Every Step walks the tree once from the root. Composite nodes (sequence, selector,
parallel, race, all, lotto) decide which children run, decorators (root, repeat,
retry, flip, succeed, fail) reshape a single child's outcome, and leaves (action,
condition, wait) call into the agent. Nothing blocks: long running actions return a
domain.Future which is polled on later steps.

# Usage

	agent := &Guard{}
	tree, err := arbor.Compile(`root {
		selector {
			sequence { condition [IsAlerted] action [Chase] }
			action [Patrol]
		}
	}`, agent)
	if err != nil {
		log.Fatal(err)
	}

	for tree.State() != domain.Succeeded {
		if err := tree.Step(); err != nil {
			log.Fatal(err)
		}
	}

Subtrees and shared functions live in a registry.Registry passed with WithRegistry.
Subtrees may also be loaded from a ports.DefinitionSource such as the memory, redis
or loam adapters.
*/
package arbor
