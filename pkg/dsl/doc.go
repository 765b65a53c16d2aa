/*
Package dsl provides a Go DSL for programmatically constructing behaviour tree definitions.

It builds the same []*definition.Node an MDSL or JSON definition compiles to,
using a fluent builder instead of text. This is useful for generated trees,
unit tests and IDE autocompletion.

Example usage:

	roots, err := dsl.New(
		dsl.Selector(
			dsl.Sequence(
				dsl.Condition("SeesEnemy"),
				dsl.Action("Attack", dsl.Prop("weapon")),
			).While("IsAlive"),
			dsl.Branch("Patrol"),
		),
	).Subtree("Patrol",
		dsl.RepeatForever(dsl.Sequence(dsl.Action("Walk"), dsl.Wait(500))),
	).Build()

	tree, err := arbor.Compile(roots, agent)
*/
package dsl
