/*
Package ports defines the driven ports (interfaces) of the arbor runtime.

These interfaces decouple tree compilation from where definitions live, allowing
subtrees to be loaded from memory, Redis or a Loam repository.

# Key Interfaces

  - DefinitionSource: Lists and loads raw subtree definitions by name.
  - Watchable: Signals which definition changed, for hot reload.
*/
package ports
