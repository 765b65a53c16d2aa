/*
Package domain contains the core types shared by the arbor compiler, runtime and adapters.

It is kept free of I/O and third-party dependencies so every other package can
import it.

# Key Entities

  - State: READY, RUNNING, SUCCEEDED or FAILED.
  - NodeType: the node vocabulary of the definition language.
  - NodeDetails: a snapshot of a runtime node used by tooling.
  - StateChange: the event emitted on every node transition.
  - Future / Promise: pollable results for asynchronous actions.
  - SyntaxError, ValidationError, BuildError, RuntimeError: the error taxonomy.
*/
package domain
