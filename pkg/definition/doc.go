/*
Package definition holds the intermediate representation of behaviour tree definitions.

Both the MDSL parser and the JSON/YAML decoders produce []*Node; the validator
and the runtime builder consume it. A definition is a list of root nodes: exactly
one of them has no ID and acts as the main root, the others are named subtrees
reachable through branch nodes.

JSON form:

	[
	  {
	    "type": "root",
	    "child": {
	      "type": "sequence",
	      "while": {"call": "IsAlive"},
	      "children": [
	        {"type": "action", "call": "Attack", "args": [10, {"$": "target"}]},
	        {"type": "wait", "duration": [500, 1000]},
	        {"type": "branch", "ref": "flee"}
	      ]
	    }
	  },
	  {"type": "root", "id": "flee", "child": {"type": "action", "call": "Run"}}
	]
*/
package definition
