/*
Package observability exposes Prometheus metrics for compiled trees.

Metrics are fed by the node state observer and by Tree.Step, so they count
every transition and every step without touching the runtime itself.
*/
package observability
