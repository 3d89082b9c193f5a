/*
Package builder populates a graph store from a format-agnostic config.Model.

Construction happens in two passes:

 1. Node creation: every declared node is instantiated from its component
    template under its declared name. Content overrides are coerced to the
    type the component declares for that content, and optional title,
    description and lazy settings replace the template's.

 2. Linking: every declared edge is connected through the store, so the usual
    port validation, single-edge-per-input replacement and cycle rejection
    apply.

The store publishes an event for each insertion, which is how an attached
evaluator learns about the new graph.
*/
package builder
