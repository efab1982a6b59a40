// Package deps inserts the minimal halo-exchange and global-reduction
// nodes a Schedule needs for correct distributed-memory execution.
//
// The analyzer walks the top-level nodes of a Schedule in order, tracking
// per (field, vector component) how deep into the halo the local copy is
// known to be clean. A read through a depth-d stencil whose field is not
// clean to depth d gets a HaloExchange inserted immediately before the
// reading node; a read that a prior write or exchange already covers gets
// nothing. Builtin calls that accumulate into a reduce-sum scalar get a
// GlobalReduction appended immediately after their containing node.
//
// Exchanges and reductions already present in the tree are treated as
// authoritative: still-required ones are kept, stale ones are detached.
// Re-running the analyzer on a correct tree is therefore a no-op.
package deps
