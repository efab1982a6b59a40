// Package ir provides the intermediate representation for PSYKIT.
//
// An invocation unit is represented as a Schedule: an arena-backed tree of
// nodes (Loop, KernelCall, BuiltinCall, Directive, HaloExchange,
// GlobalReduction) rooted at the Schedule itself. Children and parents are
// arena indices (NodeID), not pointers, so ownership is never cyclic and
// backward dependence walks get O(1) parent lookup.
//
// This package contains the tree, its node kinds and the operations every
// other internal package needs (walk, replace, copy, view, fingerprint).
// All other internal packages import ir; ir imports nothing internal. This
// ensures IR remains the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - Node is a closed tagged variant (Kind + one payload), never an open
//     class hierarchy; consumers switch exhaustively over Kind
//   - Argument access mode, space and stencil are fixed at construction and
//     never mutated by a transformation
//   - A detached node stays in the arena but is unreachable from the root;
//     operations that address it fail with StructureError
package ir
