// Package transform rewrites Schedule trees under validated preconditions.
//
// Every transformation implements the Transformation interface: Validate
// checks the preconditions against the current tree and Apply performs the
// rewrite. Apply re-validates defensively, so a rewrite either happens
// completely or the tree is left exactly as it was; there is no partial
// application. Transformations are applied strictly in the order the
// caller requests them, each validating against the tree state the
// previous ones left behind.
//
// The Registry lists the available transformations by name for scripted
// drivers, in the spirit of a transformation catalogue: new rewrites are
// added by implementing the interface and registering a factory, not by
// extending a hierarchy.
package transform
