package ir

import "strings"

// discontinuousSpaces lists the function spaces whose dofs live strictly
// inside a cell, so no dof is shared between neighbouring cells.
var discontinuousSpaces = map[string]bool{
	"w3":     true,
	"wtheta": true,
	"w2v":    true,
}

// SpaceIsDiscontinuous reports whether the named function space has no
// shared dofs. A space whose continuity cannot be determined statically
// ("any_space_*") is treated as continuous, the conservative choice for
// dependence analysis.
func SpaceIsDiscontinuous(space string) bool {
	return discontinuousSpaces[strings.ToLower(space)]
}
