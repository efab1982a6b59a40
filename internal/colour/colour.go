// Package colour partitions mesh cells into colour classes so that loops
// with increment access can update shared dofs race-free: within one class
// no two cells touch the same dof, so the class can run in parallel and
// classes run one after another.
//
// The colouring is greedy over the shared-dof adjacency graph. Greedy is
// not chromatically optimal and does not need to be; correctness only
// requires that no two same-coloured cells are adjacent.
package colour

import "fmt"

// DofMap exposes which dofs of one function space each cell touches.
type DofMap interface {
	// NCells returns the number of cells.
	NCells() int
	// CellDofs returns the dof ids of the given cell. The slice must not
	// be mutated by the caller.
	CellDofs(cell int) []int
}

// Colouring is a partition of cells into colour classes.
type Colouring struct {
	// Classes holds the cells of each colour, in ascending cell order.
	Classes [][]int
}

// NColours returns the number of colour classes.
func (c Colouring) NColours() int { return len(c.Classes) }

// Greedy colours the cells of m so that no two cells sharing a dof land in
// the same class. Cells are processed in index order, each taking the
// smallest colour not used by an already-coloured neighbour, so the result
// is deterministic.
func Greedy(m DofMap) Colouring {
	n := m.NCells()

	// Invert cell->dofs to dof->cells; adjacency is "shares any dof".
	dofCells := make(map[int][]int)
	for cell := 0; cell < n; cell++ {
		for _, dof := range m.CellDofs(cell) {
			dofCells[dof] = append(dofCells[dof], cell)
		}
	}

	colourOf := make([]int, n)
	for i := range colourOf {
		colourOf[i] = -1
	}

	nColours := 0
	taken := make(map[int]bool)
	for cell := 0; cell < n; cell++ {
		clear(taken)
		for _, dof := range m.CellDofs(cell) {
			for _, other := range dofCells[dof] {
				if other != cell && colourOf[other] >= 0 {
					taken[colourOf[other]] = true
				}
			}
		}
		c := 0
		for taken[c] {
			c++
		}
		colourOf[cell] = c
		if c+1 > nColours {
			nColours = c + 1
		}
	}

	classes := make([][]int, nColours)
	for cell, c := range colourOf {
		classes[c] = append(classes[c], cell)
	}
	return Colouring{Classes: classes}
}

// Check verifies the colouring invariants against m: every cell appears in
// exactly one class, and no two cells of one class share a dof. A nil
// return means the colouring is a valid race-free partition.
func (c Colouring) Check(m DofMap) error {
	seen := make(map[int]int)
	total := 0
	for ci, class := range c.Classes {
		classDofs := make(map[int]int)
		for _, cell := range class {
			if prev, dup := seen[cell]; dup {
				return fmt.Errorf("cell %d in colours %d and %d", cell, prev, ci)
			}
			seen[cell] = ci
			total++
			for _, dof := range m.CellDofs(cell) {
				if other, clash := classDofs[dof]; clash {
					return fmt.Errorf("colour %d: cells %d and %d share dof %d", ci, other, cell, dof)
				}
				classDofs[dof] = cell
			}
		}
	}
	if total != m.NCells() {
		return fmt.Errorf("coloured %d of %d cells", total, m.NCells())
	}
	return nil
}
