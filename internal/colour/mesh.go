package colour

import "github.com/psykit/psykit/internal/ir"

// QuadMesh is a structured nx by ny mesh of quadrilateral cells. It is the
// concrete mesh the CLI builds from configuration; the colouring engine
// itself only sees DofMap.
type QuadMesh struct {
	nx, ny int
}

// NewQuadMesh creates a structured quad mesh with nx*ny cells.
func NewQuadMesh(nx, ny int) *QuadMesh {
	return &QuadMesh{nx: nx, ny: ny}
}

// NCells returns the number of cells.
func (m *QuadMesh) NCells() int { return m.nx * m.ny }

// DofMap returns the cell-to-dof mapping for the named function space.
// Continuous spaces place dofs on cell vertices, shared between the up to
// four cells meeting there; discontinuous spaces keep a single dof in the
// cell interior, shared with nobody.
func (m *QuadMesh) DofMap(space string) DofMap {
	if ir.SpaceIsDiscontinuous(space) {
		return &cellDofMap{mesh: m}
	}
	return &vertexDofMap{mesh: m}
}

// vertexDofMap: dofs at vertices of an (nx+1)x(ny+1) lattice.
type vertexDofMap struct {
	mesh *QuadMesh
}

func (v *vertexDofMap) NCells() int { return v.mesh.NCells() }

func (v *vertexDofMap) CellDofs(cell int) []int {
	nx := v.mesh.nx
	cx, cy := cell%nx, cell/nx
	stride := nx + 1
	base := cy*stride + cx
	return []int{base, base + 1, base + stride, base + stride + 1}
}

// cellDofMap: one private dof per cell.
type cellDofMap struct {
	mesh *QuadMesh
}

func (c *cellDofMap) NCells() int { return c.mesh.NCells() }

func (c *cellDofMap) CellDofs(cell int) []int {
	return []int{cell}
}
