package region

import (
	"fmt"

	"github.com/edp1096/toy-ddmac/pkg/dof"
	"github.com/edp1096/toy-ddmac/pkg/matrix"
	"github.com/edp1096/toy-ddmac/pkg/mesh"
)

// Jacobian is read-only row access to the DC Jacobian, indexed in the
// real-part numbering of the AC system. *sparse.CSR from
// github.com/james-bowman/sparse satisfies it.
//
// Under dof.NodeBlocked the imaginary partner of a column is found with the
// block width of the region filling the row, so a row of a region may only
// reference that region's own unknowns. Coupling between regions goes
// through an interface boundary instead.
type Jacobian interface {
	At(i, j int) float64
	DoRowNonZero(i int, fn func(i, j int, v float64))
}

// Adjacent names a node of another region. It is a topological reference
// resolved through a Lookup when used, never an owning pointer.
type Adjacent struct {
	Region int
	Node   int
}

func (a Adjacent) String() string {
	return fmt.Sprintf("%d:%d", a.Region, a.Node)
}

type Lookup interface {
	Region(id int) (Region, error)
}

// Region is a homogeneous simulation domain taking part in AC assembly.
type Region interface {
	ID() int
	Name() string
	Variables() *dof.Set
	Layout() dof.Layout
	Rank() int
	EnableTl() bool
	Nodes() []*mesh.Node
	Node(id int) (*mesh.Node, error)

	// Bind attaches the region to the DOF space of a system.
	Bind(lookup Lookup, layout dof.Layout)

	FillValue(x, L *matrix.Vector)
	FillMatrixVector(a matrix.Assembler, J Jacobian, omega float64)
	FillNodalMatrixVector(node *mesh.Node, a matrix.Assembler, J Jacobian, omega float64, adj *Adjacent)
	FillNodalVariable(node *mesh.Node, v dof.Variable, a matrix.Assembler, J Jacobian, omega float64, adj *Adjacent)
	FillTransformationMatrix(a matrix.Assembler, J Jacobian, omega float64) error
	ForceEqual(node *mesh.Node, a matrix.Assembler, adj Adjacent)
	ForceEqualVariable(node *mesh.Node, v dof.Variable, a matrix.Assembler, adj Adjacent)
	UpdateSolution(lxx []float64)
}

// Resolve finds the region and node an Adjacent points to.
func Resolve(lookup Lookup, adj Adjacent) (Region, *mesh.Node, error) {
	if lookup == nil {
		return nil, nil, fmt.Errorf("%w: no lookup bound", ErrUnknownRegion)
	}
	r, err := lookup.Region(adj.Region)
	if err != nil {
		return nil, nil, err
	}
	node, err := r.Node(adj.Node)
	if err != nil {
		return nil, nil, err
	}
	return r, node, nil
}

// Registry is a Lookup over a fixed set of regions.
type Registry map[int]Region

func (r Registry) Region(id int) (Region, error) {
	reg, ok := r[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownRegion, id)
	}
	return reg, nil
}

// IndexOf returns the complex index of variable v at node inside region r.
// It panics when r does not solve for v.
func IndexOf(r Region, node *mesh.Node, v dof.Variable) matrix.Index {
	vars := r.Variables()
	off := vars.Offset(v)
	if off == dof.InvalidOffset {
		panic(fmt.Sprintf("region %s: variable %v has no offset", r.Name(), v))
	}
	re := node.GlobalOffset + off
	return matrix.Index{Re: re, Im: r.Layout().Imag(re, vars.Count())}
}
