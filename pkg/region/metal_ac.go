package region

import (
	"fmt"

	"github.com/edp1096/toy-ddmac/pkg/dof"
	"github.com/edp1096/toy-ddmac/pkg/matrix"
	"github.com/edp1096/toy-ddmac/pkg/mesh"
)

// FillMatrixVector copies the Jacobian rows of every owned interior node
// into the AC matrix. Boundary nodes are left to the boundary conditions.
func (m *Metal) FillMatrixVector(a matrix.Assembler, J Jacobian, omega float64) {
	a.Use(matrix.Add)

	for _, node := range m.ownedNodes() {
		if node.OnBoundary() {
			continue
		}
		m.FillNodalMatrixVector(node, a, J, omega, nil)
	}
}

// FillNodalMatrixVector fills the AC rows of every variable of node. When
// adj is set the rows are written into the equations of the adjacent node
// in its own region instead of the node's own equations.
func (m *Metal) FillNodalMatrixVector(node *mesh.Node, a matrix.Assembler, J Jacobian, omega float64, adj *Adjacent) {
	m.assertOwner(node)
	a.Use(matrix.Add)

	target := m.target(adj)
	for _, v := range m.vars.Variables() {
		m.fillRow(node, v, a, J, target)
	}
	if m.enableTl {
		m.fillThermalStorage(node, a, omega, target)
	}
}

// FillNodalVariable is FillNodalMatrixVector restricted to v.
func (m *Metal) FillNodalVariable(node *mesh.Node, v dof.Variable, a matrix.Assembler, J Jacobian, omega float64, adj *Adjacent) {
	m.assertOwner(node)
	m.offset(v)
	a.Use(matrix.Add)

	target := m.target(adj)
	m.fillRow(node, v, a, J, target)
	if v == dof.Temperature && m.enableTl {
		m.fillThermalStorage(node, a, omega, target)
	}
}

type rowTarget struct {
	region Region
	node   *mesh.Node
}

func (m *Metal) target(adj *Adjacent) *rowTarget {
	if adj == nil {
		return nil
	}
	r, node, err := Resolve(m.lookup, *adj)
	if err != nil {
		panic(fmt.Sprintf("region %s: adjacent %v: %v", m.name, *adj, err))
	}
	return &rowTarget{region: r, node: node}
}

func (m *Metal) destination(node *mesh.Node, v dof.Variable, target *rowTarget) matrix.Index {
	if target != nil {
		return IndexOf(target.region, target.node, v)
	}
	return IndexOf(m, node, v)
}

// fillRow copies Jacobian row (node, v) into the real and the imaginary
// block of the destination row. The entries are real, so no cross term
// between the blocks is produced. Under NodeBlocked the row may only
// reference columns of this region.
func (m *Metal) fillRow(node *mesh.Node, v dof.Variable, a matrix.Assembler, J Jacobian, target *rowTarget) {
	width := m.vars.Count()
	jacobianRow := node.GlobalOffset + m.offset(v)
	row := m.destination(node, v, target)
	_, split := m.layout.(dof.Split)

	J.DoRowNonZero(jacobianRow, func(_, col int, value float64) {
		if !split && !m.columns[col] {
			panic(fmt.Sprintf("region %s: Jacobian row %d references column %d outside the region", m.name, jacobianRow, col))
		}
		a.AddComplex(row, matrix.Index{Re: col, Im: m.layout.Imag(col, width)}, complex(value, 0))
	})
}

// fillThermalStorage adds the j*omega*rho*Cp*V admittance of the control
// volume's heat capacity: +term at (re, im), -term at (im, re).
func (m *Metal) fillThermalStorage(node *mesh.Node, a matrix.Assembler, omega float64, target *rowTarget) {
	data := node.Data
	heatCapacity := m.model.HeatCapacity(data.T)
	term := data.Density * heatCapacity * omega * node.Volume

	row := m.destination(node, dof.Temperature, target)
	a.AddComplex(row, row, complex(0, -term))
}

// FillTransformationMatrix writes the 2x2 block of every owned unknown into
// T: identity, plus +omega/d at (re, im) and -omega/d at (im, re) for
// variables other than potential, d being the Jacobian diagonal. On error T
// keeps the blocks staged before the failing unknown.
func (m *Metal) FillTransformationMatrix(a matrix.Assembler, J Jacobian, omega float64) error {
	a.Use(matrix.Add)

	for _, node := range m.ownedNodes() {
		for _, v := range m.vars.Variables() {
			idx := IndexOf(m, node, v)
			a.AddComplex(idx, idx, 1)

			if v == dof.Potential || omega == 0 {
				continue
			}
			diag := J.At(idx.Re, idx.Re)
			if diag == 0 {
				return fmt.Errorf("%w: region %s node %d variable %v", ErrZeroDiagonal, m.name, node.ID, v)
			}
			a.AddComplex(idx, idx, complex(0, -omega/diag))
		}
	}

	return nil
}

// ForceEqual replaces the equations of node with own - adjacent = 0 for
// potential and, when enabled, temperature.
func (m *Metal) ForceEqual(node *mesh.Node, a matrix.Assembler, adj Adjacent) {
	a.Require(matrix.Add)

	r, other, err := Resolve(m.lookup, adj)
	if err != nil {
		panic(fmt.Sprintf("region %s: adjacent %v: %v", m.name, adj, err))
	}

	m.forceEqual(node, dof.Potential, a, r, other)
	if m.enableTl {
		m.forceEqual(node, dof.Temperature, a, r, other)
	}
}

// ForceEqualVariable is ForceEqual restricted to v. Both regions must solve
// for v.
func (m *Metal) ForceEqualVariable(node *mesh.Node, v dof.Variable, a matrix.Assembler, adj Adjacent) {
	a.Require(matrix.Add)

	r, other, err := Resolve(m.lookup, adj)
	if err != nil {
		panic(fmt.Sprintf("region %s: adjacent %v: %v", m.name, adj, err))
	}

	m.forceEqual(node, v, a, r, other)
}

func (m *Metal) forceEqual(node *mesh.Node, v dof.Variable, a matrix.Assembler, r Region, other *mesh.Node) {
	m.assertOwner(node)

	own := IndexOf(m, node, v)
	adjacent := IndexOf(r, other, v)

	a.ClearRow(own.Re)
	a.ClearRow(own.Im)
	a.AddComplex(own, own, 1)
	a.AddComplex(own, adjacent, -1)
}
