package region

import (
	"fmt"

	"github.com/edp1096/toy-ddmac/pkg/dof"
	"github.com/edp1096/toy-ddmac/pkg/material"
	"github.com/edp1096/toy-ddmac/pkg/matrix"
	"github.com/edp1096/toy-ddmac/pkg/mesh"
)

// Metal is a resistance region: potential, and lattice temperature when
// heating is enabled, on every node.
type Metal struct {
	id       int
	name     string
	vars     *dof.Set
	layout   dof.Layout
	lookup   Lookup
	rank     int
	enableTl bool
	nodes    []*mesh.Node
	byID     map[int]*mesh.Node
	columns  map[int]bool // real-part indices of the local nodes
	model    material.Evaluator
}

var _ Region = (*Metal)(nil)

type Option func(*Metal)

// WithLatticeTemperature adds the lattice temperature equation.
func WithLatticeTemperature() Option {
	return func(m *Metal) { m.enableTl = true }
}

// WithRank sets the process this region instance assembles for.
func WithRank(rank int) Option {
	return func(m *Metal) { m.rank = rank }
}

// NewMetal creates a region over nodes, which must hold every node local to
// the process: owned nodes and ghosts.
func NewMetal(id int, name string, nodes []*mesh.Node, model material.Evaluator, opts ...Option) *Metal {
	m := &Metal{
		id:     id,
		name:   name,
		layout: dof.NodeBlocked{},
		nodes:  nodes,
		byID:   make(map[int]*mesh.Node, len(nodes)),
		model:  model,
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.enableTl {
		m.vars = dof.NewSet(dof.Potential, dof.Temperature)
	} else {
		m.vars = dof.NewSet(dof.Potential)
	}
	for _, n := range nodes {
		m.byID[n.ID] = n
	}
	return m
}

func (m *Metal) ID() int             { return m.id }
func (m *Metal) Name() string        { return m.name }
func (m *Metal) Variables() *dof.Set { return m.vars }
func (m *Metal) Layout() dof.Layout  { return m.layout }
func (m *Metal) Rank() int           { return m.rank }
func (m *Metal) EnableTl() bool      { return m.enableTl }
func (m *Metal) Nodes() []*mesh.Node { return m.nodes }

func (m *Metal) Node(id int) (*mesh.Node, error) {
	n, ok := m.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: region %s has no node %d", ErrUnknownNode, m.name, id)
	}
	return n, nil
}

// Bind attaches the region to a numbered system. Node offsets must be
// assigned before.
func (m *Metal) Bind(lookup Lookup, layout dof.Layout) {
	m.lookup = lookup
	m.layout = layout

	width := m.vars.Count()
	m.columns = make(map[int]bool, width*len(m.nodes))
	for _, n := range m.nodes {
		for off := 0; off < width; off++ {
			m.columns[n.GlobalOffset+off] = true
		}
	}
}

func (m *Metal) ownedNodes() []*mesh.Node {
	return mesh.Owned(m.nodes, m.rank)
}

func (m *Metal) offset(v dof.Variable) int {
	off := m.vars.Offset(v)
	if off == dof.InvalidOffset {
		panic(fmt.Sprintf("region %s: variable %v has no offset", m.name, v))
	}
	return off
}

func (m *Metal) assertOwner(node *mesh.Node) {
	if !node.OwnedBy(m.rank) {
		panic(fmt.Sprintf("region %s: node %d belongs to processor %d, not %d", m.name, node.ID, node.ProcessorID, m.rank))
	}
}

// FillValue writes the operating point into x and the row scaling
// 1/(sigma*V) for potential, 1/V for temperature, into L. Both the real and
// the imaginary index of each unknown get the same value. x may be nil.
func (m *Metal) FillValue(x, L *matrix.Vector) {
	owned := m.ownedNodes()
	width := m.vars.Count()
	sigma := m.model.Conductance()

	ix := make([]int, 0, 2*width*len(owned))
	y := make([]float64, 0, 2*width*len(owned))
	s := make([]float64, 0, 2*width*len(owned))

	for _, node := range owned {
		data := node.Data

		re := node.GlobalOffset + m.offset(dof.Potential)
		ix = append(ix, re, m.layout.Imag(re, width))
		y = append(y, data.Psi, data.Psi)
		scale := 1.0 / (sigma * node.Volume)
		s = append(s, scale, scale)

		if m.enableTl {
			re := node.GlobalOffset + m.offset(dof.Temperature)
			ix = append(ix, re, m.layout.Imag(re, width))
			y = append(y, data.T, data.T)
			scale := 1.0 / node.Volume
			s = append(s, scale, scale)
		}
	}

	if len(ix) == 0 {
		return
	}
	if x != nil {
		x.SetValues(ix, y, matrix.Insert)
	}
	L.SetValues(ix, s, matrix.Insert)
}

// UpdateSolution stores the AC result of every local node from the local
// solution buffer lxx.
func (m *Metal) UpdateSolution(lxx []float64) {
	width := m.vars.Count()
	psiOffset := m.offset(dof.Potential)

	for _, node := range m.nodes {
		data := node.Data
		if data == nil {
			panic(fmt.Sprintf("region %s: node %d has no data", m.name, node.ID))
		}

		re := node.LocalOffset + psiOffset
		data.PsiAC = complex(lxx[re], lxx[m.layout.LocalImag(re, width)])

		if m.enableTl {
			re := node.LocalOffset + m.offset(dof.Temperature)
			data.TAC = complex(lxx[re], lxx[m.layout.LocalImag(re, width)])
		}
	}
}
