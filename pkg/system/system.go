package system

import (
	"errors"
	"fmt"
	"sort"

	"github.com/edp1096/toy-ddmac/pkg/dof"
	"github.com/edp1096/toy-ddmac/pkg/matrix"
	"github.com/edp1096/toy-ddmac/pkg/mesh"
	"github.com/edp1096/toy-ddmac/pkg/region"
)

var ErrNoRegions = errors.New("system has no regions")

// System ties regions to one DOF space: it numbers the unknowns of every
// node and allocates the AC matrices and vectors in that numbering.
type System struct {
	name      string
	rank      int
	split     bool
	regions   []region.Region
	registry  region.Registry
	layout    dof.Layout
	size      int // 2N, real plus imaginary unknowns
	localSize int
}

var _ region.Lookup = (*System)(nil)

type Option func(*System)

// WithRank sets the process whose local numbering is built.
func WithRank(rank int) Option {
	return func(s *System) { s.rank = rank }
}

// WithSplitLayout stores all real parts before all imaginary parts instead
// of interleaving them per node.
func WithSplitLayout() Option {
	return func(s *System) { s.split = true }
}

func New(name string, opts ...Option) *System {
	s := &System{
		name:     name,
		registry: make(region.Registry),
		layout:   dof.NodeBlocked{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *System) Name() string { return s.name }
func (s *System) Rank() int    { return s.rank }

func (s *System) AddRegion(r region.Region) error {
	if _, exists := s.registry[r.ID()]; exists {
		return fmt.Errorf("region id %d already used by %s", r.ID(), s.registry[r.ID()].Name())
	}
	s.registry[r.ID()] = r
	s.regions = append(s.regions, r)
	return nil
}

func (s *System) Region(id int) (region.Region, error) {
	return s.registry.Region(id)
}

// RegionByName returns the first region called name.
func (s *System) RegionByName(name string) (region.Region, error) {
	for _, r := range s.regions {
		if r.Name() == name {
			return r, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", region.ErrUnknownRegion, name)
}

func (s *System) Regions() []region.Region {
	return s.regions
}

// AssignOffsets numbers every node. Global offsets follow processor order,
// then region order, then node order, so each processor owns a contiguous
// range. Local offsets put this rank's owned nodes first and ghosts after.
// Regions are bound to the system and its layout.
func (s *System) AssignOffsets() error {
	if len(s.regions) == 0 {
		return ErrNoRegions
	}

	var stride dof.Layout = dof.NodeBlocked{}
	if s.split {
		stride = dof.Split{}
	}

	processors := s.processors()
	global := 0
	for _, p := range processors {
		for _, r := range s.regions {
			width := r.Variables().Count()
			for _, n := range r.Nodes() {
				if n.ProcessorID != p {
					continue
				}
				n.GlobalOffset = global
				global += stride.Stride(width)
			}
		}
	}

	local := 0
	for _, ghosts := range []bool{false, true} {
		for _, r := range s.regions {
			width := r.Variables().Count()
			for _, n := range r.Nodes() {
				if n.OwnedBy(s.rank) == ghosts {
					continue
				}
				n.LocalOffset = local
				local += stride.Stride(width)
			}
		}
	}

	if s.split {
		s.layout = dof.Split{Global: global, Local: local}
		s.size, s.localSize = 2*global, 2*local
	} else {
		s.layout = dof.NodeBlocked{}
		s.size, s.localSize = global, local
	}

	for _, r := range s.regions {
		r.Bind(s, s.layout)
	}
	return nil
}

func (s *System) processors() []int {
	seen := make(map[int]bool)
	var ids []int
	for _, r := range s.regions {
		for _, n := range r.Nodes() {
			if !seen[n.ProcessorID] {
				seen[n.ProcessorID] = true
				ids = append(ids, n.ProcessorID)
			}
		}
	}
	sort.Ints(ids)
	return ids
}

func (s *System) Layout() dof.Layout { return s.layout }

// Size is the dimension of the doubled global system.
func (s *System) Size() int { return s.size }

// JacobianSize is the extent of the real-part numbering the DC Jacobian is
// indexed in.
func (s *System) JacobianSize() int {
	if split, ok := s.layout.(dof.Split); ok {
		return split.Global
	}
	return s.size
}

// LocalSize is the length of the local solution buffer.
func (s *System) LocalSize() int { return s.localSize }

func (s *System) NewMatrix() (*matrix.System, error) {
	if s.size == 0 {
		return nil, fmt.Errorf("system %s: offsets not assigned", s.name)
	}
	return matrix.NewSystem(s.size)
}

func (s *System) NewVector() (*matrix.Vector, error) {
	if s.size == 0 {
		return nil, fmt.Errorf("system %s: offsets not assigned", s.name)
	}
	return matrix.NewVector(s.size), nil
}

// LocalSolution gathers the local buffer of this rank out of a global
// solution vector.
func (s *System) LocalSolution(global []float64) []float64 {
	lxx := make([]float64, s.localSize)
	for _, r := range s.regions {
		width := r.Variables().Count()
		for _, n := range r.Nodes() {
			for off := 0; off < width; off++ {
				re, lre := n.GlobalOffset+off, n.LocalOffset+off
				lxx[lre] = global[re]
				lxx[s.layout.LocalImag(lre, width)] = global[s.layout.Imag(re, width)]
			}
		}
	}
	return lxx
}

// Nodes visits every node of every region.
func (s *System) Nodes(fn func(r region.Region, n *mesh.Node)) {
	for _, r := range s.regions {
		for _, n := range r.Nodes() {
			fn(r, n)
		}
	}
}
