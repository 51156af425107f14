package dof

import "fmt"

type Variable int

const (
	Potential   Variable = iota // Electrostatic potential
	Temperature                 // Lattice temperature
)

// InvalidOffset marks a variable the region does not solve for.
const InvalidOffset = -1

func (v Variable) String() string {
	switch v {
	case Potential:
		return "psi"
	case Temperature:
		return "T"
	default:
		return fmt.Sprintf("Variable(%d)", int(v))
	}
}

// Set is the ordered list of variables a region solves for. The position of a
// variable in the list is its offset inside a node's block.
type Set struct {
	vars    []Variable
	offsets map[Variable]int
}

func NewSet(vars ...Variable) *Set {
	s := &Set{offsets: make(map[Variable]int, len(vars))}
	for _, v := range vars {
		if _, exists := s.offsets[v]; exists {
			continue
		}
		s.offsets[v] = len(s.vars)
		s.vars = append(s.vars, v)
	}
	return s
}

// Offset returns the offset of v in the node block, or InvalidOffset.
func (s *Set) Offset(v Variable) int {
	if off, ok := s.offsets[v]; ok {
		return off
	}
	return InvalidOffset
}

func (s *Set) Has(v Variable) bool {
	_, ok := s.offsets[v]
	return ok
}

// Count is the block width: number of real unknowns per node.
func (s *Set) Count() int {
	return len(s.vars)
}

func (s *Set) Variables() []Variable {
	out := make([]Variable, len(s.vars))
	copy(out, s.vars)
	return out
}
