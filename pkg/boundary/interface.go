package boundary

import (
	"fmt"

	"github.com/edp1096/toy-ddmac/pkg/dof"
	"github.com/edp1096/toy-ddmac/pkg/matrix"
	"github.com/edp1096/toy-ddmac/pkg/region"
)

// Interface joins node B of one region to node A of another. A keeps its
// equations and receives B's flux balance for every variable both regions
// solve for; B's own rows for those variables become B - A = 0. Variables
// only B solves for keep B's own equation.
type Interface struct {
	ID   int
	Name string
	A    region.Adjacent
	B    region.Adjacent
}

var _ Condition = (*Interface)(nil)

func NewInterface(id int, name string, a, b region.Adjacent) *Interface {
	return &Interface{ID: id, Name: name, A: a, B: b}
}

func (i *Interface) GetName() string { return i.Name }

// Mark tags node B. Node A stays an interior node of its region.
func (i *Interface) Mark(lookup region.Lookup) error {
	if i.A.Region == i.B.Region {
		return fmt.Errorf("interface %s: both sides in region %d", i.Name, i.A.Region)
	}
	if _, _, err := region.Resolve(lookup, i.A); err != nil {
		return fmt.Errorf("interface %s: %v", i.Name, err)
	}
	if _, err := mark(lookup, i.B, i.ID); err != nil {
		return fmt.Errorf("interface %s: %v", i.Name, err)
	}
	return nil
}

// Shared lists the variables both sides solve for, in B's order.
func (i *Interface) Shared(lookup region.Lookup) ([]dof.Variable, error) {
	ra, err := lookup.Region(i.A.Region)
	if err != nil {
		return nil, err
	}
	rb, err := lookup.Region(i.B.Region)
	if err != nil {
		return nil, err
	}

	var shared []dof.Variable
	for _, v := range rb.Variables().Variables() {
		if ra.Variables().Has(v) {
			shared = append(shared, v)
		}
	}
	return shared, nil
}

func (i *Interface) FillAC(lookup region.Lookup, a matrix.Assembler, J region.Jacobian, omega float64) error {
	ra, _, err := region.Resolve(lookup, i.A)
	if err != nil {
		return fmt.Errorf("interface %s: %w", i.Name, err)
	}
	rb, nb, err := region.Resolve(lookup, i.B)
	if err != nil {
		return fmt.Errorf("interface %s: %w", i.Name, err)
	}
	if !nb.OwnedBy(rb.Rank()) {
		return nil
	}

	a.Use(matrix.Add)

	adj := i.A
	var shared []dof.Variable
	for _, v := range rb.Variables().Variables() {
		if ra.Variables().Has(v) {
			rb.FillNodalVariable(nb, v, a, J, omega, &adj)
			shared = append(shared, v)
		} else {
			rb.FillNodalVariable(nb, v, a, J, omega, nil)
		}
	}

	for _, v := range shared {
		rb.ForceEqualVariable(nb, v, a, adj)
	}
	return nil
}
