package boundary

import (
	"fmt"

	"github.com/edp1096/toy-ddmac/pkg/dof"
	"github.com/edp1096/toy-ddmac/pkg/matrix"
	"github.com/edp1096/toy-ddmac/pkg/region"
)

// Electrode is an ohmic contact on one node. It drives the small-signal
// potential to Amplitude and holds the lattice temperature at its DC value.
type Electrode struct {
	ID        int
	Name      string
	At        region.Adjacent
	Amplitude float64
}

var _ Condition = (*Electrode)(nil)

func NewElectrode(id int, name string, at region.Adjacent, amplitude float64) *Electrode {
	return &Electrode{ID: id, Name: name, At: at, Amplitude: amplitude}
}

func (e *Electrode) GetName() string { return e.Name }

func (e *Electrode) Mark(lookup region.Lookup) error {
	if _, err := mark(lookup, e.At, e.ID); err != nil {
		return fmt.Errorf("electrode %s: %v", e.Name, err)
	}
	return nil
}

// FillAC replaces the rows of the contact node with identity rows and sets
// the right-hand side. Nodes owned by another process are left alone.
func (e *Electrode) FillAC(lookup region.Lookup, a matrix.Assembler, b *matrix.Vector) error {
	r, node, err := region.Resolve(lookup, e.At)
	if err != nil {
		return fmt.Errorf("electrode %s: %w", e.Name, err)
	}
	if !node.OwnedBy(r.Rank()) {
		return nil
	}

	a.Use(matrix.Add)

	var ix []int
	var y []float64
	for _, v := range r.Variables().Variables() {
		idx := region.IndexOf(r, node, v)
		a.ClearRow(idx.Re)
		a.ClearRow(idx.Im)
		a.AddComplex(idx, idx, 1)

		value := 0.0
		if v == dof.Potential {
			value = e.Amplitude
		}
		ix = append(ix, idx.Re, idx.Im)
		y = append(y, value, 0)
	}
	b.SetValues(ix, y, matrix.Insert)

	return nil
}
