package matrix

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

type stagedValue struct {
	index int
	value float64
}

// Vector is a dense vector of the doubled AC system with the same staged
// write rules as System.
type Vector struct {
	vec         *mat.VecDense
	pending     []stagedValue
	pendingMode InsertMode
}

// NewVector panics if size is not positive.
func NewVector(size int) *Vector {
	return &Vector{vec: mat.NewVecDense(size, nil)}
}

func (v *Vector) Len() int {
	return v.vec.Len()
}

// SetValues stages y[k] at index ix[k].
func (v *Vector) SetValues(ix []int, y []float64, mode InsertMode) {
	if len(ix) != len(y) {
		panic(fmt.Sprintf("matrix: %d indices for %d values", len(ix), len(y)))
	}
	if mode == NotSet {
		panic("matrix: NotSet is not an insert mode")
	}
	if v.pendingMode != NotSet && v.pendingMode != mode {
		panic(fmt.Sprintf("matrix: %v values pending, flush before %v", v.pendingMode, mode))
	}
	v.pendingMode = mode
	for k, i := range ix {
		v.pending = append(v.pending, stagedValue{index: i, value: y[k]})
	}
}

func (v *Vector) Flush() {
	n := v.vec.Len()
	for _, s := range v.pending {
		if s.index < 0 || s.index >= n {
			fmt.Printf("Warning: Vector index out of bounds (i=%d, size=%d)\n", s.index, n)
			continue
		}
		if v.pendingMode == Insert {
			v.vec.SetVec(s.index, s.value)
		} else {
			v.vec.SetVec(s.index, v.vec.AtVec(s.index)+s.value)
		}
	}
	v.pending = v.pending[:0]
	v.pendingMode = NotSet
}

func (v *Vector) Pending() int {
	return len(v.pending)
}

func (v *Vector) AtVec(i int) float64 {
	return v.vec.AtVec(i)
}

// RawVector exposes the backing storage.
func (v *Vector) RawVector() []float64 {
	return v.vec.RawVector().Data
}

func (v *Vector) Zero() {
	v.vec.Zero()
	v.pending = v.pending[:0]
	v.pendingMode = NotSet
}
