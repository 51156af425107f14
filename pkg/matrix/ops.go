package matrix

import "fmt"

// Product returns diag(scale)·a·t as a new flushed System. A nil scale
// leaves the rows unscaled.
func Product(a, t *System, scale []float64) (*System, error) {
	if a.Size != t.Size {
		return nil, fmt.Errorf("dimension mismatch: %d != %d", a.Size, t.Size)
	}
	if scale != nil && len(scale) != a.Size {
		return nil, fmt.Errorf("scale length %d does not match matrix size %d", len(scale), a.Size)
	}

	out, err := NewSystem(a.Size)
	if err != nil {
		return nil, err
	}

	for i := 0; i < a.Size; i++ {
		factor := 1.0
		if scale != nil {
			factor = scale[i]
		}
		cols, vals := a.Row(i)
		for n, j := range cols {
			tcols, tvals := t.Row(j)
			for k, c := range tcols {
				out.SetValue(i, c, factor*vals[n]*tvals[k], Add)
			}
		}
	}
	out.Flush()

	return out, nil
}

// MulVec returns m·x using flushed values.
func (m *System) MulVec(x []float64) []float64 {
	y := make([]float64, m.Size)
	for i := 0; i < m.Size; i++ {
		cols, vals := m.Row(i)
		for n, j := range cols {
			y[i] += vals[n] * x[j]
		}
	}
	return y
}
