package matrix

// Index locates one complex unknown in the doubled system.
type Index struct {
	Re int
	Im int
}

// AddComplex accumulates v at the complex position (row, col). A complex
// entry a+jb expands to
//
//	(row.Re, col.Re) += a    (row.Re, col.Im) += -b
//	(row.Im, col.Re) += b    (row.Im, col.Im) += a
//
// Zero parts are not written. The session must be in Add mode.
func (s *Session) AddComplex(row, col Index, v complex128) {
	s.Require(Add)

	a, b := real(v), imag(v)
	if a != 0 {
		s.sys.SetValue(row.Re, col.Re, a, Add)
		s.sys.SetValue(row.Im, col.Im, a, Add)
	}
	if b != 0 {
		s.sys.SetValue(row.Re, col.Im, -b, Add)
		s.sys.SetValue(row.Im, col.Re, b, Add)
	}
}

// ComplexAt reads back the complex entry at (row, col) from flushed values.
func (m *System) ComplexAt(row, col Index) complex128 {
	return complex(m.At(row.Re, col.Re), m.At(row.Im, col.Re))
}
