package matrix

// Assembler is what region and boundary fillers need from an assembly
// session.
type Assembler interface {
	Mode() InsertMode
	Use(mode InsertMode)
	Require(mode InsertMode)
	AddComplex(row, col Index, v complex128)
	ClearRow(i int)
}

var _ Assembler = (*Session)(nil)
