package dof

// Layout pairs the real-part index of an unknown with the index of its
// imaginary part in the doubled AC system.
type Layout interface {
	Imag(re, width int) int
	LocalImag(re, width int) int
	// Stride is the number of indices a node of the given width occupies in
	// the real-part numbering.
	Stride(width int) int
}

// NodeBlocked stores each node as [real block | imaginary block], so the
// imaginary part sits one block width after the real part.
type NodeBlocked struct{}

func (NodeBlocked) Imag(re, width int) int      { return re + width }
func (NodeBlocked) LocalImag(re, width int) int { return re + width }
func (NodeBlocked) Stride(width int) int        { return 2 * width }

// Split stores all real parts first, then all imaginary parts. Global and
// Local are the number of real unknowns in the global and local spaces.
type Split struct {
	Global int
	Local  int
}

func (s Split) Imag(re, _ int) int      { return re + s.Global }
func (s Split) LocalImag(re, _ int) int { return re + s.Local }
func (Split) Stride(width int) int      { return width }
