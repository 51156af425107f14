package analysis

import (
	"fmt"
	"math"

	"github.com/edp1096/toy-ddmac/pkg/matrix"
	"github.com/edp1096/toy-ddmac/pkg/mesh"
	"github.com/edp1096/toy-ddmac/pkg/region"
	"github.com/edp1096/toy-ddmac/pkg/util"
	"gonum.org/v1/gonum/floats"
)

type ACAnalysis struct {
	BaseAnalysis
	startFreq   float64
	stopFreq    float64
	numPoints   int
	pointsType  string // "DEC", "OCT", "LIN"
	frequencies []float64
	printed     bool // assembled system shown once per sweep

	Verbose bool
}

func NewAC(fStart, fStop float64, nPoints int, pType string) *ACAnalysis {
	return &ACAnalysis{
		BaseAnalysis: *NewBaseAnalysis(),
		startFreq:    fStart,
		stopFreq:     fStop,
		numPoints:    nPoints,
		pointsType:   pType,
	}
}

func (ac *ACAnalysis) Setup(p *Problem) error {
	if p == nil || p.System == nil || p.Jacobian == nil {
		return fmt.Errorf("ac setup: incomplete problem")
	}
	if p.System.Size() == 0 {
		return fmt.Errorf("ac setup: offsets of system %s not assigned", p.System.Name())
	}

	// The sweep solves the whole system in one process.
	var foreign *mesh.Node
	p.System.Nodes(func(_ region.Region, n *mesh.Node) {
		if foreign == nil && !n.OwnedBy(p.System.Rank()) {
			foreign = n
		}
	})
	if foreign != nil {
		return fmt.Errorf("ac setup: node %d belongs to processor %d", foreign.ID, foreign.ProcessorID)
	}

	if err := p.Mark(); err != nil {
		return fmt.Errorf("boundary setup error: %v", err)
	}
	ac.Problem = p

	return ac.generateFrequencyPoints()
}

func (ac *ACAnalysis) Frequencies() []float64 {
	return ac.frequencies
}

func (ac *ACAnalysis) Execute() error {
	if ac.Problem == nil {
		return fmt.Errorf("problem not set")
	}

	ac.printed = false
	for _, freq := range ac.frequencies {
		solution, err := ac.SolveAt(freq)
		if err != nil {
			return err
		}
		ac.StoreACResult(freq, solution)
	}

	return nil
}

// SolveAt runs one full assembly and solve at freq and leaves the result in
// the node data. The system is solved as (L·A·T) y = L·b, x = T·y.
func (ac *ACAnalysis) SolveAt(freq float64) (map[string]complex128, error) {
	p := ac.Problem
	sys := p.System
	omega := 2 * math.Pi * freq

	A, err := sys.NewMatrix()
	if err != nil {
		return nil, err
	}
	defer A.Destroy()
	T, err := sys.NewMatrix()
	if err != nil {
		return nil, err
	}
	defer T.Destroy()
	L, _ := sys.NewVector()
	b, _ := sys.NewVector()

	for _, r := range sys.Regions() {
		r.FillValue(nil, L)
	}
	L.Flush()

	s := matrix.NewSession(A)
	for _, r := range sys.Regions() {
		r.FillMatrixVector(s, p.Jacobian, omega)
	}
	for _, in := range p.Interfaces {
		if err := in.FillAC(sys, s, p.Jacobian, omega); err != nil {
			s.Close()
			return nil, fmt.Errorf("stamping error at f=%g: %v", freq, err)
		}
	}
	for _, e := range p.Electrodes {
		if err := e.FillAC(sys, s, b); err != nil {
			s.Close()
			return nil, fmt.Errorf("stamping error at f=%g: %v", freq, err)
		}
	}
	s.Close()
	b.Flush()
	if ac.Verbose && !ac.printed {
		A.PrintSystem()
		ac.printed = true
	}

	ts := matrix.NewSession(T)
	for _, r := range sys.Regions() {
		if err := r.FillTransformationMatrix(ts, p.Jacobian, omega); err != nil {
			ts.Close()
			return nil, fmt.Errorf("transformation error at f=%g: %w", freq, err)
		}
	}
	ts.Close()

	M, err := matrix.Product(A, T, L.RawVector())
	if err != nil {
		return nil, fmt.Errorf("scaling error at f=%g: %v", freq, err)
	}
	defer M.Destroy()

	rhs := make([]float64, sys.Size())
	floats.MulTo(rhs, L.RawVector(), b.RawVector())

	y, err := M.Solve(rhs)
	if err != nil {
		return nil, fmt.Errorf("matrix solve error at f=%g: %v", freq, err)
	}
	x := T.MulVec(y)

	lxx := sys.LocalSolution(x)
	solution := make(map[string]complex128)
	for _, r := range sys.Regions() {
		r.UpdateSolution(lxx)
		for _, n := range r.Nodes() {
			solution[PotentialName(r, n)] = n.Data.PsiAC
			if r.EnableTl() {
				solution[TemperatureName(r, n)] = n.Data.TAC
			}
		}
	}

	if ac.Verbose {
		fmt.Printf("%s  %d unknowns, %d nonzeros\n", util.FormatFrequency(freq), sys.Size(), M.NonZeros())
	}

	return solution, nil
}

func (ac *ACAnalysis) generateFrequencyPoints() error {
	if ac.numPoints < 1 {
		return fmt.Errorf("invalid number of frequency points: %d", ac.numPoints)
	}
	if ac.startFreq < 0 || ac.stopFreq < ac.startFreq {
		return fmt.Errorf("invalid frequency range: %g to %g", ac.startFreq, ac.stopFreq)
	}

	ac.frequencies = make([]float64, ac.numPoints)
	if ac.numPoints == 1 {
		ac.frequencies[0] = ac.startFreq
		return nil
	}

	switch ac.pointsType {
	case "DEC", "OCT": // Decade, Octave
		if ac.startFreq <= 0 {
			return fmt.Errorf("logarithmic sweep needs a positive start frequency, got %g", ac.startFreq)
		}
		floats.LogSpan(ac.frequencies, ac.startFreq, ac.stopFreq)

	case "LIN": // Linear
		floats.Span(ac.frequencies, ac.startFreq, ac.stopFreq)

	default:
		return fmt.Errorf("invalid sweep type: %s", ac.pointsType)
	}

	return nil
}
