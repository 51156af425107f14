package analysis

import (
	"fmt"
	"math"
	"math/cmplx"
	"strings"

	"github.com/edp1096/toy-ddmac/pkg/boundary"
	"github.com/edp1096/toy-ddmac/pkg/mesh"
	"github.com/edp1096/toy-ddmac/pkg/region"
	"github.com/edp1096/toy-ddmac/pkg/system"
)

// Problem is everything a small-signal analysis runs on: the system with
// its DC operating point, the DC Jacobian at that point and the boundaries.
type Problem struct {
	System     *system.System
	Jacobian   region.Jacobian
	Electrodes []*boundary.Electrode
	Interfaces []*boundary.Interface
}

// Mark tags every boundary node.
func (p *Problem) Mark() error {
	for _, in := range p.Interfaces {
		if err := in.Mark(p.System); err != nil {
			return err
		}
	}
	for _, e := range p.Electrodes {
		if err := e.Mark(p.System); err != nil {
			return err
		}
	}
	return nil
}

type Analysis interface {
	Setup(p *Problem) error
	Execute() error
	GetResults() map[string][]float64
}

type BaseAnalysis struct {
	Problem *Problem
	results map[string][]float64 // key: variable name, value: result by frequency
}

func NewBaseAnalysis() *BaseAnalysis {
	return &BaseAnalysis{results: make(map[string][]float64)}
}

// PotentialName and TemperatureName are the result keys of a node.
func PotentialName(r region.Region, n *mesh.Node) string {
	return fmt.Sprintf("V(%s:%d)", r.Name(), n.ID)
}

func TemperatureName(r region.Region, n *mesh.Node) string {
	return fmt.Sprintf("T(%s:%d)", r.Name(), n.ID)
}

// Unit returns the unit of a result key: V for potentials, K for
// temperatures and "" for anything else.
func Unit(name string) string {
	switch {
	case strings.HasPrefix(name, "V("):
		return "V"
	case strings.HasPrefix(name, "T("):
		return "K"
	}
	return ""
}

func (a *BaseAnalysis) StoreACResult(freq float64, solution map[string]complex128) {
	// Frequency
	if _, exists := a.results["FREQ"]; !exists {
		a.results["FREQ"] = make([]float64, 0)
	}
	a.results["FREQ"] = append(a.results["FREQ"], freq)

	for name, value := range solution {
		// Magnitude
		magName := name + "_MAG"
		if _, exists := a.results[magName]; !exists {
			a.results[magName] = make([]float64, 0)
		}
		a.results[magName] = append(a.results[magName], cmplx.Abs(value))

		// Phase - degree
		phaseName := name + "_PHASE"
		if _, exists := a.results[phaseName]; !exists {
			a.results[phaseName] = make([]float64, 0)
		}
		a.results[phaseName] = append(a.results[phaseName], cmplx.Phase(value)*180.0/math.Pi)
	}
}

func (a *BaseAnalysis) GetResults() map[string][]float64 {
	return a.results
}
