package material

import (
	"fmt"
	"math"
	"strings"

	"github.com/edp1096/toy-ddmac/internal/consts"
)

// Metal holds the lumped parameters of a conductor region.
type Metal struct {
	Name    string
	Sigma   float64 // Electrical conductivity at Tnom (S/m)
	Tc1     float64 // First order resistivity coefficient (1/K)
	Tc2     float64 // Second order resistivity coefficient (1/K^2)
	Tnom    float64 // Reference temperature (K)
	Density float64 // Mass density (kg/m^3)
	Cp      float64 // Specific heat at Tnom (J/(kg K))
	CpSlope float64 // dCp/dT (J/(kg K^2))
	Kappa   float64 // Thermal conductivity (W/(m K)), 0 selects Wiedemann-Franz
}

func Copper() *Metal {
	return &Metal{
		Name:    "copper",
		Sigma:   5.96e7,
		Tc1:     3.93e-3,
		Tnom:    consts.TNOM,
		Density: 8960,
		Cp:      385,
		CpSlope: 0.1,
		Kappa:   401,
	}
}

func Aluminum() *Metal {
	return &Metal{
		Name:    "aluminum",
		Sigma:   3.77e7,
		Tc1:     4.29e-3,
		Tnom:    consts.TNOM,
		Density: 2700,
		Cp:      897,
		CpSlope: 0.4,
		Kappa:   237,
	}
}

// Lookup returns a fresh copy of a named preset.
func Lookup(name string) (*Metal, error) {
	switch strings.ToLower(name) {
	case "copper", "cu":
		return Copper(), nil
	case "aluminum", "aluminium", "al":
		return Aluminum(), nil
	default:
		return nil, fmt.Errorf("unknown material: %s", name)
	}
}

// Conductance is the electrical conductivity at temperature temp.
func (m *Metal) Conductance(temp float64) float64 {
	dt := temp - m.Tnom
	factor := 1.0 + m.Tc1*dt + m.Tc2*dt*dt
	return m.Sigma / factor
}

// HeatCapacity is the specific heat at temperature temp.
func (m *Metal) HeatCapacity(temp float64) float64 {
	return m.Cp + m.CpSlope*(temp-m.Tnom)
}

func (m *Metal) ThermalConductivity(temp float64) float64 {
	if m.Kappa > 0 {
		return m.Kappa
	}
	lorenz := math.Pi * math.Pi / 3 * math.Pow(consts.BOLTZMANN/consts.CHARGE, 2)
	return lorenz * m.Conductance(temp) * temp
}

// Evaluator is the view of a material that the AC fillers consume.
type Evaluator struct {
	Conductance  func() float64
	HeatCapacity func(temp float64) float64
}

// Evaluator freezes the conductance at the operating temperature temp.
func (m *Metal) Evaluator(temp float64) Evaluator {
	sigma := m.Conductance(temp)
	return Evaluator{
		Conductance:  func() float64 { return sigma },
		HeatCapacity: m.HeatCapacity,
	}
}

// Constant builds an evaluator with fixed values.
func Constant(sigma, heatCapacity float64) Evaluator {
	return Evaluator{
		Conductance:  func() float64 { return sigma },
		HeatCapacity: func(float64) float64 { return heatCapacity },
	}
}
