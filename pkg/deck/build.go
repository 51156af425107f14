package deck

import (
	"fmt"

	"github.com/edp1096/toy-ddmac/pkg/analysis"
	"github.com/edp1096/toy-ddmac/pkg/boundary"
	"github.com/edp1096/toy-ddmac/pkg/fvm"
	"github.com/edp1096/toy-ddmac/pkg/material"
	"github.com/edp1096/toy-ddmac/pkg/region"
	"github.com/edp1096/toy-ddmac/pkg/system"
)

// Build creates the regions, the DC operating point, the DC Jacobian and the
// boundaries described by the deck. Region ids follow declaration order.
func Build(d *Deck, opts ...system.Option) (*analysis.Problem, error) {
	if len(d.Regions) == 0 {
		return nil, system.ErrNoRegions
	}

	sys := system.New(d.Title, opts...)
	bars := make([]fvm.Bar, 0, len(d.Regions))

	for id, spec := range d.Regions {
		metal, err := material.Lookup(spec.Material)
		if err != nil {
			return nil, fmt.Errorf("region %s: %v", spec.Name, err)
		}
		temp := spec.Temp
		if temp == 0 {
			temp = metal.Tnom
		}

		nodes, err := fvm.NewBarNodes(spec.Nodes, spec.Length, spec.Area, metal, temp, sys.Rank())
		if err != nil {
			return nil, fmt.Errorf("region %s: %v", spec.Name, err)
		}
		fvm.SetBias(nodes, spec.V0, spec.V1)

		ropts := []region.Option{region.WithRank(sys.Rank())}
		if spec.Tl {
			ropts = append(ropts, region.WithLatticeTemperature())
		}
		r := region.NewMetal(id, spec.Name, nodes, metal.Evaluator(temp), ropts...)
		if err := sys.AddRegion(r); err != nil {
			return nil, err
		}
		bars = append(bars, fvm.Bar{Region: r, Material: metal, Length: spec.Length, Area: spec.Area})
	}

	if err := sys.AssignOffsets(); err != nil {
		return nil, err
	}

	p := &analysis.Problem{System: sys}
	for i, spec := range d.Interfaces {
		a, err := resolve(sys, spec.A)
		if err != nil {
			return nil, err
		}
		b, err := resolve(sys, spec.B)
		if err != nil {
			return nil, err
		}
		name := fmt.Sprintf("%v|%v", spec.A, spec.B)
		p.Interfaces = append(p.Interfaces, boundary.NewInterface(len(d.Electrodes)+i, name, a, b))
	}
	for i, spec := range d.Electrodes {
		at, err := resolve(sys, spec.At)
		if err != nil {
			return nil, err
		}
		p.Electrodes = append(p.Electrodes, boundary.NewElectrode(i, spec.Name, at, spec.Amplitude))
	}

	p.Jacobian = fvm.Jacobian(sys.JacobianSize(), bars...)
	return p, nil
}

// NewAnalysis creates the analysis requested by the deck.
func NewAnalysis(d *Deck) (*analysis.ACAnalysis, error) {
	if !d.HasAC {
		return nil, fmt.Errorf("deck %q has no analysis statement", d.Title)
	}
	param := d.ACParam
	return analysis.NewAC(param.FStart, param.FStop, param.Points, param.Sweep), nil
}

func resolve(sys *system.System, ref NodeRef) (region.Adjacent, error) {
	r, err := sys.RegionByName(ref.Region)
	if err != nil {
		return region.Adjacent{}, err
	}
	node := ref.Node
	if node == LastNode {
		node = len(r.Nodes()) - 1
	}
	if _, err := r.Node(node); err != nil {
		return region.Adjacent{}, err
	}
	return region.Adjacent{Region: r.ID(), Node: node}, nil
}
