package fvm

import (
	"github.com/edp1096/toy-ddmac/pkg/dof"
	"github.com/edp1096/toy-ddmac/pkg/material"
	"github.com/edp1096/toy-ddmac/pkg/region"
	"github.com/james-bowman/sparse"
)

// Bar is a 1-D conductor region: its nodes are ordered along the bar and
// evenly spaced.
type Bar struct {
	Region   region.Region
	Material *material.Metal
	Length   float64
	Area     float64
}

// Jacobian assembles the DC Jacobian of the bars at their operating point.
// Rows and columns use the real-part numbering of the system; dim is its
// extent.
//
// Per edge (i, j) with g = sigma*A/dx and k = kappa*A/dx:
//
//	F_psi_i += g (psi_i - psi_j)
//	F_T_i   += k (T_i - T_j) - g (psi_i - psi_j)^2 / 2
func Jacobian(dim int, bars ...Bar) *sparse.CSR {
	dok := sparse.NewDOK(dim, dim)
	add := func(i, j int, v float64) {
		dok.Set(i, j, dok.At(i, j)+v)
	}

	for _, bar := range bars {
		nodes := bar.Region.Nodes()
		if len(nodes) < 2 {
			continue
		}
		vars := bar.Region.Variables()
		psi := vars.Offset(dof.Potential)
		tl := vars.Offset(dof.Temperature)
		dx := bar.Length / float64(len(nodes)-1)

		for e := 0; e+1 < len(nodes); e++ {
			a, b := nodes[e], nodes[e+1]
			temp := (a.Data.T + b.Data.T) / 2
			g := bar.Material.Conductance(temp) * bar.Area / dx

			pa, pb := a.GlobalOffset+psi, b.GlobalOffset+psi
			add(pa, pa, g)
			add(pa, pb, -g)
			add(pb, pb, g)
			add(pb, pa, -g)

			if tl == dof.InvalidOffset {
				continue
			}
			k := bar.Material.ThermalConductivity(temp) * bar.Area / dx
			ta, tb := a.GlobalOffset+tl, b.GlobalOffset+tl
			add(ta, ta, k)
			add(ta, tb, -k)
			add(tb, tb, k)
			add(tb, ta, -k)

			// Joule heat of the edge, split evenly between its two nodes
			drop := a.Data.Psi - b.Data.Psi
			for _, t := range []int{ta, tb} {
				add(t, pa, -g*drop)
				add(t, pb, g*drop)
			}
		}
	}

	return dok.ToCSR()
}
