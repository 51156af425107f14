package fvm

import (
	"fmt"

	"github.com/edp1096/toy-ddmac/pkg/material"
	"github.com/edp1096/toy-ddmac/pkg/mesh"
)

// NewBarNodes discretizes a bar of the given length and cross-section area
// into n control volumes. The end volumes are half cells.
func NewBarNodes(n int, length, area float64, metal *material.Metal, temp float64, rank int) ([]*mesh.Node, error) {
	if n < 2 {
		return nil, fmt.Errorf("bar needs at least 2 nodes, got %d", n)
	}
	if length <= 0 || area <= 0 {
		return nil, fmt.Errorf("bar length and area must be positive (length=%g, area=%g)", length, area)
	}

	dx := length / float64(n-1)
	nodes := make([]*mesh.Node, n)
	for i := range n {
		volume := area * dx
		if i == 0 || i == n-1 {
			volume /= 2
		}
		nodes[i] = mesh.NewNode(i, volume, rank, &mesh.NodeData{
			T:       temp,
			Density: metal.Density,
		})
	}
	return nodes, nil
}

// SetBias sets a linear DC potential from v0 at the first node to v1 at the
// last one.
func SetBias(nodes []*mesh.Node, v0, v1 float64) {
	if len(nodes) == 1 {
		nodes[0].Data.Psi = v0
		return
	}
	last := float64(len(nodes) - 1)
	for i, n := range nodes {
		n.Data.Psi = v0 + (v1-v0)*float64(i)/last
	}
}

// Partition assigns the nodes to parts contiguous blocks, one per processor.
func Partition(nodes []*mesh.Node, parts int) {
	if parts < 1 {
		parts = 1
	}
	per := (len(nodes) + parts - 1) / parts
	for i, n := range nodes {
		n.ProcessorID = min(i/per, parts-1)
	}
}
