package region_test

import (
	"testing"

	"github.com/edp1096/toy-ddmac/pkg/dof"
	"github.com/edp1096/toy-ddmac/pkg/matrix"
	"github.com/edp1096/toy-ddmac/pkg/mesh"
	"github.com/edp1096/toy-ddmac/pkg/region"
	"github.com/james-bowman/sparse"
	"github.com/stretchr/testify/require"
)

type entry struct {
	i, j int
	v    float64
}

func jacobian(size int, entries ...entry) *sparse.CSR {
	dok := sparse.NewDOK(size, size)
	for _, e := range entries {
		dok.Set(e.i, e.j, dok.At(e.i, e.j)+e.v)
	}
	return dok.ToCSR()
}

// chain lays out nodes back to back in NodeBlocked order starting at base.
func chain(base, width int, volumes ...float64) []*mesh.Node {
	nodes := make([]*mesh.Node, len(volumes))
	for i, v := range volumes {
		n := mesh.NewNode(i, v, 0, &mesh.NodeData{T: 300, Density: 1})
		n.GlobalOffset = base + 2*width*i
		n.LocalOffset = n.GlobalOffset
		nodes[i] = n
	}
	return nodes
}

func bind(regions ...region.Region) region.Registry {
	reg := region.Registry{}
	for _, r := range regions {
		reg[r.ID()] = r
	}
	for _, r := range regions {
		r.Bind(reg, dof.NodeBlocked{})
	}
	return reg
}

func newSystem(t *testing.T, size int) *matrix.System {
	t.Helper()
	m, err := matrix.NewSystem(size)
	require.NoError(t, err)
	t.Cleanup(m.Destroy)
	return m
}

// rowMap flattens a matrix row into col -> value.
func rowMap(m *matrix.System, i int) map[int]float64 {
	cols, vals := m.Row(i)
	out := make(map[int]float64, len(cols))
	for n, c := range cols {
		out[c] = vals[n]
	}
	return out
}
