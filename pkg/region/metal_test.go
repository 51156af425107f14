package region_test

import (
	"testing"

	"github.com/edp1096/toy-ddmac/pkg/dof"
	"github.com/edp1096/toy-ddmac/pkg/material"
	"github.com/edp1096/toy-ddmac/pkg/matrix"
	"github.com/edp1096/toy-ddmac/pkg/mesh"
	"github.com/edp1096/toy-ddmac/pkg/region"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSingleNodeScenario(t *testing.T) {
	nodes := chain(0, 1, 0.5)
	metal := region.NewMetal(0, "metal", nodes, material.Constant(2.0, 1.0))
	bind(metal)

	x := matrix.NewVector(2)
	L := matrix.NewVector(2)
	metal.FillValue(x, L)
	x.Flush()
	L.Flush()

	require.Equal(t, 1.0, L.AtVec(0))
	require.Equal(t, 1.0, L.AtVec(1))

	J := jacobian(2, entry{0, 0, 3.5})
	A := newSystem(t, 2)
	s := matrix.NewSession(A)
	metal.FillMatrixVector(s, J, 1.0)
	require.Equal(t, matrix.Add, s.Mode())
	s.Close()

	require.Equal(t, 3.5, A.At(0, 0))
	require.Equal(t, 3.5, A.At(1, 1))
	require.Equal(t, 2, A.NonZeros(), "no reactive term without lattice heating")

	metal.UpdateSolution([]float64{3.0, -1.0})
	require.Equal(t, complex(3.0, -1.0), nodes[0].Data.PsiAC)
}

func TestFillValueWithTemperature(t *testing.T) {
	nodes := chain(0, 2, 0.5, 0.25)
	nodes[0].Data.Psi = 0.7
	nodes[1].Data.T = 310
	metal := region.NewMetal(0, "metal", nodes, material.Constant(4.0, 1.0), region.WithLatticeTemperature())
	bind(metal)

	x := matrix.NewVector(8)
	L := matrix.NewVector(8)
	metal.FillValue(x, L)
	x.Flush()
	L.Flush()

	// node 0: psi re=0 im=2, T re=1 im=3
	assert.Equal(t, 0.5, L.AtVec(0))
	assert.Equal(t, 0.5, L.AtVec(2))
	assert.Equal(t, 2.0, L.AtVec(1))
	assert.Equal(t, 2.0, L.AtVec(3))
	assert.Equal(t, 0.7, x.AtVec(0))
	assert.Equal(t, 0.7, x.AtVec(2))

	// node 1: psi re=4 im=6, T re=5 im=7
	assert.Equal(t, 1.0, L.AtVec(4))
	assert.Equal(t, 4.0, L.AtVec(5))
	assert.Equal(t, 4.0, L.AtVec(7))
	assert.Equal(t, 310.0, x.AtVec(5))
	assert.Equal(t, 310.0, x.AtVec(7))
}

func TestFillValueWithoutOwnedNodes(t *testing.T) {
	nodes := chain(0, 1, 1)
	nodes[0].ProcessorID = 1
	metal := region.NewMetal(0, "metal", nodes, material.Constant(1, 1))
	bind(metal)

	x := matrix.NewVector(2)
	L := matrix.NewVector(2)
	require.NotPanics(t, func() { metal.FillValue(x, L) })
	require.Zero(t, x.Pending())
	require.Zero(t, L.Pending())

	require.NotPanics(t, func() { metal.FillValue(nil, L) })
}

func TestDoublingProperty(t *testing.T) {
	// three nodes, potential only: node i has re=2i, im=2i+1
	nodes := chain(0, 1, 1, 1, 1)
	metal := region.NewMetal(0, "metal", nodes, material.Constant(1, 1))
	bind(metal)

	J := jacobian(6,
		entry{0, 0, 2}, entry{0, 2, -2},
		entry{2, 0, -2}, entry{2, 2, 5}, entry{2, 4, -3},
		entry{4, 2, -3}, entry{4, 4, 3},
	)

	A := newSystem(t, 6)
	s := matrix.NewSession(A)
	metal.FillMatrixVector(s, J, 10)
	s.Close()

	for _, row := range []int{0, 2, 4} {
		want := map[int]float64{}
		wantImag := map[int]float64{}
		J.DoRowNonZero(row, func(_, c int, v float64) {
			want[c] = v
			wantImag[c+1] = v
		})
		require.Equal(t, want, rowMap(A, row), "real row %d", row)
		require.Equal(t, wantImag, rowMap(A, row+1), "imaginary row %d", row+1)
	}
	require.Equal(t, 14, A.NonZeros())
}

func TestBoundaryNodesSkipped(t *testing.T) {
	nodes := chain(0, 1, 1, 1)
	nodes[1].BoundaryID = 3
	metal := region.NewMetal(0, "metal", nodes, material.Constant(1, 1))
	bind(metal)

	J := jacobian(4, entry{0, 0, 1}, entry{2, 2, 1})
	A := newSystem(t, 4)
	s := matrix.NewSession(A)
	metal.FillMatrixVector(s, J, 1)
	s.Close()

	require.Equal(t, 1.0, A.At(0, 0))
	require.Empty(t, rowMap(A, 2))
	require.Empty(t, rowMap(A, 3))
}

func TestReactiveTermAntisymmetry(t *testing.T) {
	nodes := chain(0, 2, 0.5)
	nodes[0].Data.Density = 8
	metal := region.NewMetal(0, "metal", nodes, material.Constant(1, 3), region.WithLatticeTemperature())
	bind(metal)

	// psi re=0 im=2, T re=1 im=3
	J := jacobian(4, entry{0, 0, 1}, entry{1, 1, 2}, entry{1, 0, 0.5})

	for _, omega := range []float64{0, 1, 1e3, 2.5e9} {
		A := newSystem(t, 4)
		s := matrix.NewSession(A)
		metal.FillNodalMatrixVector(nodes[0], s, J, omega, nil)
		s.Close()

		term := 8 * 3 * omega * 0.5
		require.Equal(t, term, A.At(1, 3), "omega=%g", omega)
		require.Equal(t, -A.At(1, 3), A.At(3, 1), "omega=%g", omega)

		require.Equal(t, 2.0, A.At(1, 1))
		require.Equal(t, 2.0, A.At(3, 3))
		require.Equal(t, 0.5, A.At(1, 0))
		require.Equal(t, 0.5, A.At(3, 2))
	}
}

func TestFillNodalVariable(t *testing.T) {
	nodes := chain(0, 2, 1)
	metal := region.NewMetal(0, "metal", nodes, material.Constant(1, 1), region.WithLatticeTemperature())
	bind(metal)

	J := jacobian(4, entry{0, 0, 1}, entry{1, 1, 2})

	A := newSystem(t, 4)
	s := matrix.NewSession(A)
	metal.FillNodalVariable(nodes[0], dof.Potential, s, J, 5, nil)
	s.Close()

	require.Equal(t, 1.0, A.At(0, 0))
	require.Equal(t, 1.0, A.At(2, 2))
	require.Equal(t, 2, A.NonZeros(), "potential only, no thermal storage")

	s = matrix.NewSession(A)
	metal.FillNodalVariable(nodes[0], dof.Temperature, s, J, 5, nil)
	s.Close()
	require.Equal(t, 5.0, A.At(1, 3))
	require.Equal(t, -5.0, A.At(3, 1))

	psiOnly := region.NewMetal(1, "psi", chain(0, 1, 1), material.Constant(1, 1))
	bind(psiOnly)
	require.Panics(t, func() {
		psiOnly.FillNodalVariable(psiOnly.Nodes()[0], dof.Temperature, matrix.NewSession(A), J, 1, nil)
	})
}

func TestWrongOwnerPanics(t *testing.T) {
	nodes := chain(0, 1, 1)
	nodes[0].ProcessorID = 2
	metal := region.NewMetal(0, "metal", nodes, material.Constant(1, 1))
	bind(metal)

	A := newSystem(t, 2)
	J := jacobian(2, entry{0, 0, 1})
	require.Panics(t, func() {
		metal.FillNodalMatrixVector(nodes[0], matrix.NewSession(A), J, 1, nil)
	})

	ranked := region.NewMetal(1, "metal", nodes, material.Constant(1, 1), region.WithRank(2))
	bind(ranked)
	require.NotPanics(t, func() {
		ranked.FillNodalMatrixVector(nodes[0], matrix.NewSession(A), J, 1, nil)
	})
}

func TestRedirectedFill(t *testing.T) {
	// region a: one node, psi+T, re 0..1, im 2..3
	// region b: one node, psi+T, re 4..5, im 6..7
	a := region.NewMetal(0, "a", chain(0, 2, 1), material.Constant(1, 1), region.WithLatticeTemperature())
	bNodes := chain(4, 2, 2)
	bNodes[0].Data.Density = 1
	b := region.NewMetal(1, "b", bNodes, material.Constant(1, 7), region.WithLatticeTemperature())
	bind(a, b)

	J := jacobian(8, entry{4, 4, 3}, entry{5, 5, 4})

	A := newSystem(t, 8)
	s := matrix.NewSession(A)
	b.FillNodalMatrixVector(bNodes[0], s, J, 2, &region.Adjacent{Region: 0, Node: 0})
	s.Close()

	// rows land in region a, columns stay in region b
	require.Equal(t, 3.0, A.At(0, 4))
	require.Equal(t, 3.0, A.At(2, 6))
	require.Equal(t, 4.0, A.At(1, 5))
	require.Equal(t, 4.0, A.At(3, 7))

	term := 1 * 7 * 2 * 2.0
	require.Equal(t, term, A.At(1, 3))
	require.Equal(t, -term, A.At(3, 1))

	for row := 4; row < 8; row++ {
		require.Empty(t, rowMap(A, row), "row %d of region b stays empty", row)
	}

	require.Panics(t, func() {
		b.FillNodalMatrixVector(bNodes[0], matrix.NewSession(A), J, 2, &region.Adjacent{Region: 9, Node: 0})
	})
}

func TestTransformationIdentityAtDC(t *testing.T) {
	nodes := chain(0, 2, 1, 1)
	metal := region.NewMetal(0, "metal", nodes, material.Constant(1, 1), region.WithLatticeTemperature())
	bind(metal)

	J := jacobian(8, entry{0, 0, 1}, entry{1, 1, 2}, entry{4, 4, 1}, entry{5, 5, 2})

	T := newSystem(t, 8)
	s := matrix.NewSession(T)
	require.NoError(t, metal.FillTransformationMatrix(s, J, 0))
	s.Close()

	for i := 0; i < 8; i++ {
		require.Equal(t, 1.0, T.At(i, i))
	}
	require.Equal(t, 8, T.NonZeros(), "no cross entries at omega=0")
}

func TestTransformationCrossTerms(t *testing.T) {
	nodes := chain(0, 2, 1)
	metal := region.NewMetal(0, "metal", nodes, material.Constant(1, 1), region.WithLatticeTemperature())
	bind(metal)

	J := jacobian(4, entry{0, 0, 5}, entry{1, 1, 4})

	T := newSystem(t, 4)
	s := matrix.NewSession(T)
	require.NoError(t, metal.FillTransformationMatrix(s, J, 2))
	s.Close()

	require.Equal(t, 0.5, T.At(1, 3))
	require.Equal(t, -0.5, T.At(3, 1))
	require.Zero(t, T.At(0, 2), "potential is not rescaled")
	require.Zero(t, T.At(2, 0))
	require.Equal(t, 6, T.NonZeros())
}

func TestTransformationZeroDiagonal(t *testing.T) {
	nodes := chain(0, 2, 1)
	metal := region.NewMetal(0, "metal", nodes, material.Constant(1, 1), region.WithLatticeTemperature())
	bind(metal)

	J := jacobian(4, entry{0, 0, 5})
	T := newSystem(t, 4)
	s := matrix.NewSession(T)

	err := metal.FillTransformationMatrix(s, J, 1)
	require.ErrorIs(t, err, region.ErrZeroDiagonal)
	s.Close()

	// potential block and the temperature identity were staged before the failure
	require.Equal(t, 1.0, T.At(0, 0))
	require.Equal(t, 1.0, T.At(2, 2))
	require.Equal(t, 1.0, T.At(1, 1))
	require.Equal(t, 1.0, T.At(3, 3))
	require.Equal(t, 4, T.NonZeros())
}

func TestCrossRegionColumnPanics(t *testing.T) {
	a := region.NewMetal(0, "a", chain(0, 1, 1), material.Constant(1, 1))
	b := region.NewMetal(1, "b", chain(2, 1, 1), material.Constant(1, 1))
	bind(a, b)

	J := jacobian(4, entry{0, 0, 1}, entry{0, 2, -1})
	A := newSystem(t, 4)
	require.Panics(t, func() {
		a.FillMatrixVector(matrix.NewSession(A), J, 1)
	})

	inside := jacobian(4, entry{0, 0, 1}, entry{2, 2, 1})
	require.NotPanics(t, func() {
		a.FillMatrixVector(matrix.NewSession(A), inside, 1)
	})
}

func TestForceEqual(t *testing.T) {
	a := region.NewMetal(0, "a", chain(0, 2, 1), material.Constant(1, 1), region.WithLatticeTemperature())
	bNodes := chain(4, 2, 1)
	b := region.NewMetal(1, "b", bNodes, material.Constant(1, 1), region.WithLatticeTemperature())
	bind(a, b)

	A := newSystem(t, 8)
	s := matrix.NewSession(A)

	adj := region.Adjacent{Region: 0, Node: 0}
	require.Panics(t, func() { b.ForceEqual(bNodes[0], s, adj) }, "needs a prior Add pass")

	s.Use(matrix.Add)
	s.AddComplex(matrix.Index{Re: 4, Im: 6}, matrix.Index{Re: 5, Im: 7}, 9)
	b.ForceEqual(bNodes[0], s, adj)
	s.Close()

	require.Equal(t, map[int]float64{4: 1, 0: -1}, rowMap(A, 4))
	require.Equal(t, map[int]float64{6: 1, 2: -1}, rowMap(A, 6))
	require.Equal(t, map[int]float64{5: 1, 1: -1}, rowMap(A, 5))
	require.Equal(t, map[int]float64{7: 1, 3: -1}, rowMap(A, 7))

	// own == adjacent makes every constraint row vanish
	x := []float64{0.3, 7, -0.2, 1.5, 0.3, 7, -0.2, 1.5}
	y := A.MulVec(x)
	for _, row := range []int{4, 5, 6, 7} {
		require.Zero(t, y[row])
	}
}

func TestForceEqualVariable(t *testing.T) {
	a := region.NewMetal(0, "a", chain(0, 1, 1), material.Constant(1, 1))
	bNodes := chain(2, 2, 1)
	b := region.NewMetal(1, "b", bNodes, material.Constant(1, 1), region.WithLatticeTemperature())
	bind(a, b)

	A := newSystem(t, 6)
	s := matrix.NewSession(A)
	s.Use(matrix.Add)

	adj := region.Adjacent{Region: 0, Node: 0}
	b.ForceEqualVariable(bNodes[0], dof.Potential, s, adj)
	require.Panics(t, func() { b.ForceEqualVariable(bNodes[0], dof.Temperature, s, adj) },
		"adjacent region has no temperature")
	s.Close()

	require.Equal(t, map[int]float64{2: 1, 0: -1}, rowMap(A, 2))
	require.Equal(t, map[int]float64{4: 1, 1: -1}, rowMap(A, 4))
}

func TestForceEqualForeignNodePanics(t *testing.T) {
	a := region.NewMetal(0, "a", chain(0, 2, 1), material.Constant(1, 1), region.WithLatticeTemperature())
	bNodes := chain(4, 2, 1)
	bNodes[0].ProcessorID = 1
	b := region.NewMetal(1, "b", bNodes, material.Constant(1, 1), region.WithLatticeTemperature())
	bind(a, b)

	A := newSystem(t, 8)
	s := matrix.NewSession(A)
	s.Use(matrix.Add)
	defer s.Close()

	adj := region.Adjacent{Region: 0, Node: 0}
	require.Panics(t, func() { b.ForceEqual(bNodes[0], s, adj) })
	require.Panics(t, func() { b.ForceEqualVariable(bNodes[0], dof.Potential, s, adj) })
}

func TestUpdateSolutionLocalNodes(t *testing.T) {
	nodes := chain(0, 2, 1, 1)
	nodes[1].ProcessorID = 1 // ghost, still updated
	metal := region.NewMetal(0, "metal", nodes, material.Constant(1, 1), region.WithLatticeTemperature())
	bind(metal)

	lxx := []float64{1, 2, -1, -2, 3, 4, -3, -4}
	metal.UpdateSolution(lxx)

	require.Equal(t, complex(1, -1), nodes[0].Data.PsiAC)
	require.Equal(t, complex(2, -2), nodes[0].Data.TAC)
	require.Equal(t, complex(3, -3), nodes[1].Data.PsiAC)
	require.Equal(t, complex(4, -4), nodes[1].Data.TAC)

	nodes[1].Data = nil
	require.Panics(t, func() { metal.UpdateSolution(lxx) })
}

func TestSplitLayout(t *testing.T) {
	nodes := []*mesh.Node{
		mesh.NewNode(0, 1, 0, &mesh.NodeData{}),
		mesh.NewNode(1, 1, 0, &mesh.NodeData{}),
	}
	nodes[1].GlobalOffset, nodes[1].LocalOffset = 1, 1
	metal := region.NewMetal(0, "metal", nodes, material.Constant(1, 1))
	metal.Bind(region.Registry{0: metal}, dof.Split{Global: 2, Local: 2})

	J := jacobian(2, entry{0, 0, 2}, entry{0, 1, -2}, entry{1, 0, -2}, entry{1, 1, 2})
	A := newSystem(t, 4)
	s := matrix.NewSession(A)
	metal.FillMatrixVector(s, J, 1)
	s.Close()

	require.Equal(t, map[int]float64{0: 2, 1: -2}, rowMap(A, 0))
	require.Equal(t, map[int]float64{2: 2, 3: -2}, rowMap(A, 2))
	require.Equal(t, map[int]float64{2: -2, 3: 2}, rowMap(A, 3))

	metal.UpdateSolution([]float64{1, 2, 3, 4})
	require.Equal(t, complex(1, 3), nodes[0].Data.PsiAC)
	require.Equal(t, complex(2, 4), nodes[1].Data.PsiAC)
}

func TestResolve(t *testing.T) {
	metal := region.NewMetal(0, "metal", chain(0, 1, 1), material.Constant(1, 1))
	reg := bind(metal)

	r, n, err := region.Resolve(reg, region.Adjacent{Region: 0, Node: 0})
	require.NoError(t, err)
	require.Equal(t, metal, r)
	require.Equal(t, 0, n.ID)

	_, _, err = region.Resolve(reg, region.Adjacent{Region: 1, Node: 0})
	require.ErrorIs(t, err, region.ErrUnknownRegion)

	_, _, err = region.Resolve(reg, region.Adjacent{Region: 0, Node: 5})
	require.ErrorIs(t, err, region.ErrUnknownNode)

	_, _, err = region.Resolve(nil, region.Adjacent{})
	require.ErrorIs(t, err, region.ErrUnknownRegion)
}
