package field_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/multigrid/field"
	"github.com/katalvlaran/multigrid/mesh"
)

func TestNewPatchValidation(t *testing.T) {
	_, err := field.NewPatch(mesh.Box{}, 1, 1)
	require.Error(t, err)

	_, err = field.NewPatch(mesh.NewBox(0, 0, 4, 4), 0, 1)
	require.ErrorIs(t, err, field.ErrShapeMismatch)

	p, err := field.NewPatch(mesh.NewBox(0, 0, 4, 4), 2, 1)
	require.NoError(t, err)
	require.Equal(t, 2, p.NComp())
	require.Equal(t, 1, p.NGhost())
	require.Equal(t, 0.0, p.At(1, 3, 3), "fresh patch is zero")
}

// TestIndexingWithOffsetBox exercises cells and halo of a box not anchored
// at the origin, the common case for refined AMR levels.
func TestIndexingWithOffsetBox(t *testing.T) {
	p := field.MustPatch(mesh.NewBox(4, 6, 12, 10), 1, 1)

	p.Set(0, 4, 6, 1.5)
	p.Set(0, 11, 9, -2.5)
	p.Set(0, 3, 6, 7.0) // ghost cell west of the valid region

	require.Equal(t, 1.5, p.At(0, 4, 6))
	require.Equal(t, -2.5, p.At(0, 11, 9))
	require.Equal(t, 7.0, p.At(0, 3, 6))

	row := p.Row(0, 6, 3, 6)
	require.Equal(t, []float64{7.0, 1.5, 0.0}, row)
}

func TestSetValAndCopy(t *testing.T) {
	b := mesh.NewBox(0, 0, 8, 8)
	p := field.MustPatch(b, 1, 1)
	q := field.MustPatch(b, 1, 1)

	p.SetVal(3.0)
	require.Equal(t, 3.0, p.At(0, -1, -1), "SetVal covers the halo")

	require.NoError(t, q.CopyFrom(p))
	require.Equal(t, 3.0, q.At(0, 5, 5))
	require.Equal(t, 0.0, q.At(0, -1, 0), "CopyFrom covers the valid region only")

	bad := field.MustPatch(mesh.NewBox(0, 0, 4, 4), 1, 1)
	require.ErrorIs(t, q.CopyFrom(bad), field.ErrShapeMismatch)
	require.ErrorIs(t, q.CopyFrom(nil), field.ErrNilPatch)
}

func TestCopyRegionBetweenBoxes(t *testing.T) {
	crse := field.MustPatch(mesh.NewBox(0, 0, 8, 8), 1, 0)
	fine := field.MustPatch(mesh.NewBox(2, 2, 6, 6), 1, 0)
	fine.SetVal(4.0)

	require.NoError(t, crse.CopyRegionFrom(fine, fine.Box()))
	require.Equal(t, 4.0, crse.At(0, 2, 2))
	require.Equal(t, 4.0, crse.At(0, 5, 5))
	require.Equal(t, 0.0, crse.At(0, 1, 1))

	err := crse.CopyRegionFrom(fine, mesh.NewBox(0, 0, 8, 8))
	require.ErrorIs(t, err, field.ErrRegionBounds)
}

func TestSaxpyLinCombScale(t *testing.T) {
	b := mesh.NewBox(0, 0, 4, 3)
	p := field.MustPatch(b, 1, 0)
	x := field.MustPatch(b, 1, 0)
	y := field.MustPatch(b, 1, 0)
	p.SetVal(1)
	x.SetVal(2)
	y.SetVal(-1)

	require.NoError(t, p.Saxpy(3, x))
	require.Equal(t, 7.0, p.At(0, 1, 1))

	p.Scale(0.5)
	require.Equal(t, 3.5, p.At(0, 2, 2))

	require.NoError(t, p.LinComb(2, x, 3, y))
	require.Equal(t, 1.0, p.At(0, 0, 0))

	require.NoError(t, p.Plus(x))
	require.Equal(t, 3.0, p.At(0, 3, 2))
}

func TestNormInfAndMask(t *testing.T) {
	red := field.SerialReducer{}
	p := field.MustPatch(mesh.NewBox(0, 0, 8, 8), 1, 1)
	p.SetVal(0)
	p.Set(0, 3, 3, -5)
	p.Set(0, 7, 0, 2)
	p.Set(0, -1, -1, 100) // halo must not count

	require.Equal(t, 5.0, p.NormInf(false, red))

	// Norm locality: one rank, local equals global.
	require.Equal(t, p.NormInf(true, nil), p.NormInf(false, red))

	masked := p.NormInfMasked(mesh.NewBox(2, 2, 6, 6), false, red)
	require.Equal(t, 2.0, masked, "covered max at (3,3) is excluded")

	require.Equal(t, 5.0, p.NormInfMasked(mesh.NewBox(20, 20, 24, 24), false, red),
		"mask outside the box is a no-op")
}

func TestDot(t *testing.T) {
	red := field.SerialReducer{}
	b := mesh.NewBox(0, 0, 4, 4)
	p := field.MustPatch(b, 1, 1)
	q := field.MustPatch(b, 1, 1)
	p.SetVal(2)
	q.SetVal(3)
	// Halo values must not contribute.
	p.Set(0, -1, 0, 100)
	q.Set(0, -1, 0, 100)

	v, err := p.Dot(q, false, red)
	require.NoError(t, err)
	require.Equal(t, 96.0, v)

	lv, err := p.Dot(q, true, nil)
	require.NoError(t, err)
	require.Equal(t, v, lv)

	_, err = p.Dot(nil, false, red)
	require.ErrorIs(t, err, field.ErrNilPatch)
}

// TestParallelPathMatchesSerial runs a region big enough to trigger the
// banded fan-out and checks results against direct evaluation.
func TestParallelPathMatchesSerial(t *testing.T) {
	red := field.SerialReducer{}
	b := mesh.NewBox(0, 0, 128, 128) // 16384 cells, above the inline cutoff
	p := field.MustPatch(b, 1, 1)
	q := field.MustPatch(b, 1, 1)

	want := 0.0
	dot := 0.0
	for y := 0; y < 128; y++ {
		for x := 0; x < 128; x++ {
			pv := math.Sin(float64(3*x+5*y)) * 10
			qv := math.Cos(float64(x - y))
			p.Set(0, x, y, pv)
			q.Set(0, x, y, qv)
			want = math.Max(want, math.Abs(pv))
			dot += pv * qv
		}
	}

	require.InDelta(t, want, p.NormInf(false, red), 1e-14)
	got, err := p.Dot(q, false, red)
	require.NoError(t, err)
	require.InDelta(t, dot, got, math.Abs(dot)*1e-12+1e-9)

	require.NoError(t, p.Saxpy(2, q))
	require.InDelta(t, math.Sin(float64(3*7+5*9))*10+2*math.Cos(float64(7-9)), p.At(0, 7, 9), 1e-13)
}
