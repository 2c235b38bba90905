package mesh_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/multigrid/mesh"
)

// TestBoxBasics verifies sizes, emptiness, and membership of a half-open box.
func TestBoxBasics(t *testing.T) {
	b := mesh.NewBox(2, 4, 10, 8)
	require.Equal(t, 8, b.Nx())
	require.Equal(t, 4, b.Ny())
	require.Equal(t, 32, b.NumCells())
	require.False(t, b.IsEmpty())

	require.True(t, b.Contains(2, 4), "Lo corner is inside")
	require.False(t, b.Contains(10, 4), "Hi bound is exclusive")
	require.True(t, b.ContainsBox(mesh.NewBox(3, 5, 9, 7)))
	require.False(t, b.ContainsBox(mesh.NewBox(0, 0, 4, 4)))
}

// TestBoxIntersect verifies overlap computation including the empty case.
func TestBoxIntersect(t *testing.T) {
	a := mesh.NewBox(0, 0, 8, 8)
	b := mesh.NewBox(4, 4, 12, 12)
	require.Equal(t, mesh.NewBox(4, 4, 8, 8), a.Intersect(b))

	far := mesh.NewBox(20, 20, 24, 24)
	require.True(t, a.Intersect(far).IsEmpty())
}

// TestRefineCoarsenRoundTrip checks that coarsening inverts refinement
// exactly, and that misaligned bounds are rejected.
func TestRefineCoarsenRoundTrip(t *testing.T) {
	b := mesh.NewBox(1, 2, 5, 6)
	f := b.Refine(2)
	require.Equal(t, mesh.NewBox(2, 4, 10, 12), f)

	back, err := f.Coarsen(2)
	require.NoError(t, err)
	require.Equal(t, b, back)

	_, err = mesh.NewBox(1, 0, 5, 4).Coarsen(2)
	require.ErrorIs(t, err, mesh.ErrBadRatio)

	_, err = mesh.Box{}.Coarsen(2)
	require.ErrorIs(t, err, mesh.ErrEmptyBox)
}

// TestCoarsenRatioOne is the degenerate identity ratio used by
// no-refinement AMR hierarchies.
func TestCoarsenRatioOne(t *testing.T) {
	b := mesh.NewBox(0, 0, 7, 3)
	c, err := b.Coarsen(1)
	require.NoError(t, err)
	require.Equal(t, b, c)
	require.Equal(t, b, b.Refine(1))
}

// TestBox1D checks that height-one boxes keep height one across ratios.
func TestBox1D(t *testing.T) {
	b := mesh.NewBox1D(0, 16)
	require.Equal(t, 1, b.Ny())

	f := b.Refine(2)
	require.Equal(t, mesh.NewBox1D(0, 32), f)
	require.Equal(t, 1, f.Ny())

	c, err := f.Coarsen(2)
	require.NoError(t, err)
	require.Equal(t, b, c)
}

// TestGeometryCoarsen verifies cell sizes scale with the domain.
func TestGeometryCoarsen(t *testing.T) {
	g := mesh.Geometry{Domain: mesh.NewBox(0, 0, 8, 8), HX: 0.125, HY: 0.125}
	c, err := g.Coarsen(2)
	require.NoError(t, err)
	require.Equal(t, mesh.NewBox(0, 0, 4, 4), c.Domain)
	require.InDelta(t, 0.25, c.HX, 1e-15)
	require.InDelta(t, 0.25, c.HY, 1e-15)
}

// TestTiles verifies the deterministic row-band decomposition.
func TestTiles(t *testing.T) {
	b := mesh.NewBox(0, 0, 4, 10)

	tiles := mesh.Tiles(b, 4)
	require.Len(t, tiles, 3)
	require.Equal(t, mesh.NewBox(0, 0, 4, 4), tiles[0])
	require.Equal(t, mesh.NewBox(0, 8, 4, 10), tiles[2], "last band is the remainder")

	total := 0
	for _, tl := range tiles {
		total += tl.NumCells()
	}
	require.Equal(t, b.NumCells(), total)

	require.Equal(t, []mesh.Box{b}, mesh.Tiles(b, 0), "non-positive rows means one tile")
	require.Nil(t, mesh.Tiles(mesh.Box{}, 4))
}
