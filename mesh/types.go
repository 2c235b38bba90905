// Package mesh defines core types and sentinel errors for the mesh
// subpackage of github.com/katalvlaran/multigrid.
package mesh

import "errors"

// Sentinel errors for mesh operations.
var (
	// ErrEmptyBox indicates an operation was attempted on an empty box.
	ErrEmptyBox = errors.New("mesh: box is empty")
	// ErrBadRatio indicates a coarsening ratio that does not evenly divide
	// the box bounds.
	ErrBadRatio = errors.New("mesh: coarsening ratio does not divide box")
)

// Box is a half-open rectangle of cell indices:
// cells (x, y) with LoX ≤ x < HiX and LoY ≤ y < HiY.
// A 1D domain is represented as a box of height one.
type Box struct {
	LoX, LoY int
	HiX, HiY int
}

// Geometry couples an index-space Box with the physical spacing of the
// cells it indexes. All cells of one level share the same spacing.
type Geometry struct {
	// Domain is the index-space extent of the level.
	Domain Box
	// HX, HY are the physical cell sizes along x and y.
	HX, HY float64
}
