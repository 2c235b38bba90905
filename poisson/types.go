// Package poisson: options, sentinel errors, and the Operator type.
package poisson

import (
	"errors"

	"github.com/katalvlaran/multigrid/mesh"
)

// Sentinel errors for hierarchy construction and level operations.
var (
	// ErrBadHierarchy indicates malformed constructor input (no levels,
	// ratio list of the wrong length, non-positive ratios).
	ErrBadHierarchy = errors.New("poisson: malformed level hierarchy")
	// ErrNotNested indicates a fine-level domain that does not nest inside
	// its coarse level under the declared refinement ratio.
	ErrNotNested = errors.New("poisson: fine level not nested in coarse level")
	// ErrLevelIndex indicates an AMR or MG level index out of range.
	ErrLevelIndex = errors.New("poisson: level index out of range")
	// ErrLevelShape indicates a patch whose box does not match the level.
	ErrLevelShape = errors.New("poisson: patch does not match level shape")
	// ErrNeedGhost indicates an input patch without the one-cell halo the
	// 5-point stencil reads.
	ErrNeedGhost = errors.New("poisson: patch needs a one-cell ghost halo")
)

// Default option values.
const (
	// DefaultMinWidth is the narrowest a multigrid level may become.
	DefaultMinWidth = 2
	// DefaultMaxCoarsening caps the MG chain length at AMR level 0.
	DefaultMaxCoarsening = 30
)

// Options configures the discretization.
//   - DirichletValue: boundary value g on every physical face
//     (homogeneous problems use 0).
//   - MinWidth: stop geometric coarsening when a domain side would drop
//     below this many cells.
//   - MaxCoarsening: upper bound on extra MG levels at AMR level 0.
type Options struct {
	DirichletValue float64
	MinWidth       int
	MaxCoarsening  int
}

// DefaultOptions returns the default configuration: homogeneous Dirichlet
// boundaries and a fully coarsened MG chain.
func DefaultOptions() Options {
	return Options{
		DirichletValue: 0,
		MinWidth:       DefaultMinWidth,
		MaxCoarsening:  DefaultMaxCoarsening,
	}
}

// level is one (AMR, MG) level: its patch geometry and the index-space box
// of the physical domain at the same resolution. Where patch faces meet
// phys faces the boundary is physical Dirichlet; elsewhere it is a
// coarse-fine interface.
type level struct {
	geom mesh.Geometry
	phys mesh.Box
}

// Operator is the cell-centered Poisson discretization of a fixed AMR/MG
// hierarchy. It is stateless between calls apart from the hierarchy itself
// and safe for repeated solves.
type Operator struct {
	levels [][]level // [amrlev][mglev]
	ref    []int     // ref[a] = ratio between AMR level a and a+1
	opts   Options
}
