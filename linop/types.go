// Package linop: the Operator interface, enums, and sentinel errors.
package linop

import (
	"errors"

	"github.com/katalvlaran/multigrid/field"
)

// Sentinel errors for operator capabilities.
var (
	// ErrUnsupported indicates an optional capability the bound operator
	// does not provide (e.g. embedded-boundary fluxes on a cell-centered
	// discretization).
	ErrUnsupported = errors.New("linop: operation not supported by this operator")
)

// BCMode selects the physical boundary treatment of one operator call.
type BCMode int

const (
	// Homogeneous applies zero boundary data; correction equations always
	// use this mode.
	Homogeneous BCMode = iota
	// Inhomogeneous applies the operator's configured boundary data.
	Inhomogeneous
)

// CFStrategy selects the coarse-fine interface treatment of the cycle
// engine when moving corrections between levels.
type CFStrategy int

const (
	// CFNone applies no extra treatment; ghost data comes from the usual
	// interpolation stencils.
	CFNone CFStrategy = iota
	// CFGhostNodes invokes the operator's consistency fix (CFFixer) after
	// each correction interpolation, for discretizations whose ghost nodes
	// carry state of their own.
	CFGhostNodes
)

// Operator is the abstract linear-operator contract: everything the cycle
// engine needs from a concrete discretization of L(x) = b over an AMR/MG
// hierarchy. Implementations are bound to a fixed hierarchy at
// construction.
type Operator interface {
	// NumAMRLevels returns the number of AMR levels (≥ 1).
	NumAMRLevels() int
	// NumMGLevels returns the number of multigrid levels inside amrlev
	// (≥ 1); level 0 is the AMR level's own resolution.
	NumMGLevels(amrlev int) int
	// AMRRefRatio returns the refinement ratio between amrlev and
	// amrlev+1.
	AMRRefRatio(amrlev int) int

	// Make allocates a zeroed patch shaped for (amrlev, mglev).
	Make(amrlev, mglev, ncomp, nghost int) *field.Patch

	// Apply computes out = L(in) at (amrlev, mglev) under bc. Coarse-fine
	// ghost data is homogeneous; use SolutionResidual for inhomogeneous
	// coarse-fine coupling.
	Apply(amrlev, mglev int, out, in *field.Patch, bc BCMode) error

	// Smooth performs one relaxation sweep on L(sol) = rhs at
	// (amrlev, mglev) with homogeneous boundaries. skipFill skips the
	// leading ghost fill when the caller knows ghosts are current.
	Smooth(amrlev, mglev int, sol, rhs *field.Patch, skipFill bool) error

	// Restriction restricts fine (at cmglev-1) onto crse (at cmglev)
	// inside amrlev.
	Restriction(amrlev, cmglev int, crse, fine *field.Patch) error

	// Interpolation interpolates crse (at fmglev+1) and ADDS it onto fine
	// (at fmglev) inside amrlev; the V-cycle ascent transfer.
	Interpolation(amrlev, fmglev int, fine, crse *field.Patch) error

	// FMGInterpolation interpolates crse (at fmglev+1) onto fine
	// (at fmglev), overwriting fine; the full-multigrid seeding transfer,
	// typically higher order than Interpolation.
	FMGInterpolation(amrlev, fmglev int, fine, crse *field.Patch) error

	// InterpolationAMR interpolates the coarse-level correction crse
	// (famrlev-1, mglev 0) onto fine (famrlev, mglev 0), overwriting fine.
	InterpolationAMR(famrlev int, fine, crse *field.Patch) error

	// AverageDownSolutionRHS replaces the region of crseSol/crseRhs covered
	// by AMR level camrlev+1 with the averaged-down fineSol/fineRhs. Nil
	// rhs arguments skip the rhs pair.
	AverageDownSolutionRHS(camrlev int, crseSol, crseRhs, fineSol, fineRhs *field.Patch) error

	// SolutionResidual computes res = rhs − L(sol) at (amrlev, 0) with
	// inhomogeneous physical boundaries. For amrlev > 0, crseSol supplies
	// coarse-fine ghost data; it is nil at level 0.
	SolutionResidual(amrlev int, res, sol, rhs, crseSol *field.Patch) error

	// CorrectionResidual computes rescor = res − L(cor) at (amrlev, mglev)
	// with homogeneous physical boundaries. Under bc == Inhomogeneous,
	// crseCor supplies coarse-fine ghost data for the correction; under
	// Homogeneous the coarse-fine data is zero and crseCor is ignored.
	CorrectionResidual(amrlev, mglev int, rescor, cor, res *field.Patch, bc BCMode, crseCor *field.Patch) error

	// Reflux fixes the coarse residual crseRes along the boundary of AMR
	// level camrlev+1: coarse fluxes across the coarse-fine interface are
	// replaced with averaged fine fluxes of fineSol.
	Reflux(camrlev int, crseRes, crseSol, fineSol *field.Patch) error

	// IsSingular reports whether the operator at amrlev has a nontrivial
	// null space (e.g. all-Neumann), in which case the engine projects the
	// right-hand side to keep the bottom system solvable.
	IsSingular(amrlev int) bool

	// PrepareForSolve performs any per-solve setup (cached stencil data,
	// boundary registers). Called once at the start of every solve.
	PrepareForSolve() error
}

// NSolveCapable is implemented by operators that can rebuild themselves on
// the auxiliary coarse-solve grid used by the engine's NSolve bottom
// strategy. gridSize caps how far the auxiliary hierarchy may coarsen.
type NSolveCapable interface {
	MakeNSolveOperator(gridSize int) (Operator, error)
}

// Fluxer is implemented by operators that can derive gradients and fluxes
// from a solved state. For L = −∇·β∇, flux means −β∇φ. crseSol carries the
// coarse-fine ghost data for amrlev > 0 and is nil at level 0.
type Fluxer interface {
	// GradSolution writes the face gradients of sol at amrlev into
	// gx (x-faces) and gy (y-faces).
	GradSolution(amrlev int, gx, gy, sol, crseSol *field.Patch) error
	// Fluxes writes the face fluxes of sol at amrlev into fx and fy.
	Fluxes(amrlev int, fx, fy, sol, crseSol *field.Patch) error
}

// EBFluxer is implemented by embedded-boundary discretizations that can
// report the flux into the embedded wall.
type EBFluxer interface {
	EBFluxes(amrlev int, ebFlux, sol *field.Patch) error
}

// BCFiller is implemented by operators that can fill a solution patch's
// ghost halo with inhomogeneous boundary data after a solve, so downstream
// stencils can read across the patch boundary. crseSol carries coarse-fine
// data for amrlev > 0 and is nil at level 0.
type BCFiller interface {
	FillSolutionBC(amrlev int, sol, crseSol *field.Patch) error
}

// CFFixer is implemented by operators whose coarse-fine ghost nodes carry
// state that must be re-synchronized after correction transfers; invoked
// by the engine only under CFGhostNodes.
type CFFixer interface {
	FixCFBoundary(amrlev, mglev int, sol *field.Patch) error
}
