package poisson

import (
	"fmt"

	"github.com/katalvlaran/multigrid/field"
	"github.com/katalvlaran/multigrid/linop"
	"github.com/katalvlaran/multigrid/mesh"
)

// NewOperator builds the discretization of an AMR hierarchy. geoms lists
// one geometry per AMR level, coarsest first; refRatios[a] is the
// refinement ratio between levels a and a+1 (len(geoms)-1 entries; ratio 1
// is the degenerate no-refinement case). Each fine domain must nest inside
// its coarse domain.
func NewOperator(geoms []mesh.Geometry, refRatios []int, opts Options) (*Operator, error) {
	if len(geoms) == 0 || len(refRatios) != len(geoms)-1 {
		return nil, fmt.Errorf("%w: %d levels, %d ratios", ErrBadHierarchy, len(geoms), len(refRatios))
	}
	if opts.MinWidth < 2 {
		opts.MinWidth = DefaultMinWidth
	}
	if opts.MaxCoarsening <= 0 {
		opts.MaxCoarsening = DefaultMaxCoarsening
	}
	for _, r := range refRatios {
		if r < 1 {
			return nil, fmt.Errorf("%w: refinement ratio %d", ErrBadHierarchy, r)
		}
	}

	op := &Operator{ref: refRatios, opts: opts}
	phys := geoms[0].Domain
	for a, g := range geoms {
		if g.Domain.IsEmpty() {
			return nil, fmt.Errorf("%w: empty domain at AMR level %d", ErrBadHierarchy, a)
		}
		if a > 0 {
			phys = phys.Refine(refRatios[a-1])
			crse, err := g.Domain.Coarsen(refRatios[a-1])
			if err != nil {
				return nil, fmt.Errorf("poisson: AMR level %d: %w", a, err)
			}
			if !geoms[a-1].Domain.ContainsBox(crse) {
				return nil, fmt.Errorf("%w: AMR level %d", ErrNotNested, a)
			}
		}
		op.levels = append(op.levels, op.buildMGChain(a, g, phys))
	}

	return op, nil
}

// buildMGChain derives the geometric coarsenings of one AMR level. AMR
// level 0 coarsens as far as divisibility, MinWidth, and MaxCoarsening
// allow; finer AMR levels coarsen only down to the next coarser AMR
// level's resolution.
func (op *Operator) buildMGChain(amrlev int, g mesh.Geometry, phys mesh.Box) []level {
	maxLevs := op.opts.MaxCoarsening + 1
	if amrlev > 0 {
		maxLevs = 1 + log2int(op.ref[amrlev-1])
	}

	chain := []level{{geom: g, phys: phys}}
	for len(chain) < maxLevs {
		cur := chain[len(chain)-1]
		cg, err := cur.geom.Coarsen(2)
		if err != nil {
			break
		}
		cphys, err := cur.phys.Coarsen(2)
		if err != nil {
			break
		}
		if cg.Domain.Nx() < op.opts.MinWidth {
			break
		}
		if cg.Domain.Ny() > 1 && cg.Domain.Ny() < op.opts.MinWidth {
			break
		}
		chain = append(chain, level{geom: cg, phys: cphys})
	}

	return chain
}

// log2int returns floor(log2(n)) for n ≥ 1.
func log2int(n int) int {
	k := 0
	for n > 1 {
		n >>= 1
		k++
	}

	return k
}

// NumAMRLevels returns the number of AMR levels.
func (op *Operator) NumAMRLevels() int { return len(op.levels) }

// NumMGLevels returns the MG chain length of amrlev.
func (op *Operator) NumMGLevels(amrlev int) int { return len(op.levels[amrlev]) }

// AMRRefRatio returns the ratio between amrlev and amrlev+1.
func (op *Operator) AMRRefRatio(amrlev int) int { return op.ref[amrlev] }

// Geometry returns the geometry of (amrlev, mglev).
func (op *Operator) Geometry(amrlev, mglev int) mesh.Geometry {
	return op.levels[amrlev][mglev].geom
}

// Make allocates a zeroed patch shaped for (amrlev, mglev).
func (op *Operator) Make(amrlev, mglev, ncomp, nghost int) *field.Patch {
	return field.MustPatch(op.levels[amrlev][mglev].geom.Domain, ncomp, nghost)
}

// IsSingular reports false: Dirichlet boundaries pin the solution.
func (op *Operator) IsSingular(int) bool { return false }

// PrepareForSolve is a no-op; the stencil carries no per-solve caches.
func (op *Operator) PrepareForSolve() error { return nil }

// MakeNSolveOperator rebuilds the discretization on the coarsest MG level
// of AMR level 0 as a standalone single-level hierarchy whose MG chain
// coarsens all the way down, restoring the multigrid depth a constrained
// outer hierarchy cannot reach. gridSize (≥ 2) is the decomposition
// granularity knob of the auxiliary grid; a single-patch build only
// validates it.
func (op *Operator) MakeNSolveOperator(gridSize int) (linop.Operator, error) {
	if gridSize < 2 {
		return nil, fmt.Errorf("%w: nsolve grid size %d", ErrBadHierarchy, gridSize)
	}
	bottom := op.levels[0][len(op.levels[0])-1]
	aux := op.opts
	aux.MinWidth = DefaultMinWidth
	aux.MaxCoarsening = DefaultMaxCoarsening

	return NewOperator([]mesh.Geometry{{Domain: bottom.geom.Domain, HX: bottom.geom.HX, HY: bottom.geom.HY}}, nil, aux)
}

// checkLevel validates level indices.
func (op *Operator) checkLevel(amrlev, mglev int) error {
	if amrlev < 0 || amrlev >= len(op.levels) || mglev < 0 || mglev >= len(op.levels[amrlev]) {
		return fmt.Errorf("%w: (%d,%d)", ErrLevelIndex, amrlev, mglev)
	}

	return nil
}

// checkPatch validates that p matches the level box and, when needGhost is
// set, carries the stencil halo.
func (op *Operator) checkPatch(amrlev, mglev int, p *field.Patch, needGhost bool) error {
	if p == nil {
		return field.ErrNilPatch
	}
	if !p.Box().Equal(op.levels[amrlev][mglev].geom.Domain) {
		return fmt.Errorf("%w: (%d,%d) box %+v", ErrLevelShape, amrlev, mglev, p.Box())
	}
	if needGhost && p.NGhost() < 1 {
		return fmt.Errorf("%w: (%d,%d)", ErrNeedGhost, amrlev, mglev)
	}

	return nil
}

// is1D reports whether the hierarchy is one-dimensional.
func (op *Operator) is1D() bool { return op.levels[0][0].geom.Domain.Ny() == 1 }
