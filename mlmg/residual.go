// SPDX-License-Identifier: MIT
package mlmg

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/katalvlaran/multigrid/field"
	"github.com/katalvlaran/multigrid/linop"
	"github.com/katalvlaran/multigrid/mesh"
)

// computeMLResidual recomputes the composite residual res = rhs − L(sol)
// on AMR levels 0..alevmax: coarse-fine ghosts come from the coarser
// solution, interface fluxes are refluxed, and covered coarse cells take
// the averaged-down fine residual.
func (s *Solver) computeMLResidual(alevmax int) error {
	for alev := alevmax; alev >= 0; alev-- {
		var crse *field.Patch
		if alev > 0 {
			crse = s.sol[alev-1]
		}
		if err := s.op.SolutionResidual(alev, s.res[alev][0], s.sol[alev], s.rhs[alev], crse); err != nil {
			return err
		}
		if alev < alevmax {
			if err := s.op.Reflux(alev, s.res[alev][0], s.sol[alev], s.sol[alev+1]); err != nil {
				return err
			}
			if err := s.op.AverageDownSolutionRHS(alev, s.res[alev][0], nil, s.res[alev+1][0], nil); err != nil {
				return err
			}
		}
	}

	return nil
}

// computeResWithCrseSolFineCor updates the residuals around the
// calev/falev interface after the fine level absorbed its correction:
// the fine residual switches to the correction form (homogeneous
// boundaries), and the coarse residual is rebuilt from the updated
// solution with refluxed interface fluxes and averaged-down fine
// residuals on covered cells.
func (s *Solver) computeResWithCrseSolFineCor(calev, falev int) error {
	if err := s.op.CorrectionResidual(falev, 0, s.rescor[falev][0],
		s.cor[falev][0], s.res[falev][0], linop.Homogeneous, nil); err != nil {
		return err
	}
	s.res[falev][0], s.rescor[falev][0] = s.rescor[falev][0], s.res[falev][0]

	// The coarse residual must see the updated fine solution on covered
	// cells and through the interface stencils.
	if err := s.op.AverageDownSolutionRHS(calev, s.sol[calev], nil, s.sol[falev], nil); err != nil {
		return err
	}
	var crse *field.Patch
	if calev > 0 {
		crse = s.sol[calev-1]
	}
	if err := s.op.SolutionResidual(calev, s.res[calev][0], s.sol[calev], s.rhs[calev], crse); err != nil {
		return err
	}
	if err := s.op.Reflux(calev, s.res[calev][0], s.sol[calev], s.sol[falev]); err != nil {
		return err
	}

	return s.op.AverageDownSolutionRHS(calev, s.res[calev][0], nil, s.res[falev][0], nil)
}

// computeResWithCrseCorFineCor switches the fine residual at falev to the
// correction form seen from the freshly interpolated coarse correction:
// the fine correction's ghost region reads the coarse correction.
func (s *Solver) computeResWithCrseCorFineCor(falev int) error {
	if err := s.op.CorrectionResidual(falev, 0, s.rescor[falev][0],
		s.cor[falev][0], s.res[falev][0], linop.Inhomogeneous, s.cor[falev-1][0]); err != nil {
		return err
	}
	s.res[falev][0], s.rescor[falev][0] = s.rescor[falev][0], s.res[falev][0]

	return nil
}

// computeResOfCorrection evaluates rescor = res − L(cor) at (amrlev,
// mglev) with fully homogeneous boundaries.
func (s *Solver) computeResOfCorrection(amrlev, mglev int) error {
	return s.op.CorrectionResidual(amrlev, mglev, s.rescor[amrlev][mglev],
		s.cor[amrlev][mglev], s.res[amrlev][mglev], linop.Homogeneous, nil)
}

// averageDownAndSync replaces covered coarse solution cells with the
// averaged-down fine solution, finest level first.
func (s *Solver) averageDownAndSync() error {
	for alev := s.finest; alev >= 1; alev-- {
		if err := s.op.AverageDownSolutionRHS(alev-1, s.sol[alev-1], nil, s.sol[alev], nil); err != nil {
			return err
		}
	}

	return nil
}

// coveredBox returns the region of alev covered by AMR level alev+1, or
// an empty box at the finest level.
func (s *Solver) coveredBox(alev int) mesh.Box {
	if alev >= s.finest {
		return mesh.Box{}
	}
	cb, err := s.rhs[alev+1].Box().Coarsen(s.op.AMRRefRatio(alev))
	if err != nil {
		// Hierarchy construction guarantees alignment; an error here can
		// only mean an empty overlap.
		return mesh.Box{}
	}

	return cb
}

// resNormInf returns the residual inf-norm of one AMR level, skipping
// cells covered by the next finer level.
func (s *Solver) resNormInf(alev int, local bool) float64 {
	return s.res[alev][0].NormInfMasked(s.coveredBox(alev), local, s.red)
}

// mlResNormInf returns the composite residual inf-norm over levels
// 0..alevmax.
func (s *Solver) mlResNormInf(alevmax int, local bool) float64 {
	v := 0.0
	for alev := 0; alev <= alevmax; alev++ {
		v = math.Max(v, s.resNormInf(alev, local))
	}

	return v
}

// mlRhsNormInf returns the composite right-hand-side inf-norm, with
// covered coarse cells skipped.
func (s *Solver) mlRhsNormInf(local bool) float64 {
	v := 0.0
	for alev := 0; alev < s.namrlevs; alev++ {
		v = math.Max(v, s.rhs[alev].NormInfMasked(s.coveredBox(alev), local, s.red))
	}

	return v
}

// maskedSum returns the sum and cell count of p's valid region with cells
// inside exclude skipped, accumulated over all components.
func maskedSum(p *field.Patch, exclude mesh.Box) (float64, int) {
	b := p.Box()
	cover := exclude.Intersect(b)
	sum, n := 0.0, 0
	for c := 0; c < p.NComp(); c++ {
		for y := b.LoY; y < b.HiY; y++ {
			if y < cover.LoY || y >= cover.HiY || cover.IsEmpty() {
				sum += floats.Sum(p.Row(c, y, b.LoX, b.HiX))
				n += b.HiX - b.LoX

				continue
			}
			if b.LoX < cover.LoX {
				sum += floats.Sum(p.Row(c, y, b.LoX, cover.LoX))
				n += cover.LoX - b.LoX
			}
			if cover.HiX < b.HiX {
				sum += floats.Sum(p.Row(c, y, cover.HiX, b.HiX))
				n += b.HiX - cover.HiX
			}
		}
	}

	return sum, n
}

// addConst adds v to every cell of p's valid region.
func addConst(p *field.Patch, v float64) {
	b := p.Box()
	for c := 0; c < p.NComp(); c++ {
		for y := b.LoY; y < b.HiY; y++ {
			floats.AddConst(v, p.Row(c, y, b.LoX, b.HiX))
		}
	}
}
