// SPDX-License-Identifier: MIT
package mlmg

import (
	"time"

	"go.uber.org/zap"

	"github.com/katalvlaran/multigrid/bottom"
	"github.com/katalvlaran/multigrid/field"
	"github.com/katalvlaran/multigrid/linop"
)

// oneIter performs one outer cycle over the whole AMR hierarchy: relax the
// fine levels on the way down while folding their updates into coarser
// residuals, run a full multigrid pass at the coarsest AMR level, then
// interpolate corrections back up with another relaxation pass per level.
func (s *Solver) oneIter(iter int) error {
	// Down the AMR hierarchy.
	for alev := s.finest; alev > 0; alev-- {
		if err := s.miniCycle(alev); err != nil {
			return err
		}
		if err := s.sol[alev].Plus(s.cor[alev][0]); err != nil {
			return err
		}
		if err := s.computeResWithCrseSolFineCor(alev-1, alev); err != nil {
			return err
		}
		if alev != s.finest {
			// Park this level's correction; the coarse solve below will
			// produce a second piece to add to it on the way up.
			s.cor[alev][0], s.corHold[alev][0] = s.corHold[alev][0], s.cor[alev][0]
		}
	}

	// Coarsest AMR level: full multigrid for the first MaxFMGIters outer
	// iterations, a plain V-cycle afterwards.
	if iter < s.opts.MaxFMGIters {
		if err := s.mgFcycle(); err != nil {
			return err
		}
	} else {
		if err := s.mgVcycle(0, 0); err != nil {
			return err
		}
	}
	if err := s.sol[0].Plus(s.cor[0][0]); err != nil {
		return err
	}

	// Back up the AMR hierarchy.
	for alev := 1; alev <= s.finest; alev++ {
		if err := s.interpCorrection(alev); err != nil {
			return err
		}
		if err := s.sol[alev].Plus(s.cor[alev][0]); err != nil {
			return err
		}
		if alev != s.finest {
			if err := s.corHold[alev][0].Plus(s.cor[alev][0]); err != nil {
				return err
			}
		}
		if err := s.computeResWithCrseCorFineCor(alev); err != nil {
			return err
		}
		if err := s.miniCycle(alev); err != nil {
			return err
		}
		if err := s.sol[alev].Plus(s.cor[alev][0]); err != nil {
			return err
		}
		if alev != s.finest {
			// Combine both pieces so the next finer level sees the total
			// coarse correction through its ghost region.
			if err := s.cor[alev][0].Plus(s.corHold[alev][0]); err != nil {
				return err
			}
		}
	}

	return s.averageDownAndSync()
}

// miniCycle runs one correction V-cycle inside AMR level alev.
func (s *Solver) miniCycle(alev int) error {
	if s.opts.Verbose >= 4 {
		s.log.Debug("mlmg: mini cycle", zap.Int("amrlev", alev))
	}

	return s.mgVcycle(alev, 0)
}

// mgVcycle runs a correction V-cycle on the multigrid chain of amrlev,
// starting at mglev0 and descending to the chain's coarsest level. Only
// AMR level 0 owns a true bottom solve; inside finer AMR levels the
// coarsest chain level is just smoothed.
func (s *Solver) mgVcycle(amrlev, mglev0 int) error {
	mglevBottom := s.op.NumMGLevels(amrlev) - 1

	for mglev := mglev0; mglev < mglevBottom; mglev++ {
		s.cor[amrlev][mglev].SetVal(0)
		for i := 0; i < s.opts.PreSmooth; i++ {
			if err := s.op.Smooth(amrlev, mglev, s.cor[amrlev][mglev], s.res[amrlev][mglev], false); err != nil {
				return err
			}
		}
		if err := s.computeResOfCorrection(amrlev, mglev); err != nil {
			return err
		}
		if err := s.op.Restriction(amrlev, mglev+1, s.res[amrlev][mglev+1], s.rescor[amrlev][mglev]); err != nil {
			return err
		}
	}

	s.cor[amrlev][mglevBottom].SetVal(0)
	if amrlev == 0 {
		if err := s.bottomSolve(); err != nil {
			return err
		}
	} else {
		for i := 0; i < s.opts.PreSmooth; i++ {
			if err := s.op.Smooth(amrlev, mglevBottom, s.cor[amrlev][mglevBottom], s.res[amrlev][mglevBottom], false); err != nil {
				return err
			}
		}
	}

	for mglev := mglevBottom - 1; mglev >= mglev0; mglev-- {
		if err := s.op.Interpolation(amrlev, mglev, s.cor[amrlev][mglev], s.cor[amrlev][mglev+1]); err != nil {
			return err
		}
		for i := 0; i < s.opts.PostSmooth; i++ {
			if err := s.op.Smooth(amrlev, mglev, s.cor[amrlev][mglev], s.res[amrlev][mglev], false); err != nil {
				return err
			}
		}
	}

	return nil
}

// mgFcycle runs a full-multigrid pass at AMR level 0: restrict the
// residual all the way down, bottom solve, then seed each finer level with
// the higher-order interpolant of the coarser correction and polish it
// with a V-cycle from that level.
func (s *Solver) mgFcycle() error {
	mglevBottom := s.op.NumMGLevels(0) - 1

	for mglev := 1; mglev <= mglevBottom; mglev++ {
		if err := s.op.Restriction(0, mglev, s.res[0][mglev], s.res[0][mglev-1]); err != nil {
			return err
		}
	}

	s.cor[0][mglevBottom].SetVal(0)
	if err := s.bottomSolve(); err != nil {
		return err
	}

	for mglev := mglevBottom - 1; mglev >= 0; mglev-- {
		if err := s.op.FMGInterpolation(0, mglev, s.cor[0][mglev], s.cor[0][mglev+1]); err != nil {
			return err
		}
		if err := s.computeResOfCorrection(0, mglev); err != nil {
			return err
		}
		if err := s.res[0][mglev].CopyFrom(s.rescor[0][mglev]); err != nil {
			return err
		}
		// Hold the seed; the V-cycle solves for the remaining correction.
		s.cor[0][mglev], s.corHold[0][mglev] = s.corHold[0][mglev], s.cor[0][mglev]
		if err := s.mgVcycle(0, mglev); err != nil {
			return err
		}
		if err := s.cor[0][mglev].Plus(s.corHold[0][mglev]); err != nil {
			return err
		}
	}

	return nil
}

// bottomSolve solves the coarsest system of AMR level 0, either through a
// nested engine (NSolve) or the configured bottom strategy.
func (s *Solver) bottomSolve() error {
	t0 := time.Now()
	defer func() { s.stats.BottomTime += time.Since(t0) }()

	if s.opts.NSolve {
		return s.nSolve()
	}

	return s.actualBottomSolve()
}

// actualBottomSolve dispatches to the bound bottom strategy and applies
// the optional post-Krylov smoothing sweeps.
func (s *Solver) actualBottomSolve() error {
	blev := s.op.NumMGLevels(0) - 1
	re, err := s.bot.Solve(s.cor[0][blev], s.res[0][blev])
	if err != nil {
		// Only the external direct backend fails fatally; the iterative
		// strategies report shortfalls through Result.
		return err
	}
	s.stats.BottomIters = append(s.stats.BottomIters, re.Iters)
	if s.opts.Verbose >= 3 {
		s.log.Debug("mlmg: bottom solve",
			zap.Int("iters", re.Iters),
			zap.Bool("converged", re.Converged),
			zap.Float64("final_norm", re.FinalNorm))
	}

	if s.opts.BottomSmooth > 0 && isKrylov(s.opts.BottomSolver) {
		for i := 0; i < s.opts.BottomSmooth; i++ {
			if err := s.op.Smooth(0, blev, s.cor[0][blev], s.res[0][blev], false); err != nil {
				return err
			}
		}
	}

	return nil
}

// isKrylov reports whether c resolves to a Krylov strategy.
func isKrylov(c bottom.Choice) bool {
	return c == bottom.Default || c == bottom.CG || c == bottom.BiCGStab
}

// nSolve routes the bottom system through the nested engine: the residual
// becomes the auxiliary right-hand side, and the auxiliary solution comes
// back as the bottom correction.
func (s *Solver) nSolve() error {
	blev := s.op.NumMGLevels(0) - 1
	if err := s.nsRhs.CopyRegionFrom(s.res[0][blev], s.nsRhs.Box()); err != nil {
		return err
	}
	s.nsSol.SetVal(0)

	norm, err := s.nsSolver.Solve(
		[]*field.Patch{s.nsSol}, []*field.Patch{s.nsRhs},
		s.opts.BottomRelTol, s.opts.BottomAbsTol)
	if err != nil {
		return err
	}
	ns := s.nsSolver.Stats()
	s.stats.BottomIters = append(s.stats.BottomIters, ns.NumIters)
	if s.opts.Verbose >= 3 {
		s.log.Debug("mlmg: nsolve bottom",
			zap.Int("iters", ns.NumIters),
			zap.Float64("res_norm", norm))
	}

	return s.cor[0][blev].CopyRegionFrom(s.nsSol, s.cor[0][blev].Box())
}

// interpCorrection fills cor at alev with the interpolated coarse-level
// correction, applying the configured coarse-fine fix.
func (s *Solver) interpCorrection(alev int) error {
	if err := s.op.InterpolationAMR(alev, s.cor[alev][0], s.cor[alev-1][0]); err != nil {
		return err
	}
	if s.opts.CFStrategy == linop.CFGhostNodes {
		if f, ok := s.op.(linop.CFFixer); ok {
			return f.FixCFBoundary(alev, 0, s.cor[alev][0])
		}
	}

	return nil
}
