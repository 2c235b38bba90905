// SPDX-License-Identifier: MIT
package mlmg

import (
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/katalvlaran/multigrid/bottom"
	"github.com/katalvlaran/multigrid/field"
	"github.com/katalvlaran/multigrid/linop"
	"github.com/katalvlaran/multigrid/mesh"
)

// Solver drives the multilevel cycles of one operator. Build it once per
// operator with New and reuse it across solves; it keeps its scratch
// hierarchy between calls.
type Solver struct {
	op   linop.Operator
	opts Options
	log  *zap.Logger
	red  field.Reducer
	bot  bottom.Solver

	namrlevs int
	finest   int
	ncomp    int

	// Valid-region box of each AMR level, captured at construction.
	boxes []mesh.Box

	// sol is borrowed from the caller for the duration of a solve and kept
	// for post-solve derived outputs. rhs holds owned copies so the cycle
	// bookkeeping never mutates caller data.
	sol []*field.Patch
	rhs []*field.Patch

	// Scratch per (amrlev, mglev): res/rescor on the valid region,
	// cor/corHold with a one-cell halo for smoothing.
	res     [][]*field.Patch
	cor     [][]*field.Patch
	corHold [][]*field.Patch
	rescor  [][]*field.Patch

	// Nested engine for the NSolve bottom strategy.
	nsSolver *Solver
	nsSol    *field.Patch
	nsRhs    *field.Patch

	stats Stats
}

// New binds an engine to op. Configuration problems (unknown bottom
// strategy, NSolve on an incapable operator) surface here, not mid-solve.
func New(op linop.Operator, opts Options) (*Solver, error) {
	if op == nil {
		return nil, fmt.Errorf("%w: nil operator", ErrBadInput)
	}
	if opts.MaxIters <= 0 {
		opts.MaxIters = DefaultOptions().MaxIters
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Reducer == nil {
		opts.Reducer = field.SerialReducer{}
	}

	s := &Solver{
		op:       op,
		opts:     opts,
		log:      opts.Logger,
		red:      opts.Reducer,
		namrlevs: op.NumAMRLevels(),
		finest:   op.NumAMRLevels() - 1,
	}
	s.boxes = make([]mesh.Box, s.namrlevs)
	for a := 0; a < s.namrlevs; a++ {
		s.boxes[a] = op.Make(a, 0, 1, 0).Box()
	}

	botLog := zap.NewNop()
	if opts.BottomVerbose > 0 {
		botLog = opts.Logger
	}
	bot, err := bottom.New(op, bottom.Config{
		Choice:   opts.BottomSolver,
		MaxIters: opts.BottomMaxIters,
		RelTol:   opts.BottomRelTol,
		AbsTol:   opts.BottomAbsTol,
		Sweeps:   opts.FinalSmooth,
		Reducer:  opts.Reducer,
		Logger:   botLog,
	})
	if err != nil {
		return nil, err
	}
	s.bot = bot

	if opts.NSolve {
		nsc, ok := op.(linop.NSolveCapable)
		if !ok {
			return nil, ErrNSolve
		}
		nsOp, err := nsc.MakeNSolveOperator(opts.NSolveGridSize)
		if err != nil {
			return nil, fmt.Errorf("mlmg: nsolve operator: %w", err)
		}
		nsOpts := opts
		nsOpts.NSolve = false
		nsOpts.Verbose = opts.BottomVerbose
		nsOpts.BottomVerbose = 0
		nsOpts.FixedIters = 0
		nsOpts.MaxIters = opts.BottomMaxIters
		nsOpts.MaxFMGIters = 0
		nsOpts.CheckpointFile = ""
		s.nsSolver, err = New(nsOp, nsOpts)
		if err != nil {
			return nil, fmt.Errorf("mlmg: nsolve engine: %w", err)
		}
	}

	return s, nil
}

// Stats returns the diagnostics of the most recent Solve.
func (s *Solver) Stats() Stats { return s.stats }

// Solve iterates on L(sol) = rhs until the composite residual inf-norm
// drops below max(tolRel·norm, tolAbs), where norm is the right-hand-side
// norm (or the larger of it and the initial residual; see
// Options.AlwaysUseBNorm), or until the iteration cap. sol is both the
// initial guess and the result; each sol patch needs a one-cell halo. rhs
// is not modified. The achieved composite residual norm is returned;
// running out of iterations is reported through Stats, not as an error.
func (s *Solver) Solve(sol, rhs []*field.Patch, tolRel, tolAbs float64) (float64, error) {
	t0 := time.Now()
	s.stats = Stats{}

	if err := s.prepare(sol, rhs); err != nil {
		return 0, err
	}
	if s.opts.CheckpointFile != "" {
		if err := s.checkPoint(tolRel, tolAbs); err != nil {
			return 0, err
		}
	}

	s.stats.RHSNorm0 = s.mlRhsNormInf(false)
	if s.op.IsSingular(0) {
		if err := s.makeSolvable(); err != nil {
			return 0, err
		}
	}

	if err := s.computeMLResidual(s.finest); err != nil {
		return 0, err
	}
	resNorm := s.mlResNormInf(s.finest, false)
	s.stats.InitResNorm = resNorm

	maxNorm := s.stats.RHSNorm0
	if !s.opts.AlwaysUseBNorm {
		maxNorm = math.Max(maxNorm, resNorm)
	}
	resTarget := math.Max(tolRel*maxNorm, tolAbs)

	if s.opts.Verbose >= 1 {
		s.log.Info("mlmg: solve start",
			zap.Float64("rhs_norm", s.stats.RHSNorm0),
			zap.Float64("init_res_norm", resNorm),
			zap.Float64("res_target", resTarget))
	}

	niters := s.opts.MaxIters
	if s.opts.FixedIters > 0 {
		niters = s.opts.FixedIters
	}

	converged := s.opts.FixedIters == 0 && resNorm <= resTarget
	if converged && s.opts.Verbose >= 1 {
		s.log.Info("mlmg: initial guess already converged")
	}

	tIter := time.Now()
	for iter := 0; !converged && iter < niters; iter++ {
		if err := s.oneIter(iter); err != nil {
			return 0, err
		}
		if err := s.computeMLResidual(s.finest); err != nil {
			return 0, err
		}
		s.stats.NumIters++
		fineNorm := s.resNormInf(s.finest, false)
		s.stats.ResHistory = append(s.stats.ResHistory, fineNorm)
		resNorm = s.mlResNormInf(s.finest, false)
		if s.opts.Verbose >= 2 {
			s.log.Info("mlmg: iteration",
				zap.Int("iter", iter+1),
				zap.Float64("fine_res_norm", fineNorm),
				zap.Float64("composite_res_norm", resNorm))
		}
		if s.opts.FixedIters == 0 && resNorm <= resTarget {
			converged = true
		}
	}
	s.stats.IterTime = time.Since(tIter)
	s.stats.FinalResNorm = resNorm
	s.stats.Converged = resNorm <= resTarget

	if s.opts.FixedIters == 0 && !converged {
		s.log.Warn("mlmg: failed to converge",
			zap.Int("iters", s.stats.NumIters),
			zap.Float64("res_norm", resNorm),
			zap.Float64("res_target", resTarget))
	}

	if s.opts.FinalFillBC {
		if err := s.fillSolutionBC(); err != nil {
			return 0, err
		}
	}

	s.stats.SolveTime = time.Since(t0)
	if s.opts.Verbose >= 1 {
		s.log.Info("mlmg: solve done",
			zap.Int("iters", s.stats.NumIters),
			zap.Bool("converged", s.stats.Converged),
			zap.Float64("final_res_norm", resNorm),
			zap.Duration("solve_time", s.stats.SolveTime),
			zap.Duration("bottom_time", s.stats.BottomTime))
	}

	return resNorm, nil
}

// prepare validates the inputs, copies the right-hand side, allocates the
// scratch hierarchy, and makes the initial guess consistent across levels.
func (s *Solver) prepare(sol, rhs []*field.Patch) error {
	if len(sol) != s.namrlevs || len(rhs) != s.namrlevs {
		return fmt.Errorf("%w: got %d/%d levels, operator has %d",
			ErrBadInput, len(sol), len(rhs), s.namrlevs)
	}
	for a := 0; a < s.namrlevs; a++ {
		if sol[a] == nil || rhs[a] == nil {
			return fmt.Errorf("%w: nil patch at level %d", ErrBadInput, a)
		}
		if sol[a].NGhost() != 1 {
			return fmt.Errorf("%w: solution at level %d needs exactly a one-cell halo, got %d",
				ErrBadInput, a, sol[a].NGhost())
		}
		want := s.boxes[a]
		if !sol[a].Box().Equal(want) || !rhs[a].Box().Equal(want) {
			return fmt.Errorf("%w: level %d", ErrShape, a)
		}
	}
	s.sol = sol

	ncomp := rhs[0].NComp()
	if s.res == nil || s.ncomp != ncomp {
		s.ncomp = ncomp
		s.allocScratch()
	}

	for a := 0; a < s.namrlevs; a++ {
		if err := s.rhs[a].CopyRegionFrom(rhs[a], rhs[a].Box()); err != nil {
			return err
		}
	}

	if err := s.op.PrepareForSolve(); err != nil {
		return err
	}

	// Sync the initial guess and right-hand side down the hierarchy so the
	// first residual is consistent on covered coarse cells.
	for a := s.finest; a >= 1; a-- {
		if err := s.op.AverageDownSolutionRHS(a-1, s.sol[a-1], s.rhs[a-1], s.sol[a], s.rhs[a]); err != nil {
			return err
		}
	}

	if s.opts.NSolve && s.nsSol == nil {
		s.nsSol = s.nsSolver.op.Make(0, 0, s.ncomp, 1)
		s.nsRhs = s.nsSolver.op.Make(0, 0, s.ncomp, 0)
	}

	return nil
}

// allocScratch (re)builds the per-level work patches.
func (s *Solver) allocScratch() {
	s.rhs = make([]*field.Patch, s.namrlevs)
	s.res = make([][]*field.Patch, s.namrlevs)
	s.cor = make([][]*field.Patch, s.namrlevs)
	s.corHold = make([][]*field.Patch, s.namrlevs)
	s.rescor = make([][]*field.Patch, s.namrlevs)
	for a := 0; a < s.namrlevs; a++ {
		nmg := s.op.NumMGLevels(a)
		s.rhs[a] = s.op.Make(a, 0, s.ncomp, 0)
		s.res[a] = make([]*field.Patch, nmg)
		s.cor[a] = make([]*field.Patch, nmg)
		s.corHold[a] = make([]*field.Patch, nmg)
		s.rescor[a] = make([]*field.Patch, nmg)
		for m := 0; m < nmg; m++ {
			s.res[a][m] = s.op.Make(a, m, s.ncomp, 0)
			s.cor[a][m] = s.op.Make(a, m, s.ncomp, 1)
			s.corHold[a][m] = s.op.Make(a, m, s.ncomp, 1)
			s.rescor[a][m] = s.op.Make(a, m, s.ncomp, 0)
		}
	}
	s.nsSol = nil
	s.nsRhs = nil
}

// fillSolutionBC fills the solution's ghost halos with boundary data when
// the operator knows how.
func (s *Solver) fillSolutionBC() error {
	bf, ok := s.op.(linop.BCFiller)
	if !ok {
		return nil
	}
	for a := 0; a < s.namrlevs; a++ {
		var crse *field.Patch
		if a > 0 {
			crse = s.sol[a-1]
		}
		if err := bf.FillSolutionBC(a, s.sol[a], crse); err != nil {
			return err
		}
	}

	return nil
}

// makeSolvable projects the null-space component out of the right-hand
// side of a singular operator: the volume-weighted composite mean is
// subtracted everywhere, so the coarsest system stays consistent. Cells
// covered by a finer level are excluded; coarser levels weigh more by
// their refinement-ratio volume factor.
func (s *Solver) makeSolvable() error {
	dim := 2
	if s.rhs[0].Box().Ny() == 1 {
		dim = 1
	}

	sum, vol := 0.0, 0.0
	w := 1.0
	for a := 0; a < s.namrlevs; a++ {
		if a > 0 {
			r := s.op.AMRRefRatio(a - 1)
			w /= math.Pow(float64(r), float64(dim))
		}
		exclude := s.coveredBox(a)
		ls, ln := maskedSum(s.rhs[a], exclude)
		sum += w * ls
		vol += w * float64(ln)
	}
	sum = s.red.SumAll(sum)
	vol = s.red.SumAll(vol)
	if vol == 0 {
		return nil
	}

	offset := sum / vol
	if s.opts.Verbose >= 1 {
		s.log.Info("mlmg: subtracting rhs offset for singular operator",
			zap.Float64("offset", offset))
	}
	for a := 0; a < s.namrlevs; a++ {
		addConst(s.rhs[a], -offset)
	}

	return nil
}
