package bottom

import (
	"github.com/katalvlaran/multigrid/field"
	"github.com/katalvlaran/multigrid/linop"
)

// smootherSolver relaxes L(cor) = res for a fixed number of sweeps.
type smootherSolver struct {
	op  linop.Operator
	cfg Config
}

func (s *smootherSolver) Solve(cor, res *field.Patch) (Result, error) {
	blev := s.op.NumMGLevels(0) - 1
	for i := 0; i < s.cfg.Sweeps; i++ {
		if err := s.op.Smooth(0, blev, cor, res, i == 0); err != nil {
			return Result{}, err
		}
	}

	r := s.op.Make(0, blev, cor.NComp(), 1)
	if err := s.op.CorrectionResidual(0, blev, r, cor, res, linop.Homogeneous, nil); err != nil {
		return Result{}, err
	}
	norm := r.NormInf(false, s.cfg.Reducer)
	rnorm0 := res.NormInf(false, s.cfg.Reducer)

	return Result{Iters: s.cfg.Sweeps, Converged: norm <= s.cfg.target(rnorm0), FinalNorm: norm}, nil
}
