package bottom

import (
	"go.uber.org/zap"

	"github.com/katalvlaran/multigrid/field"
	"github.com/katalvlaran/multigrid/linop"
)

// bicgstabSolver iterates BiCGStab on the coarsest level, preconditioned
// by one relaxation sweep per half-step. It tolerates mild asymmetry,
// which makes it the default strategy; rho or omega breakdown keeps the
// best correction so far, reported as non-converged.
type bicgstabSolver struct {
	op  linop.Operator
	cfg Config
}

func (s *bicgstabSolver) Solve(cor, res *field.Patch) (Result, error) {
	blev := s.op.NumMGLevels(0) - 1
	nc := cor.NComp()
	make1 := func() *field.Patch { return s.op.Make(0, blev, nc, 1) }
	r, rhat, p, phat, v, shat, t := make1(), make1(), make1(), make1(), make1(), make1(), make1()

	if err := s.op.CorrectionResidual(0, blev, r, cor, res, linop.Homogeneous, nil); err != nil {
		return Result{}, err
	}
	rnorm := r.NormInf(false, s.cfg.Reducer)
	tgt := s.cfg.target(rnorm)
	if rnorm == 0 || rnorm <= tgt {
		return Result{Iters: 0, Converged: true, FinalNorm: rnorm}, nil
	}
	if err := rhat.CopyRegionFrom(r, rhat.Box()); err != nil {
		return Result{}, err
	}

	rho, alpha, omega := 1.0, 1.0, 1.0
	for iter := 1; iter <= s.cfg.MaxIters; iter++ {
		rhoNew, err := rhat.Dot(r, false, s.cfg.Reducer)
		if err != nil {
			return Result{}, err
		}
		if rhoNew == 0 {
			s.cfg.Logger.Debug("bicgstab rho breakdown", zap.Int("iter", iter))

			return Result{Iters: iter, Converged: false, FinalNorm: rnorm}, nil
		}
		if iter == 1 {
			if err = p.CopyRegionFrom(r, p.Box()); err != nil {
				return Result{}, err
			}
		} else {
			beta := (rhoNew / rho) * (alpha / omega)
			// p = r + beta*(p − omega*v)
			if err = p.Saxpy(-omega, v); err != nil {
				return Result{}, err
			}
			p.Scale(beta)
			if err = p.Plus(r); err != nil {
				return Result{}, err
			}
		}
		// phat = M⁻¹p, v = L(phat)
		if err = precondition(s.op, blev, phat, p); err != nil {
			return Result{}, err
		}
		if err = s.op.Apply(0, blev, v, phat, linop.Homogeneous); err != nil {
			return Result{}, err
		}
		rv, err := rhat.Dot(v, false, s.cfg.Reducer)
		if err != nil {
			return Result{}, err
		}
		if rv == 0 {
			s.cfg.Logger.Debug("bicgstab stagnation", zap.Int("iter", iter))

			return Result{Iters: iter, Converged: false, FinalNorm: rnorm}, nil
		}
		alpha = rhoNew / rv

		// s (reusing r) = r − alpha*v
		if err = r.Saxpy(-alpha, v); err != nil {
			return Result{}, err
		}
		snorm := r.NormInf(false, s.cfg.Reducer)
		if snorm <= tgt {
			if err = cor.Saxpy(alpha, phat); err != nil {
				return Result{}, err
			}

			return Result{Iters: iter, Converged: true, FinalNorm: snorm}, nil
		}

		// shat = M⁻¹s, t = L(shat)
		if err = precondition(s.op, blev, shat, r); err != nil {
			return Result{}, err
		}
		if err = s.op.Apply(0, blev, t, shat, linop.Homogeneous); err != nil {
			return Result{}, err
		}
		ts, err := t.Dot(r, false, s.cfg.Reducer)
		if err != nil {
			return Result{}, err
		}
		tt, err := t.Dot(t, false, s.cfg.Reducer)
		if err != nil {
			return Result{}, err
		}
		if tt == 0 {
			s.cfg.Logger.Debug("bicgstab omega breakdown", zap.Int("iter", iter))

			return Result{Iters: iter, Converged: false, FinalNorm: snorm}, nil
		}
		omega = ts / tt

		if err = cor.Saxpy(alpha, phat); err != nil {
			return Result{}, err
		}
		if err = cor.Saxpy(omega, shat); err != nil {
			return Result{}, err
		}
		// r = s − omega*t
		if err = r.Saxpy(-omega, t); err != nil {
			return Result{}, err
		}
		rho = rhoNew

		rnorm = r.NormInf(false, s.cfg.Reducer)
		s.cfg.Logger.Debug("bicgstab iter", zap.Int("iter", iter), zap.Float64("resnorm", rnorm))
		if rnorm <= tgt {
			return Result{Iters: iter, Converged: true, FinalNorm: rnorm}, nil
		}
		if omega == 0 {
			return Result{Iters: iter, Converged: false, FinalNorm: rnorm}, nil
		}
	}

	return Result{Iters: s.cfg.MaxIters, Converged: false, FinalNorm: rnorm}, nil
}
