package bottom

import (
	"go.uber.org/zap"

	"github.com/katalvlaran/multigrid/field"
	"github.com/katalvlaran/multigrid/linop"
)

// precondition computes z ≈ M⁻¹r by one relaxation sweep of the operator
// on a zeroed correction. The same sweep the cycles use for smoothing
// serves as the Krylov preconditioner, so the bottom solve sees the
// system through the same lens as the rest of the hierarchy.
func precondition(op linop.Operator, blev int, z, r *field.Patch) error {
	z.SetVal(0)

	return op.Smooth(0, blev, z, r, true)
}

// cgSolver iterates conjugate gradients on the coarsest level,
// preconditioned by one relaxation sweep. The operator must be symmetric
// positive definite there; on breakdown (non-positive curvature, or a
// preconditioned inner product the sweep turned non-positive) the best
// correction so far is kept and reported as non-converged.
type cgSolver struct {
	op  linop.Operator
	cfg Config
}

func (s *cgSolver) Solve(cor, res *field.Patch) (Result, error) {
	blev := s.op.NumMGLevels(0) - 1
	nc := cor.NComp()
	r := s.op.Make(0, blev, nc, 1)
	z := s.op.Make(0, blev, nc, 1)
	p := s.op.Make(0, blev, nc, 1)
	q := s.op.Make(0, blev, nc, 1)

	// r = res − L(cor)
	if err := s.op.CorrectionResidual(0, blev, r, cor, res, linop.Homogeneous, nil); err != nil {
		return Result{}, err
	}
	rnorm := r.NormInf(false, s.cfg.Reducer)
	tgt := s.cfg.target(rnorm)
	if rnorm == 0 || rnorm <= tgt {
		return Result{Iters: 0, Converged: true, FinalNorm: rnorm}, nil
	}

	rhoPrev := 0.0
	for iter := 1; iter <= s.cfg.MaxIters; iter++ {
		if err := precondition(s.op, blev, z, r); err != nil {
			return Result{}, err
		}
		rho, err := r.Dot(z, false, s.cfg.Reducer)
		if err != nil {
			return Result{}, err
		}
		if rho <= 0 {
			s.cfg.Logger.Debug("cg breakdown", zap.Int("iter", iter), zap.Float64("rz", rho))

			return Result{Iters: iter, Converged: false, FinalNorm: rnorm}, nil
		}
		if iter == 1 {
			if err = p.CopyRegionFrom(z, p.Box()); err != nil {
				return Result{}, err
			}
		} else {
			beta := rho / rhoPrev
			p.Scale(beta)
			if err = p.Plus(z); err != nil {
				return Result{}, err
			}
		}
		if err = s.op.Apply(0, blev, q, p, linop.Homogeneous); err != nil {
			return Result{}, err
		}
		pq, err := p.Dot(q, false, s.cfg.Reducer)
		if err != nil {
			return Result{}, err
		}
		if pq <= 0 {
			s.cfg.Logger.Debug("cg breakdown", zap.Int("iter", iter), zap.Float64("pAp", pq))

			return Result{Iters: iter, Converged: false, FinalNorm: rnorm}, nil
		}
		alpha := rho / pq
		if err = cor.Saxpy(alpha, p); err != nil {
			return Result{}, err
		}
		if err = r.Saxpy(-alpha, q); err != nil {
			return Result{}, err
		}
		rhoPrev = rho

		rnorm = r.NormInf(false, s.cfg.Reducer)
		s.cfg.Logger.Debug("cg iter", zap.Int("iter", iter), zap.Float64("resnorm", rnorm))
		if rnorm <= tgt {
			return Result{Iters: iter, Converged: true, FinalNorm: rnorm}, nil
		}
	}

	return Result{Iters: s.cfg.MaxIters, Converged: false, FinalNorm: rnorm}, nil
}
