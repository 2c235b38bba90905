package bottom

import (
	"fmt"
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/multigrid/field"
	"github.com/katalvlaran/multigrid/linop"
)

// externalSolver hands the coarsest-level system to a dense direct
// backend: the matrix is assembled by probing Apply with unit vectors,
// factorized with a Cholesky decomposition (LU when the system is not
// numerically SPD), and solved exactly. Assembly is O(n) operator
// applications, acceptable because the bottom level is small by
// construction.
type externalSolver struct {
	op  linop.Operator
	cfg Config
}

func (s *externalSolver) Solve(cor, res *field.Patch) (Result, error) {
	blev := s.op.NumMGLevels(0) - 1
	nc := cor.NComp()
	box := cor.Box()
	n := box.NumCells() * nc

	// r = res − L(cor): solve for the remaining correction delta.
	r := s.op.Make(0, blev, nc, 1)
	if err := s.op.CorrectionResidual(0, blev, r, cor, res, linop.Homogeneous, nil); err != nil {
		return Result{}, err
	}

	a := mat.NewDense(n, n, nil)
	b := mat.NewVecDense(n, nil)
	probe := s.op.Make(0, blev, nc, 1)
	col := s.op.Make(0, blev, nc, 1)

	flat := func(c, x, y int) int {
		return c*box.NumCells() + (y-box.LoY)*box.Nx() + (x - box.LoX)
	}
	j := 0
	for c := 0; c < nc; c++ {
		for y := box.LoY; y < box.HiY; y++ {
			for x := box.LoX; x < box.HiX; x++ {
				probe.SetVal(0)
				probe.Set(c, x, y, 1)
				if err := s.op.Apply(0, blev, col, probe, linop.Homogeneous); err != nil {
					return Result{}, err
				}
				for cc := 0; cc < nc; cc++ {
					for yy := box.LoY; yy < box.HiY; yy++ {
						for xx := box.LoX; xx < box.HiX; xx++ {
							a.Set(flat(cc, xx, yy), j, col.At(cc, xx, yy))
						}
					}
				}
				b.SetVec(j, r.At(c, x, y))
				j++
			}
		}
	}

	x := mat.NewVecDense(n, nil)
	if err := denseSolve(x, a, b, n); err != nil {
		return Result{}, err
	}

	j = 0
	for c := 0; c < nc; c++ {
		for y := box.LoY; y < box.HiY; y++ {
			for xx := box.LoX; xx < box.HiX; xx++ {
				cor.Add(c, xx, y, x.AtVec(j))
				j++
			}
		}
	}
	s.cfg.Logger.Debug("external bottom solve", zap.Int("unknowns", n))

	return Result{Iters: 1, Converged: true, FinalNorm: 0}, nil
}

// denseSolve factorizes a and solves a·x = b, preferring Cholesky on the
// symmetrized matrix and falling back to LU. Both failing means the bottom
// system is singular to working precision, a fatal condition.
func denseSolve(x *mat.VecDense, a *mat.Dense, b *mat.VecDense, n int) error {
	scale := 0.0
	skew := 0.0
	sym := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			aij, aji := a.At(i, j), a.At(j, i)
			scale = math.Max(scale, math.Max(math.Abs(aij), math.Abs(aji)))
			skew = math.Max(skew, math.Abs(aij-aji))
			sym.SetSym(i, j, 0.5*(aij+aji))
		}
	}

	var chol mat.Cholesky
	if skew <= 1e-12*scale && chol.Factorize(sym) {
		if err := chol.SolveVecTo(x, b); err == nil {
			return nil
		}
	}

	var lu mat.LU
	lu.Factorize(a)
	if err := lu.SolveVecTo(x, false, b); err != nil {
		return fmt.Errorf("%w: %v", ErrBackendFailure, err)
	}

	return nil
}
