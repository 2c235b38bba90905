package mlmg

import (
	"fmt"

	"github.com/katalvlaran/multigrid/field"
	"github.com/katalvlaran/multigrid/linop"
)

// GradSolution writes the face gradients of the solved state into
// gx/gy (one pair per AMR level). Call it after Solve; the engine still
// holds the solved solution. Returns linop.ErrUnsupported when the
// operator cannot derive gradients.
func (s *Solver) GradSolution(gx, gy []*field.Patch) error {
	f, ok := s.op.(linop.Fluxer)
	if !ok {
		return fmt.Errorf("%w: gradients", linop.ErrUnsupported)
	}
	if err := s.checkSolved(len(gx), len(gy)); err != nil {
		return err
	}
	for a := 0; a < s.namrlevs; a++ {
		var crse *field.Patch
		if a > 0 {
			crse = s.sol[a-1]
		}
		if err := f.GradSolution(a, gx[a], gy[a], s.sol[a], crse); err != nil {
			return err
		}
	}

	return nil
}

// Fluxes writes the face fluxes of the solved state into fx/fy (one pair
// per AMR level). Returns linop.ErrUnsupported when the operator cannot
// derive fluxes.
func (s *Solver) Fluxes(fx, fy []*field.Patch) error {
	f, ok := s.op.(linop.Fluxer)
	if !ok {
		return fmt.Errorf("%w: fluxes", linop.ErrUnsupported)
	}
	if err := s.checkSolved(len(fx), len(fy)); err != nil {
		return err
	}
	for a := 0; a < s.namrlevs; a++ {
		var crse *field.Patch
		if a > 0 {
			crse = s.sol[a-1]
		}
		if err := f.Fluxes(a, fx[a], fy[a], s.sol[a], crse); err != nil {
			return err
		}
	}

	return nil
}

// EBFluxes writes the embedded-boundary wall fluxes of the solved state.
// Returns linop.ErrUnsupported unless the operator is an embedded-boundary
// discretization.
func (s *Solver) EBFluxes(eb []*field.Patch) error {
	f, ok := s.op.(linop.EBFluxer)
	if !ok {
		return fmt.Errorf("%w: embedded-boundary fluxes", linop.ErrUnsupported)
	}
	if err := s.checkSolved(len(eb), len(eb)); err != nil {
		return err
	}
	for a := 0; a < s.namrlevs; a++ {
		if err := f.EBFluxes(a, eb[a], s.sol[a]); err != nil {
			return err
		}
	}

	return nil
}

// CompResidual computes the composite residual of caller-supplied state
// into res = rhs − L(sol), with refluxed interfaces and averaged-down
// covered cells, without touching the engine's own scratch. Each sol patch
// needs a one-cell halo; its ghost cells are refilled with boundary data.
func (s *Solver) CompResidual(res, sol, rhs []*field.Patch) error {
	if len(res) != s.namrlevs || len(sol) != s.namrlevs || len(rhs) != s.namrlevs {
		return fmt.Errorf("%w: composite residual wants %d levels", ErrBadInput, s.namrlevs)
	}
	for a := 0; a < s.namrlevs; a++ {
		if res[a] == nil || sol[a] == nil || rhs[a] == nil {
			return fmt.Errorf("%w: nil patch at level %d", ErrBadInput, a)
		}
	}

	for alev := s.finest; alev >= 0; alev-- {
		var crse *field.Patch
		if alev > 0 {
			crse = sol[alev-1]
		}
		if err := s.op.SolutionResidual(alev, res[alev], sol[alev], rhs[alev], crse); err != nil {
			return err
		}
		if alev < s.finest {
			if err := s.op.Reflux(alev, res[alev], sol[alev], sol[alev+1]); err != nil {
				return err
			}
			if err := s.op.AverageDownSolutionRHS(alev, res[alev], nil, res[alev+1], nil); err != nil {
				return err
			}
		}
	}

	return nil
}

// checkSolved guards the post-solve outputs against calls before any
// Solve bound a solution.
func (s *Solver) checkSolved(n1, n2 int) error {
	if s.sol == nil {
		return fmt.Errorf("%w: no solve has run", ErrBadInput)
	}
	if n1 != s.namrlevs || n2 != s.namrlevs {
		return fmt.Errorf("%w: outputs want %d levels", ErrBadInput, s.namrlevs)
	}

	return nil
}
