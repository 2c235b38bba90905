// SPDX-License-Identifier: MIT
package mlmg

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/katalvlaran/multigrid/bottom"
	"github.com/katalvlaran/multigrid/field"
	"github.com/katalvlaran/multigrid/linop"
)

var (
	// ErrBadInput - solution/right-hand-side vectors have the wrong length,
	// contain nil patches, or the solution patches carry no ghost halo.
	ErrBadInput = errors.New("mlmg: bad solve input")

	// ErrShape - a supplied patch does not cover its level's valid box.
	ErrShape = errors.New("mlmg: patch shape mismatch")

	// ErrNSolve - NSolve was requested but the operator cannot build a
	// nested auxiliary operator.
	ErrNSolve = errors.New("mlmg: operator does not support nsolve")
)

// Options configures a Solver. The zero value is not usable; start from
// DefaultOptions and override.
type Options struct {
	// Verbose selects engine log volume: 0 silent, 1 per-solve summary,
	// 2 per-iteration norms, 3+ per-cycle tracing.
	Verbose int

	// BottomVerbose is forwarded to the bottom solver's logger gating.
	BottomVerbose int

	// MaxIters caps outer iterations when FixedIters is zero.
	MaxIters int

	// FixedIters, when positive, runs exactly that many iterations and
	// skips every convergence test.
	FixedIters int

	// MaxFMGIters - the first MaxFMGIters iterations use an F-cycle at the
	// coarsest AMR level instead of a V-cycle.
	MaxFMGIters int

	// PreSmooth (nu1) and PostSmooth (nu2) are the smoothing sweep counts
	// on the down- and up-legs of each V-cycle.
	PreSmooth  int
	PostSmooth int

	// FinalSmooth (nuf) is the sweep count used when the bottom solver is
	// the plain smoother. BottomSmooth (nub) adds smoothing sweeps after a
	// Krylov bottom solve.
	FinalSmooth  int
	BottomSmooth int

	// BottomSolver picks the coarsest-level strategy; bottom.Default
	// resolves to BiCGStab.
	BottomSolver   bottom.Choice
	BottomMaxIters int
	BottomRelTol   float64
	// BottomAbsTol ≤ 0 disables the absolute bottom tolerance.
	BottomAbsTol float64

	// CFStrategy selects the coarse-fine boundary treatment applied to
	// interpolated corrections.
	CFStrategy linop.CFStrategy

	// AlwaysUseBNorm forces the convergence scale to the right-hand-side
	// norm; otherwise the larger of it and the initial residual is used.
	AlwaysUseBNorm bool

	// FinalFillBC - after convergence, fill the solution's ghost cells
	// with physical boundary values for downstream stencils.
	FinalFillBC bool

	// NSolve routes the bottom solve through a nested Solver on an
	// auxiliary operator built by the main operator. NSolveGridSize is the
	// requested auxiliary grid extent.
	NSolve         bool
	NSolveGridSize int

	// CheckpointFile, when non-empty, dumps solver state as JSON at the
	// start of each Solve.
	CheckpointFile string

	// Logger receives engine diagnostics; nil means zap.NewNop().
	Logger *zap.Logger

	// Reducer turns local norms into global ones; nil means
	// field.SerialReducer.
	Reducer field.Reducer
}

// DefaultOptions returns the production defaults.
func DefaultOptions() Options {
	return Options{
		Verbose:        1,
		BottomVerbose:  0,
		MaxIters:       200,
		FixedIters:     0,
		MaxFMGIters:    0,
		PreSmooth:      2,
		PostSmooth:     2,
		FinalSmooth:    8,
		BottomSmooth:   0,
		BottomSolver:   bottom.Default,
		BottomMaxIters: 200,
		BottomRelTol:   1e-4,
		BottomAbsTol:   -1,
		CFStrategy:     linop.CFNone,
		AlwaysUseBNorm: false,
		FinalFillBC:    false,
		NSolve:         false,
		NSolveGridSize: 16,
	}
}

// Stats carries the diagnostics of the most recent Solve.
type Stats struct {
	// RHSNorm0 - composite inf-norm of the right-hand side at solve start.
	RHSNorm0 float64
	// InitResNorm - composite inf-norm of the initial residual.
	InitResNorm float64
	// FinalResNorm - composite inf-norm after the last iteration.
	FinalResNorm float64

	// NumIters - outer iterations actually performed.
	NumIters int
	// Converged reports whether the residual target was met. With
	// FixedIters it reflects the state after the last forced iteration.
	Converged bool

	// ResHistory - finest-level residual inf-norm after each iteration.
	ResHistory []float64
	// BottomIters - iteration count of every bottom solve, in order.
	BottomIters []int

	SolveTime  time.Duration
	IterTime   time.Duration
	BottomTime time.Duration
}
