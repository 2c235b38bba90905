// Package bottom: strategy enum, configuration, sentinel errors, and the
// dispatch constructor.
package bottom

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/katalvlaran/multigrid/field"
	"github.com/katalvlaran/multigrid/linop"
)

// Sentinel errors for bottom-solver dispatch and execution.
var (
	// ErrUnavailable indicates the selected strategy is unknown or not
	// compiled into this build; selection failures surface at
	// configuration time, never as a silent fallback.
	ErrUnavailable = errors.New("bottom: selected bottom solver unavailable")
	// ErrBackendFailure indicates the external direct backend failed; the
	// caller must treat this as fatal for the whole solve.
	ErrBackendFailure = errors.New("bottom: external backend failure")
)

// Choice selects the coarsest-level solve strategy.
type Choice int

const (
	// Default resolves to BiCGStab.
	Default Choice = iota
	// Smoother applies a fixed number of relaxation sweeps.
	Smoother
	// CG is conjugate gradients preconditioned by one relaxation sweep
	// (SPD operators).
	CG
	// BiCGStab is stabilized bi-conjugate gradients preconditioned by one
	// relaxation sweep.
	BiCGStab
	// External hands the system to the dense direct gonum adapter.
	External
)

// String returns the configuration-file spelling of the choice.
func (c Choice) String() string {
	switch c {
	case Default:
		return "default"
	case Smoother:
		return "smoother"
	case CG:
		return "cg"
	case BiCGStab:
		return "bicgstab"
	case External:
		return "external"
	default:
		return fmt.Sprintf("choice(%d)", int(c))
	}
}

// Default configuration values, matching the engine's bottom knobs.
const (
	DefaultMaxIters = 200
	DefaultRelTol   = 1e-4
	DefaultSweeps   = 8
)

// Config tunes one bottom solver instance.
//   - MaxIters: iteration cap for the Krylov strategies.
//   - RelTol/AbsTol: stop when ‖r‖∞ ≤ max(RelTol·‖res‖∞, AbsTol); a
//     non-positive AbsTol disables the absolute criterion.
//   - Sweeps: relaxation sweep count of the Smoother strategy.
//   - Reducer: cross-rank reduction seam for norms and dot products.
//   - Logger: progress at debug level; nil means no logging.
type Config struct {
	Choice   Choice
	MaxIters int
	RelTol   float64
	AbsTol   float64
	Sweeps   int
	Reducer  field.Reducer
	Logger   *zap.Logger
}

// DefaultConfig returns the default bottom configuration.
func DefaultConfig() Config {
	return Config{
		Choice:   Default,
		MaxIters: DefaultMaxIters,
		RelTol:   DefaultRelTol,
		AbsTol:   -1,
		Sweeps:   DefaultSweeps,
		Reducer:  field.SerialReducer{},
	}
}

// Result reports one bottom solve.
type Result struct {
	// Iters is the number of iterations (or sweeps) performed.
	Iters int
	// Converged reports whether the tolerance was met; a false value is
	// not an error for the iterative strategies.
	Converged bool
	// FinalNorm is the achieved ‖res − L(cor)‖∞.
	FinalNorm float64
}

// Solver solves the coarsest-level system L(cor) = res of its operator.
type Solver interface {
	Solve(cor, res *field.Patch) (Result, error)
}

// New dispatches cfg.Choice to a concrete strategy bound to the coarsest
// multigrid level of op. Unknown choices fail here with ErrUnavailable.
func New(op linop.Operator, cfg Config) (Solver, error) {
	if cfg.MaxIters <= 0 {
		cfg.MaxIters = DefaultMaxIters
	}
	if cfg.RelTol <= 0 {
		cfg.RelTol = DefaultRelTol
	}
	if cfg.Sweeps <= 0 {
		cfg.Sweeps = DefaultSweeps
	}
	if cfg.Reducer == nil {
		cfg.Reducer = field.SerialReducer{}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	switch cfg.Choice {
	case Smoother:
		return &smootherSolver{op: op, cfg: cfg}, nil
	case CG:
		return &cgSolver{op: op, cfg: cfg}, nil
	case Default, BiCGStab:
		return &bicgstabSolver{op: op, cfg: cfg}, nil
	case External:
		return &externalSolver{op: op, cfg: cfg}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, cfg.Choice)
	}
}

// target returns the stopping threshold for an initial residual norm.
func (c Config) target(rnorm0 float64) float64 {
	t := c.RelTol * rnorm0
	if c.AbsTol > 0 && c.AbsTol > t {
		t = c.AbsTol
	}

	return t
}
