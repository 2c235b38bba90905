// Package mlmg implements the multilevel multigrid cycle engine: geometric
// V- and F-cycles inside each AMR level composed with a composite-grid
// correction scheme across AMR levels, driving an abstract linear operator
// to solve L(x) = b to a requested tolerance.
//
// What:
//
//   - Solver.Solve computes the initial composite residual, then repeats
//     one cycle per iteration — recursing finest AMR level → coarsest →
//     finest, with a geometric multigrid V-cycle (or full-multigrid
//     F-cycle) inside each level — until the globally reduced composite
//     residual meets max(tolRel·norm, tolAbs) or the iteration cap.
//   - The coarsest multigrid level is handed to a bottom strategy
//     (smoother sweeps, CG/BiCGStab, dense direct backend) or, with NSolve
//     enabled, to a nested Solver instance gridded onto an auxiliary mesh.
//   - Per-solve diagnostics: initial norms, per-iteration finest-level
//     residual history, bottom iteration counts, and timers.
//   - Post-solve derived outputs: gradients, fluxes, and a read-only
//     composite residual of caller-supplied state.
//
// Why:
//
//   - Elliptic solves on adaptive hierarchies need the composite equation
//     solved, not each level in isolation: coarse residuals must see fine
//     corrections (reflux and averaged-down residuals), and fine
//     correction equations must see the coarse correction through their
//     ghost region. This package owns exactly that bookkeeping.
//
// Concurrency: one Solve is a single control flow; all data parallelism
// lives in the field/operator collaborators. A Solver instance is not
// re-entrant — never run two Solves on the same instance concurrently.
// Every global norm is a collective through the configured Reducer, so on
// multi-rank builds all ranks must execute identical cycle control flow.
//
// Non-convergence within MaxIters is not an error: Solve returns the best
// solution with the achieved residual norm, and the caller judges it.
//
// Errors:
//
//   - ErrBadInput: wrong vector lengths, nil patches, or missing halos.
//   - ErrShape: a supplied patch does not match its level's geometry.
//   - bottom.ErrBackendFailure: fatal external bottom-solve failure.
//   - linop.ErrUnsupported: a derived output the operator cannot produce.
package mlmg
