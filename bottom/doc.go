// Package bottom implements the coarsest-level solve strategies of the
// multigrid cycle engine and their configuration-time dispatch.
//
// What:
//
//   - Smoother: a fixed number of relaxation sweeps; cheapest, weakest.
//   - CG / BiCGStab: Krylov iterations using the abstract operator's
//     Apply as the matrix-vector product and one Smooth sweep on a zeroed
//     patch as the preconditioner; best-effort on stall or breakdown,
//     with the shortfall visible only in the returned iteration
//     diagnostics.
//   - External: a dense direct adapter that assembles the bottom-level
//     matrix by probing Apply with unit vectors and factorizes it with
//     gonum (Cholesky, LU fallback). Backend failure is fatal: the bottom
//     solve is load-bearing for global convergence, so a degraded result
//     cannot be silently patched by the outer cycle.
//
// Why:
//
//   - The coarsest multigrid level is too small for smoothing alone to pay
//     off yet decides the convergence factor of every V-cycle; strategy is
//     picked once at configuration time and an unavailable choice is a
//     configuration error (ErrUnavailable), never a silent fallback.
//
// Contract: Solve(cor, res) produces cor with
// ‖res − L(cor)‖∞ ≤ max(RelTol·‖res‖∞, AbsTol) within MaxIters, or the
// best effort so far. Krylov strategies assume cor enters zeroed; the
// engine guarantees that.
//
// Errors:
//
//   - ErrUnavailable: the selected strategy is not compiled in / unknown.
//   - ErrBackendFailure: the external direct solve failed (fatal).
package bottom
