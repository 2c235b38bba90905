// Package poisson implements the cell-centered Poisson discretization
// L(φ) = −∇²φ over an AMR/MG hierarchy, satisfying linop.Operator.
//
// What:
//
//   - Second-order 5-point stencil (3-point in 1D) on uniform cells, with
//     Dirichlet physical boundaries imposed through a one-cell ghost halo
//     (ghost = 2·g − interior).
//   - Coarse-fine ghost cells interpolated between the coarse neighbor
//     cell center and the first fine interior cell; the homogeneous form
//     of the same stencil serves the correction equations, so solution
//     and correction operators stay consistent.
//   - Red-black Gauss–Seidel relaxation.
//   - Level transfers: 2×2 cell averaging down, piecewise-constant
//     interpolate-and-add up the V-cycle, slope-limited bilinear
//     interpolation for full-multigrid seeding and AMR corrections.
//   - Reflux: coarse fluxes across the coarse-fine interface replaced by
//     averaged fine fluxes, making the composite residual conservative.
//   - Capabilities: NSolveCapable (auxiliary coarse-solve operator) and
//     Fluxer (gradients/fluxes of a solved state). No embedded-boundary
//     support.
//
// Why:
//
//   - The cycle engine is discretization-agnostic; this package is the
//     reference discretization that makes the engine runnable and
//     testable end to end. It is symmetric positive definite under
//     Dirichlet boundaries, the friendliest case for CG bottom solves.
//
// Hierarchy:
//
//   - AMR level 0 carries the full geometric MG chain (factor-2 coarsening
//     while the domain divides evenly and stays at least MinWidth wide).
//   - Finer AMR levels coarsen only down to the next coarser AMR level's
//     resolution, as their systems are solved in correction form against
//     that level.
//
// Errors:
//
//   - ErrBadHierarchy: malformed level geometries or ratios.
//   - ErrNotNested: a fine domain does not nest in its coarse domain.
//   - ErrLevelShape: a patch does not match its level's shape.
//   - ErrNeedGhost: an input patch lacks the one-cell halo the stencil
//     reads.
package poisson
