// Package linop declares the abstract linear-operator contract consumed by
// the multigrid cycle engine.
//
// What:
//
//   - Operator — the operation set the engine dispatches through: operator
//     application, relaxation, inter-level restriction/interpolation,
//     residual evaluation in solution and correction form, coarse-fine
//     reflux, and hierarchy bookkeeping.
//   - BCMode — homogeneous vs. inhomogeneous boundary treatment of one
//     operator application.
//   - CFStrategy — how the engine treats coarse-fine interfaces when
//     transferring corrections (None, or GhostNodes with an explicit
//     consistency fix hook).
//   - Capability interfaces — optional extensions a discretization may
//     provide: NSolveCapable (auxiliary coarse-solve operator), Fluxer
//     (gradients and fluxes of a solved state), EBFluxer (embedded-boundary
//     wall fluxes), CFFixer (the GhostNodes hook).
//
// Why:
//
//   - The engine never touches a stencil. Everything discretization-specific
//     lives behind this interface, so cell-centered, nodal, and
//     embedded-boundary operators are construction-time variants, not
//     call-time branches.
//
// Contract notes:
//
//   - Levels: amrlev counts refinement levels coarsest-first (0 is the AMR
//     coarsest); mglev counts geometric coarsenings finest-first within one
//     AMR level (0 is that level's own resolution).
//   - Implementations must not retain references into engine-owned patches
//     beyond a single call.
//   - All methods are invoked from a single control goroutine; internal
//     data parallelism is the implementation's business but must be fully
//     synchronized before returning.
package linop
