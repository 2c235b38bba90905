// Package multigrid is an in-memory toolkit for solving elliptic
// problems on block-structured adaptive hierarchies — from mesh and
// field primitives to composite multilevel multigrid cycles.
//
// 🚀 What is multigrid?
//
//	A library that brings together everything a geometric multigrid
//	solve needs:
//		• Mesh primitives: index-space boxes, per-level geometries, refine & coarsen
//		• Fields: ghosted data patches with parallel kernels, norms & dot products
//		• Operator contract: one interface a discretization implements to plug in
//		• Poisson: a cell-centered 5-point reference discretization with AMR coupling
//		• Bottom solvers: smoother sweeps, CG, BiCGStab, dense direct backend
//		• Cycle engine: V-cycles, full-multigrid F-cycles, nested bottom solves
//
// ✨ Why choose multigrid?
//
//   - Composite correctness – coarse levels see fine corrections through
//     refluxed interfaces and averaged-down residuals
//   - Textbook efficiency – residual drops by orders of magnitude per cycle
//   - Pure Go – no cgo, no MPI requirement; global reductions go through a
//     pluggable seam
//   - Extensible – implement linop.Operator and the engine drives your
//     discretization unchanged
//
// The packages, coarsest to finest concern:
//
//	mesh/    — boxes, geometries, refinement arithmetic
//	field/   — ghosted patches, BLAS-style kernels, norms
//	linop/   — the operator contract and capability interfaces
//	poisson/ — the reference cell-centered discretization
//	bottom/  — coarsest-level solve strategies
//	mlmg/    — the multilevel cycle engine
//
// Quick start:
//
//	g := mesh.Geometry{Domain: mesh.NewBox(0, 0, 64, 64), HX: 1.0 / 64, HY: 1.0 / 64}
//	op, _ := poisson.NewOperator([]mesh.Geometry{g}, nil, poisson.DefaultOptions())
//	s, _ := mlmg.New(op, mlmg.DefaultOptions())
//
//	sol := op.Make(0, 0, 1, 1) // solution with a one-cell halo
//	rhs := op.Make(0, 0, 1, 0)
//	rhs.SetVal(1)
//
//	norm, err := s.Solve([]*field.Patch{sol}, []*field.Patch{rhs}, 1e-10, 0)
//
// See examples/ for runnable scenarios and cmd/mgsolve for the CLI.
package multigrid
