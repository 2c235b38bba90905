// Package field implements the per-level field container of the multigrid
// hierarchy: a multi-component cell-centered array over a mesh.Box with a
// ghost-cell halo, plus the small set of whole-field operations the cycle
// engine needs (copy, fill, scaled accumulation, dot products and
// infinity norms).
//
// What:
//
//   - Patch — one contiguous component-major, row-major array covering a
//     box grown by its ghost width.
//   - Whole-field ops: SetVal, CopyFrom, Scale, Saxpy, LinComb, Dot,
//     NormInf and a masked NormInf that excludes a covered sub-box.
//   - ForEachBand — deterministic row-band fan-out over worker goroutines;
//     per-row kernels delegate to gonum/floats.
//   - Reducer — the cross-rank reduction seam. Every "global" norm or dot
//     goes through a Reducer; the serial reducer is the identity, so the
//     local and global variants agree on a single rank.
//
// Why:
//
//   - The solver core treats field data as opaque; only these few
//     operations ever touch raw values. Keeping them in one package keeps
//     the engine free of index arithmetic.
//
// Concurrency: ops fan out per row band and fully synchronize before
// returning, so a caller always observes completed values. Two ops on the
// same Patch must not run concurrently.
//
// Errors:
//
//   - ErrNilPatch: nil patch argument.
//   - ErrShapeMismatch: patches disagree on box, components or ghosts.
//   - ErrRegionBounds: a region argument exceeds the patch (plus halo).
package field
