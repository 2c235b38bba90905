// Package mesh provides the index-space primitives of the multigrid
// hierarchy: half-open 2D boxes, level geometry (box + physical cell
// sizes), and deterministic tilings used for parallel sweeps.
//
// What:
//
//   - Box is a half-open rectangle of cell indices; 1D domains are boxes
//     of height one.
//   - Geometry pairs a Box with the physical cell spacing (HX, HY) of the
//     level it discretizes.
//   - Refine/Coarsen relate boxes and geometries between refinement levels
//     and between geometric multigrid levels (fixed integer ratios).
//   - Tiles splits a box into row bands for worker fan-out.
//
// Why:
//
//   - AMR levels and MG levels are both "the same box at another ratio";
//     one small set of exact integer-arithmetic primitives keeps every level
//     transfer bit-reproducible.
//
// Complexity: all operations are O(1) except Tiles, which is O(#tiles).
//
// Errors:
//
//   - ErrEmptyBox: operation on an empty box.
//   - ErrBadRatio: coarsening ratio does not divide the box.
package mesh
