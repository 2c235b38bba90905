// SPDX-License-Identifier: MIT

// Package field: sentinel errors, the cross-rank Reducer seam, and the
// tuning constants of the parallel row-band fan-out.
package field

import "errors"

// Sentinel errors for field operations.
var (
	// ErrNilPatch indicates a nil *Patch argument.
	ErrNilPatch = errors.New("field: nil patch")
	// ErrShapeMismatch indicates two patches disagree on box, component
	// count, or ghost width where agreement is required.
	ErrShapeMismatch = errors.New("field: patch shape mismatch")
	// ErrRegionBounds indicates a region argument lies outside the patch
	// and its ghost halo.
	ErrRegionBounds = errors.New("field: region outside patch bounds")
)

// Reducer performs the cross-rank collective reductions behind "global"
// norms and dot products. All ranks must call the same reductions in the
// same order. SerialReducer is the single-rank identity.
type Reducer interface {
	// MaxAll returns the maximum of v over all ranks.
	MaxAll(v float64) float64
	// SumAll returns the sum of v over all ranks.
	SumAll(v float64) float64
}

// SerialReducer is the single-rank Reducer: every reduction returns its
// input unchanged.
type SerialReducer struct{}

// MaxAll returns v.
func (SerialReducer) MaxAll(v float64) float64 { return v }

// SumAll returns v.
func (SerialReducer) SumAll(v float64) float64 { return v }

const (
	// parallelCutoff is the valid-region cell count below which whole-field
	// ops run on the calling goroutine instead of fanning out.
	parallelCutoff = 4096

	// bandRows is the row count of one parallel work band.
	bandRows = 16
)
