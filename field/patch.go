// SPDX-License-Identifier: MIT

package field

import (
	"fmt"

	"github.com/katalvlaran/multigrid/mesh"
)

// Patch is one multi-component cell-centered array over a box, stored with
// a ghost halo of uniform width. Storage is component-major, then
// row-major: component c, row y, column x.
//
// The valid region is Box(); the allocated region is Box().Grow(NGhost()).
// All whole-field ops act on the valid region unless stated otherwise.
type Patch struct {
	box    mesh.Box
	ncomp  int
	nghost int

	stride     int // allocated row length
	compStride int // cells per component, halo included
	data       []float64
}

// NewPatch allocates a zeroed patch over box with ncomp components and a
// ghost halo of width nghost.
func NewPatch(box mesh.Box, ncomp, nghost int) (*Patch, error) {
	if box.IsEmpty() {
		return nil, fmt.Errorf("field: new patch: %w", mesh.ErrEmptyBox)
	}
	if ncomp < 1 || nghost < 0 {
		return nil, fmt.Errorf("%w: ncomp=%d nghost=%d", ErrShapeMismatch, ncomp, nghost)
	}
	alloc := box.Grow(nghost)
	p := &Patch{
		box:        box,
		ncomp:      ncomp,
		nghost:     nghost,
		stride:     alloc.Nx(),
		compStride: alloc.NumCells(),
	}
	p.data = make([]float64, ncomp*p.compStride)

	return p, nil
}

// MustPatch is NewPatch for statically valid shapes; it panics on error.
// Intended for tests and examples.
func MustPatch(box mesh.Box, ncomp, nghost int) *Patch {
	p, err := NewPatch(box, ncomp, nghost)
	if err != nil {
		panic(err)
	}

	return p
}

// Box returns the valid region.
func (p *Patch) Box() mesh.Box { return p.box }

// NComp returns the number of components.
func (p *Patch) NComp() int { return p.ncomp }

// NGhost returns the ghost halo width.
func (p *Patch) NGhost() int { return p.nghost }

// SameShape reports whether q has the same box, components, and halo.
func (p *Patch) SameShape(q *Patch) bool {
	return q != nil && p.box == q.box && p.ncomp == q.ncomp && p.nghost == q.nghost
}

// index returns the storage offset of (c, x, y). The cell may lie in the
// halo; callers must stay within Box().Grow(NGhost()).
func (p *Patch) index(c, x, y int) int {
	ax := x - p.box.LoX + p.nghost
	ay := y - p.box.LoY + p.nghost

	return c*p.compStride + ay*p.stride + ax
}

// At returns the value of component c at cell (x, y).
func (p *Patch) At(c, x, y int) float64 { return p.data[p.index(c, x, y)] }

// Set stores v into component c at cell (x, y).
func (p *Patch) Set(c, x, y int, v float64) { p.data[p.index(c, x, y)] = v }

// Add accumulates v into component c at cell (x, y).
func (p *Patch) Add(c, x, y int, v float64) { p.data[p.index(c, x, y)] += v }

// Row returns the storage slice of component c, row y, columns [x0, x1).
// The slice aliases patch storage; it is valid until the patch is released.
func (p *Patch) Row(c, y, x0, x1 int) []float64 {
	lo := p.index(c, x0, y)

	return p.data[lo : lo+(x1-x0)]
}

// checkRegion verifies b lies in the allocated (halo-grown) region.
func (p *Patch) checkRegion(b mesh.Box) error {
	if !p.box.Grow(p.nghost).ContainsBox(b) {
		return fmt.Errorf("%w: %+v not in %+v (+%d)", ErrRegionBounds, b, p.box, p.nghost)
	}

	return nil
}
