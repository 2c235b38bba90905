// SPDX-License-Identifier: MIT

package field

import (
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/katalvlaran/multigrid/mesh"
)

// ForEachBand runs fn over a deterministic row-band decomposition of b.
// Small regions run inline on the calling goroutine; larger ones fan out
// across worker goroutines and ForEachBand returns after every band has
// finished. Bands never overlap, so fn may write its band freely.
func ForEachBand(b mesh.Box, fn func(band mesh.Box) error) error {
	if b.IsEmpty() {
		return nil
	}
	if b.NumCells() < parallelCutoff {
		return fn(b)
	}

	g := new(errgroup.Group)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, band := range mesh.Tiles(b, bandRows) {
		band := band
		g.Go(func() error { return fn(band) })
	}

	return g.Wait()
}

// SetVal fills the entire patch, ghost halo included, with v.
func (p *Patch) SetVal(v float64) {
	for i := range p.data {
		p.data[i] = v
	}
}

// SetValRegion fills region b (which may extend into the halo) of every
// component with v.
func (p *Patch) SetValRegion(v float64, b mesh.Box) error {
	if err := p.checkRegion(b); err != nil {
		return err
	}

	return ForEachBand(b, func(band mesh.Box) error {
		for c := 0; c < p.ncomp; c++ {
			for y := band.LoY; y < band.HiY; y++ {
				row := p.Row(c, y, band.LoX, band.HiX)
				for i := range row {
					row[i] = v
				}
			}
		}

		return nil
	})
}

// CopyFrom copies the valid region of src into p. Shapes must match.
func (p *Patch) CopyFrom(src *Patch) error {
	if src == nil {
		return ErrNilPatch
	}
	if !p.SameShape(src) {
		return ErrShapeMismatch
	}

	return p.CopyRegionFrom(src, p.box)
}

// CopyRegionFrom copies region b of every component from src into p. The
// patches may have different boxes; both must cover b (halo included), and
// they must agree on component count.
func (p *Patch) CopyRegionFrom(src *Patch, b mesh.Box) error {
	if src == nil {
		return ErrNilPatch
	}
	if src.ncomp != p.ncomp {
		return ErrShapeMismatch
	}
	if err := p.checkRegion(b); err != nil {
		return err
	}
	if err := src.checkRegion(b); err != nil {
		return err
	}

	return ForEachBand(b, func(band mesh.Box) error {
		for c := 0; c < p.ncomp; c++ {
			for y := band.LoY; y < band.HiY; y++ {
				copy(p.Row(c, y, band.LoX, band.HiX), src.Row(c, y, band.LoX, band.HiX))
			}
		}

		return nil
	})
}

// Scale multiplies the valid region of every component by a.
func (p *Patch) Scale(a float64) {
	_ = ForEachBand(p.box, func(band mesh.Box) error {
		for c := 0; c < p.ncomp; c++ {
			for y := band.LoY; y < band.HiY; y++ {
				floats.Scale(a, p.Row(c, y, band.LoX, band.HiX))
			}
		}

		return nil
	})
}

// Saxpy accumulates p += a*x over the valid region. Shapes must match.
func (p *Patch) Saxpy(a float64, x *Patch) error {
	if x == nil {
		return ErrNilPatch
	}
	if !p.SameShape(x) {
		return ErrShapeMismatch
	}

	return ForEachBand(p.box, func(band mesh.Box) error {
		for c := 0; c < p.ncomp; c++ {
			for y := band.LoY; y < band.HiY; y++ {
				floats.AddScaled(p.Row(c, y, band.LoX, band.HiX), a, x.Row(c, y, band.LoX, band.HiX))
			}
		}

		return nil
	})
}

// Plus accumulates p += x over the valid region. Shapes must match.
func (p *Patch) Plus(x *Patch) error { return p.Saxpy(1, x) }

// LinComb sets p = a*x + b*y over the valid region. Shapes must match.
func (p *Patch) LinComb(a float64, x *Patch, b float64, y *Patch) error {
	if x == nil || y == nil {
		return ErrNilPatch
	}
	if !p.SameShape(x) || !p.SameShape(y) {
		return ErrShapeMismatch
	}

	return ForEachBand(p.box, func(band mesh.Box) error {
		for c := 0; c < p.ncomp; c++ {
			for yy := band.LoY; yy < band.HiY; yy++ {
				dst := p.Row(c, yy, band.LoX, band.HiX)
				xr := x.Row(c, yy, band.LoX, band.HiX)
				yr := y.Row(c, yy, band.LoX, band.HiX)
				for i := range dst {
					dst[i] = a*xr[i] + b*yr[i]
				}
			}
		}

		return nil
	})
}
