// SPDX-License-Identifier: MIT

package field

import (
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/katalvlaran/multigrid/mesh"
)

// reduceBands evaluates fn over row bands of b and combines the per-band
// partials with combine. identity is the combine-neutral starting value.
func reduceBands(b mesh.Box, identity float64, combine func(a, b float64) float64,
	fn func(band mesh.Box) float64) float64 {
	if b.IsEmpty() {
		return identity
	}
	if b.NumCells() < parallelCutoff {
		return combine(identity, fn(b))
	}

	bands := mesh.Tiles(b, bandRows)
	partial := make([]float64, len(bands))
	g := new(errgroup.Group)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, band := range bands {
		i, band := i, band
		g.Go(func() error {
			partial[i] = fn(band)

			return nil
		})
	}
	_ = g.Wait() // fn never fails; bands are exhaustive

	out := identity
	for _, v := range partial {
		out = combine(out, v)
	}

	return out
}

// NormInf returns the max-absolute value over the valid region of all
// components. With local=false the result is reduced across ranks through
// red; convergence decisions must use the global variant so every rank
// agrees on termination.
func (p *Patch) NormInf(local bool, red Reducer) float64 {
	return p.NormInfRegion(p.box, local, red)
}

// NormInfRegion is NormInf restricted to region b of the valid region.
func (p *Patch) NormInfRegion(b mesh.Box, local bool, red Reducer) float64 {
	b = b.Intersect(p.box)
	v := reduceBands(b, 0, math.Max, func(band mesh.Box) float64 {
		m := 0.0
		for c := 0; c < p.ncomp; c++ {
			for y := band.LoY; y < band.HiY; y++ {
				m = math.Max(m, floats.Norm(p.Row(c, y, band.LoX, band.HiX), math.Inf(1)))
			}
		}

		return m
	})
	if !local && red != nil {
		v = red.MaxAll(v)
	}

	return v
}

// NormInfMasked is NormInf with cells inside exclude skipped. The engine
// uses it to ignore coarse cells covered by a finer AMR level.
func (p *Patch) NormInfMasked(exclude mesh.Box, local bool, red Reducer) float64 {
	cover := exclude.Intersect(p.box)
	if cover.IsEmpty() {
		return p.NormInf(local, red)
	}

	v := reduceBands(p.box, 0, math.Max, func(band mesh.Box) float64 {
		m := 0.0
		for c := 0; c < p.ncomp; c++ {
			for y := band.LoY; y < band.HiY; y++ {
				if y < cover.LoY || y >= cover.HiY {
					m = math.Max(m, floats.Norm(p.Row(c, y, band.LoX, band.HiX), math.Inf(1)))

					continue
				}
				// Row crosses the covered box: take the two uncovered segments.
				if band.LoX < cover.LoX {
					m = math.Max(m, floats.Norm(p.Row(c, y, band.LoX, cover.LoX), math.Inf(1)))
				}
				if cover.HiX < band.HiX {
					m = math.Max(m, floats.Norm(p.Row(c, y, cover.HiX, band.HiX), math.Inf(1)))
				}
			}
		}

		return m
	})
	if !local && red != nil {
		v = red.MaxAll(v)
	}

	return v
}

// Dot returns the inner product of p and q over the valid region of all
// components. Shapes must match. With local=false the per-rank partial is
// summed across ranks through red.
func (p *Patch) Dot(q *Patch, local bool, red Reducer) (float64, error) {
	if q == nil {
		return 0, ErrNilPatch
	}
	if !p.SameShape(q) {
		return 0, ErrShapeMismatch
	}

	v := reduceBands(p.box, 0, func(a, b float64) float64 { return a + b }, func(band mesh.Box) float64 {
		s := 0.0
		for c := 0; c < p.ncomp; c++ {
			for y := band.LoY; y < band.HiY; y++ {
				s += floats.Dot(p.Row(c, y, band.LoX, band.HiX), q.Row(c, y, band.LoX, band.HiX))
			}
		}

		return s
	})
	if !local && red != nil {
		v = red.SumAll(v)
	}

	return v, nil
}
