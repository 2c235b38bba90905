package poisson

import (
	"github.com/katalvlaran/multigrid/field"
	"github.com/katalvlaran/multigrid/linop"
	"github.com/katalvlaran/multigrid/mesh"
)

// applyStencil writes out = L(in) over the valid region, assuming in's
// halo is current. alpha/beta let one pass compute residuals directly:
// out = alpha·base + beta·L(in) (base may be nil when alpha is 0).
func (op *Operator) applyStencil(amrlev, mglev int, out, base, in *field.Patch, alpha, beta float64) error {
	g := op.levels[amrlev][mglev].geom
	ihx2 := 1.0 / (g.HX * g.HX)
	ihy2 := 0.0
	oneD := op.is1D()
	if !oneD {
		ihy2 = 1.0 / (g.HY * g.HY)
	}

	return field.ForEachBand(g.Domain, func(band mesh.Box) error {
		for c := 0; c < in.NComp(); c++ {
			for y := band.LoY; y < band.HiY; y++ {
				for x := band.LoX; x < band.HiX; x++ {
					v := in.At(c, x, y)
					lap := (2*v - in.At(c, x-1, y) - in.At(c, x+1, y)) * ihx2
					if !oneD {
						lap += (2*v - in.At(c, x, y-1) - in.At(c, x, y+1)) * ihy2
					}
					r := beta * lap
					if base != nil {
						r += alpha * base.At(c, x, y)
					}
					out.Set(c, x, y, r)
				}
			}
		}

		return nil
	})
}

// Apply computes out = L(in) at (amrlev, mglev) under bc, filling in's
// halo first. Coarse-fine ghost data is homogeneous.
func (op *Operator) Apply(amrlev, mglev int, out, in *field.Patch, bc linop.BCMode) error {
	if err := op.checkLevel(amrlev, mglev); err != nil {
		return err
	}
	if err := op.checkPatch(amrlev, mglev, in, true); err != nil {
		return err
	}
	if err := op.checkPatch(amrlev, mglev, out, false); err != nil {
		return err
	}

	op.fillGhosts(amrlev, mglev, in, bc, nil)

	return op.applyStencil(amrlev, mglev, out, nil, in, 0, 1)
}

// Smooth performs one red-black Gauss–Seidel sweep on L(sol) = rhs at
// (amrlev, mglev) with homogeneous boundaries. The boundary relations are
// folded into each cell's own stencil, so the sweep reads no ghost data
// and a relaxed cell satisfies its equation exactly; skipFill is accepted
// for callers tracking halo state but changes nothing here.
func (op *Operator) Smooth(amrlev, mglev int, sol, rhs *field.Patch, skipFill bool) error {
	if err := op.checkLevel(amrlev, mglev); err != nil {
		return err
	}
	if err := op.checkPatch(amrlev, mglev, sol, true); err != nil {
		return err
	}
	if err := op.checkPatch(amrlev, mglev, rhs, false); err != nil {
		return err
	}
	_ = skipFill

	if err := op.gsColor(amrlev, mglev, sol, rhs, 0); err != nil {
		return err
	}

	return op.gsColor(amrlev, mglev, sol, rhs, 1)
}

// gsColor relaxes the cells of one red-black color. On boundary cells the
// homogeneous ghost relation is eliminated into the diagonal — a physical
// face substitutes the reflection slope −1, a coarse-fine face the
// interpolation slope (r−1)/(r+1) — matching what fillGhosts would hand
// the stencil, so the relaxed cell's residual is exactly zero. Cells of
// one color only read the other color, so bands may run in parallel.
func (op *Operator) gsColor(amrlev, mglev int, sol, rhs *field.Patch, color int) error {
	lv := op.levels[amrlev][mglev]
	b := lv.geom.Domain
	ihx2 := 1.0 / (lv.geom.HX * lv.geom.HX)
	ihy2 := 0.0
	oneD := op.is1D()
	if !oneD {
		ihy2 = 1.0 / (lv.geom.HY * lv.geom.HY)
	}
	rcf := op.cfRatio(amrlev, mglev)
	gamma := float64(rcf-1) / float64(rcf+1)
	side := func(domEdge, physEdge int) float64 {
		if domEdge == physEdge {
			return -1
		}

		return gamma
	}
	west, east := side(b.LoX, lv.phys.LoX), side(b.HiX, lv.phys.HiX)
	south, north := side(b.LoY, lv.phys.LoY), side(b.HiY, lv.phys.HiY)

	return field.ForEachBand(b, func(band mesh.Box) error {
		for c := 0; c < sol.NComp(); c++ {
			for y := band.LoY; y < band.HiY; y++ {
				x0 := band.LoX
				if ((x0+y)%2+2)%2 != color {
					x0++
				}
				for x := x0; x < band.HiX; x += 2 {
					d := 2 * (ihx2 + ihy2)
					off := 0.0
					if x == b.LoX {
						d -= west * ihx2
					} else {
						off += sol.At(c, x-1, y) * ihx2
					}
					if x == b.HiX-1 {
						d -= east * ihx2
					} else {
						off += sol.At(c, x+1, y) * ihx2
					}
					if !oneD {
						if y == b.LoY {
							d -= south * ihy2
						} else {
							off += sol.At(c, x, y-1) * ihy2
						}
						if y == b.HiY-1 {
							d -= north * ihy2
						} else {
							off += sol.At(c, x, y+1) * ihy2
						}
					}
					sol.Set(c, x, y, (rhs.At(c, x, y)+off)/d)
				}
			}
		}

		return nil
	})
}

// SolutionResidual computes res = rhs − L(sol) at (amrlev, 0) with
// inhomogeneous physical boundaries; crseSol supplies coarse-fine ghost
// data for amrlev > 0.
func (op *Operator) SolutionResidual(amrlev int, res, sol, rhs, crseSol *field.Patch) error {
	if err := op.checkLevel(amrlev, 0); err != nil {
		return err
	}
	if err := op.checkPatch(amrlev, 0, sol, true); err != nil {
		return err
	}
	if err := op.checkPatch(amrlev, 0, res, false); err != nil {
		return err
	}
	if err := op.checkPatch(amrlev, 0, rhs, false); err != nil {
		return err
	}

	op.fillGhosts(amrlev, 0, sol, linop.Inhomogeneous, crseSol)

	return op.applyStencil(amrlev, 0, res, rhs, sol, 1, -1)
}

// CorrectionResidual computes rescor = res − L(cor) at (amrlev, mglev)
// with homogeneous physical boundaries. Under bc == Inhomogeneous, crseCor
// supplies coarse-fine ghost data for the correction.
func (op *Operator) CorrectionResidual(amrlev, mglev int, rescor, cor, res *field.Patch, bc linop.BCMode, crseCor *field.Patch) error {
	if err := op.checkLevel(amrlev, mglev); err != nil {
		return err
	}
	if err := op.checkPatch(amrlev, mglev, cor, true); err != nil {
		return err
	}
	if err := op.checkPatch(amrlev, mglev, rescor, false); err != nil {
		return err
	}
	if err := op.checkPatch(amrlev, mglev, res, false); err != nil {
		return err
	}

	if bc == linop.Inhomogeneous {
		op.fillGhosts(amrlev, mglev, cor, linop.Homogeneous, crseCor)
	} else {
		op.fillGhosts(amrlev, mglev, cor, linop.Homogeneous, nil)
	}

	return op.applyStencil(amrlev, mglev, rescor, res, cor, 1, -1)
}
