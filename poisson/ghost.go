package poisson

import (
	"github.com/katalvlaran/multigrid/field"
	"github.com/katalvlaran/multigrid/linop"
)

// floorDiv returns floor(a/b) for b > 0, correct for negative a.
func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}

	return q
}

// cfRatio returns the effective resolution ratio across the coarse-fine
// interface of (amrlev, mglev): the AMR refinement ratio divided by the
// geometric coarsening already applied inside the fine level.
func (op *Operator) cfRatio(amrlev, mglev int) int {
	if amrlev == 0 {
		return 1
	}
	r := op.ref[amrlev-1] >> mglev
	if r < 1 {
		r = 1
	}

	return r
}

// FillSolutionBC fills the ghost halo of sol at (amrlev, 0) with
// inhomogeneous boundary data, for stencils applied after a solve.
func (op *Operator) FillSolutionBC(amrlev int, sol, crseSol *field.Patch) error {
	if err := op.checkLevel(amrlev, 0); err != nil {
		return err
	}
	if err := op.checkPatch(amrlev, 0, sol, true); err != nil {
		return err
	}
	op.fillGhosts(amrlev, 0, sol, linop.Inhomogeneous, crseSol)

	return nil
}

// fillGhosts populates the one-cell halo of p at (amrlev, mglev).
//
// Physical sides (patch face on the physical domain face) get the
// Dirichlet reflection ghost = 2·g − interior, with g = 0 under
// homogeneous physBC. Coarse-fine sides get the linear interpolant
// between the coarse neighbor center and the first interior cell,
//
//	ghost = ((r−1)·interior + 2·crse) / (r+1),
//
// which degenerates to plain continuation at ratio 1. A nil crse means
// homogeneous coarse data (correction form).
func (op *Operator) fillGhosts(amrlev, mglev int, p *field.Patch, physBC linop.BCMode, crse *field.Patch) {
	lv := op.levels[amrlev][mglev]
	b := lv.geom.Domain
	g := 0.0
	if physBC == linop.Inhomogeneous {
		g = op.opts.DirichletValue
	}
	rcf := op.cfRatio(amrlev, mglev)
	ramr := 1
	if amrlev > 0 {
		ramr = op.ref[amrlev-1]
	}

	ghost := func(c, x, y, gx, gy int) {
		// (x,y) first interior cell, (gx,gy) its ghost neighbor.
		in := p.At(c, x, y)
		if crse != nil {
			cv := crse.At(c, floorDiv(gx, ramr), floorDiv(gy, ramr))
			p.Set(c, gx, gy, (float64(rcf-1)*in+2*cv)/float64(rcf+1))

			return
		}
		p.Set(c, gx, gy, float64(rcf-1)/float64(rcf+1)*in)
	}
	dirichlet := func(c, x, y, gx, gy int) {
		p.Set(c, gx, gy, 2*g-p.At(c, x, y))
	}

	for c := 0; c < p.NComp(); c++ {
		// West and east sides.
		for y := b.LoY; y < b.HiY; y++ {
			if b.LoX == lv.phys.LoX {
				dirichlet(c, b.LoX, y, b.LoX-1, y)
			} else {
				ghost(c, b.LoX, y, b.LoX-1, y)
			}
			if b.HiX == lv.phys.HiX {
				dirichlet(c, b.HiX-1, y, b.HiX, y)
			} else {
				ghost(c, b.HiX-1, y, b.HiX, y)
			}
		}
		if op.is1D() {
			continue
		}
		// South and north sides.
		for x := b.LoX; x < b.HiX; x++ {
			if b.LoY == lv.phys.LoY {
				dirichlet(c, x, b.LoY, x, b.LoY-1)
			} else {
				ghost(c, x, b.LoY, x, b.LoY-1)
			}
			if b.HiY == lv.phys.HiY {
				dirichlet(c, x, b.HiY-1, x, b.HiY)
			} else {
				ghost(c, x, b.HiY-1, x, b.HiY)
			}
		}
	}
}
