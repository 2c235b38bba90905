package poisson

import (
	"fmt"

	"github.com/katalvlaran/multigrid/field"
	"github.com/katalvlaran/multigrid/linop"
	"github.com/katalvlaran/multigrid/mesh"
)

// Reflux fixes the coarse composite residual along the boundary of AMR
// level camrlev+1: for every uncovered coarse cell touching the coarse-fine
// interface, the coarse one-sided gradient flux across the interface is
// replaced with the average of the fine fluxes through the same face.
// crseSol must hold the averaged-down solution on covered cells, as left
// by AverageDownSolutionRHS, so the subtracted coarse flux matches the one
// SolutionResidual used.
func (op *Operator) Reflux(camrlev int, crseRes, crseSol, fineSol *field.Patch) error {
	if camrlev < 0 || camrlev+1 >= len(op.levels) {
		return fmt.Errorf("%w: AMR level %d", ErrLevelIndex, camrlev)
	}
	if err := op.checkPatch(camrlev, 0, crseRes, false); err != nil {
		return err
	}
	if err := op.checkPatch(camrlev, 0, crseSol, true); err != nil {
		return err
	}
	if err := op.checkPatch(camrlev+1, 0, fineSol, true); err != nil {
		return err
	}

	falev := camrlev + 1
	r := op.ref[camrlev]
	if r == 1 {
		// Degenerate hierarchy; no interface, nothing to fix.
		return nil
	}
	fb := op.levels[falev][0].geom.Domain
	cf, err := fb.Coarsen(r)
	if err != nil {
		return fmt.Errorf("poisson: reflux: %w", err)
	}
	phys := op.levels[camrlev][0].phys
	gc := op.levels[camrlev][0].geom
	gf := op.levels[falev][0].geom
	oneD := op.is1D()
	ry := r
	if oneD {
		ry = 1
	}

	op.fillGhosts(falev, 0, fineSol, linop.Inhomogeneous, crseSol)

	for c := 0; c < crseRes.NComp(); c++ {
		// West and east interfaces (x-faces).
		for j := cf.LoY; j < cf.HiY; j++ {
			if cf.LoX > phys.LoX {
				fc := (crseSol.At(c, cf.LoX, j) - crseSol.At(c, cf.LoX-1, j)) / gc.HX
				ff := 0.0
				for jf := j * ry; jf < j*ry+ry; jf++ {
					ff += (fineSol.At(c, fb.LoX, jf) - fineSol.At(c, fb.LoX-1, jf)) / gf.HX
				}
				ff /= float64(ry)
				crseRes.Add(c, cf.LoX-1, j, (ff-fc)/gc.HX)
			}
			if cf.HiX < phys.HiX {
				fc := (crseSol.At(c, cf.HiX, j) - crseSol.At(c, cf.HiX-1, j)) / gc.HX
				ff := 0.0
				for jf := j * ry; jf < j*ry+ry; jf++ {
					ff += (fineSol.At(c, fb.HiX, jf) - fineSol.At(c, fb.HiX-1, jf)) / gf.HX
				}
				ff /= float64(ry)
				crseRes.Add(c, cf.HiX, j, -(ff-fc)/gc.HX)
			}
		}
		if oneD {
			continue
		}
		// South and north interfaces (y-faces).
		for i := cf.LoX; i < cf.HiX; i++ {
			if cf.LoY > phys.LoY {
				fc := (crseSol.At(c, i, cf.LoY) - crseSol.At(c, i, cf.LoY-1)) / gc.HY
				ff := 0.0
				for ifx := i * r; ifx < i*r+r; ifx++ {
					ff += (fineSol.At(c, ifx, fb.LoY) - fineSol.At(c, ifx, fb.LoY-1)) / gf.HY
				}
				ff /= float64(r)
				crseRes.Add(c, i, cf.LoY-1, (ff-fc)/gc.HY)
			}
			if cf.HiY < phys.HiY {
				fc := (crseSol.At(c, i, cf.HiY) - crseSol.At(c, i, cf.HiY-1)) / gc.HY
				ff := 0.0
				for ifx := i * r; ifx < i*r+r; ifx++ {
					ff += (fineSol.At(c, ifx, fb.HiY) - fineSol.At(c, ifx, fb.HiY-1)) / gf.HY
				}
				ff /= float64(r)
				crseRes.Add(c, i, cf.HiY, -(ff-fc)/gc.HY)
			}
		}
	}

	return nil
}

// faceBoxes returns the expected x-face and y-face boxes of amrlev.
func (op *Operator) faceBoxes(amrlev int) (mesh.Box, mesh.Box) {
	b := op.levels[amrlev][0].geom.Domain
	fx := mesh.Box{LoX: b.LoX, LoY: b.LoY, HiX: b.HiX + 1, HiY: b.HiY}
	fy := mesh.Box{LoX: b.LoX, LoY: b.LoY, HiX: b.HiX, HiY: b.HiY + 1}

	return fx, fy
}

// GradSolution writes the face-centered gradients of sol at amrlev into gx
// (x-faces, box grown by one in x) and gy (y-faces; ignored in 1D).
// crseSol supplies coarse-fine ghost data for amrlev > 0.
func (op *Operator) GradSolution(amrlev int, gx, gy, sol, crseSol *field.Patch) error {
	if err := op.checkLevel(amrlev, 0); err != nil {
		return err
	}
	if err := op.checkPatch(amrlev, 0, sol, true); err != nil {
		return err
	}
	wantX, wantY := op.faceBoxes(amrlev)
	if gx == nil || !gx.Box().Equal(wantX) {
		return fmt.Errorf("%w: x-face box", ErrLevelShape)
	}
	oneD := op.is1D()
	if !oneD && (gy == nil || !gy.Box().Equal(wantY)) {
		return fmt.Errorf("%w: y-face box", ErrLevelShape)
	}

	op.fillGhosts(amrlev, 0, sol, linop.Inhomogeneous, crseSol)
	g := op.levels[amrlev][0].geom
	b := sol.Box()

	for c := 0; c < sol.NComp(); c++ {
		for y := b.LoY; y < b.HiY; y++ {
			for x := b.LoX; x <= b.HiX; x++ {
				gx.Set(c, x, y, (sol.At(c, x, y)-sol.At(c, x-1, y))/g.HX)
			}
		}
		if oneD {
			continue
		}
		for y := b.LoY; y <= b.HiY; y++ {
			for x := b.LoX; x < b.HiX; x++ {
				gy.Set(c, x, y, (sol.At(c, x, y)-sol.At(c, x, y-1))/g.HY)
			}
		}
	}

	return nil
}

// Fluxes writes the face fluxes −∇φ of sol at amrlev into fx and fy.
func (op *Operator) Fluxes(amrlev int, fx, fy, sol, crseSol *field.Patch) error {
	if err := op.GradSolution(amrlev, fx, fy, sol, crseSol); err != nil {
		return err
	}
	fx.Scale(-1)
	if !op.is1D() {
		fy.Scale(-1)
	}

	return nil
}
