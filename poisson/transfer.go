package poisson

import (
	"fmt"

	"github.com/katalvlaran/multigrid/field"
	"github.com/katalvlaran/multigrid/mesh"
)

// Restriction restricts fine (mglev cmglev-1) onto crse (mglev cmglev)
// inside amrlev by 2×2 cell averaging (pairwise in 1D).
func (op *Operator) Restriction(amrlev, cmglev int, crse, fine *field.Patch) error {
	if err := op.checkLevel(amrlev, cmglev); err != nil {
		return err
	}
	if cmglev < 1 {
		return fmt.Errorf("%w: restriction to mglev %d", ErrLevelIndex, cmglev)
	}
	if err := op.checkPatch(amrlev, cmglev, crse, false); err != nil {
		return err
	}
	if err := op.checkPatch(amrlev, cmglev-1, fine, false); err != nil {
		return err
	}

	return averageDown(crse, fine, crse.Box(), 2, op.is1D())
}

// Interpolation adds the piecewise-constant prolongation of crse (mglev
// fmglev+1) onto fine (mglev fmglev) inside amrlev; the V-cycle ascent
// transfer for cell-centered corrections.
func (op *Operator) Interpolation(amrlev, fmglev int, fine, crse *field.Patch) error {
	if err := op.checkLevel(amrlev, fmglev+1); err != nil {
		return err
	}
	if fmglev < 0 {
		return fmt.Errorf("%w: interpolation to mglev %d", ErrLevelIndex, fmglev)
	}
	if err := op.checkPatch(amrlev, fmglev, fine, false); err != nil {
		return err
	}
	if err := op.checkPatch(amrlev, fmglev+1, crse, false); err != nil {
		return err
	}

	fb := fine.Box()
	ry := 2
	if op.is1D() {
		ry = 1
	}

	return field.ForEachBand(fb, func(band mesh.Box) error {
		for c := 0; c < fine.NComp(); c++ {
			for y := band.LoY; y < band.HiY; y++ {
				yc := floorDiv(y, ry)
				for x := band.LoX; x < band.HiX; x++ {
					fine.Add(c, x, y, crse.At(c, floorDiv(x, 2), yc))
				}
			}
		}

		return nil
	})
}

// FMGInterpolation overwrites fine (mglev fmglev) with the slope-limited
// bilinear prolongation of crse (mglev fmglev+1); the full-multigrid
// seeding transfer.
func (op *Operator) FMGInterpolation(amrlev, fmglev int, fine, crse *field.Patch) error {
	if err := op.checkLevel(amrlev, fmglev+1); err != nil {
		return err
	}
	if fmglev < 0 {
		return fmt.Errorf("%w: fmg interpolation to mglev %d", ErrLevelIndex, fmglev)
	}
	if err := op.checkPatch(amrlev, fmglev, fine, false); err != nil {
		return err
	}
	if err := op.checkPatch(amrlev, fmglev+1, crse, false); err != nil {
		return err
	}

	return linearAssign(fine, crse, 2, op.is1D())
}

// InterpolationAMR overwrites fine (famrlev, mglev 0) with the bilinear
// prolongation of the coarse-level correction crse (famrlev-1, mglev 0).
func (op *Operator) InterpolationAMR(famrlev int, fine, crse *field.Patch) error {
	if famrlev < 1 || famrlev >= len(op.levels) {
		return fmt.Errorf("%w: AMR level %d", ErrLevelIndex, famrlev)
	}
	if err := op.checkPatch(famrlev, 0, fine, false); err != nil {
		return err
	}
	if err := op.checkPatch(famrlev-1, 0, crse, false); err != nil {
		return err
	}

	return linearAssign(fine, crse, op.ref[famrlev-1], op.is1D())
}

// AverageDownSolutionRHS replaces the region of crseSol (and crseRhs, when
// non-nil) covered by AMR level camrlev+1 with averaged-down fineSol
// (fineRhs).
func (op *Operator) AverageDownSolutionRHS(camrlev int, crseSol, crseRhs, fineSol, fineRhs *field.Patch) error {
	if camrlev < 0 || camrlev+1 >= len(op.levels) {
		return fmt.Errorf("%w: AMR level %d", ErrLevelIndex, camrlev)
	}
	r := op.ref[camrlev]
	covered, err := fineSol.Box().Coarsen(r)
	if err != nil {
		return fmt.Errorf("poisson: average down: %w", err)
	}

	if err := averageDown(crseSol, fineSol, covered, r, op.is1D()); err != nil {
		return err
	}
	if crseRhs != nil && fineRhs != nil {
		return averageDown(crseRhs, fineRhs, covered, r, op.is1D())
	}

	return nil
}

// averageDown writes into region (of crse's index space) the r×r cell
// averages of fine (r×1 in 1D).
func averageDown(crse, fine *field.Patch, region mesh.Box, r int, oneD bool) error {
	if r == 1 {
		return crse.CopyRegionFrom(fine, region)
	}
	ry := r
	n := r * r
	if oneD {
		ry = 1
		n = r
	}
	inv := 1.0 / float64(n)

	return field.ForEachBand(region, func(band mesh.Box) error {
		for c := 0; c < crse.NComp(); c++ {
			for yc := band.LoY; yc < band.HiY; yc++ {
				for xc := band.LoX; xc < band.HiX; xc++ {
					s := 0.0
					for dy := 0; dy < ry; dy++ {
						for dx := 0; dx < r; dx++ {
							s += fine.At(c, xc*r+dx, yc*ry+dy)
						}
					}
					crse.Set(c, xc, yc, s*inv)
				}
			}
		}

		return nil
	})
}

// linearAssign overwrites fine with the slope-limited (bi)linear
// prolongation of crse at ratio r. Slopes are central where both coarse
// neighbors exist, one-sided at the coarse patch edge.
func linearAssign(fine, crse *field.Patch, r int, oneD bool) error {
	if r == 1 {
		return fine.CopyRegionFrom(crse, fine.Box())
	}
	cb := crse.Box()
	ry := r
	if oneD {
		ry = 1
	}

	slope := func(c, x, y int, dx, dy int) float64 {
		hasLo := cb.Contains(x-dx, y-dy)
		hasHi := cb.Contains(x+dx, y+dy)
		switch {
		case hasLo && hasHi:
			return 0.5 * (crse.At(c, x+dx, y+dy) - crse.At(c, x-dx, y-dy))
		case hasHi:
			return crse.At(c, x+dx, y+dy) - crse.At(c, x, y)
		case hasLo:
			return crse.At(c, x, y) - crse.At(c, x-dx, y-dy)
		default:
			return 0
		}
	}

	return field.ForEachBand(fine.Box(), func(band mesh.Box) error {
		for c := 0; c < fine.NComp(); c++ {
			for y := band.LoY; y < band.HiY; y++ {
				yc := floorDiv(y, ry)
				rely := 0.0
				if !oneD {
					rely = (float64(y-yc*ry)+0.5)/float64(ry) - 0.5
				}
				for x := band.LoX; x < band.HiX; x++ {
					xc := floorDiv(x, r)
					relx := (float64(x-xc*r)+0.5)/float64(r) - 0.5
					v := crse.At(c, xc, yc) + slope(c, xc, yc, 1, 0)*relx
					if !oneD {
						v += slope(c, xc, yc, 0, 1) * rely
					}
					fine.Set(c, x, y, v)
				}
			}
		}

		return nil
	})
}
