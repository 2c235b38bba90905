package mesh

// NewBox returns the half-open box [lox,hix) × [loy,hiy).
func NewBox(lox, loy, hix, hiy int) Box {
	return Box{LoX: lox, LoY: loy, HiX: hix, HiY: hiy}
}

// NewBox1D returns a height-one box [lo,hi) × [0,1), the 1D degenerate case.
func NewBox1D(lo, hi int) Box {
	return Box{LoX: lo, LoY: 0, HiX: hi, HiY: 1}
}

// Nx returns the number of cells along x.
func (b Box) Nx() int { return b.HiX - b.LoX }

// Ny returns the number of cells along y.
func (b Box) Ny() int { return b.HiY - b.LoY }

// NumCells returns the total number of cells in the box.
func (b Box) NumCells() int {
	if b.IsEmpty() {
		return 0
	}

	return b.Nx() * b.Ny()
}

// IsEmpty reports whether the box contains no cells.
func (b Box) IsEmpty() bool { return b.HiX <= b.LoX || b.HiY <= b.LoY }

// Contains reports whether cell (x, y) lies inside the box.
func (b Box) Contains(x, y int) bool {
	return x >= b.LoX && x < b.HiX && y >= b.LoY && y < b.HiY
}

// ContainsBox reports whether o lies entirely inside b.
// An empty o is contained in every box.
func (b Box) ContainsBox(o Box) bool {
	if o.IsEmpty() {
		return true
	}

	return o.LoX >= b.LoX && o.HiX <= b.HiX && o.LoY >= b.LoY && o.HiY <= b.HiY
}

// Equal reports whether b and o cover exactly the same cells.
func (b Box) Equal(o Box) bool { return b == o }

// Intersect returns the overlap of b and o (possibly empty).
func (b Box) Intersect(o Box) Box {
	r := Box{
		LoX: max(b.LoX, o.LoX), LoY: max(b.LoY, o.LoY),
		HiX: min(b.HiX, o.HiX), HiY: min(b.HiY, o.HiY),
	}
	if r.IsEmpty() {
		return Box{}
	}

	return r
}

// Grow expands the box by n cells on every side.
func (b Box) Grow(n int) Box {
	return Box{LoX: b.LoX - n, LoY: b.LoY - n, HiX: b.HiX + n, HiY: b.HiY + n}
}

// Shift translates the box by (dx, dy).
func (b Box) Shift(dx, dy int) Box {
	return Box{LoX: b.LoX + dx, LoY: b.LoY + dy, HiX: b.HiX + dx, HiY: b.HiY + dy}
}

// Refine scales the box bounds by ratio r ≥ 1: every cell becomes an
// r×r block of finer cells (r×1 for height-one boxes).
func (b Box) Refine(r int) Box {
	ry := r
	if b.Ny() == 1 && r > 1 {
		// 1D boxes stay height one under refinement.
		ry = 1
	}

	return Box{LoX: b.LoX * r, LoY: b.LoY * ry, HiX: b.HiX * r, HiY: b.HiY * ry}
}

// Coarsen divides the box bounds by ratio r ≥ 1. It returns ErrBadRatio
// when r does not evenly divide all four bounds, so that coarse and fine
// index spaces stay exactly aligned.
func (b Box) Coarsen(r int) (Box, error) {
	if b.IsEmpty() {
		return Box{}, ErrEmptyBox
	}
	if r == 1 {
		return b, nil
	}
	ry := r
	if b.Ny() == 1 {
		ry = 1
	}
	if b.LoX%r != 0 || b.HiX%r != 0 || b.LoY%ry != 0 || b.HiY%ry != 0 {
		return Box{}, ErrBadRatio
	}

	return Box{LoX: b.LoX / r, LoY: b.LoY / ry, HiX: b.HiX / r, HiY: b.HiY / ry}, nil
}

// Coarsenable reports whether Coarsen(r) would succeed.
func (b Box) Coarsenable(r int) bool {
	_, err := b.Coarsen(r)

	return err == nil
}

// Refine returns the geometry one refinement finer: the domain box refined
// by r and the cell sizes divided by r.
func (g Geometry) Refine(r int) Geometry {
	hy := g.HY
	if g.Domain.Ny() > 1 || r == 1 {
		hy = g.HY / float64(r)
	}

	return Geometry{Domain: g.Domain.Refine(r), HX: g.HX / float64(r), HY: hy}
}

// Coarsen returns the geometry one coarsening coarser, or ErrBadRatio when
// the domain does not divide by r.
func (g Geometry) Coarsen(r int) (Geometry, error) {
	d, err := g.Domain.Coarsen(r)
	if err != nil {
		return Geometry{}, err
	}
	hy := g.HY
	if g.Domain.Ny() > 1 {
		hy = g.HY * float64(r)
	}

	return Geometry{Domain: d, HX: g.HX * float64(r), HY: hy}, nil
}

// Tiles splits the box into row bands of at most rows rows each, in
// ascending y order. The decomposition is deterministic so parallel sweeps
// stay reproducible. rows ≤ 0 yields a single tile.
func Tiles(b Box, rows int) []Box {
	if b.IsEmpty() {
		return nil
	}
	if rows <= 0 || rows >= b.Ny() {
		return []Box{b}
	}
	tiles := make([]Box, 0, (b.Ny()+rows-1)/rows)
	for y := b.LoY; y < b.HiY; y += rows {
		hi := y + rows
		if hi > b.HiY {
			hi = b.HiY
		}
		tiles = append(tiles, Box{LoX: b.LoX, LoY: y, HiX: b.HiX, HiY: hi})
	}

	return tiles
}
