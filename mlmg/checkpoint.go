package mlmg

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/katalvlaran/multigrid/field"
	"github.com/katalvlaran/multigrid/mesh"
)

// checkpointLevel is the serialized state of one AMR level.
type checkpointLevel struct {
	Level int       `json:"level"`
	Box   mesh.Box  `json:"box"`
	NComp int       `json:"ncomp"`
	Sol   []float64 `json:"sol"`
	Rhs   []float64 `json:"rhs"`
}

// checkpointState is the on-disk layout of a solve checkpoint.
type checkpointState struct {
	TolRel   float64           `json:"tol_rel"`
	TolAbs   float64           `json:"tol_abs"`
	MaxIters int               `json:"max_iters"`
	Levels   []checkpointLevel `json:"levels"`
}

// checkPoint dumps the prepared solve state (initial guess, owned
// right-hand side, tolerances) to the configured file as JSON, for replay
// of a problematic solve.
func (s *Solver) checkPoint(tolRel, tolAbs float64) error {
	st := checkpointState{
		TolRel:   tolRel,
		TolAbs:   tolAbs,
		MaxIters: s.opts.MaxIters,
	}
	for a := 0; a < s.namrlevs; a++ {
		st.Levels = append(st.Levels, checkpointLevel{
			Level: a,
			Box:   s.rhs[a].Box(),
			NComp: s.ncomp,
			Sol:   flatten(s.sol[a]),
			Rhs:   flatten(s.rhs[a]),
		})
	}

	buf, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("mlmg: checkpoint encode: %w", err)
	}
	if err := os.WriteFile(s.opts.CheckpointFile, buf, 0o644); err != nil {
		return fmt.Errorf("mlmg: checkpoint write: %w", err)
	}
	if s.opts.Verbose >= 1 {
		s.log.Info("mlmg: checkpoint written")
	}

	return nil
}

// flatten copies the valid region of p into a row-major slice,
// component-major.
func flatten(p *field.Patch) []float64 {
	b := p.Box()
	out := make([]float64, 0, p.NComp()*b.NumCells())
	for c := 0; c < p.NComp(); c++ {
		for y := b.LoY; y < b.HiY; y++ {
			out = append(out, p.Row(c, y, b.LoX, b.HiX)...)
		}
	}

	return out
}
