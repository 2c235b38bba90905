package mlmg_test

import (
	"fmt"

	"github.com/katalvlaran/multigrid/field"
	"github.com/katalvlaran/multigrid/mesh"
	"github.com/katalvlaran/multigrid/mlmg"
	"github.com/katalvlaran/multigrid/poisson"
)

// ExampleSolver_Solve solves −∇²φ = 1 on the unit square with homogeneous
// Dirichlet boundaries.
func ExampleSolver_Solve() {
	g := mesh.Geometry{Domain: mesh.NewBox(0, 0, 32, 32), HX: 1.0 / 32, HY: 1.0 / 32}
	op, err := poisson.NewOperator([]mesh.Geometry{g}, nil, poisson.DefaultOptions())
	if err != nil {
		panic(err)
	}
	s, err := mlmg.New(op, mlmg.DefaultOptions())
	if err != nil {
		panic(err)
	}

	sol := op.Make(0, 0, 1, 1)
	rhs := op.Make(0, 0, 1, 0)
	rhs.SetVal(1)

	norm, err := s.Solve([]*field.Patch{sol}, []*field.Patch{rhs}, 1e-8, 0)
	if err != nil {
		panic(err)
	}

	fmt.Println("converged:", s.Stats().Converged)
	fmt.Println("residual below target:", norm <= 1e-8)
	// Output:
	// converged: true
	// residual below target: true
}
