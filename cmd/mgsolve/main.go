// Command mgsolve runs a Poisson solve described by a YAML problem file
// and prints the convergence history. It exists to exercise solver
// configurations from the shell without writing a Go program.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/multigrid/bottom"
	"github.com/katalvlaran/multigrid/field"
	"github.com/katalvlaran/multigrid/mesh"
	"github.com/katalvlaran/multigrid/mlmg"
	"github.com/katalvlaran/multigrid/poisson"
)

// refineSpec adds one AMR level: the coarse-index region [lo, hi) of the
// previous level, refined by ratio.
type refineSpec struct {
	Ratio int   `yaml:"ratio"`
	Lo    []int `yaml:"lo"`
	Hi    []int `yaml:"hi"`
}

// problemConfig is the YAML problem description.
type problemConfig struct {
	Domain    int     `yaml:"domain"`    // cells per side of the unit square
	Dirichlet float64 `yaml:"dirichlet"` // boundary value on every face
	RHS       float64 `yaml:"rhs"`       // constant source term

	Refine []refineSpec `yaml:"refine"`

	TolRel   float64 `yaml:"tol_rel"`
	TolAbs   float64 `yaml:"tol_abs"`
	MaxIters int     `yaml:"max_iters"`
	FMGIters int     `yaml:"fmg_iters"`
	Bottom   string  `yaml:"bottom"`
	NSolve   bool    `yaml:"nsolve"`
}

func defaultProblem() problemConfig {
	return problemConfig{
		Domain:   64,
		RHS:      1,
		TolRel:   1e-10,
		MaxIters: mlmg.DefaultOptions().MaxIters,
		Bottom:   bottom.Default.String(),
	}
}

func loadProblem(path string) (problemConfig, error) {
	cfg := defaultProblem()
	buf, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.Domain < 2 {
		return cfg, fmt.Errorf("%s: domain must be at least 2 cells", path)
	}

	return cfg, nil
}

func parseBottom(s string) (bottom.Choice, error) {
	for _, c := range []bottom.Choice{bottom.Default, bottom.Smoother, bottom.CG, bottom.BiCGStab, bottom.External} {
		if strings.EqualFold(s, c.String()) {
			return c, nil
		}
	}

	return 0, fmt.Errorf("unknown bottom solver %q", s)
}

// buildHierarchy turns the problem description into level geometries.
func buildHierarchy(cfg problemConfig) ([]mesh.Geometry, []int, error) {
	h := 1.0 / float64(cfg.Domain)
	geoms := []mesh.Geometry{{Domain: mesh.NewBox(0, 0, cfg.Domain, cfg.Domain), HX: h, HY: h}}
	var ratios []int
	for i, r := range cfg.Refine {
		if r.Ratio < 1 || len(r.Lo) != 2 || len(r.Hi) != 2 {
			return nil, nil, fmt.Errorf("refine level %d: want ratio ≥ 1 and 2-element lo/hi", i+1)
		}
		region := mesh.Box{LoX: r.Lo[0], LoY: r.Lo[1], HiX: r.Hi[0], HiY: r.Hi[1]}
		prev := geoms[len(geoms)-1]
		geoms = append(geoms, mesh.Geometry{
			Domain: region.Refine(r.Ratio),
			HX:     prev.HX / float64(r.Ratio),
			HY:     prev.HY / float64(r.Ratio),
		})
		ratios = append(ratios, r.Ratio)
	}

	return geoms, ratios, nil
}

func run(cfg problemConfig, verbose int, checkpoint string, log *zap.Logger) error {
	geoms, ratios, err := buildHierarchy(cfg)
	if err != nil {
		return err
	}
	popts := poisson.DefaultOptions()
	popts.DirichletValue = cfg.Dirichlet
	op, err := poisson.NewOperator(geoms, ratios, popts)
	if err != nil {
		return err
	}

	choice, err := parseBottom(cfg.Bottom)
	if err != nil {
		return err
	}
	opts := mlmg.DefaultOptions()
	opts.Verbose = verbose
	opts.MaxIters = cfg.MaxIters
	opts.MaxFMGIters = cfg.FMGIters
	opts.BottomSolver = choice
	opts.NSolve = cfg.NSolve
	opts.CheckpointFile = checkpoint
	opts.Logger = log
	s, err := mlmg.New(op, opts)
	if err != nil {
		return err
	}

	sol := make([]*field.Patch, op.NumAMRLevels())
	rhs := make([]*field.Patch, op.NumAMRLevels())
	for a := range sol {
		sol[a] = op.Make(a, 0, 1, 1)
		rhs[a] = op.Make(a, 0, 1, 0)
		rhs[a].SetVal(cfg.RHS)
	}

	norm, err := s.Solve(sol, rhs, cfg.TolRel, cfg.TolAbs)
	if err != nil {
		return err
	}

	st := s.Stats()
	fmt.Printf("levels=%d domain=%d bottom=%s\n", op.NumAMRLevels(), cfg.Domain, choice)
	fmt.Printf("rhs_norm=%.6e init_res=%.6e final_res=%.6e\n", st.RHSNorm0, st.InitResNorm, norm)
	fmt.Printf("iters=%d converged=%v solve=%s bottom=%s\n",
		st.NumIters, st.Converged, st.SolveTime, st.BottomTime)
	for i, r := range st.ResHistory {
		fmt.Printf("  iter %3d  fine_res=%.6e\n", i+1, r)
	}
	if !st.Converged {
		return fmt.Errorf("did not converge in %d iterations (final %.3e)", st.NumIters, norm)
	}

	return nil
}

func main() {
	var (
		configPath string
		verbose    int
		checkpoint string
	)

	root := &cobra.Command{
		Use:           "mgsolve",
		Short:         "Solve a Poisson problem from a YAML description",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadProblem(configPath)
			if err != nil {
				return err
			}
			log := zap.NewNop()
			if verbose > 0 {
				log, err = zap.NewDevelopment()
				if err != nil {
					return err
				}
				defer func() { _ = log.Sync() }()
			}

			return run(cfg, verbose, checkpoint, log)
		},
	}
	root.Flags().StringVarP(&configPath, "config", "c", "problem.yaml", "YAML problem file")
	root.Flags().IntVarP(&verbose, "verbose", "v", 1, "engine log volume (0-4)")
	root.Flags().StringVar(&checkpoint, "checkpoint", "", "dump solve state to this JSON file")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "mgsolve:", err)
		os.Exit(1)
	}
}
