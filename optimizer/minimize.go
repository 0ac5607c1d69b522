package optimizer

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/cwbudde/mayfly"
	"gonum.org/v1/gonum/optimize"
)

// MethodNelderMead is the default simplex search. The mayfly swarm
// variants ma, desma, olce, eobbma, gsasma, mpma and aoblmoa are also
// accepted by Minimize.
const MethodNelderMead = "nelder-mead"

var mayflyVariants = []string{"ma", "desma", "olce", "eobbma", "gsasma", "mpma", "aoblmoa"}

// MinimizeOptions tune the search. Zero values select the defaults
// noted per field.
type MinimizeOptions struct {
	MaxIterations int        // simplex major iterations or swarm generations; 0: derived from the evaluation budget
	MaxFuncEvals  int        // evaluation budget; 0: 1000 per dimension
	FTol          float64    // function convergence tolerance; 0: 0.01
	Population    int        // swarm size per sex; 0: 10
	Lower, Upper  float64    // swarm search box; both 0: [0, 1]
	Rng           *rand.Rand // swarm randomness; nil: fixed seed
}

// MinimizeResult reports the best point seen during a search, whether
// or not the method converged on it.
type MinimizeResult struct {
	X         []float64
	F         float64
	FuncEvals int
	Status    string
	Converged bool
}

// Minimize runs the named method on fn starting from x0 and returns the
// best point any evaluation saw. An empty method selects nelder-mead.
func Minimize(fn func([]float64) float64, x0 []float64, method string, opts MinimizeOptions) (*MinimizeResult, error) {
	if fn == nil {
		return nil, fmt.Errorf("nil objective function")
	}
	if len(x0) == 0 {
		return nil, fmt.Errorf("empty start vector")
	}
	dim := len(x0)
	maxFev := opts.MaxFuncEvals
	if maxFev <= 0 {
		maxFev = 1000 * dim
	}
	ftol := opts.FTol
	if ftol <= 0 {
		ftol = 0.01
	}
	t := newTracker(fn, x0)

	switch {
	case method == "" || method == MethodNelderMead:
		maxIter := opts.MaxIterations
		if maxIter <= 0 {
			maxIter = 1000 * dim
		}
		return minimizeNelderMead(t, x0, maxIter, maxFev, ftol)
	case isMayflyVariant(method):
		return minimizeMayfly(t, method, x0, maxFev, opts)
	}
	return nil, fmt.Errorf("unknown minimize method %q (want %q or one of %v)", method, MethodNelderMead, mayflyVariants)
}

// tracker wraps an objective function and remembers the best point any
// evaluation has seen. Swarm methods report their own notion of a best
// result; the tracker keeps the facade independent of it.
type tracker struct {
	fn    func([]float64) float64
	best  []float64
	bestF float64
	evals int
}

func newTracker(fn func([]float64) float64, x0 []float64) *tracker {
	return &tracker{fn: fn, best: append([]float64(nil), x0...), bestF: math.Inf(1)}
}

func (t *tracker) eval(x []float64) float64 {
	t.evals++
	f := t.fn(x)
	if f < t.bestF {
		t.bestF = f
		copy(t.best, x)
	}
	return f
}

func (t *tracker) result(status string, converged bool) *MinimizeResult {
	return &MinimizeResult{
		X:         append([]float64(nil), t.best...),
		F:         t.bestF,
		FuncEvals: t.evals,
		Status:    status,
		Converged: converged,
	}
}

func minimizeNelderMead(t *tracker, x0 []float64, maxIter, maxFev int, ftol float64) (*MinimizeResult, error) {
	problem := optimize.Problem{Func: t.eval}
	settings := &optimize.Settings{
		MajorIterations: maxIter,
		FuncEvaluations: maxFev,
		Converger: &optimize.FunctionConverge{
			Absolute:   ftol,
			Iterations: 20,
		},
	}
	res, err := optimize.Minimize(problem, append([]float64(nil), x0...), settings, &optimize.NelderMead{})
	if err != nil && math.IsInf(t.bestF, 1) {
		return nil, fmt.Errorf("nelder-mead failed: %w", err)
	}
	status := "unknown"
	converged := false
	if res != nil {
		status = res.Status.String()
		converged = res.Status == optimize.FunctionConvergence || res.Status == optimize.Success
	}
	return t.result(status, converged), nil
}

func minimizeMayfly(t *tracker, variant string, x0 []float64, maxFev int, opts MinimizeOptions) (*MinimizeResult, error) {
	pop := opts.Population
	if pop <= 0 {
		pop = 10
	}
	if pop < 2 {
		pop = 2
	}
	iters := opts.MaxIterations
	if iters <= 0 {
		iters = maxInt(1, maxFev/(2*pop))
	}
	cfg, err := newMayflyConfig(variant, pop, len(x0), iters)
	if err != nil {
		return nil, err
	}
	lower, upper := opts.Lower, opts.Upper
	if lower == 0 && upper == 0 {
		lower, upper = 0, 1
	}
	if upper <= lower {
		return nil, fmt.Errorf("bad search bounds [%g, %g]", lower, upper)
	}
	cfg.LowerBound = lower
	cfg.UpperBound = upper
	rng := opts.Rng
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	cfg.Rand = rng
	cfg.ObjectiveFunc = t.eval

	// The start point is scored first so the result is never worse than
	// the seed the caller handed in.
	t.eval(x0)

	if _, err := runMayfly(cfg); err != nil {
		if math.IsInf(t.bestF, 1) {
			return nil, err
		}
		return t.result(fmt.Sprintf("%s aborted: %v", variant, err), false), nil
	}
	return t.result(fmt.Sprintf("%s iterations exhausted", variant), false), nil
}

func newMayflyConfig(variant string, pop, dims, iters int) (*mayfly.Config, error) {
	var cfg *mayfly.Config
	switch variant {
	case "ma":
		cfg = mayfly.NewDefaultConfig()
	case "desma":
		cfg = mayfly.NewDESMAConfig()
	case "olce":
		cfg = mayfly.NewOLCEConfig()
	case "eobbma":
		cfg = mayfly.NewEOBBMAConfig()
	case "gsasma":
		cfg = mayfly.NewGSASMAConfig()
	case "mpma":
		cfg = mayfly.NewMPMAConfig()
	case "aoblmoa":
		cfg = mayfly.NewAOBLMOAConfig()
	default:
		return nil, fmt.Errorf("unsupported variant %q", variant)
	}
	cfg.ProblemSize = dims
	cfg.MaxIterations = iters
	cfg.NPop = pop
	cfg.NPopF = pop
	cfg.NC = 2 * pop
	cfg.NM = maxInt(1, int(math.Round(0.05*float64(pop))))
	return cfg, nil
}

func runMayfly(cfg *mayfly.Config) (_ *mayfly.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("mayfly panic: %v", r)
		}
	}()
	return mayfly.Optimize(cfg)
}

func isMayflyVariant(method string) bool {
	for _, v := range mayflyVariants {
		if method == v {
			return true
		}
	}
	return false
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
