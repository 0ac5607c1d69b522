// Package optimizer searches component flux weights that hit a target
// chromaticity while scoring best on a set of spectral objectives.
//
// With exactly three components the flux split is solved in closed
// form. With more, every in-gamut component triangle is pre-mixed to
// the target and a minimizer blends the triangles, which keeps each
// candidate on the target chromaticity by construction while the
// objectives steer the spectral shape.
package optimizer

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/cwbudde/algo-spectra/colorim"
	"github.com/cwbudde/algo-spectra/emitter"
	"github.com/cwbudde/algo-spectra/mixer"
	"github.com/cwbudde/algo-spectra/spd"
	"github.com/cwbudde/algo-spectra/spdbuild"
)

var (
	ErrTooFewComponents = errors.New("need at least three component spectra")
	ErrUnsupportedMode  = errors.New("unsupported optimizer mode")
)

// Mode3Mixer blends pre-solved component triangles. The only mode
// currently implemented.
const Mode3Mixer = "3mixer"

// Config describes one optimization run.
type Config struct {
	// Components holds the component spectra, one per row. Nil renders
	// Emitter instead.
	Components *spd.SPD
	Emitter    *emitter.PhosphorConfig

	// Target is the chromaticity to hit, in TargetSpace coordinates
	// (Yxy when empty).
	Target      []float64
	TargetSpace string

	// Mode selects the mixing strategy. Empty means Mode3Mixer.
	Mode string

	// Objectives score candidate blends. Empty is allowed; the target
	// chromaticity alone then decides the result.
	Objectives []Objective

	// Method and Search configure the weight minimizer.
	Method string
	Search MinimizeOptions

	// CMF defaults to the CIE 1931 2 degree observer resampled onto the
	// component grid.
	CMF *colorim.CMF

	Verbosity int
	Warn      io.Writer
}

// ObjectiveValue pairs an objective name with its value at the
// optimized spectrum.
type ObjectiveValue struct {
	Name  string
	Value float64
}

// Result of an optimization run.
type Result struct {
	// Flux holds one multiplier per component. All NaN when a direct
	// three-component solve missed the gamut.
	Flux []float64

	// SPD is the flux-weighted combination, normalized to peak one.
	SPD *spd.SPD

	// Target is the resolved target chromaticity.
	Target colorim.Yxy

	// Objectives holds the objective values of the final spectrum.
	Objectives []ObjectiveValue

	// Evals counts fitness evaluations spent by the search.
	Evals int

	// Minimizer reports the weight search. Nil when no search ran.
	Minimizer *MinimizeResult

	// OutOfGamut flags a direct three-component solve that missed.
	OutOfGamut bool
}

// Optimize runs the configured search and returns the best flux split.
func Optimize(cfg Config) (*Result, error) {
	comps := cfg.Components
	if comps == nil {
		if cfg.Emitter == nil {
			return nil, fmt.Errorf("no component spectra and no emitter config")
		}
		built, err := spdbuild.Build(spdbuild.Config{Emitter: *cfg.Emitter})
		if err != nil {
			return nil, err
		}
		comps = built.SPD
	}
	if comps.Rows() < 3 {
		return nil, fmt.Errorf("%w, got %d", ErrTooFewComponents, comps.Rows())
	}

	mode := cfg.Mode
	if mode == "" {
		mode = Mode3Mixer
	}
	if mode != Mode3Mixer {
		return nil, fmt.Errorf("%w %q", ErrUnsupportedMode, mode)
	}

	warn := cfg.Warn
	if warn == nil {
		warn = os.Stderr
	}
	warnf := func(format string, args ...any) {
		if cfg.Verbosity > 0 {
			fmt.Fprintf(warn, format+"\n", args...)
		}
	}

	cmf := cfg.CMF
	if cmf == nil {
		var err error
		cmf, err = colorim.CIE1931().OnGrid(comps.WL)
		if err != nil {
			return nil, err
		}
	}

	if len(cfg.Target) != 3 {
		return nil, fmt.Errorf("target needs 3 values, got %d", len(cfg.Target))
	}
	space := cfg.TargetSpace
	if space == "" {
		space = colorim.SpaceYxy
	}
	vals, err := colorim.Transform([3]float64{cfg.Target[0], cfg.Target[1], cfg.Target[2]}, space, colorim.SpaceYxy)
	if err != nil {
		return nil, err
	}
	target := colorim.Yxy{Y: vals[0], Cx: vals[1], Cy: vals[2]}

	chrom, err := colorim.SpdChromaticity(comps, cmf)
	if err != nil {
		return nil, err
	}

	eval := NewEvaluator(cfg.Objectives)
	res := &Result{Target: target}

	var flux []float64
	if comps.Rows() == 3 {
		f := mixer.Mix3(target, chrom[0], chrom[1], chrom[2])
		if f.InGamut() {
			flux = f[:]
		} else {
			warnf("warning: target out of gamut for the three components, flux is NaN")
			res.OutOfGamut = true
			flux = nanSlice(3)
		}
	} else {
		ts, err := newTriangleSearch(comps, chrom, target)
		if err != nil {
			return nil, err
		}
		w, minres, err := ts.search(eval, cfg.Method, cfg.Search)
		if err != nil {
			return nil, err
		}
		flux = ts.componentFlux(comps.Rows(), w)
		res.Minimizer = minres
	}

	combined, err := comps.WeightedSum(flux)
	if err != nil {
		return nil, err
	}
	objVals := eval.Values(combined)
	res.Objectives = make([]ObjectiveValue, len(cfg.Objectives))
	for i, o := range cfg.Objectives {
		res.Objectives[i] = ObjectiveValue{Name: o.Name, Value: objVals[i]}
	}

	res.Flux = flux
	res.SPD = combined.NormalizeMax()
	res.Evals = eval.Evals()
	return res, nil
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
