// Package spdbuild assembles emitter component spectra into output
// spectra, optionally pinning each result to a target chromaticity.
package spdbuild

import (
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"

	"github.com/cwbudde/algo-spectra/colorim"
	"github.com/cwbudde/algo-spectra/emitter"
	"github.com/cwbudde/algo-spectra/mixer"
	"github.com/cwbudde/algo-spectra/spd"
)

// Config drives a single Build call.
type Config struct {
	// Emitter describes the component spectra to render.
	Emitter emitter.PhosphorConfig

	// Flux optionally combines the output rows into a single spectrum
	// using absolute weights, one per row. Rows that failed the gamut
	// check are skipped.
	Flux []float64

	// Target is a chromaticity in TargetSpace coordinates. Empty means
	// the rows are returned as rendered. With a target, pure mono
	// component sets are mixed across all rows while phosphor sets are
	// solved per row from their pump and phosphor curves.
	Target      []float64
	TargetSpace string

	// Ratios are the merge ratios for mixing more than three mono
	// components. Nil draws random ratios from Rng until the solution
	// lands in gamut, capped at MaxRetries attempts.
	Ratios     []float64
	MaxRetries int
	Rng        *rand.Rand

	// CMF defaults to the CIE 1931 2 degree observer resampled onto the
	// emitter grid.
	CMF *colorim.CMF

	// Verbosity > 0 reports out-of-gamut rows on Warn (os.Stderr when
	// nil).
	Verbosity int
	Warn      io.Writer
}

// Result holds the built spectra together with the mixing details.
type Result struct {
	// SPD contains the output rows, each normalized to max 1. Rows that
	// could not reach the target are filled with NaN.
	SPD *spd.SPD

	// Components is the underlying emitter render.
	Components *emitter.PhosphorResult

	// MixFlux holds the flux multipliers applied per output row when a
	// target was requested: one entry with a flux per mono component,
	// or one triple per phosphor row.
	MixFlux [][]float64

	// OutOfGamut lists the row indexes that failed the gamut check.
	OutOfGamut []int
}

// Build renders the configured emitters and composes them according to
// the target and flux settings. The final spectra are always normalized
// to max 1.
func Build(cfg Config) (*Result, error) {
	comp, err := emitter.PhosphorLED(cfg.Emitter)
	if err != nil {
		return nil, err
	}
	grid := comp.SPD.WL

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
		cmf, err = colorim.CIE1931().OnGrid(grid)
		if err != nil {
			return nil, err
		}
	}

	res := &Result{Components: comp}
	out := comp.SPD.Clone()

	if len(cfg.Target) > 0 {
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

		if cfg.Emitter.HasPhosphors() {
			out, err = mixPhosphorRows(res, comp, target, cmf, warnf)
		} else {
			out, err = mixMonoRows(res, comp, target, cmf, cfg, warnf)
		}
		if err != nil {
			return nil, err
		}
	}

	if len(cfg.Flux) > 0 {
		out, err = combineRows(out, cfg.Flux, warnf)
		if err != nil {
			return nil, err
		}
	}

	res.SPD = out.NormalizeMax()
	return res, nil
}

// mixMonoRows treats every rendered row as an independent source and
// solves the full set against the target. The result is a single row.
func mixMonoRows(res *Result, comp *emitter.PhosphorResult, target colorim.Yxy, cmf *colorim.CMF, cfg Config, warnf func(string, ...any)) (*spd.SPD, error) {
	chrom, err := colorim.SpdChromaticity(comp.SPD, cmf)
	if err != nil {
		return nil, err
	}

	var flux []float64
	if cfg.Ratios != nil {
		flux, err = mixer.MixN(target, chrom, cfg.Ratios)
	} else {
		rng := cfg.Rng
		if rng == nil {
			rng = rand.New(rand.NewSource(1))
		}
		flux, err = mixer.MixNRetry(target, chrom, rng, cfg.MaxRetries)
	}
	switch {
	case errors.Is(err, mixer.ErrOutOfGamut):
		warnf("warning: mono mix out of gamut, output is NaN")
		out, zerr := spd.NewZero(comp.SPD.WL, 1)
		if zerr != nil {
			return nil, zerr
		}
		out.MarkRowInvalid(0)
		res.MixFlux = [][]float64{nanSlice(comp.SPD.Rows())}
		res.OutOfGamut = []int{0}
		return out, nil
	case err != nil:
		return nil, err
	}

	res.MixFlux = [][]float64{flux}
	return comp.SPD.WeightedSum(flux)
}

// mixPhosphorRows pins each emitter row to the target chromaticity by
// solving its pump and phosphor component triple. Row count and order
// are preserved; failed rows turn NaN.
func mixPhosphorRows(res *Result, comp *emitter.PhosphorResult, target colorim.Yxy, cmf *colorim.CMF, warnf func(string, ...any)) (*spd.SPD, error) {
	n := comp.SPD.Rows()
	out, err := spd.NewZero(comp.SPD.WL, n)
	if err != nil {
		return nil, err
	}
	res.MixFlux = make([][]float64, n)

	for i := 0; i < n; i++ {
		cs := comp.Components[i]
		chrom, err := colorim.SpdChromaticity(cs, cmf)
		if err != nil {
			return nil, err
		}
		f := mixer.Mix3(target, chrom[0], chrom[1], chrom[2])
		if !f.InGamut() {
			warnf("warning: row %d out of gamut, marked NaN", i)
			out.MarkRowInvalid(i)
			res.MixFlux[i] = nanSlice(3)
			res.OutOfGamut = append(res.OutOfGamut, i)
			continue
		}
		row, err := cs.WeightedSum(f[:])
		if err != nil {
			return nil, err
		}
		copy(out.Values[i], row.Values[0])
		res.MixFlux[i] = append([]float64(nil), f[:]...)
	}
	return out, nil
}

// combineRows folds the rows into a single spectrum with absolute
// weights, dropping rows that failed the gamut check.
func combineRows(s *spd.SPD, flux []float64, warnf func(string, ...any)) (*spd.SPD, error) {
	if len(flux) != s.Rows() {
		return nil, fmt.Errorf("got %d flux weights for %d rows", len(flux), s.Rows())
	}
	var idx []int
	var w []float64
	for i := 0; i < s.Rows(); i++ {
		if s.RowHasNaN(i) {
			continue
		}
		idx = append(idx, i)
		w = append(w, flux[i])
	}
	if len(idx) == 0 {
		warnf("warning: no rows left in gamut, output is NaN")
		out, err := spd.NewZero(s.WL, 1)
		if err != nil {
			return nil, err
		}
		out.MarkRowInvalid(0)
		return out, nil
	}
	sel, err := s.SelectRows(idx)
	if err != nil {
		return nil, err
	}
	return sel.WeightedSum(w)
}

func nanSlice(n int) []float64 {
	v := make([]float64, n)
	for i := range v {
		v[i] = math.NaN()
	}
	return v
}
