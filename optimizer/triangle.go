package optimizer

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/combin"

	"github.com/cwbudde/algo-spectra/colorim"
	"github.com/cwbudde/algo-spectra/mixer"
	"github.com/cwbudde/algo-spectra/spd"
)

// triangleSearch enumerates the component triples that can reach a
// target chromaticity and searches the space of blends between them.
// Every pre-mixed row hits the target exactly, so any non-negative
// blend of them does too and the objective search cannot drift off it.
type triangleSearch struct {
	combos [][]int
	flux   []mixer.Flux3
	mixed  *spd.SPD
}

// newTriangleSearch solves each three-component subset for the target
// and keeps those whose flux split is finite and non-negative.
func newTriangleSearch(components *spd.SPD, chrom []colorim.Yxy, target colorim.Yxy) (*triangleSearch, error) {
	ts := &triangleSearch{}
	var rows [][]float64
	for _, c := range combin.Combinations(len(chrom), 3) {
		f := mixer.Mix3(target, chrom[c[0]], chrom[c[1]], chrom[c[2]])
		if !f.InGamut() {
			continue
		}
		sel, err := components.SelectRows(c)
		if err != nil {
			return nil, err
		}
		row, err := sel.WeightedSum(f[:])
		if err != nil {
			return nil, err
		}
		ts.combos = append(ts.combos, c)
		ts.flux = append(ts.flux, f)
		rows = append(rows, row.Values[0])
	}
	if len(ts.combos) == 0 {
		return nil, fmt.Errorf("no component triangle holds the target: %w", mixer.ErrOutOfGamut)
	}
	mixed, err := spd.New(components.WL, rows...)
	if err != nil {
		return nil, err
	}
	ts.mixed = mixed
	return ts, nil
}

// search optimizes the blend weights across the viable triangles. A
// single viable triangle needs no search; its weight is one and the
// evaluator is never called.
func (ts *triangleSearch) search(eval *Evaluator, method string, opts MinimizeOptions) ([]float64, *MinimizeResult, error) {
	nc := len(ts.combos)
	if nc == 1 {
		return []float64{1}, nil, nil
	}

	fitness := func(x []float64) float64 {
		cand, err := ts.mixed.WeightedSum(x)
		if err != nil {
			return math.Inf(1)
		}
		f, _ := eval.Evaluate(cand)
		return f
	}

	// Score each triangle on its own, then start from the best one with
	// a small offset on every weight.
	const seedOffset = 0.01
	bestIdx := 0
	bestF := math.Inf(1)
	for i := 0; i < nc; i++ {
		if f := fitness(basisVector(nc, i)); f < bestF {
			bestF = f
			bestIdx = i
		}
	}
	x0 := basisVector(nc, bestIdx)
	for i := range x0 {
		x0[i] += seedOffset
	}

	res, err := Minimize(fitness, x0, method, opts)
	if err != nil {
		return nil, nil, err
	}
	w := make([]float64, nc)
	for i, v := range res.X {
		w[i] = math.Abs(v)
	}
	return w, res, nil
}

// componentFlux folds blend weights back onto per-component flux.
func (ts *triangleSearch) componentFlux(n int, w []float64) []float64 {
	out := make([]float64, n)
	for ci, combo := range ts.combos {
		wc := math.Abs(w[ci])
		for j, idx := range combo {
			out[idx] += wc * ts.flux[ci][j]
		}
	}
	return out
}

func basisVector(n, i int) []float64 {
	v := make([]float64, n)
	v[i] = 1
	return v
}
