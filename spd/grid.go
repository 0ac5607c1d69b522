package spd

import (
	"fmt"
	"math"
)

// Grid is a strictly increasing sequence of wavelength samples in nanometers.
type Grid []float64

// Default working range, 360-830 nm at 1 nm spacing.
const (
	DefaultStart = 360.0
	DefaultEnd   = 830.0
	DefaultStep  = 1.0
)

// DefaultGrid returns the default working grid.
func DefaultGrid() Grid {
	return Uniform(DefaultStart, DefaultEnd, DefaultStep)
}

// Uniform builds an evenly spaced grid from start to end inclusive.
func Uniform(start, end, step float64) Grid {
	if step <= 0 || end < start {
		return nil
	}
	n := int(math.Floor((end-start)/step+0.5)) + 1
	g := make(Grid, n)
	for i := range g {
		g[i] = start + float64(i)*step
	}
	return g
}

// NewGrid validates an explicit wavelength sequence.
func NewGrid(wl []float64) (Grid, error) {
	g := Grid(wl)
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// Validate checks that the grid is strictly increasing and finite.
func (g Grid) Validate() error {
	if len(g) < 2 {
		return fmt.Errorf("grid needs at least 2 samples, got %d", len(g))
	}
	for i, w := range g {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("grid sample %d is not finite", i)
		}
		if i > 0 && w <= g[i-1] {
			return fmt.Errorf("grid not strictly increasing at sample %d (%.6g after %.6g)", i, w, g[i-1])
		}
	}
	return nil
}

// Min returns the first wavelength.
func (g Grid) Min() float64 { return g[0] }

// Max returns the last wavelength.
func (g Grid) Max() float64 { return g[len(g)-1] }

// Step reports the spacing and whether it is uniform across the grid.
func (g Grid) Step() (float64, bool) {
	if len(g) < 2 {
		return 0, false
	}
	step := g[1] - g[0]
	tol := 1e-9 * math.Max(1, math.Abs(step))
	for i := 2; i < len(g); i++ {
		if math.Abs((g[i]-g[i-1])-step) > tol {
			return step, false
		}
	}
	return step, true
}

// Widths returns per-sample integration widths (half the neighbor span,
// full span at the edges). Used for integrals over non-uniform grids.
func (g Grid) Widths() []float64 {
	n := len(g)
	w := make([]float64, n)
	if n < 2 {
		return w
	}
	w[0] = g[1] - g[0]
	w[n-1] = g[n-1] - g[n-2]
	for i := 1; i < n-1; i++ {
		w[i] = (g[i+1] - g[i-1]) / 2
	}
	return w
}

// Equal reports whether two grids match sample for sample.
func (g Grid) Equal(other Grid) bool {
	if len(g) != len(other) {
		return false
	}
	for i := range g {
		if g[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the grid.
func (g Grid) Clone() Grid {
	out := make(Grid, len(g))
	copy(out, g)
	return out
}
