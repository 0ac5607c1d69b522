package colorim

import (
	"fmt"

	"github.com/cwbudde/algo-spectra/spd"
)

// CMF holds color matching functions sampled on a wavelength grid.
type CMF struct {
	WL spd.Grid
	X  []float64
	Y  []float64 // also the photopic luminosity function V(lambda)
	Z  []float64
}

// CIE1931 returns the 2-degree standard observer at its native 5 nm sampling.
func CIE1931() *CMF {
	n := len(cie1931Table)
	c := &CMF{
		WL: make(spd.Grid, n),
		X:  make([]float64, n),
		Y:  make([]float64, n),
		Z:  make([]float64, n),
	}
	for i, row := range cie1931Table {
		c.WL[i] = row[0]
		c.X[i] = row[1]
		c.Y[i] = row[2]
		c.Z[i] = row[3]
	}
	return c
}

// OnGrid resamples the matching functions onto the target grid by linear
// interpolation, zero outside the tabulated support.
func (c *CMF) OnGrid(grid spd.Grid) (*CMF, error) {
	if c.WL.Equal(grid) {
		return c.clone(), nil
	}
	s, err := spd.New(c.WL, c.X, c.Y, c.Z)
	if err != nil {
		return nil, fmt.Errorf("cmf table: %w", err)
	}
	r, err := s.Resample(grid)
	if err != nil {
		return nil, err
	}
	return &CMF{WL: r.WL, X: r.Row(0), Y: r.Row(1), Z: r.Row(2)}, nil
}

func (c *CMF) clone() *CMF {
	out := &CMF{
		WL: c.WL.Clone(),
		X:  make([]float64, len(c.X)),
		Y:  make([]float64, len(c.Y)),
		Z:  make([]float64, len(c.Z)),
	}
	copy(out.X, c.X)
	copy(out.Y, c.Y)
	copy(out.Z, c.Z)
	return out
}
