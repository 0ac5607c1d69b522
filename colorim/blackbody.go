package colorim

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-spectra/spd"
)

// Planck radiation constants (c2 per ITS-90).
const (
	planckC1 = 3.741771e-16 // W m^2
	planckC2 = 1.4388e-2    // m K
)

// Planckian returns the blackbody SPD at temperature tK sampled on the grid,
// normalized to max 1.
func Planckian(tK float64, grid spd.Grid) (*spd.SPD, error) {
	if !(tK > 0) {
		return nil, fmt.Errorf("blackbody temperature must be positive, got %g", tK)
	}
	out, err := spd.NewZero(grid, 1)
	if err != nil {
		return nil, err
	}
	row := out.Values[0]
	for j, wl := range grid {
		row[j] = planckRadiance(wl, tK)
	}
	return out.NormalizeMax(), nil
}

// planckRadiance evaluates the Planck law at wavelength wl in nm.
func planckRadiance(wl, tK float64) float64 {
	lm := wl * 1e-9
	l5 := lm * lm * lm * lm * lm
	return planckC1 / l5 / math.Expm1(planckC2/(lm*tK))
}

// The locus is integrated against the native 5 nm observer; chromaticity is
// insensitive to the sampling at this resolution.
var (
	locusCMF    = CIE1931()
	locusWidths = locusCMF.WL.Widths()
)

// locusUV returns the CIE 1960 uv coordinates of the Planckian radiator at tK.
func locusUV(tK float64) UV {
	var x, y, z float64
	for j, wl := range locusCMF.WL {
		p := planckRadiance(wl, tK) * locusWidths[j]
		x += locusCMF.X[j] * p
		y += locusCMF.Y[j] * p
		z += locusCMF.Z[j] * p
	}
	return XYZ{X: x, Y: y, Z: z}.UV1960()
}
