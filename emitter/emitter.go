package emitter

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-spectra/spd"
)

// Gaussian renders one Gaussian lobe per peak. The fwhm parameter enters the
// exponent directly as the spread; it is not converted to a true
// half-maximum width. fwhm entries broadcast when a single value is given
// for several peaks.
func Gaussian(peakWL, fwhm []float64, grid spd.Grid) (*spd.SPD, error) {
	if err := grid.Validate(); err != nil {
		return nil, err
	}
	peaks, widths, _, err := broadcastPair(peakWL, fwhm)
	if err != nil {
		return nil, err
	}
	out, err := spd.NewZero(grid, len(peaks))
	if err != nil {
		return nil, err
	}
	for i := range peaks {
		row := out.Values[i]
		for j, wl := range grid {
			d := (wl - peaks[i]) / widths[i]
			row[j] = math.Exp(-0.5 * d * d)
		}
	}
	return out, nil
}

// MonoLED renders monochrome LED lobes: (g + shoulder*g^5) / (1 + shoulder)
// per row, where g is the Gaussian lobe. The shoulder weight tunes how heavy
// the tails are. Rows are not normalized here; callers normalize.
func MonoLED(peakWL, fwhm, shoulder []float64, grid spd.Grid) (*spd.SPD, error) {
	peaks, _, sh, err := broadcastTriple(peakWL, fwhm, shoulder)
	if err != nil {
		return nil, err
	}
	g, err := Gaussian(peakWL, fwhm, grid)
	if err != nil {
		return nil, err
	}
	for i := range peaks {
		row := g.Values[i]
		s := sh[i]
		for j, v := range row {
			v5 := v * v * v * v * v
			row[j] = (v + s*v5) / (1 + s)
		}
	}
	return g, nil
}

func broadcastPair(a, b []float64) ([]float64, []float64, int, error) {
	n := len(a)
	if n == 0 {
		return nil, nil, 0, fmt.Errorf("no peak wavelengths given")
	}
	bb, err := broadcast("fwhm", b, n)
	if err != nil {
		return nil, nil, 0, err
	}
	for i, w := range bb {
		if !(w > 0) {
			return nil, nil, 0, fmt.Errorf("fwhm %d must be positive, got %g", i, w)
		}
	}
	return a, bb, n, nil
}

func broadcastTriple(a, b, c []float64) ([]float64, []float64, []float64, error) {
	aa, bb, n, err := broadcastPair(a, b)
	if err != nil {
		return nil, nil, nil, err
	}
	cc, err := broadcast("shoulder", c, n)
	if err != nil {
		return nil, nil, nil, err
	}
	return aa, bb, cc, nil
}

// broadcast stretches a length-1 slice to n entries or checks the length.
func broadcast(name string, v []float64, n int) ([]float64, error) {
	switch len(v) {
	case n:
		return v, nil
	case 1:
		out := make([]float64, n)
		for i := range out {
			out[i] = v[0]
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%s has %d entries, want 1 or %d", name, len(v), n)
	}
}
