package spd

import (
	"fmt"
	"math"

	dspconv "github.com/cwbudde/algo-dsp/dsp/conv"
)

const smoothPartSize = 128

// Smooth convolves every row with a unit-area Gaussian of the given FWHM in
// nanometers, emulating an instrument bandwidth. Requires a uniform grid.
// NaN rows pass through unchanged.
func (s *SPD) Smooth(fwhmNM float64) (*SPD, error) {
	if fwhmNM <= 0 {
		return nil, fmt.Errorf("smoothing fwhm must be positive, got %g", fwhmNM)
	}
	step, uniform := s.WL.Step()
	if !uniform {
		return nil, fmt.Errorf("smoothing needs a uniform grid")
	}

	sigma := fwhmNM / (2 * math.Sqrt(2*math.Ln2))
	half := int(math.Ceil(3 * sigma / step))
	if half < 1 {
		half = 1
	}
	kernel := make([]float64, 2*half+1)
	sum := 0.0
	for i := range kernel {
		d := float64(i-half) * step / sigma
		kernel[i] = math.Exp(-0.5 * d * d)
		sum += kernel[i]
	}
	for i := range kernel {
		kernel[i] /= sum
	}

	ola, err := dspconv.NewOverlapAdd(kernel, smoothPartSize)
	if err != nil {
		return nil, fmt.Errorf("smoothing kernel: %w", err)
	}

	out := s.Clone()
	for i, row := range out.Values {
		if out.RowHasNaN(i) {
			continue
		}
		full, err := ola.Process(row)
		if err != nil {
			return nil, fmt.Errorf("smooth row %d: %w", i, err)
		}
		if len(full) < half+len(row) {
			return nil, fmt.Errorf("smooth row %d: short convolution output (%d < %d)", i, len(full), half+len(row))
		}
		copy(row, full[half:half+len(row)])
		ola.Reset()
	}
	return out, nil
}
