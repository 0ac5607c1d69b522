package spd

import (
	"fmt"

	"gonum.org/v1/gonum/interp"
)

// Resample returns a copy of s sampled on the target grid using linear
// interpolation. Wavelengths outside the source support read as zero.
// NaN rows stay NaN rows.
func (s *SPD) Resample(wl Grid) (*SPD, error) {
	if err := wl.Validate(); err != nil {
		return nil, err
	}
	if s.WL.Equal(wl) {
		return s.Clone(), nil
	}
	out, err := NewZero(wl, len(s.Values))
	if err != nil {
		return nil, err
	}
	lo, hi := s.WL.Min(), s.WL.Max()
	for i, row := range s.Values {
		if s.RowHasNaN(i) {
			out.MarkRowInvalid(i)
			continue
		}
		var pl interp.PiecewiseLinear
		if err := pl.Fit(s.WL, row); err != nil {
			return nil, fmt.Errorf("fit row %d: %w", i, err)
		}
		dst := out.Values[i]
		for j, w := range wl {
			if w < lo || w > hi {
				dst[j] = 0
				continue
			}
			dst[j] = pl.Predict(w)
		}
	}
	return out, nil
}
