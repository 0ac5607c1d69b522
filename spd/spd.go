package spd

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// SPD holds one or more spectra sampled on a shared wavelength grid.
// Rows may carry NaN throughout as an out-of-gamut or invalid-row marker;
// operations propagate the marker instead of clamping it away.
type SPD struct {
	WL     Grid
	Values [][]float64
}

// New builds an SPD from a grid and value rows of matching length.
func New(wl Grid, rows ...[]float64) (*SPD, error) {
	if err := wl.Validate(); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("spd needs at least one value row")
	}
	vals := make([][]float64, len(rows))
	for i, r := range rows {
		if len(r) != len(wl) {
			return nil, fmt.Errorf("row %d has %d samples, grid has %d", i, len(r), len(wl))
		}
		vals[i] = make([]float64, len(r))
		copy(vals[i], r)
	}
	return &SPD{WL: wl.Clone(), Values: vals}, nil
}

// NewZero builds an SPD with n zero rows on the given grid.
func NewZero(wl Grid, n int) (*SPD, error) {
	if err := wl.Validate(); err != nil {
		return nil, err
	}
	if n < 1 {
		return nil, fmt.Errorf("spd needs at least one row, got %d", n)
	}
	vals := make([][]float64, n)
	for i := range vals {
		vals[i] = make([]float64, len(wl))
	}
	return &SPD{WL: wl.Clone(), Values: vals}, nil
}

// Rows returns the number of value rows.
func (s *SPD) Rows() int { return len(s.Values) }

// Samples returns the number of wavelength samples.
func (s *SPD) Samples() int { return len(s.WL) }

// Row returns the i-th value row without copying.
func (s *SPD) Row(i int) []float64 { return s.Values[i] }

// Clone returns a deep copy.
func (s *SPD) Clone() *SPD {
	vals := make([][]float64, len(s.Values))
	for i, r := range s.Values {
		vals[i] = make([]float64, len(r))
		copy(vals[i], r)
	}
	return &SPD{WL: s.WL.Clone(), Values: vals}
}

// RowMax returns the maximum of row i, or NaN if the row contains NaN.
func (s *SPD) RowMax(i int) float64 {
	return rowMax(s.Values[i])
}

// RowHasNaN reports whether row i contains any NaN sample.
func (s *SPD) RowHasNaN(i int) bool {
	for _, v := range s.Values[i] {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}

// MarkRowInvalid overwrites row i with NaN.
func (s *SPD) MarkRowInvalid(i int) {
	row := s.Values[i]
	for j := range row {
		row[j] = math.NaN()
	}
}

// NormalizeMax scales every row to a maximum of 1 in place and returns s.
// Rows whose maximum is not a positive finite number become NaN rows.
func (s *SPD) NormalizeMax() *SPD {
	for i, row := range s.Values {
		m := rowMax(row)
		if math.IsNaN(m) || math.IsInf(m, 0) || m <= 0 {
			s.MarkRowInvalid(i)
			continue
		}
		floats.Scale(1/m, row)
	}
	return s
}

// Scale multiplies every row by k in place and returns s.
func (s *SPD) Scale(k float64) *SPD {
	for _, row := range s.Values {
		floats.Scale(k, row)
	}
	return s
}

// WeightedSum collapses the rows into a single-row SPD using the absolute
// values of the weights. NaN rows poison the sum; callers that need to skip
// invalid rows select them out first (see SelectRows).
func (s *SPD) WeightedSum(w []float64) (*SPD, error) {
	if len(w) != len(s.Values) {
		return nil, fmt.Errorf("got %d weights for %d rows", len(w), len(s.Values))
	}
	acc := make([]float64, len(s.WL))
	for i, row := range s.Values {
		floats.AddScaled(acc, math.Abs(w[i]), row)
	}
	return &SPD{WL: s.WL.Clone(), Values: [][]float64{acc}}, nil
}

// SelectRows returns a new SPD holding only the listed rows, in order.
func (s *SPD) SelectRows(idx []int) (*SPD, error) {
	if len(idx) == 0 {
		return nil, fmt.Errorf("no rows selected")
	}
	vals := make([][]float64, len(idx))
	for k, i := range idx {
		if i < 0 || i >= len(s.Values) {
			return nil, fmt.Errorf("row index %d out of range [0,%d)", i, len(s.Values))
		}
		vals[k] = make([]float64, len(s.Values[i]))
		copy(vals[k], s.Values[i])
	}
	return &SPD{WL: s.WL.Clone(), Values: vals}, nil
}

// AppendRows adds the rows of other, which must share the grid.
func (s *SPD) AppendRows(other *SPD) error {
	if !s.WL.Equal(other.WL) {
		return fmt.Errorf("grids differ (%d vs %d samples)", len(s.WL), len(other.WL))
	}
	for _, r := range other.Values {
		row := make([]float64, len(r))
		copy(row, r)
		s.Values = append(s.Values, row)
	}
	return nil
}

func rowMax(row []float64) float64 {
	m := math.Inf(-1)
	for _, v := range row {
		if math.IsNaN(v) {
			return math.NaN()
		}
		if v > m {
			m = v
		}
	}
	return m
}
