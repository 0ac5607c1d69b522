package colorim

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-approx"
	"github.com/cwbudde/algo-spectra/spd"
)

// LER returns the luminous efficacy of radiation in lm/W per row.
// Rows without radiant power come back as NaN.
func LER(s *spd.SPD, cmf *CMF) ([]float64, error) {
	if !s.WL.Equal(cmf.WL) {
		return nil, fmt.Errorf("spd sampled on a different grid than the cmf")
	}
	w := s.WL.Widths()
	out := make([]float64, s.Rows())
	for i, row := range s.Values {
		var lum, power float64
		for j, v := range row {
			lum += cmf.Y[j] * v * w[j]
			power += v * w[j]
		}
		out[i] = Km * lum / power
	}
	return out, nil
}

// GaussianSamples builds n synthetic reflectance curves: broad Gaussian
// humps of 0.1 base and 0.8 amplitude with peaks spread 440-660 nm. They
// stand in for physical test-color tables so the fidelity score needs no
// external data.
func GaussianSamples(n int, grid spd.Grid) (*spd.SPD, error) {
	if n < 1 {
		return nil, fmt.Errorf("need at least one sample, got %d", n)
	}
	out, err := spd.NewZero(grid, n)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		peak := 550.0
		if n > 1 {
			peak = 440 + 220*float64(i)/float64(n-1)
		}
		row := out.Values[i]
		for j, wl := range grid {
			d := (wl - peak) / 45
			row[j] = 0.1 + 0.8*math.Exp(-0.5*d*d)
		}
	}
	return out, nil
}

// FidelityOptions configures the rendering-fidelity score.
type FidelityOptions struct {
	// Samples are reflectance rows on the test grid. Nil selects
	// GaussianSamples(8, grid).
	Samples *spd.SPD
}

// Fidelity scores how faithfully a single-row test spectrum renders a sample
// set against a Planckian reference at the same correlated color temperature,
// on the familiar 100-point scale (100 - 4.6 * mean CIE 1964 UVW delta).
// The reference is Planckian over the whole CCT range; no daylight tables.
func Fidelity(test *spd.SPD, cmf *CMF, opts *FidelityOptions) (float64, error) {
	if test.Rows() != 1 {
		return 0, fmt.Errorf("fidelity needs a single-row spectrum, got %d rows", test.Rows())
	}
	if !test.WL.Equal(cmf.WL) {
		return 0, fmt.Errorf("spd sampled on a different grid than the cmf")
	}
	chrom, err := SpdChromaticity(test, cmf)
	if err != nil {
		return 0, err
	}
	cct, _, err := CCTOf(chrom[0])
	if err != nil {
		return 0, fmt.Errorf("fidelity reference: %w", err)
	}
	ref, err := Planckian(cct, test.WL)
	if err != nil {
		return 0, err
	}

	samples := (*spd.SPD)(nil)
	if opts != nil {
		samples = opts.Samples
	}
	if samples == nil {
		samples, err = GaussianSamples(8, test.WL)
		if err != nil {
			return 0, err
		}
	}
	if !samples.WL.Equal(test.WL) {
		return 0, fmt.Errorf("samples sampled on a different grid than the test spectrum")
	}

	sumDE := 0.0
	for i := 0; i < samples.Rows(); i++ {
		ut, vt, wt, err := sampleUVW(test.Row(0), samples.Row(i), cmf)
		if err != nil {
			return 0, err
		}
		ur, vr, wr, err := sampleUVW(ref.Row(0), samples.Row(i), cmf)
		if err != nil {
			return 0, err
		}
		du, dv, dw := ut-ur, vt-vr, wt-wr
		sumDE += math.Sqrt(du*du + dv*dv + dw*dw)
	}
	return 100 - 4.6*sumDE/float64(samples.Rows()), nil
}

// sampleUVW returns CIE 1964 U*V*W* of a reflectance sample under an
// illuminant normalized to white Y = 100.
func sampleUVW(illum, refl []float64, cmf *CMF) (float64, float64, float64, error) {
	w := cmf.WL.Widths()
	var xw, yw, zw float64
	var xs, ys, zs float64
	for j := range illum {
		p := illum[j] * w[j]
		xw += cmf.X[j] * p
		yw += cmf.Y[j] * p
		zw += cmf.Z[j] * p
		q := p * refl[j]
		xs += cmf.X[j] * q
		ys += cmf.Y[j] * q
		zs += cmf.Z[j] * q
	}
	if yw <= 0 {
		return 0, 0, 0, fmt.Errorf("illuminant carries no luminance")
	}
	k := 100 / yw
	white := XYZ{X: k * xw, Y: 100, Z: k * zw}
	samp := XYZ{X: k * xs, Y: k * ys, Z: k * zs}

	un := white.UV1960()
	us := samp.UV1960()
	wStar := 25*math.Cbrt(samp.Y) - 17
	uStar := 13 * wStar * (us.U - un.U)
	vStar := 13 * wStar * (us.V - un.V)
	return uStar, vStar, wStar, nil
}

// Metrics contains distance and similarity measurements between two spectra.
type Metrics struct {
	Samples int `json:"samples"`

	RMSE        float64 `json:"rmse"`
	PeakDeltaNM float64 `json:"peak_delta_nm"`
	DeltaX      float64 `json:"delta_x"`
	DeltaY      float64 `json:"delta_y"`

	CCTValid bool    `json:"cct_valid"`
	DeltaCCT float64 `json:"delta_cct"`
	DeltaDuv float64 `json:"delta_duv"`

	Score      float64 `json:"score"`
	Similarity float64 `json:"similarity"`
}

// CompareSpds measures how close two single-row spectra are after max
// normalization, resampling b onto a's grid. Similarity compresses the score
// into (0, 1] for display; the fast exponential is plenty at that precision.
func CompareSpds(a, b *spd.SPD, cmf *CMF) (*Metrics, error) {
	if a.Rows() != 1 || b.Rows() != 1 {
		return nil, fmt.Errorf("comparison needs single-row spectra, got %d and %d rows", a.Rows(), b.Rows())
	}
	ra := a.Clone()
	rb, err := b.Resample(a.WL)
	if err != nil {
		return nil, err
	}
	ra.NormalizeMax()
	rb.NormalizeMax()
	if ra.RowHasNaN(0) || rb.RowHasNaN(0) {
		return nil, fmt.Errorf("cannot compare spectra without energy")
	}

	m := &Metrics{Samples: a.Samples()}

	var sq float64
	peakA, peakB := 0, 0
	va, vb := ra.Row(0), rb.Row(0)
	for j := range va {
		d := va[j] - vb[j]
		sq += d * d
		if va[j] > va[peakA] {
			peakA = j
		}
		if vb[j] > vb[peakB] {
			peakB = j
		}
	}
	m.RMSE = math.Sqrt(sq / float64(len(va)))
	m.PeakDeltaNM = a.WL[peakA] - a.WL[peakB]

	ca, err := SpdChromaticity(ra, cmf)
	if err != nil {
		return nil, err
	}
	cb, err := SpdChromaticity(rb, cmf)
	if err != nil {
		return nil, err
	}
	m.DeltaX = ca[0].Cx - cb[0].Cx
	m.DeltaY = ca[0].Cy - cb[0].Cy

	score := 2.5*m.RMSE + 10*math.Hypot(m.DeltaX, m.DeltaY)

	ccta, duva, errA := CCTOf(ca[0])
	cctb, duvb, errB := CCTOf(cb[0])
	if errA == nil && errB == nil {
		m.CCTValid = true
		m.DeltaCCT = ccta - cctb
		m.DeltaDuv = duva - duvb
		score += math.Abs(m.DeltaCCT)/2000 + 25*math.Abs(m.DeltaDuv)
	}

	m.Score = score
	m.Similarity = float64(approx.FastExp(float32(-4 * score)))
	return m, nil
}
