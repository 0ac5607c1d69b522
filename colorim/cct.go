package colorim

import (
	"errors"
	"fmt"
	"math"
)

// Supported correlated color temperature range.
const (
	CCTMin = 1000.0
	CCTMax = 25000.0
)

// ErrCCTRange marks chromaticities whose closest locus point sits at or
// beyond the supported temperature range.
var ErrCCTRange = errors.New("cct out of supported range")

// CCTMcCamy is the cubic approximation for correlated color temperature.
// Fast but only trustworthy near the Planckian locus between roughly
// 2000 K and 12000 K; CCTOf does the exact locus search.
func CCTMcCamy(c Yxy) float64 {
	n := (c.Cx - 0.3320) / (0.1858 - c.Cy)
	return -449*n*n*n + 3525*n*n - 6823.3*n + 5520.33
}

// CCTOf finds the correlated color temperature and Duv of a chromaticity by
// minimizing the CIE 1960 uv distance to the Planckian locus. The search runs
// over reciprocal temperature with three refinement passes. Duv is positive
// above the locus.
func CCTOf(c Yxy) (cct, duv float64, err error) {
	if !c.Valid() {
		return 0, 0, fmt.Errorf("invalid chromaticity (%g, %g)", c.Cx, c.Cy)
	}
	target := c.UV1960()

	miredMin := 1e6 / CCTMax
	miredMax := 1e6 / CCTMin
	lo, hi := miredMin, miredMax

	var bestMu, bestDist float64
	var bestUV UV
	const steps = 96
	for pass := 0; pass < 3; pass++ {
		step := (hi - lo) / steps
		bestDist = math.Inf(1)
		for i := 0; i <= steps; i++ {
			mu := lo + float64(i)*step
			uv := locusUV(1e6 / mu)
			d := math.Hypot(target.U-uv.U, target.V-uv.V)
			if d < bestDist {
				bestDist, bestMu, bestUV = d, mu, uv
			}
		}
		lo = math.Max(miredMin, bestMu-step)
		hi = math.Min(miredMax, bestMu+step)
	}

	if bestMu <= miredMin+1e-9 || bestMu >= miredMax-1e-9 {
		return 0, 0, fmt.Errorf("%w: nearest locus point at %.0f K", ErrCCTRange, 1e6/bestMu)
	}

	duv = bestDist
	if target.V < bestUV.V {
		duv = -duv
	}
	return 1e6 / bestMu, duv, nil
}

// YxyAtCCT builds the chromaticity at a correlated color temperature with a
// signed Duv offset normal to the locus, carrying the given luminance.
func YxyAtCCT(cct, duv, y float64) (Yxy, error) {
	if cct < CCTMin || cct > CCTMax {
		return Yxy{}, fmt.Errorf("%w: %g K", ErrCCTRange, cct)
	}
	uv := locusUV(cct)
	if duv != 0 {
		dT := math.Max(1, 1e-3*cct)
		ahead := locusUV(cct + dT)
		behind := locusUV(cct - dT)
		tu, tv := ahead.U-behind.U, ahead.V-behind.V
		norm := math.Hypot(tu, tv)
		nu, nv := -tv/norm, tu/norm
		if nv < 0 {
			nu, nv = -nu, -nv
		}
		uv.U += duv * nu
		uv.V += duv * nv
	}
	return YxyFromUV(y, uv), nil
}
