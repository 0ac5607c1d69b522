package optimizer

import (
	"math"

	"github.com/cwbudde/algo-spectra/colorim"
	"github.com/cwbudde/algo-spectra/spd"
)

// Objective scores one property of a candidate spectrum against a
// target value. Fn returns NaN when the property cannot be computed for
// a candidate; such evaluations are skipped by the fitness sum, as are
// objectives with a nil Fn.
type Objective struct {
	Name     string
	Fn       func(*spd.SPD) float64
	Target   float64
	Weight   float64
	Decimals int
}

const defaultDecimals = 5

func newObjective(name string, target float64, fn func(*spd.SPD) float64) Objective {
	return Objective{Name: name, Fn: fn, Target: target, Weight: 1, Decimals: defaultDecimals}
}

func chromOf(s *spd.SPD, cmf *colorim.CMF) (colorim.Yxy, bool) {
	chrom, err := colorim.SpdChromaticity(s, cmf)
	if err != nil || len(chrom) == 0 {
		return colorim.Yxy{}, false
	}
	return chrom[0], chrom[0].Valid()
}

// ObjectiveChromX scores the x chromaticity coordinate.
func ObjectiveChromX(cmf *colorim.CMF, target float64) Objective {
	return newObjective("x", target, func(s *spd.SPD) float64 {
		c, ok := chromOf(s, cmf)
		if !ok {
			return math.NaN()
		}
		return c.Cx
	})
}

// ObjectiveChromY scores the y chromaticity coordinate.
func ObjectiveChromY(cmf *colorim.CMF, target float64) Objective {
	return newObjective("y", target, func(s *spd.SPD) float64 {
		c, ok := chromOf(s, cmf)
		if !ok {
			return math.NaN()
		}
		return c.Cy
	})
}

// ObjectiveCCT scores the correlated color temperature in kelvin.
func ObjectiveCCT(cmf *colorim.CMF, target float64) Objective {
	return newObjective("cct", target, func(s *spd.SPD) float64 {
		c, ok := chromOf(s, cmf)
		if !ok {
			return math.NaN()
		}
		cct, _, err := colorim.CCTOf(c)
		if err != nil {
			return math.NaN()
		}
		return cct
	})
}

// ObjectiveDuv scores the distance from the Planckian locus.
func ObjectiveDuv(cmf *colorim.CMF, target float64) Objective {
	return newObjective("duv", target, func(s *spd.SPD) float64 {
		c, ok := chromOf(s, cmf)
		if !ok {
			return math.NaN()
		}
		_, duv, err := colorim.CCTOf(c)
		if err != nil {
			return math.NaN()
		}
		return duv
	})
}

// ObjectiveLER scores the luminous efficacy of radiation in lm/W.
func ObjectiveLER(cmf *colorim.CMF, target float64) Objective {
	return newObjective("ler", target, func(s *spd.SPD) float64 {
		ler, err := colorim.LER(s, cmf)
		if err != nil || len(ler) == 0 {
			return math.NaN()
		}
		return ler[0]
	})
}

// ObjectiveFidelity scores the color fidelity index against a blackbody
// reference at the candidate's own CCT.
func ObjectiveFidelity(cmf *colorim.CMF, target float64) Objective {
	return newObjective("fidelity", target, func(s *spd.SPD) float64 {
		score, err := colorim.Fidelity(s, cmf, nil)
		if err != nil {
			return math.NaN()
		}
		return score
	})
}
