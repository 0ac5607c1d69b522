// Package mixer computes per-source flux multipliers that reproduce a
// target chromaticity from a set of emitter chromaticities. Three
// sources are solved in closed form; larger sets are reduced to three
// virtual sources through a binary merge tree.
package mixer

import (
	"math"

	"github.com/cwbudde/algo-spectra/colorim"
)

// Flux3 holds the flux multipliers for a three-source mix, in source
// order.
type Flux3 [3]float64

// InGamut reports whether all three fluxes are finite and non-negative,
// meaning the target lies inside the triangle spanned by the sources.
func (f Flux3) InGamut() bool {
	for _, v := range f {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return false
		}
	}
	return true
}

// Mix3 solves the three-source mixing problem in closed form. Scaling
// source i by the returned flux i makes the summed stimulus match the
// target tristimulus exactly. A target outside the source triangle
// produces negative fluxes and degenerate inputs produce non-finite
// ones; both are returned raw rather than reported as errors, so batch
// callers can prune rows without unwinding.
func Mix3(target, c1, c2, c3 colorim.Yxy) Flux3 {
	xt, yt := target.Cx, target.Cy
	x1, y1 := c1.Cx, c1.Cy
	x2, y2 := c2.Cx, c2.Cy
	x3, y3 := c3.Cx, c3.Cy

	// Relative luminance fractions from Cramer's rule on the
	// chromaticity plane.
	den := yt * ((x3-x2)*y1 + (x2-x1)*y3 + (x1-x3)*y2)
	m1 := y1 * ((xt-x3)*y2 - (yt-y3)*x2 + x3*yt - xt*y3) / den
	m2 := -y2 * ((xt-x3)*y1 - (yt-y3)*x1 + x3*yt - xt*y3) / den
	m3 := y3 * ((x2-x1)*yt - (y2-y1)*xt + x1*y2 - x2*y1) /
		(yt * ((x2-x1)*y3 - (y2-y1)*x3 + x1*y2 - x2*y1))

	return Flux3{
		target.Y * m1 / c1.Y,
		target.Y * m2 / c2.Y,
		target.Y * m3 / c3.Y,
	}
}
