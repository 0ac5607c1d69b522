package colorim

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-spectra/spd"
)

// Maximum luminous efficacy of radiation, lm/W.
const Km = 683.0

// XYZ is a tristimulus triple.
type XYZ struct {
	X, Y, Z float64
}

// Yxy is luminance Y plus (x, y) chromaticity.
type Yxy struct {
	Y  float64
	Cx float64
	Cy float64
}

// UV is a CIE 1960 uniform chromaticity pair.
type UV struct {
	U, V float64
}

// Yxy converts tristimulus values to luminance + chromaticity.
// A zero tristimulus sum yields NaN chromaticities.
func (t XYZ) Yxy() Yxy {
	s := t.X + t.Y + t.Z
	return Yxy{Y: t.Y, Cx: t.X / s, Cy: t.Y / s}
}

// UV1960 converts tristimulus values to CIE 1960 uv.
func (t XYZ) UV1960() UV {
	d := t.X + 15*t.Y + 3*t.Z
	return UV{U: 4 * t.X / d, V: 6 * t.Y / d}
}

// XYZ converts luminance + chromaticity back to tristimulus values.
func (c Yxy) XYZ() XYZ {
	return XYZ{
		X: c.Cx * c.Y / c.Cy,
		Y: c.Y,
		Z: (1 - c.Cx - c.Cy) * c.Y / c.Cy,
	}
}

// Valid reports whether luminance and chromaticity are finite and usable.
func (c Yxy) Valid() bool {
	return isFinite(c.Y) && isFinite(c.Cx) && isFinite(c.Cy) && c.Cy != 0
}

// UV1960 converts chromaticity to CIE 1960 uv.
func (c Yxy) UV1960() UV {
	d := -2*c.Cx + 12*c.Cy + 3
	return UV{U: 4 * c.Cx / d, V: 6 * c.Cy / d}
}

// UVPrime returns CIE 1976 u'v' for the chromaticity.
func (c Yxy) UVPrime() (float64, float64) {
	uv := c.UV1960()
	return uv.U, 1.5 * uv.V
}

// YxyFromUV converts CIE 1960 uv plus luminance back to Yxy.
func YxyFromUV(y float64, uv UV) Yxy {
	d := 2*uv.U - 8*uv.V + 4
	return Yxy{Y: y, Cx: 3 * uv.U / d, Cy: 2 * uv.V / d}
}

// SpdToXYZ integrates SPD rows against the matching functions. The CMF must
// already be on the SPD grid (see CMF.OnGrid). Absolute mode scales by Km so
// Y is in lumens per radiometric unit; relative mode rescales each row to
// Y = 100.
func SpdToXYZ(s *spd.SPD, cmf *CMF, relative bool) ([]XYZ, error) {
	if !s.WL.Equal(cmf.WL) {
		return nil, fmt.Errorf("spd sampled on a different grid than the cmf (%d vs %d samples)", s.Samples(), len(cmf.WL))
	}
	w := s.WL.Widths()
	out := make([]XYZ, s.Rows())
	for i, row := range s.Values {
		var x, y, z float64
		for j, v := range row {
			x += cmf.X[j] * v * w[j]
			y += cmf.Y[j] * v * w[j]
			z += cmf.Z[j] * v * w[j]
		}
		t := XYZ{X: Km * x, Y: Km * y, Z: Km * z}
		if relative {
			k := 100 / t.Y
			t = XYZ{X: k * t.X, Y: 100, Z: k * t.Z}
		}
		out[i] = t
	}
	return out, nil
}

// SpdChromaticity is a convenience wrapper returning one Yxy per row.
func SpdChromaticity(s *spd.SPD, cmf *CMF) ([]Yxy, error) {
	xyz, err := SpdToXYZ(s, cmf, false)
	if err != nil {
		return nil, err
	}
	out := make([]Yxy, len(xyz))
	for i, t := range xyz {
		out[i] = t.Yxy()
	}
	return out, nil
}

// Space labels accepted by Transform.
const (
	SpaceYxy = "Yxy"
	SpaceYuv = "Yuv"
	SpaceXYZ = "XYZ"
	SpaceCCT = "cct"
)

// ErrUnknownSpace marks an unrecognized color-space label.
var ErrUnknownSpace = errors.New("unknown color space")

// Transform converts a value triple between named spaces. Triples are
// (Y, x, y) for Yxy, (Y, u', v') for Yuv, (X, Y, Z) for XYZ and
// (Y, CCT, Duv) for cct.
func Transform(vals [3]float64, from, to string) ([3]float64, error) {
	if from == to {
		return vals, nil
	}
	c, err := toYxy(vals, from)
	if err != nil {
		return vals, err
	}
	return fromYxy(c, to)
}

func toYxy(vals [3]float64, space string) (Yxy, error) {
	switch space {
	case SpaceYxy:
		return Yxy{Y: vals[0], Cx: vals[1], Cy: vals[2]}, nil
	case SpaceXYZ:
		return XYZ{X: vals[0], Y: vals[1], Z: vals[2]}.Yxy(), nil
	case SpaceYuv:
		up, vp := vals[1], vals[2]
		return YxyFromUV(vals[0], UV{U: up, V: vp / 1.5}), nil
	case SpaceCCT:
		return YxyAtCCT(vals[1], vals[2], vals[0])
	default:
		return Yxy{}, fmt.Errorf("%w: %q", ErrUnknownSpace, space)
	}
}

func fromYxy(c Yxy, space string) ([3]float64, error) {
	switch space {
	case SpaceYxy:
		return [3]float64{c.Y, c.Cx, c.Cy}, nil
	case SpaceXYZ:
		t := c.XYZ()
		return [3]float64{t.X, t.Y, t.Z}, nil
	case SpaceYuv:
		up, vp := c.UVPrime()
		return [3]float64{c.Y, up, vp}, nil
	case SpaceCCT:
		cct, duv, err := CCTOf(c)
		if err != nil {
			return [3]float64{}, err
		}
		return [3]float64{c.Y, cct, duv}, nil
	default:
		return [3]float64{}, fmt.Errorf("%w: %q", ErrUnknownSpace, space)
	}
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
