// Package spdplot renders spectra and chromaticity diagrams to image
// files.
package spdplot

import (
	"fmt"
	"image/color"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/cwbudde/algo-spectra/colorim"
	"github.com/cwbudde/algo-spectra/spd"
)

// SaveSPD writes a line chart with one curve per spectrum row. Labels
// are optional; missing entries fall back to s1, s2 and so on. The
// output format follows the file extension.
func SaveSPD(s *spd.SPD, labels []string, title, path string) error {
	if s == nil || s.Rows() == 0 {
		return fmt.Errorf("nothing to plot")
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "wavelength (nm)"
	p.Y.Label.Text = "relative power"

	for i := 0; i < s.Rows(); i++ {
		xys := rowXYs(s, i)
		if len(xys) == 0 {
			continue
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return err
		}
		line.LineStyle.Width = vg.Points(1.5)
		line.LineStyle.Color = rowColor(s, i)
		p.Add(line)
		p.Legend.Add(rowLabel(labels, i), line)
	}
	p.Legend.Top = true
	return p.Save(7*vg.Inch, 4*vg.Inch, path)
}

// SaveChromaticity writes a CIE 1931 xy diagram with the spectral
// locus, the component points, their gamut outline and an optional
// target marker.
func SaveChromaticity(components []colorim.Yxy, target *colorim.Yxy, title, path string) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"
	p.X.Min, p.X.Max = 0, 0.8
	p.Y.Min, p.Y.Max = 0, 0.9

	locus, err := plotter.NewLine(locusXYs())
	if err != nil {
		return err
	}
	locus.LineStyle.Color = color.Gray{Y: 0x99}
	p.Add(locus)

	gamut := make(plotter.XYs, 0, len(components)+1)
	for _, c := range components {
		if !c.Valid() {
			continue
		}
		gamut = append(gamut, plotter.XY{X: c.Cx, Y: c.Cy})
	}
	if len(gamut) >= 2 {
		outline := append(gamut, gamut[0])
		edge, err := plotter.NewLine(outline)
		if err != nil {
			return err
		}
		edge.LineStyle.Color = color.Gray{Y: 0x55}
		edge.LineStyle.Dashes = []vg.Length{vg.Points(3), vg.Points(2)}
		p.Add(edge)
	}

	for _, c := range components {
		if !c.Valid() {
			continue
		}
		pt, err := plotter.NewScatter(plotter.XYs{{X: c.Cx, Y: c.Cy}})
		if err != nil {
			return err
		}
		pt.GlyphStyle.Shape = draw.CircleGlyph{}
		pt.GlyphStyle.Radius = vg.Points(4)
		pt.GlyphStyle.Color = colorful.Xyy(c.Cx, c.Cy, 0.5).Clamped()
		p.Add(pt)
	}

	if target != nil && target.Valid() {
		tgt, err := plotter.NewScatter(plotter.XYs{{X: target.Cx, Y: target.Cy}})
		if err != nil {
			return err
		}
		tgt.GlyphStyle.Shape = draw.CrossGlyph{}
		tgt.GlyphStyle.Radius = vg.Points(5)
		tgt.GlyphStyle.Color = color.Black
		p.Add(tgt)
	}
	return p.Save(5.5*vg.Inch, 5.5*vg.Inch, path)
}

// WavelengthColor approximates the display color of a monochromatic
// stimulus, pulled toward white far enough to stay inside sRGB.
func WavelengthColor(wl float64) color.Color {
	cmf := colorim.CIE1931()
	first, last := cmf.WL[0], cmf.WL[len(cmf.WL)-1]
	if wl < first {
		wl = first
	}
	if wl > last {
		wl = last
	}
	step := cmf.WL[1] - cmf.WL[0]
	idx := int(math.Round((wl - first) / step))
	sum := cmf.X[idx] + cmf.Y[idx] + cmf.Z[idx]
	if sum <= 0 {
		return color.Gray{Y: 0x80}
	}
	const sat = 0.85
	cx := 1.0/3.0 + sat*(cmf.X[idx]/sum-1.0/3.0)
	cy := 1.0/3.0 + sat*(cmf.Y[idx]/sum-1.0/3.0)
	return colorful.Xyy(cx, cy, 0.45).Clamped()
}

func rowXYs(s *spd.SPD, row int) plotter.XYs {
	xys := make(plotter.XYs, 0, s.Samples())
	for j, wl := range s.WL {
		v := s.Values[row][j]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		xys = append(xys, plotter.XY{X: wl, Y: v})
	}
	return xys
}

func rowLabel(labels []string, i int) string {
	if i < len(labels) && labels[i] != "" {
		return labels[i]
	}
	return fmt.Sprintf("s%d", i+1)
}

func rowColor(s *spd.SPD, row int) color.Color {
	best, bestV := s.WL[0], math.Inf(-1)
	for j, wl := range s.WL {
		if v := s.Values[row][j]; v > bestV {
			bestV = v
			best = wl
		}
	}
	return WavelengthColor(best)
}
