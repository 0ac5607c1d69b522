package emitter

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-spectra/spd"
)

// PhosphorConfig describes a batch of phosphor-converted LED emitters.
// Every vector broadcasts against PeakWL: give one entry to share a value
// across all rows or one entry per row.
type PhosphorConfig struct {
	PeakWL   []float64 // pump peak per emitter row, nm
	FWHM     []float64 // pump width, nm
	Shoulder []float64 // pump tail weight

	StrengthPh []float64 // phosphor strength relative to the pump; 0 leaves a bare pump

	Ph1Peak     []float64
	Ph1FWHM     []float64
	Ph1Strength []float64
	Ph2Peak     []float64
	Ph2FWHM     []float64
	Ph2Strength []float64 // nil: inferred per row as 1 - Ph1Strength

	// Piecewise gates each row at its own pump peak: below the peak the
	// combined curve is multiplied by the pump lobe (component curves by
	// themselves), at and above the peak the factor is 1.
	Piecewise bool

	Grid spd.Grid
}

// DefaultPhosphorConfig returns the reference emitter defaults: a 450 nm pump
// with two green/yellow phosphor lobes, phosphors disabled.
func DefaultPhosphorConfig() PhosphorConfig {
	return PhosphorConfig{
		PeakWL:      []float64{450},
		FWHM:        []float64{20},
		Shoulder:    []float64{2},
		StrengthPh:  []float64{0},
		Ph1Peak:     []float64{530},
		Ph1FWHM:     []float64{80},
		Ph1Strength: []float64{1},
		Ph2Peak:     []float64{560},
		Ph2FWHM:     []float64{80},
		Piecewise:   true,
		Grid:        spd.DefaultGrid(),
	}
}

// Validate checks vector lengths, widths and strength ranges.
func (c *PhosphorConfig) Validate() error {
	n := len(c.PeakWL)
	if n == 0 {
		return fmt.Errorf("phosphor config needs at least one pump peak")
	}
	if err := c.Grid.Validate(); err != nil {
		return fmt.Errorf("grid: %w", err)
	}
	pumpVecs := []struct {
		name string
		v    []float64
	}{
		{"fwhm", c.FWHM},
		{"shoulder", c.Shoulder},
	}
	for _, vec := range pumpVecs {
		if _, err := broadcast(vec.name, vec.v, n); err != nil {
			return err
		}
	}
	for _, w := range c.FWHM {
		if !(w > 0) {
			return fmt.Errorf("pump fwhm must be positive, got %g", w)
		}
	}
	if c.StrengthPh != nil {
		if _, err := broadcast("strength_ph", c.StrengthPh, n); err != nil {
			return err
		}
		for _, s := range c.StrengthPh {
			if s < 0 {
				return fmt.Errorf("strength_ph must not be negative, got %g", s)
			}
		}
	}
	if !c.HasPhosphors() {
		return nil
	}
	phVecs := []struct {
		name string
		v    []float64
	}{
		{"ph1 peak", c.Ph1Peak},
		{"ph1 fwhm", c.Ph1FWHM},
		{"ph1 strength", c.Ph1Strength},
		{"ph2 peak", c.Ph2Peak},
		{"ph2 fwhm", c.Ph2FWHM},
	}
	for _, vec := range phVecs {
		if _, err := broadcast(vec.name, vec.v, n); err != nil {
			return err
		}
	}
	if c.Ph2Strength != nil {
		if _, err := broadcast("ph2 strength", c.Ph2Strength, n); err != nil {
			return err
		}
	}
	for _, w := range append(append([]float64{}, c.Ph1FWHM...), c.Ph2FWHM...) {
		if !(w > 0) {
			return fmt.Errorf("phosphor fwhm must be positive, got %g", w)
		}
	}
	for i, s := range c.Ph1Strength {
		if s < 0 {
			return fmt.Errorf("ph1 strength must not be negative, got %g", s)
		}
		if c.Ph2Strength == nil && s > 1 {
			return fmt.Errorf("ph1 strength %d is %g; must be <= 1 when ph2 strength is inferred", i, s)
		}
	}
	if c.Ph2Strength != nil {
		for _, s := range c.Ph2Strength {
			if s < 0 {
				return fmt.Errorf("ph2 strength must not be negative, got %g", s)
			}
		}
	}
	return nil
}

// HasPhosphors reports whether any row carries a phosphor contribution.
func (c *PhosphorConfig) HasPhosphors() bool {
	for _, s := range c.StrengthPh {
		if s > 0 {
			return true
		}
	}
	return false
}

// PhosphorResult carries the combined emitter rows plus the per-row component
// curves the mixers work from.
type PhosphorResult struct {
	// SPD has one combined row per emitter, normalized to max 1.
	// Degenerate rows (no energy on the grid) come back as NaN rows.
	SPD *spd.SPD
	// Components holds per emitter either a single pump row or
	// pump/ph1/ph2 rows, each normalized to max 1.
	Components []*spd.SPD
}

// PhosphorLED renders the configured emitter batch.
func PhosphorLED(cfg PhosphorConfig) (*PhosphorResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	n := len(cfg.PeakWL)
	fwhm, _ := broadcast("fwhm", cfg.FWHM, n)
	shoulder, _ := broadcast("shoulder", cfg.Shoulder, n)
	strength := make([]float64, n)
	if cfg.StrengthPh != nil {
		strength, _ = broadcast("strength_ph", cfg.StrengthPh, n)
	}

	pumps, err := MonoLED(cfg.PeakWL, fwhm, shoulder, cfg.Grid)
	if err != nil {
		return nil, err
	}

	withPh := cfg.HasPhosphors()
	var ph1s, ph2s *spd.SPD
	var s1, s2 []float64
	if withPh {
		p1, _ := broadcast("ph1 peak", cfg.Ph1Peak, n)
		f1, _ := broadcast("ph1 fwhm", cfg.Ph1FWHM, n)
		p2, _ := broadcast("ph2 peak", cfg.Ph2Peak, n)
		f2, _ := broadcast("ph2 fwhm", cfg.Ph2FWHM, n)
		s1, _ = broadcast("ph1 strength", cfg.Ph1Strength, n)
		if cfg.Ph2Strength != nil {
			s2, _ = broadcast("ph2 strength", cfg.Ph2Strength, n)
		} else {
			s2 = make([]float64, n)
			for i := range s2 {
				s2[i] = 1 - s1[i]
			}
		}
		one := []float64{1}
		ph1s, err = MonoLED(p1, f1, one, cfg.Grid)
		if err != nil {
			return nil, err
		}
		ph2s, err = MonoLED(p2, f2, one, cfg.Grid)
		if err != nil {
			return nil, err
		}
	}

	combined, err := spd.NewZero(cfg.Grid, n)
	if err != nil {
		return nil, err
	}
	components := make([]*spd.SPD, n)
	for i := 0; i < n; i++ {
		pump := pumps.Row(i)
		row := combined.Values[i]
		if !withPh {
			copy(row, pump)
		} else {
			mix := blendPhosphors(ph1s.Row(i), ph2s.Row(i), s1[i], s2[i])
			s := strength[i]
			for j := range row {
				row[j] = (pump[j] + s*mix[j]) / (1 + s)
			}
		}
		if cfg.Piecewise {
			gateByPump(row, pump, cfg.Grid, cfg.PeakWL[i])
		}

		var comp *spd.SPD
		if withPh {
			comp, err = spd.New(cfg.Grid, pump, ph1s.Row(i), ph2s.Row(i))
		} else {
			comp, err = spd.New(cfg.Grid, pump)
		}
		if err != nil {
			return nil, err
		}
		if cfg.Piecewise {
			for _, crow := range comp.Values {
				gateBySelf(crow, cfg.Grid, cfg.PeakWL[i])
			}
		}
		components[i] = comp.NormalizeMax()
	}
	combined.NormalizeMax()

	return &PhosphorResult{SPD: combined, Components: components}, nil
}

// blendPhosphors mixes two lobes and normalizes the mixture to max 1.
// The blend scale cancels under the normalization, so only the s1:s2 ratio
// matters.
func blendPhosphors(ph1, ph2 []float64, s1, s2 float64) []float64 {
	mix := make([]float64, len(ph1))
	m := math.Inf(-1)
	for j := range mix {
		mix[j] = s1*ph1[j] + s2*ph2[j]
		if mix[j] > m {
			m = mix[j]
		}
	}
	if m > 0 {
		for j := range mix {
			mix[j] /= m
		}
	} else {
		for j := range mix {
			mix[j] = math.NaN()
		}
	}
	return mix
}

func gateByPump(row, pump []float64, grid spd.Grid, peak float64) {
	for j, wl := range grid {
		if wl < peak {
			row[j] *= pump[j]
		}
	}
}

func gateBySelf(row []float64, grid spd.Grid, peak float64) {
	for j, wl := range grid {
		if wl < peak {
			row[j] *= row[j]
		}
	}
}
