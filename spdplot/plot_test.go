package spdplot

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/cwbudde/algo-spectra/colorim"
	"github.com/cwbudde/algo-spectra/emitter"
	"github.com/cwbudde/algo-spectra/spd"
)

func testComponents(t *testing.T) *spd.SPD {
	t.Helper()
	s, err := emitter.MonoLED([]float64{450, 530, 620}, []float64{20}, []float64{2}, spd.DefaultGrid())
	if err != nil {
		t.Fatalf("MonoLED: %v", err)
	}
	return s
}

func TestSaveSPDWritesFile(t *testing.T) {
	s := testComponents(t)
	path := filepath.Join(t.TempDir(), "components.png")
	if err := SaveSPD(s, []string{"blue", "green"}, "components", path); err != nil {
		t.Fatalf("SaveSPD: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size() == 0 {
		t.Fatalf("empty plot file")
	}
}

func TestSaveSPDSkipsNaNSamples(t *testing.T) {
	s := testComponents(t)
	s.Values[0][10] = math.NaN()
	path := filepath.Join(t.TempDir(), "holes.png")
	if err := SaveSPD(s, nil, "holes", path); err != nil {
		t.Fatalf("SaveSPD: %v", err)
	}
}

func TestSaveSPDRejectsEmpty(t *testing.T) {
	if err := SaveSPD(nil, nil, "empty", "unused.png"); err == nil {
		t.Fatalf("expected error for nil spectrum")
	}
	if err := SaveSPD(&spd.SPD{WL: spd.DefaultGrid()}, nil, "empty", "unused.png"); err == nil {
		t.Fatalf("expected error for zero rows")
	}
}

func TestSaveChromaticityWritesFile(t *testing.T) {
	s := testComponents(t)
	cmf, err := colorim.CIE1931().OnGrid(s.WL)
	if err != nil {
		t.Fatalf("OnGrid: %v", err)
	}
	chrom, err := colorim.SpdChromaticity(s, cmf)
	if err != nil {
		t.Fatalf("SpdChromaticity: %v", err)
	}
	target := colorim.Yxy{Y: 100, Cx: 1.0 / 3.0, Cy: 1.0 / 3.0}
	path := filepath.Join(t.TempDir(), "diagram.png")
	if err := SaveChromaticity(chrom, &target, "gamut", path); err != nil {
		t.Fatalf("SaveChromaticity: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size() == 0 {
		t.Fatalf("empty plot file")
	}
}

func TestSaveChromaticityNoTarget(t *testing.T) {
	path := filepath.Join(t.TempDir(), "locus.png")
	if err := SaveChromaticity(nil, nil, "locus", path); err != nil {
		t.Fatalf("SaveChromaticity: %v", err)
	}
}

func TestWavelengthColorHue(t *testing.T) {
	red, ok := WavelengthColor(650).(colorful.Color)
	if !ok {
		t.Fatalf("expected colorful.Color")
	}
	blue, ok := WavelengthColor(450).(colorful.Color)
	if !ok {
		t.Fatalf("expected colorful.Color")
	}
	if red.R <= red.B {
		t.Fatalf("650 nm should lean red, got %+v", red)
	}
	if blue.B <= blue.R {
		t.Fatalf("450 nm should lean blue, got %+v", blue)
	}
	out := WavelengthColor(10)
	if _, _, _, a := out.RGBA(); a == 0 {
		t.Fatalf("out-of-table wavelength should still produce a color")
	}
}
