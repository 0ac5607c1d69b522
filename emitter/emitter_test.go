package emitter

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-spectra/spd"
)

func TestGaussianPeakAndSymmetry(t *testing.T) {
	grid := spd.Uniform(400, 600, 1)
	g, err := Gaussian([]float64{500}, []float64{20}, grid)
	if err != nil {
		t.Fatalf("Gaussian: %v", err)
	}
	row := g.Row(0)
	at := func(wl float64) float64 { return row[int(wl-400)] }

	if at(500) != 1 {
		t.Fatalf("peak value should be 1, got %g", at(500))
	}
	if math.Abs(at(490)-at(510)) > 1e-12 {
		t.Fatalf("lobe not symmetric: %g vs %g", at(490), at(510))
	}
	want := math.Exp(-0.5)
	if math.Abs(at(480)-want) > 1e-12 {
		t.Fatalf("one-sigma value: got %g want %g", at(480), want)
	}
}

func TestGaussianBroadcast(t *testing.T) {
	grid := spd.Uniform(400, 700, 1)
	g, err := Gaussian([]float64{450, 550}, []float64{20}, grid)
	if err != nil {
		t.Fatalf("Gaussian: %v", err)
	}
	if g.Rows() != 2 {
		t.Fatalf("expected 2 rows, got %d", g.Rows())
	}
	if g.Row(1)[150] != 1 {
		t.Fatalf("second row should peak at 550 nm, got %g there", g.Row(1)[150])
	}
}

func TestGaussianRejectsBadInput(t *testing.T) {
	grid := spd.Uniform(400, 500, 1)
	if _, err := Gaussian(nil, []float64{20}, grid); err == nil {
		t.Fatalf("expected error for empty peaks")
	}
	if _, err := Gaussian([]float64{450}, []float64{0}, grid); err == nil {
		t.Fatalf("expected error for zero fwhm")
	}
	if _, err := Gaussian([]float64{450, 460}, []float64{20, 20, 20}, grid); err == nil {
		t.Fatalf("expected error for unbroadcastable fwhm")
	}
}

func TestMonoLEDShape(t *testing.T) {
	grid := spd.Uniform(400, 600, 1)
	m, err := MonoLED([]float64{500}, []float64{20}, []float64{2}, grid)
	if err != nil {
		t.Fatalf("MonoLED: %v", err)
	}
	row := m.Row(0)

	if row[100] != 1 {
		t.Fatalf("peak value should be 1 before any normalization, got %g", row[100])
	}
	g := math.Exp(-0.5)
	want := (g + 2*math.Pow(g, 5)) / 3
	if math.Abs(row[80]-want) > 1e-12 {
		t.Fatalf("shoulder blend at one sigma: got %g want %g", row[80], want)
	}
	for i, v := range row {
		if v < 0 {
			t.Fatalf("negative sample at index %d: %g", i, v)
		}
	}
}

func TestMonoLEDShoulderWeighting(t *testing.T) {
	grid := spd.Uniform(400, 600, 1)
	light, err := MonoLED([]float64{500}, []float64{20}, []float64{0}, grid)
	if err != nil {
		t.Fatalf("MonoLED: %v", err)
	}
	heavy, err := MonoLED([]float64{500}, []float64{20}, []float64{5}, grid)
	if err != nil {
		t.Fatalf("MonoLED: %v", err)
	}
	// g^5 < g off peak, so a heavier shoulder thins the flanks.
	if heavy.Row(0)[80] >= light.Row(0)[80] {
		t.Fatalf("expected heavier shoulder to reduce flank value: %g vs %g",
			heavy.Row(0)[80], light.Row(0)[80])
	}
}
