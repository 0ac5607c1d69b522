package main

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/cwbudde/algo-spectra/internal/specio"
	"github.com/cwbudde/algo-spectra/spd"
)

func TestUniformStep(t *testing.T) {
	step, ok := uniformStep(spd.Uniform(380, 780, 5))
	if !ok || step != 5 {
		t.Fatalf("uniformStep = %v, %v; want 5, true", step, ok)
	}
	if _, ok := uniformStep(spd.Grid{380, 385, 395}); ok {
		t.Fatalf("irregular grid must not report a step")
	}
	if _, ok := uniformStep(spd.Grid{380}); ok {
		t.Fatalf("single sample has no step")
	}
}

func TestNextPow2(t *testing.T) {
	tests := []struct{ in, want int }{
		{1, 64},
		{64, 64},
		{65, 128},
		{471, 512},
	}
	for _, tt := range tests {
		if got := nextPow2(tt.in); got != tt.want {
			t.Fatalf("nextPow2(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestWindowedRemovesMean(t *testing.T) {
	v := []float64{2, 2, 2, 2}
	out := windowed(v, 8)
	for i, x := range out {
		if x != 0 {
			t.Fatalf("constant input should window to zero, got %g at %d", x, i)
		}
	}
	if len(out) != 8 {
		t.Fatalf("padded length = %d, want 8", len(out))
	}
}

func TestLoadRowSelects(t *testing.T) {
	grid := spd.Uniform(400, 420, 10)
	s, err := spd.New(grid, []float64{1, 2, 3}, []float64{4, 5, 6})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	path := filepath.Join(t.TempDir(), "pair.csv")
	if err := specio.WriteCSV(path, s); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	got, err := loadRow(path, 1)
	if err != nil {
		t.Fatalf("loadRow: %v", err)
	}
	if got.Rows() != 1 {
		t.Fatalf("rows = %d, want 1", got.Rows())
	}
	if got.Row(0)[0] != 4 {
		t.Fatalf("selected the wrong row: %v", got.Row(0))
	}

	if _, err := loadRow(path, 5); err == nil {
		t.Fatalf("expected error for out-of-range row")
	}
	if _, err := loadRow(filepath.Join(t.TempDir(), "missing.csv"), 0); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestAlignedPairNormalizes(t *testing.T) {
	grid := spd.Uniform(400, 440, 10)
	ref, err := spd.New(grid, []float64{1, 4, 2, 1, 0.5})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	test, err := spd.New(grid, []float64{10, 40, 20, 10, 5})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	va, vb, err := alignedPair(ref, test)
	if err != nil {
		t.Fatalf("alignedPair: %v", err)
	}
	for j := range va {
		if math.Abs(va[j]-vb[j]) > 1e-12 {
			t.Fatalf("scaled copies should align exactly, diff at %d: %g vs %g", j, va[j], vb[j])
		}
	}
	if va[1] != 1 {
		t.Fatalf("normalization should pin the max to 1, got %g", va[1])
	}
}
