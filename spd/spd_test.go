package spd

import (
	"math"
	"testing"
)

func TestNewRejectsLengthMismatch(t *testing.T) {
	g := Uniform(400, 404, 1)
	if _, err := New(g, []float64{1, 2, 3}); err == nil {
		t.Fatalf("expected error for row/grid length mismatch")
	}
}

func TestNormalizeMax(t *testing.T) {
	g := Uniform(400, 402, 1)
	s, err := New(g, []float64{0, 2, 1}, []float64{0, 0, 0})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s.NormalizeMax()

	want := []float64{0, 1, 0.5}
	for i, v := range s.Row(0) {
		if math.Abs(v-want[i]) > 1e-12 {
			t.Fatalf("row 0 sample %d: got %g want %g", i, v, want[i])
		}
	}
	if !s.RowHasNaN(1) {
		t.Fatalf("zero row should normalize to a NaN row")
	}
}

func TestRowMaxPoisonedByNaN(t *testing.T) {
	g := Uniform(400, 402, 1)
	s, err := New(g, []float64{1, math.NaN(), 3})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !math.IsNaN(s.RowMax(0)) {
		t.Fatalf("RowMax should be NaN for a row containing NaN")
	}
}

func TestWeightedSumUsesAbsoluteWeights(t *testing.T) {
	g := Uniform(400, 402, 1)
	s, err := New(g, []float64{1, 0, 0}, []float64{0, 1, 0})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	sum, err := s.WeightedSum([]float64{-1, 2})
	if err != nil {
		t.Fatalf("WeightedSum: %v", err)
	}
	want := []float64{1, 2, 0}
	for i, v := range sum.Row(0) {
		if math.Abs(v-want[i]) > 1e-12 {
			t.Fatalf("sample %d: got %g want %g", i, v, want[i])
		}
	}
}

func TestWeightedSumLengthCheck(t *testing.T) {
	g := Uniform(400, 402, 1)
	s, err := New(g, []float64{1, 2, 3})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := s.WeightedSum([]float64{1, 2}); err == nil {
		t.Fatalf("expected error for weight/row count mismatch")
	}
}

func TestSelectRowsAndAppend(t *testing.T) {
	g := Uniform(400, 402, 1)
	s, err := New(g, []float64{1, 1, 1}, []float64{2, 2, 2}, []float64{3, 3, 3})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	sel, err := s.SelectRows([]int{2, 0})
	if err != nil {
		t.Fatalf("SelectRows: %v", err)
	}
	if sel.Rows() != 2 || sel.Row(0)[0] != 3 || sel.Row(1)[0] != 1 {
		t.Fatalf("SelectRows picked wrong rows: %+v", sel.Values)
	}
	if err := sel.AppendRows(s); err != nil {
		t.Fatalf("AppendRows: %v", err)
	}
	if sel.Rows() != 5 {
		t.Fatalf("expected 5 rows after append, got %d", sel.Rows())
	}
}

func TestCloneDoesNotAlias(t *testing.T) {
	g := Uniform(400, 402, 1)
	s, err := New(g, []float64{1, 2, 3})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	c := s.Clone()
	c.Values[0][0] = 99
	if s.Values[0][0] == 99 {
		t.Fatalf("clone aliases source storage")
	}
}
