package optimizer

import (
	"math"
	"math/rand"
	"strings"
	"testing"
)

func TestNewMayflyConfig(t *testing.T) {
	tests := []struct {
		variant string
		wantErr bool
	}{
		{variant: "ma"},
		{variant: "desma"},
		{variant: "olce"},
		{variant: "eobbma"},
		{variant: "gsasma"},
		{variant: "mpma"},
		{variant: "aoblmoa"},
		{variant: "bogus", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.variant, func(t *testing.T) {
			cfg, err := newMayflyConfig(tt.variant, 10, 5, 20)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("newMayflyConfig(%q) expected error", tt.variant)
				}
				return
			}
			if err != nil {
				t.Fatalf("newMayflyConfig(%q) unexpected error: %v", tt.variant, err)
			}
			if cfg.ProblemSize != 5 {
				t.Fatalf("ProblemSize = %d, want 5", cfg.ProblemSize)
			}
			if cfg.NPop != 10 || cfg.NPopF != 10 {
				t.Fatalf("populations = %d/%d, want 10/10", cfg.NPop, cfg.NPopF)
			}
			if cfg.NC != 20 {
				t.Fatalf("NC = %d, want 20", cfg.NC)
			}
			if cfg.NM != 1 {
				t.Fatalf("NM = %d, want 1", cfg.NM)
			}
			if cfg.MaxIterations != 20 {
				t.Fatalf("MaxIterations = %d, want 20", cfg.MaxIterations)
			}
		})
	}
}

func TestMinimizeNelderMeadQuadratic(t *testing.T) {
	fn := func(x []float64) float64 {
		var sum float64
		for _, v := range x {
			d := v - 0.3
			sum += d * d
		}
		return sum
	}
	res, err := Minimize(fn, []float64{0.9, 0.9}, MethodNelderMead, MinimizeOptions{FTol: 1e-9})
	if err != nil {
		t.Fatalf("Minimize: %v", err)
	}
	if res.F > 1e-6 {
		t.Fatalf("F = %g, want near zero", res.F)
	}
	for i, v := range res.X {
		if math.Abs(v-0.3) > 1e-3 {
			t.Fatalf("X[%d] = %g, want 0.3", i, v)
		}
	}
	if !res.Converged {
		t.Fatalf("quadratic search should converge, status %q", res.Status)
	}
	if res.FuncEvals <= 0 {
		t.Fatalf("FuncEvals = %d", res.FuncEvals)
	}
}

func TestMinimizeReportsBestSeen(t *testing.T) {
	fn := func(x []float64) float64 {
		d := x[0] - 0.5
		return d*d + 0.25
	}
	res, err := Minimize(fn, []float64{0.1}, "", MinimizeOptions{})
	if err != nil {
		t.Fatalf("Minimize: %v", err)
	}
	if got := fn(res.X); got != res.F {
		t.Fatalf("F = %g but fn(X) = %g", res.F, got)
	}
}

func TestMinimizeMayflyNeverWorseThanSeed(t *testing.T) {
	fn := func(x []float64) float64 {
		var sum float64
		for _, v := range x {
			sum += v * v
		}
		return sum
	}
	x0 := []float64{0, 0, 0}
	res, err := Minimize(fn, x0, "ma", MinimizeOptions{
		MaxIterations: 3,
		Population:    4,
		Rng:           rand.New(rand.NewSource(7)),
	})
	if err != nil {
		t.Fatalf("Minimize: %v", err)
	}
	if res.F != 0 {
		t.Fatalf("seed is the global minimum, F = %g", res.F)
	}
	for i, v := range res.X {
		if v != 0 {
			t.Fatalf("X[%d] = %g, want 0", i, v)
		}
	}
	if res.Converged {
		t.Fatalf("swarm runs never report convergence")
	}
	if !strings.Contains(res.Status, "ma") {
		t.Fatalf("status %q should name the variant", res.Status)
	}
	if res.FuncEvals < 1 {
		t.Fatalf("FuncEvals = %d", res.FuncEvals)
	}
}

func TestMinimizeUnknownMethod(t *testing.T) {
	fn := func(x []float64) float64 { return x[0] }
	_, err := Minimize(fn, []float64{0.5}, "annealing", MinimizeOptions{})
	if err == nil {
		t.Fatalf("expected error for unknown method")
	}
	if !strings.Contains(err.Error(), "annealing") {
		t.Fatalf("error should name the method: %v", err)
	}
}

func TestMinimizeValidation(t *testing.T) {
	if _, err := Minimize(nil, []float64{1}, "", MinimizeOptions{}); err == nil {
		t.Fatalf("nil objective accepted")
	}
	fn := func(x []float64) float64 { return 0 }
	if _, err := Minimize(fn, nil, "", MinimizeOptions{}); err == nil {
		t.Fatalf("empty start vector accepted")
	}
	_, err := Minimize(fn, []float64{0.5}, "ma", MinimizeOptions{Lower: 0.4, Upper: 0.2})
	if err == nil {
		t.Fatalf("inverted bounds accepted")
	}
}
