package main

import (
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cwbudde/algo-spectra/colorim"
	"github.com/cwbudde/algo-spectra/optimizer"
	"github.com/cwbudde/algo-spectra/preset"
	"github.com/cwbudde/algo-spectra/spd"
)

func TestParseTarget(t *testing.T) {
	tests := []struct {
		in      string
		want    []float64
		wantErr bool
	}{
		{in: "100,0.3333,0.3333", want: []float64{100, 0.3333, 0.3333}},
		{in: " 1 , 2 , 3 ", want: []float64{1, 2, 3}},
		{in: "1,2", wantErr: true},
		{in: "1,2,3,4", wantErr: true},
		{in: "1,two,3", wantErr: true},
	}
	for _, tt := range tests {
		got, err := parseTarget(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("parseTarget(%q) expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("parseTarget(%q) unexpected error: %v", tt.in, err)
		}
		for i := range tt.want {
			if got[i] != tt.want[i] {
				t.Fatalf("parseTarget(%q)[%d] = %v, want %v", tt.in, i, got[i], tt.want[i])
			}
		}
	}
}

func TestBuildObjectivesMapsMetrics(t *testing.T) {
	cmf := colorim.CIE1931()
	specs := []preset.ObjectiveSpec{
		{Metric: "x", Target: 0.33, Weight: 1, Decimals: 5},
		{Metric: "y", Target: 0.33, Weight: 1, Decimals: 5},
		{Metric: "cct", Target: 4000, Weight: 2, Decimals: 0},
		{Metric: "duv", Target: 0, Weight: 1, Decimals: 6},
		{Metric: "ler", Target: 300, Weight: 0.5, Decimals: 1},
		{Metric: "fidelity", Target: 90, Weight: 1, Decimals: 2},
	}
	objs, err := buildObjectives(specs, cmf)
	if err != nil {
		t.Fatalf("buildObjectives: %v", err)
	}
	if len(objs) != len(specs) {
		t.Fatalf("got %d objectives, want %d", len(objs), len(specs))
	}
	for i, o := range objs {
		if o.Name != specs[i].Metric {
			t.Fatalf("objective %d name = %q, want %q", i, o.Name, specs[i].Metric)
		}
		if o.Target != specs[i].Target {
			t.Fatalf("objective %d target = %v, want %v", i, o.Target, specs[i].Target)
		}
		if o.Weight != specs[i].Weight {
			t.Fatalf("objective %d weight = %v, want %v", i, o.Weight, specs[i].Weight)
		}
		if o.Decimals != specs[i].Decimals {
			t.Fatalf("objective %d decimals = %v, want %v", i, o.Decimals, specs[i].Decimals)
		}
		if o.Fn == nil {
			t.Fatalf("objective %d has no metric function", i)
		}
	}
}

func TestBuildObjectivesUnknownMetric(t *testing.T) {
	_, err := buildObjectives([]preset.ObjectiveSpec{{Metric: "sparkle"}}, colorim.CIE1931())
	if !errors.Is(err, preset.ErrUnknownMetric) {
		t.Fatalf("expected ErrUnknownMetric, got %v", err)
	}
}

func TestFloatPtrs(t *testing.T) {
	out := floatPtrs([]float64{1.5, math.NaN(), math.Inf(1)})
	if out[0] == nil || *out[0] != 1.5 {
		t.Fatalf("finite value should survive, got %v", out[0])
	}
	if out[1] != nil {
		t.Fatalf("NaN should become null, got %v", *out[1])
	}
	if out[2] != nil {
		t.Fatalf("Inf should become null, got %v", *out[2])
	}
}

func TestSwatch(t *testing.T) {
	if got := swatch(colorim.Yxy{}); got != "--" {
		t.Fatalf("invalid chromaticity swatch = %q, want --", got)
	}
	got := swatch(colorim.Yxy{Y: 100, Cx: 1.0 / 3.0, Cy: 1.0 / 3.0})
	if !strings.Contains(got, "#") {
		t.Fatalf("swatch should carry a hex code, got %q", got)
	}
}

func TestWriteOutputsReport(t *testing.T) {
	grid := spd.Uniform(400, 420, 10)
	best, err := spd.New(grid, []float64{0.5, 1, 0.25})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	scen := preset.NewDefaultScenario()
	scen.Target = []float64{100, 1.0 / 3.0, 1.0 / 3.0}
	scen.Objectives = []preset.ObjectiveSpec{{Metric: "ler", Target: 300, Weight: 1, Decimals: 5}}
	scen.Seed = 9

	res := &optimizer.Result{
		Flux:   []float64{0.4, math.NaN(), 1.2},
		SPD:    best,
		Target: colorim.Yxy{Y: 100, Cx: 1.0 / 3.0, Cy: 1.0 / 3.0},
		Objectives: []optimizer.ObjectiveValue{
			{Name: "ler", Value: 312.5},
		},
		Evals: 17,
		Minimizer: &optimizer.MinimizeResult{
			Status:    "FunctionConvergence",
			Converged: true,
			FuncEvals: 15,
			F:         0.002,
		},
	}

	tmp := t.TempDir()
	outSPD := filepath.Join(tmp, "fit", "best.csv")
	if err := writeOutputs(outSPD, "", "", scen, res, colorim.Yxy{Y: 90, Cx: 0.34, Cy: 0.33}, 1.25); err != nil {
		t.Fatalf("writeOutputs: %v", err)
	}

	if _, err := os.Stat(outSPD); err != nil {
		t.Fatalf("spectrum CSV missing: %v", err)
	}

	b, err := os.ReadFile(outSPD + ".report.json")
	if err != nil {
		t.Fatalf("report missing: %v", err)
	}
	var rep runReport
	if err := json.Unmarshal(b, &rep); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	if rep.Evaluations != 17 {
		t.Fatalf("evaluations = %d, want 17", rep.Evaluations)
	}
	if rep.Seed != 9 {
		t.Fatalf("seed = %d, want 9", rep.Seed)
	}
	if rep.Mode != optimizer.Mode3Mixer {
		t.Fatalf("mode = %q, want %q", rep.Mode, optimizer.Mode3Mixer)
	}
	if rep.Method != optimizer.MethodNelderMead {
		t.Fatalf("method = %q, want %q", rep.Method, optimizer.MethodNelderMead)
	}
	if len(rep.Flux) != 3 || rep.Flux[1] != nil {
		t.Fatalf("NaN flux should be null in the report, got %+v", rep.Flux)
	}
	if rep.Flux[0] == nil || *rep.Flux[0] != 0.4 {
		t.Fatalf("flux[0] should survive, got %+v", rep.Flux[0])
	}
	if len(rep.Objectives) != 1 || rep.Objectives[0].Metric != "ler" {
		t.Fatalf("objectives = %+v", rep.Objectives)
	}
	if rep.Objectives[0].Target != 300 {
		t.Fatalf("objective target = %v, want 300", rep.Objectives[0].Target)
	}
	if rep.Objectives[0].Value == nil || *rep.Objectives[0].Value != 312.5 {
		t.Fatalf("objective value = %+v, want 312.5", rep.Objectives[0].Value)
	}
	if rep.Minimizer == nil || !rep.Minimizer.Converged || rep.Minimizer.FuncEvals != 15 {
		t.Fatalf("minimizer block = %+v", rep.Minimizer)
	}
}

func TestWriteOutputsExplicitReportPath(t *testing.T) {
	grid := spd.Uniform(400, 420, 10)
	best, err := spd.New(grid, []float64{1, 1, 1})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	scen := preset.NewDefaultScenario()
	scen.Target = []float64{100, 0.3, 0.3}

	tmp := t.TempDir()
	outSPD := filepath.Join(tmp, "best.csv")
	repPath := filepath.Join(tmp, "custom-report.json")
	res := &optimizer.Result{Flux: []float64{1}, SPD: best, Target: colorim.Yxy{Y: 100, Cx: 0.3, Cy: 0.3}}
	if err := writeOutputs(outSPD, repPath, "scen.json", scen, res, colorim.Yxy{}, 0.1); err != nil {
		t.Fatalf("writeOutputs: %v", err)
	}
	if _, err := os.Stat(repPath); err != nil {
		t.Fatalf("custom report path not honored: %v", err)
	}
	var rep runReport
	b, _ := os.ReadFile(repPath)
	if err := json.Unmarshal(b, &rep); err != nil {
		t.Fatalf("report JSON: %v", err)
	}
	if rep.ScenarioPath != "scen.json" {
		t.Fatalf("scenario path = %q", rep.ScenarioPath)
	}
	for i, v := range rep.AchievedYxy {
		if i > 0 && v == nil {
			t.Fatalf("zero chromaticity is finite and should be reported, got null at %d", i)
		}
	}
}
