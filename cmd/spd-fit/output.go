package main

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/cwbudde/algo-spectra/colorim"
	"github.com/cwbudde/algo-spectra/internal/specio"
	"github.com/cwbudde/algo-spectra/optimizer"
	"github.com/cwbudde/algo-spectra/preset"
	"github.com/cwbudde/algo-spectra/spd"
	"github.com/cwbudde/algo-spectra/spdplot"
)

// Non-finite numbers are not valid JSON, so every value that can turn
// NaN on an out-of-gamut result is reported through a nullable pointer.
type runReport struct {
	ScenarioPath  string            `json:"scenario_path,omitempty"`
	ComponentsCSV string            `json:"components_csv,omitempty"`
	OutputSPD     string            `json:"output_spd"`
	Mode          string            `json:"mode"`
	Method        string            `json:"method"`
	Seed          int64             `json:"seed"`
	ElapsedSec    float64           `json:"elapsed_seconds"`
	Evaluations   int               `json:"evaluations"`
	OutOfGamut    bool              `json:"out_of_gamut"`
	TargetSpace   string            `json:"target_space"`
	TargetInput   []float64         `json:"target_input"`
	TargetYxy     []*float64        `json:"target_yxy"`
	AchievedYxy   []*float64        `json:"achieved_yxy"`
	Flux          []*float64        `json:"flux"`
	Objectives    []objectiveReport `json:"objectives,omitempty"`
	Minimizer     *minimizerReport  `json:"minimizer,omitempty"`
}

type objectiveReport struct {
	Metric string   `json:"metric"`
	Target float64  `json:"target"`
	Value  *float64 `json:"value"`
}

type minimizerReport struct {
	Status    string   `json:"status"`
	Converged bool     `json:"converged"`
	FuncEvals int      `json:"func_evals"`
	BestScore *float64 `json:"best_score"`
}

func writeOutputs(outputSPD, reportPath, scenarioPath string, scen *preset.Scenario, res *optimizer.Result, achieved colorim.Yxy, elapsed float64) error {
	if err := specio.WriteCSV(outputSPD, res.SPD); err != nil {
		return err
	}

	space := scen.TargetSpace
	if space == "" {
		space = colorim.SpaceYxy
	}
	rep := runReport{
		ScenarioPath:  scenarioPath,
		ComponentsCSV: scen.ComponentsCSV,
		OutputSPD:     outputSPD,
		Mode:          modeName(scen.Mode),
		Method:        methodName(scen.Method),
		Seed:          scen.Seed,
		ElapsedSec:    elapsed,
		Evaluations:   res.Evals,
		OutOfGamut:    res.OutOfGamut,
		TargetSpace:   space,
		TargetInput:   scen.Target,
		TargetYxy:     floatPtrs([]float64{res.Target.Y, res.Target.Cx, res.Target.Cy}),
		AchievedYxy:   floatPtrs([]float64{achieved.Y, achieved.Cx, achieved.Cy}),
		Flux:          floatPtrs(res.Flux),
	}
	for i, o := range res.Objectives {
		var target float64
		if i < len(scen.Objectives) {
			target = scen.Objectives[i].Target
		}
		rep.Objectives = append(rep.Objectives, objectiveReport{
			Metric: o.Name,
			Target: target,
			Value:  floatPtr(o.Value),
		})
	}
	if res.Minimizer != nil {
		rep.Minimizer = &minimizerReport{
			Status:    res.Minimizer.Status,
			Converged: res.Minimizer.Converged,
			FuncEvals: res.Minimizer.FuncEvals,
			BestScore: floatPtr(res.Minimizer.F),
		}
	}

	if reportPath == "" {
		reportPath = outputSPD + ".report.json"
	}
	return writeJSON(reportPath, rep)
}

func writePlots(plotSPD, plotDiagram string, components *spd.SPD, res *optimizer.Result, cmf *colorim.CMF) error {
	if plotSPD != "" {
		all, labels, err := plotRows(components, res)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(plotSPD), 0o755); err != nil {
			return err
		}
		if err := spdplot.SaveSPD(all, labels, "fitted spectrum", plotSPD); err != nil {
			return err
		}
	}
	if plotDiagram != "" {
		comps := components
		if comps == nil {
			comps = res.SPD
		}
		chrom, err := colorim.SpdChromaticity(comps, cmf)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(plotDiagram), 0o755); err != nil {
			return err
		}
		target := res.Target
		if err := spdplot.SaveChromaticity(chrom, &target, "component gamut", plotDiagram); err != nil {
			return err
		}
	}
	return nil
}

// plotRows stacks the normalized component rows under the best spectrum
// so a single chart shows what was mixed from what.
func plotRows(components *spd.SPD, res *optimizer.Result) (*spd.SPD, []string, error) {
	out := res.SPD.Clone()
	labels := []string{"best"}
	if components != nil {
		norm := components.Clone().NormalizeMax()
		if err := out.AppendRows(norm); err != nil {
			return nil, nil, err
		}
		for i := 0; i < norm.Rows(); i++ {
			labels = append(labels, fmt.Sprintf("component %d", i+1))
		}
	}
	return out, labels, nil
}

// swatch renders a terminal color block for a chromaticity point.
func swatch(c colorim.Yxy) string {
	if !c.Valid() {
		return "--"
	}
	col := colorful.Xyy(c.Cx, c.Cy, 0.5).Clamped()
	r, g, b := col.RGB255()
	hex := fmt.Sprintf("#%02X%02X%02X", r, g, b)
	return lipgloss.NewStyle().Foreground(lipgloss.Color(hex)).Render("██") + hex
}

func modeName(mode string) string {
	if mode == "" {
		return optimizer.Mode3Mixer
	}
	return mode
}

func floatPtr(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func floatPtrs(vals []float64) []*float64 {
	out := make([]*float64, len(vals))
	for i, v := range vals {
		out[i] = floatPtr(v)
	}
	return out
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	return os.WriteFile(path, b, 0o644)
}
