package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cwbudde/algo-spectra/colorim"
	"github.com/cwbudde/algo-spectra/internal/specio"
	"github.com/cwbudde/algo-spectra/optimizer"
	"github.com/cwbudde/algo-spectra/preset"
	"github.com/cwbudde/algo-spectra/spd"
)

func main() {
	scenarioPath := flag.String("scenario", "", "Scenario JSON path (empty uses built-in defaults)")
	componentsCSV := flag.String("components", "", "Component SPD CSV path (overrides the scenario source)")
	targetFlag := flag.String("target", "", "Comma-separated target values, e.g. 100,0.3333,0.3333 (overrides scenario)")
	targetSpace := flag.String("target-space", "", "Target space: Yxy|Yuv|XYZ|cct (overrides scenario)")
	mode := flag.String("mode", "", "Optimizer mode (overrides scenario)")
	method := flag.String("method", "", "Minimizer: nelder-mead or a mayfly variant ma|desma|olce|eobbma|gsasma|mpma|aoblmoa")
	maxEvals := flag.Int("max-evals", 0, "Maximum objective evaluations (0 uses scenario)")
	seed := flag.Int64("seed", 0, "Random seed (0 uses scenario)")
	outputSPD := flag.String("output-spd", "out/fit/best-spd.csv", "Path to write the best spectrum CSV")
	reportPath := flag.String("report", "", "Report JSON path (default: <output-spd>.report.json)")
	plotSPD := flag.String("plot-spd", "", "Optional PNG path for the component and result spectra")
	plotDiagram := flag.String("plot-diagram", "", "Optional PNG path for the chromaticity diagram")
	verbosity := flag.Int("verbosity", -1, "Warning verbosity (<0 uses scenario)")
	flag.Parse()

	if *outputSPD == "" {
		die("output-spd must not be empty")
	}

	scen := preset.NewDefaultScenario()
	if *scenarioPath != "" {
		var err error
		scen, err = preset.LoadJSON(*scenarioPath)
		if err != nil {
			die("failed to load scenario: %v", err)
		}
	}
	if *componentsCSV != "" {
		scen.ComponentsCSV = *componentsCSV
		scen.Emitter = nil
	}
	if *targetFlag != "" {
		vals, err := parseTarget(*targetFlag)
		if err != nil {
			die("invalid -target: %v", err)
		}
		scen.Target = vals
	}
	if *targetSpace != "" {
		scen.TargetSpace = *targetSpace
	}
	if *mode != "" {
		scen.Mode = *mode
	}
	if *method != "" {
		scen.Method = *method
	}
	if *maxEvals > 0 {
		scen.MaxFuncEvals = *maxEvals
	}
	if *seed != 0 {
		scen.Seed = *seed
	}
	if *verbosity >= 0 {
		scen.Verbosity = *verbosity
	}

	if len(scen.Target) == 0 {
		die("no target set: give -target or a scenario with one")
	}

	var components *spd.SPD
	switch {
	case scen.ComponentsCSV != "":
		var err error
		components, err = specio.ReadCSV(scen.ComponentsCSV)
		if err != nil {
			die("failed to read components: %v", err)
		}
	case scen.Emitter == nil:
		die("scenario has neither emitter channels nor a components CSV")
	}

	grid := scen.Grid
	if components != nil {
		grid = components.WL
	} else if len(scen.Emitter.Grid) > 0 {
		grid = scen.Emitter.Grid
	}
	cmf, err := colorim.CIE1931().OnGrid(grid)
	if err != nil {
		die("failed to resample observer: %v", err)
	}

	objectives, err := buildObjectives(scen.Objectives, cmf)
	if err != nil {
		die("invalid objectives: %v", err)
	}

	start := time.Now()
	res, err := optimizer.Optimize(optimizer.Config{
		Components:  components,
		Emitter:     scen.Emitter,
		Target:      scen.Target,
		TargetSpace: scen.TargetSpace,
		Mode:        scen.Mode,
		Objectives:  objectives,
		Method:      scen.Method,
		Search: optimizer.MinimizeOptions{
			MaxIterations: scen.MaxIterations,
			MaxFuncEvals:  scen.MaxFuncEvals,
			FTol:          scen.FTol,
			Population:    scen.Population,
			Rng:           rand.New(rand.NewSource(scen.Seed)),
		},
		CMF:       cmf,
		Verbosity: scen.Verbosity,
	})
	if err != nil {
		die("optimization failed: %v", err)
	}
	elapsed := time.Since(start).Seconds()

	achieved := achievedChromaticity(res, cmf)
	if err := writeOutputs(*outputSPD, *reportPath, *scenarioPath, scen, res, achieved, elapsed); err != nil {
		die("failed to write outputs: %v", err)
	}
	if err := writePlots(*plotSPD, *plotDiagram, components, res, cmf); err != nil {
		die("failed to write plots: %v", err)
	}

	fmt.Printf("Done evals=%d elapsed=%.1fs method=%s target=%s achieved=%s\n",
		res.Evals, elapsed, methodName(scen.Method), swatch(res.Target), swatch(achieved))
}

// parseTarget splits a comma-separated value triple.
func parseTarget(raw string) ([]float64, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 3 {
		return nil, fmt.Errorf("want 3 comma-separated values, got %d", len(parts))
	}
	out := make([]float64, 3)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("value %d: %v", i, err)
		}
		out[i] = v
	}
	return out, nil
}

// buildObjectives maps resolved scenario objectives onto their metric
// functions.
func buildObjectives(specs []preset.ObjectiveSpec, cmf *colorim.CMF) ([]optimizer.Objective, error) {
	out := make([]optimizer.Objective, 0, len(specs))
	for _, s := range specs {
		var o optimizer.Objective
		switch s.Metric {
		case "x":
			o = optimizer.ObjectiveChromX(cmf, s.Target)
		case "y":
			o = optimizer.ObjectiveChromY(cmf, s.Target)
		case "cct":
			o = optimizer.ObjectiveCCT(cmf, s.Target)
		case "duv":
			o = optimizer.ObjectiveDuv(cmf, s.Target)
		case "ler":
			o = optimizer.ObjectiveLER(cmf, s.Target)
		case "fidelity":
			o = optimizer.ObjectiveFidelity(cmf, s.Target)
		default:
			return nil, fmt.Errorf("%w %q", preset.ErrUnknownMetric, s.Metric)
		}
		o.Weight = s.Weight
		o.Decimals = s.Decimals
		out = append(out, o)
	}
	return out, nil
}

// achievedChromaticity reads the chromaticity of the best spectrum.
// Invalid results come back as a zero-luminance point.
func achievedChromaticity(res *optimizer.Result, cmf *colorim.CMF) colorim.Yxy {
	if res.SPD == nil || res.SPD.Rows() == 0 {
		return colorim.Yxy{}
	}
	chrom, err := colorim.SpdChromaticity(res.SPD, cmf)
	if err != nil || len(chrom) == 0 {
		return colorim.Yxy{}
	}
	return chrom[0]
}

func methodName(method string) string {
	if method == "" {
		return optimizer.MethodNelderMead
	}
	return strings.ToLower(method)
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
