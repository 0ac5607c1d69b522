package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-spectra/colorim"
	"github.com/cwbudde/algo-spectra/emitter"
	"github.com/cwbudde/algo-spectra/internal/specio"
	"github.com/cwbudde/algo-spectra/preset"
	"github.com/cwbudde/algo-spectra/spd"
	"github.com/cwbudde/algo-spectra/spdbuild"
	"github.com/cwbudde/algo-spectra/spdplot"
)

func main() {
	scenarioPath := flag.String("scenario", "", "Scenario JSON path with emitter channels (optional)")
	output := flag.String("output", "out/render/spd.csv", "Output SPD CSV path")
	peaks := flag.String("peaks", "", "Comma-separated peak wavelengths in nm, e.g. 450,530,620 (overrides scenario)")
	fwhm := flag.String("fwhm", "20", "Comma-separated FWHM in nm, single value broadcasts")
	shoulder := flag.String("shoulder", "2", "Comma-separated shoulder weights, single value broadcasts")
	targetFlag := flag.String("target", "", "Optional chromaticity target, comma-separated values")
	targetSpace := flag.String("target-space", "", "Target space: Yxy|Yuv|XYZ|cct")
	fluxFlag := flag.String("flux", "", "Optional comma-separated flux weights combining the rows")
	ratiosFlag := flag.String("ratios", "", "Optional merge ratios for mixing more than three components")
	gridStart := flag.Float64("grid-start", 360, "Grid start in nm")
	gridEnd := flag.Float64("grid-end", 830, "Grid end in nm")
	gridStep := flag.Float64("grid-step", 1, "Grid step in nm")
	seed := flag.Int64("seed", 1, "Random seed for drawn merge ratios")
	maxRetries := flag.Int("max-retries", 0, "Cap on redrawn ratio attempts (0 uses the default)")
	verbosity := flag.Int("verbosity", 1, "Warning verbosity")
	plotPath := flag.String("plot", "", "Optional PNG path for the rendered spectra")
	flag.Parse()

	cfg, err := renderConfig(*scenarioPath, *peaks, *fwhm, *shoulder, *gridStart, *gridEnd, *gridStep)
	if err != nil {
		die("spd-render error: %v", err)
	}
	cfg.Verbosity = *verbosity
	if *maxRetries > 0 {
		cfg.MaxRetries = *maxRetries
	}
	cfg.Rng = rand.New(rand.NewSource(*seed))

	if *targetFlag != "" {
		cfg.Target, err = parseFloats(*targetFlag)
		if err != nil {
			die("invalid -target: %v", err)
		}
		cfg.TargetSpace = *targetSpace
	}
	if *fluxFlag != "" {
		cfg.Flux, err = parseFloats(*fluxFlag)
		if err != nil {
			die("invalid -flux: %v", err)
		}
	}
	if *ratiosFlag != "" {
		cfg.Ratios, err = parseFloats(*ratiosFlag)
		if err != nil {
			die("invalid -ratios: %v", err)
		}
	}

	res, err := spdbuild.Build(*cfg)
	if err != nil {
		die("spd-render error: %v", err)
	}

	if err := specio.WriteCSV(*output, res.SPD); err != nil {
		die("csv write error: %v", err)
	}
	if *plotPath != "" {
		if err := os.MkdirAll(filepath.Dir(*plotPath), 0o755); err != nil {
			die("plot write error: %v", err)
		}
		if err := spdplot.SaveSPD(res.SPD, nil, "rendered spectra", *plotPath); err != nil {
			die("plot write error: %v", err)
		}
	}

	grid := res.SPD.WL
	fmt.Printf("Wrote %s\n", *output)
	fmt.Printf("Rows: %d, Samples: %d, Grid: %g..%g nm\n", res.SPD.Rows(), res.SPD.Samples(), grid[0], grid[len(grid)-1])
	printChromaticity(res)
}

// renderConfig resolves the emitter description from the scenario file
// and the inline flags. Inline peaks take precedence and describe pure
// mono channels; phosphor channels come from scenario files.
func renderConfig(scenarioPath, peaks, fwhm, shoulder string, gridStart, gridEnd, gridStep float64) (*spdbuild.Config, error) {
	if peaks != "" {
		pk, err := parseFloats(peaks)
		if err != nil {
			return nil, fmt.Errorf("invalid -peaks: %v", err)
		}
		fw, err := parseFloats(fwhm)
		if err != nil {
			return nil, fmt.Errorf("invalid -fwhm: %v", err)
		}
		sh, err := parseFloats(shoulder)
		if err != nil {
			return nil, fmt.Errorf("invalid -shoulder: %v", err)
		}
		if gridStep <= 0 || gridEnd <= gridStart {
			return nil, fmt.Errorf("bad grid %g..%g step %g", gridStart, gridEnd, gridStep)
		}
		return &spdbuild.Config{Emitter: emitter.PhosphorConfig{
			PeakWL:   pk,
			FWHM:     fw,
			Shoulder: sh,
			Grid:     spd.Uniform(gridStart, gridEnd, gridStep),
		}}, nil
	}

	if scenarioPath == "" {
		return nil, fmt.Errorf("no emitters: give -peaks or a -scenario with emitter channels")
	}
	scen, err := preset.LoadJSON(scenarioPath)
	if err != nil {
		return nil, err
	}
	if scen.Emitter == nil {
		return nil, fmt.Errorf("scenario %s has no emitter channels", scenarioPath)
	}
	cfg := &spdbuild.Config{Emitter: *scen.Emitter}
	if len(scen.Target) > 0 {
		cfg.Target = scen.Target
		cfg.TargetSpace = scen.TargetSpace
	}
	cfg.MaxRetries = scen.MaxRetries
	return cfg, nil
}

// printChromaticity reports one line per output row.
func printChromaticity(res *spdbuild.Result) {
	cmf, err := colorim.CIE1931().OnGrid(res.SPD.WL)
	if err != nil {
		return
	}
	chrom, err := colorim.SpdChromaticity(res.SPD, cmf)
	if err != nil {
		return
	}
	for i, c := range chrom {
		if !c.Valid() {
			fmt.Printf("row %d: out of gamut\n", i)
			continue
		}
		if cct, duv, err := colorim.CCTOf(c); err == nil {
			fmt.Printf("row %d: x=%.4f y=%.4f cct=%.0fK duv=%+.4f\n", i, c.Cx, c.Cy, cct, duv)
			continue
		}
		fmt.Printf("row %d: x=%.4f y=%.4f\n", i, c.Cx, c.Cy)
	}
}

func parseFloats(raw string) ([]float64, error) {
	parts := strings.Split(raw, ",")
	out := make([]float64, 0, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("value %d: %v", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
