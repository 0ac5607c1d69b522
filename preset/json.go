package preset

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cwbudde/algo-spectra/emitter"
	"github.com/cwbudde/algo-spectra/spd"
)

var ErrUnknownMetric = errors.New("unknown objective metric")

var metricNames = []string{"x", "y", "cct", "duv", "ler", "fidelity"}

// File is the JSON schema for fit scenarios.
type File struct {
	Grid          *GridSetting       `json:"grid"`
	Emitter       *EmitterSetting    `json:"emitter"`
	ComponentsCSV string             `json:"components_csv"`
	Target        *TargetSetting     `json:"target"`
	Mode          string             `json:"mode"`
	Objectives    []ObjectiveSetting `json:"objectives"`
	Minimize      *MinimizeSetting   `json:"minimize"`
	Seed          *int64             `json:"seed"`
	MaxRetries    *int               `json:"max_retries"`
	Verbosity     *int               `json:"verbosity"`
}

// GridSetting overrides the wavelength grid.
type GridSetting struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Step  float64 `json:"step"`
}

// EmitterSetting describes the component emitters, one entry per channel
// with scalar broadcast as in the emitter package.
type EmitterSetting struct {
	PeakWL      []float64 `json:"peak_wl"`
	FWHM        []float64 `json:"fwhm"`
	Shoulder    []float64 `json:"shoulder"`
	StrengthPh  []float64 `json:"strength_ph"`
	Ph1Peak     []float64 `json:"ph1_peak"`
	Ph1FWHM     []float64 `json:"ph1_fwhm"`
	Ph1Strength []float64 `json:"ph1_strength"`
	Ph2Peak     []float64 `json:"ph2_peak"`
	Ph2FWHM     []float64 `json:"ph2_fwhm"`
	Ph2Strength []float64 `json:"ph2_strength"`
	Piecewise   *bool     `json:"piecewise"`
}

// TargetSetting is a chromaticity target in a named color space.
type TargetSetting struct {
	Space  string    `json:"space"`
	Values []float64 `json:"values"`
}

// ObjectiveSetting is one scored metric in a scenario file.
type ObjectiveSetting struct {
	Metric   string   `json:"metric"`
	Target   float64  `json:"target"`
	Weight   *float64 `json:"weight"`
	Decimals *int     `json:"decimals"`
}

// MinimizeSetting tunes the weight search.
type MinimizeSetting struct {
	Method        string   `json:"method"`
	MaxIterations *int     `json:"max_iterations"`
	MaxFuncEvals  *int     `json:"max_func_evals"`
	FTol          *float64 `json:"ftol"`
	Population    *int     `json:"population"`
}

// ObjectiveSpec is a resolved objective with defaults filled in.
type ObjectiveSpec struct {
	Metric   string
	Target   float64
	Weight   float64
	Decimals int
}

// Scenario is a fully resolved fit scenario.
type Scenario struct {
	Grid          spd.Grid
	Emitter       *emitter.PhosphorConfig
	ComponentsCSV string
	Target        []float64
	TargetSpace   string
	Mode          string
	Objectives    []ObjectiveSpec
	Method        string
	MaxIterations int
	MaxFuncEvals  int
	FTol          float64
	Population    int
	Seed          int64
	MaxRetries    int
	Verbosity     int
}

// NewDefaultScenario returns a scenario with the default grid and seed.
// Component sources, target and objectives start empty.
func NewDefaultScenario() *Scenario {
	return &Scenario{
		Grid: spd.DefaultGrid(),
		Seed: 1,
	}
}

// LoadJSON loads a scenario file and applies it on top of the defaults.
func LoadJSON(path string) (*Scenario, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f File
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, err
	}

	s := NewDefaultScenario()
	if err := ApplyFile(s, &f); err != nil {
		return nil, err
	}

	if s.ComponentsCSV != "" && !filepath.IsAbs(s.ComponentsCSV) {
		base := filepath.Dir(path)
		s.ComponentsCSV = filepath.Clean(filepath.Join(base, s.ComponentsCSV))
	}
	return s, nil
}

// ApplyFile applies a parsed scenario file onto an existing scenario.
func ApplyFile(dst *Scenario, f *File) error {
	if dst == nil {
		return fmt.Errorf("nil destination scenario")
	}
	if f == nil {
		return nil
	}

	if f.Grid != nil {
		if f.Grid.Start <= 0 {
			return fmt.Errorf("grid start must be > 0")
		}
		if f.Grid.Step <= 0 {
			return fmt.Errorf("grid step must be > 0")
		}
		if f.Grid.End <= f.Grid.Start {
			return fmt.Errorf("grid end must be past its start")
		}
		dst.Grid = spd.Uniform(f.Grid.Start, f.Grid.End, f.Grid.Step)
	}

	if f.Emitter != nil && f.ComponentsCSV != "" {
		return fmt.Errorf("emitter and components_csv are mutually exclusive")
	}
	if f.ComponentsCSV != "" {
		dst.ComponentsCSV = strings.TrimSpace(f.ComponentsCSV)
		dst.Emitter = nil
	}
	if f.Emitter != nil {
		cfg, err := emitterConfig(f.Emitter, dst.Grid)
		if err != nil {
			return err
		}
		dst.Emitter = cfg
		dst.ComponentsCSV = ""
	}

	if f.Target != nil {
		if len(f.Target.Values) != 3 {
			return fmt.Errorf("target values must hold 3 entries, got %d", len(f.Target.Values))
		}
		dst.Target = append([]float64(nil), f.Target.Values...)
		dst.TargetSpace = f.Target.Space
	}

	if f.Mode != "" {
		dst.Mode = f.Mode
	}

	if len(f.Objectives) > 0 {
		specs := make([]ObjectiveSpec, 0, len(f.Objectives))
		for i, o := range f.Objectives {
			if !isKnownMetric(o.Metric) {
				return fmt.Errorf("objectives[%d]: %w %q (want one of %v)", i, ErrUnknownMetric, o.Metric, metricNames)
			}
			spec := ObjectiveSpec{Metric: o.Metric, Target: o.Target, Weight: 1, Decimals: 5}
			if o.Weight != nil {
				if *o.Weight < 0 {
					return fmt.Errorf("objectives[%d]: weight must be >= 0", i)
				}
				spec.Weight = *o.Weight
			}
			if o.Decimals != nil {
				if *o.Decimals < 0 || *o.Decimals > 12 {
					return fmt.Errorf("objectives[%d]: decimals must be in 0..12", i)
				}
				spec.Decimals = *o.Decimals
			}
			specs = append(specs, spec)
		}
		dst.Objectives = specs
	}

	if f.Minimize != nil {
		dst.Method = f.Minimize.Method
		if f.Minimize.MaxIterations != nil {
			if *f.Minimize.MaxIterations < 0 {
				return fmt.Errorf("minimize max_iterations must be >= 0")
			}
			dst.MaxIterations = *f.Minimize.MaxIterations
		}
		if f.Minimize.MaxFuncEvals != nil {
			if *f.Minimize.MaxFuncEvals < 0 {
				return fmt.Errorf("minimize max_func_evals must be >= 0")
			}
			dst.MaxFuncEvals = *f.Minimize.MaxFuncEvals
		}
		if f.Minimize.FTol != nil {
			if *f.Minimize.FTol < 0 {
				return fmt.Errorf("minimize ftol must be >= 0")
			}
			dst.FTol = *f.Minimize.FTol
		}
		if f.Minimize.Population != nil {
			if *f.Minimize.Population < 0 {
				return fmt.Errorf("minimize population must be >= 0")
			}
			dst.Population = *f.Minimize.Population
		}
	}

	if f.Seed != nil {
		dst.Seed = *f.Seed
	}
	if f.MaxRetries != nil {
		if *f.MaxRetries < 0 {
			return fmt.Errorf("max_retries must be >= 0")
		}
		dst.MaxRetries = *f.MaxRetries
	}
	if f.Verbosity != nil {
		if *f.Verbosity < 0 {
			return fmt.Errorf("verbosity must be >= 0")
		}
		dst.Verbosity = *f.Verbosity
	}
	return nil
}

// emitterConfig resolves an emitter setting over the package defaults.
// Omitted vectors keep their default values; the scenario grid always
// applies.
func emitterConfig(e *EmitterSetting, grid spd.Grid) (*emitter.PhosphorConfig, error) {
	if len(e.PeakWL) == 0 {
		return nil, fmt.Errorf("emitter needs at least one peak_wl entry")
	}
	for i, p := range e.PeakWL {
		if p <= 0 {
			return nil, fmt.Errorf("emitter peak_wl[%d] must be > 0", i)
		}
	}
	for i, w := range e.FWHM {
		if w <= 0 {
			return nil, fmt.Errorf("emitter fwhm[%d] must be > 0", i)
		}
	}
	cfg := emitter.DefaultPhosphorConfig()
	cfg.PeakWL = append([]float64(nil), e.PeakWL...)
	overlay(&cfg.FWHM, e.FWHM)
	overlay(&cfg.Shoulder, e.Shoulder)
	overlay(&cfg.StrengthPh, e.StrengthPh)
	overlay(&cfg.Ph1Peak, e.Ph1Peak)
	overlay(&cfg.Ph1FWHM, e.Ph1FWHM)
	overlay(&cfg.Ph1Strength, e.Ph1Strength)
	overlay(&cfg.Ph2Peak, e.Ph2Peak)
	overlay(&cfg.Ph2FWHM, e.Ph2FWHM)
	overlay(&cfg.Ph2Strength, e.Ph2Strength)
	if e.Piecewise != nil {
		cfg.Piecewise = *e.Piecewise
	}
	cfg.Grid = grid
	return &cfg, nil
}

// overlay copies src over dst when the scenario file carries the field.
// Ph2Strength stays nil when omitted so per-row inference keeps working.
func overlay(dst *[]float64, src []float64) {
	if len(src) > 0 {
		*dst = append([]float64(nil), src...)
	}
}

func isKnownMetric(name string) bool {
	for _, m := range metricNames {
		if name == m {
			return true
		}
	}
	return false
}
