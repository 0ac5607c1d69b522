package optimizer

import (
	"math"

	"github.com/cwbudde/algo-spectra/spd"
)

// Evaluator scores candidate spectra against a set of objectives and
// counts how many candidates it has seen. Construct with NewEvaluator;
// the zero value has no objectives.
type Evaluator struct {
	objectives []Objective
	evals      int
}

func NewEvaluator(objectives []Objective) *Evaluator {
	return &Evaluator{objectives: append([]Objective(nil), objectives...)}
}

// Evals returns the number of Evaluate calls so far.
func (e *Evaluator) Evals() int { return e.evals }

// Values computes the raw objective values for s without scoring it or
// touching the evaluation counter. Disabled objectives yield NaN.
func (e *Evaluator) Values(s *spd.SPD) []float64 {
	vals := make([]float64, len(e.objectives))
	for i, o := range e.objectives {
		if o.Fn == nil {
			vals[i] = math.NaN()
			continue
		}
		vals[i] = o.Fn(s)
	}
	return vals
}

// Evaluate scores s as the root of the weighted sum of squared relative
// deviations from the targets. Each value is rounded to the objective's
// decimal count first and normalized by the target when it is positive.
// Objectives with a nil Fn or a NaN value do not contribute.
func (e *Evaluator) Evaluate(s *spd.SPD) (float64, []float64) {
	e.evals++
	vals := e.Values(s)
	var sum float64
	for i, o := range e.objectives {
		v := vals[i]
		if o.Fn == nil || math.IsNaN(v) {
			continue
		}
		norm := 1.0
		if o.Target > 0 {
			norm = o.Target
		}
		d := (roundTo(v, o.Decimals) - o.Target) / norm
		sum += o.Weight * d * d
	}
	return math.Sqrt(sum), vals
}

func roundTo(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
