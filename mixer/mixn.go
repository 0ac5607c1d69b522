package mixer

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/cwbudde/algo-spectra/colorim"
)

// DefaultMixRetries bounds the random ratio draws in MixNRetry.
const DefaultMixRetries = 100

var (
	ErrTooFewSources = errors.New("need at least three sources")
	ErrOutOfGamut    = errors.New("target chromaticity outside source gamut")
)

// mixNode is one entry of the merge tree arena. Leaves hold the original
// sources; interior nodes hold a two-source blend with ratio applied to
// the left child and 1-ratio to the right.
type mixNode struct {
	xyz         colorim.XYZ
	left, right int
	ratio       float64
	flux        float64
}

// MixN reduces n sources to three by repeatedly blending the two oldest
// unmerged entries with the next ratio, solves the final triple with
// Mix3, and propagates the virtual fluxes back to the leaves. Exactly
// n-3 ratios are consumed, one per merge. The returned slice holds one
// flux per source; ErrOutOfGamut is reported when any of them comes out
// negative or non-finite.
func MixN(target colorim.Yxy, sources []colorim.Yxy, ratios []float64) ([]float64, error) {
	n := len(sources)
	if n < 3 {
		return nil, fmt.Errorf("%w, got %d", ErrTooFewSources, n)
	}
	if len(ratios) != n-3 {
		return nil, fmt.Errorf("got %d merge ratios for %d sources, want %d", len(ratios), n, n-3)
	}

	arena := make([]mixNode, n, 2*n)
	for i, c := range sources {
		arena[i] = mixNode{xyz: c.XYZ(), left: -1, right: -1}
	}

	active := make([]int, n)
	for i := range active {
		active[i] = i
	}
	for k := 0; len(active) > 3; k++ {
		a, b := active[0], active[1]
		r := ratios[k]
		xa, xb := arena[a].xyz, arena[b].xyz
		arena = append(arena, mixNode{
			xyz: colorim.XYZ{
				X: r*xa.X + (1-r)*xb.X,
				Y: r*xa.Y + (1-r)*xb.Y,
				Z: r*xa.Z + (1-r)*xb.Z,
			},
			left:  a,
			right: b,
			ratio: r,
		})
		active = append(active[2:], len(arena)-1)
	}

	f := Mix3(target,
		arena[active[0]].xyz.Yxy(),
		arena[active[1]].xyz.Yxy(),
		arena[active[2]].xyz.Yxy())
	for i, idx := range active {
		arena[idx].flux = f[i]
	}

	// Interior nodes always sit after their children, so one reverse
	// sweep pushes every flux down to the leaves.
	for i := len(arena) - 1; i >= n; i-- {
		nd := arena[i]
		arena[nd.left].flux = nd.ratio * nd.flux
		arena[nd.right].flux = (1 - nd.ratio) * nd.flux
	}

	out := make([]float64, n)
	for i := range out {
		v := arena[i].flux
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return nil, ErrOutOfGamut
		}
		out[i] = v
	}
	return out, nil
}

// MixNRetry draws fresh merge ratios until MixN lands in gamut, up to
// maxTries attempts (DefaultMixRetries when maxTries <= 0). With exactly
// three sources no ratios exist and a single Mix3 solve decides.
func MixNRetry(target colorim.Yxy, sources []colorim.Yxy, rng *rand.Rand, maxTries int) ([]float64, error) {
	n := len(sources)
	if n < 3 {
		return nil, fmt.Errorf("%w, got %d", ErrTooFewSources, n)
	}
	if n == 3 {
		return MixN(target, sources, nil)
	}
	if rng == nil {
		return nil, fmt.Errorf("nil rng for %d sources", n)
	}
	if maxTries <= 0 {
		maxTries = DefaultMixRetries
	}

	ratios := make([]float64, n-3)
	for try := 0; try < maxTries; try++ {
		for i := range ratios {
			ratios[i] = rng.Float64()
		}
		flux, err := MixN(target, sources, ratios)
		if err == nil {
			return flux, nil
		}
		if !errors.Is(err, ErrOutOfGamut) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w after %d attempts", ErrOutOfGamut, maxTries)
}
