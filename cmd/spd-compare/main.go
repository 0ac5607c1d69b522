package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"math/cmplx"
	"os"

	algofft "github.com/cwbudde/algo-fft"

	"github.com/cwbudde/algo-spectra/colorim"
	"github.com/cwbudde/algo-spectra/internal/specio"
	"github.com/cwbudde/algo-spectra/spd"
)

func main() {
	referencePath := flag.String("reference", "", "Reference SPD CSV path")
	testPath := flag.String("test", "", "Test SPD CSV path")
	refRow := flag.Int("ref-row", 0, "Row of the reference CSV to compare")
	testRow := flag.Int("test-row", 0, "Row of the test CSV to compare")
	jsonOut := flag.Bool("json", false, "Print metrics as JSON")
	flag.Parse()

	if *referencePath == "" || *testPath == "" {
		die("both -reference and -test are required")
	}

	ref, err := loadRow(*referencePath, *refRow)
	if err != nil {
		die("failed to read reference: %v", err)
	}
	test, err := loadRow(*testPath, *testRow)
	if err != nil {
		die("failed to read test: %v", err)
	}

	cmf, err := colorim.CIE1931().OnGrid(ref.WL)
	if err != nil {
		die("failed to resample observer: %v", err)
	}
	metrics, err := colorim.CompareSpds(ref, test, cmf)
	if err != nil {
		die("comparison failed: %v", err)
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(metrics); err != nil {
			die("json encode failed: %v", err)
		}
		return
	}

	grid := ref.WL
	fmt.Printf("Reference: %s row %d (%d samples, %g..%g nm)\n", *referencePath, *refRow, ref.Samples(), grid[0], grid[len(grid)-1])
	fmt.Printf("Test:      %s row %d\n\n", *testPath, *testRow)

	fmt.Printf("RMSE:         %.6f\n", metrics.RMSE)
	fmt.Printf("Peak delta:   %+.1f nm\n", metrics.PeakDeltaNM)
	fmt.Printf("Chromaticity: dx=%+.5f  dy=%+.5f\n", metrics.DeltaX, metrics.DeltaY)
	if metrics.CCTValid {
		fmt.Printf("CCT:          d=%+.0f K  dduv=%+.5f\n", metrics.DeltaCCT, metrics.DeltaDuv)
	}
	fmt.Printf("Score:        %.4f  (0 best)\n", metrics.Score)
	fmt.Printf("Similarity:   %.2f%%\n\n", metrics.Similarity*100.0)

	printBands(ref, test)
	printRipple(ref, test)
}

// loadRow reads one CSV and selects a single spectrum row.
func loadRow(path string, row int) (*spd.SPD, error) {
	s, err := specio.ReadCSV(path)
	if err != nil {
		return nil, err
	}
	return s.SelectRows([]int{row})
}

// alignedPair puts both spectra max-normalized on the reference grid.
func alignedPair(ref, test *spd.SPD) ([]float64, []float64, error) {
	a := ref.Clone().NormalizeMax()
	rb, err := test.Resample(ref.WL)
	if err != nil {
		return nil, nil, err
	}
	rb.NormalizeMax()
	if a.RowHasNaN(0) || rb.RowHasNaN(0) {
		return nil, nil, fmt.Errorf("spectrum without energy")
	}
	return a.Row(0), rb.Row(0), nil
}

// printBands reports mean power per color band in dB for both spectra
// plus a sample-wise RMSE, with markers on the bands that diverge.
func printBands(ref, test *spd.SPD) {
	va, vb, err := alignedPair(ref, test)
	if err != nil {
		return
	}
	grid := ref.WL

	type band struct {
		name string
		loNm float64
		hiNm float64
	}
	bands := []band{
		{"violet (380-450nm)", 380, 450},
		{"blue (450-495nm)", 450, 495},
		{"green (495-570nm)", 495, 570},
		{"yellow (570-590nm)", 570, 590},
		{"orange (590-620nm)", 590, 620},
		{"red (620-780nm)", 620, 780},
	}

	fmt.Printf("--- band power ---\n")
	for _, b := range bands {
		var sumSq, refPow, testPow float64
		cnt := 0
		for j, wl := range grid {
			if wl < b.loNm || wl >= b.hiNm {
				continue
			}
			rDB := 20 * math.Log10(math.Max(va[j], 1e-12))
			tDB := 20 * math.Log10(math.Max(vb[j], 1e-12))
			d := rDB - tDB
			sumSq += d * d
			refPow += va[j] * va[j]
			testPow += vb[j] * vb[j]
			cnt++
		}
		if cnt == 0 {
			continue
		}
		rmseDB := math.Sqrt(sumSq / float64(cnt))
		refDB := 10 * math.Log10(math.Max(refPow/float64(cnt), 1e-24))
		testDB := 10 * math.Log10(math.Max(testPow/float64(cnt), 1e-24))
		diff := testDB - refDB
		marker := ""
		if rmseDB > 6 {
			marker = " <<<"
		}
		if rmseDB > 12 {
			marker = " <<< !!!"
		}
		fmt.Printf("  %-20s RMSE=%5.1fdB  ref=%6.1fdB  test=%6.1fdB  diff=%+5.1fdB%s\n",
			b.name, rmseDB, refDB, testDB, diff, marker)
	}
	fmt.Println()
}

// printRipple compares the wavelength-frequency content of both
// spectra. Spiky emission lines show up as high ripple energy, smooth
// broadband curves stay near zero, so the log-magnitude distance
// separates the two families even when band powers agree.
func printRipple(ref, test *spd.SPD) {
	grid := ref.WL
	step, ok := uniformStep(grid)
	if !ok {
		fmt.Printf("ripple: skipped (grid is not uniform)\n")
		return
	}
	va, vb, err := alignedPair(ref, test)
	if err != nil {
		return
	}

	n := len(va)
	fftSize := nextPow2(n)
	plan, err := algofft.NewPlanReal64(fftSize)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fft plan: %v\n", err)
		return
	}

	bufA := windowed(va, fftSize)
	bufB := windowed(vb, fftSize)
	specA := make([]complex128, fftSize/2+1)
	specB := make([]complex128, fftSize/2+1)
	plan.Forward(specA, bufA)
	plan.Forward(specB, bufB)

	nBins := fftSize / 2
	var sumSq float64
	domA, domB := 1, 1
	for k := 1; k < nBins; k++ {
		ma := cmplx.Abs(specA[k])
		mb := cmplx.Abs(specB[k])
		d := 20*math.Log10(math.Max(ma, 1e-12)) - 20*math.Log10(math.Max(mb, 1e-12))
		sumSq += d * d
		if ma > cmplx.Abs(specA[domA]) {
			domA = k
		}
		if mb > cmplx.Abs(specB[domB]) {
			domB = k
		}
	}
	rmseDB := math.Sqrt(sumSq / float64(nBins-1))
	span := float64(fftSize) * step
	fmt.Printf("--- ripple ---\n")
	fmt.Printf("  log-magnitude RMSE=%.1fdB  dominant period ref=%.0fnm  test=%.0fnm\n",
		rmseDB, span/float64(domA), span/float64(domB))
}

// windowed applies a Hann window over the live samples after removing
// their mean, leaving the zero padding untouched.
func windowed(v []float64, fftSize int) []float64 {
	out := make([]float64, fftSize)
	var mean float64
	for _, x := range v {
		mean += x
	}
	mean /= float64(len(v))
	for i, x := range v {
		w := 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(len(v)-1))
		out[i] = (x - mean) * w
	}
	return out
}

func uniformStep(grid spd.Grid) (float64, bool) {
	if len(grid) < 2 {
		return 0, false
	}
	step := grid[1] - grid[0]
	for i := 2; i < len(grid); i++ {
		if math.Abs(grid[i]-grid[i-1]-step) > 1e-9 {
			return 0, false
		}
	}
	return step, true
}

func nextPow2(n int) int {
	p := 64
	for p < n {
		p *= 2
	}
	return p
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
