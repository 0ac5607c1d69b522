package specio

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cwbudde/algo-spectra/spd"
)

func TestCSVRoundTrip(t *testing.T) {
	wl := spd.Uniform(400, 420, 10)
	s, err := spd.New(wl,
		[]float64{0.25, 1, 0.5},
		[]float64{0, math.NaN(), 2.5},
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	path := filepath.Join(t.TempDir(), "out", "spectra.csv")
	if err := WriteCSV(path, s); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	got, err := ReadCSV(path)
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if !got.WL.Equal(s.WL) {
		t.Fatalf("grid changed: %v", got.WL)
	}
	if got.Rows() != 2 {
		t.Fatalf("rows = %d, want 2", got.Rows())
	}
	for i := range s.Values {
		for j := range s.Values[i] {
			want, have := s.Values[i][j], got.Values[i][j]
			if math.IsNaN(want) && math.IsNaN(have) {
				continue
			}
			if want != have {
				t.Fatalf("value [%d][%d] = %g, want %g", i, j, have, want)
			}
		}
	}
}

func TestReadCSVSkipsHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spectra.csv")
	content := "wavelength_nm,s1\n400,0.5\n410,1\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	s, err := ReadCSV(path)
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if s.Samples() != 2 || s.Rows() != 1 {
		t.Fatalf("shape = %d samples x %d rows", s.Samples(), s.Rows())
	}
	if s.WL[0] != 400 || s.Values[0][1] != 1 {
		t.Fatalf("parsed %v / %v", s.WL, s.Values)
	}
}

func TestReadCSVRejectsBadInput(t *testing.T) {
	dir := t.TempDir()

	write := func(name, content string) string {
		t.Helper()
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
		return path
	}

	if _, err := ReadCSV(filepath.Join(dir, "missing.csv")); err == nil {
		t.Fatalf("missing file accepted")
	}
	if _, err := ReadCSV(write("short.csv", "400\n410\n")); err == nil {
		t.Fatalf("wavelength-only table accepted")
	}
	if _, err := ReadCSV(write("ragged.csv", "400,1,2\n410,1\n")); err == nil {
		t.Fatalf("ragged table accepted")
	}
	if _, err := ReadCSV(write("noval.csv", "header,s1\n")); err == nil {
		t.Fatalf("header-only table accepted")
	}
	_, err := ReadCSV(write("badnum.csv", "400,ok\n410,1\n"))
	if err == nil || !strings.Contains(err.Error(), "bad value") {
		t.Fatalf("bad numeric cell: %v", err)
	}
	if _, err := ReadCSV(write("order.csv", "410,1\n400,2\n")); err == nil {
		t.Fatalf("non-increasing grid accepted")
	}
}
