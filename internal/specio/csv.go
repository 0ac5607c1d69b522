package specio

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/cwbudde/algo-spectra/spd"
)

// ReadCSV loads spectra from a CSV table. The first column is the
// wavelength in nm, each further column is one spectrum. A first line
// whose leading field is not numeric is treated as a header.
func ReadCSV(path string) (*spd.SPD, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(records) > 0 && len(records[0]) > 0 {
		if _, perr := strconv.ParseFloat(records[0][0], 64); perr != nil {
			records = records[1:]
		}
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: no samples", path)
	}
	cols := len(records[0])
	if cols < 2 {
		return nil, fmt.Errorf("%s: need a wavelength column and at least one value column", path)
	}

	wl := make(spd.Grid, len(records))
	rows := make([][]float64, cols-1)
	for i := range rows {
		rows[i] = make([]float64, len(records))
	}
	for i, rec := range records {
		v, err := strconv.ParseFloat(rec[0], 64)
		if err != nil {
			return nil, fmt.Errorf("%s: row %d: bad wavelength %q", path, i+1, rec[0])
		}
		wl[i] = v
		for c := 1; c < cols; c++ {
			v, err := strconv.ParseFloat(rec[c], 64)
			if err != nil {
				return nil, fmt.Errorf("%s: row %d: bad value %q", path, i+1, rec[c])
			}
			rows[c-1][i] = v
		}
	}

	s, err := spd.New(wl, rows...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// WriteCSV writes spectra as a CSV table with a header row and one
// value column per spectrum.
func WriteCSV(path string, s *spd.SPD) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := make([]string, s.Rows()+1)
	header[0] = "wavelength_nm"
	for i := 0; i < s.Rows(); i++ {
		header[i+1] = fmt.Sprintf("s%d", i+1)
	}
	if err := w.Write(header); err != nil {
		return err
	}
	rec := make([]string, s.Rows()+1)
	for j, wlnm := range s.WL {
		rec[0] = strconv.FormatFloat(wlnm, 'g', -1, 64)
		for i := 0; i < s.Rows(); i++ {
			rec[i+1] = strconv.FormatFloat(s.Values[i][j], 'g', -1, 64)
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
