package data

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"
)

// MissingMarkers are the cell texts read as missing.
var MissingMarkers = []string{"", "NA", "NaN", "nan", "null", "<nil>"}

// FlagLabels controls how boolean values are rendered in written files.
type FlagLabels struct {
	True  string
	False string
}

// DefaultFlagLabels renders flags as Yes/No.
var DefaultFlagLabels = FlagLabels{True: "Yes", False: "No"}

func (l FlagLabels) render(v Value) string {
	if b, ok := v.Bool(); ok {
		if b {
			return l.True
		}
		return l.False
	}
	return v.String()
}

// ReadCSV loads a CSV with a header row. Column types are detected per
// column: int and float columns become numeric, everything else is kept as
// categorical labels. Cells matching MissingMarkers are missing.
func ReadCSV(r io.Reader) (*Dataset, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("data: read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("data: read csv: no header row")
	}
	for _, rec := range records[1:] {
		for j, cell := range rec {
			if isMissingMarker(cell) {
				rec[j] = "NaN"
			}
		}
	}
	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("data: load records: %w", df.Err)
	}
	d, _ := New()
	for _, name := range df.Names() {
		s := df.Col(name)
		nas := s.IsNaN()
		vals := make([]Value, s.Len())
		switch s.Type() {
		case series.Int, series.Float:
			fs := s.Float()
			for i := range vals {
				if !nas[i] {
					vals[i] = Num(fs[i])
				}
			}
		default:
			recs := s.Records()
			for i := range vals {
				if !nas[i] {
					vals[i] = Cat(recs[i])
				}
			}
		}
		if err := d.SetColumn(name, vals); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func isMissingMarker(s string) bool {
	for _, m := range MissingMarkers {
		if s == m {
			return true
		}
	}
	return false
}

// ReadCSVFile opens path and calls ReadCSV.
func ReadCSVFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCSV(f)
}

// WriteCSV writes d with a header row.
func WriteCSV(w io.Writer, d *Dataset, labels FlagLabels) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(d.Names()); err != nil {
		return fmt.Errorf("data: write header: %w", err)
	}
	rec := make([]string, len(d.names))
	for i := 0; i < d.rows; i++ {
		for j := range d.cols {
			rec[j] = labels.render(d.cols[j][i])
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("data: write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFile creates path and calls WriteCSV.
func WriteCSVFile(path string, d *Dataset, labels FlagLabels) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteCSV(f, d, labels); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteXLSX writes d as a single-sheet workbook. Numeric cells are stored
// as numbers, everything else as text.
func WriteXLSX(w io.Writer, d *Dataset, sheet string, labels FlagLabels) error {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("data: name sheet: %w", err)
	}
	header := make([]interface{}, len(d.names))
	for j, n := range d.names {
		header[j] = n
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("data: write header: %w", err)
	}
	for i := 0; i < d.rows; i++ {
		row := make([]interface{}, len(d.cols))
		for j := range d.cols {
			v := d.cols[j][i]
			if n, ok := v.Float(); ok {
				row[j] = n
			} else {
				row[j] = labels.render(v)
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("data: write row %d: %w", i, err)
		}
	}
	return f.Write(w)
}

// WriteXLSXFile creates path and calls WriteXLSX.
func WriteXLSXFile(path string, d *Dataset, sheet string, labels FlagLabels) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteXLSX(f, d, sheet, labels); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
