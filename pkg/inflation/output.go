package inflation

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Header is the column layout of every output file.
var Header = []string{"Year", "Index", "Inflation_Factor"}

// Format names an output file type.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// Number renders f as decimal text: the shortest exact form when
// precision < 0, otherwise rounded to precision places.
func Number(f float64, precision int) string {
	d := decimal.NewFromFloat(f)
	if precision < 0 {
		return d.String()
	}
	return d.StringFixed(int32(precision))
}

func rounded(f float64, precision int) float64 {
	if precision < 0 {
		return f
	}
	return decimal.NewFromFloat(f).Round(int32(precision)).InexactFloat64()
}

// WriteCSV writes rows under Header.
func WriteCSV(w io.Writer, rows []Row, precision int) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("inflation: write header: %w", err)
	}
	for _, r := range rows {
		rec := []string{strconv.Itoa(r.Year), Number(r.Index, precision), Number(r.Factor, precision)}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("inflation: write %d: %w", r.Year, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes rows as numeric cells of a single sheet.
func WriteXLSX(w io.Writer, rows []Row, sheet string, precision int) error {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("inflation: name sheet: %w", err)
	}
	header := make([]interface{}, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("inflation: write header: %w", err)
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{r.Year, rounded(r.Index, precision), rounded(r.Factor, precision)}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("inflation: write %d: %w", r.Year, err)
		}
	}
	return f.Write(w)
}
