package inflation

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// PreviewRows is how many leading rows Run logs after writing.
const PreviewRows = 10

// Converter fetches a series, derives factors and writes them out.
type Converter struct {
	Query     Query
	BaseYear  int    // 0 selects Query.End
	Output    string // file path; empty skips writing
	Format    Format // empty infers from Output's extension
	Precision int    // decimal places; negative keeps full precision

	client *Client
	log    zerolog.Logger
}

func NewConverter(client *Client, q Query, log zerolog.Logger) *Converter {
	return &Converter{Query: q, Precision: -1, client: client, log: log}
}

// Run returns the factor table, writing it to Output when set.
func (c *Converter) Run(ctx context.Context) ([]Row, error) {
	base := c.BaseYear
	if base == 0 {
		base = c.Query.End
	}
	log := c.log.With().
		Str("country", c.Query.Country).
		Str("indicator", c.Query.Indicator).
		Int("base_year", base).
		Logger()

	obs, err := c.client.Fetch(ctx, c.Query)
	if err != nil {
		return nil, err
	}
	log.Info().Int("observations", len(obs)).Msg("series fetched")

	rows, err := Factors(obs, base)
	if err != nil {
		return nil, err
	}
	if c.Output != "" {
		if err := c.write(rows); err != nil {
			return nil, err
		}
		log.Info().Str("output", c.Output).Int("rows", len(rows)).Msg("factors written")
	}
	for _, r := range rows[:min(PreviewRows, len(rows))] {
		log.Info().
			Int("year", r.Year).
			Str("index", Number(r.Index, c.Precision)).
			Str("factor", Number(r.Factor, c.Precision)).
			Msg("preview")
	}
	return rows, nil
}

func (c *Converter) format() (Format, error) {
	f := c.Format
	if f == "" {
		f = Format(strings.TrimPrefix(strings.ToLower(filepath.Ext(c.Output)), "."))
	}
	switch f {
	case FormatCSV, FormatXLSX:
		return f, nil
	case "":
		return FormatCSV, nil
	}
	return "", fmt.Errorf("inflation: unsupported output format %q", f)
}

func (c *Converter) write(rows []Row) error {
	format, err := c.format()
	if err != nil {
		return err
	}
	f, err := os.Create(c.Output)
	if err != nil {
		return err
	}
	if format == FormatXLSX {
		err = WriteXLSX(f, rows, "Inflation", c.Precision)
	} else {
		err = WriteCSV(f, rows, c.Precision)
	}
	if err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
