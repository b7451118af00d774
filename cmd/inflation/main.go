// Command inflation downloads a price index series from the World Bank and
// writes per-year inflation factors relative to a base year.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Ryuk2git/econprep/pkg/config"
	"github.com/Ryuk2git/econprep/pkg/inflation"
	"github.com/Ryuk2git/econprep/pkg/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgFile string
	cmd := &cobra.Command{
		Use:   "inflation",
		Short: "Convert a price index series into inflation factors",
		Long: `Fetches an indicator series (GDP deflator NY.GDP.DEFL.ZS or CPI FP.CPI.TOTL)
for one country, drops empty years and writes Year, Index and
Inflation_Factor = Index(base year) / Index(year).`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := config.New(cfgFile)
			if err != nil {
				return err
			}
			config.SetInflationDefaults(v)
			if err := v.BindPFlags(cmd.Flags()); err != nil {
				return err
			}
			c, err := config.LoadInflation(v)
			if err != nil {
				return err
			}
			log, err := logging.New(os.Stderr, c.Level, c.Logging.Format)
			if err != nil {
				return err
			}

			client := inflation.NewClient(c.BaseURL, c.Timeout, log)
			client.PerPage = c.PerPage
			conv := inflation.NewConverter(client, inflation.Query{
				Country:   c.Country,
				Indicator: c.Indicator,
				Start:     c.Start,
				End:       c.End,
			}, log)
			conv.BaseYear = c.BaseYear
			conv.Output = c.Output
			conv.Format = inflation.Format(c.Format)
			conv.Precision = c.Precision

			rows, err := conv.Run(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d rows to %s\n", len(rows), c.Output)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfgFile, "config", "", "YAML config file")
	f.String("log-level", "info", "log level (debug, info, warn, error)")
	f.String("log-format", "console", "log format (console, json)")
	f.String("base-url", inflation.DefaultBaseURL, "World Bank API root")
	f.String("country", inflation.DefaultCountry, "ISO3 country code, or WLD for world")
	f.String("indicator", inflation.DefaultIndicator, "indicator id")
	f.Int("start", 1957, "first year")
	f.Int("end", 2022, "last year")
	f.Int("base-year", 0, "reference year (default: end)")
	f.Int("per-page", inflation.DefaultPerPage, "records per API page")
	f.Duration("timeout", inflation.DefaultTimeout, "HTTP timeout per request")
	f.StringP("output", "o", "inflation_factors.csv", "output file")
	f.String("format", "", "output format csv|xlsx (default: from extension)")
	f.Int("precision", -1, "decimal places (-1 keeps full precision)")
	return cmd
}
