// Command imputer replaces outlying and missing values of a numeric column
// with regression estimates learned from the other columns.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Ryuk2git/econprep/pkg/config"
	"github.com/Ryuk2git/econprep/pkg/data"
	"github.com/Ryuk2git/econprep/pkg/logging"
	"github.com/Ryuk2git/econprep/pkg/model"
	"github.com/Ryuk2git/econprep/pkg/pipeline"
	"github.com/Ryuk2git/econprep/pkg/plot"
	"github.com/Ryuk2git/econprep/pkg/stats"
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
	root := &cobra.Command{
		Use:          "imputer",
		Short:        "Outlier-aware regression imputation of one numeric column",
		SilenceUsage: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "YAML config file")
	pf.String("log-level", "info", "log level (debug, info, warn, error)")
	pf.String("log-format", "console", "log format (console, json)")
	pf.StringP("input", "i", "", "input CSV")
	pf.StringP("target", "t", "", "numeric column to clean")
	pf.String("outlier-column", "", "outlier flag column (default <target>_outlier)")
	pf.String("imputed-column", "", "imputed flag column (default <target>_imputed)")
	pf.Float64("fence", stats.DefaultFence, "IQR multiplier for the outlier fences")
	pf.StringP("model", "m", string(model.KindForest), "regressor: "+kindList())
	pf.Int64("seed", model.DefaultSeed, "random seed")
	pf.Int("trees", model.DefaultTrees, "forest size")
	pf.Int("max-depth", 0, "tree depth limit (0 = none)")
	pf.Int("min-samples-leaf", 1, "minimum rows per tree leaf")
	pf.Int("neighbors", 5, "k for the knn regressor")

	root.AddCommand(newRunCmd(&cfgFile), newEvaluateCmd(&cfgFile))
	return root
}

func kindList() string {
	names := make([]string, len(model.Kinds))
	for i, k := range model.Kinds {
		names[i] = string(k)
	}
	return strings.Join(names, "|")
}

// setup resolves configuration and builds the imputer and its input.
type setup struct {
	cfg config.Impute
	log zerolog.Logger
	im  *pipeline.Imputer
	ds  *data.Dataset
}

func load(cmd *cobra.Command, cfgFile string) (*setup, error) {
	v, err := config.New(cfgFile)
	if err != nil {
		return nil, err
	}
	config.SetImputeDefaults(v)
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, err
	}
	c, err := config.LoadImpute(v)
	if err != nil {
		return nil, err
	}
	log, err := logging.New(os.Stderr, c.Level, c.Logging.Format)
	if err != nil {
		return nil, err
	}
	reg, err := model.New(model.Kind(c.Model), c.Params())
	if err != nil {
		return nil, err
	}
	ds, err := data.ReadCSVFile(c.Input)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", c.Input, err)
	}
	log.Info().Str("input", c.Input).Int("rows", ds.Len()).Str("model", c.Model).Msg("dataset loaded")

	im := pipeline.NewImputer(pipeline.Config{
		Target:        c.Target,
		OutlierColumn: c.OutlierColumn,
		ImputedColumn: c.ImputedColumn,
		Fence:         c.Fence,
	}, reg, log)
	return &setup{cfg: c, log: log, im: im, ds: ds}, nil
}

func newRunCmd(cfgFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Flag outliers, impute the target and write the result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := load(cmd, *cfgFile)
			if err != nil {
				return err
			}
			if s.cfg.Output == "" {
				return fmt.Errorf("%w: output is empty", config.ErrInvalid)
			}
			out, rep, err := s.im.Run(cmd.Context(), s.ds)
			if err != nil {
				return err
			}
			labels := data.FlagLabels{True: s.cfg.TrueLabel, False: s.cfg.FalseLabel}
			if err := write(s.cfg.Output, out, labels); err != nil {
				return err
			}
			if s.cfg.Plot != "" {
				if err := savePlot(s, out, rep); err != nil {
					return err
				}
				s.log.Info().Str("plot", s.cfg.Plot).Msg("plot saved")
			}
			printReport(cmd, rep)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringP("output", "o", "", "output file (.csv or .xlsx)")
	f.String("plot", "", "write a before/after box plot (.png, .svg, .pdf)")
	f.String("true-label", "Yes", "text written for a set flag")
	f.String("false-label", "No", "text written for a clear flag")
	return cmd
}

func newEvaluateCmd(cfgFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Cross-validate the regressor on the observed rows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := load(cmd, *cfgFile)
			if err != nil {
				return err
			}
			ev, err := s.im.Evaluate(cmd.Context(), s.ds, s.cfg.Folds, s.cfg.Seed)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%-6s %6s %12s %12s %8s\n", "fold", "rows", "rmse", "mae", "r2")
			for i, sc := range ev.Folds {
				fmt.Fprintf(w, "%-6d %6d %12.4f %12.4f %8.4f\n", i+1, sc.N, sc.RMSE, sc.MAE, sc.R2)
			}
			fmt.Fprintf(w, "%-6s %6d %12.4f %12.4f %8.4f\n", "mean", ev.Mean.N, ev.Mean.RMSE, ev.Mean.MAE, ev.Mean.R2)
			return nil
		},
	}
	cmd.Flags().IntP("folds", "k", 5, "number of folds")
	return cmd
}

func write(path string, d *data.Dataset, labels data.FlagLabels) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return data.WriteXLSXFile(path, d, "Data", labels)
	default:
		return data.WriteCSVFile(path, d, labels)
	}
}

func savePlot(s *setup, out *data.Dataset, rep *pipeline.Report) error {
	target := rep.Target
	before, err := s.ds.Floats(target)
	if err != nil {
		return err
	}
	after, err := out.Floats(target)
	if err != nil {
		return err
	}
	imputed := make([]bool, out.Len())
	if rep.ModelRan {
		for i := range imputed {
			imputed[i], _ = out.At(i, rep.ImputedColumn).Bool()
		}
	}
	return plot.Save(plot.Comparison{
		Title:   target + " before and after imputation",
		Target:  target,
		Before:  before,
		After:   after,
		Imputed: imputed,
	}, s.cfg.Plot)
}

func printReport(cmd *cobra.Command, rep *pipeline.Report) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "run %s\n", rep.RunID)
	fmt.Fprintf(w, "rows %d, missing %d, outliers %d, imputed %d\n", rep.Rows, rep.MissingAtStart, rep.Outliers, rep.Imputed)
	fmt.Fprintf(w, "bounds [%g, %g] (q1 %g, q3 %g)\n", rep.Bounds.Lower, rep.Bounds.Upper, rep.Bounds.Q1, rep.Bounds.Q3)
	for _, row := range []struct {
		name string
		s    pipeline.Summary
	}{{"before", rep.Before}, {"after", rep.After}} {
		fmt.Fprintf(w, "%-6s n=%d mean=%.4f sd=%.4f min=%g median=%g max=%g\n",
			row.name, row.s.Count, row.s.Mean, row.s.StdDev, row.s.Min, row.s.Median, row.s.Max)
	}
}
