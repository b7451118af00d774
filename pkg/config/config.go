// Package config loads command settings from flags, ECONPREP_* environment
// variables and an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Ryuk2git/econprep/pkg/inflation"
	"github.com/Ryuk2git/econprep/pkg/model"
	"github.com/Ryuk2git/econprep/pkg/stats"
)

const EnvPrefix = "ECONPREP"

var ErrInvalid = errors.New("config: invalid")

// Logging is shared by every command.
type Logging struct {
	Level  string `mapstructure:"log-level"`
	Format string `mapstructure:"log-format"` // console or json
}

// Inflation configures the index-to-factor converter.
type Inflation struct {
	Logging   `mapstructure:",squash"`
	BaseURL   string        `mapstructure:"base-url"`
	Country   string        `mapstructure:"country"`
	Indicator string        `mapstructure:"indicator"`
	Start     int           `mapstructure:"start"`
	End       int           `mapstructure:"end"`
	BaseYear  int           `mapstructure:"base-year"` // 0 means End
	PerPage   int           `mapstructure:"per-page"`
	Timeout   time.Duration `mapstructure:"timeout"`
	Output    string        `mapstructure:"output"`
	Format    string        `mapstructure:"format"`
	Precision int           `mapstructure:"precision"`
}

// Impute configures the outlier-aware imputer.
type Impute struct {
	Logging       `mapstructure:",squash"`
	Input         string  `mapstructure:"input"`
	Output        string  `mapstructure:"output"`
	Target        string  `mapstructure:"target"`
	OutlierColumn string  `mapstructure:"outlier-column"`
	ImputedColumn string  `mapstructure:"imputed-column"`
	Fence         float64 `mapstructure:"fence"`
	Model         string  `mapstructure:"model"`
	Seed          int64   `mapstructure:"seed"`
	Trees         int     `mapstructure:"trees"`
	MaxDepth      int     `mapstructure:"max-depth"`
	MinLeaf       int     `mapstructure:"min-samples-leaf"`
	Neighbors     int     `mapstructure:"neighbors"`
	Folds         int     `mapstructure:"folds"`
	Plot          string  `mapstructure:"plot"`
	TrueLabel     string  `mapstructure:"true-label"`
	FalseLabel    string  `mapstructure:"false-label"`
}

// New returns a viper instance reading ECONPREP_* variables and, when
// file is set, the YAML file it names.
func New(file string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	v.SetDefault("log-level", "info")
	v.SetDefault("log-format", "console")
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", file, err)
		}
	}
	return v, nil
}

func SetInflationDefaults(v *viper.Viper) {
	v.SetDefault("base-url", inflation.DefaultBaseURL)
	v.SetDefault("country", inflation.DefaultCountry)
	v.SetDefault("indicator", inflation.DefaultIndicator)
	v.SetDefault("start", 1957)
	v.SetDefault("end", 2022)
	v.SetDefault("base-year", 0)
	v.SetDefault("per-page", inflation.DefaultPerPage)
	v.SetDefault("timeout", inflation.DefaultTimeout)
	v.SetDefault("output", "inflation_factors.csv")
	v.SetDefault("format", "")
	v.SetDefault("precision", -1)
}

func SetImputeDefaults(v *viper.Viper) {
	v.SetDefault("input", "")
	v.SetDefault("output", "")
	v.SetDefault("target", "")
	v.SetDefault("outlier-column", "")
	v.SetDefault("imputed-column", "")
	v.SetDefault("fence", stats.DefaultFence)
	v.SetDefault("model", string(model.KindForest))
	v.SetDefault("seed", model.DefaultSeed)
	v.SetDefault("trees", model.DefaultTrees)
	v.SetDefault("max-depth", 0)
	v.SetDefault("min-samples-leaf", 1)
	v.SetDefault("neighbors", 5)
	v.SetDefault("folds", 5)
	v.SetDefault("plot", "")
	v.SetDefault("true-label", "Yes")
	v.SetDefault("false-label", "No")
}

func LoadInflation(v *viper.Viper) (Inflation, error) {
	var c Inflation
	if err := v.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("config: decode: %w", err)
	}
	return c, c.Validate()
}

func LoadImpute(v *viper.Viper) (Impute, error) {
	var c Impute
	if err := v.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("config: decode: %w", err)
	}
	return c, c.Validate()
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

func (l Logging) validate() error {
	switch l.Format {
	case "console", "json":
	default:
		return invalid("log-format %q", l.Format)
	}
	return nil
}

func (c Inflation) Validate() error {
	if err := c.Logging.validate(); err != nil {
		return err
	}
	switch {
	case c.Country == "":
		return invalid("country is empty")
	case c.Indicator == "":
		return invalid("indicator is empty")
	case c.Start <= 0 || c.End < c.Start:
		return invalid("year range %d:%d", c.Start, c.End)
	case c.BaseYear != 0 && (c.BaseYear < c.Start || c.BaseYear > c.End):
		return invalid("base-year %d outside %d:%d", c.BaseYear, c.Start, c.End)
	case c.PerPage <= 0:
		return invalid("per-page %d", c.PerPage)
	case c.Timeout <= 0:
		return invalid("timeout %s", c.Timeout)
	case c.Precision < -1:
		return invalid("precision %d", c.Precision)
	}
	switch inflation.Format(c.Format) {
	case "", inflation.FormatCSV, inflation.FormatXLSX:
	default:
		return invalid("format %q", c.Format)
	}
	return nil
}

func (c Impute) Validate() error {
	if err := c.Logging.validate(); err != nil {
		return err
	}
	switch {
	case c.Input == "":
		return invalid("input is empty")
	case c.Target == "":
		return invalid("target is empty")
	case c.Fence <= 0:
		return invalid("fence %v", c.Fence)
	case c.Folds < 2:
		return invalid("folds %d", c.Folds)
	case c.TrueLabel == c.FalseLabel:
		return invalid("flag labels must differ")
	}
	for _, k := range model.Kinds {
		if strings.EqualFold(c.Model, string(k)) {
			return nil
		}
	}
	return invalid("model %q", c.Model)
}

// Params maps the model settings onto model.Params.
func (c Impute) Params() model.Params {
	return model.Params{
		Seed:           c.Seed,
		Trees:          c.Trees,
		MaxDepth:       c.MaxDepth,
		MinSamplesLeaf: c.MinLeaf,
		Neighbors:      c.Neighbors,
	}
}
