// Package config holds application settings decoded from viper: the config
// file (~/.gibbs-motif.yaml), GIBBS_MOTIF_* environment variables and
// command line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/inodb/gibbs-motif/internal/gibbs"
	"github.com/inodb/gibbs-motif/internal/output"
)

// EnvPrefix is the prefix of environment variables read into the config.
const EnvPrefix = "GIBBS_MOTIF"

// SearchConfig are the motif search settings.
type SearchConfig struct {
	// shortest and longest motif lengths to try
	KMin int `mapstructure:"k-min"`
	KMax int `mapstructure:"k-max"`

	// independent trials per motif length
	Trials int `mapstructure:"trials"`

	// restarts (or resampling rounds) per trial
	Iterations int `mapstructure:"iterations"`

	// worker goroutines, 0 for one per CPU
	Workers int `mapstructure:"workers"`

	// random seed, 0 picks one at startup
	Seed uint64 `mapstructure:"seed"`

	// restart or resample
	Strategy string `mapstructure:"strategy"`
}

// OutputConfig controls the report.
type OutputConfig struct {
	// json or yaml
	Format string `mapstructure:"format"`

	// include every trial's score in the report
	TrialScores bool `mapstructure:"trial-scores"`
}

// HistoryConfig controls the DuckDB run history.
type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Config is the root-level settings struct.
type Config struct {
	Verbose bool          `mapstructure:"verbose"`
	Search  SearchConfig  `mapstructure:"search"`
	Output  OutputConfig  `mapstructure:"output"`
	History HistoryConfig `mapstructure:"history"`
}

// ErrUnknownKey is returned for keys that are not part of Config.
var ErrUnknownKey = errors.New("unknown config key")

// defaults lists every key of the config file with its default value. The
// type of the default is the type a value for the key is parsed as.
func defaults() map[string]any {
	d := gibbs.DefaultOptions()
	return map[string]any{
		"search.k-min":        d.KMin,
		"search.k-max":        d.KMax,
		"search.trials":       d.TrialsPerK,
		"search.iterations":   d.Iterations,
		"search.workers":      0,
		"search.seed":         uint64(0),
		"search.strategy":     string(d.Strategy),
		"output.format":       output.FormatJSON,
		"output.trial-scores": true,
		"history.enabled":     false,
		"history.path":        DefaultHistoryPath(),
	}
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	for key, value := range defaults() {
		v.SetDefault(key, value)
	}
}

// Keys returns the config file keys in sorted order.
func Keys() []string {
	d := defaults()
	keys := make([]string, 0, len(d))
	for key := range d {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// IsKey reports whether key is a config file key.
func IsKey(key string) bool {
	_, ok := defaults()[key]
	return ok
}

// ParseValue converts a command line value for key to the key's type and
// checks it.
func ParseValue(key, value string) (any, error) {
	def, ok := defaults()[key]
	if !ok {
		return nil, fmt.Errorf("%w %q (known keys: %s)", ErrUnknownKey, key, strings.Join(Keys(), ", "))
	}

	var (
		parsed any
		err    error
	)
	switch def.(type) {
	case int:
		var n int
		n, err = strconv.Atoi(value)
		if err == nil && n < 0 {
			err = fmt.Errorf("must not be negative")
		}
		parsed = n
	case uint64:
		parsed, err = strconv.ParseUint(value, 10, 64)
	case bool:
		parsed, err = strconv.ParseBool(value)
	default:
		parsed = value
	}
	if err != nil {
		return nil, fmt.Errorf("invalid value %q for %s: %w", value, key, err)
	}

	switch key {
	case "search.strategy":
		if _, err := gibbs.ParseStrategy(value); err != nil {
			return nil, err
		}
	case "output.format":
		if !output.ValidFormat(value) {
			return nil, fmt.Errorf("unknown output format %q (want %s or %s)", value, output.FormatJSON, output.FormatYAML)
		}
	}
	return parsed, nil
}

// Settings returns the effective value of every config file key, nested by
// section the way the file is laid out.
func Settings(v *viper.Viper) map[string]map[string]any {
	sections := make(map[string]map[string]any)
	for _, key := range Keys() {
		section, name, _ := strings.Cut(key, ".")
		if sections[section] == nil {
			sections[section] = make(map[string]any)
		}
		sections[section][name] = v.Get(key)
	}
	return sections
}

// WriteFile writes the effective settings of v to path as YAML.
func WriteFile(v *viper.Viper, path string) error {
	data, err := yaml.Marshal(Settings(v))
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Init points v at the config file in the home directory and the
// environment. A missing config file is not an error.
func Init(v *viper.Viper) error {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	v.AddConfigPath(home)
	v.SetConfigName(".gibbs-motif")
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// Load decodes the settings held by v.
func Load(v *viper.Viper) (Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return c, nil
}

// Options converts the search settings to gibbs options.
func (c SearchConfig) Options() (gibbs.Options, error) {
	strategy, err := gibbs.ParseStrategy(c.Strategy)
	if err != nil {
		return gibbs.Options{}, err
	}
	opts := gibbs.Options{
		KMin:       c.KMin,
		KMax:       c.KMax,
		TrialsPerK: c.Trials,
		Iterations: c.Iterations,
		Workers:    c.Workers,
		Seed:       c.Seed,
		Strategy:   strategy,
	}
	return opts, opts.Validate()
}

// Validate checks settings that are not covered by the search options.
func (c Config) Validate() error {
	if !output.ValidFormat(c.Output.Format) {
		return fmt.Errorf("unknown output format %q (want %s or %s)", c.Output.Format, output.FormatJSON, output.FormatYAML)
	}
	if c.History.Enabled && c.History.Path == "" {
		return fmt.Errorf("history is enabled but history.path is empty")
	}
	return nil
}

// DefaultHistoryPath returns ~/.gibbs-motif/history.duckdb, or a relative
// path when the home directory is unknown.
func DefaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".gibbs-motif", "history.duckdb")
	}
	return filepath.Join(home, ".gibbs-motif", "history.duckdb")
}
