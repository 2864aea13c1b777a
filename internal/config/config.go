// Package config loads tempo's settings: built-in defaults, then an optional
// YAML file, then TEMPO_* environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/alexanderramin/tempo/internal/importer"
	"github.com/alexanderramin/tempo/internal/montecarlo"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// DB is the SQLite file path, or ":memory:".
	DB         string           `yaml:"db" validate:"required"`
	Log        LogConfig        `yaml:"log"`
	Simulation SimulationConfig `yaml:"simulation"`
	Import     ImportConfig     `yaml:"import"`
}

type LogConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
	// UseCases logs one line per service call.
	UseCases bool `yaml:"use_cases"`
}

type SimulationConfig struct {
	Iterations int `yaml:"iterations" validate:"gte=1,lte=1000000"`
	// Workers of 0 uses GOMAXPROCS.
	Workers      int    `yaml:"workers" validate:"gte=0,lte=1024"`
	Bins         int    `yaml:"bins" validate:"gte=1,lte=1000"`
	Drivers      int    `yaml:"drivers" validate:"gte=0,lte=100"`
	Distribution string `yaml:"distribution" validate:"oneof=triangular pert"`
}

type ImportConfig struct {
	MaxTasks  int `yaml:"max_tasks" validate:"gte=1"`
	MaxString int `yaml:"max_string" validate:"gte=1"`
}

// DefaultConfig stores data under ~/.tempo and logs warnings only.
func DefaultConfig() Config {
	return Config{
		DB:  filepath.Join(homeDir(), "tempo.db"),
		Log: LogConfig{Level: "warn"},
		Simulation: SimulationConfig{
			Iterations:   montecarlo.DefaultIterations,
			Bins:         montecarlo.DefaultBins,
			Drivers:      montecarlo.DefaultDrivers,
			Distribution: string(montecarlo.Triangular),
		},
		Import: ImportConfig{
			MaxTasks:  importer.DefaultLimits.MaxTasks,
			MaxString: importer.DefaultLimits.MaxString,
		},
	}
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".tempo"
	}
	return filepath.Join(home, ".tempo")
}

// Path is TEMPO_CONFIG when set, otherwise ~/.tempo/config.yaml.
func Path() string {
	if v := os.Getenv("TEMPO_CONFIG"); v != "" {
		return v
	}
	return filepath.Join(homeDir(), "config.yaml")
}

// Load reads the file at Path, applies environment overrides and validates
// the result. A missing default file is not an error; a missing file named
// by TEMPO_CONFIG is.
func Load() (Config, error) {
	path := Path()
	cfg, err := LoadFile(path)
	if errors.Is(err, os.ErrNotExist) && os.Getenv("TEMPO_CONFIG") == "" {
		cfg, err = DefaultConfig(), nil
	}
	if err != nil {
		return Config{}, err
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFile overlays the YAML file at path on the defaults. Keys absent from
// the file keep their default values.
func LoadFile(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return cfg, nil
}

// applyEnv overrides cfg from TEMPO_* variables. Unparsable numbers and
// booleans are ignored.
func applyEnv(cfg *Config) {
	if v := os.Getenv("TEMPO_DB"); v != "" {
		cfg.DB = v
	}
	if v := os.Getenv("TEMPO_LOG_LEVEL"); v != "" {
		cfg.Log.Level = strings.ToLower(v)
	}
	if v := os.Getenv("TEMPO_LOG_USECASES"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Log.UseCases = b
		}
	}
	envInt("TEMPO_SIM_ITERATIONS", &cfg.Simulation.Iterations)
	envInt("TEMPO_SIM_WORKERS", &cfg.Simulation.Workers)
	envInt("TEMPO_SIM_BINS", &cfg.Simulation.Bins)
	envInt("TEMPO_SIM_DRIVERS", &cfg.Simulation.Drivers)
	if v := os.Getenv("TEMPO_SIM_DISTRIBUTION"); v != "" {
		cfg.Simulation.Distribution = strings.ToLower(v)
	}
	envInt("TEMPO_IMPORT_MAX_TASKS", &cfg.Import.MaxTasks)
	envInt("TEMPO_IMPORT_MAX_STRING", &cfg.Import.MaxString)
}

func envInt(name string, dst *int) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	if n, err := strconv.Atoi(v); err == nil {
		*dst = n
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate reports the first invalid field by its YAML path.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		path := strings.TrimPrefix(fe.Namespace(), "Config.")
		return fmt.Errorf("invalid config: %s fails %q (got %v)", path, fe.Tag(), fe.Value())
	}
	return fmt.Errorf("invalid config: %w", err)
}

// SlogLevel maps Log.Level onto slog.
func (c Config) SlogLevel() slog.Level {
	switch c.Log.Level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

func (c Config) MonteCarlo() montecarlo.Config {
	return montecarlo.Config{
		Iterations:   c.Simulation.Iterations,
		Workers:      c.Simulation.Workers,
		Bins:         c.Simulation.Bins,
		Drivers:      c.Simulation.Drivers,
		Distribution: montecarlo.Distribution(c.Simulation.Distribution),
	}
}

func (c Config) ImportLimits() importer.Limits {
	return importer.Limits{MaxTasks: c.Import.MaxTasks, MaxString: c.Import.MaxString}
}
