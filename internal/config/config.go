// Package config loads the YAML configuration shared by the gomx binaries.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	mx "github.com/njchilds90/gomx"
)

type Config struct {
	Engine    EngineConfig    `yaml:"engine"`
	Server    ServerConfig    `yaml:"server"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Log       LogConfig       `yaml:"log"`
}

// EngineConfig holds the defaults for numerical equivalence checks.
type EngineConfig struct {
	Tolerance float64 `yaml:"tolerance"`
	Samples   int     `yaml:"samples"`
	RangeMin  float64 `yaml:"range_min"`
	RangeMax  float64 `yaml:"range_max"`

	// Seed makes sampling reproducible when non-zero.
	Seed uint64 `yaml:"seed"`

	// Upper bounds on samples and derivative order a tool call may request.
	MaxSamples int `yaml:"max_samples"`
	MaxOrder   int `yaml:"max_order"`
}

type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	MaxBodyBytes int64         `yaml:"max_body_bytes"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

type TelemetryConfig struct {
	ServiceName string `yaml:"service_name"`

	// TraceExporter is "stdout", "otlp" or "none".
	TraceExporter string `yaml:"trace_exporter"`
	OTLPEndpoint  string `yaml:"otlp_endpoint"`
	OTLPInsecure  bool   `yaml:"otlp_insecure"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func DefaultConfig() Config {
	return Config{
		Engine: EngineConfig{
			Tolerance: mx.DefaultTolerance,
			Samples:   mx.DefaultSamples,
			RangeMin:  mx.DefaultRangeMin,
			RangeMax:  mx.DefaultRangeMax,

			MaxSamples: mx.DefaultMaxSamples,
			MaxOrder:   mx.DefaultMaxOrder,
		},
		Server: ServerConfig{
			Addr:         ":8080",
			MaxBodyBytes: 1 << 20,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
		Telemetry: TelemetryConfig{
			ServiceName:   "gomx",
			TraceExporter: "none",
			OTLPEndpoint:  "localhost:4317",
			OTLPInsecure:  true,
		},
		Log: LogConfig{Level: "info", Format: "json"},
	}
}

// Load reads the file at path over the defaults. An empty path yields the
// defaults. GOMX_ADDR and OTEL_EXPORTER_OTLP_ENDPOINT override the file.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read the config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse the config file %s: %w", path, err)
		}
	}
	if v := os.Getenv("GOMX_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" {
		cfg.Telemetry.OTLPEndpoint = v
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.Engine.Samples <= 0 {
		errs = append(errs, fmt.Errorf("engine.samples must be positive, got %d", c.Engine.Samples))
	}
	if c.Engine.MaxSamples <= 0 || c.Engine.MaxOrder < 0 {
		errs = append(errs, fmt.Errorf("engine.max_samples must be positive and engine.max_order not negative"))
	} else if c.Engine.Samples > c.Engine.MaxSamples {
		errs = append(errs, fmt.Errorf("engine.samples %d is above engine.max_samples %d", c.Engine.Samples, c.Engine.MaxSamples))
	}
	if !(c.Engine.Tolerance > 0) {
		errs = append(errs, fmt.Errorf("engine.tolerance must be positive, got %v", c.Engine.Tolerance))
	}
	if !(c.Engine.RangeMin <= c.Engine.RangeMax) {
		errs = append(errs, fmt.Errorf("engine.range_min %v is above range_max %v", c.Engine.RangeMin, c.Engine.RangeMax))
	}
	if c.Server.MaxBodyBytes <= 0 {
		errs = append(errs, fmt.Errorf("server.max_body_bytes must be positive"))
	}
	switch c.Telemetry.TraceExporter {
	case "none", "stdout", "otlp":
	default:
		errs = append(errs, fmt.Errorf("telemetry.trace_exporter %q is not one of none, stdout, otlp", c.Telemetry.TraceExporter))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// Options converts the engine settings to mx.Equal options. A seeded
// source is not safe for concurrent use, so call Options per check.
func (e EngineConfig) Options() []mx.Option {
	opts := []mx.Option{
		mx.WithTolerance(e.Tolerance),
		mx.WithSamples(e.Samples),
		mx.WithRange(e.RangeMin, e.RangeMax),
		mx.WithLimits(e.MaxSamples, e.MaxOrder),
	}
	if e.Seed != 0 {
		opts = append(opts, mx.WithSeed(e.Seed))
	}
	return opts
}

// NewLogger builds the slog logger described by l, writing to w.
func (l LogConfig) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: l.SlogLevel()}
	if strings.EqualFold(l.Format, "text") {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// SlogLevel parses Level, falling back to info for unknown names.
func (l LogConfig) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(l.Level))); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
