// Package simconfig loads the driver-facing knobs for a simulation run:
// solver tolerances, default thresholds, and ambient logging/metrics
// settings. It mirrors the shape and loading order of the teacher's
// pkg/config package: defaults, then an optional YAML file, then
// environment-variable overrides.
package simconfig

import (
	"fmt"
	"os"
	"strings"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// SolverConfig controls tolerances and step bounds shared by the bus
// Newton correction and the top-level run loop.
type SolverConfig struct {
	ConvergenceTolerance float64 `json:"convergence_tolerance" yaml:"convergence_tolerance" env:"SIMCORE_CONVERGENCE_TOLERANCE"`
	LowVoltageThreshold  float64 `json:"low_voltage_threshold" yaml:"low_voltage_threshold" env:"SIMCORE_LOW_VOLTAGE_THRESHOLD"`
	DisconnectVoltage    float64 `json:"disconnect_voltage" yaml:"disconnect_voltage" env:"SIMCORE_DISCONNECT_VOLTAGE"`
	MaxVoltageStepUp     float64 `json:"max_voltage_step_up" yaml:"max_voltage_step_up" env:"SIMCORE_MAX_VOLTAGE_STEP_UP"`
	MaxVoltageStepRatio  float64 `json:"max_voltage_step_ratio" yaml:"max_voltage_step_ratio" env:"SIMCORE_MAX_VOLTAGE_STEP_RATIO"`
	MaxAngleStep         float64 `json:"max_angle_step" yaml:"max_angle_step" env:"SIMCORE_MAX_ANGLE_STEP"`
	OscillationLimit     int     `json:"oscillation_limit" yaml:"oscillation_limit" env:"SIMCORE_OSCILLATION_LIMIT"`
}

// RunConfig controls the default run-loop timing.
type RunConfig struct {
	StepTime      float64 `json:"step_time" yaml:"step_time" env:"SIMCORE_STEP_TIME"`
	MaxUpdateTime float64 `json:"max_update_time" yaml:"max_update_time" env:"SIMCORE_MAX_UPDATE_TIME"`
}

// LoggingConfig controls the root logger.
type LoggingConfig struct {
	Level string `json:"level" yaml:"level" env:"SIMCORE_LOG_LEVEL"`
}

// MetricsConfig controls the metrics registry/listener.
type MetricsConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled" env:"SIMCORE_METRICS_ENABLED"`
	Addr    string `json:"addr" yaml:"addr" env:"SIMCORE_METRICS_ADDR"`
}

// Config is the top-level configuration structure for a simulation run.
type Config struct {
	Solver  SolverConfig  `json:"solver" yaml:"solver"`
	Run     RunConfig     `json:"run" yaml:"run"`
	Logging LoggingConfig `json:"logging" yaml:"logging"`
	Metrics MetricsConfig `json:"metrics" yaml:"metrics"`
}

// New returns a Config populated with defaults matching the values named
// throughout spec.md (the 75%/0.2pu/pi-8 step clamps, the 1e-8 disconnect
// floor, the oscillation counter bound of 5).
func New() *Config {
	return &Config{
		Solver: SolverConfig{
			ConvergenceTolerance: 1e-6,
			LowVoltageThreshold:  0.25,
			DisconnectVoltage:    1e-8,
			MaxVoltageStepUp:     0.2,
			MaxVoltageStepRatio:  0.75,
			MaxAngleStep:         0.3926990817, // pi/8
			OscillationLimit:     5,
		},
		Run: RunConfig{
			StepTime:      0.01,
			MaxUpdateTime: 1.0,
		},
		Logging: LoggingConfig{Level: "info"},
		Metrics: MetricsConfig{Enabled: false, Addr: ":9090"},
	}
}

// Load loads configuration from an optional .env file, an optional YAML
// file named by CONFIG_FILE (or "configs/simcore.yaml" if present), and
// finally environment-variable overrides — in that priority order, lowest
// to highest, matching the teacher's pkg/config.Load.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := New()

	path := strings.TrimSpace(os.Getenv("CONFIG_FILE"))
	if path == "" {
		path = "configs/simcore.yaml"
	}
	if err := loadFromFile(path, cfg); err != nil {
		return nil, err
	}

	if err := envdecode.Decode(cfg); err != nil {
		if !strings.Contains(err.Error(), "none of the target fields were set") {
			return nil, fmt.Errorf("decode env: %w", err)
		}
	}

	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return yaml.Unmarshal(data, cfg)
}
