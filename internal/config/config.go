// Package config assembles run configuration from three layers, lowest
// priority first: built-in defaults, an optional YAML tuning file, and
// environment variables / CLI flags. It carries the cost weights and
// search tuning parameters used across the solver.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"trashcvrp/internal/routeplan"
)

// Config holds every tunable knob the solver needs, plus the optional
// external-service endpoints selected via environment variables.
type Config struct {
	Weights routeplan.Weights `yaml:"weights"`

	NeighborhoodCap     int     `yaml:"neighborhood_cap"`
	TabuTenureMin       int     `yaml:"tabu_tenure_min"`
	TabuTenureMax       int     `yaml:"tabu_tenure_max"`
	FleetReductionSlack float64 `yaml:"fleet_reduction_slack"`

	Seed       int64         `yaml:"seed"`
	TimeBudget time.Duration `yaml:"-"`

	OSRMBaseURL string `yaml:"-"`
	DatabaseURL string `yaml:"-"`
	RedisURL    string `yaml:"-"`
}

// Defaults returns the built-in configuration matching the reference
// coefficients and tuning bounds.
func Defaults() Config {
	return Config{
		Weights:             routeplan.DefaultWeights,
		NeighborhoodCap:     5000,
		TabuTenureMin:       7,
		TabuTenureMax:       30,
		FleetReductionSlack: 0.02,
		Seed:                1,
		TimeBudget:          60 * time.Second,
	}
}

// LoadYAML overlays path's YAML content onto cfg's weights and tuning
// fields. Fields the file does not mention keep cfg's values; a field the
// file sets explicitly, even to zero, replaces cfg's value.
func LoadYAML(cfg Config, path string) (Config, error) {
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("load config %q: %w", path, err)
	}
	overlay := cfg
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return cfg, fmt.Errorf("load config %q: parse yaml: %w", path, err)
	}
	return overlay, nil
}

// FromEnv overlays deployment-time environment variables onto cfg.
// TRASH_SEED and TRASH_TIME_BUDGET are left at cfg's existing value when
// unset or unparseable, so a bad value never silently zeroes the budget.
func FromEnv(cfg Config) Config {
	cfg.OSRMBaseURL = os.Getenv("OSRM_BASE_URL")
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.RedisURL = os.Getenv("REDIS_URL")
	if s := os.Getenv("TRASH_SEED"); s != "" {
		if seed, err := strconv.ParseInt(s, 10, 64); err == nil {
			cfg.Seed = seed
		}
	}
	if s := os.Getenv("TRASH_TIME_BUDGET"); s != "" {
		if budget, err := time.ParseDuration(s); err == nil {
			cfg.TimeBudget = budget
		}
	}
	return cfg
}

// TabuTenure returns clamp(TabuTenureMin, sqrt(nContainers), TabuTenureMax).
func (c Config) TabuTenure(nContainers int) int {
	t := int(isqrt(nContainers))
	if t < c.TabuTenureMin {
		return c.TabuTenureMin
	}
	if t > c.TabuTenureMax {
		return c.TabuTenureMax
	}
	return t
}

func isqrt(n int) int {
	if n <= 0 {
		return 0
	}
	x := n
	y := (x + 1) / 2
	for y < x {
		x = y
		y = (x + n/x) / 2
	}
	return x
}

// MaxIters returns the default iteration cap: 10 * nContainers.
func MaxIters(nContainers int) int { return 10 * nContainers }

// Patience returns the default no-improvement iteration cap: 2 * nContainers.
func Patience(nContainers int) int { return 2 * nContainers }
