package testkit

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"gopulse/domain/core"
	"gopulse/domain/stats"
)

// TorqueGeneratorConfig configures the bolted-joint torque/tension generator.
// Tension follows the short-form torque equation T = K·D·F, so
// F = T / (K·D), plus gaussian measurement noise.
type TorqueGeneratorConfig struct {
	Points      int     `json:"points" yaml:"points"`
	MinTorque   float64 `json:"min_torque" yaml:"min_torque"`       // N·m
	MaxTorque   float64 `json:"max_torque" yaml:"max_torque"`       // N·m
	NutFactor   float64 `json:"nut_factor" yaml:"nut_factor"`       // K, dimensionless
	Diameter    float64 `json:"diameter" yaml:"diameter"`           // D, metres
	NoiseStdDev float64 `json:"noise_std_dev" yaml:"noise_std_dev"` // kN
}

// DefaultTorqueConfig describes a lubricated 1/2" bolt
func DefaultTorqueConfig() TorqueGeneratorConfig {
	return TorqueGeneratorConfig{
		Points:      30,
		MinTorque:   20,
		MaxTorque:   120,
		NutFactor:   0.2,
		Diameter:    0.0127,
		NoiseStdDev: 2.5,
	}
}

// TensionPerTorque is the true slope in kN per N·m.
func (c TorqueGeneratorConfig) TensionPerTorque() float64 {
	return 1 / (c.NutFactor * c.Diameter) / 1000
}

func (c TorqueGeneratorConfig) validate() error {
	switch {
	case c.Points < 2:
		return core.NewInvalidInputError("points", fmt.Sprintf("need at least 2, got %d", c.Points))
	case c.MaxTorque <= c.MinTorque:
		return core.NewInvalidInputError("torque range", fmt.Sprintf("max %.1f must exceed min %.1f", c.MaxTorque, c.MinTorque))
	case c.NutFactor <= 0 || c.Diameter <= 0:
		return core.NewInvalidInputError("joint", "nut factor and diameter must be positive")
	case c.NoiseStdDev < 0:
		return core.NewInvalidInputError("noise", "standard deviation cannot be negative")
	}
	return nil
}

// GenerateTorqueTension draws torque readings uniformly from the configured
// range and the matching tension readings. All randomness comes from rng,
// so the same stream state always yields the same sample.
func GenerateTorqueTension(rng *rand.Rand, cfg TorqueGeneratorConfig) (stats.PairedSample, error) {
	if rng == nil {
		return stats.PairedSample{}, core.NewInvalidInputError("rng", "a seeded source is required")
	}
	if err := cfg.validate(); err != nil {
		return stats.PairedSample{}, err
	}

	torque := make([]float64, cfg.Points)
	for i := range torque {
		torque[i] = round1(cfg.MinTorque + rng.Float64()*(cfg.MaxTorque-cfg.MinTorque))
	}
	sort.Float64s(torque)

	k := cfg.TensionPerTorque()
	tension := make([]float64, cfg.Points)
	for i, t := range torque {
		tension[i] = round1(k*t + rng.NormFloat64()*cfg.NoiseStdDev)
	}

	return stats.NewPairedSample("Torque (N·m)", "Tension (kN)", torque, tension), nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
