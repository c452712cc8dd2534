package testkit

import (
	"context"
	"sort"

	"gopulse/domain/core"
	"gopulse/domain/stats"
	"gopulse/ports"
)

// Example dataset names served by the lessons, the API and the CLI
const (
	ExampleLaid   = "laid"
	ExampleHung   = "hung"
	ExampleTorque = "torque"
)

// laidRunout and hungRunout are runout readings (thousandths of an inch) for
// parts cooled lying flat versus hanging from a fixture.
var (
	laidRunout = []float64{
		5, 8, 8, 9, 9, 9, 9, 10, 10, 10, 11, 11, 11, 11, 11, 11, 11, 12, 12, 12,
		12, 13, 13, 13, 13, 14, 14, 14, 15, 15, 15, 15, 16, 17, 17, 18, 19, 27,
	}
	hungRunout = []float64{
		3, 4, 5, 5, 6, 6, 6, 7, 7, 7, 7, 8, 8, 8, 8, 9, 9, 9, 10, 10, 11, 12,
	}
)

// TestKit supplies the fixed and generated datasets behind the lessons
type TestKit struct {
	rng    ports.RNGPort
	seed   int64
	torque TorqueGeneratorConfig
}

// NewTestKit creates a kit whose generated data is fully determined by seed
func NewTestKit(seed int64) *TestKit {
	return &TestKit{
		rng:    &RNGAdapter{},
		seed:   seed,
		torque: DefaultTorqueConfig(),
	}
}

// WithTorqueConfig returns a copy of the kit generating torque data from cfg
func (t *TestKit) WithTorqueConfig(cfg TorqueGeneratorConfig) *TestKit {
	clone := *t
	clone.torque = cfg
	return &clone
}

// Seed returns the base seed
func (t *TestKit) Seed() int64 {
	return t.seed
}

// TorqueConfig returns the generator configuration in use
func (t *TestKit) TorqueConfig() TorqueGeneratorConfig {
	return t.torque
}

// DistortionGroups returns the "Laid" and "Hung" runout samples
func (t *TestKit) DistortionGroups() (laid, hung stats.Sample) {
	return stats.NewSample("Laid", laidRunout), stats.NewSample("Hung", hungRunout)
}

// TorqueTension generates the torque/tension pair from the kit's seed
func (t *TestKit) TorqueTension(ctx context.Context) (stats.PairedSample, error) {
	rng, err := t.rng.SeededStream(ctx, ExampleTorque, t.seed)
	if err != nil {
		return stats.PairedSample{}, err
	}
	return GenerateTorqueTension(rng, t.torque)
}

// ExampleNames lists the datasets Example accepts
func ExampleNames() []string {
	names := []string{ExampleLaid, ExampleHung, ExampleTorque}
	sort.Strings(names)
	return names
}

// Example returns a named dataset. Group examples come back as a Sample,
// the torque example as a PairedSample.
func (t *TestKit) Example(ctx context.Context, name string) (interface{}, error) {
	laid, hung := t.DistortionGroups()
	switch name {
	case ExampleLaid:
		return laid, nil
	case ExampleHung:
		return hung, nil
	case ExampleTorque:
		return t.TorqueTension(ctx)
	default:
		return nil, core.NewNotFoundError(core.ErrExampleUnknown, name)
	}
}
