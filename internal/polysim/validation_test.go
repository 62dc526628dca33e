package polysim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateModelConfigAcceptsGoodConfig(t *testing.T) {
	assert.NoError(t, ValidateModelConfig(testModelConfig()))
}

func TestValidateModelConfigCollectsIssues(t *testing.T) {
	cfg := ModelConfig{}
	err := ValidateModelConfig(cfg)
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Issues, "model name is required")
	assert.Contains(t, verr.Issues, "genome name is required")
	assert.Greater(t, len(verr.Issues), 2, "all issues should be collected at once")
}

func TestValidateModelConfigRejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ModelConfig)
		message string
	}{
		{
			name:    "negative cell volume",
			mutate:  func(c *ModelConfig) { c.CellVolume = -1 },
			message: "cell volume cannot be negative",
		},
		{
			name: "duplicate polymerase",
			mutate: func(c *ModelConfig) {
				c.Polymerases = append(c.Polymerases, c.Polymerases[0])
			},
			message: "duplicate polymerase name",
		},
		{
			name: "promoter outside genome",
			mutate: func(c *ModelConfig) {
				c.Genome.Promoters[0].Stop = 500
			},
			message: "outside genome",
		},
		{
			name: "undeclared promoter interaction",
			mutate: func(c *ModelConfig) {
				c.Genome.Promoters[0].Interactions = map[string]float64{"ghost": 1.0}
			},
			message: "not a declared polymerase",
		},
		{
			name: "footprint larger than promoter",
			mutate: func(c *ModelConfig) {
				c.Genome.Promoters[0].Stop = 5
			},
			message: "does not fit",
		},
		{
			name: "terminator efficiency out of range",
			mutate: func(c *ModelConfig) {
				c.Genome.Terminators[0].Efficiency["rnapol"] = 1.5
			},
			message: "must be in [0, 1]",
		},
		{
			name: "genes without ribosome",
			mutate: func(c *ModelConfig) {
				c.Polymerases = c.Polymerases[:1]
			},
			message: "no \"ribosome\" polymerase",
		},
		{
			name: "rbs strength not positive",
			mutate: func(c *ModelConfig) {
				c.Genome.Genes[0].RBSStrength = 0
			},
			message: "rbs strength must be positive",
		},
		{
			name: "mask start outside genome",
			mutate: func(c *ModelConfig) {
				c.Genome.Mask = &MaskConfig{Start: 500}
			},
			message: "mask start",
		},
		{
			name: "wrong transcript weight vector length",
			mutate: func(c *ModelConfig) {
				c.Genome.TranscriptWeights = []float64{1, 2, 3}
			},
			message: "transcript weight vector",
		},
		{
			name: "negative degradation rate",
			mutate: func(c *ModelConfig) {
				c.Genome.TranscriptDegradationRate = -0.1
			},
			message: "degradation rate cannot be negative",
		},
		{
			name: "too many reactants",
			mutate: func(c *ModelConfig) {
				c.Reactions = []ReactionConfig{{RateConstant: 1, Reactants: []string{"A", "B", "C"}}}
			},
			message: "at most two reactant species",
		},
		{
			name: "negative species count",
			mutate: func(c *ModelConfig) {
				c.Species = []SpeciesConfig{{Name: "A", Count: -1}}
			},
			message: "count cannot be negative",
		},
		{
			name:    "missing stop time",
			mutate:  func(c *ModelConfig) { c.Run.StopTime = 0 },
			message: "stop time must be positive",
		},
		{
			name:    "missing sample interval",
			mutate:  func(c *ModelConfig) { c.Run.SampleInterval = 0 },
			message: "sample interval must be positive",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testModelConfig()
			tc.mutate(&cfg)
			err := ValidateModelConfig(cfg)
			require.Error(t, err)
			assert.ErrorContains(t, err, tc.message)
		})
	}
}

func TestValidationErrorFormatting(t *testing.T) {
	err := &ValidationError{}
	assert.False(t, err.HasIssues())

	err.Add("first issue")
	assert.Equal(t, "first issue", err.Error())

	err.Addf("second issue about %s", "x")
	assert.Contains(t, err.Error(), "model validation errors")
	assert.Contains(t, err.Error(), "second issue about x")
}
