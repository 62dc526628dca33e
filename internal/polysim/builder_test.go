package polysim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildModelWiresReactions(t *testing.T) {
	cfg := testModelConfig()
	cfg.Species = []SpeciesConfig{{Name: "inducer", Count: 50}}
	cfg.Reactions = []ReactionConfig{
		{RateConstant: 0.1, Reactants: []string{"inducer"}, Products: []string{"waste"}},
	}

	model, err := BuildModel(cfg, nil)
	require.NoError(t, err)

	// One binding reaction per site interaction plus the declared
	// chemical reaction.
	assert.Len(t, model.Scheduler.reactions, 3)
	assert.Len(t, model.Scheduler.polymers, 1)

	assert.Equal(t, 10, model.Tracker.Count("rnapol"))
	assert.Equal(t, 100, model.Tracker.Count("ribosome"))
	assert.Equal(t, 50, model.Tracker.Count("inducer"))

	// The genome's promoter is exposed and registered.
	assert.Equal(t, 1, model.Tracker.Count("p1"))
	assert.Len(t, model.Tracker.FindPolymers("p1"), 1)
}

func TestBuildModelAddsDegradationReaction(t *testing.T) {
	cfg := testModelConfig()
	cfg.Genome.TranscriptDegradationRate = 1e-2
	cfg.Species = []SpeciesConfig{{Name: RnaseName, Count: 20}}

	model, err := BuildModel(cfg, nil)
	require.NoError(t, err)

	// Two binding reactions from the genome plus the decay binding
	// reaction.
	assert.Len(t, model.Scheduler.reactions, 3)
	assert.Equal(t, 20, model.Tracker.Count(RnaseName))
}

func TestBuildModelUndeclaredPolymerase(t *testing.T) {
	cfg := testModelConfig()
	cfg.Polymerases = cfg.Polymerases[:1]
	cfg.Genome.Genes = nil // leaves the rbs binding without a ribosome

	cfg.Genome.Promoters[0].Interactions = map[string]float64{"ghost": 1.0}
	_, err := BuildModel(cfg, nil)
	require.Error(t, err)
	assert.ErrorContains(t, err, "undeclared polymerase")
}

func TestBuildModelAppliesMaskAndWeights(t *testing.T) {
	cfg := testModelConfig()
	cfg.Genome.Mask = &MaskConfig{Start: 50, Interactions: []string{"rnapol"}}
	weights := make([]float64, cfg.Genome.Length)
	for i := range weights {
		weights[i] = 2.0
	}
	cfg.Genome.TranscriptWeights = weights

	model, err := BuildModel(cfg, nil)
	require.NoError(t, err)

	assert.Equal(t, 50, model.Genome.Mask().Start())
	assert.True(t, model.Genome.Mask().CheckInteraction("rnapol"))
	assert.Equal(t, 2.0, model.Genome.transcriptWeights[0])
}

func TestBuildModelSeedsDeterministically(t *testing.T) {
	cfg := testModelConfig()
	first, err := BuildModel(cfg, nil)
	require.NoError(t, err)
	second, err := BuildModel(cfg, nil)
	require.NoError(t, err)

	// Distinct runs get distinct identities even with the same seed.
	assert.NotEqual(t, first.Scheduler.ID(), second.Scheduler.ID())
}
