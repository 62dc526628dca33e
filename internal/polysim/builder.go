package polysim

import (
	"fmt"
	"math/rand"
	"time"

	"gopkg.in/yaml.v3"
)

// Model is a fully assembled simulation: the genome, the shared species
// tracker, and the scheduler with every reaction registered.
type Model struct {
	Config    ModelConfig
	Tracker   *SpeciesTracker
	Genome    *Genome
	Scheduler *Scheduler
}

// LoadModelConfig parses and validates a YAML model config.
func LoadModelConfig(data []byte) (ModelConfig, error) {
	var cfg ModelConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return ModelConfig{}, fmt.Errorf("parsing model config: %w", err)
	}
	if err := ValidateModelConfig(cfg); err != nil {
		return ModelConfig{}, fmt.Errorf("validating model config: %w", err)
	}
	return cfg, nil
}

// BuildModel assembles a runnable model from a validated config.
func BuildModel(cfg ModelConfig, logger Logger) (*Model, error) {
	if logger == nil {
		logger = NewNoOpLogger()
	}
	volume := cfg.CellVolume
	if volume == 0 {
		volume = DefaultCellVolume
	}
	seed := cfg.Run.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	tracker := NewSpeciesTracker()
	tracker.SetLogger(logger)

	genome := NewGenome(cfg.Genome.Name, cfg.Genome.Length, cfg.Genome.TranscriptDegradationRate, tracker, rng)
	for _, promoter := range cfg.Genome.Promoters {
		genome.AddPromoter(promoter.Name, promoter.Start, promoter.Stop, promoter.Interactions)
	}
	for _, terminator := range cfg.Genome.Terminators {
		genome.AddTerminator(terminator.Name, terminator.Start, terminator.Stop, terminator.Efficiency)
	}
	for _, gene := range cfg.Genome.Genes {
		genome.AddGene(gene.Name, gene.Start, gene.Stop, gene.RBSStart, gene.RBSStop, gene.RBSStrength)
	}
	if len(cfg.Genome.TranscriptWeights) != 0 {
		if err := genome.AddWeights(cfg.Genome.TranscriptWeights); err != nil {
			return nil, err
		}
	}
	if cfg.Genome.Mask != nil {
		genome.AddMask(cfg.Genome.Mask.Start, cfg.Genome.Mask.Interactions)
	}
	if err := genome.Initialize(); err != nil {
		return nil, fmt.Errorf("initializing genome %q: %w", cfg.Genome.Name, err)
	}

	scheduler := NewScheduler(tracker, rng, logger)
	scheduler.AddPolymer(genome.Polymer)

	polymerases := make(map[string]PolymeraseConfig, len(cfg.Polymerases))
	for _, pol := range cfg.Polymerases {
		polymerases[pol.Name] = pol
		tracker.Increment(pol.Name, pol.Copies)
	}
	for _, species := range cfg.Species {
		tracker.Increment(species.Name, species.Count)
	}

	for siteName, interactions := range genome.Bindings() {
		for polName, rate := range interactions {
			pol, ok := polymerases[polName]
			if !ok {
				return nil, fmt.Errorf("site %q interacts with undeclared polymerase %q", siteName, polName)
			}
			bind, err := NewBindReaction(tracker, rng, rate, volume, polName, siteName,
				pol.Footprint, pol.Speed, false)
			if err != nil {
				return nil, err
			}
			scheduler.AddReaction(bind)
		}
	}
	if cfg.Genome.TranscriptDegradationRate != 0 {
		bind, err := NewBindReaction(tracker, rng, cfg.Genome.TranscriptDegradationRate, volume,
			RnaseName, RnaseSiteName, DefaultRnaseFootprint, DefaultRnaseSpeed, true)
		if err != nil {
			return nil, err
		}
		scheduler.AddReaction(bind)
	}

	for i, reaction := range cfg.Reactions {
		speciesReaction, err := NewSpeciesReaction(tracker, reaction.RateConstant, volume,
			reaction.Reactants, reaction.Products)
		if err != nil {
			return nil, fmt.Errorf("reaction at index %d: %w", i, err)
		}
		scheduler.AddReaction(speciesReaction)
	}

	return &Model{
		Config:    cfg,
		Tracker:   tracker,
		Genome:    genome,
		Scheduler: scheduler,
	}, nil
}
