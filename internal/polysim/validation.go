package polysim

import (
	"fmt"
	"strings"
)

// ValidationError collects multiple validation issues.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "invalid model: unknown validation error"
	}
	if len(e.Issues) == 1 {
		return e.Issues[0]
	}
	return "model validation errors: " + strings.Join(e.Issues, "; ")
}

func (e *ValidationError) Add(issue string) {
	e.Issues = append(e.Issues, issue)
}

func (e *ValidationError) Addf(format string, v ...any) {
	e.Issues = append(e.Issues, fmt.Sprintf(format, v...))
}

func (e *ValidationError) HasIssues() bool {
	return len(e.Issues) > 0
}

// ValidateModelConfig performs eager validation of a model config. All
// issues are collected so the caller sees everything wrong at once.
func ValidateModelConfig(cfg ModelConfig) error {
	err := &ValidationError{}

	if cfg.Name == "" {
		err.Add("model name is required")
	}
	if cfg.Genome.Name == "" {
		err.Add("genome name is required")
	}
	if cfg.Genome.Length <= 0 {
		err.Addf("genome length must be positive, got %d", cfg.Genome.Length)
	}
	if cfg.CellVolume < 0 {
		err.Addf("cell volume cannot be negative, got %g", cfg.CellVolume)
	}

	polymerases := make(map[string]PolymeraseConfig)
	for _, pol := range cfg.Polymerases {
		if pol.Name == "" {
			err.Add("polymerase name is required")
			continue
		}
		if _, dup := polymerases[pol.Name]; dup {
			err.Addf("duplicate polymerase name: %s", pol.Name)
		}
		if pol.Footprint <= 0 {
			err.Addf("polymerase %q footprint must be positive, got %d", pol.Name, pol.Footprint)
		}
		if pol.Speed <= 0 {
			err.Addf("polymerase %q speed must be positive, got %g", pol.Name, pol.Speed)
		}
		if pol.Copies < 0 {
			err.Addf("polymerase %q copies cannot be negative, got %d", pol.Name, pol.Copies)
		}
		polymerases[pol.Name] = pol
	}

	if cfg.Genome.Mask != nil {
		if cfg.Genome.Mask.Start < 1 || cfg.Genome.Mask.Start > cfg.Genome.Length+1 {
			err.Addf("mask start %d outside genome [1, %d]", cfg.Genome.Mask.Start, cfg.Genome.Length)
		}
		for _, name := range cfg.Genome.Mask.Interactions {
			if _, ok := polymerases[name]; !ok {
				err.Addf("mask interaction %q is not a declared polymerase", name)
			}
		}
	}

	siteNames := make(map[string]bool)
	for _, promoter := range cfg.Genome.Promoters {
		prefix := fmt.Sprintf("promoter %q", promoter.Name)
		if promoter.Name == "" {
			err.Add("promoter name is required")
			continue
		}
		if siteNames[promoter.Name] {
			err.Addf("duplicate site name: %s", promoter.Name)
		}
		siteNames[promoter.Name] = true
		validateSiteInterval(err, prefix, promoter.Start, promoter.Stop, cfg.Genome.Length)
		if len(promoter.Interactions) == 0 {
			err.Addf("%s: at least one interaction is required", prefix)
		}
		for name := range promoter.Interactions {
			pol, ok := polymerases[name]
			if !ok {
				err.Addf("%s: interaction %q is not a declared polymerase", prefix, name)
				continue
			}
			if promoter.Start+pol.Footprint-1 > promoter.Stop {
				err.Addf("%s: polymerase %q footprint %d does not fit in [%d, %d]",
					prefix, name, pol.Footprint, promoter.Start, promoter.Stop)
			}
		}
	}

	for _, terminator := range cfg.Genome.Terminators {
		prefix := fmt.Sprintf("terminator %q", terminator.Name)
		if terminator.Name == "" {
			err.Add("terminator name is required")
			continue
		}
		validateSiteInterval(err, prefix, terminator.Start, terminator.Stop, cfg.Genome.Length)
		for name, efficiency := range terminator.Efficiency {
			if _, ok := polymerases[name]; !ok {
				err.Addf("%s: efficiency entry %q is not a declared polymerase", prefix, name)
			}
			if efficiency < 0 || efficiency > 1 {
				err.Addf("%s: efficiency for %q must be in [0, 1], got %g", prefix, name, efficiency)
			}
		}
	}

	for _, gene := range cfg.Genome.Genes {
		prefix := fmt.Sprintf("gene %q", gene.Name)
		if gene.Name == "" {
			err.Add("gene name is required")
			continue
		}
		validateSiteInterval(err, prefix, gene.Start, gene.Stop, cfg.Genome.Length)
		validateSiteInterval(err, prefix+" rbs", gene.RBSStart, gene.RBSStop, cfg.Genome.Length)
		if gene.RBSStrength <= 0 {
			err.Addf("%s: rbs strength must be positive, got %g", prefix, gene.RBSStrength)
		}
	}

	if len(cfg.Genome.Genes) > 0 {
		if _, ok := polymerases["ribosome"]; !ok {
			err.Add("genes are declared but no \"ribosome\" polymerase is configured")
		}
	}

	if n := len(cfg.Genome.TranscriptWeights); n != 0 && n != cfg.Genome.Length {
		err.Addf("transcript weight vector has length %d, want genome length %d", n, cfg.Genome.Length)
	}
	if cfg.Genome.TranscriptDegradationRate < 0 {
		err.Addf("transcript degradation rate cannot be negative, got %g", cfg.Genome.TranscriptDegradationRate)
	}

	for i, reaction := range cfg.Reactions {
		prefix := fmt.Sprintf("reaction at index %d", i)
		if len(reaction.Reactants) > 2 {
			err.Addf("%s: at most two reactant species are supported, got %d", prefix, len(reaction.Reactants))
		}
		if reaction.RateConstant < 0 {
			err.Addf("%s: rate constant cannot be negative, got %g", prefix, reaction.RateConstant)
		}
		if len(reaction.Reactants) == 0 && len(reaction.Products) == 0 {
			err.Addf("%s: reaction has no reactants and no products", prefix)
		}
	}

	for _, species := range cfg.Species {
		if species.Name == "" {
			err.Add("species name is required")
		}
		if species.Count < 0 {
			err.Addf("species %q count cannot be negative, got %d", species.Name, species.Count)
		}
	}

	if cfg.Run.StopTime <= 0 {
		err.Addf("run stop time must be positive, got %g", cfg.Run.StopTime)
	}
	if cfg.Run.SampleInterval <= 0 {
		err.Addf("run sample interval must be positive, got %g", cfg.Run.SampleInterval)
	}

	if err.HasIssues() {
		return err
	}
	return nil
}

func validateSiteInterval(err *ValidationError, prefix string, start, stop, length int) {
	if start < 1 || stop > length {
		err.Addf("%s: interval [%d, %d] outside genome [1, %d]", prefix, start, stop, length)
	}
	if start > stop {
		err.Addf("%s: interval start %d after stop %d", prefix, start, stop)
	}
}
