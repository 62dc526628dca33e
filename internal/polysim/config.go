package polysim

// ModelConfig is the on-disk description of one simulation model: the
// genome with its annotated sites, the mover species that traverse it,
// initial species counts, chemical reactions, and run parameters.
// Loadable from YAML or JSON.
type ModelConfig struct {
	Name        string             `yaml:"name" json:"name"`
	CellVolume  float64            `yaml:"cell_volume,omitempty" json:"cell_volume,omitempty"`
	Genome      GenomeConfig       `yaml:"genome" json:"genome"`
	Polymerases []PolymeraseConfig `yaml:"polymerases" json:"polymerases"`
	Species     []SpeciesConfig    `yaml:"species,omitempty" json:"species,omitempty"`
	Reactions   []ReactionConfig   `yaml:"reactions,omitempty" json:"reactions,omitempty"`
	Run         RunConfig          `yaml:"run" json:"run"`
}

// GenomeConfig describes the genome polymer and its fixed sites.
type GenomeConfig struct {
	Name        string             `yaml:"name" json:"name"`
	Length      int                `yaml:"length" json:"length"`
	Mask        *MaskConfig        `yaml:"mask,omitempty" json:"mask,omitempty"`
	Promoters   []PromoterConfig   `yaml:"promoters,omitempty" json:"promoters,omitempty"`
	Terminators []TerminatorConfig `yaml:"terminators,omitempty" json:"terminators,omitempty"`
	Genes       []GeneConfig       `yaml:"genes,omitempty" json:"genes,omitempty"`

	// TranscriptDegradationRate, when nonzero, injects a decay binding
	// site into every spawned transcript.
	TranscriptDegradationRate float64 `yaml:"transcript_degradation_rate,omitempty" json:"transcript_degradation_rate,omitempty"`
	// TranscriptWeights is an optional per-position speed modulation
	// vector applied to transcripts (e.g. codon bias). Must have exactly
	// genome length entries when present.
	TranscriptWeights []float64 `yaml:"transcript_weights,omitempty" json:"transcript_weights,omitempty"`
}

// MaskConfig masks the genome from Start to its end, modeling sequence
// that has not yet entered the cell. Interactions names the polymerases
// allowed to push the mask back.
type MaskConfig struct {
	Start        int      `yaml:"start" json:"start"`
	Interactions []string `yaml:"interactions,omitempty" json:"interactions,omitempty"`
}

// PromoterConfig is a binding site on the genome. Interactions maps
// polymerase names to macroscopic binding rate constants.
type PromoterConfig struct {
	Name         string             `yaml:"name" json:"name"`
	Start        int                `yaml:"start" json:"start"`
	Stop         int                `yaml:"stop" json:"stop"`
	Interactions map[string]float64 `yaml:"interactions" json:"interactions"`
}

// TerminatorConfig is a release site on the genome. Efficiency maps
// polymerase names to termination probability in [0, 1].
type TerminatorConfig struct {
	Name       string             `yaml:"name" json:"name"`
	Start      int                `yaml:"start" json:"start"`
	Stop       int                `yaml:"stop" json:"stop"`
	Efficiency map[string]float64 `yaml:"efficiency" json:"efficiency"`
}

// GeneConfig is a gene on the transcript template: a coding region with
// its ribosome binding site.
type GeneConfig struct {
	Name        string  `yaml:"name" json:"name"`
	Start       int     `yaml:"start" json:"start"`
	Stop        int     `yaml:"stop" json:"stop"`
	RBSStart    int     `yaml:"rbs_start" json:"rbs_start"`
	RBSStop     int     `yaml:"rbs_stop" json:"rbs_stop"`
	RBSStrength float64 `yaml:"rbs_strength" json:"rbs_strength"`
}

// PolymeraseConfig describes a mover species: polymerases and ribosomes
// alike. Copies is the initial free count.
type PolymeraseConfig struct {
	Name      string  `yaml:"name" json:"name"`
	Footprint int     `yaml:"footprint" json:"footprint"`
	Speed     float64 `yaml:"speed" json:"speed"`
	Copies    int     `yaml:"copies" json:"copies"`
}

// SpeciesConfig seeds an initial copy number for a chemical species.
type SpeciesConfig struct {
	Name  string `yaml:"name" json:"name"`
	Count int    `yaml:"count" json:"count"`
}

// ReactionConfig is a mass-action reaction with at most two reactants.
type ReactionConfig struct {
	RateConstant float64  `yaml:"rate_constant" json:"rate_constant"`
	Reactants    []string `yaml:"reactants" json:"reactants"`
	Products     []string `yaml:"products" json:"products"`
}

// RunConfig holds run parameters.
type RunConfig struct {
	Seed           int64   `yaml:"seed,omitempty" json:"seed,omitempty"`
	StopTime       float64 `yaml:"stop_time" json:"stop_time"`
	SampleInterval float64 `yaml:"sample_interval" json:"sample_interval"`
}

// DefaultCellVolume is the reaction volume used when the config leaves
// cell_volume unset, in liters (E. coli cytoplasm).
const DefaultCellVolume = 8e-15

// Default geometry of the degrading enzyme bound at decay sites.
const (
	DefaultRnaseFootprint = 10
	DefaultRnaseSpeed     = 30
)
