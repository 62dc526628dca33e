// Package client provides a fluent API for assembling simulation models
// and a thin HTTP client for the simulation server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/stochsim/polysim/internal/polysim"
)

// ModelBuilder provides a fluent API for building simulation models.
// Use it to describe a genome, the polymerases and ribosomes that
// traverse it, and the run parameters, then Build or submit the result.
type ModelBuilder struct {
	cfg polysim.ModelConfig
}

// NewModel creates a new model builder with the given name.
func NewModel(name string) *ModelBuilder {
	return &ModelBuilder{cfg: polysim.ModelConfig{Name: name}}
}

// CellVolume sets the reaction volume in liters. When not set, the
// simulation uses the default cell volume.
func (mb *ModelBuilder) CellVolume(volume float64) *ModelBuilder {
	mb.cfg.CellVolume = volume
	return mb
}

// Genome attaches the genome description built with a GenomeBuilder.
func (mb *ModelBuilder) Genome(gb *GenomeBuilder) *ModelBuilder {
	mb.cfg.Genome = gb.Build()
	return mb
}

// Polymerase declares a mover species with its footprint in base pairs,
// speed in positions per second, and initial free copy count. Ribosomes
// are declared the same way.
func (mb *ModelBuilder) Polymerase(name string, footprint int, speed float64, copies int) *ModelBuilder {
	mb.cfg.Polymerases = append(mb.cfg.Polymerases, polysim.PolymeraseConfig{
		Name:      name,
		Footprint: footprint,
		Speed:     speed,
		Copies:    copies,
	})
	return mb
}

// Species seeds an initial copy number for a chemical species.
func (mb *ModelBuilder) Species(name string, count int) *ModelBuilder {
	mb.cfg.Species = append(mb.cfg.Species, polysim.SpeciesConfig{Name: name, Count: count})
	return mb
}

// Reaction adds a mass-action reaction. Bimolecular rate constants are
// macroscopic and converted to mesoscopic propensities using the cell
// volume. At most two reactants are allowed.
func (mb *ModelBuilder) Reaction(rateConstant float64, reactants, products []string) *ModelBuilder {
	mb.cfg.Reactions = append(mb.cfg.Reactions, polysim.ReactionConfig{
		RateConstant: rateConstant,
		Reactants:    reactants,
		Products:     products,
	})
	return mb
}

// Seed fixes the random seed so runs are reproducible. Without it each
// run draws a fresh seed.
func (mb *ModelBuilder) Seed(seed int64) *ModelBuilder {
	mb.cfg.Run.Seed = seed
	return mb
}

// RunFor sets the simulated stop time and the interval between species
// count samples, both in seconds.
func (mb *ModelBuilder) RunFor(stopTime, sampleInterval float64) *ModelBuilder {
	mb.cfg.Run.StopTime = stopTime
	mb.cfg.Run.SampleInterval = sampleInterval
	return mb
}

// Build converts the builder to a ModelConfig that can be loaded
// locally or submitted to a server with Client.StartRun.
func (mb *ModelBuilder) Build() polysim.ModelConfig {
	return mb.cfg
}

// GenomeBuilder provides a fluent API for describing a genome polymer:
// its length, entry mask, and the promoters, terminators, and genes
// annotated on it.
type GenomeBuilder struct {
	cfg polysim.GenomeConfig
}

// NewGenome creates a genome builder for a polymer of the given length.
func NewGenome(name string, length int) *GenomeBuilder {
	return &GenomeBuilder{cfg: polysim.GenomeConfig{Name: name, Length: length}}
}

// Mask hides the genome from start to its end, modeling sequence that
// has not yet entered the cell. The named polymerases may push the mask
// back as they move.
func (gb *GenomeBuilder) Mask(start int, interactions ...string) *GenomeBuilder {
	gb.cfg.Mask = &polysim.MaskConfig{Start: start, Interactions: interactions}
	return gb
}

// Promoter adds a promoter built with a PromoterBuilder.
func (gb *GenomeBuilder) Promoter(pb *PromoterBuilder) *GenomeBuilder {
	gb.cfg.Promoters = append(gb.cfg.Promoters, pb.Build())
	return gb
}

// Terminator adds a terminator built with a TerminatorBuilder.
func (gb *GenomeBuilder) Terminator(tb *TerminatorBuilder) *GenomeBuilder {
	gb.cfg.Terminators = append(gb.cfg.Terminators, tb.Build())
	return gb
}

// Gene adds a coding region with its ribosome binding site. The RBS
// spans [rbsStart, rbsStop] and binds ribosomes at the given
// macroscopic rate constant.
func (gb *GenomeBuilder) Gene(name string, start, stop, rbsStart, rbsStop int, rbsStrength float64) *GenomeBuilder {
	gb.cfg.Genes = append(gb.cfg.Genes, polysim.GeneConfig{
		Name:        name,
		Start:       start,
		Stop:        stop,
		RBSStart:    rbsStart,
		RBSStop:     rbsStop,
		RBSStrength: rbsStrength,
	})
	return gb
}

// DegradationRate enables transcript decay: every spawned transcript
// carries a degradation site bound at this macroscopic rate.
func (gb *GenomeBuilder) DegradationRate(rate float64) *GenomeBuilder {
	gb.cfg.TranscriptDegradationRate = rate
	return gb
}

// Weights sets the per-position speed modulation applied to
// transcripts, e.g. codon bias. Must have exactly one entry per genome
// position.
func (gb *GenomeBuilder) Weights(weights ...float64) *GenomeBuilder {
	gb.cfg.TranscriptWeights = weights
	return gb
}

// Build converts the builder to a GenomeConfig.
func (gb *GenomeBuilder) Build() polysim.GenomeConfig {
	return gb.cfg
}

// PromoterBuilder provides a fluent API for building promoter sites.
type PromoterBuilder struct {
	cfg polysim.PromoterConfig
}

// NewPromoter creates a promoter spanning [start, stop].
func NewPromoter(name string, start, stop int) *PromoterBuilder {
	return &PromoterBuilder{cfg: polysim.PromoterConfig{
		Name:         name,
		Start:        start,
		Stop:         stop,
		Interactions: make(map[string]float64),
	}}
}

// Binding lets the named polymerase bind this promoter at the given
// macroscopic rate constant.
func (pb *PromoterBuilder) Binding(polymerase string, rateConstant float64) *PromoterBuilder {
	pb.cfg.Interactions[polymerase] = rateConstant
	return pb
}

// Build converts the builder to a PromoterConfig.
func (pb *PromoterBuilder) Build() polysim.PromoterConfig {
	return pb.cfg
}

// TerminatorBuilder provides a fluent API for building terminator sites.
type TerminatorBuilder struct {
	cfg polysim.TerminatorConfig
}

// NewTerminator creates a terminator spanning [start, stop].
func NewTerminator(name string, start, stop int) *TerminatorBuilder {
	return &TerminatorBuilder{cfg: polysim.TerminatorConfig{
		Name:       name,
		Start:      start,
		Stop:       stop,
		Efficiency: make(map[string]float64),
	}}
}

// Efficiency sets the probability in [0, 1] that the named polymerase
// terminates here rather than reading through.
func (tb *TerminatorBuilder) Efficiency(polymerase string, efficiency float64) *TerminatorBuilder {
	tb.cfg.Efficiency[polymerase] = efficiency
	return tb
}

// Build converts the builder to a TerminatorConfig.
func (tb *TerminatorBuilder) Build() polysim.TerminatorConfig {
	return tb.cfg
}

// RunStatus is the state of a run as reported by the server.
type RunStatus struct {
	RunID   string  `json:"run_id"`
	Model   string  `json:"model"`
	Status  string  `json:"status"`
	Time    float64 `json:"time"`
	Samples int     `json:"samples"`
	Error   string  `json:"error,omitempty"`
}

// SpeciesCounts is a point-in-time view of species copy numbers.
type SpeciesCounts struct {
	RunID   string         `json:"run_id"`
	Time    float64        `json:"time"`
	Species map[string]int `json:"species"`
}

// Client talks to a simulation server over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the server at baseURL, e.g.
// "http://localhost:8080".
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	u, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return fmt.Errorf("building URL: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// StartRun submits a model and starts a simulation run, returning the
// run ID.
func (c *Client) StartRun(ctx context.Context, cfg polysim.ModelConfig) (string, error) {
	var created struct {
		RunID string `json:"run_id"`
	}
	if err := c.do(ctx, http.MethodPost, "/runs", cfg, &created); err != nil {
		return "", err
	}
	return created.RunID, nil
}

// ListRuns returns the IDs of all runs known to the server.
func (c *Client) ListRuns(ctx context.Context) ([]string, error) {
	var list struct {
		Runs []string `json:"runs"`
	}
	if err := c.do(ctx, http.MethodGet, "/runs", nil, &list); err != nil {
		return nil, err
	}
	return list.Runs, nil
}

// Status returns the current state of a run.
func (c *Client) Status(ctx context.Context, runID string) (RunStatus, error) {
	var status RunStatus
	err := c.do(ctx, http.MethodGet, "/runs/"+runID, nil, &status)
	return status, err
}

// Species returns the current species counts of a run.
func (c *Client) Species(ctx context.Context, runID string) (SpeciesCounts, error) {
	var counts SpeciesCounts
	err := c.do(ctx, http.MethodGet, "/runs/"+runID+"/species", nil, &counts)
	return counts, err
}

// Report returns the sampled species counts of a run as tab-separated
// values, one row per sample time.
func (c *Client) Report(ctx context.Context, runID string) ([]byte, error) {
	u, err := url.JoinPath(c.baseURL, "/runs/"+runID+"/report")
	if err != nil {
		return nil, fmt.Errorf("building URL: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}
	return io.ReadAll(resp.Body)
}

// DeleteRun cancels a run and removes it from the server.
func (c *Client) DeleteRun(ctx context.Context, runID string) error {
	return c.do(ctx, http.MethodDelete, "/runs/"+runID, nil, nil)
}

// WaitForRun polls until the run leaves the running state or the
// context is done, and returns the final status. A run that ends in the
// failed state yields an error carrying the server-side failure.
func (c *Client) WaitForRun(ctx context.Context, runID string, pollInterval time.Duration) (RunStatus, error) {
	if pollInterval <= 0 {
		pollInterval = 250 * time.Millisecond
	}
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		status, err := c.Status(ctx, runID)
		if err != nil {
			return status, err
		}
		if status.Status != "running" {
			if status.Status == "failed" {
				return status, errors.New("run failed: " + status.Error)
			}
			return status, nil
		}
		select {
		case <-ctx.Done():
			return status, ctx.Err()
		case <-ticker.C:
		}
	}
}

// RegisterWebhook registers a webhook notifier on the server. Events
// from runs started after registration are POSTed to the URL with the
// given headers.
func (c *Client) RegisterWebhook(ctx context.Context, id, webhookURL string, headers map[string]string) error {
	cfg := map[string]any{"url": webhookURL}
	if len(headers) > 0 {
		h := make(map[string]any, len(headers))
		for k, v := range headers {
			h[k] = v
		}
		cfg["headers"] = h
	}
	body := map[string]any{"type": "webhook", "id": id, "config": cfg}
	return c.do(ctx, http.MethodPost, "/notifiers", body, nil)
}

// RegisterWebSocket registers a websocket notifier on the server.
// Clients connect at /ws/{id} to stream events.
func (c *Client) RegisterWebSocket(ctx context.Context, id string) error {
	body := map[string]any{"type": "websocket", "id": id}
	return c.do(ctx, http.MethodPost, "/notifiers", body, nil)
}

// UnregisterNotifier removes a notifier from the server.
func (c *Client) UnregisterNotifier(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/notifiers/"+id, nil, nil)
}
