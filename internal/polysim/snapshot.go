package polysim

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
)

// Snapshot is a point-in-time capture of a run's species counts.
type Snapshot struct {
	RunID   string         `json:"run_id"`
	Time    float64        `json:"time"`
	Species map[string]int `json:"species"`
}

// ValidateSnapshot checks a snapshot for structural problems: a missing
// run ID or negative species counts.
func ValidateSnapshot(snapshot Snapshot) error {
	if snapshot.RunID == "" {
		return fmt.Errorf("snapshot has empty run ID")
	}
	for name, count := range snapshot.Species {
		if count < 0 {
			return fmt.Errorf("snapshot at t=%g has negative count %d for species %s", snapshot.Time, count, name)
		}
	}
	return nil
}

// EncodeSnapshotJSON encodes a snapshot to JSON.
func EncodeSnapshotJSON(snapshot Snapshot) ([]byte, error) {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshotJSON decodes a snapshot from JSON.
func DecodeSnapshotJSON(data []byte) (Snapshot, error) {
	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return Snapshot{}, fmt.Errorf("decoding snapshot: %w", err)
	}
	return snapshot, nil
}

// SpeciesNames returns the union of species names across snapshots,
// sorted, skipping engine-internal species.
func SpeciesNames(snapshots []Snapshot) []string {
	seen := make(map[string]bool)
	for _, snapshot := range snapshots {
		for name := range snapshot.Species {
			if name == RnaseName || name == RnaseSiteName {
				continue
			}
			seen[name] = true
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WriteTSVReport writes the snapshots as a tab-separated time series,
// one row per sample, one column per species in the given order.
func WriteTSVReport(w io.Writer, snapshots []Snapshot, species []string) error {
	if _, err := fmt.Fprint(w, "time"); err != nil {
		return err
	}
	for _, name := range species {
		if _, err := fmt.Fprintf(w, "\t%s", name); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	for _, snapshot := range snapshots {
		if _, err := fmt.Fprintf(w, "%g", snapshot.Time); err != nil {
			return err
		}
		for _, name := range species {
			if _, err := fmt.Fprintf(w, "\t%d", snapshot.Species[name]); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}
