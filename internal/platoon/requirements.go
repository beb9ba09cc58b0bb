// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package platoon

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// ErrUnknownPhase means a phase outside the declared enumeration was
// requested.
var ErrUnknownPhase = errors.New("unknown phase")

// Phases enumerates the territory battle phases in play order. Bonus planets
// carry a "b" suffix and sort immediately after their base phase.
var Phases = []string{"1", "2", "3", "3b", "4", "4b", "5", "5b", "6"}

// PhaseIndex returns the position of p in the phase ordering.
func PhaseIndex(p string) (int, bool) {
	for i, candidate := range Phases {
		if candidate == p {
			return i, true
		}
	}
	return 0, false
}

// RelicGearFloor is the gear level at which relic tiers begin. A unit below
// it can never satisfy a relic requirement.
const RelicGearFloor = 13

// MinShipRarity is the star level a ship needs before it can deploy.
const MinShipRarity = 7

// Requirement is one platoon slot group: Slots identical slots in a
// territory, each fillable by any of UnitIDs at MinRelic or better. Static
// reference data, maintained by hand since no API serves it.
type Requirement struct {
	Territory string   `json:"territory"`
	Phase     string   `json:"phase"`
	MinRelic  int      `json:"min_relic"`
	UnitIDs   []string `json:"unit_ids"`
	Slots     int      `json:"slots"`
}

// Requirements is the root of the platoon requirements file.
type Requirements struct {
	Version      string        `json:"version"`
	LastUpdated  string        `json:"last_updated"`
	Notes        string        `json:"notes,omitempty"`
	Requirements []Requirement `json:"requirements"`
}

// LoadRequirements reads a requirements JSON file.
func LoadRequirements(path string) (*Requirements, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read requirements: %w", err)
	}

	var reqs Requirements
	if err := json.Unmarshal(b, &reqs); err != nil {
		return nil, fmt.Errorf("parse requirements %s: %w", path, err)
	}

	for _, r := range reqs.Requirements {
		if _, ok := PhaseIndex(r.Phase); !ok {
			return nil, fmt.Errorf("requirement for %s declares phase %q: %w", r.Territory, r.Phase, ErrUnknownPhase)
		}
	}

	return &reqs, nil
}

// FilterMaxPhase returns a copy containing only requirements whose phase is
// at or before maxPhase. An empty maxPhase keeps everything.
func (r *Requirements) FilterMaxPhase(maxPhase string) (*Requirements, error) {
	if maxPhase == "" {
		return r, nil
	}

	maxIdx, ok := PhaseIndex(maxPhase)
	if !ok {
		return nil, fmt.Errorf("%q: %w", maxPhase, ErrUnknownPhase)
	}

	filtered := &Requirements{
		Version:     r.Version,
		LastUpdated: r.LastUpdated,
		Notes:       r.Notes,
	}
	for _, req := range r.Requirements {
		idx, ok := PhaseIndex(req.Phase)
		if ok && idx <= maxIdx {
			filtered.Requirements = append(filtered.Requirements, req)
		}
	}

	return filtered, nil
}
