// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package kyrotech

import (
	"errors"
	"fmt"
	"sort"

	"github.com/staranto/swgohctlgo/internal/swgoh"
)

// Sentinel errors.
var (
	// ErrRecipeCycle means the gear recipe graph revisits a piece on its own
	// expansion path. Always fatal, never bounded away.
	ErrRecipeCycle = errors.New("gear recipe graph contains a cycle")
	// ErrUnknownUnit means a requested unit id is absent from the catalog.
	ErrUnknownUnit = errors.New("unknown unit")
)

// MaxGearTier is the target ceiling for gear progression.
const MaxGearTier = 13

// Salvage holds the Kyrotech salvage ids and their display names. The
// analyzer tracks these by default; Track substitutes any other material set.
var Salvage = map[string]string{
	"172Salvage": "Mk 7 Kyrotech Shock Prod Prototype Salvage",
	"173Salvage": "Mk 9 Kyrotech Battle Computer Prototype Salvage",
	"174Salvage": "Mk 5 Kyrotech Power Cell Prototype Salvage",
}

// Analyzer computes terminal-salvage requirements from gear recipes. It is a
// pure calculator: same inputs, same outputs, no hidden state.
type Analyzer struct {
	gear    map[string]swgoh.GearPiece
	tracked map[string]bool
}

// NewAnalyzer builds an Analyzer over the gear lookup, tracking the Kyrotech
// salvage family.
func NewAnalyzer(gear map[string]swgoh.GearPiece) *Analyzer {
	a := &Analyzer{
		gear:    gear,
		tracked: make(map[string]bool, len(Salvage)),
	}
	for id := range Salvage {
		a.tracked[id] = true
	}
	return a
}

// Track replaces the tracked-material set, generalizing the analyzer to any
// material category.
func (a *Analyzer) Track(ids ...string) {
	a.tracked = make(map[string]bool, len(ids))
	for _, id := range ids {
		a.tracked[id] = true
	}
}

type frame struct {
	id   string
	mult int
	path []string
}

// SalvageFor expands gearID through the recipe graph until only terminal
// salvage remains, multiplying quantities along the way, and returns the
// tracked salvage counts. Expansion is iterative with an explicit stack; each
// branch carries its own path so a piece appearing on its own path is
// reported as ErrRecipeCycle instead of looping.
func (a *Analyzer) SalvageFor(gearID string) (map[string]int, error) {
	counts := make(map[string]int)

	stack := []frame{{id: gearID, mult: 1}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		piece, ok := a.gear[f.id]
		if !ok {
			// Ids the catalog doesn't know (including retired pieces)
			// contribute nothing.
			continue
		}

		if piece.Terminal() {
			if a.tracked[f.id] {
				counts[f.id] += f.mult
			}
			continue
		}

		for _, anc := range f.path {
			if anc == f.id {
				return nil, fmt.Errorf("expanding %s: %w", gearID, ErrRecipeCycle)
			}
		}

		path := append(append([]string(nil), f.path...), f.id)
		for _, ing := range piece.Ingredients {
			if ing.Gear == "GRIND" {
				continue
			}
			stack = append(stack, frame{id: ing.Gear, mult: f.mult * ing.Amount, path: path})
		}
	}

	return counts, nil
}

// CharacterNeeds sums tracked salvage over every gear tier strictly above
// current and at most target. A character at or past target needs nothing.
func (a *Analyzer) CharacterNeeds(levels []swgoh.GearTier, current, target int) (map[string]int, error) {
	total := make(map[string]int)

	for _, tier := range levels {
		if tier.Tier <= current || tier.Tier > target {
			continue
		}
		for _, gearID := range tier.Gear {
			needs, err := a.SalvageFor(gearID)
			if err != nil {
				return nil, err
			}
			for id, n := range needs {
				total[id] += n
			}
		}
	}

	return total, nil
}

// CharacterNeed is one ranked entry of a roster analysis.
type CharacterNeed struct {
	BaseID    string
	Name      string
	GearLevel int
	Needs     map[string]int
	Total     int
}

// RankRoster analyzes a player's roster and returns characters that still
// need tracked salvage, ranked by total descending. Ties break by name so two
// runs over the same roster produce the same order. Roster units missing from
// the catalog are skipped, matching the upstream data's habit of listing
// units the catalog has not caught up with.
func (a *Analyzer) RankRoster(roster []swgoh.PlayerUnit, catalog map[string]swgoh.Unit) ([]CharacterNeed, error) {
	var results []CharacterNeed

	for _, pu := range roster {
		current := pu.Data.GearLevel
		if current >= MaxGearTier {
			continue
		}

		unit, ok := catalog[pu.Data.BaseID]
		if !ok {
			continue
		}

		needs, err := a.CharacterNeeds(unit.GearLevels, current, MaxGearTier)
		if err != nil {
			return nil, err
		}
		if len(needs) == 0 {
			continue
		}

		total := 0
		for _, n := range needs {
			total += n
		}

		results = append(results, CharacterNeed{
			BaseID:    unit.BaseID,
			Name:      unit.Name,
			GearLevel: current,
			Needs:     needs,
			Total:     total,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Total != results[j].Total {
			return results[i].Total > results[j].Total
		}
		return results[i].Name < results[j].Name
	})

	return results, nil
}

// UnitNeeds analyzes a single roster unit by id, surfacing ErrUnknownUnit
// when either the roster or the catalog lacks it.
func (a *Analyzer) UnitNeeds(unitID string, roster []swgoh.PlayerUnit, catalog map[string]swgoh.Unit) (CharacterNeed, error) {
	unit, ok := catalog[unitID]
	if !ok {
		return CharacterNeed{}, fmt.Errorf("%s: %w", unitID, ErrUnknownUnit)
	}

	for _, pu := range roster {
		if pu.Data.BaseID != unitID {
			continue
		}
		needs, err := a.CharacterNeeds(unit.GearLevels, pu.Data.GearLevel, MaxGearTier)
		if err != nil {
			return CharacterNeed{}, err
		}
		total := 0
		for _, n := range needs {
			total += n
		}
		return CharacterNeed{
			BaseID:    unit.BaseID,
			Name:      unit.Name,
			GearLevel: pu.Data.GearLevel,
			Needs:     needs,
			Total:     total,
		}, nil
	}

	return CharacterNeed{}, fmt.Errorf("%s not in roster: %w", unitID, ErrUnknownUnit)
}
