// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package platoon

import (
	"sort"

	"github.com/staranto/swgohctlgo/internal/swgoh"
)

// Owner records one member's ownership of a unit at an effective tier
// (relic level for characters, star level for ships).
type Owner struct {
	PlayerName string
	AllyCode   int64
	Tier       int
}

// UnitCoverage is guild-wide ownership of a single unit, bucketed by tier.
type UnitCoverage struct {
	UnitID       string
	Name         string
	CombatType   int
	OwnersByTier map[int][]Owner
}

// CountAt counts owners at or above min.
func (uc *UnitCoverage) CountAt(min int) int {
	count := 0
	for tier, owners := range uc.OwnersByTier {
		if tier >= min {
			count += len(owners)
		}
	}
	return count
}

// OwnersAt lists owners at or above min, ordered by ally code for stable
// output.
func (uc *UnitCoverage) OwnersAt(min int) []Owner {
	var result []Owner
	for tier, owners := range uc.OwnersByTier {
		if tier >= min {
			result = append(result, owners...)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].AllyCode < result[j].AllyCode
	})
	return result
}

// Matrix is the guild coverage matrix: which members own which units at
// which tiers. Built once per invocation from fetched snapshots and never
// mutated after.
type Matrix struct {
	GuildName   string
	GuildID     string
	MemberCount int
	Units       map[string]*UnitCoverage
}

// CountAt returns the owner count for a unit, zero when nobody owns it.
func (m *Matrix) CountAt(unitID string, min int) int {
	uc, ok := m.Units[unitID]
	if !ok {
		return 0
	}
	return uc.CountAt(min)
}

// OwnersAt returns the owners of a unit at or above min.
func (m *Matrix) OwnersAt(unitID string, min int) []Owner {
	uc, ok := m.Units[unitID]
	if !ok {
		return nil
	}
	return uc.OwnersAt(min)
}

// BuildMatrix folds member rosters into a coverage matrix. Characters enter
// at their actual relic level (G13 only), ships at their star level once
// 7-starred; everything else is below every platoon threshold and is left
// out.
func BuildMatrix(rosters []*swgoh.PlayerResponse, catalog map[string]swgoh.Unit, guildName, guildID string) *Matrix {
	matrix := &Matrix{
		GuildName:   guildName,
		GuildID:     guildID,
		MemberCount: len(rosters),
		Units:       make(map[string]*UnitCoverage),
	}

	for _, roster := range rosters {
		for _, pu := range roster.Units {
			unit, ok := catalog[pu.Data.BaseID]
			if !ok {
				continue
			}

			var tier int
			if unit.CombatType == 2 {
				if pu.Data.Rarity < MinShipRarity {
					continue
				}
				tier = pu.Data.Rarity
			} else {
				relic, ok := pu.Data.Relic()
				if !ok {
					continue
				}
				tier = relic
			}

			uc, ok := matrix.Units[unit.BaseID]
			if !ok {
				uc = &UnitCoverage{
					UnitID:       unit.BaseID,
					Name:         unit.Name,
					CombatType:   unit.CombatType,
					OwnersByTier: make(map[int][]Owner),
				}
				matrix.Units[unit.BaseID] = uc
			}

			uc.OwnersByTier[tier] = append(uc.OwnersByTier[tier], Owner{
				PlayerName: roster.Data.Name,
				AllyCode:   roster.Data.AllyCode,
				Tier:       tier,
			})
		}
	}

	return matrix
}

// SlotGap describes a requirement the guild cannot fully staff.
type SlotGap struct {
	UnitIDs    []string
	MinRelic   int
	Slots      int
	Eligible   int
	Unfillable int
}

// CoverageResult is per-territory coverage.
//
// FilledSlots counts raw eligibility capped at the slot count, not an
// optimal member-to-slot assignment: slots competing for the same pool of
// eligible members are each credited with that pool. True assignment is a
// bipartite matching problem and is intentionally not solved here, so the
// reported numbers are an upper bound.
type CoverageResult struct {
	Territory     string
	Phase         string
	FilledSlots   int
	TotalSlots    int
	Percentage    float64
	UnfilledSlots []SlotGap
	CriticalGaps  []string
}

// Coverage evaluates requirements against the matrix and returns one result
// per territory, ordered by phase then territory name. The ordering is a
// reproducibility guarantee, not a presentation choice; display ordering
// belongs to the renderer.
func Coverage(matrix *Matrix, reqs *Requirements, maxPhase string) ([]CoverageResult, error) {
	reqs, err := reqs.FilterMaxPhase(maxPhase)
	if err != nil {
		return nil, err
	}

	type key struct{ phase, territory string }
	results := make(map[key]*CoverageResult)
	gaps := make(map[key]map[string]bool)

	for _, req := range reqs.Requirements {
		k := key{req.Phase, req.Territory}
		cr, ok := results[k]
		if !ok {
			cr = &CoverageResult{Territory: req.Territory, Phase: req.Phase}
			results[k] = cr
			gaps[k] = make(map[string]bool)
		}

		// Union of distinct members across the slot's eligible units, so a
		// member owning two of them still only counts once.
		members := make(map[int64]bool)
		for _, unitID := range req.UnitIDs {
			for _, owner := range matrix.OwnersAt(unitID, req.MinRelic) {
				members[owner.AllyCode] = true
			}

			if matrix.CountAt(unitID, req.MinRelic) < req.Slots {
				gaps[k][unitID] = true
			}
		}

		eligible := len(members)
		filled := eligible
		if filled > req.Slots {
			filled = req.Slots
		}

		cr.FilledSlots += filled
		cr.TotalSlots += req.Slots

		if eligible < req.Slots {
			cr.UnfilledSlots = append(cr.UnfilledSlots, SlotGap{
				UnitIDs:    req.UnitIDs,
				MinRelic:   req.MinRelic,
				Slots:      req.Slots,
				Eligible:   eligible,
				Unfillable: req.Slots - eligible,
			})
		}
	}

	ordered := make([]CoverageResult, 0, len(results))
	for k, cr := range results {
		if cr.TotalSlots > 0 {
			cr.Percentage = float64(cr.FilledSlots) / float64(cr.TotalSlots) * 100
		}
		for unitID := range gaps[k] {
			cr.CriticalGaps = append(cr.CriticalGaps, unitID)
		}
		sort.Strings(cr.CriticalGaps)
		ordered = append(ordered, *cr)
	}

	sort.Slice(ordered, func(i, j int) bool {
		pi, _ := PhaseIndex(ordered[i].Phase)
		pj, _ := PhaseIndex(ordered[j].Phase)
		if pi != pj {
			return pi < pj
		}
		return ordered[i].Territory < ordered[j].Territory
	})

	return ordered, nil
}

// Unicorn is a unit so thinly held that losing one owner jeopardizes every
// slot that needs it.
type Unicorn struct {
	UnitID      string
	Name        string
	MinRelic    int
	Owners      []string
	OwnerCount  int
	Territories []string
	TotalSlots  int
	SoleOwner   bool
}

// UnicornThreshold is the owner count at or below which a unit is flagged.
const UnicornThreshold = 3

// Unicorns identifies thinly-owned required units across all requirements,
// sorted by owner count ascending then total slots needed descending.
func Unicorns(matrix *Matrix, reqs *Requirements) []Unicorn {
	type key struct {
		unitID   string
		minRelic int
	}
	type agg struct {
		territories []string
		slots       int
	}

	needs := make(map[key]*agg)
	var order []key
	for _, req := range reqs.Requirements {
		for _, unitID := range req.UnitIDs {
			k := key{unitID, req.MinRelic}
			a, ok := needs[k]
			if !ok {
				a = &agg{}
				needs[k] = a
				order = append(order, k)
			}
			a.territories = append(a.territories, req.Territory)
			a.slots += req.Slots
		}
	}

	var unicorns []Unicorn
	for _, k := range order {
		owners := matrix.OwnersAt(k.unitID, k.minRelic)
		if len(owners) > UnicornThreshold {
			continue
		}

		name := k.unitID
		if uc, ok := matrix.Units[k.unitID]; ok {
			name = uc.Name
		}

		names := make([]string, 0, len(owners))
		for _, o := range owners {
			names = append(names, o.PlayerName)
		}

		a := needs[k]
		unicorns = append(unicorns, Unicorn{
			UnitID:      k.unitID,
			Name:        name,
			MinRelic:    k.minRelic,
			Owners:      names,
			OwnerCount:  len(owners),
			Territories: a.territories,
			TotalSlots:  a.slots,
			SoleOwner:   len(owners) == 1,
		})
	}

	sort.Slice(unicorns, func(i, j int) bool {
		if unicorns[i].OwnerCount != unicorns[j].OwnerCount {
			return unicorns[i].OwnerCount < unicorns[j].OwnerCount
		}
		if unicorns[i].TotalSlots != unicorns[j].TotalSlots {
			return unicorns[i].TotalSlots > unicorns[j].TotalSlots
		}
		return unicorns[i].UnitID < unicorns[j].UnitID
	})

	return unicorns
}
