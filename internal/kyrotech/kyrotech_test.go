// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package kyrotech

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/swgohctlgo/internal/swgoh"
)

func salvage(id string) swgoh.GearPiece {
	return swgoh.GearPiece{BaseID: id, Name: id}
}

func crafted(id string, ingredients ...swgoh.GearIngredient) swgoh.GearPiece {
	return swgoh.GearPiece{BaseID: id, Name: id, Ingredients: ingredients}
}

func ing(amount int, gear string) swgoh.GearIngredient {
	return swgoh.GearIngredient{Amount: amount, Gear: gear}
}

// testGear builds the lookup used across the calculator tests: one crafted
// piece per kyrotech family plus a filler salvage nobody tracks.
func testGear() map[string]swgoh.GearPiece {
	return map[string]swgoh.GearPiece{
		"172Salvage": salvage("172Salvage"),
		"174Salvage": salvage("174Salvage"),
		"fillerSalvage": salvage("fillerSalvage"),
		"prod_piece": crafted("prod_piece", ing(2, "172Salvage"), ing(1, "GRIND")),
		"cell_piece": crafted("cell_piece", ing(2, "174Salvage"), ing(5, "fillerSalvage")),
	}
}

func TestSalvageForMultipliesAlongPath(t *testing.T) {
	gear := map[string]swgoh.GearPiece{
		"raw":   salvage("raw"),
		"inner": crafted("inner", ing(3, "raw")),
		"outer": crafted("outer", ing(2, "inner")),
	}
	a := NewAnalyzer(gear)
	a.Track("raw")

	counts, err := a.SalvageFor("outer")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"raw": 6}, counts)
}

func TestSalvageForSkipsGrindAndUntracked(t *testing.T) {
	a := NewAnalyzer(testGear())

	counts, err := a.SalvageFor("cell_piece")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"174Salvage": 2}, counts, "fillerSalvage and GRIND must not appear")
}

func TestSalvageForUnknownPieceContributesNothing(t *testing.T) {
	a := NewAnalyzer(testGear())

	counts, err := a.SalvageFor("no_such_piece")
	require.NoError(t, err)
	assert.Empty(t, counts)
}

func TestSalvageForCycleDetection(t *testing.T) {
	gear := map[string]swgoh.GearPiece{
		"a": crafted("a", ing(1, "b")),
		"b": crafted("b", ing(1, "a")),
	}
	a := NewAnalyzer(gear)
	a.Track("a", "b")

	_, err := a.SalvageFor("a")
	assert.ErrorIs(t, err, ErrRecipeCycle)
}

func TestSalvageForSharedSubtreeIsNotACycle(t *testing.T) {
	// Diamond: top needs left and right, both need raw. The piece repeats
	// across sibling branches, not on a single path.
	gear := map[string]swgoh.GearPiece{
		"raw":   salvage("raw"),
		"left":  crafted("left", ing(1, "raw")),
		"right": crafted("right", ing(2, "raw")),
		"top":   crafted("top", ing(1, "left"), ing(1, "right")),
	}
	a := NewAnalyzer(gear)
	a.Track("raw")

	counts, err := a.SalvageFor("top")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"raw": 3}, counts)
}

func gearLevels() []swgoh.GearTier {
	return []swgoh.GearTier{
		{Tier: 11, Gear: []string{"cell_piece"}},
		{Tier: 12, Gear: []string{"cell_piece"}},
		{Tier: 13, Gear: []string{"prod_piece"}},
	}
}

func TestCharacterNeedsWorkedExample(t *testing.T) {
	// G11 to G13: tier 12 carries 2x power cell, tier 13 carries 2x shock
	// prod. Tier 11 is already done and must not count.
	a := NewAnalyzer(testGear())

	needs, err := a.CharacterNeeds(gearLevels(), 11, MaxGearTier)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"174Salvage": 2, "172Salvage": 2}, needs)
}

func TestCharacterNeedsZeroCase(t *testing.T) {
	a := NewAnalyzer(testGear())

	for _, current := range []int{13, 14} {
		needs, err := a.CharacterNeeds(gearLevels(), current, MaxGearTier)
		require.NoError(t, err)
		assert.Empty(t, needs, "current=%d", current)
	}
}

func TestCharacterNeedsMonotonic(t *testing.T) {
	a := NewAnalyzer(testGear())

	lower, err := a.CharacterNeeds(gearLevels(), 10, MaxGearTier)
	require.NoError(t, err)
	higher, err := a.CharacterNeeds(gearLevels(), 11, MaxGearTier)
	require.NoError(t, err)

	for id, n := range higher {
		assert.GreaterOrEqual(t, lower[id], n, "needs at a lower gear level must dominate")
	}
}

func playerUnit(id string, gearLevel int) swgoh.PlayerUnit {
	return swgoh.PlayerUnit{Data: swgoh.UnitData{BaseID: id, Name: id, GearLevel: gearLevel}}
}

func catalogWith(levels []swgoh.GearTier, ids ...string) map[string]swgoh.Unit {
	catalog := make(map[string]swgoh.Unit)
	for _, id := range ids {
		catalog[id] = swgoh.Unit{BaseID: id, Name: id, GearLevels: levels}
	}
	return catalog
}

func TestRankRosterOrdering(t *testing.T) {
	a := NewAnalyzer(testGear())
	catalog := catalogWith(gearLevels(), "AAA", "BBB", "CCC")

	roster := []swgoh.PlayerUnit{
		playerUnit("AAA", 12), // needs tier 13 only
		playerUnit("BBB", 11), // needs tiers 12+13, ranks first
		playerUnit("CCC", 13), // maxed, dropped
	}

	results, err := a.RankRoster(roster, catalog)
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, "BBB", results[0].Name)
	assert.Equal(t, 4, results[0].Total)
	assert.Equal(t, "AAA", results[1].Name)
	assert.Equal(t, 2, results[1].Total)
}

func TestRankRosterDeterministicTieBreak(t *testing.T) {
	a := NewAnalyzer(testGear())
	catalog := catalogWith(gearLevels(), "ZED", "ANA")

	roster := []swgoh.PlayerUnit{playerUnit("ZED", 11), playerUnit("ANA", 11)}

	first, err := a.RankRoster(roster, catalog)
	require.NoError(t, err)
	second, err := a.RankRoster(roster, catalog)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, "ANA", first[0].Name, "equal totals break by name")
}

func TestRankRosterSkipsUnknownUnits(t *testing.T) {
	a := NewAnalyzer(testGear())
	catalog := catalogWith(gearLevels(), "AAA")

	roster := []swgoh.PlayerUnit{playerUnit("AAA", 11), playerUnit("NOT_IN_CATALOG", 11)}

	results, err := a.RankRoster(roster, catalog)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "AAA", results[0].Name)
}

func TestUnitNeeds(t *testing.T) {
	a := NewAnalyzer(testGear())
	catalog := catalogWith(gearLevels(), "AAA")
	roster := []swgoh.PlayerUnit{playerUnit("AAA", 12)}

	need, err := a.UnitNeeds("AAA", roster, catalog)
	require.NoError(t, err)
	assert.Equal(t, 2, need.Total)

	_, err = a.UnitNeeds("MISSING", roster, catalog)
	assert.ErrorIs(t, err, ErrUnknownUnit)

	_, err = a.UnitNeeds("AAA", nil, catalog)
	assert.ErrorIs(t, err, ErrUnknownUnit)
}
