// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package swgoh

// Typed views of the SWGOH.GG API payloads. Raw JSON is decoded into these at
// the client boundary; downstream packages never see untyped data. Only the
// fields this tool reads are declared, unknown fields are ignored by the
// decoder.

// GearTier is a single gear level of a unit and the gear ids it requires.
type GearTier struct {
	Tier int      `json:"tier"`
	Gear []string `json:"gear"`
}

// Unit is one character or ship from the units catalog.
type Unit struct {
	Name       string     `json:"name"`
	BaseID     string     `json:"base_id"`
	CombatType int        `json:"combat_type"`
	Alignment  int        `json:"alignment"`
	Categories []string   `json:"categories"`
	GearLevels []GearTier `json:"gear_levels"`
}

// UnitsResponse is the root of the units catalog payload.
type UnitsResponse struct {
	Data []Unit `json:"data"`
}

// ByID returns a base_id keyed lookup of the catalog.
func (ur *UnitsResponse) ByID() map[string]Unit {
	units := make(map[string]Unit, len(ur.Data))
	for _, u := range ur.Data {
		units[u.BaseID] = u
	}
	return units
}

// GearIngredient is one input to a gear recipe. Gear is either another gear
// base_id or the "GRIND" pseudo-ingredient (credits), which carries no
// salvage.
type GearIngredient struct {
	Amount int    `json:"amount"`
	Gear   string `json:"gear"`
}

// GearPiece is a gear item. A piece with no ingredients is terminal salvage;
// anything else is crafted and expands through its ingredients.
type GearPiece struct {
	BaseID      string           `json:"base_id"`
	Name        string           `json:"name"`
	Tier        int              `json:"tier"`
	Mark        string           `json:"mark"`
	Ingredients []GearIngredient `json:"ingredients"`
}

// Terminal reports whether the piece is raw salvage with no recipe.
func (g GearPiece) Terminal() bool {
	return len(g.Ingredients) == 0
}

// UnitData is one unit in a player's roster.
type UnitData struct {
	BaseID     string `json:"base_id"`
	Name       string `json:"name"`
	GearLevel  int    `json:"gear_level"`
	Rarity     int    `json:"rarity"`
	CombatType int    `json:"combat_type"`
	// RelicTier is the raw API encoding: nil or <3 means no relic,
	// otherwise actual relic = RelicTier - 2.
	RelicTier *int `json:"relic_tier"`
}

// Relic converts the API relic_tier encoding to the actual relic level.
// Returns (0, false) for units below G13 or without a relic.
func (u UnitData) Relic() (int, bool) {
	if u.RelicTier == nil || *u.RelicTier < 3 {
		return 0, false
	}
	return *u.RelicTier - 2, true
}

// PlayerUnit wraps roster unit data the way the API nests it.
type PlayerUnit struct {
	Data UnitData `json:"data"`
}

// PlayerData is the player profile block of a roster payload.
type PlayerData struct {
	AllyCode  int64  `json:"ally_code"`
	Name      string `json:"name"`
	GuildID   string `json:"guild_id"`
	GuildName string `json:"guild_name"`
}

// PlayerResponse is the root of a player roster payload.
type PlayerResponse struct {
	Data  PlayerData   `json:"data"`
	Units []PlayerUnit `json:"units"`
}

// GuildMember is one member entry of a guild profile.
type GuildMember struct {
	AllyCode   int64  `json:"ally_code"`
	PlayerName string `json:"player_name"`
}

// GuildProfileData is the guild profile block.
type GuildProfileData struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	MemberCount int           `json:"member_count"`
	Members     []GuildMember `json:"members"`
}

// GuildProfile is the root of a guild profile payload.
type GuildProfile struct {
	Data GuildProfileData `json:"data"`
}
