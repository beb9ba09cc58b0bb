// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package swgoh

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/caarlos0/env/v11"

	"github.com/staranto/swgohctlgo/internal/cache"
)

// Sentinel errors for API lookups and startup configuration.
var (
	ErrMissingAPIKey   = errors.New("SWGOH_API_KEY is not set")
	ErrSchemaMismatch  = errors.New("response does not match expected schema")
	ErrUnknownAllyCode = errors.New("unknown ally code")
	ErrNotInGuild      = errors.New("player is not in a guild")
	ErrNotFound        = errors.New("resource not found")
)

var allyCodeRegex = regexp.MustCompile(`^\d{9}$`)

// Environ is the environment-sourced configuration for the client. The API
// key is the only required value and its absence is a startup failure.
type Environ struct {
	APIKey     string        `env:"SWGOH_API_KEY"`
	BaseURL    string        `env:"SWGOH_API_URL" envDefault:"https://swgoh.gg/api"`
	CacheTTL   time.Duration `env:"SWGOHCTL_CACHE_TTL" envDefault:"1h"`
	ServeStale bool          `env:"SWGOHCTL_CACHE_STALE" envDefault:"false"`
}

// Client fetches SWGOH.GG resources through the time-bounded cache. A nil
// store (caching disabled) fetches live on every call.
type Client struct {
	environ Environ
	store   *cache.Store
	http    *http.Client
}

// NewClient builds a Client from the environment. The cache store is rooted
// per the cache package's directory resolution unless caching is disabled.
func NewClient() (*Client, error) {
	var e Environ
	if err := env.Parse(&e); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if e.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	var store *cache.Store
	if cache.Enabled() {
		if dir, ok := cache.Dir(); ok {
			store = cache.NewStore(dir)
			store.ServeStale = e.ServeStale
		}
	}

	return NewClientWith(e, store), nil
}

// NewClientWith wires an explicit environment and store. Used by tests to
// point the client at an httptest server and a temp directory.
func NewClientWith(e Environ, store *cache.Store) *Client {
	if e.CacheTTL <= 0 {
		e.CacheTTL = cache.DefaultTTL
	}
	return &Client{
		environ: e,
		store:   store,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Units fetches the game's units catalog.
func (c *Client) Units(ctx context.Context) (*UnitsResponse, error) {
	body, err := c.getCached(ctx, "units", c.environ.BaseURL+"/units/")
	if err != nil {
		return nil, err
	}

	// The catalog endpoint returns a bare array on some API versions and a
	// {"data": [...]} wrapper on others. Accept both.
	var ur UnitsResponse
	if err := json.Unmarshal(body, &ur); err != nil || len(ur.Data) == 0 {
		var units []Unit
		if err := json.Unmarshal(body, &units); err != nil {
			return nil, fmt.Errorf("decode units: %w", errors.Join(ErrSchemaMismatch, err))
		}
		ur.Data = units
	}

	return &ur, nil
}

// Gear fetches the gear catalog, including crafting recipes, keyed by
// base_id.
func (c *Client) Gear(ctx context.Context) (map[string]GearPiece, error) {
	body, err := c.getCached(ctx, "gear", c.environ.BaseURL+"/gear/")
	if err != nil {
		return nil, err
	}

	var pieces []GearPiece
	if err := json.Unmarshal(body, &pieces); err != nil {
		return nil, fmt.Errorf("decode gear: %w", errors.Join(ErrSchemaMismatch, err))
	}

	lookup := make(map[string]GearPiece, len(pieces))
	for _, p := range pieces {
		lookup[p.BaseID] = p
	}

	return lookup, nil
}

// Player fetches a player's roster by ally code. Dashes in the code are
// accepted and stripped.
func (c *Client) Player(ctx context.Context, allyCode string) (*PlayerResponse, error) {
	code, err := NormalizeAllyCode(allyCode)
	if err != nil {
		return nil, err
	}

	body, err := c.getCached(ctx, "player_"+code, c.environ.BaseURL+"/player/"+code+"/")
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", allyCode, ErrUnknownAllyCode)
		}
		return nil, err
	}

	var pr PlayerResponse
	if err := json.Unmarshal(body, &pr); err != nil {
		return nil, fmt.Errorf("decode player %s: %w", code, errors.Join(ErrSchemaMismatch, err))
	}

	return &pr, nil
}

// Guild fetches a guild profile by guild id.
func (c *Client) Guild(ctx context.Context, guildID string) (*GuildProfile, error) {
	body, err := c.getCached(ctx, "guild_"+guildID, c.environ.BaseURL+"/guild-profile/"+guildID+"/")
	if err != nil {
		return nil, err
	}

	var gp GuildProfile
	if err := json.Unmarshal(body, &gp); err != nil {
		return nil, fmt.Errorf("decode guild %s: %w", guildID, errors.Join(ErrSchemaMismatch, err))
	}

	return &gp, nil
}

// GuildFromAllyCode resolves a member's guild via their player record.
func (c *Client) GuildFromAllyCode(ctx context.Context, allyCode string) (*GuildProfile, error) {
	player, err := c.Player(ctx, allyCode)
	if err != nil {
		return nil, err
	}
	if player.Data.GuildID == "" {
		return nil, fmt.Errorf("%s: %w", allyCode, ErrNotInGuild)
	}

	return c.Guild(ctx, player.Data.GuildID)
}

// GuildRosters fetches every member roster sequentially. Any single failure
// propagates; there is no partial-result mode.
func (c *Client) GuildRosters(ctx context.Context, members []GuildMember) ([]*PlayerResponse, error) {
	rosters := make([]*PlayerResponse, 0, len(members))
	for i, m := range members {
		log.Infof("fetching roster %d/%d (%s)", i+1, len(members), m.PlayerName)
		pr, err := c.Player(ctx, fmt.Sprintf("%d", m.AllyCode))
		if err != nil {
			return nil, fmt.Errorf("roster for %s: %w", m.PlayerName, err)
		}
		rosters = append(rosters, pr)
	}
	return rosters, nil
}

// NormalizeAllyCode strips dashes and validates the 9-digit form.
func NormalizeAllyCode(allyCode string) (string, error) {
	code := strings.ReplaceAll(allyCode, "-", "")
	if !allyCodeRegex.MatchString(code) {
		return "", fmt.Errorf("%s: %w", allyCode, ErrUnknownAllyCode)
	}
	return code, nil
}

// getCached routes a GET through the store when one is configured.
func (c *Client) getCached(ctx context.Context, key, url string) ([]byte, error) {
	if c.store == nil {
		return c.fetch(ctx, url)
	}
	return c.store.Get(key, c.environ.CacheTTL, func() ([]byte, error) {
		return c.fetch(ctx, url)
	})
}

func (c *Client) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("x-gg-bot-access", c.environ.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%s: %w", url, ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: unexpected status %s", url, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return body, nil
}
