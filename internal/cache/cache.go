// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/tidwall/gjson"
)

// Sentinel errors. Callers detect these via errors.Is while messages carry the
// key and underlying cause.
var (
	ErrFetch   = errors.New("remote fetch failed with no usable cache")
	ErrCacheIO = errors.New("cache storage failed")
)

// DefaultTTL is how long an entry stays fresh. Every resource kind currently
// uses the same window.
const DefaultTTL = time.Hour

// FetchFunc performs the live retrieval on a cache miss.
type FetchFunc func() ([]byte, error)

// Store is a time-bounded file cache. One file per key under Dir, each a JSON
// envelope of the form {"fetched_at": <RFC3339>, "data": <payload>}.
//
// The root path is supplied at construction so tests can point a Store at a
// throwaway directory. There is no global store.
type Store struct {
	Dir string
	// ServeStale returns an expired entry when the refetch fails instead of
	// propagating the failure.
	ServeStale bool
}

// NewStore returns a Store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{Dir: dir}
}

// Get returns the payload for key. A persisted entry younger than ttl is a
// hit and fetch is not invoked. Anything else (missing dir, missing file,
// unreadable envelope, expired entry) is a miss: fetch runs, the result is
// persisted with fetched_at=now, and the payload is returned.
func (s *Store) Get(key string, ttl time.Duration, fetch FetchFunc) ([]byte, error) {
	payload, fetchedAt, ok := s.read(key)
	if ok && time.Since(fetchedAt) < ttl {
		log.Debugf("cache hit: %s", key)
		return payload, nil
	}

	log.Debugf("cache miss: %s", key)
	data, err := fetch()
	if err != nil {
		if ok && s.ServeStale {
			log.Warnf("fetch %s failed, serving stale entry from %s", key, fetchedAt.Format(time.RFC3339))
			return payload, nil
		}
		return nil, fmt.Errorf("fetch %s: %w", key, errors.Join(ErrFetch, err))
	}

	if err := s.write(key, data); err != nil {
		return nil, err
	}

	return data, nil
}

// Invalidate removes the entry for key. A missing entry is not an error.
func (s *Store) Invalidate(key string) error {
	err := os.Remove(s.entryPath(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("invalidate %s: %w", key, errors.Join(ErrCacheIO, err))
	}
	return nil
}

// Clear removes every entry in the store.
func (s *Store) Clear() error {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("clear cache: %w", errors.Join(ErrCacheIO, err))
	}

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		if err := os.Remove(filepath.Join(s.Dir, e.Name())); err != nil {
			return fmt.Errorf("clear cache: %w", errors.Join(ErrCacheIO, err))
		}
		log.Debugf("removed cache file %s", e.Name())
	}

	return nil
}

// Purge removes entries whose fetched_at stamp is older than maxAge. Files
// without a parseable stamp are removed too since they can never be a hit.
// If maxAge <= 0 it is a no-op.
func (s *Store) Purge(maxAge time.Duration) error {
	if maxAge <= 0 {
		log.Debug("cache purging disabled")
		return nil
	}

	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("purge cache: %w", errors.Join(ErrCacheIO, err))
	}

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		key := strings.TrimSuffix(e.Name(), ".json")
		_, fetchedAt, ok := s.read(key)
		if ok && time.Since(fetchedAt) <= maxAge {
			continue
		}
		if err := os.Remove(filepath.Join(s.Dir, e.Name())); err == nil {
			log.Debugf("removed cache file %s", e.Name())
		} else {
			log.WithError(err).Warnf("failed to remove cache file %s", e.Name())
		}
	}

	return nil
}

func (s *Store) entryPath(key string) string {
	return filepath.Join(s.Dir, key+".json")
}

// read loads the envelope for key. Returns ok=false on any problem; reads
// never mutate the store.
func (s *Store) read(key string) ([]byte, time.Time, bool) {
	b, err := os.ReadFile(s.entryPath(key))
	if err != nil {
		return nil, time.Time{}, false
	}

	stamp := gjson.GetBytes(b, "fetched_at")
	data := gjson.GetBytes(b, "data")
	if !stamp.Exists() || !data.Exists() {
		return nil, time.Time{}, false
	}

	fetchedAt, err := time.Parse(time.RFC3339, stamp.String())
	if err != nil {
		return nil, time.Time{}, false
	}

	return []byte(data.Raw), fetchedAt, true
}

type envelope struct {
	FetchedAt string          `json:"fetched_at"`
	Data      json.RawMessage `json:"data"`
}

// write persists payload under key, stamped now. Creates the directory on
// demand. A failed write is an error: a later run depends on it.
func (s *Store) write(key string, payload []byte) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil { //nolint:mnd
		return fmt.Errorf("create cache directory: %w", errors.Join(ErrCacheIO, err))
	}

	b, err := json.Marshal(envelope{
		FetchedAt: time.Now().Format(time.RFC3339),
		Data:      json.RawMessage(payload),
	})
	if err != nil {
		return fmt.Errorf("encode cache entry %s: %w", key, errors.Join(ErrCacheIO, err))
	}

	if err := os.WriteFile(s.entryPath(key), b, os.FileMode(0o600)); err != nil { //nolint:mnd
		return fmt.Errorf("write cache entry %s: %w", key, errors.Join(ErrCacheIO, err))
	}

	return nil
}

// Dir resolves the base cache directory.
// Precedence:
//  1. SWGOHCTL_CACHE_DIR, if set and non-empty
//  2. os.UserCacheDir()/swgohctl
//
// Returns ("", false) if a base cannot be resolved.
func Dir() (string, bool) {
	if c, ok := os.LookupEnv("SWGOHCTL_CACHE_DIR"); ok && c != "" {
		return c, true
	}
	if dir, err := os.UserCacheDir(); err == nil && dir != "" {
		return filepath.Join(dir, "swgohctl"), true
	}
	return "", false
}

// Enabled returns true unless SWGOHCTL_CACHE explicitly disables it
// ("0"/"false").
func Enabled() bool {
	enabled, _ := os.LookupEnv("SWGOHCTL_CACHE")
	return enabled == "" || (enabled != "0" && enabled != "false")
}

// EnsureBaseDir creates the base cache directory if caching is enabled and a
// base path can be resolved. Returns the path, whether it is usable, and an
// error if creation failed.
func EnsureBaseDir() (string, bool, error) {
	if !Enabled() {
		return "", false, nil
	}
	base, ok := Dir()
	if !ok {
		return "", false, nil
	}
	if err := os.MkdirAll(base, 0o755); err != nil { //nolint:mnd
		return base, false, fmt.Errorf("failed to create cache base directory: %w", err)
	}
	return base, true, nil
}
