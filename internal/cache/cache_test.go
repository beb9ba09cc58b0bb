// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package cache

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

// countingFetch returns a FetchFunc that records how often it runs.
func countingFetch(payload []byte, err error) (FetchFunc, *int) {
	calls := 0
	return func() ([]byte, error) {
		calls++
		return payload, err
	}, &calls
}

// backdate rewrites the entry for key with an old fetched_at stamp.
func backdate(t *testing.T, s *Store, key string, age time.Duration) {
	t.Helper()

	b, err := os.ReadFile(s.entryPath(key))
	require.NoError(t, err)

	var env envelope
	require.NoError(t, json.Unmarshal(b, &env))
	env.FetchedAt = time.Now().Add(-age).Format(time.RFC3339)

	b, err = json.Marshal(env)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(s.entryPath(key), b, 0o600))
}

func TestGetIdempotent(t *testing.T) {
	s := NewStore(t.TempDir())
	fetch, calls := countingFetch([]byte(`{"data":[1,2,3]}`), nil)

	first, err := s.Get("units", time.Hour, fetch)
	require.NoError(t, err)

	second, err := s.Get("units", time.Hour, fetch)
	require.NoError(t, err)

	assert.Equal(t, 1, *calls, "second read within the TTL must not refetch")
	assert.JSONEq(t, string(first), string(second))
}

func TestGetExpiredEntryRefetches(t *testing.T) {
	s := NewStore(t.TempDir())
	fetch, calls := countingFetch([]byte(`"v1"`), nil)

	_, err := s.Get("units", time.Hour, fetch)
	require.NoError(t, err)

	backdate(t, s, "units", time.Hour+time.Second)

	_, err = s.Get("units", time.Hour, fetch)
	require.NoError(t, err)
	assert.Equal(t, 2, *calls)
}

func TestGetMissingDirIsAMiss(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "nope"))
	fetch, calls := countingFetch([]byte(`true`), nil)

	payload, err := s.Get("gear", time.Hour, fetch)
	require.NoError(t, err)
	assert.Equal(t, 1, *calls)
	assert.Equal(t, `true`, string(payload))
}

func TestGetFetchFailureNoEntry(t *testing.T) {
	s := NewStore(t.TempDir())
	fetch, _ := countingFetch(nil, errors.New("boom"))

	_, err := s.Get("units", time.Hour, fetch)
	assert.ErrorIs(t, err, ErrFetch)
}

func TestGetFetchFailureExpiredEntry(t *testing.T) {
	tests := []struct {
		name       string
		serveStale bool
		want       string
		wantErr    bool
	}{
		{name: "default propagates", serveStale: false, wantErr: true},
		{name: "opt-in serves stale", serveStale: true, want: `"old"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore(t.TempDir())
			s.ServeStale = tt.serveStale

			ok, _ := countingFetch([]byte(`"old"`), nil)
			_, err := s.Get("units", time.Hour, ok)
			require.NoError(t, err)
			backdate(t, s, "units", 2*time.Hour)

			bad, _ := countingFetch(nil, errors.New("boom"))
			payload, err := s.Get("units", time.Hour, bad)

			if tt.wantErr {
				assert.ErrorIs(t, err, ErrFetch)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(payload))
		})
	}
}

func TestEnvelopeLayout(t *testing.T) {
	s := NewStore(t.TempDir())
	fetch, _ := countingFetch([]byte(`{"name":"vader"}`), nil)

	_, err := s.Get("player_123456789", time.Hour, fetch)
	require.NoError(t, err)

	b, err := os.ReadFile(filepath.Join(s.Dir, "player_123456789.json"))
	require.NoError(t, err)

	stamp := gjson.GetBytes(b, "fetched_at")
	require.True(t, stamp.Exists())
	_, err = time.Parse(time.RFC3339, stamp.String())
	assert.NoError(t, err)

	assert.Equal(t, "vader", gjson.GetBytes(b, "data.name").String())
}

func TestCorruptEntryIsAMiss(t *testing.T) {
	s := NewStore(t.TempDir())
	require.NoError(t, os.WriteFile(s.entryPath("units"), []byte("not json"), 0o600))

	fetch, calls := countingFetch([]byte(`1`), nil)
	_, err := s.Get("units", time.Hour, fetch)
	require.NoError(t, err)
	assert.Equal(t, 1, *calls)
}

func TestInvalidate(t *testing.T) {
	s := NewStore(t.TempDir())
	fetch, calls := countingFetch([]byte(`1`), nil)

	_, err := s.Get("units", time.Hour, fetch)
	require.NoError(t, err)

	require.NoError(t, s.Invalidate("units"))
	require.NoError(t, s.Invalidate("units"), "double invalidate is fine")

	_, err = s.Get("units", time.Hour, fetch)
	require.NoError(t, err)
	assert.Equal(t, 2, *calls)
}

func TestClear(t *testing.T) {
	s := NewStore(t.TempDir())
	fetch, _ := countingFetch([]byte(`1`), nil)

	for _, key := range []string{"units", "gear", "player_123456789"} {
		_, err := s.Get(key, time.Hour, fetch)
		require.NoError(t, err)
	}

	require.NoError(t, s.Clear())

	entries, err := os.ReadDir(s.Dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestPurge(t *testing.T) {
	s := NewStore(t.TempDir())
	fetch, _ := countingFetch([]byte(`1`), nil)

	_, err := s.Get("fresh", time.Hour, fetch)
	require.NoError(t, err)
	_, err = s.Get("stale", time.Hour, fetch)
	require.NoError(t, err)
	backdate(t, s, "stale", 3*time.Hour)

	require.NoError(t, s.Purge(time.Hour))

	_, statErr := os.Stat(s.entryPath("fresh"))
	assert.NoError(t, statErr)
	_, statErr = os.Stat(s.entryPath("stale"))
	assert.ErrorIs(t, statErr, os.ErrNotExist)
}

func TestPurgeDisabled(t *testing.T) {
	s := NewStore(t.TempDir())
	fetch, _ := countingFetch([]byte(`1`), nil)

	_, err := s.Get("old", time.Hour, fetch)
	require.NoError(t, err)
	backdate(t, s, "old", 100*time.Hour)

	require.NoError(t, s.Purge(0))

	_, statErr := os.Stat(s.entryPath("old"))
	assert.NoError(t, statErr, "maxAge<=0 must be a no-op")
}
