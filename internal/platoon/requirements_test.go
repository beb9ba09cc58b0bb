// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package platoon

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhaseIndexOrdering(t *testing.T) {
	three, ok := PhaseIndex("3")
	require.True(t, ok)
	threeB, ok := PhaseIndex("3b")
	require.True(t, ok)
	four, ok := PhaseIndex("4")
	require.True(t, ok)

	assert.Equal(t, three+1, threeB, "3b sorts immediately after 3")
	assert.Equal(t, threeB+1, four)

	_, ok = PhaseIndex("7")
	assert.False(t, ok)
	_, ok = PhaseIndex("2b")
	assert.False(t, ok)
}

func sampleRequirements() *Requirements {
	return &Requirements{
		Version: "1.0",
		Requirements: []Requirement{
			{Territory: "Mustafar", Phase: "1", MinRelic: 5, UnitIDs: []string{"VADER"}, Slots: 2},
			{Territory: "Zeffo", Phase: "3b", MinRelic: 7, UnitIDs: []string{"SECONDSISTER"}, Slots: 2},
			{Territory: "Lothal", Phase: "4", MinRelic: 8, UnitIDs: []string{"HERA"}, Slots: 1},
		},
	}
}

func TestFilterMaxPhase(t *testing.T) {
	tests := []struct {
		name     string
		maxPhase string
		want     []string
		wantErr  bool
	}{
		{name: "no ceiling keeps all", maxPhase: "", want: []string{"Mustafar", "Zeffo", "Lothal"}},
		{name: "base phase excludes later bonus", maxPhase: "3", want: []string{"Mustafar"}},
		{name: "bonus phase included at its own ceiling", maxPhase: "3b", want: []string{"Mustafar", "Zeffo"}},
		{name: "everything", maxPhase: "6", want: []string{"Mustafar", "Zeffo", "Lothal"}},
		{name: "unknown phase", maxPhase: "9", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := sampleRequirements().FilterMaxPhase(tt.maxPhase)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownPhase)
				return
			}
			require.NoError(t, err)

			var territories []string
			for _, r := range got.Requirements {
				territories = append(territories, r.Territory)
			}
			assert.Equal(t, tt.want, territories)
		})
	}
}

func writeRequirements(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "reqs.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadRequirements(t *testing.T) {
	path := writeRequirements(t, `{
		"version": "1.0",
		"last_updated": "2026-08-01",
		"requirements": [
			{"territory": "Mustafar", "phase": "1", "min_relic": 5, "unit_ids": ["VADER"], "slots": 2}
		]
	}`)

	reqs, err := LoadRequirements(path)
	require.NoError(t, err)
	require.Len(t, reqs.Requirements, 1)
	assert.Equal(t, "Mustafar", reqs.Requirements[0].Territory)
	assert.Equal(t, 5, reqs.Requirements[0].MinRelic)
}

func TestLoadRequirementsRejectsUnknownPhase(t *testing.T) {
	path := writeRequirements(t, `{
		"requirements": [
			{"territory": "Naboo", "phase": "7", "min_relic": 5, "unit_ids": ["X"], "slots": 1}
		]
	}`)

	_, err := LoadRequirements(path)
	assert.ErrorIs(t, err, ErrUnknownPhase)
}

func TestLoadRequirementsMissingFile(t *testing.T) {
	_, err := LoadRequirements(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}
