// Copyright (C) 2026 Lorekeep AI (oss@lorekeep.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package answer

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStructuredAnswer_IsEmpty(t *testing.T) {
	tests := []struct {
		name   string
		answer StructuredAnswer
		want   bool
	}{
		{"zero value", StructuredAnswer{}, true},
		{"summary only", StructuredAnswer{Summary: "a game"}, false},
		{"game length only", StructuredAnswer{GameLength: &GameLength{MainStory: 21 * time.Hour}}, false},
		{"zero game length", StructuredAnswer{GameLength: &GameLength{}}, true},
		{"metadata only", StructuredAnswer{Metadata: map[string]string{"developer": "Supergiant"}}, false},
		{"warning alone does not count", StructuredAnswer{Warning: "Contains major spoilers"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.answer.IsEmpty())
		})
	}
}

func TestGameLength_JSONUsesDurationStrings(t *testing.T) {
	g := GameLength{
		MainStory:     21 * time.Hour,
		MainExtras:    33*time.Hour + 30*time.Minute,
		Completionist: 47 * time.Hour,
	}

	data, err := json.Marshal(g)
	require.NoError(t, err)
	assert.JSONEq(t, `{"main_story":"21h","main_extras":"33h30m0s","completionist":"47h"}`, string(data))

	var parsed GameLength
	require.NoError(t, json.Unmarshal(data, &parsed))
	assert.Equal(t, g, parsed)
}

func TestGameLength_JSONOmitsZeroFields(t *testing.T) {
	data, err := json.Marshal(GameLength{MainStory: 10 * time.Hour})
	require.NoError(t, err)
	assert.JSONEq(t, `{"main_story":"10h"}`, string(data))
}

func TestGameLength_UnmarshalRejectsBadDuration(t *testing.T) {
	var g GameLength
	err := json.Unmarshal([]byte(`{"main_story":"twenty hours"}`), &g)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "main_story")
}

func TestStructuredAnswer_CloneIsDeep(t *testing.T) {
	orig := &StructuredAnswer{
		Summary:    "short",
		GameLength: &GameLength{MainStory: 10 * time.Hour},
		Metadata:   map[string]string{"rating": "93/100"},
	}
	orig.SetProvenance(FieldSummary, ProvenanceGenerated)
	orig.Seal()

	clone := orig.Clone()
	clone.GameLength.MainStory = 99 * time.Hour
	clone.Metadata["rating"] = "changed"
	clone.Provenance[FieldSummary] = "wiki"

	assert.Equal(t, 10*time.Hour, orig.GameLength.MainStory)
	assert.Equal(t, "93/100", orig.Metadata["rating"])
	assert.Equal(t, ProvenanceGenerated, orig.Provenance[FieldSummary])

	// The clone is a fresh draft, not a validated answer.
	assert.True(t, orig.Validated())
	assert.False(t, clone.Validated())
}

func TestSetProvenance_AllocatesMap(t *testing.T) {
	a := &StructuredAnswer{}
	a.SetProvenance(FieldLore, "wiki")
	require.NotNil(t, a.Provenance)
	assert.Equal(t, "wiki", a.Provenance[FieldLore])
}

func TestParsePolicyLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    PolicyLevel
		wantErr bool
	}{
		{"minimal", PolicyMinimal, false},
		{"medium", PolicyMedium, false},
		{"full", PolicyFull, false},
		{"", PolicyMedium, false},
		{"  Full  ", PolicyFull, false},
		{"paranoid", "", true},
	}
	for _, tt := range tests {
		t.Run("input="+tt.input, func(t *testing.T) {
			got, err := ParsePolicyLevel(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSpoilerPolicy_Disclose(t *testing.T) {
	assert.False(t, SpoilerPolicy{Level: PolicyMedium}.Disclose())
	assert.False(t, SpoilerPolicy{Level: PolicyMinimal}.Disclose())
	assert.True(t, SpoilerPolicy{Level: PolicyFull}.Disclose())
	assert.True(t, SpoilerPolicy{Level: PolicyMedium, UserRequestedSpoilers: true}.Disclose())
}

func TestSourceResultConstructors(t *testing.T) {
	found := Found("wiki", map[string]string{"plot": "text"})
	assert.Equal(t, SourceFound, found.Status)
	assert.Equal(t, "wiki", found.SourceID)
	assert.False(t, found.RetrievedAt.IsZero())

	notFound := NotFound("hltb")
	assert.Equal(t, SourceNotFound, notFound.Status)
	assert.Empty(t, notFound.Payload)

	errored := Errored("igdb", "connection refused")
	assert.Equal(t, SourceErrored, errored.Status)
	assert.Equal(t, "connection refused", errored.Reason)
}
