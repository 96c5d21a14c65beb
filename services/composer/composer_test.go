// Copyright (C) 2026 Lorekeep AI (oss@lorekeep.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package composer

import (
	"strings"
	"testing"
	"time"

	"github.com/LorekeepAI/Lorekeep/services/answer"
	"github.com/LorekeepAI/Lorekeep/services/sources"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompose_SourcesMapOntoFields(t *testing.T) {
	results := []answer.SourceResult{
		answer.Found("hltb", map[string]string{
			sources.KeyMainStory:     "21h",
			sources.KeyCompletionist: "96h",
		}),
		answer.Found("wiki", map[string]string{
			sources.KeyPlot:     "A prince escapes the underworld.",
			sources.KeyGameplay: "Roguelike runs with persistent upgrades.",
		}),
		answer.Found("igdb", map[string]string{
			sources.KeyDeveloper: "Supergiant Games",
			sources.KeyRating:    "93/100",
		}),
	}

	draft := Compose(results, answer.Narrative{})

	require.NotNil(t, draft.GameLength)
	assert.Equal(t, 21*time.Hour, draft.GameLength.MainStory)
	assert.Equal(t, 96*time.Hour, draft.GameLength.Completionist)
	assert.Equal(t, "A prince escapes the underworld.", draft.Lore)
	assert.Equal(t, "Roguelike runs with persistent upgrades.", draft.GameTips)
	assert.Equal(t, "Supergiant Games", draft.Metadata[sources.KeyDeveloper])
	assert.Equal(t, "93/100", draft.Metadata[sources.KeyRating])

	assert.Equal(t, "hltb", draft.Provenance[answer.FieldGameLength])
	assert.Equal(t, "wiki", draft.Provenance[answer.FieldLore])
	assert.Equal(t, "wiki", draft.Provenance[answer.FieldGameTips])
	assert.Equal(t, "igdb", draft.Provenance[answer.FieldMetadata])
}

func TestCompose_FirstSourceWins(t *testing.T) {
	results := []answer.SourceResult{
		answer.Found("wiki", map[string]string{sources.KeyLore: "From the wiki."}),
		answer.Found("igdb", map[string]string{sources.KeyLore: "From the database."}),
	}

	draft := Compose(results, answer.Narrative{})
	assert.Equal(t, "From the wiki.", draft.Lore)
	assert.Equal(t, "wiki", draft.Provenance[answer.FieldLore])
}

func TestCompose_GameLengthOwnedByOneSource(t *testing.T) {
	results := []answer.SourceResult{
		answer.Found("hltb", map[string]string{sources.KeyMainStory: "21h"}),
		answer.Found("igdb", map[string]string{sources.KeyMainExtras: "40h"}),
	}

	draft := Compose(results, answer.Narrative{})
	require.NotNil(t, draft.GameLength)
	assert.Equal(t, 21*time.Hour, draft.GameLength.MainStory)
	// The second source cannot splice its hours into another source's
	// length record.
	assert.Zero(t, draft.GameLength.MainExtras)
	assert.Equal(t, "hltb", draft.Provenance[answer.FieldGameLength])
}

func TestCompose_MalformedPlaytimeDropped(t *testing.T) {
	results := []answer.SourceResult{
		answer.Found("hltb", map[string]string{sources.KeyMainStory: "about twenty hours"}),
	}

	draft := Compose(results, answer.Narrative{})
	assert.Nil(t, draft.GameLength)
}

func TestCompose_UnmappedKeysDropped(t *testing.T) {
	results := []answer.SourceResult{
		answer.Found("wiki", map[string]string{
			"box_art_url":   "https://example.com/art.png",
			sources.KeyLore: "A story.",
		}),
	}

	draft := Compose(results, answer.Narrative{})
	assert.Equal(t, "A story.", draft.Lore)
	assert.Empty(t, draft.Metadata)
}

func TestCompose_MissesAndErrorsContributeNothing(t *testing.T) {
	results := []answer.SourceResult{
		answer.NotFound("wiki"),
		answer.Errored("hltb", "timeout"),
	}

	draft := Compose(results, answer.Narrative{})
	assert.True(t, draft.IsEmpty())
	assert.Empty(t, draft.Provenance)
}

func TestCompose_NarrativeFillsGapsOnly(t *testing.T) {
	results := []answer.SourceResult{
		answer.Found("wiki", map[string]string{sources.KeyPlot: "Source lore."}),
	}
	narrative := answer.Narrative{
		Summary:  "A concise synopsis.",
		Lore:     "Generated lore.",
		GameTips: "Generated tips.",
	}

	draft := Compose(results, narrative)

	// The summary is always narrative-owned.
	assert.Equal(t, "A concise synopsis.", draft.Summary)
	assert.Equal(t, answer.ProvenanceGenerated, draft.Provenance[answer.FieldSummary])

	// Lore came from a source, so generated lore is discarded; tips had
	// no source, so the narrative fills them.
	assert.Equal(t, "Source lore.", draft.Lore)
	assert.Equal(t, "wiki", draft.Provenance[answer.FieldLore])
	assert.Equal(t, "Generated tips.", draft.GameTips)
	assert.Equal(t, answer.ProvenanceGenerated, draft.Provenance[answer.FieldGameTips])
}

func TestCompose_LongSummaryCondensed(t *testing.T) {
	long := strings.TrimSpace(strings.Repeat("Sentence here. ", 9))
	draft := Compose(nil, answer.Narrative{Summary: long})

	assert.Equal(t,
		"Sentence here. Sentence here. Sentence here. Sentence here. Sentence here.",
		draft.Summary)
}

func TestCompose_EmptyInputsYieldEmptyDraft(t *testing.T) {
	draft := Compose(nil, answer.Narrative{})
	assert.True(t, draft.IsEmpty())
	assert.False(t, draft.Validated())
}
