// Copyright (C) 2026 Lorekeep AI (oss@lorekeep.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package composer merges source results with model narrative into a
// single structured draft.
//
// Precedence is strict: data copied from a Found source always beats
// generated prose, and the first source to claim a field keeps it (the
// router already ordered results by tie-break). Unmapped payload keys are
// dropped so a misbehaving adapter cannot pollute the schema. Absence of
// data is represented, never raised.
package composer

import (
	"log/slog"
	"sort"
	"time"

	"github.com/LorekeepAI/Lorekeep/services/answer"
	"github.com/LorekeepAI/Lorekeep/services/sources"
	"github.com/LorekeepAI/Lorekeep/services/spoiler"
)

// maxSummarySentences caps the model synopsis; longer narratives are
// condensed to their leading sentences.
const maxSummarySentences = 5

// Compose builds the draft structured answer from the gathered source
// results and the model narrative. NotFound and Errored results simply
// contribute nothing.
func Compose(results []answer.SourceResult, narrative answer.Narrative) *answer.StructuredAnswer {
	draft := &answer.StructuredAnswer{}

	for _, res := range results {
		if res.Status != answer.SourceFound {
			continue
		}
		applyPayload(draft, res.SourceID, res.Payload)
	}

	mergeNarrative(draft, narrative)
	return draft
}

// applyPayload maps canonical payload keys onto schema fields, first
// source wins. Unknown keys are logged at debug and dropped.
func applyPayload(draft *answer.StructuredAnswer, sourceID string, payload map[string]string) {
	for _, key := range orderedKeys(payload) {
		value := payload[key]
		if value == "" {
			continue
		}
		switch key {
		case sources.KeyMainStory, sources.KeyMainExtras, sources.KeyCompletionist:
			applyLength(draft, sourceID, key, value)
		case sources.KeyPlot, sources.KeyLore:
			if draft.Lore == "" {
				draft.Lore = value
				draft.SetProvenance(answer.FieldLore, sourceID)
			}
		case sources.KeyGameplay, sources.KeyTips:
			if draft.GameTips == "" {
				draft.GameTips = value
				draft.SetProvenance(answer.FieldGameTips, sourceID)
			}
		case sources.KeyReleaseDate, sources.KeyDeveloper, sources.KeyPlatforms,
			sources.KeyGenres, sources.KeyRating:
			if draft.Metadata == nil {
				draft.Metadata = make(map[string]string)
			}
			if _, taken := draft.Metadata[key]; !taken {
				draft.Metadata[key] = value
				draft.SetProvenance(answer.FieldMetadata, sourceID)
			}
		default:
			slog.Debug("Dropping unmapped payload key", "source", sourceID, "key", key)
		}
	}
}

// applyLength parses an hour string like "21h" into the game length
// field. A malformed value is dropped, not fatal: it only means the
// playtime source sent something we do not recognize.
func applyLength(draft *answer.StructuredAnswer, sourceID, key, value string) {
	d, err := time.ParseDuration(value)
	if err != nil {
		slog.Warn("Dropping unparseable playtime value", "source", sourceID, "key", key, "value", value)
		return
	}
	if draft.GameLength == nil {
		draft.GameLength = &answer.GameLength{}
		draft.SetProvenance(answer.FieldGameLength, sourceID)
	} else if draft.Provenance[answer.FieldGameLength] != sourceID {
		// Another source already owns game length; first source wins.
		return
	}
	switch key {
	case sources.KeyMainStory:
		draft.GameLength.MainStory = d
	case sources.KeyMainExtras:
		draft.GameLength.MainExtras = d
	case sources.KeyCompletionist:
		draft.GameLength.Completionist = d
	}
}

// mergeNarrative folds generated prose into the gaps. The summary is
// always narrative-owned (and condensed when rambling); lore and tips
// take narrative only when no source covered them.
func mergeNarrative(draft *answer.StructuredAnswer, narrative answer.Narrative) {
	if narrative.Summary != "" {
		draft.Summary = condense(narrative.Summary)
		draft.SetProvenance(answer.FieldSummary, answer.ProvenanceGenerated)
	}
	if narrative.Lore != "" && draft.Lore == "" {
		draft.Lore = narrative.Lore
		draft.SetProvenance(answer.FieldLore, answer.ProvenanceGenerated)
	}
	if narrative.GameTips != "" && draft.GameTips == "" {
		draft.GameTips = narrative.GameTips
		draft.SetProvenance(answer.FieldGameTips, answer.ProvenanceGenerated)
	}
}

// condense trims a long narrative down to its leading sentences.
func condense(text string) string {
	text = spoiler.CleanText(text)
	sentences := spoiler.SplitSentences(text)
	if len(sentences) <= maxSummarySentences {
		return text
	}
	return spoiler.JoinSentences(sentences[:maxSummarySentences])
}

// orderedKeys returns map keys in a fixed canonical order so composition
// is deterministic regardless of Go map iteration.
func orderedKeys(payload map[string]string) []string {
	canonical := []string{
		sources.KeyMainStory, sources.KeyMainExtras, sources.KeyCompletionist,
		sources.KeyPlot, sources.KeyLore,
		sources.KeyGameplay, sources.KeyTips,
		sources.KeyReleaseDate, sources.KeyDeveloper, sources.KeyPlatforms,
		sources.KeyGenres, sources.KeyRating,
	}
	out := make([]string, 0, len(payload))
	seen := map[string]bool{}
	for _, k := range canonical {
		if _, ok := payload[k]; ok {
			out = append(out, k)
			seen[k] = true
		}
	}
	var extra []string
	for k := range payload {
		if !seen[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}
