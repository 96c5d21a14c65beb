// Copyright (C) 2026 Lorekeep AI (oss@lorekeep.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package hygiene is the last gate before an answer leaves the pipeline.
//
// # Description
//
// The validator enforces three rules on a redacted draft:
//
//  1. Provenance integrity. Every populated field other than generated
//     prose must cite a source that was actually invoked for this
//     request. A field citing anything else is dropped, not repaired.
//  2. Topic alignment. Fields outside the categories the router selected
//     are dropped, so a playtime question never ships lore.
//  3. Warning pairing. Warning and Spoilers travel together: spoiler
//     content missing its warning gets the caution text added, while a
//     warning with no spoiler content is removed.
//
// An answer with nothing left after enforcement becomes a
// RejectedResponse. A provenance key naming an unknown field is the one
// fatal outcome: it means a stage upstream corrupted the schema, and the
// validator refuses to guess.
package hygiene

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/LorekeepAI/Lorekeep/services/answer"
	"github.com/LorekeepAI/Lorekeep/services/router"
	"github.com/LorekeepAI/Lorekeep/services/spoiler"
)

// Result carries the outcome of validation: exactly one of Answer or
// Rejected is set.
type Result struct {
	Answer   *answer.StructuredAnswer
	Rejected *answer.RejectedResponse

	// DroppedFields lists fields removed during enforcement, for
	// observability.
	DroppedFields []string
}

// rejectionReason is the fixed reason for an empty validated answer.
const rejectionReason = "no grounded information"

// categoryFields maps each routed category to the content fields it
// licenses. Summary, spoiler fields, and provenance are always allowed:
// they are products of the pipeline itself, not topical content.
var categoryFields = map[router.Category][]string{
	router.CategoryMetadata: {answer.FieldMetadata},
	router.CategoryPlaytime: {answer.FieldGameLength},
	router.CategoryLore:     {answer.FieldLore},
	router.CategoryPlot:     {answer.FieldLore},
	router.CategoryTips:     {answer.FieldGameTips},
}

// alwaysAllowed are fields exempt from topic alignment.
var alwaysAllowed = map[string]bool{
	answer.FieldSummary:    true,
	answer.FieldNoSpoilers: true,
	answer.FieldSpoilers:   true,
	answer.FieldWarning:    true,
}

// Validate runs field hygiene on a redacted draft and seals the survivor.
//
// invoked lists the source IDs the router actually called for this
// request; categories is the router's topic selection. The input draft is
// never mutated. The only error returned is ErrSchemaViolation.
func Validate(draft *answer.StructuredAnswer, invoked []string, categories []router.Category) (Result, error) {
	if err := checkProvenanceKeys(draft); err != nil {
		return Result{}, err
	}

	out := draft.Clone()
	var dropped []string

	invokedSet := make(map[string]bool, len(invoked))
	for _, id := range invoked {
		invokedSet[id] = true
	}

	allowed := allowedFields(categories)

	for _, field := range fieldOrder {
		if !populated(out, field) {
			clearProvenance(out, field)
			continue
		}
		src, hasProv := provenanceOf(out, field)
		switch {
		case hasProv && src == answer.ProvenanceGenerated:
			// Generated prose needs no source, only topic alignment.
		case hasProv && invokedSet[src]:
			// Grounded in a source we actually called.
		default:
			slog.Warn("Dropping field with unverifiable provenance", "field", field, "source", src)
			clearField(out, field)
			dropped = append(dropped, field)
			continue
		}
		if !alwaysAllowed[field] && !allowed[field] {
			slog.Info("Dropping off-topic field", "field", field)
			clearField(out, field)
			dropped = append(dropped, field)
		}
	}

	dropped = append(dropped, repairWarningPair(out)...)

	if out.IsEmpty() {
		return Result{
			Rejected:      &answer.RejectedResponse{Reason: rejectionReason},
			DroppedFields: dropped,
		}, nil
	}

	out.Seal()
	return Result{Answer: out, DroppedFields: dropped}, nil
}

// fieldOrder fixes the enforcement order so dropped-field reporting is
// deterministic.
var fieldOrder = []string{
	answer.FieldSummary,
	answer.FieldNoSpoilers,
	answer.FieldSpoilers,
	answer.FieldWarning,
	answer.FieldGameLength,
	answer.FieldLore,
	answer.FieldGameTips,
	answer.FieldMetadata,
}

// checkProvenanceKeys rejects provenance entries naming fields outside
// the schema. This is the fatal path: it indicates upstream corruption.
func checkProvenanceKeys(draft *answer.StructuredAnswer) error {
	var bad []string
	for field := range draft.Provenance {
		if !answer.KnownFields[field] {
			bad = append(bad, field)
		}
	}
	if len(bad) == 0 {
		return nil
	}
	sort.Strings(bad)
	return fmt.Errorf("%w: provenance references unknown fields %v", answer.ErrSchemaViolation, bad)
}

// allowedFields expands the routed categories into the set of content
// fields they license.
func allowedFields(categories []router.Category) map[string]bool {
	allowed := map[string]bool{}
	for _, c := range categories {
		for _, f := range categoryFields[c] {
			allowed[f] = true
		}
	}
	return allowed
}

// repairWarningPair enforces that Warning is set iff Spoilers is set.
// Spoiler content that survived provenance checks is grounded, so a
// missing warning is repaired by adding the caution text, never by
// discarding the content. A warning with no spoilers is the stray half
// and is removed.
func repairWarningPair(a *answer.StructuredAnswer) []string {
	switch {
	case a.Warning != "" && a.Spoilers == "":
		slog.Warn("Dropping warning with no spoiler content")
		clearField(a, answer.FieldWarning)
		return []string{answer.FieldWarning}
	case a.Spoilers != "" && a.Warning == "":
		slog.Warn("Adding missing warning for spoiler content")
		a.Warning = spoiler.WarningText
		if a.Provenance == nil {
			a.Provenance = map[string]string{}
		}
		a.Provenance[answer.FieldWarning] = answer.ProvenanceGenerated
	}
	return nil
}

func populated(a *answer.StructuredAnswer, field string) bool {
	switch field {
	case answer.FieldSummary:
		return a.Summary != ""
	case answer.FieldNoSpoilers:
		return a.NoSpoilers != ""
	case answer.FieldSpoilers:
		return a.Spoilers != ""
	case answer.FieldWarning:
		return a.Warning != ""
	case answer.FieldGameLength:
		return !a.GameLength.IsZero()
	case answer.FieldLore:
		return a.Lore != ""
	case answer.FieldGameTips:
		return a.GameTips != ""
	case answer.FieldMetadata:
		return len(a.Metadata) > 0
	}
	return false
}

func provenanceOf(a *answer.StructuredAnswer, field string) (string, bool) {
	src, ok := a.Provenance[field]
	return src, ok
}

func clearField(a *answer.StructuredAnswer, field string) {
	switch field {
	case answer.FieldSummary:
		a.Summary = ""
	case answer.FieldNoSpoilers:
		a.NoSpoilers = ""
	case answer.FieldSpoilers:
		a.Spoilers = ""
	case answer.FieldWarning:
		a.Warning = ""
	case answer.FieldGameLength:
		a.GameLength = nil
	case answer.FieldLore:
		a.Lore = ""
	case answer.FieldGameTips:
		a.GameTips = ""
	case answer.FieldMetadata:
		a.Metadata = nil
	}
	clearProvenance(a, field)
}

func clearProvenance(a *answer.StructuredAnswer, field string) {
	delete(a.Provenance, field)
}
