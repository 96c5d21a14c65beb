// Copyright (C) 2026 Lorekeep AI (oss@lorekeep.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package answer defines the canonical structured answer schema shared by
// every stage of the response pipeline.
//
// A StructuredAnswer starts life as a draft produced by the composer, passes
// through spoiler redaction and hygiene validation, and is only then marked
// validated and handed to a renderer. The draft form never leaves the
// pipeline.
package answer

import (
	"encoding/json"
	"fmt"
	"time"
)

// Field names used as keys in the Provenance map. Every non-empty field of a
// validated answer (other than model-composed prose) carries one of these
// keys in Provenance, pointing at the source that grounded it.
const (
	FieldSummary    = "summary"
	FieldNoSpoilers = "no_spoilers"
	FieldSpoilers   = "spoilers"
	FieldWarning    = "warning"
	FieldGameLength = "game_length"
	FieldLore       = "lore"
	FieldGameTips   = "game_tips"
	FieldMetadata   = "metadata"
)

// ProvenanceGenerated marks a field that was filled from model narrative
// rather than a retrieved source.
const ProvenanceGenerated = "generated"

// KnownFields lists every field name a provenance entry may reference.
// The hygiene validator treats any other key as a schema violation.
var KnownFields = map[string]bool{
	FieldSummary:    true,
	FieldNoSpoilers: true,
	FieldSpoilers:   true,
	FieldWarning:    true,
	FieldGameLength: true,
	FieldLore:       true,
	FieldGameTips:   true,
	FieldMetadata:   true,
}

// GameLength holds completion times from the playtime source.
//
// On the wire the durations are strings in Go duration syntax ("21h",
// "21h30m0s"), the form playtime sources report and time.ParseDuration
// accepts, rather than raw nanosecond integers.
type GameLength struct {
	MainStory     time.Duration `json:"-"`
	MainExtras    time.Duration `json:"-"`
	Completionist time.Duration `json:"-"`
}

// IsZero reports whether no completion time is set.
func (g *GameLength) IsZero() bool {
	return g == nil || (g.MainStory == 0 && g.MainExtras == 0 && g.Completionist == 0)
}

// gameLengthWire is the JSON shape of GameLength.
type gameLengthWire struct {
	MainStory     string `json:"main_story,omitempty"`
	MainExtras    string `json:"main_extras,omitempty"`
	Completionist string `json:"completionist,omitempty"`
}

func (g GameLength) MarshalJSON() ([]byte, error) {
	return json.Marshal(gameLengthWire{
		MainStory:     durationString(g.MainStory),
		MainExtras:    durationString(g.MainExtras),
		Completionist: durationString(g.Completionist),
	})
}

func (g *GameLength) UnmarshalJSON(data []byte) error {
	var wire gameLengthWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	var err error
	if g.MainStory, err = parseWireDuration(wire.MainStory); err != nil {
		return fmt.Errorf("main_story: %w", err)
	}
	if g.MainExtras, err = parseWireDuration(wire.MainExtras); err != nil {
		return fmt.Errorf("main_extras: %w", err)
	}
	if g.Completionist, err = parseWireDuration(wire.Completionist); err != nil {
		return fmt.Errorf("completionist: %w", err)
	}
	return nil
}

// durationString renders whole hours as "21h"; anything finer falls back
// to the standard duration form, which round-trips exactly.
func durationString(d time.Duration) string {
	if d == 0 {
		return ""
	}
	if d%time.Hour == 0 {
		return fmt.Sprintf("%dh", int(d/time.Hour))
	}
	return d.String()
}

func parseWireDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}

// StructuredAnswer is the schema every pipeline stage operates on.
//
// All fields are optional; absence means "no grounded data". The answer is a
// raw draft until the hygiene validator marks it validated via Seal(). Only
// sealed answers may be exposed to a renderer.
type StructuredAnswer struct {
	Summary    string            `json:"summary,omitempty"`
	NoSpoilers string            `json:"no_spoilers,omitempty"`
	Spoilers   string            `json:"spoilers,omitempty"`
	Warning    string            `json:"warning,omitempty"`
	GameLength *GameLength       `json:"game_length,omitempty"`
	Lore       string            `json:"lore,omitempty"`
	GameTips   string            `json:"game_tips,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`

	// Provenance maps field name -> source ID (or ProvenanceGenerated).
	Provenance map[string]string `json:"provenance,omitempty"`

	validated bool
}

// Seal marks the answer validated. Only the hygiene validator calls this;
// a sealed answer is immutable by convention and consumed exactly once.
func (a *StructuredAnswer) Seal() { a.validated = true }

// Validated reports whether the answer passed the enforcement pipeline.
func (a *StructuredAnswer) Validated() bool { return a.validated }

// IsEmpty reports whether no field carries content. Warning alone does not
// count: it only ever accompanies Spoilers.
func (a *StructuredAnswer) IsEmpty() bool {
	return a.Summary == "" &&
		a.NoSpoilers == "" &&
		a.Spoilers == "" &&
		a.GameLength.IsZero() &&
		a.Lore == "" &&
		a.GameTips == "" &&
		len(a.Metadata) == 0
}

// SetProvenance records the grounding source for a field, allocating the
// map on first use.
func (a *StructuredAnswer) SetProvenance(field, sourceID string) {
	if a.Provenance == nil {
		a.Provenance = make(map[string]string)
	}
	a.Provenance[field] = sourceID
}

// Clone returns a deep copy of the answer with the validated flag cleared.
// Stages that rewrite the draft operate on a clone so the input is never
// mutated in place.
func (a *StructuredAnswer) Clone() *StructuredAnswer {
	out := &StructuredAnswer{
		Summary:    a.Summary,
		NoSpoilers: a.NoSpoilers,
		Spoilers:   a.Spoilers,
		Warning:    a.Warning,
		Lore:       a.Lore,
		GameTips:   a.GameTips,
	}
	if a.GameLength != nil {
		gl := *a.GameLength
		out.GameLength = &gl
	}
	if a.Metadata != nil {
		out.Metadata = make(map[string]string, len(a.Metadata))
		for k, v := range a.Metadata {
			out.Metadata[k] = v
		}
	}
	if a.Provenance != nil {
		out.Provenance = make(map[string]string, len(a.Provenance))
		for k, v := range a.Provenance {
			out.Provenance[k] = v
		}
	}
	return out
}

// RejectedResponse is the terminal outcome when no field survives
// validation. The caller turns it into a user-facing "no information"
// message; it is never an error.
type RejectedResponse struct {
	Reason string `json:"reason"`
}
