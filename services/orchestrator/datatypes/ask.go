// Copyright (C) 2026 Lorekeep AI (oss@lorekeep.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package datatypes provides request and response structures for the
// orchestrator service.
package datatypes

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/LorekeepAI/Lorekeep/services/answer"
)

// =============================================================================
// Request Limits
// =============================================================================

const (
	// MaxQueryBytes is the maximum size of the player's question.
	MaxQueryBytes = 8 * 1024 // 8KB

	// MaxHistoryTurns is the maximum number of conversation turns a
	// request may carry.
	MaxHistoryTurns = 50
)

// askValidate is the validator instance for ask datatypes.
var askValidate *validator.Validate

func init() {
	askValidate = validator.New()
	_ = askValidate.RegisterValidation("maxbytes", validateQueryBytes)
}

// validateQueryBytes checks byte length, not rune count, so oversized
// payloads are rejected regardless of encoding.
func validateQueryBytes(fl validator.FieldLevel) bool {
	return len(fl.Field().String()) <= MaxQueryBytes
}

// =============================================================================
// Ask Request Types
// =============================================================================

// HistoryTurn is one prior turn of the conversation, used to resolve
// follow-up questions like "how long does it take to beat?".
type HistoryTurn struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"required,maxbytes"`
}

// AskRequest represents a question about a video game.
//
// # Description
//
// AskRequest is the body of POST /v1/ask. Query is the player's current
// question; History carries earlier turns so the router can resolve
// pronouns to a game title. SpoilerPreference, when set, overrides the
// server's spoiler policy for this request: true discloses plot content
// inline, false forces redaction.
//
// # Validation
//
// Uses go-playground/validator:
//   - RequestID: optional, must be UUID v4 when present
//   - Query: required, max 8KB
//   - History: at most 50 turns, each with a known role
type AskRequest struct {
	RequestID         string        `json:"request_id,omitempty" validate:"omitempty,uuid4"`
	Timestamp         int64         `json:"timestamp,omitempty" validate:"gte=0"`
	Query             string        `json:"query" validate:"required,maxbytes"`
	History           []HistoryTurn `json:"history,omitempty" validate:"max=50,dive"`
	SpoilerPreference *bool         `json:"spoiler_preference,omitempty"`
}

// Validate validates the AskRequest fields after JSON binding.
func (r *AskRequest) Validate() error {
	return askValidate.Struct(r)
}

// EnsureDefaults populates RequestID and Timestamp when the client did
// not supply them, so every request is traceable.
func (r *AskRequest) EnsureDefaults() {
	if r.RequestID == "" {
		r.RequestID = uuid.NewString()
	}
	if r.Timestamp == 0 {
		r.Timestamp = time.Now().UnixMilli()
	}
}

// =============================================================================
// Ask Response Types
// =============================================================================

// AskResponse is the body of a successful POST /v1/ask.
//
// Exactly one of Answer or Rejected is set. Rendered is the plain-text
// presentation of the structured answer (or of the rejection) for
// clients that do not want to lay out fields themselves. Notice carries
// the reminder shown when spoilers were disclosed at the player's
// request.
type AskResponse struct {
	RequestID string                   `json:"request_id"`
	Answer    *answer.StructuredAnswer `json:"answer,omitempty"`
	Rejected  *answer.RejectedResponse `json:"rejected,omitempty"`
	Notice    string                   `json:"notice,omitempty"`
	Rendered  string                   `json:"rendered"`
}
