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

import "time"

// SourceStatus discriminates the SourceResult variants.
type SourceStatus string

const (
	SourceFound    SourceStatus = "found"
	SourceNotFound SourceStatus = "not_found"
	SourceErrored  SourceStatus = "error"
)

// SourceResult is the uniform result shape every source adapter returns.
//
// It is a tagged variant: Payload is only meaningful when Status is
// SourceFound, Reason only when Status is SourceErrored. Results are
// immutable once produced; the router owns them until they are handed to
// the composer.
type SourceResult struct {
	SourceID    string            `json:"source_id"`
	Status      SourceStatus      `json:"status"`
	Payload     map[string]string `json:"payload,omitempty"`
	Reason      string            `json:"reason,omitempty"`
	RetrievedAt time.Time         `json:"retrieved_at,omitempty"`
}

// Found builds the success variant.
func Found(sourceID string, payload map[string]string) SourceResult {
	return SourceResult{
		SourceID:    sourceID,
		Status:      SourceFound,
		Payload:     payload,
		RetrievedAt: time.Now().UTC(),
	}
}

// NotFound builds the miss variant: the source answered but had nothing.
func NotFound(sourceID string) SourceResult {
	return SourceResult{SourceID: sourceID, Status: SourceNotFound}
}

// Errored builds the failure variant. A failed or timed-out source is
// recovered locally (its fields are simply absent in the draft) and never
// surfaces to the user as an error.
func Errored(sourceID, reason string) SourceResult {
	return SourceResult{SourceID: sourceID, Status: SourceErrored, Reason: reason}
}
