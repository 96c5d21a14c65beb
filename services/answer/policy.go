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
	"fmt"
	"strings"
)

// PolicyLevel controls how aggressively spoiler content is withheld.
type PolicyLevel string

const (
	// PolicyMinimal keeps redaction light: only pattern-matched sentences
	// are moved, the narrative-position heuristic is skipped.
	PolicyMinimal PolicyLevel = "minimal"

	// PolicyMedium is the default: spoiler-bearing sentences are removed
	// from primary fields and relocated behind a warning.
	PolicyMedium PolicyLevel = "medium"

	// PolicyFull discloses everything the user asked for and suppresses
	// even the mild notice.
	PolicyFull PolicyLevel = "full"
)

// ParsePolicyLevel converts a configuration string into a PolicyLevel.
func ParsePolicyLevel(s string) (PolicyLevel, error) {
	switch PolicyLevel(strings.ToLower(strings.TrimSpace(s))) {
	case PolicyMinimal:
		return PolicyMinimal, nil
	case PolicyMedium, "":
		return PolicyMedium, nil
	case PolicyFull:
		return PolicyFull, nil
	default:
		return "", fmt.Errorf("invalid spoiler policy level %q", s)
	}
}

// SpoilerPolicy is derived once per query from the configured default level
// and the user's intent signals. It is passed into each pipeline call as an
// explicit value, never stored as process-wide state, so redaction stays a
// pure function of (draft, policy).
type SpoilerPolicy struct {
	Level PolicyLevel

	// UserRequestedSpoilers is the per-query override: when true, spoiler
	// sentences stay inline and only a notice is attached.
	UserRequestedSpoilers bool
}

// DefaultPolicy returns the medium policy with no user override.
func DefaultPolicy() SpoilerPolicy {
	return SpoilerPolicy{Level: PolicyMedium}
}

// Disclose reports whether spoiler-bearing sentences may remain in place.
func (p SpoilerPolicy) Disclose() bool {
	return p.UserRequestedSpoilers || p.Level == PolicyFull
}
