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

// Narrative is the model-composed prose handed to the composer. It is
// treated as the lowest-priority "source": it may fill gaps but never
// overwrites a field with direct source provenance. An empty Narrative is
// valid — the model is allowed to fail without failing the request.
type Narrative struct {
	Summary  string `json:"summary"`
	Lore     string `json:"lore"`
	GameTips string `json:"game_tips"`
}

// IsZero reports whether the model contributed nothing.
func (n Narrative) IsZero() bool {
	return n.Summary == "" && n.Lore == "" && n.GameTips == ""
}
