// Copyright (C) 2026 Lorekeep AI (oss@lorekeep.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/LorekeepAI/Lorekeep/services/answer"
)

const hltbSourceID = "hltb"

// HLTBAdapter queries a HowLongToBeat-style search endpoint for completion
// times. Payload hours are reported as whole-hour strings ("21h") which
// the composer parses into durations.
type HLTBAdapter struct {
	BaseURL string
	Client  HTTPClient
}

func NewHLTBAdapter(client HTTPClient) *HLTBAdapter {
	if client == nil {
		client = defaultHTTPClient
	}
	return &HLTBAdapter{
		BaseURL: "https://howlongtobeat.com/api/search",
		Client:  client,
	}
}

func (h *HLTBAdapter) ID() string { return hltbSourceID }

// Depth is moderate: HLTB is the only playtime source, so ties are rare.
func (h *HLTBAdapter) Depth() int { return 5 }

type hltbSearchRequest struct {
	SearchType  string   `json:"searchType"`
	SearchTerms []string `json:"searchTerms"`
}

type hltbGame struct {
	GameName string `json:"game_name"`
	CompMain int64  `json:"comp_main"` // seconds
	CompPlus int64  `json:"comp_plus"`
	Comp100  int64  `json:"comp_100"`
}

type hltbSearchResponse struct {
	Data []hltbGame `json:"data"`
}

func (h *HLTBAdapter) Fetch(ctx context.Context, subQuery string) answer.SourceResult {
	reqBody, err := json.Marshal(hltbSearchRequest{
		SearchType:  "games",
		SearchTerms: strings.Fields(subQuery),
	})
	if err != nil {
		return answer.Errored(hltbSourceID, fmt.Sprintf("failed to marshal the search request: %v", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.BaseURL, bytes.NewBuffer(reqBody))
	if err != nil {
		return answer.Errored(hltbSourceID, fmt.Sprintf("failed to build the search request: %v", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Referer", "https://howlongtobeat.com/")

	resp, err := h.Client.Do(req)
	if err != nil {
		slog.Warn("HLTB search failed", "query", subQuery, "error", err)
		return answer.Errored(hltbSourceID, err.Error())
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			slog.Warn("Failed to close the HLTB response body", "error", cerr)
		}
	}()
	if resp.StatusCode != http.StatusOK {
		return answer.Errored(hltbSourceID, fmt.Sprintf("HLTB returned status %d", resp.StatusCode))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return answer.Errored(hltbSourceID, fmt.Sprintf("failed to read the HLTB response: %v", err))
	}
	var parsed hltbSearchResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return answer.Errored(hltbSourceID, fmt.Sprintf("failed to decode the HLTB response: %v", err))
	}
	if len(parsed.Data) == 0 {
		return answer.NotFound(hltbSourceID)
	}

	best := bestMatch(parsed.Data, subQuery)
	if best.CompMain == 0 && best.CompPlus == 0 && best.Comp100 == 0 {
		return answer.NotFound(hltbSourceID)
	}

	payload := map[string]string{}
	if best.CompMain > 0 {
		payload[KeyMainStory] = secondsToHours(best.CompMain)
	}
	if best.CompPlus > 0 {
		payload[KeyMainExtras] = secondsToHours(best.CompPlus)
	}
	if best.Comp100 > 0 {
		payload[KeyCompletionist] = secondsToHours(best.Comp100)
	}
	return answer.Found(hltbSourceID, payload)
}

// bestMatch prefers a case-insensitive exact title match and otherwise
// takes the first search hit (the API already ranks by relevance). The
// rule is deliberately simple and deterministic.
func bestMatch(games []hltbGame, query string) hltbGame {
	for _, g := range games {
		if strings.EqualFold(strings.TrimSpace(g.GameName), strings.TrimSpace(query)) {
			return g
		}
	}
	return games[0]
}

// secondsToHours rounds to the nearest whole hour, matching how playtime
// sites present these numbers.
func secondsToHours(seconds int64) string {
	hours := (seconds + 1800) / 3600
	return fmt.Sprintf("%dh", hours)
}
