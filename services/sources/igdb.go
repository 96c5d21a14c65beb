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
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/LorekeepAI/Lorekeep/services/answer"
)

const igdbSourceID = "igdb"

// IGDBAdapter looks up factual game metadata (release date, developer,
// platforms, genres, rating) via the IGDB v4 API. IGDB speaks the
// Apicalypse query language over POST; credentials come from the Twitch
// developer portal.
type IGDBAdapter struct {
	BaseURL     string
	ClientID    string
	AccessToken string
	Client      HTTPClient
}

func NewIGDBAdapter(clientID, accessToken string, client HTTPClient) *IGDBAdapter {
	if client == nil {
		client = defaultHTTPClient
	}
	return &IGDBAdapter{
		BaseURL:     "https://api.igdb.com/v4/games",
		ClientID:    clientID,
		AccessToken: accessToken,
		Client:      client,
	}
}

func (a *IGDBAdapter) ID() string { return igdbSourceID }

// Depth is moderate: IGDB is authoritative for metadata but shallow for
// everything narrative.
func (a *IGDBAdapter) Depth() int { return 5 }

type igdbGame struct {
	Name             string  `json:"name"`
	FirstReleaseDate int64   `json:"first_release_date"`
	Rating           float64 `json:"rating"`
	InvolvedCompanies []struct {
		Developer bool `json:"developer"`
		Company   struct {
			Name string `json:"name"`
		} `json:"company"`
	} `json:"involved_companies"`
	Platforms []struct {
		Name string `json:"name"`
	} `json:"platforms"`
	Genres []struct {
		Name string `json:"name"`
	} `json:"genres"`
}

func (a *IGDBAdapter) Fetch(ctx context.Context, subQuery string) answer.SourceResult {
	if a.ClientID == "" || a.AccessToken == "" {
		return answer.Errored(igdbSourceID, "IGDB credentials are not configured")
	}

	// Apicalypse: search plus an explicit field list.
	query := fmt.Sprintf(
		`search %q; fields name,first_release_date,rating,involved_companies.developer,involved_companies.company.name,platforms.name,genres.name; limit 1;`,
		subQuery)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.BaseURL, strings.NewReader(query))
	if err != nil {
		return answer.Errored(igdbSourceID, fmt.Sprintf("failed to build the IGDB request: %v", err))
	}
	req.Header.Set("Client-ID", a.ClientID)
	req.Header.Set("Authorization", "Bearer "+a.AccessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := a.Client.Do(req)
	if err != nil {
		slog.Warn("IGDB lookup failed", "query", subQuery, "error", err)
		return answer.Errored(igdbSourceID, err.Error())
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			slog.Warn("Failed to close the IGDB response body", "error", cerr)
		}
	}()
	if resp.StatusCode != http.StatusOK {
		return answer.Errored(igdbSourceID, fmt.Sprintf("IGDB returned status %d", resp.StatusCode))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return answer.Errored(igdbSourceID, fmt.Sprintf("failed to read the IGDB response: %v", err))
	}
	var games []igdbGame
	if err := json.Unmarshal(data, &games); err != nil {
		return answer.Errored(igdbSourceID, fmt.Sprintf("failed to decode the IGDB response: %v", err))
	}
	if len(games) == 0 {
		return answer.NotFound(igdbSourceID)
	}

	g := games[0]
	payload := map[string]string{}
	if g.FirstReleaseDate > 0 {
		payload[KeyReleaseDate] = time.Unix(g.FirstReleaseDate, 0).UTC().Format("2006-01-02")
	}
	for _, ic := range g.InvolvedCompanies {
		if ic.Developer && ic.Company.Name != "" {
			payload[KeyDeveloper] = ic.Company.Name
			break
		}
	}
	if names := joinNames(len(g.Platforms), func(i int) string { return g.Platforms[i].Name }); names != "" {
		payload[KeyPlatforms] = names
	}
	if names := joinNames(len(g.Genres), func(i int) string { return g.Genres[i].Name }); names != "" {
		payload[KeyGenres] = names
	}
	if g.Rating > 0 {
		payload[KeyRating] = fmt.Sprintf("%.0f/100", g.Rating)
	}
	if len(payload) == 0 {
		return answer.NotFound(igdbSourceID)
	}
	return answer.Found(igdbSourceID, payload)
}

func joinNames(n int, name func(int) string) string {
	parts := make([]string, 0, n)
	for i := 0; i < n; i++ {
		if s := name(i); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}
