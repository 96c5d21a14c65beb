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
	"net/url"
	"regexp"
	"strings"

	"github.com/LorekeepAI/Lorekeep/services/answer"
)

const wikiSourceID = "wiki"

// sectionSynonyms maps the canonical section name to the headings it may
// appear under on a game's Wikipedia page.
var sectionSynonyms = map[string][]string{
	"plot":        {"plot", "story", "synopsis", "plot summary", "storyline"},
	"characters":  {"characters", "cast", "main characters", "playable characters"},
	"development": {"development", "production", "creation"},
	"gameplay":    {"gameplay", "mechanics", "game play"},
}

var wikiCitation = regexp.MustCompile(`\[\d+\]`)

// WikiAdapter fetches lore and plot text from the Wikipedia API. It does a
// title search first (queries rarely match page titles exactly), pulls the
// full plain-text extract, then slices out the plot and gameplay sections.
type WikiAdapter struct {
	BaseURL string
	Client  HTTPClient
}

func NewWikiAdapter(client HTTPClient) *WikiAdapter {
	if client == nil {
		client = defaultHTTPClient
	}
	return &WikiAdapter{
		BaseURL: "https://en.wikipedia.org/w/api.php",
		Client:  client,
	}
}

func (w *WikiAdapter) ID() string { return wikiSourceID }

// Depth is high: wiki plot sections are the deepest lore source we have.
func (w *WikiAdapter) Depth() int { return 10 }

func (w *WikiAdapter) Fetch(ctx context.Context, subQuery string) answer.SourceResult {
	title, err := w.searchTitle(ctx, subQuery)
	if err != nil {
		slog.Warn("Wiki title search failed", "query", subQuery, "error", err)
		return answer.Errored(wikiSourceID, err.Error())
	}
	if title == "" {
		return answer.NotFound(wikiSourceID)
	}

	raw, err := w.fetchExtract(ctx, title)
	if err != nil {
		slog.Warn("Wiki extract fetch failed", "title", title, "error", err)
		return answer.Errored(wikiSourceID, err.Error())
	}
	if raw == "" {
		return answer.NotFound(wikiSourceID)
	}

	payload := map[string]string{}
	if plot := ExtractSection(raw, "plot"); plot != "" {
		payload[KeyPlot] = CleanWikiText(plot)
	}
	if gameplay := ExtractSection(raw, "gameplay"); gameplay != "" {
		payload[KeyGameplay] = CleanWikiText(gameplay)
	}
	if len(payload) == 0 {
		return answer.NotFound(wikiSourceID)
	}
	return answer.Found(wikiSourceID, payload)
}

// searchTitle resolves the best matching page title for a free-form query.
func (w *WikiAdapter) searchTitle(ctx context.Context, query string) (string, error) {
	params := url.Values{
		"action":   {"query"},
		"list":     {"search"},
		"srsearch": {query},
		"format":   {"json"},
	}
	var body struct {
		Query struct {
			Search []struct {
				Title string `json:"title"`
			} `json:"search"`
		} `json:"query"`
	}
	if err := w.getJSON(ctx, params, &body); err != nil {
		return "", err
	}
	if len(body.Query.Search) == 0 {
		return "", nil
	}
	return body.Query.Search[0].Title, nil
}

// fetchExtract pulls the full plain-text extract of a page.
func (w *WikiAdapter) fetchExtract(ctx context.Context, title string) (string, error) {
	params := url.Values{
		"action":      {"query"},
		"prop":        {"extracts"},
		"explaintext": {"true"},
		"titles":      {title},
		"format":      {"json"},
	}
	var body struct {
		Query struct {
			Pages map[string]struct {
				Extract string `json:"extract"`
			} `json:"pages"`
		} `json:"query"`
	}
	if err := w.getJSON(ctx, params, &body); err != nil {
		return "", err
	}
	for _, page := range body.Query.Pages {
		return page.Extract, nil
	}
	return "", nil
}

func (w *WikiAdapter) getJSON(ctx context.Context, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to build the wiki request: %w", err)
	}
	resp, err := w.Client.Do(req)
	if err != nil {
		return fmt.Errorf("wiki request failed: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			slog.Warn("Failed to close the wiki response body", "error", cerr)
		}
	}()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("wiki API returned status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read the wiki response: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode the wiki response: %w", err)
	}
	return nil
}

// CleanWikiText strips citation markers like [12] and collapses repeated
// whitespace. Spoiler handling happens downstream, not here.
func CleanWikiText(text string) string {
	text = wikiCitation.ReplaceAllString(text, "")
	text = strings.Join(strings.Fields(text), " ")
	return strings.TrimSpace(text)
}

// ExtractSection slices one section out of a plain-text page extract,
// matching headings through the synonym table ("plot" also matches Story,
// Synopsis...). Returns "" when no heading matches.
func ExtractSection(raw, section string) string {
	if raw == "" {
		return ""
	}
	lines := strings.Split(raw, "\n")
	synonyms, ok := sectionSynonyms[strings.ToLower(section)]
	if !ok {
		synonyms = []string{strings.ToLower(section)}
	}

	start := -1
	for i, line := range lines {
		heading := strings.ToLower(strings.Trim(strings.TrimSpace(line), "= "))
		for _, syn := range synonyms {
			if heading == syn {
				start = i
				break
			}
		}
		if start >= 0 {
			break
		}
	}
	if start < 0 {
		return ""
	}

	end := len(lines)
	for j := start + 1; j < len(lines); j++ {
		trimmed := strings.TrimSpace(lines[j])
		if strings.HasPrefix(trimmed, "==") && strings.HasSuffix(trimmed, "==") {
			end = j
			break
		}
	}
	return strings.TrimSpace(strings.Join(lines[start+1:end], "\n"))
}
