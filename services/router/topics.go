// Copyright (C) 2026 Lorekeep AI (oss@lorekeep.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package router

import (
	"regexp"
	"strings"
)

// Category is a topic bucket a query can fall into. A query may span
// several categories ("how long is X and is the ending sad").
type Category string

const (
	CategoryMetadata Category = "metadata"
	CategoryPlaytime Category = "playtime"
	CategoryLore     Category = "lore"
	CategoryPlot     Category = "plot"
	CategoryTips     Category = "tips"
)

// categoryRule maps trigger keywords to a category. Rules are evaluated in
// order and every matching category is selected.
type categoryRule struct {
	category Category
	keywords []string
}

// Rules carried over from the original intent heuristics; keep them
// lowercase, matching is case-insensitive.
var categoryRules = []categoryRule{
	{CategoryPlaytime, []string{
		"how long", "hours to beat", "playtime", "play time", "game length",
		"how many hours", "completionist",
	}},
	{CategoryMetadata, []string{
		"release", "released", "come out", "platform", "developer", "engine",
		"rating", "metacritic", "genre", "when was", "when did", "who made",
		"who developed",
	}},
	{CategoryTips, []string{
		"how to beat", "how do i beat", "how do i solve", "puzzle", "tips",
		"guide", "cheat", "strategy", "how to defeat",
	}},
	{CategoryPlot, []string{
		"ending", "end of", "spoil", "plot", "what happens", "story of",
		"the story", "twist", "who dies",
	}},
	{CategoryLore, []string{
		"lore", "worldbuilding", "backstory", "mythology", "universe",
		"character", "world of", "about the game", "tell me about",
	}},
}

// Categorize resolves every topic category a query belongs to, in rule
// order. An unmatched query defaults to lore: "tell me about X" style
// questions are the common fallthrough.
func Categorize(query string) []Category {
	q := strings.ToLower(query)
	var cats []Category
	seen := map[Category]bool{}
	for _, rule := range categoryRules {
		if seen[rule.category] {
			continue
		}
		for _, kw := range rule.keywords {
			if strings.Contains(q, kw) {
				cats = append(cats, rule.category)
				seen[rule.category] = true
				break
			}
		}
	}
	if len(cats) == 0 {
		cats = append(cats, CategoryLore)
	}
	return cats
}

// Leading interrogative phrases stripped when extracting a game title from
// the query. Longest prefixes first so "what happens at the end of" wins
// over "what happens".
var titlePrefixes = []string{
	"what happens at the end of",
	"what happens in the end of",
	"what is the ending of",
	"what's the ending of",
	"how long does it take to beat",
	"how long does it take to finish",
	"what is the lore of",
	"what's the lore of",
	"who are the characters in",
	"what platforms is",
	"when was",
	"when did",
	"who developed",
	"who made",
	"how long is",
	"how do i beat",
	"how to beat",
	"tell me about",
	"what happens in",
	"what is",
	"what's",
	"spoil",
}

var titleSuffixes = []string{
	"released",
	"come out",
	"about",
	"ending",
	"for me",
}

var trailingPunct = regexp.MustCompile(`[?!.,\s]+$`)

// ExtractTitle pulls the probable game title out of a query by stripping
// interrogative boilerplate. When nothing is left (pronoun-only follow-up
// like "is it sad?"), it walks the prior user turns newest-first and
// reuses the last title that extraction found there.
func ExtractTitle(query string, history []Turn) string {
	if t := stripBoilerplate(query); t != "" {
		return t
	}
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role != RoleUser {
			continue
		}
		if t := stripBoilerplate(history[i].Content); t != "" {
			return t
		}
	}
	return strings.TrimSpace(trailingPunct.ReplaceAllString(query, ""))
}

func stripBoilerplate(query string) string {
	q := strings.TrimSpace(query)
	lower := strings.ToLower(q)
	for _, prefix := range titlePrefixes {
		if strings.HasPrefix(lower, prefix+" ") {
			q = q[len(prefix)+1:]
			lower = strings.ToLower(q)
			break
		}
	}
	for _, suffix := range titleSuffixes {
		if strings.HasSuffix(strings.TrimSpace(trailingPunct.ReplaceAllString(lower, "")), " "+suffix) {
			idx := strings.LastIndex(lower, " "+suffix)
			q = q[:idx]
			break
		}
	}
	q = trailingPunct.ReplaceAllString(q, "")
	// Pronoun-only remainders are not titles.
	switch strings.ToLower(strings.TrimSpace(q)) {
	case "", "it", "that", "this", "the game":
		return ""
	}
	return strings.TrimSpace(q)
}
