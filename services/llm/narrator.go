// Copyright (C) 2026 Lorekeep AI (oss@lorekeep.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/LorekeepAI/Lorekeep/services/answer"
)

// Narrator turns retrieved source material into the prose sections of a
// draft answer. It is a best-effort stage: any model failure yields an
// empty narrative and the pipeline carries on with source data alone.
type Narrator struct {
	Client LLMClient
}

// narratorMaxTokens bounds the narrative; the composer trims further.
const narratorMaxTokens = 1024

const narratorInstructions = `Using ONLY the reference material below, answer the player's question.
Respond with a single JSON object with these string fields:
  "summary"   - a direct answer to the question, at most five sentences
  "lore"      - story or world background relevant to the question, or ""
  "game_tips" - gameplay advice relevant to the question, or ""
Do not invent facts that are not in the reference material. Output JSON only.`

// Narrate asks the model for a JSON narrative grounded in the Found
// source results. A nil client, an API failure, or unparseable output
// all return a zero Narrative.
func (n *Narrator) Narrate(ctx context.Context, query, title string, results []answer.SourceResult) answer.Narrative {
	if n == nil || n.Client == nil {
		return answer.Narrative{}
	}
	reference := referenceBlock(results)
	if reference == "" {
		slog.Debug("No found sources to narrate from")
		return answer.Narrative{}
	}

	prompt := buildNarratorPrompt(query, title, reference)
	temp := float32(0.2)
	maxTokens := narratorMaxTokens
	raw, err := n.Client.Generate(ctx, prompt, GenerationParams{
		Temperature: &temp,
		MaxTokens:   &maxTokens,
	})
	if err != nil {
		slog.Warn("Narrator generation failed, continuing without narrative", "error", err)
		return answer.Narrative{}
	}
	return parseNarrative(raw)
}

func buildNarratorPrompt(query, title, reference string) string {
	var b strings.Builder
	b.WriteString(narratorInstructions)
	b.WriteString("\n\n")
	if title != "" {
		fmt.Fprintf(&b, "Game: %s\n", title)
	}
	fmt.Fprintf(&b, "Question: %s\n\n", query)
	b.WriteString("Reference material:\n")
	b.WriteString(reference)
	return b.String()
}

// referenceBlock flattens the Found payloads into a labeled text block.
// Keys are sorted so the same results always build the same prompt.
func referenceBlock(results []answer.SourceResult) string {
	var b strings.Builder
	for _, res := range results {
		if res.Status != answer.SourceFound {
			continue
		}
		keys := make([]string, 0, len(res.Payload))
		for key := range res.Payload {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			value := res.Payload[key]
			if value == "" {
				continue
			}
			fmt.Fprintf(&b, "[%s/%s]\n%s\n\n", res.SourceID, key, value)
		}
	}
	return b.String()
}

// parseNarrative extracts the JSON object from the model output. Models
// wrap JSON in code fences or chatter often enough that we cut to the
// outermost braces before unmarshalling.
func parseNarrative(raw string) answer.Narrative {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		slog.Warn("Narrator output contained no JSON object")
		return answer.Narrative{}
	}
	var parsed struct {
		Summary  string `json:"summary"`
		Lore     string `json:"lore"`
		GameTips string `json:"game_tips"`
	}
	if err := json.Unmarshal([]byte(raw[start:end+1]), &parsed); err != nil {
		slog.Warn("Failed to parse narrator JSON", "error", err)
		return answer.Narrative{}
	}
	return answer.Narrative{
		Summary:  strings.TrimSpace(parsed.Summary),
		Lore:     strings.TrimSpace(parsed.Lore),
		GameTips: strings.TrimSpace(parsed.GameTips),
	}
}
