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
	"errors"
	"testing"

	"github.com/LorekeepAI/Lorekeep/services/answer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockLLMClient is a mock implementation of LLMClient for testing.
type MockLLMClient struct {
	response string
	err      error
	prompts  []string
}

func (m *MockLLMClient) Generate(ctx context.Context, prompt string, params GenerationParams) (string, error) {
	m.prompts = append(m.prompts, prompt)
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func foundResults() []answer.SourceResult {
	return []answer.SourceResult{
		answer.Found("wiki", map[string]string{"plot": "Zagreus escapes the Underworld."}),
	}
}

func TestNarrator_Narrate(t *testing.T) {
	client := &MockLLMClient{
		response: `{"summary":"Hades takes about 21 hours.","lore":"","game_tips":"Favor the dash."}`,
	}
	n := &Narrator{Client: client}

	narrative := n.Narrate(context.Background(), "How long is Hades?", "Hades", foundResults())

	assert.Equal(t, "Hades takes about 21 hours.", narrative.Summary)
	assert.Empty(t, narrative.Lore)
	assert.Equal(t, "Favor the dash.", narrative.GameTips)

	require.Len(t, client.prompts, 1)
	assert.Contains(t, client.prompts[0], "Game: Hades")
	assert.Contains(t, client.prompts[0], "Question: How long is Hades?")
	assert.Contains(t, client.prompts[0], "[wiki/plot]")
}

func TestReferenceBlock_Deterministic(t *testing.T) {
	results := []answer.SourceResult{
		answer.Found("wiki", map[string]string{
			"plot":      "Zagreus escapes the Underworld.",
			"gameplay":  "Roguelike runs.",
			"developer": "Supergiant Games",
		}),
		answer.Found("hltb", map[string]string{"main_story": "21h"}),
	}

	first := referenceBlock(results)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, referenceBlock(results))
	}

	// Keys appear sorted within each source, sources in result order.
	assert.Regexp(t, `(?s)\[wiki/developer\].*\[wiki/gameplay\].*\[wiki/plot\].*\[hltb/main_story\]`, first)
}

func TestNarrator_NilClientYieldsZeroNarrative(t *testing.T) {
	n := &Narrator{}
	narrative := n.Narrate(context.Background(), "q", "t", foundResults())
	assert.True(t, narrative.IsZero())
}

func TestNarrator_NoFoundSourcesSkipsModel(t *testing.T) {
	client := &MockLLMClient{response: `{"summary":"unused"}`}
	n := &Narrator{Client: client}

	narrative := n.Narrate(context.Background(), "q", "t", []answer.SourceResult{
		answer.NotFound("wiki"),
		answer.Errored("hltb", "timeout"),
	})

	assert.True(t, narrative.IsZero())
	assert.Empty(t, client.prompts)
}

func TestNarrator_GenerationFailureDegrades(t *testing.T) {
	client := &MockLLMClient{err: errors.New("model unavailable")}
	n := &Narrator{Client: client}

	narrative := n.Narrate(context.Background(), "q", "t", foundResults())
	assert.True(t, narrative.IsZero())
}

func TestParseNarrative(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want answer.Narrative
	}{
		{
			name: "bare json",
			raw:  `{"summary":"A game.","lore":"Old gods.","game_tips":"Dash."}`,
			want: answer.Narrative{Summary: "A game.", Lore: "Old gods.", GameTips: "Dash."},
		},
		{
			name: "code fenced",
			raw:  "```json\n{\"summary\":\"A game.\"}\n```",
			want: answer.Narrative{Summary: "A game."},
		},
		{
			name: "surrounding chatter",
			raw:  `Sure! Here is the answer: {"summary":"A game."} Hope that helps.`,
			want: answer.Narrative{Summary: "A game."},
		},
		{
			name: "whitespace trimmed",
			raw:  `{"summary":"  padded  "}`,
			want: answer.Narrative{Summary: "padded"},
		},
		{
			name: "no json at all",
			raw:  "I cannot answer that.",
			want: answer.Narrative{},
		},
		{
			name: "malformed json",
			raw:  `{"summary": unquoted}`,
			want: answer.Narrative{},
		},
		{
			name: "empty input",
			raw:  "",
			want: answer.Narrative{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseNarrative(tt.raw))
		})
	}
}
