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
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/LorekeepAI/Lorekeep/services/answer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockHTTPClient returns canned responses keyed by a URL substring.
type mockHTTPClient struct {
	responses map[string]mockResponse
	requests  []*http.Request
}

type mockResponse struct {
	status int
	body   string
	err    error
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	m.requests = append(m.requests, req)
	for substr, r := range m.responses {
		if strings.Contains(req.URL.RawQuery, substr) || strings.Contains(req.URL.Path, substr) {
			if r.err != nil {
				return nil, r.err
			}
			return &http.Response{
				StatusCode: r.status,
				Body:       io.NopCloser(bytes.NewBufferString(r.body)),
			}, nil
		}
	}
	return &http.Response{StatusCode: http.StatusNotFound, Body: io.NopCloser(bytes.NewBufferString("{}"))}, nil
}

const wikiExtract = "Hades is a roguelike game.[1]\n" +
	"== Gameplay ==\n" +
	"Runs are short.  Boons stack.[2]\n" +
	"== Plot ==\n" +
	"Zagreus tries to escape.\n" +
	"He fails many times.\n" +
	"== Reception ==\n" +
	"Critics liked it."

func TestExtractSection(t *testing.T) {
	tests := []struct {
		name    string
		section string
		want    string
	}{
		{"plot section", "plot", "Zagreus tries to escape.\nHe fails many times."},
		{"gameplay section", "gameplay", "Runs are short.  Boons stack.[2]"},
		{"missing section", "development", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractSection(wikiExtract, tt.section))
		})
	}

	t.Run("synonym headings", func(t *testing.T) {
		raw := "Intro.\n== Story ==\nThe story text.\n== Reception ==\nMore."
		assert.Equal(t, "The story text.", ExtractSection(raw, "plot"))
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Equal(t, "", ExtractSection("", "plot"))
	})
}

func TestCleanWikiText(t *testing.T) {
	in := "Zagreus  tries[12] to escape.\nHe fails.[3]"
	assert.Equal(t, "Zagreus tries to escape. He fails.", CleanWikiText(in))
}

func TestWikiAdapter_Fetch(t *testing.T) {
	client := &mockHTTPClient{responses: map[string]mockResponse{
		"list=search": {
			status: http.StatusOK,
			body:   `{"query":{"search":[{"title":"Hades (video game)"}]}}`,
		},
		"prop=extracts": {
			status: http.StatusOK,
			body: `{"query":{"pages":{"123":{"extract":"Intro.\n== Plot ==\nZagreus escapes.[1]\n== Gameplay ==\nFast runs."}}}}`,
		},
	}}
	adapter := NewWikiAdapter(client)

	result := adapter.Fetch(context.Background(), "Hades")

	require.Equal(t, answer.SourceFound, result.Status)
	assert.Equal(t, "wiki", result.SourceID)
	assert.Equal(t, "Zagreus escapes.", result.Payload[KeyPlot])
	assert.Equal(t, "Fast runs.", result.Payload[KeyGameplay])
}

func TestWikiAdapter_Fetch_NoSearchHit(t *testing.T) {
	client := &mockHTTPClient{responses: map[string]mockResponse{
		"list=search": {status: http.StatusOK, body: `{"query":{"search":[]}}`},
	}}
	adapter := NewWikiAdapter(client)

	result := adapter.Fetch(context.Background(), "no such game")
	assert.Equal(t, answer.SourceNotFound, result.Status)
}

func TestWikiAdapter_Fetch_NoUsableSections(t *testing.T) {
	client := &mockHTTPClient{responses: map[string]mockResponse{
		"list=search": {
			status: http.StatusOK,
			body:   `{"query":{"search":[{"title":"Hades"}]}}`,
		},
		"prop=extracts": {
			status: http.StatusOK,
			body:   `{"query":{"pages":{"123":{"extract":"Intro only, no headings."}}}}`,
		},
	}}
	adapter := NewWikiAdapter(client)

	result := adapter.Fetch(context.Background(), "Hades")
	assert.Equal(t, answer.SourceNotFound, result.Status)
}

func TestWikiAdapter_Fetch_UpstreamError(t *testing.T) {
	client := &mockHTTPClient{responses: map[string]mockResponse{
		"list=search": {status: http.StatusInternalServerError, body: `{}`},
	}}
	adapter := NewWikiAdapter(client)

	result := adapter.Fetch(context.Background(), "Hades")
	assert.Equal(t, answer.SourceErrored, result.Status)
	assert.NotEmpty(t, result.Reason)
}
