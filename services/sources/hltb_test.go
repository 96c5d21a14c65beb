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
	"errors"
	"net/http"
	"testing"

	"github.com/LorekeepAI/Lorekeep/services/answer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecondsToHours(t *testing.T) {
	tests := []struct {
		seconds int64
		want    string
	}{
		{75600, "21h"},   // exactly 21h
		{77000, "21h"},   // rounds down
		{77500, "22h"},   // rounds up
		{1800, "1h"},     // half an hour rounds up
		{345600, "96h"},  // completionist scale
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, secondsToHours(tt.seconds))
		})
	}
}

func TestBestMatch(t *testing.T) {
	games := []hltbGame{
		{GameName: "Hades II", CompMain: 100},
		{GameName: "Hades", CompMain: 200},
	}

	t.Run("exact title beats rank", func(t *testing.T) {
		assert.Equal(t, "Hades", bestMatch(games, "hades").GameName)
	})

	t.Run("first hit when nothing matches exactly", func(t *testing.T) {
		assert.Equal(t, "Hades II", bestMatch(games, "hade").GameName)
	})
}

func TestHLTBAdapter_Fetch(t *testing.T) {
	client := &mockHTTPClient{responses: map[string]mockResponse{
		"/api/search": {
			status: http.StatusOK,
			body:   `{"data":[{"game_name":"Hades","comp_main":75600,"comp_plus":144000,"comp_100":345600}]}`,
		},
	}}
	adapter := NewHLTBAdapter(client)

	result := adapter.Fetch(context.Background(), "Hades")

	require.Equal(t, answer.SourceFound, result.Status)
	assert.Equal(t, "hltb", result.SourceID)
	assert.Equal(t, "21h", result.Payload[KeyMainStory])
	assert.Equal(t, "40h", result.Payload[KeyMainExtras])
	assert.Equal(t, "96h", result.Payload[KeyCompletionist])

	// The search must carry the headers HLTB expects.
	require.Len(t, client.requests, 1)
	assert.Equal(t, "application/json", client.requests[0].Header.Get("Content-Type"))
}

func TestHLTBAdapter_Fetch_ZeroTimesAreNotFound(t *testing.T) {
	client := &mockHTTPClient{responses: map[string]mockResponse{
		"/api/search": {
			status: http.StatusOK,
			body:   `{"data":[{"game_name":"Unreleased Game","comp_main":0,"comp_plus":0,"comp_100":0}]}`,
		},
	}}
	adapter := NewHLTBAdapter(client)

	result := adapter.Fetch(context.Background(), "Unreleased Game")
	assert.Equal(t, answer.SourceNotFound, result.Status)
}

func TestHLTBAdapter_Fetch_EmptyData(t *testing.T) {
	client := &mockHTTPClient{responses: map[string]mockResponse{
		"/api/search": {status: http.StatusOK, body: `{"data":[]}`},
	}}
	adapter := NewHLTBAdapter(client)

	result := adapter.Fetch(context.Background(), "no such game")
	assert.Equal(t, answer.SourceNotFound, result.Status)
}

func TestHLTBAdapter_Fetch_TransportError(t *testing.T) {
	client := &mockHTTPClient{responses: map[string]mockResponse{
		"/api/search": {err: errors.New("connection refused")},
	}}
	adapter := NewHLTBAdapter(client)

	result := adapter.Fetch(context.Background(), "Hades")
	assert.Equal(t, answer.SourceErrored, result.Status)
	assert.Contains(t, result.Reason, "connection refused")
}

func TestHLTBAdapter_Fetch_BadStatus(t *testing.T) {
	client := &mockHTTPClient{responses: map[string]mockResponse{
		"/api/search": {status: http.StatusTooManyRequests, body: ``},
	}}
	adapter := NewHLTBAdapter(client)

	result := adapter.Fetch(context.Background(), "Hades")
	assert.Equal(t, answer.SourceErrored, result.Status)
	assert.Contains(t, result.Reason, "429")
}
