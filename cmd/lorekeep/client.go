// Copyright (C) 2026 Lorekeep AI (oss@lorekeep.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/LorekeepAI/Lorekeep/services/orchestrator/datatypes"
)

// askClient is the thin HTTP client the CLI uses to talk to the
// orchestrator.
type askClient struct {
	baseURL    string
	apiToken   string
	httpClient *http.Client
}

func newAskClient() *askClient {
	base := serverURL
	if base == "" {
		base = os.Getenv("LOREKEEP_SERVER_URL")
	}
	if base == "" {
		base = "http://localhost:12410"
	}
	return &askClient{
		baseURL:    strings.TrimSuffix(base, "/"),
		apiToken:   os.Getenv("LOREKEEP_API_TOKEN"),
		httpClient: &http.Client{Timeout: 2 * time.Minute},
	}
}

// Ask posts one question and decodes the enforced answer.
func (c *askClient) Ask(ctx context.Context, req datatypes.AskRequest) (*datatypes.AskResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal the ask request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/ask",
		bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build the ask request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiToken != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiToken)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("orchestrator request failed: %w", err)
	}
	defer resp.Body.Close()
	slog.Info("ask request completed",
		"request_id", req.RequestID,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read the orchestrator response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("orchestrator returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var askResp datatypes.AskResponse
	if err := json.Unmarshal(respBody, &askResp); err != nil {
		return nil, fmt.Errorf("failed to parse the orchestrator response: %w", err)
	}
	return &askResp, nil
}

// Health pings the orchestrator liveness endpoint.
func (c *askClient) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("orchestrator returned status %d", resp.StatusCode)
	}
	return nil
}
