// Copyright (C) 2026 Lorekeep AI (oss@lorekeep.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package llm wraps the model backends used to narrate answers.
package llm

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// GenerationParams are the sampling knobs shared by every backend. Nil
// pointers mean "backend default".
type GenerationParams struct {
	Temperature *float32 `json:"temperature"`
	TopK        *int     `json:"top_k"`
	TopP        *float32 `json:"top_p"`
	MaxTokens   *int     `json:"max_tokens"`
	Stop        []string `json:"stop"`
}

// LLMClient defines the standard interface for any model backend.
type LLMClient interface {
	Generate(ctx context.Context, prompt string, params GenerationParams) (string, error)
}

// NewClientFromEnv builds a backend from the LLM_PROVIDER environment
// variable (openai or ollama, defaulting to openai).
func NewClientFromEnv() (LLMClient, error) {
	provider := strings.ToLower(os.Getenv("LLM_PROVIDER"))
	switch provider {
	case "", "openai":
		return NewOpenAIClient()
	case "ollama":
		return NewOllamaClient()
	default:
		return nil, fmt.Errorf("unknown LLM_PROVIDER %q", provider)
	}
}
