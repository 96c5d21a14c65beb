// Copyright (C) 2026 Lorekeep AI (oss@lorekeep.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command orchestrator starts the Lorekeep orchestrator HTTP server.
//
// This is the main entry point for the containerized service. It reads
// configuration from environment variables and starts the server.
//
// # Environment Variables
//
//   - ORCHESTRATOR_PORT: HTTP server port (default: 12410)
//   - LLM_BACKEND_TYPE: narration provider - openai, ollama, none (default: openai)
//   - SPOILER_POLICY: minimal, medium, full (default: medium)
//   - SOURCE_CACHE_PATH: BadgerDB directory for the source cache (optional)
//   - IGDB_CLIENT_ID / IGDB_ACCESS_TOKEN: IGDB credentials (optional)
//   - LOREKEEP_API_TOKEN: bearer token for the /v1 API (empty leaves it open)
//   - LOREKEEP_LOG_DIR: directory for JSON log files (empty disables file logging)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OpenTelemetry collector (default: lorekeep-otel-collector:4317)
//
// # Usage
//
//	# Build
//	go build -o orchestrator ./cmd/orchestrator
//
//	# Run
//	./orchestrator
package main

import (
	"log"
	"log/slog"
	"os"
	"strconv"

	"github.com/LorekeepAI/Lorekeep/pkg/logging"
	"github.com/LorekeepAI/Lorekeep/services/orchestrator"
)

func main() {
	// Setup structured logging: JSON on stderr, plus an optional file
	logger := logging.New(logging.Config{
		Level:   logging.LevelInfo,
		LogDir:  os.Getenv("LOREKEEP_LOG_DIR"),
		Service: "orchestrator",
		JSON:    true,
	})
	defer logger.Close()
	slog.SetDefault(logger.Slog())

	// Build configuration from environment variables
	cfg := orchestrator.Config{
		Port:            getEnvInt("ORCHESTRATOR_PORT", 12410),
		LLMBackend:      getEnvString("LLM_BACKEND_TYPE", "openai"),
		SpoilerPolicy:   getEnvString("SPOILER_POLICY", "medium"),
		OTelEndpoint:    getEnvString("OTEL_EXPORTER_OTLP_ENDPOINT", "lorekeep-otel-collector:4317"),
		CachePath:       os.Getenv("SOURCE_CACHE_PATH"),
		IGDBClientID:    os.Getenv("IGDB_CLIENT_ID"),
		IGDBAccessToken: os.Getenv("IGDB_ACCESS_TOKEN"),
		APIToken:        os.Getenv("LOREKEEP_API_TOKEN"),
	}

	slog.Info("Starting orchestrator",
		"port", cfg.Port,
		"llm_backend", cfg.LLMBackend,
		"spoiler_policy", cfg.SpoilerPolicy,
	)

	svc, err := orchestrator.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create orchestrator: %v", err)
	}

	// Run the server (blocks until shutdown)
	if err := svc.Run(); err != nil {
		log.Fatalf("Orchestrator error: %v", err)
	}
}

// getEnvString returns the environment variable value or a default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the environment variable as int or a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
