// Copyright (C) 2026 Lorekeep AI (oss@lorekeep.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command lorekeep is the terminal client for the Lorekeep game assistant.
package main

import (
	"log"
	"log/slog"

	"github.com/LorekeepAI/Lorekeep/pkg/logging"
	"github.com/LorekeepAI/Lorekeep/pkg/ux"
)

func main() {
	// Diagnostics go to a file, keeping stdout/stderr clean for answers.
	logger := logging.New(logging.Config{
		Level:   logging.LevelInfo,
		LogDir:  "~/.lorekeep/logs",
		Service: "cli",
		Quiet:   true,
	})
	defer logger.Close()
	slog.SetDefault(logger.Slog())

	ux.InitPersonality()
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error executing command: %v", err)
	}
}
