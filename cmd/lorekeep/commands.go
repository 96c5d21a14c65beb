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
	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:   "lorekeep",
		Short: "A CLI for the Lorekeep game knowledge assistant",
		Long: `Lorekeep answers questions about video games from grounded sources,
with spoiler content held behind a warning unless you ask for it.`,
	}

	askCmd = &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask a one-shot question about a game",
		Long:  `Sends a question to the orchestrator and prints the enforced answer. Spoiler content, if any, is shown last behind a warning.`,
		Args:  cobra.MinimumNArgs(1),
		Run:   runAskCommand,
	}
	withSpoilers bool
	noSpoilers   bool
	jsonOutput   bool
	compactJSON  bool

	chatCmd = &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive question session",
		Long:  `Starts an interactive loop. Conversation history is kept client-side so follow-up questions ("how long does it take to beat?") resolve to the game under discussion. Type "exit" or "quit" to leave.`,
		Run:   runChatCommand,
	}

	healthCmd = &cobra.Command{
		Use:   "health",
		Short: "Check whether the orchestrator is reachable",
		Run:   runHealthCommand,
	}

	// serverURL overrides the LOREKEEP_SERVER_URL environment variable.
	serverURL string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "",
		"Orchestrator base URL (default: LOREKEEP_SERVER_URL or http://localhost:12410)")

	rootCmd.AddCommand(askCmd)
	askCmd.Flags().BoolVar(&withSpoilers, "spoilers", false, "Disclose spoiler content inline")
	askCmd.Flags().BoolVar(&noSpoilers, "no-spoilers", false, "Force redaction even if the question implies spoilers")
	askCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the structured answer as JSON")
	askCmd.Flags().BoolVar(&compactJSON, "compact", false, "Compact JSON output (no indentation)")

	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().BoolVar(&withSpoilers, "spoilers", false, "Disclose spoiler content inline for the whole session")

	rootCmd.AddCommand(healthCmd)
}
