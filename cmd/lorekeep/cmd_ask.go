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
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/LorekeepAI/Lorekeep/pkg/ux"
	"github.com/LorekeepAI/Lorekeep/services/orchestrator/datatypes"
)

// runAskCommand posts a one-shot question and prints the enforced
// answer, either rendered or as JSON.
func runAskCommand(cmd *cobra.Command, args []string) {
	question := strings.Join(args, " ")
	started := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	req := datatypes.AskRequest{Query: question}
	if pref := spoilerPreference(); pref != nil {
		req.SpoilerPreference = pref
	}

	client := newAskClient()
	resp, err := client.Ask(ctx, req)
	if err != nil {
		OutputError(jsonOutput, "ask failed", err)
		os.Exit(CLIExitError)
	}

	if jsonOutput {
		result := CommandResult{
			APIVersion: "1.0",
			Command:    "ask",
			Timestamp:  time.Now(),
			DurationMs: time.Since(started).Milliseconds(),
			Success:    resp.Rejected == nil,
			Data:       resp,
		}
		if err := OutputJSON(result, compactJSON); err != nil {
			OutputError(false, "failed to encode output", err)
			os.Exit(CLIExitError)
		}
		if resp.Rejected != nil {
			os.Exit(CLIExitRejected)
		}
		return
	}

	fmt.Println(resp.Rendered)
	if resp.Rejected != nil {
		os.Exit(CLIExitRejected)
	}
}

// runHealthCommand pings the orchestrator.
func runHealthCommand(cmd *cobra.Command, args []string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client := newAskClient()
	if err := client.Health(ctx); err != nil {
		ux.Error(fmt.Sprintf("Orchestrator unreachable at %s: %v", client.baseURL, err))
		os.Exit(CLIExitError)
	}
	ux.Success("Orchestrator is up at " + client.baseURL)
}

// spoilerPreference maps the mutually exclusive flags onto the request
// override. Neither flag set means "let the server decide".
func spoilerPreference() *bool {
	switch {
	case withSpoilers && noSpoilers:
		OutputError(false, "conflicting flags", fmt.Errorf("--spoilers and --no-spoilers are mutually exclusive"))
		os.Exit(CLIExitError)
		return nil
	case withSpoilers:
		v := true
		return &v
	case noSpoilers:
		v := false
		return &v
	default:
		return nil
	}
}
