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
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/LorekeepAI/Lorekeep/pkg/ux"
	"github.com/LorekeepAI/Lorekeep/services/orchestrator/datatypes"
)

// maxChatHistory caps the turns carried on each request; older turns are
// dropped oldest-first.
const maxChatHistory = 20

// runChatCommand runs the interactive question loop. History is kept
// client-side so follow-up questions resolve against the game under
// discussion.
func runChatCommand(cmd *cobra.Command, args []string) {
	client := newAskClient()
	renderer := ux.NewAutoRenderer()
	reader := bufio.NewReader(os.Stdin)

	ux.Title("Lorekeep")
	ux.Muted("Ask about any game. Type \"exit\" or \"quit\" to leave.")
	if withSpoilers {
		ux.Warning("Spoiler disclosure is ON for this session.")
	}

	var history []datatypes.HistoryTurn

	for {
		fmt.Print(ux.Styles.Subtitle.Render("you> "))
		line, err := reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				fmt.Println()
				return
			}
			ux.Error(fmt.Sprintf("Failed to read input: %v", err))
			return
		}
		question := strings.TrimSpace(line)
		if question == "" {
			continue
		}
		if isExitCommand(question) {
			ux.Muted("Until next time.")
			return
		}

		resp, err := sendChatTurn(client, question, history)
		if err != nil {
			ux.Error(err.Error())
			continue
		}

		if resp.Rejected != nil {
			fmt.Println(renderer.Rejection(resp.Rejected))
		} else {
			fmt.Println(renderer.Answer(resp.Answer, resp.Notice))
		}
		fmt.Println()

		history = appendTurns(history, question, resp.Rendered)
	}
}

func sendChatTurn(client *askClient, question string, history []datatypes.HistoryTurn) (*datatypes.AskResponse, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	req := datatypes.AskRequest{
		Query:   question,
		History: history,
	}
	if withSpoilers {
		v := true
		req.SpoilerPreference = &v
	}
	return client.Ask(ctx, req)
}

// appendTurns records the exchange and trims the window.
func appendTurns(history []datatypes.HistoryTurn, question, rendered string) []datatypes.HistoryTurn {
	history = append(history,
		datatypes.HistoryTurn{Role: "user", Content: question},
		datatypes.HistoryTurn{Role: "assistant", Content: rendered},
	)
	if len(history) > maxChatHistory {
		history = history[len(history)-maxChatHistory:]
	}
	return history
}

// isExitCommand reports whether the input ends the session.
func isExitCommand(input string) bool {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "exit", "quit", ":q":
		return true
	}
	return false
}
