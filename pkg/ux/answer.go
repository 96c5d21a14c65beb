// Copyright (C) 2026 Lorekeep AI (oss@lorekeep.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ux

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/LorekeepAI/Lorekeep/services/answer"
)

// Renderer lays out a validated answer as text. With color enabled it
// uses the lipgloss styles; without, it emits plain text suitable for
// API payloads and piped output.
type Renderer struct {
	colored bool
}

// NewRenderer returns a renderer with explicit color control.
func NewRenderer(colored bool) *Renderer {
	return &Renderer{colored: colored}
}

// NewAutoRenderer enables color only when stdout is a real terminal.
func NewAutoRenderer() *Renderer {
	return &Renderer{
		colored: isatty.IsTerminal(os.Stdout.Fd()) && ShouldShowColors(),
	}
}

// Answer renders a validated structured answer field by field. Spoiler
// content always appears last, behind its warning line.
func (r *Renderer) Answer(a *answer.StructuredAnswer, notice string) string {
	if a == nil {
		return ""
	}
	var sections []string

	if notice != "" {
		sections = append(sections, r.warn(notice))
	}
	if a.Summary != "" {
		sections = append(sections, a.Summary)
	}
	if a.NoSpoilers != "" && a.NoSpoilers != a.Summary {
		sections = append(sections, a.NoSpoilers)
	}
	if !a.GameLength.IsZero() {
		sections = append(sections, r.gameLength(a.GameLength))
	}
	if a.Lore != "" {
		sections = append(sections, r.section("Lore", a.Lore))
	}
	if a.GameTips != "" {
		sections = append(sections, r.section("Tips", a.GameTips))
	}
	if len(a.Metadata) > 0 {
		sections = append(sections, r.metadata(a.Metadata))
	}
	if a.Spoilers != "" {
		sections = append(sections, r.warn(a.Warning)+"\n"+a.Spoilers)
	}

	return strings.Join(sections, "\n\n")
}

// Rejection renders the fixed no-information outcome.
func (r *Renderer) Rejection(rej *answer.RejectedResponse) string {
	msg := "Sorry, I don't have grounded information to answer that."
	if rej != nil && rej.Reason != "" {
		msg = fmt.Sprintf("Sorry, I can't answer that: %s.", rej.Reason)
	}
	if r.colored {
		return Styles.Muted.Render(msg)
	}
	return msg
}

func (r *Renderer) warn(text string) string {
	if text == "" {
		return ""
	}
	line := string(IconWarning) + " " + text
	if r.colored {
		return Styles.Warning.Render(line)
	}
	return line
}

func (r *Renderer) section(title, body string) string {
	if r.colored {
		return Styles.Subtitle.Render(title+":") + "\n" + body
	}
	return title + ":\n" + body
}

func (r *Renderer) gameLength(g *answer.GameLength) string {
	var parts []string
	if g.MainStory > 0 {
		parts = append(parts, "Main story: "+formatHours(g.MainStory))
	}
	if g.MainExtras > 0 {
		parts = append(parts, "Main + extras: "+formatHours(g.MainExtras))
	}
	if g.Completionist > 0 {
		parts = append(parts, "Completionist: "+formatHours(g.Completionist))
	}
	return r.section("How long to beat", strings.Join(parts, "\n"))
}

func (r *Renderer) metadata(meta map[string]string) string {
	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var lines []string
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("%s: %s", strings.ReplaceAll(k, "_", " "), meta[k]))
	}
	return r.section("Details", strings.Join(lines, "\n"))
}

// formatHours prints a duration as whole hours ("21h") or half hours
// ("21.5h") the way playtime sites report them.
func formatHours(d time.Duration) string {
	hours := d.Hours()
	if hours == float64(int(hours)) {
		return fmt.Sprintf("%dh", int(hours))
	}
	return fmt.Sprintf("%.1fh", hours)
}
