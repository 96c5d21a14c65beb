// Copyright (C) 2026 Lorekeep AI (oss@lorekeep.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package spoiler

import (
	"regexp"
	"strings"
)

var (
	sentenceBoundary = regexp.MustCompile(`(?s)([.!?])\s+`)
	citationMarker   = regexp.MustCompile(`\[\d+\]`)
	repeatWhitespace = regexp.MustCompile(`\s{2,}`)
	shortParenNote   = regexp.MustCompile(`\([^)]{0,30}\)`)
)

// CleanText normalizes wiki-derived prose before classification: citation
// markers like [12], short parenthetical asides and repeated whitespace are
// stripped. Longer parentheticals are kept since they often carry real
// content.
func CleanText(text string) string {
	text = citationMarker.ReplaceAllString(text, "")
	text = shortParenNote.ReplaceAllString(text, "")
	text = repeatWhitespace.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// SplitSentences splits prose into sentences on terminal punctuation
// followed by whitespace. The split is a fixed regex with no language
// model involved, which keeps redaction deterministic.
func SplitSentences(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	// Keep the punctuation with the preceding sentence.
	marked := sentenceBoundary.ReplaceAllString(text, "$1\x00")
	parts := strings.Split(marked, "\x00")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// JoinSentences reassembles split sentences into prose.
func JoinSentences(sentences []string) string {
	return strings.Join(sentences, " ")
}

// SpoilerIntentKeywords are phrases that signal the user is explicitly
// asking for spoilers or endings.
var SpoilerIntentKeywords = []string{
	"spoiler", "spoil", "ending", "end of", "plot twist", "who dies",
	"death of", "reveal", "true ending", "bad ending", "good ending",
	"secret ending", "what happens at",
}

// DetectSpoilerIntent reports whether the user query clearly asks for
// spoiler content. It feeds SpoilerPolicy.UserRequestedSpoilers when the
// caller supplied no explicit preference.
func DetectSpoilerIntent(query string) bool {
	q := strings.ToLower(query)
	for _, kw := range SpoilerIntentKeywords {
		if strings.Contains(q, kw) {
			return true
		}
	}
	return false
}
