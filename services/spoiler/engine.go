// Copyright (C) 2026 Lorekeep AI (oss@lorekeep.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package spoiler implements the spoiler classification and redaction stage
// of the response pipeline.
//
// Classification combines two heuristics:
//
//  1. Pattern matching against the embedded policy (see enforcement/):
//     sentences mentioning endings, character deaths, twists or reveals are
//     spoiler-bearing. A low-confidence match is an ambiguous
//     classification; per the fail-safe rule it still counts as
//     spoiler-bearing.
//  2. Narrative position: in plot-derived text of at least four sentences,
//     the final third is spoiler-bearing by default, because wiki plot
//     sections narrate chronologically and endings live at the bottom.
//
// Both heuristics are pure functions of their input, so given the same
// draft and policy the redactor produces byte-identical output.
package spoiler

import (
	"fmt"

	"github.com/LorekeepAI/Lorekeep/services/spoiler/enforcement"
	"gopkg.in/yaml.v3"
)

// Engine holds the compiled classification state loaded from the embedded
// policy. Initialize once at startup; it is read-only afterwards and safe
// for concurrent use.
type Engine struct {
	Categories []Category
}

// NewEngine loads the policy embedded in the binary, compiles all regex
// patterns and sorts categories by priority.
//
// Returns an error if the embedded YAML is malformed or contains an
// invalid regex.
func NewEngine() (*Engine, error) {
	return NewEngineFromBytes(enforcement.SpoilerPatterns)
}

// NewEngineFromBytes builds an engine from raw YAML. Exposed so tests can
// exercise the engine against small fixture policies.
func NewEngineFromBytes(raw []byte) (*Engine, error) {
	var file SpoilerPatternsFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal the embedded spoiler policy: %w", err)
	}
	if err := file.CompileRegexes(); err != nil {
		return nil, fmt.Errorf("failed to compile a regex: %w", err)
	}
	file.SortByPriority()
	return &Engine{Categories: file.Categories}, nil
}

// ClassifySentence checks a single sentence against every pattern in
// priority order and returns the first finding, or nil when the sentence
// is clean.
func (e *Engine) ClassifySentence(sentence string) *Finding {
	for _, cat := range e.Categories {
		for _, pattern := range cat.Patterns {
			match := pattern.compiledPattern.FindString(sentence)
			if match == "" {
				continue
			}
			return &Finding{
				MatchedContent:     match,
				CategoryName:       cat.Name,
				PatternId:          pattern.Id,
				PatternDescription: pattern.Description,
				Confidence:         pattern.Confidence,
			}
		}
	}
	return nil
}

// ScanText performs a detailed audit of a text: it splits the text into
// sentences and records a finding for every spoiler-bearing one. Intended
// for diagnostics and tests; the redactor uses ClassifySentence directly.
func (e *Engine) ScanText(text string) []Finding {
	var findings []Finding
	for i, sentence := range SplitSentences(text) {
		if f := e.ClassifySentence(sentence); f != nil {
			f.SentenceIndex = i
			findings = append(findings, *f)
		}
	}
	return findings
}
