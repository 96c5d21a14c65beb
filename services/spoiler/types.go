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
	"fmt"
	"regexp"
	"sort"

	"gopkg.in/yaml.v3"
)

type ConfidenceLevel string

const (
	Low    ConfidenceLevel = "low"
	Medium ConfidenceLevel = "medium"
	High   ConfidenceLevel = "high"
)

// SpoilerPatternsFile is the top-level shape of the embedded YAML policy.
type SpoilerPatternsFile struct {
	Categories []Category `yaml:"categories"`
}

// Category groups patterns that mark the same kind of spoiler content
// (endings, character deaths, twists, ...). Higher priority categories are
// checked first so a sentence is attributed to its most severe category.
type Category struct {
	Name             string           `yaml:"name"`
	Description      string           `yaml:"description"`
	Priority         int              `yaml:"priority"`
	Patterns         []Pattern        `yaml:"patterns"`
	CompiledPatterns []*regexp.Regexp `yaml:"-"`
}

// Pattern is a single spoiler indicator.
type Pattern struct {
	Id              string          `yaml:"id"`
	Description     string          `yaml:"description"`
	Regex           string          `yaml:"regex"`
	Confidence      ConfidenceLevel `yaml:"confidence"`
	compiledPattern *regexp.Regexp  `yaml:"-"`
}

func (c *ConfidenceLevel) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	incoming := ConfidenceLevel(s)
	switch incoming {
	case High, Medium, Low:
		*c = incoming
		return nil
	default:
		return fmt.Errorf("invalid value for Confidence: %q", incoming)
	}
}

func (f *SpoilerPatternsFile) CompileRegexes() error {
	for i := range f.Categories {
		for j := range f.Categories[i].Patterns {
			pattern := &f.Categories[i].Patterns[j]
			re, err := regexp.Compile(pattern.Regex)
			if err != nil {
				return fmt.Errorf("failed to compile the regex %s: %w", pattern.Regex, err)
			}
			f.Categories[i].CompiledPatterns = append(f.Categories[i].CompiledPatterns, re)
			pattern.compiledPattern = re
		}
	}
	return nil
}

func (f *SpoilerPatternsFile) SortByPriority() {
	sort.Slice(f.Categories, func(i, j int) bool {
		return f.Categories[i].Priority > f.Categories[j].Priority
	})
}

// Finding records one spoiler match inside a scanned text.
type Finding struct {
	SentenceIndex      int             `json:"sentence_index"`
	MatchedContent     string          `json:"matched_content"`
	CategoryName       string          `json:"category_name"`
	PatternId          string          `json:"pattern_id"`
	PatternDescription string          `json:"pattern_description"`
	Confidence         ConfidenceLevel `json:"confidence"`
}
