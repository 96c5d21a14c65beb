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
	"strings"

	"github.com/LorekeepAI/Lorekeep/services/answer"
)

// WarningText is the fixed caution message attached whenever spoiler
// content is relocated into the spoilers field.
const WarningText = "Contains major spoilers"

// NoticeText is the milder message used when the user explicitly requested
// spoilers and content stays inline. Policy level "full" suppresses it.
const NoticeText = "Spoilers ahead at your request."

// Report describes what the redactor did to a draft. The notice (if any)
// is renderer-level text: it never enters the structured answer, because
// the warning field is reserved for the relocated-spoilers invariant.
type Report struct {
	Notice            string
	RedactedSentences int
	Findings          []Finding
}

// Redactor rewrites drafts into spoiler-safe form according to policy.
type Redactor struct {
	engine *Engine
}

func NewRedactor(engine *Engine) *Redactor {
	return &Redactor{engine: engine}
}

// fieldText is one free-text schema field scheduled for classification.
type fieldText struct {
	name string
	text string
	// plotDerived enables the narrative-position heuristic: the final
	// third of a long plot retelling is spoiler-bearing by default.
	plotDerived bool
	assign      func(*answer.StructuredAnswer, string)
}

// ClassifyAndRedact partitions the sentences of every free-text field into
// spoiler-bearing and clean, then rewrites the draft per policy.
//
// Under the default medium policy spoiler sentences are removed from
// summary/lore/game tips and concatenated into the spoilers field behind
// WarningText. When the policy discloses (user override or level "full"),
// sentences stay in place and only a notice is reported.
//
// The input draft is not mutated; the returned draft is a rewritten clone.
// Output is a pure function of (draft, policy).
func (r *Redactor) ClassifyAndRedact(draft *answer.StructuredAnswer, policy answer.SpoilerPolicy) (*answer.StructuredAnswer, Report) {
	out := draft.Clone()
	report := Report{}

	fields := []fieldText{
		{
			name: answer.FieldSummary, text: out.Summary,
			assign: func(a *answer.StructuredAnswer, s string) { a.Summary = s },
		},
		{
			name: answer.FieldLore, text: out.Lore, plotDerived: true,
			assign: func(a *answer.StructuredAnswer, s string) { a.Lore = s },
		},
		{
			name: answer.FieldGameTips, text: out.GameTips,
			assign: func(a *answer.StructuredAnswer, s string) { a.GameTips = s },
		},
	}

	var relocated []string
	relocatedFrom := ""

	for _, field := range fields {
		if field.text == "" {
			continue
		}
		sentences := SplitSentences(field.text)
		flagged := r.classify(sentences, field.plotDerived, policy)

		var kept, removed []string
		for i, sentence := range sentences {
			if f := flagged[i]; f != nil {
				f.SentenceIndex = i
				report.Findings = append(report.Findings, *f)
				removed = append(removed, sentence)
			} else {
				kept = append(kept, sentence)
			}
		}
		if len(removed) == 0 {
			continue
		}

		if policy.Disclose() {
			// Content stays inline; only a notice is owed.
			continue
		}

		report.RedactedSentences += len(removed)
		field.assign(out, JoinSentences(kept))
		relocated = append(relocated, removed...)
		if relocatedFrom == "" {
			relocatedFrom = field.name
		}

		// A summary that lost sentences reads as incomplete: surface the
		// clean remainder as an explicit spoiler-free statement.
		if field.name == answer.FieldSummary && len(kept) > 0 && out.NoSpoilers == "" {
			out.NoSpoilers = JoinSentences(kept)
			out.SetProvenance(answer.FieldNoSpoilers, r.provenanceOf(out, answer.FieldSummary))
		}
	}

	if policy.Disclose() {
		if len(report.Findings) > 0 && policy.Level != answer.PolicyFull {
			report.Notice = NoticeText
		}
		return out, report
	}

	if len(relocated) > 0 {
		joined := strings.TrimSpace(JoinSentences(relocated))
		if out.Spoilers != "" {
			out.Spoilers = out.Spoilers + " " + joined
		} else {
			out.Spoilers = joined
		}
		out.SetProvenance(answer.FieldSpoilers, r.provenanceOf(out, relocatedFrom))
	}
	if out.Spoilers != "" {
		out.Warning = WarningText
		out.SetProvenance(answer.FieldWarning, answer.ProvenanceGenerated)
	}
	return out, report
}

// classify returns a parallel slice: non-nil entries flag spoiler-bearing
// sentences. Pattern matches of any confidence count (ambiguity fails safe
// toward non-disclosure); additionally the final third of a plot-derived
// text of at least four sentences is flagged unless the policy level is
// minimal.
func (r *Redactor) classify(sentences []string, plotDerived bool, policy answer.SpoilerPolicy) []*Finding {
	flagged := make([]*Finding, len(sentences))
	for i, s := range sentences {
		flagged[i] = r.engine.ClassifySentence(s)
	}
	if plotDerived && policy.Level != answer.PolicyMinimal && len(sentences) >= 4 {
		lateStart := (2 * len(sentences)) / 3
		for i := lateStart; i < len(sentences); i++ {
			if flagged[i] == nil {
				flagged[i] = &Finding{
					CategoryName:       "late_game",
					PatternId:          "NARRATIVE_POSITION",
					PatternDescription: "Final third of a plot retelling",
					Confidence:         Medium,
				}
			}
		}
	}
	return flagged
}

// provenanceOf reads the recorded provenance for a field, defaulting to
// "generated" when the draft has none.
func (r *Redactor) provenanceOf(a *answer.StructuredAnswer, field string) string {
	if a.Provenance != nil {
		if src, ok := a.Provenance[field]; ok {
			return src
		}
	}
	return answer.ProvenanceGenerated
}
