// Copyright (C) 2026 Lorekeep AI (oss@lorekeep.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package services provides business logic services for the orchestrator.
//
// This package contains service structs that encapsulate business logic,
// separating it from HTTP handlers. Services are responsible for:
//   - Orchestrating the ask pipeline (route, fetch, narrate, compose,
//     redact, validate)
//   - Applying spoiler policy to each request
//   - Recording pipeline metrics
//
// Services are designed to be:
//   - Testable: Dependencies are injected via constructors
//   - Traceable: All methods accept context for distributed tracing
package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/LorekeepAI/Lorekeep/services/answer"
	"github.com/LorekeepAI/Lorekeep/services/composer"
	"github.com/LorekeepAI/Lorekeep/services/hygiene"
	"github.com/LorekeepAI/Lorekeep/services/llm"
	"github.com/LorekeepAI/Lorekeep/services/orchestrator/datatypes"
	"github.com/LorekeepAI/Lorekeep/services/orchestrator/observability"
	"github.com/LorekeepAI/Lorekeep/services/router"
	"github.com/LorekeepAI/Lorekeep/services/spoiler"
)

var pipelineTracer = otel.Tracer("lorekeep.orchestrator.pipeline")

// PipelineResult is the terminal outcome of one ask request. Exactly one
// of Answer or Rejected is set.
type PipelineResult struct {
	Answer   *answer.StructuredAnswer
	Rejected *answer.RejectedResponse

	// Notice is the mild reminder attached when spoilers were disclosed
	// at the player's request.
	Notice string

	// Plan is the routing decision, kept for logging and rendering.
	Plan router.Plan
}

// Pipeline wires the enforcement stages together. Construct once at
// startup via NewPipeline and share across requests; all stages are
// stateless between calls.
type Pipeline struct {
	router   *router.Router
	narrator *llm.Narrator
	redactor *spoiler.Redactor
	metrics  *observability.PipelineMetrics

	// defaultLevel is the server-wide spoiler policy applied when the
	// request carries no override.
	defaultLevel answer.PolicyLevel
}

// NewPipeline builds the pipeline. metrics may be nil when metrics are
// disabled (tests, CLI one-shots).
func NewPipeline(rt *router.Router, narrator *llm.Narrator, redactor *spoiler.Redactor,
	metrics *observability.PipelineMetrics, defaultLevel answer.PolicyLevel) *Pipeline {

	if defaultLevel == "" {
		defaultLevel = answer.PolicyMedium
	}
	return &Pipeline{
		router:       rt,
		narrator:     narrator,
		redactor:     redactor,
		metrics:      metrics,
		defaultLevel: defaultLevel,
	}
}

// Ask runs one question through the full enforcement pipeline.
//
// Source failures and model failures degrade gracefully: the pipeline
// answers from whatever survived. The only error returned is a schema
// violation, which callers must treat as fatal for the request.
func (p *Pipeline) Ask(ctx context.Context, req *datatypes.AskRequest) (PipelineResult, error) {
	ctx, span := pipelineTracer.Start(ctx, "Pipeline.Ask")
	defer span.End()
	started := time.Now()

	policy := p.derivePolicy(req)
	span.SetAttributes(
		attribute.String("ask.policy_level", string(policy.Level)),
		attribute.Bool("ask.user_requested_spoilers", policy.UserRequestedSpoilers),
	)

	plan := p.router.Route(req.Query, historyTurns(req.History))
	span.SetAttributes(
		attribute.String("ask.title", plan.Title),
		attribute.Int("ask.selections", len(plan.Selections)),
	)
	slog.Info("Routed query",
		"request_id", req.RequestID,
		"title", plan.Title,
		"categories", plan.Categories,
		"sources", plan.SourceIDs(),
	)

	results := p.invokeSources(ctx, plan)

	narrative := p.narrator.Narrate(ctx, req.Query, plan.Title, results)
	draft := composer.Compose(results, narrative)

	redacted, report := p.redactor.ClassifyAndRedact(draft, policy)
	if p.metrics != nil {
		p.metrics.RecordRedactions(report.RedactedSentences)
	}

	validated, err := hygiene.Validate(redacted, plan.SourceIDs(), plan.Categories)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if errors.Is(err, answer.ErrSchemaViolation) {
			p.record(observability.OutcomeSchemaViolation, started)
		} else {
			p.record(observability.OutcomeError, started)
		}
		return PipelineResult{}, err
	}
	if p.metrics != nil {
		p.metrics.RecordDroppedFields(validated.DroppedFields)
	}

	if validated.Rejected != nil {
		slog.Info("No grounded information survived validation",
			"request_id", req.RequestID,
			"dropped", validated.DroppedFields,
		)
		p.record(observability.OutcomeRejected, started)
		return PipelineResult{Rejected: validated.Rejected, Plan: plan}, nil
	}

	p.record(observability.OutcomeAnswered, started)
	return PipelineResult{
		Answer: validated.Answer,
		Notice: report.Notice,
		Plan:   plan,
	}, nil
}

// derivePolicy combines the server default, the query's own spoiler
// intent, and the request-level override. An explicit override always
// wins; false also caps the level so a permissive server still redacts.
func (p *Pipeline) derivePolicy(req *datatypes.AskRequest) answer.SpoilerPolicy {
	policy := answer.SpoilerPolicy{
		Level:                 p.defaultLevel,
		UserRequestedSpoilers: spoiler.DetectSpoilerIntent(req.Query),
	}
	if req.SpoilerPreference != nil {
		policy.UserRequestedSpoilers = *req.SpoilerPreference
		if !*req.SpoilerPreference && policy.Level == answer.PolicyFull {
			policy.Level = answer.PolicyMedium
		}
	}
	return policy
}

// invokeSources fans out the plan and records per-source metrics.
func (p *Pipeline) invokeSources(ctx context.Context, plan router.Plan) []answer.SourceResult {
	fetchStart := time.Now()
	results := p.router.Invoke(ctx, plan)
	elapsed := time.Since(fetchStart).Seconds()
	for _, res := range results {
		if p.metrics != nil {
			p.metrics.RecordSourceFetch(res.SourceID, string(res.Status), elapsed)
		}
		if res.Status == answer.SourceErrored {
			slog.Warn("Source fetch failed", "source", res.SourceID, "reason", res.Reason)
		}
	}
	return results
}

func (p *Pipeline) record(outcome observability.Outcome, started time.Time) {
	if p.metrics != nil {
		p.metrics.RecordRequest(outcome, time.Since(started).Seconds())
	}
}

func historyTurns(history []datatypes.HistoryTurn) []router.Turn {
	turns := make([]router.Turn, len(history))
	for i, h := range history {
		turns[i] = router.Turn{Role: h.Role, Content: h.Content}
	}
	return turns
}
