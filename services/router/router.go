// Copyright (C) 2026 Lorekeep AI (oss@lorekeep.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package router decides which data sources are relevant to a user query
// and invokes their adapters concurrently.
//
// The registry is a closed set: adapters are registered per topic category
// at startup, resolved by explicit tie-break rules (deepest source wins a
// category), never by runtime reflection. The router performs no mutation
// of shared state; its only side effects are the adapter calls.
package router

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/LorekeepAI/Lorekeep/services/answer"
	"github.com/LorekeepAI/Lorekeep/services/sources"
	"golang.org/x/sync/errgroup"
)

// Role values for conversation turns.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one prior exchange in the conversation, supplied by the caller
// on each request (the core persists nothing).
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Selection pairs a chosen adapter with the sub-query to send it.
type Selection struct {
	Adapter  sources.Adapter
	SubQuery string
}

// Plan is the routing outcome: the resolved topic categories and the
// ordered adapter selections. The hygiene validator later checks the
// answer's populated fields against Categories.
type Plan struct {
	Categories []Category
	Title      string
	Selections []Selection
}

// SourceIDs lists the IDs of every adapter the plan will invoke, in
// selection order. The validator uses this to verify provenance points at
// sources that were actually called.
func (p Plan) SourceIDs() []string {
	ids := make([]string, 0, len(p.Selections))
	for _, s := range p.Selections {
		ids = append(ids, s.Adapter.ID())
	}
	return ids
}

// Router owns the category -> adapter registry and the per-call timeout.
type Router struct {
	registry    map[Category][]sources.Adapter
	callTimeout time.Duration
}

// New builds an empty router. callTimeout bounds each individual adapter
// call; zero means 10 seconds.
func New(callTimeout time.Duration) *Router {
	if callTimeout <= 0 {
		callTimeout = 10 * time.Second
	}
	return &Router{
		registry:    make(map[Category][]sources.Adapter),
		callTimeout: callTimeout,
	}
}

// Register appends candidate adapters for a category. Order matters only
// as the tie-break of last resort; depth decides first.
func (r *Router) Register(cat Category, adapters ...sources.Adapter) {
	r.registry[cat] = append(r.registry[cat], adapters...)
}

// Route determines the topic categories for a query and selects one
// winning adapter per category. Categories that span the same adapter are
// collapsed into a single selection so no source is queried twice.
func (r *Router) Route(query string, history []Turn) Plan {
	plan := Plan{
		Categories: Categorize(query),
		Title:      ExtractTitle(query, history),
	}

	chosen := map[string]bool{}
	for _, cat := range plan.Categories {
		adapter := r.winner(cat)
		if adapter == nil {
			slog.Debug("No adapter registered for category", "category", cat)
			continue
		}
		if chosen[adapter.ID()] {
			continue
		}
		chosen[adapter.ID()] = true
		plan.Selections = append(plan.Selections, Selection{
			Adapter:  adapter,
			SubQuery: plan.Title,
		})
	}
	return plan
}

// winner resolves the tie-break for a category: highest depth first,
// registration order as the stable fallback.
func (r *Router) winner(cat Category) sources.Adapter {
	candidates := r.registry[cat]
	if len(candidates) == 0 {
		return nil
	}
	ranked := make([]sources.Adapter, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Depth() > ranked[j].Depth()
	})
	return ranked[0]
}

// Invoke runs every selected adapter concurrently, each under its own
// timeout derived from ctx, and gathers the results in selection order.
//
// Partial results are acceptable: a timed-out or errored call yields the
// error variant and never blocks or fails the others. If ctx itself is
// cancelled (client disconnect), in-flight calls are abandoned.
func (r *Router) Invoke(ctx context.Context, plan Plan) []answer.SourceResult {
	results := make([]answer.SourceResult, len(plan.Selections))

	g, gctx := errgroup.WithContext(ctx)
	for i, sel := range plan.Selections {
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(gctx, r.callTimeout)
			defer cancel()

			start := time.Now()
			results[i] = sel.Adapter.Fetch(callCtx, sel.SubQuery)
			slog.Debug("Source adapter call finished",
				"source", sel.Adapter.ID(),
				"status", results[i].Status,
				"duration", time.Since(start))
			// Adapter failures are values, not errors; never cancel
			// the sibling calls.
			return nil
		})
	}
	// Always nil by construction.
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		slog.Info("Request cancelled during source fan-out", "error", err)
	}
	return results
}
