// Copyright (C) 2026 Lorekeep AI (oss@lorekeep.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/LorekeepAI/Lorekeep/pkg/ux"
	"github.com/LorekeepAI/Lorekeep/services/answer"
	"github.com/LorekeepAI/Lorekeep/services/orchestrator/datatypes"
	"github.com/LorekeepAI/Lorekeep/services/orchestrator/services"
)

var askTracer = otel.Tracer("lorekeep.orchestrator.handlers")

// HandleAsk answers player questions via the enforcement pipeline.
//
// A rejection ("no grounded information") is a normal 200 outcome: the
// pipeline did its job, there was simply nothing safe to say. Only a
// schema violation or an internal failure maps to 5xx.
func HandleAsk(pipeline *services.Pipeline) gin.HandlerFunc {
	renderer := ux.NewRenderer(false)
	return func(c *gin.Context) {
		ctx, span := askTracer.Start(c.Request.Context(), "HandleAsk")
		defer span.End()

		var req datatypes.AskRequest
		if err := c.BindJSON(&req); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			slog.Error("Failed to parse the ask request", "error", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		req.EnsureDefaults()
		if err := req.Validate(); err != nil {
			slog.Warn("Rejected invalid ask request", "error", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		span.SetAttributes(attribute.String("ask.request_id", req.RequestID))

		result, err := pipeline.Ask(ctx, &req)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			if errors.Is(err, answer.ErrSchemaViolation) {
				slog.Error("Schema violation in pipeline output", "request_id", req.RequestID, "error", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "internal schema violation"})
				return
			}
			slog.Error("Pipeline failed", "request_id", req.RequestID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		resp := datatypes.AskResponse{
			RequestID: req.RequestID,
			Notice:    result.Notice,
		}
		if result.Rejected != nil {
			resp.Rejected = result.Rejected
			resp.Rendered = renderer.Rejection(result.Rejected)
		} else {
			resp.Answer = result.Answer
			resp.Rendered = renderer.Answer(result.Answer, result.Notice)
		}
		c.JSON(http.StatusOK, resp)
	}
}
