// Copyright (C) 2026 Lorekeep AI (oss@lorekeep.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/LorekeepAI/Lorekeep/services/orchestrator/handlers"
	"github.com/LorekeepAI/Lorekeep/services/orchestrator/middleware"
	"github.com/LorekeepAI/Lorekeep/services/orchestrator/services"
)

// SetupRoutes registers all HTTP routes. Health and metrics stay open;
// the /v1 group is protected by the bearer token when one is configured.
func SetupRoutes(router *gin.Engine, pipeline *services.Pipeline, apiToken string, enableMetrics bool) {
	router.GET("/health", handlers.HealthCheck)
	if enableMetrics {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	// API version 1 group
	v1 := router.Group("/v1")
	v1.Use(middleware.RequireToken(apiToken))
	{
		v1.POST("/ask", handlers.HandleAsk(pipeline))
	}
}
