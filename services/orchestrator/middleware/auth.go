// Copyright (C) 2026 Lorekeep AI (oss@lorekeep.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package middleware provides HTTP middleware for the orchestrator service.
//
// # Authentication Flow
//
// The auth middleware extracts a bearer token from the Authorization header
// and compares it against the statically configured API token.
//
//	Request
//	   │
//	   ▼
//	RequireToken
//	   │
//	   ├─► Extract token from "Authorization: Bearer <token>"
//	   │
//	   ├─► Constant-time compare against the configured token
//	   │
//	   └─► 401 on mismatch, c.Next() on match
//
// # Local Behavior
//
// When no API token is configured (empty string), RequireToken is a no-op
// and every request passes. This keeps the CLI and local deployments
// working without any authentication infrastructure.
package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// RequireToken creates a Gin middleware that rejects requests whose
// Authorization header does not carry the configured bearer token.
//
// # Description
//
// The comparison is constant-time to avoid leaking the token length or
// prefix through response timing. An empty configured token disables the
// check entirely; the returned middleware then passes every request
// through unchanged.
//
// # Inputs
//
//   - token: The expected API token. Empty disables authentication.
//
// # Outputs
//
//   - gin.HandlerFunc: Middleware function ready for use with Gin
//
// # Examples
//
//	// Apply to route group
//	v1 := router.Group("/v1")
//	v1.Use(middleware.RequireToken(cfg.APIToken))
//
// # Limitations
//
//   - Only supports Bearer token authentication
//   - A single shared token, no per-user identity
//
// # Thread Safety
//
// Thread-safe. The returned middleware can be used concurrently.
func RequireToken(token string) gin.HandlerFunc {
	if token == "" {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	expected := []byte(token)
	return func(c *gin.Context) {
		presented := extractBearerToken(c)
		if subtle.ConstantTimeCompare([]byte(presented), expected) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "unauthorized",
			})
			return
		}
		c.Next()
	}
}

// extractBearerToken extracts the token from the Authorization header.
//
// Parses the Authorization header expecting format: "Bearer <token>".
// Returns empty string if the header is missing or malformed. The
// "Bearer" prefix is case-insensitive per RFC 7235.
func extractBearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
