// Copyright (C) 2026 Lorekeep AI (oss@lorekeep.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package sources

import (
	"context"

	"github.com/LorekeepAI/Lorekeep/services/answer"
	"golang.org/x/time/rate"
)

// RateLimitedAdapter enforces a client-side request budget in front of a
// source. IGDB allows 4 req/s per token and HLTB throttles unauthenticated
// traffic; blowing either budget turns into opaque 429s, so the limiter
// waits (within the call's context) instead.
type RateLimitedAdapter struct {
	inner   Adapter
	limiter *rate.Limiter
}

// WithRateLimit wraps an adapter with a token-bucket limiter of r events
// per second and the given burst.
func WithRateLimit(inner Adapter, r rate.Limit, burst int) *RateLimitedAdapter {
	return &RateLimitedAdapter{inner: inner, limiter: rate.NewLimiter(r, burst)}
}

func (r *RateLimitedAdapter) ID() string { return r.inner.ID() }

func (r *RateLimitedAdapter) Depth() int { return r.inner.Depth() }

func (r *RateLimitedAdapter) Fetch(ctx context.Context, subQuery string) answer.SourceResult {
	if err := r.limiter.Wait(ctx); err != nil {
		// Context expired while queued: same outcome as a timed-out call.
		return answer.Errored(r.inner.ID(), "rate limit wait aborted: "+err.Error())
	}
	return r.inner.Fetch(ctx, subQuery)
}
