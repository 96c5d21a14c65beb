// Copyright (C) 2026 Lorekeep AI (oss@lorekeep.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package sources contains the data-source adapters the topic router can
// invoke: game metadata (IGDB), playtime statistics (HowLongToBeat) and
// wiki lore (Wikipedia). Each adapter translates a sub-query into a
// source-specific lookup and folds the outcome into the uniform
// answer.SourceResult shape; network failures become the error variant,
// never a Go error crossing the router boundary.
package sources

import (
	"context"
	"net/http"
	"time"

	"github.com/LorekeepAI/Lorekeep/services/answer"
)

// Canonical payload keys. The composer maps these onto schema fields and
// drops anything else.
const (
	KeyMainStory     = "main_story"
	KeyMainExtras    = "main_extras"
	KeyCompletionist = "completionist"
	KeyPlot          = "plot"
	KeyLore          = "lore"
	KeyGameplay      = "gameplay"
	KeyTips          = "tips"
	KeyReleaseDate   = "release_date"
	KeyDeveloper     = "developer"
	KeyPlatforms     = "platforms"
	KeyGenres        = "genres"
	KeyRating        = "rating"
)

// Adapter is the uniform contract each data source satisfies.
type Adapter interface {
	// ID identifies the source in provenance records.
	ID() string

	// Depth scores how specific/deep the source is for its category.
	// When two sources can answer the same field, the router keeps the
	// higher depth and records only the winning provenance.
	Depth() int

	// Fetch resolves a sub-query against the source. The context bounds
	// the call; on timeout or failure the adapter returns the error
	// variant rather than a Go error.
	Fetch(ctx context.Context, subQuery string) answer.SourceResult
}

// HTTPClient allows injecting mock HTTP clients for testing.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// defaultHTTPClient bounds every adapter call even when the caller forgets
// a context deadline.
var defaultHTTPClient HTTPClient = &http.Client{Timeout: 15 * time.Second}
