// Copyright (C) 2026 Lorekeep AI (oss@lorekeep.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

/*
This file serves as the bridge between the build system and the runtime logic. It utilizes the Go
embed package to bake the spoiler_patterns.yaml file directly into the compiled binary. This
ensures that the classification rules are immutable at runtime and travel with the executable.
*/

package enforcement

import (
	_ "embed"
)

// SpoilerPatterns holds the raw byte content of the 'spoiler_patterns.yaml' file.
//
// This variable is populated at compile-time using the Go 'embed' directive. By baking the
// YAML directly into the binary, we ensure the redaction behaviour is identical for every
// deployment of the same build, which the determinism guarantees of the pipeline depend on.
//
// Usage:
//
//	// Pass these bytes directly to yaml.Unmarshal
//	err := yaml.Unmarshal(enforcement.SpoilerPatterns, &targetStruct)
//
//go:embed spoiler_patterns.yaml
var SpoilerPatterns []byte
