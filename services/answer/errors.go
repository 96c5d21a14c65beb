// Copyright (C) 2026 Lorekeep AI (oss@lorekeep.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package answer

import "errors"

// ErrSchemaViolation indicates the composer produced a shape outside the
// schema (for example a provenance entry naming an unknown field). This is
// a programming-contract failure, fatal to the request: the caller logs it
// and returns a generic error, because it points at a composer or adapter
// defect rather than a data-availability problem.
var ErrSchemaViolation = errors.New("structured answer violates schema contract")
