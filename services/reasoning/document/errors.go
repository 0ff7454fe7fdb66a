// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package document

import "errors"

// Sentinel errors for document parsing and validation.
var (
	// ErrInvalidDocument indicates a well-known key holds a value of the wrong shape.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrValidationFailed indicates the document failed boundary validation.
	ErrValidationFailed = errors.New("document validation failed")
)
