// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package document defines the specification document enhanced by the
// reasoning strategies.
//
// A specification document describes the synthetic data a caller wants:
// its fields, constraints, relationships and quality knobs. Callers hand
// documents over as open mappings (JSON, YAML, or map[string]any from an
// upstream parser); this package turns them into a typed Document with the
// well-known keys promoted to fields and everything else kept in an
// explicit extension map, so nothing is lost on a round trip.
//
// # Presence Semantics
//
// Several strategies score a document by whether a key is present rather
// than whether it is non-empty. The typed record keeps that distinction:
// a nil slice or map means the key was absent, an empty one means it was
// present but empty.
//
// # Ownership
//
// Documents are produced by callers and never mutated in place by a
// strategy. Strategies work on DeepCopy and return a new document.
//
// # Thread Safety
//
// A Document is a plain value and is not safe for concurrent mutation.
// Concurrent readers are fine.
package document
