// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package dispatcher

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for dispatch.
var (
	// ErrInvalidMethod indicates a method name outside the registered set.
	ErrInvalidMethod = errors.New("invalid reasoning method")

	// ErrStrategyPanic indicates a strategy panicked during Reason.
	ErrStrategyPanic = errors.New("strategy panicked")

	// ErrNilResult indicates a strategy returned no result or no document.
	ErrNilResult = errors.New("strategy returned no result")

	// ErrEmptyTrace indicates a strategy returned no reasoning steps.
	ErrEmptyTrace = errors.New("strategy returned an empty reasoning trace")

	// ErrNoMethods indicates Compare was called without method names.
	ErrNoMethods = errors.New("no reasoning methods given")
)

// InvalidMethodError reports an unknown method and the available ones.
// It matches ErrInvalidMethod under errors.Is.
type InvalidMethodError struct {
	Method    string
	Available []string
}

// Error implements error.
func (e *InvalidMethodError) Error() string {
	return fmt.Sprintf("Unknown reasoning method: %s. Available: %s",
		e.Method, strings.Join(e.Available, ", "))
}

// Is reports whether target is ErrInvalidMethod.
func (e *InvalidMethodError) Is(target error) bool {
	return target == ErrInvalidMethod
}
