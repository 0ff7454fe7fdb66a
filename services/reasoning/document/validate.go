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

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// =============================================================================
// Shared Validator Instance
// =============================================================================

// documentValidate is the validator instance for documents.
var documentValidate = validator.New()

// Validate checks the document at the boundary.
//
// Description:
//
//	Enforces the structural rules callers can get wrong: every field has a
//	name, relationships carry both endpoints when they carry either,
//	confidence lies in [0,1] and size is non-negative. Strategies do not
//	require a validated document; this is for API and CLI input.
//
// Outputs:
//
//	error - Wraps ErrValidationFailed with one message per violation, or nil.
func (d *Document) Validate() error {
	if d == nil {
		return nil
	}

	err := documentValidate.Struct(d)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describeFieldError(fe))
	}
	return fmt.Errorf("%w: %s", ErrValidationFailed, strings.Join(msgs, "; "))
}

func describeFieldError(fe validator.FieldError) string {
	path := strings.TrimPrefix(fe.Namespace(), "Document.")
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", path)
	case "required_with":
		return fmt.Sprintf("%s is required when %s is set", path, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be >= %s", path, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be <= %s", path, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s", path, fe.Tag())
	}
}
