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
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// MarshalJSON encodes the document as its open mapping.
func (d Document) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.ToMap())
}

// UnmarshalJSON decodes an open mapping into the document.
func (d *Document) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := FromMap(raw)
	if err != nil {
		return err
	}
	*d = *parsed
	return nil
}

// MarshalYAML encodes the document as its open mapping.
func (d Document) MarshalYAML() (interface{}, error) {
	return d.ToMap(), nil
}

// UnmarshalYAML decodes an open mapping into the document.
func (d *Document) UnmarshalYAML(value *yaml.Node) error {
	var raw map[string]any
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := FromMap(raw)
	if err != nil {
		return err
	}
	*d = *parsed
	return nil
}

// Parse decodes a document from YAML or JSON bytes.
//
// YAML is tried first, then JSON. Empty input yields an empty document.
func Parse(data []byte) (*Document, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return New(), nil
	}

	var doc Document
	yamlErr := yaml.Unmarshal(data, &doc)
	if yamlErr == nil {
		return &doc, nil
	}

	var jdoc Document
	if jsonErr := json.Unmarshal(data, &jdoc); jsonErr != nil {
		return nil, fmt.Errorf("parse document (tried YAML and JSON): YAML error: %v, JSON error: %w", yamlErr, jsonErr)
	}
	return &jdoc, nil
}

// Load reads a document from a .json, .yaml or .yml file.
//
// Unknown extensions fall back to Parse.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		var doc Document
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse json document: %w", err)
		}
		return &doc, nil
	case ".yaml", ".yml":
		var doc Document
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse yaml document: %w", err)
		}
		return &doc, nil
	default:
		return Parse(data)
	}
}
