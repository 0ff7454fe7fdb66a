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
	"fmt"
	"strings"
)

// Well-known top-level keys.
const (
	KeyDataType            = "data_type"
	KeyDomain              = "domain"
	KeyReasoningMethod     = "reasoning_method"
	KeyFields              = "fields"
	KeyConstraints         = "constraints"
	KeyRelationships       = "relationships"
	KeyQualityRequirements = "quality_requirements"
	KeyConfidence          = "confidence"
	KeySize                = "size"
)

// =============================================================================
// Field
// =============================================================================

// Field describes one column of the requested dataset.
//
// Constraints and Examples use nil to mean "not specified". Unknown
// descriptor keys are preserved in Extra.
type Field struct {
	Name         string `validate:"required"`
	Type         string
	Description  string
	Distribution string
	Required     bool
	Unique       bool
	Constraints  map[string]any
	Examples     []any
	Extra        map[string]any
}

// HasType reports whether the field carries a type specification.
func (f *Field) HasType() bool {
	return f.Type != ""
}

// HasDescription reports whether the field carries a description.
func (f *Field) HasDescription() bool {
	return f.Description != ""
}

// IsNumeric reports whether the field type is integer, number or float.
func (f *Field) IsNumeric() bool {
	switch f.Type {
	case "integer", "number", "float":
		return true
	}
	return false
}

// deepCopy returns an independent copy of the field.
func (f Field) deepCopy() Field {
	out := f
	out.Constraints = copyMap(f.Constraints)
	out.Examples = copySlice(f.Examples)
	out.Extra = copyMap(f.Extra)
	return out
}

func (f *Field) toMap() map[string]any {
	m := make(map[string]any, len(f.Extra)+8)
	for k, v := range f.Extra {
		m[k] = deepCopyValue(v)
	}
	if f.Name != "" {
		m["name"] = f.Name
	}
	if f.Type != "" {
		m["type"] = f.Type
	}
	if f.Description != "" {
		m["description"] = f.Description
	}
	if f.Distribution != "" {
		m["distribution"] = f.Distribution
	}
	if f.Required {
		m["required"] = true
	}
	if f.Unique {
		m["unique"] = true
	}
	if f.Constraints != nil {
		m["constraints"] = copyMap(f.Constraints)
	}
	if f.Examples != nil {
		m["examples"] = copySlice(f.Examples)
	}
	return m
}

func fieldFromMap(idx int, raw map[string]any) (Field, error) {
	var f Field
	for k, v := range raw {
		if v == nil {
			continue
		}
		var err error
		switch k {
		case "name":
			f.Name, err = asString(v)
		case "type":
			f.Type, err = asString(v)
		case "description":
			f.Description, err = asString(v)
		case "distribution":
			f.Distribution, err = asString(v)
		case "required":
			f.Required, err = asBool(v)
		case "unique":
			f.Unique, err = asBool(v)
		case "constraints":
			f.Constraints, err = asMap(v)
		case "examples":
			f.Examples, err = asSlice(v)
		default:
			if f.Extra == nil {
				f.Extra = make(map[string]any)
			}
			f.Extra[k] = normalizeValue(v)
		}
		if err != nil {
			return Field{}, fmt.Errorf("%w: fields[%d].%s: %v", ErrInvalidDocument, idx, k, err)
		}
	}
	return f, nil
}

// =============================================================================
// Constraint
// =============================================================================

// Constraint is either a free-text rule or a structured rule mapping.
//
// Exactly one of Text and Rule is meaningful: a non-nil Rule marks a
// structured constraint.
type Constraint struct {
	Text string
	Rule map[string]any
}

// TextConstraint builds a free-text constraint.
func TextConstraint(text string) Constraint {
	return Constraint{Text: text}
}

// RuleConstraint builds a structured constraint.
func RuleConstraint(rule map[string]any) Constraint {
	if rule == nil {
		rule = map[string]any{}
	}
	return Constraint{Rule: rule}
}

// IsText reports whether the constraint is free text.
func (c Constraint) IsText() bool {
	return c.Rule == nil
}

// Values returns the textual surface of the constraint: the text itself,
// or the stringified values of a structured rule.
func (c Constraint) Values() []string {
	if c.IsText() {
		return []string{c.Text}
	}
	out := make([]string, 0, len(c.Rule))
	for _, k := range sortedKeys(c.Rule) {
		out = append(out, fmt.Sprint(c.Rule[k]))
	}
	return out
}

func (c Constraint) deepCopy() Constraint {
	return Constraint{Text: c.Text, Rule: copyMap(c.Rule)}
}

func (c Constraint) toValue() any {
	if c.IsText() {
		return c.Text
	}
	return copyMap(c.Rule)
}

// =============================================================================
// Relationship
// =============================================================================

// Relationship links two fields or entities.
//
// From and To are optional as a pair: structured integrity rules carry
// only a Type and Extra attributes.
type Relationship struct {
	From  string `validate:"required_with=To"`
	To    string `validate:"required_with=From"`
	Type  string
	Extra map[string]any
}

func (r Relationship) deepCopy() Relationship {
	out := r
	out.Extra = copyMap(r.Extra)
	return out
}

// Values returns the textual surface of the relationship.
func (r Relationship) Values() []string {
	m := r.toMap()
	out := make([]string, 0, len(m))
	for _, k := range sortedKeys(m) {
		out = append(out, fmt.Sprint(m[k]))
	}
	return out
}

func (r Relationship) toMap() map[string]any {
	m := make(map[string]any, len(r.Extra)+3)
	for k, v := range r.Extra {
		m[k] = deepCopyValue(v)
	}
	if r.From != "" {
		m["from"] = r.From
	}
	if r.To != "" {
		m["to"] = r.To
	}
	if r.Type != "" {
		m["type"] = r.Type
	}
	return m
}

func relationshipFromMap(idx int, raw map[string]any) (Relationship, error) {
	var r Relationship
	for k, v := range raw {
		if v == nil {
			continue
		}
		var err error
		switch k {
		case "from":
			r.From, err = asString(v)
		case "to":
			r.To, err = asString(v)
		case "type":
			r.Type, err = asString(v)
		default:
			if r.Extra == nil {
				r.Extra = make(map[string]any)
			}
			r.Extra[k] = normalizeValue(v)
		}
		if err != nil {
			return Relationship{}, fmt.Errorf("%w: relationships[%d].%s: %v", ErrInvalidDocument, idx, k, err)
		}
	}
	return r, nil
}

// =============================================================================
// Document
// =============================================================================

// Document is a specification document: the requirement object being enhanced.
//
// Description:
//
//	Well-known keys are typed fields; every other top-level key lives in
//	Extensions. Slices and maps use nil for "absent", so presence checks
//	survive a FromMap/ToMap round trip.
//
// Thread Safety: Not safe for concurrent mutation.
type Document struct {
	DataType            string
	Domain              string
	ReasoningMethod     string
	Fields              []Field        `validate:"dive"`
	Constraints         []Constraint
	Relationships       []Relationship `validate:"dive"`
	QualityRequirements map[string]any
	Confidence          *float64 `validate:"omitempty,gte=0,lte=1"`
	Size                *int     `validate:"omitempty,gte=0"`
	Extensions          map[string]any
}

// New returns an empty document.
func New() *Document {
	return &Document{}
}

// IsEmpty reports whether the document carries no keys at all.
// A nil document is empty.
func (d *Document) IsEmpty() bool {
	if d == nil {
		return true
	}
	return d.DataType == "" &&
		d.Domain == "" &&
		d.ReasoningMethod == "" &&
		d.Fields == nil &&
		d.Constraints == nil &&
		d.Relationships == nil &&
		d.QualityRequirements == nil &&
		d.Confidence == nil &&
		d.Size == nil &&
		len(d.Extensions) == 0
}

// HasFields reports whether the fields key is present.
func (d *Document) HasFields() bool {
	return d != nil && d.Fields != nil
}

// HasQuality reports whether the quality_requirements key is present.
func (d *Document) HasQuality() bool {
	return d != nil && d.QualityRequirements != nil
}

// EnsureQuality returns the quality map, creating it when absent.
func (d *Document) EnsureQuality() map[string]any {
	if d.QualityRequirements == nil {
		d.QualityRequirements = make(map[string]any)
	}
	return d.QualityRequirements
}

// EnsureConstraints marks the constraints key as present.
func (d *Document) EnsureConstraints() {
	if d.Constraints == nil {
		d.Constraints = []Constraint{}
	}
}

// EnsureRelationships marks the relationships key as present.
func (d *Document) EnsureRelationships() {
	if d.Relationships == nil {
		d.Relationships = []Relationship{}
	}
}

// AddConstraint appends a constraint.
func (d *Document) AddConstraint(c Constraint) {
	d.Constraints = append(d.Constraints, c)
}

// AddTextConstraint appends a free-text constraint.
func (d *Document) AddTextConstraint(text string) {
	d.AddConstraint(TextConstraint(text))
}

// StringConstraints returns the free-text constraints in order.
func (d *Document) StringConstraints() []string {
	if d == nil {
		return nil
	}
	var out []string
	for _, c := range d.Constraints {
		if c.IsText() {
			out = append(out, c.Text)
		}
	}
	return out
}

// HasTextConstraint reports whether the exact free-text constraint exists.
func (d *Document) HasTextConstraint(text string) bool {
	for _, c := range d.StringConstraints() {
		if c == text {
			return true
		}
	}
	return false
}

// FieldNames returns field names in order.
func (d *Document) FieldNames() []string {
	if d == nil {
		return nil
	}
	out := make([]string, 0, len(d.Fields))
	for _, f := range d.Fields {
		out = append(out, f.Name)
	}
	return out
}

// Extension returns an extension value.
func (d *Document) Extension(key string) (any, bool) {
	if d == nil || d.Extensions == nil {
		return nil, false
	}
	v, ok := d.Extensions[key]
	return v, ok
}

// SetExtension sets an extension value.
func (d *Document) SetExtension(key string, value any) {
	if d.Extensions == nil {
		d.Extensions = make(map[string]any)
	}
	d.Extensions[key] = value
}

// DeepCopy returns an independent copy of the document.
//
// A nil receiver yields a new empty document, which is how strategies
// treat a missing input.
func (d *Document) DeepCopy() *Document {
	if d == nil {
		return New()
	}
	out := &Document{
		DataType:            d.DataType,
		Domain:              d.Domain,
		ReasoningMethod:     d.ReasoningMethod,
		QualityRequirements: copyMap(d.QualityRequirements),
		Extensions:          copyMap(d.Extensions),
	}
	if d.Fields != nil {
		out.Fields = make([]Field, len(d.Fields))
		for i, f := range d.Fields {
			out.Fields[i] = f.deepCopy()
		}
	}
	if d.Constraints != nil {
		out.Constraints = make([]Constraint, len(d.Constraints))
		for i, c := range d.Constraints {
			out.Constraints[i] = c.deepCopy()
		}
	}
	if d.Relationships != nil {
		out.Relationships = make([]Relationship, len(d.Relationships))
		for i, r := range d.Relationships {
			out.Relationships[i] = r.deepCopy()
		}
	}
	if d.Confidence != nil {
		c := *d.Confidence
		out.Confidence = &c
	}
	if d.Size != nil {
		s := *d.Size
		out.Size = &s
	}
	return out
}

// ToMap renders the document back into an open mapping.
func (d *Document) ToMap() map[string]any {
	if d == nil {
		return map[string]any{}
	}
	m := make(map[string]any, len(d.Extensions)+9)
	for k, v := range d.Extensions {
		m[k] = deepCopyValue(v)
	}
	if d.DataType != "" {
		m[KeyDataType] = d.DataType
	}
	if d.Domain != "" {
		m[KeyDomain] = d.Domain
	}
	if d.ReasoningMethod != "" {
		m[KeyReasoningMethod] = d.ReasoningMethod
	}
	if d.Fields != nil {
		fields := make([]any, len(d.Fields))
		for i := range d.Fields {
			fields[i] = d.Fields[i].toMap()
		}
		m[KeyFields] = fields
	}
	if d.Constraints != nil {
		cs := make([]any, len(d.Constraints))
		for i, c := range d.Constraints {
			cs[i] = c.toValue()
		}
		m[KeyConstraints] = cs
	}
	if d.Relationships != nil {
		rs := make([]any, len(d.Relationships))
		for i, r := range d.Relationships {
			rs[i] = r.toMap()
		}
		m[KeyRelationships] = rs
	}
	if d.QualityRequirements != nil {
		m[KeyQualityRequirements] = copyMap(d.QualityRequirements)
	}
	if d.Confidence != nil {
		m[KeyConfidence] = *d.Confidence
	}
	if d.Size != nil {
		m[KeySize] = *d.Size
	}
	return m
}

// FromMap builds a Document from an open mapping.
//
// Description:
//
//	Well-known keys are type-checked and promoted; unknown keys are kept in
//	Extensions. Keys holding nil are treated as absent. A nil map yields an
//	empty document.
//
// Outputs:
//
//	*Document - The parsed document.
//	error - Wraps ErrInvalidDocument when a well-known key has the wrong shape.
func FromMap(raw map[string]any) (*Document, error) {
	d := New()
	for k, v := range raw {
		if v == nil {
			continue
		}
		if err := d.setKey(k, v); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func (d *Document) setKey(key string, v any) error {
	wrap := func(err error) error {
		return fmt.Errorf("%w: %s: %v", ErrInvalidDocument, key, err)
	}

	switch key {
	case KeyDataType:
		s, err := asString(v)
		if err != nil {
			return wrap(err)
		}
		d.DataType = s

	case KeyDomain:
		s, err := asString(v)
		if err != nil {
			return wrap(err)
		}
		d.Domain = s

	case KeyReasoningMethod:
		s, err := asString(v)
		if err != nil {
			return wrap(err)
		}
		d.ReasoningMethod = s

	case KeyFields:
		items, err := asSlice(v)
		if err != nil {
			return wrap(err)
		}
		d.Fields = make([]Field, 0, len(items))
		for i, item := range items {
			fm, err := asMap(item)
			if err != nil {
				return fmt.Errorf("%w: fields[%d]: %v", ErrInvalidDocument, i, err)
			}
			f, err := fieldFromMap(i, fm)
			if err != nil {
				return err
			}
			d.Fields = append(d.Fields, f)
		}

	case KeyConstraints:
		items, err := asSlice(v)
		if err != nil {
			return wrap(err)
		}
		d.Constraints = make([]Constraint, 0, len(items))
		for _, item := range items {
			switch c := item.(type) {
			case string:
				d.Constraints = append(d.Constraints, TextConstraint(c))
			case nil:
				continue
			default:
				if rule, err := asMap(c); err == nil {
					d.Constraints = append(d.Constraints, RuleConstraint(rule))
				} else {
					d.Constraints = append(d.Constraints, TextConstraint(fmt.Sprint(c)))
				}
			}
		}

	case KeyRelationships:
		items, err := asSlice(v)
		if err != nil {
			return wrap(err)
		}
		d.Relationships = make([]Relationship, 0, len(items))
		for i, item := range items {
			rm, err := asMap(item)
			if err != nil {
				return fmt.Errorf("%w: relationships[%d]: %v", ErrInvalidDocument, i, err)
			}
			r, err := relationshipFromMap(i, rm)
			if err != nil {
				return err
			}
			d.Relationships = append(d.Relationships, r)
		}

	case KeyQualityRequirements:
		m, err := asMap(v)
		if err != nil {
			return wrap(err)
		}
		d.QualityRequirements = m

	case KeyConfidence:
		f, ok := AsFloat(v)
		if !ok {
			return wrap(fmt.Errorf("expected number, got %T", v))
		}
		d.Confidence = &f

	case KeySize:
		f, ok := AsFloat(v)
		if !ok {
			return wrap(fmt.Errorf("expected number, got %T", v))
		}
		size := int(f)
		d.Size = &size

	default:
		d.SetExtension(key, normalizeValue(v))
	}
	return nil
}

// Summary returns a short human-readable description of the document.
func (d *Document) Summary() string {
	if d.IsEmpty() {
		return "empty document"
	}
	var parts []string
	if d.DataType != "" {
		parts = append(parts, fmt.Sprintf("data_type=%q", d.DataType))
	}
	if d.Domain != "" {
		parts = append(parts, fmt.Sprintf("domain=%q", d.Domain))
	}
	parts = append(parts,
		fmt.Sprintf("fields=%d", len(d.Fields)),
		fmt.Sprintf("constraints=%d", len(d.Constraints)),
		fmt.Sprintf("relationships=%d", len(d.Relationships)),
	)
	return strings.Join(parts, " ")
}
