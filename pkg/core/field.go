package core

import (
	"strings"
	"time"
)

// FieldType names the kind of a custom field as declared in the field map.
type FieldType string

const (
	FieldText         FieldType = "text"
	FieldTextarea     FieldType = "textarea"
	FieldSelect       FieldType = "select"
	FieldDate         FieldType = "date"
	FieldFile         FieldType = "file"
	FieldAssets       FieldType = "assets"
	FieldCheckboxes   FieldType = "checkboxes"
	FieldMultiSelect  FieldType = "multi_select"
	FieldGrid         FieldType = "grid"
	FieldMatrix       FieldType = "matrix"
	FieldRelationship FieldType = "relationship"
	FieldPlaya        FieldType = "playa"
)

// FieldDef declares a custom field.
type FieldDef struct {
	ID   int       `yaml:"id" json:"id"`
	Name string    `yaml:"name" json:"name"`
	Type FieldType `yaml:"type" json:"type"`
}

// Multi reports whether values of this type are simple multi-valued lists.
func (t FieldType) Multi() bool {
	switch t {
	case FieldFile, FieldAssets, FieldCheckboxes, FieldMultiSelect:
		return true
	}
	return false
}

// Nested reports whether values of this type are record collections that
// need their own render pass.
func (t FieldType) Nested() bool {
	switch t {
	case FieldGrid, FieldMatrix, FieldRelationship, FieldPlaya:
		return true
	}
	return false
}

// Namespaced reports whether nested values of this type are addressed under
// the field name, as in {related:title}. Grid and matrix columns are not.
func (t FieldType) Namespaced() bool {
	return t == FieldRelationship || t == FieldPlaya
}

// FieldValue is the value of a custom field on a record.
type FieldValue interface {
	IsEmpty() bool
}

// Text is a scalar field value.
type Text string

func (t Text) IsEmpty() bool { return strings.TrimSpace(string(t)) == "" }

// Date is a date/time field value.
type Date struct {
	time.Time
}

func (d Date) IsEmpty() bool { return d.IsZero() }

// List is a simple multi-valued field, one attribute map per item.
type List []*Attributes

func (l List) IsEmpty() bool { return len(l) == 0 }

// Collection is a record-valued field rendered with its own pass.
type Collection struct {
	Records    []Record
	Namespaced bool
}

func (c Collection) IsEmpty() bool { return len(c.Records) == 0 }

// FieldMap resolves custom field names to ids.
type FieldMap map[string]int

// FieldID implements FieldNameResolver.
func (m FieldMap) FieldID(name string) (int, bool) {
	id, ok := m[name]
	return id, ok
}
