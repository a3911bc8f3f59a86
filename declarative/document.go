// Package declarative compiles query documents, written in YAML or JSON,
// into dynq queries.
//
//	table: Orders
//	alias: o
//	fields:
//	  - field: o.CustomerId
//	  - field: o.Total
//	    aggregate: sum
//	    alias: Spent
//	where:
//	  field: o.Status
//	  operator: in
//	  values: [open, shipped]
//	group_by: [o.CustomerId]
package declarative

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Document is a SELECT statement in declarative form.
type Document struct {
	Table    string            `json:"table" yaml:"table"`
	Schema   string            `json:"schema,omitempty" yaml:"schema,omitempty"`
	Alias    string            `json:"alias,omitempty" yaml:"alias,omitempty"`
	Distinct bool              `json:"distinct,omitempty" yaml:"distinct,omitempty"`
	Fields   []FieldSchema     `json:"fields,omitempty" yaml:"fields,omitempty"`
	Joins    []JoinSchema      `json:"joins,omitempty" yaml:"joins,omitempty"`
	Where    *ConditionSchema  `json:"where,omitempty" yaml:"where,omitempty"`
	GroupBy  []string          `json:"group_by,omitempty" yaml:"group_by,omitempty"`
	Having   []ConditionSchema `json:"having,omitempty" yaml:"having,omitempty"`
	OrderBy  []OrderSchema     `json:"order_by,omitempty" yaml:"order_by,omitempty"`
	Top      int               `json:"top,omitempty" yaml:"top,omitempty"`
	Skip     *int              `json:"skip,omitempty" yaml:"skip,omitempty"`
	Take     *int              `json:"take,omitempty" yaml:"take,omitempty"`
	Page     *PageSchema       `json:"page,omitempty" yaml:"page,omitempty"`
}

// FieldSchema is one select item. Functions are applied in order, then the
// aggregate.
type FieldSchema struct {
	Field     string   `json:"field" yaml:"field"`
	Functions []string `json:"functions,omitempty" yaml:"functions,omitempty"`
	Aggregate string   `json:"aggregate,omitempty" yaml:"aggregate,omitempty"` // sum, avg, min, max, count, count_distinct
	Alias     string   `json:"alias,omitempty" yaml:"alias,omitempty"`
}

// JoinSchema is a JOIN clause.
type JoinSchema struct {
	Type  string            `json:"type" yaml:"type"` // inner, left, right, full, cross
	Table string            `json:"table" yaml:"table"`
	Alias string            `json:"alias" yaml:"alias"`
	On    []ConditionSchema `json:"on,omitempty" yaml:"on,omitempty"`
}

// ConditionSchema is a comparison or, when Conditions is set, a group.
type ConditionSchema struct {
	Field    string `json:"field,omitempty" yaml:"field,omitempty"`
	Operator string `json:"operator,omitempty" yaml:"operator,omitempty"`

	// Exactly one right-hand side: a literal, a list, a named parameter,
	// another column or a sub-query.
	Value      any       `json:"value,omitempty" yaml:"value,omitempty"`
	Values     []any     `json:"values,omitempty" yaml:"values,omitempty"`
	Param      string    `json:"param,omitempty" yaml:"param,omitempty"`
	RightField string    `json:"right_field,omitempty" yaml:"right_field,omitempty"`
	Subquery   *Document `json:"subquery,omitempty" yaml:"subquery,omitempty"`

	// Groups
	Logic      string            `json:"logic,omitempty" yaml:"logic,omitempty"` // AND or OR
	Conditions []ConditionSchema `json:"conditions,omitempty" yaml:"conditions,omitempty"`
}

// OrderSchema is one ORDER BY item.
type OrderSchema struct {
	Field     string `json:"field" yaml:"field"`
	Direction string `json:"direction,omitempty" yaml:"direction,omitempty"` // defaults to ASC
}

// PageSchema selects a 1-based page.
type PageSchema struct {
	Number int `json:"number" yaml:"number"`
	Size   int `json:"size" yaml:"size"`
}

// Parse decodes a YAML or JSON document. Unknown keys are rejected.
func Parse(data []byte) (*Document, error) {
	return Decode(bytes.NewReader(data))
}

// Decode reads one document from r.
func Decode(r io.Reader) (*Document, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var doc Document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("declarative: empty document")
		}
		return nil, fmt.Errorf("declarative: %w", err)
	}
	return &doc, nil
}
