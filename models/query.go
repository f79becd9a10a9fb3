package models

import "math"

// SortKey is a whitelisted column the log query can be ordered by
type SortKey string

const (
	SortByTimestamp SortKey = "timestamp"
	SortByStatus    SortKey = "status"
	SortByMethod    SortKey = "method"
)

// Valid reports whether the key is on the sort whitelist
func (k SortKey) Valid() bool {
	switch k {
	case SortByTimestamp, SortByStatus, SortByMethod:
		return true
	}
	return false
}

// SortDir is the ordering direction of a log query
type SortDir string

const (
	SortAsc  SortDir = "asc"
	SortDesc SortDir = "desc"
)

// Field names a filterable attribute of a RequestLog
type Field string

const (
	FieldMethod    Field = "method"
	FieldStatus    Field = "status"
	FieldEndpoint  Field = "endpoint"
	FieldTimestamp Field = "timestamp"
)

// Operator is the comparison a Predicate applies to its field
type Operator string

const (
	OpEq           Operator = "eq"
	OpGte          Operator = "gte"
	OpLt           Operator = "lt"
	OpLte          Operator = "lte"
	OpContainsFold Operator = "contains_fold"
)

// Predicate is one named clause of a log filter
type Predicate struct {
	Name  string
	Field Field
	Op    Operator
	Value any
}

// Filter is the conjunction of its predicates. An empty filter matches everything.
type Filter []Predicate

// Names returns the clause names in order, mostly useful for logging
func (f Filter) Names() []string {
	names := make([]string, len(f))
	for i, p := range f {
		names[i] = p.Name
	}
	return names
}

// QueryPlan is a fully resolved log query. Every default has been applied.
type QueryPlan struct {
	Page    int
	Limit   int
	SortBy  SortKey
	SortDir SortDir
	Filter  Filter
}

// Offset returns the number of matching entries skipped before the page starts.
// It saturates at math.MaxInt instead of wrapping.
func (p QueryPlan) Offset() int {
	if p.Page <= 1 || p.Limit <= 0 {
		return 0
	}
	if p.Page-1 > math.MaxInt/p.Limit {
		return math.MaxInt
	}
	return (p.Page - 1) * p.Limit
}

// LogPage is the envelope returned by the log query endpoint
type LogPage struct {
	Items      []RequestLog `json:"items"`
	Page       int          `json:"page"`
	Limit      int          `json:"limit"`
	Total      int64        `json:"total"`
	TotalPages int          `json:"totalPages"`
	HasPrev    bool         `json:"hasPrev"`
	HasNext    bool         `json:"hasNext"`
	SortBy     SortKey      `json:"sortBy"`
	SortDir    SortDir      `json:"sortDir"`
}

// NewLogPage builds the page envelope for a plan from the fetched items and total count
func NewLogPage(plan QueryPlan, items []RequestLog, total int64) *LogPage {
	if items == nil {
		items = []RequestLog{}
	}

	totalPages := int((total + int64(plan.Limit) - 1) / int64(plan.Limit))
	if totalPages < 1 {
		totalPages = 1
	}

	return &LogPage{
		Items:      items,
		Page:       plan.Page,
		Limit:      plan.Limit,
		Total:      total,
		TotalPages: totalPages,
		HasPrev:    plan.Page > 1,
		HasNext:    plan.Page < totalPages,
		SortBy:     plan.SortBy,
		SortDir:    plan.SortDir,
	}
}
