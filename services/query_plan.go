package services

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/bdc/weather-api/models"
)

// Paging bounds of the log query
const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
	// MaxPage keeps (page-1)*limit far from int overflow
	MaxPage      = math.MaxInt32
)

// statusClasses maps a status class onto its [from, to) range
var statusClasses = map[string][2]int{
	"2xx": {200, 300},
	"4xx": {400, 500},
	"5xx": {500, 600},
}

// ResolveQueryPlan turns raw query parameters into a fully resolved plan.
// It never fails: out of range numbers are clamped, an unknown sort key falls
// back to timestamp, and unusable filter values are ignored.
func ResolveQueryPlan(params url.Values) models.QueryPlan {
	plan := models.QueryPlan{
		Page:    clamp(intParam(params, "page", DefaultPage), 1, MaxPage),
		Limit:   clamp(intParam(params, "limit", DefaultLimit), 1, MaxLimit),
		SortBy:  models.SortByTimestamp,
		SortDir: models.SortDesc,
	}

	if key := models.SortKey(strings.TrimSpace(params.Get("sortBy"))); key.Valid() {
		plan.SortBy = key
	}
	if params.Get("sortDir") == string(models.SortAsc) {
		plan.SortDir = models.SortAsc
	}

	plan.Filter = BuildFilter(params)
	return plan
}

// BuildFilter composes the filter clauses present in params, in a fixed order
func BuildFilter(params url.Values) models.Filter {
	var filter models.Filter

	if p, ok := MethodClause(params.Get("method")); ok {
		filter = append(filter, p)
	}
	filter = append(filter, StatusClassClauses(params.Get("statusClass"))...)
	if p, ok := EndpointContainsClause(params.Get("endpointContains")); ok {
		filter = append(filter, p)
	}
	filter = append(filter, TimeRangeClauses(params.Get("from"), params.Get("to"))...)

	return filter
}

// MethodClause matches the HTTP method exactly
func MethodClause(method string) (models.Predicate, bool) {
	method = strings.TrimSpace(method)
	if method == "" {
		return models.Predicate{}, false
	}
	return models.Predicate{Name: "method", Field: models.FieldMethod, Op: models.OpEq, Value: method}, true
}

// StatusClassClauses restricts status to one class such as 4xx. Unknown classes yield no clauses.
func StatusClassClauses(class string) []models.Predicate {
	bounds, ok := statusClasses[strings.ToLower(strings.TrimSpace(class))]
	if !ok {
		return nil
	}
	return []models.Predicate{
		{Name: "status_class_from", Field: models.FieldStatus, Op: models.OpGte, Value: bounds[0]},
		{Name: "status_class_to", Field: models.FieldStatus, Op: models.OpLt, Value: bounds[1]},
	}
}

// EndpointContainsClause matches endpoints containing s, ignoring case
func EndpointContainsClause(s string) (models.Predicate, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return models.Predicate{}, false
	}
	return models.Predicate{Name: "endpoint_contains", Field: models.FieldEndpoint, Op: models.OpContainsFold, Value: s}, true
}

// TimeRangeClauses bounds the timestamp inclusively. Unparseable bounds are dropped.
func TimeRangeClauses(from, to string) []models.Predicate {
	var clauses []models.Predicate

	if t, ok := models.ParseTimeParam(from); ok {
		clauses = append(clauses, models.Predicate{Name: "from", Field: models.FieldTimestamp, Op: models.OpGte, Value: t})
	}
	if t, ok := models.ParseTimeParam(to); ok {
		clauses = append(clauses, models.Predicate{Name: "to", Field: models.FieldTimestamp, Op: models.OpLte, Value: t})
	}

	return clauses
}

// intParam reads an integer parameter, returning def when absent or malformed
func intParam(params url.Values, name string, def int) int {
	raw := strings.TrimSpace(params.Get(name))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

// clamp bounds v to [lo, hi]; hi <= 0 means no upper bound
func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if hi > 0 && v > hi {
		return hi
	}
	return v
}
