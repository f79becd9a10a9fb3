package services

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bdc/weather-api/models"
)

func params(raw string) url.Values {
	v, err := url.ParseQuery(raw)
	if err != nil {
		panic(err)
	}
	return v
}

func TestResolveQueryPlan_Defaults(t *testing.T) {
	plan := ResolveQueryPlan(url.Values{})

	assert.Equal(t, 1, plan.Page)
	assert.Equal(t, 20, plan.Limit)
	assert.Equal(t, models.SortByTimestamp, plan.SortBy)
	assert.Equal(t, models.SortDesc, plan.SortDir)
	assert.Empty(t, plan.Filter)
}

func TestResolveQueryPlan_Paging(t *testing.T) {
	tests := []struct {
		query string
		page  int
		limit int
	}{
		{"page=3&limit=10", 3, 10},
		{"page=0&limit=0", 1, 1},
		{"page=-4&limit=-1", 1, 1},
		{"limit=500", 1, 100},
		{"limit=100", 1, 100},
		{"page=abc&limit=xyz", 1, 20},
		{"page=2.5&limit=7", 1, 7},
		{"page=%202%20", 2, 20},
		{"page=9223372036854775807&limit=100", MaxPage, 100},
		{"page=99999999999999999999", 1, 20},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			plan := ResolveQueryPlan(params(tt.query))
			assert.Equal(t, tt.page, plan.Page)
			assert.Equal(t, tt.limit, plan.Limit)
		})
	}
}

func TestResolveQueryPlan_Sort(t *testing.T) {
	tests := []struct {
		query string
		by    models.SortKey
		dir   models.SortDir
	}{
		{"sortBy=status&sortDir=asc", models.SortByStatus, models.SortAsc},
		{"sortBy=method&sortDir=desc", models.SortByMethod, models.SortDesc},
		{"sortBy=ip", models.SortByTimestamp, models.SortDesc},
		{"sortBy=timestamp;DROP", models.SortByTimestamp, models.SortDesc},
		{"sortDir=ASC", models.SortByTimestamp, models.SortDesc},
		{"sortDir=ascending", models.SortByTimestamp, models.SortDesc},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			plan := ResolveQueryPlan(params(tt.query))
			assert.Equal(t, tt.by, plan.SortBy)
			assert.Equal(t, tt.dir, plan.SortDir)
		})
	}
}

func TestResolveQueryPlan_AllFilters(t *testing.T) {
	plan := ResolveQueryPlan(params("method=GET&statusClass=4xx&endpointContains=Weather&from=2024-05-01&to=2024-05-02T00:00:00Z"))

	assert.Equal(t, []string{"method", "status_class_from", "status_class_to", "endpoint_contains", "from", "to"}, plan.Filter.Names())
}

func TestMethodClause(t *testing.T) {
	p, ok := MethodClause(" POST ")
	require.True(t, ok)
	assert.Equal(t, models.Predicate{Name: "method", Field: models.FieldMethod, Op: models.OpEq, Value: "POST"}, p)

	_, ok = MethodClause("")
	assert.False(t, ok)
}

func TestStatusClassClauses(t *testing.T) {
	tests := map[string][2]int{"2xx": {200, 300}, "4xx": {400, 500}, "5XX": {500, 600}}
	for class, bounds := range tests {
		clauses := StatusClassClauses(class)
		require.Len(t, clauses, 2, class)
		assert.Equal(t, models.OpGte, clauses[0].Op)
		assert.Equal(t, bounds[0], clauses[0].Value)
		assert.Equal(t, models.OpLt, clauses[1].Op)
		assert.Equal(t, bounds[1], clauses[1].Value)
	}

	for _, class := range []string{"", "3xx", "404", "xx"} {
		assert.Empty(t, StatusClassClauses(class), class)
	}
}

func TestEndpointContainsClause(t *testing.T) {
	p, ok := EndpointContainsClause("Weather")
	require.True(t, ok)
	assert.Equal(t, models.OpContainsFold, p.Op)
	assert.Equal(t, "Weather", p.Value)

	_, ok = EndpointContainsClause("   ")
	assert.False(t, ok)
}

func TestTimeRangeClauses(t *testing.T) {
	clauses := TimeRangeClauses("2024-05-01", "2024-05-01T23:59:59Z")
	require.Len(t, clauses, 2)
	assert.Equal(t, models.OpGte, clauses[0].Op)
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), clauses[0].Value)
	assert.Equal(t, models.OpLte, clauses[1].Op)
	assert.Equal(t, time.Date(2024, 5, 1, 23, 59, 59, 0, time.UTC), clauses[1].Value)

	// Invalid bounds are ignored, not errors
	clauses = TimeRangeClauses("not-a-date", "2024-05-02")
	require.Len(t, clauses, 1)
	assert.Equal(t, "to", clauses[0].Name)

	assert.Empty(t, TimeRangeClauses("", "garbage"))
}
