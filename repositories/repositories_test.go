package repositories

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/bdc/weather-api/database"
	"github.com/bdc/weather-api/models"
)

var baseTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func setupTestDB(t *testing.T) *sqlx.DB {
	// Create a temporary database for testing
	dbPath := filepath.Join(t.TempDir(), "test.db")

	d, err := database.Open("sqlite3://" + dbPath)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { d.Close() })

	// Initialize test database using the actual migration system
	if err := d.Connect(context.Background()); err != nil {
		t.Fatalf("Failed to initialize test database: %v", err)
	}

	return d.DB()
}

func seed(t *testing.T, repo RequestLogRepository, entries []models.RequestLog) {
	for i := range entries {
		if err := repo.Create(context.Background(), &entries[i]); err != nil {
			t.Fatalf("Failed to create request log %d: %v", i, err)
		}
	}
}

func entry(i int, method string, status int, endpoint string) models.RequestLog {
	return models.RequestLog{
		ID:        fmt.Sprintf("id-%03d", i),
		Endpoint:  endpoint,
		Method:    method,
		IP:        "10.0.0.1",
		Status:    status,
		UserAgent: "go-test",
		Timestamp: baseTime.Add(time.Duration(i) * time.Minute),
	}
}

func TestRequestLogRepository_CreateAndFind(t *testing.T) {
	repo := NewRequestLogRepository(setupTestDB(t))
	ctx := context.Background()

	e := entry(1, "GET", 200, "/api/weather")
	e.DurationMs = 42
	seed(t, repo, []models.RequestLog{e})

	logs, err := repo.Find(ctx, models.QueryPlan{Page: 1, Limit: 10, SortBy: models.SortByTimestamp, SortDir: models.SortDesc})
	if err != nil {
		t.Fatalf("Failed to find request logs: %v", err)
	}

	if len(logs) != 1 {
		t.Fatalf("Expected 1 request log, got %d", len(logs))
	}

	got := logs[0]
	if got.ID != e.ID || got.Endpoint != e.Endpoint || got.Method != e.Method || got.Status != e.Status {
		t.Errorf("Expected %+v, got %+v", e, got)
	}
	if got.UserAgent != "go-test" || got.IP != "10.0.0.1" || got.DurationMs != 42 {
		t.Errorf("Unexpected attributes: %+v", got)
	}
	if !got.Timestamp.Equal(e.Timestamp) {
		t.Errorf("Expected timestamp %v, got %v", e.Timestamp, got.Timestamp)
	}
}

func TestRequestLogRepository_CreateRejectsInvalid(t *testing.T) {
	repo := NewRequestLogRepository(setupTestDB(t))

	err := repo.Create(context.Background(), &models.RequestLog{ID: "x", Status: 200})
	if err == nil {
		t.Error("Expected error when creating entry without endpoint and ip")
	}
}

func TestRequestLogRepository_Pagination(t *testing.T) {
	repo := NewRequestLogRepository(setupTestDB(t))
	ctx := context.Background()

	var entries []models.RequestLog
	// Insert out of order so the sort has work to do
	for i := 25; i >= 1; i-- {
		entries = append(entries, entry(i, "GET", 200, "/api/health"))
	}
	seed(t, repo, entries)

	plan := models.QueryPlan{Page: 2, Limit: 10, SortBy: models.SortByTimestamp, SortDir: models.SortAsc}
	logs, err := repo.Find(ctx, plan)
	if err != nil {
		t.Fatalf("Failed to find request logs: %v", err)
	}

	if len(logs) != 10 {
		t.Fatalf("Expected 10 request logs, got %d", len(logs))
	}
	for i, l := range logs {
		expected := fmt.Sprintf("id-%03d", i+11)
		if l.ID != expected {
			t.Errorf("Position %d: expected %s, got %s", i, expected, l.ID)
		}
	}

	total, err := repo.Count(ctx, nil)
	if err != nil {
		t.Fatalf("Failed to count request logs: %v", err)
	}
	if total != 25 {
		t.Errorf("Expected total 25, got %d", total)
	}
}

func TestRequestLogRepository_Filters(t *testing.T) {
	repo := NewRequestLogRepository(setupTestDB(t))
	ctx := context.Background()

	seed(t, repo, []models.RequestLog{
		entry(1, "GET", 200, "/api/Weather"),
		entry(2, "GET", 404, "/api/missing"),
		entry(3, "POST", 404, "/api/missing_thing"),
		entry(4, "GET", 500, "/api/logs"),
		entry(5, "DELETE", 200, "/api/100%_done"),
	})

	tests := []struct {
		name     string
		filter   models.Filter
		expected []string
	}{
		{
			name: "status class 4xx",
			filter: models.Filter{
				{Name: "status_from", Field: models.FieldStatus, Op: models.OpGte, Value: 400},
				{Name: "status_to", Field: models.FieldStatus, Op: models.OpLt, Value: 500},
			},
			expected: []string{"id-002", "id-003"},
		},
		{
			name: "status class 5xx",
			filter: models.Filter{
				{Name: "status_from", Field: models.FieldStatus, Op: models.OpGte, Value: 500},
				{Name: "status_to", Field: models.FieldStatus, Op: models.OpLt, Value: 600},
			},
			expected: []string{"id-004"},
		},
		{
			name:     "method exact",
			filter:   models.Filter{{Name: "method", Field: models.FieldMethod, Op: models.OpEq, Value: "POST"}},
			expected: []string{"id-003"},
		},
		{
			name:     "endpoint contains is case-insensitive",
			filter:   models.Filter{{Name: "endpoint", Field: models.FieldEndpoint, Op: models.OpContainsFold, Value: "WEATHER"}},
			expected: []string{"id-001"},
		},
		{
			name:     "endpoint contains treats wildcards literally",
			filter:   models.Filter{{Name: "endpoint", Field: models.FieldEndpoint, Op: models.OpContainsFold, Value: "100%_"}},
			expected: []string{"id-005"},
		},
		{
			name:     "underscore is not a single character wildcard",
			filter:   models.Filter{{Name: "endpoint", Field: models.FieldEndpoint, Op: models.OpContainsFold, Value: "missing_"}},
			expected: []string{"id-003"},
		},
		{
			name: "inclusive time range",
			filter: models.Filter{
				{Name: "from", Field: models.FieldTimestamp, Op: models.OpGte, Value: baseTime.Add(2 * time.Minute)},
				{Name: "to", Field: models.FieldTimestamp, Op: models.OpLte, Value: baseTime.Add(4 * time.Minute)},
			},
			expected: []string{"id-002", "id-003", "id-004"},
		},
		{
			name: "conjunction",
			filter: models.Filter{
				{Name: "method", Field: models.FieldMethod, Op: models.OpEq, Value: "GET"},
				{Name: "status_from", Field: models.FieldStatus, Op: models.OpGte, Value: 400},
				{Name: "status_to", Field: models.FieldStatus, Op: models.OpLt, Value: 500},
			},
			expected: []string{"id-002"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := models.QueryPlan{Page: 1, Limit: 100, SortBy: models.SortByTimestamp, SortDir: models.SortAsc, Filter: tt.filter}

			logs, err := repo.Find(ctx, plan)
			if err != nil {
				t.Fatalf("Failed to find request logs: %v", err)
			}
			var ids []string
			for _, l := range logs {
				ids = append(ids, l.ID)
			}
			if fmt.Sprint(ids) != fmt.Sprint(tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, ids)
			}

			total, err := repo.Count(ctx, tt.filter)
			if err != nil {
				t.Fatalf("Failed to count request logs: %v", err)
			}
			if total != int64(len(tt.expected)) {
				t.Errorf("Expected count %d, got %d", len(tt.expected), total)
			}
		})
	}
}

func TestRequestLogRepository_SortByStatusDesc(t *testing.T) {
	repo := NewRequestLogRepository(setupTestDB(t))

	seed(t, repo, []models.RequestLog{
		entry(1, "GET", 404, "/a"),
		entry(2, "GET", 200, "/b"),
		entry(3, "GET", 500, "/c"),
	})

	logs, err := repo.Find(context.Background(), models.QueryPlan{Page: 1, Limit: 10, SortBy: models.SortByStatus, SortDir: models.SortDesc})
	if err != nil {
		t.Fatalf("Failed to find request logs: %v", err)
	}

	var statuses []int
	for _, l := range logs {
		statuses = append(statuses, l.Status)
	}
	if fmt.Sprint(statuses) != "[500 404 200]" {
		t.Errorf("Expected [500 404 200], got %v", statuses)
	}
}

func TestBuildWhere(t *testing.T) {
	where, args, err := buildWhere(nil)
	if err != nil || where != "" || len(args) != 0 {
		t.Errorf("Expected empty clause for empty filter, got %q %v %v", where, args, err)
	}

	where, args, err = buildWhere(models.Filter{
		{Name: "method", Field: models.FieldMethod, Op: models.OpEq, Value: "GET"},
		{Name: "endpoint", Field: models.FieldEndpoint, Op: models.OpContainsFold, Value: "Api"},
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	expected := ` WHERE method = ? AND LOWER(endpoint) LIKE ? ESCAPE '\'`
	if where != expected {
		t.Errorf("Expected %q, got %q", expected, where)
	}
	if len(args) != 2 || args[0] != "GET" || args[1] != "%api%" {
		t.Errorf("Unexpected args: %v", args)
	}

	if _, _, err := buildWhere(models.Filter{{Name: "bad", Field: "user_agent; --", Op: models.OpEq, Value: 1}}); err == nil {
		t.Error("Expected error for unknown field")
	}
	if _, _, err := buildWhere(models.Filter{{Name: "bad", Field: models.FieldStatus, Op: "like", Value: 1}}); err == nil {
		t.Error("Expected error for unknown operator")
	}
}

func TestEscapeLike(t *testing.T) {
	if got := escapeLike(`a%b_c\d`); got != `a\%b\_c\\d` {
		t.Errorf("Unexpected escape result: %s", got)
	}
}
