package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/bdc/weather-api/models"
)

// RequestLogRepository is the record store for captured requests
type RequestLogRepository interface {
	Create(ctx context.Context, entry *models.RequestLog) error
	Count(ctx context.Context, filter models.Filter) (int64, error)
	Find(ctx context.Context, plan models.QueryPlan) ([]models.RequestLog, error)
}

type sqlRequestLogRepository struct {
	db *sqlx.DB
}

// NewRequestLogRepository creates a new request log repository
func NewRequestLogRepository(db *sqlx.DB) RequestLogRepository {
	return &sqlRequestLogRepository{db: db}
}

// Filterable fields and sort keys map onto fixed column names only
var columns = map[models.Field]string{
	models.FieldMethod:    "method",
	models.FieldStatus:    "status",
	models.FieldEndpoint:  "endpoint",
	models.FieldTimestamp: "timestamp",
}

var sortColumns = map[models.SortKey]string{
	models.SortByTimestamp: "timestamp",
	models.SortByStatus:    "status",
	models.SortByMethod:    "method",
}

// Create inserts a new request log entry
func (r *sqlRequestLogRepository) Create(ctx context.Context, entry *models.RequestLog) error {
	if errs := entry.Validate(); errs.HasErrors() {
		return fmt.Errorf("invalid request log: %w", errs)
	}

	query := r.db.Rebind(`
		INSERT INTO request_logs (id, endpoint, method, ip, status, user_agent, duration_ms, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)

	_, err := r.db.ExecContext(ctx, query,
		entry.ID,
		entry.Endpoint,
		entry.Method,
		entry.IP,
		entry.Status,
		entry.UserAgent,
		entry.DurationMs,
		entry.Timestamp.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert request log: %w", err)
	}

	return nil
}

// Count returns the number of entries matching filter
func (r *sqlRequestLogRepository) Count(ctx context.Context, filter models.Filter) (int64, error) {
	where, args, err := buildWhere(filter)
	if err != nil {
		return 0, err
	}

	var total int64
	query := r.db.Rebind("SELECT COUNT(*) FROM request_logs" + where)
	if err := r.db.GetContext(ctx, &total, query, args...); err != nil {
		return 0, fmt.Errorf("failed to count request logs: %w", err)
	}

	return total, nil
}

// Find returns one page of entries matching the plan's filter, sorted as requested
func (r *sqlRequestLogRepository) Find(ctx context.Context, plan models.QueryPlan) ([]models.RequestLog, error) {
	where, args, err := buildWhere(plan.Filter)
	if err != nil {
		return nil, err
	}

	column, ok := sortColumns[plan.SortBy]
	if !ok {
		return nil, fmt.Errorf("unsupported sort key %q", plan.SortBy)
	}
	dir := "DESC"
	if plan.SortDir == models.SortAsc {
		dir = "ASC"
	}

	// id breaks ties so identical queries return identical pages
	query := r.db.Rebind(fmt.Sprintf(`
		SELECT id, endpoint, method, ip, status, user_agent, duration_ms, timestamp
		FROM request_logs%s
		ORDER BY %s %s, id %s
		LIMIT ? OFFSET ?
	`, where, column, dir, dir))
	args = append(args, plan.Limit, plan.Offset())

	logs := []models.RequestLog{}
	if err := r.db.SelectContext(ctx, &logs, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query request logs: %w", err)
	}

	for i := range logs {
		logs[i].Timestamp = logs[i].Timestamp.UTC()
	}

	return logs, nil
}

// buildWhere renders a filter as a WHERE clause with ? placeholders
func buildWhere(filter models.Filter) (string, []any, error) {
	if len(filter) == 0 {
		return "", nil, nil
	}

	clauses := make([]string, 0, len(filter))
	args := make([]any, 0, len(filter))

	for _, p := range filter {
		column, ok := columns[p.Field]
		if !ok {
			return "", nil, fmt.Errorf("predicate %s: unsupported field %q", p.Name, p.Field)
		}

		switch p.Op {
		case models.OpEq:
			clauses = append(clauses, column+" = ?")
		case models.OpGte:
			clauses = append(clauses, column+" >= ?")
		case models.OpLt:
			clauses = append(clauses, column+" < ?")
		case models.OpLte:
			clauses = append(clauses, column+" <= ?")
		case models.OpContainsFold:
			s, ok := p.Value.(string)
			if !ok {
				return "", nil, fmt.Errorf("predicate %s: contains needs a string value", p.Name)
			}
			clauses = append(clauses, "LOWER("+column+`) LIKE ? ESCAPE '\'`)
			args = append(args, "%"+escapeLike(strings.ToLower(s))+"%")
			continue
		default:
			return "", nil, fmt.Errorf("predicate %s: unsupported operator %q", p.Name, p.Op)
		}

		args = append(args, p.Value)
	}

	return " WHERE " + strings.Join(clauses, " AND "), args, nil
}

// escapeLike escapes LIKE wildcards so the value matches literally
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
