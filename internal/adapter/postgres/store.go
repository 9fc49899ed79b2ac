package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/docreview/docreview/internal/domain"
	"github.com/docreview/docreview/internal/domain/review"
)

// Store implements the task store on PostgreSQL. Findings, validation
// and report payloads are stored as jsonb alongside the scalar columns.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new Store backed by the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) CreateTask(ctx context.Context, t *review.Task) error {
	contextJSON, err := json.Marshal(orEmptyMap(t.Context))
	if err != nil {
		return fmt.Errorf("marshal task context: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO review_tasks (id, document, document_kind, context, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		t.ID, t.Document, t.DocumentKind, contextJSON, t.Status, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create task %s: %w", t.ID, err)
	}
	return nil
}

func (s *Store) GetTask(ctx context.Context, id string) (*review.Task, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, document, document_kind, context, status, created_at, updated_at
		 FROM review_tasks WHERE id = $1`, id)

	var (
		t           review.Task
		contextJSON []byte
	)
	err := row.Scan(&t.ID, &t.Document, &t.DocumentKind, &contextJSON, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("get task %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get task %s: %w", id, err)
	}

	if err := json.Unmarshal(contextJSON, &t.Context); err != nil {
		return nil, fmt.Errorf("unmarshal task context %s: %w", id, err)
	}
	return &t, nil
}

func (s *Store) UpdateTaskStatus(ctx context.Context, id string, status review.Status) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE review_tasks SET status = $2, updated_at = $3 WHERE id = $1`,
		id, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update task %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update task %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (s *Store) PutResult(ctx context.Context, r *review.Result) error {
	findingsJSON, err := json.Marshal(orEmpty(r.Findings))
	if err != nil {
		return fmt.Errorf("marshal findings: %w", err)
	}
	validationJSON, err := json.Marshal(r.Validation)
	if err != nil {
		return fmt.Errorf("marshal validation: %w", err)
	}
	reportJSON, err := json.Marshal(r.Report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	// Results are write-once: a concurrent second writer is ignored by
	// the conflict clause and reported as ErrConflict.
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO review_results (task_id, status, summary, findings, validation, report, report_markdown, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (task_id) DO NOTHING`,
		r.TaskID, r.Status, r.Summary, findingsJSON, validationJSON, reportJSON, r.ReportMarkdown, r.CreatedAt)
	if err != nil {
		return fmt.Errorf("put result %s: %w", r.TaskID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("put result %s: %w", r.TaskID, domain.ErrConflict)
	}
	return nil
}

func (s *Store) GetResult(ctx context.Context, taskID string) (*review.Result, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT task_id, status, summary, findings, validation, report, report_markdown, created_at
		 FROM review_results WHERE task_id = $1`, taskID)

	var (
		r              review.Result
		findingsJSON   []byte
		validationJSON []byte
		reportJSON     []byte
	)
	err := row.Scan(&r.TaskID, &r.Status, &r.Summary, &findingsJSON, &validationJSON, &reportJSON, &r.ReportMarkdown, &r.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("get result %s: %w", taskID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get result %s: %w", taskID, err)
	}

	if err := json.Unmarshal(findingsJSON, &r.Findings); err != nil {
		return nil, fmt.Errorf("unmarshal findings %s: %w", taskID, err)
	}
	if err := json.Unmarshal(validationJSON, &r.Validation); err != nil {
		return nil, fmt.Errorf("unmarshal validation %s: %w", taskID, err)
	}
	if err := json.Unmarshal(reportJSON, &r.Report); err != nil {
		return nil, fmt.Errorf("unmarshal report %s: %w", taskID, err)
	}
	return &r, nil
}

// orEmpty returns items unchanged if non-nil, or an empty slice if nil.
// Ensures jsonb columns hold [] instead of null.
func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

// orEmptyMap returns m unchanged if non-nil, or an empty map if nil.
func orEmptyMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
