package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DBPool abstracts the pgxpool.Pool so the recorder can be tested against
// pgxmock.
type DBPool interface {
	Ping(ctx context.Context) error
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Close()
}

const sqlCreateApplications = `
	CREATE TABLE IF NOT EXISTS applications (
		id UUID PRIMARY KEY,
		job_title TEXT NOT NULL,
		company TEXT NOT NULL,
		method TEXT NOT NULL,
		status TEXT NOT NULL,
		follow_up TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT '',
		details JSONB NOT NULL DEFAULT '{}',
		applied_at TIMESTAMPTZ NOT NULL
	);`

const sqlInsertApplication = `
	INSERT INTO applications (id, job_title, company, method, status, follow_up, notes, details, applied_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);`

const sqlSelectApplicationsSince = `
	SELECT id, job_title, company, method, status, follow_up, notes, details, applied_at
	FROM applications WHERE applied_at >= $1 ORDER BY applied_at;`

// PostgresRecorder persists application outcomes in a Postgres table. This
// is the backend for users who apply from more than one machine.
type PostgresRecorder struct {
	pool DBPool
	log  *zap.Logger
}

// NewPostgresRecorder verifies the connection and ensures the schema.
func NewPostgresRecorder(ctx context.Context, pool DBPool, logger *zap.Logger) (*PostgresRecorder, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, sqlCreateApplications); err != nil {
		return nil, fmt.Errorf("failed to ensure applications table: %w", err)
	}
	return &PostgresRecorder{pool: pool, log: logger.Named("ledger")}, nil
}

// Record inserts one application row.
func (r *PostgresRecorder) Record(ctx context.Context, app Application) error {
	normalize(&app)

	details := app.Details
	if details == nil {
		details = map[string]string{}
	}
	payload, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("failed to marshal details: %w", err)
	}

	if _, err := r.pool.Exec(ctx, sqlInsertApplication,
		app.ID, app.JobTitle, app.Company, app.Method, app.Status,
		app.FollowUp, app.Notes, payload, app.AppliedAt.UTC(),
	); err != nil {
		return fmt.Errorf("failed to insert application: %w", err)
	}
	return nil
}

// Since returns every application applied at or after cutoff.
func (r *PostgresRecorder) Since(ctx context.Context, cutoff time.Time) ([]Application, error) {
	rows, err := r.pool.Query(ctx, sqlSelectApplicationsSince, cutoff.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query applications: %w", err)
	}
	defer rows.Close()

	var apps []Application
	for rows.Next() {
		var app Application
		var payload []byte
		if err := rows.Scan(&app.ID, &app.JobTitle, &app.Company, &app.Method,
			&app.Status, &app.FollowUp, &app.Notes, &payload, &app.AppliedAt); err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &app.Details); err != nil {
				return nil, fmt.Errorf("failed to unmarshal details: %w", err)
			}
		}
		apps = append(apps, app)
	}
	return apps, rows.Err()
}

// Close releases the pool.
func (r *PostgresRecorder) Close() error {
	r.pool.Close()
	return nil
}
