package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/outreach-cli/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses; pgxmock satisfies it
// for unit tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS validation_requests (
	id             TEXT PRIMARY KEY,
	field          TEXT NOT NULL,
	value          TEXT NOT NULL,
	confidence     DOUBLE PRECISION NOT NULL,
	context        JSONB,
	requested_by   TEXT NOT NULL DEFAULT '',
	requested_at   TIMESTAMPTZ NOT NULL,
	status         TEXT NOT NULL DEFAULT 'pending',
	human_feedback TEXT,
	validated_by   TEXT,
	validated_at   TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS validation_responses (
	id                    TEXT PRIMARY KEY,
	request_id            TEXT NOT NULL REFERENCES validation_requests(id),
	status                TEXT NOT NULL,
	feedback              TEXT,
	validated_by          TEXT NOT NULL DEFAULT '',
	validated_at          TIMESTAMPTZ NOT NULL,
	confidence_adjustment DOUBLE PRECISION
);

CREATE INDEX IF NOT EXISTS idx_validation_requests_field ON validation_requests(field);
CREATE INDEX IF NOT EXISTS idx_validation_requests_status ON validation_requests(status);
CREATE INDEX IF NOT EXISTS idx_validation_responses_request_id ON validation_responses(request_id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) RecordRequest(ctx context.Context, req model.ValidationRequest) error {
	var contextJSON []byte
	if req.Context != nil {
		var err error
		contextJSON, err = json.Marshal(req.Context)
		if err != nil {
			return eris.Wrap(err, "postgres: marshal context")
		}
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO validation_requests
			(id, field, value, confidence, context, requested_by, requested_at, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		req.ID, req.Field, req.Value, req.Confidence,
		contextJSON, req.RequestedBy, req.RequestedAt, string(req.Status),
	)
	return eris.Wrap(err, "postgres: insert request")
}

func (s *PostgresStore) RecordResponse(ctx context.Context, resp model.ValidationResponse) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin tx")
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO validation_responses
			(id, request_id, status, feedback, validated_by, validated_at, confidence_adjustment)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		uuid.New().String(), resp.RequestID, string(resp.Status),
		resp.Feedback, resp.ValidatedBy, resp.ValidatedAt, resp.ConfidenceAdjustment,
	)
	if err != nil {
		return eris.Wrap(err, "postgres: insert response")
	}

	_, err = tx.Exec(ctx,
		`UPDATE validation_requests
		 SET status = $1, human_feedback = $2, validated_by = $3, validated_at = $4
		 WHERE id = $5`,
		string(resp.Status), resp.Feedback, resp.ValidatedBy, resp.ValidatedAt, resp.RequestID,
	)
	if err != nil {
		return eris.Wrap(err, "postgres: update request")
	}

	return eris.Wrap(tx.Commit(ctx), "postgres: commit")
}

func (s *PostgresStore) GetRequest(ctx context.Context, id string) (*model.ValidationRequest, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, field, value, confidence, context, requested_by, requested_at,
		        status, human_feedback, validated_by, validated_at
		 FROM validation_requests WHERE id = $1`, id)

	req, err := scanPgRequest(row.Scan)
	if err != nil {
		if eris.Is(err, pgx.ErrNoRows) {
			return nil, eris.Wrapf(err, "postgres: request %s not found", id)
		}
		return nil, eris.Wrap(err, "postgres: get request")
	}
	return req, nil
}

func (s *PostgresStore) ListRequests(ctx context.Context, filter RequestFilter) ([]model.ValidationRequest, error) {
	query := `SELECT id, field, value, confidence, context, requested_by, requested_at,
	                 status, human_feedback, validated_by, validated_at
	          FROM validation_requests WHERE 1=1`
	var args []any
	if filter.Field != "" {
		args = append(args, filter.Field)
		query += ` AND field = $1`
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		if len(args) == 1 {
			query += ` AND status = $1`
		} else {
			query += ` AND status = $2`
		}
	}
	query += " ORDER BY requested_at DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		switch len(args) {
		case 1:
			query += " LIMIT $1"
		case 2:
			query += " LIMIT $2"
		case 3:
			query += " LIMIT $3"
		}
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list requests")
	}
	defer rows.Close()

	var out []model.ValidationRequest
	for rows.Next() {
		req, err := scanPgRequest(rows.Scan)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan request")
		}
		out = append(out, *req)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate requests")
}

// scanPgRequest decodes one validation_requests row via the given scan func.
func scanPgRequest(scan func(dest ...any) error) (*model.ValidationRequest, error) {
	var (
		req         model.ValidationRequest
		contextJSON []byte
		feedback    *string
		validatedBy *string
		validatedAt *time.Time
		status      string
	)
	err := scan(
		&req.ID, &req.Field, &req.Value, &req.Confidence, &contextJSON,
		&req.RequestedBy, &req.RequestedAt, &status, &feedback, &validatedBy, &validatedAt,
	)
	if err != nil {
		return nil, err
	}
	req.Status = model.ValidationStatus(status)
	if feedback != nil {
		req.HumanFeedback = *feedback
	}
	if validatedBy != nil {
		req.ValidatedBy = *validatedBy
	}
	req.ValidatedAt = validatedAt
	if len(contextJSON) > 0 {
		var c model.Context
		if err := json.Unmarshal(contextJSON, &c); err == nil {
			req.Context = c
		}
	}
	return &req, nil
}

var _ Store = (*PostgresStore)(nil)
