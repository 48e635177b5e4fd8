package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/outreach-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS validation_requests (
	id             TEXT PRIMARY KEY,
	field          TEXT NOT NULL,
	value          TEXT NOT NULL,
	confidence     REAL NOT NULL,
	context        TEXT,
	requested_by   TEXT NOT NULL DEFAULT '',
	requested_at   DATETIME NOT NULL,
	status         TEXT NOT NULL DEFAULT 'pending',
	human_feedback TEXT,
	validated_by   TEXT,
	validated_at   DATETIME
);

CREATE TABLE IF NOT EXISTS validation_responses (
	id                    TEXT PRIMARY KEY,
	request_id            TEXT NOT NULL REFERENCES validation_requests(id),
	status                TEXT NOT NULL,
	feedback              TEXT,
	validated_by          TEXT NOT NULL DEFAULT '',
	validated_at          DATETIME NOT NULL,
	confidence_adjustment REAL
);

CREATE INDEX IF NOT EXISTS idx_validation_requests_field ON validation_requests(field);
CREATE INDEX IF NOT EXISTS idx_validation_requests_status ON validation_requests(status);
CREATE INDEX IF NOT EXISTS idx_validation_responses_request_id ON validation_responses(request_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) RecordRequest(ctx context.Context, req model.ValidationRequest) error {
	var contextJSON []byte
	if req.Context != nil {
		var err error
		contextJSON, err = json.Marshal(req.Context)
		if err != nil {
			return eris.Wrap(err, "sqlite: marshal context")
		}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO validation_requests
			(id, field, value, confidence, context, requested_by, requested_at, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		req.ID, req.Field, req.Value, req.Confidence,
		nullableString(string(contextJSON)), req.RequestedBy, req.RequestedAt, string(req.Status),
	)
	return eris.Wrap(err, "sqlite: insert request")
}

func (s *SQLiteStore) RecordResponse(ctx context.Context, resp model.ValidationResponse) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO validation_responses
			(id, request_id, status, feedback, validated_by, validated_at, confidence_adjustment)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), resp.RequestID, string(resp.Status),
		nullableString(resp.Feedback), resp.ValidatedBy, resp.ValidatedAt, resp.ConfidenceAdjustment,
	)
	if err != nil {
		return eris.Wrap(err, "sqlite: insert response")
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE validation_requests
		 SET status = ?, human_feedback = ?, validated_by = ?, validated_at = ?
		 WHERE id = ?`,
		string(resp.Status), nullableString(resp.Feedback), resp.ValidatedBy, resp.ValidatedAt, resp.RequestID,
	)
	if err != nil {
		return eris.Wrap(err, "sqlite: update request")
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit")
}

func (s *SQLiteStore) GetRequest(ctx context.Context, id string) (*model.ValidationRequest, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, field, value, confidence, context, requested_by, requested_at,
		        status, human_feedback, validated_by, validated_at
		 FROM validation_requests WHERE id = ?`, id)

	req, err := scanRequest(row.Scan)
	if err != nil {
		if eris.Is(err, sql.ErrNoRows) {
			return nil, eris.Wrapf(err, "sqlite: request %s not found", id)
		}
		return nil, eris.Wrap(err, "sqlite: get request")
	}
	return req, nil
}

func (s *SQLiteStore) ListRequests(ctx context.Context, filter RequestFilter) ([]model.ValidationRequest, error) {
	query := `SELECT id, field, value, confidence, context, requested_by, requested_at,
	                 status, human_feedback, validated_by, validated_at
	          FROM validation_requests WHERE 1=1`
	var args []any
	if filter.Field != "" {
		query += " AND field = ?"
		args = append(args, filter.Field)
	}
	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, string(filter.Status))
	}
	query += " ORDER BY requested_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list requests")
	}
	defer rows.Close()

	var out []model.ValidationRequest
	for rows.Next() {
		req, err := scanRequest(rows.Scan)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan request")
		}
		out = append(out, *req)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate requests")
}

// scanRequest decodes one validation_requests row via the given scan func.
func scanRequest(scan func(dest ...any) error) (*model.ValidationRequest, error) {
	var (
		req         model.ValidationRequest
		contextJSON sql.NullString
		feedback    sql.NullString
		validatedBy sql.NullString
		validatedAt sql.NullTime
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
	req.HumanFeedback = feedback.String
	req.ValidatedBy = validatedBy.String
	if validatedAt.Valid {
		t := validatedAt.Time
		req.ValidatedAt = &t
	}
	if contextJSON.Valid && contextJSON.String != "" {
		var c model.Context
		if err := json.Unmarshal([]byte(contextJSON.String), &c); err == nil {
			req.Context = c
		}
	}
	return &req, nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

var _ Store = (*SQLiteStore)(nil)

// DeleteResolvedBefore prunes resolved requests older than the cutoff,
// returning the number removed.
func (s *SQLiteStore) DeleteResolvedBefore(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM validation_requests WHERE status != 'pending' AND validated_at < ?`, cutoff)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: delete resolved")
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
