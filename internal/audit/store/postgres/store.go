package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"taskhub/internal/audit"
)

// Store persists audit entries in PostgreSQL. Actor columns are stored as
// text: provisional identities rejected before resolution are still
// audit-worthy and need not be valid references.
type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Schema creates the audit_logs table. Exposed for tests and the migrate
// path in cmd/server.
const Schema = `
CREATE TABLE IF NOT EXISTS audit_logs (
	id               UUID PRIMARY KEY,
	ts               TIMESTAMPTZ NOT NULL,
	method           TEXT NOT NULL,
	url              TEXT NOT NULL,
	user_id          TEXT,
	user_email       TEXT,
	organization_id  TEXT,
	role             TEXT,
	request_body     JSONB,
	status           TEXT NOT NULL,
	status_code      INT NOT NULL,
	error_message    TEXT,
	response_time_ms BIGINT NOT NULL,
	ip_address       TEXT,
	user_agent       TEXT
);
CREATE INDEX IF NOT EXISTS audit_logs_org_ts_idx ON audit_logs (organization_id, ts DESC);
CREATE INDEX IF NOT EXISTS audit_logs_user_ts_idx ON audit_logs (user_id, ts DESC);
`

func (s *Store) Append(ctx context.Context, entry audit.Entry) error {
	body, err := json.Marshal(entry.RequestBody)
	if err != nil {
		return fmt.Errorf("marshal request body: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO audit_logs (
			id, ts, method, url, user_id, user_email, organization_id, role,
			request_body, status, status_code, error_message, response_time_ms,
			ip_address, user_agent
		) VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''), NULLIF($8, ''),
			$9, $10, $11, NULLIF($12, ''), $13, NULLIF($14, ''), NULLIF($15, ''))`,
		entry.ID, entry.Timestamp, entry.Method, entry.URL,
		entry.UserID, entry.UserEmail, entry.OrganizationID, entry.Role,
		body, string(entry.Status), entry.StatusCode, entry.ErrorMessage,
		entry.ResponseTime, entry.IPAddress, entry.UserAgent,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

func (s *Store) ListByOrganization(ctx context.Context, organizationID uuid.UUID, limit int) ([]audit.Entry, error) {
	return s.list(ctx, `organization_id = $1`, organizationID.String(), limit)
}

func (s *Store) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]audit.Entry, error) {
	return s.list(ctx, `user_id = $1`, userID.String(), limit)
}

func (s *Store) ListRecent(ctx context.Context, limit int) ([]audit.Entry, error) {
	rows, err := s.pool.Query(ctx, selectColumns+` ORDER BY ts DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit entries: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

const selectColumns = `
	SELECT id, ts, method, url,
		COALESCE(user_id, ''), COALESCE(user_email, ''), COALESCE(organization_id, ''), COALESCE(role, ''),
		request_body, status, status_code, COALESCE(error_message, ''), response_time_ms,
		COALESCE(ip_address, ''), COALESCE(user_agent, '')
	FROM audit_logs`

func (s *Store) list(ctx context.Context, where, arg string, limit int) ([]audit.Entry, error) {
	rows, err := s.pool.Query(ctx,
		selectColumns+` WHERE `+where+` ORDER BY ts DESC LIMIT $2`, arg, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit entries: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

type pgxRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanEntries(rows pgxRows) ([]audit.Entry, error) {
	var entries []audit.Entry
	for rows.Next() {
		var (
			e      audit.Entry
			body   []byte
			status string
		)
		if err := rows.Scan(
			&e.ID, &e.Timestamp, &e.Method, &e.URL,
			&e.UserID, &e.UserEmail, &e.OrganizationID, &e.Role,
			&body, &status, &e.StatusCode, &e.ErrorMessage, &e.ResponseTime,
			&e.IPAddress, &e.UserAgent,
		); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		e.Status = audit.Status(status)
		if len(body) > 0 {
			if err := json.Unmarshal(body, &e.RequestBody); err != nil {
				return nil, fmt.Errorf("decode request body: %w", err)
			}
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit entries: %w", err)
	}
	return entries, nil
}
