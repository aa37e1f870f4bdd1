package supabase

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

// DatabaseClient owns the user_data table: one row per user holding the list
// of artifact filenames under data_content->'projects'.
type DatabaseClient struct {
	db *sql.DB
}

func NewDatabaseClient(connectionString string) (*DatabaseClient, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

func NewDatabaseClientFromDB(db *sql.DB) *DatabaseClient {
	return &DatabaseClient{db: db}
}

func (d *DatabaseClient) DB() *sql.DB {
	return d.db
}

// EnsureUser creates the metadata row for userID if it does not exist. An
// existing project list is never touched.
func (d *DatabaseClient) EnsureUser(ctx context.Context, userID uuid.UUID) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO user_data (user_id, data_content)
		VALUES ($1, '{"projects": []}'::jsonb)
		ON CONFLICT (user_id) DO NOTHING
	`, userID)
	if err != nil {
		return fmt.Errorf("failed to ensure user data: %w", err)
	}
	return nil
}

// AppendProject adds filename to the end of the user's project list in a
// single statement, so concurrent submissions cannot lose an append.
func (d *DatabaseClient) AppendProject(ctx context.Context, userID uuid.UUID, filename string) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO user_data (user_id, data_content)
		VALUES ($1, jsonb_build_object('projects', jsonb_build_array($2::text)))
		ON CONFLICT (user_id) DO UPDATE
		SET data_content = jsonb_set(
				user_data.data_content,
				'{projects}',
				COALESCE(user_data.data_content->'projects', '[]'::jsonb) || jsonb_build_array($2::text)
			),
			updated_at = NOW()
	`, userID, filename)
	if err != nil {
		return fmt.Errorf("failed to append project: %w", err)
	}
	return nil
}

// ListProjects returns the user's filenames in append order. A user without a
// row has no projects.
func (d *DatabaseClient) ListProjects(ctx context.Context, userID uuid.UUID) ([]string, error) {
	var raw []byte
	err := d.db.QueryRowContext(ctx, `
		SELECT COALESCE(data_content->'projects', '[]'::jsonb)
		FROM user_data
		WHERE user_id = $1
	`, userID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	projects := []string{}
	if err := json.Unmarshal(raw, &projects); err != nil {
		return nil, fmt.Errorf("failed to decode project list: %w", err)
	}
	return projects, nil
}

func (d *DatabaseClient) Close() error {
	return d.db.Close()
}
