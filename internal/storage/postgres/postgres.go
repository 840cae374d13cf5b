package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gaitlab/gait-service/internal/storage"
	"github.com/gaitlab/gait-service/internal/types"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

type Postgres struct {
	Db *sql.DB
}

var _ storage.Storage = (*Postgres)(nil)

// NewPostgres connects with a libpq connection string or URL and creates the
// tables when they are missing.
func NewPostgres(databaseURL string) (*Postgres, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	slog.Info("Connected to Postgres database")

	pg := &Postgres{Db: db}
	if err := pg.CreateTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return pg, nil
}

func (p *Postgres) CreateTables() error {
	queries := []string{
		`
		CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			username TEXT UNIQUE NOT NULL,
			role TEXT NOT NULL CHECK (role IN ('patient', 'doctor'))
		);
		`,
		`
		CREATE TABLE IF NOT EXISTS videos (
			id BIGSERIAL PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			user_name TEXT NOT NULL,
			file_name TEXT NOT NULL,
			file_path TEXT NOT NULL,
			file_url TEXT
		);
		`,
		`CREATE INDEX IF NOT EXISTS idx_videos_user_name_created_at ON videos(user_name, created_at DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_videos_file_path ON videos(file_path);`,
	}

	for _, q := range queries {
		if _, err := p.Db.Exec(q); err != nil {
			return err
		}
	}

	return nil
}

func (p *Postgres) Close() error {
	return p.Db.Close()
}

func (p *Postgres) GetAccount(ctx context.Context, username string) (types.Account, error) {
	query := `SELECT id, created_at, username, role FROM users WHERE username = $1`
	return scanAccount(p.Db.QueryRowContext(ctx, query, username))
}

func (p *Postgres) GetAccountWithRole(ctx context.Context, username string, role types.Role) (types.Account, error) {
	query := `SELECT id, created_at, username, role FROM users WHERE username = $1 AND role = $2`
	return scanAccount(p.Db.QueryRowContext(ctx, query, username, role))
}

func (p *Postgres) CreateAccount(ctx context.Context, username string, role types.Role) (types.Account, error) {
	query := `
	INSERT INTO users (username, role)
	VALUES ($1, $2)
	RETURNING id, created_at, username, role
	`

	acc, err := scanAccount(p.Db.QueryRowContext(ctx, query, username, role))
	if err != nil {
		if isUniqueViolation(err) {
			return types.Account{}, storage.ErrDuplicate
		}
		return types.Account{}, fmt.Errorf("failed to insert account: %w", err)
	}
	return acc, nil
}

func (p *Postgres) ListVideos(ctx context.Context, owner string) ([]types.MediaRecord, error) {
	query := `SELECT id, created_at, user_name, file_name, file_path, file_url FROM videos`
	var args []interface{}
	if owner != "" {
		query += ` WHERE user_name = $1`
		args = append(args, owner)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := p.Db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query videos: %w", err)
	}
	defer rows.Close()

	result := []types.MediaRecord{}
	for rows.Next() {
		var rec types.MediaRecord
		var url sql.NullString
		if err := rows.Scan(&rec.ID, &rec.CreatedAt, &rec.OwnerUsername, &rec.FileName, &rec.StoragePath, &url); err != nil {
			return nil, fmt.Errorf("failed to scan video: %w", err)
		}
		if url.Valid {
			rec.PublicURL = &url.String
		}
		result = append(result, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating videos: %w", err)
	}

	return result, nil
}

func (p *Postgres) CreateVideo(ctx context.Context, rec types.MediaRecord) (types.MediaRecord, error) {
	query := `
	INSERT INTO videos (user_name, file_name, file_path, file_url)
	VALUES ($1, $2, $3, $4)
	RETURNING id, created_at
	`

	err := p.Db.QueryRowContext(ctx, query, rec.OwnerUsername, rec.FileName, rec.StoragePath, rec.PublicURL).
		Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		return types.MediaRecord{}, fmt.Errorf("failed to insert video: %w", err)
	}

	return rec, nil
}

func (p *Postgres) DeleteVideo(ctx context.Context, id int64) error {
	result, err := p.Db.ExecContext(ctx, `DELETE FROM videos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete video: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return storage.ErrNotFound
	}

	return nil
}

func (p *Postgres) VideoPathExists(ctx context.Context, path string) (bool, error) {
	var exists bool
	err := p.Db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM videos WHERE file_path = $1)`, path).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check video path: %w", err)
	}
	return exists, nil
}

func scanAccount(row *sql.Row) (types.Account, error) {
	var acc types.Account
	var role string
	if err := row.Scan(&acc.ID, &acc.CreatedAt, &acc.Username, &role); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Account{}, storage.ErrNotFound
		}
		return types.Account{}, err
	}
	acc.Role = types.Role(role)
	return acc, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
