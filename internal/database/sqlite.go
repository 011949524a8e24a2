package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/twilightcoders/cardgames/internal/database/migrations"
	"github.com/twilightcoders/cardgames/internal/gametype"
	"github.com/twilightcoders/cardgames/internal/models"
)

// SQLiteRepository is the single-node backend: the same document table as Postgres, stored in one file.
type SQLiteRepository struct {
	db *sql.DB
}

var _ gametype.Repository = (*SQLiteRepository)(nil)

// OpenSQLite opens (or creates) the database at path and applies the schema.
// The path ":memory:" opens a private in-memory database.
func OpenSQLite(path string) (*SQLiteRepository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	dsn := ":memory:"
	if path != ":memory:" {
		dsn = filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// one writer keeps check-then-write inside a single connection; an in-memory db also needs it
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(migrations.SQLite); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func (r *SQLiteRepository) Insert(ctx context.Context, g *models.GameConfiguration) error {
	doc, err := encodeDocument(g)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO game_types (id, short_id, url, document, created_at, updated_at, revision) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		g.ID.String(), g.ShortID, g.URL, string(doc), g.CreatedAt.UnixMicro(), g.UpdatedAt.UnixMicro(), g.Revision,
	)
	return sqliteConflict(err, g)
}

func (r *SQLiteRepository) Get(ctx context.Context, id uuid.UUID) (*models.GameConfiguration, error) {
	return r.getOne(ctx, `SELECT document FROM game_types WHERE id = ?`, id.String(), gametype.NotFoundByID(id.String()))
}

func (r *SQLiteRepository) GetByShortID(ctx context.Context, shortID string) (*models.GameConfiguration, error) {
	return r.getOne(ctx, `SELECT document FROM game_types WHERE short_id = ?`, shortID, gametype.NotFoundByShortID(shortID))
}

func (r *SQLiteRepository) GetByURL(ctx context.Context, url string) (*models.GameConfiguration, error) {
	return r.getOne(ctx, `SELECT document FROM game_types WHERE url = ?`, url, gametype.NotFoundByURL(url))
}

func (r *SQLiteRepository) getOne(ctx context.Context, q string, arg any, missing error) (*models.GameConfiguration, error) {
	var doc string
	err := r.db.QueryRowContext(ctx, q, arg).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, missing
	}
	if err != nil {
		return nil, fmt.Errorf("query game type: %w", err)
	}
	return decodeDocument([]byte(doc))
}

func (r *SQLiteRepository) List(ctx context.Context) ([]*models.GameConfiguration, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT document FROM game_types ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list game types: %w", err)
	}
	defer rows.Close()

	var out []*models.GameConfiguration
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		g, err := decodeDocument([]byte(doc))
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) Update(ctx context.Context, g *models.GameConfiguration, expectedRevision int64) error {
	doc, err := encodeDocument(g)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE game_types SET url = ?, document = ?, updated_at = ?, revision = ? WHERE id = ? AND revision = ?`,
		g.URL, string(doc), g.UpdatedAt.UnixMicro(), g.Revision, g.ID.String(), expectedRevision,
	)
	if err != nil {
		return sqliteConflict(err, g)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}

	var exists bool
	err = r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM game_types WHERE id = ?)`, g.ID.String()).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check game type: %w", err)
	}
	if !exists {
		return gametype.NotFoundByID(g.ID.String())
	}
	return gametype.StaleRevision(expectedRevision)
}

func (r *SQLiteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM game_types WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("delete game type: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return gametype.NotFoundByID(id.String())
	}
	return nil
}

func (r *SQLiteRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM game_types`); err != nil {
		return fmt.Errorf("delete all game types: %w", err)
	}
	return nil
}

func sqliteConflict(err error, g *models.GameConfiguration) error {
	if err == nil {
		return nil
	}
	var sqliteErr *msqlite.Error
	if !errors.As(err, &sqliteErr) {
		return err
	}
	switch sqliteErr.Code() {
	case sqlite3lib.SQLITE_CONSTRAINT_UNIQUE, sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY:
	default:
		return err
	}

	message := strings.ToLower(err.Error())
	switch {
	case strings.Contains(message, "game_types.short_id"):
		return &gametype.ConflictError{Field: "shortId", Value: g.ShortID}
	case strings.Contains(message, "game_types.url"):
		return &gametype.ConflictError{Field: "url", Value: g.URL}
	default:
		return &gametype.ConflictError{Field: "id", Value: g.ID.String()}
	}
}
