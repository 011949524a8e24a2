package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/twilightcoders/cardgames/internal/gametype"
	"github.com/twilightcoders/cardgames/internal/models"
)

const pgUniqueViolation = "23505"

// PostgresRepository stores each game type as a JSONB document. Uniqueness of short_id and url
// is enforced by table constraints, so concurrent inserts cannot both succeed.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

var _ gametype.Repository = (*PostgresRepository)(nil)

// Insert writes a new game type row.
func (r *PostgresRepository) Insert(ctx context.Context, g *models.GameConfiguration) error {
	doc, err := encodeDocument(g)
	if err != nil {
		return err
	}

	q := `
	INSERT INTO game_types (id, short_id, url, document, created_at, updated_at, revision)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	err = pgx.BeginTxFunc(ctx, r.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, execErr := tx.Exec(ctx, q, g.ID, g.ShortID, g.URL, doc, g.CreatedAt, g.UpdatedAt, g.Revision)
		return execErr
	})
	return pgConflict(err, g)
}

// Get fetches a game type by ID
func (r *PostgresRepository) Get(ctx context.Context, id uuid.UUID) (*models.GameConfiguration, error) {
	return r.getOne(ctx, `SELECT document FROM game_types WHERE id = $1`, id, gametype.NotFoundByID(id.String()))
}

func (r *PostgresRepository) GetByShortID(ctx context.Context, shortID string) (*models.GameConfiguration, error) {
	return r.getOne(ctx, `SELECT document FROM game_types WHERE short_id = $1`, shortID, gametype.NotFoundByShortID(shortID))
}

func (r *PostgresRepository) GetByURL(ctx context.Context, url string) (*models.GameConfiguration, error) {
	return r.getOne(ctx, `SELECT document FROM game_types WHERE url = $1`, url, gametype.NotFoundByURL(url))
}

func (r *PostgresRepository) getOne(ctx context.Context, q string, arg any, missing error) (*models.GameConfiguration, error) {
	var doc []byte
	err := r.pool.QueryRow(ctx, q, arg).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, missing
	}
	if err != nil {
		return nil, fmt.Errorf("query game type: %w", err)
	}
	return decodeDocument(doc)
}

// List returns every stored game type, oldest first.
func (r *PostgresRepository) List(ctx context.Context) ([]*models.GameConfiguration, error) {
	rows, err := r.pool.Query(ctx, `SELECT document FROM game_types ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list game types: %w", err)
	}
	defer rows.Close()

	var out []*models.GameConfiguration
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		g, err := decodeDocument(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// Update replaces the document of an existing row if its revision is still expectedRevision;
// short_id is never rewritten.
func (r *PostgresRepository) Update(ctx context.Context, g *models.GameConfiguration, expectedRevision int64) error {
	doc, err := encodeDocument(g)
	if err != nil {
		return err
	}

	q := `
	UPDATE game_types SET url = $2, document = $3, updated_at = $4, revision = $5
	WHERE id = $1 AND revision = $6
	`
	err = pgx.BeginTxFunc(ctx, r.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		tag, execErr := tx.Exec(ctx, q, g.ID, g.URL, doc, g.UpdatedAt, g.Revision, expectedRevision)
		if execErr != nil {
			return execErr
		}
		if tag.RowsAffected() > 0 {
			return nil
		}

		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM game_types WHERE id = $1)`, g.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return gametype.NotFoundByID(g.ID.String())
		}
		return gametype.StaleRevision(expectedRevision)
	})
	return pgConflict(err, g)
}

// Delete removes a game type row by ID.
func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM game_types WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete game type: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return gametype.NotFoundByID(id.String())
	}
	return nil
}

func (r *PostgresRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM game_types`); err != nil {
		return fmt.Errorf("delete all game types: %w", err)
	}
	return nil
}

// pgConflict maps a unique violation onto the conflicting field of g.
func pgConflict(err error, g *models.GameConfiguration) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgUniqueViolation {
		return err
	}
	switch pgErr.ConstraintName {
	case "game_types_short_id_key":
		return &gametype.ConflictError{Field: "shortId", Value: g.ShortID}
	case "game_types_url_key":
		return &gametype.ConflictError{Field: "url", Value: g.URL}
	default:
		return &gametype.ConflictError{Field: "id", Value: g.ID.String()}
	}
}
