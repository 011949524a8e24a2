package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/twilightcoders/cardgames/internal/database/migrations"
	"github.com/twilightcoders/cardgames/internal/models"
)

// Connect opens a pgx pool for databaseURL and pings it before returning.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("unable to parse pgx config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to create pgx pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}
	return pool, nil
}

// Migrate creates the game_types table if it does not exist.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, migrations.Postgres); err != nil {
		return fmt.Errorf("migrate postgres: %w", err)
	}
	return nil
}

// encodeDocument and decodeDocument are the stored form of a game type on every SQL backend.
func encodeDocument(g *models.GameConfiguration) ([]byte, error) {
	doc, err := json.Marshal(g)
	if err != nil {
		return nil, fmt.Errorf("encode game type document: %w", err)
	}
	return doc, nil
}

func decodeDocument(doc []byte) (*models.GameConfiguration, error) {
	var g models.GameConfiguration
	if err := json.Unmarshal(doc, &g); err != nil {
		return nil, fmt.Errorf("decode game type document: %w", err)
	}
	return &g, nil
}
