// Package pg implementa el profile store sobre Postgres (pgx).
// El record completo vive en una columna JSONB: mismo documento que los
// demás adapters, con transacción para el read-modify-write de Update.
package pg

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/dropDatabas3/walletgate/internal/domain"
	"github.com/dropDatabas3/walletgate/internal/profilestore"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS profiles (
    id         TEXT PRIMARY KEY,
    doc        JSONB NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`

type Store struct {
	pool *pgxpool.Pool
}

// New conecta el pool y asegura el schema.
func New(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	s := &Store{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// NewWithPool arma el store sobre un pool existente (tests, wiring propio).
func NewWithPool(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

var _ profilestore.Store = (*Store)(nil)

func (s *Store) migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, schema)
	return err
}

func (s *Store) Get(ctx context.Context, id string) (*domain.ProfileRecord, error) {
	var doc []byte
	err := s.pool.QueryRow(ctx, `SELECT doc FROM profiles WHERE id = $1`, id).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, profilestore.ErrNotFound
		}
		return nil, err
	}
	var rec domain.ProfileRecord
	if err := json.Unmarshal(doc, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *Store) Create(ctx context.Context, id string, rec *domain.ProfileRecord) error {
	doc, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO profiles (id, doc) VALUES ($1, $2)`, id, doc)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return profilestore.ErrConflict
		}
		return err
	}
	return nil
}

func (s *Store) Update(ctx context.Context, id string, fields map[string]any) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var doc []byte
	err = tx.QueryRow(ctx, `SELECT doc FROM profiles WHERE id = $1 FOR UPDATE`, id).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return profilestore.ErrNotFound
		}
		return err
	}
	var rec domain.ProfileRecord
	if err := json.Unmarshal(doc, &rec); err != nil {
		return err
	}
	if err := profilestore.ApplyFields(&rec, fields); err != nil {
		return err
	}
	nb, err := json.Marshal(&rec)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx,
		`UPDATE profiles SET doc = $2, updated_at = now() WHERE id = $1`, id, nb); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Close libera el pool.
func (s *Store) Close() { s.pool.Close() }
