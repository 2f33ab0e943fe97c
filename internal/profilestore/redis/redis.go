// Package redis implementa el profile store sobre go-redis:
// un documento JSON por usuario bajo un prefix configurable.
package redis

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/dropDatabas3/walletgate/internal/domain"
	"github.com/dropDatabas3/walletgate/internal/profilestore"
	goredis "github.com/redis/go-redis/v9"
)

// Config configura el adapter.
type Config struct {
	Addr   string
	DB     int
	Prefix string // default "wg:profile:"
}

type Store struct {
	c      *goredis.Client
	prefix string
}

// New conecta y hace ping para fallar temprano si Redis no está.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Prefix == "" {
		cfg.Prefix = "wg:profile:"
	}
	c := goredis.NewClient(&goredis.Options{Addr: cfg.Addr, DB: cfg.DB})
	if err := c.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &Store{c: c, prefix: cfg.Prefix}, nil
}

// NewWithClient arma el store sobre un client existente (tests).
func NewWithClient(c *goredis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = "wg:profile:"
	}
	return &Store{c: c, prefix: prefix}
}

var _ profilestore.Store = (*Store)(nil)

func (s *Store) key(id string) string { return s.prefix + id }

func (s *Store) Get(ctx context.Context, id string) (*domain.ProfileRecord, error) {
	b, err := s.c.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, profilestore.ErrNotFound
		}
		return nil, err
	}
	var rec domain.ProfileRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *Store) Create(ctx context.Context, id string, rec *domain.ProfileRecord) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	ok, err := s.c.SetNX(ctx, s.key(id), b, 0).Result()
	if err != nil {
		return err
	}
	if !ok {
		return profilestore.ErrConflict
	}
	return nil
}

func (s *Store) Update(ctx context.Context, id string, fields map[string]any) error {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := profilestore.ApplyFields(rec, fields); err != nil {
		return err
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.c.Set(ctx, s.key(id), b, 0).Err()
}

// Close cierra la conexión subyacente.
func (s *Store) Close() error { return s.c.Close() }
