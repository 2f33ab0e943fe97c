// Package fs implementa el profile store como un JSON por usuario en disco.
// Escrituras vía atomicwrite: nunca queda un documento a medias.
package fs

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/dropDatabas3/walletgate/internal/domain"
	"github.com/dropDatabas3/walletgate/internal/profilestore"
	"github.com/dropDatabas3/walletgate/internal/util/atomicwrite"
)

type Store struct {
	root string
	mu   sync.Mutex // serializa read-modify-write de Update
}

// New crea el root si no existe.
func New(root string) (*Store, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, err
	}
	return &Store{root: root}, nil
}

var _ profilestore.Store = (*Store)(nil)

func (s *Store) path(id string) string {
	// el id viene del identity provider (uuid/opaco); Base corta cualquier
	// separador por si acaso
	return filepath.Join(s.root, filepath.Base(id)+".json")
}

func (s *Store) Get(_ context.Context, id string) (*domain.ProfileRecord, error) {
	b, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
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

func (s *Store) Create(_ context.Context, id string, rec *domain.ProfileRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := os.Stat(s.path(id)); err == nil {
		return profilestore.ErrConflict
	}
	return s.write(id, rec)
}

func (s *Store) Update(ctx context.Context, id string, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := profilestore.ApplyFields(rec, fields); err != nil {
		return err
	}
	return s.write(id, rec)
}

func (s *Store) write(id string, rec *domain.ProfileRecord) error {
	b, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	return atomicwrite.AtomicWriteFile(s.path(id), b, 0644)
}
