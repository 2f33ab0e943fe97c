// Package memory implementa el profile store sobre go-cache.
package memory

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/dropDatabas3/walletgate/internal/domain"
	"github.com/dropDatabas3/walletgate/internal/profilestore"
	gocache "github.com/patrickmn/go-cache"
)

// Mem guarda cada perfil como JSON en un go-cache sin expiración.
// El mutex serializa los read-modify-write de Update.
type Mem struct {
	mu sync.Mutex
	c  *gocache.Cache
}

// New crea un store vacío.
func New() *Mem {
	return &Mem{c: gocache.New(gocache.NoExpiration, 0)}
}

var _ profilestore.Store = (*Mem)(nil)

func (m *Mem) Get(_ context.Context, id string) (*domain.ProfileRecord, error) {
	v, ok := m.c.Get(id)
	if !ok {
		return nil, profilestore.ErrNotFound
	}
	b, _ := v.([]byte)
	var rec domain.ProfileRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (m *Mem) Create(_ context.Context, id string, rec *domain.ProfileRecord) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.c.Get(id); exists {
		return profilestore.ErrConflict
	}
	m.c.Set(id, b, gocache.NoExpiration)
	return nil
}

func (m *Mem) Update(ctx context.Context, id string, fields map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.c.Get(id)
	if !ok {
		return profilestore.ErrNotFound
	}
	b, _ := v.([]byte)
	var rec domain.ProfileRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return err
	}
	if err := profilestore.ApplyFields(&rec, fields); err != nil {
		return err
	}
	nb, err := json.Marshal(&rec)
	if err != nil {
		return err
	}
	m.c.Set(id, nb, gocache.NoExpiration)
	return nil
}
