package fs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dropDatabas3/walletgate/internal/domain"
	"github.com/dropDatabas3/walletgate/internal/profilestore"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return s
}

func TestFS_CreateGetRoundtrip(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	rec := &domain.ProfileRecord{
		ID:           "u1",
		Email:        "alice@example.com",
		Provider:     domain.ProviderGoogle,
		KYCCompleted: true,
	}
	if err := s.Create(ctx, "u1", rec); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := s.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Email != rec.Email || got.Provider != rec.Provider || !got.KYCCompleted {
		t.Fatalf("roundtrip mismatch: %+v", got)
	}

	// un documento por usuario
	if _, err := os.Stat(filepath.Join(s.root, "u1.json")); err != nil {
		t.Fatalf("document file: %v", err)
	}
}

func TestFS_CreateConflict(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	rec := &domain.ProfileRecord{ID: "u1", Email: "a@b.c"}

	if err := s.Create(ctx, "u1", rec); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.Create(ctx, "u1", rec); !errors.Is(err, profilestore.ErrConflict) {
		t.Fatalf("duplicate create = %v, want ErrConflict", err)
	}
}

func TestFS_GetMissing(t *testing.T) {
	s := newStore(t)
	if _, err := s.Get(context.Background(), "ghost"); !errors.Is(err, profilestore.ErrNotFound) {
		t.Fatalf("get missing = %v, want ErrNotFound", err)
	}
}

func TestFS_UpdatePartial(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	if err := s.Create(ctx, "u1", &domain.ProfileRecord{ID: "u1", Email: "a@b.c"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := s.Update(ctx, "u1", map[string]any{"photo_url": "https://cdn.example.com/a.png"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ := s.Get(ctx, "u1")
	if got.PhotoURL != "https://cdn.example.com/a.png" || got.Email != "a@b.c" {
		t.Fatalf("partial update: %+v", got)
	}
}

func TestFS_UpdateMissing(t *testing.T) {
	s := newStore(t)
	err := s.Update(context.Background(), "ghost", map[string]any{"display_name": "x"})
	if !errors.Is(err, profilestore.ErrNotFound) {
		t.Fatalf("update missing = %v, want ErrNotFound", err)
	}
}

func TestFS_PathTraversalClamped(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	// un id hostil no puede escribir fuera del root
	if err := s.Create(ctx, "../../etc/evil", &domain.ProfileRecord{ID: "evil"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := os.Stat(filepath.Join(s.root, "evil.json")); err != nil {
		t.Fatalf("clamped document: %v", err)
	}
}
