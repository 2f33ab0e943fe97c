package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dropDatabas3/walletgate/internal/domain"
	"github.com/dropDatabas3/walletgate/internal/profilestore"
)

func TestMem_CreateGetRoundtrip(t *testing.T) {
	s := New()
	ctx := context.Background()

	rec := &domain.ProfileRecord{
		ID:               "u1",
		Email:            "alice@example.com",
		Provider:         domain.ProviderEmail,
		SessionStartTime: time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC),
	}
	if err := s.Create(ctx, "u1", rec); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := s.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Email != rec.Email || !got.SessionStartTime.Equal(rec.SessionStartTime) {
		t.Fatalf("roundtrip mismatch: %+v", got)
	}

	// el store devuelve copias: mutar lo leído no afecta lo guardado
	got.Email = "mutated@example.com"
	again, _ := s.Get(ctx, "u1")
	if again.Email != "alice@example.com" {
		t.Fatal("stored record was mutated through a read")
	}
}

func TestMem_CreateConflict(t *testing.T) {
	s := New()
	ctx := context.Background()
	rec := &domain.ProfileRecord{ID: "u1", Email: "a@b.c"}

	if err := s.Create(ctx, "u1", rec); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.Create(ctx, "u1", rec); !errors.Is(err, profilestore.ErrConflict) {
		t.Fatalf("duplicate create = %v, want ErrConflict", err)
	}
}

func TestMem_GetMissing(t *testing.T) {
	s := New()
	if _, err := s.Get(context.Background(), "ghost"); !errors.Is(err, profilestore.ErrNotFound) {
		t.Fatalf("get missing = %v, want ErrNotFound", err)
	}
}

func TestMem_UpdatePartial(t *testing.T) {
	s := New()
	ctx := context.Background()
	if err := s.Create(ctx, "u1", &domain.ProfileRecord{ID: "u1", Email: "a@b.c"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	err := s.Update(ctx, "u1", map[string]any{
		"kyc_completed": true,
		"display_name":  "Alice",
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	got, _ := s.Get(ctx, "u1")
	if !got.KYCCompleted || got.DisplayName != "Alice" {
		t.Fatalf("partial update: %+v", got)
	}
	if got.Email != "a@b.c" {
		t.Fatalf("untouched field changed: %q", got.Email)
	}
}

func TestMem_UpdateMissing(t *testing.T) {
	s := New()
	err := s.Update(context.Background(), "ghost", map[string]any{"display_name": "x"})
	if !errors.Is(err, profilestore.ErrNotFound) {
		t.Fatalf("update missing = %v, want ErrNotFound", err)
	}
}
