// Package profilestore contiene el contract del document store de perfiles,
// keyed por el ID de identidad. Los adapters por backend viven en
// subpackages (memory, fs, redis, pg).
package profilestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dropDatabas3/walletgate/internal/domain"
)

var (
	ErrNotFound = errors.New("profile not found")
	ErrConflict = errors.New("profile already exists")
)

// Store define el acceso al documento de perfil por usuario.
// Update recibe un mapa parcial con claves JSON del ProfileRecord
// (ej: "kyc_completed", "last_login_at").
type Store interface {
	Get(ctx context.Context, id string) (*domain.ProfileRecord, error)
	Create(ctx context.Context, id string, rec *domain.ProfileRecord) error
	Update(ctx context.Context, id string, fields map[string]any) error
}

// ApplyFields mergea un mapa parcial (claves JSON) sobre un record.
// Todos los adapters hacen read-modify-write con este mismo merge, así el
// comportamiento de Update no depende del backend.
func ApplyFields(rec *domain.ProfileRecord, fields map[string]any) error {
	if rec == nil {
		return fmt.Errorf("apply fields: nil record")
	}
	if len(fields) == 0 {
		return nil
	}

	// round-trip por JSON: el mapa pisa solo las claves presentes
	base, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("apply fields: marshal record: %w", err)
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(base, &doc); err != nil {
		return fmt.Errorf("apply fields: unmarshal record: %w", err)
	}
	for k, v := range fields {
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("apply fields: marshal %q: %w", k, err)
		}
		doc[k] = raw
	}
	merged, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("apply fields: marshal merged: %w", err)
	}
	var out domain.ProfileRecord
	if err := json.Unmarshal(merged, &out); err != nil {
		return fmt.Errorf("apply fields: unmarshal merged: %w", err)
	}
	*rec = out
	return nil
}
