package auth

import (
	"time"

	"github.com/dropDatabas3/walletgate/internal/domain"
	"github.com/dropDatabas3/walletgate/internal/session"
)

// Snapshot es una vista inmutable del estado de sesión. Los lectores
// (guards, presentación) derivan de acá y nunca mutan: el único writer
// es el Coordinator.
//
// Mientras AuthLoading sea true el estado es provisional: no se puede
// asumir ni "logged in" ni "logged out".
type Snapshot struct {
	Identity       *domain.Identity      `json:"identity,omitempty"`
	Profile        *domain.ProfileRecord `json:"profile,omitempty"`
	User           *domain.DerivedUser   `json:"user,omitempty"`
	AuthLoading    bool                  `json:"auth_loading"`
	SessionElapsed time.Duration         `json:"session_elapsed"`
}

// Authenticated indica si hay identidad activa.
func (s Snapshot) Authenticated() bool { return s.Identity != nil }

// Expired indica si la sesión superó el TTL. Solo significativo con
// identidad activa y session start registrado.
func (s Snapshot) Expired() bool { return session.Expired(s.SessionElapsed) }

// Unsubscribe cancela una suscripción a cambios de estado.
type Unsubscribe func()
