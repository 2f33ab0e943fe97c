// Package gateway contiene el contract del identity provider externo.
// El provider es dueño de las credenciales; este subsistema solo consume
// sus operaciones y su stream de cambios de estado de autenticación.
package gateway

import (
	"context"
	"errors"

	"github.com/dropDatabas3/walletgate/internal/domain"
)

// Unsubscribe cancela una suscripción a cambios de estado.
type Unsubscribe func()

// Gateway define las operaciones del identity provider.
//
// OnAuthStateChanged entrega la identidad activa (o nil si no hay sesión).
// La primera entrega resuelve el estado provisional "loading" del coordinator.
type Gateway interface {
	// CreateAccount registra credenciales email/password y deja la sesión activa.
	CreateAccount(ctx context.Context, email, password string) (*domain.Identity, error)

	// SignInWithPassword autentica con credenciales.
	SignInWithPassword(ctx context.Context, email, password string) (*domain.Identity, error)

	// SignInWithFederated autentica vía provider federado (google|apple).
	SignInWithFederated(ctx context.Context, provider domain.Provider) (*domain.Identity, error)

	// SignOut cierra la sesión activa del provider.
	SignOut(ctx context.Context) error

	// SendPasswordReset dispara el flujo de reset. La entrega del email
	// es del provider, no nuestra.
	SendPasswordReset(ctx context.Context, email string) error

	// SendEmailVerification dispara el email de verificación para la sesión activa.
	SendEmailVerification(ctx context.Context) error

	// ReloadAndCheckEmailVerified recarga la identidad activa y retorna
	// su flag de verificación.
	ReloadAndCheckEmailVerified(ctx context.Context) bool

	// OnAuthStateChanged registra un callback para cambios de sesión.
	OnAuthStateChanged(fn func(*domain.Identity)) Unsubscribe
}

// Errores de credencial. Se muestran verbatim al usuario; nunca fatales.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountExists      = errors.New("account already exists")
	ErrWeakPassword       = errors.New("password too weak")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrNoSession          = errors.New("no active session")
	ErrProviderDisabled   = errors.New("provider not enabled")
)
