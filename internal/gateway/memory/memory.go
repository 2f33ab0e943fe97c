// Package memory implementa un identity provider en proceso.
// Lo usan los tests y el binario de desarrollo: credenciales con hash
// bcrypt, identidades con uuid y fan-out síncrono de auth events.
package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/dropDatabas3/walletgate/internal/domain"
	"github.com/dropDatabas3/walletgate/internal/gateway"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 8

type account struct {
	identity domain.Identity
	hash     []byte
}

// Provider es un Gateway en memoria. Seguro para uso concurrente.
type Provider struct {
	mu       sync.Mutex
	accounts map[string]*account // keyed por email normalizado
	current  *domain.Identity
	subs     map[int]func(*domain.Identity)
	nextSub  int

	// resets registra los emails con reset solicitado (inspección en tests)
	resets []string
}

// New crea un Provider vacío.
func New() *Provider {
	return &Provider{
		accounts: make(map[string]*account),
		subs:     make(map[int]func(*domain.Identity)),
	}
}

var _ gateway.Gateway = (*Provider)(nil)

func normalize(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

// CreateAccount registra credenciales y deja la sesión activa.
func (p *Provider) CreateAccount(_ context.Context, email, password string) (*domain.Identity, error) {
	email = normalize(email)
	if !strings.Contains(email, "@") {
		return nil, gateway.ErrInvalidEmail
	}
	if len(password) < minPasswordLen {
		return nil, gateway.ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	if _, exists := p.accounts[email]; exists {
		p.mu.Unlock()
		return nil, gateway.ErrAccountExists
	}
	acc := &account{
		identity: domain.Identity{
			ID:       uuid.NewString(),
			Email:    email,
			Provider: domain.ProviderEmail,
		},
		hash: hash,
	}
	p.accounts[email] = acc
	ident := acc.identity
	p.current = &ident
	p.mu.Unlock()

	p.notify(&ident)
	out := ident
	return &out, nil
}

// SignInWithPassword autentica contra el hash guardado.
func (p *Provider) SignInWithPassword(_ context.Context, email, password string) (*domain.Identity, error) {
	email = normalize(email)

	p.mu.Lock()
	acc, ok := p.accounts[email]
	p.mu.Unlock()
	if !ok {
		return nil, gateway.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword(acc.hash, []byte(password)) != nil {
		return nil, gateway.ErrInvalidCredentials
	}

	p.mu.Lock()
	ident := acc.identity
	p.current = &ident
	p.mu.Unlock()

	p.notify(&ident)
	out := ident
	return &out, nil
}

// SignInWithFederated autentica vía provider federado. Si no existe una
// cuenta sembrada para el provider, se auto-provisiona una (primer login
// federado: el ProfileStore aún no tiene record, igual que en producción).
func (p *Provider) SignInWithFederated(_ context.Context, provider domain.Provider) (*domain.Identity, error) {
	if provider != domain.ProviderGoogle && provider != domain.ProviderApple {
		return nil, gateway.ErrProviderDisabled
	}

	p.mu.Lock()
	var acc *account
	for _, a := range p.accounts {
		if a.identity.Provider == provider {
			acc = a
			break
		}
	}
	if acc == nil {
		acc = &account{
			identity: domain.Identity{
				ID:            uuid.NewString(),
				Email:         string(provider) + "-user@" + string(provider) + ".example",
				Provider:      provider,
				EmailVerified: true, // los federados llegan verificados
			},
		}
		p.accounts[normalize(acc.identity.Email)] = acc
	}
	ident := acc.identity
	p.current = &ident
	p.mu.Unlock()

	p.notify(&ident)
	out := ident
	return &out, nil
}

// SeedFederated pre-registra una identidad federada (para tests).
func (p *Provider) SeedFederated(provider domain.Provider, email string) domain.Identity {
	ident := domain.Identity{
		ID:            uuid.NewString(),
		Email:         normalize(email),
		Provider:      provider,
		EmailVerified: true,
	}
	p.mu.Lock()
	p.accounts[normalize(email)] = &account{identity: ident}
	p.mu.Unlock()
	return ident
}

// SignOut cierra la sesión activa.
func (p *Provider) SignOut(_ context.Context) error {
	p.mu.Lock()
	had := p.current != nil
	p.current = nil
	p.mu.Unlock()
	if !had {
		return gateway.ErrNoSession
	}
	p.notify(nil)
	return nil
}

// SendPasswordReset registra la solicitud. No envía nada.
func (p *Provider) SendPasswordReset(_ context.Context, email string) error {
	email = normalize(email)
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.accounts[email]; !ok {
		// igual que un provider real: no filtramos existencia de cuentas
		return nil
	}
	p.resets = append(p.resets, email)
	return nil
}

// ResetRequests retorna los emails con reset solicitado (tests).
func (p *Provider) ResetRequests() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.resets...)
}

// SendEmailVerification marca el envío para la sesión activa.
func (p *Provider) SendEmailVerification(_ context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return gateway.ErrNoSession
	}
	return nil
}

// MarkEmailVerified simula el click en el link de verificación (tests).
func (p *Provider) MarkEmailVerified(email string) {
	email = normalize(email)
	p.mu.Lock()
	defer p.mu.Unlock()
	if acc, ok := p.accounts[email]; ok {
		acc.identity.EmailVerified = true
		if p.current != nil && p.current.ID == acc.identity.ID {
			cur := acc.identity
			p.current = &cur
		}
	}
}

// ReloadAndCheckEmailVerified recarga la sesión activa.
func (p *Provider) ReloadAndCheckEmailVerified(_ context.Context) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return false
	}
	if acc, ok := p.accounts[normalize(p.current.Email)]; ok {
		return acc.identity.EmailVerified
	}
	return p.current.EmailVerified
}

// OnAuthStateChanged registra un callback y le entrega el estado actual
// de inmediato, como hacen los SDK de identidad hosteados.
func (p *Provider) OnAuthStateChanged(fn func(*domain.Identity)) gateway.Unsubscribe {
	p.mu.Lock()
	id := p.nextSub
	p.nextSub++
	p.subs[id] = fn
	cur := p.current
	p.mu.Unlock()

	// entrega inicial síncrona: resuelve el estado "loading" del suscriptor
	if cur != nil {
		c := *cur
		fn(&c)
	} else {
		fn(nil)
	}

	return func() {
		p.mu.Lock()
		delete(p.subs, id)
		p.mu.Unlock()
	}
}

func (p *Provider) notify(ident *domain.Identity) {
	p.mu.Lock()
	fns := make([]func(*domain.Identity), 0, len(p.subs))
	for _, fn := range p.subs {
		fns = append(fns, fn)
	}
	p.mu.Unlock()

	for _, fn := range fns {
		if ident != nil {
			c := *ident
			fn(&c)
		} else {
			fn(nil)
		}
	}
}
