// Package rest implementa el Gateway contra un identity provider remoto
// vía JSON/HTTP. Las respuestas de login/signup traen un ID token (JWT);
// el cliente solo lee claims — verificar la firma es trabajo del server.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dropDatabas3/walletgate/internal/domain"
	"github.com/dropDatabas3/walletgate/internal/gateway"
	"github.com/dropDatabas3/walletgate/internal/observability/logger"
	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// Config configura el cliente REST.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration // default 10s
}

// Client es un Gateway sobre HTTP. Mantiene la identidad activa local
// y notifica a sus suscriptores en cada transición, espejando el
// onAuthStateChanged de los SDK hosteados.
type Client struct {
	base   string
	apiKey string
	http   *http.Client

	mu      sync.Mutex
	current *domain.Identity
	subs    map[int]func(*domain.Identity)
	nextSub int
}

// New crea un Client.
func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		base:   strings.TrimRight(cfg.BaseURL, "/"),
		apiKey: cfg.APIKey,
		http:   &http.Client{Timeout: cfg.Timeout},
		subs:   make(map[int]func(*domain.Identity)),
	}
}

var _ gateway.Gateway = (*Client)(nil)

type tokenResponse struct {
	IDToken string `json:"id_token"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	b, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		var e errorResponse
		if json.Unmarshal(b, &e) == nil && e.Error != "" {
			return mapProviderError(e.Error)
		}
		return fmt.Errorf("identity provider: status %d", resp.StatusCode)
	}
	if out != nil && len(b) > 0 {
		return json.Unmarshal(b, out)
	}
	return nil
}

// mapProviderError traduce mensajes conocidos a los sentinels del package
// gateway, para que el coordinator no dependa del texto del provider.
func mapProviderError(msg string) error {
	switch strings.ToLower(strings.TrimSpace(msg)) {
	case "invalid credentials":
		return gateway.ErrInvalidCredentials
	case "account already exists":
		return gateway.ErrAccountExists
	case "password too weak":
		return gateway.ErrWeakPassword
	case "invalid email":
		return gateway.ErrInvalidEmail
	default:
		return fmt.Errorf("%s", msg)
	}
}

// identityFromToken lee las claims del ID token sin verificar firma.
// sub/email/provider/email_verified son las claims que el dashboard usa.
func identityFromToken(raw string) (*domain.Identity, error) {
	claims := jwtv5.MapClaims{}
	if _, _, err := jwtv5.NewParser().ParseUnverified(raw, claims); err != nil {
		return nil, fmt.Errorf("parse id token: %w", err)
	}
	ident := &domain.Identity{Provider: domain.ProviderEmail}
	if v, ok := claims["sub"].(string); ok {
		ident.ID = v
	}
	if v, ok := claims["email"].(string); ok {
		ident.Email = v
	}
	if v, ok := claims["provider"].(string); ok && v != "" {
		ident.Provider = domain.Provider(v)
	}
	if v, ok := claims["email_verified"].(bool); ok {
		ident.EmailVerified = v
	}
	if ident.ID == "" {
		return nil, fmt.Errorf("id token without sub claim")
	}
	return ident, nil
}

func (c *Client) authCall(ctx context.Context, path string, body any) (*domain.Identity, error) {
	var tok tokenResponse
	if err := c.do(ctx, http.MethodPost, path, body, &tok); err != nil {
		return nil, err
	}
	ident, err := identityFromToken(tok.IDToken)
	if err != nil {
		return nil, err
	}
	c.setCurrent(ident)
	out := *ident
	return &out, nil
}

// CreateAccount registra credenciales en el provider remoto.
func (c *Client) CreateAccount(ctx context.Context, email, password string) (*domain.Identity, error) {
	return c.authCall(ctx, "/v1/accounts", map[string]string{
		"email":    email,
		"password": password,
	})
}

// SignInWithPassword autentica con credenciales.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*domain.Identity, error) {
	return c.authCall(ctx, "/v1/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
}

// SignInWithFederated autentica vía provider federado.
func (c *Client) SignInWithFederated(ctx context.Context, provider domain.Provider) (*domain.Identity, error) {
	if provider != domain.ProviderGoogle && provider != domain.ProviderApple {
		return nil, gateway.ErrProviderDisabled
	}
	return c.authCall(ctx, "/v1/auth/federated/"+string(provider), nil)
}

// SignOut cierra la sesión remota y local.
func (c *Client) SignOut(ctx context.Context) error {
	c.mu.Lock()
	had := c.current != nil
	c.mu.Unlock()
	if !had {
		return gateway.ErrNoSession
	}
	if err := c.do(ctx, http.MethodPost, "/v1/auth/logout", nil, nil); err != nil {
		// best effort remoto: la sesión local se cierra igual
		logger.From(ctx).Warn("remote logout failed", logger.Err(err))
	}
	c.setCurrent(nil)
	return nil
}

// SendPasswordReset delega al provider.
func (c *Client) SendPasswordReset(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/v1/auth/forgot", map[string]string{"email": email}, nil)
}

// SendEmailVerification delega al provider para la sesión activa.
func (c *Client) SendEmailVerification(ctx context.Context) error {
	c.mu.Lock()
	had := c.current != nil
	c.mu.Unlock()
	if !had {
		return gateway.ErrNoSession
	}
	return c.do(ctx, http.MethodPost, "/v1/auth/verify/send", nil, nil)
}

// ReloadAndCheckEmailVerified recarga la identidad activa desde el provider.
func (c *Client) ReloadAndCheckEmailVerified(ctx context.Context) bool {
	var out struct {
		EmailVerified bool `json:"email_verified"`
	}
	if err := c.do(ctx, http.MethodPost, "/v1/auth/verify/reload", nil, &out); err != nil {
		return false
	}
	c.mu.Lock()
	if c.current != nil {
		c.current.EmailVerified = out.EmailVerified
	}
	c.mu.Unlock()
	return out.EmailVerified
}

// OnAuthStateChanged registra un callback y entrega el estado actual.
func (c *Client) OnAuthStateChanged(fn func(*domain.Identity)) gateway.Unsubscribe {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	cur := c.current
	c.mu.Unlock()

	if cur != nil {
		cp := *cur
		fn(&cp)
	} else {
		fn(nil)
	}

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

func (c *Client) setCurrent(ident *domain.Identity) {
	c.mu.Lock()
	c.current = ident
	fns := make([]func(*domain.Identity), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		if ident != nil {
			cp := *ident
			fn(&cp)
		} else {
			fn(nil)
		}
	}
}
