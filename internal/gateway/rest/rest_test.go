package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dropDatabas3/walletgate/internal/domain"
	"github.com/dropDatabas3/walletgate/internal/gateway"
	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// signToken arma un ID token firmado con una key de juguete; el cliente
// no verifica firma, solo lee claims.
func signToken(t *testing.T, claims jwtv5.MapClaims) string {
	t.Helper()
	tok := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	s, err := tok.SignedString([]byte("test-key"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func TestClient_SignInParsesTokenClaims(t *testing.T) {
	token := signToken(t, jwtv5.MapClaims{
		"sub":            "u-123",
		"email":          "alice@example.com",
		"provider":       "email",
		"email_verified": true,
	})

	var gotAPIKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/auth/login" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		gotAPIKey = r.Header.Get("X-API-Key")
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["email"] != "alice@example.com" {
			t.Errorf("body = %v", body)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"id_token": token})
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, APIKey: "k-123"})
	ident, err := c.SignInWithPassword(context.Background(), "alice@example.com", "password123")
	if err != nil {
		t.Fatalf("signin: %v", err)
	}
	if ident.ID != "u-123" || ident.Email != "alice@example.com" {
		t.Fatalf("identity: %+v", ident)
	}
	if ident.Provider != domain.ProviderEmail || !ident.EmailVerified {
		t.Fatalf("claims: %+v", ident)
	}
	if gotAPIKey != "k-123" {
		t.Fatalf("api key header = %q", gotAPIKey)
	}
}

func TestClient_MapsProviderErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid credentials"})
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL})
	_, err := c.SignInWithPassword(context.Background(), "a@b.c", "wrong")
	if !errors.Is(err, gateway.ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestClient_TokenWithoutSubRejected(t *testing.T) {
	token := signToken(t, jwtv5.MapClaims{"email": "a@b.c"})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"id_token": token})
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL})
	if _, err := c.CreateAccount(context.Background(), "a@b.c", "password123"); err == nil {
		t.Fatal("token without sub should fail")
	}
}

func TestClient_SignOutNotifiesEvenIfRemoteFails(t *testing.T) {
	token := signToken(t, jwtv5.MapClaims{"sub": "u-1", "email": "a@b.c"})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/auth/logout" {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"id_token": token})
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL})

	var events []*domain.Identity
	unsub := c.OnAuthStateChanged(func(ident *domain.Identity) {
		events = append(events, ident)
	})
	defer unsub()

	if _, err := c.SignInWithPassword(context.Background(), "a@b.c", "password123"); err != nil {
		t.Fatalf("signin: %v", err)
	}
	// la sesión local se cierra aunque el logout remoto falle
	if err := c.SignOut(context.Background()); err != nil {
		t.Fatalf("signout: %v", err)
	}

	if len(events) != 3 {
		t.Fatalf("events = %d, want 3 (initial nil, login, logout)", len(events))
	}
	if events[0] != nil || events[1] == nil || events[2] != nil {
		t.Fatalf("event sequence: %v", events)
	}
}

func TestClient_SignOutWithoutSession(t *testing.T) {
	c := New(Config{BaseURL: "http://127.0.0.1:0"})
	if err := c.SignOut(context.Background()); !errors.Is(err, gateway.ErrNoSession) {
		t.Fatalf("signout = %v, want ErrNoSession", err)
	}
}

func TestClient_FederatedProviderValidation(t *testing.T) {
	c := New(Config{BaseURL: "http://127.0.0.1:0"})
	_, err := c.SignInWithFederated(context.Background(), domain.Provider("github"))
	if !errors.Is(err, gateway.ErrProviderDisabled) {
		t.Fatalf("err = %v, want ErrProviderDisabled", err)
	}
}

func TestClient_ReloadEmailVerified(t *testing.T) {
	token := signToken(t, jwtv5.MapClaims{"sub": "u-1", "email": "a@b.c"})
	verified := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/auth/verify/reload":
			_ = json.NewEncoder(w).Encode(map[string]bool{"email_verified": verified})
		default:
			_ = json.NewEncoder(w).Encode(map[string]string{"id_token": token})
		}
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL})
	if _, err := c.SignInWithPassword(context.Background(), "a@b.c", "password123"); err != nil {
		t.Fatalf("signin: %v", err)
	}

	if c.ReloadAndCheckEmailVerified(context.Background()) {
		t.Fatal("should not be verified yet")
	}
	verified = true
	if !c.ReloadAndCheckEmailVerified(context.Background()) {
		t.Fatal("reload should observe verification")
	}
}
