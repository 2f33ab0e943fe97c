package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/dropDatabas3/walletgate/internal/domain"
	"github.com/dropDatabas3/walletgate/internal/gateway"
)

func TestProvider_CreateAccountAndSignIn(t *testing.T) {
	p := New()
	ctx := context.Background()

	ident, err := p.CreateAccount(ctx, "Alice@Example.com ", "password123")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if ident.Email != "alice@example.com" {
		t.Fatalf("email not normalized: %q", ident.Email)
	}
	if ident.Provider != domain.ProviderEmail {
		t.Fatalf("provider = %q", ident.Provider)
	}

	// re-login con otra capitalización
	got, err := p.SignInWithPassword(ctx, "ALICE@example.COM", "password123")
	if err != nil {
		t.Fatalf("signin: %v", err)
	}
	if got.ID != ident.ID {
		t.Fatalf("identity changed across logins: %q vs %q", got.ID, ident.ID)
	}
}

func TestProvider_CreateAccountValidation(t *testing.T) {
	p := New()
	ctx := context.Background()

	if _, err := p.CreateAccount(ctx, "not-an-email", "password123"); !errors.Is(err, gateway.ErrInvalidEmail) {
		t.Fatalf("invalid email = %v", err)
	}
	if _, err := p.CreateAccount(ctx, "a@b.c", "short"); !errors.Is(err, gateway.ErrWeakPassword) {
		t.Fatalf("weak password = %v", err)
	}

	if _, err := p.CreateAccount(ctx, "a@b.c", "password123"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := p.CreateAccount(ctx, "a@b.c", "password123"); !errors.Is(err, gateway.ErrAccountExists) {
		t.Fatalf("duplicate = %v", err)
	}
}

func TestProvider_SignInWrongPassword(t *testing.T) {
	p := New()
	ctx := context.Background()
	if _, err := p.CreateAccount(ctx, "a@b.c", "password123"); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := p.SignInWithPassword(ctx, "a@b.c", "wrongpass1"); !errors.Is(err, gateway.ErrInvalidCredentials) {
		t.Fatalf("wrong password = %v", err)
	}
	if _, err := p.SignInWithPassword(ctx, "ghost@b.c", "password123"); !errors.Is(err, gateway.ErrInvalidCredentials) {
		t.Fatalf("unknown account = %v", err)
	}
}

func TestProvider_Federated(t *testing.T) {
	p := New()
	ctx := context.Background()

	if _, err := p.SignInWithFederated(ctx, domain.Provider("facebook")); !errors.Is(err, gateway.ErrProviderDisabled) {
		t.Fatalf("unknown provider = %v", err)
	}

	// primer login federado: auto-provisión, verificado
	ident, err := p.SignInWithFederated(ctx, domain.ProviderGoogle)
	if err != nil {
		t.Fatalf("federated: %v", err)
	}
	if ident.Provider != domain.ProviderGoogle || !ident.EmailVerified {
		t.Fatalf("federated identity: %+v", ident)
	}

	// segundo login del mismo provider reusa la cuenta
	again, err := p.SignInWithFederated(ctx, domain.ProviderGoogle)
	if err != nil {
		t.Fatalf("federated again: %v", err)
	}
	if again.ID != ident.ID {
		t.Fatalf("identity not stable: %q vs %q", again.ID, ident.ID)
	}
}

func TestProvider_SeededFederated(t *testing.T) {
	p := New()
	seeded := p.SeedFederated(domain.ProviderApple, "apple-user@icloud.com")

	ident, err := p.SignInWithFederated(context.Background(), domain.ProviderApple)
	if err != nil {
		t.Fatalf("federated: %v", err)
	}
	if ident.ID != seeded.ID {
		t.Fatalf("seeded identity not used: %q vs %q", ident.ID, seeded.ID)
	}
}

func TestProvider_AuthStateStream(t *testing.T) {
	p := New()
	ctx := context.Background()

	var events []*domain.Identity
	unsub := p.OnAuthStateChanged(func(ident *domain.Identity) {
		events = append(events, ident)
	})
	defer unsub()

	// entrega inicial síncrona: estado "logged out"
	if len(events) != 1 || events[0] != nil {
		t.Fatalf("initial delivery: %v", events)
	}

	ident, err := p.CreateAccount(ctx, "a@b.c", "password123")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(events) != 2 || events[1] == nil || events[1].ID != ident.ID {
		t.Fatalf("signup event: %v", events)
	}

	if err := p.SignOut(ctx); err != nil {
		t.Fatalf("signout: %v", err)
	}
	if len(events) != 3 || events[2] != nil {
		t.Fatalf("signout event: %v", events)
	}

	// doble signout: sin sesión
	if err := p.SignOut(ctx); !errors.Is(err, gateway.ErrNoSession) {
		t.Fatalf("double signout = %v", err)
	}

	unsub()
	if _, err := p.SignInWithPassword(ctx, "a@b.c", "password123"); err != nil {
		t.Fatalf("signin: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("events after unsubscribe: %d", len(events))
	}
}

func TestProvider_EmailVerificationFlow(t *testing.T) {
	p := New()
	ctx := context.Background()

	if err := p.SendEmailVerification(ctx); !errors.Is(err, gateway.ErrNoSession) {
		t.Fatalf("verification without session = %v", err)
	}

	if _, err := p.CreateAccount(ctx, "a@b.c", "password123"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := p.SendEmailVerification(ctx); err != nil {
		t.Fatalf("send verification: %v", err)
	}
	if p.ReloadAndCheckEmailVerified(ctx) {
		t.Fatal("fresh email account should not be verified")
	}

	p.MarkEmailVerified("a@b.c")
	if !p.ReloadAndCheckEmailVerified(ctx) {
		t.Fatal("reload should observe verification")
	}
}

func TestProvider_PasswordReset(t *testing.T) {
	p := New()
	ctx := context.Background()
	if _, err := p.CreateAccount(ctx, "a@b.c", "password123"); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := p.SendPasswordReset(ctx, "a@b.c"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	// cuenta inexistente: mismo resultado hacia afuera
	if err := p.SendPasswordReset(ctx, "ghost@b.c"); err != nil {
		t.Fatalf("reset unknown: %v", err)
	}

	got := p.ResetRequests()
	if len(got) != 1 || got[0] != "a@b.c" {
		t.Fatalf("reset requests = %v", got)
	}
}
