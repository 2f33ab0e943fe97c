// Package guard decide, por destino de navegación, si una vista se
// renderiza, redirige o muestra loading — función pura del Snapshot de
// sesión más una política por destino.
package guard

import (
	"github.com/dropDatabas3/walletgate/internal/auth"
	"github.com/dropDatabas3/walletgate/internal/metrics"
)

// Policy es la política de acceso de un destino.
type Policy string

const (
	// Public: landing, signup. Siempre permite.
	Public Policy = "public"
	// RequireAuth: dashboard, wallets, transacciones, savings, etc.
	RequireAuth Policy = "require_auth"
	// RequireAuthNoKYC: el intake de KYC. Autenticado y sin KYC completo.
	RequireAuthNoKYC Policy = "require_auth_no_kyc"
)

// Rutas de redirección.
const (
	LoginPath        = "/login"
	ExpiredLoginPath = "/login?expired=true"
	DashboardPath    = "/dashboard"
)

// Outcome es el resultado de evaluar una política.
type Outcome int

const (
	Allow Outcome = iota
	Redirect
	Loading
)

func (o Outcome) String() string {
	switch o {
	case Allow:
		return "allow"
	case Redirect:
		return "redirect"
	case Loading:
		return "loading"
	default:
		return "unknown"
	}
}

// Decision es el veredicto para un render. Target solo aplica a Redirect.
type Decision struct {
	Outcome Outcome
	Target  string
}

// Evaluate aplica una política sobre un snapshot. Determinista: mismo
// snapshot, misma decisión.
func Evaluate(s auth.Snapshot, p Policy) Decision {
	d := evaluate(s, p)
	metrics.GuardDecisions.WithLabelValues(string(p), d.Outcome.String()).Inc()
	return d
}

func evaluate(s auth.Snapshot, p Policy) Decision {
	switch p {
	case Public:
		return Decision{Outcome: Allow}

	case RequireAuth:
		if s.AuthLoading {
			return Decision{Outcome: Loading}
		}
		if !s.Authenticated() {
			return Decision{Outcome: Redirect, Target: LoginPath}
		}
		if s.Expired() {
			return Decision{Outcome: Redirect, Target: ExpiredLoginPath}
		}
		return Decision{Outcome: Allow}

	case RequireAuthNoKYC:
		// perfil aún sin resolver: no hay estado decidible todavía
		if s.AuthLoading || (s.Authenticated() && s.Profile == nil) {
			return Decision{Outcome: Loading}
		}
		if !s.Authenticated() {
			return Decision{Outcome: Redirect, Target: LoginPath}
		}
		if s.User != nil && s.User.KYCCompleted {
			return Decision{Outcome: Redirect, Target: DashboardPath}
		}
		return Decision{Outcome: Allow}

	default:
		// política desconocida: cerrado hacia login
		return Decision{Outcome: Redirect, Target: LoginPath}
	}
}
