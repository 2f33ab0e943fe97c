package guard

import (
	"sync"

	"github.com/dropDatabas3/walletgate/internal/auth"
	"github.com/dropDatabas3/walletgate/internal/observability/logger"
)

// Navigator es la capacidad de navegación, caja negra para este package.
type Navigator interface {
	Navigate(path string)
}

// NavigatorFunc adapta una función a Navigator.
type NavigatorFunc func(path string)

func (f NavigatorFunc) Navigate(path string) { f(path) }

// Phase es el estado de una vista guardada.
//
//	Init → Checking → {Allowed | Redirecting}
//
// Checking se re-entra en cada cambio de estado mientras no se esté
// redirigiendo; Allowed no es terminal (una sesión que expira con el tab
// abierto vuelve a Checking y redirige).
type Phase int

const (
	PhaseInit Phase = iota
	PhaseChecking
	PhaseAllowed
	PhaseRedirecting
)

func (p Phase) String() string {
	switch p {
	case PhaseInit:
		return "init"
	case PhaseChecking:
		return "checking"
	case PhaseAllowed:
		return "allowed"
	case PhaseRedirecting:
		return "redirecting"
	default:
		return "unknown"
	}
}

// Watcher re-evalúa una política en cada cambio del coordinator y maneja
// la navegación. Reactivo: no hay polling propio, solo suscripción.
type Watcher struct {
	policy Policy
	nav    Navigator

	mu    sync.Mutex
	phase Phase

	unsub auth.Unsubscribe
}

// Watch evalúa el snapshot actual y queda suscripto a los siguientes.
// Cerrar con Close cuando la vista se desmonta.
func Watch(c *auth.Coordinator, p Policy, nav Navigator) *Watcher {
	w := &Watcher{policy: p, nav: nav, phase: PhaseInit}
	w.apply(c.Snapshot())
	w.unsub = c.Subscribe(w.apply)
	return w
}

// apply corre el state machine con un snapshot nuevo.
func (w *Watcher) apply(s auth.Snapshot) {
	w.mu.Lock()
	if w.phase == PhaseRedirecting {
		// ya navegamos fuera de esta vista
		w.mu.Unlock()
		return
	}
	w.phase = PhaseChecking

	d := Evaluate(s, w.policy)
	switch d.Outcome {
	case Allow:
		w.phase = PhaseAllowed
		w.mu.Unlock()
	case Loading:
		// queda en Checking hasta el próximo snapshot
		w.mu.Unlock()
	case Redirect:
		w.phase = PhaseRedirecting
		nav := w.nav
		w.mu.Unlock()
		logger.L().Debug("guard redirect",
			logger.Layer("guard"),
			logger.Policy(string(w.policy)),
			logger.Route(d.Target),
		)
		if nav != nil {
			nav.Navigate(d.Target)
		}
	default:
		w.mu.Unlock()
	}
}

// Phase retorna el estado actual de la vista.
func (w *Watcher) Phase() Phase {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.phase
}

// Close cancela la suscripción.
func (w *Watcher) Close() {
	if w.unsub != nil {
		w.unsub()
	}
}
