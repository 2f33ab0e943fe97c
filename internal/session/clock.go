// Package session deriva el tiempo de sesión transcurrido y decide expiración.
// Sin side effects ni I/O: todo es función pura sobre un timestamp de inicio.
package session

import (
	"fmt"
	"time"
)

// TTL es la vida máxima de una sesión antes de considerarse expirada.
const TTL = 24 * time.Hour

// Clock deriva tiempo transcurrido desde un instante de inicio.
// El now inyectable existe para tests; el default es time.Now.
type Clock struct {
	now func() time.Time
}

// NewClock crea un Clock sobre wall-clock real.
func NewClock() Clock {
	return Clock{now: time.Now}
}

// NewClockAt crea un Clock con una fuente de tiempo inyectada.
func NewClockAt(now func() time.Time) Clock {
	if now == nil {
		now = time.Now
	}
	return Clock{now: now}
}

// Now retorna el instante actual según la fuente del Clock.
func (c Clock) Now() time.Time {
	if c.now == nil {
		return time.Now()
	}
	return c.now()
}

// Elapsed retorna cuánto pasó desde start. Retorna 0 si start es cero
// (sesión sin inicio registrado) o está en el futuro.
func (c Clock) Elapsed(start time.Time) time.Duration {
	if start.IsZero() {
		return 0
	}
	d := c.Now().Sub(start)
	if d < 0 {
		return 0
	}
	return d
}

// Expired decide si un tiempo transcurrido supera el TTL.
// Desigualdad estricta: exactamente 24h todavía NO está expirada.
func Expired(elapsed time.Duration) bool {
	return elapsed > TTL
}

// FormatElapsed formatea una duración para UI en tiers excluyentes:
// con horas nunca se muestran segundos.
//
//	"2h 15m"  (>= 1 hora)
//	"45m 12s" (>= 1 minuto)
//	"30s"     (resto)
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Seconds())
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60

	switch {
	case h >= 1:
		return fmt.Sprintf("%dh %dm", h, m)
	case m >= 1:
		return fmt.Sprintf("%dm %ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}
