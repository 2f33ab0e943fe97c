package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Métricas Prometheus del ciclo de vida de sesión. En un package standalone
// para evitar ciclos de import entre auth y guard.

var (
	SignIns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "walletgate_signins_total",
		Help: "Logins exitosos por método",
	}, []string{"method"})

	SignInFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "walletgate_signin_failures_total",
		Help: "Logins fallidos por método",
	}, []string{"method"})

	SignOuts = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "walletgate_signouts_total",
		Help: "Logouts exitosos",
	})

	SessionsExpired = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "walletgate_sessions_expired_total",
		Help: "Sesiones cerradas por superar el TTL",
	})

	KYCSubmissions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "walletgate_kyc_submissions_total",
		Help: "Submits de KYC por resultado",
	}, []string{"result"})

	GuardDecisions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "walletgate_guard_decisions_total",
		Help: "Decisiones de route guard por política y resultado",
	}, []string{"policy", "outcome"})

	SessionElapsedSeconds = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "walletgate_session_elapsed_seconds",
		Help: "Tiempo de sesión transcurrido de la identidad activa",
	})
)

// Register registra las métricas en el registry dado (o el default si nil).
func Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	cs := []prometheus.Collector{
		SignIns,
		SignInFailures,
		SignOuts,
		SessionsExpired,
		KYCSubmissions,
		GuardDecisions,
		SessionElapsedSeconds,
	}
	for _, c := range cs {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	return nil
}
