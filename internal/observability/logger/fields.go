package logger

import (
	"time"

	"github.com/dropDatabas3/walletgate/internal/util"
	"go.uber.org/zap"
)

// =================================================================================
// CAMPOS ESTÁNDAR - SISTEMA
// =================================================================================

// Component crea un campo para el componente/módulo.
func Component(v string) zap.Field {
	return zap.String("component", v)
}

// Op crea un campo para la operación actual.
func Op(v string) zap.Field {
	return zap.String("op", v)
}

// Layer crea un campo para la capa (service, store, gateway, guard).
func Layer(v string) zap.Field {
	return zap.String("layer", v)
}

// Err crea un campo para un error.
func Err(err error) zap.Field {
	return zap.Error(err)
}

// =================================================================================
// CAMPOS ESTÁNDAR - NEGOCIO
// =================================================================================

// IdentityID crea un campo para el ID de la identidad activa.
func IdentityID(v string) zap.Field {
	return zap.String("identity_id", v)
}

// Email crea un campo para el email, siempre enmascarado (PII).
func Email(v string) zap.Field {
	return zap.String("email", util.MaskEmail(v))
}

// Provider crea un campo para el provider de credencial (email/google/apple).
func Provider(v string) zap.Field {
	return zap.String("provider", v)
}

// Route crea un campo para el destino de navegación evaluado.
func Route(v string) zap.Field {
	return zap.String("route", v)
}

// Policy crea un campo para la política de guard aplicada.
func Policy(v string) zap.Field {
	return zap.String("policy", v)
}

// Driver crea un campo para el driver de store configurado.
func Driver(v string) zap.Field {
	return zap.String("driver", v)
}

// Generation crea un campo para el token de generación de un auth event.
func Generation(v uint64) zap.Field {
	return zap.Uint64("generation", v)
}

// Elapsed crea un campo para el tiempo de sesión transcurrido.
func Elapsed(v time.Duration) zap.Field {
	return zap.Duration("elapsed", v)
}

// =================================================================================
// CAMPOS ESTÁNDAR - DATOS
// =================================================================================

// ID crea un campo genérico para un ID.
func ID(v string) zap.Field {
	return zap.String("id", v)
}

// Key crea un campo genérico para una clave.
func Key(v string) zap.Field {
	return zap.String("key", v)
}

// Count crea un campo para un conteo.
func Count(v int) zap.Field {
	return zap.Int("count", v)
}

// Any crea un campo genérico para cualquier tipo.
func Any(key string, v any) zap.Field {
	return zap.Any(key, v)
}

// String crea un campo string genérico.
func String(key, v string) zap.Field {
	return zap.String(key, v)
}

// Bool crea un campo bool genérico.
func Bool(key string, v bool) zap.Field {
	return zap.Bool(key, v)
}
