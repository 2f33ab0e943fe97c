// Package logger provee el logger zap del proceso: un singleton con
// Init/L/S, propagación por contexto y helpers de campos tipados.
//
// Uso típico en un service:
//
//	log := logger.From(ctx).With(
//		logger.Layer("service"),
//		logger.Component("auth.coordinator"),
//		logger.Op("SignIn"),
//	)
//	log.Info("login successful", logger.IdentityID(id))
package logger
