package domain

import "errors"

var (
	// ErrNotAuthenticated: operación de perfil/KYC sin identidad activa.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrStoreUnavailable: el profile store no respondió. Recuperable.
	ErrStoreUnavailable = errors.New("profile store unavailable")

	// ErrInvalidKYC: el record no cumple la regla account_type ↔ info.
	ErrInvalidKYC = errors.New("invalid kyc record")
)
