// Package domain contiene los tipos centrales del ciclo de vida de sesión:
// identidad, perfil, KYC y la proyección aplanada para UI.
package domain

import "time"

// Provider identifica el origen de la credencial.
type Provider string

const (
	ProviderEmail  Provider = "email"
	ProviderGoogle Provider = "google"
	ProviderApple  Provider = "apple"
)

// Identity es la referencia de cuenta emitida por el identity provider.
// El ID es opaco e inmutable durante la vida de la cuenta.
type Identity struct {
	ID            string   `json:"id"`
	Email         string   `json:"email"`
	Provider      Provider `json:"provider"`
	EmailVerified bool     `json:"email_verified"`
}

// AccountType distingue cuentas personales de cuentas de empresa.
type AccountType string

const (
	AccountIndividual AccountType = "individual"
	AccountBusiness   AccountType = "business"
)

// KYCStatus es el estado de verificación. Las transiciones
// pending→approved/rejected ocurren fuera de este subsistema.
type KYCStatus string

const (
	KYCPending  KYCStatus = "pending"
	KYCApproved KYCStatus = "approved"
	KYCRejected KYCStatus = "rejected"
)

type PersonalInfo struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	DateOfBirth string `json:"date_of_birth,omitempty"`
	Nationality string `json:"nationality,omitempty"`
	Address     string `json:"address,omitempty"`
}

type BusinessInfo struct {
	CompanyName        string `json:"company_name"`
	RegistrationNumber string `json:"registration_number,omitempty"`
	Country            string `json:"country,omitempty"`
	Address            string `json:"address,omitempty"`
}

// KYCRecord se crea una sola vez, en el primer submit.
// Exactamente uno de PersonalInfo/BusinessInfo está poblado según AccountType.
type KYCRecord struct {
	AccountType  AccountType   `json:"account_type"`
	PersonalInfo *PersonalInfo `json:"personal_info,omitempty"`
	BusinessInfo *BusinessInfo `json:"business_info,omitempty"`
	Documents    []string      `json:"documents,omitempty"`
	SubmittedAt  time.Time     `json:"submitted_at"`
	Status       KYCStatus     `json:"status"`
	VerifiedAt   *time.Time    `json:"verified_at,omitempty"`
}

// ProfileRecord es el documento por-usuario del ProfileStore,
// keyed por Identity.ID. Nunca se borra desde este subsistema.
type ProfileRecord struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	DisplayName      string     `json:"display_name,omitempty"`
	PhotoURL         string     `json:"photo_url,omitempty"`
	Provider         Provider   `json:"provider"`
	EmailVerified    bool       `json:"email_verified"`
	CreatedAt        time.Time  `json:"created_at"`
	LastLoginAt      time.Time  `json:"last_login_at"`
	SessionStartTime time.Time  `json:"session_start_time"`
	KYCCompleted     bool       `json:"kyc_completed"`
	KYCData          *KYCRecord `json:"kyc_data,omitempty"`
}

// Clone devuelve una copia profunda. Los lectores de snapshots nunca
// deben ver el record que muta el coordinator.
func (p *ProfileRecord) Clone() *ProfileRecord {
	if p == nil {
		return nil
	}
	cp := *p
	if p.KYCData != nil {
		k := *p.KYCData
		if p.KYCData.PersonalInfo != nil {
			pi := *p.KYCData.PersonalInfo
			k.PersonalInfo = &pi
		}
		if p.KYCData.BusinessInfo != nil {
			bi := *p.KYCData.BusinessInfo
			k.BusinessInfo = &bi
		}
		if p.KYCData.Documents != nil {
			k.Documents = append([]string(nil), p.KYCData.Documents...)
		}
		if p.KYCData.VerifiedAt != nil {
			v := *p.KYCData.VerifiedAt
			k.VerifiedAt = &v
		}
		cp.KYCData = &k
	}
	return &cp
}

// DerivedUser es la proyección aplanada del ProfileRecord para UI.
// Derivada en memoria, nunca persistida.
//
// Para cuentas business, FirstName y LastName llevan ambos el nombre de
// la empresa (compat con consumidores del view plano); DisplayName y
// AccountType existen para que consumidores nuevos no dependan de eso.
type DerivedUser struct {
	Email        string      `json:"email"`
	FirstName    string      `json:"first_name"`
	LastName     string      `json:"last_name"`
	DisplayName  string      `json:"display_name"`
	AccountType  AccountType `json:"account_type"`
	PhotoURL     string      `json:"photo_url,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	KYCCompleted bool        `json:"kyc_completed"`
}

// AuthResult es el resultado de toda operación pública del coordinator.
// Ningún error cruza esa frontera: Success=false + Error legible.
type AuthResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// OK construye un resultado exitoso.
func OK() AuthResult { return AuthResult{Success: true} }

// Fail construye un resultado fallido con el mensaje del error.
func Fail(err error) AuthResult {
	if err == nil {
		return AuthResult{Success: false, Error: "unknown error"}
	}
	return AuthResult{Success: false, Error: err.Error()}
}
