package auth

import (
	"strings"

	"github.com/dropDatabas3/walletgate/internal/domain"
)

// DeriveUser aplana un ProfileRecord en el view model de UI.
// Función pura: misma entrada, misma salida, sin mutar el record.
//
// Para cuentas business, FirstName y LastName llevan ambos el nombre de
// la empresa; DisplayName trae lo mismo sin el overload.
func DeriveUser(p *domain.ProfileRecord) *domain.DerivedUser {
	if p == nil {
		return nil
	}
	u := &domain.DerivedUser{
		Email:        p.Email,
		DisplayName:  p.DisplayName,
		AccountType:  domain.AccountIndividual,
		PhotoURL:     p.PhotoURL,
		CreatedAt:    p.CreatedAt,
		KYCCompleted: p.KYCCompleted,
	}

	if k := p.KYCData; k != nil {
		u.AccountType = k.AccountType
		switch {
		case k.AccountType == domain.AccountBusiness && k.BusinessInfo != nil:
			u.FirstName = k.BusinessInfo.CompanyName
			u.LastName = k.BusinessInfo.CompanyName
			u.DisplayName = k.BusinessInfo.CompanyName
		case k.PersonalInfo != nil:
			u.FirstName = k.PersonalInfo.FirstName
			u.LastName = k.PersonalInfo.LastName
			if u.DisplayName == "" {
				u.DisplayName = strings.TrimSpace(k.PersonalInfo.FirstName + " " + k.PersonalInfo.LastName)
			}
		}
	}

	if u.DisplayName == "" {
		// fallback: parte local del email
		if i := strings.IndexByte(p.Email, '@'); i > 0 {
			u.DisplayName = p.Email[:i]
		} else {
			u.DisplayName = p.Email
		}
	}
	return u
}
