// Package util contiene helpers chicos sin dueño natural.
package util

import "strings"

// MaskEmail enmascara un email para logs: deja la primera letra del
// usuario y del dominio ("alice@example.com" → "a…@e…com"). Entradas que
// no parecen un email se reducen a primera+última letra.
func MaskEmail(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}

	user, dom, ok := strings.Cut(s, "@")
	if !ok || user == "" {
		if len(s) <= 3 {
			return "***"
		}
		return s[:1] + "…" + s[len(s)-1:]
	}

	if len(user) > 1 {
		user = user[:1] + "…"
	}
	parts := strings.Split(dom, ".")
	if len(parts[0]) > 1 {
		parts[0] = parts[0][:1] + "…"
	}
	return user + "@" + strings.Join(parts, ".")
}
