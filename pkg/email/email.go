// Package email holds small helpers for working with email addresses shared
// by the users service and the gateway.
package email

import (
	"strings"
	"unicode"
)

// Normalize canonicalizes an address for use as an identity key. Trim plus
// lowercase matches what the identity store's unique index compares.
func Normalize(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// DeriveDisplayName builds a readable name from the local part of an address.
// Used when an external provider supplies no profile name.
func DeriveDisplayName(address string) string {
	local := address
	if at := strings.IndexByte(address, '@'); at > 0 {
		local = address[:at]
	}

	parts := strings.FieldsFunc(local, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == '+'
	})
	if len(parts) == 0 {
		return "User"
	}

	for i, p := range parts {
		parts[i] = capitalize(p)
	}
	return strings.Join(parts, " ")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
