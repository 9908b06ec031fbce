// Package parse splits and normalizes email addresses for the
// verification pipeline. Domains are converted to their ASCII/Punycode
// form so that DNS and SMTP always see a resolvable name.
package parse

import (
	"strings"

	"golang.org/x/net/idna"
)

// Email is the internal representation of an address under verification.
type Email struct {
	Normalized    string // trimmed, lower-cased input
	Local         string // the part before the last @
	Domain        string // the part after the last @, ASCII/Punycode form
	DomainUnicode string // the domain in Unicode form, for display
	Valid         bool   // false when the input has no usable local@domain split
}

// NewEmail normalizes and splits the given address.
// If splitting fails, Valid is false but Normalized is always populated.
func NewEmail(raw string) Email {
	normalized := Normalize(raw)

	local, domain, ok := split(normalized)
	if !ok {
		return Email{Normalized: normalized}
	}

	asciiDomain, unicodeDomain, ok := convertDomain(domain)
	if !ok {
		return Email{Normalized: normalized}
	}

	return Email{
		Normalized:    normalized,
		Local:         local,
		Domain:        asciiDomain,
		DomainUnicode: unicodeDomain,
		Valid:         true,
	}
}

// Normalize trims surrounding whitespace and lower-cases the address.
// Lower-casing the local part is technically lossy but matches how
// receiving systems treat addresses in practice.
func Normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Domain returns the normalized domain of the address, or "" when the
// address has no domain.
func Domain(email string) string {
	_, domain, ok := split(Normalize(email))
	if !ok {
		return ""
	}
	return domain
}

// Local returns the normalized local part of the address, or "" when
// the address cannot be split.
func Local(email string) string {
	local, _, ok := split(Normalize(email))
	if !ok {
		return ""
	}
	return local
}

// split divides the address at the last @. Both sides must be non-empty.
func split(email string) (local, domain string, ok bool) {
	at := strings.LastIndex(email, "@")
	if at < 1 || at == len(email)-1 {
		return "", "", false
	}
	return email[:at], email[at+1:], true
}

// convertDomain converts a domain to both ASCII/Punycode and Unicode forms.
// ok is false if the domain contains non-ASCII characters that fail
// IDNA2008 validation.
func convertDomain(domain string) (ascii, unicode string, ok bool) {
	hasNonASCII := false
	for _, r := range domain {
		if r > 127 {
			hasNonASCII = true
			break
		}
	}

	if hasNonASCII {
		a, err := idna.Lookup.ToASCII(domain)
		if err != nil {
			return "", "", false
		}
		return a, domain, true
	}

	// Pure ASCII domain: recover a Unicode display form in case the
	// input was already Punycode (xn--mnchen-3ya.de → münchen.de).
	u, err := idna.Display.ToUnicode(domain)
	if err != nil {
		u = domain
	}
	return domain, u, true
}
