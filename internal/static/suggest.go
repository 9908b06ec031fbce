package static

import (
	"strings"

	"github.com/optimode/deliverkit/internal/levenshtein"
)

// knownProviders are the domains checked for near-miss typos. The
// suggestion never affects validity, it only feeds the result narrative.
var knownProviders = []string{
	"gmail.com", "googlemail.com",
	"yahoo.com", "yahoo.co.uk", "yahoo.fr", "yahoo.de",
	"outlook.com", "hotmail.com", "hotmail.co.uk", "live.com",
	"icloud.com", "me.com", "mac.com",
	"protonmail.com", "proton.me",
	"aol.com",
	"zoho.com",
	"yandex.com", "yandex.ru",
	"mail.com",
	"gmx.com", "gmx.net", "gmx.de",
	"fastmail.com",
	"tutanota.com",
}

// suggestThreshold is the maximum edit distance for a typo suggestion.
const suggestThreshold = 2

// SuggestDomain returns the closest known provider domain when the
// given domain is within edit distance 2 of one, or "" when the domain
// is an exact match or too far from everything.
func SuggestDomain(domain string) string {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain == "" {
		return ""
	}

	bestDist := suggestThreshold + 1
	bestMatch := ""
	for _, provider := range knownProviders {
		if domain == provider {
			return ""
		}
		dist := levenshtein.Distance(domain, provider)
		if dist <= suggestThreshold && dist < bestDist {
			bestDist = dist
			bestMatch = provider
		}
	}
	return bestMatch
}
