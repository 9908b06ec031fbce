package static

import "strings"

// IsDisposableDomain reports whether domain is a known disposable
// (throwaway) mailbox domain.
func IsDisposableDomain(domain string) bool {
	_, ok := disposableSet[strings.ToLower(strings.TrimSpace(domain))]
	return ok
}

// IsFreeDomain reports whether domain belongs to a major free mailbox
// provider.
func IsFreeDomain(domain string) bool {
	_, ok := freeSet[strings.ToLower(strings.TrimSpace(domain))]
	return ok
}

// IsRoleLocalPart reports whether local names a role rather than a
// person. Separator characters are stripped before comparison, so
// "no-reply", "no_reply" and "no.reply" all match "noreply".
func IsRoleLocalPart(local string) bool {
	stripped := strings.ToLower(strings.TrimSpace(local))
	stripped = strings.NewReplacer(".", "", "_", "", "-", "").Replace(stripped)
	_, ok := roleSet[stripped]
	return ok
}

// IsFirstName reports whether token is a known given name.
func IsFirstName(token string) bool {
	_, ok := firstNameSet[strings.ToLower(strings.TrimSpace(token))]
	return ok
}
