package deliverkit

import (
	"github.com/optimode/deliverkit/internal/parse"
	"github.com/optimode/deliverkit/internal/static"
	"github.com/optimode/deliverkit/types"
)

// IsDisposableDomain reports whether domain is a known disposable
// mailbox domain.
func IsDisposableDomain(domain string) bool {
	return static.IsDisposableDomain(domain)
}

// IsDisposableEmail reports whether the address's domain is a known
// disposable mailbox domain.
func IsDisposableEmail(email string) bool {
	return static.IsDisposableDomain(parse.Domain(email))
}

// IsFreeDomain reports whether domain belongs to a major free mailbox
// provider.
func IsFreeDomain(domain string) bool {
	return static.IsFreeDomain(domain)
}

// IsFreeEmail reports whether the address is hosted by a major free
// mailbox provider.
func IsFreeEmail(email string) bool {
	return static.IsFreeDomain(parse.Domain(email))
}

// IsRoleBasedLocalPart reports whether local names a role (info,
// support, billing, ...) rather than a person. Separator characters
// are ignored.
func IsRoleBasedLocalPart(local string) bool {
	return static.IsRoleLocalPart(local)
}

// IsRoleBasedEmail reports whether the address's local part names a
// role rather than a person.
func IsRoleBasedEmail(email string) bool {
	return static.IsRoleLocalPart(parse.Local(email))
}

// DetectProvider returns the mail provider behind the given MX hosts,
// or nil when none is recognized. More specific MX substrings win over
// generic ones; the first matching host decides.
func DetectProvider(mxHosts []string) *types.MailProvider {
	return static.DetectProvider(mxHosts)
}

// SuggestDomain returns a likely intended domain when the given one is
// an apparent typo of a known provider, or "".
func SuggestDomain(domain string) string {
	return static.SuggestDomain(domain)
}
